package container

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/nspcc-dev/recstore/pkg/recstore/codec"
	"github.com/nspcc-dev/recstore/pkg/recstore/compression"
	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	storelog "github.com/nspcc-dev/recstore/pkg/recstore/internal/log"
	"github.com/nspcc-dev/recstore/pkg/recstore/storage"
	"github.com/nspcc-dev/recstore/pkg/util"
	"go.uber.org/zap"
)

// Export rewrites backing file with all in-memory records in insertion
// order framing the payload at the given level.
func (db *DB) Export(level compression.Level) error {
	const op = "export"

	start := time.Now()
	defer func() { db.metrics.AddOperationDuration(op, time.Since(start)) }()

	if err := level.Check("level_compile"); err != nil {
		return err
	}

	recs := db.snapshot()

	encoded, err := db.encodeAll(recs)
	if err != nil {
		return err
	}

	var size int64
	for i := range encoded {
		size += int64(len(encoded[i])) + 1
	}

	hdr, err := codec.EncodeHeader(level, db.name, db.path, size)
	if err != nil {
		return err
	}

	f, err := db.backend.Open(db.path, storage.ModeCreate)
	if err != nil {
		return fmt.Errorf("could not create store file: %w", err)
	}
	defer f.Close()
	defer db.invalidate()

	cw := &countingWriter{w: f}
	bw := bufio.NewWriter(cw)

	if _, err := bw.Write(hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	pw, err := compression.NewWriter(level, bw, size)
	if err != nil {
		return err
	}
	for i := range encoded {
		if _, err := pw.Write(encoded[i]); err != nil {
			return fmt.Errorf("write %q: %w", recs[i].Title(), err)
		}
		if _, err := pw.Write([]byte{'\n'}); err != nil {
			return fmt.Errorf("write %q: %w", recs[i].Title(), err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("finish payload: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush store file: %w", err)
	}

	db.metrics.AddRecords(op, len(recs))
	db.metrics.AddWrittenBytes(cw.n)
	db.metrics.SetFileSize(cw.n)

	storelog.Write(db.log,
		storelog.OpField(op),
		storelog.PathField(db.path),
		storelog.LevelField(level),
		zap.Int("records", len(recs)),
		zap.Int64("payload_size", size),
	)

	return nil
}

// encodeAll serializes records on the worker pool. All the workers are
// joined before any result is returned.
func (db *DB) encodeAll(recs []entity.Record) ([][]byte, error) {
	fs := make([]*util.Future[[]byte], len(recs))
	for i := range recs {
		rec := recs[i]
		fs[i] = util.Go(db.pool, func() ([]byte, error) {
			return codec.EncodeRecord(rec)
		})
	}
	return util.Wait(fs)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
