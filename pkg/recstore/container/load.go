package container

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nspcc-dev/recstore/pkg/recstore/codec"
	"github.com/nspcc-dev/recstore/pkg/recstore/compression"
	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/nspcc-dev/recstore/pkg/recstore/storage"
	"go.uber.org/zap"
)

// payload is an open payload region of the store file.
type payload struct {
	hdr codec.Header
	f   storage.File
	rc  io.ReadCloser
	c   *codec.Cursor
}

// openPayload opens the store file and positions a cursor at the first
// sub-record. Cursor positions are absolute file offsets for uncompressed
// files and offsets in the decompressed payload otherwise.
func (db *DB) openPayload() (*payload, error) {
	hdr, err := db.Header()
	if err != nil {
		return nil, err
	}

	f, err := db.backend.Open(db.path, storage.ModeRead)
	if err != nil {
		return nil, fmt.Errorf("could not open store file: %w", err)
	}

	p := &payload{hdr: hdr, f: f}

	if !hdr.Level.Compressed() {
		p.rc, err = compression.NewReader(hdr.Level, io.NewSectionReader(f, hdr.Len, hdr.Size), hdr.Size)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		p.c = codec.NewCursor(p.rc, hdr.Len, hdr.Len+hdr.Size)
		return p, nil
	}

	size, err := db.backend.Size(db.path)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not get store file size: %w", err)
	}

	p.rc, err = compression.NewReader(hdr.Level, io.NewSectionReader(f, hdr.Len, size-hdr.Len), hdr.Size)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	p.c = codec.NewCursor(p.rc, 0, hdr.Size)

	return p, nil
}

func (p *payload) Close() error {
	return errors.Join(p.rc.Close(), p.f.Close())
}

// Load scans the file from the beginning decoding sub-records until the one
// titled title is met. The found record is added to the in-memory
// collection. Every record decoded on the way registers its members in the
// parse-scoped index.
func (db *DB) Load(title string, maintainBorrows bool) (entity.Record, error) {
	const op = "load"

	start := time.Now()
	defer func() { db.metrics.AddOperationDuration(op, time.Since(start)) }()

	p, err := db.openPayload()
	if err != nil {
		return nil, err
	}
	defer p.Close()

	dec := db.decoder(maintainBorrows)
	for {
		rec, h, err := dec.Next(p.c)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %q in %s", ErrRecordNotFound, title, db.path)
			}
			return nil, err
		}
		if h.Title != title {
			continue
		}

		db.mtx.Lock()
		db.put(rec)
		db.mtx.Unlock()

		if p.hdr.Level == compression.None {
			db.rememberSpan(h)
		}
		db.metrics.AddRecords(op, 1)

		return rec, nil
	}
}

// Records is a lazy sequence of decoded records. It can be consumed once.
// Resources are released when the sequence ends, on error or by Close.
type Records struct {
	next  func() (entity.Record, error)
	close func() error

	rec  entity.Record
	err  error
	done bool
}

// Next decodes the next record. It returns false at the end of sequence or
// on error, see Err.
func (it *Records) Next() bool {
	if it.done {
		return false
	}

	rec, err := it.next()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			it.err = err
		}
		it.finish()
		return false
	}

	it.rec = rec
	return true
}

// Record returns the record decoded by the last Next.
func (it *Records) Record() entity.Record { return it.rec }

// Err returns the error stopped the sequence, if any.
func (it *Records) Err() error { return it.err }

// Close stops the sequence and releases resources.
func (it *Records) Close() error {
	it.finish()
	return it.err
}

func (it *Records) finish() {
	it.done = true
	it.rec = nil
	if it.close == nil {
		return
	}
	if err := it.close(); err != nil && it.err == nil {
		it.err = err
	}
	it.close = nil
}

// LoadN decodes first n records in file order, all of them if n is
// negative. Each record is added to the in-memory collection as it is
// produced, so the collection is complete only after the sequence is fully
// consumed. The parse-scoped index is not reset.
func (db *DB) LoadN(n int, maintainBorrows bool) (*Records, error) {
	const op = "load_n"

	p, err := db.openPayload()
	if err != nil {
		return nil, err
	}

	dec := db.decoder(maintainBorrows)
	var count int

	return &Records{
		next: func() (entity.Record, error) {
			if n >= 0 && count >= n {
				return nil, io.EOF
			}

			rec, h, err := dec.Next(p.c)
			if err != nil {
				return nil, err
			}
			count++

			db.mtx.Lock()
			db.put(rec)
			db.mtx.Unlock()

			if p.hdr.Level == compression.None {
				db.rememberSpan(h)
			}
			db.metrics.AddRecords(op, 1)

			return rec, nil
		},
		close: p.Close,
	}, nil
}

// LoadAll decodes every record of the file into the in-memory collection
// and resets the parse-scoped index afterwards.
func (db *DB) LoadAll(maintainBorrows bool) ([]entity.Record, error) {
	start := time.Now()
	defer func() { db.metrics.AddOperationDuration("load_all", time.Since(start)) }()

	defer db.ResetParseIndex()

	it, err := db.LoadN(-1, maintainBorrows)
	if err != nil {
		return nil, err
	}

	var res []entity.Record
	for it.Next() {
		res = append(res, it.Record())
	}
	if err := it.Close(); err != nil {
		return nil, err
	}

	db.log.Debug("store loaded", zap.Int("records", len(res)))

	return res, nil
}
