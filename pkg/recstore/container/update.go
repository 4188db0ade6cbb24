package container

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nspcc-dev/recstore/pkg/recstore/codec"
	"github.com/nspcc-dev/recstore/pkg/recstore/compression"
	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	storelog "github.com/nspcc-dev/recstore/pkg/recstore/internal/log"
	"github.com/nspcc-dev/recstore/pkg/recstore/locator"
	"github.com/nspcc-dev/recstore/pkg/recstore/patch"
	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
	"github.com/nspcc-dev/recstore/pkg/recstore/storage"
	"github.com/nspcc-dev/recstore/pkg/util"
	"go.uber.org/zap"
)

// Update rewrites on-disk sub-record titled title with the current
// serialization of the in-memory record in place. With check set, the file
// is not touched if the stored bytes already match. Update returns whether
// the file has been written.
//
// Only uncompressed files can be patched, UnsupportedError is returned for
// other levels.
func (db *DB) Update(title string, check bool) (bool, error) {
	rec, ok := db.Get(title)
	if !ok {
		return false, fmt.Errorf("%w: %q is not loaded", ErrRecordNotFound, title)
	}
	return db.UpdateRecord(rec, check)
}

// UpdateRecord is like Update but takes the replacement record explicitly.
// The record replaces the in-memory one with the same title.
func (db *DB) UpdateRecord(rec entity.Record, check bool) (bool, error) {
	const op = "update"

	start := time.Now()
	defer func() { db.metrics.AddOperationDuration(op, time.Since(start)) }()

	if err := db.Add(rec); err != nil {
		return false, err
	}

	hdr, err := db.patchableHeader()
	if err != nil {
		return false, err
	}

	newRec, err := codec.EncodeRecord(rec)
	if err != nil {
		return false, err
	}

	f, err := db.backend.Open(db.path, storage.ModeReadWrite)
	if err != nil {
		return false, fmt.Errorf("could not open store file: %w", err)
	}
	defer f.Close()

	end := hdr.Len + hdr.Size

	h, err := db.locate(f, hdr, rec.Title())
	if err != nil {
		return false, err
	}

	written, delta, err := db.patch(f, h, end, newRec, check)
	if err != nil {
		return false, err
	}
	if delta != 0 {
		db.invalidate()
	}
	if written {
		hdrBytes, content := codec.SplitRecord(newRec)
		db.rememberSpan(codec.SubHeader{
			Marker:       rec.Marker(),
			Title:        rec.Title(),
			Length:       int64(len(content)),
			Start:        h.Start,
			ContentStart: h.Start + int64(len(hdrBytes)),
		})
		db.metrics.AddRecords(op, 1)
	}

	return written, nil
}

// UpdateAll patches every on-disk sub-record that has an in-memory
// counterpart, walking the file from the beginning to the end of records.
// Sub-records not held in memory are left as is. Records are serialized on
// the worker pool while the file is being walked. It returns the number of
// rewritten sub-records.
func (db *DB) UpdateAll(check bool) (int, error) {
	const op = "update_all"

	start := time.Now()
	defer func() { db.metrics.AddOperationDuration(op, time.Since(start)) }()

	hdr, err := db.patchableHeader()
	if err != nil {
		return 0, err
	}

	recs := db.snapshot()
	encoded := make(map[string]*util.Future[[]byte], len(recs))
	for i := range recs {
		rec := recs[i]
		encoded[rec.Title()] = util.Go(db.pool, func() ([]byte, error) {
			return codec.EncodeRecord(rec)
		})
	}
	// every submitted encoding is joined even if the walk fails
	defer func() {
		for _, f := range encoded {
			_, _ = f.Get()
		}
	}()

	f, err := db.backend.Open(db.path, storage.ModeReadWrite)
	if err != nil {
		return 0, fmt.Errorf("could not open store file: %w", err)
	}
	defer f.Close()

	var (
		pos     = hdr.Len
		end     = hdr.Len + hdr.Size
		updated int
		changed bool
	)

	for pos < end {
		h, err := codec.ReadSubHeaderAt(f, pos, end)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return updated, err
		}

		fut, ok := encoded[h.Title]
		if !ok {
			pos = h.End() + 1
			continue
		}

		newRec, err := fut.Get()
		if err != nil {
			return updated, err
		}

		written, delta, err := db.patch(f, h, end, newRec, check)
		if err != nil {
			return updated, err
		}
		if written {
			updated++
		}
		if delta != 0 {
			changed = true
			end += delta
		}
		pos = h.Start + int64(len(newRec)) + 1
	}

	if changed {
		db.invalidate()
	}
	db.metrics.AddRecords(op, updated)

	return updated, nil
}

// patchableHeader returns file header making sure the file can be patched.
func (db *DB) patchableHeader() (codec.Header, error) {
	hdr, err := db.Header()
	if err != nil {
		return codec.Header{}, err
	}
	if hdr.Level != compression.None {
		return codec.Header{}, recerr.Unsupported("update", "in-place update of %s database", hdr.Level)
	}
	return hdr, nil
}

// locate finds the first on-disk sub-record titled title.
func (db *DB) locate(f storage.File, hdr codec.Header, title string) (codec.SubHeader, error) {
	end := hdr.Len + hdr.Size

	if h, ok := db.cachedSpan(f, title, end); ok {
		return h, nil
	}

	sc := locator.New(io.NewSectionReader(f, hdr.Len, hdr.Size), title,
		locator.WithOffset(hdr.Len),
		locator.WithChunkSize(db.scanChunkSize),
	)
	if !sc.Next() {
		if err := sc.Err(); err != nil {
			return codec.SubHeader{}, err
		}
		return codec.SubHeader{}, fmt.Errorf("%w: %q in %s", ErrRecordNotFound, title, db.path)
	}

	return subHeader(sc.Span()), nil
}

// patch replaces sub-record h of f with newRec unless check is set and the
// stored bytes are equal. It returns whether f has been written and the
// size change.
func (db *DB) patch(f storage.File, h codec.SubHeader, end int64, newRec []byte, check bool) (bool, int64, error) {
	if check {
		old := make([]byte, h.SpanLen())
		if n, err := f.ReadAt(old, h.Start); n < len(old) {
			return false, 0, fmt.Errorf("read %q: %w", h.Title, errors.Join(io.ErrUnexpectedEOF, err))
		}

		oldSum, newSum := sha256.Sum256(old), sha256.Sum256(newRec)
		if bytes.Equal(oldSum[:], newSum[:]) {
			db.log.Debug("record is up to date",
				storelog.TitleField(h.Title),
				storelog.DigestField(newSum[:]),
			)
			return false, 0, nil
		}
	}

	res, err := patch.Apply(f, patch.Prm{
		ContentStart: h.ContentStart,
		OldLength:    h.Length,
		Title:        h.Title,
		FileSize:     end,
		Record:       newRec,
	})
	if err != nil {
		return false, 0, fmt.Errorf("patch %q: %w", h.Title, err)
	}

	db.metrics.AddWrittenBytes(int64(len(newRec)))
	db.metrics.SetFileSize(res.Size)

	storelog.Write(db.log,
		storelog.OpField("update"),
		storelog.PathField(db.path),
		storelog.TitleField(h.Title),
		storelog.DeltaField(res.Delta),
		zap.Int64("offset", res.Start),
	)

	return true, res.Delta, nil
}
