package container

import (
	"errors"
	"fmt"
	"io"

	"github.com/nspcc-dev/recstore/pkg/recstore/codec"
	"github.com/nspcc-dev/recstore/pkg/recstore/compression"
	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/nspcc-dev/recstore/pkg/recstore/locator"
)

// Find lazily decodes every sub-record titled exactly title. Sub-records
// are located by the streaming locator and only their contents are read
// and decoded, other records are skipped by their declared length. Found
// records are added to the in-memory collection.
//
// References of found records are resolved through the parse-scoped index
// as it is, so they may point only to names registered by previous loads.
func (db *DB) Find(title string, maintainBorrows bool) (*Records, error) {
	const op = "find"

	p, err := db.openPayload()
	if err != nil {
		return nil, err
	}

	var (
		sc      *locator.Scanner
		content func(locator.Span) ([]byte, error)
		closers = []io.Closer{p}
	)

	if p.hdr.Level == compression.None {
		sc = locator.New(io.NewSectionReader(p.f, p.hdr.Len, p.hdr.Size), title,
			locator.WithOffset(p.hdr.Len),
			locator.WithChunkSize(db.scanChunkSize),
		)
		content = func(s locator.Span) ([]byte, error) {
			buf := make([]byte, s.Length)
			n, err := p.f.ReadAt(buf, s.ContentStart)
			if n < len(buf) {
				return nil, fmt.Errorf("read %q content: %w", s.Title, errors.Join(io.ErrUnexpectedEOF, err))
			}
			return buf, nil
		}
	} else {
		sc = locator.New(p.rc, title, locator.WithChunkSize(db.scanChunkSize))

		// compressed payload is not seekable, contents are read from the
		// second decompressed stream following the first one
		second, err := db.openPayload()
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		closers = append(closers, second)

		content = func(s locator.Span) ([]byte, error) {
			if err := second.c.Skip(s.ContentStart-second.c.Pos(), op, "preceding records"); err != nil {
				return nil, err
			}
			return second.c.ReadFull(s.Length, op, "sub-record content")
		}
	}

	dec := db.decoder(maintainBorrows)

	return &Records{
		next: func() (entity.Record, error) {
			if !sc.Next() {
				if err := sc.Err(); err != nil {
					return nil, err
				}
				return nil, io.EOF
			}
			s := sc.Span()

			data, err := content(s)
			if err != nil {
				return nil, err
			}

			rec, err := dec.DecodeRecord(s.Marker, s.Title, data)
			if err != nil {
				return nil, err
			}

			db.mtx.Lock()
			db.put(rec)
			db.mtx.Unlock()

			if p.hdr.Level == compression.None {
				db.rememberSpan(subHeader(s))
			}
			db.metrics.AddRecords(op, 1)

			return rec, nil
		},
		close: func() error {
			var errs []error
			for i := range closers {
				errs = append(errs, closers[i].Close())
			}
			return errors.Join(errs...)
		},
	}, nil
}

func subHeader(s locator.Span) codec.SubHeader {
	return codec.SubHeader{
		Marker:       s.Marker,
		Title:        s.Title,
		Length:       s.Length,
		Start:        s.Start,
		ContentStart: s.ContentStart,
	}
}

// rememberSpan caches on-disk position of an uncompressed sub-record.
func (db *DB) rememberSpan(h codec.SubHeader) {
	if db.spans != nil {
		db.spans.Add(h.Title, h)
	}
}

// cachedSpan returns remembered span if it still describes the sub-record
// titled title in f.
func (db *DB) cachedSpan(f io.ReaderAt, title string, end int64) (codec.SubHeader, bool) {
	if db.spans == nil {
		return codec.SubHeader{}, false
	}

	h, ok := db.spans.Get(title)
	if !ok {
		db.metrics.IncSpanCacheMiss()
		return codec.SubHeader{}, false
	}

	actual, err := codec.ReadSubHeaderAt(f, h.Start, end)
	if err != nil || actual != h {
		db.spans.Remove(title)
		db.metrics.IncSpanCacheMiss()
		return codec.SubHeader{}, false
	}

	db.metrics.IncSpanCacheHit()
	return h, true
}
