package codec

import (
	"fmt"

	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
)

// EncodeRecord serializes top-level record as a framed sub-record: header
// and content. The inter-record separator is not included.
func EncodeRecord(rec entity.Record) ([]byte, error) {
	if err := entity.CheckTitle(rec.Title()); err != nil {
		return nil, err
	}

	content, err := rec.Content()
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", rec.Title(), err)
	}

	res := make([]byte, 0, int(HeaderLen(rec.Title(), int64(len(content))))+len(content))
	res = AppendSubHeader(res, rec.Marker(), rec.Title(), len(content))
	return append(res, content...), nil
}

// SplitRecord splits encoded sub-record into header and content.
func SplitRecord(rec []byte) (header, content []byte) {
	for i := range rec {
		if rec[i] == lengthTerminator {
			return rec[:i+1], rec[i+1:]
		}
	}
	return rec, nil
}
