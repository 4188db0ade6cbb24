package cmdprinter

import (
	"crypto/sha256"
	"fmt"
	"strconv"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/recstore/pkg/recstore/codec"
	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/spf13/cobra"
)

// Kind returns human-readable record type.
func Kind(rec entity.Record) string {
	switch rec.(type) {
	case *entity.Group:
		return "group"
	case *entity.Blob:
		return "blob"
	default:
		return "unknown"
	}
}

// Digest returns base58-encoded SHA-256 of the framed record.
func Digest(rec entity.Record) (string, error) {
	data, err := codec.EncodeRecord(rec)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return base58.Encode(sum[:]), nil
}

// Payload renders member payload: quoted bytes or `@<name>` for references.
func Payload(p entity.Payload) string {
	switch v := p.(type) {
	case entity.Bytes:
		return strconv.Quote(string(v))
	case *entity.Reference:
		return "@" + v.Name()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// PrettyPrintRecord prints record with given indent. Group members are
// listed one per line, blob values are printed with %v.
func PrettyPrintRecord(cmd *cobra.Command, rec entity.Record, indent string) error {
	content, err := rec.Content()
	if err != nil {
		return err
	}

	cmd.Printf("%s%s %q (%d bytes)\n", indent, Kind(rec), rec.Title(), len(content))

	switch v := rec.(type) {
	case *entity.Group:
		for i, key := range v.Names() {
			m, _ := v.At(i)
			if _, pinned := m.(*entity.Pin); pinned {
				key = "!" + key
			}
			cmd.Printf("%s\t%s: %s\n", indent, key, Payload(m.Payload()))
		}
	case *entity.Blob:
		if b, ok := v.Value().([]byte); ok {
			cmd.Printf("%s\t%q\n", indent, b)
		} else {
			cmd.Printf("%s\t%v\n", indent, v.Value())
		}
	}

	return nil
}
