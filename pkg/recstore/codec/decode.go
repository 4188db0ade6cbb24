package codec

import (
	"bytes"
	"fmt"

	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
)

// Decoder restores records from their serialized form.
//
// Members are registered in both indices: constructed ones in Authoring (so
// that they can be borrowed and re-encoded), all of them in Parse (so that
// later lines can reference them). Parse is never reset by the Decoder.
type Decoder struct {
	Authoring *entity.Index
	Parse     *entity.Index

	// MaintainBorrows selects borrow resolution policy. If set, a borrowed
	// member is decoded into a new member referencing the borrowed one.
	// Otherwise the borrowed member itself is stored under the new name, so
	// both names alias one in-memory entity and mutations through either
	// name are visible through both.
	MaintainBorrows bool

	// BlobCodec deserializes blob contents, entity.RawCodec if nil.
	BlobCodec entity.BlobCodec
}

// Next reads the next framed sub-record from c and decodes it. The record
// separator is consumed too. It returns io.EOF if there are no more records.
func (d *Decoder) Next(c *Cursor) (entity.Record, SubHeader, error) {
	h, err := ReadSubHeader(c)
	if err != nil {
		return nil, SubHeader{}, err
	}

	content, err := c.ReadFull(h.Length, "construct_sub_header", "sub-record content")
	if err != nil {
		return nil, h, err
	}

	rec, err := d.DecodeRecord(h.Marker, h.Title, content)
	if err != nil {
		return nil, h, err
	}

	return rec, h, SkipSeparator(c)
}

// DecodeRecord decodes record content according to its marker.
func (d *Decoder) DecodeRecord(marker byte, title string, content []byte) (entity.Record, error) {
	switch marker {
	case entity.MarkerGroup:
		return d.DecodeGroup(title, content)
	case entity.MarkerBlob:
		return entity.DecodeBlob(title, content, d.BlobCodec)
	default:
		return nil, recerr.SubHeader("construct_sub_header", "invalid sub-header '%c'", marker)
	}
}

// DecodeGroup decodes group content: member lines joined with '\n'.
func (d *Decoder) DecodeGroup(title string, content []byte) (*entity.Group, error) {
	const op = "load_cluster"

	g, err := entity.NewGroup(title)
	if err != nil {
		return nil, err
	}

	for pos := 0; pos < len(content); {
		if pos > 0 {
			if content[pos] != '\n' {
				return nil, recerr.Buffer(op, "missing member separator at %d of %q", pos, title)
			}
			pos++
		}

		pinned := pos < len(content) && content[pos] == '!'
		var name string
		if pinned {
			pos++
		} else {
			i := bytes.IndexByte(content[pos:], ';')
			if i < 0 {
				return nil, recerr.Buffer(op, "too few bytes to read member name in %q", title)
			}
			name = string(content[pos : pos+i])
			pos += i + 1
		}

		i := bytes.IndexByte(content[pos:], 0)
		if i < 0 {
			return nil, recerr.Buffer(op, "too few bytes to read member value in %q", title)
		}
		payload := content[pos : pos+i]
		pos += i + 1

		if pinned {
			name = d.pinName(g)
		}

		m, err := d.makeMember(pinned, name, payload)
		if err != nil {
			return nil, err
		}
		if err := g.Set(name, m); err != nil {
			return nil, fmt.Errorf("decode member of %q: %w", title, err)
		}
	}

	return g, nil
}

func (d *Decoder) makeMember(pinned bool, name string, payload []byte) (entity.Member, error) {
	var p entity.Payload = entity.Bytes(payload)

	if len(payload) > 0 && payload[0] == '@' {
		target := string(payload[1:])
		prior, ok := d.Parse.Get(target)
		if !ok {
			return nil, recerr.Borrow("make_value", "unable to borrow %q for %q, as it is not initialized", target, name)
		}
		if !d.MaintainBorrows {
			d.Parse.Put(name, prior)
			return prior, nil
		}
		p = prior.Borrow()
	}

	var (
		m   entity.Member
		err error
	)
	if pinned {
		m, err = entity.NewNamedPin(d.Authoring, name, p)
	} else {
		m, err = entity.NewValue(d.Authoring, name, p)
	}
	if err != nil {
		return nil, fmt.Errorf("decode member %q: %w", name, err)
	}
	d.Parse.Put(name, m)

	return m, nil
}

func (d *Decoder) pinName(g *entity.Group) string {
	for n := d.Authoring.Len(); ; n++ {
		name := entity.PinName(n)
		if _, ok := d.Authoring.Get(name); ok {
			continue
		}
		if _, ok := d.Parse.Get(name); ok {
			continue
		}
		if g.Contains(name) {
			continue
		}
		return name
	}
}
