package entity

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/recstore/pkg/recstore/index"
)

// Index is a name registry of group members.
type Index = index.Registry[Member]

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return index.New[Member]()
}

// Sub-record type markers.
const (
	MarkerGroup byte = '='
	MarkerBlob  byte = '?'
)

// Framing characters of member lines.
const (
	pinMarker      = '!'
	refMarker      = '@'
	nameTerminator = ';'
	lineTerminator = 0
	lineSeparator  = '\n'
)

var (
	// ErrInvalidName is returned for names and titles that collide with the
	// file framing.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidPayload is returned for literal payloads that collide with
	// the file framing.
	ErrInvalidPayload = errors.New("invalid payload")
)

// Record is a top-level entity of a database: a Group or a Blob.
type Record interface {
	// Title returns unique name of the record in the database.
	Title() string
	// Marker returns sub-record type marker.
	Marker() byte
	// Content returns serialized record body without the sub-record header.
	Content() ([]byte, error)
}

// Member is an entity that can be put into a Group: a Value or a Pin.
type Member interface {
	fmt.Stringer

	// Name returns the name the member was registered with.
	Name() string
	// Payload returns current payload: Bytes or *Reference.
	Payload() Payload
	// SetPayload replaces the payload.
	SetPayload(Payload) error
	// Borrow returns a reference to the member.
	Borrow() *Reference
	// AppendLine appends serialized member line to dst. Key is the name the
	// member is stored under in the group, it may differ from Name for
	// aliased members.
	AppendLine(dst []byte, key string) ([]byte, error)
}

// Payload is a member payload: either literal Bytes or a *Reference.
type Payload interface {
	appendPayload(dst []byte) ([]byte, error)
}

// Bytes is a literal member payload.
type Bytes []byte

func (b Bytes) appendPayload(dst []byte) ([]byte, error) {
	return append(dst, b...), nil
}

// CheckName checks that member name can be framed.
func CheckName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name[0] == pinMarker:
		return fmt.Errorf("%w: %q starts with pin marker", ErrInvalidName, name)
	case strings.ContainsAny(name, ";\n\x00"):
		return fmt.Errorf("%w: %q contains framing characters", ErrInvalidName, name)
	}
	return nil
}

// CheckTitle checks that record title can be framed.
func CheckTitle(title string) error {
	switch {
	case title == "":
		return fmt.Errorf("%w: empty title", ErrInvalidName)
	case strings.ContainsAny(title, ":\n"):
		return fmt.Errorf("%w: title %q contains framing characters", ErrInvalidName, title)
	}
	return nil
}

func checkPayload(p Payload) error {
	switch v := p.(type) {
	case Bytes:
		switch {
		case len(v) > 0 && v[0] == refMarker:
			return fmt.Errorf("%w: literal starts with reference marker", ErrInvalidPayload)
		case bytes.IndexByte(v, lineTerminator) >= 0:
			return fmt.Errorf("%w: literal contains NUL", ErrInvalidPayload)
		}
		return nil
	case *Reference:
		if v != nil {
			return nil
		}
	}
	return fmt.Errorf("%w: nil", ErrInvalidPayload)
}
