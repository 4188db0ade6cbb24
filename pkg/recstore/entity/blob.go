package entity

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// BlobCodec serializes opaque blob values.
type BlobCodec interface {
	Marshal(any) ([]byte, error)
	Unmarshal([]byte) (any, error)
}

// Blob is a named wrapper around an opaque value serialized by a BlobCodec.
type Blob struct {
	title string
	value any
	codec BlobCodec
}

// NewBlob creates a Blob titled title. RawCodec is used if codec is nil.
func NewBlob(title string, value any, codec BlobCodec) (*Blob, error) {
	if err := CheckTitle(title); err != nil {
		return nil, err
	}
	if codec == nil {
		codec = RawCodec{}
	}
	return &Blob{
		title: title,
		value: value,
		codec: codec,
	}, nil
}

// DecodeBlob restores a Blob from its serialized content.
func DecodeBlob(title string, content []byte, codec BlobCodec) (*Blob, error) {
	b, err := NewBlob(title, nil, codec)
	if err != nil {
		return nil, err
	}
	b.value, err = b.codec.Unmarshal(content)
	if err != nil {
		return nil, fmt.Errorf("unmarshal blob %q: %w", title, err)
	}
	return b, nil
}

// Title implements Record.
func (b *Blob) Title() string { return b.title }

// Marker implements Record.
func (b *Blob) Marker() byte { return MarkerBlob }

// Value returns the wrapped value.
func (b *Blob) Value() any { return b.value }

// SetValue replaces the wrapped value.
func (b *Blob) SetValue(v any) { b.value = v }

// Content implements Record.
func (b *Blob) Content() ([]byte, error) {
	data, err := b.codec.Marshal(b.value)
	if err != nil {
		return nil, fmt.Errorf("marshal blob %q: %w", b.title, err)
	}
	return data, nil
}

func (b *Blob) String() string {
	return fmt.Sprint(b.value)
}

// RawCodec stores []byte and string values as is. Values are always
// decoded as []byte.
type RawCodec struct{}

// Marshal implements BlobCodec.
func (RawCodec) Marshal(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("raw codec: unsupported value type %T", v)
	}
}

// Unmarshal implements BlobCodec.
func (RawCodec) Unmarshal(data []byte) (any, error) {
	return append([]byte{}, data...), nil
}

// YAMLCodec stores values in YAML. Decoded values are generic YAML trees
// (maps, slices and scalars).
type YAMLCodec struct{}

// Marshal implements BlobCodec.
func (YAMLCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal implements BlobCodec.
func (YAMLCodec) Unmarshal(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
