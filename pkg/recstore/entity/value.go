package entity

import (
	"strconv"
)

// Value is a named member holding literal bytes or a reference to another
// member. It is registered in the authoring index upon creation.
type Value struct {
	idx     *Index
	name    string
	payload Payload
}

// NewValue creates a Value and registers it in idx under name replacing any
// previously registered member with the same name.
func NewValue(idx *Index, name string, p Payload) (*Value, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	if err := checkPayload(p); err != nil {
		return nil, err
	}

	v := &Value{
		idx:     idx,
		name:    name,
		payload: p,
	}
	idx.Put(name, v)

	return v, nil
}

// Name implements Member.
func (v *Value) Name() string { return v.name }

// Payload implements Member.
func (v *Value) Payload() Payload { return v.payload }

// SetPayload implements Member.
func (v *Value) SetPayload(p Payload) error {
	if err := checkPayload(p); err != nil {
		return err
	}
	v.payload = p
	return nil
}

// Borrow implements Member.
func (v *Value) Borrow() *Reference {
	return newReference(v, v.idx)
}

// AppendLine implements Member. The line is `<key>;<payload>\0`.
func (v *Value) AppendLine(dst []byte, key string) ([]byte, error) {
	dst = append(dst, key...)
	dst = append(dst, nameTerminator)
	dst, err := v.payload.appendPayload(dst)
	if err != nil {
		return nil, err
	}
	return append(dst, lineTerminator), nil
}

func (v *Value) String() string { return v.name }

// Pin is a member rendered without its name. Decoded pins get generated
// names.
type Pin struct {
	Value
}

const pinNamePrefix = "PIN"

// NewPin creates a Pin with a generated `PIN<N>` name where N is the current
// size of idx.
func NewPin(idx *Index, p Payload) (*Pin, error) {
	return NewNamedPin(idx, NextPinName(idx), p)
}

// NewNamedPin creates a Pin registered in idx under the given name.
func NewNamedPin(idx *Index, name string, p Payload) (*Pin, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	if err := checkPayload(p); err != nil {
		return nil, err
	}

	pin := &Pin{Value{
		idx:     idx,
		name:    name,
		payload: p,
	}}
	idx.Put(name, pin)

	return pin, nil
}

// NextPinName returns the first free `PIN<N>` name starting from N equal to
// the current size of idx.
func NextPinName(idx *Index) string {
	n := idx.Len()
	for {
		name := PinName(n)
		if _, ok := idx.Get(name); !ok {
			return name
		}
		n++
	}
}

// Borrow implements Member.
func (p *Pin) Borrow() *Reference {
	return newReference(p, p.idx)
}

// AppendLine implements Member. The line is `!<payload>\0`, key is not
// serialized.
func (p *Pin) AppendLine(dst []byte, _ string) ([]byte, error) {
	dst = append(dst, pinMarker)
	dst, err := p.payload.appendPayload(dst)
	if err != nil {
		return nil, err
	}
	return append(dst, lineTerminator), nil
}

// PinName returns generated pin name with number n.
func PinName(n int) string {
	return pinNamePrefix + strconv.Itoa(n)
}
