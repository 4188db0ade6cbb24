package entity

import (
	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
)

// Reference is a non-owning pointer to a previously created member. It is
// resolved by name through the index at serialization time.
//
// References must not form cycles. This is not validated.
type Reference struct {
	target Member
	idx    *Index
}

func newReference(target Member, idx *Index) *Reference {
	return &Reference{
		target: target,
		idx:    idx,
	}
}

// Name returns the name of the referenced member.
func (r *Reference) Name() string { return r.target.Name() }

// Target returns the referenced member.
func (r *Reference) Target() Member { return r.target }

// Resolve looks the referenced member up in the index.
func (r *Reference) Resolve() (Member, error) {
	name := r.target.Name()
	m, ok := r.idx.Get(name)
	if !ok {
		return nil, recerr.Borrow("eval", "unable to borrow %q as it is not initialized", name)
	}
	return m, nil
}

// Eval returns serialized reference: `@<name>`.
func (r *Reference) Eval() ([]byte, error) {
	return r.appendPayload(nil)
}

func (r *Reference) appendPayload(dst []byte) ([]byte, error) {
	m, err := r.Resolve()
	if err != nil {
		return nil, err
	}
	dst = append(dst, refMarker)
	return append(dst, m.Name()...), nil
}

func (r *Reference) String() string {
	return string(refMarker) + r.target.Name()
}
