package entity

import (
	"strings"
)

// Group is a named insertion-ordered collection of members. Inserting under
// an existing key replaces the member in place.
type Group struct {
	title   string
	keys    []string
	members map[string]Member
}

// NewGroup creates a Group titled title holding members under their names.
func NewGroup(title string, members ...Member) (*Group, error) {
	if err := CheckTitle(title); err != nil {
		return nil, err
	}

	g := &Group{
		title:   title,
		members: make(map[string]Member, len(members)),
	}
	for i := range members {
		g.Add(members[i])
	}

	return g, nil
}

// Title implements Record.
func (g *Group) Title() string { return g.title }

// Marker implements Record.
func (g *Group) Marker() byte { return MarkerGroup }

// Add puts m under its own name.
func (g *Group) Add(m Member) {
	g.put(m.Name(), m)
}

// Set puts m under key which may differ from m's name. Both keys then alias
// the same member.
func (g *Group) Set(key string, m Member) error {
	if err := CheckName(key); err != nil {
		return err
	}
	g.put(key, m)
	return nil
}

func (g *Group) put(key string, m Member) {
	if _, ok := g.members[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.members[key] = m
}

// Get returns the member stored under key.
func (g *Group) Get(key string) (Member, bool) {
	m, ok := g.members[key]
	return m, ok
}

// At returns i-th member in insertion order.
func (g *Group) At(i int) (Member, bool) {
	if i < 0 || i >= len(g.keys) {
		return nil, false
	}
	return g.members[g.keys[i]], true
}

// Contains checks whether there is a member under key.
func (g *Group) Contains(key string) bool {
	_, ok := g.members[key]
	return ok
}

// Delete removes the member stored under key.
func (g *Group) Delete(key string) bool {
	if _, ok := g.members[key]; !ok {
		return false
	}
	delete(g.members, key)
	for i := range g.keys {
		if g.keys[i] == key {
			g.keys = append(g.keys[:i], g.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns number of members.
func (g *Group) Len() int { return len(g.keys) }

// Names returns member keys in insertion order.
func (g *Group) Names() []string {
	return append([]string(nil), g.keys...)
}

// Content implements Record. Member lines are joined with '\n'.
func (g *Group) Content() ([]byte, error) {
	var (
		res []byte
		err error
	)
	for i, key := range g.keys {
		if i > 0 {
			res = append(res, lineSeparator)
		}
		res, err = g.members[key].AppendLine(res, key)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (g *Group) String() string {
	var sb strings.Builder
	sb.WriteString(g.title)
	for _, key := range g.keys {
		sb.WriteString("\n> ")
		sb.WriteString(key)
	}
	return sb.String()
}
