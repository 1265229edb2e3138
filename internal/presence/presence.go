// Package presence tracks the connections currently signalling that
// they are typing. Members are connection ids, so a display name
// change never moves an entry. It is not safe for concurrent use.
package presence

import (
	"github.com/samber/lo"
)

// Tracker represents an insertion-ordered set of typing connection ids
type Tracker struct {
	members map[string]bool
	order   []string
}

// New returns a pointer to an empty Tracker
func New() *Tracker {
	return &Tracker{
		members: make(map[string]bool),
		order:   []string{},
	}
}

// Mark adds id, reporting whether it was newly added
func (t *Tracker) Mark(id string) bool {

	if id == "" || t.members[id] {
		return false
	}

	t.members[id] = true
	t.order = append(t.order, id)

	return true
}

// Clear removes id, reporting whether it was present
func (t *Tracker) Clear(id string) bool {

	if !t.members[id] {
		return false
	}

	delete(t.members, id)
	t.order = lo.Without(t.order, id)

	return true
}

// Has reports whether id is typing
func (t *Tracker) Has(id string) bool {
	return t.members[id]
}

// Snapshot returns every typing id in the order they started
func (t *Tracker) Snapshot() []string {
	s := make([]string, len(t.order))
	copy(s, t.order)
	return s
}

// Len returns the number of typing connections
func (t *Tracker) Len() int {
	return len(t.order)
}
