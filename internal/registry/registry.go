// Package registry records which connection owns each display name.
// Names are compared in their case-folded canonical form, and listed
// in the order they were claimed.
//
// A Registry is not safe for concurrent use; its owner serialises access.
package registry

import (
	"github.com/samber/lo"
	"golang.org/x/text/cases"
)

type claim struct {
	name  string // as registered, for display
	owner string
}

// Registry represents the set of claimed display names
type Registry struct {
	// claims by canonical name
	claims map[string]claim

	// canonical names in claim order
	order []string

	fold cases.Caser
}

// New returns a pointer to an empty Registry
func New() *Registry {
	return &Registry{
		claims: make(map[string]claim),
		order:  []string{},
		fold:   cases.Fold(),
	}
}

// Canonical returns the form of name used for uniqueness comparison
func (r *Registry) Canonical(name string) string {
	return r.fold.String(name)
}

// TryClaim claims name for owner, returning false without change
// if the name is empty or its canonical form is already claimed
func (r *Registry) TryClaim(name, owner string) bool {

	if name == "" {
		return false
	}

	key := r.Canonical(name)

	if _, ok := r.claims[key]; ok {
		return false
	}

	r.claims[key] = claim{name: name, owner: owner}
	r.order = append(r.order, key)

	return true
}

// Release removes the claim on name, reporting whether there was one
func (r *Registry) Release(name string) bool {

	key := r.Canonical(name)

	if _, ok := r.claims[key]; !ok {
		return false
	}

	delete(r.claims, key)
	r.order = lo.Without(r.order, key)

	return true
}

// ReleaseOwner removes whichever claim owner holds, returning the
// released display name
func (r *Registry) ReleaseOwner(owner string) (string, bool) {

	key, ok := lo.Find(r.order, func(k string) bool {
		return r.claims[k].owner == owner
	})

	if !ok {
		return "", false
	}

	name := r.claims[key].name
	delete(r.claims, key)
	r.order = lo.Without(r.order, key)

	return name, true
}

// Owner returns the owner of name, if claimed
func (r *Registry) Owner(name string) (string, bool) {
	c, ok := r.claims[r.Canonical(name)]
	return c.owner, ok
}

// Snapshot returns the claimed display names in claim order
func (r *Registry) Snapshot() []string {
	return lo.Map(r.order, func(k string, _ int) string {
		return r.claims[k].name
	})
}

// Len returns the number of claimed names
func (r *Registry) Len() int {
	return len(r.order)
}
