// Package trait implements a specificity-ordered capability registry.
// Objects carry behavior implementations ("traits") at runtime; attaching a
// more specific implementation of a comparable trait replaces the existing
// one, so an object never holds two comparable implementations at once.
package trait

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by Holder queries.
var (
	// ErrMissing is returned when an object holds no implementation of the
	// requested trait.
	ErrMissing = errors.New("trait: not implemented")

	// ErrAmbiguous is returned when more than one comparable implementation
	// is found at query time. This indicates a registry invariant violation.
	ErrAmbiguous = errors.New("trait: ambiguous implementation")
)

// Trait is a node in the refinement hierarchy. A refined trait satisfies all
// queries for its ancestors.
type Trait struct {
	name   string
	parent *Trait
}

// New creates a root trait with no parent.
func New(name string) *Trait {
	return &Trait{name: name}
}

// Refine creates a child trait that is more specific than t.
func (t *Trait) Refine(name string) *Trait {
	return &Trait{name: name, parent: t}
}

// Name returns the trait identifier.
func (t *Trait) Name() string { return t.name }

// Refines reports whether t is other or a descendant of other.
func (t *Trait) Refines(other *Trait) bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Comparable reports whether a and b are on the same refinement chain.
func Comparable(a, b *Trait) bool {
	return a.Refines(b) || b.Refines(a)
}

// Impl is a single behavior implementation bound to at most one object.
// Concrete implementations embed ImplBase and report their trait via
// TraitKind.
type Impl interface {
	TraitKind() *Trait

	owner() any
	bind(obj any)
	unbind()
}

// ImplBase provides the owner back-reference for implementations. Embed it
// in every concrete Impl.
type ImplBase struct {
	obj any
}

// Owner returns the object this implementation is attached to, or nil.
func (b *ImplBase) Owner() any { return b.obj }

func (b *ImplBase) owner() any   { return b.obj }
func (b *ImplBase) bind(obj any) { b.obj = obj }
func (b *ImplBase) unbind()      { b.obj = nil }

// Holder stores the implementations attached to one object. The zero value
// is ready to use. Holder is not safe for concurrent mutation; a design
// graph has a single writer during a build.
type Holder struct {
	impls []Impl
}

// Attach binds impl to obj following the specificity-override rule: if a
// comparable implementation already exists, the same-or-more-specific one
// wins and the loser is unlinked. Attaching an implementation that is
// already bound elsewhere is an error.
//
// Post-condition: all held implementations are pairwise non-comparable.
func (h *Holder) Attach(obj any, impl Impl) error {
	if impl.owner() != nil {
		return fmt.Errorf("trait: %s implementation already attached", impl.TraitKind().Name())
	}
	impl.bind(obj)

	for i, existing := range h.impls {
		if !Comparable(existing.TraitKind(), impl.TraitKind()) {
			continue
		}
		// New impl same-or-more-specific: replace. Otherwise keep the
		// existing, more specific one and discard the new impl.
		if impl.TraitKind().Refines(existing.TraitKind()) {
			existing.unbind()
			h.impls[i] = impl
		} else {
			impl.unbind()
		}
		return nil
	}

	h.impls = append(h.impls, impl)
	return nil
}

// Has reports whether some attached implementation satisfies-or-refines t.
func (h *Holder) Has(t *Trait) bool {
	for _, impl := range h.impls {
		if impl.TraitKind().Refines(t) {
			return true
		}
	}
	return false
}

// Get resolves t to exactly one implementation. Zero matches is a usage
// error (ErrMissing); more than one means the attach invariant was broken
// (ErrAmbiguous).
func (h *Holder) Get(t *Trait) (Impl, error) {
	var found Impl
	for _, impl := range h.impls {
		if !impl.TraitKind().Refines(t) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguous, t.Name())
		}
		found = impl
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissing, t.Name())
	}
	return found, nil
}

// Detach unlinks the implementation satisfying t, if any, and clears its
// owner reference.
func (h *Holder) Detach(t *Trait) {
	for i, impl := range h.impls {
		if impl.TraitKind().Refines(t) {
			impl.unbind()
			h.impls = append(h.impls[:i], h.impls[i+1:]...)
			return
		}
	}
}

// GetAs resolves t and asserts the implementation to the behavior interface T.
func GetAs[T any](h *Holder, t *Trait) (T, error) {
	var zero T
	impl, err := h.Get(t)
	if err != nil {
		return zero, err
	}
	typed, ok := impl.(T)
	if !ok {
		return zero, fmt.Errorf("trait: %s implementation is %T, not %T", t.Name(), impl, zero)
	}
	return typed, nil
}
