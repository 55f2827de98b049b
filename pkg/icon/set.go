package icon

import (
	"errors"
	"fmt"
)

// ErrDuplicateName is returned when a Set already holds an icon with the
// same name.
var ErrDuplicateName = errors.New("duplicate icon name")

// Set is the ordered, name-indexed collection of icons produced by one DSL
// evaluation. Each evaluation builds a new Set; it is not shared.
type Set struct {
	specs     []Spec
	nameIndex map[string]int
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{nameIndex: make(map[string]int)}
}

// Add appends a spec. Unnamed specs get "icon-N" where N is their position,
// starting at 1.
func (s *Set) Add(spec Spec) error {
	if spec.Name == "" {
		spec.Name = fmt.Sprintf("icon-%d", len(s.specs)+1)
	}
	if _, ok := s.nameIndex[spec.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, spec.Name)
	}
	s.nameIndex[spec.Name] = len(s.specs)
	s.specs = append(s.specs, spec)
	return nil
}

// Lookup returns the spec with the given name.
func (s *Set) Lookup(name string) (Spec, bool) {
	i, ok := s.nameIndex[name]
	if !ok {
		return Spec{}, false
	}
	return s.specs[i], true
}

// Specs returns the specs in insertion order. The slice is a copy.
func (s *Set) Specs() []Spec {
	out := make([]Spec, len(s.specs))
	copy(out, s.specs)
	return out
}

// Len returns the number of icons.
func (s *Set) Len() int {
	return len(s.specs)
}
