package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emirpasic/gods/sets/linkedhashset"
)

var (
	ErrUnknownType     = errors.New("unknown type")
	ErrDuplicateType   = errors.New("duplicate type")
	ErrCyclicHierarchy = errors.New("cyclic type hierarchy")
	ErrSealed          = errors.New("type registry is sealed")
	ErrUnknownObject   = errors.New("unknown object")
	ErrDuplicateObject = errors.New("duplicate object")
)

// TypeRegistry is the arena of type descriptors. Once sealed, every type's
// ancestor closure is computed and the registry is read-only.
type TypeRegistry struct {
	order   []string
	direct  map[string][]string
	closure map[string][]string
	sealed  bool
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		direct:  make(map[string][]string),
		closure: make(map[string][]string),
	}
}

// Declare adds a type with its direct supertypes, nearest first.
func (r *TypeRegistry) Declare(name string, supertypes ...string) error {
	if r.sealed {
		return fmt.Errorf("declare %s: %w", name, ErrSealed)
	}
	if name == "" {
		return fmt.Errorf("declare: empty type name: %w", ErrUnknownType)
	}
	if _, exists := r.direct[name]; exists {
		return fmt.Errorf("declare %s: %w", name, ErrDuplicateType)
	}
	r.order = append(r.order, name)
	r.direct[name] = append([]string(nil), supertypes...)
	return nil
}

// Seal validates the hierarchy and precomputes every ancestor closure.
// Sealing an already sealed registry is a no-op.
func (r *TypeRegistry) Seal() error {
	if r.sealed {
		return nil
	}
	for _, name := range r.order {
		for _, super := range r.direct[name] {
			if _, ok := r.direct[super]; !ok {
				return fmt.Errorf("type %s extends %s: %w", name, super, ErrUnknownType)
			}
		}
	}
	visiting := make(map[string]bool)
	for _, name := range r.order {
		if _, err := r.computeClosure(name, visiting, nil); err != nil {
			return err
		}
	}
	r.sealed = true
	return nil
}

func (r *TypeRegistry) computeClosure(name string, visiting map[string]bool, path []string) ([]string, error) {
	if cached, ok := r.closure[name]; ok {
		return cached, nil
	}
	path = append(path, name)
	if visiting[name] {
		return nil, fmt.Errorf("%s: %w", strings.Join(path, " -> "), ErrCyclicHierarchy)
	}
	visiting[name] = true
	defer delete(visiting, name)

	set := linkedhashset.New()
	for _, super := range r.direct[name] {
		ancestors, err := r.computeClosure(super, visiting, path)
		if err != nil {
			return nil, err
		}
		set.Add(super)
		for _, ancestor := range ancestors {
			set.Add(ancestor)
		}
	}
	closure := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		closure = append(closure, v.(string))
	}
	r.closure[name] = closure
	return closure, nil
}

// Closure returns the cached ancestor closure of name, nearest first,
// excluding name itself.
func (r *TypeRegistry) Closure(name string) ([]string, error) {
	if !r.sealed {
		if err := r.Seal(); err != nil {
			return nil, err
		}
	}
	closure, ok := r.closure[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownType)
	}
	return closure, nil
}

// Types lists declared type names in declaration order.
func (r *TypeRegistry) Types() []string {
	return append([]string(nil), r.order...)
}

// Supertypes lists the direct supertypes of name.
func (r *TypeRegistry) Supertypes(name string) []string {
	return append([]string(nil), r.direct[name]...)
}
