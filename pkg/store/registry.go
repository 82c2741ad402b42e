package store

import "fmt"

// Registry is a static, name-indexed collection of entity-type facades
// built once from a map of typedefs. It is immutable after
// construction: there is no method to register a type after the
// registry has been handed to callers. Facades reach sibling facades
// through the registry rather than direct pointers, which is what
// lets cascades traverse the relation graph without the typedefs
// themselves needing to hold cyclic references (design note: "arena +
// index").
type Registry struct {
	typedefs map[string]Typedef
	types    map[string]*EntityType
}

// NewRegistry builds a registry from typedefs, one facade per entry.
// Every facade is constructed before any is returned to the caller so
// that cross-type cascades can resolve sibling facades immediately.
func NewRegistry(typedefs map[string]Typedef) *Registry {
	reg := &Registry{
		typedefs: make(map[string]Typedef, len(typedefs)),
		types:    make(map[string]*EntityType, len(typedefs)),
	}
	for name, td := range typedefs {
		reg.typedefs[name] = td
		et := &EntityType{typedef: td, registry: reg}
		et.Initial = InitialBucket{entity: et}
		et.Current = CurrentBucket{entity: et}
		et.Deleted = DeletedBucket{entity: et}
		reg.types[name] = et
	}
	return reg
}

// EntityType returns the facade for the named entity type, or
// ErrUnregisteredType if no typedef was registered under that name.
func (r *Registry) EntityType(name string) (*EntityType, error) {
	et, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnregisteredType, name)
	}
	return et, nil
}

// TypeNames returns the names of every registered entity type, in no
// particular order.
func (r *Registry) TypeNames() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}
