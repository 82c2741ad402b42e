package store

import (
	"fmt"
	"sort"
)

// EntityType bundles the three bucket accessors for one entity type
// along with the relational helpers (Parents/Children) and the State
// classifier, per §4.3. It holds a back-reference to the owning
// Registry so cascades can reach sibling facades by name.
type EntityType struct {
	Initial InitialBucket
	Current CurrentBucket
	Deleted DeletedBucket

	typedef  Typedef
	registry *Registry
}

// Name returns the entity type's name.
func (e *EntityType) Name() string { return e.typedef.Name }

// Raise normalizes a plain record or an already-raised Record to the
// immutable form. Idempotent.
func (e *EntityType) Raise(v any) Record { return raise(v) }

// KeyFor reads the primary key at the typedef's key path. The second
// return value is false if the record has no value there.
func (e *EntityType) KeyFor(record Record) (Key, bool) {
	return e.typedef.Key.Get(record)
}

// State classifies a record by the rules in §3: UNCHANGED, MODIFIED,
// NEW, or DELETED. It returns ErrUnknownState if the record (by its
// own key) is absent from both initial and current for this type.
func (e *EntityType) State(v Value, record Record) (State, error) {
	key, ok := e.KeyFor(record)
	if !ok {
		return UnknownState, fmt.Errorf("%w: %s record has no value at key path", ErrUnknownState, e.typedef.Name)
	}
	return e.stateForKey(v, key)
}

func (e *EntityType) stateForKey(v Value, key Key) (State, error) {
	curRec, curOK := bucketGet(v.Current, e.typedef.Name, key)
	initRec, initOK := bucketGet(v.Initial, e.typedef.Name, key)
	if !curOK && !initOK {
		return UnknownState, fmt.Errorf("%w: type=%s key=%v", ErrUnknownState, e.typedef.Name, key)
	}
	if _, delOK := bucketGet(v.Deleted, e.typedef.Name, key); delOK {
		return Deleted, nil
	}
	switch {
	case curOK && !initOK:
		return NewState, nil
	case !curOK && initOK:
		// Defensive: I3/I6 mean this shouldn't arise under normal
		// operation (delete() always leaves a tombstone in current
		// alongside the deleted-bucket entry), but a baseline with no
		// pending edit and no deletion mark is, by definition, caught
		// up with the server.
		return Unchanged, nil
	default:
		if equalRecords(curRec, initRec) {
			return Unchanged, nil
		}
		return Modified, nil
	}
}

// Parents returns the records of type relName whose primary key
// equals this record's foreign key for relName, read from current.
// Zero or more matches; an empty (not nil) map is returned when the
// foreign key is absent or resolves to nothing.
func (e *EntityType) Parents(v Value, relName string, record Record) (map[Key]Record, error) {
	path, ok := e.typedef.ForeignKeys[relName]
	if !ok {
		return nil, fmt.Errorf("%w: %s declares no foreign key named %q", ErrUnregisteredType, e.typedef.Name, relName)
	}
	if _, err := e.registry.EntityType(relName); err != nil {
		return nil, err
	}
	result := map[Key]Record{}
	fkValue, present := path.Get(record)
	if !present {
		return result, nil
	}
	for key, rec := range bucketGetAll(v.Current, relName) {
		if key == fkValue {
			result[key] = rec
		}
	}
	return result, nil
}

// Children returns the records of type relName whose foreign key for
// this type equals record's primary key, read from current. Zero or
// more matches.
func (e *EntityType) Children(v Value, relName string, record Record) (map[Key]Record, error) {
	path, ok := e.typedef.InverseForeignKeys[relName]
	if !ok {
		return nil, fmt.Errorf("%w: %s declares no inverse foreign key named %q", ErrUnregisteredType, e.typedef.Name, relName)
	}
	if _, err := e.registry.EntityType(relName); err != nil {
		return nil, err
	}
	result := map[Key]Record{}
	key, ok := e.KeyFor(record)
	if !ok {
		return result, nil
	}
	for childKey, rec := range bucketGetAll(v.Current, relName) {
		fkValue, present := path.Get(rec)
		if present && fkValue == key {
			result[childKey] = rec
		}
	}
	return result, nil
}

// inverseForeignKeyNames returns the names of this type's inverse-FK
// relations in a deterministic order, used to make cascade traversal
// order reproducible per §5.
func (e *EntityType) inverseForeignKeyNames() []string {
	names := make([]string, 0, len(e.typedef.InverseForeignKeys))
	for name := range e.typedef.InverseForeignKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedKeys returns a record map's keys in a deterministic order
// (lexicographic over their %v rendering), so that cascades which
// must "traverse children in their natural ordering" (§5) behave
// reproducibly regardless of Go's randomized map iteration.
func sortedKeys(records map[Key]Record) []Key {
	keys := make([]Key, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}
