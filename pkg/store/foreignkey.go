package store

import "fmt"

// ForeignKeyGet reads the value at the foreign-key path declared for
// relName on this entity type, per §4.7. The second return value is
// false if relName is not a declared foreign key or the path is
// absent on the record.
func (e *EntityType) ForeignKeyGet(record Record, relName string) (any, bool) {
	path, ok := e.typedef.ForeignKeys[relName]
	if !ok {
		return nil, false
	}
	return path.Get(record)
}

// ForeignKeySet builds a new record with the foreign-key path for
// relName overwritten to value, writes it into current under the
// record's own primary key, and returns the updated store alongside
// the new record.
func (e *EntityType) ForeignKeySet(v Value, relName string, record Record, value any) (Value, Record, error) {
	path, ok := e.typedef.ForeignKeys[relName]
	if !ok {
		return v, nil, fmt.Errorf("%w: %s declares no foreign key named %q", ErrUnregisteredType, e.typedef.Name, relName)
	}
	newRecord := path.Set(record, value)
	key, hasKey := e.KeyFor(newRecord)
	if !hasKey {
		return v, nil, fmt.Errorf("%w: %s record has no value at key path", ErrMissingKey, e.typedef.Name)
	}
	out := v
	out.Current = bucketSet(v.Current, e.typedef.Name, key, newRecord)
	return out, cloneRecord(newRecord), nil
}
