package store

import "fmt"

// InitialBucket is the accessor for one entity type's baseline
// records — the server's last-known values, per §4.4.
type InitialBucket struct {
	entity *EntityType
}

// Get reads the baseline record for key, if any.
func (b InitialBucket) Get(v Value, key Key) (Record, bool) {
	return bucketGet(v.Initial, b.entity.typedef.Name, key)
}

// GetAll returns every baseline record of this type, keyed by
// primary key.
func (b InitialBucket) GetAll(v Value) map[Key]Record {
	return bucketGetAll(v.Initial, b.entity.typedef.Name)
}

// Set writes record as the baseline at key. Writing a baseline means
// "this is the new accepted value", so any pending current-side edit
// for that key is discarded via Current.Reject.
func (b InitialBucket) Set(v Value, key Key, record Record) Value {
	out := v
	out.Initial = bucketSet(v.Initial, b.entity.typedef.Name, key, record)
	return b.entity.Current.Reject(out, key)
}

// Load raises each record, reads its primary key, and applies Set.
// After Load, every loaded record has an equal initial and current
// value and no deleted-bucket entry. Load is how externally-obtained
// data enters the store; it fails with ErrMissingKey (and leaves the
// store untouched) if any record lacks a value at the key path.
func (b InitialBucket) Load(v Value, records []any) (Value, error) {
	out := v
	for _, raw := range records {
		rec := b.entity.Raise(raw)
		key, ok := b.entity.KeyFor(rec)
		if !ok {
			return v, fmt.Errorf("%w: %s load", ErrMissingKey, b.entity.typedef.Name)
		}
		out = b.Set(out, key, rec)
	}
	return out, nil
}
