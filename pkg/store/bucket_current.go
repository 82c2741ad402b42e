package store

import "fmt"

// CurrentBucket is the accessor for one entity type's working copy —
// the value the user is editing, per §4.5. It is the richest
// component: creation and key allocation, cascade-aware accept and
// delete, and the derived "what changed" views the observer layer's
// getters are built from.
type CurrentBucket struct {
	entity *EntityType
}

// Get reads the current record for key, if any.
func (b CurrentBucket) Get(v Value, key Key) (Record, bool) {
	return bucketGet(v.Current, b.entity.typedef.Name, key)
}

// GetAll returns every current record of this type, keyed by primary
// key.
func (b CurrentBucket) GetAll(v Value) map[Key]Record {
	return bucketGetAll(v.Current, b.entity.typedef.Name)
}

// Set writes record directly at key in current. It does not touch
// initial.
func (b CurrentBucket) Set(v Value, key Key, record Record) Value {
	out := v
	out.Current = bucketSet(v.Current, b.entity.typedef.Name, key, record)
	return out
}

// Create raises record (or an empty record if nil), allocates a
// primary key from NextKey when the raised record lacks one, writes
// it to current, and returns the updated store, the stored record,
// and its key. It does not write to initial, so the new record is
// immediately NEW.
func (b CurrentBucket) Create(v Value, record any) (Value, Record, Key) {
	rec := b.entity.Raise(record)
	out := v
	var key Key
	if existing, ok := b.entity.KeyFor(rec); ok {
		key = existing
	} else {
		key = out.NextKey
		out.NextKey--
		rec = b.entity.typedef.Key.Set(rec, key)
	}
	out.Current = bucketSet(out.Current, b.entity.typedef.Name, key, rec)
	stored, _ := bucketGet(out.Current, b.entity.typedef.Name, key)
	return out, stored, key
}

// GetAllNew returns current records whose primary key has no initial
// entry.
func (b CurrentBucket) GetAllNew(v Value) map[Key]Record {
	name := b.entity.typedef.Name
	result := map[Key]Record{}
	for key, rec := range bucketGetAll(v.Current, name) {
		if _, ok := bucketGet(v.Initial, name, key); !ok {
			result[key] = rec
		}
	}
	return result
}

// GetAllChanged returns current records that have an initial entry,
// differ from it, and are not in deleted.
func (b CurrentBucket) GetAllChanged(v Value) map[Key]Record {
	name := b.entity.typedef.Name
	result := map[Key]Record{}
	for key, rec := range bucketGetAll(v.Current, name) {
		initRec, ok := bucketGet(v.Initial, name, key)
		if !ok {
			continue
		}
		if equalRecords(rec, initRec) {
			continue
		}
		if _, deleted := bucketGet(v.Deleted, name, key); deleted {
			continue
		}
		result[key] = rec
	}
	return result
}

// GetChangedProperties returns the subset of the current record's
// fields whose values differ from the initial record's fields. If
// there is no initial value, the entire current record is returned
// (§9 open question: no baseline means everything is "changed").
func (b CurrentBucket) GetChangedProperties(v Value, key Key) Record {
	name := b.entity.typedef.Name
	curRec, ok := bucketGet(v.Current, name, key)
	if !ok {
		return Record{}
	}
	initRec, ok := bucketGet(v.Initial, name, key)
	if !ok {
		return curRec
	}
	diff := Record{}
	for field, val := range curRec {
		if baseline, present := initRec[field]; !present || !equalValues(val, baseline) {
			diff[field] = cloneValue(val)
		}
	}
	return diff
}

// Accept promotes a pending edit (or a brand-new record) to the
// baseline. recordKey is the old primary key (possibly a
// locally-allocated negative one); newRecord carries the authoritative
// value, possibly under a new primary key. If the key changes, every
// child along every inverse-FK relation has its foreign key rewritten
// to the new key before the old key is dropped from current.
func (b CurrentBucket) Accept(v Value, recordKey Key, newRecord any) (Value, error) {
	name := b.entity.typedef.Name
	newRec := b.entity.Raise(newRecord)
	newPK, ok := b.entity.KeyFor(newRec)
	if !ok {
		return v, fmt.Errorf("%w: %s accept", ErrMissingKey, name)
	}

	out := v
	if newPK != recordKey {
		referenceRecord, ok := bucketGet(out.Current, name, recordKey)
		if !ok {
			referenceRecord = b.entity.typedef.Key.Set(Record{}, recordKey)
		}
		for _, relName := range b.entity.inverseForeignKeyNames() {
			children, err := b.entity.Children(out, relName, referenceRecord)
			if err != nil {
				return v, err
			}
			childEntity, err := b.entity.registry.EntityType(relName)
			if err != nil {
				return v, err
			}
			for _, childKey := range sortedKeys(children) {
				var ferr error
				out, _, ferr = childEntity.ForeignKeySet(out, name, children[childKey], newPK)
				if ferr != nil {
					return v, ferr
				}
			}
		}
		out.Current = bucketDelete(out.Current, name, recordKey)
	}

	return b.entity.Initial.Set(out, newPK, newRec), nil
}

// Reject discards a pending edit. If an initial value exists, any
// deleted-bucket mark is cleared and the initial value is copied back
// into current. Otherwise the record (which was NEW) is removed from
// current entirely. Reject does not cascade; it is a local rollback.
func (b CurrentBucket) Reject(v Value, key Key) Value {
	name := b.entity.typedef.Name
	out := v
	if initRec, ok := bucketGet(v.Initial, name, key); ok {
		out.Deleted = bucketDelete(out.Deleted, name, key)
		out.Current = bucketSet(out.Current, name, key, initRec)
		return out
	}
	out.Current = bucketDelete(out.Current, name, key)
	return out
}

// Delete cascades into every child along every inverse-FK relation
// (calling Current.Delete on each), then either tombstones the record
// in deleted (leaving it visible in current too, per the documented
// "filtering deleted from current" open question) when a baseline
// exists, or removes it from current outright when it was NEW.
func (b CurrentBucket) Delete(v Value, key Key) (Value, error) {
	name := b.entity.typedef.Name
	curRec, curOK := bucketGet(v.Current, name, key)

	out := v
	referenceRecord := curRec
	if !curOK {
		referenceRecord = b.entity.typedef.Key.Set(Record{}, key)
	}
	for _, relName := range b.entity.inverseForeignKeyNames() {
		children, err := b.entity.Children(out, relName, referenceRecord)
		if err != nil {
			return v, err
		}
		childEntity, err := b.entity.registry.EntityType(relName)
		if err != nil {
			return v, err
		}
		for _, childKey := range sortedKeys(children) {
			var derr error
			out, derr = childEntity.Current.Delete(out, childKey)
			if derr != nil {
				return v, derr
			}
		}
	}

	if initRec, initOK := bucketGet(out.Initial, name, key); initOK {
		tombstone := curRec
		if !curOK {
			tombstone = initRec
		}
		out.Deleted = bucketSet(out.Deleted, name, key, tombstone)
		return out, nil
	}
	out.Current = bucketDelete(out.Current, name, key)
	return out, nil
}
