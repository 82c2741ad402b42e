package store

// DeletedBucket is the accessor for one entity type's tombstones —
// baseline records the user has marked for deletion, pending
// confirmation from the remote system, per §4.6.
type DeletedBucket struct {
	entity *EntityType
}

// Get reads the tombstoned record for key, if any.
func (b DeletedBucket) Get(v Value, key Key) (Record, bool) {
	return bucketGet(v.Deleted, b.entity.typedef.Name, key)
}

// GetAll returns every tombstoned record of this type, keyed by
// primary key.
func (b DeletedBucket) GetAll(v Value) map[Key]Record {
	return bucketGetAll(v.Deleted, b.entity.typedef.Name)
}

// Set writes record directly at key in deleted.
func (b DeletedBucket) Set(v Value, key Key, record Record) Value {
	out := v
	out.Deleted = bucketSet(v.Deleted, b.entity.typedef.Name, key, record)
	return out
}

// Accept confirms the deletion: every child along every inverse-FK
// relation is recursively accepted first, then the record is scrubbed
// from all three buckets for this type. After Accept returns, no
// trace of the record exists.
func (b DeletedBucket) Accept(v Value, key Key) (Value, error) {
	name := b.entity.typedef.Name
	out := v

	referenceRecord, ok := bucketGet(out.Deleted, name, key)
	if !ok {
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
			var aerr error
			out, aerr = childEntity.Deleted.Accept(out, childKey)
			if aerr != nil {
				return v, aerr
			}
		}
	}

	out.Initial = bucketDelete(out.Initial, name, key)
	out.Current = bucketDelete(out.Current, name, key)
	out.Deleted = bucketDelete(out.Deleted, name, key)
	return out, nil
}

// Reject removes only the deleted-bucket mark. The current value
// (left in place by Current.Delete) is untouched. Current.Reject
// calls this as part of its recovery path.
func (b DeletedBucket) Reject(v Value, key Key) Value {
	out := v
	out.Deleted = bucketDelete(v.Deleted, b.entity.typedef.Name, key)
	return out
}
