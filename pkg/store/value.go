package store

// Value is the immutable store aggregate: three buckets plus the
// primary-key allocation counter. Every mutating accessor in this
// package takes a Value and returns a new Value; the receiver is
// never modified in place, so the same Value may be shared freely
// across readers.
type Value struct {
	Initial map[string]map[Key]Record `json:"initial"`
	Current map[string]map[Key]Record `json:"current"`
	Deleted map[string]map[Key]Record `json:"deleted"`
	NextKey int64                     `json:"nextKey"`
}

// New returns an empty store: three empty bucket sets and NextKey
// initialized to -1, per §4.1.
func New() Value {
	return Value{
		Initial: map[string]map[Key]Record{},
		Current: map[string]map[Key]Record{},
		Deleted: map[string]map[Key]Record{},
		NextKey: -1,
	}
}

// clone returns a deep copy of the value. The mutating accessors do
// not call it; they copy only the bucket they write, through
// bucketSet and bucketDelete.
func (v Value) clone() Value {
	return Value{
		Initial: cloneTypeMap(v.Initial),
		Current: cloneTypeMap(v.Current),
		Deleted: cloneTypeMap(v.Deleted),
		NextKey: v.NextKey,
	}
}

// bucketGet reads a single record from one of the three buckets.
func bucketGet(bucket map[string]map[Key]Record, typeName string, key Key) (Record, bool) {
	records, ok := bucket[typeName]
	if !ok {
		return nil, false
	}
	r, ok := records[key]
	if !ok {
		return nil, false
	}
	return cloneRecord(r), true
}

// bucketGetAll returns a clone of every record of a type in one
// bucket, keyed by primary key.
func bucketGetAll(bucket map[string]map[Key]Record, typeName string) map[Key]Record {
	records := bucket[typeName]
	return cloneRecordMap(records)
}

// bucketSet writes a record into a fresh clone of the bucket's
// per-type map, returning the updated bucket.
func bucketSet(bucket map[string]map[Key]Record, typeName string, key Key, record Record) map[string]map[Key]Record {
	out := cloneTypeMap(bucket)
	records, ok := out[typeName]
	if !ok {
		records = map[Key]Record{}
	} else {
		records = cloneRecordMap(records)
	}
	records[key] = cloneRecord(record)
	out[typeName] = records
	return out
}

// bucketDelete removes a record from a fresh clone of the bucket.
func bucketDelete(bucket map[string]map[Key]Record, typeName string, key Key) map[string]map[Key]Record {
	out := cloneTypeMap(bucket)
	records, ok := out[typeName]
	if !ok {
		return out
	}
	records = cloneRecordMap(records)
	delete(records, key)
	out[typeName] = records
	return out
}
