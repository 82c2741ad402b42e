package store

import "reflect"

// cloneRecord deep-clones a Record so that callers handed a value out
// of the store cannot mutate shared state, and so that the store's
// own bucket maps never alias a caller's record. The recursion shape
// mirrors the teacher pack's extension-payload cloning: scalars are
// returned as-is, maps and slices are rebuilt element by element.
func cloneRecord(r Record) Record {
	if r == nil {
		return nil
	}
	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = cloneValue(v)
	}
	return clone
}

// cloneValue deep-clones an arbitrary field value: a scalar, a nested
// map[string]any/Record, a slice, or nil.
func cloneValue(value any) any {
	if value == nil {
		return nil
	}
	switch typed := value.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return typed
	case Record:
		return cloneRecord(typed)
	}

	source := reflect.ValueOf(value)
	switch source.Kind() {
	case reflect.Map:
		if source.IsNil() || source.Type().Key().Kind() != reflect.String {
			return value
		}
		clone := reflect.MakeMapWithSize(source.Type(), source.Len())
		iter := source.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), reflect.ValueOf(cloneValue(iter.Value().Interface())))
		}
		return clone.Interface()
	case reflect.Slice:
		if source.IsNil() {
			return value
		}
		clone := reflect.MakeSlice(source.Type(), source.Len(), source.Len())
		for i := 0; i < source.Len(); i++ {
			clone.Index(i).Set(reflect.ValueOf(cloneValue(source.Index(i).Interface())))
		}
		return clone.Interface()
	case reflect.Ptr:
		if source.IsNil() {
			return value
		}
		clone := reflect.New(source.Type().Elem())
		clone.Elem().Set(reflect.ValueOf(cloneValue(source.Elem().Interface())))
		return clone.Interface()
	default:
		return value
	}
}

// cloneRecordMap deep-clones a map[Key]Record, e.g. one type's bucket.
func cloneRecordMap(m map[Key]Record) map[Key]Record {
	clone := make(map[Key]Record, len(m))
	for k, v := range m {
		clone[k] = cloneRecord(v)
	}
	return clone
}

// cloneTypeMap deep-clones a map[typeName]map[Key]Record, i.e. a full
// bucket across all entity types.
func cloneTypeMap(m map[string]map[Key]Record) map[string]map[Key]Record {
	clone := make(map[string]map[Key]Record, len(m))
	for t, records := range m {
		clone[t] = cloneRecordMap(records)
	}
	return clone
}
