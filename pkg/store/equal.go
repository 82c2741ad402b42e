package store

import "reflect"

// equalRecords reports whether two records are structurally equal:
// same fields, with values compared recursively through maps, slices,
// and scalars. Map key order never affects the result.
func equalRecords(a, b Record) bool {
	return equalValues(map[string]any(a), map[string]any(b))
}

// equalValues recursively compares two arbitrary field values.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)

	if av.Kind() == reflect.Map && bv.Kind() == reflect.Map {
		if av.Len() != bv.Len() {
			return false
		}
		iter := av.MapRange()
		for iter.Next() {
			key := iter.Key()
			bvalue := bv.MapIndex(key)
			if !bvalue.IsValid() {
				return false
			}
			if !equalValues(iter.Value().Interface(), bvalue.Interface()) {
				return false
			}
		}
		return true
	}

	if av.Kind() == reflect.Slice && bv.Kind() == reflect.Slice {
		if av.IsNil() != bv.IsNil() {
			return false
		}
		if av.Len() != bv.Len() {
			return false
		}
		for i := 0; i < av.Len(); i++ {
			if !equalValues(av.Index(i).Interface(), bv.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	if isNumeric(av) && isNumeric(bv) {
		return numericValue(av) == numericValue(bv)
	}

	return reflect.DeepEqual(a, b)
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func numericValue(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint())
	default:
		return v.Float()
	}
}
