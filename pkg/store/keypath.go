package store

// Get reads the value located at the path inside a record. It returns
// false if any intermediate segment is missing or not itself a
// nested record, or if the value at the final segment is absent or
// explicitly nil.
func (p Path) Get(r Record) (any, bool) {
	if len(p) == 0 {
		return nil, false
	}
	var cur any = map[string]any(r)
	for i, segment := range p {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		v, present := m[segment]
		if !present {
			return nil, false
		}
		if i == len(p)-1 {
			if v == nil {
				return nil, false
			}
			return v, true
		}
		cur = v
	}
	return nil, false
}

// Set returns a new record with the value at the path overwritten
// (or created, along with any missing intermediate nested records).
// The original record is not mutated.
func (p Path) Set(r Record, value any) Record {
	if len(p) == 0 {
		return cloneRecord(r)
	}
	out := cloneRecord(r)
	if out == nil {
		out = Record{}
	}
	setIn(map[string]any(out), p, value)
	return out
}

func setIn(m map[string]any, path Path, value any) {
	segment := path[0]
	if len(path) == 1 {
		m[segment] = value
		return
	}
	next, ok := asMap(m[segment])
	if !ok {
		next = map[string]any{}
	}
	setIn(next, path[1:], value)
	m[segment] = next
}

func asMap(v any) (map[string]any, bool) {
	switch typed := v.(type) {
	case Record:
		return map[string]any(typed), true
	case map[string]any:
		return typed, true
	default:
		return nil, false
	}
}
