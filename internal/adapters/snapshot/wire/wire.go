// Package wire implements the on-disk encoding shared by the snapshot
// adapters (sqlite, postgres, blob). A store.Value's bucket maps are
// keyed by store.Key, an any that in practice holds only strings,
// bools, or numbers; encoding/json cannot marshal a map keyed by an
// interface type directly, so each record map round-trips through a
// tagged-entry list that records the key's original Go kind.
package wire

import (
	"encoding/json"
	"fmt"
	"strconv"

	"dohmane/pkg/store"
)

// Entry is one (key, record) pair in the tagged-entry wire form.
type Entry struct {
	KeyKind string       `json:"key_kind"`
	Key     string       `json:"key"`
	Record  store.Record `json:"record"`
}

// MarshalRecords encodes one bucket's per-type record map.
func MarshalRecords(records map[store.Key]store.Record) ([]byte, error) {
	entries := make([]Entry, 0, len(records))
	for key, record := range records {
		kind, rendered, err := encodeKey(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{KeyKind: kind, Key: rendered, Record: record})
	}
	return json.Marshal(entries)
}

// UnmarshalRecords decodes a bucket's per-type record map, restoring
// each key to the Go kind it was encoded with.
func UnmarshalRecords(data []byte) (map[store.Key]store.Record, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	out := make(map[store.Key]store.Record, len(entries))
	for _, e := range entries {
		key, err := decodeKey(e.KeyKind, e.Key)
		if err != nil {
			return nil, fmt.Errorf("decode key %q: %w", e.Key, err)
		}
		out[key] = e.Record
	}
	return out, nil
}

// Snapshot is the whole-Value counterpart of Entry, used by adapters
// that archive a store.Value as a single document rather than one row
// per (type, bucket).
type Snapshot struct {
	Initial map[string][]Entry `json:"initial"`
	Current map[string][]Entry `json:"current"`
	Deleted map[string][]Entry `json:"deleted"`
	NextKey int64              `json:"nextKey"`
}

// MarshalValue converts a store.Value into its Snapshot form.
func MarshalValue(v store.Value) (Snapshot, error) {
	snap := Snapshot{
		Initial: make(map[string][]Entry, len(v.Initial)),
		Current: make(map[string][]Entry, len(v.Current)),
		Deleted: make(map[string][]Entry, len(v.Deleted)),
		NextKey: v.NextKey,
	}
	for _, pair := range []struct {
		src  map[string]map[store.Key]store.Record
		dest map[string][]Entry
	}{
		{v.Initial, snap.Initial},
		{v.Current, snap.Current},
		{v.Deleted, snap.Deleted},
	} {
		for typeName, records := range pair.src {
			entries := make([]Entry, 0, len(records))
			for key, record := range records {
				kind, rendered, err := encodeKey(key)
				if err != nil {
					return Snapshot{}, err
				}
				entries = append(entries, Entry{KeyKind: kind, Key: rendered, Record: record})
			}
			pair.dest[typeName] = entries
		}
	}
	return snap, nil
}

// UnmarshalValue rebuilds a store.Value from its Snapshot form.
func UnmarshalValue(snap Snapshot) (store.Value, error) {
	v := store.New()
	v.NextKey = snap.NextKey
	for _, pair := range []struct {
		src  map[string][]Entry
		dest map[string]map[store.Key]store.Record
	}{
		{snap.Initial, v.Initial},
		{snap.Current, v.Current},
		{snap.Deleted, v.Deleted},
	} {
		for typeName, entries := range pair.src {
			records := make(map[store.Key]store.Record, len(entries))
			for _, e := range entries {
				key, err := decodeKey(e.KeyKind, e.Key)
				if err != nil {
					return store.Value{}, fmt.Errorf("decode key %q: %w", e.Key, err)
				}
				records[key] = e.Record
			}
			pair.dest[typeName] = records
		}
	}
	return v, nil
}

func encodeKey(key store.Key) (kind, rendered string, err error) {
	switch typed := key.(type) {
	case string:
		return "string", typed, nil
	case bool:
		return "bool", strconv.FormatBool(typed), nil
	case int:
		return "int64", strconv.FormatInt(int64(typed), 10), nil
	case int64:
		return "int64", strconv.FormatInt(typed, 10), nil
	case float64:
		return "float64", strconv.FormatFloat(typed, 'g', -1, 64), nil
	default:
		return "", "", fmt.Errorf("unsupported key kind %T", key)
	}
}

func decodeKey(kind, rendered string) (store.Key, error) {
	switch kind {
	case "string":
		return rendered, nil
	case "bool":
		return strconv.ParseBool(rendered)
	case "int64":
		return strconv.ParseInt(rendered, 10, 64)
	case "float64":
		return strconv.ParseFloat(rendered, 64)
	default:
		return nil, fmt.Errorf("unknown key kind %q", kind)
	}
}
