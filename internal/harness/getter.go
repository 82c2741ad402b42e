package harness

import (
	"reflect"
	"time"

	"dohmane/pkg/store"
)

// Getter computes a derived view of a store.Value, given the registry
// it was raised against.
type Getter func(registry *store.Registry, v store.Value) (any, error)

type registeredGetter struct {
	name     string
	compute  Getter
	onChange func(any)
	last     any
}

// recompute evaluates the getter against v and dispatches onChange
// only if the result changed from the last observed value. Equality
// is a plain reflect.DeepEqual rather than the store package's
// field-aware equalRecords/equalValues (those are unexported and
// operate on Record/Value shapes, not the arbitrary result types a
// getter may return). The built-in getters return a map of
// store.Record, a single store.Record, or an int; for the records, a
// field whose value changes numeric kind without changing value (for
// example int64(1) to float64(1)) counts as a change here even though
// the store package treats the two as equal.
func (g *registeredGetter) recompute(registry *store.Registry, v store.Value, metrics *Metrics) {
	start := time.Now()
	result, err := g.compute(registry, v)
	metrics.observeGetterLatency(g.name, time.Since(start))
	if err != nil {
		return
	}
	if reflect.DeepEqual(result, g.last) {
		return
	}
	g.last = result
	g.onChange(result)
}

// CurrentAll returns the current bucket's records for typeName.
// Records marked deleted stay in the current bucket until the deletion
// is accepted or rejected, so they are included here.
func CurrentAll(typeName string) Getter {
	return func(registry *store.Registry, v store.Value) (any, error) {
		et, err := registry.EntityType(typeName)
		if err != nil {
			return nil, err
		}
		return et.Current.GetAll(v), nil
	}
}

// NewRecords returns the records of typeName currently classified
// NEW.
func NewRecords(typeName string) Getter {
	return func(registry *store.Registry, v store.Value) (any, error) {
		et, err := registry.EntityType(typeName)
		if err != nil {
			return nil, err
		}
		return et.Current.GetAllNew(v), nil
	}
}

// ChangedRecords returns the records of typeName currently classified
// MODIFIED.
func ChangedRecords(typeName string) Getter {
	return func(registry *store.Registry, v store.Value) (any, error) {
		et, err := registry.EntityType(typeName)
		if err != nil {
			return nil, err
		}
		return et.Current.GetAllChanged(v), nil
	}
}

// DeletedRecords returns the tombstoned records of typeName.
func DeletedRecords(typeName string) Getter {
	return func(registry *store.Registry, v store.Value) (any, error) {
		et, err := registry.EntityType(typeName)
		if err != nil {
			return nil, err
		}
		return et.Deleted.GetAll(v), nil
	}
}

// ChangedProperties returns the changed-field diff for one record.
func ChangedProperties(typeName string, key store.Key) Getter {
	return func(registry *store.Registry, v store.Value) (any, error) {
		et, err := registry.EntityType(typeName)
		if err != nil {
			return nil, err
		}
		return et.Current.GetChangedProperties(v, key), nil
	}
}

// PendingChangeCount sums new, changed, and deleted record counts
// across typeNames. It is the getter the metrics gauge is normally
// wired to.
func PendingChangeCount(typeNames ...string) Getter {
	return func(registry *store.Registry, v store.Value) (any, error) {
		total := 0
		for _, typeName := range typeNames {
			et, err := registry.EntityType(typeName)
			if err != nil {
				return nil, err
			}
			total += len(et.Current.GetAllNew(v))
			total += len(et.Current.GetAllChanged(v))
			total += len(et.Deleted.GetAll(v))
		}
		return total, nil
	}
}
