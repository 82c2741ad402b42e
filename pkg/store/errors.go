package store

import "errors"

// Sentinel error kinds, per §7 of the specification. Wrap with
// fmt.Errorf("%w: ...") for context; callers should use errors.Is to
// test against these.
var (
	// ErrUnknownState is returned by EntityType.State when the record
	// is absent from both the current and initial buckets.
	ErrUnknownState = errors.New("store: unknown state")
	// ErrUnregisteredType is returned by any operation that names an
	// entity type not present in the registry.
	ErrUnregisteredType = errors.New("store: unregistered type")
	// ErrMissingKey is returned by InitialBucket.Load when a record
	// has no value at its typedef's key path.
	ErrMissingKey = errors.New("store: missing key")
)
