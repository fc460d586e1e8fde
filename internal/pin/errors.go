package pin

import "errors"

var (
	// ErrDuplicateMapping means the port is already mapped by a virtual pin.
	ErrDuplicateMapping = errors.New("port already mapped")
	// ErrDirectionMismatch means is_input or is_flow of a port differs from the pin.
	ErrDirectionMismatch = errors.New("direction or flow mismatch")
	// ErrPinNotFound means no pin with the given index exists.
	ErrPinNotFound = errors.New("virtual pin not found")
	// ErrInvalidMergeStrategy means the strategy is not one of last, first, array.
	ErrInvalidMergeStrategy = errors.New("invalid merge strategy")
	// ErrTypeMismatch means the port type differs from the pin type under strict typing.
	ErrTypeMismatch = errors.New("pin type mismatch")
	// ErrPortNotMapped means the pin does not map the given port.
	ErrPortNotMapped = errors.New("port not mapped by pin")
	// ErrPinIndexInUse means a restore targets an index held by another pin.
	ErrPinIndexInUse = errors.New("pin index in use")
	// ErrInvalidPort means a port reference has an empty node id or port name.
	ErrInvalidPort = errors.New("invalid port reference")
	// ErrSyncInvariant marks an inconsistency detected while synchronizing
	// the mapping model with structural edits of the node graph.
	ErrSyncInvariant = errors.New("mapping synchronization invariant violated")
)
