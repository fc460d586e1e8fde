package engine

import "pin-mapper/internal/pin"

//go:generate go tool stringer -type=ChangeKind -trimprefix=Change

// ChangeKind identifies what a mutation did.
type ChangeKind int

const (
	ChangePinCreated ChangeKind = iota
	ChangeMappingAdded
	ChangeMappingRemoved
	ChangePinDeleted
	ChangeMergeStrategyChanged
	ChangePinRenamed
	ChangeDescriptionChanged
	ChangePortRenamed
	ChangePinRestored
	ChangeMappingRestored
	ChangeCompositeOpened
	ChangeCompositeClosed
	ChangePersistFailed
)

// Change describes one mutation of a composite.
type Change struct {
	Kind        ChangeKind
	CompositeID string
	// PinIndex is the affected pin, 0 for composite-level changes.
	PinIndex int
	// Port is the affected mapped port, if any. For ChangePortRenamed it
	// holds the new name.
	Port pin.PortKey
	// OldPortName is set for ChangePortRenamed.
	OldPortName string
	// Err is set for ChangePersistFailed.
	Err error
}

type observer struct {
	id int
	fn func(Change)
}

// Subscribe registers fn to be called synchronously after each change.
// The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Change)) (unsubscribe func()) {
	m.lastObserverID++
	id := m.lastObserverID
	m.observers = append(m.observers, observer{id: id, fn: fn})

	return func() {
		for i, o := range m.observers {
			if o.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) publish(ch Change) {
	// Observers may unsubscribe while being notified.
	observers := append([]observer(nil), m.observers...)
	for _, o := range observers {
		o.fn(ch)
	}
}
