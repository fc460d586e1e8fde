package history

import (
	"pin-mapper/internal/nodegraph"
	"pin-mapper/internal/pin"
)

// Mapping is the part of the engine the commands drive.
type Mapping interface {
	VirtualPin(compositeID string, pinIndex int) (pin.VirtualPinConfig, error)
	FindVirtualPinForPort(compositeID, nodeID, portName string) (pin.VirtualPinConfig, bool, error)
	MappedPortsOfNode(compositeID, nodeID string) ([]pin.MappedPort, error)
	CreateVirtualPin(compositeID string, spec pin.PinSpec, initial pin.MappedPort) (pin.VirtualPinConfig, error)
	AddMapping(compositeID string, pinIndex int, nodeID, portName string, isInput bool, portType string, isFlow bool) error
	RemoveMapping(compositeID string, pinIndex int, nodeID, portName string) (pin.Removal, error)
	DeleteVirtualPin(compositeID string, pinIndex int) (pin.Removal, error)
	SetMergeStrategy(compositeID string, pinIndex int, strategy pin.MergeStrategy) error
	RenameMappedPort(compositeID, nodeID, oldName, newName string) (bool, error)
	RestoreMapping(compositeID string, r pin.Removal) error
}

// PortGraph is the internal node graph of the composite.
type PortGraph interface {
	RemovePort(nodeID, name string) (nodegraph.Port, int, error)
	InsertPort(nodeID string, p nodegraph.Port, position int) error
	RenamePort(nodeID, oldName, newName string) error
	RemoveNode(id string) (nodegraph.Node, int, error)
	RestoreNode(n nodegraph.Node, position int) error
}

// Scope binds commands to one composite: its id, the pin engine and its
// internal node graph.
type Scope struct {
	CompositeID string
	Pins        Mapping
	Graph       PortGraph
}
