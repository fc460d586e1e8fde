package pin

import (
	"fmt"
	"slices"
	"strings"
)

// MergeStrategy selects how values of several mapped output ports collapse
// into the single value observed on the virtual pin.
type MergeStrategy string

const (
	// MergeLast takes the value produced most recently.
	MergeLast MergeStrategy = "last"
	// MergeFirst takes the value produced earliest.
	MergeFirst MergeStrategy = "first"
	// MergeArray collects all produced values in mapping order.
	MergeArray MergeStrategy = "array"
)

// DefaultMergeStrategy is assigned to new pins and to persisted pins without one.
const DefaultMergeStrategy = MergeLast

// MergeStrategies lists the valid strategies in display order.
func MergeStrategies() []MergeStrategy {
	return []MergeStrategy{MergeLast, MergeFirst, MergeArray}
}

// IsValid returns true if the strategy is a recognized value.
func (m MergeStrategy) IsValid() bool {
	return slices.Contains(MergeStrategies(), m)
}

// String returns the strategy name.
func (m MergeStrategy) String() string {
	return string(m)
}

// ParseMergeStrategy parses a strategy name, ignoring case and surrounding spaces.
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	m := MergeStrategy(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMergeStrategy, s)
	}

	return m, nil
}

// PortKey identifies a port of an internal node.
type PortKey struct {
	NodeID   string
	PortName string
}

// String returns "node.port".
func (k PortKey) String() string {
	return k.NodeID + "." + k.PortName
}

// MappedPort is a weak reference to a port of an internal node. The node
// graph owns the port; the mapping only names it.
type MappedPort struct {
	NodeID   string `json:"node_id"   yaml:"node_id"`
	PortName string `json:"port_name" yaml:"port_name"`
	IsInput  bool   `json:"is_input"  yaml:"is_input"`
	IsFlow   bool   `json:"is_flow"   yaml:"is_flow"`
}

// Key returns the (node, port) identity of the mapped port.
func (p MappedPort) Key() PortKey {
	return PortKey{NodeID: p.NodeID, PortName: p.PortName}
}

func (p MappedPort) valid() bool {
	return p.NodeID != "" && p.PortName != ""
}

// VirtualPinConfig is one externally exposed pin of a composite.
type VirtualPinConfig struct {
	PinIndex      int           `json:"pin_index"      yaml:"pin_index"`
	PinName       string        `json:"pin_name"       yaml:"pin_name"`
	PinType       string        `json:"pin_type"       yaml:"pin_type"`
	IsInput       bool          `json:"is_input"       yaml:"is_input"`
	IsFlow        bool          `json:"is_flow"        yaml:"is_flow"`
	Description   string        `json:"description"    yaml:"description"`
	MergeStrategy MergeStrategy `json:"merge_strategy" yaml:"merge_strategy"`
	// MappedPorts is never empty. Order is significant for merge evaluation.
	MappedPorts []MappedPort `json:"mapped_ports" yaml:"mapped_ports"`
}

// Clone returns a deep copy of the pin.
func (v VirtualPinConfig) Clone() VirtualPinConfig {
	v.MappedPorts = slices.Clone(v.MappedPorts)
	return v
}

// Accepts reports whether a port with the given direction and flow kind may
// be mapped by this pin.
func (v VirtualPinConfig) Accepts(isInput, isFlow bool) bool {
	return v.IsInput == isInput && v.IsFlow == isFlow
}

// PortPosition returns the position of the port in MappedPorts, or -1.
func (v VirtualPinConfig) PortPosition(key PortKey) int {
	return slices.IndexFunc(v.MappedPorts, func(p MappedPort) bool {
		return p.Key() == key
	})
}

// EffectiveMergeStrategy returns the strategy used for evaluation. Input pins
// always report MergeLast since their strategy is not inspected.
func (v VirtualPinConfig) EffectiveMergeStrategy() MergeStrategy {
	if v.IsInput || !v.MergeStrategy.IsValid() {
		return DefaultMergeStrategy
	}

	return v.MergeStrategy
}

// Label returns "pin N" for messages.
func (v VirtualPinConfig) Label() string {
	return pinLabel(v.PinIndex)
}

func pinLabel(index int) string {
	return fmt.Sprintf("pin %d", index)
}

// PinSpec holds the user-supplied attributes of a new virtual pin.
type PinSpec struct {
	Name        string
	Type        string
	IsInput     bool
	IsFlow      bool
	Description string
}

// CompositeDefinition is the serialized form of a composite's pin surface.
type CompositeDefinition struct {
	CompositeID string             `json:"composite_id" yaml:"composite_id"`
	VirtualPins []VirtualPinConfig `json:"virtual_pins" yaml:"virtual_pins"`
}

// Clone returns a deep copy of the definition.
func (d CompositeDefinition) Clone() CompositeDefinition {
	pins := make([]VirtualPinConfig, len(d.VirtualPins))
	for i, vp := range d.VirtualPins {
		pins[i] = vp.Clone()
	}

	d.VirtualPins = pins

	return d
}

// Removal describes the outcome of removing one mapping. It carries enough
// state to restore the composite exactly as it was.
type Removal struct {
	// Port is the mapping that was removed.
	Port MappedPort
	// PinIndex is the pin the port was mapped to.
	PinIndex int
	// PortPosition is the position the port held in MappedPorts.
	PortPosition int
	// PinDeleted is true when the removed port was the pin's last mapping
	// and the pin itself was deleted.
	PinDeleted bool
	// Pin is a snapshot of the pin before the removal.
	Pin VirtualPinConfig
	// PinPosition is the position the pin held in the composite.
	PinPosition int
}
