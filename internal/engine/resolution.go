package engine

import (
	"fmt"
	"slices"

	"pin-mapper/internal/match"
	"pin-mapper/internal/pin"
)

// FindVirtualPinForPort returns the pin that maps (nodeID, portName), if any.
func (m *Manager) FindVirtualPinForPort(compositeID, nodeID, portName string) (pin.VirtualPinConfig, bool, error) {
	c, err := m.composite(compositeID)
	if err != nil {
		return pin.VirtualPinConfig{}, false, err
	}

	vp, ok := c.PinForPort(pin.PortKey{NodeID: nodeID, PortName: portName})

	return vp, ok, nil
}

// AvailableVirtualPins lists the pins a port with the given direction and
// flow kind could be added to, in collection order. Pin types are not
// compared.
func (m *Manager) AvailableVirtualPins(compositeID string, isInput, isFlow bool) ([]pin.VirtualPinConfig, error) {
	c, err := m.composite(compositeID)
	if err != nil {
		return nil, err
	}

	var out []pin.VirtualPinConfig

	for _, vp := range c.Pins() {
		if vp.Accepts(isInput, isFlow) {
			out = append(out, vp)
		}
	}

	return out, nil
}

// CompatibleVirtualPins is AvailableVirtualPins restricted to pins of the
// given type. An empty pinType matches every pin.
func (m *Manager) CompatibleVirtualPins(compositeID string, isInput, isFlow bool, pinType string) ([]pin.VirtualPinConfig, error) {
	candidates, err := m.AvailableVirtualPins(compositeID, isInput, isFlow)
	if err != nil || pinType == "" {
		return candidates, err
	}

	var out []pin.VirtualPinConfig

	for _, vp := range candidates {
		if vp.PinType == pinType {
			out = append(out, vp)
		}
	}

	return out, nil
}

// PinDisplayNumber returns the label of a pin under the configured scheme.
func (m *Manager) PinDisplayNumber(compositeID string, pinIndex int) (DisplayNumber, error) {
	c, err := m.composite(compositeID)
	if err != nil {
		return DisplayNumber{}, err
	}

	target, ok := c.Pin(pinIndex)
	if !ok {
		return DisplayNumber{}, fmt.Errorf("%w: pin %d", pin.ErrPinNotFound, pinIndex)
	}

	return displayNumber(m.opts.Numbering, c.Pins(), target), nil
}

// VirtualPin returns one pin.
func (m *Manager) VirtualPin(compositeID string, pinIndex int) (pin.VirtualPinConfig, error) {
	c, err := m.composite(compositeID)
	if err != nil {
		return pin.VirtualPinConfig{}, err
	}

	vp, ok := c.Pin(pinIndex)
	if !ok {
		return pin.VirtualPinConfig{}, fmt.Errorf("%w: pin %d", pin.ErrPinNotFound, pinIndex)
	}

	return vp, nil
}

// VirtualPins returns all pins in collection order.
func (m *Manager) VirtualPins(compositeID string) ([]pin.VirtualPinConfig, error) {
	c, err := m.composite(compositeID)
	if err != nil {
		return nil, err
	}

	return c.Pins(), nil
}

// MappedPortsOfNode returns the mapped ports that reference a node.
func (m *Manager) MappedPortsOfNode(compositeID, nodeID string) ([]pin.MappedPort, error) {
	c, err := m.composite(compositeID)
	if err != nil {
		return nil, err
	}

	return c.PortsOfNode(nodeID), nil
}

// SuggestVirtualPins ranks the pins the port nodeID.port.Name could join,
// best first. A port that is already mapped has no suggestions. Under strict
// types, pins whose type would be rejected are left out.
func (m *Manager) SuggestVirtualPins(compositeID, nodeID string, port match.Port) (match.CandidateList, error) {
	c, err := m.composite(compositeID)
	if err != nil {
		return nil, err
	}

	key := pin.PortKey{NodeID: nodeID, PortName: port.Name}
	if owner, ok := c.PinForPort(key); ok {
		return nil, fmt.Errorf("%w: %s is mapped by %s", pin.ErrDuplicateMapping, key, owner.Label())
	}

	pins := c.Pins()
	if m.opts.StrictTypes && port.Type != "" {
		pins = slices.DeleteFunc(pins, func(vp pin.VirtualPinConfig) bool {
			return vp.PinType != port.Type
		})
	}

	return match.RankPins(port, pins), nil
}
