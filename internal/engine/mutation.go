package engine

import (
	"go.uber.org/zap"

	"pin-mapper/internal/pin"
)

// CreateVirtualPin exposes initial as a new virtual pin. The pin receives the
// next index of the composite and the default merge strategy.
func (m *Manager) CreateVirtualPin(compositeID string, spec pin.PinSpec, initial pin.MappedPort) (pin.VirtualPinConfig, error) {
	c, err := m.composite(compositeID)
	if err != nil {
		return pin.VirtualPinConfig{}, err
	}

	vp, err := c.CreatePin(spec, initial)
	if err != nil {
		return pin.VirtualPinConfig{}, m.reject("create_virtual_pin", compositeID, err)
	}

	m.commit(c, Change{Kind: ChangePinCreated, PinIndex: vp.PinIndex, Port: initial.Key()})

	return vp, nil
}

// AddMapping appends a port to an existing pin. It never creates a pin.
func (m *Manager) AddMapping(
	compositeID string,
	pinIndex int,
	nodeID, portName string,
	isInput bool,
	portType string,
	isFlow bool,
) error {
	c, err := m.composite(compositeID)
	if err != nil {
		return err
	}

	port := pin.MappedPort{NodeID: nodeID, PortName: portName, IsInput: isInput, IsFlow: isFlow}

	if err := c.AddMapping(pinIndex, port, portType); err != nil {
		return m.reject("add_mapping", compositeID, err)
	}

	m.commit(c, Change{Kind: ChangeMappingAdded, PinIndex: pinIndex, Port: port.Key()})

	return nil
}

// RemoveMapping removes a port from a pin. If it was the pin's last mapping
// the pin is deleted as well; the Removal reports this and can restore the
// exact prior state through RestoreMapping.
func (m *Manager) RemoveMapping(compositeID string, pinIndex int, nodeID, portName string) (pin.Removal, error) {
	c, err := m.composite(compositeID)
	if err != nil {
		return pin.Removal{}, err
	}

	r, err := c.RemoveMapping(pinIndex, pin.PortKey{NodeID: nodeID, PortName: portName})
	if err != nil {
		return pin.Removal{}, m.reject("remove_mapping", compositeID, err)
	}

	kind := ChangeMappingRemoved
	if r.PinDeleted {
		kind = ChangePinDeleted
	}

	m.commit(c, Change{Kind: kind, PinIndex: pinIndex, Port: r.Port.Key()})

	return r, nil
}

// DeleteVirtualPin removes a pin with all of its mappings.
func (m *Manager) DeleteVirtualPin(compositeID string, pinIndex int) (pin.Removal, error) {
	c, err := m.composite(compositeID)
	if err != nil {
		return pin.Removal{}, err
	}

	r, err := c.DeletePin(pinIndex)
	if err != nil {
		return pin.Removal{}, m.reject("delete_virtual_pin", compositeID, err)
	}

	m.commit(c, Change{Kind: ChangePinDeleted, PinIndex: pinIndex})

	return r, nil
}

// SetMergeStrategy changes how an output pin merges its mapped values.
func (m *Manager) SetMergeStrategy(compositeID string, pinIndex int, strategy pin.MergeStrategy) error {
	c, err := m.composite(compositeID)
	if err != nil {
		return err
	}

	if err := c.SetMergeStrategy(pinIndex, strategy); err != nil {
		return m.reject("set_merge_strategy", compositeID, err)
	}

	m.commit(c, Change{Kind: ChangeMergeStrategyChanged, PinIndex: pinIndex})

	return nil
}

// RenameVirtualPin changes the display name of a pin.
func (m *Manager) RenameVirtualPin(compositeID string, pinIndex int, name string) error {
	c, err := m.composite(compositeID)
	if err != nil {
		return err
	}

	if err := c.RenamePin(pinIndex, name); err != nil {
		return m.reject("rename_virtual_pin", compositeID, err)
	}

	m.commit(c, Change{Kind: ChangePinRenamed, PinIndex: pinIndex})

	return nil
}

// SetPinDescription changes the description of a pin.
func (m *Manager) SetPinDescription(compositeID string, pinIndex int, description string) error {
	c, err := m.composite(compositeID)
	if err != nil {
		return err
	}

	if err := c.SetDescription(pinIndex, description); err != nil {
		return m.reject("set_pin_description", compositeID, err)
	}

	m.commit(c, Change{Kind: ChangeDescriptionChanged, PinIndex: pinIndex})

	return nil
}

// RenameMappedPort follows a rename of an internal port. It reports whether
// a mapping was rewritten; renaming an unmapped port changes nothing.
func (m *Manager) RenameMappedPort(compositeID, nodeID, oldName, newName string) (bool, error) {
	c, err := m.composite(compositeID)
	if err != nil {
		return false, err
	}

	pinIndex, renamed, err := c.RenamePort(nodeID, oldName, newName)
	if err != nil {
		return false, m.reject("rename_mapped_port", compositeID, err)
	}

	if !renamed {
		return false, nil
	}

	m.commit(c, Change{
		Kind:        ChangePortRenamed,
		PinIndex:    pinIndex,
		Port:        pin.PortKey{NodeID: nodeID, PortName: newName},
		OldPortName: oldName,
	})

	return true, nil
}

// RestoreMapping reverts a removal returned by RemoveMapping or
// DeleteVirtualPin, including re-creating a deleted pin with its original
// index.
func (m *Manager) RestoreMapping(compositeID string, r pin.Removal) error {
	c, err := m.composite(compositeID)
	if err != nil {
		return err
	}

	if err := c.RestoreMapping(r); err != nil {
		return m.reject("restore_mapping", compositeID, err)
	}

	kind := ChangeMappingRestored
	if r.PinDeleted {
		kind = ChangePinRestored
	}

	m.logger.Debug("mapping restored",
		zap.String("composite", compositeID),
		zap.Int("pin", r.PinIndex),
		zap.Bool("pin_recreated", r.PinDeleted))

	m.commit(c, Change{Kind: kind, PinIndex: r.PinIndex, Port: r.Port.Key()})

	return nil
}
