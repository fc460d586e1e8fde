package history

import (
	"fmt"

	"pin-mapper/internal/pin"
)

// CreateVirtualPinCommand exposes a port as a new virtual pin. Undo deletes
// the pin; redo restores it under the same index.
type CreateVirtualPinCommand struct {
	scope   Scope
	spec    pin.PinSpec
	initial pin.MappedPort

	created *pin.VirtualPinConfig
	removal *pin.Removal
}

// NewCreateVirtualPinCommand returns a command creating a pin seeded with initial.
func NewCreateVirtualPinCommand(scope Scope, spec pin.PinSpec, initial pin.MappedPort) *CreateVirtualPinCommand {
	return &CreateVirtualPinCommand{scope: scope, spec: spec, initial: initial}
}

// Describe implements Command.
func (c *CreateVirtualPinCommand) Describe() string {
	return fmt.Sprintf("expose %s as virtual pin %q", c.initial.Key(), c.spec.Name)
}

// Apply implements Command.
func (c *CreateVirtualPinCommand) Apply() error {
	if c.removal != nil {
		if err := c.scope.Pins.RestoreMapping(c.scope.CompositeID, *c.removal); err != nil {
			return err
		}

		c.removal = nil

		return nil
	}

	vp, err := c.scope.Pins.CreateVirtualPin(c.scope.CompositeID, c.spec, c.initial)
	if err != nil {
		return err
	}

	c.created = &vp

	return nil
}

// Revert implements Command.
func (c *CreateVirtualPinCommand) Revert() error {
	r, err := c.scope.Pins.DeleteVirtualPin(c.scope.CompositeID, c.created.PinIndex)
	if err != nil {
		return err
	}

	c.removal = &r

	return nil
}

// PinIndex returns the index of the created pin, or 0 before Apply.
func (c *CreateVirtualPinCommand) PinIndex() int {
	if c.created == nil {
		return 0
	}

	return c.created.PinIndex
}

// AddMappingCommand adds a port to an existing virtual pin.
type AddMappingCommand struct {
	scope    Scope
	pinIndex int
	port     pin.MappedPort
	portType string
}

// NewAddMappingCommand returns a command adding port to the pin.
func NewAddMappingCommand(scope Scope, pinIndex int, port pin.MappedPort, portType string) *AddMappingCommand {
	return &AddMappingCommand{scope: scope, pinIndex: pinIndex, port: port, portType: portType}
}

// Describe implements Command.
func (c *AddMappingCommand) Describe() string {
	return fmt.Sprintf("add %s to pin %d", c.port.Key(), c.pinIndex)
}

// Apply implements Command.
func (c *AddMappingCommand) Apply() error {
	return c.scope.Pins.AddMapping(c.scope.CompositeID, c.pinIndex,
		c.port.NodeID, c.port.PortName, c.port.IsInput, c.portType, c.port.IsFlow)
}

// Revert implements Command.
func (c *AddMappingCommand) Revert() error {
	_, err := c.scope.Pins.RemoveMapping(c.scope.CompositeID, c.pinIndex, c.port.NodeID, c.port.PortName)
	return err
}

// RemoveMappingCommand removes a port from a virtual pin, deleting the pin
// when it was the last mapping.
type RemoveMappingCommand struct {
	scope    Scope
	pinIndex int
	port     pin.PortKey

	removal *pin.Removal
}

// NewRemoveMappingCommand returns a command removing port from the pin.
func NewRemoveMappingCommand(scope Scope, pinIndex int, port pin.PortKey) *RemoveMappingCommand {
	return &RemoveMappingCommand{scope: scope, pinIndex: pinIndex, port: port}
}

// Describe implements Command.
func (c *RemoveMappingCommand) Describe() string {
	return fmt.Sprintf("remove %s from pin %d", c.port, c.pinIndex)
}

// Apply implements Command.
func (c *RemoveMappingCommand) Apply() error {
	r, err := c.scope.Pins.RemoveMapping(c.scope.CompositeID, c.pinIndex, c.port.NodeID, c.port.PortName)
	if err != nil {
		return err
	}

	c.removal = &r

	return nil
}

// Revert implements Command.
func (c *RemoveMappingCommand) Revert() error {
	return c.scope.Pins.RestoreMapping(c.scope.CompositeID, *c.removal)
}

// PinDeleted reports whether the last Apply deleted the pin.
func (c *RemoveMappingCommand) PinDeleted() bool {
	return c.removal != nil && c.removal.PinDeleted
}

// SetMergeStrategyCommand changes the merge strategy of a pin.
type SetMergeStrategyCommand struct {
	scope    Scope
	pinIndex int
	strategy pin.MergeStrategy

	previous pin.MergeStrategy
}

// NewSetMergeStrategyCommand returns a command setting the strategy.
func NewSetMergeStrategyCommand(scope Scope, pinIndex int, strategy pin.MergeStrategy) *SetMergeStrategyCommand {
	return &SetMergeStrategyCommand{scope: scope, pinIndex: pinIndex, strategy: strategy}
}

// Describe implements Command.
func (c *SetMergeStrategyCommand) Describe() string {
	return fmt.Sprintf("set merge strategy of pin %d to %s", c.pinIndex, c.strategy)
}

// Apply implements Command.
func (c *SetMergeStrategyCommand) Apply() error {
	vp, err := c.scope.Pins.VirtualPin(c.scope.CompositeID, c.pinIndex)
	if err != nil {
		return err
	}

	if err := c.scope.Pins.SetMergeStrategy(c.scope.CompositeID, c.pinIndex, c.strategy); err != nil {
		return err
	}

	c.previous = vp.MergeStrategy

	return nil
}

// Revert implements Command.
func (c *SetMergeStrategyCommand) Revert() error {
	return c.scope.Pins.SetMergeStrategy(c.scope.CompositeID, c.pinIndex, c.previous)
}
