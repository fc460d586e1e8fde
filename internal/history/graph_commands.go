package history

import (
	"errors"
	"fmt"
	"slices"

	"pin-mapper/internal/nodegraph"
	"pin-mapper/internal/pin"
)

// RemovePortCommand deletes a port of an internal node together with its
// virtual-pin mapping.
type RemovePortCommand struct {
	scope    Scope
	nodeID   string
	portName string

	port     nodegraph.Port
	position int
	removal  *pin.Removal
}

// NewRemovePortCommand returns a command removing nodeID.portName.
func NewRemovePortCommand(scope Scope, nodeID, portName string) *RemovePortCommand {
	return &RemovePortCommand{scope: scope, nodeID: nodeID, portName: portName}
}

// Describe implements Command.
func (c *RemovePortCommand) Describe() string {
	return fmt.Sprintf("remove port %s.%s", c.nodeID, c.portName)
}

// Apply implements Command.
func (c *RemovePortCommand) Apply() error {
	removal, err := unmapPort(c.scope, c.nodeID, c.portName)
	if err != nil {
		return err
	}

	p, pos, err := c.scope.Graph.RemovePort(c.nodeID, c.portName)
	if err != nil {
		if removal != nil {
			if rerr := c.scope.Pins.RestoreMapping(c.scope.CompositeID, *removal); rerr != nil {
				return errors.Join(err, rerr)
			}
		}

		return err
	}

	c.port, c.position, c.removal = p, pos, removal

	return nil
}

// Revert implements Command.
func (c *RemovePortCommand) Revert() error {
	if err := c.scope.Graph.InsertPort(c.nodeID, c.port, c.position); err != nil {
		return err
	}

	if c.removal == nil {
		return nil
	}

	if err := c.scope.Pins.RestoreMapping(c.scope.CompositeID, *c.removal); err != nil {
		if _, _, gerr := c.scope.Graph.RemovePort(c.nodeID, c.port.Name); gerr != nil {
			return errors.Join(err, gerr)
		}

		return err
	}

	return nil
}

// PinDeleted reports whether the last Apply garbage-collected a virtual pin.
func (c *RemovePortCommand) PinDeleted() bool {
	return c.removal != nil && c.removal.PinDeleted
}

// RenamePortCommand renames a port of an internal node and rewrites its
// virtual-pin mapping.
type RenamePortCommand struct {
	scope   Scope
	nodeID  string
	oldName string
	newName string
}

// NewRenamePortCommand returns a command renaming nodeID.oldName to newName.
func NewRenamePortCommand(scope Scope, nodeID, oldName, newName string) *RenamePortCommand {
	return &RenamePortCommand{scope: scope, nodeID: nodeID, oldName: oldName, newName: newName}
}

// Describe implements Command.
func (c *RenamePortCommand) Describe() string {
	return fmt.Sprintf("rename port %s.%s to %s", c.nodeID, c.oldName, c.newName)
}

// Apply implements Command.
func (c *RenamePortCommand) Apply() error {
	return renamePort(c.scope, c.nodeID, c.oldName, c.newName)
}

// Revert implements Command.
func (c *RenamePortCommand) Revert() error {
	return renamePort(c.scope, c.nodeID, c.newName, c.oldName)
}

func renamePort(scope Scope, nodeID, from, to string) error {
	if err := scope.Graph.RenamePort(nodeID, from, to); err != nil {
		return err
	}

	if _, err := scope.Pins.RenameMappedPort(scope.CompositeID, nodeID, from, to); err != nil {
		if gerr := scope.Graph.RenamePort(nodeID, to, from); gerr != nil {
			return errors.Join(err, gerr)
		}

		return err
	}

	return nil
}

// RemoveNodeCommand deletes an internal node and every mapping that
// references one of its ports.
type RemoveNodeCommand struct {
	scope  Scope
	nodeID string

	node     nodegraph.Node
	position int
	removals []pin.Removal
}

// NewRemoveNodeCommand returns a command removing the node.
func NewRemoveNodeCommand(scope Scope, nodeID string) *RemoveNodeCommand {
	return &RemoveNodeCommand{scope: scope, nodeID: nodeID}
}

// Describe implements Command.
func (c *RemoveNodeCommand) Describe() string {
	return "remove node " + c.nodeID
}

// Apply implements Command.
func (c *RemoveNodeCommand) Apply() error {
	ports, err := c.scope.Pins.MappedPortsOfNode(c.scope.CompositeID, c.nodeID)
	if err != nil {
		return err
	}

	var removals []pin.Removal

	for _, p := range ports {
		r, err := unmapPort(c.scope, p.NodeID, p.PortName)
		if err == nil && r == nil {
			err = fmt.Errorf("%w: %s lost its mapping", pin.ErrSyncInvariant, p.Key())
		}

		if err != nil {
			return errors.Join(err, restoreAll(c.scope, removals))
		}

		removals = append(removals, *r)
	}

	n, pos, err := c.scope.Graph.RemoveNode(c.nodeID)
	if err != nil {
		return errors.Join(err, restoreAll(c.scope, removals))
	}

	c.node, c.position, c.removals = n, pos, removals

	return nil
}

// Revert implements Command.
func (c *RemoveNodeCommand) Revert() error {
	if err := c.scope.Graph.RestoreNode(c.node, c.position); err != nil {
		return err
	}

	return restoreAll(c.scope, c.removals)
}

// unmapPort removes the mapping of a port if it has one.
func unmapPort(scope Scope, nodeID, portName string) (*pin.Removal, error) {
	vp, mapped, err := scope.Pins.FindVirtualPinForPort(scope.CompositeID, nodeID, portName)
	if err != nil || !mapped {
		return nil, err
	}

	r, err := scope.Pins.RemoveMapping(scope.CompositeID, vp.PinIndex, nodeID, portName)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// restoreAll restores removals in reverse order so every recorded position
// is valid again when it is used.
func restoreAll(scope Scope, removals []pin.Removal) error {
	var errs []error

	for _, r := range slices.Backward(removals) {
		if err := scope.Pins.RestoreMapping(scope.CompositeID, r); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
