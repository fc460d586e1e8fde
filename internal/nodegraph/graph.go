// Package nodegraph is an in-memory model of the nodes inside a composite.
// It is the source of truth for which ports exist and for their direction,
// flow kind and type; virtual pins only reference its ports by name.
package nodegraph

import (
	"errors"
	"fmt"
	"slices"

	"pin-mapper/internal/common"
	"pin-mapper/internal/pin"
)

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrNodeExists   = errors.New("node already exists")
	ErrPortNotFound = errors.New("port not found")
	ErrPortExists   = errors.New("port already exists")
)

// Port is a named input or output of a node.
type Port struct {
	Name    string
	Type    string
	IsInput bool
	IsFlow  bool
}

// Node is an internal node of a composite.
type Node struct {
	ID    string
	Type  string
	Ports []Port
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Ports = slices.Clone(n.Ports)
	return n
}

func (n *Node) portPosition(name string) int {
	return slices.IndexFunc(n.Ports, func(p Port) bool { return p.Name == name })
}

// Graph holds nodes in insertion order.
type Graph struct {
	nodes []*Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddNode appends a node.
func (g *Graph) AddNode(id, typ string, ports ...Port) error {
	if g.find(id) >= 0 {
		return fmt.Errorf("%w: %s", ErrNodeExists, id)
	}

	g.nodes = append(g.nodes, &Node{ID: id, Type: typ, Ports: slices.Clone(ports)})

	return nil
}

// Node returns a copy of the node.
func (g *Graph) Node(id string) (Node, bool) {
	pos := g.find(id)
	if pos < 0 {
		return Node{}, false
	}

	return g.nodes[pos].Clone(), true
}

// RemoveNode removes the node and returns it with its position.
func (g *Graph) RemoveNode(id string) (Node, int, error) {
	pos := g.find(id)
	if pos < 0 {
		return Node{}, -1, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	n := g.nodes[pos].Clone()
	g.nodes = common.RemoveAt(g.nodes, pos)

	return n, pos, nil
}

// RestoreNode inserts a node at position.
func (g *Graph) RestoreNode(n Node, position int) error {
	if g.find(n.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrNodeExists, n.ID)
	}

	restored := n.Clone()
	g.nodes = common.Insert(g.nodes, position, &restored)

	return nil
}

// Port returns the named port of a node.
func (g *Graph) Port(nodeID, name string) (Port, bool) {
	pos := g.find(nodeID)
	if pos < 0 {
		return Port{}, false
	}

	n := g.nodes[pos]

	i := n.portPosition(name)
	if i < 0 {
		return Port{}, false
	}

	return n.Ports[i], true
}

// MappedPort returns a mapping reference for the port along with its type.
func (g *Graph) MappedPort(nodeID, name string) (pin.MappedPort, string, error) {
	p, ok := g.Port(nodeID, name)
	if !ok {
		return pin.MappedPort{}, "", fmt.Errorf("%w: %s.%s", ErrPortNotFound, nodeID, name)
	}

	return pin.MappedPort{NodeID: nodeID, PortName: p.Name, IsInput: p.IsInput, IsFlow: p.IsFlow}, p.Type, nil
}

// RemovePort removes a port and returns it with its position on the node.
func (g *Graph) RemovePort(nodeID, name string) (Port, int, error) {
	n, err := g.node(nodeID)
	if err != nil {
		return Port{}, -1, err
	}

	i := n.portPosition(name)
	if i < 0 {
		return Port{}, -1, fmt.Errorf("%w: %s.%s", ErrPortNotFound, nodeID, name)
	}

	p := n.Ports[i]
	n.Ports = common.RemoveAt(n.Ports, i)

	return p, i, nil
}

// InsertPort adds a port at position on the node.
func (g *Graph) InsertPort(nodeID string, p Port, position int) error {
	n, err := g.node(nodeID)
	if err != nil {
		return err
	}

	if n.portPosition(p.Name) >= 0 {
		return fmt.Errorf("%w: %s.%s", ErrPortExists, nodeID, p.Name)
	}

	n.Ports = common.Insert(n.Ports, position, p)

	return nil
}

// RenamePort changes the name of a port.
func (g *Graph) RenamePort(nodeID, oldName, newName string) error {
	n, err := g.node(nodeID)
	if err != nil {
		return err
	}

	i := n.portPosition(oldName)
	if i < 0 {
		return fmt.Errorf("%w: %s.%s", ErrPortNotFound, nodeID, oldName)
	}

	if oldName != newName && n.portPosition(newName) >= 0 {
		return fmt.Errorf("%w: %s.%s", ErrPortExists, nodeID, newName)
	}

	n.Ports[i].Name = newName

	return nil
}

func (g *Graph) node(id string) (*Node, error) {
	pos := g.find(id)
	if pos < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	return g.nodes[pos], nil
}

func (g *Graph) find(id string) int {
	return slices.IndexFunc(g.nodes, func(n *Node) bool { return n.ID == id })
}
