package pin

import (
	"fmt"
	"slices"

	"pin-mapper/internal/common"
	"pin-mapper/internal/diagnostic"
)

// Composite owns the ordered virtual pins of one composite node together with
// an index of mapped ports and the pin-index allocator.
//
// A Composite is not safe for concurrent use.
type Composite struct {
	id          string
	pins        []*VirtualPinConfig
	byPort      map[PortKey]int
	nextIndex   int
	strictTypes bool
}

// NewEmptyComposite returns a composite without virtual pins.
func NewEmptyComposite(id string) *Composite {
	return &Composite{
		id:        id,
		byPort:    make(map[PortKey]int),
		nextIndex: 1,
	}
}

// NewComposite builds a composite from its persisted definition. The
// definition is validated once here; if it violates any invariant the
// composite is not built and the diagnostics describe every violation.
func NewComposite(def CompositeDefinition) (*Composite, *diagnostic.Diagnostics) {
	def = def.Clone()
	applyDefaults(&def)

	res := ValidateDefinition(def)
	if res.HasErrors() {
		return nil, res
	}

	c := NewEmptyComposite(def.CompositeID)
	for i := range def.VirtualPins {
		vp := def.VirtualPins[i]
		c.pins = append(c.pins, &vp)
		c.indexPin(&vp)

		if vp.PinIndex >= c.nextIndex {
			c.nextIndex = vp.PinIndex + 1
		}
	}

	return c, res
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(def *CompositeDefinition) {
	for i := range def.VirtualPins {
		if def.VirtualPins[i].MergeStrategy == "" {
			def.VirtualPins[i].MergeStrategy = DefaultMergeStrategy
		}
	}
}

// ID returns the composite identifier.
func (c *Composite) ID() string {
	return c.id
}

// SetStrictTypes enables exact pin_type matching when mappings are added.
func (c *Composite) SetStrictTypes(strict bool) {
	c.strictTypes = strict
}

// Len returns the number of virtual pins.
func (c *Composite) Len() int {
	return len(c.pins)
}

// NextIndex returns the index the next created pin will receive.
func (c *Composite) NextIndex() int {
	return c.nextIndex
}

// Definition returns a deep copy of the composite in its persisted form.
func (c *Composite) Definition() CompositeDefinition {
	return CompositeDefinition{
		CompositeID: c.id,
		VirtualPins: c.Pins(),
	}
}

// Pins returns copies of all virtual pins in collection order.
func (c *Composite) Pins() []VirtualPinConfig {
	out := make([]VirtualPinConfig, 0, len(c.pins))
	for _, vp := range c.pins {
		out = append(out, vp.Clone())
	}

	return out
}

// Pin returns a copy of the pin with the given index.
func (c *Composite) Pin(index int) (VirtualPinConfig, bool) {
	pos := c.pinPosition(index)
	if pos < 0 {
		return VirtualPinConfig{}, false
	}

	return c.pins[pos].Clone(), true
}

// PinForPort returns a copy of the pin that maps the given port.
func (c *Composite) PinForPort(key PortKey) (VirtualPinConfig, bool) {
	index, ok := c.byPort[key]
	if !ok {
		return VirtualPinConfig{}, false
	}

	return c.Pin(index)
}

// PortsOfNode returns all mapped ports that reference the node, in pin order.
func (c *Composite) PortsOfNode(nodeID string) []MappedPort {
	var out []MappedPort

	for _, vp := range c.pins {
		for _, p := range vp.MappedPorts {
			if p.NodeID == nodeID {
				out = append(out, p)
			}
		}
	}

	return out
}

// CreatePin exposes seed as a new virtual pin with the next free index.
func (c *Composite) CreatePin(spec PinSpec, seed MappedPort) (VirtualPinConfig, error) {
	if !seed.valid() {
		return VirtualPinConfig{}, fmt.Errorf("%w: %q", ErrInvalidPort, seed.Key())
	}

	if owner, ok := c.byPort[seed.Key()]; ok {
		return VirtualPinConfig{}, fmt.Errorf("%w: %s is mapped by %s", ErrDuplicateMapping, seed.Key(), pinLabel(owner))
	}

	if seed.IsInput != spec.IsInput || seed.IsFlow != spec.IsFlow {
		return VirtualPinConfig{}, fmt.Errorf("%w: port %s does not match the new pin", ErrDirectionMismatch, seed.Key())
	}

	vp := &VirtualPinConfig{
		PinIndex:      c.nextIndex,
		PinName:       spec.Name,
		PinType:       spec.Type,
		IsInput:       spec.IsInput,
		IsFlow:        spec.IsFlow,
		Description:   spec.Description,
		MergeStrategy: DefaultMergeStrategy,
		MappedPorts:   []MappedPort{seed},
	}

	c.nextIndex++
	c.pins = append(c.pins, vp)
	c.indexPin(vp)

	return vp.Clone(), nil
}

// AddMapping appends port to the pin's mapped ports. portType is only
// compared with the pin type when strict typing is enabled.
func (c *Composite) AddMapping(index int, port MappedPort, portType string) error {
	if !port.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPort, port.Key())
	}

	pos := c.pinPosition(index)
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrPinNotFound, pinLabel(index))
	}

	if owner, ok := c.byPort[port.Key()]; ok {
		return fmt.Errorf("%w: %s is mapped by %s", ErrDuplicateMapping, port.Key(), pinLabel(owner))
	}

	vp := c.pins[pos]
	if !vp.Accepts(port.IsInput, port.IsFlow) {
		return fmt.Errorf("%w: port %s cannot join %s", ErrDirectionMismatch, port.Key(), vp.Label())
	}

	if c.strictTypes && portType != "" && portType != vp.PinType {
		return fmt.Errorf("%w: port %s is %q, %s is %q", ErrTypeMismatch, port.Key(), portType, vp.Label(), vp.PinType)
	}

	vp.MappedPorts = append(vp.MappedPorts, port)
	c.byPort[port.Key()] = vp.PinIndex

	return nil
}

// RemoveMapping removes the port from the pin. When it was the last mapping
// the pin is deleted too, which the returned Removal reports.
func (c *Composite) RemoveMapping(index int, key PortKey) (Removal, error) {
	pos := c.pinPosition(index)
	if pos < 0 {
		return Removal{}, fmt.Errorf("%w: %s", ErrPinNotFound, pinLabel(index))
	}

	vp := c.pins[pos]

	portPos := vp.PortPosition(key)
	if portPos < 0 {
		return Removal{}, fmt.Errorf("%w: %s on %s", ErrPortNotMapped, key, vp.Label())
	}

	r := Removal{
		Port:         vp.MappedPorts[portPos],
		PinIndex:     index,
		PortPosition: portPos,
		Pin:          vp.Clone(),
		PinPosition:  pos,
	}

	delete(c.byPort, key)

	if common.IsSingle(vp.MappedPorts) {
		c.pins = common.RemoveAt(c.pins, pos)
		r.PinDeleted = true

		return r, nil
	}

	vp.MappedPorts = common.RemoveAt(slices.Clone(vp.MappedPorts), portPos)

	return r, nil
}

// DeletePin removes a pin and all of its mappings. The returned Removal
// snapshot restores it through RestoreMapping or RestorePin.
func (c *Composite) DeletePin(index int) (Removal, error) {
	pos := c.pinPosition(index)
	if pos < 0 {
		return Removal{}, fmt.Errorf("%w: %s", ErrPinNotFound, pinLabel(index))
	}

	vp := c.pins[pos]
	first, _ := common.First(vp.MappedPorts)

	for _, p := range vp.MappedPorts {
		delete(c.byPort, p.Key())
	}

	c.pins = common.RemoveAt(c.pins, pos)

	return Removal{
		Port:        first,
		PinIndex:    index,
		PinDeleted:  true,
		Pin:         vp.Clone(),
		PinPosition: pos,
	}, nil
}

// SetMergeStrategy changes the merge strategy of the pin.
func (c *Composite) SetMergeStrategy(index int, strategy MergeStrategy) error {
	if !strategy.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMergeStrategy, strategy)
	}

	pos := c.pinPosition(index)
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrPinNotFound, pinLabel(index))
	}

	c.pins[pos].MergeStrategy = strategy

	return nil
}

// RenamePin changes the display name of the pin.
func (c *Composite) RenamePin(index int, name string) error {
	pos := c.pinPosition(index)
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrPinNotFound, pinLabel(index))
	}

	c.pins[pos].PinName = name

	return nil
}

// SetDescription changes the description of the pin.
func (c *Composite) SetDescription(index int, description string) error {
	pos := c.pinPosition(index)
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrPinNotFound, pinLabel(index))
	}

	c.pins[pos].Description = description

	return nil
}

// RenamePort rewrites the mapping of (nodeID, oldName) to (nodeID, newName).
// It reports the affected pin and whether a mapping was rewritten; an
// unmapped port is not an error.
func (c *Composite) RenamePort(nodeID, oldName, newName string) (int, bool, error) {
	oldKey := PortKey{NodeID: nodeID, PortName: oldName}
	newKey := PortKey{NodeID: nodeID, PortName: newName}

	index, ok := c.byPort[oldKey]
	if !ok {
		return 0, false, nil
	}

	if oldName == newName {
		return index, false, nil
	}

	if newName == "" {
		return index, false, fmt.Errorf("%w: %w: empty name for %s", ErrSyncInvariant, ErrInvalidPort, oldKey)
	}

	if owner, taken := c.byPort[newKey]; taken {
		return index, false, fmt.Errorf("%w: %w: %s is mapped by %s", ErrSyncInvariant, ErrDuplicateMapping, newKey, pinLabel(owner))
	}

	pos := c.pinPosition(index)
	if pos < 0 {
		return index, false, fmt.Errorf("%w: port index points at missing %s", ErrSyncInvariant, pinLabel(index))
	}

	vp := c.pins[pos]

	portPos := vp.PortPosition(oldKey)
	if portPos < 0 {
		return index, false, fmt.Errorf("%w: %s not found on %s", ErrSyncInvariant, oldKey, vp.Label())
	}

	ports := slices.Clone(vp.MappedPorts)
	ports[portPos].PortName = newName
	vp.MappedPorts = ports

	delete(c.byPort, oldKey)
	c.byPort[newKey] = index

	return index, true, nil
}

// RestoreMapping undoes a removal described by r.
func (c *Composite) RestoreMapping(r Removal) error {
	if r.PinDeleted {
		return c.RestorePin(r.Pin, r.PinPosition)
	}

	pos := c.pinPosition(r.PinIndex)
	if pos < 0 {
		return fmt.Errorf("%w: %w: %s", ErrSyncInvariant, ErrPinNotFound, pinLabel(r.PinIndex))
	}

	if owner, ok := c.byPort[r.Port.Key()]; ok {
		return fmt.Errorf("%w: %w: %s is mapped by %s", ErrSyncInvariant, ErrDuplicateMapping, r.Port.Key(), pinLabel(owner))
	}

	vp := c.pins[pos]
	if !vp.Accepts(r.Port.IsInput, r.Port.IsFlow) {
		return fmt.Errorf("%w: %w: %s", ErrSyncInvariant, ErrDirectionMismatch, r.Port.Key())
	}

	vp.MappedPorts = common.Insert(slices.Clone(vp.MappedPorts), r.PortPosition, r.Port)
	c.byPort[r.Port.Key()] = vp.PinIndex

	return nil
}

// RestorePin re-inserts a previously deleted pin at position with its
// original index and mappings.
func (c *Composite) RestorePin(snapshot VirtualPinConfig, position int) error {
	if snapshot.PinIndex <= 0 {
		return fmt.Errorf("%w: non-positive index %d", ErrSyncInvariant, snapshot.PinIndex)
	}

	if c.pinPosition(snapshot.PinIndex) >= 0 {
		return fmt.Errorf("%w: %w: %s", ErrSyncInvariant, ErrPinIndexInUse, snapshot.Label())
	}

	if common.IsEmpty(snapshot.MappedPorts) {
		return fmt.Errorf("%w: %s has no mapped ports", ErrSyncInvariant, snapshot.Label())
	}

	seen := make(map[PortKey]struct{}, len(snapshot.MappedPorts))
	for _, p := range snapshot.MappedPorts {
		if owner, ok := c.byPort[p.Key()]; ok {
			return fmt.Errorf("%w: %w: %s is mapped by %s", ErrSyncInvariant, ErrDuplicateMapping, p.Key(), pinLabel(owner))
		}

		if _, dup := seen[p.Key()]; dup {
			return fmt.Errorf("%w: %w: %s twice on %s", ErrSyncInvariant, ErrDuplicateMapping, p.Key(), snapshot.Label())
		}

		if !snapshot.Accepts(p.IsInput, p.IsFlow) {
			return fmt.Errorf("%w: %w: %s", ErrSyncInvariant, ErrDirectionMismatch, p.Key())
		}

		seen[p.Key()] = struct{}{}
	}

	vp := snapshot.Clone()
	c.pins = common.Insert(c.pins, position, &vp)
	c.indexPin(&vp)

	if vp.PinIndex >= c.nextIndex {
		c.nextIndex = vp.PinIndex + 1
	}

	return nil
}

func (c *Composite) pinPosition(index int) int {
	return slices.IndexFunc(c.pins, func(vp *VirtualPinConfig) bool {
		return vp.PinIndex == index
	})
}

func (c *Composite) indexPin(vp *VirtualPinConfig) {
	for _, p := range vp.MappedPorts {
		c.byPort[p.Key()] = vp.PinIndex
	}
}
