package pin

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outPort(node, port string) MappedPort {
	return MappedPort{NodeID: node, PortName: port}
}

func inPort(node, port string) MappedPort {
	return MappedPort{NodeID: node, PortName: port, IsInput: true}
}

var outSpec = PinSpec{Name: "Result", Type: "float"}

// assertInvariants checks every structural invariant of the composite.
func assertInvariants(t *testing.T, c *Composite) {
	t.Helper()

	seenIndex := map[int]bool{}
	seenPort := map[PortKey]int{}

	for _, vp := range c.Pins() {
		assert.Positive(t, vp.PinIndex)
		assert.False(t, seenIndex[vp.PinIndex], "duplicate pin index %d", vp.PinIndex)
		seenIndex[vp.PinIndex] = true

		assert.NotEmpty(t, vp.MappedPorts, "%s has no mapped ports", vp.Label())

		for _, p := range vp.MappedPorts {
			owner, dup := seenPort[p.Key()]
			assert.False(t, dup, "%s mapped by pin %d and %s", p.Key(), owner, vp.Label())
			seenPort[p.Key()] = vp.PinIndex

			assert.True(t, vp.Accepts(p.IsInput, p.IsFlow))

			got, ok := c.PinForPort(p.Key())
			require.True(t, ok)
			assert.Equal(t, vp.PinIndex, got.PinIndex)
		}
	}

	assert.Len(t, c.byPort, len(seenPort), "port index out of sync")
}

func TestCreatePin_AllocatesSequentialIndices(t *testing.T) {
	c := NewEmptyComposite("comp")

	p1, err := c.CreatePin(outSpec, outPort("A", "Out"))
	require.NoError(t, err)
	assert.Equal(t, 1, p1.PinIndex)
	assert.Equal(t, MergeLast, p1.MergeStrategy)

	p2, err := c.CreatePin(outSpec, outPort("B", "Out"))
	require.NoError(t, err)
	assert.Equal(t, 2, p2.PinIndex)

	assertInvariants(t, c)
}

func TestCreatePin_IndexNotReusedAfterDelete(t *testing.T) {
	c := NewEmptyComposite("comp")

	_, err := c.CreatePin(outSpec, outPort("A", "Out"))
	require.NoError(t, err)
	p2, err := c.CreatePin(outSpec, outPort("B", "Out"))
	require.NoError(t, err)

	r, err := c.RemoveMapping(p2.PinIndex, outPort("B", "Out").Key())
	require.NoError(t, err)
	require.True(t, r.PinDeleted)

	p3, err := c.CreatePin(outSpec, outPort("C", "Out"))
	require.NoError(t, err)
	assert.Equal(t, 3, p3.PinIndex)
}

func TestCreatePin_Failures(t *testing.T) {
	c := NewEmptyComposite("comp")
	_, err := c.CreatePin(outSpec, outPort("A", "Out"))
	require.NoError(t, err)

	tests := []struct {
		name string
		spec PinSpec
		seed MappedPort
		err  error
	}{
		{name: "already mapped", spec: outSpec, seed: outPort("A", "Out"), err: ErrDuplicateMapping},
		{name: "direction mismatch", spec: outSpec, seed: inPort("B", "In"), err: ErrDirectionMismatch},
		{name: "flow mismatch", spec: PinSpec{IsFlow: true}, seed: outPort("B", "Out"), err: ErrDirectionMismatch},
		{name: "empty port", spec: outSpec, seed: outPort("B", ""), err: ErrInvalidPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := c.Definition()

			_, err := c.CreatePin(tt.spec, tt.seed)
			require.ErrorIs(t, err, tt.err)

			assert.Empty(t, cmp.Diff(before, c.Definition()))
			assert.Equal(t, 2, c.NextIndex())
		})
	}
}

func TestAddMapping(t *testing.T) {
	c := NewEmptyComposite("comp")
	p1, err := c.CreatePin(outSpec, outPort("A", "Out"))
	require.NoError(t, err)
	p2, err := c.CreatePin(outSpec, outPort("B", "Out"))
	require.NoError(t, err)

	require.NoError(t, c.AddMapping(p2.PinIndex, outPort("C", "Out"), "float"))

	got, ok := c.Pin(p2.PinIndex)
	require.True(t, ok)
	assert.Equal(t, []MappedPort{outPort("B", "Out"), outPort("C", "Out")}, got.MappedPorts)

	t.Run("duplicate on same pin", func(t *testing.T) {
		err := c.AddMapping(p2.PinIndex, outPort("C", "Out"), "")
		require.ErrorIs(t, err, ErrDuplicateMapping)

		got, _ := c.Pin(p2.PinIndex)
		assert.Len(t, got.MappedPorts, 2)
	})

	t.Run("duplicate on other pin", func(t *testing.T) {
		err := c.AddMapping(p1.PinIndex, outPort("C", "Out"), "")
		require.ErrorIs(t, err, ErrDuplicateMapping)

		got, _ := c.Pin(p1.PinIndex)
		assert.Len(t, got.MappedPorts, 1)
	})

	t.Run("missing pin", func(t *testing.T) {
		require.ErrorIs(t, c.AddMapping(99, outPort("D", "Out"), ""), ErrPinNotFound)
	})

	t.Run("direction mismatch", func(t *testing.T) {
		require.ErrorIs(t, c.AddMapping(p1.PinIndex, inPort("D", "In"), ""), ErrDirectionMismatch)
	})

	t.Run("flow mismatch", func(t *testing.T) {
		flow := outPort("D", "Exec")
		flow.IsFlow = true
		require.ErrorIs(t, c.AddMapping(p1.PinIndex, flow, ""), ErrDirectionMismatch)
	})

	t.Run("type ignored unless strict", func(t *testing.T) {
		require.NoError(t, c.AddMapping(p1.PinIndex, outPort("E", "Out"), "string"))
	})

	t.Run("strict types", func(t *testing.T) {
		c.SetStrictTypes(true)
		defer c.SetStrictTypes(false)

		require.ErrorIs(t, c.AddMapping(p1.PinIndex, outPort("F", "Out"), "string"), ErrTypeMismatch)
		require.NoError(t, c.AddMapping(p1.PinIndex, outPort("F", "Out"), "float"))
	})

	assertInvariants(t, c)
}

func TestRemoveMapping(t *testing.T) {
	c := NewEmptyComposite("comp")
	p1, err := c.CreatePin(outSpec, outPort("A", "Out"))
	require.NoError(t, err)
	require.NoError(t, c.AddMapping(p1.PinIndex, outPort("B", "Out"), ""))
	require.NoError(t, c.AddMapping(p1.PinIndex, outPort("C", "Out"), ""))

	r, err := c.RemoveMapping(p1.PinIndex, outPort("B", "Out").Key())
	require.NoError(t, err)
	assert.False(t, r.PinDeleted)
	assert.Equal(t, 1, r.PortPosition)
	assert.Len(t, r.Pin.MappedPorts, 3)

	_, ok := c.PinForPort(outPort("B", "Out").Key())
	assert.False(t, ok)

	_, err = c.RemoveMapping(p1.PinIndex, outPort("B", "Out").Key())
	require.ErrorIs(t, err, ErrPortNotMapped)

	_, err = c.RemoveMapping(42, outPort("A", "Out").Key())
	require.ErrorIs(t, err, ErrPinNotFound)

	assertInvariants(t, c)
}

func TestRemoveMapping_LastMappingDeletesPin(t *testing.T) {
	c := NewEmptyComposite("comp")
	p1, err := c.CreatePin(outSpec, outPort("A", "Out"))
	require.NoError(t, err)

	r, err := c.RemoveMapping(p1.PinIndex, outPort("A", "Out").Key())
	require.NoError(t, err)
	assert.True(t, r.PinDeleted)
	assert.Equal(t, 0, c.Len())

	_, ok := c.PinForPort(outPort("A", "Out").Key())
	assert.False(t, ok)
	_, ok = c.Pin(p1.PinIndex)
	assert.False(t, ok)
}

func TestRestoreMapping_ExactPriorState(t *testing.T) {
	c := NewEmptyComposite("comp")
	p1, err := c.CreatePin(outSpec, outPort("A", "Out"))
	require.NoError(t, err)
	p2, err := c.CreatePin(PinSpec{Name: "Hits", Type: "int"}, outPort("B", "Out"))
	require.NoError(t, err)
	require.NoError(t, c.AddMapping(p2.PinIndex, outPort("C", "Out"), ""))
	require.NoError(t, c.AddMapping(p2.PinIndex, outPort("D", "Out"), ""))
	require.NoError(t, c.SetMergeStrategy(p2.PinIndex, MergeArray))
	_, err = c.CreatePin(outSpec, outPort("E", "Out"))
	require.NoError(t, err)

	t.Run("middle port", func(t *testing.T) {
		before := c.Definition()

		r, err := c.RemoveMapping(p2.PinIndex, outPort("C", "Out").Key())
		require.NoError(t, err)
		require.NoError(t, c.RestoreMapping(r))

		assert.Empty(t, cmp.Diff(before, c.Definition()))
		assertInvariants(t, c)
	})

	t.Run("garbage collected pin", func(t *testing.T) {
		before := c.Definition()

		r, err := c.RemoveMapping(p1.PinIndex, outPort("A", "Out").Key())
		require.NoError(t, err)
		require.True(t, r.PinDeleted)
		require.NoError(t, c.RestoreMapping(r))

		assert.Empty(t, cmp.Diff(before, c.Definition()))
		assertInvariants(t, c)
	})

	t.Run("deleted pin", func(t *testing.T) {
		before := c.Definition()

		r, err := c.DeletePin(p2.PinIndex)
		require.NoError(t, err)
		_, ok := c.PinForPort(outPort("D", "Out").Key())
		assert.False(t, ok)

		require.NoError(t, c.RestoreMapping(r))
		assert.Empty(t, cmp.Diff(before, c.Definition()))
	})

	t.Run("conflict", func(t *testing.T) {
		r, err := c.RemoveMapping(p2.PinIndex, outPort("C", "Out").Key())
		require.NoError(t, err)
		require.NoError(t, c.AddMapping(p1.PinIndex, outPort("C", "Out"), ""))

		err = c.RestoreMapping(r)
		require.ErrorIs(t, err, ErrSyncInvariant)
		require.ErrorIs(t, err, ErrDuplicateMapping)
	})
}

func TestRestorePin_IndexInUse(t *testing.T) {
	c := NewEmptyComposite("comp")
	p1, err := c.CreatePin(outSpec, outPort("A", "Out"))
	require.NoError(t, err)

	snapshot := p1.Clone()
	snapshot.MappedPorts = []MappedPort{outPort("Z", "Out")}

	err = c.RestorePin(snapshot, 0)
	require.ErrorIs(t, err, ErrPinIndexInUse)
	assert.Equal(t, 1, c.Len())
}

func TestRestorePin_AdvancesAllocator(t *testing.T) {
	c := NewEmptyComposite("comp")

	require.NoError(t, c.RestorePin(VirtualPinConfig{
		PinIndex:      7,
		MergeStrategy: MergeFirst,
		MappedPorts:   []MappedPort{outPort("A", "Out")},
	}, 0))

	assert.Equal(t, 8, c.NextIndex())
}

func TestRenamePort(t *testing.T) {
	c := NewEmptyComposite("comp")
	p1, err := c.CreatePin(outSpec, outPort("A", "Out"))
	require.NoError(t, err)
	require.NoError(t, c.AddMapping(p1.PinIndex, outPort("A", "Extra"), ""))
	_, err = c.CreatePin(outSpec, outPort("B", "Out"))
	require.NoError(t, err)

	index, renamed, err := c.RenamePort("A", "Out", "Damage")
	require.NoError(t, err)
	assert.True(t, renamed)
	assert.Equal(t, p1.PinIndex, index)

	got, ok := c.PinForPort(PortKey{NodeID: "A", PortName: "Damage"})
	require.True(t, ok)
	assert.Equal(t, p1.PinIndex, got.PinIndex)
	assert.Equal(t, "Damage", got.MappedPorts[0].PortName)

	_, ok = c.PinForPort(PortKey{NodeID: "A", PortName: "Out"})
	assert.False(t, ok)

	t.Run("unmapped port", func(t *testing.T) {
		_, renamed, err := c.RenamePort("Q", "Out", "In")
		require.NoError(t, err)
		assert.False(t, renamed)
	})

	t.Run("onto a mapped name", func(t *testing.T) {
		before := c.Definition()

		_, _, err := c.RenamePort("A", "Damage", "Extra")
		require.ErrorIs(t, err, ErrSyncInvariant)
		assert.Empty(t, cmp.Diff(before, c.Definition()))
	})

	assertInvariants(t, c)
}

func TestSetMergeStrategy(t *testing.T) {
	c := NewEmptyComposite("comp")
	p1, err := c.CreatePin(outSpec, outPort("A", "Out"))
	require.NoError(t, err)

	require.NoError(t, c.SetMergeStrategy(p1.PinIndex, MergeFirst))
	got, _ := c.Pin(p1.PinIndex)
	assert.Equal(t, MergeFirst, got.MergeStrategy)

	require.ErrorIs(t, c.SetMergeStrategy(p1.PinIndex, "newest"), ErrInvalidMergeStrategy)
	require.ErrorIs(t, c.SetMergeStrategy(5, MergeArray), ErrPinNotFound)

	got, _ = c.Pin(p1.PinIndex)
	assert.Equal(t, MergeFirst, got.MergeStrategy)
}

func TestPinCopiesAreDetached(t *testing.T) {
	c := NewEmptyComposite("comp")
	p1, err := c.CreatePin(outSpec, outPort("A", "Out"))
	require.NoError(t, err)

	got, _ := c.Pin(p1.PinIndex)
	got.MappedPorts[0].PortName = "Mutated"
	got.PinName = "Mutated"

	again, _ := c.Pin(p1.PinIndex)
	assert.Equal(t, "Out", again.MappedPorts[0].PortName)
	assert.Equal(t, "Result", again.PinName)
}

func TestNewComposite(t *testing.T) {
	def := CompositeDefinition{
		CompositeID: "comp",
		VirtualPins: []VirtualPinConfig{
			{PinIndex: 4, PinName: "X", MappedPorts: []MappedPort{outPort("A", "Out")}},
			{PinIndex: 2, PinName: "Y", IsInput: true, MappedPorts: []MappedPort{inPort("B", "In"), inPort("C", "In")}},
		},
	}

	c, diags := NewComposite(def)
	require.NotNil(t, c, diags.Error())

	assert.Equal(t, 5, c.NextIndex())
	assert.Equal(t, "", string(def.VirtualPins[0].MergeStrategy), "input definition must not be modified")

	got, ok := c.Pin(4)
	require.True(t, ok)
	assert.Equal(t, MergeLast, got.MergeStrategy)

	got, ok = c.PinForPort(PortKey{NodeID: "C", PortName: "In"})
	require.True(t, ok)
	assert.Equal(t, 2, got.PinIndex)

	assertInvariants(t, c)
}

func TestNewComposite_RejectsInvalid(t *testing.T) {
	def := CompositeDefinition{
		CompositeID: "comp",
		VirtualPins: []VirtualPinConfig{
			{PinIndex: 1, MappedPorts: []MappedPort{outPort("A", "Out")}},
			{PinIndex: 2, MappedPorts: []MappedPort{outPort("A", "Out")}},
		},
	}

	c, diags := NewComposite(def)
	assert.Nil(t, c)
	require.True(t, diags.HasErrors())
	assert.True(t, diags.HasCode(CodeDuplicatePortMapping))
}
