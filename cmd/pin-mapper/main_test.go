package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pin-mapper/internal/pin"
	"pin-mapper/internal/store"
)

type cli struct {
	t      *testing.T
	config string
}

func newCLI(t *testing.T, backend string) *cli {
	t.Helper()

	dir := t.TempDir()

	path := filepath.Join(dir, "composites")
	if backend == "sqlite" {
		path = filepath.Join(dir, "pins.db")
	}

	cfg := "storage:\n  backend: " + backend + "\n  path: " + path + "\nlog:\n  level: error\n"
	configPath := filepath.Join(dir, "pin-mapper.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))

	return &cli{t: t, config: configPath}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()

	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", c.config}, args...))

	err := root.Execute()

	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()

	out, err := c.run(args...)
	require.NoError(c.t, err, out)

	return out
}

func TestCLI_EditComposite(t *testing.T) {
	for _, backend := range []string{"file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			c := newCLI(t, backend)

			assert.Equal(t, "combo\n", c.mustRun("init", "combo"))
			assert.Equal(t, "combo\n", c.mustRun("list"))

			out := c.mustRun("create", "combo", "hit_1.Out", "--name", "Damage", "--type", "float")
			assert.Contains(t, out, `Out 1 (pin 1 "Damage")`)

			c.mustRun("add", "combo", "1", "hit_2.Out")
			c.mustRun("strategy", "combo", "1", "array")
			c.mustRun("create", "combo", "start.Exec", "--input", "--flow", "--name", "Start")

			out = c.mustRun("show", "combo")
			assert.Contains(t, out, "hit_1.Out, hit_2.Out")
			assert.Contains(t, out, "array")
			assert.Contains(t, out, "FlowIn 2")

			out = c.mustRun("eval", "combo", "1", "hit_2.Out=7", "hit_1.Out=3")
			assert.Contains(t, out, "pin 1 = [3 7]")

			out = c.mustRun("remove", "combo", "2", "start.Exec")
			assert.Contains(t, out, `deleted pin 2 "Start"`)

			out = c.mustRun("show", "combo", "--format", "json")
			def, err := store.Decode([]byte(out), store.FormatJSON)
			require.NoError(t, err)
			require.Len(t, def.VirtualPins, 1)
			assert.Equal(t, pin.MergeArray, def.VirtualPins[0].MergeStrategy)

			// Indices are not reused within a session, but a reload
			// continues after the highest stored index.
			out = c.mustRun("create", "combo", "heal.Out", "--name", "Heal")
			assert.Contains(t, out, "pin 2")

			c.mustRun("delete", "combo")
			assert.Empty(t, c.mustRun("list"))
		})
	}
}

func TestCLI_Errors(t *testing.T) {
	c := newCLI(t, "file")
	c.mustRun("init", "combo")
	c.mustRun("create", "combo", "a.Out")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "duplicate init", args: []string{"init", "combo"}, want: "already open"},
		{name: "missing composite", args: []string{"show", "nope"}, want: "composite not found"},
		{name: "duplicate mapping", args: []string{"add", "combo", "1", "a.Out"}, want: "already mapped"},
		{name: "unknown pin", args: []string{"add", "combo", "9", "b.Out"}, want: "not found"},
		{name: "bad strategy", args: []string{"strategy", "combo", "1", "sum"}, want: "merge strategy"},
		{name: "bad port ref", args: []string{"create", "combo", "nodot"}, want: "expected node.port"},
		{name: "bad pin index", args: []string{"remove", "combo", "x", "a.Out"}, want: "invalid pin index"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.run(tt.args...)
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(out), tt.want)
		})
	}
}

func TestCLI_InitGeneratesID(t *testing.T) {
	c := newCLI(t, "file")

	id := strings.TrimSpace(c.mustRun("init"))
	assert.Len(t, id, 36)
	assert.Equal(t, id+"\n", c.mustRun("list"))
}

func TestCLI_EvalInputPin(t *testing.T) {
	c := newCLI(t, "file")
	c.mustRun("init", "combo")
	c.mustRun("create", "combo", "a.In", "--input")
	c.mustRun("add", "combo", "1", "b.In")

	out := c.mustRun("eval", "combo", "1", "42")
	assert.Equal(t, "a.In = 42\nb.In = 42\n", out)
}

func TestCLI_Validate(t *testing.T) {
	c := newCLI(t, "file")
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, store.WriteFile(pin.CompositeDefinition{
		CompositeID: "good",
		VirtualPins: []pin.VirtualPinConfig{{
			PinIndex:    1,
			PinName:     "Out",
			MappedPorts: []pin.MappedPort{{NodeID: "a", PortName: "Out"}},
		}},
	}, good))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, store.WriteFile(pin.CompositeDefinition{
		CompositeID: "bad",
		VirtualPins: []pin.VirtualPinConfig{
			{PinIndex: 1, PinName: "A", MappedPorts: []pin.MappedPort{{NodeID: "a", PortName: "Out"}}},
			{PinIndex: 1, PinName: "B"},
		},
	}, bad))

	out := c.mustRun("validate", good)
	assert.Contains(t, out, good+": ok")

	out, err := c.run("validate", good, bad, filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, errInvalidFiles)
	assert.Contains(t, out, bad+": invalid")
	assert.Contains(t, out, "duplicate_pin_index")
	assert.Contains(t, out, "empty_mapped_ports")
	assert.Contains(t, out, "missing.json: failed to read")

	// Reports follow argument order.
	assert.Less(t, strings.Index(out, good), strings.Index(out, bad))
}

func TestCLI_Dump(t *testing.T) {
	c := newCLI(t, "file")
	c.mustRun("init", "combo")
	c.mustRun("create", "combo", "a.Out", "--name", "Damage")

	out := c.mustRun("dump", "combo")
	assert.Contains(t, out, "CompositeDefinition")
	assert.Contains(t, out, `PinName: (string) (len=6) "Damage"`)
}

func TestParsePortRef(t *testing.T) {
	key, err := parsePortRef("group.hit_1.Out")
	require.NoError(t, err)
	assert.Equal(t, pin.PortKey{NodeID: "group.hit_1", PortName: "Out"}, key)

	for _, ref := range []string{"", "Out", ".Out", "node."} {
		_, err := parsePortRef(ref)
		require.ErrorIs(t, err, pin.ErrInvalidPort, ref)
	}
}

func TestCLI_Suggest(t *testing.T) {
	c := newCLI(t, "file")

	c.mustRun("init", "combo")
	c.mustRun("create", "combo", "hit_1.Out", "--name", "Damage", "--type", "float")
	c.mustRun("create", "combo", "heal.Out", "--name", "Heal", "--type", "float")

	out := c.mustRun("suggest", "combo", "hit_2.DamageOut", "--type", "float", "--top", "1")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2, out)
	assert.True(t, strings.HasPrefix(lines[1], "1 "), out)
	assert.Contains(t, lines[1], "1.00")
	assert.Contains(t, lines[1], "identical")

	out = c.mustRun("suggest", "combo", "start.Exec", "--input", "--flow")
	assert.Contains(t, out, "no virtual pin fits start.Exec")

	_, err := c.run("suggest", "combo", "hit_1.Out")
	require.ErrorIs(t, err, pin.ErrDuplicateMapping)
}
