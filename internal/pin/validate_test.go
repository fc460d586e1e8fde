package pin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefinition(t *testing.T) {
	tests := []struct {
		name     string
		def      CompositeDefinition
		wantErr  []string
		wantWarn []string
	}{
		{
			name: "valid",
			def: CompositeDefinition{CompositeID: "c", VirtualPins: []VirtualPinConfig{
				{PinIndex: 1, PinName: "A", MergeStrategy: MergeArray, MappedPorts: []MappedPort{outPort("n", "o")}},
			}},
		},
		{
			name:    "missing id",
			def:     CompositeDefinition{},
			wantErr: []string{CodeMissingCompositeID},
		},
		{
			name: "bad indices",
			def: CompositeDefinition{CompositeID: "c", VirtualPins: []VirtualPinConfig{
				{PinIndex: 0, PinName: "A", MappedPorts: []MappedPort{outPort("n", "a")}},
				{PinIndex: 3, PinName: "B", MappedPorts: []MappedPort{outPort("n", "b")}},
				{PinIndex: 3, PinName: "C", MappedPorts: []MappedPort{outPort("n", "c")}},
			}},
			wantErr: []string{CodeNonPositivePinIndex, CodeDuplicatePinIndex},
		},
		{
			name: "empty mapping",
			def: CompositeDefinition{CompositeID: "c", VirtualPins: []VirtualPinConfig{
				{PinIndex: 1, PinName: "A"},
			}},
			wantErr: []string{CodeEmptyMappedPorts},
		},
		{
			name: "port problems",
			def: CompositeDefinition{CompositeID: "c", VirtualPins: []VirtualPinConfig{
				{PinIndex: 1, PinName: "A", MappedPorts: []MappedPort{outPort("n", "o"), outPort("", "o")}},
				{PinIndex: 2, PinName: "B", MappedPorts: []MappedPort{outPort("n", "o"), inPort("m", "i")}},
			}},
			wantErr: []string{CodeInvalidPortRef, CodeDuplicatePortMapping, CodeDirectionMismatch},
		},
		{
			name: "strategies",
			def: CompositeDefinition{CompositeID: "c", VirtualPins: []VirtualPinConfig{
				{PinIndex: 1, MergeStrategy: "newest", MappedPorts: []MappedPort{outPort("n", "o")}},
				{PinIndex: 2, PinName: "B", IsInput: true, MergeStrategy: MergeArray, MappedPorts: []MappedPort{inPort("n", "i")}},
			}},
			wantErr:  []string{CodeInvalidMergeStrategy},
			wantWarn: []string{CodeUnnamedPin, CodeMergeStrategyIgnored},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateDefinition(tt.def)

			require.Len(t, res.Errors, len(tt.wantErr), "errors: %v", res.Errors)
			for i, code := range tt.wantErr {
				assert.Equal(t, code, res.Errors[i].Code)
			}

			require.Len(t, res.Warnings, len(tt.wantWarn), "warnings: %v", res.Warnings)
			for i, code := range tt.wantWarn {
				assert.Equal(t, code, res.Warnings[i].Code)
			}
		})
	}
}

func TestParseMergeStrategy(t *testing.T) {
	for _, in := range []string{"last", " First ", "ARRAY"} {
		m, err := ParseMergeStrategy(in)
		require.NoError(t, err, in)
		assert.True(t, m.IsValid())
	}

	_, err := ParseMergeStrategy("sum")
	require.ErrorIs(t, err, ErrInvalidMergeStrategy)
}

func TestEffectiveMergeStrategy(t *testing.T) {
	assert.Equal(t, MergeArray, VirtualPinConfig{MergeStrategy: MergeArray}.EffectiveMergeStrategy())
	assert.Equal(t, MergeLast, VirtualPinConfig{IsInput: true, MergeStrategy: MergeArray}.EffectiveMergeStrategy())
	assert.Equal(t, MergeLast, VirtualPinConfig{}.EffectiveMergeStrategy())
}
