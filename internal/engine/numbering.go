package engine

import (
	"fmt"
	"slices"

	"pin-mapper/internal/pin"
)

// NumberingScheme selects how display numbers are derived from pin indices.
type NumberingScheme string

const (
	// NumberByIndex shows the pin index itself. Numbers never change while
	// the pin exists.
	NumberByIndex NumberingScheme = "index"
	// NumberByOrdinal shows the 1-based position among pins with the same
	// prefix, ordered by pin index. Deleting a lower pin shifts the number.
	NumberByOrdinal NumberingScheme = "ordinal"
)

// IsValid returns true if the scheme is a recognized value.
func (s NumberingScheme) IsValid() bool {
	return s == NumberByIndex || s == NumberByOrdinal
}

// Display prefixes, one per direction and flow kind.
const (
	PrefixIn      = "In"
	PrefixOut     = "Out"
	PrefixFlowIn  = "FlowIn"
	PrefixFlowOut = "FlowOut"
)

// DisplayNumber is the label a pin is shown with, e.g. "Out 2".
type DisplayNumber struct {
	Prefix string
	Number int
}

// String returns "Prefix Number".
func (d DisplayNumber) String() string {
	return fmt.Sprintf("%s %d", d.Prefix, d.Number)
}

// DisplayPrefix returns the prefix for the pin's direction and flow kind.
func DisplayPrefix(vp pin.VirtualPinConfig) string {
	switch {
	case vp.IsFlow && vp.IsInput:
		return PrefixFlowIn
	case vp.IsFlow:
		return PrefixFlowOut
	case vp.IsInput:
		return PrefixIn
	default:
		return PrefixOut
	}
}

func displayNumber(scheme NumberingScheme, pins []pin.VirtualPinConfig, target pin.VirtualPinConfig) DisplayNumber {
	prefix := DisplayPrefix(target)

	if scheme != NumberByOrdinal {
		return DisplayNumber{Prefix: prefix, Number: target.PinIndex}
	}

	var indices []int

	for _, vp := range pins {
		if DisplayPrefix(vp) == prefix {
			indices = append(indices, vp.PinIndex)
		}
	}

	slices.Sort(indices)

	return DisplayNumber{Prefix: prefix, Number: slices.Index(indices, target.PinIndex) + 1}
}
