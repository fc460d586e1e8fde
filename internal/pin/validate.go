package pin

import (
	"fmt"

	"pin-mapper/internal/diagnostic"
)

// Diagnostic codes reported by ValidateDefinition.
const (
	CodeMissingCompositeID   = "missing_composite_id"
	CodeNonPositivePinIndex  = "non_positive_pin_index"
	CodeDuplicatePinIndex    = "duplicate_pin_index"
	CodeEmptyMappedPorts     = "empty_mapped_ports"
	CodeInvalidPortRef       = "invalid_port_ref"
	CodeDuplicatePortMapping = "duplicate_port_mapping"
	CodeDirectionMismatch    = "direction_mismatch"
	CodeInvalidMergeStrategy = "invalid_merge_strategy"
	CodeMergeStrategyIgnored = "merge_strategy_ignored"
	CodeUnnamedPin           = "unnamed_pin"
)

// ValidateDefinition checks a persisted definition against the composite
// invariants. It never stops at the first problem.
func ValidateDefinition(def CompositeDefinition) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	cid := def.CompositeID

	if cid == "" {
		res.AddError(CodeMissingCompositeID, "composite id is empty", "", "")
	}

	seenIndex := map[int]struct{}{}
	owners := map[PortKey]int{}

	for i := range def.VirtualPins {
		vp := &def.VirtualPins[i]
		subject := vp.Label()

		if vp.PinIndex <= 0 {
			res.AddError(CodeNonPositivePinIndex, fmt.Sprintf("pin index %d is not positive", vp.PinIndex), cid, subject)
		} else if _, dup := seenIndex[vp.PinIndex]; dup {
			res.AddError(CodeDuplicatePinIndex, fmt.Sprintf("pin index %d is used more than once", vp.PinIndex), cid, subject)
		}

		seenIndex[vp.PinIndex] = struct{}{}

		if vp.PinName == "" {
			res.AddWarning(CodeUnnamedPin, "pin has no name", cid, subject)
		}

		validateStrategy(res, cid, vp)

		if len(vp.MappedPorts) == 0 {
			res.AddError(CodeEmptyMappedPorts, "pin has no mapped ports", cid, subject)
			continue
		}

		for _, p := range vp.MappedPorts {
			validateMappedPort(res, cid, vp, p, owners)
		}
	}

	return res
}

func validateStrategy(res *diagnostic.Diagnostics, cid string, vp *VirtualPinConfig) {
	switch {
	case vp.MergeStrategy == "":
		return
	case !vp.MergeStrategy.IsValid():
		res.AddError(CodeInvalidMergeStrategy,
			fmt.Sprintf("merge strategy %q is not one of %v", vp.MergeStrategy, MergeStrategies()), cid, vp.Label())
	case vp.IsInput && vp.MergeStrategy != DefaultMergeStrategy:
		res.AddWarning(CodeMergeStrategyIgnored,
			fmt.Sprintf("merge strategy %q has no effect on an input pin", vp.MergeStrategy), cid, vp.Label())
	}
}

func validateMappedPort(res *diagnostic.Diagnostics, cid string, vp *VirtualPinConfig, p MappedPort, owners map[PortKey]int) {
	subject := vp.Label() + " " + p.Key().String()

	if !p.valid() {
		res.AddError(CodeInvalidPortRef, "mapped port needs a node id and a port name", cid, subject)
		return
	}

	if owner, dup := owners[p.Key()]; dup {
		res.AddError(CodeDuplicatePortMapping,
			fmt.Sprintf("port is already mapped by %s", pinLabel(owner)), cid, subject)
	} else {
		owners[p.Key()] = vp.PinIndex
	}

	if !vp.Accepts(p.IsInput, p.IsFlow) {
		res.AddError(CodeDirectionMismatch,
			fmt.Sprintf("port (input=%t, flow=%t) does not match pin (input=%t, flow=%t)",
				p.IsInput, p.IsFlow, vp.IsInput, vp.IsFlow), cid, subject)
	}
}
