package match

import (
	"strings"

	"pin-mapper/internal/common"
)

// TypeCompatibility classifies how a port type relates to a pin type.
type TypeCompatibility int

const (
	// TypeMismatch means both types are known and differ.
	TypeMismatch TypeCompatibility = iota
	// TypeUnknown means at least one side has no type.
	TypeUnknown
	// TypeEquivalent means the types differ only in case or surrounding space.
	TypeEquivalent
	// TypeIdentical means the type identifiers are equal.
	TypeIdentical
)

const (
	VerdictIdentical  = "identical"
	VerdictEquivalent = "equivalent"
	VerdictUnknown    = "unknown_type"
	VerdictMismatch   = "mismatch"
)

// String returns a human-readable name for the compatibility level.
func (c TypeCompatibility) String() string {
	switch c {
	case TypeIdentical:
		return VerdictIdentical
	case TypeEquivalent:
		return VerdictEquivalent
	case TypeUnknown:
		return VerdictUnknown
	case TypeMismatch:
		return VerdictMismatch
	default:
		return common.UnknownStr
	}
}

// score maps the level to [0, 1].
func (c TypeCompatibility) score() float64 {
	switch c {
	case TypeIdentical:
		return 1
	case TypeEquivalent:
		return 0.8
	case TypeUnknown:
		return 0.5
	default:
		return 0
	}
}

// CompareTypes classifies a port type against a pin type.
func CompareTypes(portType, pinType string) TypeCompatibility {
	switch {
	case portType == "" || pinType == "":
		return TypeUnknown
	case portType == pinType:
		return TypeIdentical
	case strings.EqualFold(strings.TrimSpace(portType), strings.TrimSpace(pinType)):
		return TypeEquivalent
	default:
		return TypeMismatch
	}
}
