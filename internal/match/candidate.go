package match

import (
	"cmp"
	"slices"

	"pin-mapper/internal/pin"
)

// Confidence thresholds.
const (
	// DefaultMinScore is the minimum combined score of a suggestion.
	DefaultMinScore = 0.5
	// DefaultAmbiguityThreshold is the score difference that marks ambiguity.
	DefaultAmbiguityThreshold = 0.1
)

// Score weights. Name similarity dominates; the type breaks ties.
const (
	nameWeight = 0.6
	typeWeight = 0.4
)

// Port describes an internal port looking for a virtual pin.
type Port struct {
	Name    string
	Type    string
	IsInput bool
	IsFlow  bool
}

// Candidate is a pin the port could be mapped to.
type Candidate struct {
	Pin pin.VirtualPinConfig

	// NameScore is the name similarity in [0, 1].
	NameScore float64
	// TypeCompat relates the port type to the pin type.
	TypeCompat TypeCompatibility
	// Score combines both for ranking (higher is better).
	Score float64
}

// CandidateList is sorted by descending score.
type CandidateList []Candidate

// RankPins scores every pin the port may join, best first. Pins with another
// direction or flow kind are skipped. Ties are broken by pin index.
func RankPins(port Port, pins []pin.VirtualPinConfig) CandidateList {
	var out CandidateList

	for _, vp := range pins {
		if !vp.Accepts(port.IsInput, port.IsFlow) {
			continue
		}

		name := NameSimilarity(port.Name, vp.PinName)
		compat := CompareTypes(port.Type, vp.PinType)

		out = append(out, Candidate{
			Pin:        vp,
			NameScore:  name,
			TypeCompat: compat,
			Score:      name*nameWeight + compat.score()*typeWeight,
		})
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}

		return cmp.Compare(a.Pin.PinIndex, b.Pin.PinIndex)
	})

	return out
}

// Top returns the first n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n < 0 || n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if there is none.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// AboveThreshold returns the candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var out CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			out = append(out, cand)
		}
	}

	return out
}

// IsAmbiguous reports whether the top two candidates score within threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].Score-c[1].Score < threshold
}
