package merge

import (
	"errors"
	"fmt"

	"pin-mapper/internal/pin"
)

// ErrInputPin is returned when an input pin is evaluated as an output.
var ErrInputPin = errors.New("input pins do not merge")

// Emission is one value produced by an internal port during a tick.
type Emission struct {
	Port  pin.PortKey
	Value any
	// Seq orders emissions within the tick. Equal values are simultaneous.
	Seq int
}

// Result is the value observed on a virtual pin.
type Result struct {
	// Value is a single value for last/first and a []any for array.
	Value any
	// Present is false when no mapped port produced a value.
	Present bool
	// Sources lists the ports whose values make up Value.
	Sources []pin.PortKey
}

// Assignment is a value delivered to one mapped port of an input pin.
type Assignment struct {
	Port  pin.PortKey
	Value any
}

// Evaluate collapses the emissions of the pin's mapped ports. Emissions from
// ports the pin does not map are ignored. When a port emits several times in
// a tick only its latest emission counts.
func Evaluate(vp pin.VirtualPinConfig, emissions []Emission) (Result, error) {
	if vp.IsInput {
		return Result{}, fmt.Errorf("%w: %s", ErrInputPin, vp.Label())
	}

	produced := collect(vp, emissions)

	switch strategy := vp.EffectiveMergeStrategy(); strategy {
	case pin.MergeArray:
		return evaluateArray(produced), nil
	case pin.MergeLast:
		return pick(produced, func(cand, best *Emission) bool {
			// Later positions win ties, so >= keeps the later one.
			return cand.Seq >= best.Seq
		}), nil
	case pin.MergeFirst:
		return pick(produced, func(cand, best *Emission) bool {
			return cand.Seq < best.Seq
		}), nil
	default:
		return Result{}, fmt.Errorf("%w: %q", pin.ErrInvalidMergeStrategy, strategy)
	}
}

// Broadcast returns one assignment per mapped port of an input pin, in
// mapped-port order.
func Broadcast(vp pin.VirtualPinConfig, value any) ([]Assignment, error) {
	if !vp.IsInput {
		return nil, fmt.Errorf("%s is an output pin", vp.Label())
	}

	out := make([]Assignment, 0, len(vp.MappedPorts))
	for _, p := range vp.MappedPorts {
		out = append(out, Assignment{Port: p.Key(), Value: value})
	}

	return out, nil
}

// collect returns, per mapped port position, the latest emission of that
// port or nil.
func collect(vp pin.VirtualPinConfig, emissions []Emission) []*Emission {
	position := make(map[pin.PortKey]int, len(vp.MappedPorts))
	for i, p := range vp.MappedPorts {
		position[p.Key()] = i
	}

	produced := make([]*Emission, len(vp.MappedPorts))

	for i := range emissions {
		e := &emissions[i]

		pos, ok := position[e.Port]
		if !ok {
			continue
		}

		if prev := produced[pos]; prev == nil || e.Seq >= prev.Seq {
			produced[pos] = e
		}
	}

	return produced
}

func evaluateArray(produced []*Emission) Result {
	var res Result

	values := make([]any, 0, len(produced))

	for _, e := range produced {
		if e == nil {
			continue
		}

		values = append(values, e.Value)
		res.Sources = append(res.Sources, e.Port)
	}

	if len(values) == 0 {
		return res
	}

	res.Value = values
	res.Present = true

	return res
}

// pick walks emissions in mapped-port order and keeps the candidate for which
// better reports true against the current best.
func pick(produced []*Emission, better func(cand, best *Emission) bool) Result {
	var best *Emission

	for _, e := range produced {
		if e == nil {
			continue
		}

		if best == nil || better(e, best) {
			best = e
		}
	}

	if best == nil {
		return Result{}
	}

	return Result{Value: best.Value, Present: true, Sources: []pin.PortKey{best.Port}}
}
