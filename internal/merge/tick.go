package merge

import "pin-mapper/internal/pin"

// Tick records emissions in production order for one evaluation tick.
type Tick struct {
	seq       int
	emissions []Emission
}

// Emit records a value produced after everything emitted so far.
func (t *Tick) Emit(port pin.PortKey, value any) {
	t.seq++
	t.emissions = append(t.emissions, Emission{Port: port, Value: value, Seq: t.seq})
}

// EmitTogether records values produced simultaneously by several ports.
func (t *Tick) EmitTogether(values map[pin.PortKey]any) {
	t.seq++
	for port, v := range values {
		t.emissions = append(t.emissions, Emission{Port: port, Value: v, Seq: t.seq})
	}
}

// Emissions returns the recorded emissions.
func (t *Tick) Emissions() []Emission {
	return t.emissions
}

// Reset clears the tick for reuse.
func (t *Tick) Reset() {
	t.seq = 0
	t.emissions = t.emissions[:0]
}
