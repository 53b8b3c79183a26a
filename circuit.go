package qbench

import (
	"fmt"
)

// GateKind identifies one instruction in the encoding instruction set.
type GateKind int

const (
	GateH GateKind = iota
	GateX
	GateRY
	GateP
	GateCRY
	GateMeasure
)

func (k GateKind) String() string {
	switch k {
	case GateH:
		return "h"
	case GateX:
		return "x"
	case GateRY:
		return "ry"
	case GateP:
		return "p"
	case GateCRY:
		return "cry"
	case GateMeasure:
		return "measure"
	}
	return "unknown"
}

// Gate is a single instruction. Controls carries the control qubits of a
// CRY and Pattern the bit pattern they must match (bit j of Pattern is the
// required state of Controls[j]).
type Gate struct {
	Kind     GateKind `msgpack:"k"`
	Target   int      `msgpack:"t"`
	Theta    float64  `msgpack:"a,omitempty"`
	Controls []int    `msgpack:"c,omitempty"`
	Pattern  uint64   `msgpack:"p,omitempty"`
}

// Circuit is the encoded representation: an ordered gate list over a qubit
// register. Structural metrics (width, depth, op counts) are derived on
// demand and never mutate the circuit.
type Circuit struct {
	gates []Gate
	width int
}

func NewCircuit() *Circuit {
	return &Circuit{gates: make([]Gate, 0, 64)}
}

// NewCircuitFromGates rebuilds a circuit from a serialized gate list, used
// when a remote job spec is read back from durable storage.
func NewCircuitFromGates(width int, gates []Gate) *Circuit {
	c := &Circuit{gates: gates, width: width}
	for _, g := range gates {
		c.grow(g)
	}
	return c
}

func (c *Circuit) grow(g Gate) {
	if g.Target >= c.width {
		c.width = g.Target + 1
	}
	for _, q := range g.Controls {
		if q >= c.width {
			c.width = q + 1
		}
	}
}

func (c *Circuit) append(g Gate) {
	c.grow(g)
	c.gates = append(c.gates, g)
}

func (c *Circuit) H(q int)                 { c.append(Gate{Kind: GateH, Target: q}) }
func (c *Circuit) X(q int)                 { c.append(Gate{Kind: GateX, Target: q}) }
func (c *Circuit) RY(theta float64, q int) { c.append(Gate{Kind: GateRY, Target: q, Theta: theta}) }
func (c *Circuit) P(theta float64, q int)  { c.append(Gate{Kind: GateP, Target: q, Theta: theta}) }

// CRY applies a controlled-RY on target, active when the control qubits
// match pattern.
func (c *Circuit) CRY(theta float64, controls []int, pattern uint64, target int) {
	c.append(Gate{Kind: GateCRY, Target: target, Theta: theta, Controls: controls, Pattern: pattern})
}

// Measure appends measurement instrumentation for the given qubits.
func (c *Circuit) Measure(qubits ...int) {
	for _, q := range qubits {
		c.append(Gate{Kind: GateMeasure, Target: q})
	}
}

// MeasureAll measures the whole register in order.
func (c *Circuit) MeasureAll() {
	for q := 0; q < c.width; q++ {
		c.Measure(q)
	}
}

// Width is the resource width: the number of qubits the circuit touches.
func (c *Circuit) Width() int { return c.width }

// Gates returns the instruction list. Callers must not mutate it.
func (c *Circuit) Gates() []Gate { return c.gates }

// Entangling reports whether the circuit contains any multi-qubit gate,
// which decides the sampling strategy.
func (c *Circuit) Entangling() bool {
	for _, g := range c.gates {
		if g.Kind == GateCRY {
			return true
		}
	}
	return false
}

// Measured returns the measured qubits in instruction order. The counts
// key width equals len(Measured()).
func (c *Circuit) Measured() []int {
	var out []int
	for _, g := range c.gates {
		if g.Kind == GateMeasure {
			out = append(out, g.Target)
		}
	}
	return out
}

// Depth is the length of the critical path: gates on disjoint qubits share
// a layer, gates sharing a qubit stack.
func (c *Circuit) Depth() int {
	if c.width == 0 {
		return 0
	}
	level := make([]int, c.width)
	depth := 0
	for _, g := range c.gates {
		layer := level[g.Target]
		for _, q := range g.Controls {
			if level[q] > layer {
				layer = level[q]
			}
		}
		layer++
		level[g.Target] = layer
		for _, q := range g.Controls {
			level[q] = layer
		}
		if layer > depth {
			depth = layer
		}
	}
	return depth
}

// CountOps tallies instructions by kind.
func (c *Circuit) CountOps() map[string]int {
	out := make(map[string]int)
	for _, g := range c.gates {
		out[g.Kind.String()]++
	}
	return out
}

func (c *Circuit) String() string {
	return fmt.Sprintf("circuit(width=%d, depth=%d, ops=%d)", c.width, c.Depth(), len(c.gates))
}

// CircuitFeatures summarizes circuit structure as scale-free ratios in
// [0, 1], comparable across schemes and input sizes.
type CircuitFeatures struct {
	// Communication is the density of the qubit interaction graph.
	Communication float64 `msgpack:"communication"`
	// CriticalDepth is the fraction of layers holding a multi-qubit gate.
	CriticalDepth float64 `msgpack:"critical_depth"`
	// Entanglement is the multi-qubit share of the gate count.
	Entanglement float64 `msgpack:"entanglement"`
	// Parallelism measures how far gates pack into shared layers.
	Parallelism float64 `msgpack:"parallelism"`
	// Liveness is the fraction of qubit-layer slots doing work.
	Liveness float64 `msgpack:"liveness"`
}

// Features derives the structural feature aggregate from the gate list.
// Measurement instrumentation is excluded.
func (c *Circuit) Features() CircuitFeatures {
	w := c.width
	if w == 0 {
		return CircuitFeatures{}
	}

	edges := make(map[[2]int]bool)
	active := make(map[[2]int]bool)
	multiLayers := make(map[int]bool)
	level := make([]int, w)

	gateCount := 0
	multiCount := 0
	depth := 0

	for _, g := range c.gates {
		if g.Kind == GateMeasure {
			continue
		}
		gateCount++

		layer := level[g.Target]
		for _, q := range g.Controls {
			if level[q] > layer {
				layer = level[q]
			}
		}
		layer++
		level[g.Target] = layer
		active[[2]int{g.Target, layer}] = true
		for _, q := range g.Controls {
			level[q] = layer
			active[[2]int{q, layer}] = true
		}
		if layer > depth {
			depth = layer
		}

		if len(g.Controls) > 0 {
			multiCount++
			multiLayers[layer] = true
			for _, q := range g.Controls {
				edge := [2]int{q, g.Target}
				if q > g.Target {
					edge = [2]int{g.Target, q}
				}
				edges[edge] = true
			}
		}
	}

	if gateCount == 0 || depth == 0 {
		return CircuitFeatures{}
	}

	f := CircuitFeatures{
		CriticalDepth: float64(len(multiLayers)) / float64(depth),
		Entanglement:  float64(multiCount) / float64(gateCount),
		Liveness:      float64(len(active)) / float64(w*depth),
	}
	if w > 1 {
		f.Communication = float64(2*len(edges)) / float64(w*(w-1))
		if p := (float64(gateCount)/float64(depth) - 1) / float64(w-1); p > 0 {
			f.Parallelism = p
		}
	}
	return f
}
