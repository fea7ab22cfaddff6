// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ttsim

import (
	"runtime"
	"strings"
	"sync"

	"github.com/db47h/ttsim/logic"
	"github.com/pkg/errors"
)

// A Component is a component in a circuit that can Get and Set states.
//
type Component func(c *Circuit)

// A MountFn mounts a part into socket s. MountFn's should query
// the socket for assigned pin numbers and return closures around
// these pin numbers.
//
// For example, a Not gate can be defined like this:
//
//	not := &PartSpec{
//		Name: "Not",
//		Inputs: IO("in"),
//		Outputs: IO("out"),
//		Mount: func (s *Socket) []Component {
//			in, out := s.Pin("in"), s.Pin("out")
//			return []Component{
//				func (c *Circuit) { c.SetLevel(out, logic.Not(c.Level(in))) },
//			}
//		}}
//
type MountFn func(s *Socket) []Component

// A PartSpec wraps a part specification (its blueprint).
//
// Custom parts are implemented by creating a PartSpec, then using its NewPart
// method as a NewPartFn:
//
//	var notGate = notSpec.NewPart
//
// or:
//
//	func Not(c string) Part { return notSpec.NewPart(c) }
//
// Which can the be used when building other chips:
//
//	c, _ := Chip("dummy", "a, b", "c, d",
//		notGate("in=a, out=c"),
//		Not("in=b, out=d"),
//	)
//
type PartSpec struct {
	// Part name.
	Name string
	// Input pin names. Must be distinct pin names.
	// Use the IO() function to expand an input description like
	// "a, b, bus[2]" to []string{"a", "b", "bus[0]", "bus[1]"}
	Inputs []string
	// Output pin names. Must be distinct pin names.
	Outputs []string

	// Mount function (see MountFn).
	Mount MountFn
}

// NewPart is a NewPartFn that wraps p with the given connections into a Part.
// It panics if the connection string cannot be parsed.
//
func (p *PartSpec) NewPart(connections string) Part {
	conns, err := ParseConnections(connections)
	if err != nil {
		panic(err)
	}
	return Part{p, conns}
}

// A NewPartFn is a function that takes a connection configuration and returns a
// new Part. See ParseConnections for the syntax of the connection configuration
// string.
//
type NewPartFn func(c string) Part

// A Part wraps a part specification together with its connections within a host
// chip.
//
type Part struct {
	*PartSpec
	Conns []Connection
}

// Parts is a convenience wrapper for []Part.
//
type Parts []Part

func isConstant(name string) bool {
	return name == False || name == True || name == Clk
}

// wires maps every connected pin of p to wire names in its container. A plain
// bus name on the left side connects each bit of the bus to the same bit of the
// named wire bus, or to the same wire for constants and indexed wires.
//
func (p *Part) wires() (map[string][]string, error) {
	pins := make(map[string]bool, len(p.Inputs)+len(p.Outputs))
	for _, n := range p.Inputs {
		pins[n] = true
	}
	for _, n := range p.Outputs {
		pins[n] = true
	}
	w := make(map[string][]string, len(p.Conns))
	for _, c := range p.Conns {
		if pins[c.PP] {
			w[c.PP] = append(w[c.PP], c.CP...)
			continue
		}
		if !pins[BusPinName(c.PP, 0)] {
			return nil, errors.New("invalid pin name " + c.PP + " for part " + p.Name)
		}
		for i := 0; pins[BusPinName(c.PP, i)]; i++ {
			k := BusPinName(c.PP, i)
			for _, cp := range c.CP {
				if isConstant(cp) || strings.IndexByte(cp, '[') >= 0 {
					w[k] = append(w[k], cp)
				} else {
					w[k] = append(w[k], BusPinName(cp, i))
				}
			}
		}
	}
	return w, nil
}

// Circuit is a runnable circuit simulation.
//
type Circuit struct {
	s0    []logic.Level // wire states frame #0
	s1    []logic.Level // wire states frame #1
	cs    []Component
	count int  // wire count
	tpc   uint // ticks per clock cycle
	tick  uint

	wc []chan struct{}
	wg sync.WaitGroup
}

// NewCircuit builds a new circuit based on the given parts.
//
// workers is the number of goroutines used to update the state of the Circuit
// each step of the simulation. If less or equal to 0, the value of GOMAXPROCS
// will be used.
//
// stepsPerCycle indicates how many simulation steps to run per clock cycle
// (the Clk signal, not wall clock). It is rounded up to the next power of two.
// Half of these steps run before the rising edge of Clk, so the value must be
// large enough to let input changes propagate through the deepest path of
// combinational logic in the circuit. Each built-in gate takes one step.
//
// All wires start in the unknown state (logic.X).
//
// Callers must make sure to call Dispose() once the circuit is no longer needed
// in order to release allocated resources.
//
func NewCircuit(workers int, stepsPerCycle uint, parts ...Part) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}

	if stepsPerCycle < 2 {
		stepsPerCycle = 2
	}
	stepsPerCycle--
	stepsPerCycle |= stepsPerCycle >> 1
	stepsPerCycle |= stepsPerCycle >> 2
	stepsPerCycle |= stepsPerCycle >> 4
	stepsPerCycle |= stepsPerCycle >> 8
	stepsPerCycle |= stepsPerCycle >> 16
	stepsPerCycle |= stepsPerCycle >> 32
	stepsPerCycle++

	// new circuit with room for constant value pins.
	cc := &Circuit{count: cstCount, tpc: stepsPerCycle}
	wrap, err := Chip("CIRCUIT", "", "", parts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chip wrapper")
	}
	ups := wrap("").Mount(newSocket(cc))
	ups = append(ups, updClock)
	cc.cs = ups
	cc.s0 = make([]logic.Level, cc.count)
	cc.s1 = make([]logic.Level, cc.count)
	for i := cstCount; i < cc.count; i++ {
		cc.s0[i] = logic.X
		cc.s1[i] = logic.X
	}
	// init constant pins
	cc.s0[cstFalse], cc.s1[cstFalse] = logic.L0, logic.L0
	cc.s0[cstTrue], cc.s1[cstTrue] = logic.L1, logic.L1
	cc.s0[cstClk] = logic.L0

	// workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	if workers <= 0 {
		workers = 1
	}
	for len(ups) > 0 {
		size := len(ups) / workers
		if size*workers < len(ups) {
			size++
		}
		wc := make(chan struct{}, 1)
		cc.wc = append(cc.wc, wc)
		go worker(cc, ups[:size], wc)
		ups = ups[size:]
	}

	return cc, nil
}

// updClock drives the clock: low during the first half of a cycle, high
// during the second half.
//
func updClock(c *Circuit) {
	if c.s0[cstFalse] != logic.L0 || c.s0[cstTrue] != logic.L1 {
		panic("true or false constants have been overwritten")
	}
	tick := c.tick + 1
	c.s1[cstClk] = logic.FromBool(tick&(c.tpc-1) >= c.tpc/2)
}

// Dispose releases all resources allocated for a circuit and stops
// worker goroutines.
//
func (c *Circuit) Dispose() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		close(wc)
	}
	c.wg.Wait()
	c.wc = nil
}

func worker(c *Circuit, cs []Component, wc <-chan struct{}) {
	for {
		_, ok := <-wc
		if !ok {
			c.wg.Done()
			return
		}
		for _, f := range cs {
			f(c)
		}
		c.wg.Done()
	}
}

// allocPin allocates a pin and returns its number.
//
func (c *Circuit) allocPin() int {
	cnt := c.count
	c.count++
	return cnt
}

// Steps returns the value of the step counter.
//
func (c *Circuit) Steps() uint {
	return c.tick
}

// SPC returns the stepsPerCycle value.
//
func (c *Circuit) SPC() uint {
	return c.tpc
}

// AtTick returns true if the current step is the raising edge of Clk.
//
func (c *Circuit) AtTick() bool {
	return c.tick&(c.tpc-1) == c.tpc/2
}

// AtTock returns true if the current step is at the beginning of a clock
// cycle (falling edge of Clk).
//
func (c *Circuit) AtTock() bool {
	return c.tick&(c.tpc-1) == 0
}

// Get returns true if pin n is at logic level 1. The value of n should be
// obtained in a MountFn by a call to one of the Socket methods.
//
func (c *Circuit) Get(n int) bool {
	return c.s0[n] == logic.L1
}

// Set sets the state s of pin n. The value of n should be obtained in a
// MountFn by a call to one of the Socket methods.
//
func (c *Circuit) Set(n int, s bool) {
	c.s1[n] = logic.FromBool(s)
}

// Level returns the 4-state level of pin n.
//
func (c *Circuit) Level(n int) logic.Level {
	return c.s0[n]
}

// SetLevel sets the 4-state level of pin n.
//
func (c *Circuit) SetLevel(n int, l logic.Level) {
	c.s1[n] = l
}

// Vector returns the levels of pins as a logic.Vector. pins[0] is the lsb.
//
func (c *Circuit) Vector(pins []int) logic.Vector {
	v := logic.NewVector(len(pins), 0)
	for bit, p := range pins {
		v = v.SetBit(bit, c.s0[p])
	}
	return v
}

// SetVector sets pins to the levels of v. It panics if the width of v is not
// len(pins).
//
func (c *Circuit) SetVector(pins []int, v logic.Vector) {
	if v.Width() != len(pins) {
		panic(errors.Errorf("vector width %d does not match bus width %d", v.Width(), len(pins)))
	}
	for bit, p := range pins {
		c.s1[p] = v.Bit(bit)
	}
}

// Step advances the simulation by one step.
//
func (c *Circuit) Step() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		wc <- struct{}{}
	}

	c.wg.Wait()
	c.tick++
	c.s0, c.s1 = c.s1, c.s0
}

// Tick runs the simulation until the raising edge of Clk has been processed.
//
func (c *Circuit) Tick() {
	for !c.AtTick() {
		c.Step()
	}
	c.Step()
}

// Tock runs the simulation until the beginning of the next clock cycle.
// Once Tock returns, the output of clocked components should have stabilized.
//
func (c *Circuit) Tock() {
	for !c.AtTock() {
		c.Step()
	}
}

// TickTock runs the simulation for a whole clock cycle.
//
func (c *Circuit) TickTock() {
	c.Tick()
	c.Tock()
}

// Size returns the component count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs) }
