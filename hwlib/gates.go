// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable parts for ttsim.
//
// All parts implement 4-state logic: a controlling input (0 for AND, 1 for OR)
// decides the output even if the other input is unknown, otherwise unknown or
// undriven inputs produce an unknown output.
//
package hwlib

import (
	"strconv"

	"github.com/db47h/ttsim"
	"github.com/db47h/ttsim/logic"
)

// common pin names
const (
	pA   = "a"
	pB   = "b"
	pIn  = "in"
	pSel = "sel"
	pOut = "out"
)

// make a bus name
func bus(bits int, names ...string) []string {
	b := make([]string, len(names)*bits)
	for i, n := range names {
		for j := 0; j < bits; j++ {
			b[i*bits+j] = ttsim.BusPinName(n, j)
		}
	}
	return b
}

type unary func(logic.Level) logic.Level

func (u unary) mount(s *ttsim.Socket) []ttsim.Component {
	in, out := s.Pin(pIn), s.Pin(pOut)
	return []ttsim.Component{
		func(c *ttsim.Circuit) { c.SetLevel(out, u(c.Level(in))) },
	}
}

var (
	notGate = ttsim.PartSpec{Name: "NOT", Inputs: []string{pIn}, Outputs: []string{pOut}, Mount: unary(logic.Not).mount}
	bufGate = ttsim.PartSpec{Name: "BUF", Inputs: []string{pIn}, Outputs: []string{pOut}, Mount: unary(logic.Buf).mount}
)

// Not returns a NOT gate.
//
//	Inputs: in
//	Outputs: out
//	Function: out = !in
//
func Not(w string) ttsim.Part {
	return notGate.NewPart(w)
}

// Buf returns a buffer.
//
//	Inputs: in
//	Outputs: out
//	Function: out = in
//
func Buf(w string) ttsim.Part {
	return bufGate.NewPart(w)
}

// other gates
type gate func(a, b logic.Level) logic.Level

func (g gate) mount(s *ttsim.Socket) []ttsim.Component {
	a, b, out := s.Pin(pA), s.Pin(pB), s.Pin(pOut)
	return []ttsim.Component{
		func(c *ttsim.Circuit) { c.SetLevel(out, g(c.Level(a), c.Level(b))) },
	}
}

func newGate(name string, fn func(a, b logic.Level) logic.Level) *ttsim.PartSpec {
	return &ttsim.PartSpec{
		Name:    name,
		Inputs:  gateIn,
		Outputs: gateOut,
		Mount:   gate(fn).mount,
	}
}

func nand(a, b logic.Level) logic.Level { return logic.Not(logic.And(a, b)) }
func nor(a, b logic.Level) logic.Level  { return logic.Not(logic.Or(a, b)) }
func xnor(a, b logic.Level) logic.Level { return logic.Not(logic.Xor(a, b)) }

var (
	gateIn  = []string{pA, pB}
	gateOut = []string{pOut}

	andGate  = newGate("AND", logic.And)
	nandGate = newGate("NAND", nand)
	orGate   = newGate("OR", logic.Or)
	norGate  = newGate("NOR", nor)
	xorGate  = newGate("XOR", logic.Xor)
	xnorGate = newGate("XNOR", xnor)
)

// And returns a AND gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a && b
//
func And(w string) ttsim.Part { return andGate.NewPart(w) }

// Nand returns a NAND gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = !(a && b)
//
func Nand(w string) ttsim.Part { return nandGate.NewPart(w) }

// Or returns a OR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a || b
//
func Or(w string) ttsim.Part { return orGate.NewPart(w) }

// Nor returns a NOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = !(a || b)
//
func Nor(w string) ttsim.Part { return norGate.NewPart(w) }

// Xor returns a XOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = (a && !b) || (!a && b)
//
func Xor(w string) ttsim.Part { return xorGate.NewPart(w) }

// Xnor returns a XNOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a && b || !a && !b
//
func Xnor(w string) ttsim.Part { return xnorGate.NewPart(w) }

// BufN returns a N-bits buffer. Connecting all of its inputs to a constant is
// the usual way to tie an output bus.
//
//	Inputs: in[bits]
//	Outputs: out[bits]
//	Function: for i := range out { out[i] = in[i] }
//
func BufN(bits int) ttsim.NewPartFn {
	return (&ttsim.PartSpec{
		Name:    "BUF" + strconv.Itoa(bits),
		Inputs:  bus(bits, pIn),
		Outputs: bus(bits, pOut),
		Mount: func(s *ttsim.Socket) []ttsim.Component {
			ins := s.Bus(pIn, bits)
			outs := s.Bus(pOut, bits)
			return []ttsim.Component{func(c *ttsim.Circuit) {
				for i, pin := range ins {
					c.SetLevel(outs[i], logic.Buf(c.Level(pin)))
				}
			}}
		}}).NewPart
}

type gateN struct {
	bits int
	fn   func(a, b logic.Level) logic.Level
}

func (g *gateN) mount(s *ttsim.Socket) []ttsim.Component {
	a, b, out := s.Bus(pA, g.bits), s.Bus(pB, g.bits), s.Bus(pOut, g.bits)
	return []ttsim.Component{
		func(c *ttsim.Circuit) {
			for i := range a {
				c.SetLevel(out[i], g.fn(c.Level(a[i]), c.Level(b[i])))
			}
		},
	}
}

// GateN returns a N-bits logic gate.
//
//	Inputs: a[bits], b[bits]
//	Outouts: out[bits]
//	Function: for i := range out { out[i] = f(a[i], b[i]) }
//
func GateN(name string, bits int, f func(a, b logic.Level) logic.Level) ttsim.NewPartFn {
	return (&ttsim.PartSpec{
		Name:    name + strconv.Itoa(bits),
		Inputs:  bus(bits, pA, pB),
		Outputs: bus(bits, pOut),
		Mount:   (&gateN{bits, f}).mount,
	}).NewPart
}
