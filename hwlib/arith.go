// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/ttsim"
	"github.com/db47h/ttsim/logic"
)

var hAdder = &ttsim.PartSpec{
	Name:    "HalfAdder",
	Inputs:  []string{pA, pB},
	Outputs: []string{"s", "c"},
	Mount: func(s *ttsim.Socket) []ttsim.Component {
		a, b := s.Pin(pA), s.Pin(pB)
		sum, cout := s.Pin("s"), s.Pin("c")
		return []ttsim.Component{
			func(c *ttsim.Circuit) {
				va, vb := c.Level(a), c.Level(b)
				c.SetLevel(sum, logic.Xor(va, vb))
				c.SetLevel(cout, logic.And(va, vb))
			}}
	}}

// HalfAdder returns a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder(c string) ttsim.Part {
	return hAdder.NewPart(c)
}

var adder = &ttsim.PartSpec{
	Name:    "FullAdder",
	Inputs:  []string{pA, pB, "cin"},
	Outputs: []string{"s", "cout"},
	Mount: func(s *ttsim.Socket) []ttsim.Component {
		a, b, cin := s.Pin(pA), s.Pin(pB), s.Pin("cin")
		sum, cout := s.Pin("s"), s.Pin("cout")
		return []ttsim.Component{
			func(c *ttsim.Circuit) {
				va, vb, vc := c.Level(a), c.Level(b), c.Level(cin)
				s := logic.Xor(va, vb)
				c.SetLevel(sum, logic.Xor(s, vc))
				c.SetLevel(cout, logic.Or(logic.And(s, vc), logic.And(va, vb)))
			}}
	}}

// FullAdder returns a 3 bit adder.
//
//	Inputs: a, b, cin
//	Outputs: s, cout
//	Function: s = lsb(a + b + cin)
//	          cout = msb(a + b + cin)
//
func FullAdder(c string) ttsim.Part {
	return adder.NewPart(c)
}

// IncN returns a N-bits incrementer.
//
//	Inputs: in[bits]
//	Outputs: out[bits], c
//	Function: out = lsb(in + 1)
//	          c = msb(in + 1)
//
func IncN(bits int) ttsim.NewPartFn {
	return (&ttsim.PartSpec{
		Name:    "Inc" + strconv.Itoa(bits),
		Inputs:  bus(bits, pIn),
		Outputs: append(bus(bits, pOut), "c"),
		Mount: func(s *ttsim.Socket) []ttsim.Component {
			in, out, cout := s.Bus(pIn, bits), s.Bus(pOut, bits), s.Pin("c")
			return []ttsim.Component{
				func(c *ttsim.Circuit) {
					cc := logic.L1
					for i, o := range out {
						v := c.Level(in[i])
						c.SetLevel(o, logic.Xor(v, cc))
						cc = logic.And(v, cc)
					}
					c.SetLevel(cout, cc)
				}}
		}}).NewPart
}
