// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/ttsim"
	"github.com/db47h/ttsim/logic"
)

// Mux returns a multiplexer.
//
//	Inputs: a, b, sel
//	Outputs: out
//	Function: if sel == 0 { out = a } else { out = b }
//
// If sel is unknown, out is known only if a == b.
//
func Mux(w string) ttsim.Part { return mux.NewPart(w) }

var mux = ttsim.PartSpec{
	Name:    "MUX",
	Inputs:  []string{pA, pB, pSel},
	Outputs: []string{pOut},
	Mount: func(s *ttsim.Socket) []ttsim.Component {
		a, b, sel, out := s.Pin(pA), s.Pin(pB), s.Pin(pSel), s.Pin(pOut)
		return []ttsim.Component{func(c *ttsim.Circuit) {
			c.SetLevel(out, logic.Mux(c.Level(a), c.Level(b), c.Level(sel)))
		}}
	},
}

// DMux returns a demultiplexer.
//
//	Inputs: in, sel
//	Outputs: a, b
//	Function: if sel == 0 { a = in; b = 0 } else { a = 0; b = in }
//
func DMux(w string) ttsim.Part { return dmux.NewPart(w) }

var dmux = ttsim.PartSpec{
	Name:    "DMUX",
	Inputs:  []string{pIn, pSel},
	Outputs: []string{pA, pB},
	Mount: func(s *ttsim.Socket) []ttsim.Component {
		in, sel, a, b := s.Pin(pIn), s.Pin(pSel), s.Pin(pA), s.Pin(pB)
		return []ttsim.Component{func(c *ttsim.Circuit) {
			v, sv := c.Level(in), c.Level(sel)
			c.SetLevel(a, logic.And(v, logic.Not(sv)))
			c.SetLevel(b, logic.And(v, sv))
		}}
	},
}

// MuxN returns a N-bits Mux
//
//	Inputs: a[bits], b[bits], sel
//	Outputs: out[bits]
//	Function: for i := range out { if sel == 0 { out[i] = a[i] } else { out[i] = b[i] } }
//
func MuxN(bits int) ttsim.NewPartFn {
	return (&ttsim.PartSpec{
		Name:    "MUX" + strconv.Itoa(bits),
		Inputs:  append(bus(bits, pA, pB), pSel),
		Outputs: bus(bits, pOut),
		Mount: func(s *ttsim.Socket) []ttsim.Component {
			a, b, sel := s.Bus(pA, bits), s.Bus(pB, bits), s.Pin(pSel)
			o := s.Bus(pOut, bits)
			return []ttsim.Component{
				func(c *ttsim.Circuit) {
					sv := c.Level(sel)
					for i := range o {
						c.SetLevel(o[i], logic.Mux(c.Level(a[i]), c.Level(b[i]), sv))
					}
				}}
		}}).NewPart
}
