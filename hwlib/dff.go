// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/ttsim"
	"github.com/db47h/ttsim/logic"
)

var dff = ttsim.PartSpec{
	Name:    "DFF",
	Inputs:  []string{pIn},
	Outputs: []string{pOut},
	Mount: func(s *ttsim.Socket) []ttsim.Component {
		in, out := s.Pin(pIn), s.Pin(pOut)
		curOut := logic.X
		return []ttsim.Component{
			func(c *ttsim.Circuit) {
				// raising edge?
				if c.AtTick() {
					curOut = logic.Buf(c.Level(in))
				}
				c.SetLevel(out, curOut)
			}}
	}}

// DFF returns a clocked data flip flop. Its output is unknown until the first
// raising edge of the clock.
//
//	Inputs: in
//	Outputs: out
//	Function: out(t) = in(t-1) // where t is the current clock cycle.
//
func DFF(w string) ttsim.Part { return dff.NewPart(w) }

// DFFN returns a N-bits data flip flop.
//
//	Inputs: in[bits]
//	Outputs: out[bits]
//	Function: for i := range out { out[i](t) = in[i](t-1) }
//
func DFFN(bits int) ttsim.NewPartFn {
	return (&ttsim.PartSpec{
		Name:    "DFF" + strconv.Itoa(bits),
		Inputs:  bus(bits, pIn),
		Outputs: bus(bits, pOut),
		Mount: func(s *ttsim.Socket) []ttsim.Component {
			ins, outs := s.Bus(pIn, bits), s.Bus(pOut, bits)
			cur := make([]logic.Level, bits)
			for i := range cur {
				cur[i] = logic.X
			}
			return []ttsim.Component{
				func(c *ttsim.Circuit) {
					if c.AtTick() {
						for i, pin := range ins {
							cur[i] = logic.Buf(c.Level(pin))
						}
					}
					for i, pin := range outs {
						c.SetLevel(pin, cur[i])
					}
				}}
		}}).NewPart
}
