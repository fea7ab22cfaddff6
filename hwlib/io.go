// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/ttsim"
	"github.com/db47h/ttsim/logic"
)

// Int64 returns the pins as an int64. Pin 0 is lsb. Unknown pins read as 0.
//
func Int64(c *ttsim.Circuit, pins []int) int64 {
	var out int64
	for bit := range pins {
		if c.Get(pins[bit]) {
			out |= 1 << uint(bit)
		}
	}
	return out
}

// SetInt64 sets the pins to the given int64 value.
//
func SetInt64(c *ttsim.Circuit, pins []int, v int64) {
	for bit := range pins {
		c.Set(pins[bit], v&(1<<uint(bit)) != 0)
	}
}

// Vector returns the pins as a logic.Vector. Pin 0 is lsb.
//
func Vector(c *ttsim.Circuit, pins []int) logic.Vector {
	return c.Vector(pins)
}

// SetVector sets the pins to the given logic.Vector.
//
func SetVector(c *ttsim.Circuit, pins []int, v logic.Vector) {
	c.SetVector(pins, v)
}

// Input creates a function based input.
//
//	Outputs: out
//	Function: out = f()
//
func Input(f func() bool) ttsim.NewPartFn {
	p := &ttsim.PartSpec{
		Name:    "Input",
		Inputs:  nil,
		Outputs: []string{pOut},
		Mount: func(s *ttsim.Socket) []ttsim.Component {
			pin := s.Pin(pOut)
			return []ttsim.Component{
				func(c *ttsim.Circuit) {
					c.Set(pin, f())
				},
			}
		},
	}
	return p.NewPart
}

// Output creates an output or probe. The fn function is
// called with the named pin state on every circuit update.
//
//	Inputs: in
//	Function: f(in)
//
func Output(f func(bool)) ttsim.NewPartFn {
	p := &ttsim.PartSpec{
		Name:    "Output",
		Inputs:  []string{pIn},
		Outputs: nil,
		Mount: func(s *ttsim.Socket) []ttsim.Component {
			in := s.Pin(pIn)
			return []ttsim.Component{
				func(c *ttsim.Circuit) { f(c.Get(in)) },
			}
		},
	}
	return p.NewPart
}

// InputN creates an input bus of the given bits size.
//
func InputN(bits int, f func() int64) ttsim.NewPartFn {
	return (&ttsim.PartSpec{
		Name:    "INPUT" + strconv.Itoa(bits),
		Inputs:  nil,
		Outputs: bus(bits, pOut),
		Mount: func(s *ttsim.Socket) []ttsim.Component {
			pins := s.Bus(pOut, bits)
			return []ttsim.Component{func(c *ttsim.Circuit) {
				SetInt64(c, pins, f())
			}}
		}}).NewPart
}

// OutputN creates an output bus of the given bits size.
//
func OutputN(bits int, f func(int64)) ttsim.NewPartFn {
	return (&ttsim.PartSpec{
		Name:    "OUTPUTBUS" + strconv.Itoa(bits),
		Inputs:  bus(bits, pIn),
		Outputs: nil,
		Mount: func(s *ttsim.Socket) []ttsim.Component {
			pins := s.Bus(pIn, bits)
			return []ttsim.Component{func(c *ttsim.Circuit) {
				f(Int64(c, pins))
			}}
		}}).NewPart
}

// InputV creates a 4-state input bus of the given bits size. The width of the
// vectors returned by f must be bits.
//
func InputV(bits int, f func() logic.Vector) ttsim.NewPartFn {
	return (&ttsim.PartSpec{
		Name:    "INPUTV" + strconv.Itoa(bits),
		Inputs:  nil,
		Outputs: bus(bits, pOut),
		Mount: func(s *ttsim.Socket) []ttsim.Component {
			pins := s.Bus(pOut, bits)
			return []ttsim.Component{func(c *ttsim.Circuit) {
				SetVector(c, pins, f())
			}}
		}}).NewPart
}

// OutputV creates a 4-state probe on a bus of the given bits size.
//
func OutputV(bits int, f func(logic.Vector)) ttsim.NewPartFn {
	return (&ttsim.PartSpec{
		Name:    "OUTPUTV" + strconv.Itoa(bits),
		Inputs:  bus(bits, pIn),
		Outputs: nil,
		Mount: func(s *ttsim.Socket) []ttsim.Component {
			pins := s.Bus(pIn, bits)
			return []ttsim.Component{func(c *ttsim.Circuit) {
				f(Vector(c, pins))
			}}
		}}).NewPart
}
