// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ttsim

import (
	"github.com/pkg/errors"
)

type chip struct {
	PartSpec              // PartSpec for this chip
	parts    []Part       // sub parts
	wires    [][]pinWires // resolved connections of each part
	outs     map[string]bool
}

// pinWires is a part pin and the chip wires it connects to.
type pinWires struct {
	pin   string
	wires []string
	out   bool
}

func (c *chip) mount(s *Socket) []Component {
	var updaters []Component
	subs := make([]*Socket, len(c.parts))

	// outputs first, so that every wire name resolves to the pin of its driver.
	for i, p := range c.parts {
		sub := newSocket(s.c)
		subs[i] = sub
		for _, pw := range c.wires[i] {
			if !pw.out {
				continue
			}
			n := -1
			for _, w := range pw.wires {
				if c.outs[w] {
					n = s.Pin(w)
				}
			}
			if n < 0 {
				n = s.c.allocPin()
			}
			for _, w := range pw.wires {
				if !c.outs[w] {
					s.m[w] = n
				}
			}
			sub.m[pw.pin] = n
		}
		for _, o := range p.Outputs {
			if _, ok := sub.m[o]; !ok {
				sub.m[o] = s.c.allocPin()
			}
		}
	}
	for i, p := range c.parts {
		sub := subs[i]
		for _, pw := range c.wires[i] {
			if !pw.out {
				sub.m[pw.pin] = s.PinOrNew(pw.wires[0])
			}
		}
		// wire unknown pins to False.
		for _, in := range p.Inputs {
			if _, ok := sub.m[in]; !ok {
				sub.m[in] = cstFalse
			}
		}
		updaters = append(updaters, p.Mount(sub)...)
	}
	return updaters
}

// Chip composes existing parts into a new part packaged into a chip.
// The pin names specified as inputs and outputs will be the inputs
// and outputs of the chip.
//
// An Xor gate could be created like this:
//
//	xor, err := Chip("XOR", "a, b", "out",
//		hwlib.Nand("a=a, b=b, out=nandAB"),
//		hwlib.Nand("a=a, b=nandAB, out=w0"),
//		hwlib.Nand("a=b, b=nandAB, out=w1"),
//		hwlib.Nand("a=w0, b=w1, out=out"),
//	)
//
// The returned value is a function of type NewPartFn that can be used to
// compose the new part with others into other chips:
//
//	xnor, err := Chip("XNOR", "a, b", "out",
//		xor("a=a, b=b, out=xorAB"),
//		hwlib.Not("in=xorAB, out=out"),
//	)
//
// A chip input named clk is wired to the clock when the host connects it to
// clk. Other constant pin names cannot be used as chip inputs or outputs.
//
// Inputs of sub parts that are not connected are wired to False. Chip inputs
// that are not used are ignored. Chip outputs that are not driven by any part
// stay in the unknown state.
//
func Chip(name string, inputs string, outputs string, parts ...Part) (NewPartFn, error) {
	ins, err := ParseIOSpec(inputs)
	if err != nil {
		return nil, errors.Wrap(err, "inputs")
	}
	outs, err := ParseIOSpec(outputs)
	if err != nil {
		return nil, errors.Wrap(err, "outputs")
	}

	isIn := make(map[string]bool, len(ins))
	isOut := make(map[string]bool, len(outs))
	for _, n := range ins {
		if isConstant(n) && n != Clk {
			return nil, errors.New("chip input " + n + " shadows a constant pin")
		}
		isIn[n] = true
	}
	for _, n := range outs {
		if isIn[n] {
			return nil, errors.New("pin " + n + " declared as both input and output")
		}
		if isConstant(n) {
			return nil, errors.New("chip output " + n + " shadows a constant pin")
		}
		isOut[n] = true
	}

	drivers := make(map[string]bool)
	read := make(map[string]bool)
	var reads []string
	pws := make([][]pinWires, len(parts))

	for pnum, p := range parts {
		ex, err := p.wires()
		if err != nil {
			return nil, err
		}
		for _, k := range p.Inputs {
			ws, ok := ex[k]
			if !ok {
				continue
			}
			if len(ws) > 1 {
				return nil, errors.New(p.Name + " input pin " + k + " connected to more than one wire")
			}
			if !read[ws[0]] {
				read[ws[0]] = true
				reads = append(reads, ws[0])
			}
			pws[pnum] = append(pws[pnum], pinWires{k, ws, false})
		}
		for _, k := range p.Outputs {
			ws, ok := ex[k]
			if !ok {
				continue
			}
			chipOuts := 0
			for _, w := range ws {
				pn := p.Name + "." + k + ":" + w
				switch {
				case w == True:
					return nil, errors.New(pn + ": output pin connected to constant true input")
				case w == False:
					return nil, errors.New(pn + ": output pin connected to constant false input")
				case w == Clk:
					return nil, errors.New(pn + ": output pin connected to clock signal")
				case isIn[w]:
					return nil, errors.New(pn + ": chip input pin used as output")
				case drivers[w]:
					return nil, errors.New(pn + ": output pin already used as output")
				}
				drivers[w] = true
				if isOut[w] {
					chipOuts++
				}
			}
			if chipOuts > 1 {
				return nil, errors.New(p.Name + "." + k + ": output pin connected to more than one chip output")
			}
			pws[pnum] = append(pws[pnum], pinWires{k, ws, true})
		}
	}

	for _, w := range reads {
		if !drivers[w] && !isIn[w] && !isConstant(w) {
			return nil, errors.New("pin " + w + " not connected to any output")
		}
	}
	for _, ps := range pws {
		for _, pw := range ps {
			if !pw.out {
				continue
			}
			for _, w := range pw.wires {
				if !read[w] && !isOut[w] {
					return nil, errors.New("pin " + w + " not connected to any input")
				}
			}
		}
	}

	c := &chip{
		PartSpec: PartSpec{
			Name:    name,
			Inputs:  ins,
			Outputs: outs,
		},
		parts: parts,
		wires: pws,
		outs:  isOut,
	}
	c.PartSpec.Mount = c.mount
	return c.PartSpec.NewPart, nil
}
