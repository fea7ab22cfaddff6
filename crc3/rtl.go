// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package crc3

import (
	"github.com/db47h/ttsim"
	"github.com/db47h/ttsim/logic"
)

// ttCRC3 is the behavioral model. Its pins follow the Tiny Tapeout pinout.
//
// Conditions follow the usual RTL simulation rules: a branch is taken only
// if its condition is 1, an X condition falls through to the next branch.
//
type ttCRC3 struct {
	Clk    int    `hw:"in,clk"`
	RstN   int    `hw:"in,rst_n"`
	Ena    int    `hw:"in,ena"`
	UIIn   [8]int `hw:"in,ui_in"`
	UIOIn  [8]int `hw:"in,uio_in"`
	UOOut  [8]int `hw:"out,uo_out"`
	UIOOut [8]int `hw:"out,uio_out"`
	UIOOE  [8]int `hw:"out,uio_oe"`

	sr  logic.Vector
	crc logic.Vector
	cnt logic.Vector
	out logic.Vector
}

func (d *ttCRC3) Update(c *ttsim.Circuit) {
	if d.sr.Width() == 0 {
		d.sr, d.crc, d.cnt, d.out = logic.Unknown(8), logic.Unknown(3), logic.Unknown(4), logic.Unknown(8)
	}
	if c.AtTick() {
		d.edge(c)
	}
	c.SetVector(d.UOOut[:], d.out)
	c.SetVector(d.UIOOut[:], zero)
	c.SetVector(d.UIOOE[:], zero)
}

func (d *ttCRC3) edge(c *ttsim.Circuit) {
	ui := c.Vector(d.UIIn[:])
	en := logic.And(c.Level(d.Ena), ui.Bit(0))
	din := logic.Buf(ui.Bit(1))

	switch {
	case logic.Not(c.Level(d.RstN)) == logic.L1:
		d.sr, d.crc, d.cnt, d.out = logic.NewVector(8, 0), logic.NewVector(3, 0), logic.NewVector(4, 0), logic.NewVector(8, 0)
	case logic.Not(en) == logic.L1:
		d.sr, d.crc, d.cnt = logic.NewVector(8, 0), logic.NewVector(3, 0), logic.NewVector(4, 0)
	case d.counting() == logic.L1:
		c2 := d.crc.Bit(2)
		d.crc = logic.NewVector(3, 0).
			SetBit(0, logic.Xor(din, c2)).
			SetBit(1, logic.Xor(d.crc.Bit(0), c2)).
			SetBit(2, d.crc.Bit(1))
		d.sr = shiftIn(d.sr, din)
		d.cnt = inc(d.cnt)
	default:
		for i := 0; i < 3; i++ {
			d.out = d.out.SetBit(i, d.crc.Bit(i))
		}
		for i := 3; i < 8; i++ {
			d.out = d.out.SetBit(i, d.sr.Bit(i))
		}
	}
}

// counting returns cnt < 8.
func (d *ttCRC3) counting() logic.Level {
	if n, err := d.cnt.Uint64(); err == nil {
		return logic.FromBool(n < 8)
	}
	return logic.X
}

func shiftIn(v logic.Vector, l logic.Level) logic.Vector {
	for i := v.Width() - 1; i > 0; i-- {
		v = v.SetBit(i, v.Bit(i-1))
	}
	return v.SetBit(0, l)
}

func inc(v logic.Vector) logic.Vector {
	n, err := v.Uint64()
	if err != nil {
		return logic.Unknown(v.Width())
	}
	return logic.NewVector(v.Width(), n+1)
}

var zero = logic.NewVector(8, 0)

var behavioral = newBehavioral()

func newBehavioral() *ttsim.PartSpec {
	p := ttsim.MakePart((*ttCRC3)(nil))
	p.Name = "tt_um_crc3_rtl"
	return p
}

// Behavioral returns the behavioral model of the design.
//
func Behavioral() ttsim.NewPartFn {
	return behavioral.NewPart
}
