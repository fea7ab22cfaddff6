// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package crc3

import (
	"github.com/db47h/ttsim"
	hl "github.com/db47h/ttsim/hwlib"
	"github.com/pkg/errors"
)

// Pin specifications of a Tiny Tapeout design.
//
const (
	Inputs  = "clk, rst_n, ena, ui_in[8], uio_in[8]"
	Outputs = "uo_out[8], uio_out[8], uio_oe[8]"
)

// bitReg returns a register bit with synchronous clear. clr has priority over
// load.
//
//	Inputs: d, load, clr
//	Outputs: out
//	Function: out(t) = clr ? 0 : load ? d : out(t-1)
//
func bitReg() (ttsim.NewPartFn, error) {
	return ttsim.Chip("BitReg", "d, load, clr", "out",
		hl.Mux("a=out, b=d, sel=load, out=m"),
		hl.Not("in=clr, out=nclr"),
		hl.And("a=m, b=nclr, out=q"),
		hl.DFF("in=q, out=out"),
	)
}

func pin(name string, i int) string { return ttsim.BusPinName(name, i) }

// GateLevel returns a gate-level netlist of the design.
//
// Registers power up unknown and are cleared by the first rising edge of clk
// with rst_n low.
//
func GateLevel() (ttsim.NewPartFn, error) {
	reg, err := bitReg()
	if err != nil {
		return nil, errors.Wrap(err, "BitReg")
	}
	r := func(d, load, clr, out string) ttsim.Part {
		return reg("d=" + d + ", load=" + load + ", clr=" + clr + ", out=" + out)
	}

	parts := ttsim.Parts{
		// control
		hl.And("a=ena, b=ui_in[0], out=en"),
		hl.And("a=en, b=rst_n, out=run"),
		hl.Not("in=run, out=stop"),
		hl.Not("in=cnt[3], out=counting"),
		hl.And("a=run, b=counting, out=shift"),
		hl.And("a=run, b=cnt[3], out=done"),
		hl.Not("in=rst_n, out=rst"),

		// crc[0] = din ^ crc[2], crc[1] = crc[0] ^ crc[2], crc[2] = crc[1]
		hl.Xor("a=ui_in[1], b=crc[2], out=crcIn0"),
		hl.Xor("a=crc[0], b=crc[2], out=crcIn1"),
		r("crcIn0", "shift", "stop", "crc[0]"),
		r("crcIn1", "shift", "stop", "crc[1]"),
		r("crc[1]", "shift", "stop", "crc[2]"),

		// bit counter, stops at 8
		hl.IncN(4)("in=cnt, out=cntIn"),

		// tie-offs
		hl.BufN(8)("in=false, out=uio_out"),
		hl.BufN(8)("in=false, out=uio_oe"),
	}
	parts = append(parts, r("ui_in[1]", "shift", "stop", "sr[0]"))
	for i := 1; i < 8; i++ {
		parts = append(parts, r(pin("sr", i-1), "shift", "stop", pin("sr", i)))
	}
	for i := 0; i < 4; i++ {
		parts = append(parts, r(pin("cntIn", i), "shift", "stop", pin("cnt", i)))
	}
	// uo_out = {sr[7:3], crc[2:0]}
	for i := 0; i < 8; i++ {
		d := pin("crc", i)
		if i >= 3 {
			d = pin("sr", i)
		}
		parts = append(parts, r(d, "done", "rst", pin("uo_out", i)))
	}

	return ttsim.Chip("tt_um_crc3", Inputs, Outputs, parts...)
}

// Model returns the named model of the design: "rtl" for the behavioral model
// or "gl" for the gate-level netlist.
//
func Model(name string) (ttsim.NewPartFn, error) {
	switch name {
	case "rtl":
		return Behavioral(), nil
	case "gl":
		return GateLevel()
	}
	return nil, errors.Errorf("unknown model %q, expected rtl or gl", name)
}

// Models lists the model names accepted by Model.
//
var Models = []string{"rtl", "gl"}
