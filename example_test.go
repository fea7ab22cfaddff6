package ttsim_test

import (
	"fmt"

	hw "github.com/db47h/ttsim"
	hl "github.com/db47h/ttsim/hwlib"
	"github.com/db47h/ttsim/logic"
)

// Chip example with a XOR gate built from NAND gates.
func ExampleChip() {
	xor, err := hw.Chip("XOR", "a, b", "out",
		hl.Nand("a=a, b=b, out=nandAB"),
		hl.Nand("a=a, b=nandAB, out=w0"),
		hl.Nand("a=b, b=nandAB, out=w1"),
		hl.Nand("a=w0, b=w1, out=out"),
	)
	if err != nil {
		panic(err)
	}

	var a, b, out logic.Vector
	c, err := hw.NewCircuit(1, 16,
		// IOs to test the circuit
		hl.InputV(1, func() logic.Vector { return a })("out[0]=in_a"),
		hl.InputV(1, func() logic.Vector { return b })("out[0]=in_b"),
		xor("a=in_a, b=in_b, out=xor_out"),
		hl.OutputV(1, func(v logic.Vector) { out = v })("in[0]=xor_out"),
	)
	if err != nil {
		panic(err)
	}
	defer c.Dispose()

	for _, in := range [][2]string{{"0", "1"}, {"1", "1"}, {"1", "z"}} {
		a, _ = logic.ParseBin(in[0])
		b, _ = logic.ParseBin(in[1])
		c.TickTock()
		fmt.Printf("a=%s, b=%s => out=%s\n", a, b, out)
	}

	// Output:
	// a=0, b=1 => out=1
	// a=1, b=1 => out=0
	// a=1, b=z => out=x
}
