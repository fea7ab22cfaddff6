// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/db47h/ttsim"
	"github.com/db47h/ttsim/hwlib"
	"github.com/db47h/ttsim/logic"
)

func connString(in, out []string) string {
	var b strings.Builder
	for _, n := range append(in[:len(in):len(in)], out...) {
		if b.Len() > 0 {
			b.WriteRune(',')
		}
		b.WriteString(n)
		b.WriteRune('=')
		b.WriteString(n)
	}
	return b.String()
}

func pinList(in []string) string {
	bus := make(map[string]int)
	var names []string
	var pins []string

	for _, n := range in {
		if b := strings.IndexRune(n, '['); b >= 0 {
			bn := n[:b]
			idx, err := strconv.Atoi(n[b+1 : strings.IndexRune(n, ']')])
			if err != nil {
				panic(err)
			}
			bidx, ok := bus[bn]
			if !ok {
				names = append(names, bn)
			}
			if !ok || bidx < idx {
				bus[bn] = idx
			}
		} else {
			pins = append(pins, n)
		}
	}

	var b strings.Builder
	for _, k := range names {
		if b.Len() > 0 {
			b.WriteRune(',')
		}
		b.WriteString(k)
		b.WriteRune('[')
		b.WriteString(strconv.Itoa(bus[k] + 1))
		b.WriteRune(']')
	}
	for _, n := range pins {
		if b.Len() > 0 {
			b.WriteRune(',')
		}
		b.WriteString(n)
	}
	return b.String()
}

// driven returns the input pins of a part, except the clock.
func driven(in []string) []string {
	var out []string
	for _, n := range in {
		if n != ttsim.Clk {
			out = append(out, n)
		}
	}
	return out
}

// ComparePart takes two parts and compares their outputs given the same inputs.
// Both parts must have the same Input/Output interface.
//
// An input pin named "clk" is connected to the simulation clock. Other inputs
// are set to all 0, then all 1, then to random values for a number of clock
// cycles; outputs are compared at the end of every cycle. Sequential parts
// must therefore reach a known state after one cycle with all inputs at 0.
//
func ComparePart(t *testing.T, tpc uint, part1 ttsim.NewPartFn, part2 ttsim.NewPartFn) {
	t.Helper()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	ps1, ps2 := part1(""), part2("")

	// compare specs
	if len(ps1.Inputs) != len(ps2.Inputs) {
		t.Fatal("len(ps1.Inputs) != len(ps2.Inputs)")
	}
	if len(ps1.Outputs) != len(ps2.Outputs) {
		t.Fatal("len(ps1.Outputs) != len(ps2.Outputs)")
	}
	for i := range ps1.Inputs {
		if ps1.Inputs[i] != ps2.Inputs[i] {
			t.Fatalf("ps1.Inputs[i] = %q != ps2.Inputs[i] = %q", ps1.Inputs[i], ps2.Inputs[i])
		}
	}
	for i := range ps1.Outputs {
		if ps1.Outputs[i] != ps2.Outputs[i] {
			t.Fatalf("ps1.Outputs[i] = %q != ps2.Outputs[i] = %q", ps1.Outputs[i], ps2.Outputs[i])
		}
	}

	ins := driven(ps1.Inputs)
	conns := connString(ps1.Inputs, ps1.Outputs)
	inputs := make([]bool, len(ins))
	outputs := make([][2]logic.Level, len(ps1.Outputs))

	// build two wrappers with their own set of outputs
	parts1 := ttsim.Parts{part1(conns)}
	for i, o := range ps1.Outputs {
		n := i
		parts1 = append(parts1, probe(func(l logic.Level) { outputs[n][0] = l })("in[0]="+o))
	}
	parts2 := ttsim.Parts{part2(conns)}
	for i, o := range ps2.Outputs {
		n := i
		parts2 = append(parts2, probe(func(l logic.Level) { outputs[n][1] = l })("in[0]="+o))
	}
	w1, err := ttsim.Chip("wrapper1", pinList(ins), "", parts1...)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := ttsim.Chip("wrapper2", pinList(ins), "", parts2...)
	if err != nil {
		t.Fatal(err)
	}

	var parts ttsim.Parts
	for i, n := range ins {
		k := i
		parts = append(parts, hwlib.Input(func() bool { return inputs[k] })("out="+n))
	}
	cstr := connString(ins, nil)
	parts = append(parts, w1(cstr), w2(cstr))

	c, err := ttsim.NewCircuit(0, tpc, parts...)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	errString := func(oname string, ex, got logic.Level) string {
		var b strings.Builder
		for i, n := range ins {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n)
			b.WriteRune('=')
			if inputs[i] {
				b.WriteString("true")
			} else {
				b.WriteString("false")
			}
		}
		return fmt.Sprintf("\nExpected %s => %s=%v\nGot %v", b.String(), oname, ex, got)
	}
	check := func() {
		t.Helper()
		c.TickTock()
		for o, out := range outputs {
			if out[0] != out[1] {
				t.Fatal(errString(ps1.Outputs[o], out[0], out[1]))
			}
		}
	}

	// random testing
	iter := len(ins)
	if iter > 12 {
		iter = 12
	}
	iter = 1 << uint(iter)

	start := time.Now()

	// try all 0
	check()

	// try all 1
	for in := range inputs {
		inputs[in] = true
	}
	check()

	for i := 0; i < iter; i++ {
		for in := range inputs {
			inputs[in] = rnd.Int63()&(1<<62) != 0
		}
		check()
	}

	elapsed := time.Since(start)
	ticks := c.Steps() / c.SPC()
	t.Logf("%d components. %d steps in %v. %d clock ticks => %.2f Hz", c.Size(), c.Steps(), elapsed, ticks, float64(ticks)/(float64(elapsed)/float64(time.Second)))
}

func probe(f func(logic.Level)) ttsim.NewPartFn {
	return hwlib.OutputV(1, func(v logic.Vector) { f(v.Bit(0)) })
}
