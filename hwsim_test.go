package ttsim_test

import (
	"strings"
	"testing"

	hw "github.com/db47h/ttsim"
	hl "github.com/db47h/ttsim/hwlib"
	"github.com/db47h/ttsim/logic"
	"github.com/pkg/errors"
)

const testTPC = 16

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

func testGate(t *testing.T, name string, gate hw.NewPartFn, result [][]bool) {
	t.Helper()
	part := gate("").PartSpec
	inputs := make([]bool, len(part.Inputs))
	outputs := make([]bool, len(part.Outputs))
	var conns []string
	parts := make(hw.Parts, 0, len(part.Inputs)+len(part.Outputs)+1)
	for i, n := range part.Inputs {
		conns = append(conns, n+"="+n)
		in := &inputs[i]
		parts = append(parts, hl.Input(func() bool { return *in })("out="+n))
	}
	for i, n := range part.Outputs {
		conns = append(conns, n+"="+n)
		out := &outputs[i]
		parts = append(parts, hl.Output(func(v bool) { *out = v })("in="+n))
	}
	parts = append(parts, gate(strings.Join(conns, ",")))
	c, err := hw.NewCircuit(0, testTPC, parts...)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	tot := 1 << uint(len(part.Inputs))
	for i := 0; i < tot; i++ {
		for bit := range inputs {
			inputs[len(inputs)-bit-1] = (i & (1 << uint(bit))) != 0
		}
		c.TickTock()
		for o, out := range outputs {
			if exp := result[o][i]; exp != out {
				t.Errorf("%s %v = %v, got %v", name, inputs, exp, out)
			}
		}
	}
}

func Test_gate_custom(t *testing.T) {
	and, err := hw.Chip("AND", "a, b", "out",
		hl.Nand("a=a, b=b, out=nand"),
		hl.Nand("a=nand, b=nand, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	or, err := hw.Chip("OR", "a, b", "out",
		hl.Nand("a=a, b=a, out=notA"),
		hl.Nand("a=b, b=b, out=notB"),
		hl.Nand("a=notA, b=notB, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	nor, err := hw.Chip("NOR", "a, b", "out",
		or("a=a, b=b, out=orAB"),
		hl.Nand("a=orAB, b=orAB, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	xor, err := hw.Chip("XOR", "a, b", "out",
		hl.Nand("a=a, b=b, out=nandAB"),
		hl.Nand("a=a, b=nandAB, out=w0"),
		hl.Nand("a=b, b=nandAB, out=w1"),
		hl.Nand("a=w0, b=w1, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	xnor, err := hw.Chip("XNOR", "a, b", "out",
		or("a=a, b=b, out=or"),
		hl.Nand("a=a, b=b, out=nand"),
		hl.Nand("a=or, b=nand, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	not, err := hw.Chip("NOT", "a", "out",
		hl.Nand("a=a, b=a, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	mux, err := hw.Chip("MUX", "a, b, sel", "out",
		hl.Not("in=sel, out=notSel"),
		hl.And("a=a, b=notSel, out=w0"),
		hl.And("a=b, b=sel, out=w1"),
		hl.Or("a=w0, b=w1, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	dmux, err := hw.Chip("DMUX", "in, sel", "a, b",
		hl.Not("in=sel, out=notSel"),
		hl.And("a=in, b=notSel, out=a"),
		hl.And("a=in, b=sel, out=b"),
	)
	if err != nil {
		t.Fatal(err)
	}
	td := []struct {
		name   string
		gate   hw.NewPartFn
		result [][]bool
	}{
		{"AND", and, [][]bool{{false, false, false, true}}},
		{"OR", or, [][]bool{{false, true, true, true}}},
		{"NOR", nor, [][]bool{{true, false, false, false}}},
		{"XOR", xor, [][]bool{{false, true, true, false}}},
		{"XNOR", xnor, [][]bool{{true, false, false, true}}},
		{"NOT", not, [][]bool{{true, false}}},
		{"MUX", mux, [][]bool{{false, false, false, true, true, false, true, true}}},
		{"DMUX", dmux, [][]bool{{false, false, true, false}, {false, false, false, true}}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			testGate(t, d.name, d.gate, d.result)
		})
	}
}

// Test a basic oscillator built with a Nor gate.
//
// The purpose of this test is to catch changes in propagation delays
// from Inputs and Outputs as well as testing loops between input and outputs.
// The loop starts in the unknown state until disable forces it to 0.
//
func Test_loop(t *testing.T) {
	var disable bool
	var tick logic.Level

	osc, err := hw.Chip("OSC", "disable", "tick",
		hl.Nor("a=disable, b=tick, out=tick"),
	)
	if err != nil {
		t.Fatal(err)
	}
	c, err := hw.NewCircuit(0, testTPC,
		hl.Input(func() bool { return disable })("out=disable"),
		osc("disable=disable, tick=out"),
		hl.OutputV(1, func(v logic.Vector) { tick = v.Bit(0) })("in[0]=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	// the probe sees the value of "out" one step after the Nor updates it.
	seq := []struct {
		disable bool
		want    string
	}{
		{true, "xx00"},
		{false, "00101"},
		{true, "0100"},
	}
	for _, s := range seq {
		disable = s.disable
		for _, r := range s.want {
			l, _ := logic.ParseLevel(r)
			c.Step()
			if tick != l {
				t.Errorf("step %d: expected %v, got %v", c.Steps(), l, tick)
			}
		}
	}
}

func Test_clock(t *testing.T) {
	var levels []logic.Level
	var edges []uint
	probe := (&hw.PartSpec{
		Name:   "probe",
		Inputs: hw.IO("in"),
		Mount: func(s *hw.Socket) []hw.Component {
			in := s.Pin("in")
			return []hw.Component{func(c *hw.Circuit) {
				levels = append(levels, c.Level(in))
				if c.AtTick() {
					edges = append(edges, c.Steps())
				}
			}}
		}}).NewPart
	c, err := hw.NewCircuit(1, 5, probe("in=clk"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	if c.SPC() != 8 {
		t.Fatalf("SPC() = %d, expected 8", c.SPC())
	}
	if !c.AtTock() || c.AtTick() {
		t.Fatalf("new circuit must be at the start of a cycle")
	}
	c.Tick()
	if c.Steps() != 5 {
		t.Errorf("Steps() after Tick = %d, expected 5", c.Steps())
	}
	c.Tock()
	if c.Steps() != 8 {
		t.Errorf("Steps() after Tock = %d, expected 8", c.Steps())
	}
	c.TickTock()

	var b strings.Builder
	for _, l := range levels {
		b.WriteString(l.String())
	}
	if got := b.String(); got != "0000111100001111" {
		t.Errorf("clk = %s, expected 0000111100001111", got)
	}
	if len(edges) != 2 || edges[0] != 4 || edges[1] != 12 {
		t.Errorf("rising edges at steps %v, expected [4 12]", edges)
	}
}

func TestNewCircuit(t *testing.T) {
	if _, err := hw.NewCircuit(0, testTPC); err == nil {
		t.Error("expected error for empty part list")
	}
	_, err := hw.NewCircuit(0, testTPC, hl.Not("in=a, out=b"))
	if err == nil {
		t.Fatal("expected error for unconnected wire")
	}
	trace(t, err)
	if want := "failed to create chip wrapper: pin a not connected to any output"; err.Error() != want {
		t.Errorf("got error %q, expected %q", err, want)
	}

	c, err := hw.NewCircuit(0, testTPC,
		hl.Not("in=true, out=b"),
		hl.Output(func(bool) {})("in=b"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()
	// one component per part, plus the clock.
	if c.Size() != 3 {
		t.Errorf("Size() = %d, expected 3", c.Size())
	}
}

func TestCircuit_unknown(t *testing.T) {
	var out logic.Vector
	c, err := hw.NewCircuit(0, testTPC,
		hl.And("a=true, b=x, out=a"),
		hl.Or("a=true, b=x, out=b"),
		hl.Not("in=x, out=c"),
		hl.Not("in=c, out=x"),
		hl.OutputV(3, func(v logic.Vector) { out = v })("in[0]=a, in[1]=b, in[2]=c"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()
	c.TickTock()
	// x and c form a loop that never leaves the unknown state.
	if got := out.String(); got != "x1x" {
		t.Errorf("got %s, expected x1x", got)
	}
}
