package ttsim_test

import (
	"testing"

	hw "github.com/db47h/ttsim"
	hl "github.com/db47h/ttsim/hwlib"
	"github.com/db47h/ttsim/hwtest"
	"github.com/db47h/ttsim/logic"
	"github.com/google/go-cmp/cmp"
)

type mux4 struct {
	A   [4]int `hw:"in"`
	B   [4]int `hw:"in"`
	Sel int    `hw:"in"`
	Out [4]int `hw:"out"`
}

func (m *mux4) Update(c *hw.Circuit) {
	sel := c.Level(m.Sel)
	for i := range m.Out {
		c.SetLevel(m.Out[i], logic.Mux(c.Level(m.A[i]), c.Level(m.B[i]), sel))
	}
}

func Test_MakePart(t *testing.T) {
	m, err := hw.Chip("myMux4", "a[4], b[4], sel", "out[4]",
		hl.Mux("a=a[0], b=b[0], sel=sel, out=out[0]"),
		hl.Mux("a=a[1], b=b[1], sel=sel, out=out[1]"),
		hl.Mux("a=a[2], b=b[2], sel=sel, out=out[2]"),
		hl.Mux("a=a[3], b=b[3], sel=sel, out=out[3]"),
	)
	if err != nil {
		t.Fatal(err)
	}

	p := hw.MakePart((*mux4)(nil))
	if p.Name != "mux4" {
		t.Errorf("got name %q, expected mux4", p.Name)
	}
	hwtest.ComparePart(t, testTPC, m, p.NewPart)
}

// counter keeps its state in unexported fields, which are zeroed on every mount.
type counter struct {
	Clk   int    `hw:"in"`
	Reset int    `hw:"in,rst"`
	Out   [2]int `hw:"out,q"`

	n     uint8
	known bool
}

func (k *counter) Update(c *hw.Circuit) {
	if c.AtTick() {
		switch c.Level(k.Reset) {
		case logic.L1:
			k.n, k.known = 0, true
		case logic.L0:
			k.n++
		default:
			k.known = false
		}
	}
	for i, p := range k.Out {
		l := logic.X
		if k.known {
			l = logic.FromBool(k.n&(1<<uint(i)) != 0)
		}
		c.SetLevel(p, l)
	}
}

func Test_MakePart_clocked(t *testing.T) {
	spec := hw.MakePart(&counter{})
	if diff := cmp.Diff([]string{"clk", "rst"}, spec.Inputs); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"q[0]", "q[1]"}, spec.Outputs); diff != "" {
		t.Fatalf("outputs mismatch (-want +got):\n%s", diff)
	}

	var rst bool
	var q logic.Vector
	c, err := hw.NewCircuit(0, testTPC,
		hl.Input(func() bool { return rst })("out=rst"),
		spec.NewPart("clk=clk, rst=rst, q=q"),
		hl.OutputV(2, func(v logic.Vector) { q = v })("in=q"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	c.Step()
	c.Step()
	if q.Resolved() {
		t.Fatalf("counter must start unknown, got %s", q)
	}
	rst = true
	c.TickTock()
	rst = false
	for i := 1; i <= 6; i++ {
		c.TickTock()
		v, err := q.Uint64()
		if err != nil {
			t.Fatal(err)
		}
		if v != uint64(i&3) {
			t.Errorf("cycle %d: q = %d, expected %d", i, v, i&3)
		}
	}
}

func Test_MakePart_invalid(t *testing.T) {
	td := []struct {
		u   hw.Updater
		err string
	}{
		{&badTagU{}, `unsupported tag "inout" for field "In" in "badTagU"`},
		{&longTagU{}, `unsupported tag "in,a,b" for field "In" in "longTagU"`},
		{&badTypeU{}, `unsupported type "string" for field "In" in "badTypeU"`},
		{&emptyBusU{}, `empty bus "in" for field "In" in "emptyBusU"`},
		{&dupPinU{}, `pin "a" of field "B" already used by field "A" in "dupPinU"`},
	}
	for _, d := range td {
		func() {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok {
					t.Errorf("MakePart(%T) did not panic with an error: %v", d.u, r)
					return
				}
				if err.Error() != d.err {
					t.Errorf("MakePart(%T): got %q, expected %q", d.u, err, d.err)
				}
			}()
			hw.MakePart(d.u)
		}()
	}
}

type badTagU struct {
	In int `hw:"inout"`
}

func (*badTagU) Update(*hw.Circuit) {}

type longTagU struct {
	In int `hw:"in,a,b"`
}

func (*longTagU) Update(*hw.Circuit) {}

type badTypeU struct {
	In string `hw:"in"`
}

func (*badTypeU) Update(*hw.Circuit) {}

type emptyBusU struct {
	In [0]int `hw:"in"`
}

func (*emptyBusU) Update(*hw.Circuit) {}

type dupPinU struct {
	A int `hw:"in"`
	B int `hw:"out,a"`
}

func (*dupPinU) Update(*hw.Circuit) {}

// rev4 reverses the bits of a 4 bits bus.
type rev4 struct {
	In  [4]int `hw:"in"`
	Out [4]int `hw:"out"`
}

func (r *rev4) Update(c *hw.Circuit) {
	in := c.Vector(r.In[:])
	out := logic.NewVector(4, 0)
	for i := 0; i < 4; i++ {
		out = out.SetBit(3-i, in.Bit(i))
	}
	c.SetVector(r.Out[:], out)
}

func Test_MakePart_vector(t *testing.T) {
	bufs, err := hw.Chip("REV4", "in[4]", "out[4]",
		hl.BufN(4)("in[0]=in[3], in[1]=in[2], in[2]=in[1], in[3]=in[0], out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, testTPC, bufs, hw.MakePart((*rev4)(nil)).NewPart)
}

func TestCircuit_SetVector_width(t *testing.T) {
	var pins []int
	part := (&hw.PartSpec{
		Name:    "pins",
		Outputs: hw.IO("out[2]"),
		Mount: func(s *hw.Socket) []hw.Component {
			pins = s.Bus("out", 2)
			return nil
		}}).NewPart
	c, err := hw.NewCircuit(1, testTPC, part(""))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || err.Error() != "vector width 3 does not match bus width 2" {
			t.Errorf("got panic %v, expected a width mismatch", r)
		}
	}()
	c.SetVector(pins, logic.NewVector(3, 0))
}
