// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ttsim

import (
	"strconv"

	"github.com/db47h/ttsim/internal/hdl"
	"github.com/pkg/errors"
)

// BusPinName returns the pin name for the n-th bit of the named bus.
//
func BusPinName(name string, bit int) string {
	return name + "[" + strconv.Itoa(bit) + "]"
}

// ParseIOSpec parses the pin specification string and returns individual pin
// names in a slice, also expanding bus declarations to individual pin names.
// For example:
//
//	ParseIOSpec("in[2], sel") // returns []string{"in[0]", "in[1]", "sel"}
//
func ParseIOSpec(names string) ([]string, error) {
	var out []string
	p := hdl.Parser{Input: names}
	seen := make(map[string]bool)
	add := func(n string, pos hdl.Pos) error {
		if seen[n] {
			return errors.Errorf("in %q at pos %d: duplicate pin name %s", names, pos+1, n)
		}
		seen[n] = true
		out = append(out, n)
		return nil
	}
	for {
		i, err := p.Next(false)
		if err != nil {
			return nil, err
		}
		switch v := i.(type) {
		case nil:
			return out, nil
		case hdl.Pin:
			if err = add(v.Name, v.Pos); err != nil {
				return nil, err
			}
		case hdl.PinIndex:
			if v.Index <= 0 {
				return nil, errors.Errorf("in %q at pos %d: invalid bus size %d", names, v.Pos+1, v.Index)
			}
			for n := 0; n < v.Index; n++ {
				if err = add(BusPinName(v.Name, n), v.Pos); err != nil {
					return nil, err
				}
			}
		case hdl.PinRange:
			return nil, errors.Errorf("in %q at pos %d: range not allowed in pin specification", names, v.Pos+1)
		}
	}
}

// IO is a wrapper around ParseIOSpec that panics if an error is returned.
//
func IO(spec string) []string {
	pins, err := ParseIOSpec(spec)
	if err != nil {
		panic(err)
	}
	return pins
}

// A Connection represents a connection between the pin PP of a part and
// the pins CP in its host chip.
//
type Connection struct {
	PP string
	CP []string
}

func expand(in string, pin interface{}) ([]string, error) {
	switch v := pin.(type) {
	case hdl.Pin:
		return []string{v.Name}, nil
	case hdl.PinIndex:
		return []string{BusPinName(v.Name, v.Index)}, nil
	case hdl.PinRange:
		if v.End < v.Start {
			return nil, errors.Errorf("in %q at pos %d: invalid range [%d..%d]", in, v.Pos+1, v.Start, v.End)
		}
		out := make([]string, 0, v.End-v.Start+1)
		for i := v.Start; i <= v.End; i++ {
			out = append(out, BusPinName(v.Name, i))
		}
		return out, nil
	}
	panic("unexpected pin type")
}

// ParseConnections parses a connection configuration like "partPin1=chipPin1,
// partPin2=chipPin2". Ranges are expanded, so "a[0..1]=w[2..3]" connects a[0]
// to w[2] and a[1] to w[3]. A range on the left side may be connected to a
// single pin, in which case all pins in the range are connected to it. The
// same part pin can appear several times, which is only valid for outputs.
//
func ParseConnections(c string) ([]Connection, error) {
	var conns []Connection
	idx := make(map[string]int)
	p := hdl.Parser{Input: c}
	for {
		i, err := p.Next(true)
		if err != nil {
			return nil, err
		}
		if i == nil {
			return conns, nil
		}
		a := i.(hdl.PinAssignment)
		ks, err := expand(c, a.LHS)
		if err != nil {
			return nil, err
		}
		vs, err := expand(c, a.RHS)
		if err != nil {
			return nil, err
		}
		if len(ks) != len(vs) && len(vs) != 1 {
			return nil, errors.Errorf("in %q: pin count mismatch %d != %d", c, len(ks), len(vs))
		}
		for n, k := range ks {
			v := vs[0]
			if len(vs) > 1 {
				v = vs[n]
			}
			if j, ok := idx[k]; ok {
				conns[j].CP = append(conns[j].CP, v)
				continue
			}
			idx[k] = len(conns)
			conns = append(conns, Connection{k, []string{v}})
		}
	}
}
