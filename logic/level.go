// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package logic implements 4-state logic values as found in HDL simulators:
// 0, 1, X (unknown) and Z (high impedance).
//
package logic

import (
	"github.com/pkg/errors"
)

// Level is the state of a single wire.
//
type Level uint8

// Wire levels. The zero value is L0.
//
const (
	L0 Level = iota // logic 0
	L1              // logic 1
	X               // unknown or conflicting value
	Z               // undriven
)

// FromBool returns L1 if b is true, L0 otherwise.
//
func FromBool(b bool) Level {
	if b {
		return L1
	}
	return L0
}

// Known returns true if l is either L0 or L1.
//
func (l Level) Known() bool { return l <= L1 }

// Bool returns true if l is L1. X and Z read as false.
//
func (l Level) Bool() bool { return l == L1 }

func (l Level) String() string {
	switch l {
	case L0:
		return "0"
	case L1:
		return "1"
	case X:
		return "x"
	case Z:
		return "z"
	}
	return "?"
}

// ParseLevel returns the Level for one of the characters 0, 1, x, X, z or Z.
//
func ParseLevel(r rune) (Level, error) {
	switch r {
	case '0':
		return L0, nil
	case '1':
		return L1, nil
	case 'x', 'X':
		return X, nil
	case 'z', 'Z':
		return Z, nil
	}
	return X, errors.Errorf("invalid logic level %q", r)
}

// a gate input that is not driven reads as unknown.
func resolve(l Level) Level {
	if l == Z {
		return X
	}
	return l
}

// Not returns the complement of a.
//
func Not(a Level) Level {
	switch a {
	case L0:
		return L1
	case L1:
		return L0
	}
	return X
}

// And returns a && b. L0 on either input forces the output to L0.
//
func And(a, b Level) Level {
	if a == L0 || b == L0 {
		return L0
	}
	if a == L1 && b == L1 {
		return L1
	}
	return X
}

// Or returns a || b. L1 on either input forces the output to L1.
//
func Or(a, b Level) Level {
	if a == L1 || b == L1 {
		return L1
	}
	if a == L0 && b == L0 {
		return L0
	}
	return X
}

// Xor returns a ^ b. The output is unknown unless both inputs are known.
//
func Xor(a, b Level) Level {
	if a.Known() && b.Known() {
		return FromBool(a != b)
	}
	return X
}

// Buf returns a with Z read as X.
//
func Buf(a Level) Level { return resolve(a) }

// Mux returns a if sel is L0 and b if sel is L1. When sel is not known, the
// output is known only if a and b agree.
//
func Mux(a, b, sel Level) Level {
	switch sel {
	case L0:
		return resolve(a)
	case L1:
		return resolve(b)
	}
	if a == b && a.Known() {
		return a
	}
	return X
}
