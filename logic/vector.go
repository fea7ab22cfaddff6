// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logic

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxWidth is the maximum width of a Vector.
//
const MaxWidth = 64

// ErrUnresolved is returned when converting a Vector that has X or Z bits to an
// integer.
//
var ErrUnresolved = errors.New("unresolved bits in logic value")

// Vector is a fixed width 4-state value. Bit 0 is the lsb.
//
// The zero Vector has a width of 0.
//
type Vector struct {
	width int
	bits  uint64 // L1 bits
	unk   uint64 // X bits
	hiz   uint64 // Z bits
}

func mask(width int) uint64 {
	if width >= MaxWidth {
		return ^uint64(0)
	}
	return 1<<uint(width) - 1
}

func checkWidth(width int) {
	if width <= 0 || width > MaxWidth {
		panic("invalid vector width " + strconv.Itoa(width))
	}
}

// NewVector returns a vector of the given width set to v. Bits of v above
// width are discarded.
//
func NewVector(width int, v uint64) Vector {
	checkWidth(width)
	return Vector{width: width, bits: v & mask(width)}
}

// Unknown returns a vector with all bits set to X.
//
func Unknown(width int) Vector {
	checkWidth(width)
	return Vector{width: width, unk: mask(width)}
}

// HighZ returns a vector with all bits set to Z.
//
func HighZ(width int) Vector {
	checkWidth(width)
	return Vector{width: width, hiz: mask(width)}
}

// ParseBin parses a binary string, msb first. Valid characters are 0, 1, x, X,
// z and Z. Underscores are ignored.
//
func ParseBin(s string) (Vector, error) {
	var v Vector
	for i, r := range s {
		if r == '_' {
			continue
		}
		l, err := ParseLevel(r)
		if err != nil {
			return Vector{}, errors.Wrapf(err, "in %q at pos %d", s, i+1)
		}
		if v.width == MaxWidth {
			return Vector{}, errors.Errorf("in %q: value wider than %d bits", s, MaxWidth)
		}
		v.width++
		v.bits <<= 1
		v.unk <<= 1
		v.hiz <<= 1
		v = v.SetBit(0, l)
	}
	if v.width == 0 {
		return Vector{}, errors.New("empty binary string")
	}
	return v, nil
}

// Width returns the bit count of v.
//
func (v Vector) Width() int { return v.width }

// Bit returns the level of bit i.
//
func (v Vector) Bit(i int) Level {
	if i < 0 || i >= v.width {
		panic("bit index " + strconv.Itoa(i) + " out of range")
	}
	b := uint64(1) << uint(i)
	switch {
	case v.unk&b != 0:
		return X
	case v.hiz&b != 0:
		return Z
	case v.bits&b != 0:
		return L1
	}
	return L0
}

// SetBit returns a copy of v with bit i set to l.
//
func (v Vector) SetBit(i int, l Level) Vector {
	if i < 0 || i >= v.width {
		panic("bit index " + strconv.Itoa(i) + " out of range")
	}
	b := uint64(1) << uint(i)
	v.bits &^= b
	v.unk &^= b
	v.hiz &^= b
	switch l {
	case L1:
		v.bits |= b
	case X:
		v.unk |= b
	case Z:
		v.hiz |= b
	}
	return v
}

// Resolved returns true if all bits of v are either 0 or 1.
//
func (v Vector) Resolved() bool { return v.unk|v.hiz == 0 }

// Uint64 returns v as an integer. It fails with ErrUnresolved if any bit is X
// or Z.
//
func (v Vector) Uint64() (uint64, error) {
	if !v.Resolved() {
		return 0, errors.Wrap(ErrUnresolved, v.String())
	}
	return v.bits, nil
}

// Sanitize returns v as an integer where X and Z bits read as 0.
//
func (v Vector) Sanitize() uint64 { return v.bits }

// String returns the binary representation of v, msb first.
//
func (v Vector) String() string {
	var b strings.Builder
	b.Grow(v.width)
	for i := v.width - 1; i >= 0; i-- {
		b.WriteString(v.Bit(i).String())
	}
	return b.String()
}

var unresolved = strings.NewReplacer("x", "0", "X", "0", "z", "0", "Z", "0")

// Sanitize parses the binary string s, msb first, replacing any unresolved
// character (x, X, z or Z) with 0.
//
func Sanitize(s string) (uint64, error) {
	n, err := strconv.ParseUint(unresolved.Replace(s), 2, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "sanitize %q", s)
	}
	return n, nil
}
