// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package crc3

// Poly is the generator polynomial x^3 + x + 1.
//
const Poly = 0b1011

// MessageBits is the size of a message in a codeword.
//
const MessageBits = 5

// Remainder returns the remainder of the division of bits, msb first, by Poly.
// This is the value of the CRC register after shifting bits into it.
//
func Remainder(bits []bool) uint8 {
	var crc uint8
	for _, b := range bits {
		crc = step(crc, b)
	}
	return crc
}

func step(crc uint8, b bool) uint8 {
	fb := crc&4 != 0
	crc = crc<<1&7
	if b {
		crc |= 1
	}
	if fb {
		crc ^= Poly & 7
	}
	return crc
}

// Bits returns the n low bits of v, msb first.
//
func Bits(v uint64, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v&(1<<uint(n-i-1)) != 0
	}
	return out
}

// Codeword returns the 8 bit codeword for the 5 bit message msg: the message
// followed by the remainder of msg<<3.
//
func Codeword(msg uint8) uint8 {
	msg &= 1<<MessageBits - 1
	return msg<<3 | Remainder(Bits(uint64(msg)<<3, 8))
}

// Check returns true if codeword is divisible by Poly.
//
func Check(codeword uint8) bool {
	return Remainder(Bits(uint64(codeword), 8)) == 0
}
