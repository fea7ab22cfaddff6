// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package crc3 implements a Tiny Tapeout design that appends a CRC-3 to a
// serially shifted 5 bit message.
//
// The design has the standard Tiny Tapeout pinout:
//
//	Inputs: clk, rst_n, ena, ui_in[8], uio_in[8]
//	Outputs: uo_out[8], uio_out[8], uio_oe[8]
//
// While ena and ui_in[0] are high, the bit on ui_in[1] is shifted into an 8
// bit shift register and into the CRC register on every rising edge of clk.
// One cycle after the 8th bit, uo_out is loaded with the five oldest bits of
// the shift register followed by the CRC:
//
//	uo_out = {sr[7:3], crc[2:0]}
//
// uo_out holds its value until the next reset. Dropping the enable clears the
// shift register, the CRC and the bit counter. rst_n is synchronous and active
// low. uio_out and uio_oe are tied low.
//
// Shifting the message 10101 followed by 3 zero bits yields 0xAD.
//
// Two models of the design are provided: a behavioral one (Behavioral) and a
// gate-level netlist (GateLevel).
//
package crc3
