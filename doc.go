/*
Package ttsim provides the necessary tools to describe small digital designs
using Go as a hardware description language, and to simulate them.

This includes a naive 4-state (0, 1, X, Z) cycle based simulator and an API to
compose basic components (logic gates, muxers, flip-flops, etc.) into more
complex ones. The hwlib package provides the built-in parts, the tb package
a testbench to drive designs that use the Tiny Tapeout pinout.

The API is designed to mimmic a real hardware description language. As a
result, it relies heavily on closures and can feel a bit awkward when
implementing custom components. Parts with complex behavior are easier to write
as structs with MakePart.

A simulation step updates every component once: components read the current
state of the wires and write the next one, so the order in which components are
updated does not matter and each part of a combinational path adds one step of
propagation delay. A clock cycle is made of SPC() steps; the Clk signal is low
during the first half and high during the second half of the cycle.
*/
package ttsim
