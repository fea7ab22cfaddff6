// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package tb is a testbench for Tiny Tapeout designs.
//
// A DUT wraps a design into a circuit and exposes its pins as named signals
// that can be driven and sampled between clock cycles:
//
//	dut, err := tb.New(crc3.Behavioral(), 1, 32, logger)
//	if err != nil {
//		// handle error
//	}
//	defer dut.Close()
//	dut.StartClock(10 * time.Nanosecond)
//	dut.RstN.Set(0)
//	err = dut.ClockCycles(ctx, 5)
//
// Values written to input signals are seen by the design before the next
// rising edge of the clock. Output signals read after ClockCycles returns
// hold the values settled after the last rising edge.
//
package tb

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/db47h/ttsim"
	hl "github.com/db47h/ttsim/hwlib"
	"github.com/db47h/ttsim/logic"
	"github.com/pkg/errors"
)

// A Signal is a named pin or bus of a DUT.
//
type Signal struct {
	name  string
	input bool
	v     logic.Vector
}

func newSignal(name string, width int, input bool) *Signal {
	s := &Signal{name: name, input: input}
	if input {
		s.v = logic.HighZ(width)
	} else {
		s.v = logic.Unknown(width)
	}
	return s
}

// Name returns the signal name.
//
func (s *Signal) Name() string { return s.name }

// Width returns the signal width in bits.
//
func (s *Signal) Width() int { return s.v.Width() }

func (s *Signal) checkInput() error {
	if !s.input {
		return errors.Errorf("%s: cannot drive an output signal", s.name)
	}
	return nil
}

// Set drives the signal with the integer v.
//
func (s *Signal) Set(v uint64) error {
	if err := s.checkInput(); err != nil {
		return err
	}
	if w := s.v.Width(); w < logic.MaxWidth && v>>uint(w) != 0 {
		return errors.Errorf("%s: value %#x out of range for %d bits", s.name, v, w)
	}
	s.v = logic.NewVector(s.v.Width(), v)
	return nil
}

// SetBit drives bit i of the signal. Other bits keep their value.
//
func (s *Signal) SetBit(i int, b bool) error {
	if err := s.checkInput(); err != nil {
		return err
	}
	if i < 0 || i >= s.v.Width() {
		return errors.Errorf("%s: bit index %d out of range", s.name, i)
	}
	s.v = s.v.SetBit(i, logic.FromBool(b))
	return nil
}

// SetValue drives the signal with a 4-state value of the same width.
//
func (s *Signal) SetValue(v logic.Vector) error {
	if err := s.checkInput(); err != nil {
		return err
	}
	if v.Width() != s.v.Width() {
		return errors.Errorf("%s: width mismatch %d != %d", s.name, v.Width(), s.v.Width())
	}
	s.v = v
	return nil
}

// Value returns the current value of the signal.
//
func (s *Signal) Value() logic.Vector { return s.v }

// Bit returns the level of bit i.
//
func (s *Signal) Bit(i int) logic.Level { return s.v.Bit(i) }

// Int returns the value of the signal as an integer. It fails if any bit is
// unknown or undriven.
//
func (s *Signal) Int() (uint64, error) {
	v, err := s.v.Uint64()
	if err != nil {
		return 0, errors.Wrap(err, s.name)
	}
	return v, nil
}

// BinStr returns the binary representation of the signal value, msb first.
//
func (s *Signal) BinStr() string { return s.v.String() }

func (s *Signal) String() string { return s.name + "=" + s.v.String() }

// DUT is a design under test.
//
type DUT struct {
	Clk    *Signal
	RstN   *Signal
	Ena    *Signal
	UIIn   *Signal
	UIOIn  *Signal
	UOOut  *Signal
	UIOOut *Signal
	UIOOE  *Signal

	c       *ttsim.Circuit
	period  time.Duration
	running bool
	log     *slog.Logger
}

// New creates a DUT for the given design. The design must have the Tiny
// Tapeout pinout:
//
//	Inputs: clk, rst_n, ena, ui_in[8], uio_in[8]
//	Outputs: uo_out[8], uio_out[8], uio_oe[8]
//
// See ttsim.NewCircuit for workers and stepsPerCycle. A nil logger discards
// all output.
//
func New(design ttsim.NewPartFn, workers int, stepsPerCycle uint, logger *slog.Logger) (*DUT, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d := &DUT{
		Clk:    newSignal("clk", 1, false),
		RstN:   newSignal("rst_n", 1, true),
		Ena:    newSignal("ena", 1, true),
		UIIn:   newSignal("ui_in", 8, true),
		UIOIn:  newSignal("uio_in", 8, true),
		UOOut:  newSignal("uo_out", 8, false),
		UIOOut: newSignal("uio_out", 8, false),
		UIOOE:  newSignal("uio_oe", 8, false),
		log:    logger,
	}
	parts := ttsim.Parts{
		design("clk=clk, rst_n=rst_n, ena=ena, ui_in=ui_in, uio_in=uio_in, uo_out=uo_out, uio_out=uio_out, uio_oe=uio_oe"),
		probe(d.Clk)("in[0]=clk"),
	}
	for _, s := range []*Signal{d.RstN, d.Ena} {
		parts = append(parts, driver(s)("out[0]="+s.name))
	}
	for _, s := range []*Signal{d.UIIn, d.UIOIn} {
		parts = append(parts, driver(s)("out="+s.name))
	}
	for _, s := range []*Signal{d.UOOut, d.UIOOut, d.UIOOE} {
		parts = append(parts, probe(s)("in="+s.name))
	}
	c, err := ttsim.NewCircuit(workers, stepsPerCycle, parts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build DUT")
	}
	d.c = c
	return d, nil
}

func driver(s *Signal) ttsim.NewPartFn {
	return hl.InputV(s.Width(), func() logic.Vector { return s.v })
}

func probe(s *Signal) ttsim.NewPartFn {
	return hl.OutputV(s.Width(), func(v logic.Vector) { s.v = v })
}

// Signals returns all signals of the DUT.
//
func (d *DUT) Signals() []*Signal {
	return []*Signal{d.Clk, d.RstN, d.Ena, d.UIIn, d.UIOIn, d.UOOut, d.UIOOut, d.UIOOE}
}

// StartClock starts the clock with the given period. It is used to convert
// clock cycles to simulated time.
//
func (d *DUT) StartClock(period time.Duration) error {
	if period <= 0 {
		return errors.Errorf("invalid clock period %v", period)
	}
	d.period = period
	d.running = true
	d.debug("clock started", "period", period)
	return nil
}

// ClockCycles runs the simulation for n clock cycles. It returns early with an
// error if ctx is done.
//
func (d *DUT) ClockCycles(ctx context.Context, n int) error {
	if !d.running {
		return errors.New("clock not started")
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "after %d of %d cycles", i, n)
		}
		d.c.TickTock()
	}
	return nil
}

// Cycles returns the number of clock cycles simulated so far.
//
func (d *DUT) Cycles() uint {
	return d.c.Steps() / d.c.SPC()
}

// Now returns the simulated time.
//
func (d *DUT) Now() time.Duration {
	return time.Duration(d.c.Steps()) * d.period / time.Duration(d.c.SPC())
}

// Close releases the resources used by the simulation.
//
func (d *DUT) Close() {
	d.c.Dispose()
}

func (d *DUT) info(msg string, args ...any) {
	d.log.Info(msg, append(args, slog.Duration("sim_time", d.Now()))...)
}

func (d *DUT) debug(msg string, args ...any) {
	d.log.Debug(msg, append(args, slog.Duration("sim_time", d.Now()))...)
}
