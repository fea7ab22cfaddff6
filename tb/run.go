// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tb

import (
	"context"
	"fmt"
	"time"

	"github.com/db47h/ttsim/logic"
	"github.com/pkg/errors"
)

// MismatchError is returned when the sampled output differs from the expected
// value.
//
type MismatchError struct {
	Got, Want uint64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected 0x%02X, got 0x%02X", e.Want, e.Got)
}

// TimeoutError is returned when the output did not match the expected value
// within the poll window. Last is the last sanitized value.
//
type TimeoutError struct {
	Last, Want uint64
	Cycles     int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %d cycles waiting for 0x%02X, last value 0x%02X", e.Cycles, e.Want, e.Last)
}

// Result reports a successful run.
//
type Result struct {
	Got     uint64        // output value
	BinStr  string        // raw output value
	Polls   int           // number of polls before a match, 0 for a single sample
	Cycles  uint          // clock cycles simulated
	SimTime time.Duration // simulated time
}

// Run runs the test procedure described by cfg on dut:
//
//	- start the clock
//	- hold reset for cfg.ResetCycles cycles with ena high and ui_in, uio_in low
//	- release reset and wait cfg.SettleCycles cycles
//	- set ui_in[0] and shift the message bits on ui_in[1], one per cycle
//	- wait cfg.SampleDelay cycles, then sample or poll uo_out
//	- clear ui_in[0] and run one more cycle
//
// The returned error is a *MismatchError, a *TimeoutError, or any error that
// prevented the test from running. Use errors.Cause to get to the typed error.
//
func Run(ctx context.Context, dut *DUT, cfg Config) (Result, error) {
	var res Result

	if err := cfg.Validate(); err != nil {
		return res, err
	}
	bits, _ := cfg.Bits()
	want, _ := cfg.Want()

	dut.info("start", "variant", cfg.Name, "model", cfg.Model)
	if err := dut.StartClock(cfg.ClockPeriod); err != nil {
		return res, err
	}

	dut.info("reset", "cycles", cfg.ResetCycles)
	for _, s := range []struct {
		s *Signal
		v uint64
	}{{dut.Ena, 1}, {dut.UIIn, 0}, {dut.UIOIn, 0}, {dut.RstN, 0}} {
		if err := s.s.Set(s.v); err != nil {
			return res, err
		}
	}
	if err := dut.ClockCycles(ctx, cfg.ResetCycles); err != nil {
		return res, errors.Wrap(err, "reset")
	}
	if err := dut.RstN.Set(1); err != nil {
		return res, err
	}
	if cfg.SettleCycles > 0 {
		if err := dut.ClockCycles(ctx, cfg.SettleCycles); err != nil {
			return res, errors.Wrap(err, "settle")
		}
	}

	dut.info("begin shifting bits", "bits", len(bits))
	if err := dut.UIIn.SetBit(0, true); err != nil {
		return res, err
	}
	for i, b := range bits {
		if err := dut.UIIn.SetBit(1, b); err != nil {
			return res, err
		}
		if err := dut.ClockCycles(ctx, 1); err != nil {
			return res, errors.Wrapf(err, "bit %d", i)
		}
	}
	if err := dut.ClockCycles(ctx, cfg.SampleDelay); err != nil {
		return res, errors.Wrap(err, "sample delay")
	}

	if cfg.PollCycles == 0 {
		got, err := dut.UOOut.Int()
		if err != nil {
			return res, err
		}
		res.Got = got
		res.BinStr = dut.UOOut.BinStr()
		dut.info(fmt.Sprintf("uo_out = 0x%02X (expected 0x%02X)", got, want))
		if got != want {
			return res, &MismatchError{Got: got, Want: want}
		}
	} else {
		var got uint64
		matched := false
		for i := 1; i <= cfg.PollCycles; i++ {
			if err := dut.ClockCycles(ctx, 1); err != nil {
				return res, errors.Wrapf(err, "poll %d", i)
			}
			s := dut.UOOut.BinStr()
			v, err := logic.Sanitize(s)
			if err != nil {
				return res, err
			}
			got = v
			dut.debug("poll", "n", i, "uo_out", s)
			if got == want {
				res.Got, res.BinStr, res.Polls = got, s, i
				matched = true
				break
			}
		}
		if !matched {
			res.Got, res.BinStr = got, dut.UOOut.BinStr()
			dut.info(fmt.Sprintf("uo_out = 0x%02X (expected 0x%02X)", got, want))
			return res, &TimeoutError{Last: got, Want: want, Cycles: cfg.PollCycles}
		}
		dut.info(fmt.Sprintf("uo_out = 0x%02X (expected 0x%02X)", got, want), "polls", res.Polls)
	}

	dut.info("disable")
	if err := dut.UIIn.SetBit(0, false); err != nil {
		return res, err
	}
	if err := dut.ClockCycles(ctx, 1); err != nil {
		return res, errors.Wrap(err, "disable")
	}
	res.Cycles = dut.Cycles()
	res.SimTime = dut.Now()
	dut.info("done")
	return res, nil
}
