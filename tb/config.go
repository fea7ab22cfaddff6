// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tb

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
)

// Config configures a test run.
//
// When PollCycles is 0, uo_out is sampled once, SampleDelay cycles after the
// last message bit, and must match Expected exactly. Otherwise, after
// SampleDelay cycles, uo_out is sampled once per cycle for up to PollCycles
// cycles, with unresolved bits read as 0, until it matches Expected.
//
type Config struct {
	Name          string        `ini:"-"`
	Model         string        `ini:"model"`
	ClockPeriod   time.Duration `ini:"clock_period"`
	ResetCycles   int           `ini:"reset_cycles"`
	SettleCycles  int           `ini:"settle_cycles"`
	SampleDelay   int           `ini:"sample_delay"`
	PollCycles    int           `ini:"poll_cycles"`
	Message       string        `ini:"message"` // msb first
	Padding       int           `ini:"padding"`
	Expected      string        `ini:"expected"`
	StepsPerCycle uint          `ini:"steps_per_cycle"`
	Workers       int           `ini:"workers"`
}

// Exact is the behavioral-level test: short reset, one exact sample.
//
var Exact = Config{
	Name:          "exact",
	Model:         "rtl",
	ClockPeriod:   10 * time.Nanosecond,
	ResetCycles:   5,
	SampleDelay:   1,
	Message:       "10101",
	Padding:       3,
	Expected:      "0xAD",
	StepsPerCycle: 32,
	Workers:       1,
}

// GateLevelSafe is the gate-level-safe test: long reset and settle time, then
// polls the sanitized output.
//
var GateLevelSafe = Config{
	Name:          "gl-safe",
	Model:         "gl",
	ClockPeriod:   10 * time.Nanosecond,
	ResetCycles:   30,
	SettleCycles:  10,
	PollCycles:    50,
	Message:       "10101",
	Padding:       3,
	Expected:      "0xAD",
	StepsPerCycle: 32,
	Workers:       1,
}

// Variants lists the names accepted by Variant.
//
var Variants = []string{Exact.Name, GateLevelSafe.Name}

// Variant returns the named test configuration.
//
func Variant(name string) (Config, error) {
	switch name {
	case Exact.Name:
		return Exact, nil
	case GateLevelSafe.Name:
		return GateLevelSafe, nil
	}
	return Config{}, errors.Errorf("unknown variant %q, expected one of %s", name, strings.Join(Variants, ", "))
}

// LoadConfig loads the [testbench] section of an ini file over base. src can
// be a file name, []byte or io.ReadCloser, as accepted by ini.Load. Keys that
// are not present keep the value from base.
//
func LoadConfig(src interface{}, base Config) (Config, error) {
	f, err := ini.Load(src)
	if err != nil {
		return base, errors.Wrap(err, "failed to load config")
	}
	cfg := base
	sec := f.Section("testbench")
	if err = sec.MapTo(&cfg); err != nil {
		return base, errors.Wrap(err, "failed to map section testbench")
	}
	// MapTo skips durations that are not positive or fail to parse.
	if sec.HasKey("clock_period") {
		d, err := sec.Key("clock_period").Duration()
		if err != nil {
			return base, errors.Wrap(err, "invalid clock_period")
		}
		cfg.ClockPeriod = d
	}
	if err = cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Bits returns the bits to shift in: the message followed by Padding zeros.
//
func (c *Config) Bits() ([]bool, error) {
	if c.Message == "" {
		return nil, errors.New("empty message")
	}
	bits := make([]bool, 0, len(c.Message)+c.Padding)
	for i, r := range c.Message {
		switch r {
		case '0':
			bits = append(bits, false)
		case '1':
			bits = append(bits, true)
		default:
			return nil, errors.Errorf("message %q: invalid bit %q at pos %d", c.Message, r, i+1)
		}
	}
	for i := 0; i < c.Padding; i++ {
		bits = append(bits, false)
	}
	return bits, nil
}

// Want returns the expected output value.
//
func (c *Config) Want() (uint64, error) {
	v, err := strconv.ParseUint(c.Expected, 0, 8)
	if err != nil {
		return 0, errors.Wrap(err, "expected")
	}
	return v, nil
}

// Validate checks the configuration.
//
func (c *Config) Validate() error {
	switch {
	case c.ClockPeriod <= 0:
		return errors.Errorf("invalid clock_period %v", c.ClockPeriod)
	case c.ResetCycles < 1:
		return errors.Errorf("invalid reset_cycles %d", c.ResetCycles)
	case c.SettleCycles < 0:
		return errors.Errorf("invalid settle_cycles %d", c.SettleCycles)
	case c.SampleDelay < 0:
		return errors.Errorf("invalid sample_delay %d", c.SampleDelay)
	case c.PollCycles < 0:
		return errors.Errorf("invalid poll_cycles %d", c.PollCycles)
	case c.Padding < 0:
		return errors.Errorf("invalid padding %d", c.Padding)
	case c.StepsPerCycle < 2:
		return errors.Errorf("invalid steps_per_cycle %d", c.StepsPerCycle)
	}
	if _, err := c.Bits(); err != nil {
		return err
	}
	_, err := c.Want()
	return err
}
