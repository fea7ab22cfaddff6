package tb_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	hw "github.com/db47h/ttsim"
	"github.com/db47h/ttsim/crc3"
	"github.com/db47h/ttsim/logic"
	"github.com/db47h/ttsim/tb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, model string, cfg tb.Config, logger *slog.Logger) (*tb.DUT, tb.Result, error) {
	t.Helper()
	design, err := crc3.Model(model)
	require.NoError(t, err)
	dut, err := tb.New(design, cfg.Workers, cfg.StepsPerCycle, logger)
	require.NoError(t, err)
	t.Cleanup(dut.Close)
	res, err := tb.Run(context.Background(), dut, cfg)
	return dut, res, err
}

func TestRun(t *testing.T) {
	td := []struct {
		cfg    tb.Config
		cycles uint
		polls  int
	}{
		{tb.Exact, 5 + 8 + 1 + 1, 0},
		{tb.GateLevelSafe, 30 + 10 + 8 + 1 + 1, 1},
	}
	for _, d := range td {
		for _, m := range crc3.Models {
			t.Run(d.cfg.Name+"/"+m, func(t *testing.T) {
				dut, res, err := run(t, m, d.cfg, nil)
				require.NoError(t, err)
				assert.Equal(t, uint64(0xAD), res.Got)
				assert.Equal(t, "10101101", res.BinStr)
				assert.Equal(t, d.polls, res.Polls)
				assert.Equal(t, d.cycles, res.Cycles)
				assert.Equal(t, d.cfg.ClockPeriod*time.Duration(d.cycles), res.SimTime)

				// disabled: output holds.
				assert.Equal(t, logic.L0, dut.UIIn.Bit(0))
				v, err := dut.UOOut.Int()
				require.NoError(t, err)
				assert.Equal(t, uint64(0xAD), v)
			})
		}
	}
}

func TestRun_mismatch(t *testing.T) {
	cfg := tb.Exact
	cfg.Expected = "0xAE"
	_, res, err := run(t, cfg.Model, cfg, nil)
	require.Error(t, err)
	assert.EqualError(t, err, "expected 0xAE, got 0xAD")
	var me *tb.MismatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, uint64(0xAD), me.Got)
	assert.Equal(t, uint64(0xAE), me.Want)
	assert.Equal(t, uint64(0xAD), res.Got)
}

func TestRun_timeout(t *testing.T) {
	cfg := tb.GateLevelSafe
	cfg.Expected = "0"
	cfg.PollCycles = 5
	_, res, err := run(t, cfg.Model, cfg, nil)
	te, ok := errors.Cause(err).(*tb.TimeoutError)
	require.True(t, ok, "expected a timeout, got %v", err)
	assert.Equal(t, 5, te.Cycles)
	assert.Equal(t, uint64(0xAD), te.Last)
	assert.Equal(t, uint64(0), te.Want)
	assert.EqualError(t, err, "timeout after 5 cycles waiting for 0x00, last value 0xAD")
	assert.Equal(t, uint64(0xAD), res.Got)
}

func TestRun_message(t *testing.T) {
	for msg := uint64(0); msg < 32; msg += 7 {
		cfg := tb.Exact
		cfg.Message = fmt.Sprintf("%05b", msg)
		cfg.Expected = fmt.Sprintf("%#02x", crc3.Codeword(uint8(msg)))
		_, res, err := run(t, "gl", cfg, nil)
		require.NoError(t, err, "message %s", cfg.Message)
		assert.Equal(t, uint64(crc3.Codeword(uint8(msg))), res.Got)
	}
}

func TestRun_invalid(t *testing.T) {
	cfg := tb.Exact
	cfg.Message = "1012"
	_, _, err := run(t, cfg.Model, cfg, nil)
	assert.EqualError(t, err, `message "1012": invalid bit '2' at pos 4`)
}

func TestRun_log(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, _, err := run(t, "rtl", tb.Exact, logger)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `"msg":"uo_out = 0xAD (expected 0xAD)"`)
	assert.Contains(t, out, `"msg":"begin shifting bits"`)
	assert.Contains(t, out, `"sim_time":`)
}

// unresolvedUntil passes in to out, except for the bits set in mask which read
// as X for the first cycles clock cycles.
func unresolvedUntil(mask uint64, cycles uint) hw.NewPartFn {
	return (&hw.PartSpec{
		Name:    "unresolved",
		Inputs:  hw.IO("in[8]"),
		Outputs: hw.IO("out[8]"),
		Mount: func(s *hw.Socket) []hw.Component {
			in, out := s.Bus("in", 8), s.Bus("out", 8)
			return []hw.Component{func(c *hw.Circuit) {
				resolved := c.Steps() >= cycles*c.SPC()
				for i := range out {
					l := c.Level(in[i])
					if !resolved && mask&(1<<uint(i)) != 0 {
						l = logic.X
					}
					c.SetLevel(out[i], l)
				}
			}}
		}}).NewPart
}

func TestRun_poll_unresolved(t *testing.T) {
	gl, err := crc3.GateLevel()
	require.NoError(t, err)

	td := []struct {
		name   string
		mask   uint64
		until  uint
		polls  int
		seen   string
		last   uint64
		cycles uint
	}{
		// polls 1 to 3 see the high nibble unresolved, poll 4 matches.
		{"match", 0xF0, 30 + 10 + 8 + 3, 4, "xxxx1101", 0xAD, 30 + 10 + 8 + 4 + 1},
		{"timeout", 0xFF, 1 << 20, 0, "xxxxxxxx", 0, 0},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			design, err := hw.Chip("crc3_late", crc3.Inputs, crc3.Outputs,
				gl("clk=clk, rst_n=rst_n, ena=ena, ui_in=ui_in, uio_in=uio_in, uo_out=o, uio_out=uio_out, uio_oe=uio_oe"),
				unresolvedUntil(d.mask, d.until)("in=o, out=uo_out"),
			)
			require.NoError(t, err)

			cfg := tb.GateLevelSafe
			cfg.PollCycles = 5
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			dut, err := tb.New(design, cfg.Workers, cfg.StepsPerCycle, logger)
			require.NoError(t, err)
			defer dut.Close()

			res, err := tb.Run(context.Background(), dut, cfg)
			assert.Contains(t, buf.String(), `"uo_out":"`+d.seen+`"`)
			if d.polls == 0 {
				te, ok := errors.Cause(err).(*tb.TimeoutError)
				require.True(t, ok, "expected a timeout, got %v", err)
				assert.Equal(t, d.last, te.Last)
				assert.Equal(t, d.seen, res.BinStr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, d.polls, res.Polls)
			assert.Equal(t, d.last, res.Got)
			assert.Equal(t, d.cycles, res.Cycles)
		})
	}
}
