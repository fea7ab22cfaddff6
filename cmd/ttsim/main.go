// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command ttsim runs the CRC-3 testbench against a model of the design.
//
// Usage:
//
//	ttsim [-variant exact|gl-safe] [-model rtl|gl] [-config file.ini] [-json] [-v]
//
// The exit status is 0 if the test passed, 1 if it failed and 2 on usage or
// configuration errors.
//
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/db47h/ttsim/crc3"
	"github.com/db47h/ttsim/tb"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

const (
	exitPass = iota
	exitFail
	exitUsage
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
	stop()
	os.Exit(code)
}

func newLogger(w io.Writer, isTerm, json, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if json || !isTerm {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func run(ctx context.Context, args []string, stderr io.Writer, isTerm bool) int {
	fs := flag.NewFlagSet("ttsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		variant = fs.String("variant", tb.Exact.Name, "test variant: "+strings.Join(tb.Variants, ", "))
		model   = fs.String("model", "", "design model: "+strings.Join(crc3.Models, ", ")+" (default: the variant's model)")
		config  = fs.String("config", "", "ini file with a [testbench] section overriding the variant")
		json    = fs.Bool("json", false, "log in JSON format")
		verbose = fs.Bool("v", false, "verbose logging")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return exitUsage
	}

	logger := newLogger(stderr, isTerm, *json, *verbose)

	cfg, err := tb.Variant(*variant)
	if err != nil {
		logger.Error(err.Error())
		return exitUsage
	}
	if *config != "" {
		if cfg, err = tb.LoadConfig(*config, cfg); err != nil {
			logger.Error(err.Error())
			return exitUsage
		}
	}
	if *model != "" {
		cfg.Model = *model
	}
	design, err := crc3.Model(cfg.Model)
	if err != nil {
		logger.Error(err.Error())
		return exitUsage
	}

	dut, err := tb.New(design, cfg.Workers, cfg.StepsPerCycle, logger)
	if err != nil {
		logger.Error(err.Error())
		return exitUsage
	}
	defer dut.Close()

	res, err := tb.Run(ctx, dut, cfg)
	if err != nil {
		switch e := errors.Cause(err).(type) {
		case *tb.MismatchError, *tb.TimeoutError:
			logger.Error("FAIL", "variant", cfg.Name, "model", cfg.Model, "err", e)
		default:
			logger.Error("FAIL", "variant", cfg.Name, "model", cfg.Model, "err", err)
		}
		return exitFail
	}
	logger.Info("PASS", "variant", cfg.Name, "model", cfg.Model,
		"uo_out", fmt.Sprintf("0x%02X", res.Got), "cycles", res.Cycles, "sim_time", res.SimTime)
	return exitPass
}
