// Copyright (c) 2024, The Packsize Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package packsize_main is the packsize program: a batch run printing the sizing report, or an
// interactive console.
package packsize_main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/pkg/errors"

	"github.com/robopack/packsize/cli"
	"github.com/robopack/packsize/energy"
	"github.com/robopack/packsize/logger"
	"github.com/robopack/packsize/progctx"
	"github.com/robopack/packsize/sizing"
	"github.com/robopack/packsize/visualize"
)

type MainArgs struct {
	ConfigFile  string
	LogLevel    string
	ReportFile  string
	ChartFile   string
	TableFile   string
	Interactive bool
}

func ParseArgs(name string, arguments []string) (*MainArgs, error) {
	args := &MainArgs{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&args.ConfigFile, "config", "", "YAML robot config file; sections left out keep the built-in reference robot")
	fs.StringVar(&args.LogLevel, "log", "warn", "set logging level: trace, debug, info, note, warn, crit, off")
	fs.StringVar(&args.ReportFile, "report", "", "write the sizing result as JSON to this file")
	fs.StringVar(&args.ChartFile, "chart", "", "write the HTML mission chart to this file")
	fs.StringVar(&args.TableFile, "table", "", "write the sampled profile table to this file")
	fs.BoolVar(&args.Interactive, "i", false, "start the interactive console")
	fs.Usage = func() {
		Usage(fs.Output())
		fs.PrintDefaults()
	}

	if err := fs.Parse(arguments); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, errors.Errorf("unexpected arguments: %v", fs.Args())
	}
	return args, nil
}

func loadConfig(args *MainArgs) (*sizing.Config, error) {
	if args.ConfigFile == "" {
		return sizing.DefaultConfig(), nil
	}
	return sizing.ReadConfigFile(args.ConfigFile)
}

// Main runs the program with the command line arguments in os.Args.
func Main(ctx *progctx.ProgCtx, cliOptions *cli.CliOptions) error {
	args, err := ParseArgs(os.Args[0], os.Args[1:])
	if err != nil {
		return err
	}
	level, err := logger.ParseLevelString(args.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	cfg, err := loadConfig(args)
	if err != nil {
		logger.Errorf("%v", err)
		return err
	}

	if !args.Interactive {
		return RunBatch(cfg, args, os.Stdout)
	}

	ctx.CancelOnSignal(syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)
	ctx.Defer(func() {
		go cli.Cli.Stop()
	})

	rt := cli.NewCmdRunner(ctx, cfg)
	ctx.WaitAdd("cli", 1)
	go func() {
		defer ctx.WaitDone("cli")
		cli.Run(ctx, rt, cliOptions)
	}()

	<-ctx.Done()
	logger.Debugf("waiting for packsize to stop gracefully ...")
	ctx.Wait()
	return ctx.Cause()
}

// RunBatch sizes the pack once, prints the report to w and writes the requested output files.
func RunBatch(cfg *sizing.Config, args *MainArgs, w io.Writer) error {
	res, err := sizing.Run(cfg)
	if err != nil {
		logger.Errorf("sizing failed: %v", err)
		return err
	}
	if err = res.WriteSummary(w); err != nil {
		return err
	}

	if args.ReportFile != "" {
		if err = res.SaveFile(args.ReportFile); err != nil {
			return errors.WithMessagef(err, "write report %s", args.ReportFile)
		}
		logger.Infof("report written to %s", args.ReportFile)
	}
	if args.ChartFile != "" {
		if err = visualize.SaveProfileChart(args.ChartFile, res); err != nil {
			return errors.WithMessagef(err, "write chart %s", args.ChartFile)
		}
		logger.Infof("chart written to %s", args.ChartFile)
	}
	if args.TableFile != "" {
		if err = saveTable(args.TableFile, res); err != nil {
			return errors.WithMessagef(err, "write table %s", args.TableFile)
		}
		logger.Infof("profile table written to %s", args.TableFile)
	}
	return nil
}

func saveTable(fn string, res *sizing.Result) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err = energy.WriteProfileTable(f, res.Profile, res.Consumption); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Usage prints the program usage.
func Usage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Usage: packsize [-config robot.yaml] [-report result.json] [-chart chart.html] [-table profile.txt] [-log level] [-i]\n")
}
