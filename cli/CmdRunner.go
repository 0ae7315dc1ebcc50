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

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/robopack/packsize/energy"
	"github.com/robopack/packsize/fuse"
	"github.com/robopack/packsize/logger"
	"github.com/robopack/packsize/mission"
	"github.com/robopack/packsize/pack"
	"github.com/robopack/packsize/progctx"
	"github.com/robopack/packsize/sizing"
	. "github.com/robopack/packsize/types"
	"github.com/robopack/packsize/visualize"
	"github.com/robopack/packsize/web"
)

const (
	Prompt = "> "
)

type CommandContext struct {
	*Command
	rt     *CmdRunner
	err    error
	output io.Writer
}

func (cc *CommandContext) outputStr(msg string) {
	_, _ = fmt.Fprint(cc.output, msg)
}

func (cc *CommandContext) outputf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cc.output, format, args...)
}

func (cc *CommandContext) errorf(format string, args ...interface{}) {
	cc.error(errors.Errorf(format, args...))
}

func (cc *CommandContext) error(err error) {
	if err != nil {
		if cc.err != nil { // if previous error, print it now and keep the last.
			cc.outputf("Error: %s\n", cc.err)
		}
		cc.err = err
	}
}

// Err returns the last error that occurred during command execution.
func (cc *CommandContext) Err() error {
	return cc.err
}

func (cc *CommandContext) outputItemsAsYaml(items interface{}) {
	var itemsYaml yaml.Node

	err := itemsYaml.Encode(items)
	logger.PanicIfError(err)

	for _, content := range itemsYaml.Content {
		content.Style = yaml.FlowStyle
	}

	data, err := yaml.Marshal(&itemsYaml)
	logger.PanicIfError(err)

	_, err = cc.output.Write(data)
	logger.PanicIfError(err)
}

// CmdRunner executes console commands against a sizing config. The last sizing result is
// kept until a command changes the config.
type CmdRunner struct {
	ctx    *progctx.ProgCtx
	cfg    *sizing.Config
	result *sizing.Result
	charts *web.ChartServer
	help   Help
}

func NewCmdRunner(ctx *progctx.ProgCtx, cfg *sizing.Config) *CmdRunner {
	if cfg == nil {
		cfg = sizing.DefaultConfig()
	}
	return &CmdRunner{
		ctx:    ctx,
		cfg:    cfg.Clone(),
		charts: web.NewChartServer(web.DefaultListenAddr),
		help:   newHelp(),
	}
}

// Config returns a copy of the current config.
func (rt *CmdRunner) Config() *sizing.Config {
	return rt.cfg.Clone()
}

func (rt *CmdRunner) RunCommand(cmdline string, output io.Writer) error {
	if rt.ctx.Err() == nil {
		cmd := Command{}
		if err := parseBytes([]byte(cmdline), &cmd); err != nil {
			if _, err := fmt.Fprintf(output, "Error: %v\n", err); err != nil {
				return err
			}
		} else {
			rt.execute(&cmd, output)
		}
	}
	return rt.ctx.Err()
}

func (rt *CmdRunner) HandleCommand(cmdline string, output io.Writer) error {
	return rt.RunCommand(cmdline, output)
}

func (rt *CmdRunner) GetPrompt() string {
	return rt.cfg.Title + Prompt
}

func (rt *CmdRunner) execute(cmd *Command, output io.Writer) {
	cc := &CommandContext{
		Command: cmd,
		rt:      rt,
		output:  output,
	}

	defer func() {
		if cc.Err() != nil {
			cc.outputf("Error: %v\n", cc.Err())
		} else {
			cc.outputf("Done\n")
		}
	}()

	defer func() {
		rerr := recover()

		if rerr != nil {
			if err, ok := rerr.(error); ok {
				cc.err = errors.Wrapf(err, "panic: %v", err)
			} else {
				cc.err = errors.Errorf("panic: %v", rerr)
			}
		}
	}()

	if cmd.Size != nil {
		rt.executeSize(cc)
	} else if cmd.Rails != nil {
		rt.executeRails(cc)
	} else if cmd.Bus != nil {
		rt.executeBus(cc)
	} else if cmd.States != nil {
		rt.executeStates(cc)
	} else if cmd.Profile != nil {
		rt.executeProfile(cc)
	} else if cmd.Energy != nil {
		rt.executeEnergy(cc, cmd.Energy)
	} else if cmd.Pack != nil {
		rt.executePack(cc)
	} else if cmd.Fuse != nil {
		rt.executeFuse(cc, cmd.Fuse)
	} else if cmd.Cell != nil {
		rt.executeCell(cc, cmd.Cell)
	} else if cmd.Dod != nil {
		rt.executeDod(cc, cmd.Dod)
	} else if cmd.Margin != nil {
		rt.executeMargin(cc, cmd.Margin)
	} else if cmd.Step != nil {
		rt.executeStep(cc, cmd.Step)
	} else if cmd.Overhead != nil {
		rt.executeOverhead(cc, cmd.Overhead)
	} else if cmd.Config != nil {
		rt.executeConfig(cc)
	} else if cmd.Load != nil {
		rt.executeLoad(cc, cmd.Load)
	} else if cmd.Save != nil {
		rt.executeSave(cc, cmd.Save)
	} else if cmd.Chart != nil {
		rt.executeChart(cc, cmd.Chart)
	} else if cmd.Table != nil {
		rt.executeTable(cc, cmd.Table)
	} else if cmd.Web != nil {
		rt.executeWeb(cc)
	} else if cmd.LogLevel != nil {
		rt.executeLogLevel(cc, cmd.LogLevel)
	} else if cmd.Help != nil {
		rt.executeHelp(cc, cmd.Help)
	} else if cmd.Exit != nil {
		rt.executeExit(cc)
	} else {
		logger.Panicf("unimplemented command: %#v", cmd)
	}
}

// sized returns the current sizing result, running the pipeline when the config changed since
// the last run. On failure the error is set on cc and nil returned.
func (rt *CmdRunner) sized(cc *CommandContext) *sizing.Result {
	if rt.result == nil {
		res, err := sizing.Run(rt.cfg)
		if err != nil {
			cc.error(err)
			return nil
		}
		rt.result = res
		rt.charts.SetResult(res)
	}
	return rt.result
}

func (rt *CmdRunner) invalidate() {
	rt.result = nil
}

func (rt *CmdRunner) executeSize(cc *CommandContext) {
	rt.invalidate()
	if res := rt.sized(cc); res != nil {
		cc.error(res.WriteSummary(cc.output))
	}
}

func (rt *CmdRunner) executeRails(cc *CommandContext) {
	if res := rt.sized(cc); res != nil {
		cc.outputItemsAsYaml(res.Rails)
	}
}

func (rt *CmdRunner) executeBus(cc *CommandContext) {
	if res := rt.sized(cc); res != nil {
		cc.outputItemsAsYaml(res.Bus)
	}
}

type statePowerItem struct {
	State string  `yaml:"state"`
	Power float64 `yaml:"power_w"`
}

func (rt *CmdRunner) executeStates(cc *CommandContext) {
	res := rt.sized(cc)
	if res == nil {
		return
	}
	items := make([]statePowerItem, 0, len(res.StatePowers))
	for _, name := range res.StateNames() {
		items = append(items, statePowerItem{State: name, Power: res.StatePowers[name]})
	}
	cc.outputf("baseline %.3f W\n", res.BaselinePower)
	cc.outputItemsAsYaml(items)
}

type phaseItem struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	State string  `yaml:"state"`
	Power float64 `yaml:"power_w"`
}

func (rt *CmdRunner) executeProfile(cc *CommandContext) {
	res := rt.sized(cc)
	if res == nil {
		return
	}
	items := make([]phaseItem, 0, len(res.Phases))
	for _, p := range res.Phases {
		items = append(items, phaseItem{Start: p.Start, End: p.End, State: p.State, Power: res.StatePowers[p.State]})
	}
	cc.outputItemsAsYaml(items)
	cc.outputf("%d samples, step %g s, mean %.3f W, peak %.3f W\n", len(res.Profile.Samples),
		res.Profile.Step, res.Profile.MeanPower(), res.Profile.PeakPower())
}

func (rt *CmdRunner) executeEnergy(cc *CommandContext, cmd *EnergyCmd) {
	res := rt.sized(cc)
	if res == nil {
		return
	}
	if cmd.Save != nil {
		rw := energy.NewResultsWriter(rt.cfg.OutputDir)
		rw.SetTitle(rt.cfg.Title)
		fn, err := rw.SaveConsumptionToFile(cmd.Name, res.Profile, res.Consumption, res.States)
		if err != nil {
			cc.error(err)
			return
		}
		cc.outputf("%s\n", fn)
		return
	}
	cc.outputf("consumed %.4f Ah, required %.4f Ah at DoD %g\n", res.Consumption.ConsumedAh,
		res.Consumption.RequiredAh, res.Consumption.DepthOfDischarge)
	cc.outputItemsAsYaml(res.States)
}

func (rt *CmdRunner) executePack(cc *CommandContext) {
	if res := rt.sized(cc); res != nil {
		cc.outputItemsAsYaml(res.Pack)
	}
}

func (rt *CmdRunner) executeFuse(cc *CommandContext, cmd *FuseCmd) {
	if len(cmd.Ratings) > 0 {
		if err := fuse.ValidateCatalog(cmd.Ratings); err != nil {
			cc.error(err)
			return
		}
		rt.cfg.FuseRatings = append([]float64{}, cmd.Ratings...)
		rt.invalidate()
	}
	res := rt.sized(cc)
	if res == nil {
		return
	}
	cc.outputItemsAsYaml(res.Fuse)
	if res.Fuse.Warning != nil {
		cc.outputf("warning: %v\n", res.Fuse.Warning)
	}
}

func (rt *CmdRunner) executeCell(cc *CommandContext, cmd *CellCmd) {
	cell := rt.cfg.Cell
	changed := false
	if cmd.Name != nil {
		cell.Name, changed = *cmd.Name, true
	}
	if cmd.Voltage != nil {
		cell.Voltage, changed = *cmd.Voltage, true
	}
	if cmd.Capacity != nil {
		cell.CapacityAh, changed = *cmd.Capacity, true
	}
	if cmd.Current != nil {
		cell.MaxCurrent, changed = *cmd.Current, true
	}
	if cmd.Mass != nil {
		cell.Mass, changed = *cmd.Mass, true
	}
	if changed {
		if err := pack.ValidateCell(cell); err != nil {
			cc.error(err)
			return
		}
		rt.cfg.Cell = cell
		rt.invalidate()
	}
	cc.outputItemsAsYaml(rt.cfg.Cell)
}

// setOrShow prints *target when val is nil, otherwise validates and stores *val.
func (rt *CmdRunner) setOrShow(cc *CommandContext, target *float64, val *float64, validate func(float64) error) {
	if val == nil {
		cc.outputf("%g\n", *target)
		return
	}
	if err := validate(*val); err != nil {
		cc.error(err)
		return
	}
	*target = *val
	rt.invalidate()
}

func (rt *CmdRunner) executeDod(cc *CommandContext, cmd *DodCmd) {
	rt.setOrShow(cc, &rt.cfg.DepthOfDischarge, cmd.Val, func(v float64) error {
		if !(v > 0 && v <= 1) {
			return errors.Wrapf(ErrInvalidCell, "depth of discharge %v not in (0,1]", v)
		}
		return nil
	})
}

func (rt *CmdRunner) executeMargin(cc *CommandContext, cmd *MarginCmd) {
	rt.setOrShow(cc, &rt.cfg.SafetyMargin, cmd.Val, func(v float64) error {
		if !(v > 1) {
			return errors.Wrapf(ErrInvalidMargin, "margin %v must be greater than 1", v)
		}
		return nil
	})
}

func (rt *CmdRunner) executeStep(cc *CommandContext, cmd *StepCmd) {
	rt.setOrShow(cc, &rt.cfg.Step, cmd.Val, func(v float64) error {
		_, err := mission.SampleCount(rt.cfg.Duration, v)
		return err
	})
}

func (rt *CmdRunner) executeOverhead(cc *CommandContext, cmd *OverheadCmd) {
	rt.setOrShow(cc, &rt.cfg.StructuralOverhead, cmd.Val, func(v float64) error {
		if v < 0 {
			return errors.Wrapf(ErrInvalidCell, "structural overhead %v is negative", v)
		}
		return nil
	})
}

func (rt *CmdRunner) executeConfig(cc *CommandContext) {
	file := rt.cfg.Export()
	data, err := yaml.Marshal(&file)
	if err != nil {
		cc.error(err)
		return
	}
	cc.outputStr(string(data))
}

func (rt *CmdRunner) executeLoad(cc *CommandContext, cmd *LoadCmd) {
	cfg, err := sizing.ReadConfigFile(cmd.Filename)
	if err != nil {
		cc.error(err)
		return
	}
	rt.cfg = cfg
	rt.invalidate()
}

func (rt *CmdRunner) executeSave(cc *CommandContext, cmd *SaveCmd) {
	if cmd.Config != nil {
		fn := filepath.Join(rt.cfg.OutputDir, rt.cfg.Title+".yaml")
		if cmd.Filename != nil {
			fn = *cmd.Filename
		}
		if err := os.MkdirAll(filepath.Dir(fn), 0755); err != nil {
			cc.error(err)
			return
		}
		if err := sizing.WriteConfigFile(fn, rt.cfg); err != nil {
			cc.error(err)
			return
		}
		cc.outputf("%s\n", fn)
		return
	}

	res := rt.sized(cc)
	if res == nil {
		return
	}
	fn := res.DefaultFileName(rt.cfg.OutputDir)
	if cmd.Filename != nil {
		fn = *cmd.Filename
	}
	if err := res.SaveFile(fn); err != nil {
		cc.error(err)
		return
	}
	cc.outputf("%s\n", fn)
}

func (rt *CmdRunner) executeChart(cc *CommandContext, cmd *ChartCmd) {
	res := rt.sized(cc)
	if res == nil {
		return
	}
	fn := filepath.Join(rt.cfg.OutputDir, rt.cfg.Title+"_chart.html")
	if cmd.Filename != nil {
		fn = *cmd.Filename
	}
	if err := visualize.SaveProfileChart(fn, res); err != nil {
		cc.error(err)
		return
	}
	cc.outputf("%s\n", fn)
}

func (rt *CmdRunner) executeTable(cc *CommandContext, cmd *TableCmd) {
	res := rt.sized(cc)
	if res == nil {
		return
	}
	if cmd.Filename == nil {
		cc.error(energy.WriteProfileTable(cc.output, res.Profile, res.Consumption))
		return
	}
	f, err := os.Create(*cmd.Filename)
	if err != nil {
		cc.error(err)
		return
	}
	defer f.Close()
	cc.error(energy.WriteProfileTable(f, res.Profile, res.Consumption))
}

func (rt *CmdRunner) executeWeb(cc *CommandContext) {
	if rt.sized(cc) == nil {
		return
	}
	url, err := rt.charts.Start(rt.ctx)
	if err != nil {
		cc.error(err)
		return
	}
	cc.outputf("%s\n", url)
	if err = web.OpenBrowser(url); err != nil {
		logger.Warnf("could not open browser: %v", err)
	}
}

func (rt *CmdRunner) executeLogLevel(cc *CommandContext, cmd *LogLevelCmd) {
	if cmd.Level == "" {
		cc.outputf("%v\n", logger.GetLevelString(logger.GetLevel()))
		return
	}
	level, err := logger.ParseLevelString(cmd.Level)
	if err != nil {
		cc.error(err)
		return
	}
	logger.SetLevel(level)
}

func (rt *CmdRunner) executeHelp(cc *CommandContext, cmd *HelpCmd) {
	if len(cmd.HelpTopic) > 0 {
		cc.outputStr(rt.help.outputCommandHelp(cmd.HelpTopic))
	} else {
		cc.outputStr(rt.help.outputGeneralHelp())
	}
}

func (rt *CmdRunner) executeExit(cc *CommandContext) {
	rt.ctx.Cancel(nil)
}
