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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/robopack/packsize/logger"
	"github.com/robopack/packsize/progctx"
	"github.com/robopack/packsize/sizing"
)

func TestParseBytes(t *testing.T) {
	var cmd Command
	assert.NotNil(t, parseBytes([]byte("wrongcmd"), &cmd))

	assert.True(t, parseBytes([]byte("size"), &cmd) == nil && cmd.Size != nil)
	assert.True(t, parseBytes([]byte("rails"), &cmd) == nil && cmd.Rails != nil)
	assert.True(t, parseBytes([]byte("bus"), &cmd) == nil && cmd.Bus != nil)
	assert.True(t, parseBytes([]byte("states"), &cmd) == nil && cmd.States != nil)
	assert.True(t, parseBytes([]byte("profile"), &cmd) == nil && cmd.Profile != nil)
	assert.True(t, parseBytes([]byte("pack"), &cmd) == nil && cmd.Pack != nil)
	assert.True(t, parseBytes([]byte("config"), &cmd) == nil && cmd.Config != nil)
	assert.True(t, parseBytes([]byte("web"), &cmd) == nil && cmd.Web != nil)
	assert.True(t, parseBytes([]byte("exit"), &cmd) == nil && cmd.Exit != nil)

	assert.True(t, parseBytes([]byte("energy"), &cmd) == nil && cmd.Energy != nil && cmd.Energy.Save == nil)
	assert.True(t, parseBytes([]byte("energy save"), &cmd) == nil && cmd.Energy.Save != nil)
	assert.True(t, parseBytes([]byte("energy save \"patrol\""), &cmd) == nil && cmd.Energy.Name == "patrol")

	assert.True(t, parseBytes([]byte("fuse"), &cmd) == nil && cmd.Fuse != nil && len(cmd.Fuse.Ratings) == 0)
	assert.Nil(t, parseBytes([]byte("fuse ratings 5 7.5 10"), &cmd))
	assert.Equal(t, []float64{5, 7.5, 10}, cmd.Fuse.Ratings)
	assert.NotNil(t, parseBytes([]byte("fuse ratings"), &cmd))

	assert.True(t, parseBytes([]byte("cell"), &cmd) == nil && cmd.Cell != nil && cmd.Cell.Name == nil)
	assert.Nil(t, parseBytes([]byte("cell \"21700\" capacity 5 current 10.5"), &cmd))
	assert.Equal(t, "21700", *cmd.Cell.Name)
	assert.Equal(t, 5.0, *cmd.Cell.Capacity)
	assert.Equal(t, 10.5, *cmd.Cell.Current)
	assert.Nil(t, cmd.Cell.Voltage)
	assert.Nil(t, parseBytes([]byte("cell mass 0.07 voltage 3.7"), &cmd))
	assert.Equal(t, 0.07, *cmd.Cell.Mass)
	assert.Equal(t, 3.7, *cmd.Cell.Voltage)

	assert.True(t, parseBytes([]byte("dod"), &cmd) == nil && cmd.Dod != nil && cmd.Dod.Val == nil)
	assert.True(t, parseBytes([]byte("dod 0.7"), &cmd) == nil && *cmd.Dod.Val == 0.7)
	assert.True(t, parseBytes([]byte("dod 1"), &cmd) == nil && *cmd.Dod.Val == 1)
	assert.True(t, parseBytes([]byte("margin 1.5"), &cmd) == nil && *cmd.Margin.Val == 1.5)
	assert.True(t, parseBytes([]byte("step 0.25"), &cmd) == nil && *cmd.Step.Val == 0.25)
	assert.True(t, parseBytes([]byte("overhead 0.3"), &cmd) == nil && *cmd.Overhead.Val == 0.3)
	assert.NotNil(t, parseBytes([]byte("dod high"), &cmd))

	assert.True(t, parseBytes([]byte("load \"robot.yaml\""), &cmd) == nil && cmd.Load.Filename == "robot.yaml")
	assert.NotNil(t, parseBytes([]byte("load"), &cmd))
	assert.True(t, parseBytes([]byte("save"), &cmd) == nil && cmd.Save != nil && cmd.Save.Filename == nil)
	assert.True(t, parseBytes([]byte("save \"out.json\""), &cmd) == nil && *cmd.Save.Filename == "out.json")
	assert.True(t, parseBytes([]byte("save config"), &cmd) == nil && cmd.Save.Config != nil)
	assert.True(t, parseBytes([]byte("save config \"robot.yaml\""), &cmd) == nil && *cmd.Save.Filename == "robot.yaml")
	assert.True(t, parseBytes([]byte("chart"), &cmd) == nil && cmd.Chart != nil)
	assert.True(t, parseBytes([]byte("chart \"c.html\""), &cmd) == nil && *cmd.Chart.Filename == "c.html")
	assert.True(t, parseBytes([]byte("table"), &cmd) == nil && cmd.Table != nil)
	assert.True(t, parseBytes([]byte("table \"t.txt\""), &cmd) == nil && *cmd.Table.Filename == "t.txt")

	assert.True(t, parseBytes([]byte("log"), &cmd) == nil && cmd.LogLevel != nil)
	assert.True(t, parseBytes([]byte("log debug"), &cmd) == nil && cmd.LogLevel.Level == "debug")
	assert.True(t, parseBytes([]byte("log crit"), &cmd) == nil && cmd.LogLevel.Level == "crit")
	assert.NotNil(t, parseBytes([]byte("log loud"), &cmd))

	assert.True(t, parseBytes([]byte("help"), &cmd) == nil && cmd.Help != nil)
	assert.True(t, parseBytes([]byte("help fuse"), &cmd) == nil && cmd.Help.HelpTopic == "fuse")
}

func newTestRunner() (*CmdRunner, *progctx.ProgCtx) {
	ctx := progctx.New(context.Background())
	cfg := sizing.DefaultConfig()
	return NewCmdRunner(ctx, cfg), ctx
}

func runCommand(t *testing.T, rt *CmdRunner, cmdline string) string {
	var buf bytes.Buffer
	assert.Nil(t, rt.RunCommand(cmdline, &buf))
	return buf.String()
}

func TestRunSize(t *testing.T) {
	rt, _ := newTestRunner()
	out := runCommand(t, rt, "size")
	assert.Contains(t, out, "Pack: 4S2P")
	assert.True(t, strings.HasSuffix(out, "Done\n"))

	out = runCommand(t, rt, "rails")
	assert.Equal(t, 4, strings.Count(out, "\n"))
	assert.Contains(t, out, "- {voltage: 12,")

	out = runCommand(t, rt, "pack")
	assert.Contains(t, out, "series: 4")
	assert.Contains(t, out, "limit: current")

	out = runCommand(t, rt, "states")
	assert.Contains(t, out, "baseline")
	assert.Contains(t, out, "state: stall")

	out = runCommand(t, rt, "profile")
	assert.Contains(t, out, "1801 samples")

	out = runCommand(t, rt, "energy")
	assert.Contains(t, out, "required")
}

func TestRunWrongCommand(t *testing.T) {
	rt, _ := newTestRunner()
	out := runCommand(t, rt, "wrongcmd")
	assert.True(t, strings.HasPrefix(out, "Error: "))
}

func TestRunSettings(t *testing.T) {
	rt, _ := newTestRunner()

	assert.Equal(t, "0.8\nDone\n", runCommand(t, rt, "dod"))
	assert.Equal(t, "Done\n", runCommand(t, rt, "dod 0.5"))
	assert.Equal(t, "0.5\nDone\n", runCommand(t, rt, "dod"))
	assert.Contains(t, runCommand(t, rt, "dod 1.5"), "Error: depth of discharge")
	assert.Equal(t, 0.5, rt.Config().DepthOfDischarge)

	assert.Contains(t, runCommand(t, rt, "margin 0.9"), "Error:")
	assert.Equal(t, "Done\n", runCommand(t, rt, "margin 1.5"))
	assert.Contains(t, runCommand(t, rt, "fuse"), "rating_a: 40")

	assert.Contains(t, runCommand(t, rt, "step 0"), "Error:")
	assert.Contains(t, runCommand(t, rt, "step 7"), "does not divide")
	assert.Equal(t, "Done\n", runCommand(t, rt, "step 2"))
	assert.Contains(t, runCommand(t, rt, "profile"), "901 samples")

	assert.Contains(t, runCommand(t, rt, "overhead -1"), "Error:")
	assert.Equal(t, "Done\n", runCommand(t, rt, "overhead 0"))
}

func TestRunCell(t *testing.T) {
	rt, _ := newTestRunner()
	out := runCommand(t, rt, "cell \"big\" capacity 5 current 30")
	assert.Contains(t, out, "name: big")
	assert.Contains(t, out, "max_current: 30")

	out = runCommand(t, rt, "pack")
	assert.Contains(t, out, "parallel: 1")

	out = runCommand(t, rt, "cell capacity 0")
	assert.Contains(t, out, "Error:")
	assert.Equal(t, 5.0, rt.Config().Cell.CapacityAh)
}

func TestRunFuseRatings(t *testing.T) {
	rt, _ := newTestRunner()
	out := runCommand(t, rt, "fuse ratings 5 10 20")
	assert.Contains(t, out, "exceeded: true")
	assert.Contains(t, out, "warning: fuse rating exceeded")
	assert.True(t, strings.HasSuffix(out, "Done\n"))

	out = runCommand(t, rt, "fuse ratings 0 10")
	assert.Contains(t, out, "Error:")
	assert.Equal(t, []float64{5, 10, 20}, rt.Config().FuseRatings)
}

func TestRunSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	rt, _ := newTestRunner()

	cfgFile := filepath.Join(dir, "robot.yaml")
	runCommand(t, rt, "dod 0.6")
	assert.Equal(t, cfgFile+"\nDone\n", runCommand(t, rt, "save config \""+cfgFile+"\""))

	resFile := filepath.Join(dir, "result.json")
	runCommand(t, rt, "save \""+resFile+"\"")
	_, err := os.Stat(resFile)
	assert.Nil(t, err)

	chartFile := filepath.Join(dir, "chart.html")
	runCommand(t, rt, "chart \""+chartFile+"\"")
	_, err = os.Stat(chartFile)
	assert.Nil(t, err)

	tableFile := filepath.Join(dir, "table.txt")
	runCommand(t, rt, "table \""+tableFile+"\"")
	data, err := os.ReadFile(tableFile)
	assert.Nil(t, err)
	assert.Equal(t, 1801+2, strings.Count(string(data), "\n"))

	rt2, _ := newTestRunner()
	assert.Equal(t, "Done\n", runCommand(t, rt2, "load \""+cfgFile+"\""))
	assert.Equal(t, 0.6, rt2.Config().DepthOfDischarge)
	assert.Contains(t, runCommand(t, rt2, "load \""+filepath.Join(dir, "missing.yaml")+"\""), "Error:")
}

func TestRunEnergySave(t *testing.T) {
	rt, _ := newTestRunner()
	cfg := rt.Config()
	cfg.OutputDir = t.TempDir()
	rt.cfg = cfg

	out := runCommand(t, rt, "energy save \"patrol\"")
	assert.Contains(t, out, filepath.Join(cfg.OutputDir, "patrol.txt"))
	_, err := os.Stat(filepath.Join(cfg.OutputDir, "patrol_states.txt"))
	assert.Nil(t, err)
}

func TestRunConfig(t *testing.T) {
	rt, _ := newTestRunner()
	out := runCommand(t, rt, "config")
	cfg, err := sizing.ParseConfig([]byte(strings.TrimSuffix(out, "Done\n")), sizing.DefaultConfig())
	assert.Nil(t, err)
	assert.Equal(t, rt.Config(), cfg)
}

func TestRunLogLevel(t *testing.T) {
	defer logger.SetLevel(logger.GetLevel())
	rt, _ := newTestRunner()
	assert.Equal(t, "Done\n", runCommand(t, rt, "log debug"))
	assert.Equal(t, logger.DebugLevel, logger.GetLevel())
	assert.Equal(t, "debug\nDone\n", runCommand(t, rt, "log"))
}

func TestRunHelp(t *testing.T) {
	rt, _ := newTestRunner()
	out := runCommand(t, rt, "help")
	for _, c := range []string{"bus", "cell", "energy", "fuse", "pack", "size", "web"} {
		assert.Contains(t, out, c+" ")
	}
	out = runCommand(t, rt, "help fuse")
	assert.Contains(t, out, "Definition:")
	assert.Contains(t, out, "fuse [ratings <A> ...]")
	assert.Contains(t, runCommand(t, rt, "help nosuch"), "Non-existent command")
}

func TestRunExit(t *testing.T) {
	rt, ctx := newTestRunner()
	var buf bytes.Buffer
	err := rt.RunCommand("exit", &buf)
	assert.Equal(t, context.Canceled, err)
	assert.NotNil(t, ctx.Err())
	assert.Equal(t, context.Canceled, rt.RunCommand("size", &buf))
}

type mockCliHandler struct {
	expectedCmd string
	handleError error
	handleCount int
	t           *testing.T
}

func (hnd *mockCliHandler) HandleCommand(cmd string, output io.Writer) error {
	assert.Equal(hnd.t, hnd.expectedCmd, cmd)
	hnd.handleCount += 1
	return hnd.handleError
}

func (hnd *mockCliHandler) GetPrompt() string {
	return Prompt
}

func TestCliStartStop(t *testing.T) {
	cli := NewCliInstance()
	handler := mockCliHandler{
		expectedCmd: "size",
		t:           t,
	}

	opt := DefaultCliOptions()
	r, w, _ := os.Pipe()
	opt.Stdin = r
	err := make(chan error, 1)
	go func() {
		err <- cli.Run(&handler, opt)
	}()
	<-cli.Started
	fmt.Fprint(w, "# comment lines are skipped\n\nsize\n")
	time.Sleep(time.Millisecond * 500)
	_ = w.Close()
	cli.Stop()

	assert.Nil(t, <-err)
	assert.Equal(t, 1, handler.handleCount)
}

func TestCliHandlerError(t *testing.T) {
	cli := NewCliInstance()
	handler := mockCliHandler{
		expectedCmd: "exit",
		handleError: context.Canceled,
		t:           t,
	}

	opt := DefaultCliOptions()
	r, w, _ := os.Pipe()
	opt.Stdin = r
	err := make(chan error, 1)
	go func() {
		err <- cli.Run(&handler, opt)
	}()
	<-cli.Started
	fmt.Fprint(w, "exit\n") // a handler error ends the console.

	assert.Equal(t, context.Canceled, <-err)
	assert.Equal(t, 1, handler.handleCount)

	cli.Stop() // calling Stop() after the console has already exited.
}
