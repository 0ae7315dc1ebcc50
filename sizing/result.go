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

package sizing

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/robopack/packsize/energy"
	"github.com/robopack/packsize/fuse"
	"github.com/robopack/packsize/mission"
	. "github.com/robopack/packsize/types"
)

// Result holds every output of a sizing run.
type Result struct {
	RunID         string                    `json:"run_id"`
	Created       string                    `json:"created"`
	Title         string                    `json:"title"`
	SystemVoltage Volts                     `json:"system_voltage"`
	Rails         []Rail                    `json:"rails"`
	Bus           BatteryBus                `json:"bus"`
	BaselinePower float64                   `json:"baseline_w"`
	StatePowers   mission.StatePowers       `json:"state_powers_w"`
	Phases        []MissionPhase            `json:"phases"`
	Profile       *mission.Profile          `json:"profile"`
	Consumption   *energy.Consumption       `json:"energy"`
	States        []energy.StateConsumption `json:"states"`
	Cell          Cell                      `json:"cell"`
	Pack          PackConfig                `json:"pack"`
	Fuse          fuse.Selection            `json:"fuse"`
	Warnings      []string                  `json:"warnings"`
}

// SaveFile writes the result as indented JSON. The parent directory is created when missing.
// An unlimited runtime is written as 0, since JSON has no infinity.
func (r *Result) SaveFile(fn string) error {
	out := *r
	if math.IsInf(out.Pack.RuntimeMinutes, 0) {
		out.Pack.RuntimeMinutes = 0
	}
	data, err := json.MarshalIndent(&out, "", "    ")
	if err != nil {
		return errors.Wrap(err, "marshal result")
	}
	if err = os.MkdirAll(filepath.Dir(fn), 0755); err != nil {
		return err
	}
	return os.WriteFile(fn, data, 0644)
}

// DefaultFileName is the result file name inside outputDir.
func (r *Result) DefaultFileName(outputDir string) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s_%s.json", r.Title, r.RunID[:8]))
}

// StateNames returns the state names sorted by battery power, lowest first.
func (r *Result) StateNames() []string {
	names := make([]string, 0, len(r.StatePowers))
	for name := range r.StatePowers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := r.StatePowers[names[i]], r.StatePowers[names[j]]
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})
	return names
}

// WriteSummary prints the plain-text sizing report.
func (r *Result) WriteSummary(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("Battery sizing: %s (run %s)\n\n", r.Title, r.RunID)

	ew.printf("Rails\n")
	for _, rail := range r.Rails {
		ew.printf("  %5.1f V  nominal %8.3f W %7.3f A   peak %8.3f W %7.3f A\n",
			rail.Voltage, rail.NominalPower, rail.NominalCurrent, rail.PeakPower, rail.PeakCurrent)
	}

	ew.printf("\nBattery bus @ %.1f V\n", r.Bus.Voltage)
	ew.printf("  nominal %8.3f W %7.3f A   (loads %.3f W)\n", r.Bus.NominalPower, r.Bus.NominalCurrent, r.Bus.RawNominalPower)
	ew.printf("  peak    %8.3f W %7.3f A   (loads %.3f W)\n", r.Bus.PeakPower, r.Bus.PeakCurrent, r.Bus.RawPeakPower)

	ew.printf("\nOperating states (baseline %.3f W)\n", r.BaselinePower)
	for _, name := range r.StateNames() {
		ew.printf("  %-12s %8.3f W\n", name, r.StatePowers[name])
	}

	if r.Profile != nil {
		ew.printf("\nMission profile\n")
		ew.printf("  duration %g s, step %g s, %d samples\n", r.Profile.Duration, r.Profile.Step, len(r.Profile.Samples))
		ew.printf("  mean %.3f W, peak %.3f W\n", r.Profile.MeanPower(), r.Profile.PeakPower())
	}

	if r.Consumption != nil {
		ew.printf("\nEnergy\n")
		ew.printf("  consumed %.4f Ah, required %.4f Ah at %.0f%% depth of discharge\n",
			r.Consumption.ConsumedAh, r.Consumption.RequiredAh, r.Consumption.DepthOfDischarge*100)
		if ew.err == nil {
			ew.err = energy.WriteStateTable(w, r.States)
		}
	}

	p := r.Pack
	ew.printf("\nPack: %dS%dP of %s (%.2f V, %.2f Ah, %.0f A)\n", p.Series, p.Parallel, r.Cell.Name,
		r.Cell.Voltage, r.Cell.CapacityAh, r.Cell.MaxCurrent)
	ew.printf("  parallel strings: capacity needs %d, current needs %d, limited by %s\n",
		p.CapacityParallel, p.CurrentParallel, p.Limit)
	ew.printf("  %d cells, %.3f kg, %.1f Wh, %.1f A continuous\n", p.TotalCells, p.Mass, p.EnergyWh, p.MaxContinuousDraw)
	if math.IsInf(p.RuntimeMinutes, 1) {
		ew.printf("  runtime at nominal draw: unlimited\n")
	} else {
		ew.printf("  runtime at nominal draw: %.1f min\n", p.RuntimeMinutes)
	}

	ew.printf("\nFuse: %g A (peak %.2f A with margin)\n", r.Fuse.Rating, r.Fuse.MarginCurrent)

	if len(r.Warnings) > 0 {
		ew.printf("\nWarnings\n")
		for _, warn := range r.Warnings {
			ew.printf("  %s\n", warn)
		}
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
