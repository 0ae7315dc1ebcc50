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
	"github.com/robopack/packsize/fuse"
	"github.com/robopack/packsize/mission"
	"github.com/robopack/packsize/power"
	. "github.com/robopack/packsize/types"
)

const (
	DefaultTitle              = "robot"
	DefaultDuration           = 30 * 60.0 // mission length in seconds
	DefaultStep               = 1.0       // profile sampling step in seconds
	DefaultDepthOfDischarge   = 0.8
	DefaultStructuralOverhead = 0.2 // wiring, BMS and enclosure mass as a fraction of cell mass
	DefaultEta5V              = 0.90
	DefaultEta3V3             = 0.85
	DefaultOutputDir          = "energy_results"
)

// Config holds every input of a sizing run.
type Config struct {
	Title              string
	SystemVoltage      Volts
	Rails              []Volts
	Components         []Component
	Hops               []ConversionHop
	States             []OperatingState
	Phases             []MissionPhase
	Duration           float64
	Step               float64
	Cell               Cell
	DepthOfDischarge   float64
	StructuralOverhead float64
	SafetyMargin       float64
	FuseRatings        []float64
	OutputDir          string
}

var defaultComponents = []Component{
	{Name: "drive motor", Rail: Rail12V, Quantity: 4, NominalCurrent: 0.8, MaxCurrent: 5.5, Motor: true, AggressiveCurrent: 2.5},
	{Name: "cooling fan", Rail: Rail12V, Quantity: 2, NominalCurrent: 0.03, MaxCurrent: 0.1},
	{Name: "compute module", Rail: Rail5V, Quantity: 1, NominalCurrent: 0.8, MaxCurrent: 3.0},
	{Name: "lidar", Rail: Rail5V, Quantity: 1, NominalCurrent: 0.5, MaxCurrent: 0.7},
	{Name: "camera", Rail: Rail5V, Quantity: 2, NominalCurrent: 0.25, MaxCurrent: 0.35},
	{Name: "mcu", Rail: Rail3V3, Quantity: 1, NominalCurrent: 0.05, MaxCurrent: 0.12},
	{Name: "imu", Rail: Rail3V3, Quantity: 1, NominalCurrent: 0.01, MaxCurrent: 0.02},
	{Name: "wheel encoder", Rail: Rail3V3, Quantity: 4, NominalCurrent: 0.01, MaxCurrent: 0.015},
}

var defaultPhases = []MissionPhase{
	{Start: 0, End: 60, State: StateIdle},
	{Start: 60, End: 600, State: StateDrive},
	{Start: 600, End: 660, State: StatePerception},
	{Start: 660, End: 900, State: StateAggressive},
	{Start: 900, End: 905, State: StateStall},
	{Start: 905, End: 1500, State: StateDrive},
	{Start: 1500, End: 1560, State: StatePerception},
	{Start: 1560, End: 1800, State: StateIdle},
}

// DefaultCell is a common 18650 Li-ion cell.
var DefaultCell = Cell{Name: "18650 li-ion", Voltage: 3.6, CapacityAh: 3.0, MaxCurrent: 15, Mass: 0.047}

// DefaultConfig returns the reference robot: 4 drive motors on the 12V bus, compute and sensors
// on 5V, the microcontroller side on 3.3V, running a 30 minute patrol.
func DefaultConfig() *Config {
	return &Config{
		Title:              DefaultTitle,
		SystemVoltage:      SystemV,
		Rails:              append([]Volts{}, DefaultRails...),
		Components:         append([]Component{}, defaultComponents...),
		Hops:               power.DefaultHops(DefaultEta5V, DefaultEta3V3),
		States:             mission.DefaultStates(),
		Phases:             append([]MissionPhase{}, defaultPhases...),
		Duration:           DefaultDuration,
		Step:               DefaultStep,
		Cell:               DefaultCell,
		DepthOfDischarge:   DefaultDepthOfDischarge,
		StructuralOverhead: DefaultStructuralOverhead,
		SafetyMargin:       fuse.DefaultSafetyMargin,
		FuseRatings:        append([]float64{}, fuse.StandardRatings...),
		OutputDir:          DefaultOutputDir,
	}
}

// Clone returns a deep copy, so callers may edit the copy's catalogs freely.
func (cfg *Config) Clone() *Config {
	c := *cfg
	c.Rails = append([]Volts{}, cfg.Rails...)
	c.Components = append([]Component{}, cfg.Components...)
	c.Hops = append([]ConversionHop{}, cfg.Hops...)
	c.States = append([]OperatingState{}, cfg.States...)
	c.Phases = append([]MissionPhase{}, cfg.Phases...)
	c.FuseRatings = append([]float64{}, cfg.FuseRatings...)
	return &c
}
