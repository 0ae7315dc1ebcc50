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

package types

import (
	"math"
	"sort"

	"github.com/robopack/packsize/logger"
)

type Volts = float64

// Standard rail voltages of the robot's power tree.
const (
	Rail12V  Volts = 12.0
	Rail5V   Volts = 5.0
	Rail3V3  Volts = 3.3
	SystemV  Volts = Rail12V
	railTolV       = 1e-6
)

// DefaultRails lists the rails reported even when no component sits on them.
var DefaultRails = []Volts{Rail12V, Rail5V, Rail3V3}

// SameRail reports whether two rail voltages denote the same rail.
func SameRail(a, b Volts) bool {
	return math.Abs(a-b) < railTolV
}

type MotorLevel int

const (
	MotorNone       MotorLevel = 0
	MotorNominal    MotorLevel = 1
	MotorAggressive MotorLevel = 2
	MotorStall      MotorLevel = 3
)

func (l MotorLevel) String() string {
	switch l {
	case MotorNone:
		return "none"
	case MotorNominal:
		return "nominal"
	case MotorAggressive:
		return "aggressive"
	case MotorStall:
		return "stall"
	default:
		logger.Panicf("invalid motor level: %d", int(l))
		return "invalid"
	}
}

// ParseMotorLevel parses the motor level names used in config files and the CLI.
func ParseMotorLevel(s string) (MotorLevel, bool) {
	switch s {
	case "none", "off", "idle", "":
		return MotorNone, true
	case "nominal", "drive":
		return MotorNominal, true
	case "aggressive":
		return MotorAggressive, true
	case "stall":
		return MotorStall, true
	default:
		return MotorNone, false
	}
}

func (l MotorLevel) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// Component is one catalog row: a load on a rail, repeated Quantity times.
type Component struct {
	Name              string  `yaml:"name" json:"name"`
	Rail              Volts   `yaml:"rail" json:"rail"`
	Quantity          int     `yaml:"qty" json:"qty"`
	NominalCurrent    float64 `yaml:"nominal" json:"nominal"`
	MaxCurrent        float64 `yaml:"max" json:"max"`
	Motor             bool    `yaml:"motor,omitempty" json:"motor,omitempty"`
	AggressiveCurrent float64 `yaml:"aggressive,omitempty" json:"aggressive,omitempty"`
}

// UnitCurrent returns the per-unit current of a motor component at the given level.
// Non-motor components always draw their nominal current.
func (c Component) UnitCurrent(level MotorLevel) float64 {
	if !c.Motor {
		return c.NominalCurrent
	}
	switch level {
	case MotorNominal:
		return c.NominalCurrent
	case MotorAggressive:
		if c.AggressiveCurrent > 0 {
			return c.AggressiveCurrent
		}
		return c.NominalCurrent
	case MotorStall:
		return c.MaxCurrent
	default:
		return 0
	}
}

// ConversionHop is one DC/DC converter stage, reflecting load power from rail From onto rail To.
type ConversionHop struct {
	Name       string  `yaml:"name" json:"name"`
	From       Volts   `yaml:"from" json:"from"`
	To         Volts   `yaml:"to" json:"to"`
	Efficiency float64 `yaml:"efficiency" json:"efficiency"`
}

type Rail struct {
	Voltage        Volts   `yaml:"voltage" json:"voltage"`
	NominalPower   float64 `yaml:"nominal_w" json:"nominal_w"`
	PeakPower      float64 `yaml:"peak_w" json:"peak_w"`
	NominalCurrent float64 `yaml:"nominal_a" json:"nominal_a"`
	PeakCurrent    float64 `yaml:"peak_a" json:"peak_a"`
}

type BatteryBus struct {
	Voltage         Volts   `yaml:"voltage" json:"voltage"`
	NominalPower    float64 `yaml:"nominal_w" json:"nominal_w"`
	PeakPower       float64 `yaml:"peak_w" json:"peak_w"`
	NominalCurrent  float64 `yaml:"nominal_a" json:"nominal_a"`
	PeakCurrent     float64 `yaml:"peak_a" json:"peak_a"`
	RawNominalPower float64 `yaml:"raw_nominal_w" json:"raw_nominal_w"`
	RawPeakPower    float64 `yaml:"raw_peak_w" json:"raw_peak_w"`
}

// OperatingState is a named power level of the robot during a mission.
type OperatingState struct {
	Name       string     `yaml:"name" json:"name"`
	Motor      MotorLevel `yaml:"motor" json:"motor"`
	ExtraPower float64    `yaml:"extra_w,omitempty" json:"extra_w,omitempty"`
}

const (
	StateIdle       = "idle"
	StateDrive      = "drive"
	StateAggressive = "aggressive"
	StateStall      = "stall"
	StatePerception = "perception"
)

type MissionPhase struct {
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
	State string  `yaml:"state" json:"state"`
}

func (p MissionPhase) Duration() float64 {
	return p.End - p.Start
}

type PowerSample struct {
	Time    float64 `json:"t"`
	Power   float64 `json:"w"`
	Current float64 `json:"a"`
}

type Cell struct {
	Name       string  `yaml:"name" json:"name"`
	Voltage    Volts   `yaml:"voltage" json:"voltage"`
	CapacityAh float64 `yaml:"capacity_ah" json:"capacity_ah"`
	MaxCurrent float64 `yaml:"max_current" json:"max_current"`
	Mass       float64 `yaml:"mass_kg" json:"mass_kg"`
}

const (
	LimitCapacity = "capacity"
	LimitCurrent  = "current"
)

type PackConfig struct {
	Series            int     `yaml:"series" json:"series"`
	Parallel          int     `yaml:"parallel" json:"parallel"`
	CapacityParallel  int     `yaml:"capacity_parallel" json:"capacity_parallel"`
	CurrentParallel   int     `yaml:"current_parallel" json:"current_parallel"`
	Limit             string  `yaml:"limit" json:"limit"`
	TotalCells        int     `yaml:"cells" json:"cells"`
	Mass              float64 `yaml:"mass_kg" json:"mass_kg"`
	EnergyWh          float64 `yaml:"energy_wh" json:"energy_wh"`
	MaxContinuousDraw float64 `yaml:"max_draw_a" json:"max_draw_a"`
	RuntimeMinutes    float64 `yaml:"runtime_min" json:"runtime_min"`
}

// SortedRails returns a copy of the voltages in descending order, duplicates removed.
func SortedRails(volts []Volts) []Volts {
	res := make([]Volts, 0, len(volts))
	for _, v := range volts {
		dup := false
		for _, r := range res {
			if SameRail(r, v) {
				dup = true
				break
			}
		}
		if !dup {
			res = append(res, v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(res)))
	return res
}
