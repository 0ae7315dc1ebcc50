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

// Package pack solves the series/parallel cell arrangement that meets the bus voltage, the
// required capacity and the peak current at once.
package pack

import (
	"math"

	"github.com/pkg/errors"

	"github.com/robopack/packsize/logger"
	. "github.com/robopack/packsize/types"
)

const (
	ceilTol = 1e-9

	// MaxCellCount bounds the series and parallel counts of a solvable pack.
	MaxCellCount = 1000000
)

// Requirements are the electrical demands a pack must satisfy.
type Requirements struct {
	SystemVoltage      Volts
	RequiredAh         float64
	PeakCurrent        float64
	NominalCurrent     float64
	DepthOfDischarge   float64
	StructuralOverhead float64
}

func ValidateCell(cell Cell) error {
	switch {
	case !(cell.Voltage > 0):
		return errors.Wrapf(ErrInvalidCell, "cell %s: voltage %v", cell.Name, cell.Voltage)
	case !(cell.CapacityAh > 0):
		return errors.Wrapf(ErrInvalidCell, "cell %s: capacity %v Ah", cell.Name, cell.CapacityAh)
	case !(cell.MaxCurrent > 0):
		return errors.Wrapf(ErrInvalidCell, "cell %s: max continuous current %v A", cell.Name, cell.MaxCurrent)
	case cell.Mass < 0:
		return errors.Wrapf(ErrInvalidCell, "cell %s: mass %v kg", cell.Name, cell.Mass)
	}
	return nil
}

// ceilCount is ceil(x) for a positive ratio, ignoring float noise just above an integer.
func ceilCount(x float64) int {
	if x <= 0 {
		return 0
	}
	return int(math.Ceil(x - ceilTol*math.Max(1, x)))
}

// SeriesCount is the minimum number of cells in series reaching the bus voltage.
func SeriesCount(system Volts, cell Cell) int {
	return ceilCount(system / cell.Voltage)
}

// CapacityParallel is the parallel count needed to hold the required charge.
func CapacityParallel(requiredAh float64, cell Cell) int {
	return ceilCount(requiredAh / cell.CapacityAh)
}

// CurrentParallel is the parallel count needed to source the peak current within cell ratings.
func CurrentParallel(peakCurrent float64, cell Cell) int {
	return ceilCount(peakCurrent / cell.MaxCurrent)
}

// Solve sizes the pack. The parallel count is the larger of the capacity-driven and the
// current-driven counts, and at least one.
func Solve(req Requirements, cell Cell) (PackConfig, error) {
	if err := ValidateCell(cell); err != nil {
		return PackConfig{}, err
	}
	if !(req.DepthOfDischarge > 0 && req.DepthOfDischarge <= 1) {
		return PackConfig{}, errors.Wrapf(ErrInvalidCell, "depth of discharge %v not in (0,1]", req.DepthOfDischarge)
	}
	if !(req.SystemVoltage > 0) {
		return PackConfig{}, errors.Wrapf(ErrInvalidVoltage, "system voltage %v", req.SystemVoltage)
	}
	if req.StructuralOverhead < 0 {
		return PackConfig{}, errors.Wrapf(ErrInvalidCell, "structural overhead %v is negative", req.StructuralOverhead)
	}

	for _, c := range []struct {
		what  string
		ratio float64
	}{
		{"series", req.SystemVoltage / cell.Voltage},
		{"capacity parallel", req.RequiredAh / cell.CapacityAh},
		{"current parallel", req.PeakCurrent / cell.MaxCurrent},
	} {
		if !(c.ratio <= MaxCellCount) {
			return PackConfig{}, errors.Wrapf(ErrInvalidCell, "cell %s: %s count %g above %d", cell.Name, c.what, c.ratio, MaxCellCount)
		}
	}

	pc := PackConfig{
		Series:           SeriesCount(req.SystemVoltage, cell),
		CapacityParallel: CapacityParallel(req.RequiredAh, cell),
		CurrentParallel:  CurrentParallel(req.PeakCurrent, cell),
	}

	pc.Parallel, pc.Limit = pc.CapacityParallel, LimitCapacity
	if pc.CurrentParallel > pc.Parallel {
		pc.Parallel, pc.Limit = pc.CurrentParallel, LimitCurrent
	}
	if pc.Parallel < 1 {
		pc.Parallel = 1
	}

	pc.TotalCells = pc.Series * pc.Parallel
	pc.Mass = float64(pc.TotalCells) * cell.Mass * (1 + req.StructuralOverhead)
	packAh := float64(pc.Parallel) * cell.CapacityAh
	pc.EnergyWh = packAh * req.SystemVoltage
	pc.MaxContinuousDraw = float64(pc.Parallel) * cell.MaxCurrent
	if req.NominalCurrent > 0 {
		pc.RuntimeMinutes = packAh * req.DepthOfDischarge / req.NominalCurrent * 60
	} else {
		pc.RuntimeMinutes = math.Inf(1)
	}

	logger.Debugf("pack %dS%dP (%s-limited: capacity %dP, current %dP), %d cells, %.2f kg, %.1f Wh, %.1f min",
		pc.Series, pc.Parallel, pc.Limit, pc.CapacityParallel, pc.CurrentParallel,
		pc.TotalCells, pc.Mass, pc.EnergyWh, pc.RuntimeMinutes)
	return pc, nil
}
