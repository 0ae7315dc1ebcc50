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

package pack

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	. "github.com/robopack/packsize/types"
)

var cell18650 = Cell{Name: "18650", Voltage: 3.6, CapacityAh: 3.0, MaxCurrent: 15, Mass: 0.047}

func TestSolveScenario(t *testing.T) {
	cell := Cell{Name: "test", Voltage: 3.7, CapacityAh: 3, MaxCurrent: 15, Mass: 0.05}
	req := Requirements{SystemVoltage: 12, RequiredAh: 5, PeakCurrent: 20, NominalCurrent: 4, DepthOfDischarge: 0.8}

	pc, err := Solve(req, cell)
	assert.Nil(t, err)
	assert.Equal(t, 2, pc.CapacityParallel)
	assert.Equal(t, 2, pc.CurrentParallel)
	assert.Equal(t, 2, pc.Parallel)
	assert.Equal(t, 4, pc.Series)
	assert.Equal(t, 8, pc.TotalCells)
	assert.InDelta(t, 8*0.05, pc.Mass, 1e-12)
	assert.InDelta(t, 2*3*12.0, pc.EnergyWh, 1e-12)
	assert.InDelta(t, 30.0, pc.MaxContinuousDraw, 1e-12)
	assert.InDelta(t, 2*3*0.8/4*60, pc.RuntimeMinutes, 1e-9)
}

func TestSolveLimits(t *testing.T) {
	// capacity-driven
	pc, err := Solve(Requirements{SystemVoltage: 12, RequiredAh: 10, PeakCurrent: 5, NominalCurrent: 2, DepthOfDischarge: 0.8}, cell18650)
	assert.Nil(t, err)
	assert.Equal(t, 4, pc.Parallel)
	assert.Equal(t, LimitCapacity, pc.Limit)

	// current-driven: a small mission with a heavy stall peak
	pc, err = Solve(Requirements{SystemVoltage: 12, RequiredAh: 1, PeakCurrent: 70, NominalCurrent: 2, DepthOfDischarge: 0.8}, cell18650)
	assert.Nil(t, err)
	assert.Equal(t, 1, pc.CapacityParallel)
	assert.Equal(t, 5, pc.CurrentParallel)
	assert.Equal(t, 5, pc.Parallel)
	assert.Equal(t, LimitCurrent, pc.Limit)
}

func TestParallelIsMaxOfConstraints(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		cell := Cell{Voltage: 1 + r.Float64()*3, CapacityAh: 0.5 + r.Float64()*5, MaxCurrent: 1 + r.Float64()*30, Mass: r.Float64()}
		req := Requirements{
			SystemVoltage:    6 + r.Float64()*42,
			RequiredAh:       r.Float64() * 40,
			PeakCurrent:      r.Float64() * 200,
			NominalCurrent:   0.1 + r.Float64()*20,
			DepthOfDischarge: 0.1 + r.Float64()*0.9,
		}
		pc, err := Solve(req, cell)
		assert.Nil(t, err)
		assert.GreaterOrEqual(t, pc.Parallel, pc.CapacityParallel)
		assert.GreaterOrEqual(t, pc.Parallel, pc.CurrentParallel)
		assert.GreaterOrEqual(t, pc.Parallel, 1)
		assert.GreaterOrEqual(t, float64(pc.Parallel)*cell.CapacityAh, req.RequiredAh-1e-9)
		assert.GreaterOrEqual(t, pc.MaxContinuousDraw, req.PeakCurrent-1e-9)
		assert.GreaterOrEqual(t, float64(pc.Series)*cell.Voltage, req.SystemVoltage-1e-9)
	}
}

func TestCeilCountIgnoresFloatNoise(t *testing.T) {
	assert.Equal(t, 3, ceilCount(0.3/0.1))
	assert.Equal(t, 2, ceilCount(5.0/2.5))
	assert.Equal(t, 2, ceilCount(1.0000001))
	assert.Equal(t, 0, ceilCount(0))
	assert.Equal(t, 4, SeriesCount(12, cell18650))
	assert.Equal(t, 4, SeriesCount(12.8, Cell{Voltage: 3.2}))
}

func TestSolveOverheadAndRuntime(t *testing.T) {
	pc, err := Solve(Requirements{SystemVoltage: 12, RequiredAh: 3, PeakCurrent: 10, NominalCurrent: 0,
		DepthOfDischarge: 0.8, StructuralOverhead: 0.2}, cell18650)
	assert.Nil(t, err)
	assert.InDelta(t, 4*1*0.047*1.2, pc.Mass, 1e-12)
	assert.True(t, math.IsInf(pc.RuntimeMinutes, 1))
}

func TestSolveErrors(t *testing.T) {
	req := Requirements{SystemVoltage: 12, RequiredAh: 3, PeakCurrent: 10, NominalCurrent: 1, DepthOfDischarge: 0.8}
	_, err := Solve(req, Cell{Voltage: 0, CapacityAh: 1, MaxCurrent: 1})
	assert.True(t, errors.Is(err, ErrInvalidCell))
	_, err = Solve(req, Cell{Voltage: 3, CapacityAh: 0, MaxCurrent: 1})
	assert.True(t, errors.Is(err, ErrInvalidCell))
	_, err = Solve(req, Cell{Voltage: 3, CapacityAh: 1, MaxCurrent: -1})
	assert.True(t, errors.Is(err, ErrInvalidCell))

	req.DepthOfDischarge = 0
	_, err = Solve(req, cell18650)
	assert.True(t, errors.Is(err, ErrInvalidCell))

	req.DepthOfDischarge = 0.8
	req.SystemVoltage = 0
	_, err = Solve(req, cell18650)
	assert.True(t, errors.Is(err, ErrInvalidVoltage))
}

func TestSolveCountTooLarge(t *testing.T) {
	req := Requirements{SystemVoltage: 12, RequiredAh: 3, PeakCurrent: 10, NominalCurrent: 1, DepthOfDischarge: 0.8}
	_, err := Solve(req, Cell{Name: "dust", Voltage: 3.6, CapacityAh: 1e-20, MaxCurrent: 15})
	assert.True(t, errors.Is(err, ErrInvalidCell))
	_, err = Solve(req, Cell{Name: "weak", Voltage: 3.6, CapacityAh: 3, MaxCurrent: 1e-12})
	assert.True(t, errors.Is(err, ErrInvalidCell))
	_, err = Solve(req, Cell{Name: "tiny", Voltage: 1e-9, CapacityAh: 3, MaxCurrent: 15})
	assert.True(t, errors.Is(err, ErrInvalidCell))

	req.RequiredAh = math.Inf(1)
	_, err = Solve(req, cell18650)
	assert.True(t, errors.Is(err, ErrInvalidCell))

	req.RequiredAh = 3 * MaxCellCount
	pc, err := Solve(req, cell18650)
	assert.Nil(t, err)
	assert.Equal(t, MaxCellCount, pc.CapacityParallel)
	assert.Equal(t, MaxCellCount, pc.Parallel)
}
