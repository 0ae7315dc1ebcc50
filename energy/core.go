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

// Package energy integrates a mission current profile into consumed charge and the safe capacity
// a pack must hold to deliver it.
package energy

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/robopack/packsize/logger"
	"github.com/robopack/packsize/mission"
	. "github.com/robopack/packsize/types"
)

// Integrate applies the trapezoidal rule to a current sequence. It returns the total charge in Ah
// and the running integral at every sample (starting at zero), computed in the same pass.
func Integrate(times, currents []float64) (float64, []float64) {
	logger.AssertEqual(len(times), len(currents), "times and currents differ in length")
	n := len(currents)
	if n == 0 {
		return 0, nil
	}

	increments := make([]float64, n)
	for i := 1; i < n; i++ {
		increments[i] = (currents[i-1] + currents[i]) / 2 * (times[i] - times[i-1])
	}
	cumulative := floats.CumSum(make([]float64, n), increments)
	floats.Scale(1/SecondsPerHour, cumulative)
	return cumulative[n-1], cumulative
}

// RequiredCapacity derates consumed charge by the usable depth of discharge, so the pack never
// plans to discharge below its safe floor.
func RequiredCapacity(consumedAh, dod float64) (float64, error) {
	if !(dod > 0 && dod <= 1) {
		return 0, errors.Wrapf(ErrInvalidCell, "depth of discharge %v not in (0,1]", dod)
	}
	return consumedAh / dod, nil
}

// Analyse integrates a profile whose sample currents are already set.
func Analyse(prof *mission.Profile, dod float64) (*Consumption, error) {
	consumed, cumulative := Integrate(prof.Times(), prof.Currents())
	required, err := RequiredCapacity(consumed, dod)
	if err != nil {
		return nil, err
	}
	logger.Debugf("consumed %.4f Ah, required %.4f Ah at DoD %.2f", consumed, required, dod)
	return &Consumption{
		ConsumedAh:       consumed,
		RequiredAh:       required,
		DepthOfDischarge: dod,
		CumulativeAh:     cumulative,
	}, nil
}

// BreakdownByState attributes mission time and charge to each operating state, in order of first
// appearance. Phases are integrated exactly, so the sum may differ slightly from the sampled
// profile where a phase boundary falls between samples.
func BreakdownByState(phases []MissionPhase, powers mission.StatePowers, system Volts) []StateConsumption {
	res := make([]StateConsumption, 0, len(powers))
	index := make(map[string]int, len(powers))
	for _, p := range phases {
		i, ok := index[p.State]
		if !ok {
			i = len(res)
			index[p.State] = i
			res = append(res, StateConsumption{State: p.State, Power: powers[p.State]})
		}
		res[i].Seconds += p.Duration()
		res[i].ConsumedAh += powers[p.State] / system * p.Duration() / SecondsPerHour
	}
	return res
}
