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

package mission

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/robopack/packsize/power"
	. "github.com/robopack/packsize/types"
)

var testPowers = StatePowers{
	StateIdle:  10,
	StateDrive: 50,
	StateStall: 300,
}

func TestValidatePartition(t *testing.T) {
	ok := []MissionPhase{{Start: 0, End: 5, State: StateIdle}, {Start: 5, End: 8, State: StateDrive}, {Start: 8, End: 10, State: StateIdle}}
	assert.Nil(t, Validate(ok, 10))

	gap := []MissionPhase{{Start: 0, End: 5, State: StateIdle}, {Start: 6, End: 10, State: StateDrive}}
	assert.True(t, errors.Is(Validate(gap, 10), ErrProfileGap))

	lateStart := []MissionPhase{{Start: 1, End: 10, State: StateIdle}}
	assert.True(t, errors.Is(Validate(lateStart, 10), ErrProfileGap))

	shortEnd := []MissionPhase{{Start: 0, End: 9, State: StateIdle}}
	assert.True(t, errors.Is(Validate(shortEnd, 10), ErrProfileGap))

	overlap := []MissionPhase{{Start: 0, End: 6, State: StateIdle}, {Start: 5, End: 10, State: StateDrive}}
	assert.True(t, errors.Is(Validate(overlap, 10), ErrProfileOverlap))

	pastEnd := []MissionPhase{{Start: 0, End: 12, State: StateIdle}}
	assert.True(t, errors.Is(Validate(pastEnd, 10), ErrProfileOverlap))

	empty := []MissionPhase{{Start: 0, End: 0, State: StateIdle}, {Start: 0, End: 10, State: StateIdle}}
	assert.True(t, errors.Is(Validate(empty, 10), ErrInvalidPhase))

	assert.True(t, errors.Is(Validate(nil, 10), ErrProfileGap))

	negativeStart := []MissionPhase{{Start: -2, End: 10, State: StateIdle}}
	assert.True(t, errors.Is(Validate(negativeStart, 10), ErrInvalidPhase))
}

func TestBuildSampleCount(t *testing.T) {
	phases := []MissionPhase{{Start: 0, End: 10, State: StateIdle}}
	for _, tc := range []struct {
		duration, step float64
	}{{10, 1}, {10, 2.5}, {10, 0.5}, {10, 0.1}, {10, 10}} {
		prof, err := Build(phases, testPowers, tc.duration, tc.step)
		assert.Nil(t, err)
		expected := int(math.Floor(tc.duration/tc.step+1e-9)) + 1
		assert.Equal(t, expected, len(prof.Samples), "step %v", tc.step)
		assert.Equal(t, tc.duration, prof.Samples[len(prof.Samples)-1].Time, "step %v", tc.step)
	}
}

func TestSampleCountStepMustDivideDuration(t *testing.T) {
	for _, step := range []float64{20, 11, 4, 3, 7, 0.3} {
		_, err := SampleCount(10, step)
		assert.True(t, errors.Is(err, ErrInvalidStep), "step %v", step)
	}

	phases := []MissionPhase{{Start: 0, End: 10, State: StateDrive}}
	_, err := Build(phases, testPowers, 10, 20)
	assert.True(t, errors.Is(err, ErrInvalidStep))
	_, err = Build(phases, testPowers, 10, 4)
	assert.True(t, errors.Is(err, ErrInvalidStep))

	n, err := SampleCount(60, 0.1)
	assert.Nil(t, err)
	assert.Equal(t, 601, n)
	n, err = SampleCount(1800, 1)
	assert.Nil(t, err)
	assert.Equal(t, 1801, n)
}

func TestBuildHalfOpenTransitions(t *testing.T) {
	phases := []MissionPhase{{Start: 0, End: 3, State: StateIdle}, {Start: 3, End: 5, State: StateDrive}, {Start: 5, End: 6, State: StateStall}}
	prof, err := Build(phases, testPowers, 6, 1)
	assert.Nil(t, err)
	assert.Equal(t, 7, len(prof.Samples))

	expected := []float64{10, 10, 10, 50, 50, 300, 300}
	assert.Equal(t, expected, prof.Powers())
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6}, prof.Times())
}

func TestBuildTerminalSampleTakesLastPhase(t *testing.T) {
	// the last phase is shorter than a step, no interior sample falls into it
	phases := []MissionPhase{{Start: 0, End: 9.5, State: StateIdle}, {Start: 9.5, End: 10, State: StateStall}}
	prof, err := Build(phases, testPowers, 10, 1)
	assert.Nil(t, err)
	assert.Equal(t, 11, len(prof.Samples))
	assert.Equal(t, 10.0, prof.Samples[9].Power)
	assert.Equal(t, 300.0, prof.Samples[10].Power)
}

func TestBuildEverySampleMatchesAPhase(t *testing.T) {
	phases := []MissionPhase{{Start: 0, End: 2.5, State: StateIdle}, {Start: 2.5, End: 7.25, State: StateDrive}, {Start: 7.25, End: 20, State: StateStall}}
	prof, err := Build(phases, testPowers, 20, 0.25)
	assert.Nil(t, err)
	for _, s := range prof.Samples[:len(prof.Samples)-1] {
		matches := 0
		for _, p := range phases {
			if s.Time >= p.Start && s.Time < p.End {
				matches++
				assert.Equal(t, testPowers[p.State], s.Power, "t=%v", s.Time)
			}
		}
		assert.Equal(t, 1, matches, "t=%v", s.Time)
	}
}

func TestBuildErrors(t *testing.T) {
	phases := []MissionPhase{{Start: 0, End: 10, State: "warp"}}
	_, err := Build(phases, testPowers, 10, 1)
	assert.True(t, errors.Is(err, ErrUnknownState))

	phases = []MissionPhase{{Start: 0, End: 10, State: StateIdle}}
	_, err = Build(phases, testPowers, 10, 0)
	assert.True(t, errors.Is(err, ErrInvalidStep))
	_, err = Build(phases, testPowers, 10, -1)
	assert.True(t, errors.Is(err, ErrInvalidStep))

	phases = []MissionPhase{{Start: 0, End: 1e9, State: StateIdle}}
	_, err = Build(phases, testPowers, 1e9, 1)
	assert.True(t, errors.Is(err, ErrProfileTooLarge))
}

func TestApplyVoltage(t *testing.T) {
	prof, err := Build([]MissionPhase{{Start: 0, End: 10, State: StateDrive}}, testPowers, 10, 1)
	assert.Nil(t, err)
	prof.ApplyVoltage(10)
	for _, c := range prof.Currents() {
		assert.Equal(t, 5.0, c)
	}
	assert.Equal(t, 50.0, prof.MeanPower())
	assert.Equal(t, 50.0, prof.PeakPower())
}

func TestStatePowers(t *testing.T) {
	catalog := []Component{
		{Name: "drive motor", Rail: Rail12V, Quantity: 4, NominalCurrent: 0.8, MaxCurrent: 5.5, Motor: true, AggressiveCurrent: 2.5},
		{Name: "compute", Rail: Rail5V, Quantity: 1, NominalCurrent: 0.8, MaxCurrent: 3.0},
	}
	hops := power.DefaultHops(0.9, 0.85)

	baseline, err := BaselinePower(catalog, hops, SystemV)
	assert.Nil(t, err)
	assert.InDelta(t, 4/0.9, baseline, 1e-9)

	powers, err := ComputeStatePowers(catalog, hops, SystemV, DefaultStates())
	assert.Nil(t, err)
	assert.InDelta(t, baseline, powers[StateIdle], 1e-9)
	assert.InDelta(t, baseline+12*4*0.8, powers[StateDrive], 1e-9)
	assert.InDelta(t, baseline+12*4*2.5, powers[StateAggressive], 1e-9)
	assert.InDelta(t, baseline+12*4*5.5, powers[StateStall], 1e-9)
	assert.InDelta(t, powers[StateDrive]+DefaultPerceptionSpike, powers[StatePerception], 1e-9)

	dup := append(DefaultStates(), OperatingState{Name: StateIdle})
	_, err = ComputeStatePowers(catalog, hops, SystemV, dup)
	assert.True(t, errors.Is(err, ErrUnknownState))
}
