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

// Package mission expands operating states and timed mission phases into a uniformly sampled
// battery power profile.
package mission

import (
	"math"

	"github.com/pkg/errors"

	"github.com/robopack/packsize/logger"
	. "github.com/robopack/packsize/types"
)

const (
	// MaxSamples bounds the profile length, so memory use is known before sampling starts.
	MaxSamples = 10000000
	timeTol    = 1e-9
)

type Profile struct {
	Step     float64       `json:"step"`
	Duration float64       `json:"duration"`
	Samples  []PowerSample `json:"samples"`
}

// Validate checks that the phases, in the given order, partition [0, duration] exactly.
func Validate(phases []MissionPhase, duration float64) error {
	if len(phases) == 0 {
		return errors.Wrapf(ErrProfileGap, "no mission phases cover [0, %g] s", duration)
	}
	if !(duration > 0) {
		return errors.Wrapf(ErrInvalidPhase, "mission duration %g s must be positive", duration)
	}

	prevEnd := 0.0
	for i, p := range phases {
		if p.Start < -timeTol {
			return errors.Wrapf(ErrInvalidPhase, "phase %d (%s): negative start %g s", i, p.State, p.Start)
		}
		if !(p.End-p.Start > timeTol) {
			return errors.Wrapf(ErrInvalidPhase, "phase %d (%s): end %g s not after start %g s", i, p.State, p.End, p.Start)
		}
		switch {
		case p.Start > prevEnd+timeTol:
			return errors.Wrapf(ErrProfileGap, "phase %d (%s): gap [%g, %g) s", i, p.State, prevEnd, p.Start)
		case p.Start < prevEnd-timeTol:
			return errors.Wrapf(ErrProfileOverlap, "phase %d (%s): starts at %g s, before previous end %g s", i, p.State, p.Start, prevEnd)
		}
		prevEnd = p.End
	}

	switch {
	case prevEnd < duration-timeTol:
		return errors.Wrapf(ErrProfileGap, "phases end at %g s, mission lasts %g s", prevEnd, duration)
	case prevEnd > duration+timeTol:
		return errors.Wrapf(ErrProfileOverlap, "phases end at %g s, past mission end %g s", prevEnd, duration)
	}
	return nil
}

// SampleCount returns duration/step+1, the number of samples Build produces. The step must
// divide the duration, so that the last sample falls on the mission end.
func SampleCount(duration, step float64) (int, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return 0, errors.Wrapf(ErrInvalidStep, "step %g s", step)
	}
	k := math.Round(duration / step)
	if k < 1 || math.Abs(k*step-duration) > timeTol*math.Max(1, duration) {
		return 0, errors.Wrapf(ErrInvalidStep, "step %g s does not divide mission duration %g s", step, duration)
	}
	n := k + 1
	if n > MaxSamples {
		return 0, errors.Wrapf(ErrProfileTooLarge, "%.0f samples (duration %g s, step %g s), limit %d", n, duration, step, MaxSamples)
	}
	return int(n), nil
}

// Build samples the mission at a fixed step. Each sample takes the power of the phase whose
// half-open interval [Start, End) contains its time, so a sample on a transition belongs to the
// later phase. The terminal sample is assigned the last phase's power.
func Build(phases []MissionPhase, powers StatePowers, duration, step float64) (*Profile, error) {
	if err := Validate(phases, duration); err != nil {
		return nil, err
	}
	for i, p := range phases {
		if _, ok := powers[p.State]; !ok {
			return nil, errors.Wrapf(ErrUnknownState, "phase %d: state %q", i, p.State)
		}
	}
	n, err := SampleCount(duration, step)
	if err != nil {
		return nil, err
	}

	prof := &Profile{
		Step:     step,
		Duration: duration,
		Samples:  make([]PowerSample, n),
	}

	phaseIdx := 0
	for i := 0; i < n; i++ {
		t := float64(i) * step
		// sample times only increase, so the containing phase index only moves forward.
		for phaseIdx < len(phases)-1 && t >= phases[phaseIdx].End-timeTol {
			phaseIdx++
		}
		prof.Samples[i] = PowerSample{Time: t, Power: powers[phases[phaseIdx].State]}
	}
	prof.Samples[n-1] = PowerSample{Time: duration, Power: powers[phases[len(phases)-1].State]}

	logger.Debugf("mission profile: %d phases, %d samples at %g s", len(phases), n, step)
	return prof, nil
}

// ApplyVoltage fills in the sample currents for the given bus voltage.
func (p *Profile) ApplyVoltage(system Volts) {
	logger.AssertTrue(system > 0, "bus voltage must be positive")
	for i := range p.Samples {
		p.Samples[i].Current = p.Samples[i].Power / system
	}
}

func (p *Profile) Times() []float64 {
	res := make([]float64, len(p.Samples))
	for i, s := range p.Samples {
		res[i] = s.Time
	}
	return res
}

func (p *Profile) Powers() []float64 {
	res := make([]float64, len(p.Samples))
	for i, s := range p.Samples {
		res[i] = s.Power
	}
	return res
}

func (p *Profile) Currents() []float64 {
	res := make([]float64, len(p.Samples))
	for i, s := range p.Samples {
		res[i] = s.Current
	}
	return res
}

// MeanPower is the time-weighted average power over the mission, by the trapezoidal rule.
func (p *Profile) MeanPower() float64 {
	if len(p.Samples) < 2 {
		if len(p.Samples) == 1 {
			return p.Samples[0].Power
		}
		return 0
	}
	area := 0.0
	for i := 1; i < len(p.Samples); i++ {
		area += (p.Samples[i-1].Power + p.Samples[i].Power) / 2 * (p.Samples[i].Time - p.Samples[i-1].Time)
	}
	return area / (p.Samples[len(p.Samples)-1].Time - p.Samples[0].Time)
}

func (p *Profile) PeakPower() float64 {
	peak := 0.0
	for _, s := range p.Samples {
		peak = math.Max(peak, s.Power)
	}
	return peak
}
