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

// Package sizing runs the complete battery sizing pipeline: catalog, rails, battery bus, mission
// profile, energy, pack and fuse.
package sizing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/robopack/packsize/energy"
	"github.com/robopack/packsize/fuse"
	"github.com/robopack/packsize/logger"
	"github.com/robopack/packsize/mission"
	"github.com/robopack/packsize/pack"
	"github.com/robopack/packsize/power"
	. "github.com/robopack/packsize/types"
)

// Validate checks every input that can be checked before computation starts.
func (cfg *Config) Validate() error {
	if !(cfg.SystemVoltage > 0) {
		return errors.Wrapf(ErrInvalidVoltage, "system voltage %v", cfg.SystemVoltage)
	}
	if err := power.ValidateCatalog(cfg.Components); err != nil {
		return err
	}
	if err := power.ValidateHops(cfg.Hops); err != nil {
		return err
	}
	if err := pack.ValidateCell(cfg.Cell); err != nil {
		return err
	}
	if !(cfg.DepthOfDischarge > 0 && cfg.DepthOfDischarge <= 1) {
		return errors.Wrapf(ErrInvalidCell, "depth of discharge %v not in (0,1]", cfg.DepthOfDischarge)
	}
	if cfg.StructuralOverhead < 0 {
		return errors.Wrapf(ErrInvalidCell, "structural overhead %v", cfg.StructuralOverhead)
	}
	if !(cfg.SafetyMargin > 1) {
		return errors.Wrapf(ErrInvalidMargin, "margin %v must be greater than 1", cfg.SafetyMargin)
	}
	if err := fuse.ValidateCatalog(cfg.FuseRatings); err != nil {
		return err
	}
	if err := mission.Validate(cfg.Phases, cfg.Duration); err != nil {
		return err
	}
	_, err := mission.SampleCount(cfg.Duration, cfg.Step)
	return err
}

// Run sizes a battery pack for cfg. Any invalid input aborts the run with a typed error, see
// the Err* kinds in package types. A fuse catalog that is too small is not an error: the result
// then carries a warning.
func Run(cfg *Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:         uuid.New().String(),
		Created:       time.Now().Format(time.RFC3339),
		Title:         cfg.Title,
		SystemVoltage: cfg.SystemVoltage,
		Cell:          cfg.Cell,
		Phases:        append([]MissionPhase{}, cfg.Phases...),
		Warnings:      []string{},
	}
	logger.Debugf("sizing run %s (%s)", res.RunID, res.Title)

	res.Rails = power.AggregateRails(cfg.Components, cfg.Rails...)
	bus, err := power.Reflect(res.Rails, cfg.Hops, cfg.SystemVoltage)
	if err != nil {
		return nil, err
	}
	res.Bus = bus
	logger.Debugf("battery bus: nominal %.3f W / %.3f A, peak %.3f W / %.3f A",
		bus.NominalPower, bus.NominalCurrent, bus.PeakPower, bus.PeakCurrent)

	if res.BaselinePower, err = mission.BaselinePower(cfg.Components, cfg.Hops, cfg.SystemVoltage); err != nil {
		return nil, err
	}
	if res.StatePowers, err = mission.ComputeStatePowers(cfg.Components, cfg.Hops, cfg.SystemVoltage, cfg.States); err != nil {
		return nil, err
	}

	if res.Profile, err = mission.Build(cfg.Phases, res.StatePowers, cfg.Duration, cfg.Step); err != nil {
		return nil, err
	}
	res.Profile.ApplyVoltage(cfg.SystemVoltage)
	logger.Debugf("profile: %d samples, mean %.3f W, peak %.3f W",
		len(res.Profile.Samples), res.Profile.MeanPower(), res.Profile.PeakPower())

	if res.Consumption, err = energy.Analyse(res.Profile, cfg.DepthOfDischarge); err != nil {
		return nil, err
	}
	res.States = energy.BreakdownByState(cfg.Phases, res.StatePowers, cfg.SystemVoltage)

	res.Pack, err = pack.Solve(pack.Requirements{
		SystemVoltage:      cfg.SystemVoltage,
		RequiredAh:         res.Consumption.RequiredAh,
		PeakCurrent:        bus.PeakCurrent,
		NominalCurrent:     bus.NominalCurrent,
		DepthOfDischarge:   cfg.DepthOfDischarge,
		StructuralOverhead: cfg.StructuralOverhead,
	}, cfg.Cell)
	if err != nil {
		return nil, err
	}

	if res.Fuse, err = fuse.Select(bus.PeakCurrent, cfg.SafetyMargin, cfg.FuseRatings); err != nil {
		return nil, err
	}
	if res.Fuse.Warning != nil {
		res.Warnings = append(res.Warnings, res.Fuse.Warning.Error())
	}
	if res.Profile.PeakPower() > bus.PeakPower {
		// only possible with extra state power beyond the catalog's peak ratings
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"mission peak %.2f W exceeds catalog peak %.2f W", res.Profile.PeakPower(), bus.PeakPower))
		logger.Warnf("%s", res.Warnings[len(res.Warnings)-1])
	}
	return res, nil
}
