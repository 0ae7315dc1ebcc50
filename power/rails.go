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

// Package power rolls the component catalog up into per-rail power and reflects it, through the
// converter stages, onto the battery bus.
package power

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/robopack/packsize/logger"
	. "github.com/robopack/packsize/types"
)

// ValidateCatalog checks every component against the catalog invariants.
func ValidateCatalog(components []Component) error {
	for i, c := range components {
		name := c.Name
		if name == "" {
			name = "#" + strconv.Itoa(i)
		}
		switch {
		case c.Quantity <= 0:
			return errors.Wrapf(ErrInvalidCatalogEntry, "component %s: quantity %d must be positive", name, c.Quantity)
		case c.Rail <= 0:
			return errors.Wrapf(ErrInvalidCatalogEntry, "component %s: rail voltage %.2f V must be positive", name, c.Rail)
		case c.NominalCurrent < 0:
			return errors.Wrapf(ErrInvalidCatalogEntry, "component %s: negative nominal current", name)
		case c.NominalCurrent > c.MaxCurrent:
			return errors.Wrapf(ErrInvalidCatalogEntry, "component %s: nominal current %.3f A exceeds max current %.3f A",
				name, c.NominalCurrent, c.MaxCurrent)
		case c.AggressiveCurrent < 0 || c.AggressiveCurrent > c.MaxCurrent:
			return errors.Wrapf(ErrInvalidCatalogEntry, "component %s: aggressive current %.3f A outside [0, %.3f] A",
				name, c.AggressiveCurrent, c.MaxCurrent)
		}
	}
	return nil
}

// AggregateRails sums component power per rail. Rails named in knownRails are always present,
// possibly with zero power. The result is ordered by descending voltage.
func AggregateRails(components []Component, knownRails ...Volts) []Rail {
	volts := append([]Volts{}, knownRails...)
	for _, c := range components {
		volts = append(volts, c.Rail)
	}
	volts = SortedRails(volts)

	rails := make([]Rail, len(volts))
	for i, v := range volts {
		rails[i].Voltage = v
		for _, c := range components {
			if !SameRail(c.Rail, v) {
				continue
			}
			rails[i].NominalCurrent += float64(c.Quantity) * c.NominalCurrent
			rails[i].PeakCurrent += float64(c.Quantity) * c.MaxCurrent
		}
		rails[i].NominalPower = v * rails[i].NominalCurrent
		rails[i].PeakPower = v * rails[i].PeakCurrent
		logger.Tracef("rail %.1fV: nominal %.3f W, peak %.3f W", v, rails[i].NominalPower, rails[i].PeakPower)
	}
	return rails
}

// RailAt returns the rail with the given voltage from the list, or a zero rail.
func RailAt(rails []Rail, v Volts) Rail {
	for _, r := range rails {
		if SameRail(r.Voltage, v) {
			return r
		}
	}
	return Rail{Voltage: v}
}

// AtMotorLevel returns a copy of the catalog with every motor drawing its level current as
// both nominal and peak. Logic rows are unchanged.
func AtMotorLevel(components []Component, level MotorLevel) []Component {
	res := make([]Component, 0, len(components))
	for _, c := range components {
		if !c.Motor {
			res = append(res, c)
			continue
		}
		cur := c.UnitCurrent(level)
		c.NominalCurrent = cur
		c.MaxCurrent = cur
		res = append(res, c)
	}
	return res
}

// LogicComponents returns the non-motor rows of the catalog.
func LogicComponents(components []Component) []Component {
	res := make([]Component, 0, len(components))
	for _, c := range components {
		if !c.Motor {
			res = append(res, c)
		}
	}
	return res
}
