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

package power

import (
	"github.com/pkg/errors"

	"github.com/robopack/packsize/logger"
	. "github.com/robopack/packsize/types"
)

// DefaultHops is the converter chain of the reference robot: the 3.3V regulator feeds from the
// 5V rail, and the 5V buck feeds from the 12V battery bus.
func DefaultHops(eta5V, eta3V3 float64) []ConversionHop {
	return []ConversionHop{
		{Name: "3.3V regulator", From: Rail3V3, To: Rail5V, Efficiency: eta3V3},
		{Name: "5V buck", From: Rail5V, To: Rail12V, Efficiency: eta5V},
	}
}

func ValidateHops(hops []ConversionHop) error {
	for _, h := range hops {
		if !(h.Efficiency > 0 && h.Efficiency <= 1) {
			return errors.Wrapf(ErrInvalidEfficiency, "%s (%.1fV -> %.1fV): efficiency %v not in (0,1]",
				h.Name, h.From, h.To, h.Efficiency)
		}
		if SameRail(h.From, h.To) {
			return errors.Wrapf(ErrInvalidEfficiency, "%s: converter from %.1fV onto itself", h.Name, h.From)
		}
	}
	return nil
}

// railPowers is the working set of per-rail power while hops are applied in order.
type railPowers []Rail

func (rp railPowers) index(v Volts) int {
	for i := range rp {
		if SameRail(rp[i].Voltage, v) {
			return i
		}
	}
	return -1
}

func (rp *railPowers) add(v Volts, nominal, peak float64) {
	i := rp.index(v)
	if i < 0 {
		*rp = append(*rp, Rail{Voltage: v})
		i = len(*rp) - 1
	}
	(*rp)[i].NominalPower += nominal
	(*rp)[i].PeakPower += peak
}

func (rp railPowers) take(v Volts) (nominal, peak float64) {
	i := rp.index(v)
	if i < 0 {
		return 0, 0
	}
	nominal, peak = rp[i].NominalPower, rp[i].PeakPower
	rp[i].NominalPower, rp[i].PeakPower = 0, 0
	return
}

// Reflect cascades downstream rail power upstream through the hops, in the given order, onto the
// system bus. Each hop divides the power it carries by its efficiency, so losses compound along a
// chain. Nominal and peak are reflected independently.
func Reflect(rails []Rail, hops []ConversionHop, system Volts) (BatteryBus, error) {
	if err := ValidateHops(hops); err != nil {
		return BatteryBus{}, err
	}

	bus := BatteryBus{Voltage: system}
	work := make(railPowers, 0, len(rails)+1)
	for _, r := range rails {
		work.add(r.Voltage, r.NominalPower, r.PeakPower)
		bus.RawNominalPower += r.NominalPower
		bus.RawPeakPower += r.PeakPower
	}

	for _, h := range hops {
		nominal, peak := work.take(h.From)
		work.add(h.To, nominal/h.Efficiency, peak/h.Efficiency)
		logger.Tracef("hop %s: %.3f W -> %.3f W nominal", h.Name, nominal, nominal/h.Efficiency)
	}

	for _, r := range work {
		if SameRail(r.Voltage, system) {
			bus.NominalPower += r.NominalPower
			bus.PeakPower += r.PeakPower
		} else if r.NominalPower != 0 || r.PeakPower != 0 {
			return BatteryBus{}, errors.Wrapf(ErrUnreachableRail, "%.1fV rail still carries %.3f W after all converter hops",
				r.Voltage, r.PeakPower)
		}
	}

	bus.NominalCurrent = bus.NominalPower / system
	bus.PeakCurrent = bus.PeakPower / system
	logger.Debugf("battery bus %.1fV: nominal %.3f W / %.3f A, peak %.3f W / %.3f A",
		system, bus.NominalPower, bus.NominalCurrent, bus.PeakPower, bus.PeakCurrent)
	return bus, nil
}

// ReflectCatalog aggregates and reflects a catalog in one go.
func ReflectCatalog(components []Component, hops []ConversionHop, system Volts) (BatteryBus, error) {
	return Reflect(AggregateRails(components), hops, system)
}
