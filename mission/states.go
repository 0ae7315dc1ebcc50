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
	"github.com/pkg/errors"

	"github.com/robopack/packsize/logger"
	"github.com/robopack/packsize/power"
	. "github.com/robopack/packsize/types"
)

// DefaultPerceptionSpike is the extra battery-side power drawn while the perception stack runs a
// full inference burst, in watts.
const DefaultPerceptionSpike = 15.0

func DefaultStates() []OperatingState {
	return []OperatingState{
		{Name: StateIdle, Motor: MotorNone},
		{Name: StateDrive, Motor: MotorNominal},
		{Name: StateAggressive, Motor: MotorAggressive},
		{Name: StateStall, Motor: MotorStall},
		{Name: StatePerception, Motor: MotorNominal, ExtraPower: DefaultPerceptionSpike},
	}
}

// StatePowers maps each operating state to its battery-side power in watts: the baseline logic
// power, plus the motors at the state's level reflected through the converter chain, plus the
// state's extra spike power.
type StatePowers map[string]float64

// BaselinePower is the battery-side nominal power of all non-motor loads.
func BaselinePower(components []Component, hops []ConversionHop, system Volts) (float64, error) {
	bus, err := power.ReflectCatalog(power.LogicComponents(components), hops, system)
	if err != nil {
		return 0, err
	}
	return bus.NominalPower, nil
}

// ComputeStatePowers evaluates every state against the catalog.
func ComputeStatePowers(components []Component, hops []ConversionHop, system Volts, states []OperatingState) (StatePowers, error) {
	res := make(StatePowers, len(states))
	for _, st := range states {
		if st.Name == "" {
			return nil, errors.Wrapf(ErrUnknownState, "operating state without name")
		}
		if _, ok := res[st.Name]; ok {
			return nil, errors.Wrapf(ErrUnknownState, "operating state %s defined twice", st.Name)
		}
		bus, err := power.ReflectCatalog(power.AtMotorLevel(components, st.Motor), hops, system)
		if err != nil {
			return nil, errors.WithMessagef(err, "state %s", st.Name)
		}
		res[st.Name] = bus.NominalPower + st.ExtraPower
		logger.Debugf("state %-12s motor=%-10s %.3f W", st.Name, st.Motor, res[st.Name])
	}
	return res, nil
}
