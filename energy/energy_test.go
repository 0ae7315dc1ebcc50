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

package energy

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/robopack/packsize/mission"
	. "github.com/robopack/packsize/types"
)

func constantProfile(t *testing.T, watts, volts, duration, step float64) *mission.Profile {
	prof, err := mission.Build([]MissionPhase{{Start: 0, End: duration, State: "on"}},
		mission.StatePowers{"on": watts}, duration, step)
	assert.Nil(t, err)
	prof.ApplyVoltage(volts)
	return prof
}

func TestIntegrateConstantSignal(t *testing.T) {
	prof := constantProfile(t, 100, 10, 10, 1)
	cons, err := Analyse(prof, 1)
	assert.Nil(t, err)
	assert.InDelta(t, 100.0/10*10/3600, cons.ConsumedAh, 1e-12)
	assert.InDelta(t, 0.0278, cons.ConsumedAh, 1e-4)
	assert.Equal(t, 11, len(cons.CumulativeAh))
	assert.Equal(t, 0.0, cons.CumulativeAh[0])
	assert.Equal(t, cons.ConsumedAh, cons.CumulativeAh[10])
}

func TestIntegrateCoversWholeMission(t *testing.T) {
	for _, step := range []float64{0.5, 2, 5, 10} {
		prof := constantProfile(t, 100, 10, 10, step)
		cons, err := Analyse(prof, 1)
		assert.Nil(t, err)
		assert.InDelta(t, 100.0/10*10/3600, cons.ConsumedAh, 1e-12, "step %v", step)
	}
}

func TestIntegrateTrapezoid(t *testing.T) {
	total, cum := Integrate([]float64{0, 1, 3}, []float64{0, 3600, 0})
	// (0+3600)/2*1 + (3600+0)/2*2 = 1800 + 3600 As
	assert.InDelta(t, 1.5, total, 1e-12)
	assert.InDelta(t, 0.5, cum[1], 1e-12)

	total, cum = Integrate(nil, nil)
	assert.Equal(t, 0.0, total)
	assert.Nil(t, cum)
}

func TestCumulativeIsMonotone(t *testing.T) {
	phases := []MissionPhase{{Start: 0, End: 30, State: "a"}, {Start: 30, End: 45, State: "b"}, {Start: 45, End: 100, State: "a"}}
	prof, err := mission.Build(phases, mission.StatePowers{"a": 20, "b": 200}, 100, 0.5)
	assert.Nil(t, err)
	prof.ApplyVoltage(12)
	cons, err := Analyse(prof, 0.8)
	assert.Nil(t, err)
	for i := 1; i < len(cons.CumulativeAh); i++ {
		assert.GreaterOrEqual(t, cons.CumulativeAh[i], cons.CumulativeAh[i-1])
	}
	assert.InDelta(t, cons.ConsumedAh/0.8, cons.RequiredAh, 1e-12)
}

func TestAnalyseIsIdempotent(t *testing.T) {
	phases := []MissionPhase{{Start: 0, End: 7.3, State: "a"}, {Start: 7.3, End: 19.1, State: "b"}, {Start: 19.1, End: 60, State: "a"}}
	prof, err := mission.Build(phases, mission.StatePowers{"a": 33.3, "b": 171.7}, 60, 0.1)
	assert.Nil(t, err)
	prof.ApplyVoltage(12)

	first, err := Analyse(prof, 0.8)
	assert.Nil(t, err)
	second, err := Analyse(prof, 0.8)
	assert.Nil(t, err)
	assert.Equal(t, first.ConsumedAh, second.ConsumedAh)
	assert.Equal(t, first.RequiredAh, second.RequiredAh)
	assert.Equal(t, first.CumulativeAh, second.CumulativeAh)
}

func TestRequiredCapacity(t *testing.T) {
	req, err := RequiredCapacity(4, 0.8)
	assert.Nil(t, err)
	assert.InDelta(t, 5.0, req, 1e-12)

	_, err = RequiredCapacity(4, 0)
	assert.True(t, errors.Is(err, ErrInvalidCell))
	_, err = RequiredCapacity(4, 1.5)
	assert.True(t, errors.Is(err, ErrInvalidCell))
}

func TestBreakdownByState(t *testing.T) {
	phases := []MissionPhase{{Start: 0, End: 360, State: "idle"}, {Start: 360, End: 720, State: "drive"}, {Start: 720, End: 1080, State: "idle"}}
	powers := mission.StatePowers{"idle": 12, "drive": 120}
	states := BreakdownByState(phases, powers, 12)
	assert.Equal(t, 2, len(states))
	assert.Equal(t, "idle", states[0].State)
	assert.Equal(t, 720.0, states[0].Seconds)
	assert.InDelta(t, 0.2, states[0].ConsumedAh, 1e-12)
	assert.Equal(t, "drive", states[1].State)
	assert.InDelta(t, 1.0, states[1].ConsumedAh, 1e-12)
}

func TestSaveConsumptionToFile(t *testing.T) {
	dir := t.TempDir()
	prof := constantProfile(t, 100, 10, 10, 1)
	cons, err := Analyse(prof, 0.8)
	assert.Nil(t, err)

	rw := NewResultsWriter(filepath.Join(dir, "results"))
	rw.SetTitle("mission1")
	path, err := rw.SaveConsumptionToFile("", prof, cons, []StateConsumption{{State: "on", Seconds: 10, Power: 100}})
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(dir, "results", "mission1.txt"), path)

	data, err := os.ReadFile(path)
	assert.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, 2+11, len(lines))
	assert.True(t, strings.HasPrefix(lines[2], "0\t100.000000\t10.000000\t0.000000"))

	_, err = os.Stat(filepath.Join(dir, "results", "mission1_states.txt"))
	assert.Nil(t, err)
}

func TestWriteStateTable(t *testing.T) {
	var buf bytes.Buffer
	assert.Nil(t, WriteStateTable(&buf, []StateConsumption{{State: "idle", Seconds: 5, Power: 1, ConsumedAh: 0.5}}))
	assert.Contains(t, buf.String(), "idle\t5\t1.000000\t0.500000")
}
