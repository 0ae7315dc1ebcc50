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

const (
	SecondsPerHour = 3600.0

	// DefaultResultsDir is where consumption tables are written, relative to the working directory.
	DefaultResultsDir = "energy_results"
)

// Consumption is the outcome of integrating a mission current profile.
type Consumption struct {
	ConsumedAh       float64   `json:"consumed_ah"`
	RequiredAh       float64   `json:"required_ah"`
	DepthOfDischarge float64   `json:"dod"`
	CumulativeAh     []float64 `json:"cumulative_ah"`
}

// StateConsumption is the time and charge attributed to one operating state over the mission.
type StateConsumption struct {
	State      string  `json:"state" yaml:"state"`
	Seconds    float64 `json:"seconds" yaml:"seconds"`
	Power      float64 `json:"power_w" yaml:"power_w"`
	ConsumedAh float64 `json:"consumed_ah" yaml:"consumed_ah"`
}
