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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/robopack/packsize/logger"
	"github.com/robopack/packsize/mission"
)

// ResultsWriter dumps a mission's power profile and running consumption as tab-separated tables,
// for plotting with external tools.
type ResultsWriter struct {
	dir   string
	title string
}

func NewResultsWriter(dir string) *ResultsWriter {
	if dir == "" {
		dir = DefaultResultsDir
	}
	return &ResultsWriter{dir: dir}
}

func (rw *ResultsWriter) SetTitle(title string) {
	rw.title = title
}

// SaveConsumptionToFile writes <dir>/<name>.txt with the sampled profile and cumulative charge,
// and <dir>/<name>_states.txt with the per-state breakdown. It returns the profile table path.
func (rw *ResultsWriter) SaveConsumptionToFile(name string, prof *mission.Profile, cons *Consumption, states []StateConsumption) (string, error) {
	if name == "" {
		if rw.title == "" {
			name = "energy"
		} else {
			name = rw.title
		}
	}

	if err := os.MkdirAll(rw.dir, 0755); err != nil {
		return "", errors.Wrapf(err, "create %s directory", rw.dir)
	}

	path := filepath.Join(rw.dir, name)
	fileProfile, err := os.Create(path + ".txt")
	if err != nil {
		return "", err
	}
	defer fileProfile.Close()

	fileStates, err := os.Create(path + "_states.txt")
	if err != nil {
		return "", err
	}
	defer fileStates.Close()

	if err = WriteProfileTable(fileProfile, prof, cons); err != nil {
		return "", err
	}
	if err = WriteStateTable(fileStates, states); err != nil {
		return "", err
	}
	logger.Infof("consumption table written to %s.txt", path)
	return path + ".txt", nil
}

func WriteProfileTable(w io.Writer, prof *mission.Profile, cons *Consumption) error {
	logger.AssertEqual(len(prof.Samples), len(cons.CumulativeAh))
	if _, err := fmt.Fprintf(w, "Mission duration (s): %g, step (s): %g, required capacity (Ah): %f\n",
		prof.Duration, prof.Step, cons.RequiredAh); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Time (s)\tPower (W)\tCurrent (A)\tConsumed (Ah)\n"); err != nil {
		return err
	}
	for i, s := range prof.Samples {
		if _, err := fmt.Fprintf(w, "%g\t%f\t%f\t%f\n", s.Time, s.Power, s.Current, cons.CumulativeAh[i]); err != nil {
			return err
		}
	}
	return nil
}

func WriteStateTable(w io.Writer, states []StateConsumption) error {
	if _, err := fmt.Fprintf(w, "State\tTime (s)\tPower (W)\tConsumed (Ah)\n"); err != nil {
		return err
	}
	for _, st := range states {
		if _, err := fmt.Fprintf(w, "%s\t%g\t%f\t%f\n", st.State, st.Seconds, st.Power, st.ConsumedAh); err != nil {
			return err
		}
	}
	return nil
}
