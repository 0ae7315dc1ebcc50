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

package sizing

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	. "github.com/robopack/packsize/types"
)

// YamlConfigFile is the on-disk form of a Config. Sections left out of a file keep the
// values of the base config they are applied to.
type YamlConfigFile struct {
	Title      *string            `yaml:"title,omitempty"`
	System     *YamlSystemConfig  `yaml:"system,omitempty"`
	Converters []ConversionHop    `yaml:"converters,omitempty"`
	Components []Component        `yaml:"components,omitempty"`
	States     []YamlStateConfig  `yaml:"states,omitempty"`
	Mission    *YamlMissionConfig `yaml:"mission,omitempty"`
	Cell       *Cell              `yaml:"cell,omitempty"`
	Battery    *YamlBatteryConfig `yaml:"battery,omitempty"`
	Fuse       *YamlFuseConfig    `yaml:"fuse,omitempty"`
	OutputDir  *string            `yaml:"output-dir,omitempty"`
}

type YamlSystemConfig struct {
	Voltage *Volts  `yaml:"voltage,omitempty"`
	Rails   []Volts `yaml:"rails,omitempty,flow"`
}

type YamlStateConfig struct {
	Name       string  `yaml:"name"`
	Motor      string  `yaml:"motor"`
	ExtraPower float64 `yaml:"extra_w,omitempty"`
}

type YamlMissionConfig struct {
	Duration *float64       `yaml:"duration,omitempty"`
	Step     *float64       `yaml:"step,omitempty"`
	Phases   []MissionPhase `yaml:"phases,omitempty"`
}

type YamlBatteryConfig struct {
	DepthOfDischarge   *float64 `yaml:"dod,omitempty"`
	StructuralOverhead *float64 `yaml:"overhead,omitempty"`
}

type YamlFuseConfig struct {
	SafetyMargin *float64  `yaml:"margin,omitempty"`
	Ratings      []float64 `yaml:"ratings,omitempty,flow"`
}

// ReadConfigFile loads a YAML config file on top of DefaultConfig().
func ReadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data, DefaultConfig())
	if err != nil {
		return nil, errors.WithMessagef(err, "config file %s", path)
	}
	return cfg, nil
}

// ParseConfig applies YAML config data on top of a copy of base. base itself is not modified.
func ParseConfig(data []byte, base *Config) (*Config, error) {
	var file YamlConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return file.Apply(base)
}

// Apply returns a copy of base overridden by every section present in f.
func (f *YamlConfigFile) Apply(base *Config) (*Config, error) {
	cfg := base.Clone()

	if f.Title != nil {
		cfg.Title = *f.Title
	}
	if f.OutputDir != nil {
		cfg.OutputDir = *f.OutputDir
	}
	if f.System != nil {
		if f.System.Voltage != nil {
			cfg.SystemVoltage = *f.System.Voltage
		}
		if len(f.System.Rails) > 0 {
			cfg.Rails = append([]Volts{}, f.System.Rails...)
		}
	}
	if len(f.Converters) > 0 {
		cfg.Hops = append([]ConversionHop{}, f.Converters...)
	}
	if len(f.Components) > 0 {
		cfg.Components = append([]Component{}, f.Components...)
	}
	if len(f.States) > 0 {
		states := make([]OperatingState, 0, len(f.States))
		for _, s := range f.States {
			level, ok := ParseMotorLevel(s.Motor)
			if !ok {
				return nil, errors.Wrapf(ErrUnknownState, "state %q: motor level %q", s.Name, s.Motor)
			}
			states = append(states, OperatingState{Name: s.Name, Motor: level, ExtraPower: s.ExtraPower})
		}
		cfg.States = states
	}
	if f.Mission != nil {
		if len(f.Mission.Phases) > 0 {
			cfg.Phases = append([]MissionPhase{}, f.Mission.Phases...)
			// a new phase list without an explicit duration runs until its last phase ends
			if f.Mission.Duration == nil {
				cfg.Duration = cfg.Phases[len(cfg.Phases)-1].End
			}
		}
		if f.Mission.Duration != nil {
			cfg.Duration = *f.Mission.Duration
		}
		if f.Mission.Step != nil {
			cfg.Step = *f.Mission.Step
		}
	}
	if f.Cell != nil {
		cfg.Cell = *f.Cell
	}
	if f.Battery != nil {
		if f.Battery.DepthOfDischarge != nil {
			cfg.DepthOfDischarge = *f.Battery.DepthOfDischarge
		}
		if f.Battery.StructuralOverhead != nil {
			cfg.StructuralOverhead = *f.Battery.StructuralOverhead
		}
	}
	if f.Fuse != nil {
		if f.Fuse.SafetyMargin != nil {
			cfg.SafetyMargin = *f.Fuse.SafetyMargin
		}
		if len(f.Fuse.Ratings) > 0 {
			cfg.FuseRatings = append([]float64{}, f.Fuse.Ratings...)
		}
	}
	return cfg, nil
}

// Export returns the complete YAML form of cfg; ParseConfig of its marshalled bytes yields cfg again.
func (cfg *Config) Export() YamlConfigFile {
	states := make([]YamlStateConfig, 0, len(cfg.States))
	for _, s := range cfg.States {
		states = append(states, YamlStateConfig{Name: s.Name, Motor: s.Motor.String(), ExtraPower: s.ExtraPower})
	}
	title, outputDir := cfg.Title, cfg.OutputDir
	voltage, duration, step := cfg.SystemVoltage, cfg.Duration, cfg.Step
	cell := cfg.Cell
	dod, overhead, margin := cfg.DepthOfDischarge, cfg.StructuralOverhead, cfg.SafetyMargin
	return YamlConfigFile{
		Title:      &title,
		System:     &YamlSystemConfig{Voltage: &voltage, Rails: append([]Volts{}, cfg.Rails...)},
		Converters: append([]ConversionHop{}, cfg.Hops...),
		Components: append([]Component{}, cfg.Components...),
		States:     states,
		Mission:    &YamlMissionConfig{Duration: &duration, Step: &step, Phases: append([]MissionPhase{}, cfg.Phases...)},
		Cell:       &cell,
		Battery:    &YamlBatteryConfig{DepthOfDischarge: &dod, StructuralOverhead: &overhead},
		Fuse:       &YamlFuseConfig{SafetyMargin: &margin, Ratings: append([]float64{}, cfg.FuseRatings...)},
		OutputDir:  &outputDir,
	}
}

// WriteConfigFile saves cfg as YAML to path.
func WriteConfigFile(path string, cfg *Config) error {
	file := cfg.Export()
	data, err := yaml.Marshal(&file)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return os.WriteFile(path, data, 0644)
}
