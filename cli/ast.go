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

package cli

import (
	"github.com/alecthomas/participle"
)

// noinspection GoStructTag
type Command struct {
	Bus      *BusCmd      `  @@` //nolint
	Cell     *CellCmd     `| @@` //nolint
	Chart    *ChartCmd    `| @@` //nolint
	Config   *ConfigCmd   `| @@` //nolint
	Dod      *DodCmd      `| @@` //nolint
	Energy   *EnergyCmd   `| @@` //nolint
	Exit     *ExitCmd     `| @@` //nolint
	Fuse     *FuseCmd     `| @@` //nolint
	Help     *HelpCmd     `| @@` //nolint
	Load     *LoadCmd     `| @@` //nolint
	LogLevel *LogLevelCmd `| @@` //nolint
	Margin   *MarginCmd   `| @@` //nolint
	Overhead *OverheadCmd `| @@` //nolint
	Pack     *PackCmd     `| @@` //nolint
	Profile  *ProfileCmd  `| @@` //nolint
	Rails    *RailsCmd    `| @@` //nolint
	Save     *SaveCmd     `| @@` //nolint
	Size     *SizeCmd     `| @@` //nolint
	States   *StatesCmd   `| @@` //nolint
	Step     *StepCmd     `| @@` //nolint
	Table    *TableCmd    `| @@` //nolint
	Web      *WebCmd      `| @@` //nolint
}

// noinspection GoStructTag
type SizeCmd struct {
	Cmd struct{} `"size"` //nolint
}

// noinspection GoStructTag
type RailsCmd struct {
	Cmd struct{} `"rails"` //nolint
}

// noinspection GoStructTag
type BusCmd struct {
	Cmd struct{} `"bus"` //nolint
}

// noinspection GoStructTag
type StatesCmd struct {
	Cmd struct{} `"states"` //nolint
}

// noinspection GoStructTag
type ProfileCmd struct {
	Cmd struct{} `"profile"` //nolint
}

// noinspection GoStructTag
type EnergyCmd struct {
	Cmd  struct{}  `"energy"` //nolint
	Save *SaveFlag `( @@ )?`  //nolint
	Name string    `@String?` //nolint
}

// noinspection GoStructTag
type PackCmd struct {
	Cmd struct{} `"pack"` //nolint
}

// noinspection GoStructTag
type FuseCmd struct {
	Cmd     struct{}  `"fuse"`                       //nolint
	Ratings []float64 `[ "ratings" (@Int|@Float)+ ]` //nolint
}

// noinspection GoStructTag
type CellCmd struct {
	Cmd      struct{} `"cell"`                     //nolint
	Name     *string  `[ @String ]`                //nolint
	Voltage  *float64 `( "voltage" (@Int|@Float)`  //nolint
	Capacity *float64 `| "capacity" (@Int|@Float)` //nolint
	Current  *float64 `| "current" (@Int|@Float)`  //nolint
	Mass     *float64 `| "mass" (@Int|@Float) )*`  //nolint
}

// noinspection GoStructTag
type DodCmd struct {
	Cmd struct{} `"dod"`             //nolint
	Val *float64 `[ (@Int|@Float) ]` //nolint
}

// noinspection GoStructTag
type MarginCmd struct {
	Cmd struct{} `"margin"`          //nolint
	Val *float64 `[ (@Int|@Float) ]` //nolint
}

// noinspection GoStructTag
type StepCmd struct {
	Cmd struct{} `"step"`            //nolint
	Val *float64 `[ (@Int|@Float) ]` //nolint
}

// noinspection GoStructTag
type OverheadCmd struct {
	Cmd struct{} `"overhead"`        //nolint
	Val *float64 `[ (@Int|@Float) ]` //nolint
}

// noinspection GoStructTag
type ConfigCmd struct {
	Cmd struct{} `"config"` //nolint
}

// noinspection GoStructTag
type LoadCmd struct {
	Cmd      struct{} `"load"`  //nolint
	Filename string   `@String` //nolint
}

// noinspection GoStructTag
type SaveCmd struct {
	Cmd      struct{}    `"save"`      //nolint
	Config   *ConfigFlag `[ @@ ]`      //nolint
	Filename *string     `[ @String ]` //nolint
}

// noinspection GoStructTag
type ChartCmd struct {
	Cmd      struct{} `"chart"`     //nolint
	Filename *string  `[ @String ]` //nolint
}

// noinspection GoStructTag
type TableCmd struct {
	Cmd      struct{} `"table"`     //nolint
	Filename *string  `[ @String ]` //nolint
}

// noinspection GoStructTag
type WebCmd struct {
	Cmd struct{} `"web"` //nolint
}

// noinspection GoStructTag
type LogLevelCmd struct {
	Cmd   struct{} `"log"`                                                                                    //nolint
	Level string   `[@( "trace"|"debug"|"info"|"note"|"warn"|"crit"|"error"|"off"|"D"|"I"|"N"|"W"|"C"|"E" )]` //nolint
}

// noinspection GoStructTag
type HelpCmd struct {
	Cmd       struct{} `"help"`       //nolint
	HelpTopic string   `[ (@Ident) ]` //nolint
}

// noinspection GoStructTag
type ExitCmd struct {
	Cmd struct{} `"exit"` //nolint
}

// noinspection GoStructTag
type SaveFlag struct {
	Dummy struct{} `"save"` //nolint
}

// noinspection GoStructTag
type ConfigFlag struct {
	Dummy struct{} `"config"` //nolint
}

var (
	commandParser = participle.MustBuild(&Command{})
)

func parseBytes(b []byte, cmd *Command) error {
	return commandParser.ParseBytes(b, cmd)
}
