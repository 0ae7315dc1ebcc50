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

// Package visualize renders sizing results as interactive HTML charts.
package visualize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/pkg/errors"

	"github.com/robopack/packsize/sizing"
)

const chartTheme = types.ThemeWesteros

func lineOpts(title, subtitle, yName string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Theme: chartTheme,
			Width: "1200px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Right: "10",
			Top:   "20",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:        "s",
			SplitNumber: 20,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  yName,
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	}
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		items[i].Value = v
	}
	return items
}

// NewProfilePage builds the chart page of a result: battery power and current over the mission,
// and the charge consumed so far against the required pack capacity.
func NewProfilePage(res *sizing.Result) (*components.Page, error) {
	if res.Profile == nil || res.Consumption == nil || len(res.Profile.Samples) == 0 {
		return nil, errors.Errorf("result %s has no mission profile", res.RunID)
	}
	times := res.Profile.Times()

	power := charts.NewLine()
	power.SetGlobalOptions(lineOpts("Battery power",
		fmt.Sprintf("%s, %.1f V bus, peak %.1f W", res.Title, res.SystemVoltage, res.Profile.PeakPower()), "W")...)
	power.ExtendYAxis(opts.YAxis{
		Name:  "A",
		Scale: opts.Bool(true),
	})
	power.SetXAxis(times).
		AddSeries("power", lineData(res.Profile.Powers())).
		AddSeries("current", lineData(res.Profile.Currents()),
			charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))

	required := make([]float64, len(times))
	for i := range required {
		required[i] = res.Consumption.RequiredAh
	}
	energy := charts.NewLine()
	energy.SetGlobalOptions(lineOpts("Consumed charge",
		fmt.Sprintf("%.3f Ah consumed, %.3f Ah required at %.0f%% DoD, pack %dS%dP",
			res.Consumption.ConsumedAh, res.Consumption.RequiredAh, res.Consumption.DepthOfDischarge*100,
			res.Pack.Series, res.Pack.Parallel), "Ah")...)
	energy.SetXAxis(times).
		AddSeries("consumed", lineData(res.Consumption.CumulativeAh)).
		AddSeries("required", lineData(required))

	page := components.NewPage()
	page.PageTitle = "Battery sizing: " + res.Title
	page.AddCharts(power, energy)
	return page, nil
}

// RenderProfileChart writes the chart page of res as HTML to w.
func RenderProfileChart(w io.Writer, res *sizing.Result) error {
	page, err := NewProfilePage(res)
	if err != nil {
		return err
	}
	return page.Render(w)
}

// SaveProfileChart writes the chart page of res to an HTML file at path.
func SaveProfileChart(path string, res *sizing.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = RenderProfileChart(f, res); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
