/*
Copyright © 2024 the IAMData authors.
This file is part of IAMData.

IAMData is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

IAMData is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with IAMData.  If not, see <http://www.gnu.org/licenses/>.
*/

package costs

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	figWidth  = 7 * vg.Inch
	figHeight = 4.5 * vg.Inch
)

// PlotTrajectories plots the investment cost of technology in each region
// over time for one scenario version and scenario, saving the figure to
// path. The image format follows the file extension (e.g., .png, .svg, .pdf).
func PlotTrajectories(rows []CostRow, technology, version, scenario, path string) error {
	series := make(map[string]plotter.XYs)
	for _, r := range rows {
		if r.Technology != technology || r.ScenarioVersion != version || r.Scenario != scenario {
			continue
		}
		series[r.Region] = append(series[r.Region], plotter.XY{X: float64(r.Year), Y: r.InvCost})
	}
	if len(series) == 0 {
		return fmt.Errorf("costs: no %s costs to plot for %s %s", technology, version, scenario)
	}
	regions := make([]string, 0, len(series))
	for r := range series {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%s, %s)", technology, scenario, version)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Investment cost (" + Unit + ")"
	p.Add(plotter.NewGrid())
	for i, reg := range regions {
		xy := series[reg]
		sort.Slice(xy, func(a, b int) bool { return xy[a].X < xy[b].X })
		l, err := plotter.NewLine(xy)
		if err != nil {
			return fmt.Errorf("costs: plotting %s: %v", reg, err)
		}
		l.Color = plotutil.Color(i)
		l.Dashes = plotutil.Dashes(i / len(plotutil.DefaultColors))
		p.Add(l)
		p.Legend.Add(reg, l)
	}
	p.Legend.Top = true
	if err := p.Save(figWidth, figHeight, path); err != nil {
		return fmt.Errorf("costs: saving plot: %v", err)
	}
	return nil
}
