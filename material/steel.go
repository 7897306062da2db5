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

package material

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/iamdata/param"
	"gonum.org/v1/gonum/interp"
)

// gdpGrowth is the annual average GDP growth rate of each decade from
// 2020 to 2110.
var gdpGrowth = []float64{0.121448215899944, 0.0733079014579874,
	0.0348154093342843, 0.021827616787921,
	0.0134425983942219, 0.0108320197485592,
	0.00884341208063, 0.00829374133206562,
	0.00649794573935969, 0.00649794573935969}

const (
	// steelDemand2010 is steel use in China in 2010 [Mt/year].
	steelDemand2010 = 537.0
	// steelGrowth2010 is the annual GDP growth rate before the first
	// model year.
	steelGrowth2010 = 0.147718884937996
)

// MockSteelDemand returns steel demand [Mt/year] in each model year,
// growing at half the rate of GDP. The first period is 5 years long.
func MockSteelDemand(modelYears []int) ([]float64, error) {
	if len(modelYears) == 0 {
		return nil, nil
	}
	xs := make([]float64, len(gdpGrowth))
	for i := range xs {
		xs[i] = float64(2020 + 10*i)
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, gdpGrowth); err != nil {
		return nil, fmt.Errorf("material: interpolating GDP growth: %v", err)
	}
	o := make([]float64, len(modelYears))
	o[0] = steelDemand2010 * math.Pow(1+steelGrowth2010/2, 5)
	for i := 1; i < len(modelYears); i++ {
		g := predictClamped(&pl, xs, float64(modelYears[i-1]))
		dur := float64(modelYears[i] - modelYears[i-1])
		o[i] = o[i-1] * math.Pow(1+g/2, dur)
	}
	return o, nil
}

// predictClamped holds the end values constant outside the range of xs.
func predictClamped(pl *interp.PiecewiseLinear, xs []float64, x float64) float64 {
	x = math.Max(xs[0], math.Min(xs[len(xs)-1], x))
	return pl.Predict(x)
}

// SteelInputs holds the data read for the steel sector.
type SteelInputs struct {
	Data       []SectorRow
	Timeseries []TimeseriesRow
	Relations  []Relation
}

// ReadSteelInputs reads the steel sector data from the workbook at path.
func ReadSteelInputs(path, scenario string) (*SteelInputs, error) {
	var in SteelInputs
	var err error
	if in.Data, err = ReadSectorData(path, "steel"); err != nil {
		return nil, err
	}
	if in.Timeseries, err = ReadTimeseries(path, TimeseriesSheet(scenario)); err != nil {
		return nil, err
	}
	if in.Relations, err = ReadRelations(path); err != nil {
		return nil, err
	}
	return &in, nil
}

var yearTime = map[string]string{"time": "year", "time_origin": "year", "time_dest": "year"}

// GenDataSteel returns parameter data for the steel sector in the
// scenario described by info.
func GenDataSteel(info *param.Info, s Sector, in *SteelInputs, log logrus.FieldLogger) (map[string]*param.Data, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	nodes := withoutWorld(info.Nodes)
	yvya := info.YVYA()
	modelYears := info.ModelYears()
	results := make(map[string]*param.Data)
	add := func(d *param.Data) {
		if r, ok := results[d.Name]; ok {
			r.Rows = append(r.Rows, d.Rows...)
		} else {
			results[d.Name] = d
		}
	}

	for _, t := range s.Technologies {
		var n int
		for _, ts := range in.Timeseries {
			if ts.Technology != t {
				continue
			}
			idx := map[string]string{
				"technology": t, "mode": ts.Mode,
				"year_vtg": fmt.Sprint(ts.Year), "year_act": fmt.Sprint(ts.Year),
			}
			for k, v := range yearTime {
				idx[k] = v
			}
			d, err := param.Make(ts.Parameter, idx, ts.Value, "t")
			if err != nil {
				return nil, err
			}
			add(d.Broadcast("node_loc", nodes...))
			n++
		}
		seen := make(map[string]bool)
		for _, r := range in.Data {
			if r.Technology != t || seen[r.Parameter] {
				continue
			}
			// The first value of each parameter is used for all nodes.
			seen[r.Parameter] = true
			k, err := ParseParameterKey(r.Parameter)
			if err != nil {
				return nil, err
			}
			idx := map[string]string{"technology": t}
			for dim, l := range yearTime {
				idx[dim] = l
			}
			if k.Mode != "" {
				idx["mode"] = k.Mode
			}
			if k.Commodity != "" {
				idx["commodity"], idx["level"] = k.Commodity, k.Level
			}
			if k.Emission != "" {
				idx["emission"] = k.Emission
			}
			d, err := param.Make(k.Name, idx, r.Value, "t")
			if err != nil {
				return nil, err
			}
			d = d.BroadcastYears(yvya).Broadcast("node_loc", nodes...)
			if k.Name == "input" || k.Name == "output" {
				d.SameNode()
			}
			add(d)
			n++
		}
		log.WithFields(logrus.Fields{"technology": t, "parameters": n}).Debug("material: steel technology data")
	}

	for _, rel := range s.Relations {
		var upperDone bool
		for _, r := range in.Relations {
			if r.Relation != rel {
				continue
			}
			switch r.Parameter {
			case "relation_activity":
				d, err := param.New("relation_activity", map[string]string{
					"relation": rel, "technology": r.Technology, "mode": "M1",
				}, r.Value, "-")
				if err != nil {
					return nil, err
				}
				d = d.Broadcast("node_rel", nodes...).
					Broadcast("node_loc", nodes...).
					Broadcast("year_rel", param.YearLabels(modelYears)...).
					CopyColumn("year_rel", "year_act")
				add(d)
			case "relation_upper":
				if upperDone {
					continue
				}
				upperDone = true
				d, err := param.New("relation_upper", map[string]string{"relation": rel}, r.Value, "-")
				if err != nil {
					return nil, err
				}
				add(d.Broadcast("year_rel", param.YearLabels(modelYears)...).Broadcast("node_rel", nodes...))
			}
		}
	}

	demand, err := MockSteelDemand(modelYears)
	if err != nil {
		return nil, err
	}
	d, err := param.NewSeries("demand", map[string]string{
		"commodity": "steel", "level": "demand", "time": "year",
	}, "year", modelYears, demand, "t")
	if err != nil {
		return nil, err
	}
	add(d.Broadcast("node", nodes...))
	return results, nil
}

func withoutWorld(nodes []string) []string {
	var o []string
	for _, n := range nodes {
		if n != "World" {
			o = append(o, n)
		}
	}
	sort.Strings(o)
	return o
}
