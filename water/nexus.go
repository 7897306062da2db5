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

package water

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/iamdata/param"
	"github.com/spatialmodel/iamdata/store"
)

// Func generates parameter data for the technologies of a model.
type Func func(info *param.Info, perf []TechPerformance, techs []string) (map[string]*param.Data, error)

// supply holds the commodity and level of each kind of cooling water.
var supply = map[string][2]string{
	"freshwater_supply": {"freshwater", "water_supply"},
	"saline_supply":     {"saline_ppl", "saline_supply"},
}

func index(node, tec string, yv, ya int) map[string]string {
	return map[string]string{
		"node_loc": node, "node_origin": node, "node_dest": node, "technology": tec,
		"year_vtg": fmt.Sprint(yv), "year_act": fmt.Sprint(ya),
		"mode": "M1", "time": "year", "time_origin": "year", "time_dest": "year",
	}
}

func nodes(info *param.Info) []string {
	var o []string
	for _, n := range info.Nodes {
		if n != "World" {
			o = append(o, n)
		}
	}
	sort.Strings(o)
	return o
}

func set(techs []string) map[string]bool {
	o := make(map[string]bool, len(techs))
	for _, t := range techs {
		o[t] = true
	}
	return o
}

// add appends a row for parameter name to data.
func add(data map[string]*param.Data, name string, idx map[string]string, v float64, unit string) error {
	d, err := param.Make(name, idx, v, unit)
	if err != nil {
		return err
	}
	param.Merge(data, map[string]*param.Data{name: d})
	return nil
}

// NonCoolingTec returns the freshwater input of technologies that use
// water for purposes other than cooling and are part of the model.
func NonCoolingTec(info *param.Info, perf []TechPerformance, techs []string) (map[string]*param.Data, error) {
	inModel := set(techs)
	data := make(map[string]*param.Data)
	for _, p := range perf {
		if p.Group == "cooling" || !inModel[p.Name] {
			continue
		}
		v, err := waterIntensity(p.Withdrawal)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(v) {
			continue
		}
		for _, n := range nodes(info) {
			for _, y := range info.YVYA() {
				idx := index(n, p.Name, y[0], y[1])
				idx["commodity"], idx["level"] = "freshwater", "water_supply"
				if err := add(data, "input", idx, v, Unit); err != nil {
					return nil, err
				}
			}
		}
	}
	return data, nil
}

// CoolTech returns the inputs of water and parasitic electricity of
// cooling technologies whose parent technology is part of the model,
// and their output of the parent's cooling commodity.
func CoolTech(info *param.Info, perf []TechPerformance, techs []string) (map[string]*param.Data, error) {
	inModel := set(techs)
	data := make(map[string]*param.Data)
	for _, p := range perf {
		if p.Group != "cooling" || !inModel[p.Parent] {
			continue
		}
		v, err := waterIntensity(p.Withdrawal)
		if err != nil {
			return nil, err
		}
		water, hasWater := supply[p.SupplyType]
		for _, n := range nodes(info) {
			for _, y := range info.YVYA() {
				if hasWater && v > 0 {
					idx := index(n, p.Name, y[0], y[1])
					idx["commodity"], idx["level"] = water[0], water[1]
					if err := add(data, "input", idx, v, Unit); err != nil {
						return nil, err
					}
				}
				if p.Parasitic > 0 {
					idx := index(n, p.Name, y[0], y[1])
					idx["commodity"], idx["level"] = "electr", "secondary"
					if err := add(data, "input", idx, p.Parasitic, "GWa"); err != nil {
						return nil, err
					}
				}
				idx := index(n, p.Name, y[0], y[1])
				idx["commodity"], idx["level"] = "cooling__"+p.Parent, "cooling"
				if err := add(data, "output", idx, 1, "GWa"); err != nil {
					return nil, err
				}
			}
		}
	}
	return data, nil
}

// Funcs holds the data functions of each function set, in the order
// they are applied.
var Funcs = map[string][]struct {
	Name string
	Func Func
}{
	"cooling": {{"cool_tech", CoolTech}},
	"nexus":   {{"cool_tech", CoolTech}, {"non_cooling_tec", NonCoolingTec}},
}

// AddData adds the data generated by each function of function set
// funcSet to the store, one transaction per function.
func AddData(ctx context.Context, s *store.Store, info *param.Info, perf []TechPerformance, funcSet string, dryRun bool, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	funcs, ok := Funcs[funcSet]
	if !ok {
		return fmt.Errorf("water: unknown function set %q", funcSet)
	}
	techs, err := s.Set(ctx, "technology")
	if err != nil {
		return err
	}
	for _, f := range funcs {
		log.WithField("function", f.Name).Info("water: generating data")
		data, err := f.Func(info, perf, techs)
		if err != nil {
			return fmt.Errorf("water: %s: %v", f.Name, err)
		}
		if err := s.AddData(ctx, "water data from "+f.Name, data, dryRun); err != nil {
			return err
		}
	}
	log.Info("water: done")
	return nil
}
