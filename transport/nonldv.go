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

package transport

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/unit"
	"github.com/spatialmodel/iamdata/param"
)

// Technology is a transport technology.
type Technology struct {
	ID string `toml:"id"`
	// Mode is the transport mode the technology belongs to,
	// e.g. "2W", "BUS", "RAIL".
	Mode string `toml:"mode"`
	// Input is the commodity the technology uses.
	Input string `toml:"input"`
}

// Minimum is a minimum activity of technologies of a group of modes
// using a commodity in a node.
type Minimum struct {
	Node string `toml:"node"`
	// Modes is "ROAD" for road modes; anything else means rail.
	Modes     string  `toml:"modes"`
	Commodity string  `toml:"commodity"`
	Value     float64 `toml:"value"`
}

// Energy is the base-year final energy use of other transport of a
// commodity in a node, in TJ.
type Energy struct {
	Node      string  `toml:"node"`
	Commodity string  `toml:"commodity"`
	Value     float64 `toml:"value"`
}

// GDPIndex is the GDP (PPP) of a node in a year relative to the base year.
type GDPIndex struct {
	Node  string  `toml:"node"`
	Year  int     `toml:"year"`
	Value float64 `toml:"value"`
}

// Config configures the non-LDV transport data.
type Config struct {
	// Modes are the transport modes.
	Modes []string `toml:"modes"`
	// LoadFactor is the load factor of each mode, by upper-case mode name.
	LoadFactor      map[string]float64 `toml:"load_factor"`
	Technologies    []Technology       `toml:"technology"`
	MinimumActivity []Minimum          `toml:"minimum_activity"`
	OtherEnergy     []Energy           `toml:"other_energy"`
	GDPIndex        []GDPIndex         `toml:"gdp_index"`
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	cfg := new(Config)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("transport: reading configuration file %s: %v", path, err)
	}
	return cfg, nil
}

func nodes(info *param.Info) []string {
	var o []string
	for _, n := range info.Nodes {
		if n != "World" {
			o = append(o, n)
		}
	}
	return o
}

// TwoWheelerDummies returns output data with value 1 for 2-wheeler
// technologies from 2010 on, and matching capacity factors and variable
// costs of 1.
func TwoWheelerDummies(info *param.Info, techs []Technology) (map[string]*param.Data, error) {
	var ids []string
	for _, t := range techs {
		if t.Mode == "2W" {
			ids = append(ids, t.ID)
		}
	}
	output := &param.Data{Name: "output"}
	for _, y := range info.Years {
		if y < 2010 {
			continue
		}
		d, err := param.New("output", map[string]string{
			"commodity": "transport vehicle 2w", "level": "useful", "mode": "all",
			"year_vtg": fmt.Sprint(y), "year_act": fmt.Sprint(y),
			"time": "year", "time_dest": "year",
		}, 1, "Gv km")
		if err != nil {
			return nil, err
		}
		output.Rows = append(output.Rows, d.Rows...)
	}
	output = output.Broadcast("node_loc", nodes(info)...).Broadcast("technology", ids...).SameNode()
	data, err := param.MakeMatched(output, map[string]param.Value{
		"capacity_factor": {Value: 1},
		"var_cost":        {Value: 1},
	})
	if err != nil {
		return nil, err
	}
	data["output"] = output
	return data, nil
}

// UsageData returns data for the usage technologies of each mode other
// than LDV, which convert vehicle distance into passenger distance
// using the load factor of the mode.
func UsageData(loadFactor map[string]float64, modes, nodes []string, years []int) (map[string]*param.Data, error) {
	data := make(map[string]*param.Data)
	for _, m := range modes {
		if m == "LDV" {
			continue
		}
		lf, ok := loadFactor[strings.ToUpper(m)]
		if !ok {
			return nil, fmt.Errorf("transport: no load factor for mode %s", m)
		}
		lower := strings.ToLower(m)
		for _, y := range years {
			in, out, err := param.MakeIO(
				param.Commodity{Commodity: "transport vehicle " + lower, Level: "useful", Unit: "Gv km"},
				param.Commodity{Commodity: "transport pax " + lower, Level: "useful", Unit: "Gp km"},
				lf, "output", map[string]string{
					"technology": "transport " + lower + " usage",
					"year_vtg":   fmt.Sprint(y), "year_act": fmt.Sprint(y),
					"mode": "all", "time": "year",
				})
			if err != nil {
				return nil, err
			}
			param.Merge(data, map[string]*param.Data{"input": in, "output": out})
		}
	}
	for k, d := range data {
		data[k] = d.Broadcast("node_loc", nodes...).SameNode().SameTime()
	}
	return data, nil
}

// roadModes are the modes with technologies constrained by a "ROAD"
// minimum activity.
var roadModes = []string{"2W", "BUS", "LDV", "freight truck"}

// MinimumActivity returns lower bounds on the activity in year y0 of
// the technologies of each minimum that use its commodity.
func MinimumActivity(minimum []Minimum, techs []Technology, y0 int) (*param.Data, error) {
	d := &param.Data{Name: "bound_activity_lo"}
	for _, m := range minimum {
		modes := []string{"RAIL"}
		if m.Modes == "ROAD" {
			modes = roadModes
		}
		for _, mode := range modes {
			for _, t := range techs {
				if t.Mode != mode || t.Input != m.Commodity {
					continue
				}
				r, err := param.New("bound_activity_lo", map[string]string{
					"node_loc": m.Node, "technology": t.ID, "year_act": fmt.Sprint(y0),
					"mode": "all", "time": "year",
				}, m.Value, "GWa")
				if err != nil {
					return nil, err
				}
				d.Rows = append(d.Rows, r.Rows...)
			}
		}
	}
	return d, nil
}

const secondsPerYear = 365 * 24 * 60 * 60

// toGWa converts an energy in TJ to GWa.
func toGWa(tj float64) (float64, error) {
	gwa := unit.Mul(unit.New(1e9, unit.Watt), unit.New(secondsPerYear, unit.Second))
	v := unit.Div(unit.New(tj*1e12, unit.Joule), gwa)
	if err := v.Check(unit.Dimless); err != nil {
		return 0, fmt.Errorf("transport: converting %g TJ to GWa: %v", tj, err)
	}
	return v.Value(), nil
}

// OtherTransport returns data for the "transport other" technologies,
// which are those with "other" in their ID. Each one's activity in
// every model year is bounded from below by the base-year energy use
// of its input commodity scaled by the GDP index of the node, and it
// takes one GWa of that commodity at the final level per unit of
// activity. Nodes without a GDP index for a year get no data for it.
func OtherTransport(info *param.Info, energy []Energy, gdp []GDPIndex, techs []Technology) (map[string]*param.Data, error) {
	years := make(map[int]bool)
	for _, y := range info.ModelYears() {
		years[y] = true
	}
	bal := &param.Data{Name: "bound_activity_lo"}
	input := &param.Data{Name: "input"}
	for _, t := range techs {
		if !strings.Contains(t.ID, "other") {
			continue
		}
		for _, e := range energy {
			if e.Commodity != t.Input {
				continue
			}
			v, err := toGWa(e.Value)
			if err != nil {
				return nil, err
			}
			for _, g := range gdp {
				if g.Node != e.Node || !years[g.Year] {
					continue
				}
				y := fmt.Sprint(g.Year)
				b, err := param.New("bound_activity_lo", map[string]string{
					"node_loc": e.Node, "technology": t.ID, "year_act": y,
					"mode": "all", "time": "year",
				}, v*g.Value, "GWa")
				if err != nil {
					return nil, err
				}
				bal.Rows = append(bal.Rows, b.Rows...)
				in, err := param.New("input", map[string]string{
					"node_loc": e.Node, "node_origin": e.Node, "technology": t.ID,
					"year_vtg": y, "year_act": y, "mode": "all",
					"commodity": e.Commodity, "level": "final",
					"time": "year", "time_origin": "year",
				}, 1, "GWa")
				if err != nil {
					return nil, err
				}
				input.Rows = append(input.Rows, in.Rows...)
			}
		}
	}
	return map[string]*param.Data{"bound_activity_lo": bal, "input": input}, nil
}

// NonLDV returns all data for non-LDV transport.
func NonLDV(info *param.Info, cfg *Config) (map[string]*param.Data, error) {
	data, err := TwoWheelerDummies(info, cfg.Technologies)
	if err != nil {
		return nil, err
	}
	usage, err := UsageData(cfg.LoadFactor, cfg.Modes, nodes(info), info.ModelYears())
	if err != nil {
		return nil, err
	}
	bal, err := MinimumActivity(cfg.MinimumActivity, cfg.Technologies, info.Y0)
	if err != nil {
		return nil, err
	}
	other, err := OtherTransport(info, cfg.OtherEnergy, cfg.GDPIndex, cfg.Technologies)
	if err != nil {
		return nil, err
	}
	param.Merge(data, usage, map[string]*param.Data{"bound_activity_lo": bal}, other)
	return data, nil
}
