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
	"strconv"
	"strings"

	"github.com/spatialmodel/iamdata/internal/sheet"
	"github.com/spatialmodel/iamdata/param"
)

// floorSpace is the variable holding residential floor area.
const floorSpace = "Energy Service|Residential|Floor Space"

// Material use types of buildings.
const (
	MaterialDemand = "Material Demand"
	ScrapRelease   = "Scrap Release"
)

// Intensity is material use per unit of floor area [kg/m2].
type Intensity struct {
	Node      string
	Year      int
	Commodity string
	// Type is MaterialDemand or ScrapRelease.
	Type  string
	Value float64
}

// NodeValue is a value for a node and year.
type NodeValue struct {
	Node      string
	Year      int
	Commodity string
	Value     float64
}

// Buildings holds the material use of residential buildings.
type Buildings struct {
	Intensities []Intensity
	// Area is floor area by node and year.
	Area []NodeValue
	// BaseDemand is material demand by node and commodity in 2020.
	BaseDemand []NodeValue
}

// ReadBuildings reads residential floor area and material flows from an
// IAMC-format CSV file and derives material intensities. Regions are
// prefixed with "R11_".
func ReadBuildings(path string) (*Buildings, error) {
	t, err := sheet.Read(path, "", 0)
	if err != nil {
		return nil, err
	}
	c, err := t.Cols("Region", "Variable")
	if err != nil {
		return nil, fmt.Errorf("material: reading buildings data: %v", err)
	}
	var years []int
	yearCol := make(map[int]int)
	for y := 2015; y <= 2100; y += 5 {
		j, err := t.Col(strconv.Itoa(y))
		if err != nil {
			return nil, fmt.Errorf("material: reading buildings data: %v", err)
		}
		years = append(years, y)
		yearCol[y] = j
	}
	type key struct {
		node string
		year int
	}
	area := make(map[key]float64)
	vars := make(map[key]map[string]float64)
	for i, r := range t.Rows {
		v := r[c[1]]
		if !strings.Contains(v, "Floor Space") && !strings.Contains(v, "Aluminum") &&
			!strings.Contains(v, "Cement") && !strings.Contains(v, "Steel") {
			continue
		}
		node := "R11_" + r[c[0]]
		for _, y := range years {
			val, err := t.Float(i, yearCol[y])
			if err != nil {
				return nil, fmt.Errorf("material: reading buildings data row %d: %v", i, err)
			}
			k := key{node, y}
			if v == floorSpace {
				area[k] = val
				continue
			}
			if vars[k] == nil {
				vars[k] = make(map[string]float64)
			}
			vars[k][v] = val
		}
	}

	b := new(Buildings)
	for k, vv := range vars {
		a, ok := area[k]
		if !ok {
			a = math.NaN()
		}
		for v, val := range vv {
			s := strings.Split(v, "|")
			if len(s) < 4 {
				return nil, fmt.Errorf("material: invalid buildings variable %q", v)
			}
			com := strings.ToLower(s[3])
			if k.year == 2020 && s[0] == MaterialDemand && !math.IsNaN(val) {
				b.BaseDemand = append(b.BaseDemand, NodeValue{Node: k.node, Year: k.year, Commodity: com, Value: val})
			}
			in := val / a
			if math.IsNaN(in) || math.IsInf(in, 0) {
				continue
			}
			b.Intensities = append(b.Intensities, Intensity{Node: k.node, Year: k.year, Commodity: com, Type: s[0], Value: in})
		}
	}
	for k, a := range area {
		if !math.IsNaN(a) {
			b.Area = append(b.Area, NodeValue{Node: k.node, Year: k.year, Value: a})
		}
	}
	sort.Slice(b.Intensities, func(i, j int) bool {
		x, y := b.Intensities[i], b.Intensities[j]
		if x.Node != y.Node {
			return x.Node < y.Node
		}
		if x.Year != y.Year {
			return x.Year < y.Year
		}
		if x.Commodity != y.Commodity {
			return x.Commodity < y.Commodity
		}
		return x.Type < y.Type
	})
	sortNodeValues(b.Area)
	sortNodeValues(b.BaseDemand)
	return b, nil
}

func sortNodeValues(v []NodeValue) {
	sort.Slice(v, func(i, j int) bool {
		if v[i].Node != v[j].Node {
			return v[i].Node < v[j].Node
		}
		if v[i].Year != v[j].Year {
			return v[i].Year < v[j].Year
		}
		return v[i].Commodity < v[j].Commodity
	})
}

// BaseYearDemand returns the 2020 demand for commodity in each node.
func (b *Buildings) BaseYearDemand(commodity string) []NodeValue {
	var o []NodeValue
	for _, v := range b.BaseDemand {
		if v.Commodity == commodity {
			o = append(o, v)
		}
	}
	return o
}

// GenDataBuildings returns parameter data representing material use of
// buildings: inputs of materials, outputs of scrap, an output of the
// service commodity of s and the demand for it given by floor area.
func GenDataBuildings(info *param.Info, s Sector, b *Buildings) (map[string]*param.Data, error) {
	if s.Technology == "" || s.Commodity == "" {
		return nil, fmt.Errorf("material: buildings sector needs a technology and a commodity")
	}
	modelYear := make(map[int]bool)
	for _, y := range info.ModelYears() {
		modelYear[y] = true
	}
	input := &param.Data{Name: "input"}
	output := &param.Data{Name: "output"}
	type nodeYear struct {
		node string
		year int
	}
	service := make(map[nodeYear]bool)
	row := func(node string, year int, commodity, level string, value float64) param.Row {
		return param.Row{Index: map[string]string{
			"node_loc": node, "technology": s.Technology,
			"year_vtg": strconv.Itoa(year), "year_act": strconv.Itoa(year),
			"mode": "M1", "commodity": commodity, "level": level,
			"time": "year", "time_origin": "year", "time_dest": "year",
		}, Value: value, Unit: "t"}
	}
	for _, in := range b.Intensities {
		if !modelYear[in.Year] {
			continue
		}
		switch in.Type {
		case MaterialDemand:
			input.Rows = append(input.Rows, row(in.Node, in.Year, in.Commodity, "demand", in.Value))
			service[nodeYear{in.Node, in.Year}] = true
		case ScrapRelease:
			output.Rows = append(output.Rows, row(in.Node, in.Year, in.Commodity, "old_scrap", in.Value))
		}
	}
	var sy []nodeYear
	for k := range service {
		sy = append(sy, k)
	}
	sort.Slice(sy, func(i, j int) bool {
		if sy[i].node != sy[j].node {
			return sy[i].node < sy[j].node
		}
		return sy[i].year < sy[j].year
	})
	for _, k := range sy {
		output.Rows = append(output.Rows, row(k.node, k.year, s.Commodity, "demand", 1))
	}
	for _, d := range []*param.Data{input, output} {
		d.SameNode()
		for _, r := range d.Rows {
			for _, dim := range []string{"time_origin", "time_dest"} {
				if !contains(d.Dims(), dim) {
					delete(r.Index, dim)
				}
			}
		}
	}
	demand := &param.Data{Name: "demand"}
	for _, a := range b.Area {
		if !modelYear[a.Year] {
			continue
		}
		demand.Rows = append(demand.Rows, param.Row{Index: map[string]string{
			"node": a.Node, "commodity": s.Commodity, "level": "demand",
			"year": strconv.Itoa(a.Year), "time": "year",
		}, Value: a.Value, Unit: "t"})
	}
	return map[string]*param.Data{"input": input, "output": output, "demand": demand}, nil
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
