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
	"strconv"
	"strings"

	"github.com/spatialmodel/iamdata/internal/sheet"
)

// SectorRow is a technology parameter value from a sector data sheet.
type SectorRow struct {
	Region     string
	Technology string
	// Parameter is the parameter key; see ParameterKey.
	Parameter string
	Species   string
	Units     string
	Value     float64
}

// ReadSectorData reads technology parameters from the sheet named sector
// of the workbook at path. Rows without a value are dropped.
func ReadSectorData(path, sector string) ([]SectorRow, error) {
	t, err := sheet.Read(path, sector, 0)
	if err != nil {
		return nil, err
	}
	c, err := t.Cols("Region", "Technology", "Parameter", "Level", "Commodity", "Mode", "Species", "Units", "Value")
	if err != nil {
		return nil, fmt.Errorf("material: reading %s data: %v", sector, err)
	}
	var o []SectorRow
	for i, r := range t.Rows {
		if r[c[8]] == "" {
			continue
		}
		v, err := t.Float(i, c[8])
		if err != nil {
			return nil, fmt.Errorf("material: reading %s data row %d: %v", sector, i, err)
		}
		var key string
		if r[c[2]] == "emission_factor" {
			key = strings.Join([]string{r[c[2]], r[c[6]], r[c[5]]}, "|")
		} else {
			var parts []string
			for _, j := range []int{c[2], c[4], c[3], c[5]} {
				if r[j] != "" {
					parts = append(parts, r[j])
				}
			}
			key = strings.Join(parts, "|")
		}
		o = append(o, SectorRow{
			Region:     r[c[0]],
			Technology: r[c[1]],
			Parameter:  key,
			Species:    r[c[6]],
			Units:      r[c[7]],
			Value:      v,
		})
	}
	return o, nil
}

// ParameterKey is a parsed parameter key. Keys have the forms
// "input|<commodity>|<level>|<mode>" (likewise for output),
// "emission_factor|<emission>|<mode>", "<parameter>|<mode>" and
// "<parameter>".
type ParameterKey struct {
	Name, Commodity, Level, Mode, Emission string
}

// ParseParameterKey parses a parameter key.
func ParseParameterKey(key string) (ParameterKey, error) {
	s := strings.Split(key, "|")
	k := ParameterKey{Name: s[0]}
	switch {
	case len(s) == 1:
	case k.Name == "input" || k.Name == "output":
		if len(s) != 4 {
			return k, fmt.Errorf("material: invalid %s key %q", k.Name, key)
		}
		k.Commodity, k.Level, k.Mode = s[1], s[2], s[3]
	case k.Name == "emission_factor":
		if len(s) != 3 {
			return k, fmt.Errorf("material: invalid emission factor key %q", key)
		}
		k.Emission, k.Mode = s[1], s[2]
	case len(s) == 2:
		k.Mode = s[1]
	default:
		return k, fmt.Errorf("material: invalid parameter key %q", key)
	}
	return k, nil
}

// TimeseriesRow is a time-dependent technology parameter value.
type TimeseriesRow struct {
	Parameter  string
	Region     string
	Technology string
	Mode       string
	Units      string
	Year       int
	Value      float64
}

// TimeseriesSheet returns the name of the timeseries sheet for scenario.
func TimeseriesSheet(scenario string) string {
	if scenario == "NPi400" {
		return "timeseries_NPi400"
	}
	return "timeseries"
}

// ReadTimeseries reads a sheet with one column per year and returns one
// row per year with a value.
func ReadTimeseries(path, sheetName string) ([]TimeseriesRow, error) {
	t, err := sheet.Read(path, sheetName, 0)
	if err != nil {
		return nil, err
	}
	c, err := t.Cols("parameter", "region", "technology", "mode", "units")
	if err != nil {
		return nil, fmt.Errorf("material: reading timeseries: %v", err)
	}
	years := make(map[int]int) // column -> year
	for j, h := range t.Header {
		if y, err := strconv.ParseFloat(h, 64); err == nil {
			years[j] = int(y)
		}
	}
	var o []TimeseriesRow
	for i, r := range t.Rows {
		for j := range t.Header {
			y, ok := years[j]
			if !ok {
				continue
			}
			v, err := t.Float(i, j)
			if err != nil {
				return nil, fmt.Errorf("material: reading timeseries row %d: %v", i, err)
			}
			if math.IsNaN(v) {
				continue
			}
			o = append(o, TimeseriesRow{
				Parameter:  r[c[0]],
				Region:     r[c[1]],
				Technology: r[c[2]],
				Mode:       r[c[3]],
				Units:      r[c[4]],
				Year:       y,
				Value:      v,
			})
		}
	}
	return o, nil
}

// Relation is a value of a relation parameter.
type Relation struct {
	Relation   string
	Parameter  string
	Technology string
	Value      float64
}

// ReadRelations reads the "relations" sheet of the workbook at path.
func ReadRelations(path string) ([]Relation, error) {
	t, err := sheet.Read(path, "relations", 0)
	if err != nil {
		return nil, err
	}
	c, err := t.Cols("relation", "parameter", "technology", "value")
	if err != nil {
		return nil, fmt.Errorf("material: reading relations: %v", err)
	}
	var o []Relation
	for i, r := range t.Rows {
		v, err := t.Float(i, c[3])
		if err != nil {
			return nil, fmt.Errorf("material: reading relations row %d: %v", i, err)
		}
		o = append(o, Relation{Relation: r[c[0]], Parameter: r[c[1]], Technology: r[c[2]], Value: v})
	}
	return o, nil
}
