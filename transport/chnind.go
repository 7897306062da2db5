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

// Package transport prepares historical transport statistics for China
// and India and parameter data for transport technologies other than
// light-duty vehicles.
package transport

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ctessum/unit"
	"github.com/spatialmodel/iamdata/internal/sheet"
)

// Row is a tidy transport statistic.
type Row struct {
	ISO      string
	Variable string
	Mode     string
	Units    string
	Year     int
	Value    float64
}

// yearbookFile is an extract of the NBSC statistical yearbook with the
// number of note rows at its end.
type yearbookFile struct {
	name       string
	skipFooter int
}

func yearbookFiles(privateVehicles bool) []yearbookFile {
	f := []yearbookFile{
		{"CHN_activity-passenger.csv", 4},
		{"CHN_stock-civil.csv", 5},
	}
	if privateVehicles {
		f = append(f, yearbookFile{"CHN_stock-private.csv", 1})
	}
	return append(f, yearbookFile{"CHN_activity-freight.csv", 5})
}

// railSubCategories are rail indicators already counted in the rail
// totals.
var railSubCategories = map[string]bool{
	"Freight Ton-Kilometers of National Railways(100 million ton-km)":            true,
	"Freight Ton-Kilometers of Local Railways(100 million ton-km)":               true,
	"Freight Ton-Kilometers of Joint-venture Railways(100 million ton-km)":       true,
	"Passenger-Kilometers of National Railways(100 million passenger-km)":       true,
	"Passenger-Kilometers of Local Railways(100 million passenger-km)":          true,
	"Passenger-Kilometers of Joint-venture Railways(100 million passenger-km)": true,
}

// fillModes are the modes of indicators that have none.
var fillModes = map[string]string{
	"Passenger-Kilometers":   "Total passenger transport",
	"Freight Ton-Kilometers": "Total freight transport",
}

// SplitUnits splits an indicator such as "Possession of Civil
// Vehicles(10000 units)" into its name and units.
func SplitUnits(s string) (name, units string) {
	i := strings.LastIndex(s, "(")
	if i < 0 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s[i+1:]), ")"))
}

// SplitVariable splits a name such as "Passenger-Kilometers of
// Railways" into a variable and a mode. Variables without a mode get the
// mode of their total, if any.
func SplitVariable(s string) (variable, mode string) {
	if i := strings.LastIndex(s, " of "); i >= 0 {
		variable, mode = s[:i], s[i+len(" of "):]
	} else {
		variable = s
	}
	if i := strings.LastIndex(variable, "("); i >= 0 {
		variable = variable[:i]
	}
	if i := strings.LastIndex(mode, "("); i >= 0 {
		mode = mode[:i]
	}
	variable, mode = strings.TrimSpace(variable), strings.TrimSpace(mode)
	if mode == "" {
		mode = fillModes[variable]
	}
	return variable, mode
}

// ReadCHNStatistics reads transport activity and vehicle stocks for
// China from NBSC yearbook extracts in dir. Private vehicles are only
// read if privateVehicles is true, as they are included in civil
// vehicles. Values for 2019 are dropped.
func ReadCHNStatistics(dir string, privateVehicles bool) ([]Row, error) {
	var o []Row
	for _, f := range yearbookFiles(privateVehicles) {
		t, err := sheet.ReadFooter(filepath.Join(dir, f.name), "", 2, f.skipFooter)
		if err != nil {
			return nil, fmt.Errorf("transport: %v", err)
		}
		ind, err := t.Col("Indicators")
		if err != nil {
			return nil, fmt.Errorf("transport: %s: %v", f.name, err)
		}
		for i, r := range t.Rows {
			if railSubCategories[r[ind]] {
				continue
			}
			name, units := SplitUnits(r[ind])
			name = strings.Replace(name, "Possession", "Vehicle Stock", -1)
			variable, mode := SplitVariable(name)
			for j, h := range t.Header {
				if j == ind {
					continue
				}
				y, err := strconv.Atoi(h)
				if err != nil || y == 2019 {
					continue
				}
				v, err := t.Float(i, j)
				if err != nil {
					return nil, fmt.Errorf("transport: %s row %d: %v", f.name, i, err)
				}
				if math.IsNaN(v) {
					continue
				}
				o = append(o, Row{ISO: "CHN", Variable: variable, Mode: mode, Units: units, Year: y, Value: v})
			}
		}
	}
	return o, nil
}

// ReadPopulation reads OECD population data.
func ReadPopulation(path string) ([]Row, error) {
	t, err := sheet.Read(path, "", 0)
	if err != nil {
		return nil, err
	}
	c, err := t.Cols("LOCATION", "Time", "Value")
	if err != nil {
		return nil, fmt.Errorf("transport: reading population: %v", err)
	}
	o := make([]Row, 0, len(t.Rows))
	for i, r := range t.Rows {
		y, err := t.Float(i, c[1])
		if err != nil {
			return nil, fmt.Errorf("transport: reading population row %d: %v", i, err)
		}
		v, err := t.Float(i, c[2])
		if err != nil {
			return nil, fmt.Errorf("transport: reading population row %d: %v", i, err)
		}
		o = append(o, Row{ISO: r[c[0]], Variable: "Population", Units: "persons", Year: int(y), Value: v})
	}
	return o, nil
}

// ReadITEM reads passenger rail activity for India from 2000 to 2018
// from an iTEM database extract in SDMX format.
func ReadITEM(path string) ([]Row, error) {
	t, err := sheet.Read(path, "", 0)
	if err != nil {
		return nil, err
	}
	c, err := t.Cols("REF_AREA", "UNIT", "TIME_PERIOD", "VALUE")
	if err != nil {
		return nil, fmt.Errorf("transport: reading iTEM data: %v", err)
	}
	var o []Row
	for i, r := range t.Rows {
		if r[c[0]] != "IND" {
			continue
		}
		y, err := t.Float(i, c[2])
		if err != nil {
			return nil, fmt.Errorf("transport: reading iTEM data row %d: %v", i, err)
		}
		if y < 2000 || y > 2018 {
			continue
		}
		v, err := t.Float(i, c[3])
		if err != nil {
			return nil, fmt.Errorf("transport: reading iTEM data row %d: %v", i, err)
		}
		o = append(o, Row{ISO: "IND", Variable: "Passenger-Kilometers", Mode: "Railways", Units: r[c[1]], Year: int(y), Value: v})
	}
	return o, nil
}

// conversion converts a variable from its source unit to the output unit.
type conversion struct {
	variable, units string
	from, to        *unit.Unit
	outUnits        string
}

var tonKm = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 1}

// conversions hold the source and output unit sizes of variables in
// the units of the statistics. Passenger distances count as lengths.
var conversions = []conversion{
	{"Population", "persons", unit.New(1, unit.Dimless), unit.New(1e6, unit.Dimless), "million"},
	{"Vehicle Stock", "10000 units", unit.New(1e4, unit.Dimless), unit.New(1e3, unit.Dimless), "thousand vehicle"},
	{"Passenger-Kilometers", "100 million passenger-km", unit.New(1e8*1e3, unit.Meter), unit.New(1e9*1e3, unit.Meter), "gigapkm"},
	{"Freight Ton-Kilometers", "100 million ton-km", unit.New(1e8*1e3*1e3, tonKm), unit.New(1e9*1e3*1e3, tonKm), "gigatkm"},
}

// ConvertUnits converts values to the units used by the model and
// returns rows. Rows in other units are unchanged.
func ConvertUnits(rows []Row) ([]Row, error) {
	for i, r := range rows {
		for _, c := range conversions {
			if r.Variable != c.variable || r.Units != c.units {
				continue
			}
			v := unit.Div(unit.Mul(unit.New(r.Value, unit.Dimless), c.from), c.to)
			if err := v.Check(unit.Dimless); err != nil {
				return nil, fmt.Errorf("transport: converting %s: %v", r.Variable, err)
			}
			rows[i].Value = v.Value()
			rows[i].Units = c.outUnits
		}
	}
	return rows, nil
}

// CHNIND returns transport activity, vehicle stocks and population for
// China and India in the units used by the model, sorted by country,
// year, variable and mode.
func CHNIND(dir, popPath, itemPath string, privateVehicles bool) ([]Row, error) {
	o, err := ReadCHNStatistics(dir, privateVehicles)
	if err != nil {
		return nil, err
	}
	pop, err := ReadPopulation(popPath)
	if err != nil {
		return nil, err
	}
	o = append(o, pop...)
	sortRows(o)
	item, err := ReadITEM(itemPath)
	if err != nil {
		return nil, err
	}
	return ConvertUnits(append(o, item...))
}

func sortRows(o []Row) {
	sort.SliceStable(o, func(i, j int) bool {
		a, b := o[i], o[j]
		if a.ISO != b.ISO {
			return a.ISO < b.ISO
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Variable != b.Variable {
			return a.Variable < b.Variable
		}
		return a.Mode < b.Mode
	})
}

// Table returns rows as a table.
func Table(rows []Row) *sheet.Table {
	t := sheet.New("ISO Code", "Variable", "Mode/vehicle type", "Units", "Year", "Value")
	for _, r := range rows {
		t.Append(r.ISO, r.Variable, r.Mode, r.Units, r.Year, r.Value)
	}
	return t
}
