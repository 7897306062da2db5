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

// Package water prepares data on the water use of power plants for the
// water-energy nexus version of the energy model.
package water

import (
	"fmt"
	"math"

	"github.com/ctessum/unit"
	"github.com/spatialmodel/iamdata/internal/sheet"
)

// TechPerformance describes the water use of a technology.
type TechPerformance struct {
	Group  string
	Name   string
	Parent string
	// SupplyType is the kind of water used, e.g. "freshwater_supply".
	SupplyType string
	// Withdrawal is the water withdrawal [m3/GJ of output].
	Withdrawal float64
	// Parasitic is the fraction of output used as electricity for
	// cooling.
	Parasitic float64
}

// ReadTechPerformance reads technology water performance data.
func ReadTechPerformance(path string) ([]TechPerformance, error) {
	t, err := sheet.Read(path, "", 0)
	if err != nil {
		return nil, err
	}
	c, err := t.Cols("technology_group", "technology_name", "parent_technology", "water_supply_type",
		"water_withdrawal_mid_m3_per_output", "parasitic_electricity_demand_fraction")
	if err != nil {
		return nil, fmt.Errorf("water: reading technology performance: %v", err)
	}
	o := make([]TechPerformance, len(t.Rows))
	for i, r := range t.Rows {
		o[i] = TechPerformance{Group: r[c[0]], Name: r[c[1]], Parent: r[c[2]], SupplyType: r[c[3]]}
		if o[i].Withdrawal, err = t.Float(i, c[4]); err != nil {
			return nil, fmt.Errorf("water: reading technology performance row %d: %v", i, err)
		}
		if o[i].Parasitic, err = t.Float(i, c[5]); err != nil {
			return nil, fmt.Errorf("water: reading technology performance row %d: %v", i, err)
		}
	}
	return o, nil
}

const (
	secondsPerYear = 365 * 24 * 60 * 60
	// Unit is the unit of water flows per unit of activity.
	Unit = "MCM/GWa"
)

// waterIntensity converts a water intensity in m3/GJ to MCM/GWa.
func waterIntensity(m3PerGJ float64) (float64, error) {
	if math.IsNaN(m3PerGJ) {
		return m3PerGJ, nil
	}
	m3 := unit.New(m3PerGJ, unit.Meter3)
	gj := unit.New(1e9, unit.Joule)
	v := unit.Div(m3, gj)
	mcm := unit.New(1e6, unit.Meter3)
	gwa := unit.Mul(unit.New(1e9, unit.Watt), unit.New(secondsPerYear, unit.Second))
	ref := unit.Div(mcm, gwa)
	if !unit.DimensionsMatch(v, ref) {
		return 0, fmt.Errorf("water: converting %v to %s", v, Unit)
	}
	return v.Value() / ref.Value(), nil
}
