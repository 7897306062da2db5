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

// Package costs projects investment and fixed operating costs of energy
// technologies for every region of the model through the end of the
// century. Regional cost differences in a base year are combined with
// learning-rate cost reductions in a reference region and, depending on
// the method, adjusted for GDP per capita or converged to the reference
// region's costs.
package costs

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Years that bound the projections.
const (
	// BaseYear is the year of the source cost data.
	BaseYear = 2021
	// FirstModelYear is the first year projected costs differ from base
	// year costs.
	FirstModelYear = 2020
	// LastModelYear is the year cost reductions are fully realized.
	LastModelYear = 2100
	// TimeStep is the spacing of projection years.
	TimeStep = 5
	// HorizonStart and HorizonEnd bound the vintage years of
	// model parameter output.
	HorizonStart = 1960
	HorizonEnd   = 2110
)

// PreLastYearRate is the fraction of the cost in the last model year that
// costs decay toward but never reach.
const PreLastYearRate = 0.01

// Scenario versions.
const (
	VersionUpdated       = "Review (2023)"
	VersionOriginal      = "Previous (2013)"
	VersionNotApplicable = "Not applicable"
)

// AllScenarios lists the socioeconomic scenarios in output order.
var AllScenarios = []string{"SSP1", "SSP2", "SSP3", "SSP4", "SSP5", "LED"}

// Config specifies a cost projection.
type Config struct {
	// Node is the regional aggregation: R11, R12 or R20.
	Node string

	// RefRegion is the region whose costs the learning rates apply to.
	// It defaults to the North America region of Node.
	RefRegion string

	// BaseYear is the year of the source cost and GDP data.
	BaseYear int

	// Module is "energy" or "materials"; materials adds
	// materials-industry technologies.
	Module string

	// Method is "learning", "gdp" or "convergence".
	Method string

	// ScenarioVersion is "updated", "original" or "all".
	// It only applies to the gdp method.
	ScenarioVersion string

	// Scenario is one of SSP1-SSP5 or LED, or "all".
	Scenario string

	// ConvergenceYear is the year regional costs reach the reference
	// region's costs with the convergence method.
	ConvergenceYear int

	// FOMRate is the annual rate of change of fixed operating costs
	// over the life of a vintage.
	FOMRate float64

	// Format is "message" for model parameters or "iamc" for
	// reporting tables.
	Format string

	// Log receives progress messages and data warnings.
	Log logrus.FieldLogger
}

// DefaultConfig returns the default projection configuration.
func DefaultConfig() Config {
	return Config{
		Node:            "R12",
		BaseYear:        BaseYear,
		Module:          "energy",
		Method:          "gdp",
		ScenarioVersion: "updated",
		Scenario:        "all",
		ConvergenceYear: 2050,
		FOMRate:         0.025,
		Format:          "message",
	}
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

// Check validates c, normalizing case and filling in the default
// reference region.
func (c *Config) Check() error {
	c.Node = strings.ToUpper(c.Node)
	if !oneOf(c.Node, "R11", "R12", "R20") {
		return fmt.Errorf("costs: invalid node %q; must be R11, R12 or R20", c.Node)
	}
	if c.RefRegion == "" {
		c.RefRegion = c.Node + "_NAM"
	}
	c.RefRegion = strings.ToUpper(c.RefRegion)
	if !strings.HasPrefix(c.RefRegion, c.Node+"_") {
		return fmt.Errorf("costs: reference region %s is not a %s region", c.RefRegion, c.Node)
	}
	c.Method = strings.ToLower(c.Method)
	if !oneOf(c.Method, "learning", "gdp", "convergence") {
		return fmt.Errorf("costs: invalid method %q; must be learning, gdp or convergence", c.Method)
	}
	c.Module = strings.ToLower(c.Module)
	if !oneOf(c.Module, "energy", "materials") {
		return fmt.Errorf("costs: invalid module %q; must be energy or materials", c.Module)
	}
	if !strings.EqualFold(c.Scenario, "all") {
		c.Scenario = strings.ToUpper(c.Scenario)
		if !oneOf(c.Scenario, AllScenarios...) {
			return fmt.Errorf("costs: invalid scenario %q", c.Scenario)
		}
	} else {
		c.Scenario = "all"
	}
	c.ScenarioVersion = strings.ToLower(c.ScenarioVersion)
	if !oneOf(c.ScenarioVersion, "all", "updated", "original") {
		return fmt.Errorf("costs: invalid scenario version %q; must be all, updated or original", c.ScenarioVersion)
	}
	c.Format = strings.ToLower(c.Format)
	if !oneOf(c.Format, "message", "iamc") {
		return fmt.Errorf("costs: invalid format %q; must be message or iamc", c.Format)
	}
	if c.ConvergenceYear <= FirstModelYear || c.ConvergenceYear > LastModelYear {
		return fmt.Errorf("costs: convergence year %d must be after %d and no later than %d",
			c.ConvergenceYear, FirstModelYear, LastModelYear)
	}
	if c.FOMRate <= -1 {
		return fmt.Errorf("costs: fixed cost rate %g must be greater than -1", c.FOMRate)
	}
	if c.BaseYear == 0 {
		c.BaseYear = BaseYear
	}
	return nil
}

// Scenarios returns the selected scenarios.
func (c *Config) Scenarios() []string {
	if c.Scenario == "all" {
		return AllScenarios
	}
	return []string{c.Scenario}
}

// ScenarioVersions returns the selected scenario versions.
func (c *Config) ScenarioVersions() []string {
	switch c.ScenarioVersion {
	case "updated":
		return []string{VersionUpdated}
	case "original":
		return []string{VersionOriginal}
	default:
		return []string{VersionUpdated, VersionOriginal}
	}
}

func (c *Config) log() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// Fields returns the configuration as log fields.
func (c *Config) Fields() logrus.Fields {
	return logrus.Fields{
		"node":             c.Node,
		"ref_region":       c.RefRegion,
		"base_year":        c.BaseYear,
		"module":           c.Module,
		"method":           c.Method,
		"scenario_version": c.ScenarioVersion,
		"scenario":         c.Scenario,
		"convergence_year": c.ConvergenceYear,
		"fom_rate":         c.FOMRate,
		"format":           c.Format,
	}
}

// projectionYears returns the projection years.
func projectionYears() []int {
	var o []int
	for y := FirstModelYear; y <= LastModelYear; y += TimeStep {
		o = append(o, y)
	}
	return o
}
