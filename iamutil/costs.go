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

package iamutil

import (
	"context"
	"fmt"
	"io"

	"github.com/spatialmodel/iamdata/costs"
	"github.com/spatialmodel/iamdata/internal/sheet"
	"github.com/spatialmodel/iamdata/store"
)

// projectCosts loads the inputs in inputDir, which may be a local
// directory or a remote location, and creates cost projections.
func projectCosts(ctx context.Context, cfg costs.Config, inputDir string) (*costs.Projections, error) {
	dir, dirDone, err := maybeDownloadDir(ctx, inputDir, costs.InputTables(cfg), cfg.Log)
	if err != nil {
		return nil, err
	}
	defer dirDone()
	in, err := costs.LoadInputs(dir, cfg)
	if err != nil {
		return nil, err
	}
	return costs.CreateCostProjections(in, cfg)
}

// storeScenario is the name of the store scenario that holds the
// parameters of one scenario version and scenario.
func storeScenario(version, scenario string) string {
	if version == costs.VersionNotApplicable {
		return scenario
	}
	return scenario + " " + version
}

// Costs creates cost projections with cfg from the input tables in
// inputDir and writes the investment and fixed cost tables to invFile
// and fixFile. If storePath is not empty, the inv_cost and fix_cost
// parameters of each scenario are also added to the store, one store
// scenario per scenario version and scenario. A summary is printed to w.
func Costs(ctx context.Context, cfg costs.Config, inputDir, invFile, fixFile, storePath string, w io.Writer) error {
	p, err := projectCosts(ctx, cfg, inputDir)
	if err != nil {
		return err
	}
	var u uploader
	defer u.cleanup()
	inv, fix := u.maybeUpload(invFile), u.maybeUpload(fixFile)
	if u.err != nil {
		return fmt.Errorf("iamutil: preparing upload: %v", u.err)
	}
	if err := p.Write(inv, fix); err != nil {
		return err
	}
	if err := u.upload(ctx); err != nil {
		return err
	}
	if storePath != "" {
		if err := addCosts(ctx, p, storePath); err != nil {
			return err
		}
	}
	renderCosts(w, p.Costs)
	return nil
}

func addCosts(ctx context.Context, p *costs.Projections, storePath string) error {
	type vs struct{ version, scenario string }
	seen := make(map[vs]bool)
	for _, r := range p.Inv {
		k := vs{r.ScenarioVersion, r.Scenario}
		if seen[k] {
			continue
		}
		seen[k] = true
		s, err := store.Open(storePath, storeScenario(k.version, k.scenario))
		if err != nil {
			return err
		}
		if p.Config.Log != nil {
			s.Log = p.Config.Log
		}
		err = s.AddData(ctx, "add technology cost projections", p.Parameters(k.version, k.scenario), false)
		s.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// Regression fits a polynomial of cost against year to the projections
// of each technology and region and writes the coefficients to outFile.
func Regression(ctx context.Context, cfg costs.Config, inputDir, outFile string) error {
	p, err := projectCosts(ctx, cfg, inputDir)
	if err != nil {
		return err
	}
	rows, err := costs.RegressProjections(p.Costs)
	if err != nil {
		return err
	}
	var u uploader
	defer u.cleanup()
	f := u.maybeUpload(outFile)
	if u.err != nil {
		return fmt.Errorf("iamutil: preparing upload: %v", u.err)
	}
	if err := sheet.Write(f, costs.RegressionTable(rows)); err != nil {
		return err
	}
	return u.upload(ctx)
}

// Plot plots the projected investment costs of technology in every region
// for the first scenario version and scenario with data, saving the figure
// to outFile.
func Plot(ctx context.Context, cfg costs.Config, inputDir, technology, outFile string) error {
	p, err := projectCosts(ctx, cfg, inputDir)
	if err != nil {
		return err
	}
	var version, scenario string
	for _, r := range p.Costs {
		if r.Technology == technology {
			version, scenario = r.ScenarioVersion, r.Scenario
			break
		}
	}
	if version == "" {
		return fmt.Errorf("iamutil: no cost projections for technology %q", technology)
	}
	var u uploader
	defer u.cleanup()
	f := u.maybeUpload(outFile)
	if u.err != nil {
		return fmt.Errorf("iamutil: preparing upload: %v", u.err)
	}
	if err := costs.PlotTrajectories(p.Costs, technology, version, scenario, f); err != nil {
		return err
	}
	return u.upload(ctx)
}
