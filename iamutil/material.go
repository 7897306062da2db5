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
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/iamdata/material"
	"github.com/spatialmodel/iamdata/param"
)

// sectorConfig downloads and reads the materials configuration file and
// returns the configuration of sector.
func sectorConfig(ctx context.Context, configFile, sector string) (*material.Config, material.Sector, error) {
	f, done, err := maybeDownload(ctx, configFile, logrus.StandardLogger())
	if err != nil {
		return nil, material.Sector{}, err
	}
	defer done()
	cfg, err := material.LoadConfig(f)
	if err != nil {
		return nil, material.Sector{}, err
	}
	s, err := cfg.Sector(sector)
	return cfg, s, err
}

// addSectorData generates the data of a sector with gen and adds it to
// scenario in the store at storePath.
func addSectorData(ctx context.Context, storePath, scenario, sector string, dryRun bool, w io.Writer,
	gen func(info *param.Info) (map[string]*param.Data, error)) error {
	s, info, err := openStore(ctx, storePath, scenario)
	if err != nil {
		return err
	}
	defer s.Close()
	data, err := gen(info)
	if err != nil {
		return err
	}
	if err := s.AddData(ctx, "add "+sector+" sector data", data, dryRun); err != nil {
		return err
	}
	renderData(w, sector, data)
	return nil
}

// Steel adds the steel sector data in the workbook dataFile to scenario
// in the store at storePath, using the sector definition in configFile.
func Steel(ctx context.Context, storePath, scenario, configFile, dataFile string, dryRun bool, w io.Writer) error {
	cfg, sector, err := sectorConfig(ctx, configFile, "steel")
	if err != nil {
		return err
	}
	f, done, err := maybeDownload(ctx, dataFile, logrus.StandardLogger())
	if err != nil {
		return err
	}
	defer done()
	in, err := material.ReadSteelInputs(f, cfg.Scenario)
	if err != nil {
		return err
	}
	return addSectorData(ctx, storePath, scenario, "steel", dryRun, w, func(info *param.Info) (map[string]*param.Data, error) {
		return material.GenDataSteel(info, sector, in, logrus.StandardLogger())
	})
}

// Buildings adds the buildings material demand and scrap data derived
// from the IAMC table in dataFile to scenario in the store at storePath.
func Buildings(ctx context.Context, storePath, scenario, configFile, dataFile string, dryRun bool, w io.Writer) error {
	_, sector, err := sectorConfig(ctx, configFile, "buildings")
	if err != nil {
		return err
	}
	f, done, err := maybeDownload(ctx, dataFile, logrus.StandardLogger())
	if err != nil {
		return err
	}
	defer done()
	b, err := material.ReadBuildings(f)
	if err != nil {
		return err
	}
	return addSectorData(ctx, storePath, scenario, "buildings", dryRun, w, func(info *param.Info) (map[string]*param.Data, error) {
		return material.GenDataBuildings(info, sector, b)
	})
}

// Industry computes industry final energy shares from the IEA extract in
// dataFile and, unless dryRun is true, adjusts demand and historical
// activity of scenario in the store at storePath by them.
func Industry(ctx context.Context, storePath, scenario, dataFile string, dryRun bool, w io.Writer) error {
	f, done, err := maybeDownload(ctx, dataFile, logrus.StandardLogger())
	if err != nil {
		return err
	}
	defer done()
	rows, err := material.ReadIndustryEnergy(f)
	if err != nil {
		return err
	}
	sh, err := material.IndustryShares(rows)
	if err != nil {
		return err
	}
	renderShares(w, sh)
	if dryRun {
		return nil
	}
	s, _, err := openStore(ctx, storePath, scenario)
	if err != nil {
		return err
	}
	defer s.Close()
	return material.ModifyDemandAndHistActivity(ctx, s, sh, s.Log)
}
