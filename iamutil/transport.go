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

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/iamdata/internal/sheet"
	"github.com/spatialmodel/iamdata/param"
	"github.com/spatialmodel/iamdata/transport"
)

// CHNIND writes the tidy transport statistics for China and India to
// outFile. nbscDir holds the Chinese yearbook tables, popFile the OECD
// population table and itemFile the iTEM database extract.
func CHNIND(ctx context.Context, nbscDir, popFile, itemFile string, privateVehicles bool, outFile string, w io.Writer) error {
	log := logrus.StandardLogger()
	pop, popDone, err := maybeDownload(ctx, popFile, log)
	if err != nil {
		return err
	}
	defer popDone()
	item, itemDone, err := maybeDownload(ctx, itemFile, log)
	if err != nil {
		return err
	}
	defer itemDone()
	rows, err := transport.CHNIND(nbscDir, pop, item, privateVehicles)
	if err != nil {
		return err
	}
	var u uploader
	defer u.cleanup()
	f := u.maybeUpload(outFile)
	if u.err != nil {
		return fmt.Errorf("iamutil: preparing upload: %v", u.err)
	}
	if err := sheet.Write(f, transport.Table(rows)); err != nil {
		return err
	}
	if err := u.upload(ctx); err != nil {
		return err
	}
	renderTransport(w, rows)
	return nil
}

// NonLDV adds the non-LDV transport data configured in configFile to
// scenario in the store at storePath. Entries in loadFactor override the
// configured load factors.
func NonLDV(ctx context.Context, storePath, scenario, configFile string, loadFactor map[string]float64, dryRun bool, w io.Writer) error {
	f, done, err := maybeDownload(ctx, configFile, logrus.StandardLogger())
	if err != nil {
		return err
	}
	defer done()
	cfg, err := transport.LoadConfig(f)
	if err != nil {
		return err
	}
	if cfg.LoadFactor == nil {
		cfg.LoadFactor = make(map[string]float64)
	}
	for mode, v := range loadFactor {
		cfg.LoadFactor[mode] = v
	}
	return addSectorData(ctx, storePath, scenario, "non-LDV transport", dryRun, w, func(info *param.Info) (map[string]*param.Data, error) {
		return transport.NonLDV(info, cfg)
	})
}
