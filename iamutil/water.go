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
	"github.com/spatialmodel/iamdata/param"
	"github.com/spatialmodel/iamdata/water"
)

// Water adds the data of the water function set funcSet, derived from the
// technology performance table in perfFile, to scenario in the store at
// storePath. The number of input and output rows of the scenario
// is printed to w.
func Water(ctx context.Context, storePath, scenario, perfFile, funcSet string, dryRun bool, w io.Writer) error {
	f, done, err := maybeDownload(ctx, perfFile, logrus.StandardLogger())
	if err != nil {
		return err
	}
	defer done()
	perf, err := water.ReadTechPerformance(f)
	if err != nil {
		return err
	}
	s, info, err := openStore(ctx, storePath, scenario)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := water.AddData(ctx, s, info, perf, funcSet, dryRun, s.Log); err != nil {
		return err
	}
	if dryRun {
		return nil
	}
	data := make(map[string]*param.Data)
	for _, name := range []string{"input", "output"} {
		if data[name], err = s.Par(ctx, name, nil); err != nil {
			return err
		}
	}
	renderData(w, "water ("+funcSet+")", data)
	return nil
}
