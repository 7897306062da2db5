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
	"github.com/spatialmodel/iamdata/store"
)

// openStore opens scenario in the store at path and reads its structure.
func openStore(ctx context.Context, path, scenario string) (*store.Store, *param.Info, error) {
	s, err := store.Open(path, scenario)
	if err != nil {
		return nil, nil, err
	}
	info, err := s.Info(ctx)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, info, nil
}

// InitStore sets up the structure of scenario in the store at path:
// its nodes, years and first model year, and optionally its
// technologies.
func InitStore(ctx context.Context, path, scenario string, info *param.Info, technologies []string) error {
	s, err := store.Open(path, scenario)
	if err != nil {
		return err
	}
	defer s.Close()
	s.Log.WithFields(logrus.Fields{
		"scenario":       scenario,
		"nodes":          len(info.Nodes),
		"years":          len(info.Years),
		"firstmodelyear": info.Y0,
	}).Info("initializing scenario")
	if err := s.Init(ctx, info); err != nil {
		return err
	}
	if len(technologies) == 0 {
		return nil
	}
	return s.Transact(ctx, "add technologies", func(tx *store.Tx) error {
		return tx.AddSet("technology", technologies...)
	})
}

// StoreLog prints the commit log of scenario in the store at path to w.
func StoreLog(ctx context.Context, path, scenario string, w io.Writer) error {
	s, err := store.Open(path, scenario)
	if err != nil {
		return err
	}
	defer s.Close()
	commits, err := s.Commits(ctx)
	if err != nil {
		return err
	}
	renderCommits(w, scenario, commits)
	return nil
}
