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
	"os"
	"path"
	"path/filepath"

	"github.com/spatialmodel/iamdata/cloud"
)

type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	err   error
	dir   string
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// the upload method is run.
func (u *uploader) maybeUpload(p string) string {
	if u.err != nil {
		return ""
	}
	if !cloud.IsBlob(p) {
		return p
	}
	if u.dir == "" {
		u.dir, u.err = os.MkdirTemp("", "iamdata")
		if u.err != nil {
			return ""
		}
	}
	// Prefix with the index so that outputs with the same base name
	// in different buckets don't collide.
	local := filepath.Join(u.dir, fmt.Sprintf("%d_%s", len(u.files), path.Base(p)))
	u.files = append(u.files, [2]string{local, p})
	return local
}

// upload copies every registered file to blob storage.
func (u *uploader) upload(ctx context.Context) error {
	if u.err != nil {
		return u.err
	}
	for _, files := range u.files {
		if err := uploadFile(ctx, files[0], files[1]); err != nil {
			return err
		}
	}
	return nil
}

func uploadFile(ctx context.Context, local, remote string) error {
	r, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("iamutil: opening file '%s' for upload: %v", local, err)
	}
	defer r.Close()
	if err := cloud.Upload(ctx, r, remote); err != nil {
		return fmt.Errorf("iamutil: uploading file '%s' to '%s': %v", local, remote, err)
	}
	return nil
}

// cleanup removes the temporary files of u.
func (u *uploader) cleanup() {
	if u.dir != "" {
		os.RemoveAll(u.dir)
	}
}
