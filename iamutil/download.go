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
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/iamdata/cloud"
)

// maxRetries is the number of times a failed download is retried.
const maxRetries = 4

func isHTTP(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

func isRemote(p string) bool { return isHTTP(p) || cloud.IsBlob(p) }

// maybeDownload checks if path is an existing local file. If not, and
// path is a URL or a blob storage location, it downloads the file to
// a temporary directory and returns the path to the downloaded file.
// Any other path is returned unchanged. The returned function removes
// the temporary directory and must be called once the file has been read.
func maybeDownload(ctx context.Context, p string, log logrus.FieldLogger) (string, func(), error) {
	if _, err := os.Stat(p); err == nil || !isRemote(p) {
		return p, func() {}, nil
	}
	u, err := url.Parse(p)
	if err != nil {
		return p, nil, fmt.Errorf("iamutil: parsing download location: %v", err)
	}
	dir, err := os.MkdirTemp("", "iamdata")
	if err != nil {
		return p, nil, fmt.Errorf("iamutil: creating temporary download directory: %v", err)
	}
	done := func() { os.RemoveAll(dir) }
	dst := filepath.Join(dir, path.Base(u.Path))
	if err := fetch(ctx, p, dst, log); err != nil {
		done()
		return p, nil, err
	}
	return dst, done, nil
}

// maybeDownloadDir downloads the CSV files for each of names from
// a remote directory to a temporary directory and returns the temporary
// directory and a function that removes it. Local directories are
// returned unchanged.
func maybeDownloadDir(ctx context.Context, dir string, names []string, log logrus.FieldLogger) (string, func(), error) {
	if !isRemote(dir) {
		return dir, func() {}, nil
	}
	tmp, err := os.MkdirTemp("", "iamdata")
	if err != nil {
		return dir, nil, fmt.Errorf("iamutil: creating temporary download directory: %v", err)
	}
	done := func() { os.RemoveAll(tmp) }
	for _, name := range names {
		src := strings.TrimSuffix(dir, "/") + "/" + name + ".csv"
		if err := fetch(ctx, src, filepath.Join(tmp, name+".csv"), log); err != nil {
			done()
			return dir, nil, err
		}
	}
	return tmp, done, nil
}

// fetch downloads src to the local file dst, retrying with exponential
// backoff on failure.
func fetch(ctx context.Context, src, dst string, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	w, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("iamutil: creating file for download: %v", err)
	}
	defer w.Close()
	log.WithFields(logrus.Fields{"source": src, "destination": dst}).Info("downloading")
	err = backoff.RetryNotify(
		func() error {
			if err := w.Truncate(0); err != nil {
				return backoff.Permanent(err)
			}
			if _, err := w.Seek(0, io.SeekStart); err != nil {
				return backoff.Permanent(err)
			}
			if isHTTP(src) {
				return downloadHTTP(ctx, src, w)
			}
			return cloud.Download(ctx, src, w)
		},
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries),
		func(err error, d time.Duration) {
			log.WithField("source", src).Warnf("%v: retrying in %v", err, d)
		},
	)
	if err != nil {
		return fmt.Errorf("iamutil: downloading %s: %v", src, err)
	}
	return nil
}

// downloadHTTP copies the body of the response from url to w.
// Client errors are not retried.
func downloadHTTP(ctx context.Context, url string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return backoff.Permanent(fmt.Errorf("%s: %s", url, resp.Status))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", url, resp.Status)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}
