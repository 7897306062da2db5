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

package cloud

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// tempBucket creates a directory in the working directory that
// can be opened as a file bucket.
func tempBucket(t *testing.T) string {
	dir, err := os.MkdirTemp(".", "bucket")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Base(dir)
}

func TestIsBlob(t *testing.T) {
	for path, want := range map[string]bool{
		"gs://b/k.csv":    true,
		"s3://b/k.csv":    true,
		"file://b/k.csv":  true,
		"http://b/k.csv":  false,
		"testdata/k.csv":  false,
		"/tmp/gs://k.csv": false,
	} {
		if got := IsBlob(path); got != want {
			t.Errorf("%s: have %v, want %v", path, got, want)
		}
	}
}

func TestSplit(t *testing.T) {
	b, k, err := Split("gs://inputs/costs/weo_costs.csv")
	if err != nil {
		t.Fatal(err)
	}
	if b != "gs://inputs" || k != "costs/weo_costs.csv" {
		t.Errorf("have %s %s", b, k)
	}
	if _, _, err := Split("gs://inputs"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestOpenBucketInvalid(t *testing.T) {
	if _, err := OpenBucket(context.Background(), "ftp://x"); err == nil {
		t.Error("expected error for invalid provider")
	}
}

func TestUploadDownload(t *testing.T) {
	ctx := context.Background()
	path := "file://" + tempBucket(t) + "/out/inv_cost.csv"
	const content = "node_loc,technology,year_vtg,value,unit\nR12_NAM,coal_ppl,2020,1500,USD_2005/kW\n"
	if err := Upload(ctx, strings.NewReader(content), path); err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := Download(ctx, path, &b); err != nil {
		t.Fatal(err)
	}
	if b.String() != content {
		t.Errorf("have %q, want %q", b.String(), content)
	}
	if err := Download(ctx, path+".missing", &b); err == nil {
		t.Error("expected error for missing blob")
	}
}
