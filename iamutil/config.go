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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/iamdata/cloud"
	"github.com/spatialmodel/iamdata/costs"
	"github.com/spatialmodel/iamdata/param"
	"github.com/spf13/cast"
)

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkOutputFile makes sure that the output file is specified and its
// directory (or bucket) exists, and expands any environment variables.
func checkOutputFile(name, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("iamutil: you need to specify the %s configuration variable", name)
	}
	f = os.ExpandEnv(f)
	if cloud.IsBlob(f) {
		bucketURL, _, err := cloud.Split(f)
		if err != nil {
			return f, err
		}
		b, err := cloud.OpenBucket(context.TODO(), bucketURL)
		if err != nil {
			return f, fmt.Errorf("iamutil: checking %s location: %v", name, err)
		}
		return f, b.Close()
	}
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("iamutil: the %s directory doesn't exist: %v", name, err)
	}
	return f, nil
}

// checkInputFile makes sure that the input file is specified and expands
// any environment variables.
func checkInputFile(name, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("iamutil: you need to specify the %s configuration variable", name)
	}
	return os.ExpandEnv(f), nil
}

// costsConfig returns the cost projection configuration held in cfg.
func costsConfig(cfg *viper.Viper) (costs.Config, error) {
	c := costs.DefaultConfig()
	c.Node = cfg.GetString("costs.node")
	c.RefRegion = cfg.GetString("costs.ref_region")
	c.Module = cfg.GetString("costs.module")
	c.Method = cfg.GetString("costs.method")
	c.ScenarioVersion = cfg.GetString("costs.scenario_version")
	c.Scenario = cfg.GetString("costs.scenario")
	c.Format = cfg.GetString("costs.format")
	var err error
	if c.BaseYear, err = cast.ToIntE(cfg.Get("costs.base_year")); err != nil {
		return c, fmt.Errorf("iamutil: costs.base_year: %v", err)
	}
	if c.ConvergenceYear, err = cast.ToIntE(cfg.Get("costs.convergence_year")); err != nil {
		return c, fmt.Errorf("iamutil: costs.convergence_year: %v", err)
	}
	if c.FOMRate, err = cast.ToFloat64E(cfg.Get("costs.fom_rate")); err != nil {
		return c, fmt.Errorf("iamutil: costs.fom_rate: %v", err)
	}
	c.Log = logrus.StandardLogger()
	return c, c.Check()
}

// scenarioInfo returns the scenario structure held in cfg.
func scenarioInfo(cfg *viper.Viper) (*param.Info, error) {
	info := &param.Info{Nodes: expandStringSlice(cfg.GetStringSlice("nodes"))}
	if len(info.Nodes) == 0 {
		return nil, fmt.Errorf("iamutil: you need to specify at least one node")
	}
	var err error
	if info.Years, err = toIntSliceE(cfg.Get("years")); err != nil {
		return nil, fmt.Errorf("iamutil: years: %v", err)
	}
	if len(info.Years) == 0 {
		return nil, fmt.Errorf("iamutil: you need to specify at least one year")
	}
	sort.Ints(info.Years)
	if info.Y0, err = cast.ToIntE(cfg.Get("firstmodelyear")); err != nil {
		return nil, fmt.Errorf("iamutil: firstmodelyear: %v", err)
	}
	if info.Y0 < info.Years[0] || info.Y0 > info.Years[len(info.Years)-1] {
		return nil, fmt.Errorf("iamutil: first model year %d is outside of the years %v", info.Y0, info.Years)
	}
	return info, nil
}

// toIntSliceE converts s into a slice of ints. s may be a slice, or
// a JSON array held in a string, as when it is set from a command-line
// argument.
func toIntSliceE(s interface{}) ([]int, error) {
	switch v := s.(type) {
	case []int:
		return v, nil
	case []interface{}:
		o := make([]int, len(v))
		for i, val := range v {
			var err error
			if o[i], err = cast.ToIntE(val); err != nil {
				return nil, err
			}
		}
		return o, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var o []int
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return cast.ToIntSliceE(s)
	}
}

// getStringMapFloat returns a map[string]float64 from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func getStringMapFloat(varName string, cfg *viper.Viper) (map[string]float64, error) {
	var m map[string]interface{}
	switch i := cfg.Get(varName).(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		m = i
	case map[string]string:
		m = make(map[string]interface{}, len(i))
		for k, v := range i {
			m[k] = v
		}
	case string:
		if i == "" {
			return nil, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(i))
		if err := d.Decode(&m); err != nil {
			return nil, fmt.Errorf("iamutil: %s: %v", varName, err)
		}
	default:
		return nil, fmt.Errorf("iamutil: invalid type for %s: %#v", varName, i)
	}
	o := make(map[string]float64, len(m))
	for k, v := range m {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("iamutil: %s[%s]: %v", varName, k, err)
		}
		o[strings.ToUpper(k)] = f
	}
	return o, nil
}

// setLogLevel sets the level of the standard logger.
func setLogLevel(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("iamutil: %v", err)
	}
	logrus.SetLevel(l)
	return nil
}
