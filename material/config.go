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

// Package material prepares data for the materials industry
// representation of the energy model: technologies and relations of the
// steel sector, material use by buildings, and the share of industrial
// energy demand that the explicit material sectors take over.
package material

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// Sector configures the technologies and relations added for a sector.
type Sector struct {
	// Technologies are the technologies to add.
	Technologies []string `toml:"technologies"`
	// Relations are the relations to add.
	Relations []string `toml:"relations"`
	// Technology is the technology representing the sector as a whole,
	// e.g. "buildings".
	Technology string `toml:"technology"`
	// Commodity is the service commodity the sector technology provides.
	Commodity string `toml:"commodity"`
}

// Config holds the sector definitions.
type Config struct {
	// Scenario is the name of the scenario the data are for; it selects
	// the timeseries sheet.
	Scenario string `toml:"scenario"`
	// Sectors holds the configuration of each sector, by name.
	Sectors map[string]Sector `toml:"sector"`
}

// ReadConfig reads a TOML configuration.
func ReadConfig(r io.Reader) (*Config, error) {
	cfg := new(Config)
	if _, err := toml.DecodeReader(r, cfg); err != nil {
		return nil, fmt.Errorf("material: reading configuration: %v", err)
	}
	return cfg, nil
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	cfg := new(Config)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("material: reading configuration file %s: %v", path, err)
	}
	return cfg, nil
}

// Sector returns the configuration for sector name.
func (c *Config) Sector(name string) (Sector, error) {
	s, ok := c.Sectors[name]
	if !ok {
		return Sector{}, fmt.Errorf("material: no configuration for sector %q", name)
	}
	return s, nil
}
