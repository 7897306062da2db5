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

// Package iamutil provides the command-line interface for preparing
// model data.
package iamutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/iamdata"
	"github.com/spatialmodel/iamdata/water"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to IAMData.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "loglevel",
			usage: `
              loglevel is the minimum level of log messages to print:
              one of debug, info, warn or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "store",
			usage: `
              store is the path to the SQLite file holding the model
              scenarios. It is created if it doesn't exist.`,
			defaultVal: "iamdata.db",
			flagsets: []*pflag.FlagSet{storeCmd.PersistentFlags(), materialCmd.PersistentFlags(),
				nonldvCmd.Flags(), waterCmd.Flags()},
		},
		{
			name: "scenario",
			usage: `
              scenario is the name of the model scenario to act on.`,
			defaultVal: "baseline",
			flagsets: []*pflag.FlagSet{storeCmd.PersistentFlags(), materialCmd.PersistentFlags(),
				nonldvCmd.Flags(), waterCmd.Flags()},
		},
		{
			name: "dryrun",
			usage: `
              dryrun specifies that data should be generated and summarized
              but not added to the store.`,
			shorthand:  "n",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{materialCmd.PersistentFlags(), nonldvCmd.Flags(), waterCmd.Flags()},
		},
		{
			name: "nodes",
			usage: `
              nodes are the regions of the scenario.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{storeInitCmd.Flags()},
		},
		{
			name: "years",
			usage: `
              years are all periods of the scenario, including historical ones.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{storeInitCmd.Flags()},
		},
		{
			name: "firstmodelyear",
			usage: `
              firstmodelyear is the first period that the model optimizes.`,
			defaultVal: 2020,
			flagsets:   []*pflag.FlagSet{storeInitCmd.Flags()},
		},
		{
			name: "technologies",
			usage: `
              technologies are the technologies of the scenario.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{storeInitCmd.Flags()},
		},
		{
			name: "costs.input_dir",
			usage: `
              costs.input_dir is the directory holding the cost projection input
              tables. It may be a local directory, an http(s) URL, or a blob
              storage location (file://, gs://, or s3://).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{costsCmd.PersistentFlags()},
		},
		{
			name: "costs.node",
			usage: `
              costs.node is the regional aggregation: R11, R12, or R20.`,
			defaultVal: "R12",
			flagsets:   []*pflag.FlagSet{costsCmd.PersistentFlags()},
		},
		{
			name: "costs.ref_region",
			usage: `
              costs.ref_region is the region that learning rates apply to.
              The default is the North America region of costs.node.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{costsCmd.PersistentFlags()},
		},
		{
			name: "costs.base_year",
			usage: `
              costs.base_year is the year of the source cost data.`,
			defaultVal: 2021,
			flagsets:   []*pflag.FlagSet{costsCmd.PersistentFlags()},
		},
		{
			name: "costs.module",
			usage: `
              costs.module is energy or materials. materials adds the
              technologies of the materials industries.`,
			defaultVal: "energy",
			flagsets:   []*pflag.FlagSet{costsCmd.PersistentFlags()},
		},
		{
			name: "costs.method",
			usage: `
              costs.method is the projection method: learning, gdp, or convergence.`,
			defaultVal: "gdp",
			flagsets:   []*pflag.FlagSet{costsCmd.PersistentFlags()},
		},
		{
			name: "costs.scenario_version",
			usage: `
              costs.scenario_version selects the GDP scenario data for the gdp
              method: updated, original, or all.`,
			defaultVal: "updated",
			flagsets:   []*pflag.FlagSet{costsCmd.PersistentFlags()},
		},
		{
			name: "costs.scenario",
			usage: `
              costs.scenario is one of SSP1, SSP2, SSP3, SSP4, SSP5, LED, or all.`,
			defaultVal: "all",
			flagsets:   []*pflag.FlagSet{costsCmd.PersistentFlags()},
		},
		{
			name: "costs.convergence_year",
			usage: `
              costs.convergence_year is the year that regional costs reach
              reference region costs with the convergence method.`,
			defaultVal: 2050,
			flagsets:   []*pflag.FlagSet{costsCmd.PersistentFlags()},
		},
		{
			name: "costs.fom_rate",
			usage: `
              costs.fom_rate is the annual rate of change of fixed operating
              costs over the life of a vintage.`,
			defaultVal: 0.025,
			flagsets:   []*pflag.FlagSet{costsCmd.PersistentFlags()},
		},
		{
			name: "costs.format",
			usage: `
              costs.format is message for model parameters or iamc for
              reporting tables.`,
			defaultVal: "message",
			flagsets:   []*pflag.FlagSet{costsCmd.PersistentFlags()},
		},
		{
			name: "costs.inv_file",
			usage: `
              costs.inv_file is the output file for investment costs. The format
              follows the extension (.csv or .xlsx). Blob storage locations are allowed.`,
			defaultVal: "inv_cost.csv",
			flagsets:   []*pflag.FlagSet{costsCmd.Flags()},
		},
		{
			name: "costs.fix_file",
			usage: `
              costs.fix_file is the output file for fixed operating costs.`,
			defaultVal: "fix_cost.csv",
			flagsets:   []*pflag.FlagSet{costsCmd.Flags()},
		},
		{
			name: "costs.store",
			usage: `
              costs.store, if not empty, is the path to a store that the inv_cost
              and fix_cost parameters are added to, with one scenario per
              scenario version and scenario.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{costsCmd.Flags()},
		},
		{
			name: "costs.regression_file",
			usage: `
              costs.regression_file is the output file for the regression
              coefficients.`,
			defaultVal: "cost_regression.csv",
			flagsets:   []*pflag.FlagSet{costsRegressionCmd.Flags()},
		},
		{
			name: "costs.technology",
			usage: `
              costs.technology is the technology to plot.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{costsPlotCmd.Flags()},
		},
		{
			name: "costs.plot_file",
			usage: `
              costs.plot_file is the output image file. The format follows the
              extension (.png, .svg, or .pdf).`,
			defaultVal: "cost_trajectories.png",
			flagsets:   []*pflag.FlagSet{costsPlotCmd.Flags()},
		},
		{
			name: "material.config",
			usage: `
              material.config is the TOML file defining the technologies and
              relations of each materials sector.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{materialCmd.PersistentFlags()},
		},
		{
			name: "material.steel_data",
			usage: `
              material.steel_data is the steel sector workbook.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{steelCmd.Flags()},
		},
		{
			name: "material.buildings_data",
			usage: `
              material.buildings_data is the IAMC table of building floor space
              and material intensities.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildingsCmd.Flags()},
		},
		{
			name: "material.industry_data",
			usage: `
              material.industry_data is the IEA industry final energy extract.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{industryCmd.Flags()},
		},
		{
			name: "transport.nbsc_dir",
			usage: `
              transport.nbsc_dir is the local directory holding the Chinese
              statistical yearbook tables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{chnindCmd.Flags()},
		},
		{
			name: "transport.population",
			usage: `
              transport.population is the OECD population table.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{chnindCmd.Flags()},
		},
		{
			name: "transport.item",
			usage: `
              transport.item is the iTEM database extract.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{chnindCmd.Flags()},
		},
		{
			name: "transport.private_vehicles",
			usage: `
              transport.private_vehicles specifies whether to include the
              private vehicle stock table.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{chnindCmd.Flags()},
		},
		{
			name: "transport.output",
			usage: `
              transport.output is the output file for the transport statistics.`,
			defaultVal: "chnind.csv",
			flagsets:   []*pflag.FlagSet{chnindCmd.Flags()},
		},
		{
			name: "transport.config",
			usage: `
              transport.config is the TOML file defining non-LDV modes,
              technologies, load factors, and minimum activity.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{nonldvCmd.Flags()},
		},
		{
			name: "transport.load_factor",
			usage: `
              transport.load_factor overrides the configured load factors of
              transport modes, in the format {"BUS":20}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{nonldvCmd.Flags()},
		},
		{
			name: "water.performance",
			usage: `
              water.performance is the technology water performance table.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{waterCmd.Flags()},
		},
		{
			name: "water.funcs",
			usage: `
              water.funcs is the set of water data functions to run:
              nexus or cooling.`,
			defaultVal: "nexus",
			flagsets:   []*pflag.FlagSet{waterCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("IAMDATA")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case []int:
				set.IntSliceP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				json.NewEncoder(b).Encode(v)
				set.StringP(option.name, option.shorthand, strings.TrimSpace(b.String()), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(costsCmd)
	costsCmd.AddCommand(costsRegressionCmd)
	costsCmd.AddCommand(costsPlotCmd)
	Root.AddCommand(storeCmd)
	storeCmd.AddCommand(storeInitCmd)
	storeCmd.AddCommand(storeLogCmd)
	Root.AddCommand(materialCmd)
	materialCmd.AddCommand(steelCmd)
	materialCmd.AddCommand(buildingsCmd)
	materialCmd.AddCommand(industryCmd)
	Root.AddCommand(transportCmd)
	transportCmd.AddCommand(chnindCmd)
	transportCmd.AddCommand(nonldvCmd)
	Root.AddCommand(waterCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("iamdata: problem reading configuration file: %v", err)
		}
	}
	return setLogLevel(Cfg.GetString("loglevel"))
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "iamdata",
	Short: "Data preparation for an integrated assessment energy model.",
	Long: `iamdata prepares input data for an integrated assessment energy model:
technology cost projections, materials sector data, transport statistics,
and water-energy nexus data. Use the subcommands specified below to access
the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'IAMDATA_var' where 'var' is the
name of the variable to be set, with periods replaced by underscores.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of IAMData.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("IAMData v%s\n", iamdata.Version)
	},
	DisableAutoGenTag: true,
}

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Project technology costs.",
	Long: `costs projects investment and fixed operating costs of energy technologies
for every region through the end of the century and writes them as model
parameters or reporting tables. Use the subcommands to fit regressions to the
projections or to plot them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := costsConfig(Cfg)
		if err != nil {
			return err
		}
		inv, err := checkOutputFile("costs.inv_file", Cfg.GetString("costs.inv_file"))
		if err != nil {
			return err
		}
		fix, err := checkOutputFile("costs.fix_file", Cfg.GetString("costs.fix_file"))
		if err != nil {
			return err
		}
		input, err := checkInputFile("costs.input_dir", Cfg.GetString("costs.input_dir"))
		if err != nil {
			return err
		}
		return Costs(cmd.Context(), cfg, input, inv, fix, os.ExpandEnv(Cfg.GetString("costs.store")), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var costsRegressionCmd = &cobra.Command{
	Use:   "regression",
	Short: "Fit polynomials to cost projections.",
	Long: `regression fits a polynomial of investment cost against year to the
projected costs of each technology and region and writes the coefficients.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := costsConfig(Cfg)
		if err != nil {
			return err
		}
		out, err := checkOutputFile("costs.regression_file", Cfg.GetString("costs.regression_file"))
		if err != nil {
			return err
		}
		input, err := checkInputFile("costs.input_dir", Cfg.GetString("costs.input_dir"))
		if err != nil {
			return err
		}
		return Regression(cmd.Context(), cfg, input, out)
	},
	DisableAutoGenTag: true,
}

var costsPlotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot cost projections.",
	Long: `plot plots the projected investment costs of one technology in every
region over time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := costsConfig(Cfg)
		if err != nil {
			return err
		}
		out, err := checkOutputFile("costs.plot_file", Cfg.GetString("costs.plot_file"))
		if err != nil {
			return err
		}
		input, err := checkInputFile("costs.input_dir", Cfg.GetString("costs.input_dir"))
		if err != nil {
			return err
		}
		tech := Cfg.GetString("costs.technology")
		if tech == "" {
			return fmt.Errorf("iamutil: you need to specify the costs.technology configuration variable")
		}
		return Plot(cmd.Context(), cfg, input, tech, out)
	},
	DisableAutoGenTag: true,
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage scenarios in the store.",
	Long: `store manages the model scenarios held in the SQLite store that the data
preparation commands write to.`,
	DisableAutoGenTag: true,
}

var storeInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a scenario.",
	Long: `init sets up the structure of a scenario: its nodes, years, first model
year, and technologies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := scenarioInfo(Cfg)
		if err != nil {
			return err
		}
		return InitStore(cmd.Context(), os.ExpandEnv(Cfg.GetString("store")), Cfg.GetString("scenario"),
			info, expandStringSlice(Cfg.GetStringSlice("technologies")))
	},
	DisableAutoGenTag: true,
}

var storeLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Print the commit log of a scenario.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return StoreLog(cmd.Context(), os.ExpandEnv(Cfg.GetString("store")), Cfg.GetString("scenario"), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var materialCmd = &cobra.Command{
	Use:   "material",
	Short: "Add materials sector data.",
	Long: `material adds data for the materials sectors to a scenario. Use the
subcommands to choose a sector.`,
	DisableAutoGenTag: true,
}

var steelCmd = &cobra.Command{
	Use:   "steel",
	Short: "Add steel sector data.",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := checkInputFile("material.config", Cfg.GetString("material.config"))
		if err != nil {
			return err
		}
		data, err := checkInputFile("material.steel_data", Cfg.GetString("material.steel_data"))
		if err != nil {
			return err
		}
		return Steel(cmd.Context(), os.ExpandEnv(Cfg.GetString("store")), Cfg.GetString("scenario"),
			config, data, Cfg.GetBool("dryrun"), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var buildingsCmd = &cobra.Command{
	Use:   "buildings",
	Short: "Add buildings material demand data.",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := checkInputFile("material.config", Cfg.GetString("material.config"))
		if err != nil {
			return err
		}
		data, err := checkInputFile("material.buildings_data", Cfg.GetString("material.buildings_data"))
		if err != nil {
			return err
		}
		return Buildings(cmd.Context(), os.ExpandEnv(Cfg.GetString("store")), Cfg.GetString("scenario"),
			config, data, Cfg.GetBool("dryrun"), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var industryCmd = &cobra.Command{
	Use:   "industry",
	Short: "Adjust industry demand by final energy shares.",
	Long: `industry computes the shares of specific, feedstock, and thermal final
energy in industry and reduces the demand and historical activity of the
aggregate industry technologies accordingly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := checkInputFile("material.industry_data", Cfg.GetString("material.industry_data"))
		if err != nil {
			return err
		}
		return Industry(cmd.Context(), os.ExpandEnv(Cfg.GetString("store")), Cfg.GetString("scenario"),
			data, Cfg.GetBool("dryrun"), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var transportCmd = &cobra.Command{
	Use:               "transport",
	Short:             "Prepare transport data.",
	DisableAutoGenTag: true,
}

var chnindCmd = &cobra.Command{
	Use:   "chnind",
	Short: "Prepare transport statistics for China and India.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := checkInputFile("transport.nbsc_dir", Cfg.GetString("transport.nbsc_dir"))
		if err != nil {
			return err
		}
		pop, err := checkInputFile("transport.population", Cfg.GetString("transport.population"))
		if err != nil {
			return err
		}
		item, err := checkInputFile("transport.item", Cfg.GetString("transport.item"))
		if err != nil {
			return err
		}
		out, err := checkOutputFile("transport.output", Cfg.GetString("transport.output"))
		if err != nil {
			return err
		}
		return CHNIND(cmd.Context(), dir, pop, item, Cfg.GetBool("transport.private_vehicles"), out, cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var nonldvCmd = &cobra.Command{
	Use:   "nonldv",
	Short: "Add non-LDV transport data.",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := checkInputFile("transport.config", Cfg.GetString("transport.config"))
		if err != nil {
			return err
		}
		lf, err := getStringMapFloat("transport.load_factor", Cfg)
		if err != nil {
			return err
		}
		return NonLDV(cmd.Context(), os.ExpandEnv(Cfg.GetString("store")), Cfg.GetString("scenario"),
			config, lf, Cfg.GetBool("dryrun"), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Add water-energy nexus data.",
	RunE: func(cmd *cobra.Command, args []string) error {
		perf, err := checkInputFile("water.performance", Cfg.GetString("water.performance"))
		if err != nil {
			return err
		}
		funcs := Cfg.GetString("water.funcs")
		if _, ok := water.Funcs[funcs]; !ok {
			return fmt.Errorf("iamutil: invalid water.funcs %q", funcs)
		}
		return Water(cmd.Context(), os.ExpandEnv(Cfg.GetString("store")), Cfg.GetString("scenario"),
			perf, funcs, Cfg.GetBool("dryrun"), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}
