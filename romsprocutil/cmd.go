/*
Copyright © 2018 the romsproc authors.
This file is part of romsproc.

romsproc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

romsproc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with romsproc.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package romsprocutil holds the command-line interface of the romsproc
// ocean model postprocessor.
package romsprocutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spatialmodel/romsproc"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var log = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to romsproc.
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
			name: "GridFile",
			usage: `
              GridFile is the path to a NetCDF file holding the model
              bathymetry, land/sea mask, and vertical stretching
              parameters. If empty, InputFile is used.`,
			defaultVal: "",
			flagsets: []*pflag.FlagSet{constantDepthCmd.Flags(),
				depthAvgCmd.Flags(), transectCmd.Flags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile is the path to the NetCDF model output (history or
              averages) file to process.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets: []*pflag.FlagSet{constantDepthCmd.Flags(),
				depthAvgCmd.Flags(), transectCmd.Flags(),
				genStdICmd.Flags(), genStdFCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the result NetCDF file will be
              written.`,
			shorthand:  "o",
			defaultVal: "romsproc_output.nc",
			flagsets: []*pflag.FlagSet{constantDepthCmd.Flags(),
				depthAvgCmd.Flags(), transectCmd.Flags(),
				genStdICmd.Flags(), genStdFCmd.Flags()},
		},
		{
			name: "Variable",
			usage: `
              Variable is the name of the model field to process.`,
			shorthand:  "v",
			defaultVal: "temp",
			flagsets: []*pflag.FlagSet{constantDepthCmd.Flags(),
				depthAvgCmd.Flags(), transectCmd.Flags()},
		},
		{
			name: "Depth",
			usage: `
              Depth is the depth of interest in meters. Positive values
              are taken as distance below the sea surface.`,
			shorthand:  "d",
			defaultVal: 50.0,
			flagsets: []*pflag.FlagSet{constantDepthCmd.Flags(),
				depthAvgCmd.Flags()},
		},
		{
			name: "TopDepth",
			usage: `
              TopDepth is the upper bound of the averaging band in meters.
              Zero means averaging extends to the uppermost model layer.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{depthAvgCmd.Flags()},
		},
		{
			name: "ApplyZeta",
			usage: `
              ApplyZeta specifies whether to correct the layer depths for
              the free surface displacement stored in the input file.`,
			defaultVal: false,
			flagsets: []*pflag.FlagSet{constantDepthCmd.Flags(),
				depthAvgCmd.Flags()},
		},
		{
			name: "Record",
			usage: `
              Record is the time record of the input file to process.`,
			shorthand:  "r",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{depthAvgCmd.Flags(), transectCmd.Flags()},
		},
		{
			name: "NumProcessors",
			usage: `
              NumProcessors is the number of records to process
              concurrently. If less than 1, all processors are used.`,
			shorthand:  "n",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{constantDepthCmd.Flags()},
		},
		{
			name: "Lon",
			usage: `
              Lon is the list of waypoint longitudes [degrees] defining
              the transect path.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{transectCmd.Flags()},
		},
		{
			name: "Lat",
			usage: `
              Lat is the list of waypoint latitudes [degrees] defining
              the transect path.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{transectCmd.Flags()},
		},
		{
			name: "NX",
			usage: `
              NX is the number of horizontal samples in the transect.`,
			defaultVal: 200,
			flagsets:   []*pflag.FlagSet{transectCmd.Flags()},
		},
		{
			name: "NZ",
			usage: `
              NZ is the number of vertical samples in the transect.`,
			defaultVal: 40,
			flagsets:   []*pflag.FlagSet{transectCmd.Flags()},
		},
		{
			name: "ZLevels",
			usage: `
              ZLevels is an optional list of depths [m] replacing the
              equidistant transect vertical axis; it overrides NZ.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{transectCmd.Flags()},
		},
		{
			name: "Window",
			usage: `
              Window is the number of records the standard deviation
              window advances by each step.`,
			defaultVal: 5,
			flagsets:   []*pflag.FlagSet{genStdICmd.Flags()},
		},
		{
			name: "Pad",
			usage: `
              Pad widens the standard deviation window by this many
              records on each side for overlap between windows.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{genStdICmd.Flags()},
		},
		{
			name: "Skip",
			usage: `
              Skip is the number of records at the beginning of the file
              to ignore as model spinup.`,
			defaultVal: 30,
			flagsets:   []*pflag.FlagSet{genStdICmd.Flags()},
		},
		{
			name: "Fields",
			usage: `
              Fields is the list of variables to process. If empty, the
              standard prognostic (or forcing) variables are used.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{genStdICmd.Flags(), genStdFCmd.Flags()},
		},
		{
			name: "Records",
			usage: `
              Records is the list of record indices to include. If empty,
              all records are used. Selecting records at a fixed time of
              day avoids aliasing the diurnal cycle.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{genStdFCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ROMSPROC")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
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
	Root.AddCommand(constantDepthCmd)
	Root.AddCommand(depthAvgCmd)
	Root.AddCommand(transectCmd)
	Root.AddCommand(genStdICmd)
	Root.AddCommand(genStdFCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("romsproc: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "romsproc",
	Short: "A postprocessor for terrain-following ocean model output.",
	Long: `romsproc derives constant-depth fields, depth averages, vertical
transects, and error statistics from the output of terrain-following
(sigma coordinate) ocean models.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the format
'ROMSPROC_var' where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

// versionCmd prints the version number.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("romsproc v%s\n", romsproc.Version)
	},
}

// gridFile returns the file to read the grid description from.
func gridFile() string {
	if f := Cfg.GetString("GridFile"); f != "" {
		return f
	}
	return Cfg.GetString("InputFile")
}

// constantDepthCmd resamples a field at a fixed depth.
var constantDepthCmd = &cobra.Command{
	Use:   "constant-depth",
	Short: "Resample a 3-D field at a constant depth for all records",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConstantDepth(
			gridFile(),
			Cfg.GetString("InputFile"),
			Cfg.GetString("OutputFile"),
			Cfg.GetString("Variable"),
			Cfg.GetFloat64("Depth"),
			Cfg.GetBool("ApplyZeta"),
			Cfg.GetInt("NumProcessors"),
		)
	},
}

// depthAvgCmd averages a field between two depths.
var depthAvgCmd = &cobra.Command{
	Use:   "depth-average",
	Short: "Compute the thickness-weighted average of a field between two depths",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDepthAverage(
			gridFile(),
			Cfg.GetString("InputFile"),
			Cfg.GetString("OutputFile"),
			Cfg.GetString("Variable"),
			Cfg.GetFloat64("Depth"),
			Cfg.GetFloat64("TopDepth"),
			Cfg.GetBool("ApplyZeta"),
			Cfg.GetInt("Record"),
		)
	},
}

// transectCmd builds a vertical slice along a waypoint path.
var transectCmd = &cobra.Command{
	Use:   "transect",
	Short: "Interpolate a vertical slice of a field along a waypoint path",
	RunE: func(cmd *cobra.Command, args []string) error {
		lon, err := toFloats(Cfg.GetStringSlice("Lon"))
		if err != nil {
			return fmt.Errorf("romsproc: parsing Lon: %v", err)
		}
		lat, err := toFloats(Cfg.GetStringSlice("Lat"))
		if err != nil {
			return fmt.Errorf("romsproc: parsing Lat: %v", err)
		}
		zLevels, err := toFloats(Cfg.GetStringSlice("ZLevels"))
		if err != nil {
			return fmt.Errorf("romsproc: parsing ZLevels: %v", err)
		}
		return runTransect(
			gridFile(),
			Cfg.GetString("InputFile"),
			Cfg.GetString("OutputFile"),
			Cfg.GetString("Variable"),
			lon, lat,
			Cfg.GetInt("NX"),
			Cfg.GetInt("NZ"),
			zLevels,
			Cfg.GetInt("Record"),
		)
	},
}

// genStdICmd generates initial condition error statistics.
var genStdICmd = &cobra.Command{
	Use:   "gen-std-i",
	Short: "Generate windowed standard deviations of prognostic fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		var fields []string
		if f := Cfg.GetStringSlice("Fields"); len(f) > 0 {
			fields = f
		}
		log.WithFields(logrus.Fields{
			"input":  Cfg.GetString("InputFile"),
			"output": Cfg.GetString("OutputFile"),
		}).Info("generating initial condition standard deviations")
		return romsproc.GenStdI(
			Cfg.GetString("InputFile"),
			Cfg.GetString("OutputFile"),
			Cfg.GetInt("Window"),
			Cfg.GetInt("Pad"),
			Cfg.GetInt("Skip"),
			fields,
		)
	},
}

// genStdFCmd generates forcing error statistics.
var genStdFCmd = &cobra.Command{
	Use:   "gen-std-f",
	Short: "Generate standard deviations of surface forcing fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		var fields []string
		if f := Cfg.GetStringSlice("Fields"); len(f) > 0 {
			fields = f
		}
		r, err := cast.ToIntSliceE(Cfg.Get("Records"))
		if err != nil {
			return fmt.Errorf("romsproc: parsing Records: %v", err)
		}
		var records []int
		if len(r) > 0 {
			records = r
		}
		log.WithFields(logrus.Fields{
			"input":  Cfg.GetString("InputFile"),
			"output": Cfg.GetString("OutputFile"),
		}).Info("generating forcing standard deviations")
		return romsproc.GenStdF(
			Cfg.GetString("InputFile"),
			Cfg.GetString("OutputFile"),
			records,
			fields,
		)
	},
}
