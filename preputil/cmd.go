/*
Copyright © 2024 the fieldprep authors.
This file is part of fieldprep.

fieldprep is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

fieldprep is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with fieldprep.  If not, see <http://www.gnu.org/licenses/>.
*/

package preputil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/fieldprep"
	"github.com/spatialmodel/fieldprep/merge"
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

// Diameters from the NAAMES campaign, in nm for aerosol bins and μm for
// cloud bins.
var (
	naamesAerosolOld = []float64{100.0, 112.2, 125.9, 141.3, 158.5, 177.8, 199.5, 223.9, 251.2, 281.8, 316.2,
		354.8, 398.1, 446.7, 501.2, 562.3, 631.0, 707.9, 794.3, 891.3, 1000.0, 1258.9, 1584.9, 1995.3, 2511.9, 3162.3}
	naamesAerosolNew = []float64{150, 169.8, 192.1, 217.5, 246.1, 278.6, 315.3, 356.8, 403.9, 457.1,
		517.3, 585.5, 662.7, 750}
	naamesCloudOld = []float64{2.5, 3.5, 4.5, 5.5, 6.5, 7.5, 8.5, 9.5, 10.5, 11.5, 12.5, 13.5, 15.0, 17.0,
		19.0, 21.0, 23.0, 25.0, 27.0, 29.0, 31.0, 33.0, 35.0, 37.0, 39.0, 41.0, 43.0, 45.0, 47.0, 49.0}
	naamesCloudNew = []float64{3, 5.3, 7.7, 10, 12.3, 14.7, 17, 19.3, 21.7, 24, 26.3, 28.7,
		31, 33.3, 35.7, 38, 40.3, 42.7, 45}
)

func init() {
	stages := func(cmds ...*cobra.Command) []*pflag.FlagSet {
		o := make([]*pflag.FlagSet, len(cmds))
		for i, c := range cmds {
			o[i] = c.Flags()
		}
		return o
	}

	// Options are the configuration options available to fieldprep.
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
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to print: one of
              debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "CampaignDir",
			usage: `
              CampaignDir is the directory that holds one subdirectory per
              instrument and where the campaign-wide files are written. It can
              contain environment variables.`,
			shorthand:  "d",
			defaultVal: ".",
			flagsets:   stages(mergeCmd, renameCmd, binCmd, runCmd),
		},
		{
			name: "Campaign",
			usage: `
              Campaign is the name of the field campaign. It is used in output
              file names and as the value of the Campaign column.`,
			shorthand:  "c",
			defaultVal: "NAAMES",
			flagsets:   stages(mergeCmd, renameCmd, binCmd, runCmd),
		},
		{
			name: "Organization",
			usage: `
              Organization is the value of the Organization column, for example
              NASA, NOAA, or DOE.`,
			defaultVal: "NASA",
			flagsets:   stages(renameCmd, runCmd),
		},
		{
			name: "Merge.SkipDir",
			usage: `
              Merge.SkipDir is a directory within CampaignDir that is not an
              instrument directory. Per-day merged files are written there.`,
			defaultVal: "datasets",
			flagsets:   stages(mergeCmd, runCmd),
		},
		{
			name: "Merge.DateInstrument",
			usage: `
              Merge.DateInstrument is the instrument whose files determine the
              flight dates. Its directory must exist.`,
			defaultVal: "SP2",
			flagsets:   stages(mergeCmd, runCmd),
		},
		{
			name: "Merge.PreferredBase",
			usage: `
              Merge.PreferredBase is the instrument that the other instruments
              are joined onto. If it has no data for a date, the first instrument
              with data is used instead.`,
			defaultVal: "OPTICAL",
			flagsets:   stages(mergeCmd, runCmd),
		},
		{
			name: "Merge.BaseColumns",
			usage: `
              Merge.BaseColumns, if set, are the only columns besides the time
              that are kept from the preferred base instrument, for example
              SP2_rBC_conc.`,
			defaultVal: []string{},
			flagsets:   stages(mergeCmd, runCmd),
		},
		{
			name: "Merge.FilePattern",
			usage: `
              Merge.FilePattern selects the instrument files to read. ** matches
              any number of characters, including none.`,
			defaultVal: "*.ict",
			flagsets:   stages(mergeCmd, runCmd),
		},
		{
			name: "Merge.DateExtensions",
			usage: `
              Merge.DateExtensions are the extensions of the files that flight
              dates are taken from.`,
			defaultVal: merge.DefaultDateExtensions,
			flagsets:   stages(mergeCmd, runCmd),
		},
		{
			name: "Merge.TimeCandidates",
			usage: `
              Merge.TimeCandidates are the names of time columns, most preferred
              first. Names are matched ignoring case.`,
			defaultVal: merge.DefaultTimeCandidates,
			flagsets:   stages(mergeCmd, runCmd),
		},
		{
			name: "Merge.AverageWindow",
			usage: `
              Merge.AverageWindow, if greater than zero, is the number of seconds
              that each instrument's records are averaged over before they are
              joined.`,
			defaultVal: 0,
			flagsets:   stages(mergeCmd, runCmd),
		},
		{
			name: "Merge.Progress",
			usage: `
              Merge.Progress specifies whether to show a progress bar.`,
			defaultVal: true,
			flagsets:   stages(mergeCmd, runCmd),
		},
		{
			name: "Rename.CandidatesFile",
			usage: `
              Rename.CandidatesFile is an optional TOML file whose [Candidates]
              table gives extra raw column names for standardized columns.
              They are tried before the built-in names.`,
			defaultVal: "",
			flagsets:   stages(renameCmd, runCmd),
		},
		{
			name: "Rename.Derived",
			usage: `
              Rename.Derived holds expressions for extra columns that are
              calculated from the standardized columns, for example
              {"Ext450":"Sc450_total + Abs470_total"}.`,
			defaultVal: map[string]string{},
			flagsets:   stages(renameCmd, runCmd),
		},
		{
			name: "Bin.Strict",
			usage: `
              Bin.Strict specifies whether to fail instead of warn when the
              diameters do not match the bin columns, or when a coarse bin would
              hold no fine bins.`,
			defaultVal: false,
			flagsets:   stages(binCmd, runCmd),
		},
		{
			name: "Bin.AerosolOld",
			usage: `
              Bin.AerosolOld holds the diameters of the aerosol bin columns
              bin1, bin2, ..., in increasing order.`,
			defaultVal: naamesAerosolOld,
			flagsets:   stages(binCmd, runCmd),
		},
		{
			name: "Bin.AerosolNew",
			usage: `
              Bin.AerosolNew holds the boundary diameters of the coarse aerosol
              bins, in increasing order.`,
			defaultVal: naamesAerosolNew,
			flagsets:   stages(binCmd, runCmd),
		},
		{
			name: "Bin.CloudOld",
			usage: `
              Bin.CloudOld holds the diameters of the cloud bin columns
              cbin1, cbin2, ..., in increasing order.`,
			defaultVal: naamesCloudOld,
			flagsets:   stages(binCmd, runCmd),
		},
		{
			name: "Bin.CloudNew",
			usage: `
              Bin.CloudNew holds the boundary diameters of the coarse cloud
              bins, in increasing order.`,
			defaultVal: naamesCloudNew,
			flagsets:   stages(binCmd, runCmd),
		},
		{
			name: "Bin.XLSXFile",
			usage: `
              Bin.XLSXFile, if set, is an Excel workbook that the binned tables
              are additionally written to.`,
			defaultVal: "",
			flagsets:   stages(binCmd, runCmd),
		},
		{
			name: "Combine.Output",
			usage: `
              Combine.Output is the file that combined CSV files are written to.`,
			shorthand:  "o",
			defaultVal: "combined.csv",
			flagsets:   stages(combineCmd),
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("FIELDPREP")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

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
			case []float64, map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := strings.TrimSpace(b.String())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
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
	Root.AddCommand(mergeCmd)
	Root.AddCommand(renameCmd)
	Root.AddCommand(binCmd)
	Root.AddCommand(combineCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and configures logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("fieldprep: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("fieldprep: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "fieldprep",
	Short: "Prepare airborne field-campaign data for analysis.",
	Long: `fieldprep prepares airborne field-campaign measurements for analysis.
It merges raw per-instrument ICARTT files into one table per campaign,
renames instrument-specific columns to a standardized schema, and
consolidates particle size distribution bins into coarser bins.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'FIELDPREP_var' where 'var' is the
name of the variable to be set, with dots replaced by underscores. Paths
are additionally allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of fieldprep.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("fieldprep v%s\n", fieldprep.Version)
	},
	DisableAutoGenTag: true,
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge raw instrument files",
	Long: `merge reads the ICARTT files in each instrument directory of the
campaign directory, joins the instruments on their time column for each
flight day, and writes one merged file per day and one campaign-wide
<Campaign>_Raw.csv file. Flight days are taken from the files of the
Merge.DateInstrument instrument.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := MergeConfig(Cfg)
		if err != nil {
			return err
		}
		_, err = merge.Run(c)
		return err
	},
	DisableAutoGenTag: true,
}

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Standardize column names",
	Long: `rename reads <Campaign>_Raw.csv and writes <Campaign>_Restricted.csv,
which holds the standardized aerosol variables that every campaign must
have, and <Campaign>_Comprehensive.csv, which additionally holds any
available wind, cloud and particle count variables. The Comprehensive
file is only written if it holds columns that the Restricted file lacks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := RenameConfig(Cfg)
		if err != nil {
			return err
		}
		return runRename(c)
	},
	DisableAutoGenTag: true,
}

var binCmd = &cobra.Command{
	Use:   "bin",
	Short: "Consolidate size distribution bins",
	Long: `bin sums the narrow aerosol bins (bin1, bin2, ...) of the Restricted
file and the narrow cloud (cbin1, cbin2, ...) and aerosol bins of the
Comprehensive file into coarser bins whose boundaries are given by
Bin.AerosolNew and Bin.CloudNew. A coarse value is missing only if every
narrow value it is made of is missing. Results are written to
<Campaign>_Restricted_renamed_binned.csv and
<Campaign>_Comprehensive_renamed_binned.csv.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := BinConfig(Cfg)
		if err != nil {
			return err
		}
		return Bin(c)
	},
	DisableAutoGenTag: true,
}

var combineCmd = &cobra.Command{
	Use:   "combine pattern",
	Short: "Combine CSV files",
	Long: `combine concatenates the CSV files that match a glob pattern, such as
'datasets/**/*.csv', keeping only the header line of the first file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Combine(os.ExpandEnv(args[0]), os.ExpandEnv(Cfg.GetString("Combine.Output")))
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all stages",
	Long:  `run runs the merge, rename, and bin stages in sequence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mc, err := MergeConfig(Cfg)
		if err != nil {
			return err
		}
		rc, err := RenameConfig(Cfg)
		if err != nil {
			return err
		}
		bc, err := BinConfig(Cfg)
		if err != nil {
			return err
		}
		raw, err := merge.Run(mc)
		if err != nil {
			return err
		}
		if raw == nil {
			return fmt.Errorf("fieldprep: no instrument data found in %s", mc.CampaignDir)
		}
		if err := runRename(rc); err != nil {
			return err
		}
		return Bin(bc)
	},
	DisableAutoGenTag: true,
}
