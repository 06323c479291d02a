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

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/fieldprep/bin"
	"github.com/spatialmodel/fieldprep/merge"
	"github.com/spatialmodel/fieldprep/rename"
	"github.com/spf13/cast"
)

// MergeConfig returns the merge stage configuration held in cfg.
func MergeConfig(cfg *viper.Viper) (merge.Config, error) {
	c := merge.Config{
		CampaignDir:    os.ExpandEnv(cfg.GetString("CampaignDir")),
		Campaign:       cfg.GetString("Campaign"),
		SkipDir:        cfg.GetString("Merge.SkipDir"),
		DateInstrument: cfg.GetString("Merge.DateInstrument"),
		PreferredBase:  cfg.GetString("Merge.PreferredBase"),
		BaseColumns:    expandStringSlice(cfg.GetStringSlice("Merge.BaseColumns")),
		FilePattern:    cfg.GetString("Merge.FilePattern"),
		DateExtensions: expandStringSlice(cfg.GetStringSlice("Merge.DateExtensions")),
		TimeCandidates: expandStringSlice(cfg.GetStringSlice("Merge.TimeCandidates")),
		AverageWindow:  cfg.GetInt("Merge.AverageWindow"),
		Log:            logrus.StandardLogger(),
	}
	if c.Campaign == "" {
		return c, fmt.Errorf("fieldprep: Campaign must be specified")
	}
	if c.AverageWindow < 0 {
		return c, fmt.Errorf("fieldprep: Merge.AverageWindow=%d but should be >= 0", c.AverageWindow)
	}
	if cfg.GetBool("Merge.Progress") {
		c.Progress = os.Stderr
	}
	return c, nil
}

// RenameConfig returns the rename stage configuration held in cfg.
func RenameConfig(cfg *viper.Viper) (rename.Config, error) {
	c := rename.Config{
		CampaignDir:  os.ExpandEnv(cfg.GetString("CampaignDir")),
		Campaign:     cfg.GetString("Campaign"),
		Organization: cfg.GetString("Organization"),
		Log:          logrus.StandardLogger(),
	}
	if c.Campaign == "" {
		return c, fmt.Errorf("fieldprep: Campaign must be specified")
	}
	if f := cfg.GetString("Rename.CandidatesFile"); f != "" {
		cand, err := rename.LoadCandidates(os.ExpandEnv(f))
		if err != nil {
			return c, err
		}
		c.Candidates = cand
	}
	derived, err := getStringMapString("Rename.Derived", cfg)
	if err != nil {
		return c, fmt.Errorf("fieldprep: Rename.Derived: %v", err)
	}
	if len(derived) > 0 {
		c.Derived = derived
	}
	return c, nil
}

// BinConfig returns the bin stage configuration held in cfg.
func BinConfig(cfg *viper.Viper) (BinStage, error) {
	c := BinStage{
		CampaignDir:  os.ExpandEnv(cfg.GetString("CampaignDir")),
		Campaign:     cfg.GetString("Campaign"),
		XLSXFile:     os.ExpandEnv(cfg.GetString("Bin.XLSXFile")),
		Consolidator: bin.Consolidator{Strict: cfg.GetBool("Bin.Strict"), Log: logrus.StandardLogger()},
		Aerosol:      bin.Binning{Label: bin.Aerosol},
		Cloud:        bin.Binning{Label: bin.Cloud},
	}
	if c.Campaign == "" {
		return c, fmt.Errorf("fieldprep: Campaign must be specified")
	}
	dst := []*[]float64{&c.Aerosol.Old, &c.Aerosol.New, &c.Cloud.Old, &c.Cloud.New}
	for i, name := range []string{"Bin.AerosolOld", "Bin.AerosolNew", "Bin.CloudOld", "Bin.CloudNew"} {
		v, err := toFloat64SliceE(cfg.Get(name))
		if err != nil {
			return c, fmt.Errorf("fieldprep: %s: %v", name, err)
		}
		// An empty list of new diameters gives one coarse bin.
		if len(v) == 0 && i%2 == 0 {
			return c, fmt.Errorf("fieldprep: %s must not be empty", name)
		}
		*dst[i] = v
	}
	return c, nil
}

// toFloat64SliceE casts s to a []float64. s can be a slice from a
// configuration file or a JSON array from a command-line argument or
// environment variable.
func toFloat64SliceE(s interface{}) ([]float64, error) {
	switch v := s.(type) {
	case []float64:
		return v, nil
	case []interface{}:
		o := make([]float64, len(v))
		for i, val := range v {
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return nil, err
			}
			o[i] = f
		}
		return o, nil
	case string:
		var o []float64
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type %T", s)
	}
}

// getStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func getStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if v == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type for variable %s: %#v", varName, i)
	}
}

// expandStringSlice returns a copy of s with the environment variables
// expanded.
func expandStringSlice(s []string) []string {
	o := make([]string, len(s))
	for i, v := range s {
		o[i] = os.ExpandEnv(v)
	}
	return o
}
