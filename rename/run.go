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

package rename

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/fieldprep"
)

// Config specifies how to rename the columns of a campaign table.
type Config struct {
	// CampaignDir holds the input and output files.
	CampaignDir string

	// Campaign is used in file names and as the value of the
	// Campaign column.
	Campaign string

	// Organization is the value of the Organization column.
	Organization string

	// Candidates are extra candidate names for targets, keyed by target
	// name. They are tried before the built-in candidates.
	Candidates map[string][]string

	// Derived holds expressions for extra columns, keyed by column name.
	Derived map[string]string

	// Log receives progress messages. If it is nil, the logrus
	// standard logger is used.
	Log logrus.FieldLogger
}

// Restricted returns the Restricted schema with c's extra candidates.
func (c Config) Restricted() Schema { return Restricted().WithCandidates(c.Candidates) }

// Comprehensive returns the Comprehensive schema with c's extra candidates.
func (c Config) Comprehensive() Schema { return Comprehensive().WithCandidates(c.Candidates) }

// RawFile is the merged campaign table.
func (c Config) RawFile() string {
	return filepath.Join(c.CampaignDir, c.Campaign+"_Raw.csv")
}

// RestrictedFile is the output path of the Restricted table.
func (c Config) RestrictedFile() string {
	return filepath.Join(c.CampaignDir, c.Campaign+"_Restricted.csv")
}

// ComprehensiveFile is the output path of the Comprehensive table.
func (c Config) ComprehensiveFile() string {
	return filepath.Join(c.CampaignDir, c.Campaign+"_Comprehensive.csv")
}

// LoadCandidates reads extra candidate names from the [Candidates] table
// of a TOML file, for example:
//
//	[Candidates]
//	BC_Mass = ["rBC_massConc", "SP2_rBC_conc"]
func LoadCandidates(path string) (map[string][]string, error) {
	var f struct {
		Candidates map[string][]string
	}
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("rename: reading candidates: %v", err)
	}
	return f.Candidates, nil
}

// Tables renames t into the Restricted and Comprehensive tables. The
// Comprehensive table is nil if it has no columns that the Restricted
// table lacks.
func (c Config) Tables(t *fieldprep.Table) (restricted, comprehensive *fieldprep.Table, err error) {
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	restricted, err = c.Restricted().Apply(t, c.Organization, c.Campaign)
	if err != nil {
		return nil, nil, err
	}
	comprehensive, err = c.Comprehensive().Apply(t, c.Organization, c.Campaign)
	if err != nil {
		return nil, nil, err
	}
	extra := Extra(restricted, comprehensive)
	if len(extra) == 0 {
		log.Info("rename: Comprehensive table holds no columns beyond the Restricted table")
		comprehensive = nil
	} else {
		log.WithField("columns", extra).Info("rename: additional Comprehensive columns")
	}
	if len(c.Derived) > 0 {
		if restricted, err = Derive(restricted, c.Derived); err != nil {
			return nil, nil, err
		}
		if comprehensive != nil {
			if comprehensive, err = Derive(comprehensive, c.Derived); err != nil {
				return nil, nil, err
			}
		}
	}
	return restricted, comprehensive, nil
}

// Run reads the raw campaign table, renames it, and writes the
// Restricted table and, if it has extra columns, the Comprehensive table.
func Run(c Config) (restricted, comprehensive *fieldprep.Table, err error) {
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	raw, err := fieldprep.ReadCSVFile(c.RawFile())
	if err != nil {
		return nil, nil, fmt.Errorf("rename: %w", err)
	}
	log.WithField("columns", raw.Names()).Debug("rename: loaded raw table")
	if restricted, comprehensive, err = c.Tables(raw); err != nil {
		return nil, nil, err
	}
	if err := fieldprep.WriteCSVFile(c.RestrictedFile(), restricted); err != nil {
		return nil, nil, fmt.Errorf("rename: %w", err)
	}
	log.WithField("file", c.RestrictedFile()).Info("rename: wrote Restricted table")
	if comprehensive != nil {
		if err := fieldprep.WriteCSVFile(c.ComprehensiveFile(), comprehensive); err != nil {
			return nil, nil, fmt.Errorf("rename: %w", err)
		}
		log.WithField("file", c.ComprehensiveFile()).Info("rename: wrote Comprehensive table")
	}
	return restricted, comprehensive, nil
}
