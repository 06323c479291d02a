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
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/fieldprep"
	"github.com/spatialmodel/fieldprep/bin"
	"github.com/spatialmodel/fieldprep/merge"
	"github.com/spatialmodel/fieldprep/rename"
)

// BinStage specifies how to consolidate the bins of the renamed tables
// of a campaign.
type BinStage struct {
	CampaignDir, Campaign string

	// Aerosol bins are consolidated in both tables, Cloud bins only in
	// the Comprehensive table.
	Aerosol, Cloud bin.Binning

	Consolidator bin.Consolidator

	// XLSXFile, if not empty, is a workbook that the binned tables are
	// also written to.
	XLSXFile string
}

func (c BinStage) path(suffix string) string {
	return filepath.Join(c.CampaignDir, c.Campaign+suffix)
}

// Bin consolidates the bins of <Campaign>_Restricted.csv and, if it
// exists, <Campaign>_Comprehensive.csv.
func Bin(c BinStage) error {
	var sheets []fieldprep.Sheet

	r, err := fieldprep.ReadCSVFile(c.path("_Restricted.csv"))
	if err != nil {
		return err
	}
	r, err = c.Consolidator.Apply(r, c.Aerosol)
	if err != nil {
		return err
	}
	out := c.path("_Restricted_renamed_binned.csv")
	if err := fieldprep.WriteCSVFile(out, r); err != nil {
		return err
	}
	logrus.WithField("file", out).Info("bin: wrote binned Restricted table")
	sheets = append(sheets, fieldprep.Sheet{Name: "Restricted", Table: r})

	in := c.path("_Comprehensive.csv")
	if _, err := os.Stat(in); err == nil {
		t, err := fieldprep.ReadCSVFile(in)
		if err != nil {
			return err
		}
		for _, b := range []bin.Binning{c.Aerosol, c.Cloud} {
			if t, err = c.Consolidator.Apply(t, b); err != nil {
				return err
			}
		}
		out := c.path("_Comprehensive_renamed_binned.csv")
		if err := fieldprep.WriteCSVFile(out, t); err != nil {
			return err
		}
		logrus.WithField("file", out).Info("bin: wrote binned Comprehensive table")
		sheets = append(sheets, fieldprep.Sheet{Name: "Comprehensive", Table: t})
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("fieldprep: %v", err)
	}

	if c.XLSXFile != "" {
		if err := fieldprep.WriteXLSX(c.XLSXFile, sheets...); err != nil {
			return err
		}
		logrus.WithField("file", c.XLSXFile).Info("bin: wrote workbook")
	}
	return nil
}

// runRename runs the rename stage and removes any Comprehensive table
// left over from an earlier run when the current one has no extra
// columns, so that the bin stage does not pick it up.
func runRename(c rename.Config) error {
	_, comprehensive, err := rename.Run(c)
	if err != nil {
		return err
	}
	if comprehensive == nil {
		if err := os.Remove(c.ComprehensiveFile()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("fieldprep: %v", err)
		}
	}
	return nil
}

// Combine writes the concatenation of the CSV files matching pattern to
// output. The files are read before output is created, so output may
// match pattern.
func Combine(pattern, output string) error {
	b := new(bytes.Buffer)
	files, err := merge.Combine(pattern, b)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, b.Bytes(), 0644); err != nil {
		return fmt.Errorf("fieldprep: %v", err)
	}
	logrus.WithFields(logrus.Fields{"files": len(files), "output": output}).Info("combine: wrote combined file")
	return nil
}
