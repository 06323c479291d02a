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

package bin

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/fieldprep"
	"gonum.org/v1/gonum/floats"
)

// A Binning specifies how to consolidate one run of bin columns.
type Binning struct {
	// Label is the measurement type of the bins.
	Label Label

	// Old holds the diameters of the existing fine bins, whose columns
	// are named Names(len(Old), Label).
	Old []float64

	// New holds the boundary diameters of the desired coarse bins.
	// There will be len(New)+1 coarse bins.
	New []float64
}

// Consolidator replaces fine bin columns with coarse bin columns.
//
// By default a Consolidator is lenient: configuration mismatches such as
// missing fine columns or coarse bins that no fine bin falls into are
// logged and produce missing values rather than errors. Such output is
// usually a sign of a configuration mistake. If Strict is true these
// conditions are errors instead.
type Consolidator struct {
	Strict bool

	// Log receives warnings about lenient handling. If it is nil, the
	// logrus standard logger is used.
	Log logrus.FieldLogger
}

func (c Consolidator) log() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// Apply consolidates the fine bin columns described by b, returning a new
// table. t is not modified.
func (c Consolidator) Apply(t *fieldprep.Table, b Binning) (*fieldprep.Table, error) {
	fine := Names(len(b.Old), b.Label)
	if c.Strict {
		if err := Validate(b.Old, b.New, fine); err != nil {
			return nil, fmt.Errorf("%w (%s bins)", err, b.Label)
		}
	}
	return c.Consolidate(t, BuildIndexBins(b.Old, b.New), fine, b.Label)
}

// Consolidate returns a copy of t where the columns named in fineNames
// are replaced by one coarse column per group in indexBins. Each group
// holds positions in fineNames; the coarse column for group i is
// named Names(len(indexBins), l)[i] and holds the row-wise sum of the
// group's fine columns, subject to the missing value rule described in
// the package documentation. A group without any columns gives a coarse
// column where every value is missing.
//
// The coarse columns are placed, in order, where the first fine column
// present in t was. If none of the fine columns are present they are
// appended at the end of the table. Other columns keep their order and
// values.
//
// Indices outside of fineNames are ignored. Fine columns that t does not
// have, or that are not numeric, are ignored with a warning unless c is
// strict.
func (c Consolidator) Consolidate(t *fieldprep.Table, indexBins [][]int, fineNames []string, l Label) (*fieldprep.Table, error) {
	log := c.log().WithField("label", l.String())
	coarseNames := Names(len(indexBins), l)

	cols := make([]*fieldprep.Column, len(indexBins))
	for gi, group := range indexBins {
		var src [][]float64
		for _, i := range group {
			if i < 0 || i >= len(fineNames) {
				log.WithField("index", i).Warn("bin: ignoring fine bin index with no column name")
				continue
			}
			fc := t.Column(fineNames[i])
			switch {
			case fc == nil && c.Strict:
				return nil, fmt.Errorf("bin: fine column %q is missing", fineNames[i])
			case fc == nil:
				log.WithField("column", fineNames[i]).Warn("bin: fine column is missing; ignoring it")
				continue
			case fc.IsText() && c.Strict:
				return nil, fmt.Errorf("bin: fine column %q is not numeric", fineNames[i])
			case fc.IsText():
				log.WithField("column", fineNames[i]).Warn("bin: fine column is not numeric; ignoring it")
				continue
			}
			src = append(src, fc.Float)
		}
		if len(src) == 0 {
			if c.Strict {
				return nil, fmt.Errorf("bin: coarse column %q has no fine columns", coarseNames[gi])
			}
			log.WithField("column", coarseNames[gi]).Warn("bin: coarse column has no fine columns; all of its values will be missing")
		}
		cols[gi] = &fieldprep.Column{Name: coarseNames[gi], Float: sumRows(src, t.Len())}
	}

	o := t.Clone()
	insertAt := -1
	for i, n := range o.Names() {
		if isFine(n, fineNames) {
			insertAt = i
			break
		}
	}
	// Columns before the first fine column are never dropped, so its
	// position is unchanged by the drop.
	o.Drop(fineNames...)
	if insertAt < 0 {
		insertAt = o.Width()
	}
	for i, col := range cols {
		if o.Has(col.Name) {
			return nil, fmt.Errorf("bin: coarse column %q would duplicate an existing column", col.Name)
		}
		if err := o.Insert(insertAt+i, col); err != nil {
			return nil, fmt.Errorf("bin: %w", err)
		}
	}
	return o, nil
}

func isFine(name string, fineNames []string) bool {
	for _, f := range fineNames {
		if f == name {
			return true
		}
	}
	return false
}

// sumRows returns the row-wise sums of src, ignoring missing values.
// A row is missing if every value in it is missing, or if src is empty.
func sumRows(src [][]float64, rows int) []float64 {
	o := make([]float64, rows)
	row := make([]float64, 0, len(src))
	for i := range o {
		row = row[:0]
		for _, s := range src {
			if !fieldprep.IsMissing(s[i]) {
				row = append(row, s[i])
			}
		}
		if len(row) == 0 {
			o[i] = fieldprep.Missing
			continue
		}
		o[i] = floats.Sum(row)
	}
	return o
}
