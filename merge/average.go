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

package merge

import (
	"fmt"
	"math"

	"github.com/spatialmodel/fieldprep"
	"gonum.org/v1/gonum/floats"
)

// TimeKey is the name of the column that instruments are aligned on.
const TimeKey = "merge_time"

// windowStart returns the time that t falls into when times are grouped
// into windows of the given number of seconds.
func windowStart(t float64, window int) float64 {
	w := float64(window)
	return math.RoundToEven(math.Trunc(t)/w) * w
}

// AverageSeconds groups the rows of t into windows of the given
// number of seconds according to the TimeKey column, and replaces each
// group with a single row holding the mean of the non-missing values in
// each numeric column. Text columns keep their first non-empty value.
// Groups are ordered by their first row. Rows with a missing time
// are dropped. If window <= 0, t is returned unchanged.
func AverageSeconds(t *fieldprep.Table, window int) (*fieldprep.Table, error) {
	if window <= 0 {
		return t, nil
	}
	tc := t.Column(TimeKey)
	if tc == nil || tc.IsText() {
		return nil, fmt.Errorf("merge: averaging: no numeric %s column", TimeKey)
	}
	var keys []float64
	groups := make(map[float64][]int)
	for i, v := range tc.Float {
		if fieldprep.IsMissing(v) {
			continue
		}
		k := windowStart(v, window)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}

	o := fieldprep.New()
	for _, c := range t.Columns() {
		var err error
		switch {
		case c.Name == TimeKey:
			err = o.AddFloat(c.Name, append([]float64{}, keys...))
		case c.IsText():
			v := make([]string, len(keys))
			for j, k := range keys {
				for _, i := range groups[k] {
					if c.Text[i] != "" {
						v[j] = c.Text[i]
						break
					}
				}
			}
			err = o.AddText(c.Name, v)
		default:
			v := make([]float64, len(keys))
			vals := make([]float64, 0)
			for j, k := range keys {
				vals = vals[:0]
				for _, i := range groups[k] {
					if !fieldprep.IsMissing(c.Float[i]) {
						vals = append(vals, c.Float[i])
					}
				}
				if len(vals) == 0 {
					v[j] = fieldprep.Missing
					continue
				}
				v[j] = floats.Sum(vals) / float64(len(vals))
			}
			err = o.AddFloat(c.Name, v)
		}
		if err != nil {
			return nil, fmt.Errorf("merge: averaging: %w", err)
		}
	}
	return o, nil
}
