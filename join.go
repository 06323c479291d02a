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

package fieldprep

import "fmt"

// LeftJoin joins right onto left using the numeric key column, which
// both tables must have. Every row of left is kept in its original order.
// A left row whose key matches more than one right row is repeated once
// for each match, and a left row without a match gets missing values in
// the right columns. Missing keys never match. Right columns whose names
// collide with left columns are renamed by appending suffix.
func LeftJoin(left, right *Table, key, suffix string) (*Table, error) {
	lk, rk := left.Column(key), right.Column(key)
	if lk == nil || rk == nil {
		return nil, fmt.Errorf("fieldprep: join key %q missing from input table", key)
	}
	if lk.IsText() || rk.IsText() {
		return nil, fmt.Errorf("fieldprep: join key %q is not numeric", key)
	}

	matches := make(map[float64][]int)
	for i, v := range rk.Float {
		if !IsMissing(v) {
			matches[v] = append(matches[v], i)
		}
	}

	// leftRows and rightRows hold the source row of each output row;
	// -1 in rightRows means no match.
	var leftRows, rightRows []int
	for i, v := range lk.Float {
		m := matches[v]
		if IsMissing(v) || len(m) == 0 {
			leftRows = append(leftRows, i)
			rightRows = append(rightRows, -1)
			continue
		}
		for _, j := range m {
			leftRows = append(leftRows, i)
			rightRows = append(rightRows, j)
		}
	}

	o := New()
	for _, c := range left.cols {
		if err := o.Insert(o.Width(), take(c, c.Name, leftRows)); err != nil {
			return nil, err
		}
	}
	for _, c := range right.cols {
		if c.Name == key {
			continue
		}
		name := c.Name
		if left.Has(name) {
			name += suffix
		}
		if err := o.Insert(o.Width(), take(c, name, rightRows)); err != nil {
			return nil, fmt.Errorf("fieldprep: joining: %w", err)
		}
	}
	return o, nil
}

// take returns a new column named name holding the cells of c at rows.
// A negative row gives a missing cell.
func take(c *Column, name string, rows []int) *Column {
	o := &Column{Name: name}
	if c.IsText() {
		o.Text = make([]string, len(rows))
		for i, r := range rows {
			if r >= 0 {
				o.Text[i] = c.Text[r]
			}
		}
		return o
	}
	o.Float = make([]float64, len(rows))
	for i, r := range rows {
		if r < 0 {
			o.Float[i] = Missing
		} else {
			o.Float[i] = c.Float[r]
		}
	}
	return o
}
