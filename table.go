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

// Package fieldprep holds the tabular data model shared by the stages of
// the field-campaign data preparation pipeline: merging raw instrument
// files, renaming columns into a standard schema, and consolidating
// particle size bins.
package fieldprep

import (
	"fmt"
	"math"
)

// Version gives the version number.
const Version = "1.0.0"

// Missing is the value stored in numeric columns for cells without a
// measurement.
var Missing = math.NaN()

// IsMissing returns whether v marks a missing numeric cell.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// A Column is a named column of a Table. Numeric columns hold their
// values in Float, with NaN marking missing cells. Text columns hold their
// values in Text, with "" marking missing cells.
type Column struct {
	Name  string
	Float []float64
	Text  []string
}

// IsText returns whether c is a text column.
func (c *Column) IsText() bool { return c.Text != nil }

// Len returns the number of cells in c.
func (c *Column) Len() int {
	if c.IsText() {
		return len(c.Text)
	}
	return len(c.Float)
}

// IsMissing returns whether cell i is missing.
func (c *Column) IsMissing(i int) bool {
	if c.IsText() {
		return c.Text[i] == ""
	}
	return IsMissing(c.Float[i])
}

// String returns the text representation of cell i. Missing
// cells are represented by an empty string.
func (c *Column) String(i int) string {
	if c.IsText() {
		return c.Text[i]
	}
	return formatFloat(c.Float[i])
}

// clone returns a deep copy of c.
func (c *Column) clone() *Column {
	o := &Column{Name: c.Name}
	if c.IsText() {
		o.Text = append(make([]string, 0, len(c.Text)), c.Text...)
	} else {
		o.Float = append(make([]float64, 0, len(c.Float)), c.Float...)
	}
	return o
}

// Copy returns a deep copy of c with the given name.
func (c *Column) Copy(name string) *Column {
	o := c.clone()
	o.Name = name
	return o
}

// toText converts c to a text column in place.
func (c *Column) toText() {
	if c.IsText() {
		return
	}
	c.Text = make([]string, len(c.Float))
	for i := range c.Float {
		c.Text[i] = formatFloat(c.Float[i])
	}
	c.Float = nil
}

// A Table is an ordered set of uniquely named columns of equal length.
// The zero value is an empty table ready to use.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New returns a new empty table.
func New() *Table { return &Table{} }

// Len returns the number of rows in t.
func (t *Table) Len() int { return t.rows }

// Width returns the number of columns in t.
func (t *Table) Width() int { return len(t.cols) }

// Names returns the column names of t in order.
func (t *Table) Names() []string {
	o := make([]string, len(t.cols))
	for i, c := range t.cols {
		o[i] = c.Name
	}
	return o
}

// Index returns the position of the named column, or -1 if t does not
// have it.
func (t *Table) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Has returns whether t has the named column.
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Column returns the named column, or nil if t does not have it.
func (t *Table) Column(name string) *Column {
	if i := t.Index(name); i >= 0 {
		return t.cols[i]
	}
	return nil
}

// Columns returns the columns of t in order. The columns are shared with
// t, not copied.
func (t *Table) Columns() []*Column { return t.cols }

// AddFloat appends a numeric column to t.
func (t *Table) AddFloat(name string, v []float64) error {
	return t.Insert(len(t.cols), &Column{Name: name, Float: v})
}

// AddText appends a text column to t.
func (t *Table) AddText(name string, v []string) error {
	if v == nil {
		v = []string{}
	}
	return t.Insert(len(t.cols), &Column{Name: name, Text: v})
}

// AddConst appends a text column holding value in every row.
func (t *Table) AddConst(name, value string) error {
	v := make([]string, t.rows)
	for i := range v {
		v[i] = value
	}
	return t.AddText(name, v)
}

// Insert places c at position pos, shifting later columns right.
func (t *Table) Insert(pos int, c *Column) error {
	if c.Float == nil && c.Text == nil {
		c.Float = []float64{}
	}
	if _, ok := t.index[c.Name]; ok {
		return fmt.Errorf("fieldprep: duplicate column %q", c.Name)
	}
	if pos < 0 || pos > len(t.cols) {
		return fmt.Errorf("fieldprep: column position %d out of range [0, %d]", pos, len(t.cols))
	}
	if len(t.cols) == 0 {
		t.rows = c.Len()
	} else if c.Len() != t.rows {
		return fmt.Errorf("fieldprep: column %q has %d rows; table has %d", c.Name, c.Len(), t.rows)
	}
	t.cols = append(t.cols, nil)
	copy(t.cols[pos+1:], t.cols[pos:])
	t.cols[pos] = c
	t.reindex()
	return nil
}

// Drop removes the named columns from t. Names that t does not have are
// ignored.
func (t *Table) Drop(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.cols[:0]
	for _, c := range t.cols {
		if !drop[c.Name] {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(t.cols); i++ {
		t.cols[i] = nil
	}
	t.cols = kept
	t.reindex()
}

// Rename changes the name of column from to to.
func (t *Table) Rename(from, to string) error {
	i := t.Index(from)
	if i < 0 {
		return fmt.Errorf("fieldprep: renaming missing column %q", from)
	}
	if from == to {
		return nil
	}
	if t.Has(to) {
		return fmt.Errorf("fieldprep: renaming %q: duplicate column %q", from, to)
	}
	t.cols[i].Name = to
	t.reindex()
	return nil
}

// Select returns a new table holding copies of the named columns in the
// given order.
func (t *Table) Select(names ...string) (*Table, error) {
	o := New()
	o.rows = t.rows
	for _, n := range names {
		c := t.Column(n)
		if c == nil {
			return nil, fmt.Errorf("fieldprep: selecting missing column %q", n)
		}
		if err := o.Insert(len(o.cols), c.clone()); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	o := &Table{rows: t.rows, cols: make([]*Column, len(t.cols))}
	for i, c := range t.cols {
		o.cols[i] = c.clone()
	}
	o.reindex()
	return o
}

// Record returns the text representation of row i.
func (t *Table) Record(i int) []string {
	o := make([]string, len(t.cols))
	for j, c := range t.cols {
		o[j] = c.String(i)
	}
	return o
}

// Float returns the value of the named numeric column at row i,
// and false if there is no such numeric column.
func (t *Table) Float(name string, i int) (float64, bool) {
	c := t.Column(name)
	if c == nil || c.IsText() {
		return Missing, false
	}
	return c.Float[i], true
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		t.index[c.Name] = i
	}
	if len(t.cols) == 0 {
		t.rows = 0
	}
}

// Concat concatenates tables row-wise. The columns of the result are the
// union of the columns of all inputs in order of first appearance, and
// cells that an input does not have are missing. A column that is text in
// any input is text in the result.
func Concat(tables ...*Table) *Table {
	var names []string
	text := make(map[string]bool)
	seen := make(map[string]bool)
	rows := 0
	for _, t := range tables {
		rows += t.rows
		for _, c := range t.cols {
			if !seen[c.Name] {
				seen[c.Name] = true
				names = append(names, c.Name)
			}
			if c.IsText() {
				text[c.Name] = true
			}
		}
	}
	o := New()
	for _, n := range names {
		c := &Column{Name: n}
		if text[n] {
			c.Text = make([]string, 0, rows)
		} else {
			c.Float = make([]float64, 0, rows)
		}
		for _, t := range tables {
			src := t.Column(n)
			for i := 0; i < t.rows; i++ {
				switch {
				case text[n] && src == nil:
					c.Text = append(c.Text, "")
				case text[n]:
					c.Text = append(c.Text, src.String(i))
				case src == nil:
					c.Float = append(c.Float, Missing)
				default:
					c.Float = append(c.Float, src.Float[i])
				}
			}
		}
		o.cols = append(o.cols, c)
	}
	o.reindex()
	if len(o.cols) > 0 {
		o.rows = rows
	}
	return o
}
