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

// Package icartt reads airborne measurement files in the ICARTT format.
// Only File Format Index 1001 (one independent variable, usually time) is
// supported. The format is described at
// https://www.earthdata.nasa.gov/esdis/esco/standards-and-practices/icartt-file-format.
package icartt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spatialmodel/fieldprep"
)

// Variable describes one variable in an ICARTT file.
type Variable struct {
	// Name is the short name of the variable, which is used as the
	// column name.
	Name string

	// Units are the units of the variable.
	Units string

	// Description is the rest of the variable definition line, if any.
	Description string

	// Scale is the factor that stored values are multiplied by.
	Scale float64

	// Missing is the value that marks missing data.
	Missing float64
}

// Dataset holds the contents of an ICARTT file.
type Dataset struct {
	PI, Organization, DataSource, Mission string

	// Volume is the number of this file within NumVolumes files.
	Volume, NumVolumes int

	// Collected is the UTC date the data were collected and Revised
	// is the date of the last revision.
	Collected, Revised time.Time

	// Interval is the data interval, in seconds. 0 means the data
	// are not regularly spaced.
	Interval float64

	// Independent is the independent variable, usually time.
	Independent Variable

	// Dependent holds the dependent variables in column order.
	Dependent []Variable

	SpecialComments, NormalComments []string

	// Data holds one column per variable, with the independent
	// variable first.
	Data *fieldprep.Table
}

// ReadFile reads an ICARTT file.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("icartt: %w", err)
	}
	defer f.Close()
	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, path)
	}
	return d, nil
}

// lineReader reads trimmed lines and keeps track of the line number.
type lineReader struct {
	s    *bufio.Scanner
	line int
}

func (r *lineReader) next() (string, error) {
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			return "", fmt.Errorf("icartt: line %d: %w", r.line+1, err)
		}
		return "", fmt.Errorf("icartt: unexpected end of file after line %d", r.line)
	}
	r.line++
	return strings.TrimSpace(r.s.Text()), nil
}

// nextFields returns the comma-separated fields of the next line.
func (r *lineReader) nextFields() ([]string, error) {
	l, err := r.next()
	if err != nil {
		return nil, err
	}
	return splitFields(l), nil
}

func (r *lineReader) nextInts(n int) ([]int, error) {
	f, err := r.nextFields()
	if err != nil {
		return nil, err
	}
	if len(f) < n {
		return nil, fmt.Errorf("icartt: line %d: want %d values, have %d", r.line, n, len(f))
	}
	o := make([]int, n)
	for i := range o {
		if o[i], err = strconv.Atoi(f[i]); err != nil {
			return nil, fmt.Errorf("icartt: line %d: %w", r.line, err)
		}
	}
	return o, nil
}

// nextCount reads a line holding a single non-negative count.
func (r *lineReader) nextCount() (int, error) {
	n, err := r.nextInts(1)
	if err != nil {
		return 0, err
	}
	if n[0] < 0 {
		return 0, fmt.Errorf("icartt: line %d: negative count %d", r.line, n[0])
	}
	return n[0], nil
}

func (r *lineReader) nextFloats(n int) ([]float64, error) {
	f, err := r.nextFields()
	if err != nil {
		return nil, err
	}
	if len(f) < n {
		return nil, fmt.Errorf("icartt: line %d: want %d values, have %d", r.line, n, len(f))
	}
	o := make([]float64, n)
	for i := range o {
		if o[i], err = strconv.ParseFloat(f[i], 64); err != nil {
			return nil, fmt.Errorf("icartt: line %d: %w", r.line, err)
		}
	}
	return o, nil
}

func (r *lineReader) nextVariable() (Variable, error) {
	f, err := r.nextFields()
	if err != nil {
		return Variable{}, err
	}
	if f[0] == "" {
		return Variable{}, fmt.Errorf("icartt: line %d: empty variable name", r.line)
	}
	v := Variable{Name: f[0], Scale: 1}
	if len(f) > 1 {
		v.Units = f[1]
	}
	if len(f) > 2 {
		v.Description = strings.Join(f[2:], ", ")
	}
	return v, nil
}

// splitFields splits a line on commas, or on white space if it
// contains no commas.
func splitFields(l string) []string {
	var f []string
	if strings.Contains(l, ",") {
		f = strings.Split(l, ",")
	} else {
		f = strings.Fields(l)
	}
	for i := range f {
		f[i] = strings.TrimSpace(f[i])
	}
	if len(f) == 0 {
		f = []string{""}
	}
	return f
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// Read reads an ICARTT dataset from r. Dependent values equal to their
// variable's missing value flag are read as missing; all other dependent
// values are multiplied by the variable's scale factor.
func Read(r io.Reader) (*Dataset, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lr := &lineReader{s: s}

	h, err := lr.nextInts(2)
	if err != nil {
		return nil, err
	}
	nlhead, ffi := h[0], h[1]
	if ffi != 1001 {
		return nil, fmt.Errorf("icartt: file format index %d is not supported; only 1001 is", ffi)
	}

	d := new(Dataset)
	for _, p := range []*string{&d.PI, &d.Organization, &d.DataSource, &d.Mission} {
		if *p, err = lr.next(); err != nil {
			return nil, err
		}
	}
	vol, err := lr.nextInts(2)
	if err != nil {
		return nil, err
	}
	d.Volume, d.NumVolumes = vol[0], vol[1]
	dates, err := lr.nextInts(6)
	if err != nil {
		return nil, err
	}
	d.Collected = date(dates[0], dates[1], dates[2])
	d.Revised = date(dates[3], dates[4], dates[5])
	interval, err := lr.nextFloats(1)
	if err != nil {
		return nil, err
	}
	d.Interval = interval[0]
	if d.Independent, err = lr.nextVariable(); err != nil {
		return nil, err
	}
	nv, err := lr.nextCount()
	if err != nil {
		return nil, err
	}
	scales, err := lr.nextFloats(nv)
	if err != nil {
		return nil, err
	}
	missing, err := lr.nextFloats(nv)
	if err != nil {
		return nil, err
	}
	d.Dependent = make([]Variable, nv)
	for i := range d.Dependent {
		if d.Dependent[i], err = lr.nextVariable(); err != nil {
			return nil, err
		}
		d.Dependent[i].Scale = scales[i]
		d.Dependent[i].Missing = missing[i]
	}
	for _, c := range []*[]string{&d.SpecialComments, &d.NormalComments} {
		n, err := lr.nextCount()
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			l, err := lr.next()
			if err != nil {
				return nil, err
			}
			*c = append(*c, l)
		}
	}
	if lr.line != nlhead {
		return nil, fmt.Errorf("icartt: header has %d lines but NLHEAD is %d", lr.line, nlhead)
	}

	cols := make([][]float64, len(d.Dependent)+1)
	for s.Scan() {
		lr.line++
		l := strings.TrimSpace(s.Text())
		if l == "" {
			continue
		}
		f := splitFields(l)
		if len(f) != len(cols) {
			return nil, fmt.Errorf("icartt: line %d has %d values; want %d", lr.line, len(f), len(cols))
		}
		for j, v := range f {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("icartt: line %d: %w", lr.line, err)
			}
			if j > 0 {
				dv := d.Dependent[j-1]
				if x == dv.Missing {
					x = fieldprep.Missing
				} else {
					x *= dv.Scale
				}
			}
			cols[j] = append(cols[j], x)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("icartt: %w", err)
	}

	d.Data = fieldprep.New()
	for j, c := range cols {
		if c == nil {
			c = []float64{}
		}
		name := d.Independent.Name
		if j > 0 {
			name = d.Dependent[j-1].Name
		}
		if err := d.Data.AddFloat(name, c); err != nil {
			return nil, fmt.Errorf("icartt: %w", err)
		}
	}
	return d, nil
}

// Names returns the names of all variables in d, independent
// variable first.
func (d *Dataset) Names() []string {
	o := []string{d.Independent.Name}
	for _, v := range d.Dependent {
		o = append(o, v.Name)
	}
	return o
}
