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

// Package bin consolidates narrow particle size bin columns into fewer,
// coarser bins.
//
// A coarse bin value is the sum of the fine bin values it subsumes, with
// missing values counted as zero, except that a coarse value is missing if
// every fine value that contributes to it is missing. This distinguishes
// "no measurement" from "measured zero particles".
package bin

import (
	"fmt"
	"strings"
)

// Label specifies the measurement type of a run of bin columns.
type Label int

const (
	// Aerosol bins are named bin1, bin2, ...
	Aerosol Label = iota
	// Cloud bins are named cbin1, cbin2, ...
	Cloud
)

func (l Label) String() string {
	switch l {
	case Aerosol:
		return "aerosol"
	case Cloud:
		return "cloud"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

func (l Label) prefix() string {
	if l == Cloud {
		return "cbin"
	}
	return "bin"
}

// ParseLabel returns the label with the given name, which is
// matched case-insensitively.
func ParseLabel(s string) (Label, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aerosol":
		return Aerosol, nil
	case "cloud":
		return Cloud, nil
	default:
		return 0, fmt.Errorf("bin: invalid label %q; valid options are aerosol and cloud", s)
	}
}

// Names returns the names of n bin columns with the given label, for
// example bin1, bin2, ..., binN.
func Names(n int, l Label) []string {
	o := make([]string, n)
	for i := range o {
		o[i] = fmt.Sprintf("%s%d", l.prefix(), i+1)
	}
	return o
}

// BuildIndexBins returns the groups of indices into oldDiams that fold
// into each of the len(newDiams)+1 coarse bins.
//
// For each new diameter d, high(d) is the largest index i where
// oldDiams[i] < d, or -1 if there is none. Group k holds the indices in
// (high(d[k-1]), high(d[k])], with high(d[-1]) = -1, and the final
// group holds the remaining indices above high(d[len(newDiams)-1]).
// Groups can be empty. If newDiams is sorted, the groups partition the
// indices of oldDiams in order; BuildIndexBins does not check that it is.
func BuildIndexBins(oldDiams, newDiams []float64) [][]int {
	o := make([][]int, 0, len(newDiams)+1)
	prev := -1
	for _, d := range newDiams {
		high := -1
		for i, od := range oldDiams {
			if od < d {
				high = i
			}
		}
		o = append(o, indexRange(prev+1, high+1))
		prev = high
	}
	return append(o, indexRange(prev+1, len(oldDiams)))
}

// indexRange returns the integers in [begin, end), which is
// empty if end <= begin.
func indexRange(begin, end int) []int {
	o := []int{}
	for i := begin; i < end; i++ {
		o = append(o, i)
	}
	return o
}

// Validate checks that oldDiams and newDiams are positive and strictly
// increasing, that there is one fine column name per old diameter, and
// that no coarse bin would be empty.
func Validate(oldDiams, newDiams []float64, fineNames []string) error {
	if len(fineNames) != len(oldDiams) {
		return fmt.Errorf("bin: %d fine column names for %d old diameters", len(fineNames), len(oldDiams))
	}
	if err := increasing("old", oldDiams); err != nil {
		return err
	}
	if err := increasing("new", newDiams); err != nil {
		return err
	}
	for i, g := range BuildIndexBins(oldDiams, newDiams) {
		if len(g) == 0 {
			return fmt.Errorf("bin: coarse bin %d would hold no fine bins; new diameters %v are "+
				"finer than or outside of old diameters %v", i+1, newDiams, oldDiams)
		}
	}
	return nil
}

func increasing(name string, d []float64) error {
	for i, v := range d {
		if !(v > 0) {
			return fmt.Errorf("bin: %s diameter %d is %g but must be > 0", name, i, v)
		}
		if i > 0 && !(v > d[i-1]) {
			return fmt.Errorf("bin: %s diameters must be strictly increasing but %g follows %g", name, v, d[i-1])
		}
	}
	return nil
}
