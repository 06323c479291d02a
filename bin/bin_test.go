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
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

// Diameters from the NAAMES campaign.
var (
	naamesOldAerosol = []float64{100.0, 112.2, 125.9, 141.3, 158.5, 177.8, 199.5, 223.9, 251.2, 281.8, 316.2,
		354.8, 398.1, 446.7, 501.2, 562.3, 631.0, 707.9, 794.3, 891.3, 1000.0, 1258.9, 1584.9, 1995.3, 2511.9, 3162.3}
	naamesNewAerosol = []float64{150, 169.8, 192.1, 217.5, 246.1, 278.6, 315.3, 356.8, 403.9, 457.1,
		517.3, 585.5, 662.7, 750}
	naamesOldCloud = []float64{2.5, 3.5, 4.5, 5.5, 6.5, 7.5, 8.5, 9.5, 10.5, 11.5, 12.5, 13.5, 15.0, 17.0,
		19.0, 21.0, 23.0, 25.0, 27.0, 29.0, 31.0, 33.0, 35.0, 37.0, 39.0, 41.0, 43.0, 45.0, 47.0, 49.0}
	naamesNewCloud = []float64{3, 5.3, 7.7, 10, 12.3, 14.7, 17, 19.3, 21.7, 24, 26.3, 28.7,
		31, 33.3, 35.7, 38, 40.3, 42.7, 45}
)

func TestBuildIndexBins(t *testing.T) {
	var tests = []struct {
		name     string
		old, new []float64
		want     [][]int
	}{
		{
			name: "scenario",
			old:  []float64{100, 200, 300},
			new:  []float64{250},
			want: [][]int{{0, 1}, {2}},
		},
		{
			name: "no new diameters",
			old:  []float64{100, 200, 300},
			new:  nil,
			want: [][]int{{0, 1, 2}},
		},
		{
			name: "collapsed boundary",
			old:  []float64{100, 200, 300},
			new:  []float64{150, 160, 250},
			want: [][]int{{0}, {}, {1}, {2}},
		},
		{
			name: "boundary equal to old diameter",
			old:  []float64{100, 200, 300},
			new:  []float64{200},
			want: [][]int{{0}, {1, 2}},
		},
		{
			name: "empty trailing group",
			old:  []float64{100, 200, 300},
			new:  []float64{250, 400},
			want: [][]int{{0, 1}, {2}, {}},
		},
		{
			name: "below all old diameters",
			old:  []float64{100, 200, 300},
			new:  []float64{50},
			want: [][]int{{}, {0, 1, 2}},
		},
		{
			name: "unsorted",
			old:  []float64{100, 200, 300},
			new:  []float64{250, 150},
			want: [][]int{{0, 1}, {}, {1, 2}},
		},
		{
			name: "no old diameters",
			old:  nil,
			new:  []float64{1},
			want: [][]int{{}, {}},
		},
		{
			name: "naames cloud",
			old:  naamesOldCloud,
			new:  naamesNewCloud,
			want: [][]int{{0}, {1, 2}, {3, 4, 5}, {6, 7}, {8, 9}, {10, 11}, {12}, {13, 14}, {15}, {16},
				{17}, {18}, {19}, {20, 21}, {22}, {23}, {24}, {25}, {26}, {27, 28, 29}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have := BuildIndexBins(test.old, test.new)
			if !reflect.DeepEqual(have, test.want) {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}
}

// checkPartition checks that the groups hold each index in [0, n)
// exactly once, in order.
func checkPartition(t *testing.T, groups [][]int, n int) {
	t.Helper()
	var all []int
	for _, g := range groups {
		all = append(all, g...)
	}
	if len(all) != n {
		t.Fatalf("groups hold %d indices, want %d: %v", len(all), n, groups)
	}
	for i, v := range all {
		if v != i {
			t.Fatalf("index %d is %d: %v", i, v, groups)
		}
	}
}

func TestBuildIndexBinsPartition(t *testing.T) {
	checkPartition(t, BuildIndexBins(naamesOldAerosol, naamesNewAerosol), len(naamesOldAerosol))
	checkPartition(t, BuildIndexBins(naamesOldCloud, naamesNewCloud), len(naamesOldCloud))

	r := rand.New(rand.NewSource(1))
	randomSorted := func(n int) []float64 {
		o := make([]float64, n)
		for i := range o {
			o[i] = r.Float64() * 1000
		}
		sort.Float64s(o)
		return o
	}
	for i := 0; i < 200; i++ {
		oldDiams := randomSorted(r.Intn(40))
		newDiams := randomSorted(r.Intn(20))
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			groups := BuildIndexBins(oldDiams, newDiams)
			if len(groups) != len(newDiams)+1 {
				t.Fatalf("%d groups, want %d", len(groups), len(newDiams)+1)
			}
			checkPartition(t, groups, len(oldDiams))

			// Maximum old index of each group is non-decreasing.
			last := -1
			for _, g := range groups {
				if len(g) == 0 {
					continue
				}
				if g[len(g)-1] < last {
					t.Fatalf("group maxima decrease: %v", groups)
				}
				last = g[len(g)-1]
			}
		})
	}
}

func TestNames(t *testing.T) {
	if have, want := Names(3, Aerosol), []string{"bin1", "bin2", "bin3"}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := Names(2, Cloud), []string{"cbin1", "cbin2"}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if have := Names(0, Cloud); len(have) != 0 {
		t.Errorf("have %v, want none", have)
	}
}

func TestParseLabel(t *testing.T) {
	for s, want := range map[string]Label{"aerosol": Aerosol, "Cloud": Cloud, " AEROSOL ": Aerosol} {
		have, err := ParseLabel(s)
		if err != nil {
			t.Fatal(err)
		}
		if have != want {
			t.Errorf("%q: have %v, want %v", s, have, want)
		}
	}
	if _, err := ParseLabel("ice"); err == nil {
		t.Error("invalid label should fail")
	}
}

func TestValidate(t *testing.T) {
	var tests = []struct {
		name     string
		old, new []float64
		fine     []string
		ok       bool
	}{
		{name: "ok", old: []float64{100, 200, 300}, new: []float64{250}, fine: Names(3, Aerosol), ok: true},
		{name: "naames", old: naamesOldCloud, new: naamesNewCloud, fine: Names(30, Cloud), ok: true},
		{name: "short names", old: []float64{100, 200, 300}, new: []float64{250}, fine: Names(2, Aerosol)},
		{name: "unsorted new", old: []float64{100, 200, 300}, new: []float64{250, 150}, fine: Names(3, Aerosol)},
		{name: "repeated old", old: []float64{100, 100, 300}, new: []float64{250}, fine: Names(3, Aerosol)},
		{name: "negative", old: []float64{-1, 200, 300}, new: []float64{250}, fine: Names(3, Aerosol)},
		{name: "empty group", old: []float64{100, 200, 300}, new: []float64{150, 160}, fine: Names(3, Aerosol)},
		{name: "empty trailing group", old: []float64{100, 200, 300}, new: []float64{250, 400}, fine: Names(3, Aerosol)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Validate(test.old, test.new, test.fine)
			if test.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			} else if !test.ok && err == nil {
				t.Error("expected an error")
			}
		})
	}
}
