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

package icartt

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kr/pretty"
)

const sample = `17, 1001
Doe, Jane
NASA Langley Research Center
SP2 single particle soot photometer
NAAMES
1, 1
2015, 11, 12, 2016, 01, 05
1
Time_Start, seconds, elapsed seconds from 0 hours UT
2
1, 0.5
-9999, -9999
rBC_massConc, ng/m3, refractory black carbon mass concentration
Pressure, hPa
0
1
Time_Start, rBC_massConc, Pressure
36000, 12.5, 1000
36001, -9999, 998
36002, 4, -9999
`

func TestRead(t *testing.T) {
	d, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if d.PI != "Doe, Jane" || d.Mission != "NAAMES" {
		t.Errorf("metadata: %+v", d)
	}
	if want := time.Date(2015, 11, 12, 0, 0, 0, 0, time.UTC); !d.Collected.Equal(want) {
		t.Errorf("collected %v, want %v", d.Collected, want)
	}
	if d.Volume != 1 || d.NumVolumes != 1 || d.Interval != 1 {
		t.Errorf("volume %d/%d interval %g", d.Volume, d.NumVolumes, d.Interval)
	}
	if want := []string{"Time_Start", "rBC_massConc", "Pressure"}; !reflect.DeepEqual(d.Names(), want) {
		t.Errorf("names %v, want %v", d.Names(), want)
	}
	if d.Dependent[0].Units != "ng/m3" || d.Dependent[1].Scale != 0.5 {
		t.Errorf("dependent: %+v", d.Dependent)
	}
	if want := []string{"Time_Start, rBC_massConc, Pressure"}; !reflect.DeepEqual(d.NormalComments, want) {
		t.Errorf("comments %v, want %v", d.NormalComments, want)
	}
	var have [][]string
	for i := 0; i < d.Data.Len(); i++ {
		have = append(have, d.Data.Record(i))
	}
	want := [][]string{
		{"36000", "12.5", "500"},
		{"36001", "", "499"},
		{"36002", "4", ""},
	}
	if diff := pretty.Diff(have, want); len(diff) != 0 {
		t.Error(diff)
	}
}

func TestReadErrors(t *testing.T) {
	var tests = []struct {
		name, in string
	}{
		{name: "ffi", in: strings.Replace(sample, "17, 1001", "17, 2110", 1)},
		{name: "nlhead", in: strings.Replace(sample, "17, 1001", "16, 1001", 1)},
		{name: "truncated", in: strings.Join(strings.Split(sample, "\n")[:8], "\n")},
		{name: "short row", in: sample + "36003, 1\n"},
		{name: "bad value", in: sample + "36003, x, 1\n"},
		{name: "negative nv", in: strings.Replace(sample, "seconds from 0 hours UT\n2\n", "seconds from 0 hours UT\n-1\n", 1)},
		{name: "negative comments", in: strings.Replace(sample, "hPa\n0\n", "hPa\n-3\n", 1)},
		{name: "empty", in: ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(test.in)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	d, err := ReadFile("testdata/NAAMES-LAS_C130_20151112_R0.ict")
	if err != nil {
		t.Fatal(err)
	}
	if d.Data.Len() != 4 {
		t.Errorf("%d rows, want 4", d.Data.Len())
	}
	if want := []string{"Time_Mid", "LAS_Bin01", "LAS_Bin02", "LAS_Bin03"}; !reflect.DeepEqual(d.Names(), want) {
		t.Errorf("names %v, want %v", d.Names(), want)
	}
	if _, err := ReadFile("testdata/does_not_exist.ict"); err == nil {
		t.Error("missing file should fail")
	}
}
