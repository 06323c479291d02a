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
	"io"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/fieldprep"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func readTable(t *testing.T, s string) *fieldprep.Table {
	t.Helper()
	tbl, err := fieldprep.ReadCSV(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func records(t *fieldprep.Table) [][]string {
	o := [][]string{t.Names()}
	for i := 0; i < t.Len(); i++ {
		o = append(o, t.Record(i))
	}
	return o
}

func TestConsolidate(t *testing.T) {
	c := Consolidator{Log: quietLogger()}

	t.Run("scenario", func(t *testing.T) {
		tbl := readTable(t, "UTC,bin1,bin2,bin3,Sc450_total\n1,10,20,,5\n")
		have, err := c.Apply(tbl, Binning{Label: Aerosol, Old: []float64{100, 200, 300}, New: []float64{250}})
		if err != nil {
			t.Fatal(err)
		}
		want := [][]string{
			{"UTC", "bin1", "bin2", "Sc450_total"},
			{"1", "30", "", "5"},
		}
		if diff := pretty.Diff(records(have), want); len(diff) != 0 {
			t.Error(diff)
		}
	})

	t.Run("missing propagation", func(t *testing.T) {
		tbl := readTable(t, "bin1,bin2,bin3\n5,,3\n,,\n0,,\n")
		have, err := c.Consolidate(tbl, [][]int{{0, 1, 2}}, Names(3, Aerosol), Aerosol)
		if err != nil {
			t.Fatal(err)
		}
		want := [][]string{{"bin1"}, {"8"}, {""}, {"0"}}
		if diff := pretty.Diff(records(have), want); len(diff) != 0 {
			t.Error(diff)
		}
	})

	t.Run("no new diameters", func(t *testing.T) {
		tbl := readTable(t, "cbin1,cbin2,cbin3,LWC\n1,2,3,0.5\n,2,,0.1\n,,,0\n")
		have, err := c.Apply(tbl, Binning{Label: Cloud, Old: []float64{2.5, 3.5, 4.5}})
		if err != nil {
			t.Fatal(err)
		}
		want := [][]string{{"cbin1", "LWC"}, {"6", "0.5"}, {"2", "0.1"}, {"", "0"}}
		if diff := pretty.Diff(records(have), want); len(diff) != 0 {
			t.Error(diff)
		}
	})

	t.Run("position", func(t *testing.T) {
		tbl := readTable(t, "Organization,UTC,Date,bin1,bin2,bin3,bin4,Abs470_total\n"+
			"NASA,1,d,1,2,3,4,9\n")
		have, err := c.Apply(tbl, Binning{Label: Aerosol, Old: []float64{1, 2, 3, 4}, New: []float64{2.5}})
		if err != nil {
			t.Fatal(err)
		}
		want := [][]string{
			{"Organization", "UTC", "Date", "bin1", "bin2", "Abs470_total"},
			{"NASA", "1", "d", "3", "7", "9"},
		}
		if diff := pretty.Diff(records(have), want); len(diff) != 0 {
			t.Error(diff)
		}
	})

	t.Run("identity", func(t *testing.T) {
		tbl := readTable(t, "x,bin1,bin2,bin3\na,1,,3\nb,,5,\n")
		old := []float64{100, 200, 300}
		// Boundaries just above each old diameter put every fine bin
		// into its own group, shifted by one.
		have, err := c.Apply(tbl, Binning{Label: Aerosol, Old: old, New: []float64{101, 201, 301}})
		if err != nil {
			t.Fatal(err)
		}
		want := [][]string{
			{"x", "bin1", "bin2", "bin3", "bin4"},
			{"a", "1", "", "3", ""},
			{"b", "", "5", "", ""},
		}
		if diff := pretty.Diff(records(have), want); len(diff) != 0 {
			t.Error(diff)
		}

		// With the new diameters equal to the old ones, the first group
		// is empty and the rest hold one fine bin each.
		have, err = c.Apply(tbl, Binning{Label: Aerosol, Old: old, New: old})
		if err != nil {
			t.Fatal(err)
		}
		want = [][]string{
			{"x", "bin1", "bin2", "bin3", "bin4"},
			{"a", "", "1", "", "3"},
			{"b", "", "", "5", ""},
		}
		if diff := pretty.Diff(records(have), want); len(diff) != 0 {
			t.Error(diff)
		}
	})

	t.Run("input unchanged", func(t *testing.T) {
		tbl := readTable(t, "bin1,bin2\n1,2\n")
		if _, err := c.Apply(tbl, Binning{Label: Aerosol, Old: []float64{1, 2}}); err != nil {
			t.Fatal(err)
		}
		want := [][]string{{"bin1", "bin2"}, {"1", "2"}}
		if diff := pretty.Diff(records(tbl), want); len(diff) != 0 {
			t.Error(diff)
		}
	})

	t.Run("lenient mismatch", func(t *testing.T) {
		// bin3 is missing and index 5 has no name.
		tbl := readTable(t, "a,bin1,bin2\n0,1,2\n")
		have, err := c.Consolidate(tbl, [][]int{{0}, {1, 2}, {5}}, Names(3, Aerosol), Aerosol)
		if err != nil {
			t.Fatal(err)
		}
		want := [][]string{{"a", "bin1", "bin2", "bin3"}, {"0", "1", "2", ""}}
		if diff := pretty.Diff(records(have), want); len(diff) != 0 {
			t.Error(diff)
		}
	})

	t.Run("no fine columns present", func(t *testing.T) {
		tbl := readTable(t, "a,b\n1,2\n")
		have, err := c.Apply(tbl, Binning{Label: Cloud, Old: []float64{1, 2}, New: []float64{1.5}})
		if err != nil {
			t.Fatal(err)
		}
		want := [][]string{{"a", "b", "cbin1", "cbin2"}, {"1", "2", "", ""}}
		if diff := pretty.Diff(records(have), want); len(diff) != 0 {
			t.Error(diff)
		}
	})

	t.Run("text column", func(t *testing.T) {
		tbl := readTable(t, "bin1,bin2\n1,x\n2,\n")
		have, err := c.Apply(tbl, Binning{Label: Aerosol, Old: []float64{1, 2}})
		if err != nil {
			t.Fatal(err)
		}
		want := [][]string{{"bin1"}, {"1"}, {"2"}}
		if diff := pretty.Diff(records(have), want); len(diff) != 0 {
			t.Error(diff)
		}
	})

	t.Run("name collision", func(t *testing.T) {
		tbl := readTable(t, "bin1,bin2,bin3\n1,2,3\n")
		if _, err := c.Consolidate(tbl, [][]int{{0}, {1}, {2}}, []string{"bin2", "bin3"}, Aerosol); err == nil {
			t.Error("duplicate coarse column should fail")
		}
	})
}

func TestConsolidateStrict(t *testing.T) {
	c := Consolidator{Strict: true, Log: quietLogger()}
	tbl := readTable(t, "bin1,bin2,bin3\n1,2,3\n")

	var tests = []struct {
		name string
		b    Binning
		ok   bool
	}{
		{name: "ok", b: Binning{Label: Aerosol, Old: []float64{100, 200, 300}, New: []float64{250}}, ok: true},
		{name: "empty group", b: Binning{Label: Aerosol, Old: []float64{100, 200, 300}, New: []float64{150, 160}}},
		{name: "unsorted", b: Binning{Label: Aerosol, Old: []float64{100, 200, 300}, New: []float64{250, 150}}},
		{name: "missing column", b: Binning{Label: Aerosol, Old: []float64{100, 200, 300, 400}, New: []float64{250}}},
		{name: "wrong label", b: Binning{Label: Cloud, Old: []float64{100, 200, 300}, New: []float64{250}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := c.Apply(tbl, test.b)
			if test.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			} else if !test.ok && err == nil {
				t.Error("expected an error")
			}
		})
	}

	text := readTable(t, "bin1,bin2\n1,x\n")
	if _, err := c.Apply(text, Binning{Label: Aerosol, Old: []float64{1, 2}}); err == nil {
		t.Error("text fine column should fail in strict mode")
	}
}
