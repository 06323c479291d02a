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

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/tealeg/xlsx"
)

// records returns the header and text records of t.
func records(t *Table) [][]string {
	o := [][]string{t.Names()}
	for i := 0; i < t.Len(); i++ {
		o = append(o, t.Record(i))
	}
	return o
}

func mustCSV(t *testing.T, s string) *Table {
	t.Helper()
	tbl, err := ReadCSV(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestReadCSV(t *testing.T) {
	tbl := mustCSV(t, "time,bin1,bin1,flag\n1,5,NaN,a\n2,,3.5,\n3,NA,-1,c\n")
	wantNames := []string{"time", "bin1", "bin1.1", "flag"}
	if !reflect.DeepEqual(tbl.Names(), wantNames) {
		t.Errorf("names: have %v, want %v", tbl.Names(), wantNames)
	}
	if tbl.Len() != 3 {
		t.Errorf("rows: have %d, want 3", tbl.Len())
	}
	if tbl.Column("bin1").IsText() {
		t.Error("bin1 should be numeric")
	}
	if !tbl.Column("flag").IsText() {
		t.Error("flag should be text")
	}
	for _, i := range []int{1, 2} {
		if !tbl.Column("bin1").IsMissing(i) {
			t.Errorf("bin1 row %d should be missing", i)
		}
	}
	if !tbl.Column("flag").IsMissing(1) {
		t.Error("flag row 1 should be missing")
	}
	if v, _ := tbl.Float("bin1.1", 1); v != 3.5 {
		t.Errorf("bin1.1 row 1: have %g, want 3.5", v)
	}
}

func TestWriteCSV(t *testing.T) {
	tbl := mustCSV(t, "time,conc,Date\n43200,1.25,20170510\n43201,,20170510\n")
	var b bytes.Buffer
	if err := WriteCSV(&b, tbl); err != nil {
		t.Fatal(err)
	}
	want := "time,conc,Date\n43200,1.25,20170510\n43201,,20170510\n"
	if b.String() != want {
		t.Errorf("have %q, want %q", b.String(), want)
	}
}

func TestCSVFile(t *testing.T) {
	tbl := mustCSV(t, "a,b\n1,x\n2,y\n")
	path := filepath.Join(t.TempDir(), "out", "t.csv")
	if err := WriteCSVFile(path, tbl); err != nil {
		t.Fatal(err)
	}
	have, err := ReadCSVFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(records(have), records(tbl)); len(diff) != 0 {
		t.Error(diff)
	}
}

func TestTableEdit(t *testing.T) {
	tbl := mustCSV(t, "a,b,c\n1,2,3\n4,5,6\n")

	if err := tbl.AddFloat("b", []float64{0, 0}); err == nil {
		t.Error("duplicate column should fail")
	}
	if err := tbl.AddFloat("d", []float64{0}); err == nil {
		t.Error("short column should fail")
	}

	c := tbl.Clone()
	c.Drop("b", "nonexistent")
	if err := c.Insert(1, &Column{Name: "x", Float: []float64{7, 8}}); err != nil {
		t.Fatal(err)
	}
	if err := c.Rename("c", "z"); err != nil {
		t.Fatal(err)
	}
	if err := c.AddConst("Campaign", "TEST"); err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"a", "x", "z", "Campaign"},
		{"1", "7", "3", "TEST"},
		{"4", "8", "6", "TEST"},
	}
	if diff := pretty.Diff(records(c), want); len(diff) != 0 {
		t.Error(diff)
	}
	// The original table is unchanged.
	if !reflect.DeepEqual(tbl.Names(), []string{"a", "b", "c"}) {
		t.Errorf("clone modified original: %v", tbl.Names())
	}

	s, err := tbl.Select("c", "a")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(records(s), [][]string{{"c", "a"}, {"3", "1"}, {"6", "4"}}); len(diff) != 0 {
		t.Error(diff)
	}
	if _, err := tbl.Select("q"); err == nil {
		t.Error("selecting a missing column should fail")
	}

	cp := tbl.Column("a").Copy("A")
	cp.Float[0] = 99
	if cp.Name != "A" || tbl.Column("a").Float[0] != 1 {
		t.Errorf("copy shares data with the original: %+v", cp)
	}
}

func TestConcat(t *testing.T) {
	a := mustCSV(t, "time,x\n1,10\n")
	b := mustCSV(t, "time,y,Date\n2,20,d\n3,,e\n")
	have := Concat(a, b)
	want := [][]string{
		{"time", "x", "y", "Date"},
		{"1", "10", "", ""},
		{"2", "", "20", "d"},
		{"3", "", "", "e"},
	}
	if diff := pretty.Diff(records(have), want); len(diff) != 0 {
		t.Error(diff)
	}
	if !have.Column("Date").IsText() || have.Column("x").IsText() {
		t.Error("wrong column kinds")
	}
	if Concat().Len() != 0 {
		t.Error("empty concat should have no rows")
	}
}

func TestLeftJoin(t *testing.T) {
	left := mustCSV(t, "merge_time,bc\n1,0.1\n2,0.2\n3,0.3\n,0.4\n")
	right := mustCSV(t, "merge_time,bc,n\n2,5,50\n2,6,60\n3,7,70\n,8,80\n")
	have, err := LeftJoin(left, right, "merge_time", "_LAS")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"merge_time", "bc", "bc_LAS", "n"},
		{"1", "0.1", "", ""},
		{"2", "0.2", "5", "50"},
		{"2", "0.2", "6", "60"},
		{"3", "0.3", "7", "70"},
		{"", "0.4", "", ""},
	}
	if diff := pretty.Diff(records(have), want); len(diff) != 0 {
		t.Error(diff)
	}

	if _, err := LeftJoin(left, mustCSV(t, "t\n1\n"), "merge_time", ""); err == nil {
		t.Error("missing key should fail")
	}
}

func TestWriteXLSX(t *testing.T) {
	tbl := mustCSV(t, "time,Date\n1,d1\n,d2\n")
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteXLSX(path, Sheet{Name: "Restricted", Table: tbl}); err != nil {
		t.Fatal(err)
	}
	f, err := xlsx.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := f.Sheet["Restricted"]
	if !ok {
		t.Fatal("missing sheet")
	}
	if v := s.Cell(0, 1).Value; v != "Date" {
		t.Errorf("header: have %q, want Date", v)
	}
	if v := s.Cell(2, 1).Value; v != "d2" {
		t.Errorf("cell: have %q, want d2", v)
	}
	if err := WriteXLSX(path); err == nil {
		t.Error("no sheets should fail")
	}
}
