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
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// missingTokens are the cell contents that are read as missing values.
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"-nan": true,
	"NULL": true,
	"null": true,
	"#N/A": true,
}

func formatFloat(v float64) string {
	if IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReadCSV reads a table from comma-separated data whose first record
// is the header. A column is numeric if all of its non-missing cells
// can be parsed as numbers; otherwise it is a text column.
// Repeated header names are made unique by appending ".1", ".2", etc.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return New(), nil
	} else if err != nil {
		return nil, fmt.Errorf("fieldprep: reading CSV header: %w", err)
	}
	header = uniqueNames(header)

	raw := make([][]string, len(header))
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("fieldprep: reading CSV: %w", err)
		}
		line++
		if len(rec) > len(header) {
			return nil, fmt.Errorf("fieldprep: CSV record %d has %d fields; header has %d", line, len(rec), len(header))
		}
		for j := range header {
			var v string
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			raw[j] = append(raw[j], v)
		}
	}

	t := New()
	for j, name := range header {
		if raw[j] == nil {
			raw[j] = []string{}
		}
		vals, ok := parseFloats(raw[j])
		if ok {
			err = t.AddFloat(name, vals)
		} else {
			for i, v := range raw[j] {
				if missingTokens[v] {
					raw[j][i] = ""
				}
			}
			err = t.AddText(name, raw[j])
		}
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// parseFloats parses s as numbers, returning false if any non-missing
// cell is not a number.
func parseFloats(s []string) ([]float64, bool) {
	o := make([]float64, len(s))
	for i, v := range s {
		if missingTokens[v] {
			o[i] = Missing
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		o[i] = f
	}
	return o, true
}

func uniqueNames(names []string) []string {
	o := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, n := range names {
		n = strings.TrimSpace(n)
		if c, ok := seen[n]; ok {
			seen[n] = c + 1
			o[i] = fmt.Sprintf("%s.%d", n, c+1)
			continue
		}
		seen[n] = 0
		o[i] = n
	}
	return o
}

// WriteCSV writes t to w as comma-separated data with a header record.
// Missing cells are written as empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("fieldprep: writing CSV header: %w", err)
	}
	for i := 0; i < t.Len(); i++ {
		if err := cw.Write(t.Record(i)); err != nil {
			return fmt.Errorf("fieldprep: writing CSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSVFile reads a table from the CSV file at path.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fieldprep: %w", err)
	}
	defer f.Close()
	t, err := ReadCSV(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, path)
	}
	return t, nil
}

// WriteCSVFile writes t to a CSV file at path, creating the parent
// directory if necessary.
func WriteCSVFile(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("fieldprep: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fieldprep: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := WriteCSV(w, t); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("fieldprep: %w", err)
	}
	return f.Close()
}
