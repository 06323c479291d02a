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
	"fmt"
	"os"
	"path/filepath"

	"github.com/tealeg/xlsx"
)

// A Sheet is a table to be written to a named worksheet.
type Sheet struct {
	Name  string
	Table *Table
}

// WriteXLSX writes the given sheets to a Microsoft Excel file at path.
// Numeric cells are stored as numbers and missing cells are left empty.
func WriteXLSX(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("fieldprep: writing xlsx file %s: no sheets", path)
	}
	f := xlsx.NewFile()
	for _, s := range sheets {
		sh, err := f.AddSheet(s.Name)
		if err != nil {
			return fmt.Errorf("fieldprep: writing xlsx sheet %q: %w", s.Name, err)
		}
		header := sh.AddRow()
		for _, n := range s.Table.Names() {
			header.AddCell().SetString(n)
		}
		for i := 0; i < s.Table.Len(); i++ {
			row := sh.AddRow()
			for _, c := range s.Table.Columns() {
				cell := row.AddCell()
				switch {
				case c.IsMissing(i):
				case c.IsText():
					cell.SetString(c.Text[i])
				default:
					cell.SetFloat(c.Float[i])
				}
			}
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("fieldprep: %w", err)
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("fieldprep: saving xlsx file: %w", err)
	}
	return nil
}
