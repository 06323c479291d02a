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

package merge

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// datePattern matches date tokens in file names, such as 20120709,
// 120709 or 20120709a.
var datePattern = regexp.MustCompile(`\d{6,8}[a-z]?`)

var leadingDigits = regexp.MustCompile(`^\d{6,8}`)

// StandardizeDate converts a date token to YYYYMMDD form. Trailing
// letters are ignored. Eight-digit dates are kept as they are and
// six-digit YYMMDD dates are put in 2000-2049 when YY < 50 and in
// 1950-1999 otherwise. Any other token is rejected.
func StandardizeDate(raw string) (string, bool) {
	d := leadingDigits.FindString(raw)
	switch len(d) {
	case 8:
		return d, true
	case 6:
		yy, _ := strconv.Atoi(d[:2])
		if yy < 50 {
			yy += 2000
		} else {
			yy += 1900
		}
		return fmt.Sprintf("%d%s", yy, d[2:]), true
	default:
		return "", false
	}
}

// FileDate returns the standardized date of the first date token in a
// file name.
func FileDate(name string) (string, bool) {
	tok := datePattern.FindString(name)
	if tok == "" {
		return "", false
	}
	return StandardizeDate(tok)
}

// hasExtension reports whether name ends with one of exts,
// ignoring case.
func hasExtension(name string, exts []string) bool {
	name = strings.ToLower(name)
	for _, e := range exts {
		if strings.HasSuffix(name, strings.ToLower(e)) {
			return true
		}
	}
	return false
}

// ScanDates returns the distinct standardized dates of the files in dir
// that have one of the given extensions, latest first.
func ScanDates(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("merge: scanning dates: %w", err)
	}
	seen := make(map[string]bool)
	var dates []string
	for _, e := range entries {
		if e.IsDir() || !hasExtension(e.Name(), exts) {
			continue
		}
		d, ok := FileDate(e.Name())
		if !ok || seen[d] {
			continue
		}
		seen[d] = true
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}
