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

// Package rename maps the instrument-specific column names of a merged
// campaign table onto a standardized schema.
package rename

import (
	"regexp"
	"strings"

	"github.com/facette/natsort"
)

// Resolve returns the first of candidates that matches one of the
// available names, ignoring case. If two available names differ only in
// case, the later one is returned.
func Resolve(candidates, available []string) (string, bool) {
	lower := make(map[string]string, len(available))
	for _, a := range available {
		lower[strings.ToLower(a)] = a
	}
	for _, c := range candidates {
		if a, ok := lower[strings.ToLower(c)]; ok {
			return a, true
		}
	}
	return "", false
}

// A Matcher reports whether a column name belongs to a run of bin columns.
type Matcher func(name string) bool

// Pattern returns a Matcher for a regular expression.
func Pattern(expr string) Matcher {
	re := regexp.MustCompile(expr)
	return re.MatchString
}

// PrefixSuffix returns a Matcher for names with the given prefix and
// suffix.
func PrefixSuffix(prefix, suffix string) Matcher {
	return func(name string) bool {
		return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix)
	}
}

var (
	// AerosolMatchers find LAS and UHSAS size distribution columns.
	AerosolMatchers = []Matcher{
		PrefixSuffix("dNdlogDp_PSL_", "_LAS"),
		Pattern(`^LAS_Bin\d`),
	}

	// CloudMatchers find CDP size distribution columns.
	CloudMatchers = []Matcher{
		Pattern(`(?i)^cbin\d+`),
		Pattern(`^CDP_Bin.*\d`),
	}
)

// DetectBins returns the names that are accepted by any of the matchers,
// in natural sort order, so that bin2 comes before bin10.
func DetectBins(names []string, matchers ...Matcher) []string {
	var o []string
	for _, n := range names {
		for _, m := range matchers {
			if m(n) {
				o = append(o, n)
				break
			}
		}
	}
	natsort.Sort(o)
	return o
}
