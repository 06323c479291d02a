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
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Combine writes the contents of the files matching the glob pattern to
// w, in name order, skipping the first line of every file but the first.
// The pattern may contain ** to match any number of directories. It
// returns the files that were combined.
func Combine(pattern string, w io.Writer) ([]string, error) {
	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("merge: combine: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("merge: combine: no files match %q", pattern)
	}
	sort.Strings(files)
	for i, name := range files {
		if err := appendFile(w, name, i > 0); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func appendFile(w io.Writer, name string, skipHeader bool) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("merge: combine: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	if skipHeader {
		if _, err := r.ReadString('\n'); err != nil && err != io.EOF {
			return fmt.Errorf("merge: combine: %s: %w", name, err)
		}
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("merge: combine: %s: %w", name, err)
	}
	return nil
}
