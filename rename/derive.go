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

package rename

import (
	"fmt"
	"math"
	"sort"

	"github.com/Knetic/govaluate"
	"github.com/spatialmodel/fieldprep"
)

func oneArg(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("rename: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("rename: argument to '%s' is not a number", name)
		}
		return f(x), nil
	}
}

// functions can be used in derived variable expressions.
var functions = map[string]govaluate.ExpressionFunction{
	"exp":   oneArg("exp", math.Exp),
	"log":   oneArg("log", math.Log),
	"log10": oneArg("log10", math.Log10),
	"sqrt":  oneArg("sqrt", math.Sqrt),
	"abs":   oneArg("abs", math.Abs),
}

// Derive returns a copy of t with one column appended for each
// expression in exprs, in name order. Expressions can refer to numeric
// columns of t, to variables derived before them, and to the functions
// exp, log, log10, sqrt and abs. A derived value is missing if any value
// it depends on is missing.
func Derive(t *fieldprep.Table, exprs map[string]string) (*fieldprep.Table, error) {
	names := make([]string, 0, len(exprs))
	for n := range exprs {
		names = append(names, n)
	}
	sort.Strings(names)

	o := t.Clone()
	for _, name := range names {
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(exprs[name], functions)
		if err != nil {
			return nil, fmt.Errorf("rename: derived variable %s: %v", name, err)
		}
		vars := expr.Vars()
		cols := make([]*fieldprep.Column, len(vars))
		for j, v := range vars {
			c := o.Column(v)
			if c == nil || c.IsText() {
				return nil, fmt.Errorf("rename: derived variable %s: no numeric column %q", name, v)
			}
			cols[j] = c
		}
		vals := make([]float64, o.Len())
		params := make(map[string]interface{}, len(vars))
	rows:
		for i := range vals {
			for j, c := range cols {
				if c.IsMissing(i) {
					vals[i] = fieldprep.Missing
					continue rows
				}
				params[vars[j]] = c.Float[i]
			}
			r, err := expr.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("rename: derived variable %s, row %d: %v", name, i, err)
			}
			switch x := r.(type) {
			case float64:
				vals[i] = x
			case bool:
				if x {
					vals[i] = 1
				}
			default:
				return nil, fmt.Errorf("rename: derived variable %s evaluates to %T, not a number", name, r)
			}
		}
		if err := o.AddFloat(name, vals); err != nil {
			return nil, fmt.Errorf("rename: %w", err)
		}
	}
	return o, nil
}
