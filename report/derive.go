/*
Copyright © 2025 the saltchem authors.
This file is part of saltchem.

saltchem is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

saltchem is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with saltchem.  If not, see <http://www.gnu.org/licenses/>.
*/

package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/Knetic/govaluate"
)

// Functions are available in derived-column expressions in addition to
// govaluate's operators. Each takes one numeric argument:
//
// 'log10(x)', 'ln(x)', 'exp(x)', 'abs(x)' and 'sqrt(x)'.
var Functions = map[string]govaluate.ExpressionFunction{
	"log10": unary("log10", math.Log10),
	"ln":    unary("ln", math.Log),
	"exp":   unary("exp", math.Exp),
	"abs":   unary("abs", math.Abs),
	"sqrt":  unary("sqrt", math.Sqrt),
}

func unary(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("report: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("report: argument of '%s' is %T, not a number", name, args[0])
		}
		return f(x), nil
	}
}

// Derive adds a column to t for each entry in exprs, which maps new
// column names to expressions of the existing columns, e.g.
// "log10([UF3/UF4 Ratio])". Column names that are not valid identifiers
// must be written in square brackets. The variable Timestep is also
// available. Rows where a referenced value is missing get NaN. Columns
// are added in order of name.
func (t *Table) Derive(exprs map[string]string) error {
	names := make([]string, 0, len(exprs))
	for n := range exprs {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(exprs[name], Functions)
		if err != nil {
			return fmt.Errorf("report: derived column %s: %w", name, err)
		}
		idx := make(map[string]int, len(t.Columns))
		for j, c := range t.Columns {
			idx[c] = j
		}
		for _, v := range e.Vars() {
			if _, ok := idx[v]; !ok && v != "Timestep" {
				return fmt.Errorf("report: derived column %s: table %s has no column %q", name, t.Name, v)
			}
		}
		col := make([]float64, len(t.Values))
		for i, row := range t.Values {
			params := map[string]interface{}{"Timestep": float64(t.Timesteps[i])}
			missing := false
			for _, v := range e.Vars() {
				if j, ok := idx[v]; ok {
					if math.IsNaN(row[j]) {
						missing = true
					}
					params[v] = row[j]
				}
			}
			if missing {
				col[i] = math.NaN()
				continue
			}
			r, err := e.Evaluate(params)
			if err != nil {
				return fmt.Errorf("report: derived column %s, timestep %v: %w", name, t.Timesteps[i], err)
			}
			x, ok := r.(float64)
			if !ok {
				return fmt.Errorf("report: derived column %s evaluates to %T, not a number", name, r)
			}
			col[i] = x
		}
		t.Columns = append(t.Columns, name)
		for i := range t.Values {
			t.Values[i] = append(t.Values[i], col[i])
		}
	}
	return nil
}
