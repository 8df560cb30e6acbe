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

package saltchem

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Precision selects the arithmetic used when quantities are
// redistributed between surrogates and real elements. All
// redistribution routines in this package use the same Precision.
type Precision int

const (
	// Decimal carries products and sums as arbitrary-precision decimals
	// and converts to float64 only when output tables are built.
	Decimal Precision = iota
	// Float64 uses IEEE double precision throughout.
	Float64
)

// ParsePrecision parses "decimal" or "float64".
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "decimal", "":
		return Decimal, nil
	case "float64", "float":
		return Float64, nil
	default:
		return 0, fmt.Errorf("saltchem: invalid precision %q; valid options are 'decimal' and 'float64'", s)
	}
}

func (p Precision) String() string {
	if p == Float64 {
		return "float64"
	}
	return "decimal"
}

// quantity is an amount being redistributed.
type quantity interface {
	// percentOf returns the quantity multiplied by pct/100.
	percentOf(pct float64) quantity
	// times returns the quantity multiplied by f.
	times(f float64) quantity
	add(quantity) quantity
	positive() bool
	Float64() float64
}

func (p Precision) quantity(v float64) quantity {
	if p == Float64 {
		return floatQuantity(v)
	}
	return decimalQuantity{decimal.NewFromFloat(v)}
}

type floatQuantity float64

func (q floatQuantity) percentOf(pct float64) quantity {
	return floatQuantity(float64(q) * pct / 100)
}
func (q floatQuantity) times(f float64) quantity { return floatQuantity(float64(q) * f) }
func (q floatQuantity) add(o quantity) quantity {
	return floatQuantity(float64(q) + o.Float64())
}
func (q floatQuantity) positive() bool   { return q > 0 }
func (q floatQuantity) Float64() float64 { return float64(q) }

type decimalQuantity struct{ d decimal.Decimal }

func (q decimalQuantity) percentOf(pct float64) quantity {
	return decimalQuantity{q.d.Mul(decimal.NewFromFloat(pct)).Shift(-2)}
}
func (q decimalQuantity) times(f float64) quantity {
	return decimalQuantity{q.d.Mul(decimal.NewFromFloat(f))}
}
func (q decimalQuantity) add(o quantity) quantity {
	if od, ok := o.(decimalQuantity); ok {
		return decimalQuantity{q.d.Add(od.d)}
	}
	return decimalQuantity{q.d.Add(decimal.NewFromFloat(o.Float64()))}
}
func (q decimalQuantity) positive() bool { return q.d.Sign() > 0 }
func (q decimalQuantity) Float64() float64 {
	f, _ := q.d.Float64()
	return f
}

// accumulator sums quantities by key.
type accumulator struct {
	m map[string]quantity
}

func newAccumulator() *accumulator {
	return &accumulator{m: make(map[string]quantity)}
}

func (a *accumulator) add(key string, q quantity) {
	if v, ok := a.m[key]; ok {
		a.m[key] = v.add(q)
		return
	}
	a.m[key] = q
}

// table converts the accumulated quantities to float64.
func (a *accumulator) table() map[string]float64 {
	o := make(map[string]float64, len(a.m))
	for k, v := range a.m {
		o[k] = v.Float64()
	}
	return o
}
