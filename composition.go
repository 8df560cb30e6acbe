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
	"gonum.org/v1/gonum/floats"
)

// Composition is an amount of each element, keyed by lowercase symbol.
type Composition map[string]float64

// Normalize returns a copy of c scaled to sum to one.
func (c Composition) Normalize() Composition {
	v := make([]float64, 0, len(c))
	for _, x := range c {
		v = append(v, x)
	}
	s := floats.Sum(v)
	o := make(Composition, len(c))
	for e, x := range c {
		if s != 0 {
			o[e] = x / s
		}
	}
	return o
}

// Add returns the element-wise sum of c and d.
func (c Composition) Add(d Composition) Composition {
	o := make(Composition, len(c)+len(d))
	for e, x := range c {
		o[e] += x
	}
	for e, x := range d {
		o[e] += x
	}
	return o
}

// FLiBeU returns the normalized element composition of LiF-BeF2 (2:1)
// with uf4MolPct mol% uranium fluoride split into UF3 and UF4 according
// to uf3ToUF4, the UF3/UF4 ratio. A ratio of exactly zero is replaced by
// 1e-6, since the solver does not converge without any UF3.
func FLiBeU(uf4MolPct, uf3ToUF4 float64) Composition {
	if uf3ToUF4 == 0 {
		uf3ToUF4 = 1e-6
	}
	mU := uf4MolPct
	mLi := 2.0 / 3.0 * (100 - mU)
	mBe := 1.0 / 3.0 * (100 - mU)
	mF := mLi + 2*mBe
	mUF3 := uf3ToUF4 * mU / (1 + uf3ToUF4)
	mUF4 := mU / (1 + uf3ToUF4)
	mF += 3*mUF3 + 4*mUF4
	return Composition{"li": mLi, "be": mBe, "f": mF, "u": mU}.Normalize()
}

// SS316 returns the element mole fractions of 316H stainless steel.
func SS316() Composition {
	return Composition{
		"c":  0.0033694978880478618,
		"mn": 0.018416674099286608,
		"p":  0.0007349756065312752,
		"s":  0.00047323478874348524,
		"si": 0.018012746632251584,
		"cr": 0.1653991810107577,
		"ni": 0.10343066242995637,
		"mo": 0.0131810315051273,
		"fe": 0.5919994744287896,
		"co": 0.08498252161050811,
	}
}
