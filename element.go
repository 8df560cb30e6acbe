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
)

// Elements lists lowercase element symbols indexed by atomic number.
// Index 0 is the neutron.
var Elements = []string{"neutron", "h", "he",
	"li", "be", "b", "c", "n", "o", "f", "ne",
	"na", "mg", "al", "si", "p", "s", "cl", "ar",
	"k", "ca", "sc", "ti", "v", "cr", "mn", "fe", "co", "ni", "cu", "zn", "ga", "ge", "as", "se", "br", "kr",
	"rb", "sr", "y", "zr", "nb", "mo", "tc", "ru", "rh", "pd", "ag", "cd", "in", "sn", "sb", "te", "i", "xe",
	"cs", "ba",
	"la", "ce", "pr", "nd", "pm", "sm", "eu", "gd", "tb", "dy", "ho", "er", "tm", "yb", "lu",
	"hf", "ta", "w", "re", "os", "ir", "pt", "au", "hg", "tl", "pb", "bi", "po", "at", "rn",
	"fr", "ra",
	"ac", "th", "pa", "u", "np", "pu", "am", "cm", "bk", "cf", "es", "fm", "md", "no", "lr",
	"rf", "db", "sg", "bh", "hs", "mt", "ds", "rg", "cn", "nh", "fl", "mc", "lv", "ts", "og",
}

var atomicNumbers map[string]int

func init() {
	atomicNumbers = make(map[string]int, len(Elements))
	for z, e := range Elements {
		atomicNumbers[e] = z
	}
}

// Key returns the lowercase form of an element symbol or isotope name,
// which is how they are keyed in surrogate tables.
func Key(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}

// AtomicNumber returns the atomic number of the element with the given
// symbol, which is matched case-insensitively.
func AtomicNumber(symbol string) (int, error) {
	z, ok := atomicNumbers[Key(symbol)]
	if !ok || z == 0 {
		return 0, fmt.Errorf("saltchem: unknown element %q", symbol)
	}
	return z, nil
}

// IsElement returns whether symbol names a chemical element.
func IsElement(symbol string) bool {
	z, ok := atomicNumbers[Key(symbol)]
	return ok && z > 0
}

// IsotopeElement returns the element part of an isotope name such as
// "li-7" or "U-235". Names without a mass number are returned lowercased.
func IsotopeElement(isotope string) string {
	if i := strings.Index(isotope, "-"); i >= 0 {
		return Key(isotope[:i])
	}
	return Key(isotope)
}
