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

package formula

import (
	"reflect"
	"testing"

	"github.com/kr/pretty"
)

func TestParse(t *testing.T) {
	tests := []struct {
		f    string
		want Counts
	}{
		{f: "BeF2", want: Counts{{"Be", 1}, {"F", 2}}},
		{f: "UF4", want: Counts{{"U", 1}, {"F", 4}}},
		{f: "Li2BeF4", want: Counts{{"Li", 2}, {"Be", 1}, {"F", 4}}},
		{f: "Fe", want: Counts{{"Fe", 1}}},
		{f: "CH3CH3", want: Counts{{"C", 2}, {"H", 6}}},
		{f: "U[3+]", want: Counts{{"U", 1}}},
		{f: "xyz", want: nil},
		{f: "", want: nil},
	}
	for _, test := range tests {
		t.Run(test.f, func(t *testing.T) {
			// Parse twice to exercise the cache.
			for i := 0; i < 2; i++ {
				got := Parse(test.f)
				if !reflect.DeepEqual(got, test.want) {
					t.Errorf("pass %d: %v", i, pretty.Diff(got, test.want))
				}
			}
		})
	}
}

func TestParseCacheIsolation(t *testing.T) {
	c := Parse("NaCl")
	c[0].N = 100
	if got := Parse("NaCl"); got[0].N != 1 {
		t.Errorf("cached result was modified: %v", got)
	}
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		f, from, to, want string
	}{
		{"BeF2", "be", "Mg", "MgF2"},
		{"BeF2", "Be", "Be", "BeF2"},
		{"FeF3", "f", "Cl", "FeCl3"},
		{"FeF3", "fe", "Cr", "CrF3"},
		{"Li2BeF4", "li", "Na", "Na2BeF4"},
		{"UF4", "th", "Pa", "UF4"},
		{"F2", "F", "Cl", "Cl2"},
		{"", "F", "Cl", ""},
	}
	for _, test := range tests {
		got := Substitute(test.f, test.from, test.to)
		if got != test.want {
			t.Errorf("Substitute(%q, %q, %q) = %q; want %q", test.f, test.from, test.to, got, test.want)
		}
	}
}

func TestSubstituteRoundTrip(t *testing.T) {
	for _, f := range []string{"BeF2", "Li2BeF4", "UF4", "ZrF4", "Na3AlF6"} {
		c := Parse(f)
		for _, el := range c.Elements() {
			to := "Xe"
			back := Substitute(Substitute(f, el, to), to, el)
			if !reflect.DeepEqual(Parse(back).Map(), c.Map()) {
				t.Errorf("%s via %s: %v", f, el, pretty.Diff(Parse(back).Map(), c.Map()))
			}
		}
	}
}

func TestSubstituteIon(t *testing.T) {
	tests := []struct {
		ion, from, to, want string
	}{
		{"U[3+]", "U", "Np", "Np[3+]"},
		{"U[CN=VI]", "U", "Pu", "Pu[CN=VI]"},
		{"U[Dimer]", "U", "U", "U[Dimer]"},
		{"Cr[2+]", "Cr", "Mo", "Mo[2+]"},
		{"F", "F", "Cl", "Cl"},
		{"F[-]", "F", "Cl", "Cl[-]"},
		{"U[3+", "U", "Np", "Np[3+"},
		{"Fe[2+]", "F", "Cl", "Fe[2+]"},
		{"Cu[2+]", "U", "Np", "Cu[2+]"},
		{"Th[4+]", "U", "Np", "Th[4+]"},
	}
	for _, test := range tests {
		got := SubstituteIon(test.ion, test.from, test.to)
		if got != test.want {
			t.Errorf("SubstituteIon(%q, %q, %q) = %q; want %q", test.ion, test.from, test.to, got, test.want)
		}
	}
}

func TestIonElement(t *testing.T) {
	tests := map[string]string{
		"U[3+]":    "U",
		"Cr[2+]":   "Cr",
		"F":        "F",
		"Li[+]":    "Li",
		"[3+]":     "",
		"":         "",
		"Va[CN=I]": "Va",
	}
	for ion, want := range tests {
		if got := IonElement(ion); got != want {
			t.Errorf("IonElement(%q) = %q; want %q", ion, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"be":    "Be",
		"MG":    "Mg",
		"u":     "U",
		"li-7":  "li-7",
		"U-235": "u-235",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q; want %q", in, got, want)
		}
	}
}
