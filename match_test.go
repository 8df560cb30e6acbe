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
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"
)

const matchTableCSV = `Symbol,Surrogate,Match_Quality,Key,Standard Potential,Electronegativity,MeltingPoint
Li,Li,self,1,-3.04,0.98,453
Be,Be,self,2,-1.97,1.57,1560
Cr,Cr,self,"2,3","-0.91,-0.74",1.66,2180
Mg,,,2,-2.30,1.31,923
Mo,,,"3,2","-0.2,-0.5",2.16,2896
Ca,,,2,-2.87,1.00,1115
Zr,,,4,-1.45,1.33,2128
Na,,,"1,5","-2.71,1.0",0.93,371
Xe,,,,,,400
Kr,,,,,,
`

func TestMatchSurrogates(t *testing.T) {
	log, _ := testLogger()
	out := new(bytes.Buffer)
	matches, err := MatchSurrogates(strings.NewReader(matchTableCSV), out, log)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		element, surrogate string
		quality            MatchQuality
		reason             string
		potential          float64
	}{
		{"Mg", "Be", GoodMatch, "Good match in valence states", 0.33},
		{"Mo", "Cr", DecentMatch, "Decent match in valence states", 0.54},
		{"Ca", "Be", DecentMatch, "Decent match in valence states", 0.90},
		{"Na", "Li", DecentMatch, "Decent match based on closest potential", 0.33},
		{"Zr", "Be", PoorMatch, "Poor match based on similar electronegativity", math.NaN()},
		{"Xe", "Li", PoorMatch, "Poor match based on similar melting point", math.NaN()},
	}
	for _, test := range tests {
		t.Run(test.element, func(t *testing.T) {
			m, ok := matches[test.element]
			if !ok {
				t.Fatal("no match")
			}
			if m.Surrogate != test.surrogate || m.Quality != test.quality || m.Reason != test.reason {
				t.Errorf("have %s %v %q, want %s %v %q", m.Surrogate, m.Quality, m.Reason,
					test.surrogate, test.quality, test.reason)
			}
			if math.IsNaN(test.potential) {
				if !math.IsNaN(m.PotentialDifference) {
					t.Errorf("potential difference %g should be NaN", m.PotentialDifference)
				}
			} else if math.Abs(m.PotentialDifference-test.potential) > 1e-9 {
				t.Errorf("potential difference: %g != %g", m.PotentialDifference, test.potential)
			}
		})
	}
	for _, e := range []string{"Li", "Be", "Cr", "Kr"} {
		if m, ok := matches[e]; ok {
			t.Errorf("%s should not be matched: %+v", e, m)
		}
	}

	matched := out.Bytes()
	recs, err := csv.NewReader(bytes.NewReader(matched)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 11 {
		t.Fatalf("have %d records, want 11", len(recs))
	}
	col := make(map[string]int)
	for i, name := range recs[0] {
		col[name] = i
	}
	want := map[string][2]string{
		"Li": {"Li", "self"},
		"Cr": {"Cr", "self"},
		"Mg": {"Be", "Good"},
		"Mo": {"Cr", "Decent"},
		"Zr": {"Be", "Poor"},
		"Xe": {"Li", "Poor"},
	}
	for _, r := range recs[1:] {
		sym := r[col["Symbol"]]
		if r[col["Key"]] == "2,3" && sym != "Cr" {
			t.Errorf("%s: key column changed", sym)
		}
		w, ok := want[sym]
		if !ok {
			continue
		}
		if r[col["Surrogate"]] != w[0] || r[col["Match_Quality"]] != w[1] {
			t.Errorf("%s: have %s %s, want %s %s", sym, r[col["Surrogate"]], r[col["Match_Quality"]], w[0], w[1])
		}
	}

	c, err := CandidatesFromCSV(bytes.NewReader(matched))
	if err != nil {
		t.Fatal(err)
	}
	s := c.Symbols()
	if len(s["be"]) != 4 || len(s["cr"]) != 2 || len(s["li"]) != 3 {
		t.Errorf("candidates: %v", s)
	}
}

func TestSurrogateMatcherPrefersGoodMatch(t *testing.T) {
	nan := math.NaN()
	sur := func(sym string, pot float64) *ElementProperties {
		return &ElementProperties{Symbol: sym, IsSurrogate: true, Keys: []string{"2"}, Potentials: []float64{pot},
			Electronegativity: nan, ElectronAffinity: nan, MeltingPoint: nan}
	}
	c := &ElementProperties{Symbol: "Sr", Keys: []string{"2"}, Potentials: []float64{-2.89},
		Electronegativity: 0.95, ElectronAffinity: nan, MeltingPoint: 1050}
	m := NewSurrogateMatcher([]*ElementProperties{sur("Be", -1.97), sur("Ba", -2.91), sur("Ca", -2.88), c})
	r := m.Match(c)
	if r == nil {
		t.Fatal("no match")
	}
	if r.Surrogate != "Ca" || r.Quality != GoodMatch {
		t.Errorf("have %s %v, want Ca Good", r.Surrogate, r.Quality)
	}
	if !math.IsNaN(r.ElectronegativityDifference) {
		t.Errorf("electronegativity difference %g should be NaN", r.ElectronegativityDifference)
	}
	if m.Match(m.surrogates[0]) != nil {
		t.Error("surrogates should not be matched")
	}
}

func TestMatchSurrogatesMissingSymbol(t *testing.T) {
	log, _ := testLogger()
	if _, err := MatchSurrogates(strings.NewReader("Name,Surrogate\nBeryllium,Be\n"), new(bytes.Buffer), log); err == nil {
		t.Error("expected an error")
	}
}
