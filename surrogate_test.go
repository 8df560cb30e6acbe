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
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

const candidatesJSON = `{
    "Be": [
        {"Symbol": "Be", "Name": "Beryllium", "AtomicNumber": "4", "Match_Quality": "self"},
        {"Symbol": "Mg", "Name": "Magnesium", "AtomicNumber": "12", "Match_Quality": "good"}
    ],
    "F": [],
    "Zr": [
        {"Symbol": "Zr", "Match_Quality": "self"},
        {"Symbol": "Hf", "Match_Quality": "good"}
    ]
}`

const candidatesTOML = `
[[Be]]
Symbol = "Be"
Name = "Beryllium"
AtomicNumber = "4"
Match_Quality = "self"

[[Be]]
Symbol = "Mg"
Name = "Magnesium"
AtomicNumber = "12"
Match_Quality = "good"

[[Zr]]
Symbol = "Zr"
Match_Quality = "self"

[[Zr]]
Symbol = "Hf"
Match_Quality = "good"
`

const candidatesCSV = `Symbol,Name,AtomicNumber,Surrogate,Match_Quality
Be,Beryllium,4,Be,self
Mg,Magnesium,12,Be,good
F,Fluorine,9,F,self
Zr,Zirconium,40,Zr,self
Hf,Hafnium,72,Zr,good
Xe,Xenon,54,,
`

func TestCandidates(t *testing.T) {
	want := map[string][]string{
		"be": {"be", "mg"},
		"f":  {"f"},
		"zr": {"zr", "hf"},
	}
	for _, test := range []struct {
		name string
		read func() (Candidates, error)
	}{
		{"json", func() (Candidates, error) { return ReadCandidatesJSON(strings.NewReader(candidatesJSON)) }},
		{"toml", func() (Candidates, error) {
			c, err := ReadCandidatesTOML(strings.NewReader(candidatesTOML))
			if err == nil {
				c["F"] = nil
			}
			return c, err
		}},
		{"csv", func() (Candidates, error) { return CandidatesFromCSV(strings.NewReader(candidatesCSV)) }},
	} {
		t.Run(test.name, func(t *testing.T) {
			c, err := test.read()
			if err != nil {
				t.Fatal(err)
			}
			got := c.Symbols()
			if !reflect.DeepEqual(got, want) {
				t.Errorf("%v", pretty.Diff(got, want))
			}
			if s := c.Surrogates(); !reflect.DeepEqual(s, []string{"be", "f", "zr"}) {
				t.Errorf("surrogates: %v", s)
			}
			if c["Be"][1].Name != "Magnesium" || c["Be"][1].MatchQuality != "good" {
				t.Errorf("candidate: %+v", c["Be"][1])
			}
		})
	}
}

func TestCandidatesCSVMissingColumn(t *testing.T) {
	if _, err := CandidatesFromCSV(strings.NewReader("Symbol,Name\nBe,Beryllium\n")); err == nil {
		t.Error("expected an error")
	}
}

func TestCandidatesWrite(t *testing.T) {
	c, err := ReadCandidatesJSON(strings.NewReader(candidatesJSON))
	if err != nil {
		t.Fatal(err)
	}
	buf := new(bytes.Buffer)
	if err := c.Write(buf); err != nil {
		t.Fatal(err)
	}
	c2, err := ReadCandidatesJSON(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.Symbols(), c2.Symbols()) {
		t.Errorf("%v", pretty.Diff(c.Symbols(), c2.Symbols()))
	}
}

func elementTable() *Table {
	t := NewTable()
	t.Vector[1] = map[string]VectorEntry{
		"Be": {AtomDensity: 9, MolePercent: 30},
		"mg": {AtomDensity: 1, MolePercent: 3},
		"f":  {AtomDensity: 20, MolePercent: 67},
		"xe": {AtomDensity: 0.001, MolePercent: 0.003},
	}
	t.Vector[2] = map[string]VectorEntry{
		"be": {AtomDensity: 5, MolePercent: 25},
		"f":  {AtomDensity: 15, MolePercent: 75},
	}
	return t
}

func TestBuildSurrogates(t *testing.T) {
	c, err := ReadCandidatesJSON(strings.NewReader(candidatesJSON))
	if err != nil {
		t.Fatal(err)
	}
	log, warn := testLogger()
	s := BuildSurrogates(elementTable(), c, log)

	be := s.Vector[1]["be"]
	if be.AtomDensity != 10 || be.MolePercent != 33 {
		t.Errorf("be vector: %+v", be)
	}
	if math.Abs(s.Percentages[1]["be"]["be"].ContributionPercentage-90) > 1e-12 ||
		math.Abs(s.Percentages[1]["be"]["mg"].ContributionPercentage-10) > 1e-12 {
		t.Errorf("be contributions: %+v", s.Percentages[1]["be"])
	}
	// Every surrogate has an entry, even when nothing contributes to it.
	if zr, ok := s.Vector[1]["zr"]; !ok || zr.AtomDensity != 0 {
		t.Errorf("zr vector: %+v, %v", zr, ok)
	}
	if len(s.Percentages[1]["zr"]) != 0 {
		t.Errorf("zr contributions: %+v", s.Percentages[1]["zr"])
	}
	// Contributions of each surrogate sum to 100.
	for _, ts := range SortedTimesteps(s.Percentages) {
		for sur, c := range s.Percentages[ts] {
			if len(c) == 0 {
				continue
			}
			var total float64
			for _, v := range c {
				total += v.ContributionPercentage
			}
			if math.Abs(total-100) > 1e-6 {
				t.Errorf("timestep %v surrogate %s: contributions sum to %g", ts, sur, total)
			}
		}
	}
	if len(warn.msgs) != 1 || !strings.Contains(warn.msgs[0], "do not belong") {
		t.Errorf("warnings: %v", warn.msgs)
	}
}

func TestBuildSurrogatesZeroTotal(t *testing.T) {
	elements := NewTable()
	elements.Vector[3] = map[string]VectorEntry{"be": {}, "mg": {}}
	c, err := ReadCandidatesJSON(strings.NewReader(candidatesJSON))
	if err != nil {
		t.Fatal(err)
	}
	log, _ := testLogger()
	s := BuildSurrogates(elements, c, log)
	be := s.Percentages[3]["be"]
	if len(be) != 2 || be["be"].ContributionPercentage != 0 || be["mg"].ContributionPercentage != 0 {
		t.Errorf("contributions: %+v", be)
	}
	if be.Decouplable() {
		t.Error("zero-total surrogate should not be decouplable")
	}
}

func TestTableReadWrite(t *testing.T) {
	const in = `{
  "surrogate_vector": {"4": {"Be": {"atom_density": 1, "mole_percent": 10}}},
  "surrogate_percentages": {"4": {"Be": {"Be": {"atom_density": 0.9, "contribution_percentage": 90},
    "Mg": {"atom_density": 0.1, "contribution_percentage": 10}}}}
}`
	tbl, err := ReadTable(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	c, ok := tbl.Lookup(4, "BE")
	if !ok {
		t.Fatal("be not found")
	}
	if c["mg"].ContributionPercentage != 10 {
		t.Errorf("contributions: %+v", c)
	}
	if !reflect.DeepEqual(c.Keys(), []string{"be", "mg"}) {
		t.Errorf("keys: %v", c.Keys())
	}
	if _, ok := tbl.Lookup(5, "be"); ok {
		t.Error("timestep 5 should be missing")
	}
	buf := new(bytes.Buffer)
	if err := tbl.Write(buf); err != nil {
		t.Fatal(err)
	}
	tbl2, err := ReadTable(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tbl, tbl2) {
		t.Errorf("%v", pretty.Diff(tbl, tbl2))
	}
}

func TestContributionsDecouplable(t *testing.T) {
	for _, test := range []struct {
		c    Contributions
		want bool
	}{
		{nil, false},
		{contributions(map[string]float64{"u": 100}), false},
		{contributions(map[string]float64{"th": 0, "pa": 0}), false},
		{contributions(map[string]float64{"be": 100, "mg": 0}), false},
		{contributions(map[string]float64{"be": 100, "mg": 0, "ca": 0}), false},
		{contributions(map[string]float64{"be": 90, "mg": 10, "ca": 0}), true},
	} {
		if got := test.c.Decouplable(); got != test.want {
			t.Errorf("%v: got %v, want %v", test.c, got, test.want)
		}
	}
}

func TestBuildSurrogatesSingleLiveCandidate(t *testing.T) {
	elements := NewTable()
	elements.Vector[4] = map[string]VectorEntry{
		"be": {AtomDensity: 9, MolePercent: 30},
		"mg": {},
		"f":  {AtomDensity: 20, MolePercent: 70},
	}
	c, err := ReadCandidatesJSON(strings.NewReader(candidatesJSON))
	if err != nil {
		t.Fatal(err)
	}
	log, _ := testLogger()
	s := BuildSurrogates(elements, c, log)
	be := s.Percentages[4]["be"]
	if be["be"].ContributionPercentage != 100 || be["mg"].ContributionPercentage != 0 {
		t.Errorf("contributions: %+v", be)
	}
	if be.Decouplable() {
		t.Error("surrogate with one live candidate should not be decouplable")
	}

	d := &Decoupler{Table: s, Precision: Float64, Log: log}
	in := PhaseFile{4: {"MSFL": {Type: Salt, CationMolePercent: map[string]float64{"Be[2+]": 40}}}}
	out, stats, err := d.Decouple(Salt, in)
	if err != nil {
		t.Fatal(err)
	}
	if got := out[4]["MSFL"].CationMolePercent; len(got) != 1 || got["Be[2+]"] != 40 {
		t.Errorf("cations: %v", got)
	}
	if stats.Decoupled != 0 || stats.Elements["be"] || !stats.NotDecoupled["be"] {
		t.Errorf("stats: %+v", stats)
	}
}
