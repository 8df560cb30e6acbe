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

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// solverOutputExample is a solver output file for one calculation.
const solverOutputExample = `{
  "1": {
    "temperature": 900.0,
    "pressure": 1.0,
    "integral Gibbs energy": -2.5e5,
    "solution phases": {
      "MSFL": {
        "phase model": "SUBQ",
        "moles": 2.0,
        "species": {"LiF": {"mole fraction": 0.6}},
        "cations": {
          "Li[+]": {"mole fraction": 0.6},
          "U[3+]": {"mole fraction": 0.01},
          "U[CN=VI]": {"mole fraction": 0.02},
          "U[CN=VII]": {"mole fraction": 0.01},
          "U[Dimer]": {"mole fraction": 0.005},
          "Cr[2+]": {"mole fraction": 0.003},
          "Cr[3+]": {"mole fraction": 0.001}
        },
        "anions": {"F": {"mole fraction": 1.0}}
      },
      "gas_ideal": {
        "moles": 0.5,
        "species": {"BeF2": {"mole fraction": 0.1}, "F2": {"mole fraction": 0.9}}
      },
      "LIQUsoln": {"moles": 0.0, "species": {}}
    },
    "pure condensed phases": {
      "CrF3_Solid(s)": {"moles": 0.25},
      "Fe_BCC(s)": {"moles": 0.0}
    }
  }
}`

const solverOutputSmall = `{"1": {"temperature": 950, "integral Gibbs energy": -1e5,
  "solution phases": {}, "pure condensed phases": {}}}`

func exampleCondensed(t *testing.T) Condensed {
	a, err := ParseSolverOutput([]byte(solverOutputExample))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseSolverOutput([]byte(solverOutputSmall))
	if err != nil {
		t.Fatal(err)
	}
	return Condensed{1: a, 3: b}
}

func TestParseSolverOutput(t *testing.T) {
	o, err := ParseSolverOutput([]byte(solverOutputExample))
	if err != nil {
		t.Fatal(err)
	}
	s, ok := o.First()
	if !ok {
		t.Fatal("no state")
	}
	if s.Temperature != 900 || s.IntegralGibbsEnergy != -2.5e5 {
		t.Errorf("state: %+v", s)
	}
	msfl := s.SolutionPhases["MSFL"]
	if msfl.Model != "SUBQ" || msfl.Moles != 2 || msfl.Cations["U[Dimer]"].MoleFraction != 0.005 {
		t.Errorf("MSFL: %+v", msfl)
	}
	if s.PureCondensedPhases["CrF3_Solid(s)"].Moles != 0.25 {
		t.Errorf("pure phases: %+v", s.PureCondensedPhases)
	}
}

func TestParseSolverOutputBadKey(t *testing.T) {
	if _, err := ParseSolverOutput([]byte(`{"first": {}}`)); err == nil {
		t.Error("expected an error for a non-numeric key")
	}
	if _, err := ParseSolverOutput([]byte(`{"1": `)); err == nil {
		t.Error("expected an error for truncated output")
	}
}

func TestCondensedWrite(t *testing.T) {
	c := exampleCondensed(t)
	buf := new(bytes.Buffer)
	if err := c.Write(buf); err != nil {
		t.Fatal(err)
	}
	want := "{\n\"1\": " + solverOutputExample + ",\n\"3\": " + solverOutputSmall + "\n}\n"
	if buf.String() != want {
		t.Errorf("condensed report:\n%s\nwant:\n%s", buf.String(), want)
	}
	c2, err := ReadCondensed(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c2.States(), c.States()) {
		t.Error("states differ after reading the report back")
	}
	if m := MissingTimesteps(SortedTimesteps(c2)); !reflect.DeepEqual(m, []Timestep{2}) {
		t.Errorf("missing timesteps: %v", m)
	}
}

func TestClassify(t *testing.T) {
	c := NewClassifier()
	for _, test := range []struct {
		name string
		pure bool
		want PhaseKind
	}{
		{"gas_ideal", false, Gas},
		{"MSFL", false, Salt},
		{"msfl", false, Salt},
		{"P3c1", false, Salt},
		{"LiquidSalt", false, Salt},
		{"FCC_A1", true, Solid},
		{"GAS_real", false, Gas},
	} {
		got, err := c.Classify(test.name, test.pure)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("%s: got %s, want %s", test.name, got, test.want)
		}
	}

	_, err := c.Classify("FCC_A1", false)
	if _, ok := err.(UnknownPhaseError); !ok {
		t.Errorf("want UnknownPhaseError, got %v", err)
	}

	log, hook := logtest.NewNullLogger()
	c.UnknownAsSolid = true
	c.Log = log
	if k, err := c.Classify("FCC_A1", false); err != nil || k != Solid {
		t.Errorf("unknown as solid: %v, %v", k, err)
	}
	e := hook.LastEntry()
	if e == nil || e.Level != logrus.WarnLevel || e.Data["phase"] != "FCC_A1" {
		t.Errorf("warning: %+v", e)
	}
}

func TestSplit(t *testing.T) {
	split, err := NewClassifier().Split(exampleCondensed(t))
	if err != nil {
		t.Fatal(err)
	}
	msfl := split[Salt][1]["MSFL"]
	if msfl == nil {
		t.Fatal("MSFL missing")
	}
	if msfl.Type != Salt || msfl.Moles != 2 || math.Abs(msfl.PhasePercent-100) > 1e-9 {
		t.Errorf("MSFL: %+v", msfl)
	}
	if !similarTables(msfl.CationMolePercent, map[string]float64{
		"Li[+]": 60, "U[3+]": 1, "U[CN=VI]": 2, "U[CN=VII]": 1, "U[Dimer]": 0.5, "Cr[2+]": 0.3, "Cr[3+]": 0.1,
	}, 1e-9) {
		t.Errorf("cations: %v", msfl.CationMolePercent)
	}
	if msfl.SpeciesMolePercent != nil {
		t.Errorf("salt should not carry species: %v", msfl.SpeciesMolePercent)
	}
	gas := split[Gas][1]["gas_ideal"]
	if !similarTables(gas.SpeciesMolePercent, map[string]float64{"BeF2": 10, "F2": 90}, 1e-9) {
		t.Errorf("gas: %v", gas.SpeciesMolePercent)
	}
	if _, ok := split[Gas][1]["LIQUsoln"]; ok {
		t.Error("absent phase should be dropped")
	}
	solid := split[Solid][1]
	if len(solid) != 1 {
		t.Fatalf("solids: %v", solid)
	}
	if !similarTables(solid["CrF3_Solid(s)"].SpeciesMolePercent, map[string]float64{"Cr": 25, "F": 75}, 1e-9) {
		t.Errorf("solid: %v", solid["CrF3_Solid(s)"].SpeciesMolePercent)
	}
	// Timestep 3 has no phases but is still listed.
	if p, ok := split[Salt][3]; !ok || len(p) != 0 {
		t.Errorf("timestep 3: %v, %v", p, ok)
	}
}

func TestSplitUnknownPhase(t *testing.T) {
	o, err := ParseSolverOutput([]byte(`{"1": {"solution phases": {"FCC_A1": {"moles": 1}}}}`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewClassifier().Split(Condensed{1: o})
	if err == nil || !strings.Contains(err.Error(), "FCC_A1") {
		t.Errorf("want unknown phase error, got %v", err)
	}
}
