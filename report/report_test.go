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
	"bytes"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/tealeg/xlsx"
	"gonum.org/v1/plot"

	"github.com/ondrejch/saltchem"
)

func testSeries() *saltchem.RatioSeries {
	return &saltchem.RatioSeries{
		Couple:    "UF3/UF4",
		Timesteps: []saltchem.Timestep{0, 1, 2, 3},
		Ratios: []saltchem.Ratio{
			{Status: saltchem.RatioOK, Value: 0.01},
			{Status: saltchem.RatioUndefined},
			{Status: saltchem.RatioOK, Value: 0.1},
			{Status: saltchem.RatioNearZero, Value: saltchem.NearZeroRatio},
		},
	}
}

func TestRatioCSV(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := WriteCSV(buf, RatioTable(testSeries())); err != nil {
		t.Fatal(err)
	}
	want := `Timestep,UF3/UF4 Ratio
0,1.0000000000e-02
2,1.0000000000e-01
3,4.9406564584e-324
`
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestRedoxTable(t *testing.T) {
	cr := &saltchem.RatioSeries{
		Couple:    "Cr2+/Cr3+",
		Timesteps: []saltchem.Timestep{1, 4},
		Ratios:    []saltchem.Ratio{{Status: saltchem.RatioOK, Value: 2}, {Status: saltchem.RatioNotComputable}},
	}
	tbl := RedoxTable(testSeries(), cr)
	if !reflect.DeepEqual(tbl.Timesteps, []saltchem.Timestep{0, 1, 2, 3, 4}) {
		t.Errorf("timesteps: %v", tbl.Timesteps)
	}
	u, err := tbl.Column("UF3/UF4 Ratio")
	if err != nil {
		t.Fatal(err)
	}
	if u[0] != 0.01 || !math.IsNaN(u[1]) || !math.IsNaN(u[4]) {
		t.Errorf("uranium: %v", u)
	}
	c, _ := tbl.Column("Cr2+/Cr3+ Ratio")
	if c[1] != 2 || !math.IsNaN(c[0]) || !math.IsNaN(c[4]) {
		t.Errorf("chromium: %v", c)
	}
	buf := new(bytes.Buffer)
	if err := WriteCSV(buf, tbl); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[2] != "1,,2.0000000000e+00" {
		t.Errorf("row for timestep 1: %q", lines[2])
	}
}

func testPhaseTable() *saltchem.PhaseTable {
	return &saltchem.PhaseTable{
		Columns:       []string{"S:MSFL", "P:Fe_BCC(s)"},
		Timesteps:     []saltchem.Timestep{1, 2},
		SolutionCount: []int{1, 1},
		PureCount:     []int{1, 0},
		Moles:         [][]float64{{2, 0.5}, {1.5, 0}},
	}
}

func TestPresenceTable(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := WriteCSV(buf, PresenceTable(testPhaseTable())); err != nil {
		t.Fatal(err)
	}
	want := `Timestep,# solution phases,# pure condensed phases,S:MSFL,P:Fe_BCC(s)
1,1,1,1,1
2,1,0,1,0
`
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPhasePercentTable(t *testing.T) {
	f := saltchem.PhaseFile{
		2: {"gas_ideal": {PhasePercent: 100}},
		1: {"gas_ideal": {PhasePercent: 60}, "gas_real": {PhasePercent: 40}},
	}
	tbl := PhasePercentTable("Gas", f)
	want := &Table{
		Name:      "Gas",
		Columns:   []string{"gas_ideal", "gas_real"},
		Timesteps: []saltchem.Timestep{1, 2},
		Values:    [][]float64{{60, 40}, {100, 0}},
		Format:    "%.6f",
	}
	if !reflect.DeepEqual(tbl, want) {
		t.Errorf("%v", pretty.Diff(tbl, want))
	}
}

func TestDerive(t *testing.T) {
	tbl := RedoxTable(testSeries())
	err := tbl.Derive(map[string]string{
		"log ratio": "log10([UF3/UF4 Ratio])",
		"scaled":    "[UF3/UF4 Ratio] * 100 + Timestep",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tbl.Columns, []string{"UF3/UF4 Ratio", "log ratio", "scaled"}) {
		t.Errorf("columns: %v", tbl.Columns)
	}
	l, _ := tbl.Column("log ratio")
	if math.Abs(l[0]+2) > 1e-12 || !math.IsNaN(l[1]) || math.Abs(l[2]+1) > 1e-12 {
		t.Errorf("log ratio: %v", l)
	}
	s, _ := tbl.Column("scaled")
	if math.Abs(s[2]-12) > 1e-12 {
		t.Errorf("scaled: %v", s)
	}

	for _, bad := range []string{"log10(", "[missing] + 1", "log10(1, 2)"} {
		if err := RedoxTable(testSeries()).Derive(map[string]string{"x": bad}); err == nil {
			t.Errorf("%q: expected an error", bad)
		}
	}
}

func TestWriteXLSX(t *testing.T) {
	dir, err := ioutil.TempDir("", "saltchem_report")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "report.xlsx")
	if err := WriteXLSX(path, RatioTable(testSeries()), PresenceTable(testPhaseTable())); err != nil {
		t.Fatal(err)
	}
	f, err := xlsx.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := f.Sheet["redox UF3-UF4"]
	if !ok {
		t.Fatalf("sheets: %v", f.Sheet)
	}
	if v := s.Cell(0, 1).Value; v != "UF3/UF4 Ratio" {
		t.Errorf("header: %q", v)
	}
	if v := s.Cell(2, 0).Value; v != "2" {
		t.Errorf("timestep: %q", v)
	}
	if v, err := s.Cell(2, 1).Float(); err != nil || v != 0.1 {
		t.Errorf("ratio: %v, %v", v, err)
	}
	if _, ok := f.Sheet["phase presence"]; !ok {
		t.Error("missing presence sheet")
	}
}

func TestSheetName(t *testing.T) {
	if n := sheetName("a/b:c[d]?*" + strings.Repeat("x", 40)); len(n) != maxSheetName || !strings.HasPrefix(n, "a-b-c(d)x") {
		t.Errorf("sheet name: %q", n)
	}
}

func TestCationTable(t *testing.T) {
	salt := func(moles float64, cations map[string]float64) *saltchem.SolverState {
		c := make(map[string]saltchem.Constituent, len(cations))
		for k, v := range cations {
			c[k] = saltchem.Constituent{MoleFraction: v}
		}
		return &saltchem.SolverState{SolutionPhases: map[string]*saltchem.SolutionPhase{
			"MSFL": {Moles: moles, Cations: c},
		}}
	}
	states := map[saltchem.Timestep]*saltchem.SolverState{
		1: salt(2, map[string]float64{"Li[+]": 0.995, "U[3+]": 0.005}),
		2: salt(0, map[string]float64{"Li[+]": 1}),
		3: salt(2, map[string]float64{"Li[+]": 0.99, "Cr[2+]": 0.01}),
	}
	tbl := CationTable(states, "MSFL")
	want := &Table{
		Name:      "cations MSFL",
		Columns:   []string{"Cr[2+]", "Li[+]", "U[3+]"},
		Timesteps: []saltchem.Timestep{1, 3},
		Values:    [][]float64{{0, 99.5, 0.5}, {1, 99, 0}},
		Format:    "%.10e",
	}
	if len(tbl.Values) != 2 {
		t.Fatalf("rows: %v", tbl.Values)
	}
	for i, row := range tbl.Values {
		for j, v := range row {
			if math.Abs(v-want.Values[i][j]) > 1e-9 {
				t.Errorf("row %d column %d: %g != %g", i, j, v, want.Values[i][j])
			}
		}
	}
	tbl.Values = want.Values
	if !reflect.DeepEqual(tbl, want) {
		t.Errorf("%v", pretty.Diff(tbl, want))
	}

	if _, err := CationPlot(tbl, true); err != nil {
		t.Error(err)
	}
	if _, err := CationPlot(tbl, false); err != nil {
		t.Error(err)
	}
	minor := &Table{Name: "cations MSFL", Columns: []string{"U[3+]"}, Timesteps: []saltchem.Timestep{1}, Values: [][]float64{{0.5}}}
	if _, err := CationPlot(minor, false); err == nil {
		t.Error("minor cations should be left out of linear plots")
	}
	if _, err := CationPlot(minor, true); err != nil {
		t.Error(err)
	}
	if n := CationTable(states, "P3c1"); len(n.Columns) != 0 || len(n.Timesteps) != 0 {
		t.Errorf("missing phase: %+v", n)
	}
	if names := saltchem.CationPhases(states, "MSFL"); !reflect.DeepEqual(names, []string{"MSFL"}) {
		t.Errorf("cation phases: %v", names)
	}
}

func TestWorkbookDuplicateSheetNames(t *testing.T) {
	long := strings.Repeat("cation composition ", 3)
	tables := []*Table{
		{Name: long + "MSFL"},
		{Name: long + "MSFL#2"},
		{Name: long + "P3c1"},
		{Name: "Redox"},
		{Name: "redox"},
	}
	f, err := Workbook(tables...)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, s := range f.Sheets {
		names = append(names, s.Name)
		if len(s.Name) > maxSheetName {
			t.Errorf("sheet name %q is too long", s.Name)
		}
	}
	want := []string{
		sheetName(long),
		sheetName(long)[:maxSheetName-2] + " 2",
		sheetName(long)[:maxSheetName-2] + " 3",
		"Redox",
		"redox 2",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("%v", pretty.Diff(names, want))
	}
}

func TestPlots(t *testing.T) {
	g := &saltchem.GibbsSeries{
		Timesteps:   []saltchem.Timestep{1, 2, 3},
		Energy:      []float64{-100, -110, -120},
		Temperature: []float64{900, 900, 900},
	}
	cr := &saltchem.RatioSeries{
		Couple:    "Cr2+/Cr3+",
		Timesteps: []saltchem.Timestep{1, 2},
		Ratios:    []saltchem.Ratio{{Status: saltchem.RatioOK, Value: 2}, {Status: saltchem.RatioOK, Value: 3}},
	}
	ratio, err := RatioPlot(testSeries())
	if err != nil {
		t.Fatal(err)
	}
	redox, err := RedoxPlot(testSeries(), cr)
	if err != nil {
		t.Fatal(err)
	}
	gibbs, err := GibbsPlot(g, false)
	if err != nil {
		t.Fatal(err)
	}
	gibbsLog, err := GibbsPlot(g, true)
	if err != nil {
		t.Fatal(err)
	}
	moles, err := PhaseMolesPlot(testPhaseTable())
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range []*plot.Plot{ratio, redox, gibbs, gibbsLog, moles} {
		buf := new(bytes.Buffer)
		if err := WritePNG(buf, p); err != nil {
			t.Fatalf("plot %d: %v", i, err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
			t.Errorf("plot %d is not a PNG", i)
		}
	}

	empty := &saltchem.RatioSeries{Couple: "UF3/UF4", Timesteps: []saltchem.Timestep{1}, Ratios: []saltchem.Ratio{{Status: saltchem.RatioUndefined}}}
	if _, err := RatioPlot(empty); err == nil {
		t.Error("expected an error for a series with no defined ratios")
	}
}
