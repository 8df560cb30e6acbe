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

// Package report writes analysis results as CSV, JSON and XLSX tables
// and PNG plots.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/ondrejch/saltchem"
)

// Table is a named table of values with one row per timestep. Missing
// values are NaN.
type Table struct {
	Name      string
	Columns   []string
	Timesteps []saltchem.Timestep

	// Values is indexed by row, then column.
	Values [][]float64

	// Format is the fmt verb used for values in text output. The default
	// is %g.
	Format string
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	for j, c := range t.Columns {
		if c == name {
			o := make([]float64, len(t.Values))
			for i, row := range t.Values {
				o[i] = row[j]
			}
			return o, nil
		}
	}
	return nil, fmt.Errorf("report: table %s has no column %q", t.Name, name)
}

func (t *Table) format(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if t.Format == "" {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprintf(t.Format, v)
}

// WriteCSV writes t with a leading Timestep column.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Timestep"}, t.Columns...)); err != nil {
		return fmt.Errorf("report: problem writing CSV: %w", err)
	}
	for i, row := range t.Values {
		rec := make([]string, len(row)+1)
		rec[0] = t.Timesteps[i].String()
		for j, v := range row {
			rec[j+1] = t.format(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("report: problem writing CSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: problem writing CSV: %w", err)
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(v); err != nil {
		return fmt.Errorf("report: problem writing JSON: %w", err)
	}
	return nil
}

// RatioTable lists the defined ratios of s, formatted as %.10e.
func RatioTable(s *saltchem.RatioSeries) *Table {
	ts, v := s.Defined()
	t := &Table{
		Name:      "redox " + s.Couple,
		Columns:   []string{s.Couple + " Ratio"},
		Timesteps: ts,
		Format:    "%.10e",
	}
	for _, x := range v {
		t.Values = append(t.Values, []float64{x})
	}
	return t
}

// RedoxTable lists the ratios of several couples side by side, with NaN
// where a ratio is not defined.
func RedoxTable(series ...*saltchem.RatioSeries) *Table {
	t := &Table{Name: "redox", Format: "%.10e"}
	rows := make(map[saltchem.Timestep][]float64)
	for j, s := range series {
		t.Columns = append(t.Columns, s.Couple+" Ratio")
		for i, ts := range s.Timesteps {
			row, ok := rows[ts]
			if !ok {
				row = make([]float64, len(series))
				for k := range row {
					row[k] = math.NaN()
				}
				rows[ts] = row
			}
			if r := s.Ratios[i]; r.Status.Defined() {
				row[j] = r.Value
			}
		}
	}
	for _, ts := range saltchem.SortedTimesteps(rows) {
		t.Timesteps = append(t.Timesteps, ts)
		t.Values = append(t.Values, rows[ts])
	}
	return t
}

// GibbsTable lists the integral Gibbs energy and temperature of each
// timestep.
func GibbsTable(g *saltchem.GibbsSeries) *Table {
	t := &Table{
		Name:      "gibbs",
		Columns:   []string{"Integral Gibbs Energy [J]", "Temperature [K]"},
		Timesteps: g.Timesteps,
		Format:    "%.10e",
	}
	for i := range g.Timesteps {
		t.Values = append(t.Values, []float64{g.Energy[i], g.Temperature[i]})
	}
	return t
}

// PresenceTable lists the number of solution and pure condensed phases of
// each timestep followed by a 1/0 column for each phase.
func PresenceTable(p *saltchem.PhaseTable) *Table {
	t := &Table{
		Name:      "phase presence",
		Columns:   append([]string{"# solution phases", "# pure condensed phases"}, p.Columns...),
		Timesteps: p.Timesteps,
	}
	for i := range p.Timesteps {
		row := []float64{float64(p.SolutionCount[i]), float64(p.PureCount[i])}
		for j := range p.Columns {
			if p.Present(i, j) {
				row = append(row, 1)
			} else {
				row = append(row, 0)
			}
		}
		t.Values = append(t.Values, row)
	}
	return t
}

// MoleTable lists the moles of each phase at each timestep.
func MoleTable(p *saltchem.PhaseTable) *Table {
	t := &Table{
		Name:      "phase moles",
		Columns:   append([]string(nil), p.Columns...),
		Timesteps: p.Timesteps,
		Format:    "%.10e",
	}
	for _, row := range p.Moles {
		t.Values = append(t.Values, append([]float64(nil), row...))
	}
	return t
}

// PhasePercentTable lists the phase_percent of every phase in f, with 0
// where a phase is absent.
func PhasePercentTable(name string, f saltchem.PhaseFile) *Table {
	t := &Table{
		Name:    name,
		Columns: f.Names(),
		Format:  "%.6f",
	}
	for _, ts := range saltchem.SortedTimesteps(f) {
		row := make([]float64, len(t.Columns))
		for j, n := range t.Columns {
			if p := f[ts][n]; p != nil {
				row[j] = p.PhasePercent
			}
		}
		t.Timesteps = append(t.Timesteps, ts)
		t.Values = append(t.Values, row)
	}
	return t
}

// cationTablePrefix starts the names of tables made by CationTable.
const cationTablePrefix = "cations "

// CationTable lists the cation mole percents of the solution phase named
// phase at each timestep where it is present with cation data. A cation
// that is missing at one of those timesteps is 0 there.
func CationTable(states map[saltchem.Timestep]*saltchem.SolverState, phase string) *Table {
	t := &Table{Name: cationTablePrefix + phase, Format: "%.10e"}
	var phases []*saltchem.SolutionPhase
	cations := make(map[string]bool)
	for _, ts := range saltchem.SortedTimesteps(states) {
		p := states[ts].SolutionPhases[phase]
		if p == nil || p.Moles <= 0 || p.Cations == nil {
			continue
		}
		t.Timesteps = append(t.Timesteps, ts)
		phases = append(phases, p)
		for c := range p.Cations {
			cations[c] = true
		}
	}
	for c := range cations {
		t.Columns = append(t.Columns, c)
	}
	sort.Strings(t.Columns)
	for _, p := range phases {
		row := make([]float64, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = p.Cations[c].MoleFraction * 100
		}
		t.Values = append(t.Values, row)
	}
	return t
}
