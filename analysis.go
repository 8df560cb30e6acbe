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
	"math"
	"strings"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/unit"
)

// GibbsSeries holds the integral Gibbs energy of each timestep.
type GibbsSeries struct {
	Timesteps   []Timestep
	Energy      []float64 // [J]
	Temperature []float64 // [K]
}

// Gibbs extracts the integral Gibbs energy from each state.
func Gibbs(states map[Timestep]*SolverState) *GibbsSeries {
	o := new(GibbsSeries)
	for _, ts := range SortedTimesteps(states) {
		s := states[ts]
		o.Timesteps = append(o.Timesteps, ts)
		o.Energy = append(o.Energy, s.IntegralGibbsEnergy)
		o.Temperature = append(o.Temperature, s.Temperature)
	}
	return o
}

// Abs returns the absolute Gibbs energies, for plotting on a
// logarithmic scale.
func (g *GibbsSeries) Abs() []float64 {
	o := make([]float64, len(g.Energy))
	for i, e := range g.Energy {
		o[i] = math.Abs(e)
	}
	return o
}

// Trend fits a straight line to Gibbs energy as a function of timestep and
// returns its slope [J per timestep] and coefficient of determination.
func (g *GibbsSeries) Trend() (slope *unit.Unit, rsquared float64, err error) {
	if len(g.Energy) < 2 {
		return nil, 0, fmt.Errorf("saltchem: need at least two timesteps for a Gibbs energy trend, have %d", len(g.Energy))
	}
	x := make([]float64, len(g.Timesteps))
	for i, ts := range g.Timesteps {
		x[i] = float64(ts)
	}
	s, _, r2, _, _, _ := stats.LinearRegression(x, g.Energy)
	return unit.New(s, unit.Joule), r2, nil
}

// PhaseTable lists the amount of every phase that is present at some
// timestep. Solution phase columns are named "S:<phase>" and pure
// condensed phase columns "P:<phase>".
type PhaseTable struct {
	Columns   []string
	Timesteps []Timestep

	// SolutionCount and PureCount are the numbers of solution and pure
	// condensed phases present at each timestep.
	SolutionCount, PureCount []int

	// Moles is indexed by timestep, then column.
	Moles [][]float64
}

// Present returns whether the phase in column j is present at timestep
// index i.
func (t *PhaseTable) Present(i, j int) bool { return t.Moles[i][j] > 0 }

// Phases builds the phase table of a run. A phase is present at a
// timestep when its amount is greater than zero.
func Phases(states map[Timestep]*SolverState) *PhaseTable {
	sol := make(map[string]bool)
	pure := make(map[string]bool)
	for _, s := range states {
		for name, p := range s.SolutionPhases {
			if p != nil && p.Moles > 0 {
				sol[name] = true
			}
		}
		for name, p := range s.PureCondensedPhases {
			if p != nil && p.Moles > 0 {
				pure[name] = true
			}
		}
	}
	solNames := setList(sol)
	pureNames := setList(pure)

	o := new(PhaseTable)
	for _, n := range solNames {
		o.Columns = append(o.Columns, "S:"+n)
	}
	for _, n := range pureNames {
		o.Columns = append(o.Columns, "P:"+n)
	}
	for _, ts := range SortedTimesteps(states) {
		s := states[ts]
		row := make([]float64, len(o.Columns))
		var ns, np int
		for j, n := range solNames {
			if p := s.SolutionPhases[n]; p != nil && p.Moles > 0 {
				row[j] = p.Moles
				ns++
			}
		}
		for j, n := range pureNames {
			if p := s.PureCondensedPhases[n]; p != nil && p.Moles > 0 {
				row[len(solNames)+j] = p.Moles
				np++
			}
		}
		o.Timesteps = append(o.Timesteps, ts)
		o.SolutionCount = append(o.SolutionCount, ns)
		o.PureCount = append(o.PureCount, np)
		o.Moles = append(o.Moles, row)
	}
	return o
}

// CationPhases returns the sorted names of the solution phases whose name
// starts with prefix and that are present with cation data at some
// timestep.
func CationPhases(states map[Timestep]*SolverState, prefix string) []string {
	names := make(map[string]bool)
	for _, s := range states {
		for name, p := range s.SolutionPhases {
			if p != nil && p.Moles > 0 && p.Cations != nil && strings.HasPrefix(name, prefix) {
				names[name] = true
			}
		}
	}
	return setList(names)
}
