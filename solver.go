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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// Constituent is a species, cation or anion of a solution phase.
type Constituent struct {
	MoleFraction      float64 `json:"mole fraction"`
	Moles             float64 `json:"moles,omitempty"`
	ChemicalPotential float64 `json:"chemical potential,omitempty"`
}

// PhaseElement describes how much of one element a phase holds.
type PhaseElement struct {
	MolesInPhase          float64 `json:"moles of element in phase"`
	MoleFractionOfPhase   float64 `json:"mole fraction of phase by element"`
	MoleFractionOfElement float64 `json:"mole fraction of element by phase"`
}

// SolutionPhase is a solution phase in the solver output.
type SolutionPhase struct {
	Model    string                  `json:"phase model,omitempty"`
	Moles    float64                 `json:"moles"`
	Species  map[string]Constituent  `json:"species,omitempty"`
	Cations  map[string]Constituent  `json:"cations,omitempty"`
	Anions   map[string]Constituent  `json:"anions,omitempty"`
	Elements map[string]PhaseElement `json:"elements,omitempty"`
}

// PureCondensedPhase is a stoichiometric phase in the solver output.
type PureCondensedPhase struct {
	Moles             float64                 `json:"moles"`
	ChemicalPotential float64                 `json:"chemical potential,omitempty"`
	Elements          map[string]PhaseElement `json:"elements,omitempty"`
}

// SolverState is the equilibrium result of one solver calculation.
type SolverState struct {
	Temperature         float64                        `json:"temperature"`
	Pressure            float64                        `json:"pressure"`
	IntegralGibbsEnergy float64                        `json:"integral Gibbs energy"`
	SolutionPhases      map[string]*SolutionPhase      `json:"solution phases"`
	PureCondensedPhases map[string]*PureCondensedPhase `json:"pure condensed phases"`
}

// SolverOutput is the content of one solver output file, which holds
// one state per calculation keyed by calculation number. Raw keeps the
// file content so that it can be echoed unchanged.
type SolverOutput struct {
	States map[int]*SolverState
	Raw    json.RawMessage
}

// ParseSolverOutput parses solver output JSON.
func ParseSolverOutput(b []byte) (*SolverOutput, error) {
	var m map[string]*SolverState
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("saltchem: problem parsing solver output: %w", err)
	}
	o := &SolverOutput{
		States: make(map[int]*SolverState, len(m)),
		Raw:    append(json.RawMessage(nil), b...),
	}
	for k, s := range m {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("saltchem: solver output has non-numeric calculation key %q", k)
		}
		if s != nil {
			o.States[i] = s
		}
	}
	return o, nil
}

// First returns the state with the lowest calculation number.
func (o *SolverOutput) First() (*SolverState, bool) {
	if o == nil || len(o.States) == 0 {
		return nil, false
	}
	keys := make([]int, 0, len(o.States))
	for k := range o.States {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return o.States[keys[0]], true
}

// Condensed holds the solver output of every timestep of a run.
type Condensed map[Timestep]*SolverOutput

// States returns the first solver state of each timestep that has one.
func (c Condensed) States() map[Timestep]*SolverState {
	o := make(map[Timestep]*SolverState, len(c))
	for ts, out := range c {
		if s, ok := out.First(); ok {
			o[ts] = s
		}
	}
	return o
}

// Write writes the condensed report as a JSON object keyed by timestep in
// ascending order, with each solver output copied verbatim.
func (c Condensed) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("{")
	for i, ts := range SortedTimesteps(c) {
		if i > 0 {
			bw.WriteString(",")
		}
		raw := c[ts].Raw
		if len(raw) == 0 {
			raw = json.RawMessage("{}")
		}
		fmt.Fprintf(bw, "\n%q: ", ts.String())
		bw.Write(raw)
	}
	bw.WriteString("\n}\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("saltchem: problem writing condensed report: %w", err)
	}
	return nil
}

// ReadCondensed reads a condensed report.
func ReadCondensed(r io.Reader) (Condensed, error) {
	var m map[Timestep]json.RawMessage
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("saltchem: problem decoding condensed report: %w", err)
	}
	c := make(Condensed, len(m))
	for ts, raw := range m {
		o, err := ParseSolverOutput(raw)
		if err != nil {
			return nil, fmt.Errorf("saltchem: timestep %v: %w", ts, err)
		}
		c[ts] = o
	}
	return c, nil
}

// LoadCondensed reads a condensed report from disk.
func LoadCondensed(path string) (Condensed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("saltchem: problem opening condensed report: %w", err)
	}
	defer f.Close()
	return ReadCondensed(f)
}
