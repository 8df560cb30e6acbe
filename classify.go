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

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/ondrejch/saltchem/formula"
)

// DefaultSaltPhases are the solution phase names that are always
// classified as salt.
var DefaultSaltPhases = []string{"MSFL", "P3c1"}

// Classifier assigns phases to salt, gas or solid.
type Classifier struct {
	// SaltPhases are solution phase names classified as salt in addition
	// to names containing "salt", "liquid" or "melt".
	SaltPhases []string

	// UnknownAsSolid causes unrecognized solution phases to be
	// classified as solid instead of being rejected.
	UnknownAsSolid bool

	Log logrus.FieldLogger
}

// NewClassifier returns a classifier that recognizes DefaultSaltPhases and
// rejects unknown solution phases.
func NewClassifier() *Classifier {
	return &Classifier{SaltPhases: DefaultSaltPhases, Log: logrus.StandardLogger()}
}

// UnknownPhaseError is returned when a solution phase cannot be
// classified.
type UnknownPhaseError struct {
	Phase string
}

func (e UnknownPhaseError) Error() string {
	return fmt.Sprintf("saltchem: cannot classify solution phase %q; add it to the salt phases or allow unknown phases as solid", e.Phase)
}

// Classify returns the kind of the phase with the given name. Pure
// condensed phases are always solid.
func (c *Classifier) Classify(name string, pure bool) (PhaseKind, error) {
	if pure {
		return Solid, nil
	}
	l := strings.ToLower(name)
	switch {
	case strings.Contains(l, "gas"):
		return Gas, nil
	case strings.Contains(l, "salt"), strings.Contains(l, "liquid"), strings.Contains(l, "melt"):
		return Salt, nil
	}
	for _, s := range c.SaltPhases {
		if strings.EqualFold(s, name) {
			return Salt, nil
		}
	}
	if c.UnknownAsSolid {
		if c.Log != nil {
			c.Log.WithField("phase", name).Warn("classifying unknown solution phase as solid")
		}
		return Solid, nil
	}
	return "", UnknownPhaseError{Phase: name}
}

// Split validates and classifies every phase present (moles > 0) in the
// condensed report and returns one phase file per kind. phase_percent is
// the share of the phase in the moles of all present phases of the same
// kind at that timestep. Gas and unrecognized solution phases carry
// species mole percents, salts carry cation and anion mole percents, and
// pure condensed phases carry element mole percents as species.
func (c *Classifier) Split(cond Condensed) (map[PhaseKind]PhaseFile, error) {
	o := map[PhaseKind]PhaseFile{
		Salt:  make(PhaseFile),
		Gas:   make(PhaseFile),
		Solid: make(PhaseFile),
	}
	states := cond.States()
	for _, ts := range SortedTimesteps(states) {
		s := states[ts]
		for _, f := range o {
			f[ts] = make(map[string]*Phase)
		}
		for name, sp := range s.SolutionPhases {
			if sp == nil || sp.Moles <= 0 {
				continue
			}
			kind, err := c.Classify(name, false)
			if err != nil {
				return nil, err
			}
			p := &Phase{Type: kind, Moles: sp.Moles}
			switch kind {
			case Salt:
				p.CationMolePercent = percentTable(sp.Cations)
				p.AnionMolePercent = percentTable(sp.Anions)
			default:
				p.SpeciesMolePercent = percentTable(sp.Species)
			}
			o[kind][ts][name] = p
		}
		for name, pp := range s.PureCondensedPhases {
			if pp == nil || pp.Moles <= 0 {
				continue
			}
			o[Solid][ts][name] = &Phase{
				Type:               Solid,
				Moles:              pp.Moles,
				SpeciesMolePercent: pureComposition(name, pp),
			}
		}
		for _, f := range o {
			setPhasePercent(f[ts])
		}
	}
	return o, nil
}

func percentTable(m map[string]Constituent) map[string]float64 {
	if len(m) == 0 {
		return nil
	}
	o := make(map[string]float64, len(m))
	for k, v := range m {
		o[k] = v.MoleFraction * 100
	}
	return o
}

// pureComposition returns the element mole percents of a pure condensed
// phase, from the solver's per-element data when available and from the
// stoichiometry in the phase name otherwise.
func pureComposition(name string, p *PureCondensedPhase) map[string]float64 {
	o := make(map[string]float64)
	for el, e := range p.Elements {
		if e.MoleFractionOfPhase > 0 {
			o[formula.DisplayName(el)] = e.MoleFractionOfPhase * 100
		}
	}
	if len(o) > 0 {
		return o
	}
	stoich := name
	if i := strings.IndexAny(stoich, "_("); i > 0 {
		stoich = stoich[:i]
	}
	counts := formula.Parse(stoich)
	var total float64
	for _, c := range counts {
		total += float64(c.N)
	}
	for _, c := range counts {
		o[c.Element] += float64(c.N) / total * 100
	}
	return o
}

func setPhasePercent(phases map[string]*Phase) {
	moles := make([]float64, 0, len(phases))
	for _, p := range phases {
		moles = append(moles, p.Moles)
	}
	total := floats.Sum(moles)
	if total <= 0 || math.IsNaN(total) {
		return
	}
	for _, p := range phases {
		p.PhasePercent = p.Moles / total * 100
	}
}
