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
	"sort"

	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"
)

// Amounts of substance are tracked in their own dimension, since "mol"
// is reserved by the unit package.
var moleDim = unit.NewDimension("moles")

// Mole is the dimension of an amount of substance.
var Mole = unit.Dimensions{moleDim: 1}

// RedoxThreshold is the amount below which a reduced or oxidized amount is
// treated as zero.
const RedoxThreshold = 1e-30

// NearZeroRatio is the ratio reported when the reduced amount is below
// RedoxThreshold. It is positive so that ratios stay plottable on a
// logarithmic scale.
const NearZeroRatio = math.SmallestNonzeroFloat64

// RatioStatus tells how a redox ratio was obtained.
type RatioStatus int

const (
	// RatioOK is an ordinary ratio.
	RatioOK RatioStatus = iota
	// RatioNearZero means the reduced amount was negligible and the ratio
	// is NearZeroRatio.
	RatioNearZero
	// RatioUndefined means the oxidized amount was negligible, so no
	// ratio was computed.
	RatioUndefined
	// RatioNotComputable means the salt phase or its cation data was
	// missing or empty.
	RatioNotComputable
)

func (s RatioStatus) String() string {
	switch s {
	case RatioOK:
		return "ok"
	case RatioNearZero:
		return "near zero"
	case RatioUndefined:
		return "undefined"
	case RatioNotComputable:
		return "not computable"
	default:
		return fmt.Sprintf("RatioStatus(%d)", int(s))
	}
}

// Defined returns whether the ratio has a value that can be used in
// statistics and plots.
func (s RatioStatus) Defined() bool { return s == RatioOK || s == RatioNearZero }

// RedoxCouple defines a redox ratio as the weighted sum of the mole
// fractions of reduced cations over that of oxidized cations.
type RedoxCouple struct {
	Name     string
	Reduced  map[string]float64
	Oxidized map[string]float64
}

// UraniumCouple is the UF3/UF4 ratio. U4+ occurs as 6- and 7-coordinate
// cations and as a dimer holding two uranium atoms.
var UraniumCouple = RedoxCouple{
	Name:    "UF3/UF4",
	Reduced: map[string]float64{"U[3+]": 1},
	Oxidized: map[string]float64{
		"U[CN=VI]":  1,
		"U[CN=VII]": 1,
		"U[Dimer]":  2,
	},
}

// ChromiumCouple is the Cr2+/Cr3+ ratio.
var ChromiumCouple = RedoxCouple{
	Name:     "Cr2+/Cr3+",
	Reduced:  map[string]float64{"Cr[2+]": 1},
	Oxidized: map[string]float64{"Cr[3+]": 1},
}

// Ratio is a redox ratio at one timestep.
type Ratio struct {
	Status RatioStatus

	// Value is the ratio; it is only meaningful when Status.Defined().
	Value float64

	// Reduced and Oxidized are the amounts [moles]; they are nil when the
	// ratio is not computable.
	Reduced, Oxidized *unit.Unit

	// Reason explains a RatioNotComputable status.
	Reason string
}

// RedoxCalculator computes redox ratios from the cation mole fractions of
// the salt phase.
type RedoxCalculator struct {
	// SaltPhase is the name of the salt solution phase.
	SaltPhase string
	Log       logrus.FieldLogger
}

// NewRedoxCalculator returns a calculator for the "MSFL" salt phase.
func NewRedoxCalculator() *RedoxCalculator {
	return &RedoxCalculator{SaltPhase: "MSFL", Log: logrus.StandardLogger()}
}

func weightedFraction(cations map[string]Constituent, w map[string]float64) float64 {
	var f float64
	for name, weight := range w {
		f += weight * cations[name].MoleFraction
	}
	return f
}

// Ratio computes the ratio of couple in state s.
func (c *RedoxCalculator) Ratio(s *SolverState, couple RedoxCouple) Ratio {
	if s == nil {
		return Ratio{Status: RatioNotComputable, Reason: "no solver state"}
	}
	p, ok := s.SolutionPhases[c.SaltPhase]
	if !ok || p == nil {
		return Ratio{Status: RatioNotComputable, Reason: fmt.Sprintf("phase %s not found", c.SaltPhase)}
	}
	if p.Cations == nil {
		return Ratio{Status: RatioNotComputable, Reason: fmt.Sprintf("phase %s has no cations", c.SaltPhase)}
	}
	if p.Moles <= 0 {
		return Ratio{Status: RatioNotComputable, Reason: fmt.Sprintf("phase %s has %g moles", c.SaltPhase, p.Moles)}
	}
	moles := unit.New(p.Moles, Mole)
	red := unit.Mul(unit.New(weightedFraction(p.Cations, couple.Reduced), unit.Dimless), moles)
	ox := unit.Mul(unit.New(weightedFraction(p.Cations, couple.Oxidized), unit.Dimless), moles)
	r := Ratio{Reduced: red, Oxidized: ox}
	switch {
	case ox.Value() < RedoxThreshold:
		r.Status = RatioUndefined
	case red.Value() < RedoxThreshold:
		r.Status = RatioNearZero
		r.Value = NearZeroRatio
	default:
		v, err := ratioValue(red, ox)
		if err != nil {
			return Ratio{Status: RatioNotComputable, Reason: err.Error()}
		}
		r.Value = v
	}
	return r
}

// ratioValue divides red by ox, which must have the same dimensions.
func ratioValue(red, ox *unit.Unit) (float64, error) {
	q := unit.Div(red, ox)
	if err := q.Check(unit.Dimless); err != nil {
		return 0, err
	}
	return q.Value(), nil
}

// RatioSeries holds the ratios of one couple over a run, in timestep
// order.
type RatioSeries struct {
	Couple    string
	Timesteps []Timestep
	Ratios    []Ratio
}

// Series computes the ratio of couple at every timestep in states.
func (c *RedoxCalculator) Series(states map[Timestep]*SolverState, couple RedoxCouple) *RatioSeries {
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	o := &RatioSeries{Couple: couple.Name}
	for _, ts := range SortedTimesteps(states) {
		r := c.Ratio(states[ts], couple)
		switch r.Status {
		case RatioNotComputable:
			log.WithFields(logrus.Fields{
				"timestep": ts,
				"couple":   couple.Name,
			}).Warnf("ratio not computable: %s", r.Reason)
		case RatioUndefined:
			log.WithFields(logrus.Fields{
				"timestep": ts,
				"couple":   couple.Name,
			}).Warn("oxidized amount is negligible; ratio undefined")
		case RatioNearZero:
			log.WithFields(logrus.Fields{
				"timestep": ts,
				"couple":   couple.Name,
			}).Debug("reduced amount is negligible; ratio near zero")
		}
		o.Timesteps = append(o.Timesteps, ts)
		o.Ratios = append(o.Ratios, r)
	}
	return o
}

// Defined returns the timesteps and values of the defined ratios.
func (s *RatioSeries) Defined() ([]Timestep, []float64) {
	var ts []Timestep
	var v []float64
	for i, r := range s.Ratios {
		if r.Status.Defined() {
			ts = append(ts, s.Timesteps[i])
			v = append(v, r.Value)
		}
	}
	return ts, v
}

// Problematic returns the timesteps whose ratio is not defined.
func (s *RatioSeries) Problematic() []Timestep {
	var o []Timestep
	for i, r := range s.Ratios {
		if !r.Status.Defined() {
			o = append(o, s.Timesteps[i])
		}
	}
	sort.Slice(o, func(i, j int) bool { return o[i] < o[j] })
	return o
}
