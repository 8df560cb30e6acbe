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
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ondrejch/saltchem/formula"
)

// A Decoupler reverses surrogate aggregation: it redistributes the
// quantities that the solver reports for surrogate elements onto the
// real elements each surrogate stands for, in proportion to their
// contribution percentages.
type Decoupler struct {
	Table     *Table
	Precision Precision
	Log       logrus.FieldLogger
}

// NewDecoupler returns a decoupler that uses the contributions in t.
func NewDecoupler(t *Table, p Precision) *Decoupler {
	return &Decoupler{Table: t, Precision: p, Log: logrus.StandardLogger()}
}

// DecoupleStats summarizes one decoupling run.
type DecoupleStats struct {
	Processed int // keys examined
	Decoupled int // keys redistributed over more than one candidate
	Skipped   int // keys with no recognizable element

	NotFound     map[string]bool // elements with no surrogate data
	Elements     map[string]bool // elements that were decoupled
	NotDecoupled map[string]bool // elements whose surrogate has a single candidate
}

func newDecoupleStats() *DecoupleStats {
	return &DecoupleStats{
		NotFound:     make(map[string]bool),
		Elements:     make(map[string]bool),
		NotDecoupled: make(map[string]bool),
	}
}

func setList(s map[string]bool) []string {
	o := make([]string, 0, len(s))
	for k := range s {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

func (s *DecoupleStats) fields() logrus.Fields {
	return logrus.Fields{
		"processed":     s.Processed,
		"decoupled":     s.Decoupled,
		"skipped":       s.Skipped,
		"not_found":     setList(s.NotFound),
		"elements":      setList(s.Elements),
		"not_decoupled": setList(s.NotDecoupled),
	}
}

// field is one keyed quantity table of a phase together with the rules
// for finding and replacing the elements in its keys.
type field struct {
	name string
	get  func(*Phase) map[string]float64
	set  func(*Phase, map[string]float64)

	// elements returns the elements in key that may be decoupled.
	elements func(key string) []string

	// rename returns key with element el replaced by to.
	rename func(key, el, to string) string
}

var gasFields = []field{{
	name:     "species_mole_percent",
	get:      func(p *Phase) map[string]float64 { return p.SpeciesMolePercent },
	set:      func(p *Phase, m map[string]float64) { p.SpeciesMolePercent = m },
	elements: func(k string) []string { return formula.Parse(k).Elements() },
	rename:   formula.Substitute,
}}

func ionElements(k string) []string {
	if el := formula.IonElement(k); el != "" {
		return []string{el}
	}
	return nil
}

var saltFields = []field{
	{
		name:     "cation_mole_percent",
		get:      func(p *Phase) map[string]float64 { return p.CationMolePercent },
		set:      func(p *Phase, m map[string]float64) { p.CationMolePercent = m },
		elements: ionElements,
		rename:   formula.SubstituteIon,
	},
	{
		name:     "anion_mole_percent",
		get:      func(p *Phase) map[string]float64 { return p.AnionMolePercent },
		set:      func(p *Phase, m map[string]float64) { p.AnionMolePercent = m },
		elements: ionElements,
		rename:   formula.SubstituteIon,
	},
}

// Solids are keyed by element, and the decoupled quantities move from
// species_mole_percent to element_mole_percent.
var solidFields = []field{{
	name: "species_mole_percent",
	get:  func(p *Phase) map[string]float64 { return p.SpeciesMolePercent },
	set: func(p *Phase, m map[string]float64) {
		p.SpeciesMolePercent = nil
		p.ElementMolePercent = m
	},
	elements: func(k string) []string { return []string{k} },
	rename:   func(_, _, to string) string { return to },
}}

func fieldsFor(kind PhaseKind) ([]field, error) {
	switch kind {
	case Gas:
		return gasFields, nil
	case Salt:
		return saltFields, nil
	case Solid:
		return solidFields, nil
	default:
		return nil, fmt.Errorf("saltchem: cannot decouple phases of kind %q", kind)
	}
}

// Decouple returns a decoupled copy of the phases of the given kind in
// in. Phases of other kinds are copied unchanged, as are timesteps for
// which the table has no data. For gas phases the species formulas are
// rewritten, for salts the cation and anion tables are rewritten
// independently, and for solids the species table is rewritten into
// element_mole_percent.
func (d *Decoupler) Decouple(kind PhaseKind, in PhaseFile) (PhaseFile, *DecoupleStats, error) {
	fields, err := fieldsFor(kind)
	if err != nil {
		return nil, nil, err
	}
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	stats := newDecoupleStats()
	out := make(PhaseFile, len(in))
	for _, ts := range SortedTimesteps(in) {
		phases := in[ts]
		out[ts] = make(map[string]*Phase, len(phases))
		if !d.Table.HasTimestep(ts) {
			log.WithField("timestep", ts).Warn("no surrogate data for timestep; copying phases unchanged")
			for name, p := range phases {
				out[ts][name] = p.Clone()
			}
			continue
		}
		for name, p := range phases {
			np := p.Clone()
			out[ts][name] = np
			if p == nil || p.Type != kind {
				continue
			}
			for _, f := range fields {
				src := f.get(p)
				if src == nil {
					continue
				}
				acc := newAccumulator()
				for _, key := range sortedKeys(src) {
					d.decoupleKey(ts, key, src[key], f, acc, stats)
				}
				f.set(np, acc.table())
				log.WithFields(logrus.Fields{
					"timestep": ts,
					"phase":    name,
					"field":    f.name,
				}).Debug("decoupled phase field")
			}
		}
	}
	log.WithFields(stats.fields()).WithField("kind", kind).Info("decoupled phases")
	return out, stats, nil
}

// variant is one substitution outcome of a key.
type variant struct {
	key string
	q   quantity
}

// decoupleKey redistributes value v of key over the candidates of each
// decouplable element in the key. When several elements are decouplable
// the result is the cross product of their candidates, with quantities
// combined multiplicatively. Results are added to acc.
func (d *Decoupler) decoupleKey(ts Timestep, key string, v float64, f field, acc *accumulator, stats *DecoupleStats) {
	stats.Processed++
	els := f.elements(key)
	if len(els) == 0 {
		stats.Skipped++
		acc.add(key, d.Precision.quantity(v))
		return
	}
	variants := []variant{{key: key, q: d.Precision.quantity(v)}}
	decoupled := false
	for _, el := range els {
		elKey := Key(el)
		c, ok := d.Table.Lookup(ts, elKey)
		if !ok {
			stats.NotFound[elKey] = true
			continue
		}
		if !c.Decouplable() {
			stats.NotDecoupled[elKey] = true
			continue
		}
		stats.Elements[elKey] = true
		decoupled = true
		next := make([]variant, 0, len(variants)*len(c))
		for _, cur := range variants {
			for _, cand := range c.Keys() {
				share := c[cand].ContributionPercentage
				if share <= 0 {
					continue
				}
				k := cur.key
				if cand != elKey {
					k = f.rename(cur.key, el, formula.DisplayName(cand))
				}
				next = append(next, variant{key: k, q: cur.q.percentOf(share)})
			}
		}
		variants = next
	}
	if !decoupled {
		acc.add(key, variants[0].q)
		return
	}
	stats.Decoupled++
	for _, cur := range variants {
		if cur.q.positive() {
			acc.add(cur.key, cur.q)
		}
	}
}

// DecoupleNuclides distributes the ion mole percents of the salt phases in
// salt onto isotopes using the element-to-isotope contributions in
// isotopes, as produced by ProcessNuclides. The element of an ion is the
// text before its bracketed annotation. Dimer cations count twice. Ions
// whose element has no isotope data are left out, and timesteps missing
// from isotopes are skipped.
func (d *Decoupler) DecoupleNuclides(salt PhaseFile, isotopes *Table) (PhaseFile, *DecoupleStats) {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	stats := newDecoupleStats()
	out := make(PhaseFile, len(salt))
	for _, ts := range SortedTimesteps(salt) {
		if !isotopes.HasTimestep(ts) {
			log.WithField("timestep", ts).Warn("no isotope data for timestep; skipping")
			continue
		}
		out[ts] = make(map[string]*Phase, len(salt[ts]))
		for name, p := range salt[ts] {
			if p == nil {
				out[ts][name] = nil
				continue
			}
			np := &Phase{
				Type:                     p.Type,
				PhasePercent:             p.PhasePercent,
				Moles:                    p.Moles,
				CationNuclideMolePercent: d.nuclideTable(ts, p.CationMolePercent, true, isotopes, stats),
				AnionNuclideMolePercent:  d.nuclideTable(ts, p.AnionMolePercent, false, isotopes, stats),
			}
			out[ts][name] = np
		}
	}
	log.WithFields(stats.fields()).Info("decoupled salt nuclides")
	return out, stats
}

func (d *Decoupler) nuclideTable(ts Timestep, ions map[string]float64, cation bool, isotopes *Table, stats *DecoupleStats) map[string]float64 {
	acc := newAccumulator()
	for _, ion := range sortedKeys(ions) {
		stats.Processed++
		el := ionElementKey(ion)
		c, ok := isotopes.Lookup(ts, el)
		if !ok {
			stats.NotFound[el] = true
			stats.Skipped++
			continue
		}
		q := d.Precision.quantity(ions[ion])
		if cation && isDimer(ion) {
			q = q.times(2)
		}
		stats.Elements[el] = true
		stats.Decoupled++
		for _, nuc := range c.Keys() {
			acc.add(nuc, q.percentOf(c[nuc].ContributionPercentage))
		}
	}
	return acc.table()
}

// ionElementKey returns the lowercase element of an ion, which is the
// text before its bracketed annotation.
func ionElementKey(ion string) string {
	return Key(strings.SplitN(ion, "[", 2)[0])
}

func isDimer(ion string) bool { return strings.Contains(ion, "Dimer") }
