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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
)

// VectorEntry is the aggregate amount of one surrogate (or element) at
// one timestep.
type VectorEntry struct {
	AtomDensity float64 `json:"atom_density"`
	MolePercent float64 `json:"mole_percent"`
}

// Contribution is the share of one real element or isotope in the total
// of the surrogate it belongs to.
type Contribution struct {
	AtomDensity            float64 `json:"atom_density"`
	ContributionPercentage float64 `json:"contribution_percentage"`
}

// Contributions holds the contributions to one surrogate, keyed by
// lowercase candidate symbol or isotope.
type Contributions map[string]Contribution

// Decouplable returns whether quantities attributed to the surrogate
// should be redistributed over its candidates, which requires at least two
// candidates with a non-zero contribution.
func (c Contributions) Decouplable() bool {
	live := 0
	for _, v := range c {
		if v.ContributionPercentage > 0 {
			live++
		}
	}
	return live > 1
}

// Keys returns the candidate keys in sorted order.
func (c Contributions) Keys() []string {
	o := make([]string, 0, len(c))
	for k := range c {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

// Table holds surrogate amounts and the contributions of their
// candidates for each timestep. The same structure describes the
// element-to-isotope aggregation produced by ProcessNuclides, where the
// "surrogates" are elements and the candidates are isotopes.
type Table struct {
	Vector      map[Timestep]map[string]VectorEntry   `json:"surrogate_vector"`
	Percentages map[Timestep]map[string]Contributions `json:"surrogate_percentages"`
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		Vector:      make(map[Timestep]map[string]VectorEntry),
		Percentages: make(map[Timestep]map[string]Contributions),
	}
}

// Lookup returns the contributions to surrogate at timestep t. The
// surrogate symbol is matched case-insensitively.
func (t *Table) Lookup(ts Timestep, surrogate string) (Contributions, bool) {
	p, ok := t.Percentages[ts]
	if !ok {
		return nil, false
	}
	c, ok := p[Key(surrogate)]
	return c, ok
}

// HasTimestep returns whether the table has contribution data for ts.
func (t *Table) HasTimestep(ts Timestep) bool {
	_, ok := t.Percentages[ts]
	return ok
}

// ReadTable reads a table in JSON format.
func ReadTable(r io.Reader) (*Table, error) {
	t := NewTable()
	if err := json.NewDecoder(r).Decode(t); err != nil {
		return nil, fmt.Errorf("saltchem: problem decoding surrogate table: %w", err)
	}
	if t.Vector == nil {
		t.Vector = make(map[Timestep]map[string]VectorEntry)
	}
	if t.Percentages == nil {
		t.Percentages = make(map[Timestep]map[string]Contributions)
	}
	t.normalize()
	return t, nil
}

// normalize lowercases all surrogate and candidate keys.
func (t *Table) normalize() {
	for ts, v := range t.Vector {
		n := make(map[string]VectorEntry, len(v))
		for k, e := range v {
			n[Key(k)] = e
		}
		t.Vector[ts] = n
	}
	for ts, p := range t.Percentages {
		n := make(map[string]Contributions, len(p))
		for k, c := range p {
			nc := make(Contributions, len(c))
			for ck, cv := range c {
				nc[Key(ck)] = cv
			}
			n[Key(k)] = nc
		}
		t.Percentages[ts] = n
	}
}

// LoadTable reads a table from a JSON file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("saltchem: problem opening surrogate table: %w", err)
	}
	defer f.Close()
	return ReadTable(f)
}

// Write writes the table as indented JSON.
func (t *Table) Write(w io.Writer) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(t); err != nil {
		return fmt.Errorf("saltchem: problem writing surrogate table: %w", err)
	}
	return nil
}

// BuildSurrogates aggregates the per-timestep element amounts in
// elements.Vector onto the surrogates in cand. For each surrogate the
// atom densities and mole percents of all candidates present at a
// timestep are summed, and each candidate's contribution percentage is
// its share of the surrogate's atom density. Contributions are zero when
// the surrogate total is zero. An element listed under several surrogates
// counts toward each of them.
func BuildSurrogates(elements *Table, cand Candidates, log logrus.FieldLogger) *Table {
	if log == nil {
		log = logrus.StandardLogger()
	}
	members := cand.Symbols()
	surrogates := cand.Surrogates()
	owner := make(map[string][]string)
	for _, sur := range surrogates {
		for _, el := range members[sur] {
			owner[el] = append(owner[el], sur)
		}
	}

	o := NewTable()
	for _, ts := range SortedTimesteps(elements.Vector) {
		vec := make(map[string]VectorEntry, len(surrogates))
		pct := make(map[string]Contributions, len(surrogates))
		for _, sur := range surrogates {
			vec[sur] = VectorEntry{}
			pct[sur] = make(Contributions)
		}
		var unmapped []string
		for el, v := range elements.Vector[ts] {
			el = Key(el)
			surs, ok := owner[el]
			if !ok {
				unmapped = append(unmapped, el)
				continue
			}
			for _, sur := range surs {
				e := vec[sur]
				e.AtomDensity += v.AtomDensity
				e.MolePercent += v.MolePercent
				vec[sur] = e
				pct[sur][el] = Contribution{AtomDensity: v.AtomDensity}
			}
		}
		found := 0
		for _, sur := range surrogates {
			total := vec[sur].AtomDensity
			if total > 0 {
				found++
			}
			for el, c := range pct[sur] {
				if total > 0 {
					c.ContributionPercentage = c.AtomDensity / total * 100
				} else {
					c.ContributionPercentage = 0
				}
				pct[sur][el] = c
			}
		}
		if len(unmapped) > 0 {
			sort.Strings(unmapped)
			log.WithFields(logrus.Fields{
				"timestep": ts,
				"elements": unmapped,
			}).Warn("elements do not belong to any surrogate")
		}
		log.WithFields(logrus.Fields{
			"timestep":   ts,
			"surrogates": found,
		}).Debug("built surrogate table")
		o.Vector[ts] = vec
		o.Percentages[ts] = pct
	}
	return o
}
