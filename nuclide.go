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

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// NuclideStep holds the isotope atom densities reported by the depletion
// code for one timestep, keyed by isotope name such as "li-7".
type NuclideStep struct {
	Nuclide map[string]float64 `json:"nuclide"`
}

// NuclideVector holds isotope atom densities for each timestep.
type NuclideVector map[Timestep]*NuclideStep

// ReadNuclideVector reads a nuclide vector in JSON format.
func ReadNuclideVector(r io.Reader) (NuclideVector, error) {
	var v NuclideVector
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, fmt.Errorf("saltchem: problem decoding nuclide vector: %w", err)
	}
	return v, nil
}

// LoadNuclideVector reads a nuclide vector from a JSON file.
func LoadNuclideVector(path string) (NuclideVector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("saltchem: problem opening nuclide vector: %w", err)
	}
	defer f.Close()
	return ReadNuclideVector(f)
}

// ProcessNuclides aggregates isotope atom densities into element totals.
// In the returned table, Vector holds each element's total atom density
// and its mole percent of all elements at the timestep, and Percentages
// holds each isotope's share of its element. If include is not empty,
// only the listed elements are kept in the output, although mole percents
// are still computed relative to all elements. Timesteps without nuclide
// data or with a non-positive total are skipped with a warning. An error
// is returned if no timestep could be processed.
func ProcessNuclides(v NuclideVector, include []string, log logrus.FieldLogger) (*Table, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	var keep map[string]bool
	if len(include) > 0 {
		keep = make(map[string]bool, len(include))
		for _, e := range include {
			keep[Key(e)] = true
		}
	}

	o := NewTable()
	for _, ts := range SortedTimesteps(v) {
		step := v[ts]
		if step == nil || len(step.Nuclide) == 0 {
			log.WithField("timestep", ts).Warn("skipping timestep: no nuclide data")
			continue
		}
		totals := make(map[string]float64)
		isotopes := make(map[string]map[string]float64)
		for nuc, density := range step.Nuclide {
			el := IsotopeElement(nuc)
			totals[el] += density
			if isotopes[el] == nil {
				isotopes[el] = make(map[string]float64)
			}
			isotopes[el][Key(nuc)] += density
		}
		values := make([]float64, 0, len(totals))
		for _, d := range totals {
			values = append(values, d)
		}
		total := floats.Sum(values)
		if total <= 0 {
			log.WithFields(logrus.Fields{
				"timestep": ts,
				"total":    total,
			}).Warn("skipping timestep: total atom density is not positive")
			continue
		}
		vec := make(map[string]VectorEntry)
		pct := make(map[string]Contributions)
		for el, d := range totals {
			if keep != nil && !keep[el] {
				continue
			}
			vec[el] = VectorEntry{AtomDensity: d, MolePercent: d / total * 100}
			c := make(Contributions, len(isotopes[el]))
			for nuc, nd := range isotopes[el] {
				var p float64
				if d > 0 {
					p = nd / d * 100
				}
				c[nuc] = Contribution{AtomDensity: nd, ContributionPercentage: p}
			}
			pct[el] = c
		}
		o.Vector[ts] = vec
		o.Percentages[ts] = pct
	}
	if len(o.Vector) == 0 {
		return nil, fmt.Errorf("saltchem: no valid nuclide data was processed")
	}
	return o, nil
}
