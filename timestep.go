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
	"strconv"
	"strings"
)

// Timestep identifies one depletion step. JSON objects keyed by
// timestep strings decode directly into maps keyed by Timestep.
type Timestep int

// ParseTimestep parses a timestep from its decimal string form.
func ParseTimestep(s string) (Timestep, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("saltchem: invalid timestep %q: %w", s, err)
	}
	return Timestep(i), nil
}

func (t Timestep) String() string { return strconv.Itoa(int(t)) }

// SortedTimesteps returns the keys of m in ascending order.
func SortedTimesteps[V any](m map[Timestep]V) []Timestep {
	o := make([]Timestep, 0, len(m))
	for t := range m {
		o = append(o, t)
	}
	sort.Slice(o, func(i, j int) bool { return o[i] < o[j] })
	return o
}

// MissingTimesteps returns the timesteps between the smallest and largest
// of ts that are not in ts.
func MissingTimesteps(ts []Timestep) []Timestep {
	if len(ts) == 0 {
		return nil
	}
	present := make(map[Timestep]bool, len(ts))
	lo, hi := ts[0], ts[0]
	for _, t := range ts {
		present[t] = true
		if t < lo {
			lo = t
		}
		if t > hi {
			hi = t
		}
	}
	var o []Timestep
	for t := lo; t <= hi; t++ {
		if !present[t] {
			o = append(o, t)
		}
	}
	return o
}
