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
)

// PhaseKind is the physical class of a phase.
type PhaseKind string

// Phase kinds.
const (
	Salt  PhaseKind = "salt"
	Gas   PhaseKind = "gas"
	Solid PhaseKind = "solid"
)

// ParsePhaseKind parses a phase kind name.
func ParsePhaseKind(s string) (PhaseKind, error) {
	switch k := PhaseKind(Key(s)); k {
	case Salt, Gas, Solid:
		return k, nil
	default:
		return "", fmt.Errorf("saltchem: invalid phase kind %q; valid options are 'salt', 'gas' and 'solid'", s)
	}
}

// Phase is the composition of one phase at one timestep. Quantities in
// the per-key tables are mole percents within the phase.
type Phase struct {
	Type         PhaseKind `json:"type"`
	PhasePercent float64   `json:"phase_percent"`
	Moles        float64   `json:"moles"`

	SpeciesMolePercent       map[string]float64 `json:"species_mole_percent,omitempty"`
	CationMolePercent        map[string]float64 `json:"cation_mole_percent,omitempty"`
	AnionMolePercent         map[string]float64 `json:"anion_mole_percent,omitempty"`
	ElementMolePercent       map[string]float64 `json:"element_mole_percent,omitempty"`
	CationNuclideMolePercent map[string]float64 `json:"cation_nuclide_mole_percent,omitempty"`
	AnionNuclideMolePercent  map[string]float64 `json:"anion_nuclide_mole_percent,omitempty"`

	// Extra holds any other fields, which are written back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

var phaseFields = map[string]bool{
	"type":                        true,
	"phase_percent":               true,
	"moles":                       true,
	"species_mole_percent":        true,
	"cation_mole_percent":         true,
	"anion_mole_percent":          true,
	"element_mole_percent":        true,
	"cation_nuclide_mole_percent": true,
	"anion_nuclide_mole_percent":  true,
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Phase) UnmarshalJSON(b []byte) error {
	type plain Phase
	var pp plain
	if err := json.Unmarshal(b, &pp); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for k, v := range all {
		if phaseFields[k] {
			continue
		}
		if pp.Extra == nil {
			pp.Extra = make(map[string]json.RawMessage)
		}
		pp.Extra[k] = v
	}
	*p = Phase(pp)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Phase) MarshalJSON() ([]byte, error) {
	type plain Phase
	b, err := json.Marshal(plain(p))
	if err != nil || len(p.Extra) == 0 {
		return b, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for k, v := range p.Extra {
		if !phaseFields[k] {
			all[k] = v
		}
	}
	return json.Marshal(all)
}

// Clone returns a deep copy of p. The copy of a nil phase is nil.
func (p *Phase) Clone() *Phase {
	if p == nil {
		return nil
	}
	o := *p
	o.SpeciesMolePercent = cloneTable(p.SpeciesMolePercent)
	o.CationMolePercent = cloneTable(p.CationMolePercent)
	o.AnionMolePercent = cloneTable(p.AnionMolePercent)
	o.ElementMolePercent = cloneTable(p.ElementMolePercent)
	o.CationNuclideMolePercent = cloneTable(p.CationNuclideMolePercent)
	o.AnionNuclideMolePercent = cloneTable(p.AnionNuclideMolePercent)
	if p.Extra != nil {
		o.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			o.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &o
}

func cloneTable(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	o := make(map[string]float64, len(m))
	for k, v := range m {
		o[k] = v
	}
	return o
}

// sortedKeys returns the keys of m in sorted order.
func sortedKeys(m map[string]float64) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

// PhaseFile holds phase compositions keyed by timestep and phase name.
type PhaseFile map[Timestep]map[string]*Phase

// Names returns the phase names that appear at any timestep, sorted.
func (f PhaseFile) Names() []string {
	seen := make(map[string]bool)
	var o []string
	for _, phases := range f {
		for name := range phases {
			if !seen[name] {
				seen[name] = true
				o = append(o, name)
			}
		}
	}
	sort.Strings(o)
	return o
}

// ReadPhaseFile reads a phase file in JSON format.
func ReadPhaseFile(r io.Reader) (PhaseFile, error) {
	var f PhaseFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("saltchem: problem decoding phase file: %w", err)
	}
	return f, nil
}

// LoadPhaseFile reads a phase file from disk.
func LoadPhaseFile(path string) (PhaseFile, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("saltchem: problem opening phase file: %w", err)
	}
	defer r.Close()
	return ReadPhaseFile(r)
}

// Write writes the phase file as indented JSON.
func (f PhaseFile) Write(w io.Writer) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(f); err != nil {
		return fmt.Errorf("saltchem: problem writing phase file: %w", err)
	}
	return nil
}
