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
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-gota/gota/dataframe"
)

// Candidate is one real element that a surrogate stands in for.
type Candidate struct {
	Symbol       string `json:"Symbol" toml:"Symbol"`
	Name         string `json:"Name" toml:"Name"`
	AtomicNumber string `json:"AtomicNumber" toml:"AtomicNumber"`
	MatchQuality string `json:"Match_Quality" toml:"Match_Quality"`
}

// Candidates maps each surrogate element to the elements it represents.
type Candidates map[string][]Candidate

// Symbols returns the lowercase candidate symbols of each surrogate,
// keyed by lowercase surrogate symbol. A surrogate without candidates
// represents only itself.
func (c Candidates) Symbols() map[string][]string {
	o := make(map[string][]string, len(c))
	for sur, cands := range c {
		s := Key(sur)
		if len(cands) == 0 {
			o[s] = append(o[s], s)
			continue
		}
		for _, cand := range cands {
			o[s] = append(o[s], Key(cand.Symbol))
		}
	}
	return o
}

// Surrogates returns the lowercase surrogate symbols in sorted order.
func (c Candidates) Surrogates() []string {
	o := make([]string, 0, len(c))
	seen := make(map[string]bool)
	for sur := range c {
		s := Key(sur)
		if !seen[s] {
			o = append(o, s)
			seen[s] = true
		}
	}
	sort.Strings(o)
	return o
}

// ReadCandidatesJSON reads a surrogate candidate configuration in JSON
// format.
func ReadCandidatesJSON(r io.Reader) (Candidates, error) {
	var c Candidates
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("saltchem: problem decoding surrogate candidates: %w", err)
	}
	return c, nil
}

// ReadCandidatesTOML reads a surrogate candidate configuration in TOML
// format, where each surrogate is an array of tables:
//
//	[[Be]]
//	Symbol = "Be"
//	Match_Quality = "self"
func ReadCandidatesTOML(r io.Reader) (Candidates, error) {
	var c Candidates
	if _, err := toml.DecodeReader(r, &c); err != nil {
		return nil, fmt.Errorf("saltchem: problem decoding surrogate candidates: %w", err)
	}
	return c, nil
}

// LoadCandidates reads a surrogate candidate configuration from a JSON,
// TOML or CSV file, chosen by file extension.
func LoadCandidates(path string) (Candidates, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("saltchem: problem opening surrogate candidates: %w", err)
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ReadCandidatesTOML(f)
	case ".csv":
		return CandidatesFromCSV(f)
	default:
		return ReadCandidatesJSON(f)
	}
}

// CandidatesFromCSV builds a candidate configuration from a periodic
// table in CSV format with at least the columns Symbol and Surrogate.
// Name, AtomicNumber and Match_Quality are copied when present. Rows with
// an empty Surrogate are ignored. Elements marked as their own ("self")
// match that are not themselves a surrogate are added with no
// candidates.
func CandidatesFromCSV(r io.Reader) (Candidates, error) {
	df := dataframe.ReadCSV(r, dataframe.DetectTypes(false))
	if df.Err != nil {
		return nil, fmt.Errorf("saltchem: problem reading candidate CSV: %w", df.Err)
	}
	cols := make(map[string][]string)
	for _, name := range df.Names() {
		cols[name] = df.Col(name).Records()
	}
	for _, name := range []string{"Symbol", "Surrogate"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("saltchem: candidate CSV is missing column %q", name)
		}
	}
	get := func(col string, i int) string {
		v, ok := cols[col]
		if !ok {
			return ""
		}
		s := strings.TrimSpace(v[i])
		if s == "NaN" {
			return ""
		}
		return s
	}

	c := make(Candidates)
	var order []string
	for i := 0; i < df.Nrow(); i++ {
		sur := get("Surrogate", i)
		if sur == "" {
			continue
		}
		mq := get("Match_Quality", i)
		if _, ok := cols["Match_Quality"]; !ok {
			mq = "Unknown"
		}
		if _, ok := c[sur]; !ok {
			order = append(order, sur)
		}
		c[sur] = append(c[sur], Candidate{
			Symbol:       get("Symbol", i),
			Name:         get("Name", i),
			AtomicNumber: get("AtomicNumber", i),
			MatchQuality: mq,
		})
	}
	for _, sur := range order {
		for _, cand := range c[sur] {
			if _, ok := c[cand.Symbol]; !ok && strings.EqualFold(cand.MatchQuality, "self") {
				c[cand.Symbol] = []Candidate{}
			}
		}
	}
	return c, nil
}

// Write writes the configuration as indented JSON.
func (c Candidates) Write(w io.Writer) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "    ")
	if err := e.Encode(c); err != nil {
		return fmt.Errorf("saltchem: problem writing surrogate candidates: %w", err)
	}
	return nil
}
