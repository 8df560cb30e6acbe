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
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/sirupsen/logrus"
)

// MatchQuality grades how well a surrogate stands in for an element.
type MatchQuality int

// Match qualities, from best to worst.
const (
	GoodMatch MatchQuality = iota + 1
	DecentMatch
	PoorMatch
)

func (q MatchQuality) String() string {
	switch q {
	case GoodMatch:
		return "Good"
	case DecentMatch:
		return "Decent"
	case PoorMatch:
		return "Poor"
	default:
		return fmt.Sprintf("MatchQuality(%d)", int(q))
	}
}

// Matching thresholds.
const (
	// GoodPotential and DecentPotential [V] bound the largest difference
	// in standard potential over the shared valence keys.
	GoodPotential   = 0.4
	DecentPotential = 1.5

	// PoorElectronegativity and PoorMeltingPoint [K] bound the property
	// differences of poor matches.
	PoorElectronegativity = 0.5
	PoorMeltingPoint      = 200.0
)

// ElementProperties are the properties of an element that are used to
// choose its surrogate. Unknown values are NaN.
type ElementProperties struct {
	Symbol string

	// IsSurrogate is true for elements that are their own surrogate.
	IsSurrogate bool

	// Keys are the valence keys of the element's half-reactions in sorted
	// order, and Potentials the matching standard potentials [V].
	Keys       []string
	Potentials []float64

	Electronegativity float64
	ElectronAffinity  float64
	MeltingPoint      float64 // [K]
}

// known reports whether a property value is set. Zero counts as unset, as
// it does in the periodic table data.
func known(v float64) bool { return v != 0 && !math.IsNaN(v) }

func difference(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	return math.Abs(a - b)
}

// SurrogateMatch is the surrogate chosen for an element.
type SurrogateMatch struct {
	Candidate, Surrogate string
	Quality              MatchQuality
	Reason               string

	// Property differences between candidate and surrogate; NaN when
	// either value is unknown or, for PotentialDifference, when the match
	// is not based on potentials.
	PotentialDifference         float64
	ElectronegativityDifference float64
	ElectronAffinityDifference  float64
	MeltingPointDifference      float64
}

// SurrogateMatcher chooses a surrogate for each element of a periodic
// table. Elements are first compared with the surrogates that share all of
// their valence keys, then with any surrogate sharing a key, and finally
// by electronegativity or melting point.
type SurrogateMatcher struct {
	elements   []*ElementProperties
	surrogates []*ElementProperties
	groups     map[string][]*ElementProperties
}

func keyGroup(e *ElementProperties) string { return strings.Join(e.Keys, ",") }

// NewSurrogateMatcher returns a matcher for elements, which are considered
// in the given order.
func NewSurrogateMatcher(elements []*ElementProperties) *SurrogateMatcher {
	m := &SurrogateMatcher{elements: elements, groups: make(map[string][]*ElementProperties)}
	for _, e := range elements {
		if e.IsSurrogate {
			m.surrogates = append(m.surrogates, e)
			if len(e.Keys) > 0 {
				g := keyGroup(e)
				m.groups[g] = append(m.groups[g], e)
			}
		}
	}
	return m
}

// potentialDifferences returns the absolute standard potential difference
// for each valence key that a and b share.
func potentialDifferences(a, b *ElementProperties) map[string]float64 {
	d := make(map[string]float64)
	for i, ka := range a.Keys {
		for j, kb := range b.Keys {
			if ka == kb {
				d[ka] = math.Abs(a.Potentials[i] - b.Potentials[j])
			}
		}
	}
	return d
}

func maxValue(m map[string]float64) float64 {
	v := math.Inf(-1)
	for _, x := range m {
		v = math.Max(v, x)
	}
	return v
}

func minValue(m map[string]float64) float64 {
	v := math.Inf(1)
	for _, x := range m {
		v = math.Min(v, x)
	}
	return v
}

func (m *SurrogateMatcher) newMatch(c, s *ElementProperties, q MatchQuality, dPot float64, reason string) *SurrogateMatch {
	return &SurrogateMatch{
		Candidate:                   c.Symbol,
		Surrogate:                   s.Symbol,
		Quality:                     q,
		Reason:                      reason,
		PotentialDifference:         dPot,
		ElectronegativityDifference: difference(c.Electronegativity, s.Electronegativity),
		ElectronAffinityDifference:  difference(c.ElectronAffinity, s.ElectronAffinity),
		MeltingPointDifference:      difference(c.MeltingPoint, s.MeltingPoint),
	}
}

// groupMatch returns the surrogate in the candidate's valence key group
// with the smallest largest potential difference, as long as that is
// within DecentPotential. A good match is always preferred over a decent
// one.
func (m *SurrogateMatcher) groupMatch(c *ElementProperties) *SurrogateMatch {
	var best *ElementProperties
	bestDiff := math.Inf(1)
	quality := DecentMatch
	for _, s := range m.groups[keyGroup(c)] {
		d := potentialDifferences(c, s)
		if len(d) == 0 {
			continue
		}
		maxDiff := maxValue(d)
		switch {
		case maxDiff <= GoodPotential:
			if maxDiff < bestDiff {
				best, bestDiff, quality = s, maxDiff, GoodMatch
			}
		case maxDiff <= DecentPotential && bestDiff > GoodPotential:
			if maxDiff < bestDiff {
				best, bestDiff, quality = s, maxDiff, DecentMatch
			}
		}
	}
	if best == nil {
		return nil
	}
	return m.newMatch(c, best, quality, bestDiff, quality.String()+" match in valence states")
}

// poorMatch returns the surrogate with the closest electronegativity
// within PoorElectronegativity. While no surrogate qualifies that way, the
// surrogate with the closest melting point within PoorMeltingPoint is
// kept instead.
func (m *SurrogateMatcher) poorMatch(c *ElementProperties) *SurrogateMatch {
	var best *ElementProperties
	var reason string
	minEN, minMP := math.Inf(1), math.Inf(1)
	for _, s := range m.surrogates {
		if known(c.Electronegativity) && known(s.Electronegativity) {
			if d := math.Abs(c.Electronegativity - s.Electronegativity); d < minEN && d < PoorElectronegativity {
				minEN, best, reason = d, s, "electronegativity"
			}
		}
		if math.IsInf(minEN, 1) && known(c.MeltingPoint) && known(s.MeltingPoint) {
			if d := math.Abs(c.MeltingPoint - s.MeltingPoint); d < minMP && d < PoorMeltingPoint {
				minMP, best, reason = d, s, "melting point"
			}
		}
	}
	if best == nil {
		return nil
	}
	return m.newMatch(c, best, PoorMatch, math.NaN(), "Poor match based on similar "+reason)
}

// Match returns the surrogate for element c, or nil if c is itself a
// surrogate or no surrogate is close enough.
func (m *SurrogateMatcher) Match(c *ElementProperties) *SurrogateMatch {
	if c.IsSurrogate {
		return nil
	}
	if len(c.Keys) > 0 {
		if r := m.groupMatch(c); r != nil {
			return r
		}
	}
	for _, s := range m.surrogates {
		if d := potentialDifferences(c, s); len(d) > 0 && minValue(d) <= DecentPotential {
			return m.newMatch(c, s, DecentMatch, minValue(d), "Decent match based on closest potential")
		}
	}
	return m.poorMatch(c)
}

// MatchAll returns the matches of all elements that are not surrogates,
// keyed by element symbol.
func (m *SurrogateMatcher) MatchAll() map[string]*SurrogateMatch {
	o := make(map[string]*SurrogateMatch)
	for _, e := range m.elements {
		if r := m.Match(e); r != nil {
			o[e.Symbol] = r
		}
	}
	return o
}

// splitList splits a comma-separated list.
func splitList(s string) []string {
	var o []string
	for _, v := range strings.Split(s, ",") {
		o = append(o, strings.TrimSpace(v))
	}
	return o
}

// parseProperty parses a numeric table value, returning NaN when it is
// empty or not a number.
func parseProperty(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

type periodicTable struct {
	df   dataframe.DataFrame
	cols map[string][]string
}

func readPeriodicTable(r io.Reader) (*periodicTable, error) {
	df := dataframe.ReadCSV(r, dataframe.DetectTypes(false))
	if df.Err != nil {
		return nil, fmt.Errorf("saltchem: problem reading periodic table: %w", df.Err)
	}
	t := &periodicTable{df: df, cols: make(map[string][]string)}
	for _, name := range df.Names() {
		t.cols[strings.TrimSpace(name)] = df.Col(name).Records()
	}
	if _, ok := t.cols["Symbol"]; !ok {
		return nil, fmt.Errorf("saltchem: periodic table is missing column %q", "Symbol")
	}
	return t, nil
}

// get returns the value in column col of row i, with missing values as "".
func (t *periodicTable) get(col string, i int) string {
	v, ok := t.cols[col]
	if !ok {
		return ""
	}
	s := strings.TrimSpace(v[i])
	if s == "NaN" {
		return ""
	}
	return s
}

// properties returns the matching properties of every row with a symbol.
func (t *periodicTable) properties() []*ElementProperties {
	var o []*ElementProperties
	for i := 0; i < t.df.Nrow(); i++ {
		sym := t.get("Symbol", i)
		if sym == "" {
			continue
		}
		e := &ElementProperties{
			Symbol:            sym,
			IsSurrogate:       strings.EqualFold(t.get("Surrogate", i), sym),
			Electronegativity: parseProperty(t.get("Electronegativity", i)),
			ElectronAffinity:  parseProperty(t.get("ElectronAffinity", i)),
			MeltingPoint:      parseProperty(t.get("MeltingPoint", i)),
		}
		if k, p := t.get("Key", i), t.get("Standard Potential", i); k != "" && p != "" {
			type pair struct {
				key string
				pot float64
			}
			var pairs []pair
			keys, pots := splitList(k), splitList(p)
			for j := 0; j < len(keys) && j < len(pots); j++ {
				v, err := strconv.ParseFloat(pots[j], 64)
				if err != nil || keys[j] == "" {
					continue
				}
				pairs = append(pairs, pair{keys[j], v})
			}
			sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].key < pairs[b].key })
			for _, pp := range pairs {
				e.Keys = append(e.Keys, pp.key)
				e.Potentials = append(e.Potentials, pp.pot)
			}
		}
		o = append(o, e)
	}
	return o
}

// MatchSurrogates reads a periodic table in CSV format, chooses a
// surrogate for each element that is not marked as its own surrogate in
// the Surrogate column, and writes the table to w with the Surrogate and
// Match_Quality columns filled in. Surrogates get the match quality
// "self", and elements without a match keep their original values. The
// Key and Standard Potential columns hold comma-separated valence keys and
// standard potentials [V]; Electronegativity, ElectronAffinity and
// MeltingPoint [K] are optional.
func MatchSurrogates(r io.Reader, w io.Writer, log logrus.FieldLogger) (map[string]*SurrogateMatch, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	t, err := readPeriodicTable(r)
	if err != nil {
		return nil, err
	}
	m := NewSurrogateMatcher(t.properties())
	matches := m.MatchAll()

	n := t.df.Nrow()
	sur := make([]string, n)
	quality := make([]string, n)
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		sym := t.get("Symbol", i)
		sur[i] = t.get("Surrogate", i)
		quality[i] = t.get("Match_Quality", i)
		if sym == "" {
			continue
		}
		if strings.EqualFold(sur[i], sym) {
			quality[i] = "self"
			counts["self"]++
			continue
		}
		if mt, ok := matches[sym]; ok {
			sur[i] = mt.Surrogate
			quality[i] = mt.Quality.String()
			counts[quality[i]]++
			log.WithFields(logrus.Fields{
				"element":   sym,
				"surrogate": mt.Surrogate,
				"quality":   quality[i],
			}).Debug(mt.Reason)
		}
	}
	log.WithFields(logrus.Fields{
		"self":   counts["self"],
		"good":   counts[GoodMatch.String()],
		"decent": counts[DecentMatch.String()],
		"poor":   counts[PoorMatch.String()],
	}).Info("matched surrogates")

	df := t.df.Mutate(series.New(sur, series.String, "Surrogate")).
		Mutate(series.New(quality, series.String, "Match_Quality"))
	if df.Err != nil {
		return nil, fmt.Errorf("saltchem: problem updating periodic table: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return nil, fmt.Errorf("saltchem: problem writing periodic table: %w", err)
	}
	return matches, nil
}
