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

// Package formula parses chemical formula and ion strings such as
// "BeF2", "U[3+]" or "U[CN=VI]" and substitutes one element for another
// inside them.
//
// Parsing is permissive: input that does not look like a formula yields
// whatever tokens can be matched, and substitutions that find nothing to
// replace return the original string.
package formula

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/golang/groupcache/lru"
)

// tokenRE matches one element token and its optional count.
var tokenRE = regexp.MustCompile(`([A-Z][a-z]*)(\d*)`)

// ionElementRE matches the leading letters of an ion string.
var ionElementRE = regexp.MustCompile(`^([A-Za-z]+)`)

// CacheSize is the number of parsed formulas that are kept in memory.
const CacheSize = 4096

var parsed = struct {
	sync.Mutex
	c *lru.Cache
}{c: lru.New(CacheSize)}

// Count is the number of atoms of one element in a formula.
type Count struct {
	Element string
	N       int
}

// Counts holds the element counts of a formula in the order the
// elements first appear.
type Counts []Count

// Map returns the counts keyed by element.
func (c Counts) Map() map[string]int {
	o := make(map[string]int, len(c))
	for _, e := range c {
		o[e.Element] += e.N
	}
	return o
}

// Elements returns the element symbols in order of appearance.
func (c Counts) Elements() []string {
	o := make([]string, len(c))
	for i, e := range c {
		o[i] = e.Element
	}
	return o
}

// Parse returns the element counts of formula f. Counts default to one
// when no digits follow an element, and repeated elements are summed.
func Parse(f string) Counts {
	parsed.Lock()
	if v, ok := parsed.c.Get(f); ok {
		parsed.Unlock()
		return append(Counts(nil), v.(Counts)...)
	}
	parsed.Unlock()

	var o Counts
	index := make(map[string]int)
	for _, m := range tokenRE.FindAllStringSubmatch(f, -1) {
		n := 1
		if m[2] != "" {
			var err error
			n, err = strconv.Atoi(m[2])
			if err != nil {
				// Too many digits; keep the token with a single atom.
				n = 1
			}
		}
		if i, ok := index[m[1]]; ok {
			o[i].N += n
			continue
		}
		index[m[1]] = len(o)
		o = append(o, Count{Element: m[1], N: n})
	}

	parsed.Lock()
	parsed.c.Add(f, o)
	parsed.Unlock()
	return append(Counts(nil), o...)
}

// Substitute replaces every token of element from in formula f with
// element to, keeping each token's count suffix. Element symbols are
// compared case-insensitively and only whole tokens are replaced, so
// substituting "F" leaves "Fe" untouched.
func Substitute(f, from, to string) string {
	idx := tokenRE.FindAllStringSubmatchIndex(f, -1)
	if len(idx) == 0 {
		return f
	}
	var b strings.Builder
	last := 0
	changed := false
	for _, m := range idx {
		el := f[m[2]:m[3]]
		if !strings.EqualFold(el, from) {
			continue
		}
		b.WriteString(f[last:m[2]])
		b.WriteString(to)
		last = m[3]
		changed = true
	}
	if !changed {
		return f
	}
	b.WriteString(f[last:])
	return b.String()
}

// SubstituteIon replaces element from in ion with element to when it is
// followed by a bracketed charge or coordination annotation, or by the
// end of the string. The annotation is kept as-is and a missing closing
// bracket is tolerated.
func SubstituteIon(ion, from, to string) string {
	if from == "" {
		return ion
	}
	re, err := regexp.Compile(`(^|[^A-Za-z])(` + regexp.QuoteMeta(from) + `)(\[[^\]]*\]?|$)`)
	if err != nil {
		return ion
	}
	return re.ReplaceAllString(ion, "${1}"+escapeReplacement(to)+"${3}")
}

// escapeReplacement escapes '$' so that s is inserted literally by
// Regexp.ReplaceAllString.
func escapeReplacement(s string) string {
	return strings.Replace(s, "$", "$$", -1)
}

// IonElement returns the leading letters of ion, which by convention name
// its element, or "" when ion does not start with a letter.
func IonElement(ion string) string {
	m := ionElementRE.FindStringSubmatch(ion)
	if m == nil {
		return ""
	}
	return m[1]
}

// DisplayName returns the form in which a surrogate candidate is written
// into a formula: element symbols (at most two characters) are
// capitalized, and longer names such as isotopes ("li-7") are lowercase.
func DisplayName(name string) string {
	if len(name) > 2 {
		return strings.ToLower(name)
	}
	r := []rune(strings.ToLower(name))
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return string(r)
}
