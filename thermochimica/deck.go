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

// Package thermochimica writes input decks for the Thermochimica
// equilibrium solver, runs the solver over many timesteps and loads its
// JSON output.
package thermochimica

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"

	"github.com/ondrejch/saltchem"
)

// Default settings.
const (
	DefaultName         = "ThEIRNE_Cycle"
	DefaultTemperature  = "900"
	DefaultPressure     = "1"
	DefaultDataFile     = "~/thermochimica/data/MSTDB-TC_V3.1_Fluorides_No_Func.dat"
	DefaultBinary       = "~/thermochimica/bin/InputScriptMode"
	DefaultSolverOutput = "~/thermochimica/outputs/thermoout.json"
	DefaultDirTemplate  = "timestep_{timestep}"
)

// Config holds the settings shared by all decks of a run.
type Config struct {
	// Name is the base name of the deck files.
	Name string

	// Temperature [K] is a single value or a "start:stop:step" range.
	Temperature string

	// Pressure [atm].
	Pressure string

	// DataFile is the thermodynamic database.
	DataFile string

	// Binary is the solver executable.
	Binary string

	// SolverOutput is where the solver writes its JSON output. If empty,
	// the solver is expected to write it next to the deck.
	SolverOutput string

	// Scale multiplies element mole percents to obtain deck amounts
	// [moles] as Scale × mole percent / 100.
	Scale float64

	// DirTemplate names the directory of each timestep; "{timestep}" is
	// replaced by the timestep.
	DirTemplate string
}

// DefaultConfig returns the default settings with home directories
// expanded.
func DefaultConfig() *Config {
	return &Config{
		Name:         DefaultName,
		Temperature:  DefaultTemperature,
		Pressure:     DefaultPressure,
		DataFile:     ExpandPath(DefaultDataFile),
		Binary:       ExpandPath(DefaultBinary),
		SolverOutput: ExpandPath(DefaultSolverOutput),
		Scale:        1,
		DirTemplate:  DefaultDirTemplate,
	}
}

// ExpandPath expands environment variables and a leading "~" in path.
func ExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}

// Validate checks the temperature, pressure and scale settings.
func (c *Config) Validate() error {
	if err := ValidateTemperature(c.Temperature); err != nil {
		return err
	}
	if p, err := strconv.ParseFloat(strings.TrimSpace(c.Pressure), 64); err != nil || p <= 0 {
		return fmt.Errorf("thermochimica: invalid pressure %q", c.Pressure)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("thermochimica: scale must be positive, not %g", c.Scale)
	}
	if !strings.Contains(c.DirTemplate, "{timestep}") {
		return fmt.Errorf("thermochimica: directory template %q does not contain {timestep}", c.DirTemplate)
	}
	return nil
}

// ValidateTemperature checks that t is a positive temperature or a
// "start:stop:step" range of them.
func ValidateTemperature(t string) error {
	parts := strings.Split(strings.TrimSpace(t), ":")
	if len(parts) != 1 && len(parts) != 3 {
		return fmt.Errorf("thermochimica: invalid temperature %q", t)
	}
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("thermochimica: invalid temperature %q", t)
		}
	}
	return nil
}

// TimestepDir returns the directory of timestep ts under root.
func (c *Config) TimestepDir(root string, ts saltchem.Timestep) string {
	return filepath.Join(root, strings.Replace(c.DirTemplate, "{timestep}", ts.String(), -1))
}

// DeckPath returns the path of the deck of timestep ts under root.
func (c *Config) DeckPath(root string, ts saltchem.Timestep) string {
	return filepath.Join(c.TimestepDir(root, ts), fmt.Sprintf("%s_t%v.ti", c.Name, ts))
}

// OutputPath returns the path the output of deck is moved to.
func OutputPath(deck string) string {
	return strings.TrimSuffix(deck, filepath.Ext(deck)) + ".json"
}

// Mass is the amount of one element in a deck.
type Mass struct {
	Z       int
	Element string
	Moles   float64
}

// Deck is one solver input.
type Deck struct {
	Header      string
	Temperature string
	Pressure    string
	DataFile    string
	Masses      []Mass
}

var deckTemplate = template.Must(template.New("deck").Parse(`! {{.Header}}

! Initialize variables:
pressure          = {{.Pressure}}
temperature       = {{.Temperature}}
{{range .Masses}}mass({{.Z}})           = {{.Moles}}     !{{.Element}}
{{end}}temperature unit  = K
pressure unit     = atm
mass unit         = moles
data file         = {{.DataFile}}
step together     = .FALSE.

! Specify output and debug modes:
print mode        = 1
debug mode        = .FALSE.
reinit            = .TRUE.

! Additional Settings:
heat capacity     = .FALSE.
write json        = .TRUE.
reinitialization  = .FALSE.
fuzzy             = .FALSE.
gibbs min         = .FALSE.
`))

// Write writes the deck text to w.
func (d *Deck) Write(w io.Writer) error {
	if err := deckTemplate.Execute(w, d); err != nil {
		return fmt.Errorf("thermochimica: problem writing deck: %w", err)
	}
	return nil
}

// NewDeck returns a deck holding the given element amounts [moles], in
// order of atomic number. Elements that are unknown or have a
// non-positive amount are left out and returned in skipped.
func (c *Config) NewDeck(header string, moles map[string]float64) (d *Deck, skipped []string) {
	d = &Deck{
		Header:      header,
		Temperature: c.Temperature,
		Pressure:    c.Pressure,
		DataFile:    c.DataFile,
	}
	for el, m := range moles {
		z, err := saltchem.AtomicNumber(el)
		if err != nil || m <= 0 {
			skipped = append(skipped, el)
			continue
		}
		d.Masses = append(d.Masses, Mass{Z: z, Element: saltchem.Key(el), Moles: m})
	}
	sort.Slice(d.Masses, func(i, j int) bool { return d.Masses[i].Z < d.Masses[j].Z })
	sort.Strings(skipped)
	return d, skipped
}

func writeDeckFile(path string, d *Deck) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("thermochimica: problem creating deck directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("thermochimica: problem creating deck: %w", err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteDecks writes one deck per timestep of the surrogate vector in t to
// the timestep directories under root and returns their paths.
func (c *Config) WriteDecks(root string, t *saltchem.Table, log logrus.FieldLogger) (map[saltchem.Timestep]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	o := make(map[saltchem.Timestep]string, len(t.Vector))
	for _, ts := range saltchem.SortedTimesteps(t.Vector) {
		moles := make(map[string]float64, len(t.Vector[ts]))
		for el, v := range t.Vector[ts] {
			moles[el] = v.MolePercent * c.Scale / 100
		}
		header := fmt.Sprintf("Surrogate Vector Calculation for Time Step %v (Scale Factor: %g)", ts, c.Scale)
		d, skipped := c.NewDeck(header, moles)
		if len(skipped) > 0 {
			log.WithFields(logrus.Fields{
				"timestep": ts,
				"elements": skipped,
			}).Debug("elements left out of deck")
		}
		if len(d.Masses) == 0 {
			log.WithField("timestep", ts).Warn("no elements for deck; skipping timestep")
			continue
		}
		path := c.DeckPath(root, ts)
		if err := writeDeckFile(path, d); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"timestep": ts,
			"deck":     path,
		}).Info("wrote deck")
		o[ts] = path
	}
	return o, nil
}

// WriteCompositionDeck writes a deck for a single composition, whose
// amounts are scaled by c.Scale, to dir/<name>.ti and returns its path.
func (c *Config) WriteCompositionDeck(dir, name string, comp saltchem.Composition) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	moles := make(map[string]float64, len(comp))
	for el, v := range comp {
		if v > 0 {
			moles[el] = v * c.Scale
		}
	}
	d, skipped := c.NewDeck(name, moles)
	if len(skipped) > 0 {
		return "", fmt.Errorf("thermochimica: composition has unknown elements %v", skipped)
	}
	path := filepath.Join(dir, name+".ti")
	return path, writeDeckFile(path, d)
}
