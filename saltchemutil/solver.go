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

package saltchemutil

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ondrejch/saltchem"
	"github.com/ondrejch/saltchem/thermochimica"
	"github.com/sirupsen/logrus"
)

// phaseFileNames are the names of the phase files written by Condense.
var phaseFileNames = map[saltchem.PhaseKind]string{
	saltchem.Salt:  "salt_phases.json",
	saltchem.Gas:   "gas_phases.json",
	saltchem.Solid: "solid_phases.json",
}

// runDecks runs the solver on decks and returns an error summarizing the
// failed timesteps, if any.
func runDecks(ctx context.Context, c *thermochimica.Config, decks map[saltchem.Timestep]string, workers int, wait time.Duration) error {
	r := thermochimica.NewRunner(c)
	r.Wait = wait
	start := time.Now()
	errs := r.RunAll(ctx, decks, workers)
	logrus.WithFields(logrus.Fields{
		"decks":  len(decks),
		"failed": len(errs),
		"time":   time.Since(start).Round(time.Millisecond),
	}).Info("solver runs finished")
	if len(errs) > 0 {
		return fmt.Errorf("saltchem: solver failed for %d of %d timesteps (timesteps %v)",
			len(errs), len(decks), saltchem.SortedTimesteps(errs))
	}
	return nil
}

// Decks writes a solver deck for every timestep of the surrogate table in
// surrogateFile to the timestep directories under outputDir. If run is
// true, the solver is then run on all decks using the given number of
// workers.
func Decks(ctx context.Context, c *thermochimica.Config, surrogateFile, outputDir string, run bool, workers int, wait time.Duration) error {
	t, err := saltchem.LoadTable(surrogateFile)
	if err != nil {
		return err
	}
	decks, err := c.WriteDecks(outputDir, t, logrus.StandardLogger())
	if err != nil {
		return err
	}
	if len(decks) == 0 {
		return fmt.Errorf("saltchem: no decks were written")
	}
	if !run {
		return nil
	}
	return runDecks(ctx, c, decks, workers, wait)
}

// CompositionDeck writes a deck named name for the composition comp to
// outputDir and, if run is true, runs the solver on it.
func CompositionDeck(ctx context.Context, c *thermochimica.Config, comp saltchem.Composition, outputDir, name string, run bool, wait time.Duration) error {
	path, err := c.WriteCompositionDeck(outputDir, name, comp)
	if err != nil {
		return err
	}
	logrus.WithField("deck", path).Info("wrote composition deck")
	if !run {
		return nil
	}
	r := thermochimica.NewRunner(c)
	r.Wait = wait
	out, err := r.Run(ctx, path)
	if err != nil {
		return err
	}
	logrus.WithField("output", out).Info("solver run complete")
	return nil
}

// Condense collects the solver output of every timestep directory under
// outputDir into a condensed report written to condensedFile. If phaseDir
// is not empty, the phases present at each timestep are also split into
// salt, gas and solid phase files in phaseDir.
func Condense(ctx context.Context, c *thermochimica.Config, outputDir, condensedFile, phaseDir string, cl *saltchem.Classifier) error {
	cond, err := thermochimica.NewLoader(c).Load(ctx, outputDir)
	if err != nil {
		return err
	}
	if len(cond) == 0 {
		return fmt.Errorf("saltchem: no timestep directories found in %s", outputDir)
	}
	if err := create(condensedFile, cond.Write); err != nil {
		return err
	}
	logrus.WithField("file", condensedFile).Info("wrote condensed report")
	if phaseDir == "" {
		return nil
	}
	split, err := cl.Split(cond)
	if err != nil {
		return err
	}
	for kind, f := range split {
		path := filepath.Join(phaseDir, phaseFileNames[kind])
		if err := create(path, f.Write); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"kind":   kind,
			"phases": len(f.Names()),
			"file":   path,
		}).Info("wrote phase file")
	}
	return nil
}
