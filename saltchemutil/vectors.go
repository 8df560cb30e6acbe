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
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/ondrejch/saltchem"
	"github.com/sirupsen/logrus"
)

// create writes the output of write to a new file at path.
func create(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saltchem: problem creating output file: %v", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Nuclides aggregates the isotope atom densities in the nuclide vector
// file nuclideFile into elements and writes the resulting element table
// to outputFile. If include is not empty, only the listed elements are
// written.
func Nuclides(nuclideFile string, include []string, outputFile string) error {
	v, err := saltchem.LoadNuclideVector(nuclideFile)
	if err != nil {
		return err
	}
	t, err := saltchem.ProcessNuclides(v, include, logrus.StandardLogger())
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"timesteps": len(t.Vector),
		"file":      outputFile,
	}).Info("writing element vector")
	return create(outputFile, t.Write)
}

// CandidatesFromCSV builds a surrogate candidate configuration from the
// periodic table in csvFile and writes it as JSON to outputFile.
func CandidatesFromCSV(csvFile, outputFile string) error {
	f, err := os.Open(csvFile)
	if err != nil {
		return fmt.Errorf("saltchem: problem opening periodic table: %v", err)
	}
	defer f.Close()
	c, err := saltchem.CandidatesFromCSV(f)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"surrogates": len(c),
		"file":       outputFile,
	}).Info("writing surrogate candidates")
	return create(outputFile, c.Write)
}

// MatchCandidates chooses a surrogate for each element of the periodic
// table in csvFile that is not its own surrogate, writes the completed
// table to matchedFile, and builds the candidate configuration from it as
// CandidatesFromCSV does.
func MatchCandidates(csvFile, matchedFile, outputFile string) error {
	f, err := os.Open(csvFile)
	if err != nil {
		return fmt.Errorf("saltchem: problem opening periodic table: %v", err)
	}
	defer f.Close()
	matched := new(bytes.Buffer)
	if _, err := saltchem.MatchSurrogates(f, matched, logrus.StandardLogger()); err != nil {
		return err
	}
	if err := ioutil.WriteFile(matchedFile, matched.Bytes(), 0644); err != nil {
		return fmt.Errorf("saltchem: problem writing matched periodic table: %v", err)
	}
	c, err := saltchem.CandidatesFromCSV(matched)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"surrogates": len(c),
		"matched":    matchedFile,
		"file":       outputFile,
	}).Info("writing surrogate candidates")
	return create(outputFile, c.Write)
}

// Surrogates aggregates the element table in elementFile onto the
// surrogates configured in candidateFile and writes the surrogate table
// to outputFile.
func Surrogates(elementFile, candidateFile, outputFile string) error {
	elements, err := saltchem.LoadTable(elementFile)
	if err != nil {
		return err
	}
	cand, err := saltchem.LoadCandidates(candidateFile)
	if err != nil {
		return err
	}
	t := saltchem.BuildSurrogates(elements, cand, logrus.StandardLogger())
	logrus.WithFields(logrus.Fields{
		"timesteps":  len(t.Vector),
		"surrogates": len(cand),
		"file":       outputFile,
	}).Info("writing surrogate table")
	return create(outputFile, t.Write)
}
