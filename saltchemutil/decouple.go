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
	"github.com/ondrejch/saltchem"
	"github.com/sirupsen/logrus"
)

// Decouple redistributes the surrogate quantities of the phases of the
// given kind in phaseFile onto real elements, using the contributions in
// surrogateFile, and writes the decoupled phase file to outputFile.
func Decouple(kind saltchem.PhaseKind, p saltchem.Precision, phaseFile, surrogateFile, outputFile string) error {
	phases, err := saltchem.LoadPhaseFile(phaseFile)
	if err != nil {
		return err
	}
	t, err := saltchem.LoadTable(surrogateFile)
	if err != nil {
		return err
	}
	d := saltchem.NewDecoupler(t, p)
	out, stats, err := d.Decouple(kind, phases)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"kind":      kind,
		"decoupled": stats.Decoupled,
		"file":      outputFile,
	}).Info("writing decoupled phases")
	return create(outputFile, out.Write)
}

// NuclideSalt redistributes the element ion quantities of the decoupled
// salt phases in saltFile onto isotopes, using the isotope contributions
// in isotopeFile, and writes the result to outputFile.
func NuclideSalt(p saltchem.Precision, saltFile, isotopeFile, outputFile string) error {
	salt, err := saltchem.LoadPhaseFile(saltFile)
	if err != nil {
		return err
	}
	iso, err := saltchem.LoadTable(isotopeFile)
	if err != nil {
		return err
	}
	d := saltchem.NewDecoupler(nil, p)
	out, stats := d.DecoupleNuclides(salt, iso)
	logrus.WithFields(logrus.Fields{
		"timesteps": len(out),
		"processed": stats.Processed,
		"file":      outputFile,
	}).Info("writing salt nuclides")
	return create(outputFile, out.Write)
}
