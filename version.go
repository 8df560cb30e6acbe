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

// Package saltchem maps molten-salt fuel compositions between the
// isotope basis of a depletion code and the reduced surrogate-element
// basis of the Thermochimica equilibrium solver, and analyzes the solver
// results.
//
// The forward direction aggregates isotopes into elements
// (ProcessNuclides) and elements into surrogates (BuildSurrogates). The
// reverse direction, decoupling, redistributes quantities reported for
// surrogates back onto real elements (Decoupler.Decouple) and isotopes
// (Decoupler.DecoupleNuclides).
package saltchem

// Version gives the version number.
const Version = "0.3.0"
