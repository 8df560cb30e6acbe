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
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ondrejch/saltchem"
	"github.com/ondrejch/saltchem/report"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
)

// slug turns a table or couple name into a file name stem.
func slug(name string) string {
	r := strings.NewReplacer("/", "_", "+", "", " ", "_", ":", "_")
	return strings.ToLower(r.Replace(name))
}

func writeCSV(dir string, t *report.Table) error {
	path := filepath.Join(dir, slug(t.Name)+".csv")
	return create(path, func(w io.Writer) error { return report.WriteCSV(w, t) })
}

// writePlot saves p to dir/<name>.png. A plot that could not be made is
// logged and skipped.
func writePlot(dir, name string, p *plot.Plot, err error) error {
	if err != nil {
		logrus.WithField("plot", name).Warnf("skipping plot: %v", err)
		return nil
	}
	return report.SavePNG(filepath.Join(dir, name+".png"), p)
}

// Redox computes the UF3/UF4 and Cr2+/Cr3+ ratios of every timestep in
// the condensed report in condensedFile and writes CSV tables, a JSON
// summary, plots and an XLSX workbook to reportDir. derived maps names of
// additional columns of the combined redox table to expressions of its
// existing columns.
func Redox(condensedFile, reportDir, saltPhase string, derived map[string]string) error {
	cond, err := saltchem.LoadCondensed(condensedFile)
	if err != nil {
		return err
	}
	states := cond.States()
	if len(states) == 0 {
		return fmt.Errorf("saltchem: no solver states in %s", condensedFile)
	}
	calc := saltchem.NewRedoxCalculator()
	if saltPhase != "" {
		calc.SaltPhase = saltPhase
	}
	couples := []saltchem.RedoxCouple{saltchem.UraniumCouple, saltchem.ChromiumCouple}
	var series []*saltchem.RatioSeries
	var summaries []*saltchem.RatioSummary
	tables := []*report.Table{}
	for _, c := range couples {
		s := calc.Series(states, c)
		series = append(series, s)
		sum := s.Summarize()
		summaries = append(summaries, sum)
		logrus.WithFields(logrus.Fields{
			"couple":      c.Name,
			"normal":      sum.NormalTimesteps,
			"problematic": sum.ProblematicTimesteps,
		}).Info("computed redox ratios")

		t := report.RatioTable(s)
		tables = append(tables, t)
		if err := writeCSV(reportDir, t); err != nil {
			return err
		}
		p, err := report.RatioPlot(s)
		if err := writePlot(reportDir, slug(t.Name), p, err); err != nil {
			return err
		}
	}

	all := report.RedoxTable(series...)
	if err := all.Derive(derived); err != nil {
		return err
	}
	if err := writeCSV(reportDir, all); err != nil {
		return err
	}
	p, err := report.RedoxPlot(series...)
	if err := writePlot(reportDir, "redox", p, err); err != nil {
		return err
	}
	err = create(filepath.Join(reportDir, "redox_summary.json"), func(w io.Writer) error {
		return report.WriteJSON(w, summaries)
	})
	if err != nil {
		return err
	}
	tables = append(tables, all)
	return report.WriteXLSX(filepath.Join(reportDir, "redox.xlsx"), tables...)
}

// Phases writes the Gibbs energy, phase presence and phase amount tables
// and plots of the condensed report in condensedFile to reportDir. Phase
// distribution tables and plots are written for each phase kind, and
// cation composition tables and plots for each solution phase whose name
// starts with saltPhase.
func Phases(condensedFile, reportDir, saltPhase string, cl *saltchem.Classifier) error {
	cond, err := saltchem.LoadCondensed(condensedFile)
	if err != nil {
		return err
	}
	states := cond.States()
	if len(states) == 0 {
		return fmt.Errorf("saltchem: no solver states in %s", condensedFile)
	}

	g := saltchem.Gibbs(states)
	if slope, r2, err := g.Trend(); err == nil {
		logrus.WithFields(logrus.Fields{
			"slope": slope,
			"r2":    r2,
		}).Info("Gibbs energy trend")
	}
	gt := report.GibbsTable(g)
	pt := saltchem.Phases(states)
	presence := report.PresenceTable(pt)
	moles := report.MoleTable(pt)
	tables := []*report.Table{gt, presence, moles}
	for _, t := range tables {
		if err := writeCSV(reportDir, t); err != nil {
			return err
		}
	}
	p, err := report.GibbsPlot(g, false)
	if err := writePlot(reportDir, "gibbs_energy", p, err); err != nil {
		return err
	}
	p, err = report.GibbsPlot(g, true)
	if err := writePlot(reportDir, "gibbs_energy_log", p, err); err != nil {
		return err
	}
	p, err = report.PhaseMolesPlot(pt)
	if err := writePlot(reportDir, "phase_moles", p, err); err != nil {
		return err
	}

	split, err := cl.Split(cond)
	if err != nil {
		return err
	}
	for _, kind := range []saltchem.PhaseKind{saltchem.Salt, saltchem.Gas, saltchem.Solid} {
		t := report.PhasePercentTable(string(kind)+" phases", split[kind])
		if len(t.Columns) == 0 {
			logrus.WithField("kind", kind).Info("no phases of kind present")
			continue
		}
		tables = append(tables, t)
		if err := writeCSV(reportDir, t); err != nil {
			return err
		}
		p, err := report.PhasePercentPlot(t)
		if err := writePlot(reportDir, slug(t.Name), p, err); err != nil {
			return err
		}
	}

	for _, phase := range saltchem.CationPhases(states, saltPhase) {
		t := report.CationTable(states, phase)
		logrus.WithFields(logrus.Fields{
			"phase":     phase,
			"cations":   len(t.Columns),
			"timesteps": len(t.Timesteps),
		}).Info("cation composition")
		tables = append(tables, t)
		if err := writeCSV(reportDir, t); err != nil {
			return err
		}
		p, err := report.CationPlot(t, false)
		if err := writePlot(reportDir, slug(t.Name), p, err); err != nil {
			return err
		}
		p, err = report.CationPlot(t, true)
		if err := writePlot(reportDir, slug(t.Name)+"_log", p, err); err != nil {
			return err
		}
	}
	return report.WriteXLSX(filepath.Join(reportDir, "phases.xlsx"), tables...)
}
