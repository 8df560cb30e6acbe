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

package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ondrejch/saltchem"
)

// Plot dimensions.
var (
	PlotWidth  = 10 * vg.Inch
	PlotHeight = 6 * vg.Inch
)

func newPlot(title, ylabel string, logY bool) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, fmt.Errorf("report: creating plot: %w", err)
	}
	p.Title.Text = title
	p.X.Label.Text = "Timestep"
	p.Y.Label.Text = ylabel
	if logY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{}
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// points returns the finite points of a series. When logY is true,
// non-positive values are left out as well.
func points(ts []saltchem.Timestep, v []float64, logY bool) plotter.XYs {
	xy := make(plotter.XYs, len(v))
	n := 0
	for i, y := range v {
		if math.IsNaN(y) || math.IsInf(y, 0) || (logY && y <= 0) {
			continue
		}
		xy[n].X = float64(ts[i])
		xy[n].Y = y
		n++
	}
	return xy[:n]
}

// addSeries adds a line with points for each non-empty series. names and
// values are parallel.
func addSeries(p *plot.Plot, ts []saltchem.Timestep, names []string, values [][]float64, logY bool) error {
	var vs []interface{}
	for i, v := range values {
		xy := points(ts, v, logY)
		if len(xy) == 0 {
			continue
		}
		vs = append(vs, names[i], xy)
	}
	if len(vs) == 0 {
		return fmt.Errorf("report: nothing to plot in %q", p.Title.Text)
	}
	if err := plotutil.AddLinePoints(p, vs...); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// RatioPlot plots the defined ratios of s on a logarithmic scale.
func RatioPlot(s *saltchem.RatioSeries) (*plot.Plot, error) {
	p, err := newPlot(fmt.Sprintf("Redox Ratio (%s) vs. Timestep", s.Couple), s.Couple+" Ratio", true)
	if err != nil {
		return nil, err
	}
	ts, v := s.Defined()
	if err := addSeries(p, ts, []string{s.Couple}, [][]float64{v}, true); err != nil {
		return nil, err
	}
	return p, nil
}

// RedoxPlot plots several ratio series together on a logarithmic scale.
func RedoxPlot(series ...*saltchem.RatioSeries) (*plot.Plot, error) {
	p, err := newPlot("Redox Ratios vs. Timestep", "Ratio", true)
	if err != nil {
		return nil, err
	}
	t := RedoxTable(series...)
	names := make([]string, len(series))
	values := make([][]float64, len(series))
	for j, s := range series {
		names[j] = s.Couple
		values[j], _ = t.Column(s.Couple + " Ratio")
	}
	if err := addSeries(p, t.Timesteps, names, values, true); err != nil {
		return nil, err
	}
	return p, nil
}

// GibbsPlot plots the integral Gibbs energy. When logAbs is true the
// absolute value is plotted on a logarithmic scale.
func GibbsPlot(g *saltchem.GibbsSeries, logAbs bool) (*plot.Plot, error) {
	title, label, v := "Integral Gibbs Energy vs. Timestep", "Integral Gibbs Energy [J]", g.Energy
	if logAbs {
		title, label, v = "Absolute Integral Gibbs Energy vs. Timestep", "|Integral Gibbs Energy| [J]", g.Abs()
	}
	p, err := newPlot(title, label, logAbs)
	if err != nil {
		return nil, err
	}
	if err := addSeries(p, g.Timesteps, []string{"Gibbs energy"}, [][]float64{v}, logAbs); err != nil {
		return nil, err
	}
	return p, nil
}

// PhaseMolesPlot plots the moles of each phase on a logarithmic scale.
// Absent phases leave gaps.
func PhaseMolesPlot(t *saltchem.PhaseTable) (*plot.Plot, error) {
	p, err := newPlot("Phase Amounts vs. Timestep", "Moles", true)
	if err != nil {
		return nil, err
	}
	m := MoleTable(t)
	values := make([][]float64, len(m.Columns))
	for j, c := range m.Columns {
		values[j], _ = m.Column(c)
	}
	if err := addSeries(p, m.Timesteps, m.Columns, values, true); err != nil {
		return nil, err
	}
	return p, nil
}

// PhasePercentPlot plots the phase_percent of every phase in a table made
// by PhasePercentTable.
func PhasePercentPlot(t *Table) (*plot.Plot, error) {
	p, err := newPlot("Phase Distribution over Time ("+t.Name+")", "Mole Percentage (%)", false)
	if err != nil {
		return nil, err
	}
	values := make([][]float64, len(t.Columns))
	for j, c := range t.Columns {
		values[j], _ = t.Column(c)
	}
	if err := addSeries(p, t.Timesteps, t.Columns, values, false); err != nil {
		return nil, err
	}
	return p, nil
}

// WritePNG writes p to w as a PNG image.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(PlotWidth, PlotHeight, "png")
	if err != nil {
		return fmt.Errorf("report: rendering plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("report: writing plot: %w", err)
	}
	return nil
}

// SavePNG writes p to a PNG file.
func SavePNG(path string, p *plot.Plot) error {
	if err := p.Save(PlotWidth, PlotHeight, path); err != nil {
		return fmt.Errorf("report: saving plot: %w", err)
	}
	return nil
}

// SignificantCation is the mole percent that a cation must exceed at some
// timestep to be shown in a linear cation plot.
const SignificantCation = 1.0

// CationPlot plots a table made by CationTable. On a linear scale only
// cations above SignificantCation are shown; on a logarithmic scale all
// cations are.
func CationPlot(t *Table, logY bool) (*plot.Plot, error) {
	title := fmt.Sprintf("Cation Composition vs. Timestep (%s)", strings.TrimPrefix(t.Name, cationTablePrefix))
	p, err := newPlot(title, "Cation Mole Percentage (%)", logY)
	if err != nil {
		return nil, err
	}
	var names []string
	var values [][]float64
	for _, c := range t.Columns {
		v, _ := t.Column(c)
		if !logY && (len(v) == 0 || floats.Max(v) <= SignificantCation) {
			continue
		}
		names = append(names, c)
		values = append(values, v)
	}
	if err := addSeries(p, t.Timesteps, names, values, logY); err != nil {
		return nil, err
	}
	return p, nil
}
