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
	"math"
	"sort"

	"github.com/GaryBoone/GoStats/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RatioStatistics summarizes the defined ratios of a series.
type RatioStatistics struct {
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Mean          float64 `json:"mean"`
	Median        float64 `json:"median"`
	GeometricMean float64 `json:"geometric_mean"`
	StdDev        float64 `json:"std_dev"` // population standard deviation
	Count         int     `json:"count"`
}

// RatioSummary is the summary written for each redox couple.
type RatioSummary struct {
	Couple               string           `json:"couple"`
	Statistics           *RatioStatistics `json:"statistics,omitempty"`
	NormalTimesteps      int              `json:"normal_timesteps"`
	ProblematicTimesteps int              `json:"problematic_timesteps"`
	Problematic          []Timestep       `json:"problematic,omitempty"`
}

// Summarize computes statistics over the defined ratios of s. Ratios that
// are undefined or not computable are counted as problematic and left
// out of the statistics. Statistics is nil when no ratio is defined.
func (s *RatioSeries) Summarize() *RatioSummary {
	_, v := s.Defined()
	o := &RatioSummary{
		Couple:               s.Couple,
		NormalTimesteps:      len(v),
		ProblematicTimesteps: len(s.Ratios) - len(v),
		Problematic:          s.Problematic(),
	}
	if len(v) == 0 {
		return o
	}
	o.Statistics = ratioStatistics(v)
	return o
}

func ratioStatistics(v []float64) *RatioStatistics {
	positive := make([]float64, len(v))
	for i, x := range v {
		positive[i] = math.Max(x, NearZeroRatio)
	}
	return &RatioStatistics{
		Min:           floats.Min(v),
		Max:           floats.Max(v),
		Mean:          stat.Mean(v, nil),
		Median:        median(v),
		GeometricMean: stat.GeometricMean(positive, nil),
		StdDev:        stats.StatsPopulationStandardDeviation(v),
		Count:         len(v),
	}
}

// median returns the middle value of v, or the mean of the two middle
// values when len(v) is even.
func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 0 {
		return (s[n/2-1] + s[n/2]) / 2
	}
	return s[n/2]
}
