// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package stats computes image statistics: basic moments, intensity histograms,
// histogram equalization and noise variance estimates.
package stats

import (
	"fmt"
	"math"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistics on data arrays
type Stats struct {
	Min      float64 // Minimum
	Max      float64 // Maximum
	Mean     float64 // Mean (average)
	Variance float64 // Population variance, normalized by N like numpy.var
	StdDev   float64 // Standard deviation (norm 2, sigma)
}

// Calculate basic statistics for a data array. Empty arrays yield NaN moments
func NewStats(data []float64) *Stats {
	if len(data) == 0 {
		nan := math.NaN()
		return &Stats{nan, nan, nan, nan, nan}
	}
	mean, variance := stat.PopMeanVariance(data, nil)
	return &Stats{
		Min:      floats.Min(data),
		Max:      floats.Max(data),
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
	}
}

// Pretty print basic stats to string
func (s *Stats) String() string {
	return fmt.Sprintf("Min %.6g Max %.6g Mean %.6g StdDev %.6g Variance %.6g",
		s.Min, s.Max, s.Mean, s.StdDev, s.Variance)
}

// Pretty print basic stats to CSV header
func (s *Stats) ToCSVHeader() string {
	return "Min,Max,Mean,StdDev,Variance"
}

// Pretty print basic stats to CSV line item
func (s *Stats) ToCSVLine() string {
	return fmt.Sprintf("%.6g,%.6g,%.6g,%.6g,%.6g", s.Min, s.Max, s.Mean, s.StdDev, s.Variance)
}

// Estimates the overall noise variance of an image from the rectangle [x0,x1) x [y0,y1),
// which should be of near-uniform intensity. The result feeds the adaptive local noise reduction filter.
func RegionVariance(img *gray.Image, x0, y0, x1, y1 int) (float64, error) {
	sub, err := img.SubImage(x0, y0, x1, y1)
	if err != nil {
		return 0, errors.Wrap(err, "noise region")
	}
	_, variance := stat.PopMeanVariance(sub.Data, nil)
	return variance, nil
}
