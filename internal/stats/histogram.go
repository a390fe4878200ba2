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

package stats

import (
	"math"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize"
)

// Number of bins of an 8-bit intensity histogram
const IntensityLevels = gray.MaxIntensity + 1

// Calculate histogram of data between min and max into given bins. Values outside [min, max] are ignored
func Histogram(data []float64, min, max float64, bins []int32) {
	for i := range bins {
		bins[i] = 0
	}
	if max <= min || len(bins) == 0 {
		return
	}
	scale := float64(len(bins)-1) / (max - min)
	for _, d := range data {
		if !(d >= min && d <= max) {
			continue
		}
		index := (d - min) * scale
		bins[int(index)]++
	}
}

// Returns the histogram of an image with samples in the 8-bit range. Samples are rounded to the nearest
// intensity level, samples outside [0,255] are ignored
func IntensityHistogram(img *gray.Image) []int32 {
	bins := make([]int32, IntensityLevels)
	for _, d := range img.Data {
		r := math.RoundToEven(d)
		if r >= gray.MinIntensity && r <= gray.MaxIntensity {
			bins[int(r)]++
		}
	}
	return bins
}

// Returns the location and the value of the histogram peak
func GetPeak(bins []int32, min, max float64) (x, y float64) {
	maxIndex, maxValue := -1, int32(math.MinInt32)
	for i, v := range bins {
		if v > maxValue {
			maxIndex, maxValue = i, v
		}
	}

	x = min + (float64(maxIndex)+0.5)*(max-min)/float64(len(bins)-1)
	if maxIndex+1 < len(bins) {
		y = 0.5 * float64(bins[maxIndex]+bins[maxIndex+1])
	} else {
		y = float64(bins[maxIndex])
	}
	return x, y
}

// Calculates the mode and the standard deviation of the given histogram, by fitting a normal distribution.
// Applied to the histogram of a near-uniform region, the squared standard deviation estimates the noise variance.
func GetModeStdDevFromHistogram(bins []int32, min, max float64) (mode, stdDev float64, err error) {
	if len(bins) < 2 || max <= min {
		return -1, -1, errors.Wrapf(gray.ErrInvalidParameter, "histogram with %d bins over [%g,%g]", len(bins), min, max)
	}

	// Take an educated initial guess: the maximum value of the histogram
	peak, peakVal := GetPeak(bins, min, max)
	binWidth := (max - min) / float64(len(bins)-1)

	// Now minimize the distance between the histogram and a normal distribution
	x0 := []float64{peakVal, peak, 5.0 * binWidth}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			alpha, mu, sigma := x[0], x[1], math.Abs(x[2])+1e-12
			sumSqDiff := 0.0

			for i, y := range bins {
				x := min + (float64(i)+0.5)*binWidth

				xmusig := (x - mu) / sigma
				yPredict := alpha * math.Exp(-0.5*xmusig*xmusig)

				diff := float64(y) - yPredict
				sumSqDiff += diff * diff
			}
			variance := sumSqDiff / float64(len(bins))
			return math.Sqrt(variance)
		},
	}
	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil {
		return -1, -1, err
	}
	return result.X[1], math.Abs(result.X[2]), nil
}
