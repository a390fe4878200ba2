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

package spatial

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mlnoga/dipfilter/internal/gray"
)

// Acceptable area under the gaussian curve left of a truncated kernel
const gaussianAcceptOut = 0.01

// Largest supported standard deviation. The 2D kernel of this sigma has about 1.4 million entries
const MaxGaussianSigma = 256

func checkGaussianSigma(sigma float64) error {
	if !(sigma > 0) || math.IsInf(sigma, 0) || sigma > MaxGaussianSigma {
		return errors.Wrapf(gray.ErrInvalidParameter, "gaussian sigma %g must be in (0,%d]", sigma, MaxGaussianSigma)
	}
	return nil
}

// Returns the largest radius for which the area left of the outermost kernel cell is still
// at least gaussianAcceptOut, or zero
func gaussianRadius(dist distuv.Normal) int {
	edge := -dist.Quantile(gaussianAcceptOut) - 0.5
	if edge < 0 {
		return 0
	}
	return int(math.Floor(edge))
}

// Returns the normalized weights of kernel cells at distance 0..radius from the center, integrating the
// distribution over each unit cell. Integrates on the left flank, where the CDF is small and exact
func gaussianHalfKernel(dist distuv.Normal, radius int) []float64 {
	half := make([]float64, radius+1)
	sum := 0.0
	for d := range half {
		w := dist.CDF(0.5-float64(d)) - dist.CDF(-0.5-float64(d))
		half[d] = w
		if d == 0 {
			sum += w
		} else {
			sum += 2 * w
		}
	}
	for d := range half {
		half[d] /= sum
	}
	return half
}

// Generates a normalized 1D gaussian kernel for the given sigma, truncated where the area outside drops below 1%
func GaussianKernel1D(sigma float64) ([]float64, error) {
	if err := checkGaussianSigma(sigma); err != nil {
		return nil, err
	}
	dist := distuv.Normal{Mu: 0, Sigma: sigma}
	radius := gaussianRadius(dist)
	half := gaussianHalfKernel(dist, radius)
	kernel := make([]float64, 2*radius+1)
	for d, w := range half {
		kernel[radius-d], kernel[radius+d] = w, w
	}
	return kernel, nil
}

// Generates a square 2D gaussian kernel as the outer product of the 1D kernel with itself
func GaussianKernel(sigma float64) (*Kernel, error) {
	k1, err := GaussianKernel1D(sigma)
	if err != nil {
		return nil, err
	}
	s := len(k1)
	data := make([]float64, s*s)
	for r, wr := range k1 {
		for c, wc := range k1 {
			data[r*s+c] = wr * wc
		}
	}
	return &Kernel{Width: s, Height: s, Data: data}, nil
}
