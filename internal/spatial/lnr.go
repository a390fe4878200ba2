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

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Applies the adaptive local noise reduction filter with an s x s window. Each pixel g becomes
// g - r*(g - mean_l) with r = min(1, varG/var_l), where mean_l and var_l are the local mean and
// population variance of the truncated window. varG is the overall noise variance, see stats.RegionVariance.
func AdaptiveLNRFilter(img *gray.Image, varG float64, s int) (*gray.Image, error) {
	if err := checkWindowSize(s, true); err != nil {
		return nil, err
	}
	if !(varG >= 0) || math.IsInf(varG, 1) {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "noise variance %g must be finite and non-negative", varG)
	}
	return applyWindowFunction(img, s, func(window []float64, g float64) float64 {
		meanL, varL := stat.PopMeanVariance(window, nil)
		return g - lnrRatio(varG, varL)*(g-meanL)
	}), nil
}

// Returns min(1, varG/varL). A flat window gives 1 if there is noise, and 0 otherwise
func lnrRatio(varG, varL float64) float64 {
	if varL <= 0 {
		if varG > 0 {
			return 1
		}
		return 0
	}
	return math.Min(1, varG/varL)
}
