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
)

// Returns the histogram equalization mapping s_k = round(255 * cdf_k / (M*N)) for the given histogram
func EqualizationMap(bins []int32) []uint8 {
	total := int64(0)
	for _, b := range bins {
		total += int64(b)
	}
	mapping := make([]uint8, len(bins))
	if total == 0 {
		return mapping
	}
	cdf := int64(0)
	for k, b := range bins {
		cdf += int64(b)
		s := math.RoundToEven(gray.MaxIntensity * float64(cdf) / float64(total))
		mapping[k] = uint8(math.Min(s, gray.MaxIntensity))
	}
	return mapping
}

// Equalizes the histogram of an image with samples in the 8-bit range.
// Samples are rounded and clamped to [0,255] before lookup
func Equalize(img *gray.Image) *gray.Image {
	clamped := img.Clone()
	clamped.ApplyClamp(gray.MinIntensity, gray.MaxIntensity)
	mapping := EqualizationMap(IntensityHistogram(clamped))
	for i, d := range clamped.Data {
		clamped.Data[i] = float64(mapping[int(math.RoundToEven(d))])
	}
	return clamped
}
