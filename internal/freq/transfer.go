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

package freq

import (
	"math"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/pkg/errors"
)

// Builds the P x Q transfer function of given family and kind, centered at (P/2, Q/2).
// Lowpass and highpass filters are centered on the origin; only notch filters use the offsets.
func Build(rows, cols int, family Family, kind Kind, p Params) ([]float64, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "filter shape %dx%d", rows, cols)
	}
	if err := p.Validate(family, kind); err != nil {
		return nil, err
	}
	switch family {
	case Lowpass, Highpass:
		centered := p
		centered.UK, centered.VK = 0, 0
		if family == Lowpass {
			return LowpassFilter(rows, cols, kind, centered), nil
		}
		return HighpassFilter(rows, cols, kind, centered), nil
	case Bandreject:
		return BandrejectFilter(rows, cols, kind, p), nil
	case Bandpass:
		return BandpassFilter(rows, cols, kind, p), nil
	case NotchReject:
		return NotchRejectFilter(rows, cols, kind, p), nil
	case NotchPass:
		return NotchPassFilter(rows, cols, kind, p), nil
	}
	return nil, errors.Wrapf(gray.ErrInvalidParameter, "unknown filter family %d", int(family))
}

// Distance of grid point (u,v) from the center (rows/2, cols/2), shifted by (uk,vk)
func distance(u, v, rows, cols int, uk, vk float64) float64 {
	du := float64(u-rows/2) + uk
	dv := float64(v-cols/2) + vk
	return math.Sqrt(du*du + dv*dv)
}

// Evaluates f at every grid point of a rows x cols transfer function, passing the distance from the
// center shifted by (uk,vk)
func evaluate(rows, cols int, uk, vk float64, f func(d float64) float64) []float64 {
	h := make([]float64, rows*cols)
	for u := 0; u < rows; u++ {
		for v := 0; v < cols; v++ {
			h[u*cols+v] = f(distance(u, v, rows, cols, uk, vk))
		}
	}
	return h
}

// Returns 1-h element-wise, in place
func complement(h []float64) []float64 {
	for i, v := range h {
		h[i] = 1 - v
	}
	return h
}

// Builds a lowpass transfer function centered at (rows/2-uk, cols/2-vk). Parameters are not validated
func LowpassFilter(rows, cols int, kind Kind, p Params) []float64 {
	d0 := p.D0
	switch kind {
	case Ideal:
		return evaluate(rows, cols, p.UK, p.VK, func(d float64) float64 {
			if d <= d0 {
				return 1
			}
			return 0
		})
	case Butterworth:
		return evaluate(rows, cols, p.UK, p.VK, func(d float64) float64 {
			return 1 / (1 + math.Pow(d/d0, 2*p.N))
		})
	case Gaussian:
		return evaluate(rows, cols, p.UK, p.VK, func(d float64) float64 {
			return math.Exp(-d * d / (2 * d0 * d0))
		})
	}
	return nil
}

// Builds a highpass transfer function, the complement of the lowpass with the same parameters
func HighpassFilter(rows, cols int, kind Kind, p Params) []float64 {
	return complement(LowpassFilter(rows, cols, kind, p))
}

// Builds a bandreject transfer function around the origin. Notch offsets are ignored
func BandrejectFilter(rows, cols int, kind Kind, p Params) []float64 {
	d0, w := p.D0, p.Width
	switch kind {
	case Ideal:
		return evaluate(rows, cols, 0, 0, func(d float64) float64 {
			if d0-w/2 <= d && d <= d0+w/2 {
				return 0
			}
			return 1
		})
	case Butterworth:
		return evaluate(rows, cols, 0, 0, func(d float64) float64 {
			if d == d0 {
				return 0
			}
			ratio := d * w / (d*d - d0*d0)
			return 1 / (1 + math.Pow(ratio*ratio, p.N))
		})
	case Gaussian:
		return evaluate(rows, cols, 0, 0, func(d float64) float64 {
			if d == 0 {
				return 1
			}
			ratio := (d*d - d0*d0) / (d * w)
			return 1 - math.Exp(-ratio*ratio)
		})
	}
	return nil
}

// Builds a bandpass transfer function, the complement of the bandreject with the same parameters
func BandpassFilter(rows, cols int, kind Kind, p Params) []float64 {
	return complement(BandrejectFilter(rows, cols, kind, p))
}

// Builds a notch reject transfer function for a single notch pair, as the product of the highpass
// filters centered at (uk,vk) and (-uk,-vk) relative to the origin
func NotchRejectFilter(rows, cols int, kind Kind, p Params) []float64 {
	neg := p
	neg.UK, neg.VK = -p.UK, -p.VK
	h := HighpassFilter(rows, cols, kind, neg)
	pos := HighpassFilter(rows, cols, kind, p)
	for i := range h {
		h[i] *= pos[i]
	}
	return h
}

// Builds a notch pass transfer function, the complement of the notch reject with the same parameters
func NotchPassFilter(rows, cols int, kind Kind, p Params) []float64 {
	return complement(NotchRejectFilter(rows, cols, kind, p))
}
