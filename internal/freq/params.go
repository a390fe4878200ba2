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

// Numeric parameters of a transfer function. Which fields apply depends on family and kind
type Params struct {
	D0    float64 `json:"d0"`    // Cutoff frequency, radius in the padded frequency grid
	N     float64 `json:"n"`     // Order, Butterworth only
	Width float64 `json:"width"` // Width of the band, band families only
	UK    float64 `json:"uk"`    // Row offset of the notch pair, notch families only
	VK    float64 `json:"vk"`    // Column offset of the notch pair, notch families only
}

// Returns the default parameters: cutoff 160, order 2, band width 20, no notch offset
func DefaultParams() Params {
	return Params{D0: 160, N: 2, Width: 20}
}

// Checks the parameters needed by the given family and kind
func (p Params) Validate(family Family, kind Kind) error {
	if !family.valid() {
		return errors.Wrapf(gray.ErrInvalidParameter, "unknown filter family %d", int(family))
	}
	if !kind.valid() {
		return errors.Wrapf(gray.ErrInvalidParameter, "unknown filter kind %d", int(kind))
	}
	if !(p.D0 > 0) || math.IsInf(p.D0, 1) {
		return errors.Wrapf(gray.ErrInvalidParameter, "cutoff frequency %g must be positive and finite", p.D0)
	}
	if kind == Butterworth && (!(p.N > 0) || math.IsInf(p.N, 1)) {
		return errors.Wrapf(gray.ErrInvalidParameter, "butterworth order %g must be positive and finite", p.N)
	}
	if family.IsBand() && (!(p.Width > 0) || math.IsInf(p.Width, 1)) {
		return errors.Wrapf(gray.ErrInvalidParameter, "band width %g must be positive and finite", p.Width)
	}
	if family.IsNotch() && (math.IsNaN(p.UK) || math.IsNaN(p.VK) || math.IsInf(p.UK, 0) || math.IsInf(p.VK, 0)) {
		return errors.Wrapf(gray.ErrInvalidParameter, "notch offset (%g,%g) must be finite", p.UK, p.VK)
	}
	return nil
}
