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

package gray

import (
	"math"

	"github.com/pkg/errors"
	"github.com/valyala/fastrand"
)

// Returns a copy of img where each sample is replaced by low or high with probability prob/2 each.
// Produces impulse noise for testing order statistic filters. Seed 0 picks a random seed.
func AddSaltPepper(img *Image, prob, low, high float64, seed uint32) (*Image, error) {
	if prob < 0 || prob > 1 {
		return nil, errors.Wrapf(ErrInvalidParameter, "salt and pepper probability %g outside [0,1]", prob)
	}
	rng := fastrand.RNG{}
	rng.Seed(seed)
	threshold := uint32(prob * float64(math.MaxUint32))
	res := img.Clone()
	for i := range res.Data {
		r := rng.Uint32()
		if r < threshold {
			if r&1 == 0 {
				res.Data[i] = low
			} else {
				res.Data[i] = high
			}
		}
	}
	return res, nil
}

// Returns a copy of img with additive zero-mean gaussian noise of given standard deviation
func AddGaussian(img *Image, sigma float64, seed uint32) (*Image, error) {
	if sigma < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "negative noise sigma %g", sigma)
	}
	rng := fastrand.RNG{}
	rng.Seed(seed)
	res := img.Clone()
	for i := 0; i < len(res.Data); i += 2 {
		// Box-Muller, two normal deviates per pair of uniforms
		u1 := (float64(rng.Uint32()) + 1) / (float64(math.MaxUint32) + 2)
		u2 := float64(rng.Uint32()) / (float64(math.MaxUint32) + 1)
		r := sigma * math.Sqrt(-2*math.Log(u1))
		res.Data[i] += r * math.Cos(2*math.Pi*u2)
		if i+1 < len(res.Data) {
			res.Data[i+1] += r * math.Sin(2*math.Pi*u2)
		}
	}
	return res, nil
}
