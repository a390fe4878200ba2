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
)

// A per-window reduction. Receives the in-bounds samples of the window and the center sample,
// and may reorder the window in place
type windowFunction func(window []float64, center float64) float64

// Gathers the in-bounds samples of the s x s window for pixel (x,y) into buf and returns them.
// Window offsets run from -s/2 to s-1-s/2 along both axes. Offsets outside the image are discarded,
// so windows at the borders are truncated. The window always includes the pixel itself.
func gatherWindow(img *gray.Image, x, y, s int, buf []float64) []float64 {
	edge := s / 2
	y0, y1 := y-edge, y-edge+s
	x0, x1 := x-edge, x-edge+s
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Height {
		y1 = img.Height
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Width {
		x1 = img.Width
	}
	buf = buf[:0]
	for yy := y0; yy < y1; yy++ {
		buf = append(buf, img.Data[yy*img.Width+x0:yy*img.Width+x1]...)
	}
	return buf
}

// Applies the window function to the s x s window of every pixel, in parallel across rows.
// Returns a new image
func applyWindowFunction(img *gray.Image, s int, wf windowFunction) *gray.Image {
	res := gray.NewImageFromImage(img)
	gray.ParallelRows(img.Height, func(from, to int) {
		buf := gray.GetArrayOfFloat64FromPool(s * s)
		defer gray.PutArrayOfFloat64IntoPool(buf)
		for y := from; y < to; y++ {
			for x := 0; x < img.Width; x++ {
				window := gatherWindow(img, x, y, s, buf)
				res.Data[y*img.Width+x] = wf(window, img.Data[y*img.Width+x])
			}
		}
	})
	return res
}

// Order statistics are undefined for NaN samples
func checkNoNaN(img *gray.Image) error {
	for i, v := range img.Data {
		if math.IsNaN(v) {
			return errors.Wrapf(gray.ErrDegenerateInput, "NaN sample at (%d,%d)", i%img.Width, i/img.Width)
		}
	}
	return nil
}

func checkWindowSize(s int, odd bool) error {
	if s < 1 {
		return errors.Wrapf(gray.ErrInvalidParameter, "window size %d must be positive", s)
	}
	if odd && s%2 == 0 {
		return errors.Wrapf(gray.ErrInvalidParameter, "window size %d must be odd", s)
	}
	return nil
}
