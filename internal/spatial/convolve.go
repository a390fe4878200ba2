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
	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/pkg/errors"
)

// Convolves the image with the kernel. The kernel is rotated by 180 degrees before sliding, and the image
// is extended with zeros on all sides, so border pixels see no contribution from outside the frame.
// The kernel origin is at row m/2, column n/2. Returns a new image of the same shape; no clamping.
func Convolve2D(img *gray.Image, k *Kernel) (*gray.Image, error) {
	if k == nil || len(k.Data) == 0 {
		return nil, errors.Wrap(gray.ErrInvalidParameter, "empty convolution kernel")
	}
	return Correlate2D(img, k.Rotate180())
}

// Correlates the image with the kernel, i.e. slides the kernel without rotating it.
// Same zero boundary policy and origin as Convolve2D.
func Correlate2D(img *gray.Image, k *Kernel) (*gray.Image, error) {
	if k == nil || len(k.Data) == 0 {
		return nil, errors.Wrap(gray.ErrInvalidParameter, "empty correlation kernel")
	}
	if len(k.Data) != k.Width*k.Height {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "kernel size %dx%d with %d weights", k.Width, k.Height, len(k.Data))
	}
	res := gray.NewImageFromImage(img)
	width, height := img.Width, img.Height
	edgeY, edgeX := k.Height/2, k.Width/2

	gray.ParallelRows(height, func(from, to int) {
		for y := from; y < to; y++ {
			for x := 0; x < width; x++ {
				sum := 0.0
				for s := 0; s < k.Height; s++ {
					yy := y + s - edgeY
					if yy < 0 || yy >= height {
						continue
					}
					imgRow := img.Data[yy*width:]
					kRow := k.Data[s*k.Width:]
					for t := 0; t < k.Width; t++ {
						xx := x + t - edgeX
						if xx < 0 || xx >= width {
							continue
						}
						sum += kRow[t] * imgRow[xx]
					}
				}
				res.Data[y*width+x] = sum
			}
		}
	})
	return res, nil
}
