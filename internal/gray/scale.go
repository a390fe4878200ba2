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
	"image"
	"math"
)

// Bounds of the 8-bit display range
const (
	MinIntensity = 0
	MaxIntensity = 255
)

// Linearly maps [min(img), max(img)] to [0,1] and returns the result as a new image.
// A constant image has no range to stretch and maps to all zeros.
func ToUnitRange(img *Image) *Image {
	res := img.Clone()
	min, max := img.MinMax()
	if max-min == 0 || math.IsNaN(max-min) || math.IsInf(max-min, 0) {
		for i := range res.Data {
			res.Data[i] = 0
		}
		return res
	}
	scale := 1.0 / (max - min)
	res.ApplyScaleOffset(scale, -min*scale)
	return res
}

// Scales a [0,1] valued image to [0,255], rounds to the nearest integer and clamps to [0,255].
// NaN samples map to 0.
func ToBoundedInteger(img *Image) []uint8 {
	res := make([]uint8, len(img.Data))
	for i, d := range img.Data {
		res[i] = boundedByte(d * MaxIntensity)
	}
	return res
}

// Converts a [0,1] valued image into an 8-bit golang grayscale image, see ToBoundedInteger
func ToGray(img *Image) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	bytes := ToBoundedInteger(img)
	for y := 0; y < img.Height; y++ {
		copy(g.Pix[y*g.Stride:y*g.Stride+img.Width], bytes[y*img.Width:(y+1)*img.Width])
	}
	return g
}

// Converts 8-bit samples back into an image with samples in [0,255]
func FromBoundedInteger(width, height int, data []uint8) (*Image, error) {
	return NewImageFromSamples(width, height, data)
}

// Rounds to the nearest integer with ties to even, then clamps to the 8-bit range
func boundedByte(v float64) uint8 {
	if math.IsNaN(v) {
		return MinIntensity
	}
	v = math.RoundToEven(v)
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return uint8(v)
}
