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

// Package gray holds single plane grayscale images with floating point samples,
// and their conversion from and to the bounded integer representation used for display.
package gray

import (
	"fmt"

	"github.com/pkg/errors"
)

// A grayscale image. Samples are stored row-major, Data[y*Width+x].
// No range is enforced, samples keep the native scale of their source.
type Image struct {
	ID       int    // Sequential ID number, for log output
	FileName string // Original file name, if any, for log output

	Width  int       // Number of columns
	Height int       // Number of rows
	Data   []float64 // The image data
}

// Numeric sample types accepted on construction
type Sample interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Creates a zero-valued image of given dimensions
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
	}
}

// Creates an image of the same shape and identity as img, with freshly allocated zero data
func NewImageFromImage(img *Image) *Image {
	return &Image{
		ID:       img.ID,
		FileName: img.FileName,
		Width:    img.Width,
		Height:   img.Height,
		Data:     make([]float64, len(img.Data)),
	}
}

// Creates an image around the given data, which is not copied
func NewImageFromData(width, height int, data []float64) (*Image, error) {
	if width < 0 || height < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "negative dimensions %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, errors.Wrapf(ErrDegenerateInput, "%d samples for %dx%d image", len(data), width, height)
	}
	return &Image{Width: width, Height: height, Data: data}, nil
}

// Creates an image from row-major samples of any numeric type. Data is copied and converted to float64
func NewImageFromSamples[T Sample](width, height int, data []T) (*Image, error) {
	if width < 0 || height < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "negative dimensions %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, errors.Wrapf(ErrDegenerateInput, "%d samples for %dx%d image", len(data), width, height)
	}
	img := NewImage(width, height)
	for i, d := range data {
		img.Data[i] = float64(d)
	}
	return img, nil
}

// Creates an image from a slice of rows. All rows must have the same length
func NewImageFromRows[T Sample](rows [][]T) (*Image, error) {
	if len(rows) == 0 {
		return NewImage(0, 0), nil
	}
	width := len(rows[0])
	img := NewImage(width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, errors.Wrapf(ErrDegenerateInput, "row %d has %d columns, want %d", y, len(row), width)
		}
		for x, d := range row {
			img.Data[y*width+x] = float64(d)
		}
	}
	return img, nil
}

// Returns a deep copy of the image
func (f *Image) Clone() *Image {
	c := NewImageFromImage(f)
	copy(c.Data, f.Data)
	return c
}

// Returns the sample at column x, row y
func (f *Image) At(x, y int) float64 {
	return f.Data[y*f.Width+x]
}

// Sets the sample at column x, row y
func (f *Image) Set(x, y int, v float64) {
	f.Data[y*f.Width+x] = v
}

// Returns the number of samples
func (f *Image) Pixels() int {
	return len(f.Data)
}

// Returns the image rows as a freshly allocated slice of slices
func (f *Image) Rows() [][]float64 {
	rows := make([][]float64, f.Height)
	for y := range rows {
		rows[y] = append([]float64(nil), f.Data[y*f.Width:(y+1)*f.Width]...)
	}
	return rows
}

func (f *Image) DimensionsToString() string {
	return fmt.Sprintf("%dx%d", f.Width, f.Height)
}

// Returns a copy of the rectangle [x0,x1) x [y0,y1). Used to pick near-uniform regions for noise estimation
func (f *Image) SubImage(x0, y0, x1, y1 int) (*Image, error) {
	if x0 < 0 || y0 < 0 || x1 > f.Width || y1 > f.Height || x0 >= x1 || y0 >= y1 {
		return nil, errors.Wrapf(ErrInvalidParameter, "region [%d,%d)x[%d,%d) outside %s image",
			x0, x1, y0, y1, f.DimensionsToString())
	}
	sub := NewImage(x1-x0, y1-y0)
	sub.ID, sub.FileName = f.ID, f.FileName
	for y := y0; y < y1; y++ {
		copy(sub.Data[(y-y0)*sub.Width:(y-y0+1)*sub.Width], f.Data[y*f.Width+x0:y*f.Width+x1])
	}
	return sub, nil
}

// Returns the minimum and maximum sample. Zero for empty images
func (f *Image) MinMax() (min, max float64) {
	if len(f.Data) == 0 {
		return 0, 0
	}
	min, max = f.Data[0], f.Data[0]
	for _, d := range f.Data[1:] {
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// Tells whether both images have identical dimensions
func SameShape(a, b *Image) bool {
	return a.Width == b.Width && a.Height == b.Height
}
