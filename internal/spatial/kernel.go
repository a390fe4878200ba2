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

// Package spatial implements spatial-domain filters on grayscale images:
// 2-D convolution against arbitrary kernels and sliding-window filters.
package spatial

import (
	"fmt"
	"strings"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/pkg/errors"
)

// A convolution kernel with row-major weights, Data[row*Width+col]
type Kernel struct {
	Width  int       // Number of columns n
	Height int       // Number of rows m
	Data   []float64 // The weights
}

// Creates a kernel from row-major weights
func NewKernel(width, height int, data []float64) (*Kernel, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "kernel size %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "kernel size %dx%d with %d weights", width, height, len(data))
	}
	return &Kernel{Width: width, Height: height, Data: data}, nil
}

// Creates a kernel from a slice of equal-length rows
func NewKernelFromRows[T gray.Sample](rows [][]T) (*Kernel, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.Wrap(gray.ErrInvalidParameter, "empty kernel")
	}
	width := len(rows[0])
	data := make([]float64, 0, width*len(rows))
	for r, row := range rows {
		if len(row) != width {
			return nil, errors.Wrapf(gray.ErrInvalidParameter, "kernel row %d has %d weights, want %d", r, len(row), width)
		}
		for _, v := range row {
			data = append(data, float64(v))
		}
	}
	return NewKernel(width, len(rows), data)
}

// Returns the weight at given row and column
func (k *Kernel) At(row, col int) float64 {
	return k.Data[row*k.Width+col]
}

// Returns the weights as a slice of rows
func (k *Kernel) Rows() [][]float64 {
	rows := make([][]float64, k.Height)
	for r := range rows {
		rows[r] = k.Data[r*k.Width : (r+1)*k.Width]
	}
	return rows
}

// Returns a new kernel rotated by 180 degrees, i.e. flipped both up-down and left-right
func (k *Kernel) Rotate180() *Kernel {
	data := make([]float64, len(k.Data))
	for i, w := range k.Data {
		data[len(data)-1-i] = w
	}
	return &Kernel{Width: k.Width, Height: k.Height, Data: data}
}

// Returns the sum of all weights
func (k *Kernel) Sum() float64 {
	sum := 0.0
	for _, w := range k.Data {
		sum += w
	}
	return sum
}

func (k *Kernel) String() string {
	var b strings.Builder
	for r, row := range k.Rows() {
		if r > 0 {
			b.WriteString("; ")
		}
		for c, w := range row {
			if c > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%.4g", w)
		}
	}
	return b.String()
}

// Returns the s x s kernel with a single 1 at its center
func IdentityKernel(s int) (*Kernel, error) {
	if s <= 0 || s%2 == 0 {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "identity kernel size %d must be odd and positive", s)
	}
	data := make([]float64, s*s)
	data[len(data)/2] = 1
	return &Kernel{Width: s, Height: s, Data: data}, nil
}

// Returns the normalized s x s box kernel
func BoxKernel(s int) (*Kernel, error) {
	if s <= 0 {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "box kernel size %d", s)
	}
	data := make([]float64, s*s)
	for i := range data {
		data[i] = 1 / float64(s*s)
	}
	return &Kernel{Width: s, Height: s, Data: data}, nil
}

// Returns the 3x3 Laplacian kernel including diagonals, with negative outer weights and a positive center.
// Adding its response to an image sharpens it
func LaplacianKernel() *Kernel {
	return &Kernel{Width: 3, Height: 3, Data: []float64{
		-1, -1, -1,
		-1, 8, -1,
		-1, -1, -1,
	}}
}

// Returns the named kernel. Known names are identity, box, laplacian and gaussian; size applies
// to identity and box, sigma to gaussian
func NamedKernel(name string, size int, sigma float64) (*Kernel, error) {
	switch strings.ToLower(name) {
	case "identity":
		return IdentityKernel(size)
	case "box":
		return BoxKernel(size)
	case "laplacian":
		return LaplacianKernel(), nil
	case "gaussian":
		return GaussianKernel(sigma)
	default:
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "unknown kernel name '%s'", name)
	}
}
