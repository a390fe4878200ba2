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

// Package freq synthesizes frequency-domain transfer functions and applies them to grayscale images
// via the two-dimensional discrete Fourier transform.
package freq

import (
	"github.com/mlnoga/dipfilter/internal/gray"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Computes the 2-D discrete Fourier transform of row-major src with given rows and columns,
// transforming rows first and then columns. The result is stored in dst, which is allocated if nil.
// dst and src must not overlap unless they are the same slice.
func FFT2(dst, src []complex128, rows, cols int) []complex128 {
	return transform2D(dst, src, rows, cols, false)
}

// Computes the normalized inverse 2-D discrete Fourier transform, so that IFFT2(FFT2(x)) == x
// up to rounding. Same conventions as FFT2.
func IFFT2(dst, src []complex128, rows, cols int) []complex128 {
	dst = transform2D(dst, src, rows, cols, true)
	scale := complex(1/float64(rows*cols), 0)
	for i := range dst {
		dst[i] *= scale
	}
	return dst
}

func transform2D(dst, src []complex128, rows, cols int, inverse bool) []complex128 {
	if len(src) != rows*cols {
		panic("freq: data length does not match dimensions")
	}
	if dst == nil {
		dst = make([]complex128, len(src))
	}
	if len(dst) != len(src) {
		panic("freq: destination length does not match source")
	}
	if len(src) == 0 {
		return dst
	}
	copy(dst, src)

	// Rows. The transforms keep internal work arrays, so each batch gets its own
	gray.ParallelRows(rows, func(from, to int) {
		fft := fourier.NewCmplxFFT(cols)
		buf := make([]complex128, cols)
		for r := from; r < to; r++ {
			row := dst[r*cols : (r+1)*cols]
			if inverse {
				fft.Sequence(buf, row)
			} else {
				fft.Coefficients(buf, row)
			}
			copy(row, buf)
		}
	})

	// Columns
	gray.ParallelRows(cols, func(from, to int) {
		fft := fourier.NewCmplxFFT(rows)
		in := make([]complex128, rows)
		out := make([]complex128, rows)
		for c := from; c < to; c++ {
			for r := 0; r < rows; r++ {
				in[r] = dst[r*cols+c]
			}
			if inverse {
				fft.Sequence(out, in)
			} else {
				fft.Coefficients(out, in)
			}
			for r := 0; r < rows; r++ {
				dst[r*cols+c] = out[r]
			}
		}
	})
	return dst
}
