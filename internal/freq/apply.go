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
	"math/cmplx"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/pbnjay/memory"
	"github.com/pkg/errors"
)

// Returned when the padded spectrum of an image would not fit into memory
var ErrTooLarge = errors.New("image too large for frequency domain filtering")

// Share of physical memory the frequency domain work arrays may occupy
const maxMemoryShare = 0.5

// Number of P x Q complex work arrays held at the same time
const workArrays = 2

// Result of frequency domain filtering
type Result struct {
	G        *gray.Image // Filtered image, same shape as the input
	H        []float64   // Magnitude of the transfer function, P x Q, origin at the center
	Spectrum []float64   // Log power spectrum log(|F|^2) of the padded input, P x Q, origin at the center
	P        int         // Rows of the padded frequency grid, twice the image height
	Q        int         // Columns of the padded frequency grid, twice the image width
}

// Returns the padded frequency grid dimensions for an image
func PaddedSize(img *gray.Image) (p, q int) {
	return 2 * img.Height, 2 * img.Width
}

// Filters the image in the frequency domain with the transfer function of given family, kind and parameters
func Apply(img *gray.Image, family Family, kind Kind, params Params) (*Result, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, errors.Wrapf(gray.ErrDegenerateInput, "image size %s", img.DimensionsToString())
	}
	p, q := PaddedSize(img)
	if err := checkMemory(p, q); err != nil {
		return nil, err
	}
	h, err := Build(p, q, family, kind, params)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s %s filter", kind, family)
	}
	return ApplyTransfer(img, h)
}

// Filters the image with the given centered P x Q transfer function, where P and Q are twice the image
// height and width. The image is zero padded, transformed, shifted, multiplied with h, shifted back and
// inverse transformed. The magnitude of the top left quadrant is the filtered image.
func ApplyTransfer(img *gray.Image, h []float64) (*Result, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, errors.Wrapf(gray.ErrDegenerateInput, "image size %s", img.DimensionsToString())
	}
	p, q := PaddedSize(img)
	if len(h) != p*q {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "transfer function has %d values, want %dx%d", len(h), p, q)
	}
	if err := checkMemory(p, q); err != nil {
		return nil, err
	}

	// Zero pad into the top left quadrant
	padded := gray.GetArrayOfComplex128FromPool(p * q)
	defer gray.PutArrayOfComplex128IntoPool(padded)
	for i := range padded {
		padded[i] = 0
	}
	for y := 0; y < img.Height; y++ {
		row := img.Data[y*img.Width : (y+1)*img.Width]
		dst := padded[y*q : y*q+img.Width]
		for x, v := range row {
			dst[x] = complex(v, 0)
		}
	}

	work := gray.GetArrayOfComplex128FromPool(p * q)
	defer gray.PutArrayOfComplex128IntoPool(work)
	FFT2(work, padded, p, q)
	shifted := Shift(padded, work, p, q)

	res := &Result{
		H:        make([]float64, p*q),
		Spectrum: make([]float64, p*q),
		P:        p,
		Q:        q,
	}
	for i, f := range shifted {
		re, im := real(f), imag(f)
		res.Spectrum[i] = math.Log(re*re + im*im)
		res.H[i] = math.Abs(h[i])
		shifted[i] = f * complex(h[i], 0)
	}

	InverseShift(work, shifted, p, q)
	IFFT2(padded, work, p, q)

	res.G = gray.NewImage(img.Width, img.Height)
	res.G.ID, res.G.FileName = img.ID, img.FileName
	for y := 0; y < img.Height; y++ {
		src := padded[y*q : y*q+img.Width]
		dst := res.G.Data[y*img.Width : (y+1)*img.Width]
		for x, g := range src {
			dst[x] = cmplx.Abs(g)
		}
	}
	return res, nil
}

// Computes the log power spectrum of the zero padded image, origin at the center. Bins with zero power are -Inf
func LogPowerSpectrum(img *gray.Image) (spectrum []float64, p, q int, err error) {
	p, q = PaddedSize(img)
	ones := make([]float64, p*q)
	for i := range ones {
		ones[i] = 1
	}
	res, err := ApplyTransfer(img, ones)
	if err != nil {
		return nil, 0, 0, err
	}
	return res.Spectrum, p, q, nil
}

func checkMemory(p, q int) error {
	total := memory.TotalMemory()
	if total == 0 {
		return nil
	}
	need := uint64(p) * uint64(q) * 16 * workArrays
	if float64(need) > maxMemoryShare*float64(total) {
		return errors.Wrapf(ErrTooLarge, "%dx%d spectrum needs %d MB of %d MB", p, q, need>>20, total>>20)
	}
	return nil
}
