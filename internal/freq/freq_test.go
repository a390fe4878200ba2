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
	"encoding/json"
	"math"
	"math/cmplx"
	"testing"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"
)

func randomImage(t *testing.T, width, height int, seed uint32) *gray.Image {
	t.Helper()
	var rng fastrand.RNG
	rng.Seed(seed)
	data := make([]uint8, width*height)
	for i := range data {
		data[i] = uint8(rng.Uint32n(256))
	}
	img, err := gray.NewImageFromSamples(width, height, data)
	require.NoError(t, err)
	return img
}

// Direct evaluation of the 2-D DFT definition
func naiveDFT2(src []complex128, rows, cols int) []complex128 {
	dst := make([]complex128, len(src))
	for k := 0; k < rows; k++ {
		for l := 0; l < cols; l++ {
			var sum complex128
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					angle := -2 * math.Pi * (float64(k*r)/float64(rows) + float64(l*c)/float64(cols))
					sum += src[r*cols+c] * cmplx.Exp(complex(0, angle))
				}
			}
			dst[k*cols+l] = sum
		}
	}
	return dst
}

func TestFFT2MatchesDefinition(t *testing.T) {
	for _, dims := range [][2]int{{3, 4}, {5, 2}, {4, 4}, {2, 6}} {
		rows, cols := dims[0], dims[1]
		var rng fastrand.RNG
		rng.Seed(uint32(rows*10 + cols))
		src := make([]complex128, rows*cols)
		for i := range src {
			src[i] = complex(float64(rng.Uint32n(100)), float64(rng.Uint32n(100)))
		}

		want := naiveDFT2(src, rows, cols)
		got := FFT2(nil, src, rows, cols)
		for i := range want {
			require.InDelta(t, real(want[i]), real(got[i]), 1e-9, "%dx%d bin %d", rows, cols, i)
			require.InDelta(t, imag(want[i]), imag(got[i]), 1e-9, "%dx%d bin %d", rows, cols, i)
		}

		back := IFFT2(nil, got, rows, cols)
		for i := range src {
			require.InDelta(t, real(src[i]), real(back[i]), 1e-9)
			require.InDelta(t, imag(src[i]), imag(back[i]), 1e-9)
		}
	}
}

func TestShiftCentersOrigin(t *testing.T) {
	for _, dims := range [][2]int{{4, 6}, {5, 3}, {1, 7}, {2, 1}} {
		rows, cols := dims[0], dims[1]
		src := make([]int, rows*cols)
		for i := range src {
			src[i] = i
		}
		shifted := Shift(nil, src, rows, cols)
		assert.Equal(t, 0, shifted[(rows/2)*cols+cols/2], "%dx%d", rows, cols)
		assert.Equal(t, src, InverseShift(nil, shifted, rows, cols), "%dx%d", rows, cols)
	}

	// numpy.fft.fftshift([0,1,2,3,4]) == [3,4,0,1,2]
	assert.Equal(t, []int{3, 4, 0, 1, 2}, Shift(nil, []int{0, 1, 2, 3, 4}, 1, 5))
	// numpy.fft.ifftshift([0,1,2,3,4]) == [2,3,4,0,1]
	assert.Equal(t, []int{2, 3, 4, 0, 1}, InverseShift(nil, []int{0, 1, 2, 3, 4}, 1, 5))
}

func TestParseFamilyAndKind(t *testing.T) {
	for _, f := range Families {
		parsed, err := ParseFamily(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
	f, err := ParseFamily("Notch_Reject")
	require.NoError(t, err)
	assert.Equal(t, NotchReject, f)

	for _, k := range Kinds {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err = ParseFamily("comb")
	assert.True(t, errors.Is(err, gray.ErrInvalidParameter))
	_, err = ParseKind("chebyshev")
	assert.True(t, errors.Is(err, gray.ErrInvalidParameter))
}

func TestFamilyKindJSON(t *testing.T) {
	type filterSpec struct {
		Family Family `json:"family"`
		Kind   Kind   `json:"kind"`
	}
	text, err := json.Marshal(filterSpec{Bandpass, Gaussian})
	require.NoError(t, err)
	assert.JSONEq(t, `{"family":"bandpass","kind":"gaussian"}`, string(text))

	var s filterSpec
	require.NoError(t, json.Unmarshal([]byte(`{"family":"notchpass","kind":"Butterworth"}`), &s))
	assert.Equal(t, filterSpec{NotchPass, Butterworth}, s)

	assert.Error(t, json.Unmarshal([]byte(`{"family":"allpass"}`), &s))
}

func TestValidate(t *testing.T) {
	ok := DefaultParams()
	assert.NoError(t, ok.Validate(Bandreject, Butterworth))

	tcs := []struct {
		name   string
		family Family
		kind   Kind
		params Params
	}{
		{"zero cutoff", Lowpass, Ideal, Params{D0: 0}},
		{"negative cutoff", Highpass, Gaussian, Params{D0: -1}},
		{"zero order", Lowpass, Butterworth, Params{D0: 10, N: 0}},
		{"zero width", Bandpass, Ideal, Params{D0: 10}},
		{"bad family", Family(17), Ideal, Params{D0: 10}},
		{"bad kind", Lowpass, Kind(-1), Params{D0: 10}},
		{"nan offset", NotchReject, Ideal, Params{D0: 10, UK: math.NaN()}},
	}
	for _, tc := range tcs {
		err := tc.params.Validate(tc.family, tc.kind)
		assert.True(t, errors.Is(err, gray.ErrInvalidParameter), tc.name)
	}

	// Order and width only matter where used
	assert.NoError(t, Params{D0: 10}.Validate(Lowpass, Gaussian))
}

func TestBuildRejectsUnknownFamilyAndKind(t *testing.T) {
	_, err := Build(8, 8, Family(42), Ideal, DefaultParams())
	assert.True(t, errors.Is(err, gray.ErrInvalidParameter))
	_, err = Build(8, 8, Lowpass, Kind(42), DefaultParams())
	assert.True(t, errors.Is(err, gray.ErrInvalidParameter))
	_, err = Build(0, 8, Lowpass, Ideal, DefaultParams())
	assert.True(t, errors.Is(err, gray.ErrInvalidParameter))
}

func TestHighpassPlusLowpassIsOne(t *testing.T) {
	for _, kind := range Kinds {
		for _, p := range []Params{{D0: 5, N: 2}, {D0: 3.5, N: 1.5, UK: 2, VK: -3}} {
			lp := LowpassFilter(16, 20, kind, p)
			hp := HighpassFilter(16, 20, kind, p)
			for i := range lp {
				require.InDelta(t, 1, lp[i]+hp[i], 1e-12, "%s at %d", kind, i)
			}
		}
	}
}

func TestNotchPassPlusNotchRejectIsOne(t *testing.T) {
	for _, kind := range Kinds {
		p := Params{D0: 2, N: 2, UK: 3, VK: 4}
		np := NotchPassFilter(16, 16, kind, p)
		nr := NotchRejectFilter(16, 16, kind, p)
		for i := range np {
			require.InDelta(t, 1, np[i]+nr[i], 1e-12, "%s at %d", kind, i)
		}
	}
}

func TestLowpassValues(t *testing.T) {
	p := Params{D0: 2, N: 1}
	// Center of an 8x8 grid is (4,4)
	ideal := LowpassFilter(8, 8, Ideal, p)
	assert.Equal(t, 1.0, ideal[4*8+4])
	assert.Equal(t, 1.0, ideal[4*8+6])
	assert.Equal(t, 0.0, ideal[4*8+7])

	bw := LowpassFilter(8, 8, Butterworth, p)
	assert.Equal(t, 0.5, bw[4*8+6])

	gauss := LowpassFilter(8, 8, Gaussian, p)
	assert.Equal(t, 1.0, gauss[4*8+4])
	assert.InDelta(t, math.Exp(-0.5), gauss[4*8+6], 1e-15)

	// Notch offsets move the center
	shifted := LowpassFilter(8, 8, Ideal, Params{D0: 0.5, UK: 1, VK: -2})
	assert.Equal(t, 1.0, shifted[3*8+6])
	assert.Equal(t, 0.0, shifted[4*8+4])
}

func TestBandrejectValues(t *testing.T) {
	p := Params{D0: 3, N: 2, Width: 2}
	for _, size := range [][2]int{{8, 8}, {10, 14}, {7, 9}, {64, 32}} {
		rows, cols := size[0], size[1]
		h := BandrejectFilter(rows, cols, Butterworth, p)
		zeros := 0
		for u := 0; u < rows; u++ {
			for v := 0; v < cols; v++ {
				val := h[u*cols+v]
				require.False(t, math.IsNaN(val) || math.IsInf(val, 0))
				if distance(u, v, rows, cols, 0, 0) == p.D0 {
					require.Equal(t, 0.0, val)
					zeros++
				}
			}
		}
		assert.Equal(t, 4, zeros, "%dx%d", rows, cols)
	}

	gauss := BandrejectFilter(8, 8, Gaussian, p)
	assert.Equal(t, 1.0, gauss[4*8+4])
	assert.Equal(t, 0.0, gauss[4*8+7])

	ideal := BandrejectFilter(8, 8, Ideal, p)
	assert.Equal(t, 1.0, ideal[4*8+4])
	assert.Equal(t, 0.0, ideal[4*8+6])
	assert.Equal(t, 0.0, ideal[0*8+4])

	bp := BandpassFilter(8, 8, Ideal, p)
	assert.Equal(t, 0.0, bp[4*8+4])
	assert.Equal(t, 1.0, bp[4*8+6])
}

func TestBuildCentersLowpassIgnoringNotchOffsets(t *testing.T) {
	p := Params{D0: 1, UK: 3, VK: 3}
	h, err := Build(8, 8, Lowpass, Ideal, p)
	require.NoError(t, err)
	assert.Equal(t, 1.0, h[4*8+4])

	nr, err := Build(8, 8, NotchReject, Ideal, p)
	require.NoError(t, err)
	assert.Equal(t, 1.0, nr[4*8+4])
	assert.Equal(t, 0.0, nr[1*8+1])
	assert.Equal(t, 0.0, nr[7*8+7])
}

func TestAllPassRoundTrip(t *testing.T) {
	img := randomImage(t, 13, 10, 5)
	p, q := PaddedSize(img)
	assert.Equal(t, 20, p)
	assert.Equal(t, 26, q)

	ones := make([]float64, p*q)
	for i := range ones {
		ones[i] = 1
	}
	res, err := ApplyTransfer(img, ones)
	require.NoError(t, err)
	require.Equal(t, img.Width, res.G.Width)
	require.Equal(t, img.Height, res.G.Height)
	for i, v := range img.Data {
		require.InDelta(t, v, res.G.Data[i], 1e-6, "pixel %d", i)
	}
	assert.Equal(t, ones, res.H)
}

// Pads, transforms, filters and crops by direct evaluation of the DFT, indexing the centered
// transfer function at the shifted position of each frequency bin
func directFilter(img *gray.Image, h []float64) (g, spectrum []float64) {
	p, q := 2*img.Height, 2*img.Width
	padded := make([]complex128, p*q)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			padded[y*q+x] = complex(img.At(x, y), 0)
		}
	}
	f := naiveDFT2(padded, p, q)
	spectrum = make([]float64, p*q)
	filtered := make([]complex128, p*q)
	for u := 0; u < p; u++ {
		for v := 0; v < q; v++ {
			centered := ((u+p/2)%p)*q + (v+q/2)%q
			spectrum[centered] = math.Log(real(f[u*q+v])*real(f[u*q+v]) + imag(f[u*q+v])*imag(f[u*q+v]))
			filtered[u*q+v] = cmplx.Conj(f[u*q+v] * complex(h[centered], 0))
		}
	}
	back := naiveDFT2(filtered, p, q)
	g = make([]float64, img.Width*img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			g[y*img.Width+x] = cmplx.Abs(back[y*q+x]) / float64(p*q)
		}
	}
	return g, spectrum
}

func TestApplyMatchesDirectEvaluation(t *testing.T) {
	img := randomImage(t, 5, 6, 11)
	params := Params{D0: 3, N: 2, Width: 2, UK: 2, VK: 1}
	builders := map[Family]func(rows, cols int, kind Kind, p Params) []float64{
		Bandreject:  BandrejectFilter,
		Bandpass:    BandpassFilter,
		NotchReject: NotchRejectFilter,
		NotchPass:   NotchPassFilter,
	}
	for _, family := range Families {
		for _, kind := range Kinds {
			res, err := Apply(img, family, kind, params)
			require.NoError(t, err, "%s %s", kind, family)
			require.Equal(t, 12, res.P)
			require.Equal(t, 10, res.Q)

			h, err := Build(res.P, res.Q, family, kind, params)
			require.NoError(t, err)
			if build, ok := builders[family]; ok {
				assert.Equal(t, build(res.P, res.Q, kind, params), h, "%s %s", kind, family)
			}
			for i, v := range h {
				require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s %s H[%d]", kind, family, i)
				require.Equal(t, math.Abs(v), res.H[i])
			}

			g, spectrum := directFilter(img, h)
			for i := range g {
				require.InDelta(t, g[i], res.G.Data[i], 1e-8, "%s %s pixel %d", kind, family, i)
			}
			for i := range spectrum {
				require.InDelta(t, spectrum[i], res.Spectrum[i], 1e-8, "%s %s bin %d", kind, family, i)
			}
		}
	}
}

func TestApplyWideLowpassIsNearIdentity(t *testing.T) {
	img := randomImage(t, 9, 12, 6)
	res, err := Apply(img, Lowpass, Butterworth, Params{D0: 1e9, N: 2})
	require.NoError(t, err)
	for i, v := range img.Data {
		require.InDelta(t, v, res.G.Data[i], 1e-6, "pixel %d", i)
	}
}

func TestApplyLowpassSmoothsNoise(t *testing.T) {
	clean := make([]float64, 32*32)
	for i := range clean {
		clean[i] = 100
	}
	img, err := gray.NewImageFromData(32, 32, clean)
	require.NoError(t, err)
	noisy, err := gray.AddGaussian(img, 20, 9)
	require.NoError(t, err)

	res, err := Apply(noisy, Lowpass, Gaussian, Params{D0: 8})
	require.NoError(t, err)

	// Compare the interior, away from the darkening caused by zero padding
	errNoisy, errFiltered := 0.0, 0.0
	for y := 8; y < 24; y++ {
		for x := 8; x < 24; x++ {
			errNoisy += math.Abs(noisy.At(x, y) - 100)
			errFiltered += math.Abs(res.G.At(x, y) - 100)
		}
	}
	assert.Less(t, errFiltered, errNoisy/2)
}

func TestApplySpectrumAndErrors(t *testing.T) {
	img := gray.NewImage(4, 3)
	img.Set(0, 0, 2)
	res, err := Apply(img, Highpass, Ideal, Params{D0: 1})
	require.NoError(t, err)
	require.Len(t, res.Spectrum, res.P*res.Q)
	// An impulse has a flat power spectrum of value 4
	for _, s := range res.Spectrum {
		require.InDelta(t, math.Log(4), s, 1e-9)
	}

	zero := gray.NewImage(2, 2)
	spectrum, p, q, err := LogPowerSpectrum(zero)
	require.NoError(t, err)
	assert.Equal(t, 4, p)
	assert.Equal(t, 4, q)
	assert.True(t, math.IsInf(spectrum[0], -1))

	_, err = Apply(img, Lowpass, Ideal, Params{D0: -3})
	assert.True(t, errors.Is(err, gray.ErrInvalidParameter))
	_, err = Apply(gray.NewImage(0, 0), Lowpass, Ideal, DefaultParams())
	assert.True(t, errors.Is(err, gray.ErrDegenerateInput))
	_, err = ApplyTransfer(img, []float64{1})
	assert.True(t, errors.Is(err, gray.ErrInvalidParameter))
}
