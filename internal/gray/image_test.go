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
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func TestNewImageFromSamplesAcceptsIntegerAndFloat(t *testing.T) {
	fromBytes, err := NewImageFromSamples(2, 2, []uint8{0, 10, 200, 255})
	require.NoError(t, err)
	fromFloats, err := NewImageFromSamples(2, 2, []float32{0, 10, 200, 255})
	require.NoError(t, err)
	fromInts, err := NewImageFromSamples(2, 2, []int16{0, 10, 200, 255})
	require.NoError(t, err)

	assert.Equal(t, fromBytes.Data, fromFloats.Data)
	assert.Equal(t, fromBytes.Data, fromInts.Data)
	assert.Equal(t, 200.0, fromBytes.At(0, 1))
}

func TestNewImageFromSamplesRejectsBadShape(t *testing.T) {
	_, err := NewImageFromSamples(3, 2, []int{1, 2, 3})
	assert.True(t, errors.Is(err, ErrDegenerateInput))

	_, err = NewImageFromRows([][]int{{1, 2}, {3}})
	assert.True(t, errors.Is(err, ErrDegenerateInput))
}

func TestSubImage(t *testing.T) {
	img, err := NewImageFromRows([][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
	})
	require.NoError(t, err)

	sub, err := img.SubImage(1, 1, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{6, 7}, {10, 11}}, sub.Rows())

	_, err = img.SubImage(2, 0, 5, 1)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestToUnitRange(t *testing.T) {
	img, _ := NewImageFromSamples(4, 1, []int{10, 20, 30, 50})
	unit := ToUnitRange(img)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 1}, unit.Data, 1e-12)
	assert.Equal(t, 10.0, img.Data[0], "input must not be modified")
}

func TestToUnitRangeConstantImageIsZero(t *testing.T) {
	img, _ := NewImageFromSamples(3, 2, []int{7, 7, 7, 7, 7, 7})
	unit := ToUnitRange(img)
	for _, d := range unit.Data {
		assert.False(t, math.IsNaN(d))
		assert.Equal(t, 0.0, d)
	}
}

func TestToBoundedInteger(t *testing.T) {
	img, _ := NewImageFromSamples(6, 1, []float64{-0.5, 0, 0.5, 1, 1.7, math.NaN()})
	assert.Equal(t, []uint8{0, 0, 128, 255, 255, 0}, ToBoundedInteger(img))

	g := ToGray(img)
	assert.Equal(t, uint8(128), g.GrayAt(2, 0).Y)
}

func TestPNGRoundTrip(t *testing.T) {
	img, _ := NewImageFromSamples(3, 2, []uint8{0, 50, 100, 150, 200, 255})
	buf := bytes.Buffer{}
	require.NoError(t, img.WritePNG(&buf, 0, 255))

	back, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Data, back.Data)
}

func TestReadTIFF16KeepsNativeScale(t *testing.T) {
	src := image.NewGray16(image.Rect(0, 0, 2, 1))
	src.SetGray16(0, 0, color.Gray16{Y: 1000})
	src.SetGray16(1, 0, color.Gray16{Y: 65535})
	buf := bytes.Buffer{}
	require.NoError(t, tiff.Encode(&buf, src, nil))

	img, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 65535}, img.Data)
}

func TestFromImageColorUsesLuminance(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	img := FromImage(src)
	assert.InDelta(t, 255, img.Data[0], 1e-9)
}

func TestHeatmapFloorsNonFinite(t *testing.T) {
	data := []float64{math.Inf(-1), 0, 1, 2}
	h := Heatmap(data, 2, 2)
	assert.Equal(t, h.RGBAAt(0, 0), h.RGBAAt(1, 0), "-Inf renders like the finite minimum")

	buf := bytes.Buffer{}
	require.NoError(t, WriteHeatmapPNG(&buf, data, 2, 2))
	_, err := png.Decode(&buf)
	assert.NoError(t, err)
}

func TestAddSaltPepper(t *testing.T) {
	img := NewImage(100, 100)
	img.ApplyScaleOffset(1, 128)
	noisy, err := AddSaltPepper(img, 0.2, 0, 255, 42)
	require.NoError(t, err)

	low, high := 0, 0
	for _, d := range noisy.Data {
		switch d {
		case 0:
			low++
		case 255:
			high++
		default:
			assert.Equal(t, 128.0, d)
		}
	}
	assert.InDelta(t, 1000, low, 250)
	assert.InDelta(t, 1000, high, 250)

	_, err = AddSaltPepper(img, 1.5, 0, 255, 42)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestAddGaussianIsDeterministicPerSeed(t *testing.T) {
	img := NewImage(64, 64)
	a, err := AddGaussian(img, 10, 7)
	require.NoError(t, err)
	b, err := AddGaussian(img, 10, 7)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)

	sum, sumSq := 0.0, 0.0
	for _, d := range a.Data {
		sum += d
		sumSq += d * d
	}
	n := float64(len(a.Data))
	assert.InDelta(t, 0, sum/n, 1)
	assert.InDelta(t, 10, math.Sqrt(sumSq/n), 1)
}

func TestParallelRowsVisitsEveryRowOnce(t *testing.T) {
	counts := make([]int, 97)
	ParallelRows(len(counts), func(from, to int) {
		for y := from; y < to; y++ {
			counts[y]++
		}
	})
	for y, c := range counts {
		assert.Equal(t, 1, c, "row %d", y)
	}
}

func TestPoolReturnsRequestedSize(t *testing.T) {
	arr := GetArrayOfFloat64FromPool(33)
	assert.Len(t, arr, 33)
	PutArrayOfFloat64IntoPool(arr)
	c := GetArrayOfComplex128FromPool(8)
	assert.Len(t, c, 8)
	PutArrayOfComplex128IntoPool(c)
	ClearPools()
}

func TestAddChecksShape(t *testing.T) {
	a, err := NewImageFromRows([][]int{{1, 2}, {3, 4}})
	require.NoError(t, err)
	sum, err := Add(a, a)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6, 8}, sum.Data)
	assert.Equal(t, []float64{1, 2, 3, 4}, a.Data)

	_, err = Add(a, NewImage(3, 1))
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
