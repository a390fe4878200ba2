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

package ops_test

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlnoga/dipfilter/internal/freq"
	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/mlnoga/dipfilter/internal/ops"
	"github.com/mlnoga/dipfilter/internal/ops/denoise"
	"github.com/mlnoga/dipfilter/internal/ops/freqdomain"
	"github.com/mlnoga/dipfilter/internal/ops/sharpen"
	"github.com/mlnoga/dipfilter/internal/ops/tone"
	"github.com/mlnoga/dipfilter/internal/spatial"
)

func constPromise(img *gray.Image) ops.Promise {
	return func() (*gray.Image, error) { return img.Clone(), nil }
}

func testImage(t *testing.T) *gray.Image {
	t.Helper()
	img, err := gray.NewImageFromRows([][]int{
		{10, 10, 10, 10},
		{10, 200, 10, 10},
		{10, 10, 10, 10},
	})
	require.NoError(t, err)
	return img
}

func TestOperatorTypesAreRegistered(t *testing.T) {
	types := ops.OperatorTypes()
	for _, want := range []string{"seq", "forEach", "load", "loadMany", "save", "stats", "histogram",
		"normRange", "toBytes", "equalize", "addNoise",
		"mean", "median", "adaptiveMedian", "adaptiveLNR",
		"convolve", "laplacianSharpen", "freqFilter", "spectrum"} {
		assert.Contains(t, types, want)
	}
}

func TestUnmarshalSequenceAppliesDefaults(t *testing.T) {
	raw := `{"type":"seq","steps":[
		{"type":"median"},
		{"type":"mean","size":5,"meanType":"arithmetic"},
		{"type":"freqFilter","family":"notchReject","kind":"gaussian","d0":10,"uk":3,"vk":-4},
		{"type":"forEach","operation":{"type":"adaptiveMedian","maxSize":9}}
	]}`
	var seq ops.OpSequence
	require.NoError(t, json.Unmarshal([]byte(raw), &seq))
	require.Len(t, seq.Steps, 4)
	assert.True(t, seq.Active)

	median := seq.Steps[0].(*denoise.OpMedian)
	assert.Equal(t, 3, median.Size)
	assert.True(t, median.Active)

	mean := seq.Steps[1].(*denoise.OpMean)
	assert.Equal(t, 5, mean.Size)
	assert.Equal(t, spatial.MeanArithmetic, mean.MeanType)

	ff := seq.Steps[2].(*freqdomain.OpFreqFilter)
	assert.Equal(t, freq.NotchReject, ff.Family)
	assert.Equal(t, freq.Gaussian, ff.Kind)
	assert.Equal(t, freq.Params{D0: 10, N: 2, Width: 20, UK: 3, VK: -4}, ff.Params)

	fe := seq.Steps[3].(*ops.OpForEach)
	am := fe.Operation.(*denoise.OpAdaptiveMedian)
	assert.Equal(t, 3, am.Size)
	assert.Equal(t, 9, am.MaxSize)

	// Marshal and decode again
	text, err := json.Marshal(&seq)
	require.NoError(t, err)
	var again ops.OpSequence
	require.NoError(t, json.Unmarshal(text, &again))
	require.Len(t, again.Steps, 4)
	assert.Equal(t, ff.Params, again.Steps[2].(*freqdomain.OpFreqFilter).Params)
}

func TestUnmarshalRejectsUnknownTypes(t *testing.T) {
	var seq ops.OpSequence
	assert.Error(t, json.Unmarshal([]byte(`{"type":"seq","steps":[{"type":"debayer"}]}`), &seq))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"seq","steps":[{"type":"freqFilter","family":"comb"}]}`), &seq))
}

func TestSequenceMaterializes(t *testing.T) {
	log := &bytes.Buffer{}
	c := ops.NewContext(log)
	seq := ops.NewOpSequence(
		denoise.NewOpMedian(3),
		tone.NewOpNormalizeRange(true),
	)
	promises, err := seq.MakePromises([]ops.Promise{constPromise(testImage(t))}, c)
	require.NoError(t, err)
	outs, err := ops.MaterializeAll(promises, c.MaxThreads, false)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	for _, v := range outs[0].Data {
		assert.Equal(t, 0.0, v)
	}
	assert.Contains(t, log.String(), "median filter")
	assert.Contains(t, log.String(), "uniform intensity")
}

func TestInactiveOperatorPassesThrough(t *testing.T) {
	c := ops.NewContext(&bytes.Buffer{})
	op := denoise.NewOpMedian(3)
	op.Active = false
	img := testImage(t)
	promises, err := op.MakePromises([]ops.Promise{constPromise(img)}, c)
	require.NoError(t, err)
	outs, err := ops.MaterializeAll(promises, 1, false)
	require.NoError(t, err)
	assert.Equal(t, img.Data, outs[0].Data)
}

func TestMaterializeAllCollectsErrors(t *testing.T) {
	c := ops.NewContext(&bytes.Buffer{})
	op := denoise.NewOpAdaptiveMedian(4, 7)
	promises, err := op.MakePromises([]ops.Promise{constPromise(testImage(t)), constPromise(testImage(t))}, c)
	require.NoError(t, err)
	outs, err := ops.MaterializeAll(promises, 2, false)
	assert.Error(t, err)
	assert.Empty(t, outs)
	assert.Contains(t, err.Error(), "adaptiveMedian")
}

func TestLoadSaveAndStats(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	require.NoError(t, testImage(t).WriteFile(in, 0, 255))

	log := &bytes.Buffer{}
	c := ops.NewContext(log)
	csvFile := filepath.Join(dir, "stats.csv")
	seq := ops.NewOpSequence(
		ops.NewOpLoadMany([]string{filepath.Join(dir, "*.png")}),
		ops.NewOpStats(csvFile),
		denoise.NewOpMedian(3),
		ops.NewOpSave(filepath.Join(dir, "out%d.png"), ops.RangeBytes),
	)
	promises, err := seq.MakePromises(nil, c)
	require.NoError(t, err)
	_, err = ops.MaterializeAll(promises, c.MaxThreads, true)
	require.NoError(t, err)

	out, err := gray.ReadFile(filepath.Join(dir, "out0.png"), 0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, out.At(1, 1))

	csv, err := os.ReadFile(csvFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,FileName,Width,Height,Min,Max,Mean,StdDev,Variance", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0,"))
	assert.Contains(t, log.String(), "Found 1 files.")
}

func TestHistogramOperatorWritesCSV(t *testing.T) {
	dir := t.TempDir()
	log := &bytes.Buffer{}
	c := ops.NewContext(log)
	op := ops.NewOpHistogram(0, filepath.Join(dir, "hist%d.csv"))
	img := testImage(t)
	img.ID = 3
	out, err := op.Apply(img, c)
	require.NoError(t, err)
	assert.Same(t, img, out)

	csv, err := os.ReadFile(filepath.Join(dir, "hist3.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	require.Len(t, lines, 257)
	assert.Equal(t, "Value,Count", lines[0])
	assert.Equal(t, "10,11", lines[11])
	assert.Equal(t, "200,1", lines[201])
	assert.Contains(t, log.String(), "3: Histogram with 256 bins")
}

func TestRestrictPaths(t *testing.T) {
	c := ops.NewContext(&bytes.Buffer{})
	c.RestrictPaths = true
	_, err := ops.NewOpLoad(0, "/etc/passwd").MakePromises(nil, c)
	assert.Error(t, err)
	_, err = ops.NewOpLoad(0, "../secret.png").MakePromises(nil, c)
	assert.Error(t, err)
}

func TestOutputRange(t *testing.T) {
	img := testImage(t)
	min, max, err := ops.OutputRange(img, ops.RangeAuto)
	require.NoError(t, err)
	assert.Equal(t, 10.0, min)
	assert.Equal(t, 200.0, max)
	_, _, err = ops.OutputRange(img, "log")
	assert.Error(t, err)
	assert.Equal(t, "out7.png", ops.ExpandPattern("out%d.png", 7))
	assert.Equal(t, "out.png", ops.ExpandPattern("out.png", 7))
}

func TestConvolveOperator(t *testing.T) {
	c := ops.NewContext(&bytes.Buffer{})
	op := sharpen.NewOpConvolve("", 0, 0, [][]float64{{0, 0, 0}, {0, 2, 0}, {0, 0, 0}})
	res, err := op.Apply(testImage(t), c)
	require.NoError(t, err)
	assert.Equal(t, 400.0, res.At(1, 1))

	op = sharpen.NewOpConvolve("nonesuch", 3, 0, nil)
	_, err = op.Apply(testImage(t), c)
	assert.Error(t, err)
}

func TestSpectrumOperator(t *testing.T) {
	c := ops.NewContext(&bytes.Buffer{})
	res, err := freqdomain.NewOpSpectrum(true).Apply(testImage(t), c)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Width)
	assert.Equal(t, 6, res.Height)
	for _, v := range res.Data {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestFloorNonFinite(t *testing.T) {
	data := []float64{math.Inf(-1), 1, 3, math.Inf(1)}
	freqdomain.FloorNonFinite(data)
	assert.Equal(t, []float64{1, 1, 3, 3}, data)
}

func TestAdaptiveLNROperatorEstimatesNoise(t *testing.T) {
	log := &bytes.Buffer{}
	c := ops.NewContext(log)
	op := denoise.NewOpAdaptiveLNR(3, 0, denoise.Rect{X0: 2, Y0: 0, X1: 4, Y1: 3})
	res, err := op.Apply(testImage(t), c)
	require.NoError(t, err)
	// The region is flat, so the noise variance is zero and the image is unchanged
	assert.Equal(t, testImage(t).Data, res.Data)
	assert.Contains(t, log.String(), "Noise variance 0")
}

func TestAddNoiseOperator(t *testing.T) {
	c := ops.NewContext(&bytes.Buffer{})
	op := tone.NewOpAddNoise(tone.NoiseSaltPepper, 1, 0, 255, 0, 3)
	res, err := op.Apply(testImage(t), c)
	require.NoError(t, err)
	for _, v := range res.Data {
		assert.True(t, v == 0 || v == 255)
	}

	op.Model = "poisson"
	_, err = op.Apply(testImage(t), c)
	assert.Error(t, err)
}

