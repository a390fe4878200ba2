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
	"runtime"

	"github.com/pkg/errors"
)

//////////////////////////////////////////////////////////////////
// CPU-limited pixel operations. Parallelized across CPUs
//////////////////////////////////////////////////////////////////

// A pixel function. Operates in-place on a batch of samples. For parallelization across CPUs.
type PixelFunction func(data []float64, params interface{})

// A row function. Computes output rows [from, to). For parallelization across CPUs.
// Rows must be independent, i.e. only read from shared input and only write to their own output rows.
type RowFunction func(from, to int)

// Apply given pixel function to the image. Uses thread parallelism across all available CPUs. Operates in-place.
func (f *Image) ApplyPixelFunction(pf PixelFunction, args interface{}) {
	data := f.Data
	if len(data) == 0 {
		return
	}

	// split into 8*NumCPU() work packages, limit parallelism to NumCPUS()
	numBatches := 8 * runtime.NumCPU()
	batchSize := (len(data) + numBatches - 1) / (numBatches)
	sem := make(chan bool, runtime.NumCPU())
	for lower := 0; lower < len(data); lower += batchSize {
		upper := lower + batchSize
		if upper > len(data) {
			upper = len(data)
		}

		sem <- true
		go func(data []float64) {
			pf(data, args)
			<-sem
		}(data[lower:upper])
	}

	for i := 0; i < cap(sem); i++ { // wait for goroutines to finish
		sem <- true
	}
}

// Apply given row function to all rows [0, height). Uses thread parallelism across GOMAXPROCS CPUs.
// Returns once all rows are done.
func ParallelRows(height int, rf RowFunction) {
	if height <= 0 {
		return
	}
	threads := runtime.GOMAXPROCS(0)
	numBatches := 4 * threads
	batchSize := (height + numBatches - 1) / numBatches
	sem := make(chan bool, threads)
	for lower := 0; lower < height; lower += batchSize {
		upper := lower + batchSize
		if upper > height {
			upper = height
		}

		sem <- true
		go func(from, to int) {
			rf(from, to)
			<-sem
		}(lower, upper)
	}

	for i := 0; i < cap(sem); i++ { // wait for goroutines to finish
		sem <- true
	}
}

type pfScaleOffsetArgs struct {
	Scale  float64
	Offset float64
}

// Pixel function to apply a scale and an offset. 2nd parameter must be a pfScaleOffsetArgs. Operates in-place.
func pfScaleOffset(data []float64, params interface{}) {
	scale, offset := params.(pfScaleOffsetArgs).Scale, params.(pfScaleOffsetArgs).Offset
	for i, d := range data {
		data[i] = d*scale + offset
	}
}

// Applies given scale factor and offset to image. Operates in-place.
func (f *Image) ApplyScaleOffset(scale, offset float64) {
	f.ApplyPixelFunction(pfScaleOffset, pfScaleOffsetArgs{scale, offset})
}

type pfClampArgs struct {
	Min float64
	Max float64
}

// Pixel function to clamp values into [min, max]. 2nd parameter must be a pfClampArgs. Operates in-place.
func pfClamp(data []float64, params interface{}) {
	min, max := params.(pfClampArgs).Min, params.(pfClampArgs).Max
	for i, d := range data {
		if d < min {
			data[i] = min
		} else if d > max {
			data[i] = max
		}
	}
}

// Clamps all values into [min, max]. Operates in-place.
func (f *Image) ApplyClamp(min, max float64) {
	f.ApplyPixelFunction(pfClamp, pfClampArgs{min, max})
}

// Returns a new image holding the element-wise sum a+b
func Add(a, b *Image) (*Image, error) {
	if !SameShape(a, b) {
		return nil, errors.Wrapf(ErrInvalidParameter, "adding %s image to %s image", b.DimensionsToString(), a.DimensionsToString())
	}
	res := NewImageFromImage(a)
	for i := range res.Data {
		res.Data[i] = a.Data[i] + b.Data[i]
	}
	return res, nil
}
