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

// Package denoise provides operators for the sliding window noise reduction filters.
package denoise

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/mlnoga/dipfilter/internal/ops"
	"github.com/mlnoga/dipfilter/internal/spatial"
	"github.com/mlnoga/dipfilter/internal/stats"
)

// Applies an arithmetic or geometric mean filter. Takes one input, produces one output
type OpMean struct {
	ops.OpUnaryBase
	Size     int              `json:"size"`
	MeanType spatial.MeanType `json:"meanType"`
}

var _ ops.Operator = (*OpMean)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpMeanDefault() }) } // register the operator for JSON decoding

func NewOpMeanDefault() *OpMean { return NewOpMean(3, spatial.MeanGeometric) }

func NewOpMean(size int, meanType spatial.MeanType) *OpMean {
	op := OpMean{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "mean", Active: true}},
		Size:        size,
		MeanType:    meanType,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpMean) UnmarshalJSON(data []byte) error {
	type defaults OpMean
	def := defaults(*NewOpMeanDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpMean(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpMean) Apply(f *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	fmt.Fprintf(c.Log, "%d: Applying %dx%d %s mean filter\n", f.ID, op.Size, op.Size, op.MeanType)
	return spatial.MeanFilter(f, op.Size, op.MeanType)
}

// Applies a median filter. Takes one input, produces one output
type OpMedian struct {
	ops.OpUnaryBase
	Size int `json:"size"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpMedianDefault() }) } // register the operator for JSON decoding

func NewOpMedianDefault() *OpMedian { return NewOpMedian(3) }

func NewOpMedian(size int) *OpMedian {
	op := OpMedian{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "median", Active: size > 0}},
		Size:        size,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpMedian) UnmarshalJSON(data []byte) error {
	type defaults OpMedian
	def := defaults(*NewOpMedianDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpMedian(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpMedian) Apply(f *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	fmt.Fprintf(c.Log, "%d: Applying %dx%d median filter\n", f.ID, op.Size, op.Size)
	return spatial.MedianFilter(f, op.Size)
}

// Applies the adaptive median filter. Takes one input, produces one output
type OpAdaptiveMedian struct {
	ops.OpUnaryBase
	Size    int `json:"size"`    // Starting window size, odd and at least 3
	MaxSize int `json:"maxSize"` // Maximum window size
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpAdaptiveMedianDefault() }) } // register the operator for JSON decoding

func NewOpAdaptiveMedianDefault() *OpAdaptiveMedian { return NewOpAdaptiveMedian(3, 7) }

func NewOpAdaptiveMedian(size, maxSize int) *OpAdaptiveMedian {
	op := OpAdaptiveMedian{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "adaptiveMedian", Active: true}},
		Size:        size,
		MaxSize:     maxSize,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpAdaptiveMedian) UnmarshalJSON(data []byte) error {
	type defaults OpAdaptiveMedian
	def := defaults(*NewOpAdaptiveMedianDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpAdaptiveMedian(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpAdaptiveMedian) Apply(f *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	fmt.Fprintf(c.Log, "%d: Applying adaptive median filter with window %d to %d\n", f.ID, op.Size, op.MaxSize)
	return spatial.AdaptiveMedianFilter(f, op.Size, op.MaxSize)
}

// A rectangle [X0,X1) x [Y0,Y1) in pixel coordinates
type Rect struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// True if the rectangle has no area
func (r Rect) Empty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Applies the adaptive local noise reduction filter. The overall noise variance is either given,
// or estimated from a near-uniform region of each image. Takes one input, produces one output
type OpAdaptiveLNR struct {
	ops.OpUnaryBase
	Size          int     `json:"size"`          // Window size, odd
	NoiseVariance float64 `json:"noiseVariance"` // Overall noise variance, used if NoiseRegion is empty
	NoiseRegion   Rect    `json:"noiseRegion"`   // Near-uniform region to estimate the noise variance from
	FitHistogram  bool    `json:"fitHistogram"`  // Estimate from a normal fit to the region histogram instead of the sample variance
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpAdaptiveLNRDefault() }) } // register the operator for JSON decoding

func NewOpAdaptiveLNRDefault() *OpAdaptiveLNR { return NewOpAdaptiveLNR(3, 0, Rect{}) }

func NewOpAdaptiveLNR(size int, noiseVariance float64, noiseRegion Rect) *OpAdaptiveLNR {
	op := OpAdaptiveLNR{
		OpUnaryBase:   ops.OpUnaryBase{OpBase: ops.OpBase{Type: "adaptiveLNR", Active: true}},
		Size:          size,
		NoiseVariance: noiseVariance,
		NoiseRegion:   noiseRegion,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpAdaptiveLNR) UnmarshalJSON(data []byte) error {
	type defaults OpAdaptiveLNR
	def := defaults(*NewOpAdaptiveLNRDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpAdaptiveLNR(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpAdaptiveLNR) Apply(f *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	varG, err := op.noiseVariance(f, c)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.Log, "%d: Applying %dx%d adaptive local noise reduction with noise variance %.4g\n", f.ID, op.Size, op.Size, varG)
	return spatial.AdaptiveLNRFilter(f, varG, op.Size)
}

// Returns the configured noise variance, or estimates it from the noise region
func (op *OpAdaptiveLNR) noiseVariance(f *gray.Image, c *ops.Context) (float64, error) {
	r := op.NoiseRegion
	if r.Empty() {
		return op.NoiseVariance, nil
	}
	if !op.FitHistogram {
		v, err := stats.RegionVariance(f, r.X0, r.Y0, r.X1, r.Y1)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(c.Log, "%d: Noise variance %.4g from region %v\n", f.ID, v, r)
		return v, nil
	}

	sub, err := f.SubImage(r.X0, r.Y0, r.X1, r.Y1)
	if err != nil {
		return 0, errors.Wrap(err, "noise region")
	}
	min, max := sub.MinMax()
	if max-min < 1e-8 {
		return 0, nil
	}
	bins := make([]int32, 256)
	stats.Histogram(sub.Data, min, max, bins)
	mode, stdDev, err := stats.GetModeStdDevFromHistogram(bins, min, max)
	if err != nil {
		return 0, errors.Wrap(err, "fitting noise histogram")
	}
	fmt.Fprintf(c.Log, "%d: Noise mode %.4g and variance %.4g fitted from region %v\n", f.ID, mode, stdDev*stdDev, r)
	return stdDev * stdDev, nil
}
