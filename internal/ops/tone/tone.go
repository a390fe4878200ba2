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

// Package tone provides operators that change intensity scale and distribution.
package tone

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/mlnoga/dipfilter/internal/ops"
	"github.com/mlnoga/dipfilter/internal/stats"
)

// Normalizes the image range to [0, 1]. Takes one input, produces one output
type OpNormalizeRange struct {
	ops.OpUnaryBase
}

var _ ops.Operator = (*OpNormalizeRange)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpNormalizeRangeDefault() }) } // register the operator for JSON decoding

func NewOpNormalizeRangeDefault() *OpNormalizeRange { return NewOpNormalizeRange(true) }

func NewOpNormalizeRange(active bool) *OpNormalizeRange {
	op := OpNormalizeRange{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "normRange", Active: active}},
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpNormalizeRange) UnmarshalJSON(data []byte) error {
	type defaults OpNormalizeRange
	def := defaults(*NewOpNormalizeRangeDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpNormalizeRange(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpNormalizeRange) Apply(f *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	min, max := f.MinMax()
	if max-min < 1e-8 {
		fmt.Fprintf(c.Log, "%d: Warning: Image is of uniform intensity %.4g, normalizing to zero\n", f.ID, min)
	} else {
		fmt.Fprintf(c.Log, "%d: Normalizing from [%.4g,%.4g] to [0,1]\n", f.ID, min, max)
	}
	return gray.ToUnitRange(f), nil
}

// Quantizes a [0,1] image to the 8-bit range [0,255] with rounding and clamping. Takes one input, produces one output
type OpToBytes struct {
	ops.OpUnaryBase
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpToBytesDefault() }) } // register the operator for JSON decoding

func NewOpToBytesDefault() *OpToBytes { return NewOpToBytes(true) }

func NewOpToBytes(active bool) *OpToBytes {
	op := OpToBytes{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "toBytes", Active: active}},
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpToBytes) UnmarshalJSON(data []byte) error {
	type defaults OpToBytes
	def := defaults(*NewOpToBytesDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpToBytes(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpToBytes) Apply(f *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	fmt.Fprintf(c.Log, "%d: Quantizing to 8 bits\n", f.ID)
	result, err = gray.FromBoundedInteger(f.Width, f.Height, gray.ToBoundedInteger(f))
	if err != nil {
		return nil, err
	}
	result.ID, result.FileName = f.ID, f.FileName
	return result, nil
}

// Equalizes the intensity histogram of an 8-bit image. Takes one input, produces one output
type OpEqualize struct {
	ops.OpUnaryBase
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpEqualizeDefault() }) } // register the operator for JSON decoding

func NewOpEqualizeDefault() *OpEqualize { return NewOpEqualize(true) }

func NewOpEqualize(active bool) *OpEqualize {
	op := OpEqualize{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "equalize", Active: active}},
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpEqualize) UnmarshalJSON(data []byte) error {
	type defaults OpEqualize
	def := defaults(*NewOpEqualizeDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpEqualize(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpEqualize) Apply(f *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	fmt.Fprintf(c.Log, "%d: Equalizing histogram\n", f.ID)
	return stats.Equalize(f), nil
}

// Noise models for OpAddNoise
const (
	NoiseSaltPepper = "saltPepper"
	NoiseGaussian   = "gaussian"
)

// Adds synthetic noise to an image. Takes one input, produces one output
type OpAddNoise struct {
	ops.OpUnaryBase
	Model       string  `json:"model"`       // saltPepper or gaussian
	Probability float64 `json:"probability"` // Share of impulse samples for salt and pepper noise
	Low         float64 `json:"low"`         // Pepper value
	High        float64 `json:"high"`        // Salt value
	Sigma       float64 `json:"sigma"`       // Standard deviation of gaussian noise
	Seed        uint32  `json:"seed"`        // Random seed, 0 picks a random one. Image IDs are added to it
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpAddNoiseDefault() }) } // register the operator for JSON decoding

func NewOpAddNoiseDefault() *OpAddNoise { return NewOpAddNoise(NoiseSaltPepper, 0.1, 0, 255, 20, 0) }

func NewOpAddNoise(model string, probability, low, high, sigma float64, seed uint32) *OpAddNoise {
	op := OpAddNoise{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "addNoise", Active: true}},
		Model:       model,
		Probability: probability,
		Low:         low,
		High:        high,
		Sigma:       sigma,
		Seed:        seed,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpAddNoise) UnmarshalJSON(data []byte) error {
	type defaults OpAddNoise
	def := defaults(*NewOpAddNoiseDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpAddNoise(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpAddNoise) Apply(f *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	seed := op.Seed
	if seed != 0 {
		seed += uint32(f.ID)
	}
	switch strings.ToLower(op.Model) {
	case strings.ToLower(NoiseSaltPepper):
		fmt.Fprintf(c.Log, "%d: Adding salt and pepper noise with probability %.3g\n", f.ID, op.Probability)
		return gray.AddSaltPepper(f, op.Probability, op.Low, op.High, seed)
	case NoiseGaussian:
		fmt.Fprintf(c.Log, "%d: Adding gaussian noise with sigma %.3g\n", f.ID, op.Sigma)
		return gray.AddGaussian(f, op.Sigma, seed)
	}
	return nil, errors.Wrapf(gray.ErrInvalidParameter, "unknown noise model '%s'", op.Model)
}
