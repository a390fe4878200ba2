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

// Package sharpen provides operators for spatial convolution and Laplacian sharpening.
package sharpen

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/mlnoga/dipfilter/internal/ops"
	"github.com/mlnoga/dipfilter/internal/spatial"
)

// Convolves the image with a kernel given by name or by explicit rows. Takes one input, produces one output
type OpConvolve struct {
	ops.OpUnaryBase
	KernelName string      `json:"kernelName"` // identity, box, laplacian or gaussian; ignored if Rows is given
	Size       int         `json:"size"`       // Size of identity and box kernels
	Sigma      float64     `json:"sigma"`      // Standard deviation of gaussian kernels
	Rows       [][]float64 `json:"rows"`       // Explicit kernel weights
}

var _ ops.Operator = (*OpConvolve)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpConvolveDefault() }) } // register the operator for JSON decoding

func NewOpConvolveDefault() *OpConvolve { return NewOpConvolve("box", 3, 1, nil) }

func NewOpConvolve(kernelName string, size int, sigma float64, rows [][]float64) *OpConvolve {
	op := OpConvolve{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "convolve", Active: true}},
		KernelName:  kernelName,
		Size:        size,
		Sigma:       sigma,
		Rows:        rows,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpConvolve) UnmarshalJSON(data []byte) error {
	type defaults OpConvolve
	def := defaults(*NewOpConvolveDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpConvolve(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

// Returns the kernel this operator convolves with
func (op *OpConvolve) Kernel() (*spatial.Kernel, error) {
	if len(op.Rows) > 0 {
		return spatial.NewKernelFromRows(op.Rows)
	}
	return spatial.NamedKernel(op.KernelName, op.Size, op.Sigma)
}

func (op *OpConvolve) Apply(f *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	k, err := op.Kernel()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.Log, "%d: Convolving with %dx%d kernel [%v]\n", f.ID, k.Width, k.Height, k)
	return spatial.Convolve2D(f, k)
}

// Sharpens the image with the Laplacian. The result is in the [0,1] scale, unclamped.
// Takes one input, produces one output
type OpLaplacianSharpen struct {
	ops.OpUnaryBase
	LaplacianPattern string `json:"laplacianPattern"` // Optional file to save the Laplacian response to, %d expands to the image ID
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpLaplacianSharpenDefault() }) } // register the operator for JSON decoding

func NewOpLaplacianSharpenDefault() *OpLaplacianSharpen { return NewOpLaplacianSharpen("") }

func NewOpLaplacianSharpen(laplacianPattern string) *OpLaplacianSharpen {
	op := OpLaplacianSharpen{
		OpUnaryBase:      ops.OpUnaryBase{OpBase: ops.OpBase{Type: "laplacianSharpen", Active: true}},
		LaplacianPattern: laplacianPattern,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpLaplacianSharpen) UnmarshalJSON(data []byte) error {
	type defaults OpLaplacianSharpen
	def := defaults(*NewOpLaplacianSharpenDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpLaplacianSharpen(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpLaplacianSharpen) Apply(f *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	fmt.Fprintf(c.Log, "%d: Sharpening with the Laplacian\n", f.ID)
	sharpened, laplacian, err := spatial.LaplacianSharpen(f)
	if err != nil {
		return nil, err
	}
	if op.LaplacianPattern != "" {
		fileName := ops.ExpandPattern(op.LaplacianPattern, f.ID)
		min, max := laplacian.MinMax()
		fmt.Fprintf(c.Log, "%d: Writing Laplacian with range [%.4g,%.4g] to %s\n", f.ID, min, max, fileName)
		if err = laplacian.WriteFile(fileName, min, max); err != nil {
			return nil, errors.Wrapf(err, "writing Laplacian to %s", fileName)
		}
	}
	return sharpened, nil
}
