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

// Package freqdomain provides operators for frequency domain filtering and spectrum display.
package freqdomain

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/mlnoga/dipfilter/internal/freq"
	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/mlnoga/dipfilter/internal/ops"
)

// Filters the image in the frequency domain. Optionally saves the power spectrum and the
// transfer function as false color heatmaps. Takes one input, produces one output
type OpFreqFilter struct {
	ops.OpUnaryBase
	Family          freq.Family `json:"family"`
	Kind            freq.Kind   `json:"kind"`
	freq.Params                 // d0, n, width, uk, vk
	SpectrumPattern string      `json:"spectrumPattern"` // Optional PNG file for the log power spectrum, %d expands to the image ID
	FilterPattern   string      `json:"filterPattern"`   // Optional PNG file for the transfer function magnitude
}

var _ ops.Operator = (*OpFreqFilter)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpFreqFilterDefault() }) } // register the operator for JSON decoding

func NewOpFreqFilterDefault() *OpFreqFilter {
	return NewOpFreqFilter(freq.Lowpass, freq.Butterworth, freq.DefaultParams())
}

func NewOpFreqFilter(family freq.Family, kind freq.Kind, params freq.Params) *OpFreqFilter {
	op := OpFreqFilter{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "freqFilter", Active: true}},
		Family:      family,
		Kind:        kind,
		Params:      params,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpFreqFilter) UnmarshalJSON(data []byte) error {
	type defaults OpFreqFilter
	def := defaults(*NewOpFreqFilterDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpFreqFilter(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpFreqFilter) Apply(f *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	fmt.Fprintf(c.Log, "%d: Applying %s %s filter with %+v\n", f.ID, op.Kind, op.Family, op.Params)
	res, err := freq.Apply(f, op.Family, op.Kind, op.Params)
	if err != nil {
		return nil, err
	}
	if err = writeHeatmap(op.SpectrumPattern, "power spectrum", f.ID, res.Spectrum, res.Q, res.P, c); err != nil {
		return nil, err
	}
	if err = writeHeatmap(op.FilterPattern, "transfer function", f.ID, res.H, res.Q, res.P, c); err != nil {
		return nil, err
	}
	return res.G, nil
}

// Replaces the image with its log power spectrum, zero frequency at the center. The spectrum has twice
// the width and height of the image. Bins without power are set to the smallest finite value.
// Takes one input, produces one output
type OpSpectrum struct {
	ops.OpUnaryBase
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpSpectrumDefault() }) } // register the operator for JSON decoding

func NewOpSpectrumDefault() *OpSpectrum { return NewOpSpectrum(true) }

func NewOpSpectrum(active bool) *OpSpectrum {
	op := OpSpectrum{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "spectrum", Active: active}},
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpSpectrum) UnmarshalJSON(data []byte) error {
	type defaults OpSpectrum
	def := defaults(*NewOpSpectrumDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpSpectrum(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpSpectrum) Apply(f *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	fmt.Fprintf(c.Log, "%d: Computing log power spectrum\n", f.ID)
	spectrum, p, q, err := freq.LogPowerSpectrum(f)
	if err != nil {
		return nil, err
	}
	FloorNonFinite(spectrum)
	result, err = gray.NewImageFromData(q, p, spectrum)
	if err != nil {
		return nil, err
	}
	result.ID, result.FileName = f.ID, f.FileName
	return result, nil
}

// Replaces -Inf by the smallest finite value and +Inf by the largest, in place
func FloorNonFinite(data []float64) {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			min, max = math.Min(min, v), math.Max(max, v)
		}
	}
	if math.IsInf(min, 1) {
		min, max = 0, 0
	}
	for i, v := range data {
		if math.IsInf(v, -1) {
			data[i] = min
		} else if math.IsInf(v, 1) {
			data[i] = max
		}
	}
}

func writeHeatmap(pattern, what string, id int, data []float64, width, height int, c *ops.Context) error {
	if pattern == "" {
		return nil
	}
	fileName := ops.ExpandPattern(pattern, id)
	fmt.Fprintf(c.Log, "%d: Writing %dx%d %s heatmap to %s\n", id, width, height, what, fileName)
	if err := gray.WriteHeatmapPNGToFile(fileName, data, width, height); err != nil {
		return errors.Wrapf(err, "writing %s to %s", what, fileName)
	}
	return nil
}
