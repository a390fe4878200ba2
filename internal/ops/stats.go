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

package ops

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/mlnoga/dipfilter/internal/stats"
)

// Logs basic statistics of each image, and optionally appends them to a CSV file.
// Takes one input, produces one output (the unchanged input)
type OpStats struct {
	OpUnaryBase
	FileName    string     `json:"fileName"` // CSV file, none if empty
	mutex       sync.Mutex `json:"-"`
	wroteHeader bool       `json:"-"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpStatsDefault() }) } // register the operator for JSON decoding

func NewOpStatsDefault() *OpStats { return NewOpStats("") }

func NewOpStats(fileName string) *OpStats {
	op := &OpStats{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "stats", Active: true}},
		FileName:    fileName,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpStats) UnmarshalJSON(data []byte) error {
	type defaults struct {
		OpBase
		FileName string `json:"fileName"`
	}
	def := defaults{OpBase: NewOpStatsDefault().OpBase}
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	op.OpBase = def.OpBase
	op.FileName = def.FileName
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpStats) Apply(f *gray.Image, c *Context) (result *gray.Image, err error) {
	s := stats.NewStats(f.Data)
	fmt.Fprintf(c.Log, "%d: %s %s\n", f.ID, f.DimensionsToString(), s)
	if op.FileName == "" {
		return f, nil
	}
	if c.RestrictPaths && !isPathAllowed(op.FileName) {
		return nil, errors.Errorf("file name %s outside current directory tree", op.FileName)
	}

	op.mutex.Lock()         // lock so a single thread is active
	defer op.mutex.Unlock() // always release lock on exit

	flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if !op.wroteHeader {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	file, err := os.OpenFile(op.FileName, flags, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening statistics file %s", op.FileName)
	}
	defer file.Close()

	if !op.wroteHeader {
		fmt.Fprintf(file, "ID,FileName,Width,Height,%s\n", s.ToCSVHeader())
		op.wroteHeader = true
	}
	if _, err = fmt.Fprintf(file, "%d,%q,%d,%d,%s\n", f.ID, f.FileName, f.Width, f.Height, s.ToCSVLine()); err != nil {
		return nil, errors.Wrapf(err, "writing statistics file %s", op.FileName)
	}
	return f, nil
}

// Computes the intensity histogram of each image, logs its peak and optionally writes it to a CSV file.
// With zero bins, samples are rounded to the 256 levels of the 8-bit range; otherwise the given number
// of bins spans the image minimum to maximum. Takes one input, produces one output (the unchanged input)
type OpHistogram struct {
	OpUnaryBase
	Bins        int    `json:"bins"`
	FilePattern string `json:"filePattern"` // CSV file, %d expands to the image ID; none if empty
}

func init() { SetOperatorFactory(func() Operator { return NewOpHistogramDefault() }) } // register the operator for JSON decoding

func NewOpHistogramDefault() *OpHistogram { return NewOpHistogram(0, "") }

func NewOpHistogram(bins int, filePattern string) *OpHistogram {
	op := OpHistogram{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "histogram", Active: true}},
		Bins:        bins,
		FilePattern: filePattern,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpHistogram) UnmarshalJSON(data []byte) error {
	type defaults OpHistogram
	def := defaults(*NewOpHistogramDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpHistogram(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpHistogram) Apply(f *gray.Image, c *Context) (result *gray.Image, err error) {
	var bins []int32
	min, max := float64(gray.MinIntensity), float64(gray.MaxIntensity)
	if op.Bins <= 0 {
		bins = stats.IntensityHistogram(f)
	} else {
		min, max = f.MinMax()
		bins = make([]int32, op.Bins)
		stats.Histogram(f.Data, min, max, bins)
	}
	if len(bins) > 1 && max > min {
		peak, height := stats.GetPeak(bins, min, max)
		fmt.Fprintf(c.Log, "%d: Histogram with %d bins over [%.4g,%.4g] peaks at %.4g with %.0f samples\n",
			f.ID, len(bins), min, max, peak, height)
	}
	if op.FilePattern == "" {
		return f, nil
	}

	fileName := ExpandPattern(op.FilePattern, f.ID)
	if c.RestrictPaths && !isPathAllowed(fileName) {
		return nil, errors.Errorf("file name %s outside current directory tree", fileName)
	}
	file, err := os.Create(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "creating histogram file %s", fileName)
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "Value,Count\n")
	binWidth := 1.0
	if len(bins) > 1 {
		binWidth = (max - min) / float64(len(bins)-1)
	}
	for i, b := range bins {
		fmt.Fprintf(w, "%.6g,%d\n", min+float64(i)*binWidth, b)
	}
	if err = w.Flush(); err != nil {
		return nil, errors.Wrapf(err, "writing histogram file %s", fileName)
	}
	return f, nil
}
