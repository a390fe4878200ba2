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
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/mlnoga/dipfilter/internal/stats"
)

// Load a single image from a single filename. Takes zero inputs, produces one output
type OpLoad struct {
	OpBase
	ID       int    `json:"id"`
	FileName string `json:"fileName"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpLoadDefault() }) } // register the operator for JSON decoding

func NewOpLoadDefault() *OpLoad { return NewOpLoad(0, "") }

func NewOpLoad(id int, fileName string) *OpLoad {
	return &OpLoad{
		OpBase:   OpBase{Type: "load", Active: true},
		ID:       id,
		FileName: fileName,
	}
}

// Load image from a file. Ignores any inputs provided
func (op *OpLoad) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) > 0 {
		return nil, errors.Errorf("%s operator with non-zero input", op.Type)
	}
	if c.RestrictPaths && !isPathAllowed(op.FileName) {
		return nil, errors.Errorf("file name %s outside current directory tree, aborting", op.FileName)
	}

	out := func() (f *gray.Image, err error) {
		// no inputs to materialize
		return op.Apply(nil, c)
	}
	return []Promise{out}, nil
}

// Returns true if a path is considered safe, i.e. not an absolute path,
// and doesn't contain the ".." characters to change to a parent directory
func isPathAllowed(p string) bool {
	if filepath.IsAbs(p) { // relative paths only
		return false
	}
	if strings.Contains(p, "..") { // no going outside the tree
		return false
	}
	return true
}

func (op *OpLoad) Apply(f *gray.Image, c *Context) (result *gray.Image, err error) {
	f, err = gray.ReadFile(op.FileName, op.ID)
	if err != nil {
		return nil, err
	}

	s := stats.NewStats(f.Data)
	warning := ""
	if s.Max-s.Min < 1e-8 {
		warning = "; WARNING low dynamic range"
	}

	fmt.Fprintf(c.Log, "%d: Loaded %s image with %v from %s%s\n",
		f.ID, f.DimensionsToString(), s, f.FileName, warning)
	return f, nil
}

// Load many images from a slice of filename patterns with wildcards.
// Takes zero inputs, produces n outputs
type OpLoadMany struct {
	OpBase
	FilePatterns []string `json:"filePatterns"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpLoadManyDefault() }) } // register the operator for JSON decoding

func NewOpLoadManyDefault() *OpLoadMany { return NewOpLoadMany(nil) }

func NewOpLoadMany(filePatterns []string) *OpLoadMany {
	return &OpLoadMany{
		OpBase:       OpBase{Type: "loadMany", Active: true},
		FilePatterns: filePatterns,
	}
}

// Turn filename wildcards into list of file load operators
func (op *OpLoadMany) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) > 0 {
		return nil, errors.Errorf("%s operator with non-zero input", op.Type)
	}
	for _, pattern := range op.FilePatterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if c.RestrictPaths && !isPathAllowed(match) {
				fmt.Fprintf(c.Log, "Pattern match outside current directory tree, skipping\n")
				continue
			}
			opLoad := NewOpLoad(len(outs), match)
			promises, err := opLoad.MakePromises(nil, c)
			if err != nil {
				return nil, err
			}
			outs = append(outs, promises...)
		}
	}
	if len(outs) == 0 {
		return nil, errors.Errorf("%s operator with no files to load from pattern %v", op.Type, op.FilePatterns)
	}
	fmt.Fprintf(c.Log, "Found %d files.\n", len(outs))
	return outs, nil
}

// Output intensity range modes for saving
const (
	RangeAuto  = "auto"  // map the image minimum and maximum to black and white
	RangeUnit  = "unit"  // map [0,1] to black and white
	RangeBytes = "bytes" // map [0,255] to black and white
)

// Saves given promise under a given filename, with pattern expansion for %d based on the image id.
// Takes one input, produces one output (the materialized but unchanged input)
type OpSave struct {
	OpUnaryBase
	FilePattern string `json:"filePattern"`
	Range       string `json:"range"` // one of auto, unit or bytes
}

func init() { SetOperatorFactory(func() Operator { return NewOpSaveDefault() }) } // register the operator for JSON decoding

func NewOpSaveDefault() *OpSave { return NewOpSave("", RangeAuto) }

func NewOpSave(filenamePattern, rangeMode string) *OpSave {
	op := OpSave{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "save", Active: filenamePattern != ""}},
		FilePattern: filenamePattern,
		Range:       rangeMode,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpSave) UnmarshalJSON(data []byte) error {
	type defaults OpSave
	def := defaults(*NewOpSaveDefault())
	def.Active = true
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpSave(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

// Expands %d in the pattern with the image ID
func ExpandPattern(pattern string, id int) string {
	if strings.Contains(pattern, "%d") {
		return fmt.Sprintf(pattern, id)
	}
	return pattern
}

// Returns the intensity range mapped to black and white for the given mode
func OutputRange(f *gray.Image, mode string) (min, max float64, err error) {
	switch strings.ToLower(mode) {
	case "", RangeAuto:
		min, max = f.MinMax()
		return min, max, nil
	case RangeUnit:
		return 0, 1, nil
	case RangeBytes:
		return gray.MinIntensity, gray.MaxIntensity, nil
	}
	return 0, 0, errors.Wrapf(gray.ErrInvalidParameter, "unknown output range '%s'", mode)
}

func (op *OpSave) Apply(f *gray.Image, c *Context) (result *gray.Image, err error) {
	if !op.Active || op.FilePattern == "" {
		return f, nil
	}
	fileName := ExpandPattern(op.FilePattern, f.ID)
	if c.RestrictPaths && !isPathAllowed(fileName) {
		return nil, errors.Errorf("file name %s outside current directory tree", fileName)
	}
	min, max, err := OutputRange(f, op.Range)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(c.Log, "%d: Writing %s pixel image with range [%.4g,%.4g] to %s\n", f.ID, f.DimensionsToString(), min, max, fileName)
	if err = f.WriteFile(fileName, min, max); err != nil {
		return nil, errors.Wrapf(err, "writing to file %s", fileName)
	}
	return f, nil
}
