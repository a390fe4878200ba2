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

// Package ops wraps the filters into composable image processing operators. Operators are
// serializable to JSON, and chain lazily via promises that materialize in parallel.
package ops

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
	"github.com/pkg/errors"

	"github.com/mlnoga/dipfilter/internal/gray"
)

// An execution context for operators
type Context struct {
	Log           io.Writer
	MemoryMB      int    // memory.TotalMemory()/1024/1024
	MaxThreads    int    `json:"maxThreads"`
	CPU           string // Processor brand name
	LogicalCores  int    // Number of logical processor cores
	RestrictPaths bool   // Only allow relative file names within the current directory tree
}

func NewContext(log io.Writer) *Context {
	return &Context{
		Log:          log,
		MemoryMB:     int(memory.TotalMemory() / 1024 / 1024),
		MaxThreads:   runtime.GOMAXPROCS(0),
		CPU:          cpuid.CPU.BrandName,
		LogicalCores: cpuid.CPU.LogicalCores,
	}
}

// A promise for an image. Returns a materialized image, or an error
type Promise func() (f *gray.Image, err error)

// Materializes all promises with given concurrency limit
func MaterializeAll(ins []Promise, maxThreads int, forget bool) (outs []*gray.Image, err error) {
	if len(ins) == 0 {
		return nil, nil
	}
	if maxThreads < 1 {
		maxThreads = 1
	}
	if !forget {
		outs = make([]*gray.Image, len(ins))
	}
	limiter := make(chan bool, maxThreads)
	errs := make(chan error, len(ins))
	for i, in := range ins {
		limiter <- true
		go func(i int, theIn Promise) {
			defer func() { <-limiter }()
			f, err := theIn() // materialize the promise
			if err != nil {
				errs <- err
				return
			}
			if !forget {
				outs[i] = f
			}
			errs <- nil
		}(i, in)
	}
	for i := 0; i < cap(limiter); i++ { // wait for goroutines to finish
		limiter <- true
	}
	for i := 0; i < len(ins); i++ { // collect errors
		e := <-errs
		if e != nil {
			if err == nil {
				err = e
			} else {
				err = errors.Errorf("%s; %s", err.Error(), e.Error())
			}
		}
	}
	return RemoveNils(outs), err
}

// Remove nils from an array of images, editing the underlying array in place
func RemoveNils(images []*gray.Image) []*gray.Image {
	o := 0
	for i := 0; i < len(images); i++ {
		if images[i] != nil {
			images[o] = images[i]
			o++
		}
	}
	for i := o; i < len(images); i++ {
		images[i] = nil
	}
	return images[:o]
}

// A general image processing operator: takes n promises as inputs,
// and produces m promises as output or an error
type Operator interface {
	GetType() string
	IsActive() bool
	MakePromises(ins []Promise, c *Context) (outs []Promise, err error)
}

// Base type for operators, including type information for JSON serializing/deserializing
type OpBase struct {
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

func (op *OpBase) GetType() string { return op.Type }
func (op *OpBase) IsActive() bool  { return op.Active }

// Factory method for operators. For JSON serializing/deserializing
type OperatorFactory func() Operator

var (
	factoriesMutex    sync.RWMutex
	operatorFactories = map[string]OperatorFactory{}
)

// Returns the operator factory for a given type string
func GetOperatorFactory(t string) OperatorFactory {
	factoriesMutex.RLock()
	defer factoriesMutex.RUnlock()
	return operatorFactories[t]
}

// Registers the type string of the operator produced by the given factory
func SetOperatorFactory(f OperatorFactory) {
	t := f().GetType()
	factoriesMutex.Lock()
	defer factoriesMutex.Unlock()
	if operatorFactories[t] != nil {
		panic(fmt.Sprintf("error: re-registering operator key %s\n", t))
	}
	operatorFactories[t] = f
}

// Returns the sorted type strings of all registered operators
func OperatorTypes() []string {
	factoriesMutex.RLock()
	defer factoriesMutex.RUnlock()
	types := make([]string, 0, len(operatorFactories))
	for t := range operatorFactories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Unmarshals a polymorphic operator from JSON, using the registered factory for its type
// to provide defaults for missing entries
func UnmarshalOperator(raw []byte) (Operator, error) {
	var base OpBase
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, err
	}
	factory := GetOperatorFactory(base.Type)
	if factory == nil {
		return nil, errors.Errorf("unknown operator type '%s' in raw JSON message '%s'", base.Type, string(raw))
	}
	op := factory()
	if err := json.Unmarshal(raw, op); err != nil {
		return nil, errors.Wrapf(err, "decoding %s operator", base.Type)
	}
	return op, nil
}

// A unary image processing operator: given n promises as inputs,
// applies itself to each of them individually and returns n output promises or an error
type OperatorUnary interface {
	Operator
	Apply(f *gray.Image, c *Context) (fOut *gray.Image, err error)
}

// Abstract base type for unary operators. Uses golang workaround for abstract classes
// from https://golangbyexample.com/go-abstract-class/
type OpUnaryBase struct {
	OpBase
	Apply func(f *gray.Image, c *Context) (fOut *gray.Image, err error) `json:"-"`
}

func (op *OpUnaryBase) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) == 0 {
		return nil, errors.Errorf("%s operator with %d inputs", op.Type, len(ins))
	}
	if !op.Active {
		return ins, nil
	}
	outs = make([]Promise, len(ins))
	for i, in := range ins {
		outs[i] = op.MakePromise(in, c)
	}
	return outs, nil
}

func (op *OpUnaryBase) MakePromise(in Promise, c *Context) (out Promise) {
	return func() (f *gray.Image, err error) {
		fIn, err := in() // materialize input promise
		if err != nil {
			return nil, err
		}
		if f, err = op.Apply(fIn, c); err != nil { // apply unary operator
			return nil, errors.Wrapf(err, "%d: %s", fIn.ID, op.Type)
		}
		return f, nil // wrap output in promise
	}
}

// Applies a sequence of operators to a promise. Number of inputs, outputs as per the chained steps
type OpSequence struct {
	OpBase
	Steps    []Operator        `json:"-"`     // the actual steps
	StepsRaw []json.RawMessage `json:"steps"` // helper for unmarshaling
}

func init() { SetOperatorFactory(func() Operator { return NewOpSequenceDefault() }) } // register the operator for JSON decoding

func NewOpSequenceDefault() *OpSequence { return NewOpSequence() }

func NewOpSequence(steps ...Operator) *OpSequence {
	return &OpSequence{
		OpBase: OpBase{Type: "seq", Active: true},
		Steps:  steps,
	}
}

// Unmarshals a sequence of polymorphic operators from JSON.
// Uses temporary op.StepsRaw inspired by https://alexkappa.medium.com/json-polymorphism-in-go-4cade1e58ed1
func (op *OpSequence) UnmarshalJSON(b []byte) error {
	type alias OpSequence
	def := alias(*NewOpSequenceDefault())
	if err := json.Unmarshal(b, &def); err != nil {
		return err
	}
	*op = OpSequence(def)

	op.Steps = nil
	for _, raw := range op.StepsRaw {
		step, err := UnmarshalOperator(raw)
		if err != nil {
			return err
		}
		op.Steps = append(op.Steps, step)
	}
	op.StepsRaw = nil
	return nil
}

// Appends one or more operators to the existing sequence
func (op *OpSequence) Append(steps ...Operator) {
	op.Steps = append(op.Steps, steps...)
}

// Marshals a sequence with polymorphic operators to JSON.
// Uses the actual op.Steps with label "steps", and ignores op.StepsRaw
func (op *OpSequence) MarshalJSON() (bs []byte, err error) {
	buf := bytes.Buffer{}
	buf.WriteString("{\"type\":")
	inner, err := json.Marshal(op.Type)
	if err != nil {
		return nil, err
	}
	buf.Write(inner)
	fmt.Fprintf(&buf, ",\"active\":%v,\"steps\":", op.Active)
	steps := op.Steps
	if steps == nil {
		steps = []Operator{}
	}
	inner, err = json.Marshal(steps)
	if err != nil {
		return nil, err
	}
	buf.Write(inner)
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

func (op *OpSequence) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if !op.Active {
		return ins, nil
	}
	return op.applyRecursive(op.Steps, ins, c)
}

func (op *OpSequence) applyRecursive(steps []Operator, ins []Promise, c *Context) (outs []Promise, err error) {
	if len(steps) == 0 {
		return ins, nil
	}
	ins, err = steps[0].MakePromises(ins, c)
	if err != nil {
		return nil, err
	}
	return op.applyRecursive(steps[1:], ins, c)
}

// Applies a single operator to each input. Takes n inputs, produces n outputs
type OpForEach struct {
	OpBase
	Operation    Operator        `json:"-"`
	OperationRaw json.RawMessage `json:"operation"` // helper for unmarshaling
}

func init() { SetOperatorFactory(func() Operator { return NewOpForEachDefault() }) } // register the operator for JSON decoding

func NewOpForEachDefault() *OpForEach { return NewOpForEach(nil) }

func NewOpForEach(operation Operator) *OpForEach {
	return &OpForEach{
		OpBase:    OpBase{Type: "forEach", Active: operation != nil},
		Operation: operation,
	}
}

// Unmarshals the embedded polymorphic operation from JSON
func (op *OpForEach) UnmarshalJSON(b []byte) error {
	type alias OpForEach
	def := alias(*NewOpForEachDefault())
	def.Active = true
	if err := json.Unmarshal(b, &def); err != nil {
		return err
	}
	*op = OpForEach(def)

	op.Operation = nil
	if len(op.OperationRaw) > 0 && string(op.OperationRaw) != "null" {
		operation, err := UnmarshalOperator(op.OperationRaw)
		if err != nil {
			return err
		}
		op.Operation = operation
	}
	op.OperationRaw = nil
	return nil
}

// Marshals the operator including the embedded operation
func (op *OpForEach) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string   `json:"type"`
		Active    bool     `json:"active"`
		Operation Operator `json:"operation"`
	}{op.Type, op.Active, op.Operation})
}

// Applies the operation to each input individually
func (op *OpForEach) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) == 0 || !op.Active {
		return ins, nil
	}
	if op.Operation == nil {
		return nil, errors.Errorf("%s operator has no operation to apply", op.Type)
	}
	for _, in := range ins {
		out, err := op.Operation.MakePromises([]Promise{in}, c)
		if err != nil {
			return nil, err
		}
		if len(out) != 1 {
			return nil, errors.Errorf("%s operator needs exactly one promise from embedded operation", op.Type)
		}
		outs = append(outs, out[0])
	}
	return outs, nil
}
