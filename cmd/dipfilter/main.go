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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
	"github.com/pkg/errors"

	dip "github.com/mlnoga/dipfilter/internal"
	"github.com/mlnoga/dipfilter/internal/freq"
	"github.com/mlnoga/dipfilter/internal/ops"
	"github.com/mlnoga/dipfilter/internal/ops/denoise"
	"github.com/mlnoga/dipfilter/internal/ops/freqdomain"
	"github.com/mlnoga/dipfilter/internal/ops/sharpen"
	"github.com/mlnoga/dipfilter/internal/ops/tone"
	"github.com/mlnoga/dipfilter/internal/rest"
	"github.com/mlnoga/dipfilter/internal/spatial"
)

const version = "0.1.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var out = flag.String("out", "out%d.png", "save output to `file`, %d expands to the image ID. Suffix selects PNG, JPEG or 16-bit TIFF")
var outRange = flag.String("range", "auto", "intensity range mapped to black and white on output: auto=image min and max, unit=[0,1], bytes=[0,255]")
var log = flag.String("log", "%auto", "save log output to `file`. `%auto` replaces suffix of output file with .log, empty for none")
var csv = flag.String("csv", "", "save statistics or histogram as CSV to `file`, %d expands to the image ID")

var size = flag.Int("size", 3, "window size for mean, median, adaptive median and adaptive local noise reduction filters")
var maxSize = flag.Int("maxSize", 7, "maximum window size for the adaptive median filter")
var meanType = flag.String("meanType", "geometric", "mean filter type, arithmetic or geometric")

var kernel = flag.String("kernel", "box", "convolution kernel: identity, box, laplacian or gaussian")
var kernelSize = flag.Int("kernelSize", 3, "size of identity and box kernels")
var kernelSigma = flag.Float64("kernelSigma", 1, "standard deviation of gaussian kernels")
var kernelFile = flag.String("kernelFile", "", "read convolution kernel from JSON `file` with an array of rows, overrides -kernel")
var laplacian = flag.String("laplacian", "", "save the Laplacian response when sharpening to `file`, %d expands to the image ID")

var family = flag.String("family", "lowpass", "frequency filter family: lowpass, highpass, bandreject, bandpass, notchreject or notchpass")
var kind = flag.String("kind", "butterworth", "frequency filter kind: ideal, butterworth or gaussian")
var d0 = flag.Float64("d0", 160, "cutoff frequency, as radius in the padded frequency grid")
var order = flag.Float64("n", 2, "order of butterworth filters")
var width = flag.Float64("width", 20, "width of bandreject and bandpass filters")
var uk = flag.Float64("uk", 0, "row offset of the notch pair from the origin")
var vk = flag.Float64("vk", 0, "column offset of the notch pair from the origin")
var spectrum = flag.String("spectrum", "", "save log power spectrum heatmap to PNG `file`, %d expands to the image ID")
var filter = flag.String("filter", "", "save transfer function heatmap to PNG `file`, %d expands to the image ID")

var varG = flag.Float64("varG", 0, "overall noise variance for adaptive local noise reduction, if no -region is given")
var region = flag.String("region", "", "near-uniform region `x0,y0,x1,y1` to estimate the noise variance from")
var fitHist = flag.Bool("fitHist", false, "estimate the noise variance by fitting a normal distribution to the region histogram")

var noise = flag.String("noise", "saltPepper", "noise model to add: saltPepper or gaussian")
var prob = flag.Float64("prob", 0.1, "share of impulse samples for salt and pepper noise")
var noiseSigma = flag.Float64("noiseSigma", 20, "standard deviation of gaussian noise")
var seed = flag.Uint("seed", 0, "random seed for noise, 0=random")

var bins = flag.Int("bins", 0, "number of histogram bins over the image range, 0=256 levels of the 8-bit range")
var job = flag.String("job", "", "read operator sequence for the run command from JSON `file`")

var addr = flag.String("addr", ":8080", "listen address for the serve command")
var chroot = flag.String("chroot", "", "change filesystem root to `dir` before serving, requires root")
var setuid = flag.Int("setuid", -1, "change user id before serving, -1=keep")

func main() {
	logWriter := dip.Log
	start := time.Now()
	flag.Usage = func() {
		fmt.Fprintf(logWriter, `dipfilter Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] command (img0.png ... imgn.png)

Commands:
  stats     Show image statistics, optionally save them to -csv
  hist      Show intensity histogram peak, optionally save histogram to -csv
  equalize  Equalize the intensity histogram
  convolve  Convolve with the -kernel or -kernelFile kernel
  sharpen   Sharpen with the Laplacian
  mean      Apply arithmetic or geometric mean filter
  median    Apply median filter
  amedian   Apply adaptive median filter
  lnr       Apply adaptive local noise reduction filter
  freq      Filter in the frequency domain
  spectrum  Save the log power spectrum
  noise     Add synthetic noise
  run       Apply the operator sequence from -job
  serve     Serve the REST API
  legal     Show license and attribution information
  version   Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Initialize logging to file in addition to stdout, if selected
	if *log == "%auto" {
		*log = ""
		if *out != "" {
			base := strings.ReplaceAll(*out, "%d", "")
			*log = strings.TrimSuffix(base, filepath.Ext(base)) + ".log"
		}
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}
	if *log != "" && args[0] != "legal" && args[0] != "version" && args[0] != "help" {
		if err := dip.LogAlsoToFile(*log); err != nil {
			dip.LogFatalf("Unable to open logfile '%s'\n", *log)
		}
	}

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			dip.LogFatal("Could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			dip.LogFatal("Could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	var err error
	switch args[0] {
	case "legal":
		cmdLegal()
		return
	case "version":
		cmdVersion()
		return
	case "help", "?":
		flag.Usage()
		return
	case "serve":
		err = cmdServe()
	default:
		var op ops.Operator
		op, err = operatorForCommand(args[0])
		if err == nil {
			err = runOperator(op, args[0], args[1:])
		}
	}

	fmt.Fprintf(logWriter, "\nDone after %v\n", time.Since(start))

	// Store memory profile if flagged
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			dip.LogFatal("Could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			dip.LogFatal("Could not write allocation profile: ", err)
		}
	}
	if err != nil {
		dip.LogFatalf("Error: %s\n", err.Error())
	}
	dip.LogSync()
}

// Parses the flags into the operator for the given command
func operatorForCommand(cmd string) (ops.Operator, error) {
	switch cmd {
	case "stats":
		return ops.NewOpStats(*csv), nil
	case "hist":
		return ops.NewOpHistogram(*bins, *csv), nil
	case "equalize":
		return tone.NewOpEqualize(true), nil
	case "convolve":
		var rows [][]float64
		if *kernelFile != "" {
			var err error
			if rows, err = readKernelFile(*kernelFile); err != nil {
				return nil, err
			}
		}
		return sharpen.NewOpConvolve(*kernel, *kernelSize, *kernelSigma, rows), nil
	case "sharpen":
		return sharpen.NewOpLaplacianSharpen(*laplacian), nil
	case "mean":
		mt, err := spatial.ParseMeanType(*meanType)
		if err != nil {
			return nil, err
		}
		return denoise.NewOpMean(*size, mt), nil
	case "median":
		return denoise.NewOpMedian(*size), nil
	case "amedian":
		return denoise.NewOpAdaptiveMedian(*size, *maxSize), nil
	case "lnr":
		r, err := parseRect(*region)
		if err != nil {
			return nil, err
		}
		op := denoise.NewOpAdaptiveLNR(*size, *varG, r)
		op.FitHistogram = *fitHist
		return op, nil
	case "freq":
		f, err := freq.ParseFamily(*family)
		if err != nil {
			return nil, err
		}
		k, err := freq.ParseKind(*kind)
		if err != nil {
			return nil, err
		}
		p := freq.Params{D0: *d0, N: *order, Width: *width, UK: *uk, VK: *vk}
		if err := p.Validate(f, k); err != nil {
			return nil, err
		}
		op := freqdomain.NewOpFreqFilter(f, k, p)
		op.SpectrumPattern, op.FilterPattern = *spectrum, *filter
		return op, nil
	case "spectrum":
		return freqdomain.NewOpSpectrum(true), nil
	case "noise":
		return tone.NewOpAddNoise(*noise, *prob, 0, 255, *noiseSigma, uint32(*seed)), nil
	case "run":
		if *job == "" {
			return nil, errors.New("run command needs a -job file")
		}
		data, err := os.ReadFile(*job)
		if err != nil {
			return nil, err
		}
		return ops.UnmarshalOperator(data)
	}
	return nil, errors.Errorf("unknown command '%s'", cmd)
}

// Applies the operator to all files matching the patterns, saving results unless the command only reports
func runOperator(op ops.Operator, cmd string, patterns []string) error {
	c := ops.NewContext(dip.Log)
	seq := ops.NewOpSequence(ops.NewOpLoadMany(patterns), op)
	if cmd != "stats" && cmd != "hist" {
		rangeMode := *outRange
		if cmd == "spectrum" {
			rangeMode = ops.RangeAuto
		}
		seq.Append(ops.NewOpSave(*out, rangeMode))
	}

	m, err := json.MarshalIndent(seq, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Log, "Running with these settings:\n%s\n", string(m))

	promises, err := seq.MakePromises(nil, c)
	if err != nil {
		return err
	}
	_, err = ops.MaterializeAll(promises, c.MaxThreads, true)
	return err
}

// Reads a kernel as JSON array of rows
func readKernelFile(fileName string) ([][]float64, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrapf(err, "parsing kernel file %s", fileName)
	}
	return rows, nil
}

// Parses a rectangle given as x0,y0,x1,y1. The empty string yields the empty rectangle
func parseRect(s string) (denoise.Rect, error) {
	if s == "" {
		return denoise.Rect{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return denoise.Rect{}, errors.Errorf("region '%s' needs four comma separated values", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return denoise.Rect{}, errors.Wrapf(err, "region '%s'", s)
		}
		v[i] = n
	}
	return denoise.Rect{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}, nil
}

func cmdServe() error {
	if err := rest.MakeSandbox(*chroot, *setuid); err != nil {
		return err
	}
	dip.LogPrintf("Serving on %s\n", *addr)
	return rest.Serve(*addr)
}

func cmdVersion() {
	dip.LogPrintf("dipfilter version %s, %s on %s/%s\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	dip.LogPrintf("CPU %s with %d logical cores, AVX2 %v, %d MiB physical memory\n",
		cpuid.CPU.BrandName, cpuid.CPU.LogicalCores, cpuid.CPU.AVX2(), memory.TotalMemory()/1024/1024)
}
