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
	"bufio"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette stops for false color rendering, from low to high values
var heatmapStops = []colorful.Color{
	{R: 0.00, G: 0.00, B: 0.00},
	{R: 0.15, G: 0.05, B: 0.45},
	{R: 0.70, G: 0.15, B: 0.45},
	{R: 0.98, G: 0.55, B: 0.15},
	{R: 0.99, G: 0.99, B: 0.75},
}

// Maps t in [0,1] onto the heatmap palette, blending neighbouring stops in HCL space
func HeatmapColor(t float64) colorful.Color {
	if math.IsNaN(t) || t <= 0 {
		return heatmapStops[0]
	}
	if t >= 1 {
		return heatmapStops[len(heatmapStops)-1]
	}
	pos := t * float64(len(heatmapStops)-1)
	i := int(pos)
	return heatmapStops[i].BlendHcl(heatmapStops[i+1], pos-float64(i)).Clamped()
}

// Renders a real valued array of given shape as false color image. Values are mapped from their
// finite minimum and maximum onto the palette, non-finite values are floored to the finite minimum.
// Suited for log power spectra and transfer functions.
func Heatmap(data []float64, width, height int) *image.RGBA {
	min, max := math.Inf(1), math.Inf(-1)
	for _, d := range data {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	scale := 0.0
	if max > min {
		scale = 1 / (max - min)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d := data[y*width+x]
			t := 0.0
			if !math.IsNaN(d) && !math.IsInf(d, -1) {
				t = (d - min) * scale
			}
			if math.IsInf(d, 1) {
				t = 1
			}
			r, g, b := HeatmapColor(t).RGB255()
			img.SetRGBA(x, y, color.RGBA{r, g, b, 255})
		}
	}
	return img
}

// Writes a real valued array of given shape as false color PNG, see Heatmap
func WriteHeatmapPNG(writer io.Writer, data []float64, width, height int) error {
	return png.Encode(writer, Heatmap(data, width, height))
}

// Writes a real valued array of given shape as false color PNG file, see Heatmap
func WriteHeatmapPNGToFile(fileName string, data []float64, width, height int) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := WriteHeatmapPNG(writer, data, width, height); err != nil {
		return err
	}
	return writer.Flush()
}
