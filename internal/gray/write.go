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
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"
)

// Writes the image to a file, choosing the format from the suffix: .png, .jpg/.jpeg or .tif/.tiff.
// Samples are mapped from [min, max] to the output range, values outside are clipped.
func (f *Image) WriteFile(fileName string, min, max float64) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".png":
		err = f.WritePNG(writer, min, max)
	case ".jpg", ".jpeg":
		err = f.WriteJPG(writer, min, max, 95)
	case ".tif", ".tiff":
		err = f.WriteTIFF16(writer, min, max)
	default:
		err = errors.Errorf("unknown suffix for %s", fileName)
	}
	if err != nil {
		return err
	}
	return writer.Flush()
}

// Write a grayscale image to 8-bit PNG, mapping [min, max] to [0, 255]
func (f *Image) WritePNG(writer io.Writer, min, max float64) error {
	return png.Encode(writer, f.toGray8(min, max))
}

// Write a grayscale image to JPG, mapping [min, max] to [0, 255]
func (f *Image) WriteJPG(writer io.Writer, min, max float64, quality int) error {
	return jpeg.Encode(writer, f.toGray8(min, max), &jpeg.Options{Quality: quality})
}

// Write a grayscale image to 16-bit TIFF, mapping [min, max] to [0, 65535]
func (f *Image) WriteTIFF16(writer io.Writer, min, max float64) error {
	img := image.NewGray16(image.Rect(0, 0, f.Width, f.Height))
	scale := rangeScale(min, max)
	for y := 0; y < f.Height; y++ {
		yoffset := y * f.Width
		for x := 0; x < f.Width; x++ {
			gray := clampUnit((f.Data[yoffset+x] - min) * scale)
			img.SetGray16(x, y, color.Gray16{uint16(math.Round(gray * 65535))})
		}
	}
	return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Uncompressed, Predictor: false})
}

func (f *Image) toGray8(min, max float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	scale := rangeScale(min, max)
	for y := 0; y < f.Height; y++ {
		yoffset := y * f.Width
		for x := 0; x < f.Width; x++ {
			gray := clampUnit((f.Data[yoffset+x] - min) * scale)
			img.SetGray(x, y, color.Gray{boundedByte(gray * MaxIntensity)})
		}
	}
	return img
}

func rangeScale(min, max float64) float64 {
	if max-min == 0 {
		return 0
	}
	return 1 / (max - min)
}

// replace NaNs with zeros for export, else output breaks
func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
