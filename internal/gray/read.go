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
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff" // register decoder
)

// Reads a PNG, JPEG, GIF or TIFF file into a grayscale image.
// Samples keep the native scale of the file: [0,255] for 8-bit and [0,65535] for 16-bit data.
// Color images are reduced to luminance.
func ReadFile(fileName string, id int) (*Image, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := Read(bufio.NewReader(file))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", fileName)
	}
	img.ID, img.FileName = id, fileName
	return img, nil
}

// Reads an image in any registered format from the reader, see ReadFile
func Read(r io.Reader) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(src), nil
}

// Converts a golang image into a grayscale image, see ReadFile for the sample scale
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	width, height := b.Dx(), b.Dy()
	img := NewImage(width, height)
	bitpix := colorModelToBitpix(src.ColorModel())

	switch s := src.(type) {
	case *image.Gray:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Data[y*width+x] = float64(s.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
	case *image.Gray16:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Data[y*width+x] = float64(s.Gray16At(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
	default:
		// luminance from 16-bit premultiplied channels, rescaled to the source depth
		scale := 1.0
		if bitpix == 8 {
			scale = 1.0 / 257
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
				lum := 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(bl)
				img.Data[y*width+x] = lum * scale
			}
		}
	}
	return img
}

// Returns the bit depth per channel of a color model, assuming 8 bits for unknown models
func colorModelToBitpix(m color.Model) int {
	switch m {
	case color.RGBA64Model, color.NRGBA64Model, color.Alpha16Model, color.Gray16Model:
		return 16
	default:
		return 8
	}
}
