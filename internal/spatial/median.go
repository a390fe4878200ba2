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

package spatial

import (
	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/mlnoga/dipfilter/internal/qsort"
	"github.com/pkg/errors"
)

// Applies an s x s median filter. Windows are truncated at the image borders, and the median of
// an even number of samples is the mean of the two middle ones. Size 1 is the identity.
// Images containing NaN are rejected with gray.ErrDegenerateInput.
func MedianFilter(img *gray.Image, s int) (*gray.Image, error) {
	if err := checkWindowSize(s, false); err != nil {
		return nil, err
	}
	if err := checkNoNaN(img); err != nil {
		return nil, err
	}
	return applyWindowFunction(img, s, func(window []float64, center float64) float64 {
		return qsort.MedianFloat64(window)
	}), nil
}

// Applies the adaptive median filter. Starting at window size s, each pixel's window grows by 2
// until its median lies strictly between window minimum and maximum. The pixel is then kept if it
// also lies strictly between them, else replaced by the median. If the window exceeds sMax first,
// the last median is emitted.
func AdaptiveMedianFilter(img *gray.Image, s, sMax int) (*gray.Image, error) {
	if err := checkWindowSize(s, true); err != nil {
		return nil, err
	}
	if s < 3 {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "adaptive median start size %d must be at least 3", s)
	}
	if sMax < s {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "adaptive median max size %d below start size %d", sMax, s)
	}
	if err := checkNoNaN(img); err != nil {
		return nil, err
	}

	res := gray.NewImageFromImage(img)
	gray.ParallelRows(img.Height, func(from, to int) {
		buf := gray.GetArrayOfFloat64FromPool(sMax * sMax)
		defer gray.PutArrayOfFloat64IntoPool(buf)
		for y := from; y < to; y++ {
			for x := 0; x < img.Width; x++ {
				res.Data[y*img.Width+x] = adaptiveMedianAt(img, x, y, s, sMax, buf)
			}
		}
	})
	return res, nil
}

// Runs the adaptive median state machine for a single pixel
func adaptiveMedianAt(img *gray.Image, x, y, s, sMax int, buf []float64) float64 {
	zxy := img.Data[y*img.Width+x]
	zMed := zxy
	for sCur := s; sCur <= sMax; sCur += 2 {
		window := gatherWindow(img, x, y, sCur, buf)
		zMin, zMax := window[0], window[0]
		for _, v := range window[1:] {
			if v < zMin {
				zMin = v
			} else if v > zMax {
				zMax = v
			}
		}
		zMed = qsort.MedianFloat64(window)

		if zMin < zMed && zMed < zMax {
			if zMin < zxy && zxy < zMax {
				return zxy
			}
			return zMed
		}
	}
	return zMed
}
