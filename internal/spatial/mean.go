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
	"fmt"
	"strings"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Type of mean computed by the mean filter
type MeanType int

const (
	MeanArithmetic MeanType = iota // sum(window)/count(window)
	MeanGeometric                  // product(window)^(1/count(window))
)

var meanTypeNames = []string{"arithmetic", "geometric"}

func (m MeanType) String() string {
	if m < 0 || int(m) >= len(meanTypeNames) {
		return fmt.Sprintf("MeanType(%d)", int(m))
	}
	return meanTypeNames[m]
}

// Parses a mean type from its name, case insensitive
func ParseMeanType(s string) (MeanType, error) {
	for i, name := range meanTypeNames {
		if strings.EqualFold(s, name) {
			return MeanType(i), nil
		}
	}
	return 0, errors.Wrapf(gray.ErrInvalidParameter, "unknown mean type '%s'", s)
}

func (m MeanType) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(meanTypeNames) {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "unknown mean type %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *MeanType) UnmarshalText(text []byte) error {
	parsed, err := ParseMeanType(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Applies an s x s mean filter of given type. Windows are truncated at the image borders.
// The geometric mean of a window containing any sample <= 0 is defined as 0.
func MeanFilter(img *gray.Image, s int, meanType MeanType) (*gray.Image, error) {
	if err := checkWindowSize(s, false); err != nil {
		return nil, err
	}
	switch meanType {
	case MeanArithmetic:
		return applyWindowFunction(img, s, arithmeticMean), nil
	case MeanGeometric:
		return applyWindowFunction(img, s, geometricMean), nil
	default:
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "unknown mean type %d", int(meanType))
	}
}

func arithmeticMean(window []float64, center float64) float64 {
	return stat.Mean(window, nil)
}

func geometricMean(window []float64, center float64) float64 {
	for _, v := range window {
		if v <= 0 {
			return 0
		}
	}
	return stat.GeometricMean(window, nil)
}
