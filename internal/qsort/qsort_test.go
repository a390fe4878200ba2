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

package qsort

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fastrand"
)

// random permutation of 1..n
func permutation(rng *fastrand.RNG, n int) []float64 {
	arr := make([]float64, n)
	for j := 0; j < len(arr); j++ {
		arr[j] = float64(j + 1)
	}
	for j := 0; j < len(arr); j++ {
		k := rng.Uint32n(uint32(len(arr)))
		arr[j], arr[k] = arr[k], arr[j]
	}
	return arr
}

func TestMedian(t *testing.T) {
	rng := fastrand.RNG{}
	rng.Seed(1)
	for i := 1; i < 1000; i++ {
		arr := permutation(&rng, i)

		// calculate expected result
		var expect float64
		if (i & 1) != 0 {
			expect = float64((i + 1) / 2)
		} else {
			expect = 0.5 * (float64(i/2) + float64(i/2+1))
		}

		// calculate actual result and compare
		res := MedianFloat64(arr)
		if res != expect {
			t.Errorf("median(1..%d) got %f expect %f", i, res, expect)
		}
	}
}

func TestMedianWithDuplicates(t *testing.T) {
	assert.Equal(t, 2.0, MedianFloat64([]float64{2, 2, 2, 2}))
	assert.Equal(t, 1.5, MedianFloat64([]float64{1, 2, 1, 2}))
	assert.Equal(t, 0.0, MedianFloat64([]float64{0, 0, 255, 0, 0, 255, 0, 0, 0}))
	assert.True(t, math.IsNaN(MedianFloat64(nil)))
}

func TestMedianSlice9MatchesSort(t *testing.T) {
	rng := fastrand.RNG{}
	rng.Seed(9)
	for i := 0; i < 500; i++ {
		arr := make([]float64, 9)
		for j := range arr {
			arr[j] = float64(rng.Uint32n(16))
		}
		sorted := append([]float64(nil), arr...)
		sort.Float64s(sorted)
		assert.Equal(t, sorted[4], MedianFloat64Slice9(arr), "input %v", sorted)
	}
}

func TestSelect(t *testing.T) {
	rng := fastrand.RNG{}
	rng.Seed(3)
	arr := permutation(&rng, 101)
	for k := 1; k <= 101; k++ {
		a := append([]float64(nil), arr...)
		assert.Equal(t, float64(k), QSelectFloat64(a, k))
	}
}

func TestSort(t *testing.T) {
	rng := fastrand.RNG{}
	rng.Seed(5)
	arr := permutation(&rng, 257)
	QSortFloat64(arr)
	assert.True(t, sort.Float64sAreSorted(arr))
}
