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
	"sync"
)

// Pools of constant sized arrays of a given element type, to reduce memory allocation overhead
// for window scratch buffers and frequency domain work arrays
type sizedPools[T any] struct {
	sync.RWMutex
	m map[int]*sync.Pool
}

var poolFloat64 = &sizedPools[float64]{m: make(map[int]*sync.Pool)}
var poolComplex128 = &sizedPools[complex128]{m: make(map[int]*sync.Pool)}

func (p *sizedPools[T]) get(size int) *sync.Pool {
	p.RLock()
	pool := p.m[size]
	p.RUnlock()
	if pool != nil {
		return pool
	}
	p.Lock()
	defer p.Unlock()
	if pool = p.m[size]; pool == nil {
		pool = &sync.Pool{
			New: func() interface{} {
				return make([]T, size)
			},
		}
		p.m[size] = pool
	}
	return pool
}

func (p *sizedPools[T]) clear() {
	p.Lock()
	p.m = make(map[int]*sync.Pool)
	p.Unlock()
}

// Retrieves an array of given size from pool. Contents are undefined
func GetArrayOfFloat64FromPool(size int) []float64 {
	return poolFloat64.get(size).Get().([]float64)
}

// Returns an array to the pool. The caller must not use it afterwards
func PutArrayOfFloat64IntoPool(arr []float64) {
	poolFloat64.get(cap(arr)).Put(arr[:cap(arr)])
}

// Retrieves an array of given size from pool. Contents are undefined
func GetArrayOfComplex128FromPool(size int) []complex128 {
	return poolComplex128.get(size).Get().([]complex128)
}

// Returns an array to the pool. The caller must not use it afterwards
func PutArrayOfComplex128IntoPool(arr []complex128) {
	poolComplex128.get(cap(arr)).Put(arr[:cap(arr)])
}

// Clears all memory pools
func ClearPools() {
	poolFloat64.clear()
	poolComplex128.clear()
}
