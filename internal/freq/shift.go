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

package freq

// Moves the zero-frequency component of row-major src to the center (rows/2, cols/2) by rolling
// both axes by half their length. Result goes to dst, which is allocated if nil. dst and src must not overlap.
func Shift[T any](dst, src []T, rows, cols int) []T {
	return roll(dst, src, rows, cols, rows/2, cols/2)
}

// Undoes Shift, also for odd dimensions, by rolling both axes back by half their length.
// Same conventions as Shift.
func InverseShift[T any](dst, src []T, rows, cols int) []T {
	return roll(dst, src, rows, cols, rows-rows/2, cols-cols/2)
}

// Moves element (r,c) of src to ((r+dr)%rows, (c+dc)%cols) of dst
func roll[T any](dst, src []T, rows, cols, dr, dc int) []T {
	if len(src) != rows*cols {
		panic("freq: data length does not match dimensions")
	}
	if dst == nil {
		dst = make([]T, len(src))
	}
	for r := 0; r < rows; r++ {
		rr := (r + dr) % rows
		srcRow := src[r*cols : (r+1)*cols]
		dstRow := dst[rr*cols : (rr+1)*cols]
		copy(dstRow[dc:], srcRow[:cols-dc])
		copy(dstRow[:dc], srcRow[cols-dc:])
	}
	return dst
}
