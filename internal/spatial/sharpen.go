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
)

// Sharpens the image with the Laplacian kernel. The image is first scaled to [0,1], then its Laplacian
// response is added. Returns the sharpened image and the Laplacian response, both unclamped
func LaplacianSharpen(img *gray.Image) (sharpened, laplacian *gray.Image, err error) {
	scaled := gray.ToUnitRange(img)
	laplacian, err = Convolve2D(scaled, LaplacianKernel())
	if err != nil {
		return nil, nil, err
	}
	sharpened, err = gray.Add(scaled, laplacian)
	if err != nil {
		return nil, nil, err
	}
	return sharpened, laplacian, nil
}
