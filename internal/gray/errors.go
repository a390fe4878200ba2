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
	"github.com/pkg/errors"
)

// Error classes shared by the filtering packages. Concrete errors wrap one of these,
// test with errors.Is.
var (
	// Unknown filter family or kind, bad window size, non-positive cutoff and the like
	ErrInvalidParameter = errors.New("invalid parameter")

	// Input without the structure an operation needs, e.g. mismatching shapes
	ErrDegenerateInput = errors.New("degenerate input")
)
