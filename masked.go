/*
Copyright © 2018 the romsproc authors.
This file is part of romsproc.

romsproc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

romsproc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with romsproc.  If not, see <http://www.gnu.org/licenses/>.
*/

package romsproc

import "github.com/ctessum/sparse"

// Masked pairs a dense data array with a validity mask of the same shape.
// Invalid cells hold no meaningful data value and must be checked through
// IsValid before use; valid cells are never NaN.
type Masked struct {
	Data *sparse.DenseArray
	// Mask holds 1 for invalid cells and 0 for valid ones.
	Mask *sparse.DenseArrayInt
}

// newMasked creates a Masked with all cells valid and zero-valued.
func newMasked(shape ...int) *Masked {
	return &Masked{
		Data: sparse.ZerosDense(shape...),
		Mask: sparse.ZerosDenseInt(shape...),
	}
}

// IsValid reports whether the cell at the given index holds valid data.
func (m *Masked) IsValid(index ...int) bool {
	return m.Mask.Get(index...) == 0
}

// setInvalid marks the cell at the given index as invalid.
func (m *Masked) setInvalid(index ...int) {
	m.Mask.Set(1, index...)
}
