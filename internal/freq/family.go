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

import (
	"fmt"
	"strings"

	"github.com/mlnoga/dipfilter/internal/gray"
	"github.com/pkg/errors"
)

// Filter family, i.e. the shape of the pass and reject regions
type Family int

const (
	Lowpass     Family = iota // Passes frequencies within the cutoff radius
	Highpass                  // Rejects frequencies within the cutoff radius
	Bandreject                // Rejects a ring of given width around the cutoff radius
	Bandpass                  // Passes a ring of given width around the cutoff radius
	NotchReject               // Rejects a symmetric pair of regions around (uk,vk) and (-uk,-vk)
	NotchPass                 // Passes a symmetric pair of regions around (uk,vk) and (-uk,-vk)
)

var familyNames = []string{"lowpass", "highpass", "bandreject", "bandpass", "notchreject", "notchpass"}

// All filter families
var Families = []Family{Lowpass, Highpass, Bandreject, Bandpass, NotchReject, NotchPass}

func (f Family) String() string {
	if !f.valid() {
		return fmt.Sprintf("Family(%d)", int(f))
	}
	return familyNames[f]
}

func (f Family) valid() bool {
	return f >= 0 && int(f) < len(familyNames)
}

// True for band filters, which use the width parameter
func (f Family) IsBand() bool {
	return f == Bandreject || f == Bandpass
}

// True for notch filters, which use the notch offset parameters
func (f Family) IsNotch() bool {
	return f == NotchReject || f == NotchPass
}

// Parses a family from its name. Case, dashes and underscores are ignored, so notch_reject works as well
func ParseFamily(s string) (Family, error) {
	norm := normalizeName(s)
	for i, name := range familyNames {
		if norm == name {
			return Family(i), nil
		}
	}
	return 0, errors.Wrapf(gray.ErrInvalidParameter, "unknown filter family '%s'", s)
}

func (f Family) MarshalText() ([]byte, error) {
	if !f.valid() {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "unknown filter family %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Filter kind, i.e. the profile of the transition between pass and reject regions
type Kind int

const (
	Ideal       Kind = iota // Sharp transition
	Butterworth             // Smooth transition with steepness given by the order
	Gaussian                // Gaussian transition
)

var kindNames = []string{"ideal", "butterworth", "gaussian"}

// All filter kinds
var Kinds = []Kind{Ideal, Butterworth, Gaussian}

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

// Parses a kind from its name, case insensitive
func ParseKind(s string) (Kind, error) {
	norm := normalizeName(s)
	for i, name := range kindNames {
		if norm == name {
			return Kind(i), nil
		}
	}
	return 0, errors.Wrapf(gray.ErrInvalidParameter, "unknown filter kind '%s'", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, errors.Wrapf(gray.ErrInvalidParameter, "unknown filter kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func normalizeName(s string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
}
