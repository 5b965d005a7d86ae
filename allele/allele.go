// Octopus: a germline/somatic variant caller.
// Copyright (c) 2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

// Package allele defines the candidate-variant and haplotype value
// types shared between the assembler and the haplotype generator.
package allele

import (
	"fmt"

	"github.com/exascience/octopus/region"
)

// Allele is a candidate substitution, insertion, or deletion at
// Region. A substitution has len(Region) == len(Sequence); an
// insertion has an empty Region and a non-empty Sequence; a deletion
// has a non-empty Region and an empty Sequence.
type Allele struct {
	Region   region.GenomicRegion
	Sequence []byte
}

// New creates an Allele, copying the sequence bytes so the allele owns
// its storage independently of any caller buffer.
func New(r region.GenomicRegion, sequence []byte) Allele {
	return Allele{Region: r, Sequence: append([]byte(nil), sequence...)}
}

// IsInsertion reports whether a is an insertion allele.
func (a Allele) IsInsertion() bool {
	return a.Region.IsEmpty() && len(a.Sequence) > 0
}

// IsDeletion reports whether a is a deletion allele.
func (a Allele) IsDeletion() bool {
	return !a.Region.IsEmpty() && len(a.Sequence) == 0
}

// IsSubstitution reports whether a is a substitution allele.
func (a Allele) IsSubstitution() bool {
	return int(a.Region.Len()) == len(a.Sequence) && len(a.Sequence) > 0
}

// IndelSize returns the net length change this allele introduces
// relative to the reference: positive for insertions, negative for
// deletions, zero for substitutions.
func (a Allele) IndelSize() int {
	return len(a.Sequence) - int(a.Region.Len())
}

// Equal reports whether a and other denote the same allele.
func (a Allele) Equal(other Allele) bool {
	if !a.Region.Equal(other.Region) || len(a.Sequence) != len(other.Sequence) {
		return false
	}
	for i, b := range a.Sequence {
		if other.Sequence[i] != b {
			return false
		}
	}
	return true
}

func (a Allele) String() string {
	return fmt.Sprintf("%v:%s", a.Region, a.Sequence)
}

// Variant pairs a reference allele with an alternate allele sharing
// the same region.
type Variant struct {
	Ref, Alt Allele
}

// NewVariant creates a Variant from a region, a reference sequence, and an
// alternate sequence.
func NewVariant(r region.GenomicRegion, ref, alt []byte) Variant {
	return Variant{Ref: New(r, ref), Alt: New(r, alt)}
}

func (v Variant) String() string {
	return fmt.Sprintf("%v %s>%s", v.Ref.Region, v.Ref.Sequence, v.Alt.Sequence)
}

// Haplotype is a fully materialized sequence over Region, derived by
// applying a consistent subset of alleles to the reference.
type Haplotype struct {
	Region   region.GenomicRegion
	Sequence []byte
}

// Key returns a value suitable for use as a map key, since []byte
// cannot be compared or hashed directly.
func (h Haplotype) Key() HaplotypeKey {
	return HaplotypeKey{Region: h.Region, Sequence: string(h.Sequence)}
}

// HaplotypeKey is the hashable identity of a Haplotype: its region
// plus its sequence.
type HaplotypeKey struct {
	Region   region.GenomicRegion
	Sequence string
}

// Mappable wraps an Allele so it satisfies region.Mappable; Allele
// itself cannot implement the interface directly since its Region
// field would collide with a Region() method.
type Mappable struct {
	Allele
}

// Region implements region.Mappable.
func (m Mappable) Region() region.GenomicRegion { return m.Allele.Region }

// AsMappable wraps a for insertion into a region.MappableSet.
func (a Allele) AsMappable() Mappable { return Mappable{a} }
