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

// Package region implements pure value-type operations on half-open,
// zero-based genomic intervals tagged by contig, and an ordered
// multiset of region-tagged items supporting overlap and containment
// queries.
package region

import (
	"fmt"

	"github.com/exascience/octopus/utils"
)

// Contig is an interned contig (chromosome) name. Two contigs compare
// equal iff their names are equal, since Intern always returns the
// same pointer for equal strings.
type Contig = utils.Symbol

// Chrom interns a contig name.
func Chrom(name string) Contig {
	return utils.Intern(name)
}

// GenomicRegion is a half-open, zero-based interval [Begin, End) on a
// contig. Begin <= End always holds. A region is empty (Begin == End)
// to denote an insertion point rather than a span of reference bases.
type GenomicRegion struct {
	Contig     Contig
	Begin, End int32
}

// New creates a GenomicRegion, panicking if begin > end.
func New(contig Contig, begin, end int32) GenomicRegion {
	if begin > end {
		panic(fmt.Sprintf("invalid region [%v:%v,%v)", contig, begin, end))
	}
	return GenomicRegion{Contig: contig, Begin: begin, End: end}
}

// Site creates the empty region denoting an insertion point at pos.
func Site(contig Contig, pos int32) GenomicRegion {
	return GenomicRegion{Contig: contig, Begin: pos, End: pos}
}

// IsEmpty reports whether the region is an insertion point.
func (r GenomicRegion) IsEmpty() bool {
	return r.Begin == r.End
}

// Len returns the number of reference bases spanned by r.
func (r GenomicRegion) Len() int32 {
	return r.End - r.Begin
}

func (r GenomicRegion) String() string {
	return fmt.Sprintf("%v:%v-%v", *r.Contig, r.Begin, r.End)
}

// sameContig reports whether r and other share a contig. Two regions
// on different contigs never overlap, contain each other, or order.
func (r GenomicRegion) sameContig(other GenomicRegion) bool {
	return r.Contig == other.Contig
}

// Overlaps reports whether r and other share at least one base, or,
// when either is an insertion point, whether that point falls
// strictly inside the other's span. An empty region is never
// considered to overlap a region it merely touches at a boundary.
func (r GenomicRegion) Overlaps(other GenomicRegion) bool {
	if !r.sameContig(other) {
		return false
	}
	switch {
	case r.IsEmpty() && other.IsEmpty():
		return r.Begin == other.Begin
	case r.IsEmpty():
		return other.Begin < r.Begin && r.Begin < other.End
	case other.IsEmpty():
		return r.Begin < other.Begin && other.Begin < r.End
	default:
		return r.Begin < other.End && other.Begin < r.End
	}
}

// Contains reports whether other lies entirely within r. An
// insertion point adjacent to r (sitting exactly at r.End) is not
// considered contained, since it belongs to whatever region begins
// there instead.
func (r GenomicRegion) Contains(other GenomicRegion) bool {
	if !r.sameContig(other) {
		return false
	}
	if other.IsEmpty() {
		return r.Begin <= other.Begin && other.Begin < r.End
	}
	return r.Begin <= other.Begin && other.End <= r.End
}

// IsBefore reports whether r ends at or before other begins.
func (r GenomicRegion) IsBefore(other GenomicRegion) bool {
	return r.sameContig(other) && r.End <= other.Begin
}

// IsAfter reports whether r begins at or after other ends.
func (r GenomicRegion) IsAfter(other GenomicRegion) bool {
	return r.sameContig(other) && r.Begin >= other.End
}

// Encompassing returns the smallest region spanning both r and other.
// Panics if the two regions are on different contigs.
func (r GenomicRegion) Encompassing(other GenomicRegion) GenomicRegion {
	if !r.sameContig(other) {
		panic("Encompassing of regions on different contigs")
	}
	begin, end := r.Begin, r.End
	if other.Begin < begin {
		begin = other.Begin
	}
	if other.End > end {
		end = other.End
	}
	return GenomicRegion{Contig: r.Contig, Begin: begin, End: end}
}

// Overlap returns the sub-region shared by r and other, and whether
// one exists.
func (r GenomicRegion) Overlap(other GenomicRegion) (GenomicRegion, bool) {
	if !r.Overlaps(other) {
		return GenomicRegion{}, false
	}
	begin, end := r.Begin, r.End
	if other.Begin > begin {
		begin = other.Begin
	}
	if other.End < end {
		end = other.End
	}
	if begin > end {
		begin, end = end, end
	}
	return GenomicRegion{Contig: r.Contig, Begin: begin, End: end}, true
}

// LeftOverhang returns the portion of r that lies to the left of
// other's start; empty if r does not extend past it.
func (r GenomicRegion) LeftOverhang(other GenomicRegion) GenomicRegion {
	end := r.End
	if other.Begin < end {
		end = other.Begin
	}
	if end < r.Begin {
		end = r.Begin
	}
	return GenomicRegion{Contig: r.Contig, Begin: r.Begin, End: end}
}

// RightOverhang returns the portion of r that lies to the right of
// other's end; empty if r does not extend past it.
func (r GenomicRegion) RightOverhang(other GenomicRegion) GenomicRegion {
	begin := r.Begin
	if other.End > begin {
		begin = other.End
	}
	if begin > r.End {
		begin = r.End
	}
	return GenomicRegion{Contig: r.Contig, Begin: begin, End: r.End}
}

// Expand grows r by left on the left side and right on the right
// side. Negative deltas shrink; the result is clamped so Begin never
// exceeds End and never goes below 0.
func (r GenomicRegion) Expand(left, right int32) GenomicRegion {
	begin := r.Begin - left
	if begin < 0 {
		begin = 0
	}
	end := r.End + right
	if end < begin {
		end = begin
	}
	return GenomicRegion{Contig: r.Contig, Begin: begin, End: end}
}

// ExpandRHS grows (or shrinks, for a negative delta) only the right
// end of r.
func (r GenomicRegion) ExpandRHS(delta int32) GenomicRegion {
	return r.Expand(0, delta)
}

// ExpandLHS grows (or shrinks, for a negative delta) only the left
// end of r.
func (r GenomicRegion) ExpandLHS(delta int32) GenomicRegion {
	return r.Expand(delta, 0)
}

// Shift translates r by delta.
func (r GenomicRegion) Shift(delta int32) GenomicRegion {
	begin := r.Begin + delta
	if begin < 0 {
		begin = 0
	}
	return GenomicRegion{Contig: r.Contig, Begin: begin, End: r.End + delta}
}

// HeadRegion returns the first n positions of r, clipped to r itself.
func (r GenomicRegion) HeadRegion(n int32) GenomicRegion {
	end := r.Begin + n
	if end > r.End {
		end = r.End
	}
	return GenomicRegion{Contig: r.Contig, Begin: r.Begin, End: end}
}

// TailRegion returns the last n positions of r, clipped to r itself.
func (r GenomicRegion) TailRegion(n int32) GenomicRegion {
	begin := r.End - n
	if begin < r.Begin {
		begin = r.Begin
	}
	return GenomicRegion{Contig: r.Contig, Begin: begin, End: r.End}
}

// Equal reports whether r and other denote the same interval.
func (r GenomicRegion) Equal(other GenomicRegion) bool {
	return r.Contig == other.Contig && r.Begin == other.Begin && r.End == other.End
}
