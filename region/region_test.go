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

package region

import "testing"

var chr1 = Chrom("chr1")
var chr2 = Chrom("chr2")

func TestOverlapsSpans(t *testing.T) {
	a := New(chr1, 10, 20)
	b := New(chr1, 15, 25)
	c := New(chr1, 20, 30)
	if !a.Overlaps(b) {
		t.Errorf("expected %v to overlap %v", a, b)
	}
	if a.Overlaps(c) {
		t.Errorf("did not expect %v to overlap %v (half-open boundary)", a, c)
	}
	if a.Overlaps(New(chr2, 10, 20)) {
		t.Errorf("regions on different contigs must never overlap")
	}
}

func TestOverlapsEmptyRegion(t *testing.T) {
	span := New(chr1, 10, 20)
	inside := Site(chr1, 15)
	atStart := Site(chr1, 10)
	atEnd := Site(chr1, 20)
	if !span.Overlaps(inside) {
		t.Errorf("expected span to overlap an interior insertion point")
	}
	if span.Overlaps(atStart) {
		t.Errorf("an insertion point at span's start must not overlap it")
	}
	if span.Overlaps(atEnd) {
		t.Errorf("an insertion point at span's end must not overlap it")
	}
}

func TestContainsEmptyRegionAdjacency(t *testing.T) {
	span := New(chr1, 10, 20)
	atEnd := Site(chr1, 20)
	if span.Contains(atEnd) {
		t.Errorf("an empty region adjacent to another region must not be contained")
	}
	atStart := Site(chr1, 10)
	if !span.Contains(atStart) {
		t.Errorf("an empty region at span's start should be contained")
	}
}

func TestIsBeforeAfter(t *testing.T) {
	a := New(chr1, 0, 10)
	b := New(chr1, 10, 20)
	if !a.IsBefore(b) {
		t.Errorf("expected %v before %v", a, b)
	}
	if !b.IsAfter(a) {
		t.Errorf("expected %v after %v", b, a)
	}
	if a.IsBefore(a) {
		t.Errorf("a region must not be before itself when they touch at both ends")
	}
}

func TestEncompassing(t *testing.T) {
	a := New(chr1, 5, 10)
	b := New(chr1, 20, 30)
	got := a.Encompassing(b)
	want := New(chr1, 5, 30)
	if !got.Equal(want) {
		t.Errorf("Encompassing(%v,%v) = %v, want %v", a, b, got, want)
	}
}

func TestOverlap(t *testing.T) {
	a := New(chr1, 5, 15)
	b := New(chr1, 10, 20)
	got, ok := a.Overlap(b)
	if !ok {
		t.Fatalf("expected an overlap")
	}
	if want := New(chr1, 10, 15); !got.Equal(want) {
		t.Errorf("Overlap(%v,%v) = %v, want %v", a, b, got, want)
	}
	if _, ok := a.Overlap(New(chr1, 15, 20)); ok {
		t.Errorf("touching regions must not report an overlap")
	}
}

func TestLeftRightOverhang(t *testing.T) {
	a := New(chr1, 0, 20)
	b := New(chr1, 5, 15)
	if got, want := a.LeftOverhang(b), New(chr1, 0, 5); !got.Equal(want) {
		t.Errorf("LeftOverhang = %v, want %v", got, want)
	}
	if got, want := a.RightOverhang(b), New(chr1, 15, 20); !got.Equal(want) {
		t.Errorf("RightOverhang = %v, want %v", got, want)
	}
	if got := b.LeftOverhang(a); !got.IsEmpty() {
		t.Errorf("expected empty overhang when b does not extend past a, got %v", got)
	}
}

func TestExpandClampsAtZero(t *testing.T) {
	r := New(chr1, 5, 10)
	got := r.Expand(10, 0)
	if want := int32(0); got.Begin != want {
		t.Errorf("Expand left past zero should clamp to 0, got %v", got.Begin)
	}
}

func TestExpandRHSNegativeShrinks(t *testing.T) {
	r := New(chr1, 5, 10)
	got := r.ExpandRHS(-3)
	if want := New(chr1, 5, 7); !got.Equal(want) {
		t.Errorf("ExpandRHS(-3) = %v, want %v", got, want)
	}
}

func TestHeadTailRegion(t *testing.T) {
	r := New(chr1, 10, 20)
	if got, want := r.HeadRegion(3), New(chr1, 10, 13); !got.Equal(want) {
		t.Errorf("HeadRegion(3) = %v, want %v", got, want)
	}
	if got, want := r.TailRegion(3), New(chr1, 17, 20); !got.Equal(want) {
		t.Errorf("TailRegion(3) = %v, want %v", got, want)
	}
	if got := r.HeadRegion(100); !got.Equal(r) {
		t.Errorf("HeadRegion larger than the region should clip to it, got %v", got)
	}
}
