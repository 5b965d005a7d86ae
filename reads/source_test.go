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

package reads

import (
	"testing"

	"github.com/exascience/octopus/region"
	"github.com/exascience/octopus/sam"
)

var chr1 = region.Chrom("chr1")

func TestReferenceSpanPlainMatch(t *testing.T) {
	span, err := referenceSpan(chr1, &sam.Alignment{POS: 5, CIGAR: "10M"})
	if err != nil {
		t.Fatalf("referenceSpan: %v", err)
	}
	if span.Begin != 4 || span.End != 14 {
		t.Fatalf("got %v, want [4,14)", span)
	}
}

func TestReferenceSpanSkipsSoftClips(t *testing.T) {
	span, err := referenceSpan(chr1, &sam.Alignment{POS: 1, CIGAR: "3S10M2S"})
	if err != nil {
		t.Fatalf("referenceSpan: %v", err)
	}
	if span.Begin != 0 || span.End != 10 {
		t.Fatalf("got %v, want [0,10)", span)
	}
}

func TestReferenceSpanCountsDeletions(t *testing.T) {
	span, err := referenceSpan(chr1, &sam.Alignment{POS: 1, CIGAR: "5M2D5M"})
	if err != nil {
		t.Fatalf("referenceSpan: %v", err)
	}
	if span.Begin != 0 || span.End != 12 {
		t.Fatalf("got %v, want [0,12)", span)
	}
}

func TestFromAlignmentsSkipsUnparseable(t *testing.T) {
	src := FromAlignments(chr1, []*sam.Alignment{
		{POS: 1, CIGAR: "10M"},
		{POS: 100, CIGAR: "*"},
	})
	found := src.Overlapping(region.New(chr1, 0, 200))
	if len(found) != 1 || found[0].Begin != 0 || found[0].End != 10 {
		t.Fatalf("got %v, want a single [0,10) span", found)
	}
}

func TestSliceSourceOverlapping(t *testing.T) {
	src := NewSliceSource([]region.GenomicRegion{
		region.New(chr1, 20, 30),
		region.New(chr1, 0, 10),
		region.New(chr1, 15, 25),
	})
	found := src.Overlapping(region.New(chr1, 5, 16))
	if len(found) != 2 {
		t.Fatalf("got %d overlapping spans, want 2", len(found))
	}
	if found[0].Begin != 0 || found[1].Begin != 15 {
		t.Fatalf("got %v, want spans in Begin order starting at 0 and 15", found)
	}
}
