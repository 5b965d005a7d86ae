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

package walker

import (
	"testing"

	"github.com/exascience/octopus/allele"
	"github.com/exascience/octopus/region"
)

var chr1 = region.Chrom("chr1")

func siteAllele(begin, end int32) allele.Allele {
	seq := make([]byte, end-begin)
	for i := range seq {
		seq[i] = 'A'
	}
	if end == begin {
		seq = []byte("A")
	}
	return allele.New(region.New(chr1, begin, end), seq)
}

func TestMaxIncludedFor(t *testing.T) {
	cases := []struct {
		target, want int
	}{
		{1, 1},
		{2, 1},
		{4, 3},
		{8, 5},
		{16, 7},
	}
	for _, c := range cases {
		if got := MaxIncludedFor(c.target); got != c.want {
			t.Fatalf("MaxIncludedFor(%d) = %d, want %d", c.target, got, c.want)
		}
	}
}

func TestWalkIncludeNoneIgnoresIndicators(t *testing.T) {
	w := New(3, IncludeNone)
	active := region.New(chr1, 100, 200)
	alleles := []allele.Allele{
		siteAllele(150, 151), // inside active region: an indicator candidate
		siteAllele(210, 211),
		siteAllele(220, 221),
	}
	got := w.Walk(active, nil, alleles)
	if got.Begin != 210 || got.End != 221 {
		t.Fatalf("got %v, want [210,221)", got)
	}
}

func TestWalkIncludeAllKeepsIndicators(t *testing.T) {
	w := New(3, IncludeAll)
	active := region.New(chr1, 100, 200)
	alleles := []allele.Allele{
		siteAllele(150, 151),
		siteAllele(210, 211),
	}
	got := w.Walk(active, nil, alleles)
	// begin is clamped to active.End even though the indicator's own
	// region starts earlier, since the walk never regresses.
	if got.Begin != 200 || got.End != 211 {
		t.Fatalf("got %v, want [200,211)", got)
	}
}

func TestWalkRespectsMaxIncluded(t *testing.T) {
	w := New(2, IncludeNone)
	active := region.New(chr1, 100, 200)
	alleles := []allele.Allele{
		siteAllele(210, 211),
		siteAllele(220, 221),
		siteAllele(230, 231),
	}
	got := w.Walk(active, nil, alleles)
	if got.Begin != 210 || got.End != 221 {
		t.Fatalf("got %v, want [210,221) (only the first 2 novel alleles)", got)
	}
}

func TestWalkNoAllelesReturnsEmptyAtFrontier(t *testing.T) {
	w := New(3, IncludeNone)
	active := region.New(chr1, 100, 200)
	got := w.Walk(active, nil, nil)
	if !got.IsEmpty() || got.Begin != 200 {
		t.Fatalf("got %v, want an empty region at 200", got)
	}
}

func TestWalkWidensForOverlappingRead(t *testing.T) {
	w := New(3, IncludeNone)
	active := region.New(chr1, 100, 200)
	alleles := []allele.Allele{siteAllele(210, 211)}
	reads := []region.GenomicRegion{region.New(chr1, 205, 260)}
	got := w.Walk(active, reads, alleles)
	if got.Begin != 210 || got.End != 260 {
		t.Fatalf("got %v, want [210,260) widened by the overlapping read", got)
	}
}

func TestWalkIncludeIfSharedRequiresExactAdjacency(t *testing.T) {
	w := New(1, IncludeIfSharedWithNovelRegion)
	active := region.New(chr1, 100, 200)
	near := siteAllele(185, 190) // 20bp short of the novel allele: not "shared" (must touch or overlap)
	novel := siteAllele(210, 211)
	got := w.Walk(active, nil, []allele.Allele{near, novel})
	if got.Begin != 210 || got.End != 211 {
		t.Fatalf("got %v, want [210,211): near should not qualify as shared", got)
	}
}

func TestWalkIncludeIfLinkableAllowsNearbyIndicator(t *testing.T) {
	w := New(1, IncludeIfLinkableToNovelRegion)
	active := region.New(chr1, 100, 200)
	near := siteAllele(185, 190) // within the 25bp link distance of the novel allele
	novel := siteAllele(210, 211)
	got := w.Walk(active, nil, []allele.Allele{near, novel})
	// near out-competes novel for the single MaxIncluded slot (it sorts
	// first by Begin), and its own span collapses once clamped to the
	// active region's frontier.
	if !got.IsEmpty() || got.Begin != 200 {
		t.Fatalf("got %v, want an empty region at 200", got)
	}
}
