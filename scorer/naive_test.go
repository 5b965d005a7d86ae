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

package scorer

import (
	"testing"

	"github.com/exascience/octopus/allele"
	"github.com/exascience/octopus/reads"
	"github.com/exascience/octopus/region"
)

var chr1 = region.Chrom("chr1")

func TestScoreCountsOverlappingReads(t *testing.T) {
	src := reads.NewSliceSource([]region.GenomicRegion{
		region.New(chr1, 0, 10),
		region.New(chr1, 5, 15),
		region.New(chr1, 50, 60),
	})
	v := allele.NewVariant(region.New(chr1, 8, 9), []byte("A"), []byte("G"))
	s := NaiveScorer{MinSupport: 2}
	if score := s.Score(src, v); score != 2 {
		t.Fatalf("got score %d, want 2", score)
	}
	if !s.Accept(src, v) {
		t.Fatalf("a variant with 2 supporting reads should clear MinSupport=2")
	}
}

func TestAcceptRejectsBelowMinSupport(t *testing.T) {
	src := reads.NewSliceSource([]region.GenomicRegion{region.New(chr1, 0, 10)})
	v := allele.NewVariant(region.New(chr1, 8, 9), []byte("A"), []byte("G"))
	s := NaiveScorer{MinSupport: 2}
	if s.Accept(src, v) {
		t.Fatalf("a variant with 1 supporting read should not clear MinSupport=2")
	}
}

func TestSelectFiltersCandidates(t *testing.T) {
	src := reads.NewSliceSource([]region.GenomicRegion{
		region.New(chr1, 0, 10),
		region.New(chr1, 0, 10),
	})
	well := allele.NewVariant(region.New(chr1, 4, 5), []byte("A"), []byte("G"))
	poor := allele.NewVariant(region.New(chr1, 100, 101), []byte("C"), []byte("T"))
	s := NaiveScorer{MinSupport: 1}
	kept := s.Select(src, chr1, []allele.Variant{well, poor})
	if len(kept) != 1 || kept[0].Ref.Region.Begin != 4 {
		t.Fatalf("got %v, want only the well-supported variant", kept)
	}
}
