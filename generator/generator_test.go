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

package generator

import (
	"errors"
	"testing"

	"github.com/exascience/octopus/allele"
	"github.com/exascience/octopus/region"
)

var chr1 = region.Chrom("chr1")

func snp(begin int32, alt string) allele.Allele {
	return allele.New(region.New(chr1, begin, begin+1), []byte(alt))
}

func refHap(seq string) allele.Haplotype {
	return allele.Haplotype{Region: region.New(chr1, 0, int32(len(seq))), Sequence: []byte(seq)}
}

func TestNewRejectsEmptyCandidateSet(t *testing.T) {
	_, err := New(chr1, refHap("AAAA"), nil, Policies{})
	if !errors.Is(err, ErrEmptyCandidateSet) {
		t.Fatalf("got %v, want ErrEmptyCandidateSet", err)
	}
}

func TestGenerateNonLaggedProducesHaplotypesThenTerminates(t *testing.T) {
	ref := refHap("AAAACCCCGGGGTTTTAAAACCCCGGGGTTTT") // 32 bases
	alleles := []allele.Allele{snp(20, "G"), snp(4, "T")}
	g, err := New(chr1, ref, alleles, Policies{
		Lagging:         LaggingNone,
		HaplotypeLimits: Limits{Target: 4, Holdout: 8, Overflow: 16},
		MinFlankPad:     4,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	haps, next, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if next.Begin != 4 || next.End != 21 {
		t.Fatalf("got active region %v, want [4,21)", next)
	}
	if len(haps) != 4 {
		t.Fatalf("got %d haplotypes, want 4", len(haps))
	}

	haps2, next2, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate (2): %v", err)
	}
	if !next2.IsEmpty() || next2.Begin != 21 {
		t.Fatalf("got active region %v, want an empty region at 21", next2)
	}
	if len(haps2) != 0 {
		t.Fatalf("got %d haplotypes, want 0 (no candidates remain, batch is empty)", len(haps2))
	}
}

func TestGenerateReturnsOverflowError(t *testing.T) {
	ref := refHap("AAAA")
	g, err := New(chr1, ref, []allele.Allele{snp(2, "T")}, Policies{
		Lagging:         LaggingNone,
		HaplotypeLimits: Limits{Target: 1, Holdout: 10, Overflow: 1},
		MinFlankPad:     2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, _, err = g.Generate()
	var overflow *HaplotypeOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("got %v, want a HaplotypeOverflowError", err)
	}
	if overflow.Size != 2 {
		t.Fatalf("got overflow size %d, want 2", overflow.Size)
	}
	if overflow.Region.Begin != 2 || overflow.Region.End != 3 {
		t.Fatalf("got overflow region %v, want [2,3)", overflow.Region)
	}
}

func TestGenerateTriggersHoldoutExtraction(t *testing.T) {
	ref := refHap("AAAACCCCGGGGTTTTAAAACCCC") // 24 bases
	alleles := []allele.Allele{snp(4, "T"), snp(8, "G"), snp(12, "A")}
	g, err := New(chr1, ref, alleles, Policies{
		Lagging:         LaggingNormal,
		HaplotypeLimits: Limits{Target: 8, Holdout: 4, Overflow: 16},
		MaxHoldoutDepth: 2,
		MinFlankPad:     2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	haps, next, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if next.Begin != 4 || next.End != 13 {
		t.Fatalf("got active region %v, want [4,13)", next)
	}
	// Every site is disjoint, so all three groups tie on interaction
	// count; the stable sort keeps them left to right and the last one,
	// the rightmost SNP (site [12,13)), is the one held out.
	if len(haps) != 4 {
		t.Fatalf("got %d haplotypes, want 4 (one site held out of the 8-way tree)", len(haps))
	}
	if len(g.holdoutStack) != 1 {
		t.Fatalf("got %d holdout frames, want 1", len(g.holdoutStack))
	}
	frame := g.holdoutStack[0]
	if frame.region.Begin != 12 || frame.region.End != 13 {
		t.Fatalf("got holdout frame region %v, want [12,13)", frame.region)
	}
	if len(g.candidateAlleles) != 2 {
		t.Fatalf("got %d remaining candidates, want 2 (the held-out allele is removed)", len(g.candidateAlleles))
	}
	if g.tree.NumHaplotypes() != 4 {
		t.Fatalf("got %d haplotypes remaining in the tree, want 4", g.tree.NumHaplotypes())
	}
}

func TestRemovalHasImpactAfterLaggedExtension(t *testing.T) {
	ref := refHap("AAAACCCC") // 8 bases
	g, err := New(chr1, ref, []allele.Allele{snp(4, "T")}, Policies{
		Lagging:         LaggingNormal,
		HaplotypeLimits: Limits{Target: 4, Holdout: 8, Overflow: 16},
		MaxHoldoutDepth: 2,
		MinFlankPad:     4,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.RemovalHasImpact() {
		t.Fatalf("a fresh generator has nothing to remove yet")
	}
	if _, _, err := g.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if g.tree.NumHaplotypes() != 2 {
		t.Fatalf("setup: got %d haplotypes, want 2", g.tree.NumHaplotypes())
	}
	if impact := g.MaxRemovalImpact(); impact != 1 {
		t.Fatalf("got MaxRemovalImpact()=%d, want 1", impact)
	}
	if !g.RemovalHasImpact() {
		t.Fatalf("RemovalHasImpact should be true once the tree has grown past the active region")
	}
}

func TestPeekNextActiveRegionMatchesGenerate(t *testing.T) {
	ref := refHap("AAAACCCCGGGGTTTTAAAACCCCGGGGTTTT")
	alleles := []allele.Allele{snp(20, "G"), snp(4, "T")}
	g, err := New(chr1, ref, alleles, Policies{
		Lagging:         LaggingNone,
		HaplotypeLimits: Limits{Target: 4, Holdout: 8, Overflow: 16},
		MinFlankPad:     4,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	peeked, ok := g.PeekNextActiveRegion()
	if !ok {
		t.Fatalf("PeekNextActiveRegion should succeed outside holdout mode")
	}
	_, next, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !peeked.Equal(next) {
		t.Fatalf("peeked %v, generated %v: should match", peeked, next)
	}
}

func TestJumpDropsAllelesBeforeTarget(t *testing.T) {
	ref := refHap("AAAACCCCGGGGTTTT")
	alleles := []allele.Allele{snp(4, "T"), snp(8, "G"), snp(12, "A")}
	g, err := New(chr1, ref, alleles, Policies{
		Lagging:         LaggingNone,
		HaplotypeLimits: Limits{Target: 4, Holdout: 8, Overflow: 16},
		MinFlankPad:     2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.Jump(region.New(chr1, 10, 10))
	if len(g.candidateAlleles) != 1 || g.candidateAlleles[0].Region.Begin != 12 {
		t.Fatalf("got %v, want only the [12,13) allele to survive the jump", g.candidateAlleles)
	}
	if g.activeRegion.Begin != 10 || !g.activeRegion.IsEmpty() {
		t.Fatalf("got active region %v, want an empty region at 10", g.activeRegion)
	}
	if !g.tree.IsEmpty() {
		t.Fatalf("Jump should reset the tree to reference-only")
	}
}
