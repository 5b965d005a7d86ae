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

package cmd

import (
	"testing"

	"github.com/exascience/octopus/allele"
	"github.com/exascience/octopus/generator"
	"github.com/exascience/octopus/reads"
	"github.com/exascience/octopus/region"
	"github.com/exascience/octopus/scorer"
)

var chr1 = region.Chrom("chr1")

func TestCallContigWithNoReadsProducesNoVariants(t *testing.T) {
	ref := allele.Haplotype{
		Region:   region.New(chr1, 0, 11),
		Sequence: []byte("ACGTACGTACG"),
	}
	source := reads.NewSliceSource(nil)
	policies := generator.Policies{
		Lagging:         generator.LaggingNormal,
		HaplotypeLimits: generator.Limits{Target: 12, Holdout: 20, Overflow: 128},
		MaxHoldoutDepth: 2,
		MinFlankPad:     4,
	}
	sc := scorer.NaiveScorer{MinSupport: 2}

	variants, err := callContig(chr1, ref, source, 5, policies, sc)
	if err != nil {
		t.Fatalf("callContig: %v", err)
	}
	if len(variants) != 0 {
		t.Fatalf("got %d variants, want 0: an assembler that never saw a read has no bubbles to extract", len(variants))
	}
}

func TestCheckExistRejectsMissingFile(t *testing.T) {
	if checkExist("reference", "/no/such/file/octopus-test") {
		t.Fatalf("checkExist should reject a nonexistent file")
	}
}
