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

// Package scorer picks which candidate variants make it into the
// output VCF. NaiveScorer is a placeholder: a real caller ranks
// haplotypes by genotype likelihood, which this codebase deliberately
// does not compute. It exists only so cmd.Call has something to call
// between assembly and VCF output.
package scorer

import (
	"github.com/exascience/octopus/allele"
	"github.com/exascience/octopus/reads"
	"github.com/exascience/octopus/region"
)

// NaiveScorer selects variants by how many reads overlap their
// region, with no notion of allele balance, base quality, or ploidy.
type NaiveScorer struct {
	// MinSupport is the minimum number of overlapping reads a
	// variant's region needs to be reported.
	MinSupport int
}

// Score reports how much read support a variant's region has: the
// number of read spans overlapping it, per src.
func (s NaiveScorer) Score(src reads.Source, v allele.Variant) int {
	return len(src.Overlapping(v.Ref.Region))
}

// Accept reports whether v clears MinSupport.
func (s NaiveScorer) Accept(src reads.Source, v allele.Variant) bool {
	return s.Score(src, v) >= s.MinSupport
}

// Select filters candidates down to the ones with enough read
// support, preserving order.
func (s NaiveScorer) Select(src reads.Source, contig region.Contig, candidates []allele.Variant) []allele.Variant {
	var kept []allele.Variant
	for _, v := range candidates {
		if s.Accept(src, v) {
			kept = append(kept, v)
		}
	}
	return kept
}
