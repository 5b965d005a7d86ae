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

// Package walker picks the next active region a HaplotypeGenerator
// should assemble, given the alleles and reads seen so far.
package walker

import (
	"math/bits"
	"sort"

	"github.com/exascience/octopus/allele"
	"github.com/exascience/octopus/region"
)

// IndicatorPolicy controls which alleles already inside the current
// active region ("indicators") are kept in scope for the next window,
// alongside the novel alleles lying ahead of it.
type IndicatorPolicy int

const (
	// IncludeNone keeps no indicators: the default walker.
	IncludeNone IndicatorPolicy = iota
	// IncludeAll keeps every indicator: the holdout walker.
	IncludeAll
	// IncludeIfSharedWithNovelRegion keeps only indicators sitting at
	// exactly the same site as a novel allele: conservative lagging.
	IncludeIfSharedWithNovelRegion
	// IncludeIfLinkableToNovelRegion keeps indicators within
	// linkDistance of a novel allele: normal/aggressive lagging.
	IncludeIfLinkableToNovelRegion
)

// linkDistance bounds how far an indicator may sit from a novel allele
// and still count as "linkable" under IncludeIfLinkableToNovelRegion.
// Grounded on call-region.go's own boundary pad
// (maxInt32(region.start-25, 1)).
const linkDistance = 25

// GenomeWalker is a pure function object: Walk depends only on its
// arguments, never on hidden state.
type GenomeWalker struct {
	MaxIncluded int
	Policy      IndicatorPolicy
}

// New creates a GenomeWalker.
func New(maxIncluded int, policy IndicatorPolicy) *GenomeWalker {
	return &GenomeWalker{MaxIncluded: maxIncluded, Policy: policy}
}

// MaxIncludedFor derives max_included from a target haplotype count.
func MaxIncludedFor(targetHaplotypes int) int {
	e := log2Floor(targetHaplotypes)
	if e < 1 {
		e = 1
	}
	return 2*e - 1
}

func log2Floor(n int) int {
	if n < 1 {
		return 0
	}
	return bits.Len(uint(n)) - 1
}

// Walk selects the next active region: it starts where activeRegion
// ends, grows to include up to MaxIncluded alleles (a policy-dependent
// mix of novel alleles ahead of activeRegion and, where the policy
// permits, indicator alleles already inside it), and widens to fully
// contain any read overlapping that span.
func (w *GenomeWalker) Walk(activeRegion region.GenomicRegion, reads []region.GenomicRegion, alleles []allele.Allele) region.GenomicRegion {
	var indicatorCandidates, novel []allele.Allele
	for _, a := range alleles {
		switch {
		case a.Region.Begin >= activeRegion.End:
			novel = append(novel, a)
		case activeRegion.Overlaps(a.Region) || activeRegion.Contains(a.Region):
			indicatorCandidates = append(indicatorCandidates, a)
		}
	}
	sortAllelesByRegion(novel)

	var indicators []allele.Allele
	switch w.Policy {
	case IncludeAll:
		indicators = indicatorCandidates
	case IncludeIfSharedWithNovelRegion:
		for _, ind := range indicatorCandidates {
			if linkableWithin(ind, novel, 0) {
				indicators = append(indicators, ind)
			}
		}
	case IncludeIfLinkableToNovelRegion:
		for _, ind := range indicatorCandidates {
			if linkableWithin(ind, novel, linkDistance) {
				indicators = append(indicators, ind)
			}
		}
	}

	included := append(append([]allele.Allele{}, indicators...), novel...)
	sortAllelesByRegion(included)
	if w.MaxIncluded >= 0 && len(included) > w.MaxIncluded {
		included = included[:w.MaxIncluded]
	}

	if len(included) == 0 {
		return region.Site(activeRegion.Contig, activeRegion.End)
	}

	begin := included[0].Region.Begin
	if begin < activeRegion.End {
		begin = activeRegion.End
	}
	end := included[0].Region.End
	for _, a := range included {
		if a.Region.End > end {
			end = a.Region.End
		}
	}
	if end < begin {
		end = begin
	}
	span := region.New(activeRegion.Contig, begin, end)
	for _, r := range reads {
		if r.Overlaps(span) && r.End > end {
			end = r.End
		}
	}
	return region.New(activeRegion.Contig, begin, end)
}

func sortAllelesByRegion(as []allele.Allele) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].Region.Begin != as[j].Region.Begin {
			return as[i].Region.Begin < as[j].Region.Begin
		}
		return as[i].Region.End < as[j].Region.End
	})
}

// linkableWithin reports whether ind lies within distance bases of any
// novel allele (0 meaning ind must touch or overlap one).
func linkableWithin(ind allele.Allele, novel []allele.Allele, distance int32) bool {
	for _, n := range novel {
		if ind.Region.Overlaps(n.Region) {
			return true
		}
		gap := n.Region.Begin - ind.Region.End
		if gap < 0 {
			gap = ind.Region.Begin - n.Region.End
		}
		if gap <= distance {
			return true
		}
	}
	return false
}
