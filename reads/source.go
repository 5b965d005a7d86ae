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

// Package reads gives a HaplotypeGenerator the read-coverage spans it
// needs for region padding, without exposing the alignments
// themselves: the assembler and generator only ever ask "what does
// this contig's coverage look like here", never for base qualities or
// tag data.
package reads

import (
	"sort"

	"github.com/exascience/octopus/region"
	"github.com/exascience/octopus/sam"
)

// Source answers coverage queries for one contig's worth of reads.
type Source interface {
	// Overlapping returns the regions of every read overlapping r,
	// sorted by Begin. A read's region is its reference-consuming
	// span, not its query length.
	Overlapping(r region.GenomicRegion) []region.GenomicRegion
}

// referenceSpan returns the reference-consuming region an alignment
// covers, derived from its POS and CIGAR string. POS in sam.Alignment
// is 1-based; the returned region is 0-based half-open, matching the
// rest of this codebase.
func referenceSpan(contig region.Contig, aln *sam.Alignment) (region.GenomicRegion, error) {
	ops, err := sam.ScanCigarString(aln.CIGAR)
	if err != nil {
		return region.GenomicRegion{}, err
	}
	begin := aln.POS - 1
	end := begin
	for _, op := range ops {
		switch op.Operation {
		case 'M', 'D', 'N', '=', 'X':
			end += op.Length
		}
	}
	return region.New(contig, begin, end), nil
}

// SliceSource is a Source backed by a pre-sorted, in-memory slice of
// read regions, one per alignment. It exists both for tests and as
// the natural representation once a contig's alignments have already
// been scanned out of a BAM file into memory.
type SliceSource struct {
	regions []region.GenomicRegion
}

// NewSliceSource builds a SliceSource from spans, sorting them by
// Begin.
func NewSliceSource(spans []region.GenomicRegion) *SliceSource {
	sorted := append([]region.GenomicRegion(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Begin < sorted[j].Begin })
	return &SliceSource{regions: sorted}
}

// FromAlignments builds a SliceSource from a contig's alignments,
// skipping any whose CIGAR fails to scan or is "*" (unavailable, as
// for unmapped reads) rather than failing the whole batch.
func FromAlignments(contig region.Contig, alignments []*sam.Alignment) *SliceSource {
	var spans []region.GenomicRegion
	for _, aln := range alignments {
		span, err := referenceSpan(contig, aln)
		if err != nil || aln.CIGAR == "*" {
			continue
		}
		spans = append(spans, span)
	}
	return NewSliceSource(spans)
}

// Overlapping implements Source with a linear scan. Callers query one
// active region at a time as the generator walks forward, so a single
// contig's SliceSource is scanned many times; a binary search over
// the sorted Begin values would trade a bit of code for a bit of
// speed, but at typical per-region candidate counts it isn't worth
// the complexity.
func (s *SliceSource) Overlapping(r region.GenomicRegion) []region.GenomicRegion {
	var found []region.GenomicRegion
	for _, span := range s.regions {
		if span.Overlaps(r) {
			found = append(found, span)
		}
	}
	return found
}
