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

// Package reference gives a HaplotypeGenerator random access to
// reference bases by region, backed by the mmapped .elfasta format the
// rest of this codebase already uses for FASTA input.
package reference

import (
	"fmt"

	"github.com/exascience/octopus/fasta"
	"github.com/exascience/octopus/region"
)

// Genome answers reference-sequence queries by region.
type Genome interface {
	// Sequence returns the reference bases spanned by r. The returned
	// slice must not be mutated: implementations are free to return a
	// view onto shared or memory-mapped storage.
	Sequence(r region.GenomicRegion) ([]byte, error)
	// ContigLength returns the full length of contig.
	ContigLength(contig region.Contig) (int32, error)
}

// ErrUnknownContig is returned when a query names a contig the genome
// has no sequence for.
type ErrUnknownContig struct {
	Contig region.Contig
}

func (e ErrUnknownContig) Error() string {
	return fmt.Sprintf("reference: unknown contig %q", *e.Contig)
}

// ErrOutOfRange is returned when a query's region extends past the end
// of its contig.
type ErrOutOfRange struct {
	Region region.GenomicRegion
	Length int32
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("reference: region %v exceeds contig length %d", e.Region, e.Length)
}

// FastaGenome is a Genome backed by an mmapped .elfasta file and its
// companion .fai index.
type FastaGenome struct {
	mapped  *fasta.MappedFasta
	lengths map[string]int32
}

// Open memory-maps elfastaPath and reads faiPath for contig lengths.
func Open(elfastaPath, faiPath string) *FastaGenome {
	fai := fasta.ParseFai(faiPath)
	lengths := make(map[string]int32, len(fai))
	for contig, entry := range fai {
		lengths[contig] = entry.Length
	}
	return &FastaGenome{mapped: fasta.OpenElfasta(elfastaPath), lengths: lengths}
}

// Close releases the underlying memory mapping.
func (g *FastaGenome) Close() {
	g.mapped.Close()
}

// ContigLength implements Genome.
func (g *FastaGenome) ContigLength(contig region.Contig) (int32, error) {
	length, ok := g.lengths[*contig]
	if !ok {
		return 0, ErrUnknownContig{Contig: contig}
	}
	return length, nil
}

// Sequence implements Genome.
func (g *FastaGenome) Sequence(r region.GenomicRegion) ([]byte, error) {
	length, err := g.ContigLength(r.Contig)
	if err != nil {
		return nil, err
	}
	if r.End > length {
		return nil, ErrOutOfRange{Region: r, Length: length}
	}
	seq := g.mapped.Seq(*r.Contig)
	return seq[r.Begin:r.End], nil
}

// InMemoryGenome is a Genome backed by plain byte slices, one per
// contig, as produced by fasta.ParseFasta. It exists for tests and for
// small references that comfortably fit in memory without mmap.
type InMemoryGenome map[string][]byte

// NewInMemory wraps sequences (contig name to reference bases) as a
// Genome.
func NewInMemory(sequences map[string][]byte) InMemoryGenome {
	return InMemoryGenome(sequences)
}

// ContigLength implements Genome.
func (g InMemoryGenome) ContigLength(contig region.Contig) (int32, error) {
	seq, ok := g[*contig]
	if !ok {
		return 0, ErrUnknownContig{Contig: contig}
	}
	return int32(len(seq)), nil
}

// Sequence implements Genome.
func (g InMemoryGenome) Sequence(r region.GenomicRegion) ([]byte, error) {
	seq, ok := g[*r.Contig]
	if !ok {
		return nil, ErrUnknownContig{Contig: r.Contig}
	}
	if r.End > int32(len(seq)) {
		return nil, ErrOutOfRange{Region: r, Length: int32(len(seq))}
	}
	return seq[r.Begin:r.End], nil
}
