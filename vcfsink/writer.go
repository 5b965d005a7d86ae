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

// Package vcfsink writes allele.Variant values out as VCF records,
// wrapping the kept vcf package. It carries no scoring or filtering
// logic of its own: every variant handed to it is written as PASS,
// since the assembler and haplotype generator never attach genotype
// likelihoods (see scorer for the placeholder that would).
package vcfsink

import (
	"bufio"

	"github.com/exascience/octopus/allele"
	"github.com/exascience/octopus/utils"
	"github.com/exascience/octopus/vcf"
)

// Sink accepts variants for one contig at a time, in ascending
// position order, and writes them out.
type Sink interface {
	WriteVariant(contig string, v allele.Variant) error
	Close() error
}

// Writer is a Sink backed by a VCF output file. Variant regions are
// expected to be VCF-anchored already: a substitution or deletion's
// Ref allele carries the reference bases at Region directly, and an
// insertion's Ref/Alt both carry the anchor base immediately to the
// left of the inserted sequence, since VCF has no notion of a
// zero-width reference span.
type Writer struct {
	out *vcf.OutputFile
	buf []byte
}

// Create opens path for VCF output and writes contigs into the header
// as contig lines.
func Create(path string, contigs []string, compressed bool) (*Writer, error) {
	out, err := vcf.Create(path, compressed)
	if err != nil {
		return nil, err
	}
	header := vcf.NewHeader()
	for _, contig := range contigs {
		header.Meta["contig"] = append(header.Meta["contig"], "<ID="+contig+">")
	}
	if err := header.Format((*bufio.Writer)(out.VcfWriter())); err != nil {
		_ = out.Close()
		return nil, err
	}
	return &Writer{out: out}, nil
}

// buildRecord translates a called variant into a passing VCF data
// line for contig.
func buildRecord(contig string, v allele.Variant) vcf.Variant {
	return vcf.Variant{
		Chrom:  contig,
		Pos:    v.Ref.Region.Begin + 1,
		Ref:    string(v.Ref.Sequence),
		Alt:    []string{string(v.Alt.Sequence)},
		Filter: []utils.Symbol{vcf.PASS},
	}
}

// WriteVariant formats v as a single VCF data line and writes it.
func (w *Writer) WriteVariant(contig string, v allele.Variant) error {
	record := buildRecord(contig, v)
	var err error
	w.buf, err = record.Format(w.buf[:0])
	if err != nil {
		return err
	}
	_, err = (*bufio.Writer)(w.out.VcfWriter()).Write(w.buf)
	return err
}

// Close flushes and closes the underlying VCF file.
func (w *Writer) Close() error {
	return w.out.Close()
}
