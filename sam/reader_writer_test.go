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

package sam

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/exascience/octopus/utils"
)

const testSam = "@HD\tVN:1.6\tSO:coordinate\n" +
	"@SQ\tSN:chr1\tLN:1000\n" +
	"r1\t0\tchr1\t1\t60\t4M\t*\t0\t0\tACGT\t????\n" +
	"r2\t0\tchr1\t3\t60\t4M\t*\t0\t0\tACGT\t????\n"

func writeTestSam(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reads.sam")
	if err := os.WriteFile(path, []byte(testSam), 0644); err != nil {
		t.Fatalf("writing test SAM file: %v", err)
	}
	return path
}

func TestOpenParseHeaderThenReadAll(t *testing.T) {
	path := writeTestSam(t)

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	hdr, err := f.ParseHeader()
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if len(hdr.SQ) != 1 || hdr.SQ[0]["SN"] != "chr1" {
		t.Fatalf("got header SQ %v, want one record naming chr1", hdr.SQ)
	}

	alignments, err := ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(alignments) != 2 {
		t.Fatalf("got %d alignments, want 2", len(alignments))
	}
	if alignments[0].QNAME != "r1" || alignments[0].RNAME != "chr1" || alignments[0].POS != 1 {
		t.Fatalf("unexpected first alignment: %+v", alignments[0])
	}
	if alignments[1].QNAME != "r2" || alignments[1].POS != 3 {
		t.Fatalf("unexpected second alignment: %+v", alignments[1])
	}
}

func TestOpenRejectsBamExtension(t *testing.T) {
	if _, err := Open("reads.bam"); err == nil {
		t.Fatalf("Open should reject a .bam file: no BAM decoder is wired in")
	}
}

func TestCreateThenOpenRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sam")

	out, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	hdr := NewHeader()
	hdr.SQ = append(hdr.SQ, utils.StringMap{"SN": "chr1", "LN": "1000"})
	if err := out.FormatHeader(hdr); err != nil {
		t.Fatalf("FormatHeader: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	in, err := Open(path)
	if err != nil {
		t.Fatalf("reopening written file: %v", err)
	}
	defer in.Close()
	roundTripped, err := in.ParseHeader()
	if err != nil {
		t.Fatalf("ParseHeader after round trip: %v", err)
	}
	if len(roundTripped.SQ) != 1 || roundTripped.SQ[0]["SN"] != "chr1" {
		t.Fatalf("got SQ %v after round trip, want one record naming chr1", roundTripped.SQ)
	}
}
