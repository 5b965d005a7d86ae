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

package vcfsink

import (
	"strings"
	"testing"

	"github.com/exascience/octopus/allele"
	"github.com/exascience/octopus/region"
)

var chr1 = region.Chrom("chr1")

func TestBuildRecordSubstitution(t *testing.T) {
	v := allele.NewVariant(region.New(chr1, 9, 10), []byte("A"), []byte("G"))
	record := buildRecord("chr1", v)
	if record.Chrom != "chr1" || record.Pos != 10 {
		t.Fatalf("got Chrom=%q Pos=%d, want chr1:10", record.Chrom, record.Pos)
	}
	if record.Ref != "A" || len(record.Alt) != 1 || record.Alt[0] != "G" {
		t.Fatalf("got Ref=%q Alt=%v, want Ref=A Alt=[G]", record.Ref, record.Alt)
	}
	if !record.Pass() {
		t.Fatalf("a freshly built record should always pass")
	}
}

func TestBuildRecordFormatsAsVcfLine(t *testing.T) {
	v := allele.NewVariant(region.New(chr1, 99, 100), []byte("C"), []byte("T"))
	record := buildRecord("chr1", v)
	buf, err := record.Format(nil)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	line := string(buf)
	if !strings.HasPrefix(line, "chr1\t100\t.\tC\tT\t.\tPASS\t") {
		t.Fatalf("got %q, want a line starting with chr1\\t100\\t.\\tC\\tT\\t.\\tPASS\\t", line)
	}
}
