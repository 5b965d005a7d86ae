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

package reference

import (
	"bytes"
	"errors"
	"testing"

	"github.com/exascience/octopus/region"
)

var chr1 = region.Chrom("chr1")

func TestInMemoryGenomeSequence(t *testing.T) {
	g := NewInMemory(map[string][]byte{"chr1": []byte("AAAACCCCGGGG")})
	seq, err := g.Sequence(region.New(chr1, 4, 8))
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if !bytes.Equal(seq, []byte("CCCC")) {
		t.Fatalf("got %q, want %q", seq, "CCCC")
	}
}

func TestInMemoryGenomeContigLength(t *testing.T) {
	g := NewInMemory(map[string][]byte{"chr1": []byte("AAAACCCCGGGG")})
	length, err := g.ContigLength(chr1)
	if err != nil {
		t.Fatalf("ContigLength: %v", err)
	}
	if length != 12 {
		t.Fatalf("got %d, want 12", length)
	}
}

func TestInMemoryGenomeUnknownContig(t *testing.T) {
	g := NewInMemory(map[string][]byte{"chr1": []byte("AAAA")})
	chr2 := region.Chrom("chr2")
	if _, err := g.Sequence(region.New(chr2, 0, 1)); !errors.As(err, new(ErrUnknownContig)) {
		t.Fatalf("got %v, want ErrUnknownContig", err)
	}
}

func TestInMemoryGenomeOutOfRange(t *testing.T) {
	g := NewInMemory(map[string][]byte{"chr1": []byte("AAAA")})
	if _, err := g.Sequence(region.New(chr1, 0, 10)); !errors.As(err, new(ErrOutOfRange)) {
		t.Fatalf("got %v, want ErrOutOfRange", err)
	}
}
