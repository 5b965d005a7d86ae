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

package allele

import (
	"testing"

	"github.com/exascience/octopus/region"
)

var chr1 = region.Chrom("chr1")

func TestAlleleKinds(t *testing.T) {
	sub := New(region.New(chr1, 10, 11), []byte("A"))
	if !sub.IsSubstitution() || sub.IsInsertion() || sub.IsDeletion() {
		t.Errorf("expected substitution classification for %v", sub)
	}
	ins := New(region.Site(chr1, 10), []byte("AC"))
	if !ins.IsInsertion() || ins.IsSubstitution() || ins.IsDeletion() {
		t.Errorf("expected insertion classification for %v", ins)
	}
	del := New(region.New(chr1, 10, 13), nil)
	if !del.IsDeletion() || del.IsInsertion() || del.IsSubstitution() {
		t.Errorf("expected deletion classification for %v", del)
	}
}

func TestIndelSize(t *testing.T) {
	ins := New(region.Site(chr1, 5), []byte("AAA"))
	if got, want := ins.IndelSize(), 3; got != want {
		t.Errorf("IndelSize() = %v, want %v", got, want)
	}
	del := New(region.New(chr1, 5, 8), nil)
	if got, want := del.IndelSize(), -3; got != want {
		t.Errorf("IndelSize() = %v, want %v", got, want)
	}
}

func TestAlleleEqual(t *testing.T) {
	a := New(region.New(chr1, 1, 2), []byte("A"))
	b := New(region.New(chr1, 1, 2), []byte("A"))
	c := New(region.New(chr1, 1, 2), []byte("C"))
	if !a.Equal(b) {
		t.Errorf("expected %v to equal %v", a, b)
	}
	if a.Equal(c) {
		t.Errorf("did not expect %v to equal %v", a, c)
	}
}

func TestMappableSetOfAlleles(t *testing.T) {
	a := New(region.New(chr1, 10, 11), []byte("A"))
	b := New(region.New(chr1, 50, 51), []byte("G"))
	set := region.NewMappableSet(a.AsMappable(), b.AsMappable())
	got := set.Overlapping(region.New(chr1, 0, 20))
	if len(got) != 1 {
		t.Fatalf("expected 1 overlapping allele, got %d", len(got))
	}
	if !got[0].(Mappable).Allele.Equal(a) {
		t.Errorf("expected overlapping allele to be %v, got %v", a, got[0])
	}
}
