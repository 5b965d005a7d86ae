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

package region

import "testing"

type item struct {
	name   string
	region GenomicRegion
}

func (i item) Region() GenomicRegion { return i.region }

func TestMappableSetOverlapping(t *testing.T) {
	set := NewMappableSet(
		item{"a", New(chr1, 0, 10)},
		item{"b", New(chr1, 20, 30)},
		item{"c", New(chr1, 25, 40)},
		item{"d", New(chr1, 100, 110)},
	)
	got := set.Overlapping(New(chr1, 22, 26))
	if len(got) != 2 {
		t.Fatalf("expected 2 overlapping items, got %d: %v", len(got), got)
	}
	names := map[string]bool{}
	for _, m := range got {
		names[m.(item).name] = true
	}
	if !names["b"] || !names["c"] {
		t.Errorf("expected b and c to overlap, got %v", names)
	}
}

func TestMappableSetContained(t *testing.T) {
	set := NewMappableSet(
		item{"a", New(chr1, 5, 15)},
		item{"b", New(chr1, 0, 100)},
	)
	got := set.Contained(New(chr1, 0, 20))
	if len(got) != 1 || got[0].(item).name != "a" {
		t.Errorf("expected only a to be contained, got %v", got)
	}
}

func TestMappableSetEncompassing(t *testing.T) {
	set := NewMappableSet(
		item{"a", New(chr1, 5, 15)},
		item{"b", New(chr1, 50, 60)},
	)
	got, ok := set.Encompassing()
	if !ok {
		t.Fatalf("expected an encompassing region")
	}
	if want := New(chr1, 5, 60); !got.Equal(want) {
		t.Errorf("Encompassing() = %v, want %v", got, want)
	}
}

func TestMappableSetRemoveContained(t *testing.T) {
	set := NewMappableSet(
		item{"a", New(chr1, 5, 15)},
		item{"b", New(chr1, 0, 100)},
	)
	removed := set.RemoveContained(New(chr1, 0, 20))
	if len(removed) != 1 || removed[0].(item).name != "a" {
		t.Errorf("expected to remove only a, got %v", removed)
	}
	if set.Len() != 1 {
		t.Errorf("expected 1 item left, got %d", set.Len())
	}
}

func TestMappableSetAnyOverlappingEmptySet(t *testing.T) {
	set := NewMappableSet()
	if set.AnyOverlapping(New(chr1, 0, 10)) {
		t.Errorf("empty set must never report an overlap")
	}
}
