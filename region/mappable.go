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

import "sort"

// Mappable is anything that occupies a GenomicRegion. Go 1.15 has no
// generics, so MappableSet is built against this interface instead of
// a type parameter, following the same style as utils.SmallMap's use
// of interface{} for its value slots.
type Mappable interface {
	Region() GenomicRegion
}

// MappableSet is an ordered multiset of Mappable items, kept sorted by
// region start position, supporting range queries.
// Items on different contigs may be stored in the same set, but
// queries only ever return items sharing the query's contig, mirroring
// GenomicRegion's own same-contig requirement.
type MappableSet struct {
	items []Mappable
	dirty bool
}

// NewMappableSet creates a MappableSet from an initial slice of items,
// which need not be sorted.
func NewMappableSet(items ...Mappable) *MappableSet {
	s := &MappableSet{items: append([]Mappable(nil), items...), dirty: true}
	s.sort()
	return s
}

// Add inserts an item into the set.
func (s *MappableSet) Add(m Mappable) {
	s.items = append(s.items, m)
	s.dirty = true
}

// Len returns the number of items in the set.
func (s *MappableSet) Len() int {
	return len(s.items)
}

// Items returns the set's items in sorted order.
func (s *MappableSet) Items() []Mappable {
	s.sort()
	return s.items
}

func (s *MappableSet) sort() {
	if !s.dirty {
		return
	}
	sort.SliceStable(s.items, func(i, j int) bool {
		ri, rj := s.items[i].Region(), s.items[j].Region()
		return ri.Begin < rj.Begin
	})
	s.dirty = false
}

// lowerBound returns the index of the first item whose region.End is
// greater than pos, i.e. the first item that could possibly overlap
// or come after a query starting at pos. Items are sorted by Begin
// only, so End values need not increase along the slice; the search
// is therefore a linear scan rather than a binary search.
func (s *MappableSet) lowerBound(pos int32) int {
	for i, m := range s.items {
		if m.Region().End > pos {
			return i
		}
	}
	return len(s.items)
}

// Overlapping returns every item in the set whose region overlaps r,
// in sorted order.
func (s *MappableSet) Overlapping(r GenomicRegion) []Mappable {
	s.sort()
	var result []Mappable
	for i := s.lowerBound(r.Begin); i < len(s.items); i++ {
		region := s.items[i].Region()
		if region.Begin >= r.End && !(region.IsEmpty() && region.Begin == r.End) {
			break
		}
		if region.Overlaps(r) {
			result = append(result, s.items[i])
		}
	}
	return result
}

// Contained returns every item in the set whose region is contained
// in r, in sorted order.
func (s *MappableSet) Contained(r GenomicRegion) []Mappable {
	s.sort()
	var result []Mappable
	for i := s.lowerBound(r.Begin); i < len(s.items); i++ {
		region := s.items[i].Region()
		if region.Begin > r.End {
			break
		}
		if r.Contains(region) {
			result = append(result, s.items[i])
		}
	}
	return result
}

// AnyOverlapping reports whether any item in the set overlaps r,
// without allocating a result slice.
func (s *MappableSet) AnyOverlapping(r GenomicRegion) bool {
	s.sort()
	for i := s.lowerBound(r.Begin); i < len(s.items); i++ {
		region := s.items[i].Region()
		if region.Begin >= r.End && !(region.IsEmpty() && region.Begin == r.End) {
			break
		}
		if region.Overlaps(r) {
			return true
		}
	}
	return false
}

// Encompassing returns the smallest region spanning every item in the
// set, and false if the set is empty.
func (s *MappableSet) Encompassing() (GenomicRegion, bool) {
	if len(s.items) == 0 {
		return GenomicRegion{}, false
	}
	result := s.items[0].Region()
	for _, m := range s.items[1:] {
		result = result.Encompassing(m.Region())
	}
	return result, true
}

// RemoveContained removes every item whose region is contained in r,
// returning the removed items in sorted order.
func (s *MappableSet) RemoveContained(r GenomicRegion) []Mappable {
	s.sort()
	removed := s.Contained(r)
	if len(removed) == 0 {
		return nil
	}
	kept := s.items[:0]
	for _, m := range s.items {
		if !r.Contains(m.Region()) {
			kept = append(kept, m)
		}
	}
	s.items = kept
	return removed
}
