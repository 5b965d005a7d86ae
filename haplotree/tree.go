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

// Package haplotree implements a prefix tree over candidate alleles,
// rooted at an unmodified reference haplotype. Each root-to-leaf path
// is one haplotype: a specific, ordered choice of "reference" or
// "variant" at every site extended into the tree so far.
package haplotree

import (
	"github.com/exascience/octopus/allele"
	"github.com/exascience/octopus/region"
)

// node is one point of divergence (or the unbranched root) in the
// tree. Siblings under the same parent are the mutually exclusive
// options considered at siteRegion: at most one non-reference option
// per distinct allele offered there, plus the implicit
// reference-continuation option.
type node struct {
	parent      *node
	children    []*node
	siteRegion  region.GenomicRegion
	isRefOption bool
	allele      allele.Allele
	end         int32 // rightmost reference coordinate reached by this path
}

// Tree is a haplotype prefix tree over a reference window.
type Tree struct {
	contig    region.Contig
	refRegion region.GenomicRegion
	refSeq    []byte
	root      *node
	leaves    []*node
}

// New creates a Tree over reference, whose Region.Contig must equal
// contig. The tree initially holds a single haplotype: the reference
// itself, unmodified.
func New(contig region.Contig, reference allele.Haplotype) *Tree {
	root := &node{end: reference.Region.Begin}
	return &Tree{
		contig:    contig,
		refRegion: reference.Region,
		refSeq:    reference.Sequence,
		root:      root,
		leaves:    []*node{root},
	}
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// Extend applies a to every current leaf the allele can reach, and
// reports whether the tree gained any new leaf (haplotype).
//
// A leaf reached by a for the first time (its path has not yet
// decided anything overlapping a.Region) forks into two children: one
// continuing with reference bases through a.Region ("reference wins"
// here), and one applying a. A leaf that is itself an option already
// competing at a.Region (a sibling relationship, not a
// parent/child one) gains a new sibling for a instead of forking
// further, since applying two alleles at the same site simultaneously
// makes no sense. A leaf whose path has already moved past a.Region
// (via a longer indel, say) is left untouched: a no longer applies to
// it.
func (t *Tree) Extend(a allele.Allele) bool {
	grew := false
	// added tracks, per parent, the sibling created for a during this
	// call: several leaves can be siblings competing at the same site
	// (they share a parent and a siteRegion), and each must link to
	// the same new sibling rather than each creating its own.
	added := make(map[*node]*node)
	leaves := t.leaves
	next := make([]*node, 0, len(leaves))
	for _, l := range leaves {
		if l.parent != nil && l.siteRegion.Overlaps(a.Region) {
			sib, ok := added[l.parent]
			if !ok {
				sib = &node{
					parent:     l.parent,
					siteRegion: l.siteRegion.Encompassing(a.Region),
					allele:     a,
					end:        maxInt32(l.parent.end, a.Region.End),
				}
				l.parent.children = append(l.parent.children, sib)
				added[l.parent] = sib
				next = append(next, sib)
				grew = true
			}
			next = append(next, l)
			continue
		}
		if a.Region.Begin < l.end {
			next = append(next, l)
			continue
		}
		refChild := &node{parent: l, siteRegion: a.Region, isRefOption: true, end: maxInt32(l.end, a.Region.End)}
		altChild := &node{parent: l, siteRegion: a.Region, allele: a, end: maxInt32(l.end, a.Region.End)}
		l.children = []*node{refChild, altChild}
		next = append(next, refChild, altChild)
		grew = true
	}
	t.leaves = next
	return grew
}

// ExtendTreeUntil applies alleles in order until either all have been
// applied or applying the next one would push NumHaplotypes past
// limit. It returns the index of the first allele not applied, or
// len(alleles) if all were applied.
func (t *Tree) ExtendTreeUntil(alleles []allele.Allele, limit int) int {
	for i, a := range alleles {
		trial := t.Clone()
		trial.Extend(a)
		if trial.NumHaplotypes() > limit {
			return i
		}
		t.Extend(a)
	}
	return len(alleles)
}

// NumHaplotypes returns the number of distinct haplotypes (root-to-leaf
// paths) currently in the tree.
func (t *Tree) NumHaplotypes() int {
	return len(t.leaves)
}

// IsEmpty reports whether no allele has been applied yet, i.e. the
// tree still holds only the reference haplotype.
func (t *Tree) IsEmpty() bool {
	return len(t.leaves) == 1 && t.leaves[0] == t.root
}

// EncompassingRegion returns the smallest region spanning the
// reference window this tree was built over and every site extended
// into it so far.
func (t *Tree) EncompassingRegion() region.GenomicRegion {
	end := t.refRegion.End
	for _, l := range t.leaves {
		if l.end > end {
			end = l.end
		}
	}
	return region.New(t.contig, t.refRegion.Begin, end)
}

func collectLeaves(n *node, out *[]*node) {
	if len(n.children) == 0 {
		*out = append(*out, n)
		return
	}
	for _, c := range n.children {
		collectLeaves(c, out)
	}
}

// Clear removes every branch whose site overlaps r, collapsing paths
// back to their last surviving ancestor.
func (t *Tree) Clear(r region.GenomicRegion) {
	var prune func(n *node) bool
	prune = func(n *node) bool {
		if n.parent != nil && n.siteRegion.Overlaps(r) {
			return true
		}
		kept := n.children[:0]
		for _, c := range n.children {
			if !prune(c) {
				kept = append(kept, c)
			}
		}
		n.children = kept
		return false
	}
	prune(t.root)
	var leaves []*node
	collectLeaves(t.root, &leaves)
	t.leaves = leaves
}

// ClearAll discards every applied allele, resetting the tree to hold
// only the reference haplotype.
func (t *Tree) ClearAll() {
	t.root = &node{end: t.refRegion.Begin}
	t.leaves = []*node{t.root}
}

func (t *Tree) refSlice(from, to int32) []byte {
	if to <= from {
		return nil
	}
	base := t.refRegion.Begin
	lo, hi := from-base, to-base
	if lo < 0 {
		lo = 0
	}
	if hi > int32(len(t.refSeq)) {
		hi = int32(len(t.refSeq))
	}
	if hi <= lo {
		return nil
	}
	return t.refSeq[lo:hi]
}

func ancestorPath(n *node) []*node {
	var path []*node
	for cur := n; cur.parent != nil; cur = cur.parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// materialize concatenates the alleles and reference gaps along the
// root-to-leaf path, padded on both sides with reference bases to
// exactly cover boundingRegion.
func (t *Tree) materialize(leaf *node, boundingRegion region.GenomicRegion) allele.Haplotype {
	path := ancestorPath(leaf)
	var seq []byte
	cursor := boundingRegion.Begin
	appendRef := func(to int32) {
		if to > cursor {
			seq = append(seq, t.refSlice(cursor, to)...)
			cursor = to
		}
	}
	for _, n := range path {
		appendRef(n.siteRegion.Begin)
		if n.isRefOption {
			appendRef(n.siteRegion.End)
		} else {
			seq = append(seq, n.allele.Sequence...)
			cursor = n.siteRegion.End
		}
	}
	appendRef(boundingRegion.End)
	return allele.Haplotype{Region: boundingRegion, Sequence: seq}
}

// ExtractHaplotypes materializes every haplotype currently in the
// tree, padded with reference on both sides to exactly cover
// boundingRegion.
func (t *Tree) ExtractHaplotypes(boundingRegion region.GenomicRegion) []allele.Haplotype {
	haplotypes := make([]allele.Haplotype, len(t.leaves))
	for i, l := range t.leaves {
		haplotypes[i] = t.materialize(l, boundingRegion)
	}
	return haplotypes
}

// Clone returns a deep copy of t, independent of further mutation.
func (t *Tree) Clone() *Tree {
	var copyNode func(n, parent *node) *node
	copyNode = func(n, parent *node) *node {
		c := &node{
			parent:      parent,
			siteRegion:  n.siteRegion,
			isRefOption: n.isRefOption,
			allele:      n.allele,
			end:         n.end,
		}
		for _, ch := range n.children {
			c.children = append(c.children, copyNode(ch, c))
		}
		return c
	}
	newRoot := copyNode(t.root, nil)
	var leaves []*node
	collectLeaves(newRoot, &leaves)
	return &Tree{
		contig:    t.contig,
		refRegion: t.refRegion,
		refSeq:    t.refSeq,
		root:      newRoot,
		leaves:    leaves,
	}
}
