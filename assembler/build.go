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

package assembler

const minKmerSize = 3

// Assembler builds a weighted de Bruijn graph at a fixed kmer size
// from a reference segment and a stream of overlapping reads, and
// extracts candidate variants relative to the reference.
type Assembler struct {
	k     int
	g     *graph
	arena *arena

	referenceInserted bool
	referenceSeq      []byte
	referenceHead     int32
	referenceTail     int32
	// referenceHeadPos and referenceTailPos are the current head/tail
	// vertices' true positions in the original reference sequence.
	// They are tracked by hop count rather than trusted from the
	// vertex itself, because a repeated kmer within the reference
	// collapses two distinct positions onto one vertex; the vertex
	// alone cannot tell which occurrence a given walk is at.
	referenceHeadPos int32
	referenceTailPos int32
	// refPath holds the vertex ids visited by the reference walk, in
	// order, as originally inserted (before any pruning). Duplicate
	// kmers within the reference produce repeated ids. Consumed by
	// Prune's uniqueness check; Prune's id compaction then remaps its
	// entries in place, and nothing removes entries from it afterwards.
	refPath []int32
}

// New creates an Assembler with kmer size k and no reference; the
// reference must be supplied via InsertReference before pruning or
// extraction.
func New(k int) *Assembler {
	return &Assembler{k: k, g: newGraph()}
}

// NewWithReference creates an Assembler and immediately inserts seq
// as its reference sequence.
func NewWithReference(k int, seq []byte) (*Assembler, error) {
	a := New(k)
	if err := a.InsertReference(seq); err != nil {
		return nil, err
	}
	return a, nil
}

// KmerSize returns the assembler's fixed kmer length.
func (a *Assembler) KmerSize() int { return a.k }

// NumKmers returns the number of distinct vertices currently in the
// graph.
func (a *Assembler) NumKmers() int { return len(a.g.vertices) }

// IsEmpty reports whether the graph has no vertices.
func (a *Assembler) IsEmpty() bool { return len(a.g.vertices) == 0 }

// IsAcyclic reports whether the graph, as it stands, contains no
// cycles.
func (a *Assembler) IsAcyclic() bool { return a.g.isAcyclic() }

// InsertReference sets the reference sequence for this assembler. It
// may be called at most once. k must be at least 3 and at most
// len(seq); the reference must consist entirely of canonical bases.
func (a *Assembler) InsertReference(seq []byte) error {
	if a.referenceInserted {
		return ErrReferenceAlreadyInserted
	}
	if a.k < minKmerSize || a.k > len(seq) {
		return ErrBadReferenceSequence
	}
	if !isCanonical(seq) {
		return ErrBadReferenceSequence
	}
	a.referenceSeq = append([]byte(nil), seq...)
	a.arena = newArena(a.referenceSeq)

	refPath := make([]int32, 0, len(a.referenceSeq)-a.k+1)
	var prevID int32 = -1
	for i := 0; i+a.k <= len(a.referenceSeq); i++ {
		km := a.arena.referenceKmer(i, a.k)
		id := a.g.addReferenceVertex(km, int32(i))
		if i == 0 {
			a.referenceHead = id
			a.referenceHeadPos = 0
		}
		a.referenceTail = id
		a.referenceTailPos = int32(i)
		if prevID != -1 {
			a.g.addEdge(prevID, id, true)
		}
		prevID = id
		refPath = append(refPath, id)
	}
	a.refPath = refPath
	a.referenceInserted = true
	return nil
}

// referencePathIsUnique reports whether every consecutive pair of
// vertices in path is connected by exactly one reference edge in that
// direction, i.e. no reference vertex has been forced to branch
// because a repeated kmer was followed by two different continuations
// at different positions in the reference.
func referencePathIsUnique(g *graph, path []int32) bool {
	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		distinctOut := map[int32]bool{}
		for _, e := range g.out[u] {
			if e.isReference {
				distinctOut[e.to] = true
			}
		}
		if len(distinctOut) != 1 || !distinctOut[v] {
			return false
		}
		distinctIn := map[int32]bool{}
		for _, e := range g.in[v] {
			if e.isReference {
				distinctIn[e.from] = true
			}
		}
		if len(distinctIn) != 1 || !distinctIn[u] {
			return false
		}
	}
	return true
}

// InsertRead adds every kmer transition in seq to the graph,
// incrementing edge weights for transitions already present. Windows
// containing a non-canonical base are dropped, breaking the chain at
// that point rather than aborting the whole read.
func (a *Assembler) InsertRead(seq []byte) {
	if len(seq) < a.k {
		return
	}
	if a.arena == nil {
		a.arena = newArena(nil)
	}
	a.arena.beginRead()
	defer a.arena.endRead()

	var prevID int32 = -1
	for i := 0; i+a.k <= len(seq); i++ {
		window := seq[i : i+a.k]
		if !isCanonical(window) {
			prevID = -1
			continue
		}
		km := a.arena.readWindow(window)
		id, exists := a.g.lookup(km)
		if !exists {
			id = a.g.addVertex(a.arena.own(km), false)
		}
		if prevID != -1 {
			a.g.addEdge(prevID, id, false)
		}
		prevID = id
	}
}

// Clear discards all graph state; the assembler may be reused with a
// fresh InsertReference call.
func (a *Assembler) Clear() {
	a.g = newGraph()
	a.referenceInserted = false
	a.referenceSeq = nil
	a.arena = nil
	a.referenceHead = 0
	a.referenceTail = 0
	a.referenceHeadPos = 0
	a.referenceTailPos = 0
	a.refPath = nil
}
