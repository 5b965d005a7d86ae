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

import "sort"

// maxBlockings caps the number of times ExtractVariants may block a
// pure-reference shortest path before giving up on forward progress
// for the current call. It is a hack against non-termination
// pathologies, not a correctness argument; the source's own TODO
// suggests Eppstein's k-shortest-paths algorithm as a principled
// replacement.
const maxBlockings = 50

// Variant is a candidate substitution, insertion, or deletion found
// by bubble extraction, expressed relative to the reference window
// this Assembler was built with: Pos is a 0-based offset into that
// window, not a genome coordinate. Callers translate to a
// region.GenomicRegion using their own window offset and contig.
type Variant struct {
	Pos      int32
	Ref, Alt []byte
}

// IsAllReference reports whether the graph currently contains only
// reference vertices, in which case ExtractVariants has nothing to
// do.
func (a *Assembler) IsAllReference() bool {
	for _, v := range a.g.vertices {
		if !v.isReference {
			return false
		}
	}
	return true
}

func (g *graph) numNonReferenceVertices() int {
	n := 0
	for _, v := range g.vertices {
		if !v.isReference {
			n++
		}
	}
	return n
}

// ExtractVariants enumerates up to max bubble paths relative to the
// reference and returns the resulting variants, sorted by (Pos,
// len(Ref)) and deduplicated by (Pos, Alt). Returns nil if the graph
// is empty or contains only reference vertices.
//
// The graph is not required to be acyclic here: Prune's uniqueness
// check (step 1) only guarantees the reference walk never branches,
// not that it never revisits a vertex — a short tandem repeat shorter
// than the kmer size does exactly that, folding several reference
// positions onto one vertex and closing a cycle made entirely of
// reference edges. Dominator computation and shortest-path search
// below are both cycle-tolerant (a DFS reverse-postorder and a
// genuine Dijkstra, respectively) for exactly this reason. A cycle
// that also touches a non-reference edge is not a fatal error either;
// it is handled the same way any other detour is, by scoring and, if
// necessary, blocking.
func (a *Assembler) ExtractVariants(max int) []Variant {
	if a.IsEmpty() || a.IsAllReference() {
		return nil
	}
	g := a.g
	g.scoreEdges()

	doms := computeDominators(g, a.referenceHead, reversePostorder(g, a.referenceHead))

	var variants []Variant
	blockings := 0
	for len(variants) < max && g.numNonReferenceVertices() > 0 {
		pred := dagShortestPaths(g, a.referenceHead)
		if _, reached := pred[a.referenceTail]; !reached && a.referenceHead != a.referenceTail {
			break
		}

		refBefore, refAfter, refBeforePos, refAfterPos, altVertices, isPureReference := a.findBubble(pred)

		if isPureReference {
			blockings++
			if blockings > maxBlockings {
				break
			}
			progress := blockNondominantReferencePath(g, doms, pred, a.referenceTail)
			if !progress {
				break
			}
			continue
		}

		v, ok := a.materializeVariant(refBefore, refAfter, refBeforePos, refAfterPos, altVertices)
		if ok {
			variants = append(variants, v)
		}
		removeBubble(g, refBefore, refAfter, altVertices, doms)
		doms = computeDominators(g, a.referenceHead, reversePostorder(g, a.referenceHead))
	}

	return dedupeAndSort(variants)
}

// findBubble backtracks the shortest-path predecessor map from tail
// to head, returning the point where the path leaves the reference.
// isPureReference is true when the entire shortest path is reference,
// in which case the remaining return values are not meaningful.
//
// refBeforePos and refAfterPos are the true reference-coordinate
// positions of refBefore/refAfter, computed by counting hops back to
// a known anchor (referenceHead or referenceTail) rather than trusted
// from vertex.refPos: a reference kmer that recurs (a short tandem
// repeat, say) collapses every occurrence onto one vertex, so the
// vertex alone cannot say which occurrence a particular walk landed
// on. Hop-counting from the anchor gets the occurrence right.
func (a *Assembler) findBubble(pred map[int32]*edge) (refBefore, refAfter, refBeforePos, refAfterPos int32, altVertices []int32, isPureReference bool) {
	g := a.g
	cursor := a.referenceTail
	steps := int32(0)
	for cursor != a.referenceHead {
		e, ok := pred[cursor]
		if !ok {
			break
		}
		if g.vertices[cursor].isReference && e.isReference {
			cursor = e.from
			steps++
			continue
		}
		break
	}
	refAfter = cursor
	if cursor == a.referenceHead {
		return a.referenceHead, 0, 0, 0, nil, true
	}
	refAfterPos = a.referenceTailPos - steps

	e := pred[cursor]
	prev := e.from
	if g.vertices[prev].isReference {
		// direct non-reference edge between two reference vertices: a
		// shortcut bubble with no interior vertices.
		refBefore = prev
		refBeforePos = a.referenceOccurrencePos(pred, prev)
		return refBefore, refAfter, refBeforePos, refAfterPos, nil, false
	}
	var interior []int32
	v := prev
	for !g.vertices[v].isReference {
		interior = append(interior, v)
		pe, ok := pred[v]
		if !ok {
			// no reference anchor found upstream; treat the earliest
			// vertex reached as the anchor to avoid an infinite walk.
			refBefore = v
			reverse(interior)
			refBeforePos = g.vertices[refBefore].refPos
			return refBefore, refAfter, refBeforePos, refAfterPos, interior, false
		}
		v = pe.from
	}
	refBefore = v
	reverse(interior)
	refBeforePos = a.referenceOccurrencePos(pred, refBefore)
	return refBefore, refAfter, refBeforePos, refAfterPos, interior, false
}

// referenceOccurrencePos walks the predecessor chain backward from v
// through consecutive reference edges to referenceHead, counting hops
// to recover v's true reference-coordinate position for this
// particular walk. Falls back to the vertex's recorded (leftmost)
// occurrence if the chain doesn't cleanly reach referenceHead.
func (a *Assembler) referenceOccurrencePos(pred map[int32]*edge, v int32) int32 {
	g := a.g
	steps := int32(0)
	cursor := v
	for cursor != a.referenceHead {
		e, ok := pred[cursor]
		if !ok {
			return g.vertices[v].refPos
		}
		if !(g.vertices[cursor].isReference && e.isReference) {
			return g.vertices[v].refPos
		}
		cursor = e.from
		steps++
	}
	return a.referenceHeadPos + steps
}

func reverse(ids []int32) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// materializeVariant reconstructs the reference and alt sequences
// spanning [refBefore, refAfter] and trims their shared prefix/suffix
// to produce a minimal (pos, ref, alt) variant. refBeforePos and
// refAfterPos are refBefore/refAfter's true reference positions for
// this walk, as computed by findBubble.
func (a *Assembler) materializeVariant(refBefore, refAfter, refBeforePos, refAfterPos int32, altVertices []int32) (Variant, bool) {
	g := a.g
	before := g.vertices[refBefore]
	after := g.vertices[refAfter]

	refStart := refBeforePos
	refEnd := refAfterPos + int32(a.k)
	if refEnd > int32(len(a.referenceSeq)) || refStart < 0 || refStart > refEnd {
		return Variant{}, false
	}
	refSeq := a.referenceSeq[refStart:refEnd]

	altSeq := append([]byte(nil), before.kmer.bytes...)
	for _, id := range altVertices {
		km := g.vertices[id].kmer.bytes
		altSeq = append(altSeq, km[len(km)-1])
	}
	altSeq = append(altSeq, after.kmer.bytes[len(after.kmer.bytes)-1])

	i := 0
	for i < len(refSeq) && i < len(altSeq) && refSeq[i] == altSeq[i] {
		i++
	}
	j := 0
	for j < len(refSeq)-i && j < len(altSeq)-i && refSeq[len(refSeq)-1-j] == altSeq[len(altSeq)-1-j] {
		j++
	}
	ref := append([]byte(nil), refSeq[i:len(refSeq)-j]...)
	alt := append([]byte(nil), altSeq[i:len(altSeq)-j]...)
	if len(ref) == 0 && len(alt) == 0 {
		return Variant{}, false
	}
	return Variant{Pos: refStart + int32(i), Ref: ref, Alt: alt}, true
}

// removeBubble deletes the bubble's interior vertices from the graph
// so subsequent shortest-path searches cannot reuse it. Every
// interior vertex is removed outright, except one that dominates
// refAfter and has in-degree > 1: that vertex stays in the graph and
// its out-edges are blocked instead. A bare direct edge (no interior
// vertices) is removed instead of any vertex.
func removeBubble(g *graph, refBefore, refAfter int32, altVertices []int32, doms *dominatorTree) {
	if len(altVertices) == 0 {
		for _, e := range append([]*edge(nil), g.out[refBefore]...) {
			if e.to == refAfter && !e.isReference {
				g.removeEdge(e)
			}
		}
		return
	}
	for _, id := range altVertices {
		if doms.dominates(id, refAfter) && g.inDegree(id) > 1 {
			// shared by another still-needed path; block instead of removing.
			for _, e := range g.out[id] {
				e.block()
			}
			continue
		}
		g.removeVertex(id)
	}
}

// blockNondominantReferencePath walks the current all-reference
// shortest path and blocks only the in-edges of reference vertices
// that do not dominate any other vertex still in the graph (matching
// extract_nondominant_reference): a vertex that dominates something
// else sits on every remaining path to it, so
// blocking its in-edge would sever that path too, not just steer the
// next search away from the reference choice at this vertex. A
// reference vertex with a sibling alt edge (the losing side of a
// bubble the reference happened to win) dominates nothing beyond
// itself, since the alt route reaches the same downstream vertices;
// blocking it is exactly what forces the next search onto that
// alternative. A vertex on an unbranched stretch with no alternate
// route dominates everything downstream of it and is left alone, so
// bubbles upstream or downstream of that stretch stay reachable.
// Returns false if there was nothing left to block (no forward
// progress possible).
func blockNondominantReferencePath(g *graph, doms *dominatorTree, pred map[int32]*edge, tail int32) bool {
	blockedAny := false
	cursor := tail
	for {
		e, ok := pred[cursor]
		if !ok {
			break
		}
		if !e.blocked && !dominatesOther(g, doms, cursor) {
			e.block()
			blockedAny = true
		}
		cursor = e.from
	}
	return blockedAny
}

// dominatesOther reports whether v dominates any vertex still in the
// graph other than itself.
func dominatesOther(g *graph, doms *dominatorTree, v int32) bool {
	for id := range g.vertices {
		if id == v {
			continue
		}
		if _, reachable := doms.idom[id]; !reachable {
			continue
		}
		if doms.dominates(v, id) {
			return true
		}
	}
	return false
}

func dedupeAndSort(variants []Variant) []Variant {
	if len(variants) == 0 {
		return nil
	}
	sort.Slice(variants, func(i, j int) bool {
		a, b := variants[i], variants[j]
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		if len(a.Ref) != len(b.Ref) {
			return len(a.Ref) < len(b.Ref)
		}
		return string(a.Alt) < string(b.Alt)
	})
	type posAlt struct {
		pos int32
		alt string
	}
	seen := make(map[posAlt]bool, len(variants))
	result := variants[:0]
	for _, v := range variants {
		key := posAlt{v.Pos, string(v.Alt)}
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, v)
	}
	return result
}
