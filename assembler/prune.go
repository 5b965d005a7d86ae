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

// Prune simplifies the graph in preparation for bubble extraction:
// removing trivial cycles, low-weight edges, and vertices that are
// disconnected from, or unreachable from, the reference path, then
// trimming reference-only flanks. It returns false, having cleared
// the graph, if the reference path turns out not to be unique or if
// pruning leaves the graph in an inconsistent state — callers recover
// by treating this as an assembler.ErrGraphInconsistency and
// re-running with different parameters.
func (a *Assembler) Prune(minWeight int32) bool {
	g := a.g

	// 1. reference path must be unique.
	if !referencePathIsUnique(g, a.refPath) {
		a.Clear()
		return false
	}

	// 2. remove trivial non-reference self-loops.
	for id := range g.vertices {
		for _, e := range append([]*edge(nil), g.out[id]...) {
			if e.from == e.to && !e.isReference {
				g.removeEdge(e)
			}
		}
	}

	// 3. compact vertex ids.
	remap := g.compact()
	a.referenceHead = remap[a.referenceHead]
	a.referenceTail = remap[a.referenceTail]
	for i, id := range a.refPath {
		a.refPath[i] = remap[id]
	}

	// 4. remove low-weight non-reference edges.
	for id := range g.vertices {
		for _, e := range append([]*edge(nil), g.out[id]...) {
			if e.isReference {
				continue
			}
			if e.weight < minWeight && g.inWeight(e.from)+e.weight+g.outWeight(e.to) < 3*minWeight {
				g.removeEdge(e)
			}
		}
	}

	// 5. remove degree-0 vertices.
	for _, id := range g.allVertices() {
		if g.degree(id) == 0 && id != a.referenceHead {
			g.removeVertex(id)
		}
	}

	// 6. remove vertices not reachable from reference_head.
	reachableFromHead := g.reachableFrom(a.referenceHead)
	for _, id := range g.allVertices() {
		if !reachableFromHead[id] {
			g.removeVertex(id)
		}
	}

	// 7. remove vertices past reference_tail, except those that loop
	// back around to reach reference_head again (still part of a
	// cycle the extractor may need to reason about).
	downstream := g.reachableFrom(a.referenceTail)
	delete(downstream, a.referenceTail)
	reachingHead := g.reachingTo(a.referenceHead)
	for id := range downstream {
		if !reachingHead[id] {
			g.removeVertex(id)
		}
	}

	// 8. remove vertices that cannot reach reference_tail.
	reachingTail := g.reachingTo(a.referenceTail)
	for _, id := range g.allVertices() {
		if !reachingTail[id] {
			g.removeVertex(id)
		}
	}

	// 9. trim reference-only flanks.
	for a.referenceHead != a.referenceTail && g.outDegree(a.referenceHead) == 1 {
		e := g.out[a.referenceHead][0]
		next := e.to
		g.removeVertex(a.referenceHead)
		a.referenceHead = next
		a.referenceHeadPos++
	}
	for a.referenceHead != a.referenceTail && g.inDegree(a.referenceTail) == 1 {
		e := g.in[a.referenceTail][0]
		prev := e.from
		g.removeVertex(a.referenceTail)
		a.referenceTail = prev
		a.referenceTailPos--
	}

	// 10. sanity check.
	if len(g.vertices) == 0 {
		a.Clear()
		return false
	}
	if a.referenceHead != a.referenceTail &&
		(g.outDegree(a.referenceHead) == 1 || g.inDegree(a.referenceTail) == 1) {
		a.Clear()
		return false
	}

	return true
}
