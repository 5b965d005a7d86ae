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

import (
	"container/heap"
	"math"
)

// reversePostorder returns a DFS reverse-postorder traversal of every
// vertex reachable from root. Unlike a topological order this is
// well-defined even when the reachable subgraph contains cycles
// (pruning only guarantees no branching along the reference walk, not
// acyclicity — a reference whose kmers repeat, e.g. a short tandem
// repeat, produces a genuine cycle among reference vertices). It is
// the traversal order the dominator computation needs to converge.
func reversePostorder(g *graph, root int32) []int32 {
	visited := map[int32]bool{}
	var order []int32
	var visit func(int32)
	visit = func(v int32) {
		visited[v] = true
		for _, e := range g.out[v] {
			if !visited[e.to] {
				visit(e.to)
			}
		}
		order = append(order, v)
	}
	visit(root)
	reverse(order)
	return order
}

// pathItem is a priority-queue entry for dagShortestPaths.
type pathItem struct {
	vertex int32
	dist   float64
}

type pathQueue []pathItem

func (q pathQueue) Len() int            { return len(q) }
func (q pathQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q pathQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x interface{}) { *q = append(*q, x.(pathItem)) }
func (q *pathQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// dagShortestPaths computes single-source shortest paths from root,
// weighted by each edge's effectiveScore (+Inf for a blocked edge, so
// it is never chosen while any alternative exists). Despite the name
// (kept for continuity with the algorithm sketch this is grounded
// on), this is a plain Dijkstra rather than a topological relaxation:
// the graph is not guaranteed acyclic (see reversePostorder), but
// every edge weight is non-negative, so Dijkstra applies directly and
// needs no acyclicity precondition. Returns a predecessor-edge map
// suitable for backtracking a path to any reachable target.
func dagShortestPaths(g *graph, root int32) map[int32]*edge {
	dist := map[int32]float64{root: 0}
	pred := map[int32]*edge{}
	visited := map[int32]bool{}
	pq := &pathQueue{{vertex: root, dist: 0}}
	for pq.Len() > 0 {
		item := heap.Pop(pq).(pathItem)
		v := item.vertex
		if visited[v] {
			continue
		}
		visited[v] = true
		for _, e := range g.out[v] {
			w := e.effectiveScore()
			if math.IsInf(w, 1) {
				continue
			}
			nd := dist[v] + w
			if old, ok := dist[e.to]; !ok || nd < old {
				dist[e.to] = nd
				pred[e.to] = e
				heap.Push(pq, pathItem{vertex: e.to, dist: nd})
			}
		}
	}
	return pred
}
