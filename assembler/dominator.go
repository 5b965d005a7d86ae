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

// No graph library in the surrounding dependency stack exposes
// Lengauer-Tarjan dominators, so this inlines the simpler
// Cooper/Harvey/Kennedy iterative algorithm against the graph's own
// adjacency maps: repeatedly intersect each vertex's predecessors'
// dominator sets (represented as immediate-dominator chains) in
// reverse postorder until nothing changes. Converges in a handful of
// passes on the small, mostly-linear graphs this assembler produces.

// dominatorTree maps each reachable vertex to its immediate dominator.
// root maps to itself.
type dominatorTree struct {
	root int32
	idom map[int32]int32
}

func computeDominators(g *graph, root int32, order []int32) *dominatorTree {
	// order must be a DFS reverse-postorder of the vertices reachable
	// from root, as produced by reversePostorder; the algorithm
	// converges correctly even when that subgraph contains cycles.
	rpoIndex := make(map[int32]int, len(order))
	for i, id := range order {
		rpoIndex[id] = i
	}
	idom := make(map[int32]int32, len(order))
	idom[root] = root

	intersect := func(a, b int32) int32 {
		for a != b {
			for rpoIndex[a] > rpoIndex[b] {
				a = idom[a]
			}
			for rpoIndex[b] > rpoIndex[a] {
				b = idom[b]
			}
		}
		return a
	}

	changed := true
	for changed {
		changed = false
		for _, v := range order {
			if v == root {
				continue
			}
			var newIdom int32 = -1
			haveIdom := false
			for _, e := range g.in[v] {
				p := e.from
				if _, ok := idom[p]; !ok {
					continue
				}
				if !haveIdom {
					newIdom = p
					haveIdom = true
				} else {
					newIdom = intersect(newIdom, p)
				}
			}
			if cur, ok := idom[v]; haveIdom && (!ok || cur != newIdom) {
				idom[v] = newIdom
				changed = true
			}
		}
	}
	return &dominatorTree{root: root, idom: idom}
}

// dominates reports whether u dominates v (every path from root to v
// passes through u), including the trivial case u == v.
func (d *dominatorTree) dominates(u, v int32) bool {
	for {
		if u == v {
			return true
		}
		if v == d.root {
			return u == d.root
		}
		next, ok := d.idom[v]
		if !ok || next == v {
			return false
		}
		v = next
	}
}
