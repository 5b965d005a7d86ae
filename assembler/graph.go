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

// vertex is one kmer node in the de Bruijn graph. id is a compact,
// zero-based index regenerated whenever the graph is compacted, so
// that external property maps (transition scores, BFS visited sets)
// can be plain slices instead of maps.
type vertex struct {
	id          int32
	kmer        kmer
	isReference bool
	// refPos is the 0-based offset of this vertex's kmer in the
	// original reference sequence, valid only when isReference is
	// true. It survives vertex-id compaction, unlike id itself.
	refPos int32
}

// edge is a directed transition between two vertices (by id),
// carrying an occurrence weight and a reference flag. score is filled
// in by scoreEdges and is not meaningful before that.
type edge struct {
	from, to    int32
	weight      int32
	isReference bool
	score       float64
	blocked     bool
}

// graph is a weighted directed multigraph over kmer vertices, stored
// as parallel adjacency maps, mirroring the teacher's kmerGraph
// layout (vertices map[int32]*vertexInfo, outgoingEdges/incomingEdges
// map[int32][]*edgeInfo) so that vertex and edge removal stay O(1)
// amortized without shifting slice contents.
type graph struct {
	nextID   int32
	vertices map[int32]*vertex
	byKey    map[string]int32
	out      map[int32][]*edge
	in       map[int32][]*edge
}

func newGraph() *graph {
	return &graph{
		vertices: make(map[int32]*vertex),
		byKey:    make(map[string]int32),
		out:      make(map[int32][]*edge),
		in:       make(map[int32][]*edge),
	}
}

func (g *graph) lookup(k kmer) (int32, bool) {
	id, ok := g.byKey[k.key()]
	return id, ok
}

// addVertex inserts k as a new vertex, or, if a vertex with the same
// sequence already exists, updates its isReference flag (OR-ed in,
// never cleared) and returns it unchanged otherwise. Returns the
// vertex id either way.
func (g *graph) addVertex(k kmer, isReference bool) int32 {
	if id, ok := g.lookup(k); ok {
		if isReference {
			g.vertices[id].isReference = true
		}
		return id
	}
	id := g.nextID
	g.nextID++
	g.vertices[id] = &vertex{id: id, kmer: k, isReference: isReference}
	g.byKey[k.key()] = id
	return id
}

// addReferenceVertex behaves like addVertex(k, true), additionally
// recording pos as the vertex's reference offset the first time it is
// seen (duplicate reference kmers keep their original, leftmost pos).
func (g *graph) addReferenceVertex(k kmer, pos int32) int32 {
	if id, ok := g.lookup(k); ok {
		g.vertices[id].isReference = true
		return id
	}
	id := g.addVertex(k, true)
	g.vertices[id].refPos = pos
	return id
}

// addEdge adds a new edge from -> to with weight 1, or, if one
// already exists, increments its weight by 1. Either way the edge's
// isReference flag is OR-ed with isReference.
func (g *graph) addEdge(from, to int32, isReference bool) {
	for _, e := range g.out[from] {
		if e.to == to {
			e.weight++
			if isReference {
				e.isReference = true
			}
			return
		}
	}
	e := &edge{from: from, to: to, weight: 1, isReference: isReference}
	g.out[from] = append(g.out[from], e)
	g.in[to] = append(g.in[to], e)
}

func removeEdgePtr(edges []*edge, target *edge) []*edge {
	for i, e := range edges {
		if e == target {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}

func (g *graph) removeEdge(e *edge) {
	g.out[e.from] = removeEdgePtr(g.out[e.from], e)
	g.in[e.to] = removeEdgePtr(g.in[e.to], e)
}

func (g *graph) removeVertex(id int32) {
	for _, e := range append([]*edge(nil), g.out[id]...) {
		g.removeEdge(e)
	}
	for _, e := range append([]*edge(nil), g.in[id]...) {
		g.removeEdge(e)
	}
	delete(g.out, id)
	delete(g.in, id)
	if v, ok := g.vertices[id]; ok {
		delete(g.byKey, v.kmer.key())
	}
	delete(g.vertices, id)
}

func (g *graph) outDegree(id int32) int { return len(g.out[id]) }
func (g *graph) inDegree(id int32) int  { return len(g.in[id]) }
func (g *graph) degree(id int32) int    { return g.outDegree(id) + g.inDegree(id) }

func (g *graph) outWeight(id int32) int32 {
	var w int32
	for _, e := range g.out[id] {
		w += e.weight
	}
	return w
}

func (g *graph) inWeight(id int32) int32 {
	var w int32
	for _, e := range g.in[id] {
		w += e.weight
	}
	return w
}

// allVertices returns every vertex id, sorted, matching the teacher's
// getAllVertices convention of returning a deterministically ordered
// snapshot rather than an unordered map range.
func (g *graph) allVertices() []int32 {
	ids := make([]int32, 0, len(g.vertices))
	for id := range g.vertices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// verticesWhere returns every vertex satisfying predicate, sorted by id.
func (g *graph) verticesWhere(predicate func(*vertex) bool) []int32 {
	var ids []int32
	for _, id := range g.allVertices() {
		if predicate(g.vertices[id]) {
			ids = append(ids, id)
		}
	}
	return ids
}

// compact regenerates vertex ids so they are contiguous starting at
// 0, preserving relative order. Returns the old-id -> new-id mapping.
func (g *graph) compact() map[int32]int32 {
	old := g.allVertices()
	remap := make(map[int32]int32, len(old))
	newVertices := make(map[int32]*vertex, len(old))
	newOut := make(map[int32][]*edge, len(old))
	newIn := make(map[int32][]*edge, len(old))
	newByKey := make(map[string]int32, len(old))
	for newID, oldID := range old {
		remap[oldID] = int32(newID)
	}
	for oldID, newID := range remap {
		v := g.vertices[oldID]
		v.id = newID
		newVertices[newID] = v
		newByKey[v.kmer.key()] = newID
	}
	for oldID, newID := range remap {
		for _, e := range g.out[oldID] {
			e.from = remap[e.from]
			e.to = remap[e.to]
			newOut[newID] = append(newOut[newID], e)
		}
		for _, e := range g.in[oldID] {
			newIn[newID] = append(newIn[newID], e)
		}
	}
	g.vertices = newVertices
	g.out = newOut
	g.in = newIn
	g.byKey = newByKey
	g.nextID = int32(len(old))
	return remap
}

// isAcyclic runs a DFS-based cycle detector over the whole graph,
// tracking a processing/done state per vertex as in the teacher's
// cycleDetector, rather than the standard three-color scheme's color
// enum, to stay close to the source idiom.
func (g *graph) isAcyclic() bool {
	const (
		unvisited = 0
		processing = 1
		done = 2
	)
	state := make(map[int32]int8, len(g.vertices))
	var stack []int32
	var visit func(int32) bool
	visit = func(id int32) bool {
		state[id] = processing
		stack = append(stack, id)
		for _, e := range g.out[id] {
			switch state[e.to] {
			case processing:
				return false
			case unvisited:
				if !visit(e.to) {
					return false
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		return true
	}
	for _, id := range g.allVertices() {
		if state[id] == unvisited {
			if !visit(id) {
				return false
			}
		}
	}
	return true
}

// reachableFrom returns the set of vertex ids reachable from start
// via a forward BFS.
func (g *graph) reachableFrom(start int32) map[int32]bool {
	visited := map[int32]bool{start: true}
	queue := []int32{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range g.out[id] {
			if !visited[e.to] {
				visited[e.to] = true
				queue = append(queue, e.to)
			}
		}
	}
	return visited
}

// reachingTo returns the set of vertex ids that can reach target via
// a backward BFS.
func (g *graph) reachingTo(target int32) map[int32]bool {
	visited := map[int32]bool{target: true}
	queue := []int32{target}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range g.in[id] {
			if !visited[e.from] {
				visited[e.from] = true
				queue = append(queue, e.from)
			}
		}
	}
	return visited
}
