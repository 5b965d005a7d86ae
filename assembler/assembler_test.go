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
	"bytes"
	"testing"
)

func TestExtractVariantsSingleSNP(t *testing.T) {
	a, err := NewWithReference(5, []byte("ACGTACGTACG"))
	if err != nil {
		t.Fatalf("NewWithReference: %v", err)
	}
	for i := 0; i < 20; i++ {
		a.InsertRead([]byte("ACGTACGTACG"))
	}
	for i := 0; i < 10; i++ {
		a.InsertRead([]byte("ACGTAAGTACG"))
	}
	if !a.Prune(2) {
		t.Fatalf("Prune failed")
	}
	variants := a.ExtractVariants(10)
	if len(variants) != 1 {
		t.Fatalf("got %d variants, want 1: %+v", len(variants), variants)
	}
	v := variants[0]
	if v.Pos != 5 || !bytes.Equal(v.Ref, []byte("C")) || !bytes.Equal(v.Alt, []byte("A")) {
		t.Fatalf("got %+v, want Pos=5 Ref=C Alt=A", v)
	}
}

// TestExtractVariantsTwoIndependentSNPsAcrossUnbranchedStretch guards
// against blocking the whole pure-reference path when it wins at more
// than one site: the two SNPs here sit far enough apart that an
// unbranched, single-edge stretch of reference lies between them with
// no alternate route at all. Blocking that stretch's edge would
// disconnect the second bubble from the first regardless of what else
// gets blocked; only the branch-point edges at each SNP itself should
// ever be blocked.
func TestExtractVariantsTwoIndependentSNPsAcrossUnbranchedStretch(t *testing.T) {
	ref := []byte("ACGTTGCAACGGTTACGCATG")
	alt1 := append([]byte(nil), ref...)
	alt1[5] = 'A' // ref[5] == 'G'
	alt2 := append([]byte(nil), ref...)
	alt2[14] = 'G' // ref[14] == 'A'

	a, err := NewWithReference(5, ref)
	if err != nil {
		t.Fatalf("NewWithReference: %v", err)
	}
	for i := 0; i < 20; i++ {
		a.InsertRead(ref)
	}
	for i := 0; i < 10; i++ {
		a.InsertRead(alt1)
	}
	for i := 0; i < 10; i++ {
		a.InsertRead(alt2)
	}
	if !a.Prune(2) {
		t.Fatalf("Prune failed")
	}
	variants := a.ExtractVariants(10)
	if len(variants) != 2 {
		t.Fatalf("got %d variants, want 2 (one SNP was dropped by over-blocking): %+v", len(variants), variants)
	}
	if variants[0].Pos != 5 || !bytes.Equal(variants[0].Ref, []byte("G")) || !bytes.Equal(variants[0].Alt, []byte("A")) {
		t.Fatalf("variant 0: got %+v, want Pos=5 Ref=G Alt=A", variants[0])
	}
	if variants[1].Pos != 14 || !bytes.Equal(variants[1].Ref, []byte("A")) || !bytes.Equal(variants[1].Alt, []byte("G")) {
		t.Fatalf("variant 1: got %+v, want Pos=14 Ref=A Alt=G", variants[1])
	}
}

func TestExtractVariantsPalindromicReference(t *testing.T) {
	a, err := NewWithReference(3, []byte("AAAA"))
	if err != nil {
		t.Fatalf("NewWithReference: %v", err)
	}
	a.InsertRead([]byte("AAAA"))
	if !a.Prune(2) {
		t.Fatalf("Prune failed")
	}
	if !a.IsAllReference() {
		t.Fatalf("expected an all-reference graph after a duplicate-kmer reference with no variant reads")
	}
	if variants := a.ExtractVariants(10); variants != nil {
		t.Fatalf("got %+v, want nil (all reference)", variants)
	}
}

func TestInsertReferenceBadSequence(t *testing.T) {
	if _, err := NewWithReference(5, []byte("ACGTNCGTACG")); err != ErrBadReferenceSequence {
		t.Fatalf("got %v, want ErrBadReferenceSequence", err)
	}
	if _, err := NewWithReference(5, []byte("ACG")); err != ErrBadReferenceSequence {
		t.Fatalf("k larger than reference: got %v, want ErrBadReferenceSequence", err)
	}
}

func TestInsertReferenceOnlyOnce(t *testing.T) {
	a := New(5)
	if err := a.InsertReference([]byte("ACGTACGTACG")); err != nil {
		t.Fatalf("first InsertReference: %v", err)
	}
	if err := a.InsertReference([]byte("ACGTACGTACG")); err != ErrReferenceAlreadyInserted {
		t.Fatalf("got %v, want ErrReferenceAlreadyInserted", err)
	}
}

func TestReferenceRecoverableAfterPrune(t *testing.T) {
	a, err := NewWithReference(5, []byte("ACGTACGTACG"))
	if err != nil {
		t.Fatalf("NewWithReference: %v", err)
	}
	for i := 0; i < 20; i++ {
		a.InsertRead([]byte("ACGTACGTACG"))
	}
	for i := 0; i < 10; i++ {
		a.InsertRead([]byte("ACGTAAGTACG"))
	}
	if !a.Prune(2) {
		t.Fatalf("Prune failed")
	}

	// Walk reference edges from reference_head to reference_tail and
	// confirm the walked sequence reconstructs a valid reference kmer
	// path, per the recoverability property.
	g := a.g
	cursor := a.referenceHead
	seen := map[int32]bool{}
	steps := 0
	for cursor != a.referenceTail {
		var next int32 = -1
		for _, e := range g.out[cursor] {
			if e.isReference {
				next = e.to
				break
			}
		}
		if next == -1 {
			t.Fatalf("reference walk broke at vertex %d after %d steps", cursor, steps)
		}
		cursor = next
		steps++
		if seen[cursor] {
			// revisiting a vertex is fine (a repeated kmer), but guard
			// against a runaway loop in a broken test.
			if steps > 4*len(g.vertices) {
				t.Fatalf("reference walk did not reach tail within a bounded number of steps")
			}
		}
		seen[cursor] = true
	}
}

func TestDedupeAndSort(t *testing.T) {
	in := []Variant{
		{Pos: 5, Ref: []byte("C"), Alt: []byte("A")},
		{Pos: 2, Ref: []byte("A"), Alt: []byte("G")},
		{Pos: 5, Ref: []byte("C"), Alt: []byte("A")}, // exact duplicate
		{Pos: 5, Ref: []byte("CC"), Alt: []byte("A")},
		{Pos: 5, Ref: []byte("C"), Alt: []byte("T")},
	}
	got := dedupeAndSort(in)
	want := []Variant{
		{Pos: 2, Ref: []byte("A"), Alt: []byte("G")},
		{Pos: 5, Ref: []byte("C"), Alt: []byte("A")},
		{Pos: 5, Ref: []byte("C"), Alt: []byte("T")},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d variants, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Pos != want[i].Pos || !bytes.Equal(got[i].Ref, want[i].Ref) || !bytes.Equal(got[i].Alt, want[i].Alt) {
			t.Fatalf("at %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractVariantsRespectsMax(t *testing.T) {
	a, err := NewWithReference(5, []byte("ACGTACGTACG"))
	if err != nil {
		t.Fatalf("NewWithReference: %v", err)
	}
	for i := 0; i < 20; i++ {
		a.InsertRead([]byte("ACGTACGTACG"))
	}
	for i := 0; i < 10; i++ {
		a.InsertRead([]byte("ACGTAAGTACG"))
	}
	if !a.Prune(2) {
		t.Fatalf("Prune failed")
	}
	if variants := a.ExtractVariants(0); len(variants) != 0 {
		t.Fatalf("max=0 should yield no variants, got %+v", variants)
	}
}

func TestIsEmptyAndClear(t *testing.T) {
	a := New(5)
	if !a.IsEmpty() {
		t.Fatalf("new assembler should be empty")
	}
	if err := a.InsertReference([]byte("ACGTACGTACG")); err != nil {
		t.Fatalf("InsertReference: %v", err)
	}
	if a.IsEmpty() {
		t.Fatalf("assembler with a reference should not be empty")
	}
	a.Clear()
	if !a.IsEmpty() {
		t.Fatalf("assembler should be empty after Clear")
	}
	if err := a.InsertReference([]byte("ACGTACGTACG")); err != nil {
		t.Fatalf("InsertReference after Clear: %v", err)
	}
}

func TestScoreEdges(t *testing.T) {
	g := newGraph()
	v0 := g.addVertex(newKmer([]byte("AAAA")), true)
	v1 := g.addVertex(newKmer([]byte("AAAT")), true)
	v2 := g.addVertex(newKmer([]byte("AAAC")), false)
	g.addEdge(v0, v1, true)
	g.addEdge(v0, v1, true)
	g.addEdge(v0, v1, true)
	g.addEdge(v0, v2, false)
	g.scoreEdges()
	// out-weight from v0 is 4 (3 + 1); the v0->v1 edge has weight 3.
	var toV1, toV2 *edge
	for _, e := range g.out[v0] {
		if e.to == v1 {
			toV1 = e
		} else {
			toV2 = e
		}
	}
	want := transitionScore(3, 4)
	if toV1.score != want {
		t.Fatalf("got score %v, want %v", toV1.score, want)
	}
	if toV2.score != transitionScore(1, 4) {
		t.Fatalf("got score %v, want %v", toV2.score, transitionScore(1, 4))
	}
}

func TestHasNonUniqueReferencePathClearsGraph(t *testing.T) {
	// Construct a graph by hand where the reference path branches: two
	// different reference edges leave the same vertex, which Prune
	// step 1 must reject.
	a := New(3)
	g := newGraph()
	v0 := g.addReferenceVertex(newKmer([]byte("AAA")), 0)
	v1 := g.addReferenceVertex(newKmer([]byte("AAT")), 1)
	v2 := g.addReferenceVertex(newKmer([]byte("AAC")), 2)
	g.addEdge(v0, v1, true)
	g.addEdge(v0, v2, true)
	a.g = g
	a.referenceHead = v0
	a.referenceTail = v1
	a.refPath = []int32{v0, v1}
	a.referenceInserted = true
	a.referenceSeq = []byte("AAAT")

	if a.Prune(1) {
		t.Fatalf("Prune should fail on a branching reference path")
	}
	if !a.IsEmpty() {
		t.Fatalf("Prune should have cleared the graph on failure")
	}
}
