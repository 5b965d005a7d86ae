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

// Package assembler builds a local de Bruijn graph from a reference
// segment and a set of overlapping reads, prunes it, and extracts
// candidate (pos, ref, alt) variants relative to the reference by
// bubble-path enumeration.
package assembler

import (
	"github.com/exascience/octopus/internal"
	"github.com/bits-and-blooms/bitset"
)

// canonicalBases marks the byte values allowed in a kmer: upper-case
// A, C, G, T. Any other byte value (N, lower case, IUPAC ambiguity
// codes) makes the kmer non-canonical.
var canonicalBases = func() *bitset.BitSet {
	b := bitset.New(256)
	for _, c := range []byte("ACGT") {
		b.Set(uint(c))
	}
	return b
}()

func isCanonical(seq []byte) bool {
	for _, c := range seq {
		if !canonicalBases.Test(uint(c)) {
			return false
		}
	}
	return true
}

// kmer is a fixed-length window into an underlying immutable byte
// buffer. Its hash is computed once at construction; equality is
// sequence equality, compared through the string form used as the
// graph's vertex lookup key.
type kmer struct {
	bytes []byte
	hash  uint64
}

func newKmer(bytes []byte) kmer {
	return kmer{bytes: bytes, hash: internal.StringHash(string(bytes))}
}

// key returns the map key used to deduplicate vertices by sequence.
func (k kmer) key() string {
	return string(k.bytes)
}

func (k kmer) String() string {
	return string(k.bytes)
}

// arena holds kmer-sized byte windows carved out of read and
// reference sequences so that every kmer's bytes remain valid for the
// lifetime of the Assembler, per the "kmers are views into a stable
// buffer" design constraint. Reference bytes are kept as a single
// contiguous slice (kmers are sub-slices of it); read-derived kmers
// that do not already appear in the reference are copied into
// dedicated backing arrays, since kmers straddling separate read
// records cannot share one contiguous buffer.
type arena struct {
	reference []byte
	scratch   []byte
}

func newArena(reference []byte) *arena {
	return &arena{reference: reference}
}

// referenceKmer returns the kmer at position i (0-based) in the
// reference, as a slice into the arena's reference buffer.
func (a *arena) referenceKmer(i, k int) kmer {
	return newKmer(a.reference[i : i+k])
}

// beginRead reserves a pooled scratch buffer used to hold a rolling
// read kmer window before it is known whether the window already
// exists as a vertex.
func (a *arena) beginRead() {
	a.scratch = internal.ReserveByteBuffer()
}

// readWindow copies bytes into the scratch buffer and returns the
// resulting kmer view; the view is only valid until the next call to
// readWindow or endRead.
func (a *arena) readWindow(bytes []byte) kmer {
	a.scratch = append(a.scratch[:0], bytes...)
	return newKmer(a.scratch)
}

// own copies a scratch-backed kmer into a freshly allocated,
// permanently owned backing array, for use when a read window turns
// out to be a genuinely new vertex.
func (a *arena) own(k kmer) kmer {
	return kmer{bytes: append([]byte(nil), k.bytes...), hash: k.hash}
}

// endRead returns the scratch buffer to the pool.
func (a *arena) endRead() {
	internal.ReleaseByteBuffer(a.scratch)
	a.scratch = nil
}
