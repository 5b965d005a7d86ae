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

// Package generator drives a haplotree.Tree forward one active region
// at a time, deciding how far to advance and which candidate alleles
// to fold in, following one contig's read and allele evidence from
// left to right. It is not safe for concurrent use by multiple
// goroutines against the same contig; see cmd.Call for how callers
// fan out one generator per contig instead.
package generator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/exascience/octopus/allele"
	"github.com/exascience/octopus/haplotree"
	"github.com/exascience/octopus/region"
	"github.com/exascience/octopus/walker"
)

// Lagging selects how aggressively the generator keeps alleles from
// the current active region in scope for the next one.
type Lagging int

const (
	LaggingNone Lagging = iota
	LaggingConservative
	LaggingNormal
	LaggingAggressive
)

// Limits bounds how many haplotypes the tree may hold at once.
// Target <= Holdout <= Overflow is expected to hold at all times.
type Limits struct {
	Target, Holdout, Overflow int
}

// SetTarget updates Target, raising Holdout and/or Overflow to
// Target+1 if either would otherwise fall at or below the new Target.
func (l *Limits) SetTarget(target int) {
	l.Target = target
	if l.Holdout <= target {
		l.Holdout = target + 1
	}
	if l.Overflow <= target {
		l.Overflow = target + 1
	}
}

// Policies configures a HaplotypeGenerator.
type Policies struct {
	Lagging          Lagging
	HaplotypeLimits  Limits
	MaxHoldoutDepth  int
	// MinFlankPad is the minimum padding calculateHaplotypeRegion adds
	// on each side of the active region or the read span, beyond the
	// indel-proportional pad.
	MinFlankPad int32
}

// ErrEmptyCandidateSet is returned by New when no candidate alleles
// are supplied: there is nothing for the generator to ever walk over.
var ErrEmptyCandidateSet = errors.New("generator: empty candidate allele set")

// HaplotypeOverflowError reports that folding in a novel region's
// alleles would exceed HaplotypeLimits.Overflow even after holdout
// extraction. Callers may catch this and skip the region.
type HaplotypeOverflowError struct {
	Region region.GenomicRegion
	Size   int
}

func (e *HaplotypeOverflowError) Error() string {
	return fmt.Sprintf("generator: haplotype overflow in %v: %d haplotypes", e.Region, e.Size)
}

type holdoutFrame struct {
	region  region.GenomicRegion
	alleles []allele.Allele
}

// HaplotypeGenerator produces successive batches of haplotypes for
// one contig, advancing a haplotree.Tree region by region.
type HaplotypeGenerator struct {
	contig  region.Contig
	policies Policies

	tree           *haplotree.Tree
	activeRegion   region.GenomicRegion
	appliedThrough int32

	candidateAlleles []allele.Allele
	// reads is pushed in by the caller ahead of each Generate call
	// (cmd passes the spans a reads.Source reports for the next active
	// region); the generator holds no reads.Source of its own.
	reads []region.GenomicRegion

	holdoutStack  []holdoutFrame
	holdoutRegion region.GenomicRegion

	defaultWalker, laggedWalker, holdoutWalker *walker.GenomeWalker
}

// New creates a HaplotypeGenerator over reference, with candidateAlleles
// as the full pool of alleles it will ever consider. candidateAlleles
// must be non-empty.
func New(contig region.Contig, reference allele.Haplotype, candidateAlleles []allele.Allele, policies Policies) (*HaplotypeGenerator, error) {
	if len(candidateAlleles) == 0 {
		return nil, ErrEmptyCandidateSet
	}
	sorted := append([]allele.Allele(nil), candidateAlleles...)
	sortAlleles(sorted)

	g := &HaplotypeGenerator{
		contig:           contig,
		policies:         policies,
		tree:             haplotree.New(contig, reference),
		activeRegion:     region.Site(contig, reference.Region.Begin),
		appliedThrough:   reference.Region.Begin,
		candidateAlleles: sorted,
		defaultWalker:    walker.New(walker.MaxIncludedFor(policies.HaplotypeLimits.Target), walker.IncludeNone),
		holdoutWalker:    walker.New(walker.MaxIncludedFor(policies.HaplotypeLimits.Holdout), walker.IncludeAll),
	}
	switch policies.Lagging {
	case LaggingConservative:
		g.laggedWalker = walker.New(walker.MaxIncludedFor(policies.HaplotypeLimits.Target), walker.IncludeIfSharedWithNovelRegion)
	case LaggingNormal, LaggingAggressive:
		g.laggedWalker = walker.New(walker.MaxIncludedFor(policies.HaplotypeLimits.Holdout), walker.IncludeIfLinkableToNovelRegion)
	}
	return g, nil
}

// SetReads replaces the read spans the generator uses to widen
// candidate regions and pad haplotype extraction.
func (g *HaplotypeGenerator) SetReads(reads []region.GenomicRegion) {
	g.reads = reads
}

func sortAlleles(as []allele.Allele) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].Region.Begin != as[j].Region.Begin {
			return as[i].Region.Begin < as[j].Region.Begin
		}
		return as[i].Region.End < as[j].Region.End
	})
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (g *HaplotypeGenerator) inHoldoutMode() bool {
	return len(g.holdoutStack) > 0
}

// allelesOverlapping returns the candidate alleles overlapping r,
// sorted by region.
func (g *HaplotypeGenerator) allelesOverlapping(r region.GenomicRegion) []allele.Allele {
	var out []allele.Allele
	for _, a := range g.candidateAlleles {
		if r.Overlaps(a.Region) {
			out = append(out, a)
		}
	}
	return out
}

// novelAllelesBefore returns the not-yet-applied candidate alleles
// whose region begins strictly before end.
func (g *HaplotypeGenerator) novelAllelesBefore(end int32) []allele.Allele {
	var out []allele.Allele
	for _, a := range g.candidateAlleles {
		if a.Region.Begin >= g.appliedThrough && a.Region.Begin < end {
			out = append(out, a)
		}
	}
	sortAlleles(out)
	return out
}

// rightmostAllele returns the candidate allele with the largest End.
func (g *HaplotypeGenerator) rightmostAllele() (allele.Allele, bool) {
	if len(g.candidateAlleles) == 0 {
		return allele.Allele{}, false
	}
	best := g.candidateAlleles[0]
	for _, a := range g.candidateAlleles[1:] {
		if a.Region.End > best.Region.End {
			best = a
		}
	}
	return best, true
}

// Generate produces the next batch of haplotypes and the active
// region they were extracted from. Once every candidate allele has
// been permanently applied and dropped (dropAppliedCandidates), the
// active region keeps advancing past them but the batch is always
// empty.
func (g *HaplotypeGenerator) Generate() ([]allele.Haplotype, region.GenomicRegion, error) {
	if len(g.candidateAlleles) == 0 {
		next := g.computeNextActiveRegion()
		g.activeRegion = next
		return nil, next, nil
	}

	if g.inHoldoutMode() && g.canReintroduceHoldouts() {
		g.reintroduceHoldouts()
	}

	nextRegion := g.computeNextActiveRegion()
	g.activeRegion = nextRegion

	applied := g.novelAllelesBefore(nextRegion.End)
	for _, a := range applied {
		g.tree.Extend(a)
		g.appliedThrough = maxInt32(g.appliedThrough, a.Region.End)
		if g.tree.NumHaplotypes() > g.policies.HaplotypeLimits.Holdout {
			g.extractHoldouts(nextRegion)
		}
	}

	if g.tree.NumHaplotypes() > g.policies.HaplotypeLimits.Overflow {
		return nil, nextRegion, &HaplotypeOverflowError{Region: nextRegion, Size: g.tree.NumHaplotypes()}
	}

	bounding := g.calculateHaplotypeRegion()
	haplotypes := g.tree.ExtractHaplotypes(bounding)

	if g.policies.Lagging == LaggingNone {
		g.tree.ClearAll()
		g.appliedThrough = nextRegion.End
		// Nothing survives the clear for lagging to revisit, so these
		// alleles are permanently passed and can be dropped. Under
		// lagging, applied alleles instead stay in candidateAlleles as
		// indicators the walker may still reference; only Jump and
		// extractHoldouts trim those.
		g.dropAppliedCandidates(applied)
	}

	return haplotypes, nextRegion, nil
}

// dropAppliedCandidates removes alleles in applied from
// candidateAlleles by region identity. Any that extractHoldouts
// already moved onto the holdout stack are simply absent by now, so
// this is a no-op for them.
func (g *HaplotypeGenerator) dropAppliedCandidates(applied []allele.Allele) {
	if len(applied) == 0 {
		return
	}
	appliedSet := make(map[region.GenomicRegion]bool, len(applied))
	for _, a := range applied {
		appliedSet[a.Region] = true
	}
	kept := g.candidateAlleles[:0]
	for _, a := range g.candidateAlleles {
		if !appliedSet[a.Region] {
			kept = append(kept, a)
		}
	}
	g.candidateAlleles = kept
}

// PeekNextActiveRegion reports what Generate would next choose,
// without mutating any observable state. It returns false while the
// generator holds any holdout frame.
func (g *HaplotypeGenerator) PeekNextActiveRegion() (region.GenomicRegion, bool) {
	if g.inHoldoutMode() {
		return region.GenomicRegion{}, false
	}
	return g.computeNextActiveRegion(), true
}

// ClearProgress resets the tree, clears the pending active region,
// and drops all holdouts.
func (g *HaplotypeGenerator) ClearProgress() {
	g.tree.ClearAll()
	g.activeRegion = region.Site(g.contig, g.activeRegion.Begin)
	g.appliedThrough = g.activeRegion.Begin
	g.holdoutStack = nil
	g.holdoutRegion = region.GenomicRegion{}
}

// Jump resets progress and fast-forwards state to r: alleles entirely
// to the left of r are dropped from further consideration.
func (g *HaplotypeGenerator) Jump(r region.GenomicRegion) {
	g.ClearProgress()
	g.activeRegion = region.Site(g.contig, r.Begin)
	g.appliedThrough = r.Begin
	kept := g.candidateAlleles[:0]
	for _, a := range g.candidateAlleles {
		if a.Region.End > r.Begin {
			kept = append(kept, a)
		}
	}
	g.candidateAlleles = kept
}

// RemovalHasImpact reports whether there is forward lag the generator
// could give up by clearing the tree back to the current active
// region.
func (g *HaplotypeGenerator) RemovalHasImpact() bool {
	if g.policies.Lagging == LaggingNone {
		return false
	}
	return g.MaxRemovalImpact() < g.tree.NumHaplotypes()
}

// MaxRemovalImpact estimates how many haplotypes would remain if the
// tree were cleared back to the current active region.
func (g *HaplotypeGenerator) MaxRemovalImpact() int {
	clone := g.tree.Clone()
	clone.Clear(g.activeRegion)
	return clone.NumHaplotypes()
}

// computeNextActiveRegion is side-effect free on g: it never mutates
// g.tree (lagged/holdout selection only ever extends a Clone) or
// g.activeRegion, so it backs both Generate and PeekNextActiveRegion.
func (g *HaplotypeGenerator) computeNextActiveRegion() region.GenomicRegion {
	if g.policies.Lagging == LaggingNone {
		return g.defaultWalker.Walk(g.activeRegion, g.reads, g.candidateAlleles)
	}
	return g.selectLaggedRegion()
}

func (g *HaplotypeGenerator) selectLaggedRegion() region.GenomicRegion {
	if last, ok := g.rightmostAllele(); ok && g.activeRegion.Contains(last.Region) {
		return region.Site(g.contig, g.activeRegion.End)
	}

	laggingWalker := g.laggedWalker
	if g.inHoldoutMode() {
		laggingWalker = g.holdoutWalker
	}
	maxLagged := laggingWalker.Walk(g.activeRegion, g.reads, g.candidateAlleles)
	if !maxLagged.Overlaps(g.activeRegion) {
		return maxLagged
	}

	target := g.policies.HaplotypeLimits.Target
	novelRegion := maxLagged.RightOverhang(g.activeRegion)
	novelAlleles := g.allelesOverlapping(novelRegion)

	trial := g.tree.Clone()
	if stoppedAt := trial.ExtendTreeUntil(novelAlleles, target); stoppedAt == len(novelAlleles) {
		return trial.EncompassingRegion()
	}

	trial = g.tree.Clone()
	g.stagedRemoval(trial, g.activeRegion)

	if indicatorRegion, ok := g.activeRegion.Overlap(maxLagged); ok {
		for _, site := range partitionByRegion(g.candidateAlleles, indicatorRegion) {
			if trial.NumHaplotypes() < target {
				break
			}
			trial.Clear(site)
		}
	}

	for _, site := range partitionByRegion(g.candidateAlleles, novelRegion) {
		before := trial.Clone()
		for _, a := range g.allelesOverlapping(site) {
			trial.Extend(a)
		}
		if trial.NumHaplotypes() > g.policies.HaplotypeLimits.Overflow {
			return novelRegion
		}
		if trial.NumHaplotypes() > target {
			trial = before
			break
		}
		if trial.NumHaplotypes() == target {
			break
		}
	}

	next := trial.EncompassingRegion()
	if next.Equal(g.activeRegion) {
		return g.defaultWalker.Walk(g.activeRegion, g.reads, g.candidateAlleles)
	}
	return next
}

// stagedRemoval clears passedRegion from t in two stages so an
// insertion sitting exactly at passedRegion's trailing edge, which
// legitimately belongs to the region that follows, survives: first
// everything but the last position, then, separately, that last
// position.
func (g *HaplotypeGenerator) stagedRemoval(t *haplotree.Tree, passedRegion region.GenomicRegion) {
	t.Clear(passedRegion.ExpandRHS(-1))
	t.Clear(passedRegion.TailRegion(1))
}

// partitionByRegion groups the alleles overlapping r into their
// distinct, mutually exclusive site regions, ordered left to right.
func partitionByRegion(alleles []allele.Allele, r region.GenomicRegion) []region.GenomicRegion {
	seen := map[region.GenomicRegion]bool{}
	var regions []region.GenomicRegion
	for _, a := range alleles {
		if !r.Overlaps(a.Region) {
			continue
		}
		if seen[a.Region] {
			continue
		}
		seen[a.Region] = true
		regions = append(regions, a.Region)
	}
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Begin != regions[j].Begin {
			return regions[i].Begin < regions[j].Begin
		}
		return regions[i].End < regions[j].End
	})
	return regions
}

// extractHoldouts implements the holdout protocol: it repeatedly
// moves the most-interacting allele group in novelRegion onto the
// holdout stack until the estimated haplotype count no longer exceeds
// the holdout limit, or the depth cap is reached.
func (g *HaplotypeGenerator) extractHoldouts(novelRegion region.GenomicRegion) bool {
	if len(g.holdoutStack) >= g.policies.MaxHoldoutDepth {
		return false
	}
	active := g.allelesOverlapping(novelRegion)
	if len(active) == 0 {
		return false
	}

	type group struct {
		region       region.GenomicRegion
		alleles      []allele.Allele
		interactions int
	}
	var groups []group
	index := map[region.GenomicRegion]int{}
	for _, a := range active {
		if i, ok := index[a.Region]; ok {
			groups[i].alleles = append(groups[i].alleles, a)
			continue
		}
		index[a.Region] = len(groups)
		groups = append(groups, group{region: a.Region, alleles: []allele.Allele{a}})
	}
	for i := range groups {
		count := 0
		for _, other := range active {
			if other.Region.Overlaps(groups[i].region) {
				count++
			}
		}
		groups[i].interactions = count
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].interactions < groups[j].interactions })

	var heldOut []allele.Allele
	remaining := len(active)
	for len(groups) > 0 {
		next := groups[len(groups)-1]
		groups = groups[:len(groups)-1]
		heldOut = append(heldOut, next.alleles...)
		remaining -= len(next.alleles)
		if remaining < 0 {
			remaining = 0
		}
		if (1 << uint(remaining)) <= g.policies.HaplotypeLimits.Holdout {
			break
		}
	}
	if len(heldOut) == 0 {
		return false
	}

	holdoutSet := map[region.GenomicRegion]bool{}
	for _, a := range heldOut {
		holdoutSet[a.Region] = true
	}
	kept := g.candidateAlleles[:0]
	for _, a := range g.candidateAlleles {
		if !holdoutSet[a.Region] {
			kept = append(kept, a)
		}
	}
	g.candidateAlleles = kept

	frameRegion := heldOut[0].Region
	for _, a := range heldOut[1:] {
		frameRegion = frameRegion.Encompassing(a.Region)
	}
	g.tree.Clear(frameRegion)
	g.holdoutStack = append(g.holdoutStack, holdoutFrame{region: frameRegion, alleles: heldOut})
	if g.holdoutRegion.Contig == nil {
		g.holdoutRegion = frameRegion
	} else {
		g.holdoutRegion = g.holdoutRegion.Encompassing(frameRegion)
	}
	return true
}

// canReintroduceHoldouts reports whether the top holdout frame should
// be spliced back into the tree: either progress has moved past
// holdoutRegion entirely, or there is nothing left between the active
// region and holdoutRegion worth waiting for.
func (g *HaplotypeGenerator) canReintroduceHoldouts() bool {
	if !g.inHoldoutMode() {
		return false
	}
	if g.activeRegion.Begin >= g.holdoutRegion.End {
		return true
	}
	gap := region.New(g.contig, g.activeRegion.Begin, g.holdoutRegion.End)
	for _, a := range g.candidateAlleles {
		if gap.Overlaps(a.Region) {
			return false
		}
	}
	return true
}

func (g *HaplotypeGenerator) reintroduceHoldouts() {
	for g.inHoldoutMode() {
		top := g.holdoutStack[len(g.holdoutStack)-1]
		for _, a := range top.alleles {
			g.tree.Extend(a)
			g.candidateAlleles = append(g.candidateAlleles, a)
		}
		sortAlleles(g.candidateAlleles)
		g.holdoutStack = g.holdoutStack[:len(g.holdoutStack)-1]
		if len(g.holdoutStack) == 0 {
			g.holdoutRegion = region.GenomicRegion{}
		} else {
			g.holdoutRegion = g.holdoutStack[len(g.holdoutStack)-1].region
		}
		if !g.canReintroduceHoldouts() {
			break
		}
	}
}

// calculateHaplotypeRegion returns a region guaranteeing every read
// overlapping the active region is fully contained within it.
func (g *HaplotypeGenerator) calculateHaplotypeRegion() region.GenomicRegion {
	var indelSum int32
	for _, a := range g.candidateAlleles {
		if g.activeRegion.Overlaps(a.Region) {
			indelSum += int32(absInt(a.IndelSize()))
		}
	}
	pad := 2*indelSum + g.policies.MinFlankPad
	half := pad / 2

	var overlapping []region.GenomicRegion
	for _, r := range g.reads {
		if r.Overlaps(g.activeRegion) {
			overlapping = append(overlapping, r)
		}
	}
	if len(overlapping) == 0 {
		return g.activeRegion.Expand(half, half)
	}

	unpadded := overlapping[0]
	for _, r := range overlapping[1:] {
		unpadded = unpadded.Encompassing(r)
	}
	leftActual := half
	if unpadded.Begin-leftActual < 0 {
		leftActual = unpadded.Begin
	}
	rightActual := half + (half - leftActual)
	return region.New(g.contig, unpadded.Begin-leftActual, unpadded.End+rightActual)
}
