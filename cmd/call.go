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

package cmd

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/exascience/pargo/parallel"

	"github.com/exascience/octopus/allele"
	"github.com/exascience/octopus/assembler"
	"github.com/exascience/octopus/generator"
	"github.com/exascience/octopus/reads"
	"github.com/exascience/octopus/reference"
	"github.com/exascience/octopus/region"
	"github.com/exascience/octopus/sam"
	"github.com/exascience/octopus/scorer"
	"github.com/exascience/octopus/vcfsink"
)

// CallHelp is the help string for the call command.
const CallHelp = "call parameters:\n" +
	"octopus call reference.elfasta reference.elfasta.fai contigs reads.sam output.vcf\n" +
	"[--kmer-size N]              assembler kmer size (default 10)\n" +
	"[--min-flank-pad N]          minimum flank padding around each active region (default 10)\n" +
	"[--target N]                 target haplotype count (default 12)\n" +
	"[--holdout N]                haplotype count that triggers holdout extraction (default 20)\n" +
	"[--overflow N]               haplotype count that aborts an active region (default 128)\n" +
	"[--max-holdout-depth N]      maximum nested holdout frames (default 2)\n" +
	"[--min-support N]            minimum overlapping reads for a variant to be reported (default 2)\n" +
	"[--nr-of-threads N]          number of worker threads\n" +
	"[--timed]                    measure the runtime\n" +
	"[--profile path]             write a runtime profile to the specified file(s)\n" +
	"[--log-path path]            write log files to the specified directory\n" +
	"contigs is a comma-separated list of contig names to call.\n" +
	"reads.sam is a plain-text SAM file (BAM and CRAM are not supported).\n"

// readsByContig opens a plain-text SAM file and groups its alignments
// by RNAME, so each contig's callContig call gets only the alignments
// that belong to it.
func readsByContig(path string) (byContig map[string][]*sam.Alignment, err error) {
	f, err := sam.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err = f.ParseHeader(); err != nil {
		return nil, fmt.Errorf("parsing header of %v: %w", path, err)
	}
	alignments, err := sam.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading alignments from %v: %w", path, err)
	}

	byContig = make(map[string][]*sam.Alignment)
	for _, aln := range alignments {
		byContig[aln.RNAME] = append(byContig[aln.RNAME], aln)
	}
	return byContig, nil
}

// callContig assembles candidate variants for one contig's reference
// window and walks the haplotype generator over them, returning the
// candidates the scorer accepts.
func callContig(contig region.Contig, ref allele.Haplotype, source reads.Source, kmerSize int, policies generator.Policies, sc scorer.NaiveScorer) ([]allele.Variant, error) {
	asm, err := assembler.NewWithReference(kmerSize, ref.Sequence)
	if err != nil {
		return nil, fmt.Errorf("assembling %v: %w", *contig, err)
	}

	extracted := asm.ExtractVariants(policies.HaplotypeLimits.Overflow)
	if len(extracted) == 0 {
		return nil, nil
	}

	candidates := make([]allele.Allele, 0, len(extracted))
	byRegion := make(map[region.GenomicRegion]allele.Variant, len(extracted))
	for _, v := range extracted {
		begin := ref.Region.Begin + v.Pos
		r := region.New(contig, begin, begin+int32(len(v.Ref)))
		candidates = append(candidates, allele.New(r, v.Alt))
		byRegion[r] = allele.NewVariant(r, v.Ref, v.Alt)
	}

	gen, err := generator.New(contig, ref, candidates, policies)
	if err != nil {
		return nil, fmt.Errorf("building generator for %v: %w", *contig, err)
	}

	for {
		active, ok := gen.PeekNextActiveRegion()
		if !ok {
			break
		}
		gen.SetReads(source.Overlapping(active))
		haps, activeRegion, err := gen.Generate()
		if err != nil {
			var overflow *generator.HaplotypeOverflowError
			if errors.As(err, &overflow) {
				log.Printf("skipping overflowing region %v in %v (%d haplotypes)", overflow.Region, *contig, overflow.Size)
				gen.Jump(overflow.Region)
				continue
			}
			return nil, err
		}
		if len(haps) == 0 {
			break
		}
		if activeRegion.IsEmpty() {
			break
		}
	}

	var accepted []allele.Variant
	for _, v := range byRegion {
		if sc.Accept(source, v) {
			accepted = append(accepted, v)
		}
	}
	return accepted, nil
}

// Call implements the octopus call command: for each contig, assemble
// candidate alleles from the reference window, walk the haplotype
// generator's active-region loop over them, and write whatever the
// scorer accepts out to VCF. One caller runs per contig; contigs are
// processed in parallel.
func Call() error {
	var (
		kmerSize        int
		minFlankPad     int
		target          int
		holdout         int
		overflow        int
		maxHoldoutDepth int
		minSupport      int
		nrOfThreads     int
		timed           bool
		profile         string
		logPath         string
	)

	var flags flag.FlagSet
	flags.IntVar(&kmerSize, "kmer-size", 10, "assembler kmer size")
	flags.IntVar(&minFlankPad, "min-flank-pad", 10, "minimum flank padding around each active region")
	flags.IntVar(&target, "target", 12, "target haplotype count")
	flags.IntVar(&holdout, "holdout", 20, "haplotype count that triggers holdout extraction")
	flags.IntVar(&overflow, "overflow", 128, "haplotype count that aborts an active region")
	flags.IntVar(&maxHoldoutDepth, "max-holdout-depth", 2, "maximum nested holdout frames")
	flags.IntVar(&minSupport, "min-support", 2, "minimum overlapping reads for a variant to be reported")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 7, CallHelp)

	referencePath := getFilename(os.Args[2], CallHelp)
	referenceFaiPath := getFilename(os.Args[3], CallHelp)
	contigsArg := getFilename(os.Args[4], CallHelp)
	readsPath := getFilename(os.Args[5], CallHelp)
	outputPath := getFilename(os.Args[6], CallHelp)

	setLogOutput(logPath)

	var sanityChecksFailed bool
	if !checkExist("reference", referencePath) {
		sanityChecksFailed = true
	}
	if !checkExist("reference-fai", referenceFaiPath) {
		sanityChecksFailed = true
	}
	if !checkExist("reads", readsPath) {
		sanityChecksFailed = true
	}
	if !checkCreate("output", outputPath) {
		sanityChecksFailed = true
	}
	if profile != "" && !checkCreate("--profile", profile) {
		sanityChecksFailed = true
	}
	if nrOfThreads < 0 {
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		return errors.New("erroneous command line; for more information, please refer to the man pages")
	}

	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
	}

	limits := generator.Limits{}
	limits.SetTarget(target)
	if holdout > limits.Holdout {
		limits.Holdout = holdout
	}
	if overflow > limits.Overflow {
		limits.Overflow = overflow
	}
	policies := generator.Policies{
		Lagging:         generator.LaggingNormal,
		HaplotypeLimits: limits,
		MaxHoldoutDepth: maxHoldoutDepth,
		MinFlankPad:     int32(minFlankPad),
	}
	sc := scorer.NaiveScorer{MinSupport: minSupport}

	genome := reference.Open(referencePath, referenceFaiPath)
	defer genome.Close()

	byContig, err := readsByContig(readsPath)
	if err != nil {
		return fmt.Errorf("reading %v: %w", readsPath, err)
	}

	contigNames := strings.Split(contigsArg, ",")
	contigs := make([]region.Contig, len(contigNames))
	for i, name := range contigNames {
		contigs[i] = region.Chrom(name)
	}

	sink, err := vcfsink.Create(outputPath, contigNames, false)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			log.Println(cerr)
		}
	}()

	results := make([][]allele.Variant, len(contigs))

	timedRun(timed, profile, "Calling variants.", 1, func() {
		parallel.Range(0, len(contigs), 0, func(low, high int) {
			for i := low; i < high; i++ {
				contig := contigs[i]
				length, err := genome.ContigLength(contig)
				if err != nil {
					log.Printf("skipping %v: %v", *contig, err)
					continue
				}
				seq, err := genome.Sequence(region.New(contig, 0, length))
				if err != nil {
					log.Printf("skipping %v: %v", *contig, err)
					continue
				}
				ref := allele.Haplotype{Region: region.New(contig, 0, length), Sequence: seq}
				source := reads.FromAlignments(contig, byContig[*contig])
				variants, err := callContig(contig, ref, source, kmerSize, policies, sc)
				if err != nil {
					log.Printf("error calling %v: %v", *contig, err)
					continue
				}
				results[i] = variants
			}
		})
	})

	for i, name := range contigNames {
		for _, v := range results[i] {
			if err := sink.WriteVariant(name, v); err != nil {
				return err
			}
		}
	}
	return nil
}
