// elPrep: a high-performance tool for preparing SAM/BAM files.
// Copyright (c) 2017, 2018 imec vzw.

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

package sam

import (
	"bufio"
	"context"
	"io"
	"os"
)

// samReader is an alignmentReader for a plain-text SAM InputFile. It
// fetches raw lines in batches the same way bamReader fetches raw BAM
// records, so both share the same driving loop in Open's caller.
type samReader struct {
	rc   io.ReadCloser
	buf  *bufio.Reader
	sc   StringScanner
	data [][]byte
}

func (r *samReader) Close() error {
	if r.rc == os.Stdin {
		return nil
	}
	return r.rc.Close()
}

// ParseHeader implements the method of the alignmentReader interface.
func (r *samReader) ParseHeader() (*Header, error) {
	hdr, _, err := ParseHeader(r.buf)
	return hdr, err
}

// SkipHeader implements the method of the alignmentReader interface.
func (r *samReader) SkipHeader() error {
	_, err := SkipHeader(r.buf)
	return err
}

// ParseAlignment implements the method of the alignmentReader
// interface: line is one line of the alignment section, without its
// trailing newline.
func (r *samReader) ParseAlignment(line []byte) (*Alignment, error) {
	r.sc.Reset(string(line))
	aln := r.sc.ParseAlignment()
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return aln, nil
}

// Err implements the method of the pipeline.Source interface.
func (r *samReader) Err() error {
	return nil
}

// Prepare implements the method of the pipeline.Source interface. -1
// means the source has no useful size estimate to offer.
func (r *samReader) Prepare(_ context.Context) int {
	return -1
}

// Fetch implements the method of the pipeline.Source interface: it
// reads up to size raw lines from the alignment section into r.data.
func (r *samReader) Fetch(size int) (fetched int) {
	lines := make([][]byte, 0, size)
	for ; fetched < size; fetched++ {
		line, err := r.buf.ReadBytes('\n')
		if n := len(line); n > 0 {
			if line[n-1] == '\n' {
				line = line[:n-1]
			}
			lines = append(lines, line)
		}
		if err != nil {
			break
		}
	}
	r.data = lines
	return fetched
}

// Data implements the method of the pipeline.Source interface.
func (r *samReader) Data() interface{} {
	return r.data
}

// samWriter is an alignmentWriter for a plain-text SAM OutputFile.
type samWriter struct {
	wc  io.WriteCloser
	buf *bufio.Writer
}

// FormatHeader implements the method of the alignmentWriter interface.
func (w *samWriter) FormatHeader(hdr *Header) error {
	hdr.Format(w.buf)
	return w.buf.Flush()
}

// FormatAlignment implements the method of the alignmentWriter interface.
func (w *samWriter) FormatAlignment(aln *Alignment, out []byte) ([]byte, error) {
	return aln.Format(out)
}

func (w *samWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *samWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if w.wc == os.Stdout {
		return nil
	}
	return w.wc.Close()
}

// ReadAll parses every alignment record out of f's alignment section,
// batching Fetch calls the way a pargo pipeline stage would if this
// InputFile were driven through one. It exists for callers, like
// reads.FromAlignments, that just want a contig's alignments in
// memory rather than a full filtering pipeline.
func ReadAll(f *InputFile) ([]*Alignment, error) {
	const batchSize = 4096
	ctx := context.Background()
	f.Prepare(ctx)
	var alns []*Alignment
	for {
		n := f.Fetch(batchSize)
		if n == 0 {
			break
		}
		records, _ := f.Data().([][]byte)
		for _, record := range records {
			aln, err := f.ParseAlignment(record)
			if err != nil {
				return nil, err
			}
			alns = append(alns, aln)
		}
		if n < batchSize {
			break
		}
	}
	return alns, f.Err()
}
