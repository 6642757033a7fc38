// Package convert implements the peripheral FASTA/FASTQ to internal
// line-pair format converters (spec.md §6: "Converters outside the
// core turn FASTQ into this"; grounded on FastaToFDA.cpp and
// FastqToFDQ.cpp). These are thin utilities: no seeding, alignment, or
// evidence logic lives here.
package convert

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/davidsun/SAP/internal/dna"
)

// FastaToReference streams a multi-line FASTA file (one or more
// ">name" headers each followed by one or more sequence lines) into
// the internal reference format: one name line followed by one
// (concatenated, normalized) DNA line, sorted by name and
// deduplicated on repeated names (last one wins), matching the
// std::map<string,string> accumulation in FastaToFDA.cpp.
func FastaToReference(r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	seqs := map[string][]byte{}
	var order []string
	var name string
	var buf []byte

	flush := func() {
		if name == "" {
			return
		}
		if _, ok := seqs[name]; !ok {
			order = append(order, name)
		}
		seqs[name] = buf
	}

	for sc.Scan() {
		line := sc.Bytes()
		if len(line) > 0 && line[0] == '>' {
			flush()
			name = string(line[1:])
			buf = nil
			continue
		}
		chunk := make([]byte, len(line))
		copy(chunk, line)
		buf = append(buf, chunk...)
	}
	flush()
	if err := sc.Err(); err != nil {
		return err
	}

	sort.Strings(order)
	bw := bufio.NewWriter(w)
	for _, n := range order {
		seq := seqs[n]
		dna.Normalize(seq)
		if _, err := fmt.Fprintln(bw, n); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(bw, string(seq)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FastqToReads streams a classic 4-line-per-record FASTQ file (name,
// sequence, '+' separator, quality) into the internal reads format:
// one DNA line followed by one quality line, truncated to the shorter
// of the two (FastqToFDQ.cpp's defensive min-length clamp; malformed
// FASTQ occasionally has a short trailing quality line).
func FastqToReads(r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	bw := bufio.NewWriter(w)

	for {
		if !sc.Scan() {
			break // no more records
		}
		// name line is discarded: the internal format carries no name.
		if !sc.Scan() {
			return fmt.Errorf("convert: truncated FASTQ record (missing sequence line)")
		}
		seq := append([]byte(nil), sc.Bytes()...)
		if !sc.Scan() {
			return fmt.Errorf("convert: truncated FASTQ record (missing '+' line)")
		}
		if !sc.Scan() {
			return fmt.Errorf("convert: truncated FASTQ record (missing quality line)")
		}
		quality := sc.Bytes()

		n := len(seq)
		if len(quality) < n {
			n = len(quality)
		}
		seq = seq[:n]
		quality = quality[:n]
		dna.Normalize(seq)

		if _, err := bw.Write(seq); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		if _, err := bw.Write(quality); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return bw.Flush()
}
