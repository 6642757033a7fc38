package convert

import (
	"bytes"
	"strings"
	"testing"
)

func TestFastaToReferenceSortsAndNormalizes(t *testing.T) {
	in := strings.NewReader(">chr2\nACGT\nacgt\n>chr1\nNNNacgt\n")
	var out bytes.Buffer
	if err := FastaToReference(in, &out); err != nil {
		t.Fatalf("FastaToReference: %v", err)
	}
	want := "chr1\nnnnacgt\nchr2\nacgtacgt\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestFastaToReferenceDedupLastWins(t *testing.T) {
	in := strings.NewReader(">chr1\naaaa\n>chr1\ngggg\n")
	var out bytes.Buffer
	if err := FastaToReference(in, &out); err != nil {
		t.Fatalf("FastaToReference: %v", err)
	}
	if out.String() != "chr1\ngggg\n" {
		t.Fatalf("got %q, want last occurrence to win", out.String())
	}
}

func TestFastqToReadsDropsNameAndTruncates(t *testing.T) {
	in := strings.NewReader("@read1\nACGTAC\n+\nIIIII\n")
	var out bytes.Buffer
	if err := FastqToReads(in, &out); err != nil {
		t.Fatalf("FastqToReads: %v", err)
	}
	want := "acgta\nIIIII\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestFastqToReadsTruncatedRecordErrors(t *testing.T) {
	in := strings.NewReader("@read1\nACGT\n")
	var out bytes.Buffer
	if err := FastqToReads(in, &out); err == nil {
		t.Fatal("expected error for truncated FASTQ record")
	}
}
