package aligner

import (
	"testing"

	"github.com/davidsun/SAP/internal/config"
	"github.com/davidsun/SAP/internal/dna"
	"github.com/davidsun/SAP/internal/kmerindex"
	"github.com/davidsun/SAP/internal/reftable"
)

func buildAligner(t *testing.T, cfg *config.Config, refSeq string) (*Aligner, *reftable.Table) {
	t.Helper()
	refs := reftable.New()
	if _, err := refs.Add("ref1", []byte(refSeq)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	index := kmerindex.NewBufferedHash(cfg.BinBits, len(refSeq))
	entry := refs.GetByName("ref1")
	seq := entry.Seq.Bytes()
	for start := 0; start+cfg.PieceSize <= len(seq); start++ {
		index.Insert(entry.Seq.ID(), seq, start, cfg.PieceSize)
	}
	return New(cfg, refs, index, nil), refs
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.BinBits = 16
	cfg.PieceSize = 8
	cfg.CutCount = 3
	return cfg
}

// S1: exact mapping.
func TestAlignReadExactMatch(t *testing.T) {
	cfg := testConfig()
	ref := "acgtacgtacgtacgt"
	al, _ := buildAligner(t, cfg, ref)

	read := []byte(ref)
	recs := al.AlignRead(read, NewScratch(cfg.MaxGapRatio))
	if len(recs) == 0 {
		t.Fatalf("expected at least one record for an exact match")
	}
	found := false
	for _, r := range recs {
		if !r.Reverse && r.ReadStart == 0 && r.RefStart == 0 && r.Ops == "nnnnnnnnnnnnnnnn" {
			if r.Score < 0.999 {
				t.Fatalf("expected score ~1.0, got %v", r.Score)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("no forward full-length match among records: %+v", recs)
	}
}

// S2: one mismatch.
func TestAlignReadOneMismatch(t *testing.T) {
	cfg := testConfig()
	ref := "acgtacgtacgtacgt"
	al, _ := buildAligner(t, cfg, ref)

	read := []byte("acgtacgtatgtacgt") // ref base at position 9 is 'c'; read has 't'
	dna.Normalize(read)
	recs := al.AlignRead(read, NewScratch(cfg.MaxGapRatio))

	var best *Record
	for i := range recs {
		if !recs[i].Reverse && recs[i].RefStart == 0 {
			best = &recs[i]
		}
	}
	if best == nil {
		t.Fatalf("expected a forward record, got %+v", recs)
	}
	if best.Score < 0.9 {
		t.Fatalf("expected score >= 0.9, got %v", best.Score)
	}
	n, c, i, d := opCounts(best.Ops)
	if c != 1 || i != 0 || d != 0 {
		t.Fatalf("expected exactly one substitution op, got n=%d c=%d i=%d d=%d (%s)", n, c, i, d, best.Ops)
	}
}

// S4: reverse-complement mapping.
func TestAlignReadReverseComplement(t *testing.T) {
	cfg := testConfig()
	ref := "acgtacgtacgtacgt"
	al, _ := buildAligner(t, cfg, ref)

	read := []byte(ref)
	dna.ReverseComplement(read)

	recs := al.AlignRead(read, NewScratch(cfg.MaxGapRatio))
	found := false
	for _, r := range recs {
		if r.Reverse {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a reverse-complement record, got %+v", recs)
	}
}

// S5: short reads never map.
func TestAlignReadTooShortDoesNotMap(t *testing.T) {
	cfg := testConfig()
	ref := "acgtacgtacgtacgt"
	al, _ := buildAligner(t, cfg, ref)

	read := []byte("acgt")
	recs := al.AlignRead(read, NewScratch(cfg.MaxGapRatio))
	if len(recs) != 0 {
		t.Fatalf("expected no records for a read shorter than pieceSize, got %+v", recs)
	}
}

// A single-offset cluster whose read overhangs the end of the
// reference must still reach alignBanded (delta=0) rather than being
// silently dropped by the co-located/banded dispatch.
func TestAlignReadOverhangingReferenceEnd(t *testing.T) {
	cfg := testConfig()
	ref := "acgtacgtacgtacgtacgt" // 20 bases
	al, _ := buildAligner(t, cfg, ref)

	read := []byte(ref + "a") // 21 bases: one base past the reference end
	recs := al.AlignRead(read, NewScratch(cfg.MaxGapRatio))

	var best *Record
	for i := range recs {
		if !recs[i].Reverse && recs[i].RefStart == 0 {
			best = &recs[i]
		}
	}
	if best == nil {
		t.Fatalf("expected a forward record for a read overhanging the reference end, got %+v", recs)
	}
	if best.Score < 0.9 {
		t.Fatalf("expected score >= 0.9, got %v", best.Score)
	}
	if !ValidOps(best.Ops) {
		t.Fatalf("invalid opstring: %q", best.Ops)
	}
	n, c, i, d := opCounts(best.Ops)
	if c != 0 || i != 0 || d != 0 || n != 20 {
		t.Fatalf("expected 20 matches and no other ops, got n=%d c=%d i=%d d=%d (%s)", n, c, i, d, best.Ops)
	}
}

// Invariant 5 (operation-string consistency), in part: every record's
// opstring uses only n/c/i/d and consumes no more read bases (n+c+i)
// than the read has.
func TestOperationStringConsistency(t *testing.T) {
	cfg := testConfig()
	ref := "acgtacgtacgtacgtacgtacgt"
	al, _ := buildAligner(t, cfg, ref)

	read := []byte("acgtacgtaXgtacgtacgt")
	dna.Normalize(read)
	recs := al.AlignRead(read, NewScratch(cfg.MaxGapRatio))
	if len(recs) == 0 {
		t.Fatalf("expected at least one record")
	}
	for _, r := range recs {
		if !ValidOps(r.Ops) {
			t.Fatalf("invalid opstring: %q", r.Ops)
		}
		if ReadSpan(r.Ops) > len(read) {
			t.Fatalf("read span %d exceeds read length %d", ReadSpan(r.Ops), len(read))
		}
	}
}

// Invariant 3: reverse-complement is an involution.
func TestReverseComplementInvolution(t *testing.T) {
	orig := []byte("acgtacgtnacgtacgt")
	b := append([]byte(nil), orig...)
	dna.ReverseComplement(b)
	dna.ReverseComplement(b)
	if string(b) != string(orig) {
		t.Fatalf("reverse-complement twice = %q, want %q", b, orig)
	}
}
