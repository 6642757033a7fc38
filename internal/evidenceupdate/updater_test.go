package evidenceupdate

import (
	"math"
	"testing"

	"github.com/davidsun/SAP/internal/config"
	"github.com/davidsun/SAP/internal/evidence"
	"github.com/davidsun/SAP/internal/reftable"
)

func TestParseRecord(t *testing.T) {
	rec, err := parseRecord("chr1\tN\t0\t100\t0.9500\tnnncnn")
	if err != nil {
		t.Fatalf("parseRecord: %v", err)
	}
	if rec.refName != "chr1" || rec.reverse || rec.readStart != 0 || rec.refStart != 100 {
		t.Fatalf("unexpected parse: %+v", rec)
	}
	if math.Abs(rec.score-0.95) > 1e-9 {
		t.Fatalf("score = %v, want 0.95", rec.score)
	}
	if rec.ops != "nnncnn" {
		t.Fatalf("ops = %q", rec.ops)
	}
}

func TestParseRecordMalformed(t *testing.T) {
	if _, err := parseRecord("too\tfew\tfields"); err == nil {
		t.Fatal("expected error for malformed record")
	}
}

func TestApplyRecordForwardMatch(t *testing.T) {
	ev := evidence.New(10)
	seq := []byte("acgtacgtac")
	qb := make([]float64, len(seq))
	for i := range qb {
		qb[i] = 30
	}
	rec := parsedRecord{readStart: 0, refStart: 2, ops: "nnnn"}

	applyRecord(ev, seq, qb, rec)

	if ev.MatchCount(2) != 1 || ev.MatchCountBase(2, 'a') != 1 {
		t.Fatalf("expected one match of 'a' at ref position 2, got count=%d", ev.MatchCount(2))
	}
	if ev.MatchCountBase(5, 't') != 1 {
		t.Fatalf("expected one match of 't' at ref position 5")
	}
	if ev.TotalQ(2) >= 0 {
		t.Fatalf("TotalQ should be negative (log of a probability), got %v", ev.TotalQ(2))
	}
}

func TestApplyRecordDeletion(t *testing.T) {
	ev := evidence.New(10)
	seq := []byte("acgt")
	qb := []float64{30, 30, 30, 30}
	rec := parsedRecord{readStart: 0, refStart: 3, ops: "ndd"}

	applyRecord(ev, seq, qb, rec)

	if ev.DeleteCount(4) != 1 || ev.DeleteCount(5) != 1 {
		t.Fatalf("expected one deletion each at ref 4 and 5, got %d/%d", ev.DeleteCount(4), ev.DeleteCount(5))
	}
	if ev.MatchCount(3) != 1 {
		t.Fatalf("expected the leading match to land at ref 3")
	}
}

func TestApplyRecordInsertion(t *testing.T) {
	ev := evidence.New(10)
	seq := []byte("aggt")
	qb := []float64{30, 30, 30, 30}
	// one match, a two-base insertion, one match
	rec := parsedRecord{readStart: 0, refStart: 5, ops: "niin"}

	applyRecord(ev, seq, qb, rec)

	ins := ev.Insertions(6)
	if len(ins) != 1 {
		t.Fatalf("expected one insertion record at ref position 6, got %d", len(ins))
	}
	if string(ins[0].Bytes) != "gg" || ins[0].Len != 2 {
		t.Fatalf("insertion bytes = %q len %d, want \"gg\" 2", ins[0].Bytes, ins[0].Len)
	}
}

func TestApplyRecordReverseIndexesQualityFromTheEnd(t *testing.T) {
	ev := evidence.New(10)
	// Forward orientation bytes as stored on disk.
	seq := []byte("acgt")
	qb := []float64{10, 20, 30, 40}
	// A reverse record aligns the reverse-complement of seq: "acgt" rc
	// is "acgt" complemented+reversed -> complement('t','g','c','a')
	// reversed = "acgt" -> complement chain: rc("acgt") = "acgt"
	// complemented per base then reversed: comp(a,c,g,t)=(t,g,c,a),
	// reversed => (a,c,g,t). Use an asymmetric sequence instead so the
	// orientation is unambiguous.
	seq = []byte("aaat")
	qb = []float64{10, 20, 30, 40}
	rec := parsedRecord{readStart: 0, refStart: 0, reverse: true, ops: "n"}

	applyRecord(ev, seq, qb, rec)

	// rc("aaat")[0] = complement(seq[3]) = complement('t') = 'a'
	if ev.MatchCountBase(0, 'a') != 1 {
		t.Fatalf("expected match of 'a' at ref 0 for reverse record")
	}
	// quality index used should be L-0-1 = 3, i.e. q=40, not q=10.
	wantScore := km1(40) - km2(40)
	if math.Abs(ev.MatchScoreBase(0, 'a')-wantScore) > 1e-9 {
		t.Fatalf("match score = %v, want %v (quality index should mirror from the end)", ev.MatchScoreBase(0, 'a'), wantScore)
	}
}

func TestApplyBatchRejectsLowQualityRead(t *testing.T) {
	cfg := testConfig()
	refs := reftable.New()
	refs.Add("chr1", []byte("acgtacgtacgtacgtacgt"))

	// ASCII '!' = 33 -> phred 0, well under the quality gate.
	qual := []byte("!!!!!!!!!!")
	seq := []byte("acgtacgtac")
	lines := []string{"chr1\tN\t0\t0\t1.0000\tnnnnnnnnnn"}

	applied, err := applyBatch(cfg, refs, seq, qual, lines)
	if err != nil {
		t.Fatalf("applyBatch: %v", err)
	}
	if applied != 0 {
		t.Fatalf("expected low-quality read to be rejected, got %d applied", applied)
	}
}

func TestApplyBatchDropsRecordsBelowScoreThreshold(t *testing.T) {
	cfg := testConfig()
	refs := reftable.New()
	refs.Add("chr1", []byte("acgtacgtacgtacgtacgt"))
	refs.Add("chr2", []byte("acgtacgtacgtacgtacgt"))

	qual := []byte("IIIIIIIIII") // phred 40, clearly above the gate
	seq := []byte("acgtacgtac")
	lines := []string{
		"chr1\tN\t0\t0\t1.0000\tnnnnnnnnnn",
		"chr2\tN\t0\t0\t0.5000\tnnnnnnnnnn", // below 0.9*1.0
	}

	applied, err := applyBatch(cfg, refs, seq, qual, lines)
	if err != nil {
		t.Fatalf("applyBatch: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected exactly one contributing record, got %d", applied)
	}
	if refs.GetByName("chr2").Evidence.MatchCount(0) != 0 {
		t.Fatalf("chr2 should not have received evidence")
	}
	if refs.GetByName("chr1").Evidence.MatchCount(0) == 0 {
		t.Fatalf("chr1 should have received evidence")
	}
}

func testConfig() *config.Config {
	c := config.Default()
	c.MinReadQuality = 0.30
	return c
}
