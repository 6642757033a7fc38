package dna

import "testing"

func TestNewIDUniqueness(t *testing.T) {
	seen := map[int64]bool{}
	for i := 0; i < 100; i++ {
		s := New([]byte("acgt"))
		if seen[s.ID()] {
			t.Fatalf("duplicate id %d", s.ID())
		}
		seen[s.ID()] = true
	}
}

func TestNormalizeLowercasesAndMapsNonATGC(t *testing.T) {
	b := []byte("ACGTNxyz")
	Normalize(b)
	if string(b) != "acgtnnnn" {
		t.Fatalf("Normalize = %q, want %q", b, "acgtnnnn")
	}
}

func TestReverseComplementInvolution(t *testing.T) {
	orig := []byte("acgtacgtnacgt")
	b := append([]byte(nil), orig...)
	ReverseComplement(b)
	if string(b) == string(orig) {
		t.Fatalf("reverse-complement of a non-palindrome should change the bytes")
	}
	ReverseComplement(b)
	if string(b) != string(orig) {
		t.Fatalf("reverse-complement twice = %q, want %q", b, orig)
	}
}

func TestReverseComplementBases(t *testing.T) {
	b := []byte("atgc")
	ReverseComplement(b)
	if string(b) != "gcat" {
		t.Fatalf("ReverseComplement(atgc) = %q, want gcat", b)
	}
}

func TestBase2BitRoundTrip(t *testing.T) {
	for _, c := range []byte{'a', 't', 'g', 'c'} {
		if got := Bit2Base(Base2Bit(c)); got != c {
			t.Fatalf("Bit2Base(Base2Bit(%c)) = %c", c, got)
		}
	}
}
