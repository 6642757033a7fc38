package dynbuf

import "testing"

func TestAppendGrowsAndPreservesContent(t *testing.T) {
	b := New(0)
	b.Append([]byte("abc"))
	b.Append([]byte("def"))
	if got := string(b.Bytes()); got != "abcdef" {
		t.Fatalf("Bytes() = %q, want %q", got, "abcdef")
	}
	if b.Size() != 6 {
		t.Fatalf("Size() = %d, want 6", b.Size())
	}
}

func TestResizeTruncatesWithoutZeroingKeptBytes(t *testing.T) {
	b := New(0)
	b.Append([]byte("hello world"))
	b.Resize(5)
	if got := string(b.Bytes()); got != "hello" {
		t.Fatalf("Bytes() = %q, want %q", got, "hello")
	}
}

func TestResizeGrowZeroFillsNewBytes(t *testing.T) {
	b := New(0)
	b.Append([]byte("ab"))
	b.Resize(4)
	got := b.Bytes()
	if got[2] != 0 || got[3] != 0 {
		t.Fatalf("expected zero-filled growth, got %v", got)
	}
}

func TestResetKeepsCapacity(t *testing.T) {
	b := New(0)
	b.Append([]byte("some bytes"))
	cp := cap(b.Bytes())
	b.Reset()
	if b.Size() != 0 {
		t.Fatalf("Size() after Reset = %d, want 0", b.Size())
	}
	if cap(b.Bytes()) != cp {
		t.Fatalf("Reset should not release capacity: got cap %d, want %d", cap(b.Bytes()), cp)
	}
}

func TestEnsureCapDoublesUntilSufficient(t *testing.T) {
	b := New(0)
	b.EnsureCap(100)
	if cap(b.Bytes()) < 100 {
		t.Fatalf("EnsureCap(100): cap = %d, want >= 100", cap(b.Bytes()))
	}
}
