package streamio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReaderReadPairRoundTrip(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "reads.fdq")
	if err := os.WriteFile(f, []byte("acgtACGT\nIIIIIIII\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := Open(f, false, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	seq, qual, ok := r.ReadReadPair()
	if !ok {
		t.Fatalf("expected one record")
	}
	if string(seq) != "acgtacgt" {
		t.Fatalf("seq = %q, want normalized %q", seq, "acgtacgt")
	}
	if string(qual) != "IIIIIIII" {
		t.Fatalf("qual = %q, want %q", qual, "IIIIIIII")
	}

	if _, _, ok := r.ReadReadPair(); ok {
		t.Fatalf("expected EOF after one record")
	}
}

func TestReaderReadsAcrossSmallPages(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "reads.fdq")
	content := "acgtacgtacgtacgt\nIIIIIIIIIIIIIIII\ntgcatgcatgcatgca\nJJJJJJJJJJJJJJJJ\n"
	if err := os.WriteFile(f, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// A tiny page size forces ReadLine to cross many page boundaries.
	r, err := Open(f, false, 3)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	var got []string
	for {
		seq, _, ok := r.ReadReadPair()
		if !ok {
			break
		}
		got = append(got, string(seq))
	}
	if len(got) != 2 || got[0] != "acgtacgtacgtacgt" || got[1] != "tgcatgcatgcatgca" {
		t.Fatalf("got %v", got)
	}
}

func TestWriterPutStringThenClose(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "out.txt")

	w, err := Create(f, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	w.PutString([]byte("hello\n"))
	w.PutString([]byte("world\n"))
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(f)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello\nworld\n" {
		t.Fatalf("file content = %q", data)
	}
}

func TestWriterSnappyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "out.sz")

	w, err := Create(f, true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	w.PutString([]byte("compressed line\n"))
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	sc, closer, err := NewScanner(f, true)
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	defer closer.Close()

	if !sc.Scan() {
		t.Fatalf("expected a line, scanner error: %v", sc.Err())
	}
	if sc.Text() != "compressed line" {
		t.Fatalf("got %q", sc.Text())
	}
}
