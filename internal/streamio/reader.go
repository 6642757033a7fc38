// Package streamio implements the background-thread, bounded-buffer
// page queues used for sequential file I/O (spec.md §4.E). A Reader
// fills fixed-size pages from a file on a background goroutine;
// consumers pull lines or paired DNA/quality records out of the head
// page under a single mutex, and the underlying pages advance
// transparently.
package streamio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/golang/snappy"

	"github.com/davidsun/SAP/internal/dna"
)

const (
	// DefaultPageSize matches the original's default page size.
	DefaultPageSize = 128 * 1024
	// DefaultReadQueueDepth is the maximum number of in-flight pages.
	DefaultReadQueueDepth = 64
)

// page is one fixed-size chunk of file content plus how much of it is
// valid (the final page of a file is usually short).
type page struct {
	buf []byte
	n   int
}

// Reader streams a text file page by page on a background goroutine,
// exposing line- and record-oriented consumption to possibly many
// callers (spec.md §4.E Reader contract).
type Reader struct {
	f    *os.File
	src  io.Reader
	open bool

	pageSize int
	pages    chan *page

	mu   sync.Mutex
	cur  *page
	pos  int
	eof  bool
	quit chan struct{}
}

// Open opens filename for sequential reading and starts the
// background page producer. If snappyCompressed is true, the file is
// transparently decompressed with snappy (the teacher's .sz
// intermediate format).
func Open(filename string, snappyCompressed bool, pageSize int) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("streamio: not open: %w", err)
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var src io.Reader = f
	if snappyCompressed {
		src = snappy.NewReader(f)
	}

	r := &Reader{
		f:        f,
		src:      src,
		open:     true,
		pageSize: pageSize,
		pages:    make(chan *page, DefaultReadQueueDepth),
		quit:     make(chan struct{}),
	}
	go r.produce()
	return r, nil
}

// IsOpen reports whether the reader successfully opened its file.
func (r *Reader) IsOpen() bool { return r.open }

func (r *Reader) produce() {
	defer close(r.pages)
	for {
		buf := make([]byte, r.pageSize)
		n, err := io.ReadFull(r.src, buf)
		if n > 0 {
			select {
			case r.pages <- &page{buf: buf, n: n}:
			case <-r.quit:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Close stops the background producer and closes the file. It does
// not block on a drain since the only consumer is the reader itself.
func (r *Reader) Close() error {
	close(r.quit)
	return r.f.Close()
}

// fill advances r.cur/r.pos to the next page if the current one is
// exhausted. Caller must hold r.mu.
func (r *Reader) fillLocked() bool {
	for r.cur == nil || r.pos >= r.cur.n {
		p, ok := <-r.pages
		if !ok {
			r.eof = true
			return false
		}
		r.cur = p
		r.pos = 0
	}
	return true
}

// ReadLine reads one '\n'-terminated line into dst, skipping leading
// newlines, advancing across page boundaries as needed. It returns
// the line length, or -1 at EOF (spec.md's EOF sentinel).
func (r *Reader) ReadLine(dst []byte) (int, []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := dst[:0]
	sawByte := false
	for {
		if !r.fillLocked() {
			if sawByte {
				return len(out), out
			}
			return -1, out
		}
		b := r.cur.buf[r.pos]
		r.pos++
		if b == '\n' {
			if !sawByte && len(out) == 0 {
				// leading newline: skip it and keep reading
				continue
			}
			return len(out), out
		}
		sawByte = true
		out = append(out, b)
	}
}

// ReadPair reads one two-line record, returning ok=false at EOF. Both
// the reference file (name, DNA) and the read file (DNA, quality) are
// line-pair formats (spec.md §6); the caller knows which line is
// which for its file.
func (r *Reader) ReadPair() (first, second []byte, ok bool) {
	n1, a := r.ReadLine(nil)
	if n1 == -1 {
		return nil, nil, false
	}
	n2, b := r.ReadLine(nil)
	if n2 == -1 {
		return nil, nil, false
	}
	return a, b, true
}

// ReadReadPair reads one (DNA, quality) record from a reads file,
// normalizing the DNA line in place.
func (r *Reader) ReadReadPair() (seq, quality []byte, ok bool) {
	seq, quality, ok = r.ReadPair()
	if ok {
		dna.Normalize(seq)
	}
	return
}

// ReadReferencePair reads one (name, DNA) record from a reference
// file, normalizing the DNA line in place.
func (r *Reader) ReadReferencePair() (name, seq []byte, ok bool) {
	name, seq, ok = r.ReadPair()
	if ok {
		dna.Normalize(seq)
	}
	return
}

// NewScanner exposes the file as a bufio.Scanner for consumers (such
// as the evidence updater) that prefer batch/line-group semantics
// over the page-queue protocol above. It bypasses the page queue
// entirely and is meant for single-owner sequential consumption.
func NewScanner(filename string, snappyCompressed bool) (*bufio.Scanner, *os.File, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("streamio: not open: %w", err)
	}
	var src io.Reader = f
	if snappyCompressed {
		src = snappy.NewReader(f)
	}
	sc := bufio.NewScanner(src)
	buf := make([]byte, 0, 64*1024)
	sc.Buffer(buf, 16*1024*1024)
	return sc, f, nil
}
