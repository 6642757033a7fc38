package streamio

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/golang/snappy"
)

// DefaultWriteQueueDepth is the maximum number of in-flight write
// pages (spec.md §4.E: "up to ... 16 in flight on write").
const DefaultWriteQueueDepth = 16

// Writer streams bytes to a file on a background goroutine, buffering
// callers' PutString calls onto a bounded queue (spec.md §4.E Writer
// contract).
type Writer struct {
	f    *os.File
	dst  io.Writer
	snpw *snappy.Writer
	open bool

	queue chan []byte
	done  chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Create creates (truncating) filename for sequential writing and
// starts the background consumer goroutine. If snappyCompress is
// true, output is snappy-compressed (the teacher's .sz format).
func Create(filename string, snappyCompress bool) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("streamio: not open: %w", err)
	}

	w := &Writer{
		f:     f,
		open:  true,
		queue: make(chan []byte, DefaultWriteQueueDepth),
		done:  make(chan struct{}),
	}
	if snappyCompress {
		w.snpw = snappy.NewBufferedWriter(f)
		w.dst = w.snpw
	} else {
		w.dst = f
	}
	go w.consume()
	return w, nil
}

// IsOpen reports whether the writer successfully opened its file.
func (w *Writer) IsOpen() bool { return w.open }

func (w *Writer) consume() {
	defer close(w.done)
	for b := range w.queue {
		if _, err := w.dst.Write(b); err != nil {
			// Best-effort: the failed write is not retried; the
			// rest of the queue is drained and discarded so
			// PutString and Close never block on a stopped
			// consumer.
			for range w.queue {
			}
			return
		}
	}
}

// PutString enqueues a copy of b for writing. It never retains b.
func (w *Writer) PutString(b []byte) {
	cp := make([]byte, len(b))
	copy(cp, b)
	w.queue <- cp
}

// Close drains the queue, flushes any compressor, and closes the
// file (spec.md §4.E: "on destruction, the writer drains the queue
// before closing").
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		close(w.queue)
		<-w.done
		if w.snpw != nil {
			if err := w.snpw.Close(); err != nil {
				w.closeErr = err
			}
		}
		if err := w.f.Close(); err != nil && w.closeErr == nil {
			w.closeErr = err
		}
	})
	return w.closeErr
}
