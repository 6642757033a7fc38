package pipeline

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/willf/bloom"

	"github.com/davidsun/SAP/internal/aligner"
	"github.com/davidsun/SAP/internal/config"
	"github.com/davidsun/SAP/internal/dynbuf"
	"github.com/davidsun/SAP/internal/kmerindex"
	"github.com/davidsun/SAP/internal/reftable"
	"github.com/davidsun/SAP/internal/streamio"
)

// Summary is the per-run mapped/total tally (spec.md §7: "Processing
// finished. Found F in T (F/T).").
type Summary struct {
	Mapped int64
	Total  int64
}

// Engine ties the reader, writer, aligner, and worker pool together
// for one alignment run (spec.md §4.H).
type Engine struct {
	cfg    *config.Config
	al     *aligner.Aligner
	mapped *bloom.BloomFilter // sketch of mapped read indices (order taken off the reader)

	readCounter int64
}

// NewEngine builds an Engine from a reference table and k-mer index
// already constructed by LoadReference.
func NewEngine(cfg *config.Config, refs *reftable.Table, index kmerindex.Index, screen *kmerindex.Prescreen) *Engine {
	return &Engine{
		cfg:    cfg,
		al:     aligner.New(cfg, refs, index, screen),
		mapped: bloom.New(20*1024*1024, 5),
	}
}

// MappedBloom exposes the mapped-read-index sketch built during Run,
// used by cmd/sap-nonmatch to report unmapped reads without retaining
// every read index in memory.
func (e *Engine) MappedBloom() *bloom.BloomFilter { return e.mapped }

func encodeIndex(i int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i))
	return b[:]
}

// Run streams reads from inputFile, aligns each with ThreadCount
// worker goroutines, and writes framed alignment records to
// outputFile (spec.md §4.E/§4.G/§4.H end to end).
func (e *Engine) Run(inputFile, outputFile string) (Summary, error) {
	reader, err := streamio.Open(inputFile, false, e.cfg.PageSize)
	if err != nil {
		return Summary{}, err
	}
	defer reader.Close()

	writer, err := streamio.Create(outputFile, e.cfg.Snappy)
	if err != nil {
		return Summary{}, err
	}

	threadCount := e.cfg.ThreadCount
	if threadCount < 1 {
		threadCount = 1
	}

	var wg sync.WaitGroup
	results := make([]Summary, threadCount)
	for i := 0; i < threadCount; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.runWorker(reader, writer)
		}(i)
	}
	wg.Wait()

	if err := writer.Close(); err != nil {
		return Summary{}, err
	}

	var total Summary
	for _, r := range results {
		total.Mapped += r.Mapped
		total.Total += r.Total
	}
	return total, nil
}

// runWorker is the per-goroutine loop of spec.md §4.H: pull reads off
// the shared reader, align both strands, frame the result into a
// per-thread output cache, and flush the cache to the writer once it
// nears capacity.
func (e *Engine) runWorker(reader *streamio.Reader, writer *streamio.Writer) Summary {
	scratch := aligner.NewScratch(e.cfg.MaxGapRatio)
	cache := dynbuf.New(0)
	cache.EnsureCap(e.cfg.CacheSize + e.cfg.SafetyMargin)

	flushAt := e.cfg.CacheSize - e.cfg.SafetyMargin
	if flushAt < 0 {
		flushAt = e.cfg.CacheSize
	}

	var sum Summary
	for {
		seq, qual, ok := reader.ReadReadPair()
		if !ok {
			break
		}
		sum.Total++
		idx := atomic.AddInt64(&e.readCounter, 1) - 1

		start := cache.Size()
		cache.Append(seq)
		cache.Append([]byte{'\n'})
		cache.Append(qual)
		cache.Append([]byte{'\n'})

		recs := e.al.AlignRead(seq, scratch)
		if len(recs) == 0 {
			// Unmapped reads do not appear in output: roll back
			// the dna/quality lines we just staged (spec.md
			// §4.G "Output framing").
			cache.Resize(start)
			continue
		}

		sum.Mapped++
		e.mapped.Add(encodeIndex(idx))
		for _, r := range recs {
			cache.Append([]byte(r.String()))
			cache.Append([]byte{'\n'})
		}
		cache.Append([]byte{'\n'})

		if cache.Size() >= flushAt {
			writer.PutString(cache.Bytes())
			cache.Reset()
		}
	}

	if cache.Size() > 0 {
		writer.PutString(cache.Bytes())
	}
	return sum
}
