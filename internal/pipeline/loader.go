// Package pipeline implements the worker pool and record framing
// (spec.md §4.H): N alignment worker goroutines sharing one reader,
// one writer, and the read-only reference table and k-mer index built
// before they start.
package pipeline

import (
	"fmt"

	"github.com/davidsun/SAP/internal/config"
	"github.com/davidsun/SAP/internal/kmerindex"
	"github.com/davidsun/SAP/internal/reftable"
	"github.com/davidsun/SAP/internal/streamio"
)

// LoadReference reads a reference file (name/DNA line pairs, spec.md
// §6) into a Table, then builds the k-mer hash index and optional
// Bloom prescreen over every sequence's k-mers. The index is the
// BufferedHash variant since the reference set is built once and
// never mutated during alignment (spec.md §4.F variant signal).
func LoadReference(cfg *config.Config, filename string) (*reftable.Table, kmerindex.Index, *kmerindex.Prescreen, error) {
	refs, err := LoadReferenceTable(cfg, filename)
	if err != nil {
		return nil, nil, nil, err
	}

	expected := int(refs.TotalBases())
	index := kmerindex.NewBufferedHash(cfg.BinBits, expected)

	var screen *kmerindex.Prescreen
	if cfg.UsePrescreen {
		screen = kmerindex.NewPrescreen(cfg.PrescreenBits, cfg.PrescreenHashCount, cfg.PieceSize)
	}

	refs.Each(func(e *reftable.Entry) {
		seq := e.Seq.Bytes()
		seqID := e.Seq.ID()
		k := cfg.PieceSize
		for start := 0; start+k <= len(seq); start++ {
			if countSeedN(seq, start, k) > 2 {
				continue
			}
			index.Insert(seqID, seq, start, k)
			if screen != nil {
				screen.Add(seq, start)
			}
		}
	})

	return refs, index, screen, nil
}

// LoadReferenceTable reads a reference file (name/DNA line pairs,
// spec.md §6) into a Table without building a k-mer index, for
// consumers such as cmd/sap-call that only need the reference
// sequences and their evidence vectors, not the seed index.
func LoadReferenceTable(cfg *config.Config, filename string) (*reftable.Table, error) {
	r, err := streamio.Open(filename, false, cfg.PageSize)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	refs := reftable.New()
	for {
		name, seq, ok := r.ReadReferencePair()
		if !ok {
			break
		}
		if len(name) == 0 {
			continue
		}
		if _, err := refs.Add(string(name), seq); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}
	return refs, nil
}

func countSeedN(seq []byte, start, k int) int {
	n := 0
	for i := 0; i < k; i++ {
		if seq[start+i] == 'n' {
			n++
		}
	}
	return n
}
