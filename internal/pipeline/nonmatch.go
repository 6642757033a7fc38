package pipeline

import (
	"bufio"

	"github.com/willf/bloom"

	"github.com/davidsun/SAP/internal/config"
	"github.com/davidsun/SAP/internal/streamio"
)

// ScanMappedBloom re-reads an alignment-record stream written by Run
// and returns a Bloom sketch of every mapped read's DNA sequence,
// keyed by sequence bytes rather than read index since workers write
// records with no global ordering across reads (spec.md §5 "no global
// ordering"). This backs cmd/sap-nonmatch, grounded on the teacher's
// writeNonMatch (muscato.go), adapted from a sorted-name diff to a
// Bloom membership test so the unmapped-read report never has to hold
// every mapped read in memory.
func ScanMappedBloom(cfg *config.Config, alignFile string) (*bloom.BloomFilter, error) {
	sc, f, err := streamio.NewScanner(alignFile, cfg.Snappy)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	filter := bloom.New(20*1024*1024, 5)
	for {
		seqLine, ok := nextLine(sc)
		if !ok {
			break
		}
		hasRecords, ok := scanPastBlock(sc)
		if !ok {
			break
		}
		if hasRecords {
			filter.Add([]byte(seqLine))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return filter, nil
}

// scanPastBlock consumes the quality line, any record lines, and the
// terminating blank line of one read's block. It returns whether the
// block contained at least one alignment record, and whether the
// stream ended before the block was complete.
func scanPastBlock(sc *bufio.Scanner) (hasRecords, ok bool) {
	if _, ok := nextLine(sc); !ok {
		return false, false
	}
	for {
		l, ok := nextLine(sc)
		if !ok {
			return hasRecords, false
		}
		if l == "" {
			return hasRecords, true
		}
		hasRecords = true
	}
}
