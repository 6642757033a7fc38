package aligner

import (
	"sort"

	"github.com/davidsun/SAP/internal/kmerindex"
)

// seedPositions chooses cutCount anchor positions on a read of length
// readLen, uniformly spaced from 0 to readLen-k, with the last one
// forced to readLen-k-1 (spec.md §4.G Step 1).
func seedPositions(readLen, k, cutCount int) []int {
	span := readLen - k
	if span < 0 {
		return nil
	}
	if cutCount <= 1 {
		return []int{span}
	}
	pos := make([]int, cutCount)
	for i := 0; i < cutCount-1; i++ {
		pos[i] = span * i / (cutCount - 1)
	}
	pos[cutCount-1] = readLen - k - 1
	return pos
}

// countN returns the number of 'n' bases in read[start:start+k].
func countN(read []byte, start, k int) int {
	n := 0
	for i := 0; i < k; i++ {
		if read[start+i] == 'n' {
			n++
		}
	}
	return n
}

// collectSeeds runs Step 1 of spec.md §4.G: for each seed anchor,
// look the k-mer up (exact, then 1-mismatch unless fastMap or a
// Prescreen rules it out), and record refStart-readOffset candidates
// per reference sequence id.
func collectSeeds(read []byte, k, cutCount int, idx kmerindex.Index, screen *kmerindex.Prescreen, fastMap bool) map[int64][]int32 {
	candidates := make(map[int64][]int32)
	for _, p := range seedPositions(len(read), k, cutCount) {
		if p < 0 {
			continue
		}
		if countN(read, p, k) > 2 {
			continue
		}
		hits := idx.ExactFind(read, p, k)
		for _, h := range hits {
			candidates[h.SeqID] = append(candidates[h.SeqID], h.Start-int32(p))
		}
		if len(hits) == 0 && !fastMap {
			if screen == nil || screen.MightContain(read, p) {
				for _, h := range idx.OneMismatchFind(read, p, k) {
					candidates[h.SeqID] = append(candidates[h.SeqID], h.Start-int32(p))
				}
			}
		}
	}
	return candidates
}

// cluster is a maximal run of offsets within maxGapSize of each other
// (spec.md §4.G Step 2 / GLOSSARY).
type cluster struct {
	offsets []int32 // sorted, inclusive [i..r] run
}

// clusterOffsets sorts offsets and splits them into maximal runs
// whose span is less than maxGapSize, rejecting runs with fewer than
// 2 seeds.
func clusterOffsets(offsets []int32, maxGapSize int) []cluster {
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	var out []cluster
	for i := 0; i < len(offsets); {
		r := i
		for r+1 < len(offsets) && offsets[r+1]-offsets[i] < int32(maxGapSize) {
			r++
		}
		if r-i+1 >= 2 {
			out = append(out, cluster{offsets: offsets[i : r+1]})
		}
		i = r + 1
	}
	return out
}
