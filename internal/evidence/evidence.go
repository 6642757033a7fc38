// Package evidence implements the per-base evidence accumulator
// attached to each reference sequence (the original MatchExon
// counters). It is updated concurrently by the evidence-update pass
// (internal/evidenceupdate) and consumed by the variant caller
// (internal/variantcaller).
package evidence

import (
	"sync"
	"sync/atomic"

	"github.com/davidsun/SAP/internal/dna"
)

// stripeWidth is the number of reference positions covered by one
// coarse-grained lock, per spec.md §4.D/§5.
const stripeWidth = 64

// Insertion is one recorded insertion event from a single read: the
// inserted bases, their count, and that read's log-likelihood score.
// Records are not merged here; the variant caller sums them per
// inserted sequence.
type Insertion struct {
	Bytes []byte
	Len   int
	Score float64
	next  int32
}

// Vector is the per-reference evidence accumulator of length L,
// described in spec.md §3/§4.D. The insertion list is an append-only
// arena indexed per position (design note: replaces the original's
// pointer-graph insertion list), so records need no separate heap
// node; each record's inserted bases are still copied into their own
// slice.
type Vector struct {
	length int

	matchCount [4][]int64
	matchScore [4][]float64

	deleteCount []int64
	deleteScore []float64

	totalQ []float64

	stripeLock []int32

	insMu         sync.Mutex
	insertionHead []int32
	arena         []Insertion
}

// New creates a zeroed evidence vector for a reference sequence of
// length l.
func New(l int) *Vector {
	v := &Vector{
		length:        l,
		deleteCount:   make([]int64, l),
		deleteScore:   make([]float64, l),
		totalQ:        make([]float64, l),
		stripeLock:    make([]int32, (l+stripeWidth-1)/stripeWidth),
		insertionHead: make([]int32, l),
	}
	for i := 0; i < 4; i++ {
		v.matchCount[i] = make([]int64, l)
		v.matchScore[i] = make([]float64, l)
	}
	for i := range v.insertionHead {
		v.insertionHead[i] = -1
	}
	return v
}

// Len returns the length of the reference sequence this vector
// accumulates evidence for.
func (v *Vector) Len() int { return v.length }

// Lock acquires the stripe locks covering [loc, loc+n), in ascending
// stripe order, so that concurrent updates never deadlock (spec.md
// §5: "no multi-stripe acquisition ordering" is safe because updates
// are always acquired low-to-high here).
func (v *Vector) Lock(loc, n int) {
	s0 := loc / stripeWidth
	s1 := (loc + n - 1) / stripeWidth
	if s1 >= len(v.stripeLock) {
		s1 = len(v.stripeLock) - 1
	}
	for s := s0; s <= s1; s++ {
		for !atomic.CompareAndSwapInt32(&v.stripeLock[s], 0, 1) {
			// spin; critical sections are a handful of
			// arithmetic ops, never blocking I/O.
		}
	}
}

// Unlock releases the stripe locks covering [loc, loc+n).
func (v *Vector) Unlock(loc, n int) {
	s0 := loc / stripeWidth
	s1 := (loc + n - 1) / stripeWidth
	if s1 >= len(v.stripeLock) {
		s1 = len(v.stripeLock) - 1
	}
	for s := s0; s <= s1; s++ {
		atomic.StoreInt32(&v.stripeLock[s], 0)
	}
}

func baseIndex(c byte) int {
	switch c {
	case 'a':
		return 0
	case 't':
		return 1
	case 'g':
		return 2
	case 'c':
		return 3
	}
	return -1
}

// UpdateMatchValue records one match/substitution observation of base
// c at reference position loc. Callers must hold the stripe lock for
// loc before calling (internal/evidenceupdate locks and unlocks around
// each single operation).
func (v *Vector) UpdateMatchValue(loc int, c byte, score, quality float64) {
	i := baseIndex(c)
	if i < 0 {
		return
	}
	v.matchCount[i][loc]++
	v.matchScore[i][loc] += score
	v.totalQ[loc] += quality
}

// UpdateDeletionValue records one deletion observation at reference
// position loc.
func (v *Vector) UpdateDeletionValue(loc int, score, quality float64) {
	v.deleteCount[loc]++
	v.deleteScore[loc] += score
	v.totalQ[loc] += quality
}

// Insert records an insertion event keyed by the reference position
// immediately preceding the insertion (spec.md §3).
func (v *Vector) Insert(loc int, bytes []byte, length int, score float64) {
	b := make([]byte, length)
	copy(b, bytes)

	v.insMu.Lock()
	idx := int32(len(v.arena))
	v.arena = append(v.arena, Insertion{Bytes: b, Len: length, Score: score, next: v.insertionHead[loc]})
	v.insertionHead[loc] = idx
	v.insMu.Unlock()
}

// Insertions returns the list of insertion records recorded at
// position loc, most-recent first.
func (v *Vector) Insertions(loc int) []Insertion {
	v.insMu.Lock()
	defer v.insMu.Unlock()

	var out []Insertion
	for idx := v.insertionHead[loc]; idx != -1; idx = v.arena[idx].next {
		out = append(out, v.arena[idx])
	}
	return out
}

// MatchCount returns the total match count across all four bases at loc.
func (v *Vector) MatchCount(loc int) int64 {
	var c int64
	for i := 0; i < 4; i++ {
		c += v.matchCount[i][loc]
	}
	return c
}

// MatchCountBase returns the match count for base c at loc.
func (v *Vector) MatchCountBase(loc int, c byte) int64 {
	i := baseIndex(c)
	if i < 0 {
		return 0
	}
	return v.matchCount[i][loc]
}

// MatchScoreBase returns the summed match score for base c at loc.
func (v *Vector) MatchScoreBase(loc int, c byte) float64 {
	i := baseIndex(c)
	if i < 0 {
		return 0
	}
	return v.matchScore[i][loc]
}

// DeleteCount returns the deletion count at loc.
func (v *Vector) DeleteCount(loc int) int64 { return v.deleteCount[loc] }

// DeleteScore returns the summed deletion score at loc.
func (v *Vector) DeleteScore(loc int) float64 { return v.deleteScore[loc] }

// TotalQ returns the summed quality contribution at loc.
func (v *Vector) TotalQ(loc int) float64 { return v.totalQ[loc] }

// MostProbableBase returns the base with the highest match count at
// loc, defaulting to 'a' if all counts are zero.
func (v *Vector) MostProbableBase(loc int) byte {
	best, bestI := int64(-1), 0
	for i := 0; i < 4; i++ {
		if v.matchCount[i][loc] > best {
			best = v.matchCount[i][loc]
			bestI = i
		}
	}
	return dna.Bit2Base(uint64(bestI))
}
