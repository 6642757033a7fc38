package kmerindex

import (
	"github.com/chmduquesne/rollinghash"
	"github.com/chmduquesne/rollinghash/buzhash32"
	"github.com/golang-collections/go-datastructures/bitarray"
)

// Prescreen is a rolling-hash Bloom sketch built over every k-mer
// window of a reference sequence as it is loaded, consulted before
// the exact/1-mismatch bucket scan in seed collection (internal/
// aligner Step 1). It is a pure optimization: a negative test means
// "definitely absent" and lets the aligner skip a bucket scan; a
// positive test is only ever a hint and is always followed by the
// real lookup against the Index, so it cannot affect correctness
// (spec.md invariant 2 is unaffected by its presence).
//
// Grounded on the two-stage Bloom-sketch screen in muscato_screen.go:
// the same rolling-buzhash-over-a-bitarray technique, applied here to
// reference k-mers instead of read windows.
type Prescreen struct {
	bits   bitarray.BitArray
	tables [][256]uint32
	size   uint64
	k      int
}

// splitmix64 generates a deterministic sequence of well-distributed
// 64-bit values from a fixed seed, used to build the independent
// buzhash tables below without pulling in a nondeterministic RNG.
func splitmix64(seed uint64) func() uint64 {
	state := seed
	return func() uint64 {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		return z ^ (z >> 31)
	}
}

// NewPrescreen returns a Prescreen sized to bitSize bits, using
// numHash independent rolling hash functions over k-mers of length k.
func NewPrescreen(bitSize uint64, numHash int, k int) *Prescreen {
	if bitSize == 0 {
		bitSize = 1
	}
	tables := make([][256]uint32, numHash)
	next := splitmix64(0xC0FFEE)
	for j := range tables {
		seen := make(map[uint32]bool, 256)
		for i := 0; i < 256; i++ {
			var v uint32
			for {
				v = uint32(next())
				if !seen[v] {
					seen[v] = true
					break
				}
			}
			tables[j][i] = v
		}
	}
	return &Prescreen{
		bits:   bitarray.NewBitArray(bitSize),
		tables: tables,
		size:   bitSize,
		k:      k,
	}
}

func (p *Prescreen) newHashes() []rollinghash.Hash32 {
	hs := make([]rollinghash.Hash32, len(p.tables))
	for j := range hs {
		hs[j] = buzhash32.NewFromUint32Array(&p.tables[j])
	}
	return hs
}

// Add marks seq[start:start+p.k] as present in the sketch.
func (p *Prescreen) Add(seq []byte, start int) {
	window := seq[start : start+p.k]
	for _, h := range p.newHashes() {
		h.Write(window)
		p.bits.SetBit(uint64(h.Sum32()) % p.size)
	}
}

// MightContain reports whether seq[start:start+p.k] could be present.
// False means definitely absent; true means "check the real index".
func (p *Prescreen) MightContain(seq []byte, start int) bool {
	window := seq[start : start+p.k]
	for _, h := range p.newHashes() {
		h.Write(window)
		ok, err := p.bits.GetBit(uint64(h.Sum32()) % p.size)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// BuildFromSequence adds every k-mer window of seq to the sketch.
func (p *Prescreen) BuildFromSequence(seq []byte) {
	for start := 0; start+p.k <= len(seq); start++ {
		p.Add(seq, start)
	}
}
