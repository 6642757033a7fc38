package aligner

import (
	"github.com/davidsun/SAP/internal/config"
	"github.com/davidsun/SAP/internal/dna"
	"github.com/davidsun/SAP/internal/kmerindex"
	"github.com/davidsun/SAP/internal/reftable"
)

// Aligner runs the seed-and-extend banded alignment algorithm against
// a shared, read-only reference table and k-mer index (spec.md
// §4.G). An Aligner is stateless; all per-worker mutable state lives
// in a Scratch, one per goroutine.
type Aligner struct {
	cfg    *config.Config
	refs   *reftable.Table
	index  kmerindex.Index
	screen *kmerindex.Prescreen
}

// New returns an Aligner over the given reference table and k-mer
// index, built once before any worker starts (spec.md §5: "read-only
// during alignment; no lock").
func New(cfg *config.Config, refs *reftable.Table, index kmerindex.Index, screen *kmerindex.Prescreen) *Aligner {
	return &Aligner{cfg: cfg, refs: refs, index: index, screen: screen}
}

// AlignOneDirection runs seed collection, clustering, and per-cluster
// alignment for a read already oriented the way it should be scored
// (the caller is responsible for reverse-complementing and restoring
// the read around reverse-direction calls, per spec.md §4.G).
func (a *Aligner) AlignOneDirection(read []byte, reverse bool, s *Scratch) []Record {
	if len(read) < a.cfg.PieceSize {
		return nil
	}

	candidates := collectSeeds(read, a.cfg.PieceSize, a.cfg.CutCount, a.index, a.screen, a.cfg.FastMap)
	maxGapSize := a.cfg.MaxGapSize(len(read))
	if maxGapSize < 1 {
		maxGapSize = 1
	}

	var out []Record
	for seqID, offsets := range candidates {
		entry := a.refs.Get(seqID)
		if entry == nil {
			continue
		}
		ref := entry.Seq.Bytes()

		for _, cl := range clusterOffsets(offsets, maxGapSize) {
			i, r := cl.offsets[0], cl.offsets[len(cl.offsets)-1]

			var rec Record
			var ok bool
			if i == r && int(i)+len(read) <= len(ref) {
				rec, ok = alignColocated(read, ref, int(i), a.cfg.MinQuality)
			} else {
				delta := int(r - i)
				rec, ok = alignBanded(read, ref, int(i), delta, s, a.cfg.MinQuality, a.cfg.GapPenalty, a.cfg.MatchBonus)
			}
			if ok {
				rec.RefName = entry.Seq.Name()
				rec.Reverse = reverse
				out = append(out, rec)
			}
		}
	}
	return out
}

// AlignRead tries both the forward orientation and the
// reverse-complement orientation of read, returning every accepted
// record across both passes. read is temporarily reverse-complemented
// in place for the second pass and restored before returning (spec.md
// §4.G: "the read is temporarily reversed in place and reversed back
// on exit").
func (a *Aligner) AlignRead(read []byte, s *Scratch) []Record {
	recs := a.AlignOneDirection(read, false, s)

	dna.ReverseComplement(read)
	recs = append(recs, a.AlignOneDirection(read, true, s)...)
	dna.ReverseComplement(read)

	return recs
}
