// Package variantcaller implements the Bayesian SNP/indel caller that
// turns an accumulated evidence.Vector into variant records (spec.md
// §4.J). It runs entirely over in-memory evidence; there is no I/O
// beyond the caller writing out whatever this package returns.
package variantcaller

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/davidsun/SAP/internal/evidence"
	"github.com/davidsun/SAP/internal/reftable"
)

// bases is the fixed iteration order used whenever all four bases are
// considered together.
var bases = [4]byte{'a', 't', 'g', 'c'}

// SNP is one called single-nucleotide variant.
type SNP struct {
	RefName     string
	Pos         int
	Confidence  float64
	CalledCount int64
	Total       int64
	RefBase     byte
	Called      string // one base, or two bases for a heterozygous call
}

func (s SNP) String() string {
	return fmt.Sprintf("%s\t%d\t%.0f\t%d\t%d\t%c\t%s", s.RefName, s.Pos, s.Confidence*1000, s.CalledCount, s.Total, s.RefBase, s.Called)
}

// Deletion is one called deletion.
type Deletion struct {
	RefName     string
	Pos         int
	DeleteCount int64
	DeleteScore float64
	MatchScore  float64
}

func (d Deletion) String() string {
	return fmt.Sprintf("%s\tDEL\t%d\t%d\t%.4f\t%.4f", d.RefName, d.Pos, d.DeleteCount, d.DeleteScore, d.MatchScore)
}

// Insertion is one called insertion, with its supporting sequences
// ranked by count, ties broken by aggregate score.
type Insertion struct {
	RefName   string
	Pos       int
	Total     int64
	Score     float64
	ScoreNear float64
	Variants  []InsertionVariant
}

// InsertionVariant is one distinct inserted sequence observed at a
// position, with its aggregated count and score.
type InsertionVariant struct {
	Bytes []byte
	Count int64
	Score float64
}

func (ins Insertion) String() string {
	parts := make([]string, len(ins.Variants))
	for i, v := range ins.Variants {
		parts[i] = fmt.Sprintf("%s(%.4f)", v.Bytes, v.Score)
	}
	return fmt.Sprintf("%s\tINS\t%d\t%d\t%.4f\t%.4f\tCHG=%s", ins.RefName, ins.Pos, ins.Total, ins.Score, ins.ScoreNear, strings.Join(parts, " "))
}

// Result collects everything called for one reference sequence.
type Result struct {
	SNPs       []SNP
	Deletions  []Deletion
	Insertions []Insertion
}

// Options bundles the thresholds the caller needs, mirroring the
// fields of config.Config that drive this pass.
type Options struct {
	MinMatchCount int
	PriorHet      float64
}

// CallAll runs the SNP, deletion, and insertion callers over every
// reference sequence in refs, in the order spec.md §4.J lays them
// out.
func CallAll(refs *reftable.Table, opt Options) Result {
	var out Result
	refs.Each(func(e *reftable.Entry) {
		name := e.Seq.Name()
		ref := e.Seq.Bytes()
		ev := e.Evidence

		out.SNPs = append(out.SNPs, callSNPs(name, ref, ev, opt)...)
		out.Deletions = append(out.Deletions, callDeletions(name, ref, ev, opt)...)
		out.Insertions = append(out.Insertions, callInsertions(name, ref, ev, opt)...)
	})
	return out
}

type baseCount struct {
	base  byte
	count int64
	score float64
}

func rankedBases(ev *evidence.Vector, pos int) [4]baseCount {
	var bc [4]baseCount
	for i, b := range bases {
		bc[i] = baseCount{base: b, count: ev.MatchCountBase(pos, b), score: ev.MatchScoreBase(pos, b)}
	}
	sort.SliceStable(bc[:], func(i, j int) bool { return bc[i].count > bc[j].count })
	return bc
}

// lnC is the log binomial coefficient log(C(n,k)).
func lnC(n, k int64) float64 {
	a, _ := math.Lgamma(float64(n) + 1)
	b, _ := math.Lgamma(float64(k) + 1)
	c, _ := math.Lgamma(float64(n-k) + 1)
	return a - b - c
}

func callSNPs(name string, ref []byte, ev *evidence.Vector, opt Options) []SNP {
	var out []SNP
	for pos := 0; pos < ev.Len(); pos++ {
		total := ev.MatchCount(pos)
		if total < int64(opt.MinMatchCount) {
			continue
		}
		refBase := ref[pos]
		ranked := rankedBases(ev, pos)
		b1, b2 := ranked[0], ranked[1]

		if b2.count == 0 {
			if b1.base != refBase {
				out = append(out, SNP{
					RefName:     name,
					Pos:         pos,
					Confidence:  1.0,
					CalledCount: b1.count,
					Total:       total,
					RefBase:     refBase,
					Called:      string(b1.base),
				})
			}
			continue
		}

		totalQ := ev.TotalQ(pos)
		pp1 := b1.score + totalQ
		pp2 := b2.score + totalQ
		pp3 := lnC(b1.count+b2.count, b1.count) + float64(b1.count+b2.count)*math.Log(0.5)

		pr := opt.PriorHet
		homPrior := (1 - pr) / 2
		m := max3(pp1, pp2, pp3)
		div := m + math.Log(pr*math.Exp(pp3-m)+homPrior*(math.Exp(pp1-m)+math.Exp(pp2-m)))

		postHom1 := homPrior * math.Exp(pp1-div)
		postHom2 := homPrior * math.Exp(pp2-div)
		postHet := pr * math.Exp(pp3-div)

		switch {
		case postHom1 >= postHom2 && postHom1 >= postHet:
			if b1.base == refBase {
				continue
			}
			out = append(out, SNP{
				RefName: name, Pos: pos,
				Confidence:  math.Abs(postHom1 * postHom1 / (postHom2 * postHet)),
				CalledCount: b1.count, Total: total, RefBase: refBase,
				Called: string(b1.base),
			})
		case postHom2 >= postHom1 && postHom2 >= postHet:
			if b2.base == refBase {
				continue
			}
			out = append(out, SNP{
				RefName: name, Pos: pos,
				Confidence:  math.Abs(postHom2 * postHom2 / (postHom1 * postHet)),
				CalledCount: b2.count, Total: total, RefBase: refBase,
				Called: string(b2.base),
			})
		default:
			out = append(out, SNP{
				RefName: name, Pos: pos,
				Confidence:  math.Abs(postHet * postHet / (postHom1 * postHom2)),
				CalledCount: b1.count + b2.count, Total: total, RefBase: refBase,
				Called: string([]byte{b1.base, b2.base}),
			})
		}
	}
	return out
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func totalMatchScore(ev *evidence.Vector, pos int) float64 {
	var s float64
	for _, b := range bases {
		s += ev.MatchScoreBase(pos, b)
	}
	return s
}

func callDeletions(name string, ref []byte, ev *evidence.Vector, opt Options) []Deletion {
	var out []Deletion
	for pos := 0; pos < ev.Len(); pos++ {
		dc := ev.DeleteCount(pos)
		if dc < int64(opt.MinMatchCount) {
			continue
		}
		totalQ := ev.TotalQ(pos)
		deleteTotal := ev.DeleteScore(pos) + totalQ
		matchTotal := totalMatchScore(ev, pos) + totalQ
		if deleteTotal < matchTotal {
			continue
		}
		out = append(out, Deletion{
			RefName: name, Pos: pos,
			DeleteCount: dc, DeleteScore: deleteTotal, MatchScore: matchTotal,
		})
	}
	return out
}

func callInsertions(name string, ref []byte, ev *evidence.Vector, opt Options) []Insertion {
	var out []Insertion
	for pos := 0; pos < ev.Len(); pos++ {
		records := ev.Insertions(pos)
		if len(records) == 0 {
			continue
		}

		groups := map[string]*InsertionVariant{}
		var order []string
		var total int64
		var totalScore float64
		for _, r := range records {
			key := string(r.Bytes)
			g, ok := groups[key]
			if !ok {
				g = &InsertionVariant{Bytes: append([]byte(nil), r.Bytes...)}
				groups[key] = g
				order = append(order, key)
			}
			g.Count++
			g.Score += r.Score
			total++
			totalScore += r.Score
		}
		if total < int64(opt.MinMatchCount) {
			continue
		}

		totalQ := ev.TotalQ(pos)
		nearA := totalMatchScore(ev, pos) + totalQ
		nearB := math.Inf(1)
		if pos+1 < ev.Len() {
			nearB = totalMatchScore(ev, pos+1) + ev.TotalQ(pos+1)
		}
		scoreNear := math.Min(nearA, nearB)
		if totalScore < scoreNear {
			continue
		}

		variants := make([]InsertionVariant, 0, len(order))
		for _, k := range order {
			variants = append(variants, *groups[k])
		}
		sort.SliceStable(variants, func(i, j int) bool {
			if variants[i].Count != variants[j].Count {
				return variants[i].Count > variants[j].Count
			}
			return variants[i].Score > variants[j].Score
		})

		out = append(out, Insertion{
			RefName: name, Pos: pos,
			Total: total, Score: totalScore, ScoreNear: scoreNear,
			Variants: variants,
		})
	}
	return out
}
