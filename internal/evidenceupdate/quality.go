// Package evidenceupdate re-reads the alignment-record stream
// produced by internal/pipeline and replays each record's operations
// against the evidence vector of the reference sequence it names
// (spec.md §4.I).
package evidenceupdate

import "math"

// clampShift converts a raw Phred+33 ASCII quality byte into a Phred
// score, capping the ASCII byte at 93 before subtracting the 33
// offset (spec.md §4.I step 1).
func clampShift(b byte) int {
	if b >= 93 {
		b = 93
	}
	if b < 33 {
		return 0
	}
	return int(b) - 33
}

// errorProb returns the Phred-scaled base-error probability
// 10^(-q/10) (GLOSSARY: "Phred-33 quality"). q may be fractional when
// averaged over an insertion run.
func errorProb(q float64) float64 {
	return math.Pow(10, -q/10)
}

// km1 is log(1 - error probability): the log-likelihood contribution
// of the base being called correctly.
func km1(q float64) float64 {
	p := errorProb(q)
	if p >= 1 {
		p = 1 - 1e-9
	}
	return math.Log(1 - p)
}

// km2 is log(error probability): the log-likelihood contribution of
// the base being called incorrectly.
func km2(q float64) float64 {
	return math.Log(errorProb(q))
}

// qualityScore maps a Phred score to the [0,1] "score space" used for
// the per-read average-quality gate (spec.md §4.I step 1): the
// probability the base was called correctly.
func qualityScore(q float64) float64 {
	return 1 - errorProb(q)
}
