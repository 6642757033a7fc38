package evidenceupdate

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/davidsun/SAP/internal/config"
	"github.com/davidsun/SAP/internal/dna"
	"github.com/davidsun/SAP/internal/evidence"
	"github.com/davidsun/SAP/internal/reftable"
	"github.com/davidsun/SAP/internal/streamio"
)

// parsedRecord is one decoded alignment-record line (aligner.Record's
// wire form, re-parsed since evidenceupdate only depends on
// reftable/evidence, not aligner).
type parsedRecord struct {
	refName   string
	reverse   bool
	readStart int
	refStart  int
	score     float64
	ops       string
}

func parseRecord(line string) (parsedRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 6 {
		return parsedRecord{}, fmt.Errorf("evidenceupdate: malformed record %q", line)
	}
	readStart, err := strconv.Atoi(fields[2])
	if err != nil {
		return parsedRecord{}, err
	}
	refStart, err := strconv.Atoi(fields[3])
	if err != nil {
		return parsedRecord{}, err
	}
	score, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return parsedRecord{}, err
	}
	return parsedRecord{
		refName:   fields[0],
		reverse:   fields[1] == "R",
		readStart: readStart,
		refStart:  refStart,
		score:     score,
		ops:       fields[5],
	}, nil
}

// Stats summarizes one evidence-update pass over an alignment-record
// stream.
type Stats struct {
	ReadsSeen      int64
	ReadsAccepted  int64
	RecordsApplied int64
}

// ApplyFile re-reads the alignment-record stream written by
// internal/pipeline and folds every accepted record's operations into
// the evidence vector of the reference sequence it names (spec.md
// §4.I). Each batch is one read: a DNA line, a quality line, zero or
// more record lines, then a blank line.
func ApplyFile(cfg *config.Config, refs *reftable.Table, filename string) (Stats, error) {
	sc, f, err := streamio.NewScanner(filename, cfg.Snappy)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()

	var stats Stats
	for {
		seqLine, ok := nextLine(sc)
		if !ok {
			break
		}
		qualLine, ok := nextLine(sc)
		if !ok {
			return stats, fmt.Errorf("evidenceupdate: truncated batch in %s", filename)
		}

		var lines []string
		for {
			l, ok := nextLine(sc)
			if !ok {
				return stats, fmt.Errorf("evidenceupdate: unterminated batch in %s", filename)
			}
			if l == "" {
				break
			}
			lines = append(lines, l)
		}

		stats.ReadsSeen++
		applied, err := applyBatch(cfg, refs, []byte(seqLine), []byte(qualLine), lines)
		if err != nil {
			return stats, err
		}
		if applied > 0 {
			stats.ReadsAccepted++
			stats.RecordsApplied += applied
		}
	}
	if err := sc.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

func nextLine(sc *bufio.Scanner) (string, bool) {
	if !sc.Scan() {
		return "", false
	}
	return sc.Text(), true
}

// applyBatch decodes and applies one read's records, returning how
// many contributed (0 if the whole read was rejected on the
// average-quality gate).
func applyBatch(cfg *config.Config, refs *reftable.Table, seq, qualLine []byte, lines []string) (int64, error) {
	qb := make([]float64, len(qualLine))
	var sum float64
	for i, b := range qualLine {
		q := float64(clampShift(b))
		qb[i] = q
		sum += qualityScore(q)
	}
	if len(qb) > 0 && sum/float64(len(qb)) < cfg.MinReadQuality {
		return 0, nil
	}

	records := make([]parsedRecord, 0, len(lines))
	maxScore := 0.0
	for _, l := range lines {
		rec, err := parseRecord(l)
		if err != nil {
			return 0, err
		}
		records = append(records, rec)
		if rec.score > maxScore {
			maxScore = rec.score
		}
	}

	threshold := 0.9 * maxScore
	var applied int64
	for _, rec := range records {
		if rec.score < threshold {
			continue
		}
		entry := refs.GetByName(rec.refName)
		if entry == nil {
			continue
		}
		applyRecord(entry.Evidence, seq, qb, rec)
		applied++
	}
	return applied, nil
}

// applyRecord walks one record's opstring, updating ev with a
// match/substitution, deletion, or insertion call per operation
// (spec.md §4.I step 2).
func applyRecord(ev *evidence.Vector, seq []byte, qb []float64, rec parsedRecord) {
	L := len(seq)
	readPos := rec.readStart
	refPos := rec.refStart

	qualityAt := func(s int) float64 {
		if rec.reverse {
			return qb[L-s-1]
		}
		return qb[s]
	}
	baseAt := func(s int) byte {
		if rec.reverse {
			return dna.Complement(seq[L-1-s])
		}
		return seq[s]
	}

	ops := rec.ops
	for i := 0; i < len(ops); {
		switch ops[i] {
		case 'n', 'c':
			q := qualityAt(readPos)
			c := baseAt(readPos)
			ev.Lock(refPos, 1)
			ev.UpdateMatchValue(refPos, c, km1(q)-km2(q), km2(q))
			ev.Unlock(refPos, 1)
			readPos++
			refPos++
			i++
		case 'd':
			q := qualityAt(readPos)
			ev.Lock(refPos, 1)
			ev.UpdateDeletionValue(refPos, km1(q)-km2(q), km2(q))
			ev.Unlock(refPos, 1)
			refPos++
			i++
		case 'i':
			start := i
			for i < len(ops) && ops[i] == 'i' {
				i++
			}
			runLen := i - start

			bytes := make([]byte, runLen)
			var qSum float64
			for k := 0; k < runLen; k++ {
				s := readPos + k
				bytes[k] = baseAt(s)
				qSum += qualityAt(s)
			}
			qAvg := qSum / float64(runLen)
			ev.Insert(refPos, bytes, runLen, km1(qAvg))
			readPos += runLen
		default:
			i++
		}
	}
}
