package aligner

// alignColocated handles a cluster whose offsets are all equal (a
// "co-located cluster", spec.md §4.G Step 3): a gap-free scan that
// trims mismatched ends and accepts if the trimmed match fraction
// clears minQuality.
func alignColocated(read []byte, ref []byte, offset int, minQuality float64) (rec Record, ok bool) {
	readLen := len(read)
	left := offset

	bLeft := 0
	if -offset > bLeft {
		bLeft = -offset
	}
	bRight := readLen - 1
	if len(ref)-offset-1 < bRight {
		bRight = len(ref) - offset - 1
	}

	for bLeft < readLen && bLeft <= bRight && read[bLeft] != ref[left+bLeft] {
		bLeft++
	}
	for bRight >= bLeft && read[bRight] != ref[left+bRight] {
		bRight--
	}
	if bRight < bLeft {
		return Record{}, false
	}

	matchLen := 0
	for j := bLeft; j <= bRight; j++ {
		if read[j] == ref[left+j] {
			matchLen++
		}
	}

	quality := float64(matchLen) / float64(readLen)
	if quality < minQuality {
		return Record{}, false
	}

	ops := make([]byte, 0, bRight-bLeft+1)
	for j := bLeft; j <= bRight; j++ {
		if read[j] == ref[left+j] {
			ops = append(ops, 'n')
		} else {
			ops = append(ops, 'c')
		}
	}

	rec = Record{
		ReadStart: bLeft,
		RefStart:  left + bLeft,
		Score:     clipScore(quality, minQuality),
		Ops:       string(ops),
	}
	return rec, true
}

// alignBanded handles every cluster the co-located fast path does not
// take: one whose offsets span more than one value, or a single-offset
// cluster (delta 0) whose read runs past the reference end. It runs a
// gap-bounded DP over 2*delta+1 diagonal-relative columns,
// traceback, and emission (spec.md §4.G Step 3 banded case). left is
// offsets[i] (the cluster's minimum offset) and right is one past the
// last reference position the band may reach.
func alignBanded(read, ref []byte, left, delta int, s *Scratch, minQuality float64, gapPenalty, matchBonus int) (rec Record, ok bool) {
	readLen := len(read)
	right := left + delta + readLen + 1
	if right > len(ref) {
		right = len(ref)
	}

	bLeft := 0
	if -left > bLeft {
		bLeft = -left
	}
	if bLeft > readLen {
		return Record{}, false
	}

	bd := 2 * delta
	s.ensure(readLen)
	s.reset(readLen+2, bd+2)

	dp, trace := s.dp, s.trace
	for k := 0; k <= bd; k++ {
		dp[bLeft][k] = 0
	}

	p1, p2 := bLeft, 0
	maxK2 := right - left
	for j := bLeft; j <= readLen; j, maxK2 = j+1, maxK2-1 {
		kmax := bd
		if maxK2 < kmax {
			kmax = maxK2
		}
		for k := 0; k <= kmax; k++ {
			pv := dp[j][k]
			if pv == negInf {
				continue
			}
			dnaPos := left + j + k - delta
			if k > 0 && dp[j+1][k-1] < pv-gapPenalty {
				dp[j+1][k-1] = pv - gapPenalty
			}
			if dp[j][k+1] < pv-gapPenalty {
				dp[j][k+1] = pv - gapPenalty
			}
			if j < readLen && dnaPos < right && dnaPos >= 0 {
				score := pv
				if read[j] == ref[dnaPos] {
					score = pv + matchBonus
				}
				if dp[j+1][k] < score {
					dp[j+1][k] = score
				}
			}
			if pv > dp[p1][p2] {
				p1, p2 = j, k
			}
		}
	}

	// Normalize the endpoint backward while the score is preserved,
	// preferring shorter traces with equal score (spec.md §4.G).
	for p1 > 0 && dp[p1][p2] == dp[p1-1][p2] {
		p1--
	}
	for p2 > 0 && dp[p1][p2]-gapPenalty == dp[p1][p2-1] {
		p2--
	}
	for p1 > 0 && p2 < bd && dp[p1][p2]-gapPenalty == dp[p1-1][p2+1] {
		p1--
		p2++
	}

	tracebackDFS(trace, dp, read, ref[left:], p1, p2, delta, gapPenalty, matchBonus)

	s1, s2 := bLeft, 0
	for trace[s1][s2] == -1 {
		s2++
	}
	for s1 < readLen && dp[s1+1][s2] == dp[s1][s2] && trace[s1+1][s2] != -1 {
		s1++
	}
	for s2 > 0 && dp[s1+1][s2-1] == dp[s1][s2]-gapPenalty && trace[s1+1][s2-1] != -1 {
		s1++
		s2--
	}
	for s2 < bd && dp[s1][s2+1] == dp[s1][s2]-gapPenalty && trace[s1][s2+1] != -1 {
		s2++
	}

	quality := float64(dp[p1][p2]) / float64(matchBonus) / float64(readLen)
	if quality < minQuality {
		return Record{}, false
	}

	ops := make([]byte, 0, (p1-s1)+2*(p2)+2)
	x, y := s1, s2
	for x != p1 || y != p2 {
		switch trace[x][y] {
		case 0:
			if dp[x+1][y] == dp[x][y] {
				ops = append(ops, 'c')
			} else {
				ops = append(ops, 'n')
			}
			x++
		case 1:
			ops = append(ops, 'i')
			x++
			y--
		default:
			ops = append(ops, 'd')
			y++
		}
	}

	rec = Record{
		ReadStart: s1,
		RefStart:  left + s1 + s2 - delta,
		Score:     clipScore(quality, minQuality),
		Ops:       string(ops),
	}
	return rec, true
}

// tracebackDFS marks trace[x][y] with the operation that leaves cell
// (x,y) toward whichever successor produced the optimum, walking
// backward from the DP's argmax cell (p1,p2) (spec.md §4.G).
func tracebackDFS(trace [][]int8, dp [][]int, read, ref []byte, x, y, delta, gapPenalty, matchBonus int) {
	if x > 0 && dp[x-1][y] == dp[x][y] && trace[x-1][y] == -1 {
		trace[x-1][y] = 0
		tracebackDFS(trace, dp, read, ref, x-1, y, delta, gapPenalty, matchBonus)
	}
	if x > 0 && x+y-delta-1 >= 0 && x+y-delta-1 < len(ref) && read[x-1] == ref[x+y-delta-1] &&
		dp[x-1][y]+matchBonus == dp[x][y] && trace[x-1][y] == -1 {
		trace[x-1][y] = 0
		tracebackDFS(trace, dp, read, ref, x-1, y, delta, gapPenalty, matchBonus)
	}
	if x > 0 && y < 2*delta && dp[x-1][y+1]-gapPenalty == dp[x][y] && trace[x-1][y+1] == -1 {
		trace[x-1][y+1] = 1
		tracebackDFS(trace, dp, read, ref, x-1, y+1, delta, gapPenalty, matchBonus)
	}
	if y > 0 && dp[x][y-1]-gapPenalty == dp[x][y] && trace[x][y-1] == -1 {
		trace[x][y-1] = 2
		tracebackDFS(trace, dp, read, ref, x, y-1, delta, gapPenalty, matchBonus)
	}
}
