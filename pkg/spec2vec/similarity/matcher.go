package similarity

import (
	"math"
	"sort"
	"sync"
)

// candidate is one peak pair whose (shifted) m/z difference fell inside the
// tolerance window. score is the unnormalized pair weight and diff the raw
// |mzA - mzB| used as a late tie-break.
type candidate struct {
	i, j  int
	score float64
	diff  float64
}

// matcher holds the scratch buffers for one comparison so that repeated calls
// do not allocate. A matcher is not safe for concurrent use; the batch scorer
// gives each worker its own.
type matcher struct {
	cands   []candidate
	usedA   []bool
	usedB   []bool
	matched float64
	count   int
}

var matcherPool = sync.Pool{
	New: func() any { return &matcher{} },
}

func getMatcher() *matcher  { return matcherPool.Get().(*matcher) }
func putMatcher(m *matcher) { matcherPool.Put(m) }

// reset prepares the scratch buffers for a comparison of lenA x lenB peaks.
func (m *matcher) reset(lenA, lenB int) {
	m.cands = m.cands[:0]
	m.matched = 0
	m.count = 0
	if cap(m.usedA) < lenA {
		m.usedA = make([]bool, lenA)
	} else {
		m.usedA = m.usedA[:lenA]
		for i := range m.usedA {
			m.usedA[i] = false
		}
	}
	if cap(m.usedB) < lenB {
		m.usedB = make([]bool, lenB)
	} else {
		m.usedB = m.usedB[:lenB]
		for i := range m.usedB {
			m.usedB[i] = false
		}
	}
}

// collect enumerates all peak pairs satisfying
// |mzA[i] - (mzB[j] + shift)| <= tol into the candidate buffer.
// Both arrays are ascending, so a sliding lower bound keeps the scan linear
// in the number of peaks plus the number of candidates.
func (m *matcher) collect(mzA, intA, mzB, intB []float64, tol, shift, mzPower, intensityPower float64) {
	lo := 0
	for i := range mzA {
		target := mzA[i] - shift
		for lo < len(mzB) && mzB[lo] < target-tol {
			lo++
		}
		for j := lo; j < len(mzB) && mzB[j] <= target+tol; j++ {
			wa := peakWeight(mzA[i], intA[i], mzPower, intensityPower)
			wb := peakWeight(mzB[j], intB[j], mzPower, intensityPower)
			m.cands = append(m.cands, candidate{
				i:     i,
				j:     j,
				score: wa * wb,
				diff:  math.Abs(mzA[i] - mzB[j]),
			})
		}
	}
}

// acceptGreedy sorts the collected candidates and greedily accepts each pair
// whose two peak indices are both still free, accumulating the matched weight
// and count. The candidate buffer is drained; used-index marks persist so a
// second collect/accept pass (modified cosine) cannot reuse peaks.
//
// Order of acceptance is fully determined: descending pair score, then
// smaller combined index i+j, then smaller |mzA - mzB|, then (i, j). Relying
// on an unspecified stable-sort default would make scores differ across runs.
func (m *matcher) acceptGreedy() {
	cands := m.cands
	sort.Slice(cands, func(a, b int) bool {
		ca, cb := &cands[a], &cands[b]
		if ca.score != cb.score {
			return ca.score > cb.score
		}
		if ca.i+ca.j != cb.i+cb.j {
			return ca.i+ca.j < cb.i+cb.j
		}
		if ca.diff != cb.diff {
			return ca.diff < cb.diff
		}
		if ca.i != cb.i {
			return ca.i < cb.i
		}
		return ca.j < cb.j
	})
	for k := range cands {
		c := &cands[k]
		if m.usedA[c.i] || m.usedB[c.j] {
			continue
		}
		m.usedA[c.i] = true
		m.usedB[c.j] = true
		m.matched += c.score
		m.count++
	}
	m.cands = m.cands[:0]
}

// peakWeight computes mz^mzPower * intensity^intensityPower with fast paths
// for the exponents that dominate real workloads.
func peakWeight(mz, intensity, mzPower, intensityPower float64) float64 {
	if mzPower == 0 {
		switch intensityPower {
		case 1:
			return intensity
		case 0:
			return 1
		case 2:
			return intensity * intensity
		}
		return math.Pow(intensity, intensityPower)
	}
	return math.Pow(mz, mzPower) * math.Pow(intensity, intensityPower)
}

// weightNorm2 returns the squared Euclidean norm of the spectrum's weight
// vector under the given exponents.
func weightNorm2(mz, intensities []float64, mzPower, intensityPower float64) float64 {
	var sum float64
	for k := range mz {
		w := peakWeight(mz[k], intensities[k], mzPower, intensityPower)
		sum += w * w
	}
	return sum
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
