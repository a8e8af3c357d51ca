package similarity

import (
	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/spectrum"
)

// IntersectMz scores spectrum pairs purely by how many peaks match within the
// tolerance window, as a Jaccard ratio over the two peak sets. Intensities
// are ignored, which makes it an order of magnitude cheaper than the cosine
// measures and suitable as a pre-filter in large library searches.
type IntersectMz struct {
	tolerance float64
}

// NewIntersectMz builds an intersection measure.
func NewIntersectMz(tolerance float64) (*IntersectMz, error) {
	if tolerance < 0 {
		return nil, ErrInvalidTolerance
	}
	return &IntersectMz{tolerance: tolerance}, nil
}

func (c *IntersectMz) Name() string { return "intersect_mz" }

// Pair scores a single spectrum pair as matched / (lenA + lenB - matched).
func (c *IntersectMz) Pair(a, b *spectrum.Spectrum) (ScoreResult, error) {
	m := getMatcher()
	defer putMatcher(m)
	return c.pairWith(m, a, b)
}

func (c *IntersectMz) pairWith(m *matcher, a, b *spectrum.Spectrum) (ScoreResult, error) {
	if a.Len() == 0 || b.Len() == 0 {
		return ScoreResult{}, nil
	}

	// Uniform pair weights: every in-window candidate scores 1, so greedy
	// acceptance is driven entirely by the index tie-breaks.
	m.reset(a.Len(), b.Len())
	m.collect(a.Mz(), a.Intensities(), b.Mz(), b.Intensities(),
		c.tolerance, 0, 0, 0)
	m.acceptGreedy()

	union := a.Len() + b.Len() - m.count
	if union == 0 {
		return ScoreResult{}, nil
	}
	return ScoreResult{
		Score:        clamp01(float64(m.count) / float64(union)),
		MatchedPeaks: m.count,
	}, nil
}
