package similarity

import (
	"math"

	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/spectrum"
)

// CosineGreedy scores spectrum pairs by greedy one-to-one peak matching under
// an m/z tolerance, normalized cosine-style by the two weight-vector norms.
type CosineGreedy struct {
	tolerance      float64
	mzPower        float64
	intensityPower float64
}

// NewCosineGreedy builds a cosine measure. Peak weights are computed as
// mz^mzPower * intensity^intensityPower; pass DefaultMzPower and
// DefaultIntensityPower for plain intensity weighting.
func NewCosineGreedy(tolerance, mzPower, intensityPower float64) (*CosineGreedy, error) {
	if tolerance < 0 {
		return nil, ErrInvalidTolerance
	}
	return &CosineGreedy{
		tolerance:      tolerance,
		mzPower:        mzPower,
		intensityPower: intensityPower,
	}, nil
}

func (c *CosineGreedy) Name() string { return "cosine_greedy" }

// Pair scores a single spectrum pair. Empty or zero-intensity spectra score
// 0 with no matches; this is a degenerate case, not an error.
func (c *CosineGreedy) Pair(a, b *spectrum.Spectrum) (ScoreResult, error) {
	m := getMatcher()
	defer putMatcher(m)
	return c.pairWith(m, a, b)
}

func (c *CosineGreedy) pairWith(m *matcher, a, b *spectrum.Spectrum) (ScoreResult, error) {
	if a.Len() == 0 || b.Len() == 0 {
		return ScoreResult{}, nil
	}
	na2 := weightNorm2(a.Mz(), a.Intensities(), c.mzPower, c.intensityPower)
	nb2 := weightNorm2(b.Mz(), b.Intensities(), c.mzPower, c.intensityPower)
	if na2 == 0 || nb2 == 0 {
		return ScoreResult{}, nil
	}

	m.reset(a.Len(), b.Len())
	m.collect(a.Mz(), a.Intensities(), b.Mz(), b.Intensities(),
		c.tolerance, 0, c.mzPower, c.intensityPower)
	m.acceptGreedy()

	return ScoreResult{
		Score:        clamp01(m.matched / math.Sqrt(na2*nb2)),
		MatchedPeaks: m.count,
	}, nil
}
