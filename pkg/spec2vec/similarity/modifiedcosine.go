package similarity

import (
	"fmt"
	"math"

	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/spectrum"
)

// ModifiedCosine scores spectrum pairs like CosineGreedy but runs the matcher
// twice: once with zero shift and once with the precursor mass difference as
// shift. Peaks consumed by the zero-shift pass stay unavailable to the
// shifted pass, so no peak contributes twice.
type ModifiedCosine struct {
	tolerance      float64
	mzPower        float64
	intensityPower float64
}

// NewModifiedCosine builds a modified-cosine measure. Both spectra of every
// scored pair must carry precursor_mz metadata. The shifted pass runs for
// every nonzero precursor difference, however small: the shifted window is
// never a subset of the zero-shift window.
func NewModifiedCosine(tolerance, mzPower, intensityPower float64) (*ModifiedCosine, error) {
	if tolerance < 0 {
		return nil, ErrInvalidTolerance
	}
	return &ModifiedCosine{
		tolerance:      tolerance,
		mzPower:        mzPower,
		intensityPower: intensityPower,
	}, nil
}

func (c *ModifiedCosine) Name() string { return "modified_cosine" }

// Pair scores a single spectrum pair. It fails with ErrMissingPrecursorMz
// when either spectrum lacks a precursor mass.
func (c *ModifiedCosine) Pair(a, b *spectrum.Spectrum) (ScoreResult, error) {
	m := getMatcher()
	defer putMatcher(m)
	return c.pairWith(m, a, b)
}

func (c *ModifiedCosine) pairWith(m *matcher, a, b *spectrum.Spectrum) (ScoreResult, error) {
	precA, okA := a.PrecursorMz()
	precB, okB := b.PrecursorMz()
	if !okA || !okB {
		return ScoreResult{}, fmt.Errorf("%s: %w", c.Name(), ErrMissingPrecursorMz)
	}
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

	// Second pass under the mass-shift hypothesis. Even a sub-tolerance shift
	// moves the window, so the pass runs for any nonzero shift; pairs the
	// zero-shift pass already accepted are blocked by the used-peak marks.
	shift := precA - precB
	if shift != 0 {
		m.collect(a.Mz(), a.Intensities(), b.Mz(), b.Intensities(),
			c.tolerance, shift, c.mzPower, c.intensityPower)
		m.acceptGreedy()
	}

	return ScoreResult{
		Score:        clamp01(m.matched / math.Sqrt(na2*nb2)),
		MatchedPeaks: m.count,
	}, nil
}
