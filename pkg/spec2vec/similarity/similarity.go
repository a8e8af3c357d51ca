// Package similarity implements pairwise similarity scoring between mass
// spectra: greedy tolerance-window peak matching reduced to a bounded score.
//
// Three measures are provided. CosineGreedy weights matched peaks by
// configurable m/z and intensity exponents and normalizes by the spectra's
// weight-vector norms. ModifiedCosine additionally matches peaks separated by
// the precursor mass difference, detecting structurally related compounds.
// IntersectMz ignores intensity entirely and scores the Jaccard overlap of
// tolerance-matched peaks; it is cheap enough to serve as a pre-filter ahead
// of the cosine measures in library searches.
//
// All measures are pure and safe for concurrent use; ComputeMatrix spreads
// pair scoring across a worker pool.
package similarity

import (
	"errors"

	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/spectrum"
)

var (
	// ErrInvalidTolerance is returned when a measure is constructed with a
	// negative tolerance. It is a configuration error, rejected before any
	// matching work.
	ErrInvalidTolerance = errors.New("tolerance must be non-negative")

	// ErrMissingPrecursorMz is returned by ModifiedCosine when either
	// spectrum lacks precursor_mz metadata.
	ErrMissingPrecursorMz = errors.New("spectrum has no precursor_mz metadata")
)

// Default weighting exponents: raw intensities, no m/z weighting.
const (
	DefaultMzPower        = 0.0
	DefaultIntensityPower = 1.0
)

// ScoreResult is the outcome of scoring one spectrum pair.
type ScoreResult struct {
	Score        float64 // similarity in [0, 1]
	MatchedPeaks int     // accepted peak pairs
}

// Measure scores spectrum pairs. Implementations are stateless between calls
// and safe for concurrent use.
type Measure interface {
	// Name identifies the measure, e.g. "cosine_greedy".
	Name() string
	// Pair scores a single spectrum pair.
	Pair(a, b *spectrum.Spectrum) (ScoreResult, error)
}

// pairer is the package-internal scoring path that reuses a caller-owned
// matcher, letting the batch scorer avoid per-pair allocation.
type pairer interface {
	pairWith(m *matcher, a, b *spectrum.Spectrum) (ScoreResult, error)
}

// ScorePair scores two spectra with the greedy cosine measure.
func ScorePair(a, b *spectrum.Spectrum, tolerance, mzPower, intensityPower float64) (ScoreResult, error) {
	c, err := NewCosineGreedy(tolerance, mzPower, intensityPower)
	if err != nil {
		return ScoreResult{}, err
	}
	return c.Pair(a, b)
}

// ScorePairShifted scores two spectra with the modified cosine measure.
func ScorePairShifted(a, b *spectrum.Spectrum, tolerance, mzPower, intensityPower float64) (ScoreResult, error) {
	c, err := NewModifiedCosine(tolerance, mzPower, intensityPower)
	if err != nil {
		return ScoreResult{}, err
	}
	return c.Pair(a, b)
}

// ScoreIntersection scores two spectra by tolerance-matched peak overlap.
func ScoreIntersection(a, b *spectrum.Spectrum, tolerance float64) (ScoreResult, error) {
	c, err := NewIntersectMz(tolerance)
	if err != nil {
		return ScoreResult{}, err
	}
	return c.Pair(a, b)
}
