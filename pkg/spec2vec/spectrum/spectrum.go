// Package spectrum defines the mass spectrum value type consumed by the
// scoring subsystem. A Spectrum is built once by a loader or filter pipeline
// and is read-only afterwards; the similarity code indexes straight into its
// peak arrays and never mutates them.
package spectrum

import (
	"errors"
	"fmt"
	"math"
)

// Metadata keys recognised by the scoring subsystem.
const (
	KeyPrecursorMz  = "precursor_mz"
	KeyCharge       = "charge"
	KeyCompoundName = "compound_name"
)

var (
	ErrLengthMismatch    = errors.New("mz and intensity arrays have different lengths")
	ErrUnsortedPeaks     = errors.New("mz values must be strictly ascending")
	ErrNegativeIntensity = errors.New("intensities must be non-negative")
	ErrInvalidPeakValue  = errors.New("peak values must be finite")
)

// Metadata is a free-form key/value mapping attached to a spectrum.
type Metadata map[string]any

// Spectrum holds one mass spectrum: parallel m/z and intensity arrays sorted
// by ascending m/z, plus metadata. Instances are immutable once constructed.
type Spectrum struct {
	mz          []float64
	intensities []float64
	meta        Metadata
}

// New validates and copies the peak arrays into a fresh Spectrum.
// The m/z array must be strictly ascending (callers sort once, not per
// comparison) and intensities must be finite and non-negative.
func New(mz, intensities []float64, meta Metadata) (*Spectrum, error) {
	if len(mz) != len(intensities) {
		return nil, fmt.Errorf("%w: %d mz vs %d intensities", ErrLengthMismatch, len(mz), len(intensities))
	}
	for i := range mz {
		if math.IsNaN(mz[i]) || math.IsInf(mz[i], 0) {
			return nil, fmt.Errorf("%w: mz[%d]", ErrInvalidPeakValue, i)
		}
		if math.IsNaN(intensities[i]) || math.IsInf(intensities[i], 0) {
			return nil, fmt.Errorf("%w: intensity[%d]", ErrInvalidPeakValue, i)
		}
		if intensities[i] < 0 {
			return nil, fmt.Errorf("%w: intensity[%d] = %g", ErrNegativeIntensity, i, intensities[i])
		}
		if i > 0 && mz[i] <= mz[i-1] {
			return nil, fmt.Errorf("%w: mz[%d]=%g after mz[%d]=%g", ErrUnsortedPeaks, i, mz[i], i-1, mz[i-1])
		}
	}

	s := &Spectrum{
		mz:          make([]float64, len(mz)),
		intensities: make([]float64, len(intensities)),
		meta:        make(Metadata, len(meta)),
	}
	copy(s.mz, mz)
	copy(s.intensities, intensities)
	for k, v := range meta {
		s.meta[k] = v
	}
	return s, nil
}

// Len returns the number of peaks.
func (s *Spectrum) Len() int { return len(s.mz) }

// Mz returns the ascending m/z array. The slice is shared, not copied;
// callers must treat it as read-only.
func (s *Spectrum) Mz() []float64 { return s.mz }

// Intensities returns the intensity array aligned index-for-index with Mz().
// The slice is shared, not copied; callers must treat it as read-only.
func (s *Spectrum) Intensities() []float64 { return s.intensities }

// Get looks up a metadata value.
func (s *Spectrum) Get(key string) (any, bool) {
	v, ok := s.meta[key]
	return v, ok
}

// PrecursorMz returns the precursor m/z metadata entry, if present.
// Integer-typed values are accepted since loaders are sloppy about numerics.
func (s *Spectrum) PrecursorMz() (float64, bool) {
	v, ok := s.meta[KeyPrecursorMz]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Charge returns the charge metadata entry, if present.
func (s *Spectrum) Charge() (int, bool) {
	v, ok := s.meta[KeyCharge]
	if !ok {
		return 0, false
	}
	switch c := v.(type) {
	case int:
		return c, true
	case int32:
		return int(c), true
	case int64:
		return int(c), true
	case float64:
		return int(c), true
	default:
		return 0, false
	}
}

// CompoundName returns the compound name metadata entry, or "".
func (s *Spectrum) CompoundName() string {
	if v, ok := s.meta[KeyCompoundName]; ok {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}

// Clone returns a deep copy with independently settable metadata.
func (s *Spectrum) Clone() *Spectrum {
	c := &Spectrum{
		mz:          make([]float64, len(s.mz)),
		intensities: make([]float64, len(s.intensities)),
		meta:        make(Metadata, len(s.meta)),
	}
	copy(c.mz, s.mz)
	copy(c.intensities, s.intensities)
	for k, v := range s.meta {
		c.meta[k] = v
	}
	return c
}

// WithMetadata returns a clone carrying the extra metadata entry.
func (s *Spectrum) WithMetadata(key string, value any) *Spectrum {
	c := s.Clone()
	c.meta[key] = value
	return c
}

func toFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	default:
		return 0, false
	}
}
