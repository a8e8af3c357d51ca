package main

import (
	"fmt"

	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/spectrum"
)

// MaxPeaksPerSpectrum caps inline spectra to keep request bodies sane.
const MaxPeaksPerSpectrum = 100000

// AddSpectrumRequest is the request body for POST /api/spectra.
type AddSpectrumRequest struct {
	Name     string            `json:"name,omitempty"`
	Spectrum spectrum.Document `json:"spectrum"`
}

func (r *AddSpectrumRequest) Validate() error {
	if len(r.Spectrum.Peaks) > MaxPeaksPerSpectrum {
		return fmt.Errorf("too many peaks: %d (maximum: %d)", len(r.Spectrum.Peaks), MaxPeaksPerSpectrum)
	}
	return nil
}

// AddSpectrumResponse is the response for successful registration.
type AddSpectrumResponse struct {
	Message  string `json:"message"`
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	NumPeaks int    `json:"num_peaks"`
}

// SearchRequest is the request body for POST /api/search.
type SearchRequest struct {
	Spectrum  spectrum.Document `json:"spectrum"`
	Top       int               `json:"top,omitempty"`
	Prefilter float64           `json:"prefilter,omitempty"`
}

func (r *SearchRequest) Validate() error {
	if len(r.Spectrum.Peaks) == 0 {
		return fmt.Errorf("query spectrum has no peaks")
	}
	if len(r.Spectrum.Peaks) > MaxPeaksPerSpectrum {
		return fmt.Errorf("too many peaks: %d (maximum: %d)", len(r.Spectrum.Peaks), MaxPeaksPerSpectrum)
	}
	return nil
}

// MatchDTO represents a single library match in API responses.
type MatchDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name,omitempty"`
	PrecursorMz  float64 `json:"precursor_mz,omitempty"`
	Score        float64 `json:"score"`
	MatchedPeaks int     `json:"matched_peaks"`
}

// SearchResponse is the response for POST /api/search.
type SearchResponse struct {
	Matches []MatchDTO `json:"matches"`
	Count   int        `json:"count"`
}

// ScoreRequest is the request body for POST /api/score: score two inline
// spectra without touching the library.
type ScoreRequest struct {
	A              spectrum.Document `json:"a"`
	B              spectrum.Document `json:"b"`
	Measure        string            `json:"measure,omitempty"`
	Tolerance      *float64          `json:"tolerance,omitempty"`
	MzPower        float64           `json:"mz_power,omitempty"`
	IntensityPower *float64          `json:"intensity_power,omitempty"`
}

// ScoreResponse is the response for POST /api/score.
type ScoreResponse struct {
	Measure      string  `json:"measure"`
	Score        float64 `json:"score"`
	MatchedPeaks int     `json:"matched_peaks"`
}

// EntryDTO represents a library entry in API responses.
type EntryDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	PrecursorMz float64 `json:"precursor_mz,omitempty"`
	Charge      int     `json:"charge,omitempty"`
	NumPeaks    int     `json:"num_peaks"`
}

// ListSpectraResponse is the response for GET /api/spectra.
type ListSpectraResponse struct {
	Spectra []EntryDTO `json:"spectra"`
	Count   int        `json:"count"`
}

// DeleteSpectrumResponse is the response for DELETE /api/spectra/{id}.
type DeleteSpectrumResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// MetricsResponse provides server health and library metrics.
type MetricsResponse struct {
	Status        string `json:"status"`
	DatabasePath  string `json:"database_path"`
	SpectrumCount int    `json:"spectrum_count"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
