package models

import "time"

// LibraryEntry describes one reference spectrum stored in the library,
// without its peak data.
type LibraryEntry struct {
	ID          string    // Database ID (UUID)
	Name        string    // Compound name
	PrecursorMz float64   // Precursor m/z (0 if unknown)
	Charge      int       // Precursor charge state (0 if unknown)
	NumPeaks    int       // Number of peaks in the stored spectrum
	CreatedAt   time.Time // When the entry was registered
}

// LibraryMatch is one ranked hit from a library search.
type LibraryMatch struct {
	ID           string  // Database ID of the matched entry (UUID)
	Name         string  // Compound name
	PrecursorMz  float64 // Precursor m/z of the matched entry
	Score        float64 // Similarity score in [0, 1]
	MatchedPeaks int     // Number of matched peak pairs
}
