package spectrum

import (
	"encoding/json"
	"fmt"
)

// Document is the JSON interchange form of a spectrum used by the CLI and
// HTTP server. Peaks are [mz, intensity] pairs sorted by ascending m/z.
type Document struct {
	Peaks    [][2]float64 `json:"peaks"`
	Metadata Metadata     `json:"metadata,omitempty"`
}

// UnmarshalDocument parses a JSON spectrum document and validates it through
// the regular constructor.
func UnmarshalDocument(data []byte) (*Spectrum, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing spectrum document: %w", err)
	}
	return doc.Spectrum()
}

// Spectrum converts the document into a validated Spectrum.
func (d *Document) Spectrum() (*Spectrum, error) {
	mz := make([]float64, len(d.Peaks))
	in := make([]float64, len(d.Peaks))
	for i, p := range d.Peaks {
		mz[i] = p[0]
		in[i] = p[1]
	}
	return New(mz, in, d.Metadata)
}

// MarshalDocument renders a spectrum as a JSON document.
func MarshalDocument(s *Spectrum) ([]byte, error) {
	doc := Document{
		Peaks:    make([][2]float64, s.Len()),
		Metadata: s.meta,
	}
	for i := range s.mz {
		doc.Peaks[i] = [2]float64{s.mz[i], s.intensities[i]}
	}
	return json.Marshal(&doc)
}
