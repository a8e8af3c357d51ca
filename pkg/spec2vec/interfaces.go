// Package spec2vec is the library facade: a spectral reference library with
// similarity search on top of the scoring measures in
// pkg/spec2vec/similarity.
package spec2vec

import (
	"context"

	"github.com/NLeSC/Spec2Vec/pkg/models"
	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/similarity"
	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/spectrum"
)

type Service interface {
	AddSpectrum(ctx context.Context, name string, s *spectrum.Spectrum) (string, error)
	AddSpectra(ctx context.Context, names []string, specs []*spectrum.Spectrum) ([]string, error)
	Search(ctx context.Context, query *spectrum.Spectrum) ([]models.LibraryMatch, error)
	PairwiseMatrix(ctx context.Context) ([]models.LibraryEntry, *similarity.ScoreMatrix, error)
	GetSpectrum(id string) (*spectrum.Spectrum, *models.LibraryEntry, error)
	ListSpectra() ([]models.LibraryEntry, error)
	DeleteSpectrum(id string) error
	Close() error
}

type Storage interface {
	RegisterSpectrum(name string, s *spectrum.Spectrum) (string, error)
	RegisterSpectra(names []string, specs []*spectrum.Spectrum) ([]string, error)
	GetSpectrumByID(id string) (*spectrum.Spectrum, *models.LibraryEntry, error)
	ListSpectra() ([]models.LibraryEntry, error)
	LoadAll() ([]models.LibraryEntry, []*spectrum.Spectrum, error)
	DeleteSpectrumByID(id string) error
	Count() (int64, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
