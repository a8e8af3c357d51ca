package spec2vec

import (
	"context"
	"fmt"
	"sort"

	"github.com/NLeSC/Spec2Vec/pkg/logger"
	"github.com/NLeSC/Spec2Vec/pkg/models"
	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/similarity"
	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/spectrum"
	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/storage"
)

// libraryService is the default implementation of the Service interface.
type libraryService struct {
	storage   Storage
	log       Logger
	config    *Config
	measure   similarity.Measure
	prefilter *similarity.IntersectMz
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	measure, err := buildMeasure(cfg)
	if err != nil {
		return nil, err
	}
	var prefilter *similarity.IntersectMz
	if cfg.PrefilterThreshold > 0 {
		prefilter, err = similarity.NewIntersectMz(cfg.Tolerance)
		if err != nil {
			return nil, err
		}
	}

	stor := cfg.Storage
	if stor == nil {
		stor, err = storage.NewDBClientWithPath(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &libraryService{
		storage:   stor,
		log:       cfg.Logger,
		config:    cfg,
		measure:   measure,
		prefilter: prefilter,
	}, nil
}

func buildMeasure(cfg *Config) (similarity.Measure, error) {
	switch cfg.Measure {
	case MeasureCosine:
		return similarity.NewCosineGreedy(cfg.Tolerance, cfg.MzPower, cfg.IntensityPower)
	case MeasureModifiedCosine:
		return similarity.NewModifiedCosine(cfg.Tolerance, cfg.MzPower, cfg.IntensityPower)
	default:
		return nil, fmt.Errorf("unknown measure %q", cfg.Measure)
	}
}

// AddSpectrum registers one spectrum in the library.
func (s *libraryService) AddSpectrum(ctx context.Context, name string, spec *spectrum.Spectrum) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := s.storage.RegisterSpectrum(name, spec)
	if err != nil {
		return "", fmt.Errorf("failed to register spectrum: %w", err)
	}
	s.log.Infof("Registered spectrum %s (%d peaks)", id, spec.Len())
	return id, nil
}

// AddSpectra bulk-registers spectra and returns their IDs in input order.
func (s *libraryService) AddSpectra(ctx context.Context, names []string, specs []*spectrum.Spectrum) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, err := s.storage.RegisterSpectra(names, specs)
	if err != nil {
		return nil, fmt.Errorf("failed to register spectra: %w", err)
	}
	s.log.Infof("Registered %d spectra", len(ids))
	return ids, nil
}

// Search scores the query against every library spectrum and returns ranked
// matches. Entries that fail scoring (e.g. missing precursor mass under the
// modified cosine measure) are logged and skipped; one bad entry never
// aborts the search.
func (s *libraryService) Search(ctx context.Context, query *spectrum.Spectrum) ([]models.LibraryMatch, error) {
	entries, specs, err := s.storage.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	s.log.Infof("Searching %d library spectra (%s)", len(specs), s.measure.Name())

	if s.prefilter != nil {
		entries, specs, err = s.applyPrefilter(ctx, query, entries, specs)
		if err != nil {
			return nil, err
		}
		s.log.Debugf("%d spectra passed the intersect pre-filter", len(specs))
	}
	if len(specs) == 0 {
		return nil, nil
	}

	grid, err := similarity.ComputeMatrix(ctx, s.measure,
		[]*spectrum.Spectrum{query}, specs,
		similarity.WithWorkers(s.config.Workers))
	if err != nil {
		return nil, err
	}

	matches := make([]models.LibraryMatch, 0, len(specs))
	for j := range specs {
		cell := grid.At(0, j)
		if cell.Err != nil {
			s.log.Warnf("Skipping %s: %v", entries[j].ID, cell.Err)
			continue
		}
		if cell.MatchedPeaks < s.config.MinMatchedPeaks {
			continue
		}
		matches = append(matches, models.LibraryMatch{
			ID:           entries[j].ID,
			Name:         entries[j].Name,
			PrecursorMz:  entries[j].PrecursorMz,
			Score:        cell.Score,
			MatchedPeaks: cell.MatchedPeaks,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].MatchedPeaks != matches[j].MatchedPeaks {
			return matches[i].MatchedPeaks > matches[j].MatchedPeaks
		}
		return matches[i].ID < matches[j].ID
	})
	if s.config.MaxResults > 0 && len(matches) > s.config.MaxResults {
		matches = matches[:s.config.MaxResults]
	}
	s.log.Infof("Returning %d matches", len(matches))
	return matches, nil
}

func (s *libraryService) applyPrefilter(ctx context.Context, query *spectrum.Spectrum,
	entries []models.LibraryEntry, specs []*spectrum.Spectrum,
) ([]models.LibraryEntry, []*spectrum.Spectrum, error) {
	grid, err := similarity.ComputeMatrix(ctx, s.prefilter,
		[]*spectrum.Spectrum{query}, specs,
		similarity.WithWorkers(s.config.Workers))
	if err != nil {
		return nil, nil, err
	}
	keptEntries := entries[:0]
	keptSpecs := specs[:0]
	for j := range specs {
		if grid.At(0, j).Score >= s.config.PrefilterThreshold {
			keptEntries = append(keptEntries, entries[j])
			keptSpecs = append(keptSpecs, specs[j])
		}
	}
	return keptEntries, keptSpecs, nil
}

// PairwiseMatrix scores every library spectrum against every other,
// exploiting symmetry. Entries align with matrix rows and columns.
func (s *libraryService) PairwiseMatrix(ctx context.Context) ([]models.LibraryEntry, *similarity.ScoreMatrix, error) {
	entries, specs, err := s.storage.LoadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load library: %w", err)
	}
	s.log.Infof("Computing %dx%d pairwise matrix (%s)", len(specs), len(specs), s.measure.Name())

	grid, err := similarity.ComputeMatrix(ctx, s.measure, specs, specs,
		similarity.WithWorkers(s.config.Workers))
	if err != nil {
		return nil, nil, err
	}
	return entries, grid, nil
}

// GetSpectrum retrieves a stored spectrum and its library entry by ID.
func (s *libraryService) GetSpectrum(id string) (*spectrum.Spectrum, *models.LibraryEntry, error) {
	return s.storage.GetSpectrumByID(id)
}

// ListSpectra returns all library entries.
func (s *libraryService) ListSpectra() ([]models.LibraryEntry, error) {
	return s.storage.ListSpectra()
}

// DeleteSpectrum removes a spectrum from the library.
func (s *libraryService) DeleteSpectrum(id string) error {
	return s.storage.DeleteSpectrumByID(id)
}

// Close releases all resources held by the service.
func (s *libraryService) Close() error {
	return s.storage.Close()
}
