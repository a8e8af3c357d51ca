package spec2vec

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/spectrum"
)

func setupTestService(t *testing.T, opts ...Option) Service {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_spec2vec.sqlite3")
	opts = append([]Option{WithDBPath(dbPath), WithWorkers(2)}, opts...)
	svc, err := NewService(opts...)
	if err != nil {
		t.Fatalf("Failed to create test service: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func buildSpec(t *testing.T, mz, intensities []float64, precursor float64) *spectrum.Spectrum {
	t.Helper()
	meta := spectrum.Metadata{}
	if precursor > 0 {
		meta[spectrum.KeyPrecursorMz] = precursor
	}
	s, err := spectrum.New(mz, intensities, meta)
	if err != nil {
		t.Fatalf("building spectrum: %v", err)
	}
	return s
}

func seedLibrary(t *testing.T, svc Service) map[string]string {
	t.Helper()
	ctx := context.Background()
	ids := make(map[string]string)

	specs := map[string]*spectrum.Spectrum{
		"target":  buildSpec(t, []float64{100.0, 200.0, 300.0}, []float64{10, 90, 30}, 400.0),
		"similar": buildSpec(t, []float64{100.001, 199.999, 300.002}, []float64{12, 85, 28}, 400.0),
		"distant": buildSpec(t, []float64{120.0, 220.0, 320.0}, []float64{50, 50, 50}, 450.0),
	}
	for name, s := range specs {
		id, err := svc.AddSpectrum(ctx, name, s)
		if err != nil {
			t.Fatalf("AddSpectrum(%s) failed: %v", name, err)
		}
		ids[name] = id
	}
	return ids
}

func TestServiceSearchRanking(t *testing.T) {
	svc := setupTestService(t, WithTolerance(0.01))
	ids := seedLibrary(t, svc)

	query := buildSpec(t, []float64{100.0, 200.0, 300.0}, []float64{10, 90, 30}, 400.0)
	matches, err := svc.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2 (distant entry shares no peaks)", len(matches))
	}
	if matches[0].ID != ids["target"] {
		t.Errorf("top match = %s (%s), want the identical entry", matches[0].ID, matches[0].Name)
	}
	if math.Abs(matches[0].Score-1.0) > 1e-12 {
		t.Errorf("top score = %v, want 1.0", matches[0].Score)
	}
	if matches[1].ID != ids["similar"] || matches[1].Score >= matches[0].Score {
		t.Errorf("second match = %+v, want the near-identical entry below the top", matches[1])
	}
}

func TestServiceSearchPrefilter(t *testing.T) {
	svc := setupTestService(t, WithTolerance(0.01), WithPrefilter(0.2))
	seedLibrary(t, svc)

	query := buildSpec(t, []float64{100.0, 200.0, 300.0}, []float64{10, 90, 30}, 400.0)
	matches, err := svc.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	// The distant entry has zero peak overlap and must be filtered out; the
	// two overlapping entries survive the pre-filter.
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
}

func TestServiceSearchModifiedCosineSkipsBadEntries(t *testing.T) {
	svc := setupTestService(t,
		WithTolerance(0.01),
		WithMeasure(MeasureModifiedCosine))
	ctx := context.Background()

	good := buildSpec(t, []float64{100.0, 200.0}, []float64{10, 90}, 400.0)
	noPrecursor := buildSpec(t, []float64{100.0, 200.0}, []float64{10, 90}, 0)
	if _, err := svc.AddSpectrum(ctx, "good", good); err != nil {
		t.Fatalf("AddSpectrum() failed: %v", err)
	}
	if _, err := svc.AddSpectrum(ctx, "no-precursor", noPrecursor); err != nil {
		t.Fatalf("AddSpectrum() failed: %v", err)
	}

	query := buildSpec(t, []float64{100.0, 200.0}, []float64{10, 90}, 400.0)
	matches, err := svc.Search(ctx, query)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "good" {
		t.Fatalf("matches = %+v, want only the precursor-carrying entry", matches)
	}
}

func TestServicePairwiseMatrix(t *testing.T) {
	svc := setupTestService(t, WithTolerance(0.01))
	seedLibrary(t, svc)

	entries, grid, err := svc.PairwiseMatrix(context.Background())
	if err != nil {
		t.Fatalf("PairwiseMatrix() failed: %v", err)
	}
	if len(entries) != 3 || grid.Rows() != 3 || grid.Cols() != 3 {
		t.Fatalf("got %d entries and %dx%d matrix, want 3 and 3x3",
			len(entries), grid.Rows(), grid.Cols())
	}
	for i := 0; i < 3; i++ {
		if d := grid.At(i, i); math.Abs(d.Score-1.0) > 1e-12 {
			t.Errorf("diagonal (%d, %d) = %v, want 1.0", i, i, d.Score)
		}
		for j := 0; j < 3; j++ {
			if grid.At(i, j) != grid.At(j, i) {
				t.Errorf("matrix not symmetric at (%d, %d)", i, j)
			}
		}
	}
}

func TestServiceCRUD(t *testing.T) {
	svc := setupTestService(t)
	ids := seedLibrary(t, svc)

	entries, err := svc.ListSpectra()
	if err != nil {
		t.Fatalf("ListSpectra() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	s, entry, err := svc.GetSpectrum(ids["target"])
	if err != nil {
		t.Fatalf("GetSpectrum() failed: %v", err)
	}
	if entry.Name != "target" || s.Len() != 3 {
		t.Errorf("got entry %+v with %d peaks", entry, s.Len())
	}

	if err := svc.DeleteSpectrum(ids["distant"]); err != nil {
		t.Fatalf("DeleteSpectrum() failed: %v", err)
	}
	entries, err = svc.ListSpectra()
	if err != nil {
		t.Fatalf("ListSpectra() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries after delete, want 2", len(entries))
	}
}

func TestServiceRejectsBadConfig(t *testing.T) {
	if _, err := NewService(WithTolerance(-1)); err == nil {
		t.Error("NewService accepted a negative tolerance")
	}
	if _, err := NewService(WithMeasure("bogus")); err == nil {
		t.Error("NewService accepted an unknown measure")
	}
	// Intersection backs the pre-filter only, never the search measure.
	if _, err := NewService(WithMeasure(MeasureIntersect)); err == nil {
		t.Error("NewService accepted the intersect measure for search")
	}
}
