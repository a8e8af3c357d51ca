package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/spectrum"
)

func mustSpectrum(t *testing.T, mz, intensities []float64, meta spectrum.Metadata) *spectrum.Spectrum {
	t.Helper()
	s, err := spectrum.New(mz, intensities, meta)
	if err != nil {
		t.Fatalf("building spectrum: %v", err)
	}
	return s
}

func TestCosineNearProportionalPair(t *testing.T) {
	a := mustSpectrum(t, []float64{100.0, 200.0}, []float64{10, 90}, nil)
	b := mustSpectrum(t, []float64{100.001, 199.998}, []float64{5, 95}, nil)

	got, err := ScorePair(a, b, 0.01, DefaultMzPower, DefaultIntensityPower)
	if err != nil {
		t.Fatalf("ScorePair() failed: %v", err)
	}
	if got.MatchedPeaks != 2 {
		t.Fatalf("MatchedPeaks = %d, want 2", got.MatchedPeaks)
	}

	// Both peaks pair up, so the score is the plain cosine of the two
	// intensity vectors.
	want := (10*5 + 90*95) / math.Sqrt((10*10+90*90)*(5*5+95*95))
	if math.Abs(got.Score-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got.Score, want)
	}
	if got.Score < 0.99 {
		t.Errorf("Score = %v, expected near 1 for nearly proportional intensities", got.Score)
	}
}

func TestCosineOutsideTolerance(t *testing.T) {
	a := mustSpectrum(t, []float64{150.0}, []float64{50}, nil)
	b := mustSpectrum(t, []float64{160.0}, []float64{50}, nil)

	got, err := ScorePair(a, b, 0.01, DefaultMzPower, DefaultIntensityPower)
	if err != nil {
		t.Fatalf("ScorePair() failed: %v", err)
	}
	if got.MatchedPeaks != 0 || got.Score != 0 {
		t.Errorf("got (%v, %d), want (0, 0)", got.Score, got.MatchedPeaks)
	}
}

func TestCosineSelfSimilarity(t *testing.T) {
	s := mustSpectrum(t,
		[]float64{100.0, 100.005, 150.3, 200.7, 300.1, 450.9},
		[]float64{5, 5, 20, 80, 1, 33}, nil)

	for _, tol := range []float64{0, 0.01, 0.5, 10} {
		got, err := ScorePair(s, s, tol, DefaultMzPower, DefaultIntensityPower)
		if err != nil {
			t.Fatalf("ScorePair() failed at tol=%v: %v", tol, err)
		}
		if math.Abs(got.Score-1.0) > 1e-12 {
			t.Errorf("tol=%v: self score = %v, want 1.0", tol, got.Score)
		}
		if got.MatchedPeaks != s.Len() {
			t.Errorf("tol=%v: MatchedPeaks = %d, want %d", tol, got.MatchedPeaks, s.Len())
		}
	}
}

func TestCosineSymmetry(t *testing.T) {
	a := mustSpectrum(t,
		[]float64{100.0, 110.2, 110.21, 200.0, 310.5},
		[]float64{10, 40, 40, 90, 3}, nil)
	b := mustSpectrum(t,
		[]float64{100.005, 110.19, 200.003, 310.2},
		[]float64{12, 35, 88, 7}, nil)

	for _, tol := range []float64{0, 0.01, 0.1, 1.0} {
		ab, err := ScorePair(a, b, tol, DefaultMzPower, DefaultIntensityPower)
		if err != nil {
			t.Fatalf("ScorePair(a, b) failed: %v", err)
		}
		ba, err := ScorePair(b, a, tol, DefaultMzPower, DefaultIntensityPower)
		if err != nil {
			t.Fatalf("ScorePair(b, a) failed: %v", err)
		}
		if math.Abs(ab.Score-ba.Score) > 1e-12 {
			t.Errorf("tol=%v: score %v vs %v under operand swap", tol, ab.Score, ba.Score)
		}
		if ab.MatchedPeaks != ba.MatchedPeaks {
			t.Errorf("tol=%v: matched %d vs %d under operand swap", tol, ab.MatchedPeaks, ba.MatchedPeaks)
		}
	}
}

func TestCosineDegenerateInputs(t *testing.T) {
	empty := mustSpectrum(t, nil, nil, nil)
	zero := mustSpectrum(t, []float64{100, 200}, []float64{0, 0}, nil)
	full := mustSpectrum(t, []float64{100, 200}, []float64{10, 20}, nil)

	tests := []struct {
		name string
		a, b *spectrum.Spectrum
	}{
		{"empty vs full", empty, full},
		{"full vs empty", full, empty},
		{"empty vs empty", empty, empty},
		{"zero intensities", zero, full},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScorePair(tt.a, tt.b, 0.1, DefaultMzPower, DefaultIntensityPower)
			if err != nil {
				t.Fatalf("ScorePair() failed: %v", err)
			}
			if got.Score != 0 || got.MatchedPeaks != 0 {
				t.Errorf("got (%v, %d), want (0, 0)", got.Score, got.MatchedPeaks)
			}
		})
	}
}

func TestCosineMatchedPeaksBounded(t *testing.T) {
	a := mustSpectrum(t, []float64{100, 100.2, 100.4, 100.6}, []float64{1, 2, 3, 4}, nil)
	b := mustSpectrum(t, []float64{100.1, 100.3}, []float64{5, 6}, nil)

	prev := -1
	for _, tol := range []float64{0, 0.05, 0.15, 0.3, 1, 10} {
		got, err := ScorePair(a, b, tol, DefaultMzPower, DefaultIntensityPower)
		if err != nil {
			t.Fatalf("ScorePair() failed: %v", err)
		}
		if got.MatchedPeaks < 0 || got.MatchedPeaks > 2 {
			t.Errorf("tol=%v: MatchedPeaks = %d outside [0, 2]", tol, got.MatchedPeaks)
		}
		if got.MatchedPeaks < prev {
			t.Errorf("tol=%v: MatchedPeaks decreased from %d to %d", tol, prev, got.MatchedPeaks)
		}
		prev = got.MatchedPeaks
	}
}

func TestCosineMatchedPeaksMonotonicInTolerance(t *testing.T) {
	// Widening the window can only add candidates, so the greedy matched
	// count never drops as the tolerance grows.
	pairs := []struct {
		name string
		a, b *spectrum.Spectrum
	}{
		{
			"near proportional",
			mustSpectrum(t, []float64{100.0, 200.0}, []float64{10, 90}, nil),
			mustSpectrum(t, []float64{100.001, 199.998}, []float64{5, 95}, nil),
		},
		{
			"staggered peaks",
			mustSpectrum(t, []float64{100.0, 110.2, 110.21, 200.0, 310.5}, []float64{10, 40, 40, 90, 3}, nil),
			mustSpectrum(t, []float64{100.005, 110.19, 200.003, 310.2}, []float64{12, 35, 88, 7}, nil),
		},
		{
			"disjoint until wide",
			mustSpectrum(t, []float64{150.0}, []float64{50}, nil),
			mustSpectrum(t, []float64{160.0}, []float64{50}, nil),
		},
	}
	tols := []float64{0, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 20}

	for _, p := range pairs {
		t.Run(p.name, func(t *testing.T) {
			prev := -1
			for _, tol := range tols {
				got, err := ScorePair(p.a, p.b, tol, DefaultMzPower, DefaultIntensityPower)
				if err != nil {
					t.Fatalf("ScorePair() failed at tol=%v: %v", tol, err)
				}
				if got.MatchedPeaks < prev {
					t.Errorf("tol=%v: MatchedPeaks decreased from %d to %d", tol, prev, got.MatchedPeaks)
				}
				prev = got.MatchedPeaks
			}
		})
	}
}

func TestCosineNoIndexReuse(t *testing.T) {
	// Two close peaks in A compete for the single peak in B; only one may win.
	a := mustSpectrum(t, []float64{100.0, 100.002}, []float64{10, 20}, nil)
	b := mustSpectrum(t, []float64{100.001}, []float64{15}, nil)

	got, err := ScorePair(a, b, 0.01, DefaultMzPower, DefaultIntensityPower)
	if err != nil {
		t.Fatalf("ScorePair() failed: %v", err)
	}
	if got.MatchedPeaks != 1 {
		t.Errorf("MatchedPeaks = %d, want 1", got.MatchedPeaks)
	}
	// The greedy rule takes the higher-intensity pair: 20 * 15.
	want := clamp01((20.0 * 15.0) / math.Sqrt((10*10+20*20)*(15*15)))
	if math.Abs(got.Score-want) > 1e-12 {
		t.Errorf("Score = %v, want %v", got.Score, want)
	}
}

func TestCosineWeightingExponents(t *testing.T) {
	a := mustSpectrum(t, []float64{100.0}, []float64{4}, nil)
	b := mustSpectrum(t, []float64{100.0}, []float64{9}, nil)

	// A single exactly matching peak normalizes to 1 for any exponents.
	for _, powers := range [][2]float64{{0, 1}, {0, 0.5}, {1, 1}, {0.5, 2}} {
		got, err := ScorePair(a, b, 0.01, powers[0], powers[1])
		if err != nil {
			t.Fatalf("ScorePair() failed for powers %v: %v", powers, err)
		}
		if math.Abs(got.Score-1.0) > 1e-12 || got.MatchedPeaks != 1 {
			t.Errorf("powers %v: got (%v, %d), want (1, 1)", powers, got.Score, got.MatchedPeaks)
		}
	}
}

func TestCosineInvalidTolerance(t *testing.T) {
	if _, err := NewCosineGreedy(-0.01, 0, 1); !errors.Is(err, ErrInvalidTolerance) {
		t.Errorf("NewCosineGreedy(-0.01) error = %v, want ErrInvalidTolerance", err)
	}
	if _, err := NewModifiedCosine(-1, 0, 1); !errors.Is(err, ErrInvalidTolerance) {
		t.Errorf("NewModifiedCosine(-1) error = %v, want ErrInvalidTolerance", err)
	}
	if _, err := NewIntersectMz(-1); !errors.Is(err, ErrInvalidTolerance) {
		t.Errorf("NewIntersectMz(-1) error = %v, want ErrInvalidTolerance", err)
	}
}

func TestCosineDeterministicTieBreak(t *testing.T) {
	// All four candidate pairs carry identical weight; acceptance must be
	// identical on every run.
	a := mustSpectrum(t, []float64{100.000, 100.002}, []float64{10, 10}, nil)
	b := mustSpectrum(t, []float64{100.001, 100.003}, []float64{10, 10}, nil)

	first, err := ScorePair(a, b, 0.01, DefaultMzPower, DefaultIntensityPower)
	if err != nil {
		t.Fatalf("ScorePair() failed: %v", err)
	}
	for run := 0; run < 50; run++ {
		got, err := ScorePair(a, b, 0.01, DefaultMzPower, DefaultIntensityPower)
		if err != nil {
			t.Fatalf("ScorePair() failed: %v", err)
		}
		if got != first {
			t.Fatalf("run %d: result %+v differs from first run %+v", run, got, first)
		}
	}
	if first.MatchedPeaks != 2 {
		t.Errorf("MatchedPeaks = %d, want 2", first.MatchedPeaks)
	}
}
