package similarity

import (
	"context"
	"runtime"
	"sync"

	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/spectrum"
)

// Cell is one entry of a score matrix. A per-pair domain error (e.g. a
// missing precursor mass under modified cosine) is recorded in Err and never
// aborts the batch; retrying would be pointless since scoring is
// deterministic in its inputs.
type Cell struct {
	ScoreResult
	Err error
}

// ScoreMatrix is a dense queries x references grid of scoring outcomes.
type ScoreMatrix struct {
	rows, cols int
	cells      []Cell
}

// Rows returns the number of query rows.
func (m *ScoreMatrix) Rows() int { return m.rows }

// Cols returns the number of reference columns.
func (m *ScoreMatrix) Cols() int { return m.cols }

// At returns the cell for query i against reference j.
func (m *ScoreMatrix) At(i, j int) Cell { return m.cells[i*m.cols+j] }

// MatrixOption configures ComputeMatrix.
type MatrixOption func(*matrixConfig)

type matrixConfig struct {
	workers   int
	symmetric bool
}

// WithWorkers sets the number of scoring goroutines. Values below 1 fall
// back to runtime.NumCPU().
func WithWorkers(n int) MatrixOption {
	return func(c *matrixConfig) { c.workers = n }
}

// WithSymmetric declares queries and references to be the same collection so
// only the upper triangle is computed and mirrored. The resulting values are
// identical to a full computation; this is purely a work-halving hint.
func WithSymmetric() MatrixOption {
	return func(c *matrixConfig) { c.symmetric = true }
}

// ComputeMatrix scores every query against every reference with the given
// measure. Rows are scored concurrently, each worker owning its own scratch
// buffers, since any two cells are independent. Cancellation is checked
// between pairs; a cancelled run returns ctx.Err() and no matrix.
func ComputeMatrix(ctx context.Context, m Measure, queries, references []*spectrum.Spectrum, opts ...MatrixOption) (*ScoreMatrix, error) {
	cfg := matrixConfig{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.NumCPU()
	}
	symmetric := (cfg.symmetric || sameSpectra(queries, references)) && len(queries) == len(references)

	out := &ScoreMatrix{
		rows:  len(queries),
		cols:  len(references),
		cells: make([]Cell, len(queries)*len(references)),
	}
	if out.rows == 0 || out.cols == 0 {
		return out, nil
	}

	rows := make(chan int, cfg.workers*2)

	var wg sync.WaitGroup
	wg.Add(cfg.workers)
	for w := 0; w < cfg.workers; w++ {
		go func() {
			defer wg.Done()
			mt := getMatcher()
			defer putMatcher(mt)
			for {
				select {
				case <-ctx.Done():
					return
				case i, ok := <-rows:
					if !ok {
						return
					}
					start := 0
					if symmetric {
						start = i
					}
					for j := start; j < out.cols; j++ {
						if ctx.Err() != nil {
							return
						}
						out.cells[i*out.cols+j] = scoreCell(m, mt, queries[i], references[j])
					}
				}
			}
		}()
	}

feed:
	for i := 0; i < out.rows; i++ {
		select {
		case <-ctx.Done():
			break feed
		case rows <- i:
		}
	}
	close(rows)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if symmetric {
		// Mirror the upper triangle. Each cell was written by exactly one
		// worker, so no synchronization is needed here.
		for i := 0; i < out.rows; i++ {
			for j := i + 1; j < out.cols; j++ {
				out.cells[j*out.cols+i] = out.cells[i*out.cols+j]
			}
		}
	}
	return out, nil
}

func scoreCell(m Measure, mt *matcher, a, b *spectrum.Spectrum) Cell {
	if p, ok := m.(pairer); ok {
		res, err := p.pairWith(mt, a, b)
		return Cell{ScoreResult: res, Err: err}
	}
	res, err := m.Pair(a, b)
	return Cell{ScoreResult: res, Err: err}
}

// sameSpectra reports whether the two slices are the identical collection, in
// which case the matrix is symmetric by construction.
func sameSpectra(a, b []*spectrum.Spectrum) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
