// Package cmd provides CLI command implementations
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/NLeSC/Spec2Vec/pkg/spec2vec"
	"github.com/NLeSC/Spec2Vec/pkg/spec2vec/spectrum"
)

var (
	// Global flags
	dbPath  string
	workers int

	// Scoring flags shared by search and matrix
	measureName    string
	tolerance      float64
	mzPower        float64
	intensityPower float64
)

var rootCmd = &cobra.Command{
	Use:   "spec2vec",
	Short: "Spec2Vec - mass spectral library scoring",
	Long: `Spec2Vec maintains a SQLite library of mass spectra and scores spectra
against it with greedy cosine, modified cosine, or m/z intersection
similarity measures.

Spectra are exchanged as JSON documents:
  {"peaks": [[100.0, 10.0], [200.0, 90.0]], "metadata": {"precursor_mz": 300.0}}`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db",
		getEnvOrDefault("SPEC2VEC_DB_PATH", "spec2vec.sqlite3"),
		"Path to the SQLite library file")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0,
		"Number of scoring goroutines (0 = number of CPUs)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)

	for _, c := range []*cobra.Command{searchCmd, matrixCmd} {
		c.Flags().StringVar(&measureName, "measure", spec2vec.MeasureCosine,
			"Similarity measure: cosine or modified_cosine")
		c.Flags().Float64Var(&tolerance, "tolerance", 0.005,
			"Maximum m/z difference for two peaks to match")
		c.Flags().Float64Var(&mzPower, "mz-power", 0,
			"Exponent applied to peak m/z in pair weights")
		c.Flags().Float64Var(&intensityPower, "intensity-power", 1,
			"Exponent applied to peak intensity in pair weights")
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func newService(extra ...spec2vec.Option) (spec2vec.Service, error) {
	opts := append([]spec2vec.Option{
		spec2vec.WithDBPath(dbPath),
		spec2vec.WithWorkers(workers),
		spec2vec.WithMeasure(measureName),
		spec2vec.WithTolerance(tolerance),
		spec2vec.WithPowers(mzPower, intensityPower),
	}, extra...)
	return spec2vec.NewService(opts...)
}

func readSpectrumFile(path string) (*spectrum.Spectrum, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return spectrum.UnmarshalDocument(data)
}
