package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NLeSC/Spec2Vec/pkg/spec2vec"
)

var (
	searchTop       int
	searchPrefilter float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query.json>",
	Short: "Score a query spectrum against the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := readSpectrumFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		svc, err := newService(
			spec2vec.WithMaxResults(searchTop),
			spec2vec.WithPrefilter(searchPrefilter),
		)
		if err != nil {
			return err
		}
		defer svc.Close()

		matches, err := svc.Search(cmd.Context(), query)
		if err != nil {
			return err
		}

		if searchJSON {
			return json.NewEncoder(os.Stdout).Encode(matches)
		}
		if len(matches) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		fmt.Printf("%-36s  %-20s  %8s  %7s\n", "ID", "NAME", "SCORE", "MATCHED")
		for _, m := range matches {
			fmt.Printf("%-36s  %-20s  %8.4f  %7d\n", m.ID, m.Name, m.Score, m.MatchedPeaks)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchTop, "top", 25, "Maximum number of matches to return")
	searchCmd.Flags().Float64Var(&searchPrefilter, "prefilter", 0,
		"Minimum m/z intersection score required before cosine scoring (0 disables)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Emit matches as JSON")
}
