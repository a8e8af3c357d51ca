package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var matrixJSON bool

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Compute the all-pairs similarity matrix over the library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		entries, grid, err := svc.PairwiseMatrix(cmd.Context())
		if err != nil {
			return err
		}

		if matrixJSON {
			type cellJSON struct {
				Score        float64 `json:"score"`
				MatchedPeaks int     `json:"matched_peaks"`
				Error        string  `json:"error,omitempty"`
			}
			out := struct {
				IDs   []string     `json:"ids"`
				Cells [][]cellJSON `json:"cells"`
			}{}
			for _, e := range entries {
				out.IDs = append(out.IDs, e.ID)
			}
			out.Cells = make([][]cellJSON, grid.Rows())
			for i := 0; i < grid.Rows(); i++ {
				row := make([]cellJSON, grid.Cols())
				for j := 0; j < grid.Cols(); j++ {
					c := grid.At(i, j)
					row[j] = cellJSON{Score: c.Score, MatchedPeaks: c.MatchedPeaks}
					if c.Err != nil {
						row[j].Error = c.Err.Error()
					}
				}
				out.Cells[i] = row
			}
			return json.NewEncoder(os.Stdout).Encode(out)
		}

		for i := 0; i < grid.Rows(); i++ {
			for j := 0; j < grid.Cols(); j++ {
				c := grid.At(i, j)
				if c.Err != nil {
					fmt.Printf("     err")
					continue
				}
				fmt.Printf("  %6.4f", c.Score)
			}
			fmt.Printf("  %s\n", entries[i].Name)
		}
		return nil
	},
}

func init() {
	matrixCmd.Flags().BoolVar(&matrixJSON, "json", false, "Emit the matrix as JSON")
}
