package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addName string

var addCmd = &cobra.Command{
	Use:   "add <spectrum.json> [more.json ...]",
	Short: "Register spectrum documents in the library",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		for _, path := range args {
			s, err := readSpectrumFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			id, err := svc.AddSpectrum(cmd.Context(), addName, s)
			if err != nil {
				return fmt.Errorf("adding %s: %w", path, err)
			}
			fmt.Printf("%s\t%s\n", id, path)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addName, "name", "",
		"Compound name (defaults to the document's compound_name metadata)")
}
