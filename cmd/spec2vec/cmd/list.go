package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all spectra in the library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		entries, err := svc.ListSpectra()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Library is empty.")
			return nil
		}
		fmt.Printf("%-36s  %-20s  %10s  %6s  %5s\n", "ID", "NAME", "PRECURSOR", "CHARGE", "PEAKS")
		for _, e := range entries {
			fmt.Printf("%-36s  %-20s  %10.4f  %6d  %5d\n",
				e.ID, e.Name, e.PrecursorMz, e.Charge, e.NumPeaks)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a spectrum from the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.DeleteSpectrum(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}
