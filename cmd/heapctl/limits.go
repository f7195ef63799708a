package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/limits"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "limits",
		Short: "Print the process resource limits",
		Long: `The limits command prints the soft resource limits of the current
process: stack size, process count, open files and address space.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLimits()
		},
	})
}

func runLimits() error {
	lim, err := limits.Read()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(lim)
	}
	if quiet {
		return nil
	}
	return lim.Fprint(os.Stdout)
}
