package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/shell"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "shell",
		Short: "Run the line-oriented command shell",
		Long: `The shell command reads command lines from standard input and runs
them. Builtins are ?, exit, cd and pwd; anything else is looked up on PATH.
"< file" and "> file" redirect a program's input and output. A prompt is
printed only when standard input is a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := shell.New(os.Stdin, os.Stdout, os.Stderr)
			sh.Stdin = os.Stdin
			sh.Prompt = shell.IsTerminal(os.Stdin)
			return sh.Run(cmd.Context())
		},
	})
}
