package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/heapkit/wordcount"
)

var wordsEncoding string

func init() {
	cmd := &cobra.Command{
		Use:   "words [file...]",
		Short: "Count word frequencies",
		Long: `The words command counts how often each word occurs in the given files,
reading each file on its own goroutine, or in standard input when no file is
given. Words are runs of letters, compared case-insensitively, at least two
letters long. Output is sorted by count, then alphabetically.

Example:
  heapctl words notes.txt README
  heapctl words --encoding windows-1252 legacy.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWords(cmd, args)
		},
	}
	cmd.Flags().StringVar(&wordsEncoding, "encoding", "utf-8", "Input encoding: utf-8, windows-1252 or latin1")
	rootCmd.AddCommand(cmd)
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}

func runWords(cmd *cobra.Command, args []string) error {
	enc, err := lookupEncoding(wordsEncoding)
	if err != nil {
		return err
	}

	c := wordcount.NewCounter()
	if len(args) == 0 {
		err = wordcount.CountReader(c, os.Stdin, enc)
	} else {
		printVerbose("Counting %d files\n", len(args))
		err = wordcount.CountFiles(cmd.Context(), c, args, enc)
	}
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(c.Sorted())
	}
	if quiet {
		return nil
	}
	return c.Fprint(os.Stdout)
}
