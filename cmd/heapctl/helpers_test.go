package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/config"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// writeFile creates a file with the given content in a temp dir.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// resetGlobals restores flag variables and configuration after a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		configPath, verbose, quiet, jsonOut = "", false, false, false
		logLevel, growerFlag, limitFlag = "", "", 0
		replayCheck, replayDump, replaySnapshot = false, false, ""
		wordsEncoding = "utf-8"
		cfg = config.Default()
	})
}

// testCmd returns a command whose context is the test's.
func testCmd(t *testing.T) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(t.Context())
	return cmd
}
