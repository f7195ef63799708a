package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/config"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	// Global flags
	configPath string
	verbose    bool
	quiet      bool
	jsonOut    bool
	logLevel   string
	growerFlag string
	limitFlag  config.Size

	// cfg is the configuration after flags were applied.
	cfg = config.Default()

	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Exercise the heapkit allocator and its companion tools",
	Long: `heapctl replays allocation traces against a heapkit heap and reports
block layout and fragmentation. It also bundles the small system tools that
ship with heapkit: a resource limit report, a concurrent word counter and a
line-oriented command shell.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log to stderr at this level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&growerFlag, "grower", "", "Growth primitive: slice or mmap")
	rootCmd.PersistentFlags().Var(&limitFlag, "limit", "Heap size limit (slice) or reservation (mmap), e.g. 64MB")
	rootCmd.Version = version
}

// setup loads the configuration, applies flag overrides and starts logging.
func setup(cmd *cobra.Command, _ []string) error {
	c := config.Default()
	if configPath != "" {
		var err error
		if c, err = config.Load(configPath); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("grower") {
		c.Grower = growerFlag
	}
	if flags.Changed("limit") {
		c.Limit = limitFlag
	}
	if flags.Changed("log-level") {
		c.Log.Enabled = true
		c.Log.Level = logLevel
		c.Log.Dir = logger.StderrDir
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	closer, err := logger.Init(logger.Options{Enabled: cfg.Log.Enabled, Dir: cfg.Log.Dir, Level: level})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logCloser = closer
	logger.Debug("config", "grower", cfg.Grower, "limit", cfg.Limit.Int())
	return nil
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
