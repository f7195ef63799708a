package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/inhies/go-bytesize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/grow"
	"github.com/joshuapare/heapkit/internal/config"
	"github.com/joshuapare/heapkit/internal/logger"
	"github.com/joshuapare/heapkit/internal/trace"
	"github.com/joshuapare/heapkit/internal/writer"
)

var (
	replayCheck    bool
	replayDump     bool
	replaySnapshot string
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayCheck, "check", false, "Verify heap invariants after every event")
	cmd.Flags().BoolVar(&replayDump, "dump", false, "List every block after the replay")
	cmd.Flags().StringVar(&replaySnapshot, "snapshot", "", "Write the final heap region to this file")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace against a fresh heap",
		Long: `The replay command runs an allocation trace against a new heap and
reports the resulting block layout, fragmentation and operation counters.

Trace lines:
  a <id> <size>   allocate
  r <id> <size>   resize
  f <id>          free
  w <id> <byte>   fill the block
  v <id> <byte>   verify the fill survived

Example:
  heapctl replay workload.trace
  heapctl replay workload.trace --grower mmap --limit 16MB --check
  heapctl replay workload.trace --dump --json
  heapctl replay workload.trace --snapshot heap.img`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args)
		},
	}
}

// ReplayReport is the JSON form of a replay.
type ReplayReport struct {
	Trace     string           `json:"trace"`
	Grower    string           `json:"grower"`
	Events    int              `json:"events"`
	Live      int              `json:"live"`
	PeakInUse int              `json:"peak_in_use"`
	Stats     heap.Stats       `json:"stats"`
	Blocks    []heap.BlockInfo `json:"blocks,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	events, err := trace.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	printVerbose("Parsed %d events from %s\n", len(events), path)

	h, err := newHeap(cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	res, replayErr := trace.Replay(cmd.Context(), h, events, trace.Options{
		Check:  replayCheck,
		Logger: logger.L,
	})

	report := ReplayReport{
		Trace:     path,
		Grower:    cfg.Grower,
		Events:    res.Events,
		Live:      res.Live,
		PeakInUse: res.PeakInUse,
		Stats:     res.Stats,
	}
	if replayDump {
		h.Walk(func(b heap.BlockInfo) bool {
			report.Blocks = append(report.Blocks, b)
			return true
		})
	}
	if replayErr != nil {
		report.Error = replayErr.Error()
	}
	if replaySnapshot != "" {
		n, err := writeSnapshot(&writer.FileWriter{Path: replaySnapshot}, h)
		switch {
		case errors.Is(err, writer.ErrEmpty):
			printVerbose("Heap never grew, no snapshot written\n")
		case err != nil:
			return err
		default:
			printVerbose("Wrote %s snapshot to %s\n", size(n), replaySnapshot)
		}
	}

	if jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}
	return replayErr
}

// writeSnapshot hands the heap's region to s, checking that the sink kept all of it.
func writeSnapshot(s writer.Sink, h *heap.Heap) (int, error) {
	region := h.Region()
	n, err := s.WriteSnapshot(region)
	if err != nil {
		return n, fmt.Errorf("snapshot: %w", err)
	}
	if n != len(region) {
		return n, fmt.Errorf("snapshot: kept %d of %d bytes", n, len(region))
	}
	return n, nil
}

// newHeap builds a heap over the grower named in c.
func newHeap(c config.Config) (*heap.Heap, error) {
	opts := &heap.Options{Logger: logger.L}
	switch c.Grower {
	case config.GrowerMmap:
		g, err := grow.NewMmap(c.Limit.Int())
		if err != nil {
			return nil, fmt.Errorf("mmap grower: %w", err)
		}
		return heap.New(g, opts), nil
	default:
		return heap.New(grow.NewSlice(c.Limit.Int()), opts), nil
	}
}

func printReport(r ReplayReport) {
	s := r.Stats
	printInfo("Replayed %d events from %s (%s grower)\n", r.Events, r.Trace, r.Grower)
	printInfo("  live blocks:  %d\n", r.Live)
	printInfo("  peak in use:  %s\n", size(r.PeakInUse))
	printInfo("  heap size:    %s in %d blocks (%d free)\n", size(s.Grown), s.Blocks, s.FreeBlocks)
	printInfo("  in use:       %s\n", size(s.InUseBytes))
	printInfo("  free:         %s (largest %s, fragmentation %.1f%%)\n",
		size(s.FreeBytes), size(s.LargestFree), s.Fragmentation()*100)
	printInfo("  overhead:     %s\n", size(s.Overhead))
	if verbose && !quiet {
		printInfo("\n")
		s.Fprint(os.Stdout)
	}

	if len(r.Blocks) > 0 {
		printInfo("\n%10s %10s  %s\n", "PTR", "SIZE", "STATE")
		for _, b := range r.Blocks {
			state := "used"
			if b.Free {
				state = "free"
			}
			printInfo("%10d %10d  %s\n", b.Ptr, b.Size, state)
		}
	}
	if r.Error != "" {
		printInfo("\nStopped: %s\n", r.Error)
	}
}

func size(n int) string {
	return bytesize.New(float64(n)).String()
}
