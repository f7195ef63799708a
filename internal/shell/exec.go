package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/joshuapare/heapkit/internal/logger"
)

// command is a parsed program invocation.
type command struct {
	argv []string
	in   string // "< file", empty when absent
	out  string // "> file", empty when absent
}

// parseRedirects strips "< file" and "> file" pairs out of args.
func parseRedirects(args []string) (command, error) {
	var c command
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "<", ">":
			if i+1 >= len(args) {
				return command{}, fmt.Errorf("%w: %s needs a file name", ErrUsage, args[i])
			}
			if args[i] == "<" {
				c.in = args[i+1]
			} else {
				c.out = args[i+1]
			}
			i++
		default:
			c.argv = append(c.argv, args[i])
		}
	}
	if len(c.argv) == 0 {
		return command{}, fmt.Errorf("%w: missing command", ErrUsage)
	}
	return c, nil
}

// launch runs a program in the foreground and waits for it. A non-zero exit
// is reported as an error naming the program.
func (s *Shell) launch(ctx context.Context, args []string) error {
	c, err := parseRedirects(args)
	if err != nil {
		return err
	}
	path, err := s.Resolve(c.argv[0])
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, path, c.argv[1:]...)
	cmd.Args[0] = c.argv[0]
	cmd.Dir = s.Dir
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Out
	cmd.Stderr = s.Err

	if c.in != "" {
		f, err := os.Open(s.abs(c.in))
		if err != nil {
			return err
		}
		defer f.Close()
		cmd.Stdin = f
	}
	if c.out != "" {
		f, err := os.OpenFile(s.abs(c.out), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		cmd.Stdout = f
	}

	logger.Debug("exec", "path", path, "args", c.argv[1:], "dir", s.Dir)
	err = cmd.Run()

	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logger.Debug("exec failed", "path", path, "code", exitErr.ExitCode())
	}
	return fmt.Errorf("%s: %w", c.argv[0], err)
}
