// Package shell implements a small line-oriented command shell: each input
// line is split like a POSIX shell would split it, then either handled by a
// builtin or run as a program found on the search path.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
)

// ErrUsage is wrapped by errors caused by a malformed command line.
var ErrUsage = errors.New("shell: usage")

// Shell holds the state of one session.
type Shell struct {
	In     io.Reader // command lines
	Out    io.Writer // prompts, builtin output and child stdout
	Err    io.Writer // diagnostics and child stderr
	Stdin  io.Reader // child stdin when not redirected; nil reads nothing
	Prompt bool      // print "<n>: " before each line

	Dir  string // working directory for builtins and children
	Path string // search path, in $PATH syntax

	builtins []builtin
}

type builtin struct {
	name string
	doc  string
	run  func(s *Shell, args []string) (exit bool, err error)
}

// New returns a shell reading commands from in. The working directory and
// search path start from the process environment.
func New(in io.Reader, out, errw io.Writer) *Shell {
	dir, err := os.Getwd()
	if err != nil {
		dir = "/"
	}
	s := &Shell{
		In:   in,
		Out:  out,
		Err:  errw,
		Dir:  dir,
		Path: os.Getenv("PATH"),
	}
	s.builtins = []builtin{
		{"?", "show this help menu", (*Shell).help},
		{"exit", "exit the command shell", (*Shell).exit},
		{"cd", "change the working directory", (*Shell).cd},
		{"pwd", "print the working directory", (*Shell).pwd},
	}
	return s
}

// Run reads and executes lines until EOF, the exit builtin, or ctx is done.
// Failing commands are reported on Err and do not stop the loop.
func (s *Shell) Run(ctx context.Context) error {
	sc := bufio.NewScanner(s.In)
	line := 0
	s.prompt(line)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		exit, err := s.Exec(ctx, sc.Text())
		if err != nil {
			fmt.Fprintf(s.Err, "%v\n", err)
		}
		if exit {
			return nil
		}
		line++
		s.prompt(line)
	}
	return sc.Err()
}

func (s *Shell) prompt(n int) {
	if s.Prompt {
		fmt.Fprintf(s.Out, "%d: ", n)
	}
}

// Exec runs one command line. exit reports whether the line asked the shell
// to stop.
func (s *Shell) Exec(ctx context.Context, line string) (exit bool, err error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if len(args) == 0 {
		return false, nil
	}
	if b := s.lookup(args[0]); b != nil {
		return b.run(s, args)
	}
	return false, s.launch(ctx, args)
}

func (s *Shell) lookup(name string) *builtin {
	for i := range s.builtins {
		if s.builtins[i].name == name {
			return &s.builtins[i]
		}
	}
	return nil
}

func (s *Shell) help(_ []string) (bool, error) {
	for _, b := range s.builtins {
		fmt.Fprintf(s.Out, "%s - %s\n", b.name, b.doc)
	}
	return false, nil
}

func (s *Shell) exit(_ []string) (bool, error) {
	return true, nil
}

func (s *Shell) cd(args []string) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("%w: cd takes one directory", ErrUsage)
	}
	dir := s.abs(args[1])
	fi, err := os.Stat(dir)
	if err != nil {
		return false, fmt.Errorf("cd: %w", err)
	}
	if !fi.IsDir() {
		return false, fmt.Errorf("cd: %s: not a directory", args[1])
	}
	s.Dir = dir
	return false, nil
}

func (s *Shell) pwd(_ []string) (bool, error) {
	fmt.Fprintln(s.Out, s.Dir)
	return false, nil
}

func (s *Shell) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.Dir, path)
}

// Resolve finds the program for name: names containing a slash are taken
// relative to Dir, anything else is searched for along Path.
func (s *Shell) Resolve(name string) (string, error) {
	if strings.Contains(name, "/") {
		path := s.abs(name)
		if !isExecutable(path) {
			return "", fmt.Errorf("%s: not an executable file", name)
		}
		return path, nil
	}
	for _, dir := range filepath.SplitList(s.Path) {
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(s.abs(dir), name)
		if isExecutable(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s: command not found", name)
}

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && fi.Mode().Perm()&0o111 != 0
}
