// Package trace reads allocation traces and replays them against a heap.
//
// A trace is a text file with one operation per line. Fields are split the
// way a shell would split them, and '#' starts a comment:
//
//	a <id> <size>   allocate size bytes and name the block id
//	r <id> <size>   resize block id (an unknown id allocates)
//	f <id>          free block id
//	w <id> <byte>   fill the requested bytes of id with byte
//	v <id> <byte>   verify the filled prefix of id still holds byte
//
// Sizes accept plain integers and unit suffixes ("4KB"); bytes accept any
// base strconv understands ("0x41", "65").
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/shlex"

	"github.com/joshuapare/heapkit/internal/config"
)

// Op identifies a trace operation.
type Op byte

// Trace operations.
const (
	OpAlloc   Op = 'a'
	OpRealloc Op = 'r'
	OpFree    Op = 'f'
	OpWrite   Op = 'w'
	OpVerify  Op = 'v'
)

func (o Op) String() string {
	switch o {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	case OpWrite:
		return "write"
	case OpVerify:
		return "verify"
	}
	return fmt.Sprintf("Op(%q)", byte(o))
}

// Event is one parsed trace line.
type Event struct {
	Line int
	Op   Op
	ID   string
	Size int  // OpAlloc, OpRealloc
	Byte byte // OpWrite, OpVerify
}

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("trace: syntax error")

// Parse reads a whole trace.
func Parse(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		ev, ok, err := ParseLine(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			continue
		}
		ev.Line = line
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	return events, nil
}

// ParseLine parses a single line. ok is false for blank and comment lines.
func ParseLine(s string) (ev Event, ok bool, err error) {
	fields, err := shlex.Split(s)
	if err != nil {
		return Event{}, false, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	if len(fields) == 0 {
		return Event{}, false, nil
	}
	if len(fields[0]) != 1 {
		return Event{}, false, fmt.Errorf("%w: unknown operation %q", ErrSyntax, fields[0])
	}

	ev.Op = Op(fields[0][0])
	want := 3
	if ev.Op == OpFree {
		want = 2
	}
	switch ev.Op {
	case OpAlloc, OpRealloc, OpFree, OpWrite, OpVerify:
	default:
		return Event{}, false, fmt.Errorf("%w: unknown operation %q", ErrSyntax, fields[0])
	}
	if len(fields) != want {
		return Event{}, false, fmt.Errorf("%w: %s takes %d fields, got %d", ErrSyntax, ev.Op, want, len(fields))
	}
	ev.ID = fields[1]

	switch ev.Op {
	case OpAlloc, OpRealloc:
		size, err := config.ParseSize(fields[2])
		if err != nil {
			return Event{}, false, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
		if uint64(size) > uint64(maxInt) {
			return Event{}, false, fmt.Errorf("%w: size %s too large", ErrSyntax, fields[2])
		}
		ev.Size = size.Int()
	case OpWrite, OpVerify:
		b, err := strconv.ParseUint(fields[2], 0, 8)
		if err != nil {
			return Event{}, false, fmt.Errorf("%w: byte %q: %w", ErrSyntax, fields[2], err)
		}
		ev.Byte = byte(b)
	}
	return ev, true, nil
}

const maxInt = int(^uint(0) >> 1)
