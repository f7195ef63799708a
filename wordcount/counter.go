// Package wordcount counts word frequencies across one or more inputs.
//
// A Counter is safe for concurrent use; CountFiles reads each file on its own
// goroutine and merges into one Counter.
package wordcount

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"sync"
)

// Entry is one word and its count.
type Entry struct {
	Word  string
	Count int
}

// Counter is a thread-safe insert-or-increment word table.
type Counter struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add increments word's count, inserting it at 1 when absent, and returns the
// new count.
func (c *Counter) Add(word string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[word]++
	return c.counts[word]
}

// Get returns word's count, 0 when absent.
func (c *Counter) Get(word string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[word]
}

// Len returns the number of distinct words.
func (c *Counter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.counts)
}

// Sorted returns every entry ordered by count, then by word, both ascending.
func (c *Counter) Sorted() []Entry {
	c.mu.Lock()
	out := make([]Entry, 0, len(c.counts))
	for w, n := range c.counts {
		out = append(out, Entry{Word: w, Count: n})
	}
	c.mu.Unlock()

	slices.SortFunc(out, func(a, b Entry) int {
		if n := cmp.Compare(a.Count, b.Count); n != 0 {
			return n
		}
		return cmp.Compare(a.Word, b.Word)
	})
	return out
}

// Fprint writes the sorted table as "<count>\t<word>" lines.
func (c *Counter) Fprint(w io.Writer) error {
	for _, e := range c.Sorted() {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", e.Count, e.Word); err != nil {
			return err
		}
	}
	return nil
}
