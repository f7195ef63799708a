package wordcount

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// MinWordLen is the shortest letter run counted as a word.
const MinWordLen = 2

// CountReader adds every word read from r to c. A word is a maximal run of
// letters, case folded, at least MinWordLen runes long. When enc is non-nil
// the input is decoded from enc to UTF-8 first.
func CountReader(c *Counter, r io.Reader, enc encoding.Encoding) error {
	if enc != nil {
		r = transform.NewReader(r, enc.NewDecoder())
	}
	fold := cases.Fold()

	br := bufio.NewReader(r)
	var word strings.Builder
	runes := 0
	flush := func() {
		if runes >= MinWordLen {
			c.Add(fold.String(word.String()))
		}
		word.Reset()
		runes = 0
	}

	for {
		ch, _, err := br.ReadRune()
		if err == io.EOF {
			flush()
			return nil
		}
		if err != nil {
			return err
		}
		if unicode.IsLetter(ch) {
			word.WriteRune(ch)
			runes++
			continue
		}
		flush()
	}
}

// CountFiles counts every file in paths into c, one goroutine per file. It
// waits for all of them and returns the first error encountered. Cancelling
// ctx stops files that have not been opened yet.
func CountFiles(ctx context.Context, c *Counter, paths []string, enc encoding.Encoding) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, path := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}
			if err := countFile(c, path, enc); err != nil {
				fail(err)
			}
		}()
	}
	wg.Wait()
	return firstErr
}

func countFile(c *Counter, path string, enc encoding.Encoding) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := CountReader(c, f, enc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
