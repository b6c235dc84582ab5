// Package datfile reads and writes the whitespace-delimited numeric text
// files exchanged with the GP emulation stage.
package datfile

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const maxLineBytes = 4 << 20

// Scanner streams the non-blank, non-comment rows of a text matrix so large
// samples can be consumed without loading the whole file
type Scanner struct {
	path   string
	file   *os.File
	sc     *bufio.Scanner
	line   int
	fields []string
}

// OpenScanner opens path for row scanning. A missing file yields an error
// satisfying errors.Is(err, fs.ErrNotExist).
func OpenScanner(path string) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Scanner{path: path, file: f, sc: sc}, nil
}

// Next advances to the next data row, skipping blank lines and '#' comments
func (s *Scanner) Next() bool {
	for s.sc.Scan() {
		s.line++
		text := s.sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		s.fields = fields
		return true
	}
	s.fields = nil
	return false
}

// Fields returns the tokens of the current row
func (s *Scanner) Fields() []string {
	return s.fields
}

// Line returns the 1-based line number of the current row
func (s *Scanner) Line() int {
	return s.line
}

// Path returns the file being scanned
func (s *Scanner) Path() string {
	return s.path
}

// Err reports a read error, if any, after Next returns false
func (s *Scanner) Err() error {
	if err := s.sc.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return nil
}

// Close releases the underlying file
func (s *Scanner) Close() error {
	return s.file.Close()
}

// ParseFloats parses tokens into dst, which must be at least len(tokens) long.
// nan and inf spellings are accepted and yield non-finite values.
func ParseFloats(dst []float64, tokens []string) error {
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("column %d: %q is not a number", i, tok)
		}
		dst[i] = v
	}
	return nil
}
