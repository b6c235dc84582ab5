package datfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// FormatScientific renders v like C's %.8e, e.g. 1.23456789e-05
func FormatScientific(v float64) string {
	return strconv.FormatFloat(v, 'e', 8, 64)
}

// WriteFloats writes one %.8e value per line
func WriteFloats(path string, values []float64) error {
	lines := make([]string, len(values))
	for i, v := range values {
		lines[i] = FormatScientific(v)
	}
	return WriteLines(path, lines)
}

// WriteInts writes one integer per line
func WriteInts(path string, values []int) error {
	lines := make([]string, len(values))
	for i, v := range values {
		lines[i] = strconv.Itoa(v)
	}
	return WriteLines(path, lines)
}

// WriteLines writes lines to a temporary file beside path and renames it into
// place, so readers never observe a partially written vector
func WriteLines(path string, lines []string) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err = w.WriteString(line); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err = w.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
