package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"

	"gpgam/adapters/datfile"
	"gpgam/domain/core"
)

var sampleCountPattern = regexp.MustCompile(`_(\d+)_w_o_carb\.dat$`)

// LoadResponse reads the GP mean-response vector. Multi-column files
// contribute their first column. An empty file yields an empty vector.
func LoadResponse(path string) ([]float64, error) {
	sc, err := datfile.OpenScanner(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.NewNotFoundError(core.ErrResponseNotFound, path)
		}
		return nil, fmt.Errorf("failed to open GP response %s: %w", path, err)
	}
	defer sc.Close()

	var y []float64
	first := make([]float64, 1)
	for sc.Next() {
		if err := datfile.ParseFloats(first, sc.Fields()[:1]); err != nil {
			return nil, core.NewShapeError(path, fmt.Sprintf("line %d: %v", sc.Line(), err))
		}
		y = append(y, first[0])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return y, nil
}

// SampleCountFromName recovers N from a GP file name ending in
// _<N>_w_o_carb.dat
func SampleCountFromName(path string) (int, bool) {
	m := sampleCountPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// OutputLabel picks the sample count carried in output file names: the
// count recovered from the GP file name when it equals the raw response
// length, otherwise the number of rows that survived cleaning.
func OutputLabel(responsePath string, rawLen, usedRows int) int {
	if n, ok := SampleCountFromName(responsePath); ok && n == rawLen {
		return n
	}
	return usedRows
}
