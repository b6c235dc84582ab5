package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"

	"gpgam/domain/core"
	"gpgam/domain/grid"
	"gpgam/internal"
	"gpgam/internal/config"

	"golang.org/x/sync/errgroup"
)

// ManifestFileName is written into the month's input directory
const ManifestFileName = "manifest.csv"

// ManifestEntry describes one demo input file
type ManifestEntry struct {
	Filename    string         `json:"filename"`
	Bytes       int64          `json:"bytes"`
	MD5         core.Hash      `json:"md5"`
	ModifiedUTC core.Timestamp `json:"modified_utc"`
}

// Manifest is the checksum listing for a month plus output counts
type Manifest struct {
	Path       string
	Entries    []ManifestEntry
	GPOutputs  int
	GAMOutputs int
}

// ManifestService checksums demo inputs
type ManifestService struct {
	paths  config.PathConfig
	out    io.Writer
	logger *internal.Logger
}

// NewManifestService creates a manifest builder printing its report to out
func NewManifestService(paths config.PathConfig, out io.Writer, logger *internal.Logger) *ManifestService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if out == nil {
		out = io.Discard
	}
	return &ManifestService{paths: paths, out: out, logger: logger}
}

// Build checksums <inputs>/H2SO4/<month>/*.dat and writes manifest.csv there
func (s *ManifestService) Build(ctx context.Context, month string) (*Manifest, error) {
	dir := s.paths.InputDir(grid.Variable, month)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, core.NewNotFoundError(core.ErrNotFound, "input directory "+dir)
	}

	inputs, err := filepath.Glob(filepath.Join(dir, "*.dat"))
	if err != nil {
		return nil, fmt.Errorf("failed to list inputs in %s: %w", dir, err)
	}
	sort.Strings(inputs)

	entries := make([]ManifestEntry, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range inputs {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}
			sum, err := core.MD5File(path)
			if err != nil {
				return err
			}
			entries[i] = ManifestEntry{
				Filename:    filepath.Base(path),
				Bytes:       info.Size(),
				MD5:         sum,
				ModifiedUTC: core.NewTimestamp(info.ModTime()),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &Manifest{
		Path:       filepath.Join(dir, ManifestFileName),
		Entries:    entries,
		GPOutputs:  countEntries(s.paths.GPOutDir()),
		GAMOutputs: countEntries(s.paths.GAMOutDir()),
	}

	fmt.Fprintf(s.out, "Found %d input files:\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(s.out, " - %s (%d bytes; md5=%s)\n", e.Filename, e.Bytes, e.MD5)
	}
	fmt.Fprintf(s.out, "\nOutputs present?\n")
	fmt.Fprintf(s.out, " - GP emulation files: %d\n", m.GPOutputs)
	fmt.Fprintf(s.out, " - GAM variance files: %d\n", m.GAMOutputs)

	if err := writeManifestCSV(m.Path, entries); err != nil {
		return nil, err
	}
	s.logger.Info("wrote %s (%d entries)", m.Path, len(entries))
	return m, nil
}

func writeManifestCSV(path string, entries []ManifestEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.UseCRLF = true
	records := [][]string{{"filename", "bytes", "md5", "modified_utc"}}
	for _, e := range entries {
		records = append(records, []string{e.Filename, strconv.FormatInt(e.Bytes, 10), e.MD5.String(), e.ModifiedUTC.ISO()})
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// countEntries counts the top-level entries of dir; a missing dir counts zero
func countEntries(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	return len(entries)
}
