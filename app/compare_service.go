package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gpgam/adapters/excel"
	"gpgam/domain/grid"
	"gpgam/domain/run"
	"gpgam/internal"
	"gpgam/internal/config"
	"gpgam/internal/errors"
)

// CompareFileName is the CSV written under <gam-out>/comparison/
const CompareFileName = "timing_compare.csv"

// CompareOptions configures a timing comparison
type CompareOptions struct {
	// BaselineCmd and OptimisedCmd are command templates; {lat}, {lon} and
	// {month} are substituted and the result split on whitespace
	BaselineCmd  string
	OptimisedCmd string
	Dir          string // working directory for both commands
	XLSX         bool   // also write a workbook next to the CSV
}

// CompareService times baseline and optimised runs, one subprocess at a time
type CompareService struct {
	paths  config.PathConfig
	opts   CompareOptions
	out    io.Writer
	logger *internal.Logger
}

// NewCompareService creates a comparison runner printing its table to out
func NewCompareService(paths config.PathConfig, opts CompareOptions, out io.Writer, logger *internal.Logger) *CompareService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if out == nil {
		out = io.Discard
	}
	return &CompareService{paths: paths, opts: opts, out: out, logger: logger}
}

// CSVPath is where the comparison table is saved
func (s *CompareService) CSVPath() string {
	return filepath.Join(s.paths.GAMOutDir(), "comparison", CompareFileName)
}

// Run times every target and saves the table. The first failing command
// aborts the comparison.
func (s *CompareService) Run(ctx context.Context, targets []run.Target) ([]run.Timing, error) {
	if len(targets) == 0 {
		return nil, errors.InvalidInput("no comparison points")
	}

	fmt.Fprintf(s.out, "\n== Running GAM BASELINE then OPTIMISED for %d points ==\n\n", len(targets))
	rows := make([]run.Timing, 0, len(targets))
	for _, tg := range targets {
		tb, err := s.timeCommand(ctx, s.opts.BaselineCmd, tg, nil)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(s.out, "[baseline]  lat=%.3f lon=%.4f  time=%.2fs\n", tg.Point.Lat, tg.Point.Lon, tb.Seconds())

		omp := []string{"OMP_NUM_THREADS=" + strconv.Itoa(runtime.NumCPU())}
		to, err := s.timeCommand(ctx, s.opts.OptimisedCmd, tg, omp)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(s.out, "[optimised] lat=%.3f lon=%.4f  time=%.2fs\n", tg.Point.Lat, tg.Point.Lon, to.Seconds())

		rows = append(rows, run.Timing{Target: tg, Baseline: tb, Optimised: to})
	}

	PrintTimingTable(s.out, rows)

	path := s.CSVPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return rows, fmt.Errorf("failed to create comparison directory: %w", err)
	}
	if err := WriteTimingCSV(path, rows); err != nil {
		return rows, err
	}
	fmt.Fprintf(s.out, "Saved: %s\n", path)

	if s.opts.XLSX {
		xlsx := strings.TrimSuffix(path, filepath.Ext(path)) + ".xlsx"
		if err := excel.WriteTimingWorkbook(xlsx, rows); err != nil {
			return rows, err
		}
		fmt.Fprintf(s.out, "Saved: %s\n", xlsx)
	}
	return rows, nil
}

// timeCommand runs one expanded template and returns its wall-clock time.
// Environment entries in extraEnv are added only when not already set.
func (s *CompareService) timeCommand(ctx context.Context, template string, tg run.Target, extraEnv []string) (time.Duration, error) {
	argv := ExpandCommand(template, tg)
	if len(argv) == 0 {
		return 0, errors.InvalidInput("empty command template")
	}
	s.logger.Debug("exec %s", strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = s.opts.Dir
	cmd.Stdout = s.out
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	for _, kv := range extraEnv {
		key := kv[:strings.IndexByte(kv, '=')]
		if _, set := os.LookupEnv(key); !set {
			cmd.Env = append(cmd.Env, kv)
		}
	}

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	if err != nil {
		return elapsed, errors.SubprocessError(strings.Join(argv, " "), err)
	}
	return elapsed, nil
}

// ExpandCommand substitutes the target into a command template
func ExpandCommand(template string, tg run.Target) []string {
	r := strings.NewReplacer(
		"{lat}", grid.Repr(tg.Point.Lat),
		"{lon}", grid.Repr(tg.Point.Lon),
		"{month}", tg.Month,
	)
	return strings.Fields(r.Replace(template))
}

// PrintTimingTable writes the aligned comparison table with a TOTAL row
func PrintTimingTable(w io.Writer, rows []run.Timing) {
	fmt.Fprintf(w, "\n=== GAM Time comparison (seconds) ===\n")
	fmt.Fprintf(w, "%8s %10s %12s %12s %10s\n", "lat", "lon", "baseline", "optimised", "speedup")
	for _, r := range rows {
		fmt.Fprintf(w, "%8.3f %10.4f %12.2f %12.2f %10sx\n",
			r.Point.Lat, r.Point.Lon, r.Baseline.Seconds(), r.Optimised.Seconds(), fixed2(r.Speedup()))
	}
	b, o, sp := run.Totals(rows)
	fmt.Fprintln(w, strings.Repeat("-", 58))
	fmt.Fprintf(w, "%20s %12.2f %12.2f %10sx\n\n", "TOTAL", b.Seconds(), o.Seconds(), fixed2(sp))
}

// WriteTimingCSV saves rows, a blank line, then the TOTAL row
func WriteTimingCSV(path string, rows []run.Timing) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.UseCRLF = true
	records := [][]string{{"lat", "lon", "month", "baseline_s", "optimised_s", "speedup_x"}}
	for _, r := range rows {
		records = append(records, []string{
			grid.Repr(r.Point.Lat), grid.Repr(r.Point.Lon), r.Month,
			fixed2(r.Baseline.Seconds()), fixed2(r.Optimised.Seconds()), fixed2(r.Speedup()),
		})
	}
	b, o, sp := run.Totals(rows)
	records = append(records, []string{}, []string{"TOTAL", "", "", fixed2(b.Seconds()), fixed2(o.Seconds()), fixed2(sp)})

	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func fixed2(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
