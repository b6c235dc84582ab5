package app

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gpgam/domain/grid"
	"gpgam/domain/run"
	"gpgam/internal/config"
	"gpgam/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestExpandCommand(t *testing.T) {
	tg := run.Target{Point: grid.Point{Lat: 34.375, Lon: -10.3125}, Month: "jan"}

	argv := ExpandCommand("Rscript scripts/gam/optimised/GAM_optimised.R {lat} {lon} {month}", tg)
	assert.Equal(t, []string{"Rscript", "scripts/gam/optimised/GAM_optimised.R", "34.375", "-10.3125", "jan"}, argv)

	argv = ExpandCommand("gam --ilat {lat} --ilon {lon} --month {month}", run.Target{Point: grid.Point{Lat: 6, Lon: 2.8125}, Month: "jul"})
	assert.Equal(t, []string{"gam", "--ilat", "6.0", "--ilon", "2.8125", "--month", "jul"}, argv)

	assert.Empty(t, ExpandCommand("   ", tg))
}

func TestCompareRunWritesTables(t *testing.T) {
	requireBinary(t, "true")
	paths := config.PathConfig{Root: t.TempDir()}
	var out bytes.Buffer

	svc := NewCompareService(paths, CompareOptions{BaselineCmd: "true", OptimisedCmd: "true", XLSX: true}, &out, nil)
	rows, err := svc.Run(context.Background(), run.DefaultTargets()[:2])
	require.NoError(t, err)
	require.Len(t, rows, 2)

	data, err := os.ReadFile(svc.CSVPath())
	require.NoError(t, err)
	lines := strings.Split(string(data), "\r\n")
	assert.Equal(t, "lat,lon,month,baseline_s,optimised_s,speedup_x", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "34.375,-10.3125,jan,"))
	assert.True(t, strings.HasPrefix(lines[2], "35.625,6.5625,jan,"))
	assert.Equal(t, "", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "TOTAL,,,"))

	assert.FileExists(t, filepath.Join(filepath.Dir(svc.CSVPath()), "timing_compare.xlsx"))
	assert.Contains(t, out.String(), "=== GAM Time comparison (seconds) ===")
	assert.Contains(t, out.String(), "[optimised] lat=35.625 lon=6.5625")
}

func TestCompareAbortsOnFirstFailure(t *testing.T) {
	requireBinary(t, "true")
	requireBinary(t, "false")
	paths := config.PathConfig{Root: t.TempDir()}

	svc := NewCompareService(paths, CompareOptions{BaselineCmd: "true", OptimisedCmd: "false"}, nil, nil)
	_, err := svc.Run(context.Background(), run.DefaultTargets())
	require.Error(t, err)
	assert.Equal(t, errors.CodeSubprocess, errors.GetCode(err))

	_, statErr := os.Stat(svc.CSVPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompareRequiresTargets(t *testing.T) {
	svc := NewCompareService(config.PathConfig{Root: t.TempDir()}, CompareOptions{BaselineCmd: "true", OptimisedCmd: "true"}, nil, nil)
	_, err := svc.Run(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestPrintTimingTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTimingTable(&buf, []run.Timing{{
		Target:    run.Target{Point: grid.Point{Lat: 34.375, Lon: -10.3125}, Month: "jan"},
		Baseline:  3 * time.Second,
		Optimised: 0,
	}})

	assert.Contains(t, buf.String(), "  34.375   -10.3125         3.00         0.00        nanx")
	assert.Contains(t, buf.String(), "TOTAL")
}
