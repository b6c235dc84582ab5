package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gpgam/adapters/ledger"
	"gpgam/domain/core"
	"gpgam/domain/grid"
	"gpgam/domain/params"
	"gpgam/domain/run"
	"gpgam/internal/config"
	"gpgam/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var demoPoint = grid.Point{Lat: 34.375, Lon: -10.3125}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GAM_ROOT", "GAM_SAMPLES", "GAM_LEDGER_DRIVER", "GAM_LEDGER_DSN", "GAM_SPLINES", "GAM_LAMBDA"} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "ERROR")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// writeRawInput lays out the LHC sample and a demo input named with the
// 3-decimal longitude under the given month folder
func writeRawInput(t *testing.T, paths config.PathConfig, month string, n int) {
	t.Helper()
	rng := rand.New(rand.NewSource(11))

	var sample, response strings.Builder
	for i := 0; i < n; i++ {
		row := make([]string, params.RawWidth)
		var x0, x1 float64
		for j := range row {
			v := rng.Float64()
			switch j {
			case 0:
				x0 = v
			case 1:
				x1 = v
			}
			row[j] = fmt.Sprintf("%.8f", v)
		}
		sample.WriteString(strings.Join(row, " ") + "\n")
		fmt.Fprintf(&response, "%.8f\n", x0-x1)
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(paths.SamplesPath()), 0755))
	require.NoError(t, os.WriteFile(paths.SamplesPath(), []byte(sample.String()), 0644))

	dir := paths.InputDir(grid.Variable, month)
	require.NoError(t, os.MkdirAll(dir, 0755))
	name := grid.RawInputFileName(demoPoint, demoPoint.LonToken(3))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(response.String()), 0644))
}

func TestRootCommandKeepsMonthCase(t *testing.T) {
	clearEnv(t)
	paths := config.PathConfig{Root: t.TempDir()}
	writeRawInput(t, paths, "JAN", 80)

	_, err := execute(t, "--root", paths.Root, "--ilat", "34.375", "--ilon", "-10.3125", "--month", "JAN")
	require.NoError(t, err)

	dir := filepath.Join(paths.GAMOutDir(), "baseline", demoPoint.LatDir())
	assert.FileExists(t, filepath.Join(dir, grid.VarianceFileName("JAN", 80, demoPoint)))
	assert.FileExists(t, filepath.Join(dir, grid.SignFileName("JAN", 80, demoPoint)))
}

func TestManifestCommandKeepsMonthCase(t *testing.T) {
	clearEnv(t)
	paths := config.PathConfig{Root: t.TempDir()}
	writeRawInput(t, paths, "JAN", 5)

	_, err := execute(t, "--root", paths.Root, "manifest", "--month", "JAN")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(paths.InputDir(grid.Variable, "JAN"), "manifest.csv"))

	_, err = execute(t, "--root", paths.Root, "manifest", "--month", "jan")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestRunsCommandListsLedger(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	dsn := filepath.Join(root, "ledger.db")

	l, err := ledger.Open(context.Background(), "sqlite3", dsn)
	require.NoError(t, err)
	fp := run.NewFingerprint(demoPoint, "jan", core.NewHash([]byte("response")), "/data/lhc.dat", 300, 20, 0.6)
	rec := run.NewRecord(fp, 300, "/gp/response.dat", "/gam/var.dat", "/gam/sign.dat",
		core.NewHash([]byte("var")), core.NewHash([]byte("sign")))
	require.NoError(t, l.SaveRun(context.Background(), rec))
	require.NoError(t, l.Close())

	out, err := execute(t, "--root", root, "runs", "--ledger", dsn, "--ilat", "34.375", "--ilon", "-10.3125", "--month", "jan")
	require.NoError(t, err)
	assert.Contains(t, out, rec.RunID.String())
	assert.Contains(t, out, "1 run(s)")

	out, err = execute(t, "--root", root, "runs", "--ledger", dsn, "--month", "jul")
	require.NoError(t, err)
	assert.Contains(t, out, "0 run(s)")

	out, err = execute(t, "--root", root, "runs", "--ledger", dsn, "--id", rec.RunID.String())
	require.NoError(t, err)
	assert.Contains(t, out, rec.SignHash.String())
}

func TestRunsCommandErrors(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	_, err := execute(t, "--root", root, "runs")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "--root", root, "runs", "--ledger", filepath.Join(root, "ledger.db"), "--ilat", "34.375")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
