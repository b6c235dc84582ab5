package config

import (
	"path/filepath"
	"testing"

	"gpgam/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"GAM_ROOT", "GAM_SAMPLES", "GAM_SPLINES", "GAM_LAMBDA", "GAM_LEDGER_DSN", "GAM_LEDGER_DRIVER", "GAM_OPTIMISED_CMD"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Paths.Root)
	assert.Equal(t, DefaultSplines, cfg.Model.Splines)
	assert.Equal(t, DefaultLambda, cfg.Model.Lambda)
	assert.Equal(t, "sqlite3", cfg.Ledger.Driver)
	assert.Empty(t, cfg.Ledger.DSN)
	assert.Equal(t, DefaultOptimisedCmd, cfg.Compare.OptimisedCmd)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GAM_ROOT", "/data/pipeline")
	t.Setenv("GAM_SPLINES", "12")
	t.Setenv("GAM_LAMBDA", "1.5")
	t.Setenv("GAM_LEDGER_DRIVER", "postgres")
	t.Setenv("GAM_LEDGER_DSN", "postgres://localhost/gam")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/pipeline", cfg.Paths.Root)
	assert.Equal(t, 12, cfg.Model.Splines)
	assert.Equal(t, 1.5, cfg.Model.Lambda)
	assert.Equal(t, "postgres", cfg.Ledger.Driver)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("GAM_SPLINES", "3")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	t.Setenv("GAM_SPLINES", "")
	t.Setenv("GAM_LEDGER_DRIVER", "mysql")
	_, err = Load()
	require.Error(t, err)
}

func TestLayout(t *testing.T) {
	p := PathConfig{Root: "/repo"}

	assert.Equal(t, filepath.Join("/repo", "examples", "large_sample", "constrained_multi_million_sample_first_million.dat"), p.SamplesPath())
	assert.Equal(t, filepath.Join("/repo", "examples", "tiny_sample_inputs", "H2SO4", "jan"), p.InputDir("H2SO4", "jan"))
	assert.Equal(t, filepath.Join("/repo", "examples", "tiny_sample_outputs", "gp_emulation"), p.GPOutDir())
	assert.Equal(t, filepath.Join("/repo", "examples", "tiny_sample_outputs", "gam_variance"), p.GAMOutDir())

	p.Samples = "/elsewhere/lhc.dat"
	assert.Equal(t, "/elsewhere/lhc.dat", p.SamplesPath())
}
