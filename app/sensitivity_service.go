package app

import (
	"context"
	"fmt"

	"gpgam/adapters/stats/gam"
	"gpgam/domain/core"
	"gpgam/domain/grid"
	"gpgam/domain/run"
	sens "gpgam/domain/sensitivity"
	"gpgam/internal"
	"gpgam/internal/config"
	"gpgam/internal/dataset"
	"gpgam/internal/discovery"
	"gpgam/internal/errors"
	"gpgam/internal/output"
	"gpgam/internal/sensitivity"
	"gpgam/ports"

	"gonum.org/v1/gonum/mat"
)

// SensitivityRequest selects the grid point and month to analyse
type SensitivityRequest struct {
	Point       grid.Point
	Month       string
	SamplesPath string // empty means the configured sample
}

// SensitivityResult describes a completed run
type SensitivityResult struct {
	ResponsePath string
	Tier         discovery.Tier
	SamplePath   string
	RawRows      int
	RowsUsed     int
	Label        int
	Record       sens.Record
	Outputs      output.Paths
	Run          *run.Record // nil when no ledger is configured
}

// SensitivityService runs locate → load → clean → fit → estimate → write
// for one grid point
type SensitivityService struct {
	paths   config.PathConfig
	model   config.ModelConfig
	locator *discovery.Locator
	fitter  ports.SurfaceFitter
	writer  *output.Writer
	ledger  ports.RunLedgerWriter
	runner  *StageRunner
	logger  *internal.Logger
}

// NewSensitivityService wires the pipeline from configuration. ledger may
// be nil.
func NewSensitivityService(cfg *config.Config, ledger ports.RunLedgerWriter, logger *internal.Logger) *SensitivityService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &SensitivityService{
		paths:   cfg.Paths,
		model:   cfg.Model,
		locator: discovery.NewLocator(cfg.Paths),
		fitter:  gam.NewFitter(gam.Config{Splines: cfg.Model.Splines, Lambda: cfg.Model.Lambda}),
		writer:  output.NewWriter(cfg.Paths.GAMOutDir()),
		ledger:  ledger,
		runner:  NewStageRunner(logger),
		logger:  logger,
	}
}

// WithFitter swaps the surface fitter
func (s *SensitivityService) WithFitter(f ports.SurfaceFitter) *SensitivityService {
	s.fitter = f
	return s
}

// Run executes the pipeline. Output files are only created once every
// earlier stage succeeded.
func (s *SensitivityService) Run(ctx context.Context, req SensitivityRequest) (*SensitivityResult, error) {
	if req.Month == "" {
		return nil, errors.InvalidInput("month is required")
	}
	res := &SensitivityResult{SamplePath: req.SamplesPath}
	if res.SamplePath == "" {
		res.SamplePath = s.paths.SamplesPath()
	}
	s.logger.Info("GAM sensitivity for %s H2SO4 month=%s", req.Point, req.Month)

	var (
		y       []float64
		X       *mat.Dense
		Xn      *mat.Dense
		yn      []float64
		surface ports.Surface
	)

	err := s.runner.RunStages(ctx,
		Stage{Name: "locate response", Run: func(context.Context) error {
			match, err := s.locator.Locate(req.Point, req.Month)
			if err != nil {
				return err
			}
			res.ResponsePath, res.Tier = match.Path, match.Tier
			s.logger.Info("using GP file %s (%s match)", match.Path, match.Tier)
			return nil
		}},
		Stage{Name: "load response", Run: func(context.Context) error {
			var err error
			y, err = dataset.LoadResponse(res.ResponsePath)
			res.RawRows = len(y)
			return err
		}},
		Stage{Name: "load sample", Run: func(context.Context) error {
			var err error
			X, err = dataset.LoadSample(res.SamplePath, len(y))
			if err == nil {
				s.logger.Info("loaded %d sample rows from %s", len(y), res.SamplePath)
			}
			return err
		}},
		Stage{Name: "clean", Run: func(context.Context) error {
			var err error
			Xn, yn, err = dataset.Clean(X, y)
			if err != nil {
				return err
			}
			res.RowsUsed = len(yn)
			if dropped := res.RawRows - res.RowsUsed; dropped > 0 {
				s.logger.Warn("dropped %d non-finite rows, %d remain", dropped, res.RowsUsed)
			}
			return nil
		}},
		Stage{Name: "fit", Run: func(context.Context) error {
			var err error
			surface, err = s.fitter.Fit(Xn, yn)
			return err
		}},
		Stage{Name: "estimate", Run: func(context.Context) error {
			var err error
			res.Record, err = sensitivity.Estimate(surface, Xn)
			return err
		}},
		Stage{Name: "write", Run: func(context.Context) error {
			res.Label = dataset.OutputLabel(res.ResponsePath, res.RawRows, res.RowsUsed)
			var err error
			res.Outputs, err = s.writer.Write(req.Point, req.Month, res.Label, res.Record)
			if err == nil {
				s.logger.Info("saved %s", res.Outputs.Variance)
				s.logger.Info("saved %s", res.Outputs.Sign)
			}
			return err
		}},
	)
	if err != nil {
		return nil, err
	}

	if s.ledger != nil {
		rec, err := s.record(req, res)
		if err != nil {
			return res, errors.LedgerError("failed to build run record", err)
		}
		if err := s.ledger.SaveRun(ctx, rec); err != nil {
			return res, errors.LedgerError("failed to record run", err)
		}
		res.Run = rec
		s.logger.Debug("recorded run %s", rec.RunID)
	}
	return res, nil
}

func (s *SensitivityService) record(req SensitivityRequest, res *SensitivityResult) (*run.Record, error) {
	responseHash, err := core.HashFile(res.ResponsePath)
	if err != nil {
		return nil, err
	}
	varianceHash, err := core.HashFile(res.Outputs.Variance)
	if err != nil {
		return nil, err
	}
	signHash, err := core.HashFile(res.Outputs.Sign)
	if err != nil {
		return nil, err
	}

	fp := run.NewFingerprint(req.Point, req.Month, responseHash, res.SamplePath,
		res.RowsUsed, s.model.Splines, s.model.Lambda)
	rec := run.NewRecord(fp, res.Label, res.ResponsePath, res.Outputs.Variance, res.Outputs.Sign,
		varianceHash, signHash)
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("incomplete run record: %w", err)
	}
	return rec, nil
}
