package app

import (
	"context"
	"time"

	"gpgam/internal"
	"gpgam/internal/errors"
)

// Stage is one named step of a run
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// StageRunner executes stages strictly in order. Cancellation is observed
// between stages; a running stage is never interrupted.
type StageRunner struct {
	logger *internal.Logger
}

// NewStageRunner creates a new stage runner
func NewStageRunner(logger *internal.Logger) *StageRunner {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &StageRunner{logger: logger}
}

// RunStages stops at the first failing stage and returns its error, wrapped
// with the stage name
func (r *StageRunner) RunStages(ctx context.Context, stages ...Stage) error {
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "cancelled before %s", stage.Name)
		}

		start := time.Now()
		r.logger.Debug("stage %s started", stage.Name)
		if err := stage.Run(ctx); err != nil {
			r.logger.Error("stage %s failed after %s: %v", stage.Name, time.Since(start).Round(time.Millisecond), err)
			return errors.Wrapf(err, "%s failed", stage.Name)
		}
		r.logger.Debug("stage %s finished in %s", stage.Name, time.Since(start).Round(time.Millisecond))
	}
	return nil
}
