package bootstrap

import (
	"context"
	"time"

	"ojboot/pkg/utils/contextkey"
	"ojboot/pkg/utils/logger"

	"go.uber.org/zap"
)

// Step is one gate of the bootstrap sequence. A step returning an error
// aborts the whole sequence.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Orchestrator executes the bootstrap steps strictly in order. There is
// no parallelism and no partial-start: the first failure is final.
type Orchestrator struct {
	BootID string
	Steps  []Step
}

// Run executes every step in order, logging each transition with the boot
// id and step name. The returned error is the first step failure.
func (o *Orchestrator) Run(ctx context.Context) error {
	ctx = contextkey.WithBootID(ctx, o.BootID)

	for _, step := range o.Steps {
		stepCtx := contextkey.WithStep(ctx, step.Name)
		start := time.Now()
		logger.Info(stepCtx, "bootstrap step started")

		if err := step.Run(stepCtx); err != nil {
			logger.Error(stepCtx, "bootstrap step failed",
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			return err
		}

		logger.Info(stepCtx, "bootstrap step completed",
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return nil
}
