// Package attempt runs the resolve, build, test and bench sequence for one
// package and classifies how it ended
package attempt

import (
	"context"
	"errors"
	"fmt"
	"time"

	runctx "github.com/cratesweep/cratesweep/pkg/context"
	"github.com/cratesweep/cratesweep/pkg/interfaces"
	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/registry"
	"github.com/cratesweep/cratesweep/pkg/types"
)

// Runner performs attempts against one resolver and executor
type Runner struct {
	resolver interfaces.Resolver
	executor interfaces.Executor
	cfg      types.RunConfig
	logger   logger.Logger
}

// New creates a runner
func New(resolver interfaces.Resolver, executor interfaces.Executor, cfg types.RunConfig, log logger.Logger) *Runner {
	return &Runner{
		resolver: resolver,
		executor: executor,
		cfg:      cfg,
		logger:   log,
	}
}

// Run attempts pkg and returns its outcome. Every failure of a delegate is
// folded into the outcome; Run never returns an error.
func (r *Runner) Run(ctx context.Context, pkg types.PackageID) types.Outcome {
	ctx = runctx.WithPackage(ctx, pkg.String())
	log := logger.WithContext(ctx, r.logger)

	resolved, err := r.resolver.Resolve(ctx, pkg)
	if err != nil {
		return classifyResolve(err)
	}

	build, err := r.executor.Compile(ctx, resolved, r.cfg.Release)
	if err != nil {
		return types.BuildFailed(err.Error())
	}

	var testTime, benchTime *time.Duration
	if r.cfg.RunTests {
		d, err := r.executor.RunTests(ctx, resolved, r.cfg.Release)
		if err != nil {
			return types.TestFailed(err.Error())
		}
		testTime = &d
	}

	if r.cfg.RunBenchmarks {
		d, err := r.executor.RunBenchmarks(ctx, resolved, r.cfg.Release)
		if err != nil {
			log.Warn("Benchmarks failed, recording success without bench time", logger.WithError(err))
		} else {
			benchTime = &d
		}
	}

	return types.Success(build, testTime, benchTime)
}

func classifyResolve(err error) types.Outcome {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return types.NotFound(err.Error())
	case errors.Is(err, registry.ErrDownloadFailed):
		return types.DownloadFailed(err.Error())
	}
	return types.Crashed(fmt.Sprintf("resolve: %v", err))
}
