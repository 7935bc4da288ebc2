// Package isolation contains the failure-isolation boundaries a package
// attempt runs inside: a re-invoked child process, or the current process
// with its standard streams redirected and panics recovered.
package isolation

import (
	"context"
	"errors"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/types"
)

// AttemptFunc performs one attempt and classifies it
type AttemptFunc func(ctx context.Context, pkg types.PackageID) types.Outcome

// Supervisor runs an attempt on its own goroutine and turns a panic into a
// crashed outcome
type Supervisor struct {
	logger logger.Logger
}

// NewSupervisor creates a supervisor that logs recovered panics to log
func NewSupervisor(log logger.Logger) *Supervisor {
	return &Supervisor{logger: log}
}

// Run calls fn for pkg and waits for it. A panic on the attempt goroutine
// becomes types.Crashed with the panic text.
func (s *Supervisor) Run(ctx context.Context, pkg types.PackageID, fn AttemptFunc) types.Outcome {
	g, gctx := errgroup.WithContext(ctx)

	var outcome types.Outcome
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				perr := &PanicError{Value: r, Stack: debug.Stack()}
				s.logger.Error("Attempt panic recovered",
					logger.WithField("package", pkg.String()),
					logger.WithField("panic", perr.Error()),
					logger.WithField("stack_trace", string(perr.Stack)))
				err = perr
			}
		}()

		outcome = fn(gctx, pkg)
		return nil
	})

	if err := g.Wait(); err != nil {
		var perr *PanicError
		if errors.As(err, &perr) {
			return types.Crashed(perr.Error())
		}
		return types.Crashed(err.Error())
	}

	// An attempt that returned without classifying itself
	if !outcome.Kind.Valid() {
		return types.Crashed("")
	}
	return outcome
}
