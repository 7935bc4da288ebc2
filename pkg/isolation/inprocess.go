package isolation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/types"
)

// StdioStore opens the capture files of an attempt
type StdioStore interface {
	PrepareStdio(pkg types.PackageID) (stdout, stderr *os.File, err error)
}

// InProcess runs attempts inside the current process. Descriptors 1 and 2
// point at the capture files for the duration of the attempt and panics on
// the attempt goroutine are recovered. A fault that kills the process
// still takes the run down with it; Subprocess does not share that limit.
type InProcess struct {
	store      StdioStore
	attempt    AttemptFunc
	supervisor *Supervisor
	timeout    time.Duration
	logger     logger.Logger
}

// NewInProcess creates an in-process isolator
func NewInProcess(store StdioStore, attempt AttemptFunc, timeout time.Duration, log logger.Logger) (*InProcess, error) {
	if !redirectSupported {
		return nil, ErrRedirectUnsupported
	}
	return &InProcess{
		store:      store,
		attempt:    attempt,
		supervisor: NewSupervisor(log),
		timeout:    timeout,
		logger:     log,
	}, nil
}

// Attempt runs one attempt with its output captured
func (p *InProcess) Attempt(ctx context.Context, pkg types.PackageID) (types.Outcome, error) {
	stdout, stderr, err := p.store.PrepareStdio(pkg)
	if err != nil {
		return types.Crashed(fmt.Sprintf("failed to open capture files: %v", err)), nil
	}
	defer stdout.Close()
	defer stderr.Close()

	attemptCtx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	outcome, err := p.run(attemptCtx, pkg, stdout, stderr)
	if err != nil {
		return types.Crashed(err.Error()), nil
	}

	if ctx.Err() != nil {
		return types.Outcome{}, ErrInterrupted
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return types.Crashed(deadlineMessage(p.timeout)), nil
	}
	return outcome, nil
}

func (p *InProcess) run(ctx context.Context, pkg types.PackageID, stdout, stderr *os.File) (outcome types.Outcome, err error) {
	restore, err := redirectStdio(stdout, stderr)
	if err != nil {
		return types.Outcome{}, err
	}
	defer func() {
		if rerr := restore(); rerr != nil {
			p.logger.Error("Failed to restore stdio", logger.WithError(rerr))
		}
	}()

	return p.supervisor.Run(ctx, pkg, p.attempt), nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
