package isolation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	runctx "github.com/cratesweep/cratesweep/pkg/context"
	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/types"
)

// RecurseFlag is the first argument of a re-invoked child
const RecurseFlag = "--recurse"

// ChildStore is the parent side of the staging handoff
type ChildStore interface {
	StdioStore
	ReadStaged(pkg types.PackageID) (types.Outcome, bool, error)
	DiscardStaged(pkg types.PackageID) error
}

// Subprocess runs every attempt in a fresh copy of the executable. The
// child stages its outcome; anything else that ends the child is a crash.
type Subprocess struct {
	exe     string
	cfg     types.RunConfig
	store   ChildStore
	logger  logger.Logger
	timeout time.Duration
}

// NewSubprocess creates an isolator that re-invokes exe for every attempt
func NewSubprocess(exe string, cfg types.RunConfig, store ChildStore, log logger.Logger) *Subprocess {
	return &Subprocess{
		exe:     exe,
		cfg:     cfg,
		store:   store,
		logger:  log,
		timeout: cfg.Timeout,
	}
}

// ChildArgs returns the arguments that make a child attempt exactly pkg
// under the configuration of the parent. Every setting the child reads is
// passed explicitly, so no config file in its working directory can change
// it.
func ChildArgs(cfg types.RunConfig, pkg types.PackageID) []string {
	return []string{
		RecurseFlag,
		"--out", cfg.OutputDir,
		"--download-url", cfg.DownloadURL,
		"--verbosity", string(cfg.Verbosity),
		"--test=" + strconv.FormatBool(cfg.RunTests),
		"--bench=" + strconv.FormatBool(cfg.RunBenchmarks),
		"--release=" + strconv.FormatBool(cfg.Release),
		"--", pkg.String(),
	}
}

// Attempt runs pkg in a child process
func (s *Subprocess) Attempt(ctx context.Context, pkg types.PackageID) (types.Outcome, error) {
	if err := s.store.DiscardStaged(pkg); err != nil {
		return types.Crashed(fmt.Sprintf("failed to clear staged outcome: %v", err)), nil
	}

	stdout, stderr, err := s.store.PrepareStdio(pkg)
	if err != nil {
		return types.Crashed(fmt.Sprintf("failed to open capture files: %v", err)), nil
	}

	attemptCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(attemptCtx, s.exe, ChildArgs(s.cfg, pkg)...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = os.Environ()
	if id := runctx.GetRunID(ctx); id != "" {
		cmd.Env = append(cmd.Env, runctx.RunIDEnv+"="+id)
	}
	configureChild(cmd)

	s.logger.Debug("Starting child", logger.WithField("package", pkg.String()))
	runErr := cmd.Run()

	// The staged outcome is only trusted once the captures are closed
	stdout.Close()
	stderr.Close()

	if ctx.Err() != nil {
		_ = s.store.DiscardStaged(pkg)
		return types.Outcome{}, ErrInterrupted
	}

	staged, ok, err := s.store.ReadStaged(pkg)
	if err != nil {
		s.logger.Warn("Unreadable staged outcome", logger.WithField("package", pkg.String()), logger.WithError(err))
	}
	if ok {
		return staged, nil
	}

	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return types.Crashed(deadlineMessage(s.timeout)), nil
	}
	return types.Crashed(describeExit(runErr)), nil
}

func describeExit(err error) string {
	if err == nil {
		return "child exited without recording an outcome"
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Sprintf("child %s", exitErr.ProcessState)
	}
	return fmt.Sprintf("failed to run child: %v", err)
}
