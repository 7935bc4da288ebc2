package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cratesweep/cratesweep/pkg/assemble"
	"github.com/cratesweep/cratesweep/pkg/attempt"
	"github.com/cratesweep/cratesweep/pkg/builders"
	runctx "github.com/cratesweep/cratesweep/pkg/context"
	"github.com/cratesweep/cratesweep/pkg/driver"
	"github.com/cratesweep/cratesweep/pkg/interfaces"
	"github.com/cratesweep/cratesweep/pkg/isolation"
	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/metrics"
	"github.com/cratesweep/cratesweep/pkg/notifier"
	"github.com/cratesweep/cratesweep/pkg/registry"
	"github.com/cratesweep/cratesweep/pkg/results"
	"github.com/cratesweep/cratesweep/pkg/state"
	"github.com/cratesweep/cratesweep/pkg/types"
	"github.com/cratesweep/cratesweep/pkg/utils"
)

func (c *CLI) loadRunConfig(cmd *cobra.Command) (types.RunConfig, error) {
	v, err := newViper(cmd, c.config.ConfigFile)
	if err != nil {
		return types.RunConfig{}, err
	}
	return runConfig(v)
}

// newAttempt wires the real resolver and executor into one attempt closure
func newAttempt(cfg types.RunConfig, log logger.Logger) isolation.AttemptFunc {
	resolver := registry.NewResolver(cfg, log)
	executor := builders.NewCargoExecutor(cfg, log)
	return attempt.New(resolver, executor, cfg, log).Run
}

func newIsolator(cfg types.RunConfig, store *results.Store, log logger.Logger) (interfaces.Isolator, error) {
	if cfg.Isolation == types.IsolationInProcess {
		iso, err := isolation.NewInProcess(store, newAttempt(cfg, log), cfg.Timeout, log)
		if err != nil {
			return nil, err
		}
		return iso, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate the cratesweep executable: %w", err)
	}
	return isolation.NewSubprocess(exe, cfg, store, log), nil
}

// runParent is the default command: setup, then one attempt per package
func (c *CLI) runParent(cmd *cobra.Command, specs []string) error {
	cfg, err := c.loadRunConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = runctx.EnrichContext(ctx)

	log := logger.CreateLogger("", string(cfg.Verbosity))
	runLog := logger.WithContext(ctx, log)
	notify := notifier.New(notifier.Config{Enabled: cfg.Notify, Sound: cfg.NotifySound}, log)

	store := results.NewStore(cfg.OutputDir)
	iso, err := newIsolator(cfg, store, log)
	if err != nil {
		return err
	}

	deps := driver.Dependencies{
		Assembler: assemble.New(types.NewLayout(cfg.OutputDir).IndexDir()),
		Mirror:    registry.NewMirror(cfg, log),
		Store:     store,
		Isolator:  iso,
		Logger:    log,
	}
	var recorder *metrics.Recorder
	if cfg.MetricsFile != "" {
		recorder = metrics.NewRecorder()
		deps.Observer = recorder
	}

	if err := utils.EnsureDirectory(cfg.OutputDir); err != nil {
		return types.NewSetupError("create "+cfg.OutputDir, err)
	}
	lock, err := state.Acquire(cfg.OutputDir, runctx.GetRunID(ctx))
	if err != nil {
		return types.NewSetupError("lock "+cfg.OutputDir, err)
	}
	defer lock.Release()

	d := driver.New(cfg, deps)
	if err := d.Setup(ctx); err != nil {
		notify.NotifySetupFailure(err)
		return err
	}

	summary, runErr := d.Run(ctx, specs)

	if recorder != nil {
		if err := recorder.WriteToTextfile(cfg.MetricsFile); err != nil {
			runLog.Warn("Failed to write metrics", logger.WithError(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	runLog.Info(fmt.Sprintf("Finished in %s: %s", summary.Elapsed.Round(time.Millisecond), summary))
	notify.NotifyRunComplete(summary.String(), summary.Failed())
	return nil
}

// runChild is the re-invoked side of subprocess isolation. Its standard
// streams are the capture files of the package it was given.
func (c *CLI) runChild(cmd *cobra.Command, specs []string) error {
	cfg, err := c.loadRunConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if id := os.Getenv(runctx.RunIDEnv); id != "" {
		ctx = runctx.WithRunID(ctx, id)
	}

	log := logger.WithContext(ctx, logger.CreateLogger("", string(cfg.Verbosity)))

	d := driver.New(cfg, driver.Dependencies{
		Assembler: assemble.New(types.NewLayout(cfg.OutputDir).IndexDir()),
		Staging:   results.NewStore(cfg.OutputDir),
		Attempt:   newAttempt(cfg, log),
		Logger:    log,
	})
	return d.RunChild(ctx, specs)
}
