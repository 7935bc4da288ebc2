// Package driver sequences a run: setup, package assembly, and one isolated
// attempt per package with its outcome recorded
package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cratesweep/cratesweep/pkg/assemble"
	runctx "github.com/cratesweep/cratesweep/pkg/context"
	"github.com/cratesweep/cratesweep/pkg/interfaces"
	"github.com/cratesweep/cratesweep/pkg/isolation"
	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/types"
	"github.com/cratesweep/cratesweep/pkg/utils"
)

// Assembler turns specifiers into a package set
type Assembler interface {
	Assemble(specs []string) (assemble.Result, error)
}

// Dependencies contains all injectable dependencies of a Driver. A parent
// run needs Store and Isolator; a child run needs Staging and Attempt.
type Dependencies struct {
	Assembler Assembler
	Mirror    interfaces.IndexMirror
	Store     interfaces.ResultStore
	Isolator  interfaces.Isolator
	Staging   interfaces.StagingStore
	Attempt   isolation.AttemptFunc
	Observer  interfaces.RunObserver
	Logger    logger.Logger
}

// Driver runs packages one at a time
type Driver struct {
	cfg  types.RunConfig
	deps Dependencies
	log  logger.Logger
}

// New creates a driver
func New(cfg types.RunConfig, deps Dependencies) *Driver {
	log := deps.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Driver{cfg: cfg, deps: deps, log: log}
}

// Setup creates the output layout and brings the index up to date. Every
// failure is a *types.SetupError.
func (d *Driver) Setup(ctx context.Context) error {
	for _, dir := range types.NewLayout(d.cfg.OutputDir).SetupDirs() {
		if err := utils.EnsureDirectory(dir); err != nil {
			return types.NewSetupError("create "+dir, err)
		}
	}
	if d.deps.Mirror == nil {
		return nil
	}
	if err := d.deps.Mirror.Sync(ctx); err != nil {
		return types.NewSetupError("sync index", err)
	}
	return nil
}

// Summary tallies one run
type Summary struct {
	Outcomes map[types.OutcomeKind]int
	Skipped  int
	Rejected int
	Elapsed  time.Duration
}

func newSummary() Summary {
	return Summary{Outcomes: make(map[types.OutcomeKind]int)}
}

// Attempted returns the number of packages that reached an outcome
func (s Summary) Attempted() int {
	n := 0
	for _, c := range s.Outcomes {
		n += c
	}
	return n
}

// Failed reports whether any attempted package did not succeed
func (s Summary) Failed() bool {
	return s.Attempted() > s.Outcomes[types.OutcomeSuccess]
}

func (s Summary) String() string {
	var parts []string
	for _, k := range types.OutcomeKinds {
		if n := s.Outcomes[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "none attempted")
	}
	msg := fmt.Sprintf("%d attempted (%s), %d skipped", s.Attempted(), strings.Join(parts, ", "), s.Skipped)
	if s.Rejected > 0 {
		msg += fmt.Sprintf(", %d rejected", s.Rejected)
	}
	return msg
}

// Run attempts every package named by specs. Packages with a recorded
// result are skipped unless the run forces them. An interruption stops the
// loop with isolation.ErrInterrupted and leaves the in-flight package
// unrecorded; a store that cannot be written stops the loop as well.
func (d *Driver) Run(ctx context.Context, specs []string) (Summary, error) {
	ctx = runctx.WithStartTime(ctx, time.Now())
	summary := newSummary()

	log := logger.WithContext(ctx, d.log)

	res, err := d.deps.Assembler.Assemble(specs)
	if err != nil {
		return summary, err
	}
	for _, perr := range res.Rejected {
		log.Error(perr.Error())
		summary.Rejected++
	}
	log.Info(fmt.Sprintf("Assembled %d packages", len(res.Packages)))

	for _, pkg := range res.Packages {
		if ctx.Err() != nil {
			return d.finish(ctx, summary), isolation.ErrInterrupted
		}

		pctx := runctx.WithPackage(ctx, pkg.String())
		plog := logger.WithContext(pctx, d.log)

		if d.cfg.Force {
			if err := d.deps.Store.Clear(pkg); err != nil {
				return d.finish(ctx, summary), fmt.Errorf("failed to clear previous result of %s: %w", pkg, err)
			}
		} else if d.deps.Store.HasResult(pkg) {
			plog.Info("using cached result")
			summary.Skipped++
			if d.deps.Observer != nil {
				d.deps.Observer.ObserveSkipped(pkg)
			}
			continue
		}

		plog.Info("processing")
		outcome, err := d.deps.Isolator.Attempt(pctx, pkg)
		if errors.Is(err, isolation.ErrInterrupted) {
			plog.Warn("interrupted, leaving package unrecorded")
			return d.finish(ctx, summary), err
		}
		if err != nil {
			outcome = types.Crashed(err.Error())
		}

		if err := d.deps.Store.Write(pkg, outcome); err != nil {
			return d.finish(ctx, summary), fmt.Errorf("failed to record result of %s: %w", pkg, err)
		}

		summary.Outcomes[outcome.Kind]++
		if d.deps.Observer != nil {
			d.deps.Observer.ObserveOutcome(pkg, outcome)
		}
		if outcome.IsSuccess() {
			plog.Success(outcome.String())
		} else {
			plog.Warn(outcome.String())
		}
	}

	return d.finish(ctx, summary), nil
}

func (d *Driver) finish(ctx context.Context, s Summary) Summary {
	s.Elapsed = runctx.GetDuration(ctx)
	return s
}

// RunChild is the re-invoked side of subprocess isolation: it attempts
// every package in specs under the supervisor and stages the outcome for
// the parent. Standard output and error are already the capture files.
func (d *Driver) RunChild(ctx context.Context, specs []string) error {
	res, err := d.deps.Assembler.Assemble(specs)
	if err != nil {
		return err
	}
	if len(res.Rejected) > 0 {
		return res.Rejected[0]
	}

	supervisor := isolation.NewSupervisor(d.log)
	for _, pkg := range res.Packages {
		outcome := supervisor.Run(ctx, pkg, d.deps.Attempt)
		if err := d.deps.Staging.Stage(pkg, outcome); err != nil {
			return fmt.Errorf("failed to stage outcome of %s: %w", pkg, err)
		}
		d.log.WithPackage(pkg.String()).Info(outcome.String())
	}
	return nil
}
