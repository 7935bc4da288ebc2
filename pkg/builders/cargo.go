// Package builders runs the build tool against unpacked packages
package builders

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/types"
)

// Stage names one build-tool invocation of an attempt
type Stage string

const (
	StageBuild Stage = "build"
	StageTest  Stage = "test"
	StageBench Stage = "bench"
)

// StageError reports a build-tool invocation that did not succeed
type StageError struct {
	Stage  Stage
	Pkg    string
	Detail string
	Err    error
}

func (e *StageError) Error() string {
	msg := fmt.Sprintf("cargo %s failed for %s: %v", e.Stage, e.Pkg, e.Err)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// CargoExecutor invokes cargo with the run's shared home and target directory
type CargoExecutor struct {
	cargo     string
	cargoHome string
	targetDir string
	stdout    io.Writer
	stderr    io.Writer
	logger    logger.Logger
}

// ExecutorOption configures a CargoExecutor
type ExecutorOption func(*CargoExecutor)

// WithOutput sends build output to stdout and stderr instead of the
// process's standard streams
func WithOutput(stdout, stderr io.Writer) ExecutorOption {
	return func(e *CargoExecutor) {
		e.stdout = stdout
		e.stderr = stderr
	}
}

// NewCargoExecutor creates an executor for the run described by cfg. Build
// output goes to the process's standard streams, which the isolation
// boundary has already pointed at the capture files.
func NewCargoExecutor(cfg types.RunConfig, log logger.Logger, opts ...ExecutorOption) *CargoExecutor {
	layout := types.NewLayout(absPath(cfg.OutputDir))
	e := &CargoExecutor{
		cargo:     "cargo",
		cargoHome: layout.CargoHome(),
		targetDir: layout.TargetDir(),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		logger:    log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Compile builds the library target of pkg
func (e *CargoExecutor) Compile(ctx context.Context, pkg *types.ResolvedPackage, release bool) (time.Duration, error) {
	return e.run(ctx, StageBuild, pkg, release, "build", "--lib")
}

// RunTests builds and runs the test suite of pkg
func (e *CargoExecutor) RunTests(ctx context.Context, pkg *types.ResolvedPackage, release bool) (time.Duration, error) {
	return e.run(ctx, StageTest, pkg, release, "test")
}

// RunBenchmarks builds and runs the benchmarks of pkg. cargo always builds
// benchmarks with the bench profile, so release is not passed on.
func (e *CargoExecutor) RunBenchmarks(ctx context.Context, pkg *types.ResolvedPackage, release bool) (time.Duration, error) {
	return e.run(ctx, StageBench, pkg, false, "bench")
}

// Environment returns the variables that point cargo at the shared
// configuration of the run
func (e *CargoExecutor) Environment() []string {
	return []string{
		"CARGO_HOME=" + e.cargoHome,
		"CARGO_TARGET_DIR=" + e.targetDir,
	}
}

func (e *CargoExecutor) run(ctx context.Context, stage Stage, pkg *types.ResolvedPackage, release bool, args ...string) (time.Duration, error) {
	if release {
		args = append(args, "--release")
	}
	args = append(args, "--manifest-path", pkg.ManifestPath)

	cmd := e.createCommand(ctx, args)
	cmd.Dir = pkg.SourceDir

	tail := &tailBuffer{limit: 4096}
	cmd.Stdout = e.stdout
	cmd.Stderr = io.MultiWriter(e.stderr, tail)

	log := logger.WithContext(ctx, e.logger)
	log.Info(fmt.Sprintf("%s: %s", stageVerb(stage), pkg))
	log.Debug("Executing cargo", logger.WithField("args", strings.Join(args, " ")))

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w (%v)", ctx.Err(), err)
		}
		return duration, &StageError{Stage: stage, Pkg: pkg.String(), Detail: tail.lastLine(), Err: err}
	}

	log.Info(fmt.Sprintf("%s %s in %s", pkg, stagePast(stage), duration))
	return duration, nil
}

func (e *CargoExecutor) createCommand(ctx context.Context, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, e.cargo, args...)
	cmd.Env = append(os.Environ(), e.Environment()...)
	cmd.WaitDelay = 5 * time.Second
	return cmd
}

func stageVerb(s Stage) string {
	switch s {
	case StageTest:
		return "testing"
	case StageBench:
		return "benchmarking"
	}
	return "building"
}

func stagePast(s Stage) string {
	switch s {
	case StageTest:
		return "tested"
	case StageBench:
		return "benchmarked"
	}
	return "built"
}

// tailBuffer keeps the last limit bytes written to it
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

// lastLine returns the last non-empty line, preferring cargo's "error:" lines
func (t *tailBuffer) lastLine() string {
	lines := bytes.Split(bytes.TrimSpace(t.buf), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(string(lines[i])); strings.HasPrefix(line, "error") {
			return line
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(string(lines[len(lines)-1]))
}
