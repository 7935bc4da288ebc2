package attempt_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/cratesweep/cratesweep/pkg/attempt"
	"github.com/cratesweep/cratesweep/pkg/builders"
	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/mocks"
	"github.com/cratesweep/cratesweep/pkg/registry"
	"github.com/cratesweep/cratesweep/pkg/types"
)

var (
	demo     = types.PackageID{Name: "demo", Version: "0.1"}
	resolved = &types.ResolvedPackage{ID: demo, Version: "0.1.4", SourceDir: "/src/demo-0.1.4", ManifestPath: "/src/demo-0.1.4/Cargo.toml"}
)

func stageErr(stage builders.Stage) error {
	return &builders.StageError{Stage: stage, Pkg: resolved.String(), Err: errors.New("exit status 101")}
}

func TestRunner_Classification(t *testing.T) {
	tests := []struct {
		name     string
		tests    bool
		benches  bool
		setup    func(r *mocks.MockResolver, e *mocks.MockExecutor)
		wantKind types.OutcomeKind
		wantMsg  string
	}{
		{
			name: "not in registry",
			setup: func(r *mocks.MockResolver, e *mocks.MockExecutor) {
				r.EXPECT().Resolve(gomock.Any(), demo).Return(nil, fmt.Errorf("crate `demo=0.1` %w", registry.ErrNotFound))
			},
			wantKind: types.OutcomeNotFound,
			wantMsg:  "not in registry",
		},
		{
			name: "download failed",
			setup: func(r *mocks.MockResolver, e *mocks.MockExecutor) {
				r.EXPECT().Resolve(gomock.Any(), demo).Return(nil, fmt.Errorf("crate `demo=0.1` %w: 503", registry.ErrDownloadFailed))
			},
			wantKind: types.OutcomeDownloadFailed,
			wantMsg:  "503",
		},
		{
			name: "unexpected resolver error",
			setup: func(r *mocks.MockResolver, e *mocks.MockExecutor) {
				r.EXPECT().Resolve(gomock.Any(), demo).Return(nil, errors.New("malformed index line"))
			},
			wantKind: types.OutcomeCrashed,
			wantMsg:  "malformed index line",
		},
		{
			name:  "build failed skips tests",
			tests: true,
			setup: func(r *mocks.MockResolver, e *mocks.MockExecutor) {
				r.EXPECT().Resolve(gomock.Any(), demo).Return(resolved, nil)
				e.EXPECT().Compile(gomock.Any(), resolved, false).Return(time.Second, stageErr(builders.StageBuild))
			},
			wantKind: types.OutcomeBuildFailed,
			wantMsg:  "cargo build failed",
		},
		{
			name:  "test failed",
			tests: true,
			setup: func(r *mocks.MockResolver, e *mocks.MockExecutor) {
				r.EXPECT().Resolve(gomock.Any(), demo).Return(resolved, nil)
				e.EXPECT().Compile(gomock.Any(), resolved, false).Return(time.Second, nil)
				e.EXPECT().RunTests(gomock.Any(), resolved, false).Return(time.Second, stageErr(builders.StageTest))
			},
			wantKind: types.OutcomeTestFailed,
			wantMsg:  "cargo test failed",
		},
		{
			name: "build only",
			setup: func(r *mocks.MockResolver, e *mocks.MockExecutor) {
				r.EXPECT().Resolve(gomock.Any(), demo).Return(resolved, nil)
				e.EXPECT().Compile(gomock.Any(), resolved, false).Return(time.Second, nil)
			},
			wantKind: types.OutcomeSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			resolver := mocks.NewMockResolver(ctrl)
			executor := mocks.NewMockExecutor(ctrl)
			tt.setup(resolver, executor)

			cfg := types.DefaultRunConfig()
			cfg.RunTests = tt.tests
			cfg.RunBenchmarks = tt.benches

			o := attempt.New(resolver, executor, cfg, logger.Discard()).Run(context.Background(), demo)
			if o.Kind != tt.wantKind {
				t.Fatalf("kind = %s, want %s (%s)", o.Kind, tt.wantKind, o.Message)
			}
			if !strings.Contains(o.Message, tt.wantMsg) {
				t.Errorf("message %q should contain %q", o.Message, tt.wantMsg)
			}
		})
	}
}

func TestRunner_SuccessTimings(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	executor := mocks.NewMockExecutor(ctrl)

	gomock.InOrder(
		resolver.EXPECT().Resolve(gomock.Any(), demo).Return(resolved, nil),
		executor.EXPECT().Compile(gomock.Any(), resolved, true).Return(3*time.Second, nil),
		executor.EXPECT().RunTests(gomock.Any(), resolved, true).Return(2*time.Second, nil),
		executor.EXPECT().RunBenchmarks(gomock.Any(), resolved, true).Return(time.Second, nil),
	)

	cfg := types.DefaultRunConfig()
	cfg.RunTests, cfg.RunBenchmarks, cfg.Release = true, true, true

	o := attempt.New(resolver, executor, cfg, logger.Discard()).Run(context.Background(), demo)
	if !o.IsSuccess() {
		t.Fatalf("expected success, got %s", o)
	}
	if o.BuildTime != 3*time.Second {
		t.Errorf("build time = %s", o.BuildTime)
	}
	if o.TestTime == nil || *o.TestTime != 2*time.Second {
		t.Errorf("test time = %v", o.TestTime)
	}
	if o.BenchTime == nil || *o.BenchTime != time.Second {
		t.Errorf("bench time = %v", o.BenchTime)
	}
}

func TestRunner_BenchFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	executor := mocks.NewMockExecutor(ctrl)

	resolver.EXPECT().Resolve(gomock.Any(), demo).Return(resolved, nil)
	executor.EXPECT().Compile(gomock.Any(), resolved, false).Return(time.Second, nil)
	executor.EXPECT().RunBenchmarks(gomock.Any(), resolved, false).Return(time.Second, stageErr(builders.StageBench))

	cfg := types.DefaultRunConfig()
	cfg.RunBenchmarks = true

	o := attempt.New(resolver, executor, cfg, logger.Discard()).Run(context.Background(), demo)
	if !o.IsSuccess() {
		t.Fatalf("bench failure must not fail the attempt, got %s", o)
	}
	if o.BenchTime != nil {
		t.Errorf("failed benchmarks should leave no bench time, got %s", *o.BenchTime)
	}
	if o.TestTime != nil {
		t.Errorf("tests were not requested, got %s", *o.TestTime)
	}
}
