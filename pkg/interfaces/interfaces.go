// Package interfaces provides abstractions for dependency injection and testability
package interfaces

//go:generate mockgen -destination=../mocks/mock_interfaces.go -package=mocks github.com/cratesweep/cratesweep/pkg/interfaces Resolver,Executor,Isolator,IndexMirror

import (
	"context"
	"time"

	"github.com/cratesweep/cratesweep/pkg/types"
)

// Resolver locates, downloads and unpacks a package
type Resolver interface {
	Resolve(ctx context.Context, pkg types.PackageID) (*types.ResolvedPackage, error)
}

// Executor runs the build tool against a resolved package. Each method
// returns the wall-clock time of the stage.
type Executor interface {
	Compile(ctx context.Context, pkg *types.ResolvedPackage, release bool) (time.Duration, error)
	RunTests(ctx context.Context, pkg *types.ResolvedPackage, release bool) (time.Duration, error)
	RunBenchmarks(ctx context.Context, pkg *types.ResolvedPackage, release bool) (time.Duration, error)
}

// Isolator runs one package attempt inside a failure-isolation boundary.
// The only error it returns is an interruption of the run.
type Isolator interface {
	Attempt(ctx context.Context, pkg types.PackageID) (types.Outcome, error)
}

// IndexMirror keeps the local copy of the registry index current
type IndexMirror interface {
	Sync(ctx context.Context) error
}

// ResultStore persists completion markers
type ResultStore interface {
	HasResult(pkg types.PackageID) bool
	Write(pkg types.PackageID, outcome types.Outcome) error
	Clear(pkg types.PackageID) error
}

// StagingStore is the child side of the result store
type StagingStore interface {
	Stage(pkg types.PackageID, outcome types.Outcome) error
}

// RunObserver receives per-package events for metrics and notification
type RunObserver interface {
	ObserveOutcome(pkg types.PackageID, outcome types.Outcome)
	ObserveSkipped(pkg types.PackageID)
}
