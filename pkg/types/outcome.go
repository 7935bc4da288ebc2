package types

import (
	"fmt"
	"time"
)

// OutcomeKind is the terminal classification of one package attempt
type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeNotFound       OutcomeKind = "not-found"
	OutcomeDownloadFailed OutcomeKind = "download-failed"
	OutcomeBuildFailed    OutcomeKind = "build-failed"
	OutcomeTestFailed     OutcomeKind = "test-failed"
	OutcomeCrashed        OutcomeKind = "crashed"
)

// OutcomeKinds lists every outcome kind in reporting order
var OutcomeKinds = []OutcomeKind{
	OutcomeSuccess,
	OutcomeNotFound,
	OutcomeDownloadFailed,
	OutcomeBuildFailed,
	OutcomeTestFailed,
	OutcomeCrashed,
}

// Valid reports whether k is one of the known outcome kinds
func (k OutcomeKind) Valid() bool {
	for _, known := range OutcomeKinds {
		if k == known {
			return true
		}
	}
	return false
}

// DefaultCrashMessage is used when a crash carries no diagnostic text
const DefaultCrashMessage = "attempt terminated abnormally"

// Outcome is the result of attempting one package. Only the fields that
// belong to Kind are set: timings for success, Message for every failure.
type Outcome struct {
	Kind      OutcomeKind
	BuildTime time.Duration
	TestTime  *time.Duration
	BenchTime *time.Duration
	Message   string
}

// Success creates a success outcome. test and bench are nil when the
// stage did not run or, for bench, did not succeed.
func Success(build time.Duration, test, bench *time.Duration) Outcome {
	return Outcome{Kind: OutcomeSuccess, BuildTime: build, TestTime: test, BenchTime: bench}
}

// NotFound creates a not-found outcome
func NotFound(message string) Outcome {
	return Outcome{Kind: OutcomeNotFound, Message: message}
}

// DownloadFailed creates a download-failed outcome
func DownloadFailed(cause string) Outcome {
	return Outcome{Kind: OutcomeDownloadFailed, Message: cause}
}

// BuildFailed creates a build-failed outcome
func BuildFailed(message string) Outcome {
	return Outcome{Kind: OutcomeBuildFailed, Message: message}
}

// TestFailed creates a test-failed outcome
func TestFailed(message string) Outcome {
	return Outcome{Kind: OutcomeTestFailed, Message: message}
}

// Crashed creates a crashed outcome, falling back to a generic message
func Crashed(message string) Outcome {
	if message == "" {
		message = DefaultCrashMessage
	}
	return Outcome{Kind: OutcomeCrashed, Message: message}
}

// IsSuccess reports whether the attempt succeeded
func (o Outcome) IsSuccess() bool {
	return o.Kind == OutcomeSuccess
}

// String renders a one-line summary suitable for console progress
func (o Outcome) String() string {
	if o.Kind != OutcomeSuccess {
		if o.Message == "" {
			return string(o.Kind)
		}
		return fmt.Sprintf("%s: %s", o.Kind, o.Message)
	}
	s := fmt.Sprintf("%s (build %s", o.Kind, o.BuildTime.Round(time.Millisecond))
	if o.TestTime != nil {
		s += fmt.Sprintf(", test %s", o.TestTime.Round(time.Millisecond))
	}
	if o.BenchTime != nil {
		s += fmt.Sprintf(", bench %s", o.BenchTime.Round(time.Millisecond))
	}
	return s + ")"
}

// DurationPtr returns a pointer to d
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}
