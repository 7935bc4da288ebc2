package types_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cratesweep/cratesweep/pkg/types"
)

func TestPackageID_String(t *testing.T) {
	tests := []struct {
		id   types.PackageID
		want string
	}{
		{types.PackageID{Name: "serde"}, "serde"},
		{types.PackageID{Name: "serde", Version: "1.0.0"}, "serde=1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.id.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPackageSet_KeepsDuplicatesInOrder(t *testing.T) {
	set := types.PackageSet{{Name: "b"}, {Name: "a"}, {Name: "b"}}
	got := strings.Join(set.Strings(), ",")
	if got != "b,a,b" {
		t.Errorf("Strings() = %q, want %q", got, "b,a,b")
	}
}

func TestParseIsolationMode(t *testing.T) {
	tests := []struct {
		in      string
		want    types.IsolationMode
		wantErr bool
	}{
		{"", types.IsolationProcess, false},
		{"process", types.IsolationProcess, false},
		{"InProcess", types.IsolationInProcess, false},
		{"thread", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := types.ParseIsolationMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIsolationMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseIsolationMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRunConfig_Validate(t *testing.T) {
	cfg := types.DefaultRunConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg.OutputDir = " "
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty output directory")
	}

	cfg = types.DefaultRunConfig()
	cfg.Timeout = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative timeout")
	}
}

func TestLayout(t *testing.T) {
	l := types.NewLayout("work")
	if l.IndexDir() != filepath.Join("work", "index") {
		t.Errorf("unexpected index dir %s", l.IndexDir())
	}
	if len(l.SetupDirs()) != 5 {
		t.Errorf("expected 5 setup dirs, got %d", len(l.SetupDirs()))
	}
}

func TestOutcome_Constructors(t *testing.T) {
	tests := []struct {
		name    string
		outcome types.Outcome
		kind    types.OutcomeKind
	}{
		{"success", types.Success(time.Second, nil, nil), types.OutcomeSuccess},
		{"not found", types.NotFound("missing"), types.OutcomeNotFound},
		{"download", types.DownloadFailed("timeout"), types.OutcomeDownloadFailed},
		{"build", types.BuildFailed("exit 101"), types.OutcomeBuildFailed},
		{"test", types.TestFailed("exit 101"), types.OutcomeTestFailed},
		{"crash", types.Crashed("boom"), types.OutcomeCrashed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.outcome.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, tt.outcome.Kind)
			}
			if !tt.outcome.Kind.Valid() {
				t.Errorf("kind %s should be valid", tt.outcome.Kind)
			}
		})
	}
}

func TestCrashed_DefaultMessage(t *testing.T) {
	if got := types.Crashed("").Message; got != types.DefaultCrashMessage {
		t.Errorf("expected default crash message, got %q", got)
	}
}

func TestOutcome_String(t *testing.T) {
	o := types.Success(1500*time.Millisecond, types.DurationPtr(2*time.Second), nil)
	if got := o.String(); got != "success (build 1.5s, test 2s)" {
		t.Errorf("unexpected summary %q", got)
	}
	if got := types.BuildFailed("exit 101").String(); got != "build-failed: exit 101" {
		t.Errorf("unexpected summary %q", got)
	}
}

func TestSetupError(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("run: %w", types.NewSetupError("create output dir", cause))

	if !types.IsSetupError(err) {
		t.Error("expected wrapped setup error to be detected")
	}
	if !errors.Is(err, cause) {
		t.Error("expected setup error to unwrap to its cause")
	}
	if types.IsSetupError(cause) {
		t.Error("plain error must not be a setup error")
	}
}
