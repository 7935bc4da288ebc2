package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/cratesweep/cratesweep/pkg/assemble"
	"github.com/cratesweep/cratesweep/pkg/driver"
	"github.com/cratesweep/cratesweep/pkg/isolation"
	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/mocks"
	"github.com/cratesweep/cratesweep/pkg/results"
	"github.com/cratesweep/cratesweep/pkg/types"
)

// scriptedIsolator returns a fixed outcome per package name and records
// every attempt
type scriptedIsolator struct {
	outcomes  map[string]types.Outcome
	interrupt string
	attempts  []string
}

func (s *scriptedIsolator) Attempt(ctx context.Context, pkg types.PackageID) (types.Outcome, error) {
	s.attempts = append(s.attempts, pkg.String())
	if pkg.Name == s.interrupt {
		return types.Outcome{}, isolation.ErrInterrupted
	}
	if o, ok := s.outcomes[pkg.Name]; ok {
		return o, nil
	}
	return types.Success(time.Second, nil, nil), nil
}

func newDriver(t *testing.T, cfg types.RunConfig, store *mocks.MockResultStore, iso *scriptedIsolator) *driver.Driver {
	t.Helper()
	return driver.New(cfg, driver.Dependencies{
		Assembler: assemble.New(t.TempDir()),
		Store:     store,
		Isolator:  iso,
		Logger:    logger.Discard(),
	})
}

func TestDriver_RecordsOneOutcomePerPackage(t *testing.T) {
	store := mocks.NewMockResultStore()
	iso := &scriptedIsolator{outcomes: map[string]types.Outcome{
		"missing": types.NotFound("crate `missing` not in registry"),
		"broken":  types.BuildFailed("cargo build failed"),
		"crashy":  types.Crashed("child signal: killed"),
	}}
	observer := mocks.NewMockRunObserver()

	d := driver.New(types.DefaultRunConfig(), driver.Dependencies{
		Assembler: assemble.New(t.TempDir()),
		Store:     store,
		Isolator:  iso,
		Observer:  observer,
		Logger:    logger.Discard(),
	})

	summary, err := d.Run(context.Background(), []string{"serde", "missing", "broken", "crashy", "rand=0.8"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantWrites := []types.PackageID{
		{Name: "serde"}, {Name: "missing"}, {Name: "broken"}, {Name: "crashy"}, {Name: "rand", Version: "0.8"},
	}
	if got := store.Writes(); !reflect.DeepEqual(got, wantWrites) {
		t.Errorf("writes = %v, want %v", got, wantWrites)
	}

	if summary.Attempted() != 5 || summary.Outcomes[types.OutcomeSuccess] != 2 {
		t.Errorf("unexpected summary %s", summary)
	}
	if !summary.Failed() {
		t.Error("summary with failures should report Failed")
	}
	if o, _ := store.Outcome(types.PackageID{Name: "crashy"}); o.Kind != types.OutcomeCrashed {
		t.Errorf("crash in one package must be recorded as crashed, got %s", o)
	}
	if observer.Count(types.OutcomeBuildFailed) != 1 || observer.Count(types.OutcomeSuccess) != 2 {
		t.Error("observer did not see every outcome")
	}
}

func TestDriver_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockResultStore()
	specs := []string{"serde", "rand"}

	first := &scriptedIsolator{}
	if _, err := newDriver(t, types.DefaultRunConfig(), store, first).Run(context.Background(), specs); err != nil {
		t.Fatal(err)
	}

	// No expectations: any attempt fails the test
	iso := mocks.NewMockIsolator(ctrl)
	d := driver.New(types.DefaultRunConfig(), driver.Dependencies{
		Assembler: assemble.New(t.TempDir()),
		Store:     store,
		Isolator:  iso,
		Logger:    logger.Discard(),
	})
	summary, err := d.Run(context.Background(), specs)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 2 || summary.Attempted() != 0 {
		t.Errorf("second run should skip everything, got %s", summary)
	}
	if len(store.Writes()) != 2 {
		t.Errorf("expected no new writes, got %d total", len(store.Writes()))
	}
}

func TestDriver_Force(t *testing.T) {
	store := mocks.NewMockResultStore()
	serde := types.PackageID{Name: "serde"}
	store.Seed(serde, types.BuildFailed("old failure"))

	cfg := types.DefaultRunConfig()
	cfg.Force = true
	iso := &scriptedIsolator{}

	summary, err := newDriver(t, cfg, store, iso).Run(context.Background(), []string{"serde"})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 0 || len(iso.attempts) != 1 {
		t.Fatalf("force must re-attempt, got %s with %d attempts", summary, len(iso.attempts))
	}
	if got := store.Clears(); len(got) != 1 || got[0] != serde {
		t.Errorf("expected one clear of serde, got %v", got)
	}
	if o, _ := store.Outcome(serde); !o.IsSuccess() {
		t.Errorf("forced result should replace the old one, got %s", o)
	}
}

func TestDriver_InterruptLeavesPackageUnrecorded(t *testing.T) {
	store := mocks.NewMockResultStore()
	iso := &scriptedIsolator{interrupt: "b"}

	_, err := newDriver(t, types.DefaultRunConfig(), store, iso).Run(context.Background(), []string{"a", "b", "c"})
	if !errors.Is(err, isolation.ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if got := store.Writes(); len(got) != 1 || got[0].Name != "a" {
		t.Errorf("only a should be recorded, got %v", got)
	}
	if len(iso.attempts) != 2 {
		t.Errorf("the loop must stop after the interruption, got attempts %v", iso.attempts)
	}
}

func TestDriver_CancelledContextStopsBeforeAttempt(t *testing.T) {
	store := mocks.NewMockResultStore()
	iso := &scriptedIsolator{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newDriver(t, types.DefaultRunConfig(), store, iso).Run(ctx, []string{"a"})
	if !errors.Is(err, isolation.ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if len(iso.attempts) != 0 {
		t.Error("no attempt should start after cancellation")
	}
}

func TestDriver_WriteFailureIsFatal(t *testing.T) {
	store := mocks.NewMockResultStore()
	store.SetWriteError(errors.New("no space left on device"))
	iso := &scriptedIsolator{}

	_, err := newDriver(t, types.DefaultRunConfig(), store, iso).Run(context.Background(), []string{"a", "b"})
	if err == nil || !strings.Contains(err.Error(), "no space left") {
		t.Fatalf("expected write failure, got %v", err)
	}
	if len(iso.attempts) != 1 {
		t.Errorf("the loop must stop at the first write failure, got %v", iso.attempts)
	}
}

func TestDriver_RejectedSpecsDoNotStopTheRun(t *testing.T) {
	store := mocks.NewMockResultStore()
	iso := &scriptedIsolator{}

	summary, err := newDriver(t, types.DefaultRunConfig(), store, iso).Run(context.Background(), []string{"=1.0", "serde", "a b"})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Rejected != 2 || summary.Attempted() != 1 {
		t.Errorf("unexpected summary %s", summary)
	}
}

// TestDriver_Resumable interrupts a run against the real store, then
// reruns it: completed packages are not attempted again.
func TestDriver_Resumable(t *testing.T) {
	cfg := types.DefaultRunConfig()
	cfg.OutputDir = t.TempDir()
	store := results.NewStore(cfg.OutputDir)
	specs := []string{"a", "b", "c"}

	run := func(iso *scriptedIsolator) error {
		d := driver.New(cfg, driver.Dependencies{
			Assembler: assemble.New(t.TempDir()),
			Store:     store,
			Isolator:  iso,
			Logger:    logger.Discard(),
		})
		_, err := d.Run(context.Background(), specs)
		return err
	}

	if err := run(&scriptedIsolator{interrupt: "b"}); !errors.Is(err, isolation.ErrInterrupted) {
		t.Fatalf("expected interruption, got %v", err)
	}

	second := &scriptedIsolator{}
	if err := run(second); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(second.attempts, []string{"b", "c"}) {
		t.Errorf("resumed run attempted %v, want [b c]", second.attempts)
	}

	records, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("expected one record per package, got %d", len(records))
	}
}

func TestDriver_Setup(t *testing.T) {
	ctrl := gomock.NewController(t)
	mirror := mocks.NewMockIndexMirror(ctrl)
	mirror.EXPECT().Sync(gomock.Any()).Return(nil)

	cfg := types.DefaultRunConfig()
	cfg.OutputDir = filepath.Join(t.TempDir(), "work")

	d := driver.New(cfg, driver.Dependencies{Mirror: mirror, Logger: logger.Discard()})
	if err := d.Setup(context.Background()); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	for _, dir := range types.NewLayout(cfg.OutputDir).SetupDirs() {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}
}

func TestDriver_SetupFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mirror := mocks.NewMockIndexMirror(ctrl)
	mirror.EXPECT().Sync(gomock.Any()).Return(errors.New("git clone failed"))

	cfg := types.DefaultRunConfig()
	cfg.OutputDir = t.TempDir()

	err := driver.New(cfg, driver.Dependencies{Mirror: mirror}).Setup(context.Background())
	var setupErr *types.SetupError
	if !errors.As(err, &setupErr) {
		t.Fatalf("expected *types.SetupError, got %T: %v", err, err)
	}
	if setupErr.Step != "sync index" {
		t.Errorf("step = %q", setupErr.Step)
	}
}

func TestDriver_RunChild(t *testing.T) {
	store := mocks.NewMockResultStore()
	d := driver.New(types.DefaultRunConfig(), driver.Dependencies{
		Assembler: assemble.New(t.TempDir()),
		Staging:   store,
		Attempt: func(ctx context.Context, pkg types.PackageID) types.Outcome {
			if pkg.Name == "panics" {
				panic("unwrap on None")
			}
			return types.TestFailed("1 test failed")
		},
		Logger: logger.Discard(),
	})

	if err := d.RunChild(context.Background(), []string{"serde"}); err != nil {
		t.Fatal(err)
	}
	if o, ok := store.Staged(types.PackageID{Name: "serde"}); !ok || o.Kind != types.OutcomeTestFailed {
		t.Errorf("expected staged test failure, got %v %s", ok, o)
	}

	if err := d.RunChild(context.Background(), []string{"panics"}); err != nil {
		t.Fatal(err)
	}
	o, ok := store.Staged(types.PackageID{Name: "panics"})
	if !ok || o.Kind != types.OutcomeCrashed || o.Message != "panic: unwrap on None" {
		t.Errorf("expected staged crash, got %v %s", ok, o)
	}
	if store.HasResult(types.PackageID{Name: "serde"}) {
		t.Error("the child must never write a marker")
	}
}

func TestSummary_String(t *testing.T) {
	s := driver.Summary{
		Outcomes: map[types.OutcomeKind]int{types.OutcomeSuccess: 2, types.OutcomeCrashed: 1},
		Skipped:  4,
	}
	want := "3 attempted (2 success, 1 crashed), 4 skipped"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
