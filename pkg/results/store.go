// Package results provides the durable per-package result store that makes
// a run resumable
package results

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cratesweep/cratesweep/pkg/types"
	"github.com/cratesweep/cratesweep/pkg/utils"
)

const (
	markerFile = "results.txt"
	stagedFile = "staged.txt"
	stdoutFile = "stdout"
	stderrFile = "stderr"
)

// ErrNoResult is returned when a package has no recorded result
var ErrNoResult = errors.New("no result recorded")

// Store maps package identifiers to result markers and captured stdio:
//
//	<root>/stdio/<pkg>/stdout
//	<root>/stdio/<pkg>/stderr
//	<root>/results/<pkg>/results.txt
//
// A marker is only ever written by Write, atomically, so its presence
// means the attempt reached a terminal outcome.
type Store struct {
	layout types.Layout
	now    func() time.Time
}

// NewStore creates a store rooted at the run's output directory
func NewStore(outputDir string) *Store {
	return &Store{
		layout: types.NewLayout(outputDir),
		now:    time.Now,
	}
}

func (s *Store) resultDir(pkg types.PackageID) string {
	return filepath.Join(s.layout.ResultsDir(), utils.PathComponent(pkg.String()))
}

func (s *Store) stdioDir(pkg types.PackageID) string {
	return filepath.Join(s.layout.StdioDir(), utils.PathComponent(pkg.String()))
}

// MarkerPath returns the completion marker path for pkg
func (s *Store) MarkerPath(pkg types.PackageID) string {
	return filepath.Join(s.resultDir(pkg), markerFile)
}

// StagedPath returns the path a re-invoked child stages its outcome at
func (s *Store) StagedPath(pkg types.PackageID) string {
	return filepath.Join(s.resultDir(pkg), stagedFile)
}

// StdoutPath returns the captured standard output path for pkg
func (s *Store) StdoutPath(pkg types.PackageID) string {
	return filepath.Join(s.stdioDir(pkg), stdoutFile)
}

// StderrPath returns the captured standard error path for pkg
func (s *Store) StderrPath(pkg types.PackageID) string {
	return filepath.Join(s.stdioDir(pkg), stderrFile)
}

// HasResult reports whether a completion marker exists for pkg
func (s *Store) HasResult(pkg types.PackageID) bool {
	return utils.FileExists(s.MarkerPath(pkg))
}

// Write records the outcome of pkg. It must be the last filesystem action
// of an attempt: callers close the capture files first. Any staged outcome
// is discarded before the marker is written.
func (s *Store) Write(pkg types.PackageID, outcome types.Outcome) error {
	data, err := NewRecord(pkg, outcome, s.now()).Encode()
	if err != nil {
		return err
	}
	if err := utils.RemoveIfExists(s.StagedPath(pkg)); err != nil {
		return fmt.Errorf("failed to remove staged result for %s: %w", pkg, err)
	}
	if err := utils.WriteFileAtomic(s.MarkerPath(pkg), data, 0644); err != nil {
		return fmt.Errorf("failed to write result for %s: %w", pkg, err)
	}
	return nil
}

// Read loads the recorded result of pkg
func (s *Store) Read(pkg types.PackageID) (Record, error) {
	return readRecord(s.MarkerPath(pkg))
}

// Clear deletes the marker, any staged outcome and the captured stdio of pkg
func (s *Store) Clear(pkg types.PackageID) error {
	for _, path := range []string{s.MarkerPath(pkg), s.StagedPath(pkg), s.StdoutPath(pkg), s.StderrPath(pkg)} {
		if err := utils.RemoveIfExists(path); err != nil {
			return fmt.Errorf("failed to clear %s: %w", path, err)
		}
	}
	return nil
}

// Stage hands an outcome from a re-invoked child to its parent. A staged
// outcome never counts as a result.
func (s *Store) Stage(pkg types.PackageID, outcome types.Outcome) error {
	data, err := NewRecord(pkg, outcome, s.now()).Encode()
	if err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(s.StagedPath(pkg), data, 0644); err != nil {
		return fmt.Errorf("failed to stage result for %s: %w", pkg, err)
	}
	return nil
}

// ReadStaged returns the staged outcome of pkg, if any
func (s *Store) ReadStaged(pkg types.PackageID) (types.Outcome, bool, error) {
	r, err := readRecord(s.StagedPath(pkg))
	if errors.Is(err, ErrNoResult) {
		return types.Outcome{}, false, nil
	}
	if err != nil {
		return types.Outcome{}, false, err
	}
	o, err := r.ToOutcome()
	if err != nil {
		return types.Outcome{}, false, err
	}
	return o, true, nil
}

// DiscardStaged removes a staged outcome without recording it
func (s *Store) DiscardStaged(pkg types.PackageID) error {
	return utils.RemoveIfExists(s.StagedPath(pkg))
}

// PrepareStdio creates the stdio directory and opens both capture files,
// truncated
func (s *Store) PrepareStdio(pkg types.PackageID) (stdout, stderr *os.File, err error) {
	stdout, err = utils.CreateTruncated(s.StdoutPath(pkg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stdout capture: %w", err)
	}
	stderr, err = utils.CreateTruncated(s.StderrPath(pkg))
	if err != nil {
		stdout.Close()
		return nil, nil, fmt.Errorf("failed to open stderr capture: %w", err)
	}
	return stdout, stderr, nil
}

// List loads every recorded result, sorted by package
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.layout.ResultsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	var records []Record
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		r, err := readRecord(filepath.Join(s.layout.ResultsDir(), e.Name(), markerFile))
		if errors.Is(err, ErrNoResult) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Package < records[j].Package })
	return records, nil
}

func readRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, ErrNoResult
		}
		return Record{}, err
	}
	return DecodeRecord(data)
}
