package mocks

import (
	"sync"

	"github.com/cratesweep/cratesweep/pkg/types"
)

// MockResultStore is an in-memory ResultStore for driver tests
type MockResultStore struct {
	mu         sync.RWMutex
	results    map[types.PackageID]types.Outcome
	staged     map[types.PackageID]types.Outcome
	writes     []types.PackageID
	clears     []types.PackageID
	writeError error
	clearError error
}

// NewMockResultStore creates an empty mock result store
func NewMockResultStore() *MockResultStore {
	return &MockResultStore{
		results: make(map[types.PackageID]types.Outcome),
		staged:  make(map[types.PackageID]types.Outcome),
	}
}

// HasResult reports whether an outcome was written for pkg
func (m *MockResultStore) HasResult(pkg types.PackageID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.results[pkg]
	return ok
}

// Write records the outcome of pkg
func (m *MockResultStore) Write(pkg types.PackageID, outcome types.Outcome) error {
	if m.writeError != nil {
		return m.writeError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.results[pkg] = outcome
	m.writes = append(m.writes, pkg)
	delete(m.staged, pkg)
	return nil
}

// Clear forgets the outcome of pkg
func (m *MockResultStore) Clear(pkg types.PackageID) error {
	if m.clearError != nil {
		return m.clearError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.results, pkg)
	delete(m.staged, pkg)
	m.clears = append(m.clears, pkg)
	return nil
}

// Stage records a staged outcome for pkg
func (m *MockResultStore) Stage(pkg types.PackageID, outcome types.Outcome) error {
	if m.writeError != nil {
		return m.writeError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged[pkg] = outcome
	return nil
}

// Seed marks pkg as already completed without counting a write
func (m *MockResultStore) Seed(pkg types.PackageID, outcome types.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[pkg] = outcome
}

// Outcome returns the recorded outcome of pkg
func (m *MockResultStore) Outcome(pkg types.PackageID) (types.Outcome, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.results[pkg]
	return o, ok
}

// Staged returns the staged outcome of pkg
func (m *MockResultStore) Staged(pkg types.PackageID) (types.Outcome, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.staged[pkg]
	return o, ok
}

// Writes returns every package written, in order
func (m *MockResultStore) Writes() []types.PackageID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.PackageID(nil), m.writes...)
}

// Clears returns every package cleared, in order
func (m *MockResultStore) Clears() []types.PackageID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.PackageID(nil), m.clears...)
}

// SetWriteError sets the error to return from Write and Stage
func (m *MockResultStore) SetWriteError(err error) {
	m.writeError = err
}

// SetClearError sets the error to return from Clear
func (m *MockResultStore) SetClearError(err error) {
	m.clearError = err
}

// MockRunObserver records observed events
type MockRunObserver struct {
	mu       sync.Mutex
	outcomes map[types.OutcomeKind]int
	skipped  int
}

// NewMockRunObserver creates an empty observer
func NewMockRunObserver() *MockRunObserver {
	return &MockRunObserver{outcomes: make(map[types.OutcomeKind]int)}
}

// ObserveOutcome counts an outcome
func (m *MockRunObserver) ObserveOutcome(pkg types.PackageID, outcome types.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome.Kind]++
}

// ObserveSkipped counts a skipped package
func (m *MockRunObserver) ObserveSkipped(pkg types.PackageID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped++
}

// Count returns how many outcomes of kind were observed
func (m *MockRunObserver) Count(kind types.OutcomeKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[kind]
}

// Skipped returns how many packages were skipped
func (m *MockRunObserver) Skipped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skipped
}
