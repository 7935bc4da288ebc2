// Package state records which run owns an output directory. Two runs
// sharing one directory would race on the same result markers, so a run
// holds an exclusive lock for as long as it attempts packages.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// LockFile is the name of the lock inside the output directory
const LockFile = ".cratesweep.lock"

// ErrLocked is returned when another live run holds the lock
var ErrLocked = errors.New("output directory is in use by another run")

var errNoOwner = errors.New("lock file records no owner")

// Owner describes the run holding the lock
type Owner struct {
	ProcessID int       `yaml:"pid"`
	RunID     string    `yaml:"run_id,omitempty"`
	StartedAt time.Time `yaml:"started_at"`
}

// RunLock is an acquired lock. Release it when the run ends.
type RunLock struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	released bool
}

// Acquire takes the lock of dir for the current process
func Acquire(dir, runID string) (*RunLock, error) {
	path := filepath.Join(dir, LockFile)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := lockFile(f); err != nil {
		f.Close()
		if errors.Is(err, errWouldBlock) {
			if owner, rerr := ReadOwner(dir); rerr == nil {
				return nil, fmt.Errorf("%w (pid %d, run %s, since %s)", ErrLocked, owner.ProcessID, owner.RunID, owner.StartedAt.Format(time.RFC3339))
			}
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}

	owner := Owner{ProcessID: os.Getpid(), RunID: runID, StartedAt: time.Now().UTC().Truncate(time.Second)}
	if err := writeOwner(f, owner); err != nil {
		f.Close()
		return nil, err
	}
	return &RunLock{path: path, file: f}, nil
}

func writeOwner(f *os.File, owner Owner) error {
	data, err := yaml.Marshal(owner)
	if err != nil {
		return fmt.Errorf("failed to encode lock owner: %w", err)
	}
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate lock file: %w", err)
	}
	if _, err := f.WriteAt(data, 0); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	return f.Sync()
}

// ReadOwner returns the owner recorded in the lock file of dir
func ReadOwner(dir string) (Owner, error) {
	data, err := os.ReadFile(filepath.Join(dir, LockFile))
	if err != nil {
		return Owner{}, err
	}
	if len(data) == 0 {
		return Owner{}, errNoOwner
	}
	var owner Owner
	if err := yaml.Unmarshal(data, &owner); err != nil {
		return Owner{}, fmt.Errorf("failed to decode lock file: %w", err)
	}
	return owner, nil
}

// Release clears the owner record and drops the lock. The file itself
// stays: every run must lock the same inode. It is safe to call more than
// once.
func (l *RunLock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return nil
	}
	l.released = true

	truncErr := l.file.Truncate(0)
	if err := l.file.Close(); err != nil {
		return err
	}
	return truncErr
}
