//go:build unix

package isolation

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// redirectSupported reports whether in-process isolation can capture stdio
const redirectSupported = true

// redirectStdio points file descriptors 1 and 2 at stdout and stderr. The
// returned restore function puts the original descriptors back and is safe
// to call more than once.
func redirectStdio(stdout, stderr *os.File) (restore func() error, err error) {
	targets := []struct {
		fd   int
		file *os.File
	}{
		{fd: unix.Stdout, file: stdout},
		{fd: unix.Stderr, file: stderr},
	}

	saved := make([]int, 0, len(targets))
	restore = func() error {
		var first error
		for i := len(saved) - 1; i >= 0; i-- {
			if saved[i] < 0 {
				continue
			}
			if err := dupTo(saved[i], targets[i].fd); err != nil && first == nil {
				first = fmt.Errorf("failed to restore fd %d: %w", targets[i].fd, err)
			}
			unix.Close(saved[i])
			saved[i] = -1
		}
		return first
	}

	// Flush anything buffered for the terminal before the descriptors move
	_ = os.Stdout.Sync()
	_ = os.Stderr.Sync()

	for _, t := range targets {
		orig, err := unix.Dup(t.fd)
		if err != nil {
			restore()
			return nil, fmt.Errorf("failed to save fd %d: %w", t.fd, err)
		}
		saved = append(saved, orig)
		if err := dupTo(int(t.file.Fd()), t.fd); err != nil {
			restore()
			return nil, fmt.Errorf("failed to redirect fd %d: %w", t.fd, err)
		}
	}
	return restore, nil
}
