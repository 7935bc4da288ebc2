//go:build linux

package isolation

import "golang.org/x/sys/unix"

// dupTo points fd newfd at oldfd. linux/arm64 has no dup2, so dup3 is used
// everywhere on linux.
func dupTo(oldfd, newfd int) error {
	return unix.Dup3(oldfd, newfd, 0)
}
