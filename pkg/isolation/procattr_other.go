//go:build !unix

package isolation

import (
	"os/exec"
	"time"
)

func configureChild(cmd *exec.Cmd) {
	cmd.WaitDelay = 10 * time.Second
}
