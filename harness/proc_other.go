//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package harness

import (
	"os/exec"
	"time"
)

const killWaitDelay = 10 * time.Second

func configureKill(cmd *exec.Cmd) {
	cmd.WaitDelay = killWaitDelay
}
