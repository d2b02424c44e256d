//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package harness

import (
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const killWaitDelay = 10 * time.Second

// configureKill puts the child in its own process group so a timeout also
// reaps anything the benchmark host spawned.
func configureKill(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = killWaitDelay
}
