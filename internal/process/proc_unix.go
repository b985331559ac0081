//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup puts the child in its own group so package managers
// that fork (npx, uvx) are terminated together with their children.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}
