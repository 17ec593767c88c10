// Package procgroup runs external tools in their own process group so a
// cancelled or timed out job can stop the tool and anything it spawned.
package procgroup

import (
	"context"
	"errors"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Set configures cmd to start as the leader of a new process group. Commands
// built with exec.CommandContext are cancelled by signalling the whole group
// with SIGTERM instead of killing only the leader.
func Set(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	if cmd.Cancel != nil {
		cmd.Cancel = func() error {
			return Signal(cmd, unix.SIGTERM)
		}
	}
}

// Signal delivers sig to the process group led by cmd. A group that has
// already exited is not an error.
func Signal(cmd *exec.Cmd, sig unix.Signal) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	err := unix.Kill(-cmd.Process.Pid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

// Terminate sends SIGTERM to the group, waits up to grace for waitCh to
// report exit, then sends SIGKILL and waits again. It always consumes one
// value from waitCh and returns it.
func Terminate(cmd *exec.Cmd, waitCh <-chan error, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	_ = Signal(cmd, unix.SIGTERM)

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case err := <-waitCh:
		return err
	case <-timer.C:
	}
	_ = Signal(cmd, unix.SIGKILL)
	return <-waitCh
}

// Start launches cmd in a new process group and returns a channel that
// receives the result of Wait exactly once.
func Start(cmd *exec.Cmd) (<-chan error, error) {
	Set(cmd)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()
	return waitCh, nil
}

// Run starts cmd and waits for it. If ctx ends first the group is terminated
// and ctx.Err() is returned.
func Run(ctx context.Context, cmd *exec.Cmd, grace time.Duration) error {
	waitCh, err := Start(cmd)
	if err != nil {
		return err
	}
	select {
	case err := <-waitCh:
		return err
	case <-ctx.Done():
		_ = Terminate(cmd, waitCh, grace)
		return ctx.Err()
	}
}
