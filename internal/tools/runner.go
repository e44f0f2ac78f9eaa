// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandResult captures one subprocess execution. Created per
// invocation, consumed into a result string, not retained.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Runner executes shell commands with a hard wall-clock timeout. The
// whole process group is killed on timeout or cancellation so no
// children are leaked. Fire-and-forget: no streaming, no stdin.
type Runner struct {
	Timeout time.Duration
}

// NewRunner returns a runner with the given timeout, defaulting when
// non-positive.
func NewRunner(timeout time.Duration) Runner {
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return Runner{Timeout: timeout}
}

// Run executes command through the shell in dir. A timed-out run is a
// valid result, not an error; cancellation and start failures are
// errors.
func (r Runner) Run(ctx context.Context, command, dir string) (CommandResult, error) {
	var res CommandResult

	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return res, fmt.Errorf("failed to start command: %v", err)
	}

	timer := time.NewTimer(r.Timeout)
	defer timer.Stop()
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		killProcessGroup(cmd)
		<-done
		return res, ctx.Err()
	case <-timer.C:
		killProcessGroup(cmd)
		<-done
		// Partial output is dropped: a timed-out run is reported
		// distinctly, not merged with whatever the process printed.
		res.TimedOut = true
		return res, nil
	case err := <-done:
		res.Stdout = stdout.String()
		res.Stderr = stderr.String()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else if err != nil {
			return res, fmt.Errorf("command failed: %v", err)
		}
		return res, nil
	}
}

// Format renders a result in the fixed stdout/stderr/exit-code order
// the model is prompted to expect.
func (r Runner) Format(res CommandResult) string {
	if res.TimedOut {
		return fmt.Sprintf("Command timed out after %d seconds", int(r.Timeout.Seconds()))
	}

	var parts []string
	if res.Stdout != "" {
		parts = append(parts, fmt.Sprintf("STDOUT:\n%s", res.Stdout))
	}
	if res.Stderr != "" {
		parts = append(parts, fmt.Sprintf("STDERR:\n%s", res.Stderr))
	}
	parts = append(parts, fmt.Sprintf("Exit code: %d", res.ExitCode))
	return strings.Join(parts, "\n")
}

func (r *Registry) runCommand(ctx context.Context, args map[string]interface{}) (string, error) {
	if err := ensureContext(ctx); err != nil {
		return "", err
	}

	var req runCommandArgs
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	dir := r.ws.Root()
	if strings.TrimSpace(req.Cwd) != "" {
		dir = r.ws.Resolve(req.Cwd)
	}

	res, err := r.runner.Run(ctx, req.Command, dir)
	if err != nil {
		return "", fmt.Errorf("error executing command: %v", err)
	}
	return r.runner.Format(res), nil
}
