package command

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// runFunc runs a program and returns its standard output, standard error and exit code.
type runFunc func(ctx context.Context, name string, args []string, env []string, timeout time.Duration) (stdout string, stderr string, exitCode int, err error)

// runLocalCommand executes a local command with an optional timeout.
// It captures the command's standard output, standard error, and exit code.
//
// Parameters:
//   - ctx: cancels the command when done.
//   - name, args: the program and its arguments.
//   - env: the complete environment of the command.
//   - timeout: the timeout for the command. If 0, no timeout is applied.
//
// Returns:
//   - stdout: The standard output of the command as a string.
//   - stderr: The standard error of the command as a string.
//   - exitCode: The exit code of the command. -1 if the command did not exit normally.
//   - err: An error object if the command fails to execute, exits non-zero or times out.
func runLocalCommand(ctx context.Context, name string, args []string, env []string, timeout time.Duration) (stdout string, stderr string, exitCode int, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 // nosemgrep
	cmd.Env = env
	slog.Debug("running local command", slog.String("cmd", cmd.String()), slog.Duration("timeout", timeout))
	var outbuf, errbuf strings.Builder
	cmd.Stdout = &outbuf
	cmd.Stderr = &errbuf
	err = cmd.Run()
	stdout = outbuf.String()
	stderr = errbuf.String()
	if err != nil {
		exitCode = -1
		exitError := &exec.ExitError{}
		if errors.As(err, &exitError) {
			exitCode = exitError.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
	}
	return
}
