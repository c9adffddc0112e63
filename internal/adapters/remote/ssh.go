// Copyright 2025.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package remote

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"go.uber.org/zap"
)

// SSHExecutor runs structured scripts on a fixed endpoint through the ssh
// binary in batch mode.
type SSHExecutor struct {
	logger     *zap.SugaredLogger
	endpoint   domain.Endpoint
	newCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewSSHExecutor creates an executor bound to the given endpoint.
func NewSSHExecutor(logger *zap.SugaredLogger, endpoint domain.Endpoint) *SSHExecutor {
	return &SSHExecutor{
		logger:     logger,
		endpoint:   endpoint,
		newCommand: exec.CommandContext,
	}
}

// Run renders the script, executes it remotely and returns its stdout.
// Non-zero exits come back as *domain.CommandError carrying stderr.
func (e *SSHExecutor) Run(ctx context.Context, script domain.Script) (string, error) {
	args := sshArgs(e.endpoint)
	args = append(args, RenderScript(script))

	cmd := e.newCommand(ctx, "ssh", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debugw("running remote command", "host", e.endpoint.Host, "args", len(args))

	if err := cmd.Run(); err != nil {
		return stdout.String(), commandError(err, stderr.String())
	}
	return stdout.String(), nil
}

func sshArgs(endpoint domain.Endpoint) []string {
	args := []string{
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=10",
	}
	if endpoint.Port != 0 && endpoint.Port != domain.DefaultSSHPort {
		args = append(args, "-p", strconv.Itoa(endpoint.Port))
	}
	if endpoint.KeyPath != "" {
		args = append(args, "-i", endpoint.KeyPath)
	}
	return append(args, endpoint.User+"@"+endpoint.Host)
}

func commandError(err error, stderr string) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return &domain.CommandError{ExitCode: exitCode, Stderr: stderr, Err: err}
}
