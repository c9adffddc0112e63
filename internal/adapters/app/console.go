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

package app

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"go.uber.org/zap"
)

// DefaultConsole is the host application's command entry point, relative to
// the project working directory.
const DefaultConsole = "bin/console"

// ConsoleRunner dispatches opaque command strings to the host application's
// console. The command content is the application's business; this adapter
// only splits it into arguments and runs it.
type ConsoleRunner struct {
	logger     *zap.SugaredLogger
	console    string
	workDir    string
	newCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewConsoleRunner creates a runner for the console binary in workDir.
func NewConsoleRunner(logger *zap.SugaredLogger, console, workDir string) *ConsoleRunner {
	return &ConsoleRunner{
		logger:     logger,
		console:    console,
		workDir:    workDir,
		newCommand: exec.CommandContext,
	}
}

// Run executes one application command.
func (r *ConsoleRunner) Run(ctx context.Context, command string) error {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil
	}

	cmd := r.newCommand(ctx, r.console, args...)
	cmd.Dir = r.workDir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	r.logger.Debugw("running application command", "command", command)

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &domain.CommandError{ExitCode: exitCode, Stderr: output.String(), Err: err}
	}
	return nil
}
