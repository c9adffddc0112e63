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

package db

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"go.uber.org/zap"
)

// ClientStreamer feeds a SQL stream to the mysql client binary. The dump is
// streamed on stdin so no statement ever passes through a shell.
type ClientStreamer struct {
	logger     *zap.SugaredLogger
	cfg        domain.DBConfig
	newCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewClientStreamer creates a streamer for the local database.
func NewClientStreamer(logger *zap.SugaredLogger, cfg domain.DBConfig) *ClientStreamer {
	return &ClientStreamer{
		logger:     logger,
		cfg:        cfg,
		newCommand: exec.CommandContext,
	}
}

// Stream pipes r into the mysql client. A non-zero exit is reported as
// *domain.CommandError with the captured stderr.
func (s *ClientStreamer) Stream(ctx context.Context, r io.Reader) error {
	args := []string{
		"--host", s.cfg.Host,
		"--port", strconv.Itoa(s.cfg.Port),
		"--user", s.cfg.User,
		s.cfg.Name,
	}

	cmd := s.newCommand(ctx, "mysql", args...)
	cmd.Stdin = r
	// The password goes through the environment, keeping it off the
	// process list.
	cmd.Env = append(os.Environ(), "MYSQL_PWD="+s.cfg.Password)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &domain.CommandError{ExitCode: exitCode, Stderr: stderr.String(), Err: err}
	}
	return nil
}
