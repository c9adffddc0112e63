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
	"os/exec"
	"strconv"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"go.uber.org/zap"
)

// SCPTransfer downloads files from a fixed endpoint through the scp binary,
// reusing the endpoint's SSH parameters.
type SCPTransfer struct {
	logger     *zap.SugaredLogger
	endpoint   domain.Endpoint
	newCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewSCPTransfer creates a transfer bound to the given endpoint.
func NewSCPTransfer(logger *zap.SugaredLogger, endpoint domain.Endpoint) *SCPTransfer {
	return &SCPTransfer{
		logger:     logger,
		endpoint:   endpoint,
		newCommand: exec.CommandContext,
	}
}

// Download copies remotePath to localPath.
func (t *SCPTransfer) Download(ctx context.Context, remotePath, localPath string) error {
	args := []string{
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=10",
	}
	if t.endpoint.Port != 0 && t.endpoint.Port != domain.DefaultSSHPort {
		args = append(args, "-P", strconv.Itoa(t.endpoint.Port))
	}
	if t.endpoint.KeyPath != "" {
		args = append(args, "-i", t.endpoint.KeyPath)
	}
	args = append(args, t.endpoint.User+"@"+t.endpoint.Host+":"+remotePath, localPath)

	cmd := t.newCommand(ctx, "scp", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	t.logger.Debugw("downloading remote file", "remote", remotePath, "local", localPath)

	if err := cmd.Run(); err != nil {
		return commandError(err, stderr.String())
	}
	return nil
}
