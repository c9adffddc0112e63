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

package services

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"github.com/mkohlmann/storesync/internal/core/ports"
	"go.uber.org/zap"
)

type transferService struct {
	logger   *zap.SugaredLogger
	transfer ports.FileTransfer
	remote   ports.RemoteExecutor
}

// NewTransferService creates the dump download stage.
func NewTransferService(logger *zap.SugaredLogger, transfer ports.FileTransfer, remote ports.RemoteExecutor) *transferService {
	return &transferService{
		logger:   logger,
		transfer: transfer,
		remote:   remote,
	}
}

// Fetch downloads the remote dump into destDir and then removes the remote
// copy regardless of the download outcome. The local file must exist and be
// non-empty afterwards, guarding against silently empty transfers.
func (s *transferService) Fetch(ctx context.Context, artifact *domain.DumpArtifact, destDir string) error {
	localPath := filepath.Join(destDir, path.Base(artifact.RemotePath))

	downloadCtx, cancel := context.WithTimeout(ctx, longTimeout)
	downloadErr := s.transfer.Download(downloadCtx, artifact.RemotePath, localPath)
	cancel()

	s.Cleanup(ctx, artifact)

	if downloadErr != nil {
		return &domain.TransferError{Reason: "download of " + artifact.RemotePath + " failed", Err: downloadErr}
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return &domain.TransferError{Reason: "downloaded file missing at " + localPath, Err: err}
	}
	if info.Size() == 0 {
		return &domain.TransferError{Reason: "downloaded file is empty at " + localPath}
	}

	artifact.LocalPath = localPath
	s.logger.Infow("dump downloaded", "path", localPath, "size_bytes", info.Size())
	return nil
}

// Cleanup deletes the remote dump file. Best effort: a failure is logged,
// never fatal, never retried.
func (s *transferService) Cleanup(ctx context.Context, artifact *domain.DumpArtifact) {
	if artifact == nil || artifact.RemotePath == "" {
		return
	}

	cleanupCtx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	if _, err := s.remote.Run(cleanupCtx, domain.NewScript(domain.Cmd("rm", "-f", artifact.RemotePath))); err != nil {
		s.logger.Warnw("failed to delete remote dump", "path", artifact.RemotePath, "error", err)
		return
	}
	artifact.RemotePath = ""
}
