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
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"github.com/mkohlmann/storesync/internal/core/ports"
	"go.uber.org/zap"
)

// Session-level settings traded for import throughput. They relax integrity
// checking for the session only; a failed import is not rolled back and must
// be treated as a failed sync.
const (
	importPrelude = "SET FOREIGN_KEY_CHECKS=0;\n" +
		"SET UNIQUE_CHECKS=0;\n" +
		"SET SESSION sql_mode='NO_AUTO_VALUE_ON_ZERO';\n"

	importEpilogue = "\nSET FOREIGN_KEY_CHECKS=1;\n" +
		"SET UNIQUE_CHECKS=1;\n"
)

type importService struct {
	logger   *zap.SugaredLogger
	streamer ports.SQLStreamer
}

// NewImportService creates the local import stage.
func NewImportService(logger *zap.SugaredLogger, streamer ports.SQLStreamer) *importService {
	return &importService{
		logger:   logger,
		streamer: streamer,
	}
}

// Load streams the dump file into the local database. Every dump byte passes
// decompression (when needed) and the definer filter before it reaches the
// client, framed by the session prelude and epilogue.
func (s *importService) Load(ctx context.Context, artifact *domain.DumpArtifact) error {
	file, err := os.Open(artifact.LocalPath)
	if err != nil {
		return &domain.ImportError{Err: err}
	}
	defer func() { _ = file.Close() }()

	var body io.Reader = file
	if artifact.Compressed {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return &domain.ImportError{Err: err}
		}
		defer func() { _ = gz.Close() }()
		body = gz
	}

	stream := io.MultiReader(
		strings.NewReader(importPrelude),
		newDefinerFilter(body),
		strings.NewReader(importEpilogue),
	)

	s.logger.Infow("importing dump", "path", artifact.LocalPath, "compressed", artifact.Compressed)

	importCtx, cancel := context.WithTimeout(ctx, longTimeout)
	defer cancel()
	if err := s.streamer.Stream(importCtx, stream); err != nil {
		var cmdErr *domain.CommandError
		if errors.As(err, &cmdErr) {
			return &domain.ImportError{Stderr: strings.TrimSpace(cmdErr.Stderr), Err: err}
		}
		return &domain.ImportError{Err: err}
	}
	return nil
}
