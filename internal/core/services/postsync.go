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

	"github.com/mkohlmann/storesync/internal/core/ports"
	"go.uber.org/zap"
)

// cacheClearCommand is the host application's cache invalidation command.
const cacheClearCommand = "cache:clear"

// PostSyncReport lists follow-up commands that failed. Failures are for
// caller visibility only; they never fail the pipeline.
type PostSyncReport struct {
	Failed []string
}

type postSyncService struct {
	logger *zap.SugaredLogger
	app    ports.AppCommander
}

// NewPostSyncService creates the follow-up command runner.
func NewPostSyncService(logger *zap.SugaredLogger, app ports.AppCommander) *postSyncService {
	return &postSyncService{
		logger: logger,
		app:    app,
	}
}

// Run optionally clears the application cache, then dispatches each
// configured command in order and in isolation. A failing command is
// reported and does not stop subsequent commands.
func (s *postSyncService) Run(ctx context.Context, commands []string, clearCache bool) *PostSyncReport {
	report := &PostSyncReport{}

	if clearCache {
		s.dispatch(ctx, cacheClearCommand, report)
	}
	for _, command := range commands {
		if command == "" {
			continue
		}
		s.dispatch(ctx, command, report)
	}
	return report
}

func (s *postSyncService) dispatch(ctx context.Context, command string, report *PostSyncReport) {
	if err := s.app.Run(ctx, command); err != nil {
		s.logger.Warnw("post-sync command failed", "command", command, "error", err)
		report.Failed = append(report.Failed, command)
		return
	}
	s.logger.Infow("post-sync command finished", "command", command)
}
