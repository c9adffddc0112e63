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
	"time"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"github.com/mkohlmann/storesync/internal/core/ports"
	"go.uber.org/zap"
)

type credentialFetcher interface {
	Fetch(ctx context.Context) (domain.DBConfig, error)
}

type dumpCreator interface {
	Create(ctx context.Context, environment string, creds domain.DBConfig, ignoreTables []string, compress bool) (*domain.DumpArtifact, error)
}

type dumpFetcher interface {
	Fetch(ctx context.Context, artifact *domain.DumpArtifact, destDir string) error
	Cleanup(ctx context.Context, artifact *domain.DumpArtifact)
}

type dumpLoader interface {
	Load(ctx context.Context, artifact *domain.DumpArtifact) error
}

type overrideApplier interface {
	Apply(ctx context.Context, file *domain.OverrideFile, mappings []domain.DomainMapping, localDomain string) *OverrideReport
}

type postSyncRunner interface {
	Run(ctx context.Context, commands []string, clearCache bool) *PostSyncReport
}

// PipelineDeps wires the stage services and environment-derived settings
// into the pipeline.
type PipelineDeps struct {
	Credentials  credentialFetcher
	Dumps        dumpCreator
	Transfers    dumpFetcher
	Importer     dumpLoader
	Overrides    overrideApplier
	PostSync     postSyncRunner
	OverrideRepo ports.OverrideRepository

	WorkDir     string
	Mappings    []domain.DomainMapping
	LocalDomain string
	ClearCaches bool
}

// SyncOptions is the per-invocation flag surface.
type SyncOptions struct {
	Environment      string
	KeepDump         bool
	SkipImport       bool
	Compress         bool
	SkipOverrides    bool
	UseIgnoreTables  bool
	SkipCacheClear   bool
	SkipPostCommands bool
}

// SyncResult reports what the pipeline did. Override and post-sync failures
// are recoverable and surface here instead of failing the run.
type SyncResult struct {
	Artifact  *domain.DumpArtifact
	Overrides *OverrideReport
	PostSync  *PostSyncReport
}

type syncPipeline struct {
	logger *zap.SugaredLogger
	deps   PipelineDeps
}

// NewSyncPipeline creates the sequential sync pipeline.
func NewSyncPipeline(logger *zap.SugaredLogger, deps PipelineDeps) *syncPipeline {
	return &syncPipeline{
		logger: logger,
		deps:   deps,
	}
}

// Run executes the stages in order: credential fetch, dump, transfer,
// import, overrides, post-sync. Each stage runs only if the previous one
// succeeded; the remote dump is cleaned up in every outcome once it exists.
// On failure the local dump file is kept for inspection.
func (p *syncPipeline) Run(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	result := &SyncResult{}
	started := time.Now()

	file, fileExists, err := p.deps.OverrideRepo.Load()
	if err != nil {
		return result, err
	}

	var ignoreTables []string
	if fileExists && opts.UseIgnoreTables {
		ignoreTables = file.IgnoreTables
	}

	creds, err := p.deps.Credentials.Fetch(ctx)
	if err != nil {
		return result, err
	}

	artifact, err := p.deps.Dumps.Create(ctx, opts.Environment, creds, ignoreTables, opts.Compress)
	result.Artifact = artifact
	if err != nil {
		// A later dump phase can fail after an earlier one already created
		// the remote file; remove the partial dump before giving up.
		p.deps.Transfers.Cleanup(ctx, artifact)
		return result, err
	}

	// Fetch removes the remote copy itself, in every outcome.
	if err := p.deps.Transfers.Fetch(ctx, artifact, p.deps.WorkDir); err != nil {
		return result, err
	}

	if opts.SkipImport {
		p.logger.Infow("import skipped, local dump retained", "path", artifact.LocalPath)
		return result, nil
	}

	if err := p.deps.Importer.Load(ctx, artifact); err != nil {
		p.logger.Errorw("import failed, local dump kept for inspection", "path", artifact.LocalPath, "error", err)
		return result, err
	}

	if !opts.KeepDump {
		if err := os.Remove(artifact.LocalPath); err != nil {
			p.logger.Warnw("failed to remove local dump", "path", artifact.LocalPath, "error", err)
		} else {
			artifact.LocalPath = ""
		}
	}

	if !opts.SkipOverrides {
		var overrideFile *domain.OverrideFile
		if fileExists {
			overrideFile = file
		}
		result.Overrides = p.deps.Overrides.Apply(ctx, overrideFile, p.deps.Mappings, p.deps.LocalDomain)
	}

	var commands []string
	if fileExists && !opts.SkipPostCommands {
		commands = file.PostSyncCommands
	}
	result.PostSync = p.deps.PostSync.Run(ctx, commands, p.deps.ClearCaches && !opts.SkipCacheClear)

	p.logger.Infow("sync finished", "environment", opts.Environment, "duration", time.Since(started).Round(time.Second).String())
	return result, nil
}

// ApplyConfig runs only the declarative-file overrides and the post-sync
// commands against the local database, without touching the remote host.
func (p *syncPipeline) ApplyConfig(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	result := &SyncResult{}

	file, exists, err := p.deps.OverrideRepo.Load()
	if err != nil {
		return result, err
	}
	if !exists {
		return result, &domain.OverrideError{Reason: "override file not found"}
	}

	result.Overrides = p.deps.Overrides.Apply(ctx, file, nil, p.deps.LocalDomain)

	var commands []string
	if !opts.SkipPostCommands {
		commands = file.PostSyncCommands
	}
	result.PostSync = p.deps.PostSync.Run(ctx, commands, p.deps.ClearCaches && !opts.SkipCacheClear)
	return result, nil
}
