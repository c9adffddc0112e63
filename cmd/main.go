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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mkohlmann/storesync/internal/adapters/app"
	"github.com/mkohlmann/storesync/internal/adapters/config"
	"github.com/mkohlmann/storesync/internal/adapters/data/file"
	"github.com/mkohlmann/storesync/internal/adapters/db"
	"github.com/mkohlmann/storesync/internal/adapters/id"
	"github.com/mkohlmann/storesync/internal/adapters/logger"
	"github.com/mkohlmann/storesync/internal/adapters/remote"
	"github.com/mkohlmann/storesync/internal/core/domain"
	"github.com/mkohlmann/storesync/internal/core/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version   = "develop"
	gitCommit = "unknown"

	// Command-line flags
	keepDump         bool
	skipImport       bool
	noCompression    bool
	skipOverrides    bool
	noIgnoreTables   bool
	configOnly       string
	skipCacheClear   bool
	skipPostCommands bool
)

func main() {
	log, err := logger.New("STORESYNC")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	//nolint:errcheck // log.Sync may return an error which is safe to ignore here
	defer log.Sync()

	rootCmd := &cobra.Command{
		Use:   "storesync <environment>",
		Short: "Sync a remote shop database into the local environment",
		Long: "storesync dumps the remote database of a named environment, downloads and\n" +
			"imports it locally, then rewrites domains and configuration for local use.\n\n" +
			"Environments: " + config.EnvProduction + ", " + config.EnvStaging,
		Version: version + " (" + gitCommit + ")",
		Args: func(cmd *cobra.Command, args []string) error {
			if configOnly != "" {
				return cobra.MaximumNArgs(0)(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(workDir)
			if err != nil {
				return err
			}
			if configOnly != "" {
				return runConfigOnly(cmd.Context(), log, cfg)
			}
			return runSync(cmd.Context(), log, cfg, args[0])
		},
	}
	rootCmd.SilenceUsage = true

	rootCmd.Flags().BoolVar(&keepDump, "keep-dump", false, "Keep the local dump file after a successful import")
	rootCmd.Flags().BoolVar(&skipImport, "skip-import", false, "Download the dump but do not import it")
	rootCmd.Flags().BoolVar(&noCompression, "no-compression", false, "Do not gzip the dump on the remote host")
	rootCmd.Flags().BoolVar(&skipOverrides, "skip-overrides", false, "Do not rewrite domains and configuration after import")
	rootCmd.Flags().BoolVar(&noIgnoreTables, "no-ignore-tables", false, "Dump row data of tables listed in ignore_tables too")
	rootCmd.Flags().StringVar(&configOnly, "config-only", "", "Only apply the override file against the local database (optional path)")
	rootCmd.Flags().Lookup("config-only").NoOptDefVal = domain.OverrideFileName
	rootCmd.Flags().BoolVar(&skipCacheClear, "skip-cache-clear", false, "Do not clear the application cache afterwards")
	rootCmd.Flags().BoolVar(&skipPostCommands, "skip-post-commands", false, "Do not run post_sync_commands from the override file")

	if err := rootCmd.Execute(); err != nil {
		printHint(err)
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSync(ctx context.Context, log *zap.SugaredLogger, cfg *config.Config, environment string) error {
	endpoint, err := cfg.Endpoint(environment)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.LocalDB)
	if err != nil {
		return err
	}
	//nolint:errcheck // closing the pool on exit, nothing left to handle
	defer database.Close()

	remoteExec := remote.NewSSHExecutor(log, endpoint)
	pipeline := services.NewSyncPipeline(log, services.PipelineDeps{
		Credentials:  services.NewCredentialService(log, remoteExec, endpoint.RemotePath),
		Dumps:        services.NewDumpService(log, remoteExec, endpoint.RemotePath),
		Transfers:    services.NewTransferService(log, remote.NewSCPTransfer(log, endpoint), remoteExec),
		Importer:     services.NewImportService(log, db.NewClientStreamer(log, cfg.LocalDB)),
		Overrides:    services.NewOverrideService(log, database, id.UUIDGenerator{}),
		PostSync:     services.NewPostSyncService(log, app.NewConsoleRunner(log, app.DefaultConsole, cfg.WorkDir)),
		OverrideRepo: file.NewOverrideRepo(log, domain.OverrideFileName),
		WorkDir:      cfg.WorkDir,
		Mappings:     cfg.Mappings,
		LocalDomain:  cfg.LocalDomain,
		ClearCaches:  cfg.ClearCaches,
	})

	result, err := pipeline.Run(ctx, services.SyncOptions{
		Environment:      environment,
		KeepDump:         keepDump,
		SkipImport:       skipImport,
		Compress:         !noCompression,
		SkipOverrides:    skipOverrides,
		UseIgnoreTables:  !noIgnoreTables,
		SkipCacheClear:   skipCacheClear,
		SkipPostCommands: skipPostCommands,
	})
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func runConfigOnly(ctx context.Context, log *zap.SugaredLogger, cfg *config.Config) error {
	database, err := db.Open(cfg.LocalDB)
	if err != nil {
		return err
	}
	//nolint:errcheck // closing the pool on exit, nothing left to handle
	defer database.Close()

	pipeline := services.NewSyncPipeline(log, services.PipelineDeps{
		Overrides:    services.NewOverrideService(log, database, id.UUIDGenerator{}),
		PostSync:     services.NewPostSyncService(log, app.NewConsoleRunner(log, app.DefaultConsole, cfg.WorkDir)),
		OverrideRepo: file.NewOverrideRepo(log, configOnly),
		WorkDir:      cfg.WorkDir,
		LocalDomain:  cfg.LocalDomain,
		ClearCaches:  cfg.ClearCaches,
	})

	result, err := pipeline.ApplyConfig(ctx, services.SyncOptions{
		SkipCacheClear:   skipCacheClear,
		SkipPostCommands: skipPostCommands,
	})
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func printResult(result *services.SyncResult) {
	if result.Artifact != nil && result.Artifact.LocalPath != "" {
		fmt.Printf("Dump kept at %s\n", result.Artifact.LocalPath)
	}
	if result.Overrides != nil {
		fmt.Printf("Overrides applied: %d domain rows, %d config entries\n",
			result.Overrides.DomainRowsUpdated, result.Overrides.ConfigUpserts)
		for _, failure := range result.Overrides.Failures {
			fmt.Printf("  skipped: %s: %v\n", failure.Step, failure.Err)
		}
	}
	if result.PostSync != nil && len(result.PostSync.Failed) > 0 {
		fmt.Printf("Post-sync commands failed: %s\n", strings.Join(result.PostSync.Failed, ", "))
	}
}

// printHint adds environment-specific remediation for SSH auth and
// connectivity failures.
func printHint(err error) {
	var remoteErr *domain.RemoteConfigError
	if errors.As(err, &remoteErr) && remoteErr.Auth {
		_, _ = fmt.Fprintln(os.Stderr, "Hint: check the SYNC_<ENV>_SSH_* settings and that your key is authorized on the remote host.")
	}
}
