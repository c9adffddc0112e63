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
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"github.com/mkohlmann/storesync/internal/core/ports"
	"go.uber.org/zap"
)

const (
	dumpTimestampLayout  = "2006-01-02_150405"
	columnStatisticsFlag = "--column-statistics=0"
)

// definerFilterCommand strips definer clauses in both the versioned-comment
// form (/*!50017 DEFINER=`u`@`h` */) and the bare form, so the dump imports
// on a differently-provisioned server.
var definerFilterCommand = domain.Command{Argv: []string{
	"sed", "-E",
	"-e", `s/\/\*![0-9]* *DEFINER=[^*]*\*\///g`,
	"-e", `s/DEFINER=[^ ]* *//g`,
}}

type dumpService struct {
	logger     *zap.SugaredLogger
	remote     ports.RemoteExecutor
	remotePath string
	now        func() time.Time
}

// NewDumpService creates the remote dump orchestrator.
func NewDumpService(logger *zap.SugaredLogger, remote ports.RemoteExecutor, remotePath string) *dumpService {
	return &dumpService{
		logger:     logger,
		remote:     remote,
		remotePath: remotePath,
		now:        time.Now,
	}
}

// Create produces a single dump file on the remote host: a structure-only
// phase (tables, triggers, routines) followed by a data-only phase with the
// ignored tables excluded, both piped through the definer filter, then
// optionally gzip-compressed. All phases run as one remote round trip. On a
// failed run the artifact is still returned alongside the error; a later
// phase can die after an earlier one created the remote file, and the caller
// needs the path to remove the partial dump.
func (s *dumpService) Create(ctx context.Context, environment string, creds domain.DBConfig, ignoreTables []string, compress bool) (*domain.DumpArtifact, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	disableStats := s.probeColumnStatistics(ctx)

	fileName := fmt.Sprintf("sync_%s_%s.sql", environment, s.now().Format(dumpTimestampLayout))
	remoteFile := path.Join(s.remotePath, fileName)

	structure := domain.Command{Argv: s.dumpArgs(creds, disableStats,
		"--no-data", "--routines")}
	data := domain.Command{Argv: s.dumpArgs(creds, disableStats,
		append([]string{"--no-create-info", "--skip-triggers"}, exclusionFlags(creds.Name, ignoreTables)...)...)}

	stages := []domain.Stage{
		{Pipeline: []domain.Command{structure, definerFilterCommand}, Redirect: domain.RedirectCreate, Target: remoteFile},
		{Pipeline: []domain.Command{data, definerFilterCommand}, Redirect: domain.RedirectAppend, Target: remoteFile},
	}
	if compress {
		stages = append(stages, domain.Cmd("gzip", "-f", remoteFile))
	}

	s.logger.Infow("creating remote dump", "file", remoteFile, "ignored_tables", len(ignoreTables), "compress", compress)

	artifact := &domain.DumpArtifact{RemotePath: remoteFile}

	dumpCtx, cancel := context.WithTimeout(ctx, longTimeout)
	defer cancel()
	if _, err := s.remote.Run(dumpCtx, domain.NewScript(stages...)); err != nil {
		var cmdErr *domain.CommandError
		if errors.As(err, &cmdErr) {
			return artifact, &domain.DumpError{Stderr: strings.TrimSpace(cmdErr.Stderr), Err: err}
		}
		return artifact, &domain.DumpError{Err: err}
	}

	if compress {
		artifact.RemotePath += ".gz"
		artifact.Compressed = true
	}
	return artifact, nil
}

// probeColumnStatistics checks whether the remote dump tool knows the
// column-statistics flag, which newer clients must disable against older
// servers. Probe failures only mean the flag is left out.
func (s *dumpService) probeColumnStatistics(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	out, err := s.remote.Run(probeCtx, domain.NewScript(domain.Cmd("mysqldump", "--help")))
	if err != nil {
		s.logger.Debugw("dump tool probe failed", "error", err)
		return false
	}
	return strings.Contains(out, "column-statistics")
}

func (s *dumpService) dumpArgs(creds domain.DBConfig, disableStats bool, phaseFlags ...string) []string {
	args := []string{"mysqldump"}
	args = append(args, phaseFlags...)
	if disableStats {
		args = append(args, columnStatisticsFlag)
	}
	args = append(args,
		"--host", creds.Host,
		"--port", strconv.Itoa(creds.Port),
		"--user", creds.User,
		"--password="+creds.Password,
		creds.Name,
	)
	return args
}

// exclusionFlags builds one --ignore-table flag per ignored table. Used by
// the data phase only; the structure phase always covers every table.
func exclusionFlags(database string, tables []string) []string {
	flags := make([]string, 0, len(tables))
	for _, table := range tables {
		flags = append(flags, "--ignore-table="+database+"."+table)
	}
	return flags
}
