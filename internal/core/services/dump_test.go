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
	"strings"
	"testing"
	"time"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"go.uber.org/zap/zaptest"
)

type fakeRemote struct {
	scripts []domain.Script
	runFn   func(script domain.Script) (string, error)
}

func (f *fakeRemote) Run(_ context.Context, script domain.Script) (string, error) {
	f.scripts = append(f.scripts, script)
	if f.runFn != nil {
		return f.runFn(script)
	}
	return "", nil
}

func testCreds() domain.DBConfig {
	return domain.DBConfig{Host: "db.internal", Port: 3306, Name: "shopdb", User: "shop", Password: "secret"}
}

func newTestDumpService(t *testing.T, remote *fakeRemote) *dumpService {
	t.Helper()
	svc := NewDumpService(zaptest.NewLogger(t).Sugar(), remote, "/var/www/shop")
	svc.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 30, 15, 0, time.UTC)
	}
	return svc
}

func countFlags(argv []string, prefix string) int {
	count := 0
	for _, arg := range argv {
		if strings.HasPrefix(arg, prefix) {
			count++
		}
	}
	return count
}

func TestDumpServiceCreate_IgnoredTablesOnlyInDataPhase(t *testing.T) {
	remote := &fakeRemote{}
	svc := newTestDumpService(t, remote)

	artifact, err := svc.Create(context.Background(), "production", testCreds(),
		[]string{"cart", "log_entry", "session"}, false)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// First call probes the dump tool, second runs the composed dump.
	if len(remote.scripts) != 2 {
		t.Fatalf("expected 2 remote calls, got %d", len(remote.scripts))
	}
	dump := remote.scripts[1]
	if len(dump.Stages) != 2 {
		t.Fatalf("expected 2 stages without compression, got %d", len(dump.Stages))
	}

	structure := dump.Stages[0].Pipeline[0].Argv
	data := dump.Stages[1].Pipeline[0].Argv
	if got := countFlags(structure, "--ignore-table="); got != 0 {
		t.Errorf("structure phase has %d exclusion flags, want 0", got)
	}
	if got := countFlags(data, "--ignore-table="); got != 3 {
		t.Errorf("data phase has %d exclusion flags, want 3", got)
	}

	if dump.Stages[0].Redirect != domain.RedirectCreate || dump.Stages[1].Redirect != domain.RedirectAppend {
		t.Errorf("unexpected redirects: %v then %v", dump.Stages[0].Redirect, dump.Stages[1].Redirect)
	}
	if dump.Stages[0].Target != dump.Stages[1].Target {
		t.Errorf("phases write to different files: %q vs %q", dump.Stages[0].Target, dump.Stages[1].Target)
	}

	expected := "/var/www/shop/sync_production_2025-03-14_093015.sql"
	if artifact.RemotePath != expected {
		t.Errorf("RemotePath = %q, want %q", artifact.RemotePath, expected)
	}
	if artifact.Compressed {
		t.Error("artifact marked compressed without compression")
	}
}

func TestDumpServiceCreate_PhaseFlags(t *testing.T) {
	remote := &fakeRemote{}
	svc := newTestDumpService(t, remote)

	if _, err := svc.Create(context.Background(), "staging", testCreds(), nil, false); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dump := remote.scripts[1]
	structure := strings.Join(dump.Stages[0].Pipeline[0].Argv, " ")
	data := strings.Join(dump.Stages[1].Pipeline[0].Argv, " ")

	for _, flag := range []string{"--no-data", "--routines"} {
		if !strings.Contains(structure, flag) {
			t.Errorf("structure phase missing %s: %s", flag, structure)
		}
	}
	for _, flag := range []string{"--no-create-info", "--skip-triggers"} {
		if !strings.Contains(data, flag) {
			t.Errorf("data phase missing %s: %s", flag, data)
		}
	}

	// Both phases pipe through the definer filter.
	for i, stage := range dump.Stages {
		if len(stage.Pipeline) != 2 || stage.Pipeline[1].Argv[0] != "sed" {
			t.Errorf("stage %d does not pipe through the definer filter", i)
		}
	}
}

func TestDumpServiceCreate_Compression(t *testing.T) {
	remote := &fakeRemote{}
	svc := newTestDumpService(t, remote)

	artifact, err := svc.Create(context.Background(), "production", testCreds(), nil, true)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dump := remote.scripts[1]
	if len(dump.Stages) != 3 {
		t.Fatalf("expected 3 stages with compression, got %d", len(dump.Stages))
	}
	gzipStage := dump.Stages[2].Pipeline[0].Argv
	if gzipStage[0] != "gzip" {
		t.Errorf("final stage = %v, want gzip", gzipStage)
	}
	if !strings.HasSuffix(artifact.RemotePath, ".sql.gz") {
		t.Errorf("RemotePath = %q, want .sql.gz suffix", artifact.RemotePath)
	}
	if !artifact.Compressed {
		t.Error("artifact not marked compressed")
	}
}

func TestDumpServiceCreate_ColumnStatisticsProbe(t *testing.T) {
	remote := &fakeRemote{
		runFn: func(script domain.Script) (string, error) {
			if script.Stages[0].Pipeline[0].Argv[0] == "mysqldump" && len(script.Stages) == 1 {
				return "  --column-statistics  Whether to collect statistics\n", nil
			}
			return "", nil
		},
	}
	svc := newTestDumpService(t, remote)

	if _, err := svc.Create(context.Background(), "production", testCreds(), nil, false); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dump := remote.scripts[1]
	for i, stage := range dump.Stages {
		if countFlags(stage.Pipeline[0].Argv, columnStatisticsFlag) != 1 {
			t.Errorf("stage %d missing %s", i, columnStatisticsFlag)
		}
	}
}

func TestDumpServiceCreate_RemoteFailure(t *testing.T) {
	remote := &fakeRemote{
		runFn: func(script domain.Script) (string, error) {
			if len(script.Stages) > 1 {
				return "", &domain.CommandError{ExitCode: 2, Stderr: "mysqldump: Access denied\n"}
			}
			return "", nil
		},
	}
	svc := newTestDumpService(t, remote)

	artifact, err := svc.Create(context.Background(), "production", testCreds(), nil, false)
	var dumpErr *domain.DumpError
	if !errors.As(err, &dumpErr) {
		t.Fatalf("Create() error = %v, want *domain.DumpError", err)
	}
	if dumpErr.Stderr != "mysqldump: Access denied" {
		t.Errorf("Stderr = %q, want remote stderr verbatim", dumpErr.Stderr)
	}

	// The structure phase may already have created the remote file before a
	// later phase failed; the caller needs its path to clean up.
	if artifact == nil {
		t.Fatal("Create() artifact = nil, want partial artifact for cleanup")
	}
	if artifact.RemotePath != "/var/www/shop/sync_production_2025-03-14_093015.sql" {
		t.Errorf("RemotePath = %q", artifact.RemotePath)
	}
}

func TestDumpServiceCreate_MissingDatabaseName(t *testing.T) {
	svc := newTestDumpService(t, &fakeRemote{})

	_, err := svc.Create(context.Background(), "production", domain.DBConfig{Host: "h"}, nil, false)
	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Create() error = %v, want *domain.ConfigError", err)
	}
}
