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

package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"go.uber.org/zap/zaptest"
)

func TestOverrideRepoLoad_MissingFile(t *testing.T) {
	repo := NewOverrideRepo(zaptest.NewLogger(t).Sugar(), filepath.Join(t.TempDir(), ".storesync.json"))

	file, exists, err := repo.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if exists || file != nil {
		t.Errorf("Load() = (%v, %v), want (nil, false)", file, exists)
	}
}

func TestOverrideRepoLoad_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".storesync.json")
	content := `{
		"ignore_tables": ["cart"],
		"system_config": {"core.feature": true},
		"sql_updates": ["UPDATE a SET b = 1"],
		"post_sync_commands": ["cache:clear"]
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	repo := NewOverrideRepo(zaptest.NewLogger(t).Sugar(), path)
	file, exists, err := repo.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !exists {
		t.Fatal("Load() exists = false, want true")
	}
	if len(file.IgnoreTables) != 1 || file.IgnoreTables[0] != "cart" {
		t.Errorf("IgnoreTables = %v", file.IgnoreTables)
	}
	if file.SystemConfig["core.feature"].Value != true {
		t.Errorf("SystemConfig = %v", file.SystemConfig)
	}
}

func TestOverrideRepoLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".storesync.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	repo := NewOverrideRepo(zaptest.NewLogger(t).Sugar(), path)
	_, _, err := repo.Load()

	var overrideErr *domain.OverrideError
	if !errors.As(err, &overrideErr) {
		t.Fatalf("Load() error = %v, want *domain.OverrideError", err)
	}
}
