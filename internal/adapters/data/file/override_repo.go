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
	"encoding/json"
	"os"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"go.uber.org/zap"
)

type overrideRepo struct {
	logger *zap.SugaredLogger
	path   string
}

// NewOverrideRepo creates a loader for the declarative override file at the
// given path.
func NewOverrideRepo(logger *zap.SugaredLogger, path string) *overrideRepo {
	return &overrideRepo{
		logger: logger,
		path:   path,
	}
}

// Load reads the override file fresh; it is never cached across runs. A
// missing file is not an error, a malformed one is fatal for the run.
func (r *overrideRepo) Load() (*domain.OverrideFile, bool, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &domain.OverrideError{Reason: "could not read " + r.path, Err: err}
	}

	var file domain.OverrideFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, false, &domain.OverrideError{Reason: "malformed override file " + r.path, Err: err}
	}

	r.logger.Debugw("override file loaded", "path", r.path,
		"ignore_tables", len(file.IgnoreTables),
		"sql_updates", len(file.SQLUpdates),
		"post_sync_commands", len(file.PostSyncCommands))
	return &file, true, nil
}
