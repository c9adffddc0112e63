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

package ports

import (
	"context"
	"io"

	"github.com/mkohlmann/storesync/internal/core/domain"
)

// RemoteExecutor runs a structured script on the configured remote host and
// returns its stdout. A non-zero exit is reported as *domain.CommandError.
type RemoteExecutor interface {
	Run(ctx context.Context, script domain.Script) (string, error)
}

// FileTransfer copies a remote file to a local path in bulk.
type FileTransfer interface {
	Download(ctx context.Context, remotePath, localPath string) error
}

// SQLStreamer feeds a SQL stream to the local database client.
type SQLStreamer interface {
	Stream(ctx context.Context, r io.Reader) error
}

// Database executes statements against the local database. Exec returns the
// number of affected rows; QueryString returns a single string column and
// whether a row was found.
type Database interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	QueryString(ctx context.Context, query string, args ...any) (string, bool, error)
}

// AppCommander dispatches an opaque command string to the host
// application's command runner.
type AppCommander interface {
	Run(ctx context.Context, command string) error
}

// OverrideRepository loads the declarative override file. The boolean is
// false when the file does not exist.
type OverrideRepository interface {
	Load() (*domain.OverrideFile, bool, error)
}

// IDGenerator produces unique identifiers for inserted configuration rows.
// Injected so tests can supply deterministic IDs.
type IDGenerator interface {
	NewID() string
}
