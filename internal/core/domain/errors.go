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

package domain

import "fmt"

// ConfigError reports missing or invalid local configuration. The pipeline
// never starts when one is raised.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Reason
}

// RemoteConfigError reports a failure to fetch or parse the remote env file.
// Auth is set for auth/connectivity-class SSH failures, which warrant a
// different user hint than generic failures.
type RemoteConfigError struct {
	Reason string
	Auth   bool
	Err    error
}

func (e *RemoteConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote config: %s: %v", e.Reason, e.Err)
	}
	return "remote config: " + e.Reason
}

func (e *RemoteConfigError) Unwrap() error { return e.Err }

// DumpError reports a failed remote dump. Stderr carries the remote error
// output verbatim.
type DumpError struct {
	Stderr string
	Err    error
}

func (e *DumpError) Error() string {
	if e.Stderr != "" {
		return "dump: " + e.Stderr
	}
	return fmt.Sprintf("dump: %v", e.Err)
}

func (e *DumpError) Unwrap() error { return e.Err }

// TransferError reports a failed or silently empty download.
type TransferError struct {
	Reason string
	Err    error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transfer: %s: %v", e.Reason, e.Err)
	}
	return "transfer: " + e.Reason
}

func (e *TransferError) Unwrap() error { return e.Err }

// ImportError reports a failed local import. A partial import is not rolled
// back; the sync must be re-run.
type ImportError struct {
	Stderr string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Stderr != "" {
		return "import: " + e.Stderr
	}
	return fmt.Sprintf("import: %v", e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// OverrideError reports a file-level problem with the declarative override
// file. Individual override or SQL failures are recoverable and never raise
// one.
type OverrideError struct {
	Reason string
	Err    error
}

func (e *OverrideError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("overrides: %s: %v", e.Reason, e.Err)
	}
	return "overrides: " + e.Reason
}

func (e *OverrideError) Unwrap() error { return e.Err }

// CommandError is returned by subprocess adapters when the process exits
// non-zero, carrying the captured stderr for classification and reporting.
type CommandError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command exited with status %d: %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("command exited with status %d: %v", e.ExitCode, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
