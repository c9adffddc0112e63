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

const (
	// DefaultSSHPort is used when an environment does not configure one.
	DefaultSSHPort = 22

	// DefaultMySQLPort is used when a connection URL or env file omits the port.
	DefaultMySQLPort = 3306
)

// Endpoint describes the SSH target of a named sync environment.
type Endpoint struct {
	Host       string
	Port       int
	User       string
	KeyPath    string
	RemotePath string
}

// Validate checks the fields required before any remote operation.
func (e Endpoint) Validate() error {
	if e.Host == "" {
		return &ConfigError{Reason: "ssh host is not configured"}
	}
	if e.User == "" {
		return &ConfigError{Reason: "ssh user is not configured"}
	}
	if e.RemotePath == "" {
		return &ConfigError{Reason: "remote project path is not configured"}
	}
	return nil
}

// DBConfig holds the connection settings of a MySQL-dialect database.
// Two instances exist per run: the local one resolved from the active
// connection settings and the remote one parsed from the fetched env file.
type DBConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// Validate checks the fields required before a dump or import.
func (c DBConfig) Validate() error {
	if c.Name == "" {
		return &ConfigError{Reason: "database name is not configured"}
	}
	return nil
}

// DumpArtifact is the dump file produced on the remote host. Ownership
// transfers stage to stage: the Dump Orchestrator creates it, the Transfer
// Manager downloads it and removes the remote copy, the Import Engine
// consumes the local copy.
type DumpArtifact struct {
	RemotePath string
	LocalPath  string
	Compressed bool
}
