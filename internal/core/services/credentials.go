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
	"path"
	"strings"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"github.com/mkohlmann/storesync/internal/core/ports"
	"go.uber.org/zap"
)

// authFailurePatterns are matched against SSH stderr to tell auth and
// connectivity failures apart from generic remote errors.
var authFailurePatterns = []string{
	"permission denied",
	"host key verification failed",
	"connection refused",
	"connection timed out",
	"no route to host",
}

type credentialService struct {
	logger     *zap.SugaredLogger
	remote     ports.RemoteExecutor
	remotePath string
}

// NewCredentialService creates a fetcher for the remote application's
// database credentials.
func NewCredentialService(logger *zap.SugaredLogger, remote ports.RemoteExecutor, remotePath string) *credentialService {
	return &credentialService{
		logger:     logger,
		remote:     remote,
		remotePath: remotePath,
	}
}

// Fetch reads <remotePath>/.env on the remote host and parses it into a
// DBConfig. The resulting database name must be non-empty.
func (s *credentialService) Fetch(ctx context.Context) (domain.DBConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	envPath := path.Join(s.remotePath, ".env")
	out, err := s.remote.Run(ctx, domain.NewScript(domain.Cmd("cat", envPath)))
	if err != nil {
		auth := isAuthFailure(err)
		s.logger.Errorw("failed to read remote env file", "path", envPath, "auth", auth, "error", err)
		return domain.DBConfig{}, &domain.RemoteConfigError{
			Reason: "could not read " + envPath,
			Auth:   auth,
			Err:    err,
		}
	}

	cfg := domain.ParseEnvFile(out)
	if cfg.Name == "" {
		return domain.DBConfig{}, &domain.RemoteConfigError{
			Reason: "no database name found in " + envPath,
		}
	}

	s.logger.Infow("remote credentials resolved", "host", cfg.Host, "port", cfg.Port, "database", cfg.Name)
	return cfg, nil
}

// isAuthFailure reports whether the error looks like an SSH auth or
// connectivity problem rather than a generic remote failure.
func isAuthFailure(err error) bool {
	var cmdErr *domain.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	stderr := strings.ToLower(cmdErr.Stderr)
	for _, pattern := range authFailurePatterns {
		if strings.Contains(stderr, pattern) {
			return true
		}
	}
	return false
}
