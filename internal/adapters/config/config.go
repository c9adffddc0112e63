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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mkohlmann/storesync/internal/core/domain"
)

// Environment names selectable on the command line.
const (
	EnvProduction = "production"
	EnvStaging    = "staging"
)

// Config is the explicit configuration object handed to every component at
// construction. It is resolved once from the process environment (merged
// with the project .env when present) so the core never reads globals.
type Config struct {
	WorkDir      string
	Environments map[string]domain.Endpoint
	LocalDB      domain.DBConfig
	LocalDomain  string
	Mappings     []domain.DomainMapping
	ClearCaches  bool
}

// Load resolves the configuration from workDir. A project .env file is
// loaded into the process environment first; existing variables win.
func Load(workDir string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(workDir, ".env"))

	cfg := &Config{
		WorkDir:      workDir,
		Environments: map[string]domain.Endpoint{},
		LocalDomain:  os.Getenv("SYNC_LOCAL_DOMAIN"),
		Mappings:     domain.ParseDomainMappings(os.Getenv("SYNC_DOMAIN_MAPPING")),
		ClearCaches:  boolEnvOrDefault("SYNC_CLEAR_CACHES", true),
	}

	for _, name := range []string{EnvProduction, EnvStaging} {
		cfg.Environments[name] = loadEndpoint(name)
	}

	localDB, err := loadLocalDB()
	if err != nil {
		return nil, err
	}
	cfg.LocalDB = localDB

	return cfg, nil
}

// Endpoint returns the validated SSH target of a named environment.
func (c *Config) Endpoint(name string) (domain.Endpoint, error) {
	endpoint, ok := c.Environments[name]
	if !ok {
		return domain.Endpoint{}, &domain.ConfigError{
			Reason: fmt.Sprintf("unknown environment %q, expected one of: %s", name, strings.Join(c.EnvironmentNames(), ", ")),
		}
	}
	if err := endpoint.Validate(); err != nil {
		return domain.Endpoint{}, err
	}
	return endpoint, nil
}

// EnvironmentNames lists the selectable environments in stable order.
func (c *Config) EnvironmentNames() []string {
	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func loadEndpoint(name string) domain.Endpoint {
	prefix := "SYNC_" + strings.ToUpper(name) + "_"
	return domain.Endpoint{
		Host:       os.Getenv(prefix + "SSH_HOST"),
		Port:       intEnvOrDefault(prefix+"SSH_PORT", domain.DefaultSSHPort),
		User:       os.Getenv(prefix + "SSH_USER"),
		KeyPath:    os.Getenv(prefix + "SSH_KEY"),
		RemotePath: os.Getenv(prefix + "REMOTE_PATH"),
	}
}

// loadLocalDB resolves the local connection the way the application itself
// would: DATABASE_URL when set, discrete DATABASE_* variables otherwise.
func loadLocalDB() (domain.DBConfig, error) {
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg, err := domain.ParseDatabaseURL(raw)
		if err != nil {
			return domain.DBConfig{}, &domain.ConfigError{Reason: err.Error()}
		}
		return cfg, nil
	}

	return domain.DBConfig{
		Host:     getEnvOrDefault("DATABASE_HOST", "127.0.0.1"),
		Port:     intEnvOrDefault("DATABASE_PORT", domain.DefaultMySQLPort),
		Name:     os.Getenv("DATABASE_NAME"),
		User:     os.Getenv("DATABASE_USER"),
		Password: os.Getenv("DATABASE_PASSWORD"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func intEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func boolEnvOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
