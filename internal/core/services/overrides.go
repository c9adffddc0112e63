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
	"sort"
	"strings"
	"time"

	"github.com/mkohlmann/storesync/internal/core/domain"
	"github.com/mkohlmann/storesync/internal/core/ports"
	"go.uber.org/zap"
)

// appURLConfigKey is the system_config entry holding the application's
// public URL.
const appURLConfigKey = "core.app.url"

const (
	domainRewriteQuery = `UPDATE sales_channel_domain SET url = ? WHERE url IN (?, ?, ?, ?, ?, ?)`

	fallbackRewriteQuery = `UPDATE sales_channel_domain SET url = ? WHERE url NOT LIKE ?`

	channelDomainQuery = `UPDATE sales_channel_domain SET url = ? WHERE LOWER(HEX(sales_channel_id)) = ?`

	selectConfigIDQuery = `SELECT LOWER(HEX(id)) FROM system_config` +
		` WHERE configuration_key = ? AND sales_channel_id IS NULL`
	selectScopedConfigIDQuery = `SELECT LOWER(HEX(id)) FROM system_config` +
		` WHERE configuration_key = ? AND sales_channel_id = UNHEX(?)`

	updateConfigQuery = `UPDATE system_config SET configuration_value = ?, updated_at = ? WHERE LOWER(HEX(id)) = ?`

	insertConfigQuery = `INSERT INTO system_config (id, configuration_key, configuration_value, sales_channel_id, created_at)` +
		` VALUES (UNHEX(?), ?, ?, NULL, ?)`
	insertScopedConfigQuery = `INSERT INTO system_config (id, configuration_key, configuration_value, sales_channel_id, created_at)` +
		` VALUES (UNHEX(?), ?, ?, UNHEX(?), ?)`
)

const sqlTimestampLayout = "2006-01-02 15:04:05.000"

// overrideSource is the two-way priority switch between the declarative
// file and environment-derived settings.
type overrideSource int

const (
	overrideSourceNone overrideSource = iota
	overrideSourceFile
	overrideSourceEnv
)

// selectOverrideSource decides where overrides come from. The declarative
// file is authoritative when present; environment mappings and the fallback
// domain are only consulted otherwise.
func selectOverrideSource(fileExists, mappingsPresent, domainPresent bool) overrideSource {
	switch {
	case fileExists:
		return overrideSourceFile
	case mappingsPresent || domainPresent:
		return overrideSourceEnv
	default:
		return overrideSourceNone
	}
}

// OverrideFailure records a non-fatal override step that was skipped.
type OverrideFailure struct {
	Step string
	Err  error
}

// OverrideReport accumulates what the engine changed and what it skipped.
// Individual failures never abort the run; they are surfaced here.
type OverrideReport struct {
	DomainRowsUpdated int64
	FallbackApplied   bool
	ConfigUpserts     int
	Failures          []OverrideFailure
}

type overrideService struct {
	logger *zap.SugaredLogger
	db     ports.Database
	ids    ports.IDGenerator
	now    func() time.Time
}

// NewOverrideService creates the post-import override engine.
func NewOverrideService(logger *zap.SugaredLogger, db ports.Database, ids ports.IDGenerator) *overrideService {
	return &overrideService{
		logger: logger,
		db:     db,
		ids:    ids,
		now:    time.Now,
	}
}

// Apply rewrites the freshly imported database for local use. file may be
// nil when no declarative file exists.
func (s *overrideService) Apply(ctx context.Context, file *domain.OverrideFile, mappings []domain.DomainMapping, localDomain string) *OverrideReport {
	report := &OverrideReport{}

	switch selectOverrideSource(file != nil, len(mappings) > 0, localDomain != "") {
	case overrideSourceFile:
		s.applyFile(ctx, file, report)
		s.applyAppURL(ctx, localDomain, report)
	case overrideSourceEnv:
		s.applyMappings(ctx, mappings, localDomain, report)
		target := localDomain
		if len(mappings) > 0 {
			target = mappings[0].To
		}
		s.applyAppURL(ctx, target, report)
	default:
		s.logger.Infow("no overrides configured, database left as imported")
	}

	return report
}

// applyMappings rewrites sales-channel URLs per explicit from→to rules.
// Each rule matches the source domain as https/http/bare, with and without
// a trailing slash. A rule matching zero rows is not an error. When no rule
// updated anything and a local domain is configured, every URL not already
// containing that domain is rewritten to it.
func (s *overrideService) applyMappings(ctx context.Context, mappings []domain.DomainMapping, localDomain string, report *OverrideReport) {
	for _, m := range mappings {
		updated, err := s.db.Exec(ctx, domainRewriteQuery,
			"https://"+m.To,
			"https://"+m.From, "https://"+m.From+"/",
			"http://"+m.From, "http://"+m.From+"/",
			m.From, m.From+"/",
		)
		if err != nil {
			s.logger.Warnw("domain mapping failed", "from", m.From, "to", m.To, "error", err)
			report.Failures = append(report.Failures, OverrideFailure{Step: "domain mapping " + m.From + " -> " + m.To, Err: err})
			continue
		}
		if updated > 0 {
			s.logger.Infow("domain rewritten", "from", m.From, "to", m.To, "rows", updated)
		}
		report.DomainRowsUpdated += updated
	}

	if report.DomainRowsUpdated == 0 && localDomain != "" {
		updated, err := s.db.Exec(ctx, fallbackRewriteQuery,
			"https://"+localDomain, "%"+localDomain+"%")
		if err != nil {
			s.logger.Warnw("fallback domain rewrite failed", "domain", localDomain, "error", err)
			report.Failures = append(report.Failures, OverrideFailure{Step: "fallback domain " + localDomain, Err: err})
			return
		}
		report.FallbackApplied = true
		report.DomainRowsUpdated += updated
		s.logger.Infow("fallback domain applied", "domain", localDomain, "rows", updated)
	}
}

// applyFile applies the declarative file: sales-channel domain rewrites,
// system-config upserts, then raw SQL statements, in that order. A failing
// statement is warned and skipped, never aborting the batch.
func (s *overrideService) applyFile(ctx context.Context, file *domain.OverrideFile, report *OverrideReport) {
	for _, channelID := range sortedKeys(file.SalesChannelDomains) {
		target := file.SalesChannelDomains[channelID]
		if !strings.Contains(target, "://") {
			target = "https://" + target
		}
		updated, err := s.db.Exec(ctx, channelDomainQuery, target, strings.ToLower(channelID))
		if err != nil {
			s.logger.Warnw("sales channel domain rewrite failed", "channel_id", channelID, "error", err)
			report.Failures = append(report.Failures, OverrideFailure{Step: "sales channel domain " + channelID, Err: err})
			continue
		}
		report.DomainRowsUpdated += updated
	}

	for _, key := range sortedKeys(file.SystemConfig) {
		if err := s.upsertConfig(ctx, key, file.SystemConfig[key]); err != nil {
			s.logger.Warnw("system config upsert failed", "key", key, "error", err)
			report.Failures = append(report.Failures, OverrideFailure{Step: "system config " + key, Err: err})
			continue
		}
		report.ConfigUpserts++
	}

	for _, statement := range file.SQLUpdates {
		if _, err := s.db.Exec(ctx, statement); err != nil {
			s.logger.Warnw("sql update failed", "statement", statement, "error", err)
			report.Failures = append(report.Failures, OverrideFailure{Step: "sql update", Err: err})
		}
	}
}

// applyAppURL upserts the public app URL entry when a target domain exists,
// wrapped in the configuration-value envelope.
func (s *overrideService) applyAppURL(ctx context.Context, targetDomain string, report *OverrideReport) {
	if targetDomain == "" {
		return
	}
	value := domain.ConfigValue{Value: "https://" + targetDomain}
	if err := s.upsertConfig(ctx, appURLConfigKey, value); err != nil {
		s.logger.Warnw("app url update failed", "domain", targetDomain, "error", err)
		report.Failures = append(report.Failures, OverrideFailure{Step: "app url", Err: err})
		return
	}
	report.ConfigUpserts++
}

// upsertConfig updates the row for the (key, scope) pair when it exists,
// otherwise inserts one with a freshly generated id and current timestamp.
func (s *overrideService) upsertConfig(ctx context.Context, key string, value domain.ConfigValue) error {
	envelope, err := value.Envelope()
	if err != nil {
		return err
	}

	var (
		rowID string
		found bool
	)
	if value.ScopeID != "" {
		rowID, found, err = s.db.QueryString(ctx, selectScopedConfigIDQuery, key, strings.ToLower(value.ScopeID))
	} else {
		rowID, found, err = s.db.QueryString(ctx, selectConfigIDQuery, key)
	}
	if err != nil {
		return err
	}

	timestamp := s.now().UTC().Format(sqlTimestampLayout)
	if found {
		_, err = s.db.Exec(ctx, updateConfigQuery, envelope, timestamp, rowID)
		return err
	}

	if value.ScopeID != "" {
		_, err = s.db.Exec(ctx, insertScopedConfigQuery, s.ids.NewID(), key, envelope, strings.ToLower(value.ScopeID), timestamp)
		return err
	}
	_, err = s.db.Exec(ctx, insertConfigQuery, s.ids.NewID(), key, envelope, timestamp)
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
