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

import "encoding/json"

// OverrideFileName is the project-relative path of the declarative override
// file. The file is optional and read fresh on every run.
const OverrideFileName = ".storesync.json"

// OverrideFile is the declarative override file. When present it is
// authoritative: environment-derived domain mappings are ignored entirely.
type OverrideFile struct {
	IgnoreTables        []string               `json:"ignore_tables"`
	SalesChannelDomains map[string]string      `json:"sales_channel_domains"`
	SystemConfig        map[string]ConfigValue `json:"system_config"`
	SQLUpdates          []string               `json:"sql_updates"`
	PostSyncCommands    []string               `json:"post_sync_commands"`
}

// ConfigValue is a system_config entry value. In the override file it is
// written either as a bare scalar or as {"_value": ..., "scope_id": ...}
// when a sales-channel scope qualifier is needed.
type ConfigValue struct {
	Value   any
	ScopeID string
}

func (v *ConfigValue) UnmarshalJSON(data []byte) error {
	var scoped struct {
		Value   any    `json:"_value"`
		ScopeID string `json:"scope_id"`
	}
	if err := json.Unmarshal(data, &scoped); err == nil && scoped.Value != nil {
		v.Value = scoped.Value
		v.ScopeID = scoped.ScopeID
		return nil
	}

	var scalar any
	if err := json.Unmarshal(data, &scalar); err != nil {
		return err
	}
	v.Value = scalar
	v.ScopeID = ""
	return nil
}

// Envelope wraps the value in the host application's configuration-value
// format, a JSON object keyed by "_value".
func (v ConfigValue) Envelope() (string, error) {
	raw, err := json.Marshal(map[string]any{"_value": v.Value})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
