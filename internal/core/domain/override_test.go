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

import (
	"encoding/json"
	"testing"
)

func TestOverrideFileUnmarshal(t *testing.T) {
	raw := `{
		"ignore_tables": ["cart", "log_entry"],
		"sales_channel_domains": {"0189f6": "shop.local"},
		"system_config": {
			"core.mailerSettings.disableDelivery": true,
			"core.listing.productsPerPage": {"_value": 24, "scope_id": "0189f6"}
		},
		"sql_updates": ["UPDATE customer SET email = 'dev@local'"],
		"post_sync_commands": ["cache:clear", "dal:refresh:index"]
	}`

	var file OverrideFile
	if err := json.Unmarshal([]byte(raw), &file); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if len(file.IgnoreTables) != 2 || file.IgnoreTables[0] != "cart" {
		t.Errorf("IgnoreTables = %v, want [cart log_entry]", file.IgnoreTables)
	}
	if file.SalesChannelDomains["0189f6"] != "shop.local" {
		t.Errorf("SalesChannelDomains = %v", file.SalesChannelDomains)
	}

	scalar := file.SystemConfig["core.mailerSettings.disableDelivery"]
	if scalar.Value != true || scalar.ScopeID != "" {
		t.Errorf("scalar value = %+v, want true without scope", scalar)
	}

	scoped := file.SystemConfig["core.listing.productsPerPage"]
	if scoped.ScopeID != "0189f6" {
		t.Errorf("scoped value scope = %q, want 0189f6", scoped.ScopeID)
	}
	if num, ok := scoped.Value.(float64); !ok || num != 24 {
		t.Errorf("scoped value = %v, want 24", scoped.Value)
	}

	if len(file.SQLUpdates) != 1 || len(file.PostSyncCommands) != 2 {
		t.Errorf("SQLUpdates = %v, PostSyncCommands = %v", file.SQLUpdates, file.PostSyncCommands)
	}
}

func TestConfigValueEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		value    ConfigValue
		expected string
	}{
		{name: "string", value: ConfigValue{Value: "https://shop.local"}, expected: `{"_value":"https://shop.local"}`},
		{name: "bool", value: ConfigValue{Value: true}, expected: `{"_value":true}`},
		{name: "number", value: ConfigValue{Value: float64(24)}, expected: `{"_value":24}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.value.Envelope()
			if err != nil {
				t.Fatalf("Envelope() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Envelope() = %s, want %s", got, tt.expected)
			}
		})
	}
}
