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

import "strings"

// DomainMapping rewrites URLs of a source domain to a target domain.
// Mappings keep their declaration order; the first mapping's target is the
// deterministic choice for the public app URL.
type DomainMapping struct {
	From string
	To   string
}

// ParseDomainMappings parses a "from1:to1,from2:to2" list. Entries without
// a target or with an empty side are dropped.
func ParseDomainMappings(raw string) []DomainMapping {
	var mappings []DomainMapping
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		from, to, ok := strings.Cut(entry, ":")
		from = strings.TrimSpace(from)
		to = strings.TrimSpace(to)
		if !ok || from == "" || to == "" {
			continue
		}
		mappings = append(mappings, DomainMapping{From: from, To: to})
	}
	return mappings
}
