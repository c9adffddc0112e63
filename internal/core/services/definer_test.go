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
	"io"
	"strings"
	"testing"
)

func TestDefinerFilter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bracketed comment form",
			input:    "/*!50017 DEFINER=`admin`@`10.0.0.%` */ CREATE TRIGGER t1\n",
			expected: " CREATE TRIGGER t1\n",
		},
		{
			name:     "bare form",
			input:    "CREATE DEFINER=`admin`@`localhost` PROCEDURE cleanup()\n",
			expected: "CREATE PROCEDURE cleanup()\n",
		},
		{
			name:     "untouched lines pass through",
			input:    "INSERT INTO product VALUES (1, 'a');\nCREATE TABLE x (id INT);\n",
			expected: "INSERT INTO product VALUES (1, 'a');\nCREATE TABLE x (id INT);\n",
		},
		{
			name:     "no trailing newline",
			input:    "SELECT 1",
			expected: "SELECT 1",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newDefinerFilter(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("filtered = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDefinerFilterSmallReads(t *testing.T) {
	input := "CREATE DEFINER=`u`@`h` VIEW v AS SELECT 1;\n"
	filter := newDefinerFilter(strings.NewReader(input))

	var out strings.Builder
	buf := make([]byte, 3)
	for {
		n, err := filter.Read(buf)
		out.Write(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}

	if out.String() != "CREATE VIEW v AS SELECT 1;\n" {
		t.Errorf("filtered = %q", out.String())
	}
}
