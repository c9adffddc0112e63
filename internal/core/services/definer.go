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
	"bufio"
	"io"
	"regexp"
	"strings"
)

var (
	definerCommentRe = regexp.MustCompile(`/\*![0-9]* *DEFINER=[^*]*\*/`)
	definerBareRe    = regexp.MustCompile(`DEFINER=\S+ *`)
)

// definerFilter is a line-oriented io.Reader that removes definer clauses
// from a SQL stream. It mirrors the sed filter applied on the remote side,
// so every byte reaching the local client is already portable.
type definerFilter struct {
	src     *bufio.Reader
	pending string
	err     error
}

func newDefinerFilter(r io.Reader) *definerFilter {
	return &definerFilter{src: bufio.NewReader(r)}
}

func (f *definerFilter) Read(p []byte) (int, error) {
	for f.pending == "" {
		if f.err != nil {
			return 0, f.err
		}
		line, err := f.src.ReadString('\n')
		f.err = err
		if line != "" {
			f.pending = stripDefiners(line)
		}
	}

	n := copy(p, f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

func stripDefiners(line string) string {
	if !strings.Contains(line, "DEFINER") {
		return line
	}
	line = definerCommentRe.ReplaceAllString(line, "")
	line = definerBareRe.ReplaceAllString(line, "")
	return line
}
