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

package remote

import (
	"strings"

	"github.com/mkohlmann/storesync/internal/core/domain"
)

// plainArgChars are argv bytes that never need quoting on the remote shell.
const plainArgChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_@%+=:,./-"

// RenderScript turns a structured script into a single remote shell line.
// Every argument is quoted as data; stages are chained with && so a stage
// runs only if the previous one succeeded.
func RenderScript(script domain.Script) string {
	stages := make([]string, 0, len(script.Stages))
	for _, stage := range script.Stages {
		stages = append(stages, renderStage(stage))
	}
	return strings.Join(stages, " && ")
}

func renderStage(stage domain.Stage) string {
	commands := make([]string, 0, len(stage.Pipeline))
	for _, command := range stage.Pipeline {
		commands = append(commands, renderCommand(command))
	}
	rendered := strings.Join(commands, " | ")

	switch stage.Redirect {
	case domain.RedirectCreate:
		rendered += " > " + quoteArg(stage.Target)
	case domain.RedirectAppend:
		rendered += " >> " + quoteArg(stage.Target)
	}
	return rendered
}

func renderCommand(command domain.Command) string {
	parts := make([]string, 0, len(command.Argv))
	for _, arg := range command.Argv {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

// quoteArg single-quotes an argument unless it consists solely of plain
// characters. Embedded single quotes use the '\'' idiom.
func quoteArg(arg string) string {
	if arg != "" && isPlainArg(arg) {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

func isPlainArg(arg string) bool {
	for i := 0; i < len(arg); i++ {
		if !strings.ContainsRune(plainArgChars, rune(arg[i])) {
			return false
		}
	}
	return true
}
