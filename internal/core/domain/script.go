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

// RedirectMode describes what a stage does with its final stdout.
type RedirectMode int

const (
	RedirectNone RedirectMode = iota
	RedirectCreate
	RedirectAppend
)

// Command is a single argument vector. Arguments are data, never shell text;
// the remote adapter is responsible for quoting when it renders a script.
type Command struct {
	Argv []string
}

// Stage is a pipeline of commands whose output may be redirected to a file.
type Stage struct {
	Pipeline []Command
	Redirect RedirectMode
	Target   string
}

// Script is an ordered list of stages executed in one remote round trip.
// A stage runs only if the previous one succeeded.
type Script struct {
	Stages []Stage
}

// Cmd builds a single-command stage with no redirection.
func Cmd(argv ...string) Stage {
	return Stage{Pipeline: []Command{{Argv: argv}}}
}

// NewScript builds a script from stages.
func NewScript(stages ...Stage) Script {
	return Script{Stages: stages}
}
