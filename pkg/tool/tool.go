// Copyright 2025 Kadir Pekel
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

// Package tool defines the contract for actions the reasoning loop can
// dispatch, and the registry that resolves an action name to a tool.
//
// A tool receives the raw action input text chosen by the model and
// returns an observation string. Backend failures are part of the
// observation, not a Go error: the model is expected to read the
// diagnostic and try again. A non-nil error from Call is reserved for
// conditions the loop cannot recover from, such as context cancellation.
//
// # Creating Tools
//
//	search := searchtool.New(searchtool.Config{...})
//	graph := graphtool.New(graphtool.Config{...})
//
//	reg, err := tool.NewRegistry(search, graph)
package tool

import "context"

// Tool is a named capability the model can invoke.
type Tool interface {
	// Name is the identifier the model writes after "Action:".
	Name() string

	// Description tells the model what the tool does and exactly what
	// input it accepts.
	Description() string

	// Call executes the tool with the model's action input.
	Call(ctx context.Context, input string) (string, error)
}

// Spec is a static description of a tool, as listed to clients.
type Spec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SpecOf returns the Spec for t.
func SpecOf(t Tool) Spec {
	return Spec{Name: t.Name(), Description: t.Description()}
}

// Func adapts a function to the Tool interface.
type Func struct {
	ToolName        string
	ToolDescription string
	Fn              func(ctx context.Context, input string) (string, error)
}

func (f *Func) Name() string        { return f.ToolName }
func (f *Func) Description() string { return f.ToolDescription }

func (f *Func) Call(ctx context.Context, input string) (string, error) {
	return f.Fn(ctx, input)
}

var _ Tool = (*Func)(nil)
