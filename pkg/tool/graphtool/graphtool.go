// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graphtool exposes the graph store to the model as the
// knowledge_graph_search tool.
package graphtool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kadirpekel/dealfinder/pkg/graph"
	"github.com/kadirpekel/dealfinder/pkg/tool"
)

const DefaultName = "knowledge_graph_search"

// Config configures the graph tool.
type Config struct {
	Store graph.Store

	// Name overrides DefaultName.
	Name string

	// SchemaHint describes labels, relationships or tables. It is appended
	// to the description so the model writes queries against real names.
	SchemaHint string
}

// GraphTool runs model-written queries against a graph.Store.
type GraphTool struct {
	store       graph.Store
	name        string
	description string
}

// Result is the outcome of one query. Exactly one of the three cases
// holds: Err is set, Empty is true, or Records is non-empty.
type Result struct {
	Query   string
	Records []graph.Record
	Empty   bool
	Err     error
}

func New(cfg Config) *GraphTool {
	name := cfg.Name
	if name == "" {
		name = DefaultName
	}
	t := &GraphTool{store: cfg.Store, name: name}
	t.description = buildDescription(cfg.Store.Language(), cfg.Store.Backend(), cfg.SchemaHint)
	return t
}

func (t *GraphTool) Name() string { return t.name }

func (t *GraphTool) Description() string { return t.description }

// Query sanitizes input and executes it. It never panics on bad input;
// every failure is reported through Result.Err.
func (t *GraphTool) Query(ctx context.Context, input string) Result {
	q := Sanitize(input)
	slog.Debug("Executing graph query", "backend", t.store.Backend(), "query", q)

	if q == "" {
		return Result{Query: q, Err: fmt.Errorf("%w: empty query", graph.ErrMalformedQuery)}
	}

	records, err := t.store.Run(ctx, q)
	if err != nil {
		slog.Debug("Graph query failed", "error", err)
		return Result{Query: q, Err: err}
	}
	if len(records) == 0 {
		return Result{Query: q, Empty: true}
	}
	return Result{Query: q, Records: records}
}

// Call renders the query outcome as an observation. Backend failures are
// returned as diagnostic text; only cancellation of ctx yields an error.
func (t *GraphTool) Call(ctx context.Context, input string) (string, error) {
	res := t.Query(ctx, input)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return t.Render(res), nil
}

// Render turns a Result into observation text.
func (t *GraphTool) Render(res Result) string {
	switch {
	case res.Err != nil:
		return fmt.Sprintf("%s Query Error: %s. Please try simplifying the query.",
			t.store.Backend(), strings.TrimSuffix(graph.Describe(res.Err), "."))
	case res.Empty:
		return fmt.Sprintf("No results found for the %s query. Check your query syntax or node/relationship names.",
			t.store.Language())
	default:
		data, err := json.Marshal(res.Records)
		if err != nil {
			return fmt.Sprintf("%s Query Error: failed to encode results: %v. Please try simplifying the query.",
				t.store.Backend(), err)
		}
		return string(data)
	}
}

var fencePrefixes = []string{"```cypher", "```sql", "```"}

// Sanitize strips the wrapping models tend to add around a query: code
// fences, backticks, an echoed "Action Input:" label and quotes. It does
// not inspect the query itself.
func Sanitize(input string) string {
	q := strings.TrimSpace(input)
	q = strings.TrimSpace(strings.TrimPrefix(q, "Action Input:"))

	for _, prefix := range fencePrefixes {
		if len(q) >= len(prefix) && strings.EqualFold(q[:len(prefix)], prefix) {
			q = strings.TrimSuffix(strings.TrimSpace(q[len(prefix):]), "```")
			break
		}
	}

	q = strings.Trim(strings.TrimSpace(q), "`")
	q = strings.TrimSpace(q)
	if len(q) >= 2 && q[0] == '"' && q[len(q)-1] == '"' && !strings.Contains(q[1:len(q)-1], `"`) {
		q = q[1 : len(q)-1]
	}
	return strings.TrimSpace(q)
}

func buildDescription(lang graph.Language, backend, schema string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Executes a %s query against the %s knowledge graph. ", lang, backend)
	b.WriteString("Use this for questions about user membership, promotions, restaurants, " +
		"and explicit relationships between entities (e.g., 'who favors which restaurant?'). ")
	fmt.Fprintf(&b, "Action Input MUST be a single, valid %s query with no surrounding text. ", lang)
	b.WriteString("Returns a JSON list of result rows.")
	if schema != "" {
		b.WriteString(" Schema: ")
		b.WriteString(schema)
	}
	return b.String()
}

var _ tool.Tool = (*GraphTool)(nil)
