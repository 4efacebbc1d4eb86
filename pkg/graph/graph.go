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

// Package graph executes read queries against the structured store that
// holds users, memberships, restaurants and promotions.
//
// Two backends are provided: Neo4j, queried with Cypher, and relational
// databases reached through database/sql, queried with SQL.
package graph

import (
	"context"
	"fmt"

	"github.com/kadirpekel/dealfinder/pkg/config"
)

// Language is the query language a store accepts.
type Language string

const (
	LanguageCypher Language = "Cypher"
	LanguageSQL    Language = "SQL"
)

// Record is one result row keyed by column or alias. Graph nodes and
// relationships are flattened to their property maps.
type Record map[string]any

// Statement is a parameterized write used by the loader. Cypher stores read
// Params; SQL stores bind Args positionally.
type Statement struct {
	Query  string
	Params map[string]any
	Args   []any
}

// Store is a graph query backend.
//
// Implementations acquire a session or connection per call and release it
// before returning, so a Store is safe for concurrent use.
type Store interface {
	Language() Language

	// Backend is the human-readable engine name, e.g. "Neo4j" or "SQLite".
	Backend() string

	// Run executes a read query. Zero rows is not an error.
	Run(ctx context.Context, query string) ([]Record, error)

	// Exec runs statements in a single write transaction.
	Exec(ctx context.Context, stmts []Statement) error

	Close() error
}

// New opens the store selected by cfg.
func New(ctx context.Context, cfg config.GraphConfig) (Store, error) {
	switch cfg.Backend {
	case config.GraphBackendNeo4j:
		return NewNeo4jStore(ctx, Neo4jConfig{
			URI:                   cfg.Neo4j.URI,
			Username:              cfg.Neo4j.Username,
			Password:              cfg.Neo4j.Password,
			Database:              cfg.Neo4j.Database,
			MaxConnectionPoolSize: cfg.Neo4j.MaxConnectionPoolSize,
			QueryTimeout:          cfg.QueryTimeout,
		})
	case config.GraphBackendSQL:
		return OpenSQLStore(ctx, cfg.SQL, cfg.QueryTimeout)
	default:
		return nil, fmt.Errorf("unknown graph backend %q", cfg.Backend)
	}
}
