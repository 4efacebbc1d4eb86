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

package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	GraphBackendNeo4j = "neo4j"
	GraphBackendSQL   = "sql"
)

// GraphConfig selects and configures the structured store.
//
// The neo4j backend is queried with Cypher. The sql backend holds the same
// entities as tables and is queried with SQL.
type GraphConfig struct {
	Backend string         `yaml:"backend,omitempty" json:"backend,omitempty" jsonschema:"title=Backend,enum=neo4j,enum=sql,default=neo4j"`
	Neo4j   Neo4jConfig    `yaml:"neo4j,omitempty" json:"neo4j,omitempty" jsonschema:"title=Neo4j"`
	SQL     DatabaseConfig `yaml:"sql,omitempty" json:"sql,omitempty" jsonschema:"title=SQL"`

	// QueryTimeout bounds a single query issued by the agent.
	QueryTimeout time.Duration `yaml:"query_timeout,omitempty" json:"query_timeout,omitempty" jsonschema:"type=string,default=15s"`
}

// Neo4jConfig holds bolt connection settings.
type Neo4jConfig struct {
	URI      string `yaml:"uri,omitempty" json:"uri,omitempty" jsonschema:"title=URI,default=bolt://localhost:7687"`
	Username string `yaml:"username,omitempty" json:"username,omitempty" jsonschema:"title=Username,default=neo4j"`
	Password string `yaml:"password,omitempty" json:"password,omitempty" jsonschema:"title=Password"`
	Database string `yaml:"database,omitempty" json:"database,omitempty" jsonschema:"title=Database,default=neo4j"`

	MaxConnectionPoolSize int `yaml:"max_connection_pool_size,omitempty" json:"max_connection_pool_size,omitempty" jsonschema:"minimum=1,default=50"`
}

func (c *GraphConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = GraphBackendNeo4j
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 15 * time.Second
	}
	switch c.Backend {
	case GraphBackendNeo4j:
		if c.Neo4j.URI == "" {
			c.Neo4j.URI = "bolt://localhost:7687"
		}
		if c.Neo4j.Username == "" {
			c.Neo4j.Username = "neo4j"
		}
		if c.Neo4j.Database == "" {
			c.Neo4j.Database = "neo4j"
		}
		if c.Neo4j.MaxConnectionPoolSize == 0 {
			c.Neo4j.MaxConnectionPoolSize = 50
		}
	case GraphBackendSQL:
		c.SQL.SetDefaults()
	}
}

func (c *GraphConfig) Validate() error {
	switch c.Backend {
	case GraphBackendNeo4j:
		if c.Neo4j.URI == "" {
			return fmt.Errorf("neo4j.uri is required")
		}
		if !strings.Contains(c.Neo4j.URI, "://") {
			return fmt.Errorf("neo4j.uri must include a scheme, got %q", c.Neo4j.URI)
		}
	case GraphBackendSQL:
		if err := c.SQL.Validate(); err != nil {
			return fmt.Errorf("sql: %w", err)
		}
	default:
		return fmt.Errorf("invalid backend %q (valid: neo4j, sql)", c.Backend)
	}
	return nil
}

const (
	VectorTypeChromem = "chromem"
	VectorTypeQdrant  = "qdrant"
)

// VectorConfig configures the dish index.
type VectorConfig struct {
	Type       string `yaml:"type,omitempty" json:"type,omitempty" jsonschema:"title=Type,enum=chromem,enum=qdrant,default=chromem"`
	Collection string `yaml:"collection,omitempty" json:"collection,omitempty" jsonschema:"title=Collection,default=eats_dishes"`

	// PersistPath enables on-disk persistence for chromem.
	PersistPath string `yaml:"persist_path,omitempty" json:"persist_path,omitempty" jsonschema:"title=Persist Path,default=./chroma_db"`
	Compress    bool   `yaml:"compress,omitempty" json:"compress,omitempty" jsonschema:"title=Compress"`

	Host   string `yaml:"host,omitempty" json:"host,omitempty" jsonschema:"title=Host,default=localhost"`
	Port   int    `yaml:"port,omitempty" json:"port,omitempty" jsonschema:"title=Port,default=6334"`
	APIKey string `yaml:"api_key,omitempty" json:"api_key,omitempty" jsonschema:"title=API Key"`
	UseTLS bool   `yaml:"use_tls,omitempty" json:"use_tls,omitempty" jsonschema:"title=Use TLS"`
}

func (c *VectorConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = VectorTypeChromem
	}
	if c.Collection == "" {
		c.Collection = "eats_dishes"
	}
	switch c.Type {
	case VectorTypeChromem:
		if c.PersistPath == "" {
			c.PersistPath = "./chroma_db"
		}
	case VectorTypeQdrant:
		if c.Host == "" {
			c.Host = "localhost"
		}
		if c.Port == 0 {
			c.Port = 6334
		}
	}
}

func (c *VectorConfig) Validate() error {
	switch c.Type {
	case VectorTypeChromem:
	case VectorTypeQdrant:
		if c.Host == "" {
			return fmt.Errorf("host is required for qdrant")
		}
	default:
		return fmt.Errorf("invalid type %q (valid: chromem, qdrant)", c.Type)
	}
	if c.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	return nil
}
