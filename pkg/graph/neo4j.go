package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const neo4jBackend = "Neo4j"

// Neo4jConfig configures the Neo4j store.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string

	MaxConnectionPoolSize int

	// QueryTimeout bounds each Run call. Zero means no limit.
	QueryTimeout time.Duration
}

// Neo4jStore runs Cypher over a shared driver. The driver owns the
// connection pool; each call opens and closes its own session.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	timeout  time.Duration
}

// NewNeo4jStore creates the driver and verifies connectivity.
func NewNeo4jStore(ctx context.Context, cfg Neo4jConfig) (*Neo4jStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j uri is required")
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			if cfg.MaxConnectionPoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
			}
		},
	)
	if err != nil {
		return nil, connectionError(neo4jBackend, fmt.Errorf("failed to create driver for %s: %w", cfg.URI, err))
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, connectionError(neo4jBackend, fmt.Errorf("failed to connect to %s: %w", cfg.URI, err))
	}

	slog.Debug("Connected to Neo4j", "uri", cfg.URI, "database", cfg.Database)

	return &Neo4jStore{
		driver:   driver,
		database: cfg.Database,
		timeout:  cfg.QueryTimeout,
	}, nil
}

func (s *Neo4jStore) Language() Language { return LanguageCypher }

func (s *Neo4jStore) Backend() string { return neo4jBackend }

func (s *Neo4jStore) Run(ctx context.Context, query string) ([]Record, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, classifyNeo4jError(err)
	}

	rows, err := result.Collect(ctx)
	if err != nil {
		return nil, classifyNeo4jError(err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(row.Keys))
		for i, key := range row.Keys {
			rec[key] = flattenNeo4jValue(row.Values[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Neo4jStore) Exec(ctx context.Context, stmts []Statement) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stmt := range stmts {
			res, err := tx.Run(ctx, stmt.Query, stmt.Params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return classifyNeo4jError(err)
	}
	return nil
}

func (s *Neo4jStore) Close() error {
	return s.driver.Close(context.Background())
}

func classifyNeo4jError(err error) error {
	if neo4j.IsConnectivityError(err) || isContextError(err) {
		return connectionError(neo4jBackend, err)
	}

	var nerr *neo4j.Neo4jError
	if errors.As(err, &nerr) {
		switch {
		case strings.HasPrefix(nerr.Code, "Neo.ClientError.Security."),
			strings.HasPrefix(nerr.Code, "Neo.TransientError."),
			nerr.Code == "Neo.ClientError.Database.DatabaseNotFound":
			return connectionError(neo4jBackend, err)
		}
	}
	return malformedError(neo4jBackend, err)
}

// flattenNeo4jValue reduces driver graph types to JSON-friendly values.
func flattenNeo4jValue(v any) any {
	switch val := v.(type) {
	case neo4j.Node:
		return flattenProps(val.Props)
	case neo4j.Relationship:
		return flattenProps(val.Props)
	case neo4j.Path:
		nodes := make([]any, 0, len(val.Nodes))
		for _, n := range val.Nodes {
			nodes = append(nodes, flattenProps(n.Props))
		}
		return nodes
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = flattenNeo4jValue(item)
		}
		return out
	case map[string]any:
		return flattenProps(val)
	default:
		return val
	}
}

func flattenProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = flattenNeo4jValue(v)
	}
	return out
}

var _ Store = (*Neo4jStore)(nil)
