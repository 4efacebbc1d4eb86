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

package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kadirpekel/dealfinder/pkg/embedder"
	"github.com/kadirpekel/dealfinder/pkg/graph"
	"github.com/kadirpekel/dealfinder/pkg/tool/searchtool"
	"github.com/kadirpekel/dealfinder/pkg/vector"
)

// SchemaHint describes the loaded data in the store's query language.
func SchemaHint(language graph.Language) string {
	if language == graph.LanguageSQL {
		return sqlSchema
	}
	return cypherSchema
}

// Statements returns the load script for a store speaking language.
func Statements(language graph.Language, d Dataset) []graph.Statement {
	if language == graph.LanguageSQL {
		return SQLStatements(d)
	}
	return CypherStatements(d)
}

// Loader writes a Dataset into both stores. Either side may be nil to skip
// it.
type Loader struct {
	Store      graph.Store
	Provider   vector.Provider
	Embedder   embedder.Embedder
	Collection string
}

// Report summarizes a load.
type Report struct {
	Statements int
	Dishes     int
	Duration   time.Duration
}

// Load clears and repopulates the graph store and the dish collection
// concurrently. The first failure cancels the other side.
func (l *Loader) Load(ctx context.Context, d Dataset) (*Report, error) {
	start := time.Now()
	report := &Report{}

	g, gctx := errgroup.WithContext(ctx)

	if l.Store != nil {
		g.Go(func() error {
			n, err := l.loadGraph(gctx, d)
			report.Statements = n
			return err
		})
	}
	if l.Provider != nil {
		g.Go(func() error {
			n, err := l.loadDishes(gctx, d.Dishes)
			report.Dishes = n
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	report.Duration = time.Since(start)
	return report, nil
}

func (l *Loader) loadGraph(ctx context.Context, d Dataset) (int, error) {
	stmts := Statements(l.Store.Language(), d)
	slog.Info("Loading graph store", "backend", l.Store.Backend(), "statements", len(stmts))

	if err := l.Store.Exec(ctx, stmts); err != nil {
		return 0, fmt.Errorf("failed to load graph store: %w", err)
	}
	slog.Info("Graph store loaded", "restaurants", len(d.Restaurants), "promos", len(d.Promos))
	return len(stmts), nil
}

func (l *Loader) loadDishes(ctx context.Context, dishes []Dish) (int, error) {
	if l.Embedder == nil {
		return 0, fmt.Errorf("embedder is required to index dishes")
	}
	collection := l.Collection
	if collection == "" {
		return 0, fmt.Errorf("collection name is required")
	}
	if len(dishes) == 0 {
		return 0, nil
	}

	// A clean start; a missing collection is not an error here.
	if err := l.Provider.DeleteCollection(ctx, collection); err != nil {
		slog.Debug("Collection not deleted", "collection", collection, "error", err)
	}

	texts := make([]string, len(dishes))
	for i, d := range dishes {
		texts[i] = d.Description
	}
	vectors, err := l.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed dish descriptions: %w", err)
	}

	if err := l.Provider.CreateCollection(ctx, collection, len(vectors[0])); err != nil {
		return 0, fmt.Errorf("failed to create collection %s: %w", collection, err)
	}

	docs := make([]vector.Document, len(dishes))
	for i, d := range dishes {
		docs[i] = vector.Document{
			ID:      d.ID,
			Content: d.Description,
			Vector:  vectors[i],
			Metadata: map[string]any{
				searchtool.MetaDishID:       d.ID,
				searchtool.MetaRestaurantID: d.RestaurantID,
				searchtool.MetaName:         d.Name,
				searchtool.MetaPrice:        d.Price,
				searchtool.MetaRating:       d.Rating,
				searchtool.MetaSeq:          i,
			},
		}
	}

	if err := l.Provider.Upsert(ctx, collection, docs...); err != nil {
		return 0, fmt.Errorf("failed to index dishes: %w", err)
	}
	slog.Info("Dish collection loaded", "collection", collection, "dishes", len(docs), "provider", l.Provider.Name())
	return len(docs), nil
}
