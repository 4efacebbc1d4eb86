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

// Package searchtool exposes the dish vector index to the model as the
// semantic_dish_search tool.
package searchtool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/kadirpekel/dealfinder/pkg/embedder"
	"github.com/kadirpekel/dealfinder/pkg/tool"
	"github.com/kadirpekel/dealfinder/pkg/vector"
)

const (
	DefaultName = "semantic_dish_search"
	DefaultTopK = 3
)

// Metadata keys written by the loader.
const (
	MetaDishID       = "dish_id"
	MetaRestaurantID = "restaurant_id"
	MetaName         = "name"
	MetaPrice        = "price"
	MetaRating       = "rating"
	MetaSeq          = "seq"
)

// DishMatch is one search hit. Score and insertion order are kept for
// ranking but never shown to the model.
type DishMatch struct {
	DishID       string  `json:"dish_id"`
	RestaurantID string  `json:"restaurant_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Rating       float64 `json:"rating"`

	Score float32 `json:"-"`
	Seq   int     `json:"-"`
}

// Config configures the search tool.
type Config struct {
	Embedder   embedder.Embedder
	Provider   vector.Provider
	Collection string

	// TopK is the number of matches Call returns. Default: 3
	TopK int

	Name string
}

// SearchTool performs similarity search over dish descriptions.
type SearchTool struct {
	embedder   embedder.Embedder
	provider   vector.Provider
	collection string
	topK       int
	name       string
}

func New(cfg Config) *SearchTool {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	return &SearchTool{
		embedder:   cfg.Embedder,
		provider:   cfg.Provider,
		collection: cfg.Collection,
		topK:       cfg.TopK,
		name:       cfg.Name,
	}
}

func (t *SearchTool) Name() string { return t.name }

func (t *SearchTool) Description() string {
	return "Performs a semantic similarity search over dish descriptions. " +
		"Use this for finding dishes based on their description, taste, texture, " +
		"or flavor profile (e.g., 'creamy', 'spicy', 'comfort food'). " +
		"Action Input MUST be plain keywords extracted from the question, not a query language. " +
		fmt.Sprintf("Returns up to %d matching dishes as JSON (dish_id, restaurant_id, name, price, rating).", t.topK)
}

// Search returns at most topK matches in descending similarity. Equal
// scores keep index insertion order. A missing collection is reported as
// an error wrapping vector.ErrCollectionNotFound.
func (t *SearchTool) Search(ctx context.Context, query string, topK int) ([]DishMatch, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vec, err := t.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// Over-fetch so that ties straddling the cut-off can be resolved by
	// insertion order rather than by the backend's arbitrary order.
	results, err := t.provider.Search(ctx, t.collection, vec, topK*2)
	if err != nil {
		return nil, err
	}

	matches := make([]DishMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, toMatch(r))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Seq < matches[j].Seq
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Call searches with the configured TopK and renders the matches as JSON.
func (t *SearchTool) Call(ctx context.Context, input string) (string, error) {
	query := strings.Trim(strings.TrimSpace(input), "\"'`")
	slog.Debug("Semantic dish search", "query", query, "top_k", t.topK)

	matches, err := t.Search(ctx, query, t.topK)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return fmt.Sprintf("Vector Store Load Error: Failed to search collection %s: %v. Ensure the collection is populated.",
			t.collection, err), nil
	}

	data, err := json.Marshal(matches)
	if err != nil {
		return "", fmt.Errorf("failed to marshal matches: %w", err)
	}
	return string(data), nil
}

func toMatch(r vector.Result) DishMatch {
	m := DishMatch{
		DishID:       stringValue(r.Metadata[MetaDishID]),
		RestaurantID: stringValue(r.Metadata[MetaRestaurantID]),
		Name:         stringValue(r.Metadata[MetaName]),
		Price:        floatValue(r.Metadata[MetaPrice]),
		Rating:       floatValue(r.Metadata[MetaRating]),
		Score:        r.Score,
		Seq:          int(floatValue(r.Metadata[MetaSeq])),
	}
	if m.DishID == "" {
		m.DishID = r.ID
	}
	return m
}

// Metadata may come back as strings (chromem) or typed values (qdrant).
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func floatValue(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

var _ tool.Tool = (*SearchTool)(nil)
