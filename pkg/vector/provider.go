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

// Package vector stores pre-computed embeddings and answers nearest
// neighbour queries over them.
package vector

import (
	"context"
	"errors"
)

// ErrCollectionNotFound is returned when searching a collection that was
// never created or populated.
var ErrCollectionNotFound = errors.New("collection not found")

// Document is a unit of indexed content.
type Document struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]any
}

// Result is a single search hit. Score is cosine similarity, higher is
// closer.
type Result struct {
	ID       string
	Score    float32
	Content  string
	Vector   []float32
	Metadata map[string]any
}

// Provider is a vector store backend.
type Provider interface {
	Name() string

	// CreateCollection is idempotent.
	CreateCollection(ctx context.Context, collection string, dimension int) error
	DeleteCollection(ctx context.Context, collection string) error

	// Upsert adds or replaces documents by ID.
	Upsert(ctx context.Context, collection string, docs ...Document) error

	// Search returns at most topK results ordered by descending score.
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error)

	Count(ctx context.Context, collection string) (int, error)

	Close() error
}

// isZero reports whether the vector has no direction. Cosine similarity
// is undefined for it.
func isZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
