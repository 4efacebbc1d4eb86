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

package ratelimit

import (
	"context"
	"sync"
	"time"
)

type usageKey struct {
	Identifier string
	LimitType  LimitType
	Window     TimeWindow
}

type usageRecord struct {
	Amount    int64
	WindowEnd time.Time
}

// MemoryStore is a thread-safe in-memory Store for single-instance servers.
type MemoryStore struct {
	data map[usageKey]*usageRecord
	mu   sync.RWMutex
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[usageKey]*usageRecord),
		now:  time.Now,
	}
}

func (s *MemoryStore) GetUsage(ctx context.Context, identifier string, limitType LimitType, window TimeWindow) (int64, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	record, exists := s.data[usageKey{identifier, limitType, window}]
	if !exists || !record.WindowEnd.After(now) {
		return 0, now.Add(window.Duration()), nil
	}
	return record.Amount, record.WindowEnd, nil
}

func (s *MemoryStore) IncrementUsage(ctx context.Context, identifier string, limitType LimitType, window TimeWindow, amount int64) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageKey{identifier, limitType, window}
	now := s.now()
	record, exists := s.data[key]
	if !exists {
		record = &usageRecord{}
		s.data[key] = record
	}
	if !record.WindowEnd.After(now) {
		record.Amount = 0
		record.WindowEnd = now.Add(window.Duration())
	}
	record.Amount += amount
	return record.Amount, record.WindowEnd, nil
}

func (s *MemoryStore) DeleteUsage(ctx context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.data {
		if key.Identifier == identifier {
			delete(s.data, key)
		}
	}
	return nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, record := range s.data {
		if record.WindowEnd.Before(before) {
			delete(s.data, key)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[usageKey]*usageRecord)
	return nil
}

// Size returns the number of records in the store (for testing).
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
