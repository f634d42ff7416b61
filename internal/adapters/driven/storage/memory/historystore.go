// Package memory provides in-memory implementations of driven port
// interfaces, mainly for testing and for running without persistence.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu   sync.RWMutex
	runs []driven.Run
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// SaveRun records a completed extraction. A missing run ID is filled
// in with a fresh UUID.
func (s *HistoryStore) SaveRun(_ context.Context, run driven.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of
// zero or less returns everything.
func (s *HistoryStore) ListRuns(_ context.Context, limit int) ([]driven.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]driven.Run, len(s.runs))
	copy(out, s.runs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *HistoryStore) Close() error {
	return nil
}
