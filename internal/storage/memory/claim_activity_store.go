package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solana-pop/internal/domain"
	"solana-pop/internal/storage"
)

// ClaimActivityStore is an in-memory implementation of storage.ClaimActivityStore.
type ClaimActivityStore struct {
	mu   sync.RWMutex
	data map[string][]domain.ClaimActivity // keyed by event_id
}

// NewClaimActivityStore creates a new in-memory claim activity store.
func NewClaimActivityStore() *ClaimActivityStore {
	return &ClaimActivityStore{
		data: make(map[string][]domain.ClaimActivity),
	}
}

// Record appends one activity row.
func (s *ClaimActivityStore) Record(_ context.Context, a *domain.ClaimActivity) error {
	if a == nil || a.EventID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[a.EventID] = append(s.data[a.EventID], *a)
	return nil
}

// CountByEvent returns the number of recorded claims for an event.
func (s *ClaimActivityStore) CountByEvent(_ context.Context, eventID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data[eventID]), nil
}

// DailyCounts returns per-day claim counts for an event, ordered by day ASC.
func (s *ClaimActivityStore) DailyCounts(_ context.Context, eventID string) ([]domain.DailyClaimCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets := make(map[int64]int)
	for _, a := range s.data[eventID] {
		buckets[domain.DayOf(a.ClaimedAt).Unix()]++
	}

	result := make([]domain.DailyClaimCount, 0, len(buckets))
	for day, n := range buckets {
		result = append(result, domain.DailyClaimCount{
			Day:    time.Unix(day, 0).UTC(),
			Claims: n,
		})
	}

	// Sort by day ASC
	sort.Slice(result, func(i, j int) bool {
		return result[i].Day.Before(result[j].Day)
	})

	return result, nil
}

var _ storage.ClaimActivityStore = (*ClaimActivityStore)(nil)
