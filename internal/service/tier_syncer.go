package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/prestiqx/ticket-ledger/internal/domain"
	"github.com/prestiqx/ticket-ledger/internal/repository"
)

// TierSyncer re-seeds a tier's allocation counter from the catalog
// when the allocation store has lost it (Redis restart, eviction).
type TierSyncer interface {
	// SyncTier seeds the allocation for a tier of a published event
	SyncTier(ctx context.Context, tierID string) error
}

// DefaultTierSyncer implements TierSyncer with a single-flight group:
// a stampede of purchases hitting a missing tier triggers one sync.
type DefaultTierSyncer struct {
	eventRepo repository.EventRepository
	allocs    repository.AllocationStore
	sfGroup   singleflight.Group
}

// NewTierSyncer creates a new tier syncer
func NewTierSyncer(eventRepo repository.EventRepository, allocs repository.AllocationStore) *DefaultTierSyncer {
	return &DefaultTierSyncer{
		eventRepo: eventRepo,
		allocs:    allocs,
	}
}

// SyncTier seeds the allocation for a tier. Concurrent calls for the
// same tier share one execution.
func (s *DefaultTierSyncer) SyncTier(ctx context.Context, tierID string) error {
	_, err, _ := s.sfGroup.Do(tierID, func() (interface{}, error) {
		return nil, s.doSync(ctx, tierID)
	})
	return err
}

func (s *DefaultTierSyncer) doSync(ctx context.Context, tierID string) error {
	tier, err := s.eventRepo.GetTierByID(ctx, tierID)
	if err != nil {
		return fmt.Errorf("failed to fetch tier %s: %w", tierID, err)
	}

	event, err := s.eventRepo.GetByID(ctx, tier.EventID)
	if err != nil {
		return fmt.Errorf("failed to fetch event %d: %w", tier.EventID, err)
	}

	// Only published events hold live allocations
	if !event.IsOnSale() {
		return domain.ErrEventNotPublished
	}

	if err := s.allocs.Seed(ctx, tier); err != nil {
		return fmt.Errorf("failed to seed tier %s: %w", tierID, err)
	}

	return nil
}

var _ TierSyncer = (*DefaultTierSyncer)(nil)
