package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prestiqx/ticket-ledger/internal/domain"
)

func TestTierSyncer_SyncTier(t *testing.T) {
	t.Run("seeds a published tier", func(t *testing.T) {
		eventRepo := &MockEventRepository{
			GetTierByIDFunc: func(ctx context.Context, tierID string) (*domain.TicketTier, error) {
				return standardTier(), nil
			},
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.Event, error) {
				return publishedEvent(), nil
			},
		}

		seeded := false
		allocs := &MockAllocationStore{
			SeedFunc: func(ctx context.Context, tier *domain.TicketTier) error {
				seeded = true
				return nil
			},
		}

		syncer := NewTierSyncer(eventRepo, allocs)
		if err := syncer.SyncTier(context.Background(), testTierID); err != nil {
			t.Fatalf("SyncTier() unexpected error = %v", err)
		}
		if !seeded {
			t.Error("expected the allocation to be seeded")
		}
	})

	t.Run("refuses a draft event", func(t *testing.T) {
		eventRepo := &MockEventRepository{
			GetTierByIDFunc: func(ctx context.Context, tierID string) (*domain.TicketTier, error) {
				return standardTier(), nil
			},
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.Event, error) {
				return draftEvent(), nil
			},
		}

		syncer := NewTierSyncer(eventRepo, &MockAllocationStore{})
		err := syncer.SyncTier(context.Background(), testTierID)
		if !errors.Is(err, domain.ErrEventNotPublished) {
			t.Errorf("SyncTier() error = %v, want %v", err, domain.ErrEventNotPublished)
		}
	})

	t.Run("unknown tier", func(t *testing.T) {
		syncer := NewTierSyncer(&MockEventRepository{}, &MockAllocationStore{})
		err := syncer.SyncTier(context.Background(), testTierID)
		if !errors.Is(err, domain.ErrTierNotFound) {
			t.Errorf("SyncTier() error = %v, want %v", err, domain.ErrTierNotFound)
		}
	})

	t.Run("safe under concurrent calls", func(t *testing.T) {
		var seeds int
		var mu sync.Mutex

		eventRepo := &MockEventRepository{
			GetTierByIDFunc: func(ctx context.Context, tierID string) (*domain.TicketTier, error) {
				return standardTier(), nil
			},
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.Event, error) {
				return publishedEvent(), nil
			},
		}
		allocs := &MockAllocationStore{
			SeedFunc: func(ctx context.Context, tier *domain.TicketTier) error {
				mu.Lock()
				seeds++
				mu.Unlock()
				return nil
			},
		}

		syncer := NewTierSyncer(eventRepo, allocs)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := syncer.SyncTier(context.Background(), testTierID); err != nil {
					t.Errorf("SyncTier() unexpected error = %v", err)
				}
			}()
		}
		wg.Wait()

		mu.Lock()
		defer mu.Unlock()
		if seeds == 0 {
			t.Error("expected at least one seed")
		}
	})
}
