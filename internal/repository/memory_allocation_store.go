package repository

import (
	"context"
	"sync"

	"github.com/prestiqx/ticket-ledger/internal/domain"
)

type memoryAllocation struct {
	mu        sync.Mutex
	remaining int64
	price     domain.Wei
}

// MemoryAllocationStore implements AllocationStore in process memory.
// It backs local development and tests; the Redis store is used in
// production. Each tier has its own lock so sells on different tiers
// do not contend.
type MemoryAllocationStore struct {
	mu    sync.RWMutex
	tiers map[string]*memoryAllocation
}

// NewMemoryAllocationStore creates an empty MemoryAllocationStore
func NewMemoryAllocationStore() *MemoryAllocationStore {
	return &MemoryAllocationStore{
		tiers: make(map[string]*memoryAllocation),
	}
}

// Seed initializes a tier's counter and price
func (s *MemoryAllocationStore) Seed(ctx context.Context, tier *domain.TicketTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tiers[tier.ID] = &memoryAllocation{
		remaining: int64(tier.Remaining()),
		price:     tier.PriceWei,
	}
	return nil
}

func (s *MemoryAllocationStore) get(tierID string) *memoryAllocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tiers[tierID]
}

// Sell decrements the tier's remaining supply under the tier lock
func (s *MemoryAllocationStore) Sell(ctx context.Context, tierID string, payment domain.Wei) (*SellResult, error) {
	alloc := s.get(tierID)
	if alloc == nil {
		return &SellResult{
			Success:      false,
			ErrorCode:    AllocErrTierNotFound,
			ErrorMessage: "Tier allocation not found",
		}, nil
	}

	alloc.mu.Lock()
	defer alloc.mu.Unlock()

	// supply before price, so a sold out tier never reports a
	// payment problem
	if alloc.remaining <= 0 {
		return &SellResult{
			Success:      false,
			ErrorCode:    AllocErrSoldOut,
			ErrorMessage: "Tier has no remaining supply",
		}, nil
	}

	if !payment.Equal(alloc.price) {
		return &SellResult{
			Success:      false,
			ErrorCode:    AllocErrPriceMismatch,
			ErrorMessage: "Payment must equal tier price exactly",
		}, nil
	}

	alloc.remaining--
	return &SellResult{
		Success:   true,
		Remaining: alloc.remaining,
	}, nil
}

// Release returns one unit of supply
func (s *MemoryAllocationStore) Release(ctx context.Context, tierID string) error {
	alloc := s.get(tierID)
	if alloc == nil {
		return domain.ErrTierNotFound
	}

	alloc.mu.Lock()
	defer alloc.mu.Unlock()
	alloc.remaining++
	return nil
}

// GetRemaining reports the live counter
func (s *MemoryAllocationStore) GetRemaining(ctx context.Context, tierID string) (int64, bool, error) {
	alloc := s.get(tierID)
	if alloc == nil {
		return 0, false, nil
	}

	alloc.mu.Lock()
	defer alloc.mu.Unlock()
	return alloc.remaining, true, nil
}

// Ensure MemoryAllocationStore implements AllocationStore
var _ AllocationStore = (*MemoryAllocationStore)(nil)
