package repository

import (
	"context"
	"errors"

	"github.com/prestiqx/ticket-ledger/internal/domain"
)

// ErrDuplicatePurchase is returned when a concurrent purchase with the
// same (tier, owner, nonce) already inserted a ticket. Callers resolve
// it by reading the existing ticket.
var ErrDuplicatePurchase = errors.New("duplicate purchase")

// EventRepository defines the interface for event catalog access
type EventRepository interface {
	// Create inserts a new draft event and assigns its ID
	Create(ctx context.Context, event *domain.Event) error
	// GetByID retrieves an event without tiers
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	// GetByIDWithTiers retrieves an event with tiers ordered by position
	GetByIDWithTiers(ctx context.Context, id int64) (*domain.Event, error)
	// List retrieves events with optional filters, newest first
	List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error)
	// AddTier appends a tier to a draft event, assigning its position.
	// The event row is locked so concurrent appends serialize.
	AddTier(ctx context.Context, eventID int64, tier *domain.TicketTier) error
	// GetTiers retrieves all tiers of an event ordered by position
	GetTiers(ctx context.Context, eventID int64) ([]*domain.TicketTier, error)
	// GetTierByID retrieves a single tier
	GetTierByID(ctx context.Context, tierID string) (*domain.TicketTier, error)
	// TransitionStatus moves an event from one status to another.
	// The update is guarded on the current status; a lost race returns
	// the state error for the status actually found.
	TransitionStatus(ctx context.Context, eventID int64, from, to domain.EventStatus) error
}

// EventFilter contains filter options for listing events
type EventFilter struct {
	Organizer string
	Status    domain.EventStatus
}

// TicketRepository defines the interface for issued ticket access
type TicketRepository interface {
	// CreatePurchase records a ticket and bumps the sold counters of
	// its tier and event in one transaction. A unique violation on
	// (tier, owner, nonce) returns ErrDuplicatePurchase.
	CreatePurchase(ctx context.Context, ticket *domain.Ticket) error
	// GetByNonce retrieves the ticket issued for an idempotency triple
	GetByNonce(ctx context.Context, tierID, owner, nonce string) (*domain.Ticket, error)
	// GetByOwner retrieves all tickets held by a wallet, newest first
	GetByOwner(ctx context.Context, owner string) ([]*domain.Ticket, error)
	// GetByEvent retrieves tickets issued for an event with pagination
	GetByEvent(ctx context.Context, eventID int64, limit, offset int) ([]*domain.Ticket, int, error)
}

// OrganizerRepository defines the interface for organizer authorization
type OrganizerRepository interface {
	// Authorize grants organizer rights to a wallet. Idempotent.
	Authorize(ctx context.Context, organizer *domain.Organizer) error
	// IsAuthorized reports whether a wallet may create events
	IsAuthorized(ctx context.Context, address string) (bool, error)
	// GetByAddress retrieves an organizer record
	GetByAddress(ctx context.Context, address string) (*domain.Organizer, error)
}

// Allocation error codes returned by AllocationStore.Sell
const (
	AllocErrTierNotFound  = "TIER_NOT_FOUND"
	AllocErrSoldOut       = "SOLD_OUT"
	AllocErrPriceMismatch = "PRICE_MISMATCH"
)

// SellResult is the outcome of an allocation attempt
type SellResult struct {
	Success bool
	// Remaining is the supply left after a successful sell
	Remaining int64
	// ErrorCode is one of the AllocErr constants when Success is false
	ErrorCode    string
	ErrorMessage string
}

// AllocationStore holds the authoritative per-tier counters for the
// purchase critical section. Sell atomically checks supply and price
// and decrements; no overselling is possible regardless of concurrency.
type AllocationStore interface {
	// Seed initializes a tier's counter and price at publish time
	Seed(ctx context.Context, tier *domain.TicketTier) error
	// Sell decrements the tier's remaining supply if supply is left
	// and the payment equals the tier price exactly
	Sell(ctx context.Context, tierID string, payment domain.Wei) (*SellResult, error)
	// Release returns one unit of supply after a failed purchase
	Release(ctx context.Context, tierID string) error
	// GetRemaining reports the live counter; found is false when the
	// tier has not been seeded
	GetRemaining(ctx context.Context, tierID string) (remaining int64, found bool, err error)
}
