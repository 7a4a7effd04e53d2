package domain

import (
	"time"
)

// EventStatus is the lifecycle state of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusEnded     EventStatus = "ended"
)

// Rarity classifies a ticket tier
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// ValidRarity reports whether r is a known rarity
func ValidRarity(r Rarity) bool {
	switch r {
	case RarityCommon, RarityRare, RarityLegendary:
		return true
	}
	return false
}

// Event represents an event in the ledger. IDs are assigned
// monotonically by the database.
type Event struct {
	ID          int64       `json:"id"`
	Organizer   string      `json:"organizer"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Venue       string      `json:"venue"`
	StartTime   time.Time   `json:"start_time"`
	Status      EventStatus `json:"status"`
	TicketsSold int         `json:"tickets_sold"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Tiers are ordered by position. Loaded on detail reads.
	Tiers []*TicketTier `json:"tiers,omitempty"`
}

// IsDraft reports whether catalog mutations are still allowed
func (e *Event) IsDraft() bool {
	return e.Status == EventStatusDraft
}

// IsOnSale reports whether tickets can be bought
func (e *Event) IsOnSale() bool {
	return e.Status == EventStatusPublished
}

// Publish transitions draft -> published. The caller checks that at
// least one tier exists.
func (e *Event) Publish() error {
	switch e.Status {
	case EventStatusPublished:
		return ErrEventAlreadyPublished
	case EventStatusEnded:
		return ErrEventEnded
	}
	e.Status = EventStatusPublished
	return nil
}

// End transitions published -> ended
func (e *Event) End() error {
	switch e.Status {
	case EventStatusDraft:
		return ErrEventNotPublished
	case EventStatusEnded:
		return ErrEventEnded
	}
	e.Status = EventStatusEnded
	return nil
}

// TicketTier is a price/capacity class within an event
type TicketTier struct {
	ID        string    `json:"id"`
	EventID   int64     `json:"event_id"`
	Position  int       `json:"position"`
	Name      string    `json:"name"`
	PriceWei  Wei       `json:"price_wei"`
	MaxSupply int       `json:"max_supply"`
	Sold      int       `json:"sold"`
	Rarity    Rarity    `json:"rarity"`
	Perks     []string  `json:"perks"`
	CreatedAt time.Time `json:"created_at"`
}

// Remaining returns how many tickets are still available
func (t *TicketTier) Remaining() int {
	r := t.MaxSupply - t.Sold
	if r < 0 {
		return 0
	}
	return r
}

// SoldOut reports whether the tier has no capacity left
func (t *TicketTier) SoldOut() bool {
	return t.Sold >= t.MaxSupply
}

// Validate checks tier fields before persistence
func (t *TicketTier) Validate() error {
	if t.Name == "" {
		return ErrInvalidTierName
	}
	if t.PriceWei.IsZero() {
		return ErrInvalidPrice
	}
	if t.MaxSupply <= 0 {
		return ErrInvalidSupply
	}
	if !ValidRarity(t.Rarity) {
		return ErrInvalidRarity
	}
	return nil
}
