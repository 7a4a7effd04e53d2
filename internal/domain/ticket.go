package domain

import (
	"time"
)

// Ticket is a single issued ticket. The (tier, owner, nonce) triple
// is unique: retrying a purchase with the same nonce returns the
// ticket issued the first time.
type Ticket struct {
	ID            string    `json:"id"`
	EventID       int64     `json:"event_id"`
	TierID        string    `json:"tier_id"`
	Owner         string    `json:"owner"`
	PurchaseNonce string    `json:"purchase_nonce"`
	PricePaid     Wei       `json:"price_paid"`
	PurchasedAt   time.Time `json:"purchased_at"`
}

// Organizer is a wallet allowed to create events. Authorization is
// global, not per event.
type Organizer struct {
	Address      string    `json:"address"`
	AuthorizedBy string    `json:"authorized_by"`
	CreatedAt    time.Time `json:"created_at"`
}
