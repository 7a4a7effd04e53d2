package dto

import (
	"time"

	"github.com/prestiqx/ticket-ledger/internal/domain"
)

// AuthorizeOrganizerRequest represents request to authorize a wallet
// as an organizer
type AuthorizeOrganizerRequest struct {
	Address string `json:"address" binding:"required"`
}

// OrganizerResponse represents an organizer in API responses
type OrganizerResponse struct {
	Address      string    `json:"address"`
	AuthorizedBy string    `json:"authorized_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// BuyTicketRequest represents a purchase attempt. PaymentWei must
// equal the tier price exactly; Nonce makes retries idempotent.
type BuyTicketRequest struct {
	EventID    int64  `json:"event_id" binding:"required,min=1"`
	TierID     string `json:"tier_id" binding:"required,uuid"`
	PaymentWei string `json:"payment_wei" binding:"required"`
	Nonce      string `json:"nonce" binding:"required,max=128"`
}

// TicketResponse represents an issued ticket in API responses
type TicketResponse struct {
	ID            string    `json:"id"`
	EventID       int64     `json:"event_id"`
	TierID        string    `json:"tier_id"`
	Owner         string    `json:"owner"`
	PurchaseNonce string    `json:"purchase_nonce"`
	PricePaid     string    `json:"price_paid"`
	PurchasedAt   time.Time `json:"purchased_at"`
}

// TicketListResponse represents a paginated ticket list
type TicketListResponse struct {
	Tickets []*TicketResponse `json:"tickets"`
	Total   int               `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}

// OrganizerFromDomain converts a domain Organizer to OrganizerResponse
func OrganizerFromDomain(o *domain.Organizer) *OrganizerResponse {
	return &OrganizerResponse{
		Address:      o.Address,
		AuthorizedBy: o.AuthorizedBy,
		CreatedAt:    o.CreatedAt,
	}
}

// TicketFromDomain converts a domain Ticket to TicketResponse
func TicketFromDomain(t *domain.Ticket) *TicketResponse {
	return &TicketResponse{
		ID:            t.ID,
		EventID:       t.EventID,
		TierID:        t.TierID,
		Owner:         t.Owner,
		PurchaseNonce: t.PurchaseNonce,
		PricePaid:     t.PricePaid.String(),
		PurchasedAt:   t.PurchasedAt,
	}
}

// TicketsFromDomain converts a slice of tickets
func TicketsFromDomain(tickets []*domain.Ticket) []*TicketResponse {
	out := make([]*TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, TicketFromDomain(t))
	}
	return out
}
