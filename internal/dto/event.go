package dto

import (
	"time"

	"github.com/prestiqx/ticket-ledger/internal/domain"
)

// CreateEventRequest represents request to create a draft event
type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required,max=200"`
	Description string    `json:"description,omitempty"`
	Venue       string    `json:"venue" binding:"required,max=200"`
	StartTime   time.Time `json:"start_time" binding:"required"`
}

// AddTierRequest represents request to append a ticket tier
type AddTierRequest struct {
	Name      string   `json:"name" binding:"required,max=200"`
	PriceWei  string   `json:"price_wei" binding:"required"`
	MaxSupply int      `json:"max_supply" binding:"required,min=1"`
	Rarity    string   `json:"rarity" binding:"required,oneof=common rare legendary"`
	Perks     []string `json:"perks,omitempty"`
}

// TierResponse represents a ticket tier in API responses
type TierResponse struct {
	ID        string    `json:"id"`
	EventID   int64     `json:"event_id"`
	Position  int       `json:"position"`
	Name      string    `json:"name"`
	PriceWei  string    `json:"price_wei"`
	MaxSupply int       `json:"max_supply"`
	Sold      int       `json:"sold"`
	Remaining int       `json:"remaining"`
	Rarity    string    `json:"rarity"`
	Perks     []string  `json:"perks"`
	CreatedAt time.Time `json:"created_at"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID          int64           `json:"id"`
	Organizer   string          `json:"organizer"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Venue       string          `json:"venue"`
	StartTime   time.Time       `json:"start_time"`
	Status      string          `json:"status"`
	TicketsSold int             `json:"tickets_sold"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Tiers       []*TierResponse `json:"tiers,omitempty"`
}

// EventListResponse represents a paginated event list
type EventListResponse struct {
	Events []*EventResponse `json:"events"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// TierFromDomain converts a domain TicketTier to TierResponse
func TierFromDomain(t *domain.TicketTier) *TierResponse {
	perks := t.Perks
	if perks == nil {
		perks = []string{}
	}
	return &TierResponse{
		ID:        t.ID,
		EventID:   t.EventID,
		Position:  t.Position,
		Name:      t.Name,
		PriceWei:  t.PriceWei.String(),
		MaxSupply: t.MaxSupply,
		Sold:      t.Sold,
		Remaining: t.Remaining(),
		Rarity:    string(t.Rarity),
		Perks:     perks,
		CreatedAt: t.CreatedAt,
	}
}

// EventFromDomain converts a domain Event to EventResponse
func EventFromDomain(e *domain.Event) *EventResponse {
	resp := &EventResponse{
		ID:          e.ID,
		Organizer:   e.Organizer,
		Name:        e.Name,
		Description: e.Description,
		Venue:       e.Venue,
		StartTime:   e.StartTime,
		Status:      string(e.Status),
		TicketsSold: e.TicketsSold,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	for _, tier := range e.Tiers {
		resp.Tiers = append(resp.Tiers, TierFromDomain(tier))
	}
	return resp
}
