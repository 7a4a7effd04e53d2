package domain

import (
	"fmt"
	"time"
)

// LedgerEventType identifies a published ledger event
type LedgerEventType string

const (
	LedgerEventEventCreated      LedgerEventType = "event.created"
	LedgerEventEventPublished    LedgerEventType = "event.published"
	LedgerEventEventEnded        LedgerEventType = "event.ended"
	LedgerEventPurchaseCompleted LedgerEventType = "purchase.completed"
)

// LedgerEvent is the envelope published to the event stream
type LedgerEvent struct {
	EventID   string          `json:"event_id"`
	Type      LedgerEventType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`

	// LedgerEventID is the affected catalog event
	LedgerEventID int64 `json:"ledger_event_id"`
	// Ticket is set for purchase events
	Ticket *Ticket `json:"ticket,omitempty"`
}

// NewCatalogEvent builds an envelope for a lifecycle transition
func NewCatalogEvent(t LedgerEventType, eventID int64, envelopeID string) *LedgerEvent {
	return &LedgerEvent{
		EventID:       envelopeID,
		Type:          t,
		Timestamp:     time.Now().UTC(),
		LedgerEventID: eventID,
	}
}

// NewPurchaseEvent builds an envelope for a completed purchase
func NewPurchaseEvent(ticket *Ticket, envelopeID string) *LedgerEvent {
	return &LedgerEvent{
		EventID:       envelopeID,
		Type:          LedgerEventPurchaseCompleted,
		Timestamp:     time.Now().UTC(),
		LedgerEventID: ticket.EventID,
		Ticket:        ticket,
	}
}

// Key returns the partition key. Events for the same catalog event
// stay ordered.
func (e *LedgerEvent) Key() string {
	return fmt.Sprintf("event:%d", e.LedgerEventID)
}
