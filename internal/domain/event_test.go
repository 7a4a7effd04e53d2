package domain

import (
	"errors"
	"testing"
)

func TestEvent_Publish(t *testing.T) {
	tests := []struct {
		name       string
		status     EventStatus
		wantErr    error
		wantStatus EventStatus
	}{
		{name: "from draft", status: EventStatusDraft, wantStatus: EventStatusPublished},
		{name: "already published", status: EventStatusPublished, wantErr: ErrEventAlreadyPublished, wantStatus: EventStatusPublished},
		{name: "after end", status: EventStatusEnded, wantErr: ErrEventEnded, wantStatus: EventStatusEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Event{Status: tt.status}
			err := e.Publish()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Publish() = %v, want %v", err, tt.wantErr)
			}
			if e.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", e.Status, tt.wantStatus)
			}
		})
	}
}

func TestEvent_End(t *testing.T) {
	tests := []struct {
		name       string
		status     EventStatus
		wantErr    error
		wantStatus EventStatus
	}{
		{name: "from published", status: EventStatusPublished, wantStatus: EventStatusEnded},
		{name: "from draft", status: EventStatusDraft, wantErr: ErrEventNotPublished, wantStatus: EventStatusDraft},
		{name: "already ended", status: EventStatusEnded, wantErr: ErrEventEnded, wantStatus: EventStatusEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Event{Status: tt.status}
			err := e.End()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("End() = %v, want %v", err, tt.wantErr)
			}
			if e.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", e.Status, tt.wantStatus)
			}
		})
	}
}

func TestTicketTier_Remaining(t *testing.T) {
	tier := &TicketTier{MaxSupply: 100, Sold: 97}
	if got := tier.Remaining(); got != 3 {
		t.Errorf("Remaining() = %d, want 3", got)
	}
	if tier.SoldOut() {
		t.Error("tier with remaining capacity should not be sold out")
	}

	tier.Sold = 100
	if got := tier.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
	if !tier.SoldOut() {
		t.Error("tier at capacity should be sold out")
	}

	// sold never exceeds supply, but Remaining stays non-negative if it does
	tier.Sold = 101
	if got := tier.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
}

func TestTicketTier_Validate(t *testing.T) {
	valid := func() *TicketTier {
		return &TicketTier{
			Name:      "Imperial VIP",
			PriceWei:  MustParseWei("500000000000000000"),
			MaxSupply: 50,
			Rarity:    RarityRare,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*TicketTier)
		wantErr error
	}{
		{name: "valid", mutate: func(*TicketTier) {}},
		{name: "missing name", mutate: func(t *TicketTier) { t.Name = "" }, wantErr: ErrInvalidTierName},
		{name: "zero price", mutate: func(t *TicketTier) { t.PriceWei = MustParseWei("0") }, wantErr: ErrInvalidPrice},
		{name: "zero supply", mutate: func(t *TicketTier) { t.MaxSupply = 0 }, wantErr: ErrInvalidSupply},
		{name: "negative supply", mutate: func(t *TicketTier) { t.MaxSupply = -1 }, wantErr: ErrInvalidSupply},
		{name: "unknown rarity", mutate: func(t *TicketTier) { t.Rarity = "mythic" }, wantErr: ErrInvalidRarity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := valid()
			tt.mutate(tier)
			if err := tier.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
	}{
		{name: "validation", err: ErrInvalidAddress, pred: IsValidationError},
		{name: "authorization", err: ErrNotEventOwner, pred: IsAuthorizationError},
		{name: "state", err: ErrEventNotDraft, pred: IsStateError},
		{name: "capacity", err: ErrSoldOut, pred: IsCapacityError},
		{name: "payment", err: ErrWrongPayment, pred: IsPaymentError},
		{name: "not found", err: ErrTierNotFound, pred: IsNotFoundError},
	}

	preds := map[string]func(error) bool{
		"validation":    IsValidationError,
		"authorization": IsAuthorizationError,
		"state":         IsStateError,
		"capacity":      IsCapacityError,
		"payment":       IsPaymentError,
		"not found":     IsNotFoundError,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.pred(tt.err) {
				t.Errorf("%v should classify as %s", tt.err, tt.name)
			}
			// each error belongs to exactly one class
			for name, pred := range preds {
				if name != tt.name && pred(tt.err) {
					t.Errorf("%v should not classify as %s", tt.err, name)
				}
			}
		})
	}
}
