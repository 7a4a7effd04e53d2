package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prestiqx/ticket-ledger/internal/domain"
	"github.com/prestiqx/ticket-ledger/internal/dto"
	"github.com/prestiqx/ticket-ledger/internal/repository"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	CreateFunc           func(ctx context.Context, event *domain.Event) error
	GetByIDFunc          func(ctx context.Context, id int64) (*domain.Event, error)
	GetByIDWithTiersFunc func(ctx context.Context, id int64) (*domain.Event, error)
	ListFunc             func(ctx context.Context, filter *repository.EventFilter, limit, offset int) ([]*domain.Event, int, error)
	AddTierFunc          func(ctx context.Context, eventID int64, tier *domain.TicketTier) error
	GetTiersFunc         func(ctx context.Context, eventID int64) ([]*domain.TicketTier, error)
	GetTierByIDFunc      func(ctx context.Context, tierID string) (*domain.TicketTier, error)
	TransitionStatusFunc func(ctx context.Context, eventID int64, from, to domain.EventStatus) error
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	event.ID = 1
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) GetByIDWithTiers(ctx context.Context, id int64) (*domain.Event, error) {
	if m.GetByIDWithTiersFunc != nil {
		return m.GetByIDWithTiersFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) List(ctx context.Context, filter *repository.EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, limit, offset)
	}
	return []*domain.Event{}, 0, nil
}

func (m *MockEventRepository) AddTier(ctx context.Context, eventID int64, tier *domain.TicketTier) error {
	if m.AddTierFunc != nil {
		return m.AddTierFunc(ctx, eventID, tier)
	}
	tier.ID = "00000000-0000-0000-0000-000000000001"
	tier.EventID = eventID
	tier.Position = 1
	return nil
}

func (m *MockEventRepository) GetTiers(ctx context.Context, eventID int64) ([]*domain.TicketTier, error) {
	if m.GetTiersFunc != nil {
		return m.GetTiersFunc(ctx, eventID)
	}
	return []*domain.TicketTier{}, nil
}

func (m *MockEventRepository) GetTierByID(ctx context.Context, tierID string) (*domain.TicketTier, error) {
	if m.GetTierByIDFunc != nil {
		return m.GetTierByIDFunc(ctx, tierID)
	}
	return nil, domain.ErrTierNotFound
}

func (m *MockEventRepository) TransitionStatus(ctx context.Context, eventID int64, from, to domain.EventStatus) error {
	if m.TransitionStatusFunc != nil {
		return m.TransitionStatusFunc(ctx, eventID, from, to)
	}
	return nil
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	CreatePurchaseFunc func(ctx context.Context, ticket *domain.Ticket) error
	GetByNonceFunc     func(ctx context.Context, tierID, owner, nonce string) (*domain.Ticket, error)
	GetByOwnerFunc     func(ctx context.Context, owner string) ([]*domain.Ticket, error)
	GetByEventFunc     func(ctx context.Context, eventID int64, limit, offset int) ([]*domain.Ticket, int, error)
}

func (m *MockTicketRepository) CreatePurchase(ctx context.Context, ticket *domain.Ticket) error {
	if m.CreatePurchaseFunc != nil {
		return m.CreatePurchaseFunc(ctx, ticket)
	}
	return nil
}

func (m *MockTicketRepository) GetByNonce(ctx context.Context, tierID, owner, nonce string) (*domain.Ticket, error) {
	if m.GetByNonceFunc != nil {
		return m.GetByNonceFunc(ctx, tierID, owner, nonce)
	}
	return nil, domain.ErrTicketNotFound
}

func (m *MockTicketRepository) GetByOwner(ctx context.Context, owner string) ([]*domain.Ticket, error) {
	if m.GetByOwnerFunc != nil {
		return m.GetByOwnerFunc(ctx, owner)
	}
	return []*domain.Ticket{}, nil
}

func (m *MockTicketRepository) GetByEvent(ctx context.Context, eventID int64, limit, offset int) ([]*domain.Ticket, int, error) {
	if m.GetByEventFunc != nil {
		return m.GetByEventFunc(ctx, eventID, limit, offset)
	}
	return []*domain.Ticket{}, 0, nil
}

// MockAllocationStore is a mock implementation of AllocationStore
type MockAllocationStore struct {
	SeedFunc         func(ctx context.Context, tier *domain.TicketTier) error
	SellFunc         func(ctx context.Context, tierID string, payment domain.Wei) (*repository.SellResult, error)
	ReleaseFunc      func(ctx context.Context, tierID string) error
	GetRemainingFunc func(ctx context.Context, tierID string) (int64, bool, error)
}

func (m *MockAllocationStore) Seed(ctx context.Context, tier *domain.TicketTier) error {
	if m.SeedFunc != nil {
		return m.SeedFunc(ctx, tier)
	}
	return nil
}

func (m *MockAllocationStore) Sell(ctx context.Context, tierID string, payment domain.Wei) (*repository.SellResult, error) {
	if m.SellFunc != nil {
		return m.SellFunc(ctx, tierID, payment)
	}
	return &repository.SellResult{Success: true, Remaining: 99}, nil
}

func (m *MockAllocationStore) Release(ctx context.Context, tierID string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, tierID)
	}
	return nil
}

func (m *MockAllocationStore) GetRemaining(ctx context.Context, tierID string) (int64, bool, error) {
	if m.GetRemainingFunc != nil {
		return m.GetRemainingFunc(ctx, tierID)
	}
	return 100, true, nil
}

// MockOrganizerRepository is a mock implementation of OrganizerRepository
type MockOrganizerRepository struct {
	AuthorizeFunc    func(ctx context.Context, organizer *domain.Organizer) error
	IsAuthorizedFunc func(ctx context.Context, address string) (bool, error)
	GetByAddressFunc func(ctx context.Context, address string) (*domain.Organizer, error)
}

func (m *MockOrganizerRepository) Authorize(ctx context.Context, organizer *domain.Organizer) error {
	if m.AuthorizeFunc != nil {
		return m.AuthorizeFunc(ctx, organizer)
	}
	return nil
}

func (m *MockOrganizerRepository) IsAuthorized(ctx context.Context, address string) (bool, error) {
	if m.IsAuthorizedFunc != nil {
		return m.IsAuthorizedFunc(ctx, address)
	}
	return false, nil
}

func (m *MockOrganizerRepository) GetByAddress(ctx context.Context, address string) (*domain.Organizer, error) {
	if m.GetByAddressFunc != nil {
		return m.GetByAddressFunc(ctx, address)
	}
	return nil, domain.ErrOrganizerNotFound
}

// MockTierSyncer is a mock implementation of TierSyncer
type MockTierSyncer struct {
	SyncTierFunc func(ctx context.Context, tierID string) error
}

func (m *MockTierSyncer) SyncTier(ctx context.Context, tierID string) error {
	if m.SyncTierFunc != nil {
		return m.SyncTierFunc(ctx, tierID)
	}
	return nil
}

// MockPaymentClient is a mock implementation of TransferClient
type MockPaymentClient struct {
	TransferFunc func(ctx context.Context, from, to string, amount domain.Wei) (string, error)
	RefundFunc   func(ctx context.Context, transactionID string) error
}

func (m *MockPaymentClient) Transfer(ctx context.Context, from, to string, amount domain.Wei) (string, error) {
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, from, to, amount)
	}
	return "txn-123", nil
}

func (m *MockPaymentClient) Refund(ctx context.Context, transactionID string) error {
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, transactionID)
	}
	return nil
}

// MockLedgerPublisher is a mock implementation of LedgerPublisher
type MockLedgerPublisher struct {
	PublishEventCreatedFunc      func(ctx context.Context, eventID int64) error
	PublishEventPublishedFunc    func(ctx context.Context, eventID int64) error
	PublishEventEndedFunc        func(ctx context.Context, eventID int64) error
	PublishPurchaseCompletedFunc func(ctx context.Context, ticket *domain.Ticket) error
}

func (m *MockLedgerPublisher) PublishEventCreated(ctx context.Context, eventID int64) error {
	if m.PublishEventCreatedFunc != nil {
		return m.PublishEventCreatedFunc(ctx, eventID)
	}
	return nil
}

func (m *MockLedgerPublisher) PublishEventPublished(ctx context.Context, eventID int64) error {
	if m.PublishEventPublishedFunc != nil {
		return m.PublishEventPublishedFunc(ctx, eventID)
	}
	return nil
}

func (m *MockLedgerPublisher) PublishEventEnded(ctx context.Context, eventID int64) error {
	if m.PublishEventEndedFunc != nil {
		return m.PublishEventEndedFunc(ctx, eventID)
	}
	return nil
}

func (m *MockLedgerPublisher) PublishPurchaseCompleted(ctx context.Context, ticket *domain.Ticket) error {
	if m.PublishPurchaseCompletedFunc != nil {
		return m.PublishPurchaseCompletedFunc(ctx, ticket)
	}
	return nil
}

func (m *MockLedgerPublisher) Close() error { return nil }

const (
	testBuyer        = "0x1111111111111111111111111111111111111111"
	testOrganizer    = "0x2222222222222222222222222222222222222222"
	testFeeRecipient = "0x3333333333333333333333333333333333333333"
	testTierID       = "a1b2c3d4-0000-4000-8000-000000000001"
)

func publishedEvent() *domain.Event {
	return &domain.Event{
		ID:        42,
		Organizer: testOrganizer,
		Name:      "Royal Gala Evening",
		Venue:     "Grand Palace Hall",
		StartTime: time.Now().Add(30 * 24 * time.Hour),
		Status:    domain.EventStatusPublished,
	}
}

func standardTier() *domain.TicketTier {
	return &domain.TicketTier{
		ID:        testTierID,
		EventID:   42,
		Position:  1,
		Name:      "Royal Standard",
		PriceWei:  domain.MustParseWei("300000000000000000"),
		MaxSupply: 100,
		Sold:      0,
		Rarity:    domain.RarityCommon,
	}
}

func TestPurchaseService_BuyTicket(t *testing.T) {
	tests := []struct {
		name       string
		buyer      string
		req        *dto.BuyTicketRequest
		setupMocks func(*MockEventRepository, *MockTicketRepository, *MockAllocationStore, *MockPaymentClient)
		wantErr    error
		wantTicket bool
	}{
		{
			name:  "successful purchase",
			buyer: testBuyer,
			req: &dto.BuyTicketRequest{
				EventID:    42,
				TierID:     testTierID,
				PaymentWei: "300000000000000000",
				Nonce:      "nonce-001",
			},
			setupMocks: func(er *MockEventRepository, tr *MockTicketRepository, as *MockAllocationStore, pc *MockPaymentClient) {
				er.GetByIDFunc = func(ctx context.Context, id int64) (*domain.Event, error) {
					return publishedEvent(), nil
				}
				er.GetTierByIDFunc = func(ctx context.Context, tierID string) (*domain.TicketTier, error) {
					return standardTier(), nil
				}
			},
			wantErr:    nil,
			wantTicket: true,
		},
		{
			name:  "retried nonce returns existing ticket without selling",
			buyer: testBuyer,
			req: &dto.BuyTicketRequest{
				EventID:    42,
				TierID:     testTierID,
				PaymentWei: "300000000000000000",
				Nonce:      "nonce-001",
			},
			setupMocks: func(er *MockEventRepository, tr *MockTicketRepository, as *MockAllocationStore, pc *MockPaymentClient) {
				er.GetByIDFunc = func(ctx context.Context, id int64) (*domain.Event, error) {
					return publishedEvent(), nil
				}
				er.GetTierByIDFunc = func(ctx context.Context, tierID string) (*domain.TicketTier, error) {
					return standardTier(), nil
				}
				tr.GetByNonceFunc = func(ctx context.Context, tierID, owner, nonce string) (*domain.Ticket, error) {
					return &domain.Ticket{
						ID:            "existing-ticket-id",
						EventID:       42,
						TierID:        tierID,
						Owner:         owner,
						PurchaseNonce: nonce,
						PricePaid:     domain.MustParseWei("300000000000000000"),
					}, nil
				}
				as.SellFunc = func(ctx context.Context, tierID string, payment domain.Wei) (*repository.SellResult, error) {
					t.Error("Sell() must not be called for a replayed nonce")
					return nil, errors.New("unreachable")
				}
			},
			wantErr:    nil,
			wantTicket: true,
		},
		{
			name:  "sold out",
			buyer: testBuyer,
			req: &dto.BuyTicketRequest{
				EventID:    42,
				TierID:     testTierID,
				PaymentWei: "300000000000000000",
				Nonce:      "nonce-002",
			},
			setupMocks: func(er *MockEventRepository, tr *MockTicketRepository, as *MockAllocationStore, pc *MockPaymentClient) {
				er.GetByIDFunc = func(ctx context.Context, id int64) (*domain.Event, error) {
					return publishedEvent(), nil
				}
				er.GetTierByIDFunc = func(ctx context.Context, tierID string) (*domain.TicketTier, error) {
					return standardTier(), nil
				}
				as.SellFunc = func(ctx context.Context, tierID string, payment domain.Wei) (*repository.SellResult, error) {
					return &repository.SellResult{
						Success:   false,
						ErrorCode: repository.AllocErrSoldOut,
					}, nil
				}
			},
			wantErr: domain.ErrSoldOut,
		},
		{
			name:  "underpayment by one wei",
			buyer: testBuyer,
			req: &dto.BuyTicketRequest{
				EventID:    42,
				TierID:     testTierID,
				PaymentWei: "299999999999999999",
				Nonce:      "nonce-003",
			},
			setupMocks: func(er *MockEventRepository, tr *MockTicketRepository, as *MockAllocationStore, pc *MockPaymentClient) {
				er.GetByIDFunc = func(ctx context.Context, id int64) (*domain.Event, error) {
					return publishedEvent(), nil
				}
				er.GetTierByIDFunc = func(ctx context.Context, tierID string) (*domain.TicketTier, error) {
					return standardTier(), nil
				}
				as.SellFunc = func(ctx context.Context, tierID string, payment domain.Wei) (*repository.SellResult, error) {
					return &repository.SellResult{
						Success:   false,
						ErrorCode: repository.AllocErrPriceMismatch,
					}, nil
				}
			},
			wantErr: domain.ErrWrongPayment,
		},
		{
			name:  "event still draft",
			buyer: testBuyer,
			req: &dto.BuyTicketRequest{
				EventID:    42,
				TierID:     testTierID,
				PaymentWei: "300000000000000000",
				Nonce:      "nonce-004",
			},
			setupMocks: func(er *MockEventRepository, tr *MockTicketRepository, as *MockAllocationStore, pc *MockPaymentClient) {
				er.GetByIDFunc = func(ctx context.Context, id int64) (*domain.Event, error) {
					event := publishedEvent()
					event.Status = domain.EventStatusDraft
					return event, nil
				}
			},
			wantErr: domain.ErrEventNotPublished,
		},
		{
			name:  "event ended",
			buyer: testBuyer,
			req: &dto.BuyTicketRequest{
				EventID:    42,
				TierID:     testTierID,
				PaymentWei: "300000000000000000",
				Nonce:      "nonce-005",
			},
			setupMocks: func(er *MockEventRepository, tr *MockTicketRepository, as *MockAllocationStore, pc *MockPaymentClient) {
				er.GetByIDFunc = func(ctx context.Context, id int64) (*domain.Event, error) {
					event := publishedEvent()
					event.Status = domain.EventStatusEnded
					return event, nil
				}
			},
			wantErr: domain.ErrEventEnded,
		},
		{
			name:  "tier belongs to another event",
			buyer: testBuyer,
			req: &dto.BuyTicketRequest{
				EventID:    42,
				TierID:     testTierID,
				PaymentWei: "300000000000000000",
				Nonce:      "nonce-006",
			},
			setupMocks: func(er *MockEventRepository, tr *MockTicketRepository, as *MockAllocationStore, pc *MockPaymentClient) {
				er.GetByIDFunc = func(ctx context.Context, id int64) (*domain.Event, error) {
					return publishedEvent(), nil
				}
				er.GetTierByIDFunc = func(ctx context.Context, tierID string) (*domain.TicketTier, error) {
					tier := standardTier()
					tier.EventID = 99
					return tier, nil
				}
			},
			wantErr: domain.ErrTierNotFound,
		},
		{
			name:  "payment failure releases the allocation",
			buyer: testBuyer,
			req: &dto.BuyTicketRequest{
				EventID:    42,
				TierID:     testTierID,
				PaymentWei: "300000000000000000",
				Nonce:      "nonce-007",
			},
			setupMocks: func(er *MockEventRepository, tr *MockTicketRepository, as *MockAllocationStore, pc *MockPaymentClient) {
				er.GetByIDFunc = func(ctx context.Context, id int64) (*domain.Event, error) {
					return publishedEvent(), nil
				}
				er.GetTierByIDFunc = func(ctx context.Context, tierID string) (*domain.TicketTier, error) {
					return standardTier(), nil
				}
				pc.TransferFunc = func(ctx context.Context, from, to string, amount domain.Wei) (string, error) {
					return "", domain.ErrPaymentFailed
				}
				released := false
				as.ReleaseFunc = func(ctx context.Context, tierID string) error {
					released = true
					return nil
				}
				tr.CreatePurchaseFunc = func(ctx context.Context, ticket *domain.Ticket) error {
					if !released {
						t.Error("allocation must be released before any persist attempt")
					}
					t.Error("CreatePurchase() must not be called after a failed payment")
					return nil
				}
			},
			wantErr: domain.ErrPaymentFailed,
		},
		{
			name:  "invalid nonce",
			buyer: testBuyer,
			req: &dto.BuyTicketRequest{
				EventID:    42,
				TierID:     testTierID,
				PaymentWei: "300000000000000000",
				Nonce:      "",
			},
			wantErr: domain.ErrInvalidNonce,
		},
		{
			name:  "invalid payment amount",
			buyer: testBuyer,
			req: &dto.BuyTicketRequest{
				EventID:    42,
				TierID:     testTierID,
				PaymentWei: "-1",
				Nonce:      "nonce-008",
			},
			wantErr: domain.ErrInvalidWeiAmount,
		},
		{
			name:  "invalid buyer address",
			buyer: "not-an-address",
			req: &dto.BuyTicketRequest{
				EventID:    42,
				TierID:     testTierID,
				PaymentWei: "300000000000000000",
				Nonce:      "nonce-009",
			},
			wantErr: domain.ErrInvalidAddress,
		},
		{
			name:  "invalid tier id",
			buyer: testBuyer,
			req: &dto.BuyTicketRequest{
				EventID:    42,
				TierID:     "not-a-uuid",
				PaymentWei: "300000000000000000",
				Nonce:      "nonce-010",
			},
			wantErr: domain.ErrInvalidTierID,
		},
		{
			name:    "nil request",
			buyer:   testBuyer,
			req:     nil,
			wantErr: domain.ErrInvalidNonce,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := &MockEventRepository{}
			ticketRepo := &MockTicketRepository{}
			allocs := &MockAllocationStore{}
			payments := &MockPaymentClient{}

			if tt.setupMocks != nil {
				tt.setupMocks(eventRepo, ticketRepo, allocs, payments)
			}

			svc := NewPurchaseService(eventRepo, ticketRepo, allocs, &MockTierSyncer{}, payments, nil, testFeeRecipient)

			resp, err := svc.BuyTicket(context.Background(), tt.buyer, tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("BuyTicket() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("BuyTicket() unexpected error = %v", err)
				return
			}

			if tt.wantTicket && resp.ID == "" {
				t.Error("BuyTicket() expected ticket ID, got empty")
			}
		})
	}
}

func TestPurchaseService_BuyTicket_TierSyncRetry(t *testing.T) {
	eventRepo := &MockEventRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*domain.Event, error) {
			return publishedEvent(), nil
		},
		GetTierByIDFunc: func(ctx context.Context, tierID string) (*domain.TicketTier, error) {
			return standardTier(), nil
		},
	}
	ticketRepo := &MockTicketRepository{}
	payments := &MockPaymentClient{}

	sellCalls := 0
	allocs := &MockAllocationStore{
		SellFunc: func(ctx context.Context, tierID string, payment domain.Wei) (*repository.SellResult, error) {
			sellCalls++
			if sellCalls == 1 {
				return &repository.SellResult{
					Success:   false,
					ErrorCode: repository.AllocErrTierNotFound,
				}, nil
			}
			return &repository.SellResult{Success: true, Remaining: 99}, nil
		},
	}

	synced := false
	syncer := &MockTierSyncer{
		SyncTierFunc: func(ctx context.Context, tierID string) error {
			synced = true
			if tierID != testTierID {
				t.Errorf("SyncTier() tierID = %v, want %v", tierID, testTierID)
			}
			return nil
		},
	}

	svc := NewPurchaseService(eventRepo, ticketRepo, allocs, syncer, payments, nil, testFeeRecipient)

	resp, err := svc.BuyTicket(context.Background(), testBuyer, &dto.BuyTicketRequest{
		EventID:    42,
		TierID:     testTierID,
		PaymentWei: "300000000000000000",
		Nonce:      "nonce-sync",
	})
	if err != nil {
		t.Fatalf("BuyTicket() unexpected error = %v", err)
	}
	if !synced {
		t.Error("expected the tier syncer to run after a missing counter")
	}
	if sellCalls != 2 {
		t.Errorf("Sell() calls = %d, want 2", sellCalls)
	}
	if resp.ID == "" {
		t.Error("BuyTicket() expected ticket ID, got empty")
	}
}

func TestPurchaseService_BuyTicket_DuplicateInsertReturnsExisting(t *testing.T) {
	eventRepo := &MockEventRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*domain.Event, error) {
			return publishedEvent(), nil
		},
		GetTierByIDFunc: func(ctx context.Context, tierID string) (*domain.TicketTier, error) {
			return standardTier(), nil
		},
	}

	// First GetByNonce misses, the insert then loses to a concurrent
	// retry, and the second GetByNonce finds the winner's ticket.
	nonceLookups := 0
	ticketRepo := &MockTicketRepository{
		GetByNonceFunc: func(ctx context.Context, tierID, owner, nonce string) (*domain.Ticket, error) {
			nonceLookups++
			if nonceLookups == 1 {
				return nil, domain.ErrTicketNotFound
			}
			return &domain.Ticket{
				ID:            "winner-ticket-id",
				EventID:       42,
				TierID:        tierID,
				Owner:         owner,
				PurchaseNonce: nonce,
				PricePaid:     domain.MustParseWei("300000000000000000"),
			}, nil
		},
		CreatePurchaseFunc: func(ctx context.Context, ticket *domain.Ticket) error {
			return repository.ErrDuplicatePurchase
		},
	}

	released := false
	allocs := &MockAllocationStore{
		ReleaseFunc: func(ctx context.Context, tierID string) error {
			released = true
			return nil
		},
	}

	refunded := false
	payments := &MockPaymentClient{
		RefundFunc: func(ctx context.Context, transactionID string) error {
			refunded = true
			return nil
		},
	}

	svc := NewPurchaseService(eventRepo, ticketRepo, allocs, &MockTierSyncer{}, payments, nil, testFeeRecipient)

	resp, err := svc.BuyTicket(context.Background(), testBuyer, &dto.BuyTicketRequest{
		EventID:    42,
		TierID:     testTierID,
		PaymentWei: "300000000000000000",
		Nonce:      "nonce-dup",
	})
	if err != nil {
		t.Fatalf("BuyTicket() unexpected error = %v", err)
	}
	if resp.ID != "winner-ticket-id" {
		t.Errorf("BuyTicket() ID = %v, want winner-ticket-id", resp.ID)
	}
	if !released {
		t.Error("expected the losing attempt to release its allocation")
	}
	if !refunded {
		t.Error("expected the losing attempt to refund its transfer")
	}
}

func TestPurchaseService_GetTicketsByOwner(t *testing.T) {
	tests := []struct {
		name       string
		owner      string
		setupMocks func(*MockTicketRepository)
		wantErr    error
		wantCount  int
	}{
		{
			name:  "successful get",
			owner: "0x1111111111111111111111111111111111111111",
			setupMocks: func(tr *MockTicketRepository) {
				tr.GetByOwnerFunc = func(ctx context.Context, owner string) ([]*domain.Ticket, error) {
					return []*domain.Ticket{
						{ID: "ticket-1", Owner: owner, PricePaid: domain.WeiFromUint64(1)},
						{ID: "ticket-2", Owner: owner, PricePaid: domain.WeiFromUint64(2)},
					}, nil
				}
			},
			wantCount: 2,
		},
		{
			name:  "owner address is normalized before lookup",
			owner: "0xABCDEF1111111111111111111111111111111111",
			setupMocks: func(tr *MockTicketRepository) {
				tr.GetByOwnerFunc = func(ctx context.Context, owner string) ([]*domain.Ticket, error) {
					if owner != "0xabcdef1111111111111111111111111111111111" {
						t.Errorf("GetByOwner() owner = %v, want lowercase canonical form", owner)
					}
					return []*domain.Ticket{}, nil
				}
			},
			wantCount: 0,
		},
		{
			name:    "invalid owner",
			owner:   "0xZZ",
			wantErr: domain.ErrInvalidAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticketRepo := &MockTicketRepository{}
			if tt.setupMocks != nil {
				tt.setupMocks(ticketRepo)
			}

			svc := NewPurchaseService(&MockEventRepository{}, ticketRepo, &MockAllocationStore{}, &MockTierSyncer{}, &MockPaymentClient{}, nil, testFeeRecipient)

			resp, err := svc.GetTicketsByOwner(context.Background(), tt.owner)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetTicketsByOwner() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("GetTicketsByOwner() unexpected error = %v", err)
				return
			}

			if len(resp) != tt.wantCount {
				t.Errorf("GetTicketsByOwner() count = %d, want %d", len(resp), tt.wantCount)
			}
		})
	}
}

func TestPurchaseService_GetTicketsByEvent(t *testing.T) {
	eventRepo := &MockEventRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*domain.Event, error) {
			if id != 42 {
				return nil, domain.ErrEventNotFound
			}
			return publishedEvent(), nil
		},
	}
	ticketRepo := &MockTicketRepository{
		GetByEventFunc: func(ctx context.Context, eventID int64, limit, offset int) ([]*domain.Ticket, int, error) {
			return []*domain.Ticket{
				{ID: "ticket-1", EventID: eventID, PricePaid: domain.WeiFromUint64(1)},
			}, 1, nil
		},
	}

	svc := NewPurchaseService(eventRepo, ticketRepo, &MockAllocationStore{}, &MockTierSyncer{}, &MockPaymentClient{}, nil, testFeeRecipient)

	t.Run("successful get", func(t *testing.T) {
		resp, err := svc.GetTicketsByEvent(context.Background(), 42, 0, 0)
		if err != nil {
			t.Fatalf("GetTicketsByEvent() unexpected error = %v", err)
		}
		if len(resp.Tickets) != 1 || resp.Total != 1 {
			t.Errorf("GetTicketsByEvent() tickets = %d total = %d, want 1/1", len(resp.Tickets), resp.Total)
		}
		if resp.Limit != 20 {
			t.Errorf("GetTicketsByEvent() default limit = %d, want 20", resp.Limit)
		}
	})

	t.Run("event not found", func(t *testing.T) {
		_, err := svc.GetTicketsByEvent(context.Background(), 999, 0, 0)
		if !errors.Is(err, domain.ErrEventNotFound) {
			t.Errorf("GetTicketsByEvent() error = %v, want %v", err, domain.ErrEventNotFound)
		}
	})

	t.Run("invalid event id", func(t *testing.T) {
		_, err := svc.GetTicketsByEvent(context.Background(), 0, 0, 0)
		if !errors.Is(err, domain.ErrInvalidEventID) {
			t.Errorf("GetTicketsByEvent() error = %v, want %v", err, domain.ErrInvalidEventID)
		}
	})
}
