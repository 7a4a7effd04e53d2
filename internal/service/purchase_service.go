package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/prestiqx/ticket-ledger/internal/domain"
	"github.com/prestiqx/ticket-ledger/internal/dto"
	"github.com/prestiqx/ticket-ledger/internal/metrics"
	"github.com/prestiqx/ticket-ledger/internal/repository"
	"github.com/prestiqx/ticket-ledger/pkg/logger"
	"github.com/prestiqx/ticket-ledger/pkg/telemetry"
)

const maxNonceLength = 128

// PurchaseService defines the interface for ticket purchase operations
type PurchaseService interface {
	// BuyTicket atomically purchases one ticket from a tier. Retrying
	// with the same nonce returns the ticket issued the first time.
	BuyTicket(ctx context.Context, buyer string, req *dto.BuyTicketRequest) (*dto.TicketResponse, error)

	// GetTicketsByOwner retrieves all tickets held by a wallet
	GetTicketsByOwner(ctx context.Context, owner string) ([]*dto.TicketResponse, error)

	// GetTicketsByEvent retrieves tickets issued for an event
	GetTicketsByEvent(ctx context.Context, eventID int64, limit, offset int) (*dto.TicketListResponse, error)
}

// purchaseService implements PurchaseService
type purchaseService struct {
	eventRepo    repository.EventRepository
	ticketRepo   repository.TicketRepository
	allocs       repository.AllocationStore
	tierSyncer   TierSyncer
	payments     TransferClient
	publisher    LedgerPublisher
	feeRecipient string
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
	allocs repository.AllocationStore,
	tierSyncer TierSyncer,
	payments TransferClient,
	publisher LedgerPublisher,
	feeRecipient string,
) PurchaseService {
	if publisher == nil {
		publisher = NewNoOpLedgerPublisher()
	}
	return &purchaseService{
		eventRepo:    eventRepo,
		ticketRepo:   ticketRepo,
		allocs:       allocs,
		tierSyncer:   tierSyncer,
		payments:     payments,
		publisher:    publisher,
		feeRecipient: feeRecipient,
	}
}

// BuyTicket atomically purchases one ticket from a tier.
//
// The allocation store holds the critical section: Sell atomically
// checks supply and price and decrements, so two buyers racing for the
// last ticket can never both win. Everything after a successful Sell
// either completes the purchase or compensates by releasing the unit
// and refunding the transfer.
func (s *purchaseService) BuyTicket(ctx context.Context, buyer string, req *dto.BuyTicketRequest) (*dto.TicketResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.buy_ticket")
	defer span.End()

	start := time.Now()

	owner, err := domain.NormalizeAddress(buyer)
	if err != nil {
		span.SetStatus(codes.Error, "invalid buyer")
		return nil, err
	}
	if req == nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, domain.ErrInvalidNonce
	}
	nonce := strings.TrimSpace(req.Nonce)
	if nonce == "" || len(nonce) > maxNonceLength {
		span.SetStatus(codes.Error, "invalid nonce")
		return nil, domain.ErrInvalidNonce
	}
	if req.EventID <= 0 {
		span.SetStatus(codes.Error, "invalid event id")
		return nil, domain.ErrInvalidEventID
	}
	if _, err := uuid.Parse(req.TierID); err != nil {
		span.SetStatus(codes.Error, "invalid tier id")
		return nil, domain.ErrInvalidTierID
	}
	payment, err := domain.ParseWei(req.PaymentWei)
	if err != nil {
		span.SetStatus(codes.Error, "invalid payment")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("event_id", req.EventID),
		attribute.String("tier_id", req.TierID),
		attribute.String("owner", owner),
	)

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !event.IsOnSale() {
		var stateErr error
		if event.Status == domain.EventStatusEnded {
			stateErr = domain.ErrEventEnded
		} else {
			stateErr = domain.ErrEventNotPublished
		}
		metrics.RecordPurchaseFailure(ctx, req.EventID, "event_not_on_sale")
		span.SetStatus(codes.Error, stateErr.Error())
		return nil, stateErr
	}

	tier, err := s.eventRepo.GetTierByID(ctx, req.TierID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if tier.EventID != req.EventID {
		span.SetStatus(codes.Error, "tier belongs to another event")
		return nil, domain.ErrTierNotFound
	}

	// Replay check before touching the allocation: a retried nonce must
	// not burn a second unit of supply.
	if existing, err := s.ticketRepo.GetByNonce(ctx, tier.ID, owner, nonce); err == nil {
		metrics.RecordPurchaseReplay(ctx, req.EventID)
		span.SetAttributes(attribute.Bool("replayed", true))
		span.SetStatus(codes.Ok, "")
		return dto.TicketFromDomain(existing), nil
	} else if !errors.Is(err, domain.ErrTicketNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result, err := s.sellWithSync(ctx, tier.ID, payment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to allocate ticket: %w", err)
	}
	if !result.Success {
		var saleErr error
		switch result.ErrorCode {
		case repository.AllocErrSoldOut:
			saleErr = domain.ErrSoldOut
		case repository.AllocErrPriceMismatch:
			saleErr = domain.ErrWrongPayment
		default:
			saleErr = domain.ErrTierNotFound
		}
		metrics.RecordPurchaseFailure(ctx, req.EventID, result.ErrorCode)
		span.SetAttributes(attribute.String("failure_code", result.ErrorCode))
		span.SetStatus(codes.Error, saleErr.Error())
		return nil, saleErr
	}

	span.SetAttributes(attribute.Int64("remaining_after", result.Remaining))

	txnID, err := s.payments.Transfer(ctx, owner, s.feeRecipient, payment)
	if err != nil {
		s.releaseUnit(ctx, tier.ID)
		metrics.RecordPurchaseFailure(ctx, req.EventID, "payment_failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment failed")
		if domain.IsPaymentError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}

	ticket := &domain.Ticket{
		ID:            uuid.New().String(),
		EventID:       event.ID,
		TierID:        tier.ID,
		Owner:         owner,
		PurchaseNonce: nonce,
		PricePaid:     payment,
		PurchasedAt:   time.Now().UTC(),
	}

	if err := s.ticketRepo.CreatePurchase(ctx, ticket); err != nil {
		s.releaseUnit(ctx, tier.ID)
		s.refundTransfer(ctx, txnID)

		if errors.Is(err, repository.ErrDuplicatePurchase) {
			// A concurrent retry with the same nonce won the insert.
			existing, getErr := s.ticketRepo.GetByNonce(ctx, tier.ID, owner, nonce)
			if getErr != nil {
				span.SetStatus(codes.Error, getErr.Error())
				return nil, getErr
			}
			metrics.RecordPurchaseReplay(ctx, req.EventID)
			span.SetAttributes(attribute.Bool("replayed", true))
			span.SetStatus(codes.Ok, "")
			return dto.TicketFromDomain(existing), nil
		}

		metrics.RecordPurchaseFailure(ctx, req.EventID, "persist_failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	if err := s.publisher.PublishPurchaseCompleted(ctx, ticket); err != nil {
		logger.Get().Warn("failed to publish purchase event",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}

	metrics.RecordSale(ctx, event.ID, tier.ID, time.Since(start).Seconds())
	span.SetAttributes(attribute.String("ticket_id", ticket.ID))
	span.SetStatus(codes.Ok, "")
	return dto.TicketFromDomain(ticket), nil
}

// sellWithSync attempts the allocation, re-seeding the tier counter
// once if the store has not seen it. The counter can be missing after
// a cache flush or when a purchase lands before the publish-time seed.
func (s *purchaseService) sellWithSync(ctx context.Context, tierID string, payment domain.Wei) (*repository.SellResult, error) {
	result, err := s.allocs.Sell(ctx, tierID, payment)
	if err != nil {
		return nil, err
	}
	if result.Success || result.ErrorCode != repository.AllocErrTierNotFound || s.tierSyncer == nil {
		return result, nil
	}

	if err := s.tierSyncer.SyncTier(ctx, tierID); err != nil {
		return nil, err
	}
	return s.allocs.Sell(ctx, tierID, payment)
}

// releaseUnit returns one unit of supply after a failed purchase
func (s *purchaseService) releaseUnit(ctx context.Context, tierID string) {
	if err := s.allocs.Release(ctx, tierID); err != nil {
		logger.Get().Error("failed to release allocation",
			zap.String("tier_id", tierID),
			zap.Error(err),
		)
	}
}

// refundTransfer reverses a completed transfer after a failed purchase
func (s *purchaseService) refundTransfer(ctx context.Context, txnID string) {
	if err := s.payments.Refund(ctx, txnID); err != nil {
		logger.Get().Error("failed to refund transfer",
			zap.String("transaction_id", txnID),
			zap.Error(err),
		)
	}
}

// GetTicketsByOwner retrieves all tickets held by a wallet
func (s *purchaseService) GetTicketsByOwner(ctx context.Context, owner string) ([]*dto.TicketResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.get_tickets_by_owner")
	defer span.End()

	normalized, err := domain.NormalizeAddress(owner)
	if err != nil {
		span.SetStatus(codes.Error, "invalid owner")
		return nil, err
	}

	span.SetAttributes(attribute.String("owner", normalized))

	tickets, err := s.ticketRepo.GetByOwner(ctx, normalized)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return dto.TicketsFromDomain(tickets), nil
}

// GetTicketsByEvent retrieves tickets issued for an event
func (s *purchaseService) GetTicketsByEvent(ctx context.Context, eventID int64, limit, offset int) (*dto.TicketListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.get_tickets_by_event")
	defer span.End()

	if eventID <= 0 {
		span.SetStatus(codes.Error, "invalid event id")
		return nil, domain.ErrInvalidEventID
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	span.SetAttributes(attribute.Int64("event_id", eventID))

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tickets, total, err := s.ticketRepo.GetByEvent(ctx, eventID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return &dto.TicketListResponse{
		Tickets: dto.TicketsFromDomain(tickets),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}
