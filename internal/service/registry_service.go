package service

import (
	"context"
	"strings"

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

// RegistryService defines the interface for event catalog operations
type RegistryService interface {
	// CreateEvent creates a draft event owned by the caller
	CreateEvent(ctx context.Context, caller string, req *dto.CreateEventRequest) (*dto.EventResponse, error)

	// AddTier appends a ticket tier to a draft event
	AddTier(ctx context.Context, caller string, eventID int64, req *dto.AddTierRequest) (*dto.TierResponse, error)

	// PublishEvent opens an event for sale and seeds its allocations
	PublishEvent(ctx context.Context, caller string, eventID int64) (*dto.EventResponse, error)

	// EndEvent permanently closes sales for an event
	EndEvent(ctx context.Context, caller string, eventID int64) (*dto.EventResponse, error)

	// GetEvent retrieves an event with its tiers
	GetEvent(ctx context.Context, eventID int64) (*dto.EventResponse, error)

	// ListEvents retrieves events, optionally filtered by organizer
	ListEvents(ctx context.Context, organizer string, limit, offset int) (*dto.EventListResponse, error)
}

// registryService implements RegistryService
type registryService struct {
	eventRepo     repository.EventRepository
	organizerRepo repository.OrganizerRepository
	allocs        repository.AllocationStore
	publisher     LedgerPublisher
}

// NewRegistryService creates a new registry service
func NewRegistryService(
	eventRepo repository.EventRepository,
	organizerRepo repository.OrganizerRepository,
	allocs repository.AllocationStore,
	publisher LedgerPublisher,
) RegistryService {
	if publisher == nil {
		publisher = NewNoOpLedgerPublisher()
	}
	return &registryService{
		eventRepo:     eventRepo,
		organizerRepo: organizerRepo,
		allocs:        allocs,
		publisher:     publisher,
	}
}

// CreateEvent creates a draft event owned by the caller
func (s *registryService) CreateEvent(ctx context.Context, caller string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.registry.create_event")
	defer span.End()

	organizer, err := domain.NormalizeAddress(caller)
	if err != nil {
		span.SetStatus(codes.Error, "invalid caller")
		return nil, err
	}

	if req == nil || strings.TrimSpace(req.Name) == "" {
		span.SetStatus(codes.Error, "invalid name")
		return nil, domain.ErrInvalidEventName
	}
	if strings.TrimSpace(req.Venue) == "" {
		span.SetStatus(codes.Error, "invalid venue")
		return nil, domain.ErrInvalidVenue
	}
	if req.StartTime.IsZero() {
		span.SetStatus(codes.Error, "invalid start time")
		return nil, domain.ErrInvalidEventTime
	}

	span.SetAttributes(
		attribute.String("organizer", organizer),
		attribute.String("name", req.Name),
	)

	authorized, err := s.organizerRepo.IsAuthorized(ctx, organizer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !authorized {
		span.SetStatus(codes.Error, "not authorized")
		return nil, domain.ErrNotAuthorized
	}

	event := &domain.Event{
		Organizer:   organizer,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Venue:       strings.TrimSpace(req.Venue),
		StartTime:   req.StartTime,
		Status:      domain.EventStatusDraft,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.publisher.PublishEventCreated(ctx, event.ID); err != nil {
		logger.Get().Warn("failed to publish catalog event",
			zap.Int64("event_id", event.ID),
			zap.Error(err),
		)
	}

	metrics.RecordEventCreated(ctx, organizer)
	span.SetAttributes(attribute.Int64("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// AddTier appends a ticket tier to a draft event
func (s *registryService) AddTier(ctx context.Context, caller string, eventID int64, req *dto.AddTierRequest) (*dto.TierResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.registry.add_tier")
	defer span.End()

	organizer, err := domain.NormalizeAddress(caller)
	if err != nil {
		span.SetStatus(codes.Error, "invalid caller")
		return nil, err
	}
	if eventID <= 0 {
		span.SetStatus(codes.Error, "invalid event id")
		return nil, domain.ErrInvalidEventID
	}
	if req == nil {
		span.SetStatus(codes.Error, "invalid tier")
		return nil, domain.ErrInvalidTierName
	}

	price, err := domain.ParseWei(req.PriceWei)
	if err != nil {
		span.SetStatus(codes.Error, "invalid price")
		return nil, err
	}

	tier := &domain.TicketTier{
		Name:      strings.TrimSpace(req.Name),
		PriceWei:  price,
		MaxSupply: req.MaxSupply,
		Rarity:    domain.Rarity(req.Rarity),
		Perks:     req.Perks,
	}
	if err := tier.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("event_id", eventID),
		attribute.String("tier_name", tier.Name),
	)

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.canManage(ctx, organizer, event); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// The repository re-checks draft status under the event row lock;
	// this early check just fails fast.
	if !event.IsDraft() {
		span.SetStatus(codes.Error, "not draft")
		return nil, domain.ErrEventNotDraft
	}

	if err := s.eventRepo.AddTier(ctx, eventID, tier); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("tier_id", tier.ID))
	span.SetStatus(codes.Ok, "")
	return dto.TierFromDomain(tier), nil
}

// PublishEvent opens an event for sale and seeds its allocations
func (s *registryService) PublishEvent(ctx context.Context, caller string, eventID int64) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.registry.publish_event")
	defer span.End()

	event, err := s.managedEvent(ctx, caller, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("event_id", eventID))

	tiers, err := s.eventRepo.GetTiers(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(tiers) == 0 {
		span.SetStatus(codes.Error, "no tiers")
		return nil, domain.ErrNoTiers
	}

	if err := event.Publish(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventRepo.TransitionStatus(ctx, eventID, domain.EventStatusDraft, domain.EventStatusPublished); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Seed live counters so the first purchase finds them
	for _, tier := range tiers {
		if err := s.allocs.Seed(ctx, tier); err != nil {
			// The tier syncer re-seeds on demand during purchases
			logger.Get().Warn("failed to seed tier allocation",
				zap.String("tier_id", tier.ID),
				zap.Error(err),
			)
		}
	}

	if err := s.publisher.PublishEventPublished(ctx, eventID); err != nil {
		logger.Get().Warn("failed to publish catalog event",
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
	}

	metrics.RecordEventPublished(ctx, eventID, len(tiers))
	event.Tiers = tiers
	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// EndEvent permanently closes sales for an event
func (s *registryService) EndEvent(ctx context.Context, caller string, eventID int64) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.registry.end_event")
	defer span.End()

	event, err := s.managedEvent(ctx, caller, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("event_id", eventID))

	if err := event.End(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventRepo.TransitionStatus(ctx, eventID, domain.EventStatusPublished, domain.EventStatusEnded); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.publisher.PublishEventEnded(ctx, eventID); err != nil {
		logger.Get().Warn("failed to publish catalog event",
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
	}

	metrics.RecordEventEnded(ctx, eventID)
	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// GetEvent retrieves an event with its tiers
func (s *registryService) GetEvent(ctx context.Context, eventID int64) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.registry.get_event")
	defer span.End()

	if eventID <= 0 {
		span.SetStatus(codes.Error, "invalid event id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(attribute.Int64("event_id", eventID))

	event, err := s.eventRepo.GetByIDWithTiers(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// ListEvents retrieves events, optionally filtered by organizer
func (s *registryService) ListEvents(ctx context.Context, organizer string, limit, offset int) (*dto.EventListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.registry.list_events")
	defer span.End()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	filter := &repository.EventFilter{}
	if organizer != "" {
		normalized, err := domain.NormalizeAddress(organizer)
		if err != nil {
			span.SetStatus(codes.Error, "invalid organizer")
			return nil, err
		}
		filter.Organizer = normalized
	}

	events, total, err := s.eventRepo.List(ctx, filter, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp := &dto.EventListResponse{
		Events: make([]*dto.EventResponse, 0, len(events)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, event := range events {
		resp.Events = append(resp.Events, dto.EventFromDomain(event))
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// managedEvent loads an event and verifies the caller may manage it
func (s *registryService) managedEvent(ctx context.Context, caller string, eventID int64) (*domain.Event, error) {
	organizer, err := domain.NormalizeAddress(caller)
	if err != nil {
		return nil, err
	}
	if eventID <= 0 {
		return nil, domain.ErrInvalidEventID
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.canManage(ctx, organizer, event); err != nil {
		return nil, err
	}
	return event, nil
}

// canManage checks mutation rights: the event's organizer always has
// them, and so does any globally authorized organizer.
func (s *registryService) canManage(ctx context.Context, organizer string, event *domain.Event) error {
	if event.Organizer == organizer {
		return nil
	}
	authorized, err := s.organizerRepo.IsAuthorized(ctx, organizer)
	if err != nil {
		return err
	}
	if !authorized {
		return domain.ErrNotEventOwner
	}
	return nil
}
