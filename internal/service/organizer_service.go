package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prestiqx/ticket-ledger/internal/domain"
	"github.com/prestiqx/ticket-ledger/internal/dto"
	"github.com/prestiqx/ticket-ledger/internal/repository"
	"github.com/prestiqx/ticket-ledger/pkg/telemetry"
)

// OrganizerService defines the interface for organizer authorization
type OrganizerService interface {
	// Authorize grants organizer rights to a wallet. Idempotent: an
	// already authorized wallet is returned unchanged.
	Authorize(ctx context.Context, adminAddress string, req *dto.AuthorizeOrganizerRequest) (*dto.OrganizerResponse, error)

	// GetOrganizer retrieves an organizer record
	GetOrganizer(ctx context.Context, address string) (*dto.OrganizerResponse, error)
}

// organizerService implements OrganizerService
type organizerService struct {
	organizerRepo repository.OrganizerRepository
}

// NewOrganizerService creates a new organizer service
func NewOrganizerService(organizerRepo repository.OrganizerRepository) OrganizerService {
	return &organizerService{organizerRepo: organizerRepo}
}

// Authorize grants organizer rights to a wallet
func (s *organizerService) Authorize(ctx context.Context, adminAddress string, req *dto.AuthorizeOrganizerRequest) (*dto.OrganizerResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.organizer.authorize")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "invalid address")
		return nil, domain.ErrInvalidAddress
	}

	address, err := domain.NormalizeAddress(req.Address)
	if err != nil {
		span.SetStatus(codes.Error, "invalid address")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("address", address),
		attribute.String("authorized_by", adminAddress),
	)

	organizer := &domain.Organizer{
		Address:      address,
		AuthorizedBy: adminAddress,
	}

	if err := s.organizerRepo.Authorize(ctx, organizer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Re-read so a repeated authorize returns the original record
	stored, err := s.organizerRepo.GetByAddress(ctx, address)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.OrganizerFromDomain(stored), nil
}

// GetOrganizer retrieves an organizer record
func (s *organizerService) GetOrganizer(ctx context.Context, address string) (*dto.OrganizerResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.organizer.get")
	defer span.End()

	normalized, err := domain.NormalizeAddress(address)
	if err != nil {
		span.SetStatus(codes.Error, "invalid address")
		return nil, err
	}

	span.SetAttributes(attribute.String("address", normalized))

	organizer, err := s.organizerRepo.GetByAddress(ctx, normalized)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.OrganizerFromDomain(organizer), nil
}
