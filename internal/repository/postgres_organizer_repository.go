package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prestiqx/ticket-ledger/internal/domain"
	"github.com/prestiqx/ticket-ledger/pkg/telemetry"
)

// PostgresOrganizerRepository implements OrganizerRepository using PostgreSQL
type PostgresOrganizerRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOrganizerRepository creates a new PostgresOrganizerRepository
func NewPostgresOrganizerRepository(pool *pgxpool.Pool) *PostgresOrganizerRepository {
	return &PostgresOrganizerRepository{pool: pool}
}

// Authorize grants organizer rights to a wallet. Re-authorizing an
// already authorized wallet is a no-op.
func (r *PostgresOrganizerRepository) Authorize(ctx context.Context, organizer *domain.Organizer) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.organizer.authorize")
	defer span.End()

	span.SetAttributes(attribute.String("address", organizer.Address))

	query := `
		INSERT INTO organizers (address, authorized_by)
		VALUES ($1, $2)
		ON CONFLICT (address) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, organizer.Address, organizer.AuthorizedBy); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to authorize organizer: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// IsAuthorized reports whether a wallet may create events
func (r *PostgresOrganizerRepository) IsAuthorized(ctx context.Context, address string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.organizer.is_authorized")
	defer span.End()

	span.SetAttributes(attribute.String("address", address))

	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM organizers WHERE address = $1)`, address,
	).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check organizer: %w", err)
	}

	span.SetAttributes(attribute.Bool("authorized", exists))
	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// GetByAddress retrieves an organizer record
func (r *PostgresOrganizerRepository) GetByAddress(ctx context.Context, address string) (*domain.Organizer, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.organizer.get_by_address")
	defer span.End()

	span.SetAttributes(attribute.String("address", address))

	organizer := &domain.Organizer{}
	err := r.pool.QueryRow(ctx,
		`SELECT address, authorized_by, created_at FROM organizers WHERE address = $1`, address,
	).Scan(&organizer.Address, &organizer.AuthorizedBy, &organizer.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrOrganizerNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get organizer: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return organizer, nil
}

// Ensure PostgresOrganizerRepository implements OrganizerRepository
var _ OrganizerRepository = (*PostgresOrganizerRepository)(nil)
