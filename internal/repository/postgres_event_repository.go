package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prestiqx/ticket-ledger/internal/domain"
	"github.com/prestiqx/ticket-ledger/pkg/telemetry"
)

// PostgresEventRepository implements EventRepository using PostgreSQL with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// Create inserts a new draft event and assigns its ID
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("organizer", event.Organizer),
		attribute.String("name", event.Name),
	)

	query := `
		INSERT INTO events (
			organizer, name, description, venue, start_time, status, tickets_sold
		) VALUES (
			$1, $2, $3, $4, $5, $6, 0
		)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		event.Organizer,
		event.Name,
		event.Description,
		event.Venue,
		event.StartTime,
		string(event.Status),
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetAttributes(attribute.Int64("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	return nil
}

const eventColumns = `
	id, organizer, name, description, venue, start_time,
	status, tickets_sold, created_at, updated_at
`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var status string

	err := row.Scan(
		&event.ID,
		&event.Organizer,
		&event.Name,
		&event.Description,
		&event.Venue,
		&event.StartTime,
		&status,
		&event.TicketsSold,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Status = domain.EventStatus(status)
	return event, nil
}

// GetByID retrieves an event without tiers
func (r *PostgresEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", id))

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// GetByIDWithTiers retrieves an event with tiers ordered by position
func (r *PostgresEventRepository) GetByIDWithTiers(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tiers, err := r.GetTiers(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Tiers = tiers
	return event, nil
}

// List retrieves events with optional filters, newest first
func (r *PostgresEventRepository) List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list")
	defer span.End()

	where := ""
	args := []interface{}{}
	argPos := 1

	if filter != nil {
		if filter.Organizer != "" {
			where += fmt.Sprintf(" AND organizer = $%d", argPos)
			args = append(args, filter.Organizer)
			argPos++
		}
		if filter.Status != "" {
			where += fmt.Sprintf(" AND status = $%d", argPos)
			args = append(args, string(filter.Status))
			argPos++
		}
	}

	countQuery := `SELECT COUNT(*) FROM events WHERE 1=1` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	// Ids are monotonic, so id order is creation order
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1` + where +
		fmt.Sprintf(" ORDER BY id ASC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to read events: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(events)), attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return events, total, nil
}

// AddTier appends a tier to a draft event. The event row is locked so
// concurrent appends and a concurrent publish serialize.
func (r *PostgresEventRepository) AddTier(ctx context.Context, eventID int64, tier *domain.TicketTier) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.add_tier")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", eventID),
		attribute.String("tier_name", tier.Name),
	)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to lock event: %w", err)
	}

	if domain.EventStatus(status) != domain.EventStatusDraft {
		span.SetStatus(codes.Error, "not draft")
		return domain.ErrEventNotDraft
	}

	if tier.ID == "" {
		tier.ID = uuid.New().String()
	}
	tier.EventID = eventID

	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM ticket_tiers WHERE event_id = $1`,
		eventID,
	).Scan(&tier.Position)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to assign tier position: %w", err)
	}

	query := `
		INSERT INTO ticket_tiers (
			id, event_id, position, name, price_wei, max_supply, sold, rarity, perks
		) VALUES (
			$1, $2, $3, $4, $5::numeric, $6, 0, $7, $8
		)
		RETURNING created_at
	`

	err = tx.QueryRow(ctx, query,
		tier.ID,
		tier.EventID,
		tier.Position,
		tier.Name,
		tier.PriceWei.String(),
		tier.MaxSupply,
		string(tier.Rarity),
		tier.Perks,
	).Scan(&tier.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create tier: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit tier: %w", err)
	}

	span.SetAttributes(attribute.String("tier_id", tier.ID), attribute.Int("position", tier.Position))
	span.SetStatus(codes.Ok, "")
	return nil
}

const tierColumns = `
	id, event_id, position, name, price_wei::text, max_supply, sold, rarity, perks, created_at
`

func scanTier(row pgx.Row) (*domain.TicketTier, error) {
	tier := &domain.TicketTier{}
	var price string
	var rarity string

	err := row.Scan(
		&tier.ID,
		&tier.EventID,
		&tier.Position,
		&tier.Name,
		&price,
		&tier.MaxSupply,
		&tier.Sold,
		&rarity,
		&tier.Perks,
		&tier.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	tier.PriceWei, err = domain.ParseWei(price)
	if err != nil {
		return nil, fmt.Errorf("stored price is not canonical: %w", err)
	}
	tier.Rarity = domain.Rarity(rarity)
	return tier, nil
}

// GetTiers retrieves all tiers of an event ordered by position
func (r *PostgresEventRepository) GetTiers(ctx context.Context, eventID int64) ([]*domain.TicketTier, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_tiers")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", eventID))

	query := `SELECT ` + tierColumns + ` FROM ticket_tiers WHERE event_id = $1 ORDER BY position`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get tiers: %w", err)
	}
	defer rows.Close()

	tiers := []*domain.TicketTier{}
	for rows.Next() {
		tier, err := scanTier(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read tiers: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(tiers)))
	span.SetStatus(codes.Ok, "")
	return tiers, nil
}

// GetTierByID retrieves a single tier
func (r *PostgresEventRepository) GetTierByID(ctx context.Context, tierID string) (*domain.TicketTier, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_tier_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("tier_id", tierID))

	query := `SELECT ` + tierColumns + ` FROM ticket_tiers WHERE id = $1`

	tier, err := scanTier(r.pool.QueryRow(ctx, query, tierID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrTierNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get tier: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return tier, nil
}

// TransitionStatus moves an event between lifecycle states with a
// guard on the current status
func (r *PostgresEventRepository) TransitionStatus(ctx context.Context, eventID int64, from, to domain.EventStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.transition_status")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", eventID),
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	)

	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), eventID, string(from),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to transition event: %w", err)
	}

	if tag.RowsAffected() == 1 {
		span.SetStatus(codes.Ok, "")
		return nil
	}

	// Guard failed: report based on the status actually present
	var current string
	err = r.pool.QueryRow(ctx, `SELECT status FROM events WHERE id = $1`, eventID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to read event status: %w", err)
	}

	span.SetStatus(codes.Error, "guard failed")
	switch domain.EventStatus(current) {
	case domain.EventStatusPublished:
		if to == domain.EventStatusPublished {
			return domain.ErrEventAlreadyPublished
		}
		return domain.ErrEventNotDraft
	case domain.EventStatusEnded:
		return domain.ErrEventEnded
	default:
		return domain.ErrEventNotPublished
	}
}

// Ensure PostgresEventRepository implements EventRepository
var _ EventRepository = (*PostgresEventRepository)(nil)
