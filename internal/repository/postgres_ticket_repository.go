package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prestiqx/ticket-ledger/internal/domain"
	"github.com/prestiqx/ticket-ledger/pkg/telemetry"
)

const pgUniqueViolation = "23505"

// PostgresTicketRepository implements TicketRepository using PostgreSQL with pgxpool
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

// CreatePurchase records a ticket and bumps the sold counters of its
// tier and event in one transaction
func (r *PostgresTicketRepository) CreatePurchase(ctx context.Context, ticket *domain.Ticket) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.create_purchase")
	defer span.End()

	span.SetAttributes(
		attribute.String("tier_id", ticket.TierID),
		attribute.String("owner", ticket.Owner),
		attribute.Int64("event_id", ticket.EventID),
	)

	if ticket.ID == "" {
		ticket.ID = uuid.New().String()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO tickets (
			id, event_id, tier_id, owner, purchase_nonce, price_paid
		) VALUES (
			$1, $2, $3, $4, $5, $6::numeric
		)
		RETURNING purchased_at
	`

	err = tx.QueryRow(ctx, query,
		ticket.ID,
		ticket.EventID,
		ticket.TierID,
		ticket.Owner,
		ticket.PurchaseNonce,
		ticket.PricePaid.String(),
	).Scan(&ticket.PurchasedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			span.SetStatus(codes.Error, "duplicate purchase")
			return ErrDuplicatePurchase
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to insert ticket: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE ticket_tiers SET sold = sold + 1 WHERE id = $1`,
		ticket.TierID,
	); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update tier sold count: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE events SET tickets_sold = tickets_sold + 1, updated_at = NOW() WHERE id = $1`,
		ticket.EventID,
	); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event sold count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit purchase: %w", err)
	}

	span.SetAttributes(attribute.String("ticket_id", ticket.ID))
	span.SetStatus(codes.Ok, "")
	return nil
}

const ticketColumns = `
	id, event_id, tier_id, owner, purchase_nonce, price_paid::text, purchased_at
`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	var price string

	err := row.Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.TierID,
		&ticket.Owner,
		&ticket.PurchaseNonce,
		&price,
		&ticket.PurchasedAt,
	)
	if err != nil {
		return nil, err
	}

	ticket.PricePaid, err = domain.ParseWei(price)
	if err != nil {
		return nil, fmt.Errorf("stored price is not canonical: %w", err)
	}
	return ticket, nil
}

// GetByNonce retrieves the ticket issued for an idempotency triple
func (r *PostgresTicketRepository) GetByNonce(ctx context.Context, tierID, owner, nonce string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_nonce")
	defer span.End()

	span.SetAttributes(
		attribute.String("tier_id", tierID),
		attribute.String("owner", owner),
	)

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE tier_id = $1 AND owner = $2 AND purchase_nonce = $3`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, tierID, owner, nonce))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrTicketNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get ticket by nonce: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return ticket, nil
}

// GetByOwner retrieves all tickets held by a wallet, newest first
func (r *PostgresTicketRepository) GetByOwner(ctx context.Context, owner string) ([]*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_owner")
	defer span.End()

	span.SetAttributes(attribute.String("owner", owner))

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE owner = $1 ORDER BY purchased_at DESC`

	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get tickets by owner: %w", err)
	}
	defer rows.Close()

	tickets := []*domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read tickets: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return tickets, nil
}

// GetByEvent retrieves tickets issued for an event with pagination
func (r *PostgresTicketRepository) GetByEvent(ctx context.Context, eventID int64, limit, offset int) ([]*domain.Ticket, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_event")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", eventID))

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tickets WHERE event_id = $1`, eventID,
	).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE event_id = $1 ORDER BY purchased_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, eventID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to get tickets by event: %w", err)
	}
	defer rows.Close()

	tickets := []*domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to read tickets: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(tickets)), attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return tickets, total, nil
}

// Ensure PostgresTicketRepository implements TicketRepository
var _ TicketRepository = (*PostgresTicketRepository)(nil)
