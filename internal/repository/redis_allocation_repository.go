package repository

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prestiqx/ticket-ledger/internal/domain"
	pkgredis "github.com/prestiqx/ticket-ledger/pkg/redis"
	"github.com/prestiqx/ticket-ledger/pkg/telemetry"
)

//go:embed scripts/sell_ticket.lua
var sellTicketScript string

//go:embed scripts/release_ticket.lua
var releaseTicketScript string

// Script names for caching
const (
	scriptSellTicket    = "sell_ticket"
	scriptReleaseTicket = "release_ticket"
)

func allocationKey(tierID string) string {
	return fmt.Sprintf("tier:alloc:%s", tierID)
}

// RedisAllocationStore implements AllocationStore using Redis. Each
// tier is a hash holding the remaining supply and the canonical price
// string; the sell script checks and decrements in one round trip.
type RedisAllocationStore struct {
	client *pkgredis.Client
}

// NewRedisAllocationStore creates a new RedisAllocationStore
func NewRedisAllocationStore(client *pkgredis.Client) *RedisAllocationStore {
	return &RedisAllocationStore{client: client}
}

// LoadScripts loads all Lua scripts into Redis
func (r *RedisAllocationStore) LoadScripts(ctx context.Context) error {
	scripts := map[string]string{
		scriptSellTicket:    sellTicketScript,
		scriptReleaseTicket: releaseTicketScript,
	}

	for name, script := range scripts {
		if _, err := r.client.LoadScript(ctx, name, script); err != nil {
			return fmt.Errorf("failed to load script %s: %w", name, err)
		}
	}

	return nil
}

// Seed initializes a tier's counter and price at publish time
func (r *RedisAllocationStore) Seed(ctx context.Context, tier *domain.TicketTier) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.allocation.seed")
	defer span.End()

	span.SetAttributes(
		attribute.String("tier_id", tier.ID),
		attribute.Int("remaining", tier.Remaining()),
	)

	err := r.client.HSet(ctx, allocationKey(tier.ID),
		"remaining", tier.Remaining(),
		"price", tier.PriceWei.String(),
	).Err()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to seed tier allocation: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Sell atomically decrements the tier's remaining supply
func (r *RedisAllocationStore) Sell(ctx context.Context, tierID string, payment domain.Wei) (*SellResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.allocation.sell")
	defer span.End()

	span.SetAttributes(attribute.String("tier_id", tierID))

	keys := []string{allocationKey(tierID)}
	result := r.client.EvalWithFallback(ctx, scriptSellTicket, sellTicketScript, keys, payment.String())
	if result.Err() != nil {
		span.RecordError(result.Err())
		span.SetStatus(codes.Error, result.Err().Error())
		return nil, fmt.Errorf("failed to execute sell_ticket script: %w", result.Err())
	}

	values, err := result.Slice()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to parse script result: %w", err)
	}

	if len(values) < 2 {
		span.SetStatus(codes.Error, "unexpected result length")
		return nil, fmt.Errorf("unexpected script result length: %d", len(values))
	}

	success, _ := toInt64(values[0])
	if success == 1 {
		remaining, _ := toInt64(values[1])
		span.SetAttributes(attribute.Int64("remaining", remaining))
		span.SetStatus(codes.Ok, "")
		return &SellResult{
			Success:   true,
			Remaining: remaining,
		}, nil
	}

	errorCode, _ := values[1].(string)
	errorMessage := ""
	if len(values) > 2 {
		errorMessage, _ = values[2].(string)
	}
	span.SetAttributes(attribute.String("error_code", errorCode))
	span.SetStatus(codes.Error, errorCode)
	return &SellResult{
		Success:      false,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
	}, nil
}

// Release returns one unit of supply after a failed purchase
func (r *RedisAllocationStore) Release(ctx context.Context, tierID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.allocation.release")
	defer span.End()

	span.SetAttributes(attribute.String("tier_id", tierID))

	keys := []string{allocationKey(tierID)}
	result := r.client.EvalWithFallback(ctx, scriptReleaseTicket, releaseTicketScript, keys)
	if result.Err() != nil {
		span.RecordError(result.Err())
		span.SetStatus(codes.Error, result.Err().Error())
		return fmt.Errorf("failed to execute release_ticket script: %w", result.Err())
	}

	values, err := result.Slice()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to parse script result: %w", err)
	}

	success, _ := toInt64(values[0])
	if success != 1 {
		errorCode := ""
		if len(values) > 1 {
			errorCode, _ = values[1].(string)
		}
		span.SetStatus(codes.Error, errorCode)
		return fmt.Errorf("failed to release allocation for tier %s: %s", tierID, errorCode)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetRemaining reports the live counter for a tier
func (r *RedisAllocationStore) GetRemaining(ctx context.Context, tierID string) (int64, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.allocation.get_remaining")
	defer span.End()

	span.SetAttributes(attribute.String("tier_id", tierID))

	result, err := r.client.HGet(ctx, allocationKey(tierID), "remaining").Result()
	if err != nil {
		if pkgredis.IsNil(err) {
			span.SetStatus(codes.Ok, "not seeded")
			return 0, false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, false, fmt.Errorf("failed to get remaining: %w", err)
	}

	remaining, err := strconv.ParseInt(result, 10, 64)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, false, fmt.Errorf("failed to parse remaining: %w", err)
	}

	span.SetAttributes(attribute.Int64("remaining", remaining))
	span.SetStatus(codes.Ok, "")
	return remaining, true, nil
}

// Helper function to convert interface{} to int64
func toInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case float64:
		return int64(val), true
	case string:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// Ensure RedisAllocationStore implements AllocationStore
var _ AllocationStore = (*RedisAllocationStore)(nil)
