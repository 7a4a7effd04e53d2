package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/prestiqx/ticket-ledger/pkg/telemetry"
)

var (
	// Purchase counters
	TicketsSold      *telemetry.Counter
	PurchasesFailed  *telemetry.Counter
	PurchasesReplayed *telemetry.Counter

	// Catalog counters
	EventsCreated   *telemetry.Counter
	EventsPublished *telemetry.Counter
	EventsEnded     *telemetry.Counter

	// Error tracking
	ErrorsTotal *telemetry.Counter

	// Histograms
	PurchaseDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all ledger metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	TicketsSold, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_tickets_sold_total",
		Description: "Total number of tickets sold",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PurchasesFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_purchase_failures_total",
		Description: "Total number of failed purchase attempts by reason",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PurchasesReplayed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_purchase_replays_total",
		Description: "Total number of purchases answered from the nonce idempotency record",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_events_created_total",
		Description: "Total number of draft events created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsPublished, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_events_published_total",
		Description: "Total number of events published",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsEnded, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_events_ended_total",
		Description: "Total number of events ended",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ErrorsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_errors_total",
		Description: "Total number of errors by type and operation",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PurchaseDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "ledger_purchase_duration_seconds",
		Description: "End to end purchase duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5})
	if err != nil {
		return err
	}

	return nil
}

// RecordSale records a completed ticket sale
func RecordSale(ctx context.Context, eventID int64, tierID string, durationSeconds float64) {
	if TicketsSold != nil {
		TicketsSold.Inc(ctx,
			attribute.Int64("event_id", eventID),
			attribute.String("tier_id", tierID),
		)
	}
	if PurchaseDuration != nil {
		PurchaseDuration.Record(ctx, durationSeconds,
			attribute.Int64("event_id", eventID),
		)
	}
}

// RecordPurchaseFailure records a rejected purchase attempt
func RecordPurchaseFailure(ctx context.Context, eventID int64, reason string) {
	if PurchasesFailed != nil {
		PurchasesFailed.Inc(ctx,
			attribute.Int64("event_id", eventID),
			attribute.String("reason", reason),
		)
	}
}

// RecordPurchaseReplay records an idempotent replay
func RecordPurchaseReplay(ctx context.Context, eventID int64) {
	if PurchasesReplayed != nil {
		PurchasesReplayed.Inc(ctx,
			attribute.Int64("event_id", eventID),
		)
	}
}

// RecordEventCreated records a new draft event
func RecordEventCreated(ctx context.Context, organizer string) {
	if EventsCreated != nil {
		EventsCreated.Inc(ctx,
			attribute.String("organizer", organizer),
		)
	}
}

// RecordEventPublished records a publish transition
func RecordEventPublished(ctx context.Context, eventID int64, tierCount int) {
	if EventsPublished != nil {
		EventsPublished.Inc(ctx,
			attribute.Int64("event_id", eventID),
			attribute.Int("tier_count", tierCount),
		)
	}
}

// RecordEventEnded records an end transition
func RecordEventEnded(ctx context.Context, eventID int64) {
	if EventsEnded != nil {
		EventsEnded.Inc(ctx,
			attribute.Int64("event_id", eventID),
		)
	}
}

// RecordError records an error by type and operation
func RecordError(ctx context.Context, errorType, operation string) {
	if ErrorsTotal != nil {
		ErrorsTotal.Inc(ctx,
			attribute.String("error_type", errorType),
			attribute.String("operation", operation),
		)
	}
}
