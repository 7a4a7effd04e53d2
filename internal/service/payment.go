package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prestiqx/ticket-ledger/internal/domain"
)

// TransferClient moves funds from a buyer to the fee recipient. A
// failed Transfer leaves no funds moved; Refund compensates a
// completed transfer when the purchase cannot be recorded.
type TransferClient interface {
	// Transfer moves amount from the buyer to the recipient and
	// returns a transaction ID
	Transfer(ctx context.Context, from, to string, amount domain.Wei) (string, error)

	// Refund returns a previously transferred amount
	Refund(ctx context.Context, transactionID string) error
}

// MockTransferClient simulates a payment rail for development and
// load testing
type MockTransferClient struct {
	config    *MockTransferConfig
	transfers sync.Map
}

// MockTransferConfig holds configuration for the mock client
type MockTransferConfig struct {
	// SuccessRate is the probability of a successful transfer (0.0 to 1.0)
	SuccessRate float64

	// DelayMs is the simulated processing delay in milliseconds
	DelayMs int
}

// DefaultMockTransferConfig returns default configuration
func DefaultMockTransferConfig() *MockTransferConfig {
	return &MockTransferConfig{
		SuccessRate: 1.0,
		DelayMs:     0,
	}
}

// NewMockTransferClient creates a new mock transfer client
func NewMockTransferClient(config *MockTransferConfig) *MockTransferClient {
	if config == nil {
		config = DefaultMockTransferConfig()
	}
	if config.SuccessRate < 0 {
		config.SuccessRate = 0
	}
	if config.SuccessRate > 1 {
		config.SuccessRate = 1
	}
	return &MockTransferClient{config: config}
}

type mockTransfer struct {
	From     string
	To       string
	Amount   string
	Refunded bool
}

// Transfer simulates moving funds
func (c *MockTransferClient) Transfer(ctx context.Context, from, to string, amount domain.Wei) (string, error) {
	if c.config.DelayMs > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(c.config.DelayMs) * time.Millisecond):
		}
	}

	if rand.Float64() >= c.config.SuccessRate {
		return "", fmt.Errorf("%w: transfer declined", domain.ErrPaymentFailed)
	}

	transactionID := fmt.Sprintf("mock_txn_%s", uuid.New().String()[:8])
	c.transfers.Store(transactionID, &mockTransfer{
		From:   from,
		To:     to,
		Amount: amount.String(),
	})
	return transactionID, nil
}

// Refund marks a transfer as refunded
func (c *MockTransferClient) Refund(ctx context.Context, transactionID string) error {
	if transactionID == "" {
		return fmt.Errorf("transaction ID is required")
	}

	value, ok := c.transfers.Load(transactionID)
	if !ok {
		return fmt.Errorf("transfer not found: %s", transactionID)
	}

	transfer := value.(*mockTransfer)
	transfer.Refunded = true
	c.transfers.Store(transactionID, transfer)
	return nil
}

// NoopTransferClient accepts every transfer without moving anything.
// Used when the deployment has no payment rail attached.
type NoopTransferClient struct{}

// NewNoopTransferClient creates a new NoopTransferClient
func NewNoopTransferClient() *NoopTransferClient {
	return &NoopTransferClient{}
}

// Transfer is a no-op
func (c *NoopTransferClient) Transfer(ctx context.Context, from, to string, amount domain.Wei) (string, error) {
	return fmt.Sprintf("noop_txn_%s", uuid.New().String()[:8]), nil
}

// Refund is a no-op
func (c *NoopTransferClient) Refund(ctx context.Context, transactionID string) error {
	return nil
}

var (
	_ TransferClient = (*MockTransferClient)(nil)
	_ TransferClient = (*NoopTransferClient)(nil)
)
