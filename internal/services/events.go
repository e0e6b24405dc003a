package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	ChannelTransactionCreated = "transaction.created"
	ChannelTransactionCleanup = "transactions.cleanup"
)

// Publisher delivers domain events to a broker.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// TransactionCreatedEvent is emitted after a transaction is stored.
type TransactionCreatedEvent struct {
	TransactionID   string    `json:"transaction_id"`
	CustomerID      string    `json:"customer_id"`
	UserID          string    `json:"user_id"`
	TransactionType string    `json:"transaction_type"`
	Amount          string    `json:"amount"`
	OfficeCode      string    `json:"office_code"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionCleanupEvent is emitted after a bulk delete.
type TransactionCleanupEvent struct {
	DeletedBy   string    `json:"deleted_by"`
	DeleteAll   bool      `json:"delete_all"`
	Before      time.Time `json:"before,omitempty"`
	OfficeCodes []string  `json:"office_codes,omitempty"`
	Count       int64     `json:"count"`
}

// publish sends event on channel. Failures are logged and never returned: the
// triggering write has already been committed.
func publish(ctx context.Context, publisher Publisher, channel string, event any) {
	if publisher == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("channel", channel).Msg("failed to encode event")
		return
	}
	attrs := map[string]string{"content_type": "application/json"}
	if _, err := publisher.Publish(ctx, channel, data, attrs); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("channel", channel).Msg("failed to publish event")
	}
}
