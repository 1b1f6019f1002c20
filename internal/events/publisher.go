package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventTypePriceObserved is published after each successfully persisted
// observation.
const EventTypePriceObserved = "PRICE_OBSERVED"

// DefaultStream is the redis stream observations are published to.
const DefaultStream = "stream:price_observations"

// PriceObserved is the payload carried on the stream.
type PriceObserved struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	Timestamp      time.Time `json:"timestamp"`
	ItemID         string    `json:"item_id"`
	URL            string    `json:"url"`
	Name           string    `json:"name"`
	ListedPrice    *float64  `json:"listed_price"`
	SalePrice      *float64  `json:"sale_price"`
	ColorwayName   *string   `json:"colorway_name"`
	SizesAvailable []string  `json:"sizes_available"`
}

// Publisher pushes price observations onto a redis stream so downstream
// consumers (alerting, analytics) can react without polling the
// database.
type Publisher struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewPublisher(client *redis.Client, stream string, logger *slog.Logger) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

func (p *Publisher) PublishPriceObserved(ctx context.Context, ev *PriceObserved) error {
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	if ev.EventType == "" {
		ev.EventType = EventTypePriceObserved
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{"payload": data},
	}).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("event published", "event_id", ev.EventID, "item_id", ev.ItemID)
	return nil
}
