// Package ingest turns transaction events from Kafka into notifications.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/store"
)

const (
	minBackoff = 200 * time.Millisecond
	maxBackoff = 5 * time.Second
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config selects the topic and consumer group.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer reads transaction events and stores each one as a
// TRANSACTION notification.
type Consumer struct {
	reader MessageReader
	store  store.Store
	log    *zap.Logger
}

// NewConsumer connects a group reader for cfg.
func NewConsumer(cfg Config, st store.Store, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.LastOffset,
		MinBytes:    1e3,
		MaxBytes:    10e6,
	})
	return newConsumer(r, st, log.With(
		zap.String("component", "kafka.consumer"),
		zap.String("topic", cfg.Topic),
		zap.String("group", cfg.GroupID),
	))
}

func newConsumer(r MessageReader, st store.Store, log *zap.Logger) *Consumer {
	return &Consumer{reader: r, store: st, log: log}
}

// Run consumes until ctx is cancelled. A message is committed once it is
// stored, or when it carries nothing to store. A failed store is retried
// before the next message is fetched.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("consumer started")
	backoff := minBackoff

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("consumer stopped")
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				c.log.Debug("fetch EOF; retry", zap.Duration("backoff", backoff))
			} else {
				c.log.Warn("fetch failed; retry", zap.Error(err), zap.Duration("backoff", backoff))
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff

		if err := c.handleWithRetry(ctx, msg); err != nil {
			c.log.Info("consumer stopped")
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("commit failed", zap.Error(err))
		}
	}
}

// handleWithRetry keeps retrying msg until it is stored or ctx is done.
// Nothing past msg is fetched meanwhile, so its offset is never committed
// over.
func (c *Consumer) handleWithRetry(ctx context.Context, msg kafka.Message) error {
	backoff := minBackoff
	for {
		err := c.handle(ctx, msg)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Error("storing event failed; retry",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	n, ok := Decode(msg.Value)
	if !ok {
		c.log.Debug("skipping empty event", zap.Int64("offset", msg.Offset))
		return nil
	}
	if n.Timestamp.IsZero() && !msg.Time.IsZero() {
		n.Timestamp = msg.Time
	}

	stored, err := c.store.CreateNotification(ctx, n)
	if err != nil {
		return fmt.Errorf("creating notification from offset %d: %w", msg.Offset, err)
	}
	c.log.Info("transaction event stored", zap.String("id", stored.ID.String()))
	return nil
}

// event is the structured form of a transaction event.
type event struct {
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// Decode turns an event payload into a TRANSACTION notification. A JSON
// object with a "message" field is read as a structured event; anything
// else is taken as the message text. Blank payloads report false.
func Decode(payload []byte) (model.Notification, bool) {
	n := model.Notification{
		Type:     model.TypeTransaction,
		Priority: model.PriorityMedium,
	}

	var ev event
	if err := json.Unmarshal(payload, &ev); err == nil && strings.TrimSpace(ev.Message) != "" {
		n.Message = strings.TrimSpace(ev.Message)
		switch p := strings.ToUpper(ev.Priority); p {
		case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
			n.Priority = p
		}
		return n, true
	}

	text := strings.TrimSpace(string(payload))
	if text == "" {
		return n, false
	}
	n.Message = text
	return n, true
}
