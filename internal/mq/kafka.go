package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mobilecollector/backoffice/config"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const (
	kafkaHandlerAttempts = 3
	kafkaMessageIDHeader = "message_id"
)

// KafkaClient maps channels to Kafka topics. A single writer serves every
// topic; each Subscribe call owns its reader.
type KafkaClient struct {
	brokers []string
	groupID string
	writer  *kafka.Writer
}

func NewKafkaClient(cfg config.KafkaConfig) (*KafkaClient, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}

	groupID := cfg.GroupID
	if groupID == "" {
		groupID = "backoffice"
	}

	return &KafkaClient{
		brokers: cfg.Brokers,
		groupID: groupID,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
	}, nil
}

// Publish writes one message to the topic named channel, keyed by its id.
func (k *KafkaClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("kafka channel is required")
	}

	messageID := ulid.Make().String()
	headers := []kafka.Header{{Key: kafkaMessageIDHeader, Value: []byte(messageID)}}
	for key, value := range attrs {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(value)})
	}

	err := k.writer.WriteMessages(ctx, kafka.Message{
		Topic:   channel,
		Key:     []byte(messageID),
		Value:   data,
		Headers: headers,
	})
	if err != nil {
		return "", err
	}
	return messageID, nil
}

// Subscribe consumes the topic as part of the configured consumer group. A
// message is committed once the handler succeeds, or after it has failed
// kafkaHandlerAttempts times.
func (k *KafkaClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("kafka channel is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     k.brokers,
		Topic:       channel,
		GroupID:     k.groupID,
		MinBytes:    10e3,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})
	defer reader.Close()

	for {
		km, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("fetch %s: %w", channel, err)
		}

		message := kafkaToMessage(km)
		for attempt := 1; attempt <= kafkaHandlerAttempts; attempt++ {
			if err = handler(ctx, message); err == nil {
				break
			}
			log.Ctx(ctx).Warn().Err(err).
				Str("topic", channel).
				Str("message_id", message.ID).
				Int("attempt", attempt).
				Msg("message handler failed")
		}

		if err := reader.CommitMessages(ctx, km); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("commit %s: %w", channel, err)
		}
	}
}

func (k *KafkaClient) Close() error {
	return k.writer.Close()
}

func kafkaToMessage(km kafka.Message) Message {
	message := Message{ID: string(km.Key), Data: km.Value}
	if len(km.Headers) == 0 {
		return message
	}
	message.Attributes = make(map[string]string, len(km.Headers))
	for _, h := range km.Headers {
		if h.Key == kafkaMessageIDHeader {
			message.ID = string(h.Value)
			continue
		}
		message.Attributes[h.Key] = string(h.Value)
	}
	return message
}
