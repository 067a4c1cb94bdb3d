package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/khoaphan/careerframe/internal/config"
)

const (
	TopicSectionEvents = "section.events"
)

type SectionEventType string

const (
	SectionEventTypeCreated     SectionEventType = "section.created"
	SectionEventTypeUpdated     SectionEventType = "section.updated"
	SectionEventTypeVisibility  SectionEventType = "section.visibility_changed"
	SectionEventTypeReordered   SectionEventType = "section.reordered"
	SectionEventTypeRemoved     SectionEventType = "section.removed"
	SectionEventTypeBulkCreated SectionEventType = "section.bulk_created"
)

// SectionEventPayload is published after every committed section mutation.
// The worker uses ProfileSlug to refresh the public profile cache.
type SectionEventPayload struct {
	EventType   SectionEventType `json:"event_type"`
	ProfileID   uuid.UUID        `json:"profile_id"`
	ProfileSlug string           `json:"profile_slug"`
	SectionID   uuid.UUID        `json:"section_id"`
	SectionType string           `json:"section_type"`
}

type KafkaProducerClient struct {
	SectionEventsWriter *kafka.Writer
}

func NewKafkaProducerClient(cfg config.Config) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	sectionWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicSectionEvents,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaProducerClient{
		SectionEventsWriter: sectionWriter,
	}, nil
}

func (c *KafkaProducerClient) PublishSectionEvent(ctx context.Context, payload SectionEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cannot marshal section event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(payload.ProfileID.String()),
		Value: value,
	}
	if err := c.SectionEventsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("cannot write section event: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.SectionEventsWriter != nil {
		c.SectionEventsWriter.Close()
	}
}
