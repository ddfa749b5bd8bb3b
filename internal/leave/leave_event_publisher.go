package leave

import (
	"context"
	"encoding/json"
	"go-leavechat/internal/events"

	"github.com/segmentio/kafka-go"
)

type EventPublisher interface {
	PublishLeaveApproved(ctx context.Context, event events.LeaveApprovedEvent) error
	PublishLeaveCancelled(ctx context.Context, event events.LeaveCancelledEvent) error
}

// noopEventPublisher is used when no broker is configured (local dev, CLI).
type noopEventPublisher struct{}

func (noopEventPublisher) PublishLeaveApproved(context.Context, events.LeaveApprovedEvent) error {
	return nil
}

func (noopEventPublisher) PublishLeaveCancelled(context.Context, events.LeaveCancelledEvent) error {
	return nil
}

func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

type kafkaEventPublisher struct {
	writer *kafka.Writer
}

func NewKafkaEventPublisher(writer *kafka.Writer) EventPublisher {
	return &kafkaEventPublisher{writer: writer}
}

func (p *kafkaEventPublisher) PublishLeaveApproved(
	ctx context.Context,
	event events.LeaveApprovedEvent,
) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: events.LeaveLifecycleTopic,
		Key:   []byte(event.EmployeeID),
		Value: payload,
	})
}

func (p *kafkaEventPublisher) PublishLeaveCancelled(
	ctx context.Context,
	event events.LeaveCancelledEvent,
) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: events.LeaveLifecycleTopic,
		Key:   []byte(event.EmployeeID),
		Value: payload,
	})
}
