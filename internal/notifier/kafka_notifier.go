package notifier

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/atlasvoyages/booking-engine/internal/domain"
	"github.com/atlasvoyages/booking-engine/pkg/kafka"
	"github.com/atlasvoyages/booking-engine/pkg/logger"
)

// KafkaNotifier publishes booking events to a Kafka topic, keyed by
// booking ID so all events for one booking land on the same partition.
type KafkaNotifier struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaNotifier creates a Kafka-backed notifier
func NewKafkaNotifier(producer *kafka.Producer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

// BookingConfirmed announces a successfully paid booking
func (n *KafkaNotifier) BookingConfirmed(ctx context.Context, booking *domain.Booking) {
	n.publish(ctx, NewEvent(EventBookingConfirmed, booking))
}

// BookingCancelled announces a cancelled booking
func (n *KafkaNotifier) BookingCancelled(ctx context.Context, booking *domain.Booking) {
	n.publish(ctx, NewEvent(EventBookingCancelled, booking))
}

// BookingFailed announces a booking whose payment failed
func (n *KafkaNotifier) BookingFailed(ctx context.Context, booking *domain.Booking) {
	n.publish(ctx, NewEvent(EventBookingFailed, booking))
}

func (n *KafkaNotifier) publish(ctx context.Context, event *BookingEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to encode booking event",
			zap.String("type", event.Type),
			zap.String("booking_id", event.BookingID),
			zap.Error(err))
		return
	}

	n.producer.Publish(ctx, n.topic, event.BookingID, payload, func(err error) {
		if err != nil {
			logger.Error("failed to publish booking event",
				zap.String("type", event.Type),
				zap.String("booking_id", event.BookingID),
				zap.Error(err))
		}
	})
}

var _ Notifier = (*KafkaNotifier)(nil)
