package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/roomhive/service-reservation/internal/common/domain"
	"github.com/roomhive/service-reservation/internal/common/kafka"
)

// NoShowFunc marks a reservation as no-show. Wired to the application
// service in main so this package stays free of application imports.
type NoShowFunc func(ctx context.Context, reservationID uuid.UUID) error

// SchedulerEventConsumer listens to scheduler events and applies the no-show
// transitions the external scheduler flags.
type SchedulerEventConsumer struct {
	consumer   *kafka.Consumer
	markNoShow NoShowFunc
	logger     *zap.Logger
}

// NewSchedulerEventConsumer creates a SchedulerEventConsumer.
func NewSchedulerEventConsumer(
	brokers []string,
	groupID string,
	markNoShow NoShowFunc,
	logger *zap.Logger,
) *SchedulerEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicSchedulerEvents, logger)
	return &SchedulerEventConsumer{
		consumer:   consumer,
		markNoShow: markNoShow,
		logger:     logger,
	}
}

// Start begins consuming scheduler events. This blocks until the context is cancelled.
func (c *SchedulerEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *SchedulerEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *SchedulerEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from scheduler topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // don't retry malformed messages
	}

	switch cloudEvent.Type {
	case NoShowFlagged:
		return c.handleNoShowFlagged(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled scheduler event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *SchedulerEventConsumer) handleNoShowFlagged(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt NoShowFlaggedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse NoShowFlaggedEvent data", zap.Error(err))
		return nil // don't retry malformed data
	}

	c.logger.Info("processing no-show flag",
		zap.String("reservation_id", evt.ReservationID.String()),
	)

	if err := c.markNoShow(ctx, evt.ReservationID); err != nil {
		if code := domain.CodeOf(err); code != "" && code != domain.CodeTransient {
			// At-least-once delivery makes duplicate flags normal; a
			// reservation that already moved on (or never existed) is
			// consumed, not retried.
			c.logger.Warn("skipping no-show flag",
				zap.String("reservation_id", evt.ReservationID.String()),
				zap.String("code", string(code)),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to mark reservation as no-show",
			zap.String("reservation_id", evt.ReservationID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
