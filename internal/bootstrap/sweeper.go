package bootstrap

import (
	"context"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/hossamdev/portfolio-api/internal/config"
	mq "github.com/hossamdev/portfolio-api/internal/infra/queue"
	"github.com/hossamdev/portfolio-api/internal/modules/service"
)

// Sweeper drains the cleanup queue: media deletes that failed during
// reconciliation are retried here until they succeed or exhaust their
// attempt budget. Exhausted identifiers are logged and dropped — the queue
// shrinks storage leaks, it does not guarantee their absence.
type Sweeper struct {
	consumer *mq.Consumer
	pub      *mq.Publisher
	media    service.MediaService
	cfg      *config.Config
	log      *zap.Logger
}

func NewSweeper(conn *amqp.Connection, pub *mq.Publisher, media service.MediaService, cfg *config.Config, log *zap.Logger) (*Sweeper, error) {
	// Declaring here also guarantees the queue exists before the first
	// publish from the request path.
	consumer, err := mq.NewConsumer(conn, cfg.RabbitMQ.CleanupQueue, 1, log, cfg)
	if err != nil {
		return nil, err
	}
	return &Sweeper{consumer: consumer, pub: pub, media: media, cfg: cfg, log: log}, nil
}

// Run consumes until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	return s.consumer.Handle(ctx, func(body []byte) error {
		var msg service.CleanupMessage
		if err := sonic.Unmarshal(body, &msg); err != nil {
			// Poison message; requeueing it would loop forever.
			s.log.Warn("dropping malformed cleanup message", zap.Error(err))
			return nil
		}

		found, err := s.media.DeleteImage(ctx, msg.PublicID)
		if err == nil {
			if !found {
				s.log.Debug("cleanup target already absent", zap.String("public_id", msg.PublicID))
			}
			return nil
		}

		maxAttempts := s.cfg.RabbitMQ.MaxAttempts
		if maxAttempts <= 0 {
			maxAttempts = 5
		}
		if msg.Attempts >= maxAttempts {
			s.log.Error("cleanup retries exhausted, leaking object",
				zap.String("public_id", msg.PublicID),
				zap.Int("attempts", msg.Attempts),
				zap.Error(err))
			return nil
		}

		// Re-publish with the bumped counter and ack the current delivery,
		// so the attempt count survives instead of a blind requeue.
		next := service.CleanupMessage{PublicID: msg.PublicID, Attempts: msg.Attempts + 1}
		if pubErr := s.pub.PublishJSON(ctx, "", s.cfg.RabbitMQ.CleanupQueue, next); pubErr != nil {
			s.log.Warn("cleanup re-enqueue failed", zap.String("public_id", msg.PublicID), zap.Error(pubErr))
			return pubErr
		}
		s.log.Warn("cleanup retry scheduled",
			zap.String("public_id", msg.PublicID),
			zap.Int("attempts", next.Attempts),
			zap.Error(err))
		return nil
	})
}

func (s *Sweeper) Close() error { return s.consumer.Close() }
