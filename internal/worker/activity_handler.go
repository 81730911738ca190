package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumebuilder/internal/notify"
	"resumebuilder/internal/tasks"
)

// ActivityTaskHandler consumes activity-push tasks. Deliveries are
// best-effort: every failure is logged and swallowed so asynq never retries.
type ActivityTaskHandler struct {
	client      *notify.Client
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewActivityTaskHandler builds the consumer.
func NewActivityTaskHandler(client *notify.Client, redisClient *redis.Client, logger *slog.Logger) *ActivityTaskHandler {
	return &ActivityTaskHandler{
		client:      client,
		redisClient: redisClient,
		logger:      logger,
	}
}

// ProcessTask implements asynq.Handler.
func (h *ActivityTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.ActivityPushPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal activity payload failed", slog.Any("error", err))
		return nil
	}

	log := h.logger.With(
		slog.Uint64("user_id", uint64(payload.UserID)),
		slog.String("event", payload.Payload.Activity.Event),
	)

	if err := h.client.PushActivity(ctx, payload.Payload); err != nil {
		if errors.Is(err, notify.ErrNotConfigured) {
			log.Debug("activity push skipped: parent webhook not configured")
		} else {
			log.Warn("activity push failed", slog.Any("error", err))
		}
	} else {
		log.Info("activity pushed")
	}

	PublishActivityEvent(ctx, h.redisClient, h.logger, payload.UserID, payload.Payload.Activity)
	return nil
}
