package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"resumebuilder/internal/notify"
	"resumebuilder/internal/tasks"
)

// NotifyTaskHandler consumes generic parent notification tasks.
type NotifyTaskHandler struct {
	client *notify.Client
	logger *slog.Logger
}

// NewNotifyTaskHandler builds the consumer.
func NewNotifyTaskHandler(client *notify.Client, logger *slog.Logger) *NotifyTaskHandler {
	return &NotifyTaskHandler{client: client, logger: logger}
}

// ProcessTask implements asynq.Handler.
func (h *NotifyTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.ParentNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal notification payload failed", slog.Any("error", err))
		return nil
	}

	log := h.logger.With(
		slog.Uint64("user_id", uint64(payload.UserID)),
		slog.String("title", payload.Payload.Title),
	)

	if err := h.client.NotifyParent(ctx, payload.Payload); err != nil {
		if errors.Is(err, notify.ErrNotConfigured) {
			log.Debug("parent notification skipped: webhook not configured")
		} else {
			log.Warn("parent notification failed", slog.Any("error", err))
		}
		return nil
	}

	log.Info("parent notified")
	return nil
}
