package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"resumebuilder/internal/notify"
)

// ActivityEventMessage is relayed to the editor over the websocket channel.
// Field names match the frontend parser.
type ActivityEventMessage struct {
	Type       string `json:"type"`
	Event      string `json:"event"`
	EntityID   string `json:"entity_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// UserChannel names the redis pub/sub channel for one user's events.
func UserChannel(userID uint) string {
	return fmt.Sprintf("user_notify:%d", userID)
}

// PublishActivityEvent fans an activity event out to the user's websocket
// channel. Failures are logged only; the editor stream is advisory.
func PublishActivityEvent(ctx context.Context, redisClient *redis.Client, logger *slog.Logger, userID uint, activity notify.Activity) {
	if redisClient == nil {
		return
	}

	message := ActivityEventMessage{
		Type:       "activity",
		Event:      activity.Event,
		EntityID:   activity.EntityID,
		OccurredAt: activity.OccurredAt,
	}

	body, err := json.Marshal(message)
	if err != nil {
		logger.Error("marshal activity event failed", slog.Any("error", err))
		return
	}

	if err := redisClient.Publish(ctx, UserChannel(userID), body).Err(); err != nil {
		logger.Warn("publish activity event failed",
			slog.Uint64("user_id", uint64(userID)),
			slog.Any("error", err),
		)
	}
}
