package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumebuilder/internal/dashboard"
	"resumebuilder/internal/notify"
	"resumebuilder/internal/tasks"

	"gorm.io/gorm"
)

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type cacheInvalidator interface {
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ActivityPublisher enqueues activity pushes after a mutation and drops the
// cached dashboard summary for the affected user. Every failure is logged
// and swallowed: activity delivery never fails the originating request.
type ActivityPublisher struct {
	db       *gorm.DB
	enqueuer taskEnqueuer
	cache    cacheInvalidator
	logger   *slog.Logger
}

func NewActivityPublisher(db *gorm.DB, client *asynq.Client, redisClient *redis.Client, logger *slog.Logger) *ActivityPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	publisher := &ActivityPublisher{db: db, logger: logger}
	if client != nil {
		publisher.enqueuer = client
	}
	if redisClient != nil {
		publisher.cache = redisClient
	}
	return publisher
}

func summaryCacheKey(userID uint) string {
	return fmt.Sprintf("dashboard_summary:%d", userID)
}

// Publish rebuilds the caller's summary and queues one webhook delivery.
// Event names follow the "resume.created" style the parent expects.
func (p *ActivityPublisher) Publish(ctx context.Context, userID uint, event, entityID string) {
	if p == nil {
		return
	}

	if p.cache != nil {
		if err := p.cache.Del(ctx, summaryCacheKey(userID)).Err(); err != nil {
			p.logger.Warn("failed to drop summary cache", slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
		}
	}

	if p.enqueuer == nil {
		return
	}

	summary, err := dashboard.BuildSummary(ctx, p.db, userID)
	if err != nil {
		p.logger.Error("failed to build summary for activity push",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("event", event),
			slog.String("error", err.Error()))
		return
	}

	payload := notify.ActivityPayload{
		UserID: fmt.Sprintf("%d", userID),
		Activity: notify.Activity{
			Event:      event,
			EntityID:   entityID,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		},
		Summary: summary,
	}

	task, err := tasks.NewActivityPushTask(userID, payload)
	if err != nil {
		p.logger.Error("failed to build activity task", slog.String("event", event), slog.String("error", err.Error()))
		return
	}

	// MaxRetry(0): deliveries are fire-and-forget.
	if _, err := p.enqueuer.EnqueueContext(ctx, task, asynq.Queue(tasks.QueueWebhooks), asynq.MaxRetry(0)); err != nil {
		p.logger.Warn("failed to enqueue activity push", slog.String("event", event), slog.String("error", err.Error()))
	}
}

// Notify queues a generic parent notification.
func (p *ActivityPublisher) Notify(ctx context.Context, userID uint, title, message, level string, meta map[string]any) {
	if p == nil || p.enqueuer == nil {
		return
	}

	payload := notify.NotificationPayload{
		UserID:  fmt.Sprintf("%d", userID),
		Title:   title,
		Message: message,
		Level:   level,
		Meta:    meta,
	}

	task, err := tasks.NewParentNotifyTask(userID, payload)
	if err != nil {
		p.logger.Error("failed to build notify task", slog.String("title", title), slog.String("error", err.Error()))
		return
	}

	if _, err := p.enqueuer.EnqueueContext(ctx, task, asynq.Queue(tasks.QueueWebhooks), asynq.MaxRetry(0)); err != nil {
		p.logger.Warn("failed to enqueue parent notification", slog.String("title", title), slog.String("error", err.Error()))
	}
}
