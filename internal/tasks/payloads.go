package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"resumebuilder/internal/notify"
)

// Task type constants keep queue producers and consumers in sync.
const (
	TypeActivityPush = "webhook:activity"
	TypeParentNotify = "webhook:notify"
)

// QueueWebhooks is the asynq queue all webhook deliveries run on.
const QueueWebhooks = "webhooks"

// ActivityPushPayload wraps the webhook body together with the user the
// event belongs to, so the worker can fan it out to the websocket channel.
type ActivityPushPayload struct {
	UserID  uint                   `json:"user_id"`
	Payload notify.ActivityPayload `json:"payload"`
}

// ParentNotifyPayload wraps a generic parent notification.
type ParentNotifyPayload struct {
	UserID  uint                       `json:"user_id"`
	Payload notify.NotificationPayload `json:"payload"`
}

// NewActivityPushTask builds an activity delivery task.
func NewActivityPushTask(userID uint, payload notify.ActivityPayload) (*asynq.Task, error) {
	body, err := json.Marshal(ActivityPushPayload{UserID: userID, Payload: payload})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeActivityPush, body), nil
}

// NewParentNotifyTask builds a parent notification delivery task.
func NewParentNotifyTask(userID uint, payload notify.NotificationPayload) (*asynq.Task, error) {
	body, err := json.Marshal(ParentNotifyPayload{UserID: userID, Payload: payload})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeParentNotify, body), nil
}
