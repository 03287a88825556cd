package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xavierca1/hirelocal/internal/entity"
	"github.com/xavierca1/hirelocal/internal/infra/realtime"
)

type NotificationPayload struct {
	Type    string
	Title   string
	Message string
	Link    string
}

type DeliveryResult struct {
	NotificationID string
	LiveDelivered  bool
}

// Dispatcher persists a durable notification and then makes one live push attempt. The
// durable row is what makes delivery at-least-once: a user who is offline now sees it on
// the next poll. There is no retry here.
type Dispatcher struct {
	notifications entity.NotificationRepository
	live          LiveChannel
	log           *slog.Logger
}

func NewDispatcher(notifications entity.NotificationRepository, live LiveChannel, log *slog.Logger) *Dispatcher {
	return &Dispatcher{notifications: notifications, live: live, log: log}
}

// Deliver returns an error only when the durable row could not be written. A failed or
// skipped live push is reported through LiveDelivered.
func (d *Dispatcher) Deliver(ctx context.Context, userID string, p NotificationPayload) (DeliveryResult, error) {
	n := entity.NewNotification(userID, p.Type, p.Title, p.Message, p.Link)
	if err := d.notifications.Create(ctx, n); err != nil {
		return DeliveryResult{}, fmt.Errorf("persist notification: %w", err)
	}

	res := DeliveryResult{NotificationID: n.ID}
	if d.live == nil {
		return res, nil
	}

	evt, err := realtime.MakeEvent("notification", 1, n)
	if err != nil {
		d.log.Warn("live event encoding failed", slog.String("notification_id", n.ID), slog.Any("error", err))
		return res, nil
	}
	res.LiveDelivered = d.live.Send(userID, evt)
	return res, nil
}
