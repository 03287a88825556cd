package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/hirelocal/internal/entity"
)

// NotificationInbox is the polling side of delivery: whatever the live push missed is
// read back from here.
type NotificationInbox struct {
	repo entity.NotificationRepository
	now  Clock
}

func NewNotificationInbox(repo entity.NotificationRepository, now Clock) *NotificationInbox {
	if now == nil {
		now = systemClock
	}
	return &NotificationInbox{repo: repo, now: now}
}

func (n *NotificationInbox) List(ctx context.Context, caller entity.Identity, unreadOnly bool, since *time.Time, limit int) ([]*entity.Notification, error) {
	if caller.UserID == "" {
		return nil, forbidden("caller is not authenticated")
	}
	list, err := n.repo.ListByUser(ctx, caller.UserID, entity.NotificationFilter{
		UnreadOnly: unreadOnly,
		Since:      since,
		Limit:      clampLimit(limit),
	})
	if err != nil {
		return nil, storageError("failed to list notifications", err)
	}
	if list == nil {
		list = []*entity.Notification{}
	}
	return list, nil
}

// MarkRead only touches the caller's own notifications; unknown ids are ignored.
func (n *NotificationInbox) MarkRead(ctx context.Context, caller entity.Identity, ids []string) (int64, error) {
	if caller.UserID == "" {
		return 0, forbidden("caller is not authenticated")
	}
	if len(ids) == 0 {
		return 0, validationError("ids: at least one notification id is required")
	}
	if len(ids) > maxListLimit {
		return 0, validationError("ids: too many notification ids")
	}
	changed, err := n.repo.MarkRead(ctx, caller.UserID, ids, n.now())
	if err != nil {
		return 0, storageError("failed to mark notifications read", err)
	}
	return changed, nil
}
