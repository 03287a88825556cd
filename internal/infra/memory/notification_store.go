package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/hirelocal/internal/entity"
)

type NotificationStore struct {
	mu    sync.Mutex
	items []*entity.Notification
}

var _ entity.NotificationRepository = (*NotificationStore)(nil)

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

func (s *NotificationStore) Create(_ context.Context, n *entity.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *n
	s.items = append(s.items, &c)
	return nil
}

func (s *NotificationStore) ListByUser(_ context.Context, userID string, f entity.NotificationFilter) ([]*entity.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Notification
	for _, n := range s.items {
		if n.UserID != userID {
			continue
		}
		if f.UnreadOnly && n.IsRead {
			continue
		}
		if f.Since != nil && !n.CreatedAt.After(*f.Since) {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, userID string, ids []string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, item := range s.items {
		if item.UserID != userID || item.IsRead || !slices.Contains(ids, item.ID) {
			continue
		}
		readAt := at
		item.IsRead = true
		item.ReadAt = &readAt
		n++
	}
	return n, nil
}
