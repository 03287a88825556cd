package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	NotificationNewLead      = "new_lead"
	NotificationLeadAccepted = "lead_accepted"
	NotificationLeadUpdated  = "lead_updated"
)

// Notification is the durable half of a delivery. The live push is best effort; this row
// is what the poller reads back.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      *string    `json:"link,omitempty"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewNotification(userID, typ, title, message, link string) *Notification {
	n := &Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if link != "" {
		n.Link = &link
	}
	return n
}

type NotificationFilter struct {
	UnreadOnly bool
	Since      *time.Time
	Limit      int
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, f NotificationFilter) ([]*Notification, error)
	// MarkRead marks the given notifications of userID read and returns how many changed.
	MarkRead(ctx context.Context, userID string, ids []string, at time.Time) (int64, error)
}
