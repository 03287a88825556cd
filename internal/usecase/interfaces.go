package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/hirelocal/internal/infra/queue"
)

// LiveChannel pushes an event to a user's open connection. No open connection is a normal
// outcome and returns false.
type LiveChannel interface {
	Send(userID string, event string) bool
}

// CustomerNoticePublisher hands the out-of-app customer notice (email, WhatsApp) to the queue.
type CustomerNoticePublisher interface {
	PublishCustomerNotice(ctx context.Context, notice queue.CustomerNotice) error
}

// Clock is the server clock. Tests pin it.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
