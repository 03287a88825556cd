package main

import (
	"context"

	"github.com/xavierca1/hirelocal/internal/infra/http/middleware"
	"github.com/xavierca1/hirelocal/internal/infra/queue"
)

// meteredNotices counts worker outcomes around the real handler.
type meteredNotices struct {
	next queue.NoticeHandler
}

func (m meteredNotices) HandleCustomerNotice(ctx context.Context, n queue.CustomerNotice) error {
	err := m.next.HandleCustomerNotice(ctx, n)
	if err != nil {
		middleware.RecordCustomerNotice("failed")
		return err
	}
	middleware.RecordCustomerNotice("sent")
	return nil
}
