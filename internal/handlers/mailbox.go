package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/vigilhq/vigil/internal/engine"
	"github.com/vigilhq/vigil/internal/store"
)

// Mailbox announces newly observed message headers. Rows are
// (email_id, subject, sender, date_received); every delta row is a new
// message and produces one notification.
type Mailbox struct{}

func (h *Mailbox) Name() string { return "mailbox" }

func (h *Mailbox) Columns() int { return 4 }

func (h *Mailbox) Handle(ctx context.Context, hc *engine.Context, rows []store.Row) (any, error) {
	for _, row := range rows {
		subject := asString(row[1])
		sender := asString(row[2])
		received := formatReceived(row[3])

		hc.Notify(ctx, "New Email from "+sender,
			fmt.Sprintf("Subject: %s\nReceived: %s", subject, received), 10)
	}
	return nil, nil
}

func formatReceived(v any) string {
	if ms, ok := asInt64(v); ok {
		return time.UnixMilli(ms).Format(time.RFC3339)
	}
	return asString(v)
}
