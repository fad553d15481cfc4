// Package notify sends push notifications and enforces the shared
// per-title rate budget.
package notify

import (
	"context"
	"log"
)

// Notifier delivers one push notification. Implementations must be safe
// for concurrent use; every subscription's dispatcher shares one Notifier.
type Notifier interface {
	Push(ctx context.Context, title, body string, priority int) error
}

// Log is a Notifier that only writes to the process log. Used when no
// push transport is configured.
type Log struct{}

// Push implements Notifier.
func (Log) Push(ctx context.Context, title, body string, priority int) error {
	log.Printf("notify (log only): [%d] %s: %s", priority, title, body)
	return nil
}
