// Package engine polls the telemetry store and dispatches row deltas to
// reactive handlers.
package engine

import (
	"context"
	"log"
	"time"

	"github.com/vigilhq/vigil/internal/store"
)

// TriggerMode selects which rows a handler receives each cycle.
type TriggerMode string

const (
	// DiffOnly forwards only rows not present in the previous snapshot.
	DiffOnly TriggerMode = "diff"
	// AllRows forwards the entire current result every cycle.
	AllRows TriggerMode = "all"
)

// Querier executes a read query against the telemetry store.
type Querier interface {
	QueryRows(ctx context.Context, query string, args ...any) ([]store.Row, error)
}

// Execer applies a mutation to the telemetry store.
type Execer interface {
	ExecWrite(ctx context.Context, query string, args ...any) error
}

// Handler reacts to one subscription's row deltas. Implementations
// declare the row width they expect; the dispatcher rejects deltas that
// don't match before invoking Handle.
//
// The returned value becomes the handler's state for the next cycle. A
// handler that wants to keep prior state across a no-op cycle must
// return it explicitly.
type Handler interface {
	Name() string
	// Columns is the expected row width, or 0 to accept any.
	Columns() int
	Handle(ctx context.Context, hc *Context, rows []store.Row) (any, error)
}

// Subscription binds a query, a poll interval, and a handler.
type Subscription struct {
	// Label uniquely identifies the subscription in logs and status.
	Label string
	// Query is executed verbatim each poll, without parameters.
	Query string
	// Interval is the poll period.
	Interval time.Duration
	// Handler receives each cycle's delta.
	Handler Handler
	// Mode selects diff-only or all-rows dispatch.
	Mode TriggerMode
	// RateLimit caps notifications per rolling minute for the titles
	// this subscription's handler sends under. 0 means never send.
	RateLimit int
	// QueryTimeout bounds each poll's query execution. Zero derives a
	// default of half the interval, clamped to [1s, 30s].
	QueryTimeout time.Duration
}

// Context is what a handler sees during one dispatch: its previous
// state plus the store and notification capabilities.
type Context struct {
	// Label is the owning subscription's label.
	Label string
	// State is the value the handler returned last cycle, nil on the first.
	State any

	querier Querier
	execer  Execer
	notify  func(ctx context.Context, title, body string, priority int)
}

// NewContext assembles a handler context. The engine builds one per
// dispatch; tests build them directly.
func NewContext(label string, state any, q Querier, x Execer, notify func(ctx context.Context, title, body string, priority int)) *Context {
	return &Context{Label: label, State: state, querier: q, execer: x, notify: notify}
}

// Query reads from the store.
func (c *Context) Query(ctx context.Context, query string, args ...any) ([]store.Row, error) {
	return c.querier.QueryRows(ctx, query, args...)
}

// Exec writes to the store. Best effort: failures are logged, never
// returned, since handlers treat mutation as a state refresh.
func (c *Context) Exec(ctx context.Context, query string, args ...any) {
	if err := c.execer.ExecWrite(ctx, query, args...); err != nil {
		log.Printf("%s: mutate: %v", c.Label, err)
	}
}

// Notify sends a push notification, subject to the shared per-title
// rate budget. Delivery failures are logged, never returned.
func (c *Context) Notify(ctx context.Context, title, body string, priority int) {
	c.notify(ctx, title, body, priority)
}
