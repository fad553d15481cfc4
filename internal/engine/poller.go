package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/vigilhq/vigil/internal/metrics"
	"github.com/vigilhq/vigil/internal/notify"
	"github.com/vigilhq/vigil/internal/store"
)

const (
	minQueryTimeout = time.Second
	maxQueryTimeout = 30 * time.Second
)

// Poller runs one subscription's poll/diff/dispatch cycle until its
// context is cancelled. The snapshot and handler state are owned by the
// poller goroutine exclusively.
type Poller struct {
	sub      Subscription
	querier  Querier
	execer   Execer
	notifier notify.Notifier
	limiter  *notify.Limiter
	metrics  *metrics.Metrics

	snapshot []store.Row
	seen     bool
	state    any

	mu     sync.Mutex
	status PollerStatus
}

// PollerStatus is a point-in-time view of one poller, safe to read from
// other goroutines.
type PollerStatus struct {
	Label        string    `json:"label"`
	Cycles       uint64    `json:"cycles"`
	Errors       uint64    `json:"errors"`
	LastError    string    `json:"last_error,omitempty"`
	LastPoll     time.Time `json:"last_poll"`
	SnapshotRows int       `json:"snapshot_rows"`
}

func newPoller(sub Subscription, q Querier, x Execer, n notify.Notifier, l *notify.Limiter, m *metrics.Metrics) *Poller {
	return &Poller{
		sub:      sub,
		querier:  q,
		execer:   x,
		notifier: n,
		limiter:  l,
		metrics:  m,
		status:   PollerStatus{Label: sub.Label},
	}
}

// run polls immediately, then every interval, until ctx is cancelled.
// An in-flight cycle always completes: cancellation is only observed
// between cycles, so a dispatch never aborts mid-mutation.
func (p *Poller) run(ctx context.Context) {
	for {
		p.cycle()

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.sub.Interval):
		}
	}
}

func (p *Poller) cycle() {
	qctx, cancel := context.WithTimeout(context.Background(), p.queryTimeout())
	rows, err := p.querier.QueryRows(qctx, p.sub.Query)
	cancel()
	if err != nil {
		// Transient store errors must not disable the subscription:
		// log, keep the last good snapshot, retry next interval.
		log.Printf("%s: poll query: %v", p.sub.Label, err)
		p.metrics.IncPollError(p.sub.Label)
		p.recordError(err)
		return
	}
	if rows == nil {
		rows = []store.Row{}
	}

	first := !p.seen
	prev := p.snapshot
	p.snapshot = rows
	p.seen = true

	p.metrics.IncPoll(p.sub.Label)
	p.metrics.SetSnapshotRows(p.sub.Label, len(rows))
	p.recordPoll(len(rows))

	// The first successful poll has nothing to diff against and must
	// not flood handlers with pre-existing rows.
	if first {
		return
	}

	delta := Delta(prev, rows, p.sub.Mode)
	if p.sub.Mode == DiffOnly && len(delta) == 0 {
		return
	}
	p.dispatch(context.Background(), delta)
}

// dispatch invokes the handler and captures its returned state. On
// failure the previous state is retained so one bad cycle cannot
// corrupt the handler's state machine.
func (p *Poller) dispatch(ctx context.Context, delta []store.Row) {
	p.metrics.IncDispatch(p.sub.Label)

	hc := &Context{
		Label:   p.sub.Label,
		State:   p.state,
		querier: p.querier,
		execer:  p.execer,
		notify:  p.sendNotification,
	}

	next, err := p.invoke(ctx, hc, delta)
	if err != nil {
		log.Printf("%s: handler %s: %v", p.sub.Label, p.sub.Handler.Name(), err)
		p.metrics.IncHandlerError(p.sub.Label)
		p.recordError(err)
		return
	}
	p.state = next
}

func (p *Poller) invoke(ctx context.Context, hc *Context, rows []store.Row) (state any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if want := p.sub.Handler.Columns(); want > 0 {
		for _, row := range rows {
			if len(row) != want {
				return nil, fmt.Errorf("row has %d columns, want %d", len(row), want)
			}
		}
	}
	return p.sub.Handler.Handle(ctx, hc, rows)
}

func (p *Poller) sendNotification(ctx context.Context, title, body string, priority int) {
	if !p.limiter.Allow(title, p.sub.RateLimit) {
		if p.sub.RateLimit > 0 {
			log.Printf("%s: notification limit reached for %q, skipping", p.sub.Label, title)
		}
		p.metrics.IncSuppressed()
		return
	}

	p.metrics.IncSent()
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Push(ctx, title, body, priority); err != nil {
		log.Printf("%s: notify %q: %v", p.sub.Label, title, err)
	}
}

func (p *Poller) queryTimeout() time.Duration {
	if p.sub.QueryTimeout > 0 {
		return p.sub.QueryTimeout
	}
	timeout := p.sub.Interval / 2
	if timeout < minQueryTimeout {
		timeout = minQueryTimeout
	}
	if timeout > maxQueryTimeout {
		timeout = maxQueryTimeout
	}
	return timeout
}

// Status returns a snapshot of the poller's counters.
func (p *Poller) Status() PollerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) recordPoll(rows int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Cycles++
	p.status.LastPoll = time.Now()
	p.status.SnapshotRows = rows
}

func (p *Poller) recordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Errors++
	p.status.LastError = err.Error()
}
