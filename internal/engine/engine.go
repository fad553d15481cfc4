package engine

import (
	"context"
	"log"
	"sync"

	"github.com/vigilhq/vigil/internal/metrics"
	"github.com/vigilhq/vigil/internal/notify"
)

// Engine supervises one poller per subscription. All pollers share one
// notification rate limiter; everything else is per-poller state.
type Engine struct {
	pollers []*Poller
	limiter *notify.Limiter

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options carries the engine's optional collaborators.
type Options struct {
	// Notifier delivers push notifications. Nil drops them after rate
	// accounting.
	Notifier notify.Notifier
	// Metrics records engine counters. Nil disables instrumentation.
	Metrics *metrics.Metrics
}

// New builds an engine from the subscription list. A subscription with
// no handler, label, query, or a non-positive interval fails alone: it
// is logged and skipped, and the rest still run.
func New(q Querier, x Execer, subs []Subscription, opts Options) *Engine {
	e := &Engine{limiter: notify.NewLimiter()}

	for _, sub := range subs {
		if err := validate(sub); err != nil {
			log.Printf("skipping subscription %q: %v", sub.Label, err)
			continue
		}
		e.pollers = append(e.pollers, newPoller(sub, q, x, opts.Notifier, e.limiter, opts.Metrics))
	}
	return e
}

func validate(sub Subscription) error {
	switch {
	case sub.Label == "":
		return errNoLabel
	case sub.Query == "":
		return errNoQuery
	case sub.Handler == nil:
		return errNoHandler
	case sub.Interval <= 0:
		return errBadInterval
	case sub.Mode != DiffOnly && sub.Mode != AllRows:
		return errBadMode
	}
	return nil
}

// Start launches every poller. Each runs independently: a slow query on
// one subscription never delays another's poll.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)

	for _, p := range e.pollers {
		e.wg.Add(1)
		go func(p *Poller) {
			defer e.wg.Done()
			p.run(ctx)
		}(p)
	}
	log.Printf("engine started with %d subscriptions", len(e.pollers))
}

// Stop signals every poller and waits for in-flight cycles to finish.
func (e *Engine) Stop() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	e.wg.Wait()
}

// Status reports every poller's counters.
func (e *Engine) Status() []PollerStatus {
	out := make([]PollerStatus, 0, len(e.pollers))
	for _, p := range e.pollers {
		out = append(out, p.Status())
	}
	return out
}

// NotificationCounts reports in-window sends per notification title.
func (e *Engine) NotificationCounts() map[string]int {
	return e.limiter.WindowCounts()
}
