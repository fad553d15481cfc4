package engine

import (
	"context"
	"testing"
	"time"

	"github.com/vigilhq/vigil/internal/store"
)

func validSub(label string, h Handler) Subscription {
	return Subscription{
		Label:    label,
		Query:    "SELECT 1",
		Interval: 5 * time.Millisecond,
		Handler:  h,
		Mode:     AllRows,
	}
}

func TestNewSkipsInvalidSubscriptions(t *testing.T) {
	fs := &fakeStore{}
	subs := []Subscription{
		validSub("good", &stubHandler{}),
		{Label: "no-handler", Query: "SELECT 1", Interval: time.Second, Mode: AllRows},
		{Label: "no-query", Interval: time.Second, Handler: &stubHandler{}, Mode: AllRows},
		{Label: "bad-mode", Query: "SELECT 1", Interval: time.Second, Handler: &stubHandler{}, Mode: "sometimes"},
		validSub("also-good", &stubHandler{}),
	}

	e := New(fs, fs, subs, Options{})
	if len(e.pollers) != 2 {
		t.Errorf("engine kept %d pollers, want 2 (invalid ones skipped, valid ones kept)", len(e.pollers))
	}
}

func TestStartStop(t *testing.T) {
	h := &stubHandler{}
	fs := &fakeStore{results: []queryResult{
		{rows: nil}, {rows: nil}, {rows: nil}, {rows: nil},
	}}

	e := New(fs, fs, []Subscription{validSub("a", h)}, Options{})
	e.Start(context.Background())
	time.Sleep(25 * time.Millisecond)
	e.Stop()

	status := e.Status()
	if len(status) != 1 {
		t.Fatalf("status has %d entries, want 1", len(status))
	}
	if status[0].Cycles == 0 {
		t.Error("poller recorded no cycles while running")
	}

	// Stop is idempotent and safe after the pollers exit.
	e.Stop()
}

func TestStopBeforeStart(t *testing.T) {
	e := New(&fakeStore{}, &fakeStore{}, nil, Options{})
	e.Stop() // must not panic
}

func TestPollersRunIndependently(t *testing.T) {
	// A handler that blocks one subscription must not stop another from polling.
	blocked := make(chan struct{})
	slow := &stubHandler{fn: func(hc *Context, rows []store.Row) (any, error) {
		<-blocked
		return nil, nil
	}}
	fast := &stubHandler{}

	slowStore := &fakeStore{results: []queryResult{
		{rows: []store.Row{{int64(1)}}}, {rows: []store.Row{{int64(1)}}},
	}}

	e := New(slowStore, slowStore, []Subscription{
		validSub("slow", slow),
		validSub("fast", fast),
	}, Options{})
	e.Start(context.Background())

	deadline := time.After(time.Second)
	for {
		var fastStatus PollerStatus
		for _, st := range e.Status() {
			if st.Label == "fast" {
				fastStatus = st
			}
		}
		if fastStatus.Cycles >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("fast poller starved while slow handler blocked")
		case <-time.After(time.Millisecond):
		}
	}

	close(blocked)
	e.Stop()
}
