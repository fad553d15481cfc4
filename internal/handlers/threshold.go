package handlers

import (
	"context"
	"fmt"

	"github.com/vigilhq/vigil/internal/engine"
	"github.com/vigilhq/vigil/internal/store"
)

// Threshold is the generic alert handler: it sends one fixed
// notification when the subscription's query predicate produces a row,
// optionally gated on a column exceeding a minimum. Pacing beyond that
// comes from the subscription's rate limit.
type Threshold struct {
	Title    string
	Body     string
	Priority int
	Column   int
	Min      *float64
}

// NewThreshold builds the handler from declaration params: title
// (required), body, priority, column, min.
func NewThreshold(params map[string]any) (*Threshold, error) {
	title := paramString(params, "title")
	if title == "" {
		return nil, fmt.Errorf("threshold handler requires a title param")
	}

	h := &Threshold{
		Title:    title,
		Body:     paramString(params, "body"),
		Priority: paramInt(params, "priority", 5),
		Column:   paramInt(params, "column", 0),
	}
	if v, ok := params["min"]; ok {
		if min, ok := asFloat(v); ok {
			h.Min = &min
		}
	}
	return h, nil
}

func (h *Threshold) Name() string { return "threshold" }

func (h *Threshold) Columns() int { return 0 }

func (h *Threshold) Handle(ctx context.Context, hc *engine.Context, rows []store.Row) (any, error) {
	if h.shouldFire(rows) {
		hc.Notify(ctx, h.Title, h.Body, h.Priority)
	}
	return hc.State, nil
}

func (h *Threshold) shouldFire(rows []store.Row) bool {
	if h.Min == nil {
		return len(rows) > 0
	}
	for _, row := range rows {
		if h.Column >= len(row) {
			continue
		}
		if v, ok := asFloat(row[h.Column]); ok && v > *h.Min {
			return true
		}
	}
	return false
}
