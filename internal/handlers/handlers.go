// Package handlers holds the built-in reactive handlers the engine
// dispatches row deltas to. Each handler kind is its own type declaring
// the row shape it expects.
package handlers

import (
	"fmt"
	"strconv"

	"github.com/vigilhq/vigil/internal/engine"
	"github.com/vigilhq/vigil/internal/geo"
)

// Deps carries collaborators a handler may need.
type Deps struct {
	// Geocoder resolves GPS points to addresses. Nil disables
	// reverse geocoding in the gps handler.
	Geocoder geo.Geocoder
}

// New builds a handler by kind name, as referenced from the
// subscription declaration list.
func New(kind string, params map[string]any, deps Deps) (engine.Handler, error) {
	switch kind {
	case "connection":
		return NewLiveness(params), nil
	case "screen_up":
		return &Orientation{}, nil
	case "movement":
		return NewMovement(params), nil
	case "gps":
		return &Speed{Geocoder: deps.Geocoder}, nil
	case "mailbox":
		return &Mailbox{}, nil
	case "threshold":
		return NewThreshold(params)
	case "archiver":
		return &Archiver{}, nil
	default:
		return nil, fmt.Errorf("unknown handler %q", kind)
	}
}

// Row values come back from the driver as int64, float64, string,
// []byte, or nil depending on column affinity; YAML params decode as
// int. Handlers coerce rather than assume.

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	}
	return 0, false
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return int64(x), true
	case int:
		return int64(x), true
	}
	return 0, false
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}

func paramFloat(params map[string]any, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		if f, ok := asFloat(v); ok {
			return f
		}
	}
	return fallback
}

func paramInt(params map[string]any, key string, fallback int) int {
	if v, ok := params[key]; ok {
		if n, ok := asInt64(v); ok {
			return int(n)
		}
	}
	return fallback
}

func paramString(params map[string]any, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
