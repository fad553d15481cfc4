package engine

import "errors"

var (
	errNoLabel     = errors.New("missing label")
	errNoQuery     = errors.New("missing query")
	errNoHandler   = errors.New("missing handler")
	errBadInterval = errors.New("interval must be positive")
	errBadMode     = errors.New("trigger mode must be diff or all")
)
