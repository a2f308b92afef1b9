package pipeline

import (
	"context"
	"time"
)

// Middleware is one step of a dashboard run.
type Middleware interface {
	Meta() MiddlewareMeta
	Handle(ctx context.Context, d *Dashboard) error
}

// MiddlewareMeta carries scheduling information.
type MiddlewareMeta struct {
	Name     string
	Stage    int
	Critical bool
	Timeout  time.Duration
}

// MiddlewareError wraps a middleware failure with its scheduling info.
type MiddlewareError struct {
	Middleware string
	Stage      int
	Critical   bool
	Err        error
}

func (e *MiddlewareError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Middleware
	}
	return e.Middleware + ": " + e.Err.Error()
}

func (e *MiddlewareError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Sink writes a finished dashboard somewhere and records what it wrote through
// Dashboard.AddArtifact.
type Sink interface {
	Name() string
	Render(ctx context.Context, d *Dashboard) error
}
