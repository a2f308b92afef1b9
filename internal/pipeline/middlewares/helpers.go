package middlewares

import (
	"context"
	"fmt"
	"strings"

	"whosaid/internal/pipeline"
)

// StageConfig is the scheduling part shared by every middleware.
type StageConfig struct {
	Name     string
	Stage    int
	Critical bool
}

func (c StageConfig) meta(def string) pipeline.MiddlewareMeta {
	return pipeline.MiddlewareMeta{
		Name:     nameOrDefault(c.Name, def),
		Stage:    c.Stage,
		Critical: c.Critical,
	}
}

func nameOrDefault(name, def string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return def
	}
	return name
}

func checkDashboard(ctx context.Context, d *pipeline.Dashboard) error {
	if d == nil {
		return fmt.Errorf("nil dashboard")
	}
	return ctx.Err()
}
