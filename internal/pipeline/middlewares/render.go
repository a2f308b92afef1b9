package middlewares

import (
	"context"
	"fmt"
	"time"

	"whosaid/internal/pipeline"
)

// SinkRunner hands the finished dashboard to a sink.
type SinkRunner struct {
	meta pipeline.MiddlewareMeta
	sink pipeline.Sink
}

func NewSinkRunner(cfg StageConfig, timeout time.Duration, sink pipeline.Sink) *SinkRunner {
	def := "render"
	if sink != nil {
		def = "render_" + sink.Name()
	}
	meta := cfg.meta(def)
	meta.Timeout = timeout
	return &SinkRunner{meta: meta, sink: sink}
}

func (s *SinkRunner) Meta() pipeline.MiddlewareMeta { return s.meta }

func (s *SinkRunner) Handle(ctx context.Context, d *pipeline.Dashboard) error {
	if err := checkDashboard(ctx, d); err != nil {
		return err
	}
	if s.sink == nil {
		return fmt.Errorf("sink unavailable")
	}
	return s.sink.Render(ctx, d)
}
