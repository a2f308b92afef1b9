package middlewares

import (
	"context"
	"fmt"

	"whosaid/internal/aggregate"
	"whosaid/internal/pipeline"
	"whosaid/internal/sentiment"
)

// MetricsCalculator computes sentiment and average line length for every
// filtered character.
type MetricsCalculator struct {
	meta   pipeline.MiddlewareMeta
	scorer sentiment.Scorer
}

func NewMetricsCalculator(cfg StageConfig, scorer sentiment.Scorer) *MetricsCalculator {
	return &MetricsCalculator{meta: cfg.meta("metrics"), scorer: scorer}
}

func (m *MetricsCalculator) Meta() pipeline.MiddlewareMeta { return m.meta }

func (m *MetricsCalculator) Handle(ctx context.Context, d *pipeline.Dashboard) error {
	if err := checkDashboard(ctx, d); err != nil {
		return err
	}
	metrics, err := aggregate.ComputeCharacterMetrics(d.Transcripts(), d.Characters(), m.scorer)
	if err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}
	d.SetMetrics(metrics)
	return nil
}
