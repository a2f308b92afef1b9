package factory

import (
	"fmt"
	"strings"
	"time"

	"whosaid/internal/logger"
	"whosaid/internal/pipeline"
	"whosaid/internal/pipeline/middlewares"
	"whosaid/internal/sentiment"
)

// Stage numbers of the dashboard pipeline.
const (
	StageLoad = iota
	StageCount
	StageMetrics
	StageRender
	StageSnapshot
)

// DefaultOrder lists every middleware Build knows, in run order.
var DefaultOrder = []string{
	"transcripts",
	"line_counts",
	"metrics",
	"corpora",
	"render_page",
	"render_report",
	"render_snapshot",
}

// Factory builds dashboard middlewares from their collaborators. Nil sinks
// are skipped.
type Factory struct {
	Resolver    middlewares.FilmResolver
	Loader      middlewares.SetLoader
	Scorer      sentiment.Scorer
	Page        pipeline.Sink
	Report      pipeline.Sink
	Snapshot    pipeline.Sink
	SinkTimeout time.Duration
}

// Build returns the named middleware, or nil when it depends on a sink that
// is not configured.
func (f *Factory) Build(name string) (pipeline.Middleware, error) {
	switch strings.TrimSpace(name) {
	case "transcripts":
		if f.Resolver == nil || f.Loader == nil {
			return nil, fmt.Errorf("transcripts needs a resolver and a loader")
		}
		return middlewares.NewTranscriptLoader(middlewares.StageConfig{Stage: StageLoad, Critical: true}, f.Resolver, f.Loader), nil
	case "line_counts":
		return middlewares.NewLineCounter(middlewares.StageConfig{Stage: StageCount, Critical: true}), nil
	case "metrics":
		if f.Scorer == nil {
			return nil, fmt.Errorf("metrics needs a scorer")
		}
		return middlewares.NewMetricsCalculator(middlewares.StageConfig{Stage: StageMetrics, Critical: true}, f.Scorer), nil
	case "corpora":
		return middlewares.NewCorpusBuilder(middlewares.StageConfig{Stage: StageMetrics}), nil
	case "render_page":
		return f.sink(StageRender, f.Page), nil
	case "render_report":
		return f.sink(StageRender, f.Report), nil
	case "render_snapshot":
		return f.sink(StageSnapshot, f.Snapshot), nil
	default:
		return nil, fmt.Errorf("unknown middleware: %s", name)
	}
}

func (f *Factory) sink(stage int, s pipeline.Sink) pipeline.Middleware {
	if s == nil {
		return nil
	}
	return middlewares.NewSinkRunner(middlewares.StageConfig{Stage: stage}, f.SinkTimeout, s)
}

// Pipeline builds the named middlewares (DefaultOrder when names is empty)
// into a pipeline.
func (f *Factory) Pipeline(name string, names ...string) (*pipeline.Pipeline, error) {
	if len(names) == 0 {
		names = DefaultOrder
	}
	mws := make([]pipeline.Middleware, 0, len(names))
	for _, n := range names {
		mw, err := f.Build(n)
		if err != nil {
			return nil, err
		}
		if mw == nil {
			continue
		}
		mws = append(mws, mw)
	}
	p := pipeline.New(name, mws...)
	logger.Debugf("[pipeline] %s stages: %s", name, p.Describe())
	return p, nil
}
