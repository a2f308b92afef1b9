package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"whosaid/internal/catalog"
	"whosaid/internal/config"
	"whosaid/internal/config/loader"
	"whosaid/internal/logger"
	"whosaid/internal/pipeline"
	"whosaid/internal/pipeline/factory"
	"whosaid/internal/render"
	"whosaid/internal/report"
	"whosaid/internal/sentiment"
	"whosaid/internal/transcript"
)

// AppBuilder assembles an App from configuration. Every collaborator is
// created through a replaceable function so tests can swap them.
type AppBuilder struct {
	cfg *config.Config

	catalogFn   func(*config.Config) (*catalog.Registry, error)
	scorerFn    func(config.SentimentConfig) (sentiment.Scorer, error)
	selectionFn func(*config.Config) (*loader.SelectionLoader, error)
	sinksFn     func(config.OutputConfig) sinkSet
}

type AppBuilderOption func(*AppBuilder)

// WithScorer replaces the configured sentiment engine.
func WithScorer(s sentiment.Scorer) AppBuilderOption {
	return func(b *AppBuilder) {
		b.scorerFn = func(config.SentimentConfig) (sentiment.Scorer, error) { return s, nil }
	}
}

// WithSnapshotCapture replaces the headless browser used for PNG snapshots.
func WithSnapshotCapture(fn render.CaptureFunc) AppBuilderOption {
	return func(b *AppBuilder) {
		next := b.sinksFn
		b.sinksFn = func(out config.OutputConfig) sinkSet {
			sinks := next(out)
			if sinks.snapshot != nil {
				sinks.snapshot = render.NewSnapshot(snapshotOptions(out, fn))
			}
			return sinks
		}
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:         cfg,
		catalogFn:   loadCatalog,
		scorerFn:    buildScorer,
		selectionFn: buildSelection,
		sinksFn:     buildSinks,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	reg, err := b.catalogFn(cfg)
	if err != nil {
		return nil, err
	}
	scorer, err := b.scorerFn(cfg.Sentiment)
	if err != nil {
		return nil, err
	}
	selection, err := b.selectionFn(cfg)
	if err != nil {
		return nil, err
	}
	cache := transcript.NewCache(transcript.NewParser(transcript.Options{
		SkipHeader:  cfg.Transcripts.SkipHeader,
		OnMalformed: transcript.MalformedPolicy(cfg.Transcripts.OnMalformed),
	}))

	sinks := b.sinksFn(cfg.Output)
	f := &factory.Factory{
		Resolver:    reg,
		Loader:      cache,
		Scorer:      scorer,
		Page:        sinks.page,
		Report:      sinks.report,
		Snapshot:    sinks.snapshot,
		SinkTimeout: snapshotTimeout(cfg.Output),
	}
	dashboard, err := f.Pipeline("dashboard")
	if err != nil {
		return nil, err
	}
	census, err := f.Pipeline("census", "transcripts", "line_counts")
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:       cfg,
		catalog:   reg,
		cache:     cache,
		selection: selection,
		dashboard: dashboard,
		census:    census,
		Summary:   buildSummary(cfg, reg, selection.Snapshot(), dashboard),
	}, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Registry, error) {
	reg, err := catalog.Load(cfg.Catalog.Path, catalog.Options{
		Dir:         cfg.Transcripts.Dir,
		FilePattern: cfg.Transcripts.FilePattern,
		Offset:      cfg.Catalog.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("load film catalog: %w", err)
	}
	return reg, nil
}

func buildScorer(cfg config.SentimentConfig) (sentiment.Scorer, error) {
	scorer, err := sentiment.New(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("build sentiment scorer: %w", err)
	}
	return scorer, nil
}

func buildSelection(cfg *config.Config) (*loader.SelectionLoader, error) {
	defaults := loader.Selection{
		Films:    cfg.Selection.Films,
		MinLines: cfg.Selection.MinLines,
		Focus:    cfg.Selection.Focus,
	}
	if strings.TrimSpace(cfg.Selection.Path) == "" {
		return loader.NewStatic(defaults), nil
	}
	sel, err := loader.NewSelectionLoader(cfg.Selection.Path, defaults)
	if err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}
	return sel, nil
}

type sinkSet struct {
	page     pipeline.Sink
	report   pipeline.Sink
	snapshot pipeline.Sink
}

func buildSinks(out config.OutputConfig) sinkSet {
	sinks := sinkSet{
		page: render.NewPage(render.PageOptions{
			Dir:            out.Dir,
			Width:          out.Width,
			Height:         out.Height,
			WordCloudLimit: out.WordCloudLimit,
		}),
	}
	if out.Report {
		sinks.report = report.NewWriter(out.Dir)
	}
	if out.PNG {
		sinks.snapshot = render.NewSnapshot(snapshotOptions(out, nil))
	}
	return sinks
}

func snapshotOptions(out config.OutputConfig, capture render.CaptureFunc) render.SnapshotOptions {
	return render.SnapshotOptions{
		Dir:     out.Dir,
		Width:   out.Width,
		Height:  out.Height,
		Timeout: snapshotTimeout(out),
		Capture: capture,
	}
}

func snapshotTimeout(out config.OutputConfig) time.Duration {
	return time.Duration(out.SnapshotSecs) * time.Second
}
