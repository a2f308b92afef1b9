package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"whosaid/internal/aggregate"
	"whosaid/internal/catalog"
	"whosaid/internal/config"
	"whosaid/internal/config/loader"
	"whosaid/internal/logger"
	"whosaid/internal/pipeline"
	"whosaid/internal/transcript"
)

// App wires the catalog, the transcript cache and the dashboard pipeline to
// the current selection.
type App struct {
	cfg       *config.Config
	catalog   *catalog.Registry
	cache     *transcript.Cache
	selection *loader.SelectionLoader
	dashboard *pipeline.Pipeline
	census    *pipeline.Pipeline
	Summary   *StartupSummary

	runMu sync.Mutex
}

// NewApp builds the application without running anything.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Result is what one dashboard run produced.
type Result struct {
	RunID      string
	Request    pipeline.Request
	Characters []string
	Focus      string
	Artifacts  map[string]string
	Warnings   []string
}

// Run computes the dashboard once for the current selection.
func (a *App) Run(ctx context.Context) (Result, error) {
	if a == nil || a.cfg == nil {
		return Result{}, fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	d, err := a.RunOnce(ctx, requestFrom(a.selection.Snapshot()))
	if err != nil {
		return Result{}, err
	}
	return resultOf(d), nil
}

// RunOnce runs the dashboard pipeline for req. Runs are serialised.
func (a *App) RunOnce(ctx context.Context, req pipeline.Request) (*pipeline.Dashboard, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	d := pipeline.NewDashboard(req)
	logger.Infof("Dashboard run %s: films=%v min_lines=%d focus=%q", d.RunID, req.Films, req.MinLines, req.Focus)
	if err := a.dashboard.Run(ctx, d); err != nil {
		return d, err
	}
	for name, path := range d.Artifacts() {
		logger.Infof("  %s -> %s", name, path)
	}
	logger.Debugf("Transcript cache holds %d films", a.cache.Len())
	return d, nil
}

// Watch reruns the dashboard every time the selection changes, starting with
// the current one. A failed run is logged and the next change retried. Watch
// returns when ctx is done.
func (a *App) Watch(ctx context.Context) error {
	if a == nil || a.selection == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	updates := make(chan loader.Snapshot, 1)
	a.selection.Subscribe(func(s loader.Snapshot) {
		// Keep only the newest snapshot when a run is still in progress.
		for {
			select {
			case updates <- s:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	a.selection.Watch()
	if a.selection.Path() != "" {
		logger.Infof("Watching %s for selection changes", a.selection.Path())
	}

	var lastVersion int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-updates:
			if snap.Version <= lastVersion {
				continue
			}
			lastVersion = snap.Version
			if _, err := a.RunOnce(ctx, requestFrom(snap)); err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Errorf("Dashboard run for selection v%d failed: %v", snap.Version, err)
			}
		}
	}
}

// CharacterTotal is a character's line count across the selected films.
type CharacterTotal struct {
	Character string `json:"character"`
	Lines     int    `json:"lines"`
}

// Characters lists the characters above minLines in the given films, most
// lines first.
func (a *App) Characters(ctx context.Context, films []string, minLines int) ([]CharacterTotal, error) {
	if err := config.ValidateSelection(films, minLines); err != nil {
		return nil, err
	}
	d := pipeline.NewDashboard(pipeline.Request{Films: films, MinLines: minLines})
	if err := a.census.Run(ctx, d); err != nil {
		return nil, err
	}
	rows := d.TrimmedLineCounts()
	totals := aggregate.Totals(rows)
	ranked := aggregate.RankByTotal(rows, d.Characters())
	out := make([]CharacterTotal, len(ranked))
	for i, c := range ranked {
		out[i] = CharacterTotal{Character: c, Lines: totals[c]}
	}
	return out, nil
}

// Films lists the catalog labels in catalog order.
func (a *App) Films() []string {
	return a.catalog.Labels()
}

// Selection is the current selection snapshot.
func (a *App) Selection() loader.Snapshot {
	return a.selection.Snapshot()
}

func requestFrom(s loader.Snapshot) pipeline.Request {
	return pipeline.Request{
		Films:    s.Selection.Films,
		MinLines: s.Selection.MinLines,
		Focus:    s.Selection.Focus,
	}
}

func resultOf(d *pipeline.Dashboard) Result {
	return Result{
		RunID:      d.RunID,
		Request:    d.Request,
		Characters: d.Characters(),
		Focus:      d.Focus(),
		Artifacts:  d.Artifacts(),
		Warnings:   d.Warnings(),
	}
}
