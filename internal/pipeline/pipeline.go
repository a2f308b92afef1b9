package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"whosaid/internal/logger"

	"golang.org/x/sync/errgroup"
)

// ErrEmptySelection means no film was selected, so nothing is computed.
var ErrEmptySelection = errors.New("no films selected")

// Pipeline runs middlewares grouped by stage. Stages run in ascending order;
// middlewares sharing a stage run concurrently.
type Pipeline struct {
	name   string
	stages [][]Middleware
}

// New groups middlewares by their stage number.
func New(name string, middlewares ...Middleware) *Pipeline {
	stageMap := make(map[int][]Middleware)
	for _, mw := range middlewares {
		if mw == nil {
			continue
		}
		meta := mw.Meta()
		stageMap[meta.Stage] = append(stageMap[meta.Stage], mw)
	}
	keys := make([]int, 0, len(stageMap))
	for st := range stageMap {
		keys = append(keys, st)
	}
	sort.Ints(keys)
	stages := make([][]Middleware, 0, len(keys))
	for _, st := range keys {
		stages = append(stages, stageMap[st])
	}
	return &Pipeline{name: name, stages: stages}
}

// Describe lists middleware names per stage, e.g. "0:transcripts 1:line_counts".
func (p *Pipeline) Describe() string {
	parts := make([]string, 0, len(p.stages))
	for _, stage := range p.stages {
		names := make([]string, 0, len(stage))
		for _, mw := range stage {
			names = append(names, mw.Meta().Name)
		}
		parts = append(parts, fmt.Sprintf("%d:%s", stage[0].Meta().Stage, strings.Join(names, ",")))
	}
	return strings.Join(parts, " ")
}

// Run executes every stage against d. The first critical failure stops the
// run; other failures are recorded as warnings on d.
func (p *Pipeline) Run(ctx context.Context, d *Dashboard) error {
	if d == nil {
		return fmt.Errorf("nil dashboard")
	}
	if len(d.Request.Films) == 0 {
		return ErrEmptySelection
	}
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	for _, stage := range p.stages {
		if err := p.runStage(ctx, d, stage); err != nil {
			return err
		}
	}
	logger.With("pipeline", p.name, "run", d.RunID).
		Debug("pipeline finished", "elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}

func (p *Pipeline) runStage(ctx context.Context, d *Dashboard, stage []Middleware) error {
	if len(stage) == 0 {
		return nil
	}
	group, stageCtx := errgroup.WithContext(ctx)
	warnCh := make(chan *MiddlewareError, len(stage))
	for _, mw := range stage {
		group.Go(func() error {
			meta := mw.Meta()
			runCtx := stageCtx
			if meta.Timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(stageCtx, meta.Timeout)
				defer cancel()
			}
			err := mw.Handle(runCtx, d)
			if err == nil {
				return nil
			}
			wErr := &MiddlewareError{
				Middleware: meta.Name,
				Stage:      meta.Stage,
				Critical:   meta.Critical,
				Err:        err,
			}
			if meta.Critical {
				return wErr
			}
			warnCh <- wErr
			return nil
		})
	}
	err := group.Wait()
	close(warnCh)
	log := logger.With("pipeline", p.name, "run", d.RunID)
	for warn := range warnCh {
		d.AddWarning(warn.Error())
		log.Warn("middleware failed", "middleware", warn.Middleware, "stage", warn.Stage, "err", warn.Err)
	}
	if err == nil {
		return nil
	}
	d.AddWarning(err.Error())
	return err
}
