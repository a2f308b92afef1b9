package middlewares

import (
	"context"
	"fmt"

	"whosaid/internal/logger"
	"whosaid/internal/pipeline"
	"whosaid/internal/transcript"
)

// FilmResolver maps selected film labels to catalog entries.
type FilmResolver interface {
	Resolve(names []string) ([]transcript.Film, error)
}

// SetLoader loads the dialogue of several films, keeping their order.
type SetLoader interface {
	LoadSet(ctx context.Context, films []transcript.Film) (transcript.Set, error)
}

// TranscriptLoader resolves the requested films and loads their dialogue.
type TranscriptLoader struct {
	meta     pipeline.MiddlewareMeta
	resolver FilmResolver
	loader   SetLoader
}

func NewTranscriptLoader(cfg StageConfig, resolver FilmResolver, loader SetLoader) *TranscriptLoader {
	return &TranscriptLoader{
		meta:     cfg.meta("transcripts"),
		resolver: resolver,
		loader:   loader,
	}
}

func (t *TranscriptLoader) Meta() pipeline.MiddlewareMeta { return t.meta }

func (t *TranscriptLoader) Handle(ctx context.Context, d *pipeline.Dashboard) error {
	if err := checkDashboard(ctx, d); err != nil {
		return err
	}
	if t.resolver == nil || t.loader == nil {
		return fmt.Errorf("transcript loader not configured")
	}
	films, err := t.resolver.Resolve(d.Request.Films)
	if err != nil {
		return err
	}
	set, err := t.loader.LoadSet(ctx, films)
	if err != nil {
		return err
	}
	d.SetTranscripts(set)
	for _, note := range set.Skipped() {
		d.AddWarning(note)
	}
	logger.Debugf("[transcripts] run=%s films=%v lines=%d", d.RunID, set.Films(), set.Total())
	return nil
}
