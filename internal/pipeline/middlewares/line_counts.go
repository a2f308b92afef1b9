package middlewares

import (
	"context"
	"strings"

	"whosaid/internal/aggregate"
	"whosaid/internal/logger"
	"whosaid/internal/pipeline"
)

// LineCounter builds the per-film line counts, applies the threshold once and
// resolves the focus character against the filtered set.
type LineCounter struct {
	meta pipeline.MiddlewareMeta
}

func NewLineCounter(cfg StageConfig) *LineCounter {
	return &LineCounter{meta: cfg.meta("line_counts")}
}

func (l *LineCounter) Meta() pipeline.MiddlewareMeta { return l.meta }

func (l *LineCounter) Handle(ctx context.Context, d *pipeline.Dashboard) error {
	if err := checkDashboard(ctx, d); err != nil {
		return err
	}
	rows := aggregate.CountLines(d.Transcripts())
	characters := aggregate.FilterByThreshold(rows, d.Request.MinLines)
	focus, _ := aggregate.ResolveFocus(characters, d.Request.Focus)
	if d.Request.Focus != "" && focus != "" && !strings.EqualFold(focus, d.Request.Focus) {
		d.AddWarning("focus character " + d.Request.Focus + " is below the threshold; using " + focus)
	}
	d.SetLineCounts(rows, characters, focus)
	logger.Debugf("[line_counts] run=%s rows=%d characters=%d focus=%q", d.RunID, len(rows), len(characters), focus)
	return nil
}
