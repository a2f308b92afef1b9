package middlewares

import (
	"context"

	"whosaid/internal/aggregate"
	"whosaid/internal/pipeline"
)

// CorpusBuilder joins the dialogue of the filtered characters into the two
// word-cloud corpora.
type CorpusBuilder struct {
	meta pipeline.MiddlewareMeta
}

func NewCorpusBuilder(cfg StageConfig) *CorpusBuilder {
	return &CorpusBuilder{meta: cfg.meta("corpora")}
}

func (c *CorpusBuilder) Meta() pipeline.MiddlewareMeta { return c.meta }

func (c *CorpusBuilder) Handle(ctx context.Context, d *pipeline.Dashboard) error {
	if err := checkDashboard(ctx, d); err != nil {
		return err
	}
	d.SetCorpora(aggregate.BuildCorpora(d.Transcripts(), d.Characters(), d.Focus()))
	return nil
}
