package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"whosaid/internal/catalog"
	"whosaid/internal/pipeline"
	"whosaid/internal/sentiment"
	"whosaid/internal/transcript"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Name() string { return m.Called().String(0) }

func (m *MockSink) Render(ctx context.Context, d *pipeline.Dashboard) error {
	return m.Called(ctx, d).Error(0)
}

func writeEpisode(t *testing.T, dir string, id int, lines ...string) {
	t.Helper()
	name := filepath.Join(dir, fmt.Sprintf("Episode%d.txt", id))
	require.NoError(t, os.WriteFile(name, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func newFactory(t *testing.T) *Factory {
	t.Helper()
	dir := t.TempDir()
	writeEpisode(t, dir, 4,
		`"1" "LUKE" "I want to learn the ways of the Force"`,
		`"2" "LUKE" "Ben"`,
		`"3" "HAN" "Never tell me the odds"`,
		`"4" "LEIA" "Help me"`,
	)
	writeEpisode(t, dir, 5,
		`"1" "HAN" "I know"`,
		`"2" "LUKE" "I am a Jedi"`,
		`"3" "HAN" "Punch it"`,
	)
	reg, err := catalog.Load("", catalog.Options{Dir: dir, Offset: catalog.DefaultOffset})
	require.NoError(t, err)
	return &Factory{
		Resolver: reg,
		Loader:   transcript.NewCache(transcript.NewParser(transcript.Options{})),
		Scorer:   sentiment.ScorerFunc(func(text string) float64 { return float64(len(strings.Fields(text))) / 10 }),
	}
}

func TestFactory_Build(t *testing.T) {
	f := newFactory(t)
	for _, name := range []string{"transcripts", "line_counts", "metrics", "corpora"} {
		mw, err := f.Build(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, mw.Meta().Name)
	}

	mw, err := f.Build("render_page")
	require.NoError(t, err)
	assert.Nil(t, mw)

	_, err = f.Build("word_cloud")
	assert.Error(t, err)

	_, err = (&Factory{}).Build("metrics")
	assert.Error(t, err)
}

func TestFactory_PipelineEndToEnd(t *testing.T) {
	f := newFactory(t)
	sink := new(MockSink)
	sink.On("Name").Return("report")
	sink.On("Render", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		d := args.Get(1).(*pipeline.Dashboard)
		d.AddArtifact("report", "report.json")
	})
	f.Report = sink

	p, err := f.Pipeline("dashboard")
	require.NoError(t, err)
	assert.Equal(t, "0:transcripts 1:line_counts 2:metrics,corpora 3:render_report", p.Describe())

	d := pipeline.NewDashboard(pipeline.Request{
		Films:    []string{"The Empire Strikes Back", "A New Hope"},
		MinLines: 2,
		Focus:    "han",
	})
	require.NoError(t, p.Run(context.Background(), d))

	assert.Equal(t, []string{"The Empire Strikes Back", "A New Hope"}, d.Transcripts().Films())
	assert.Equal(t, []string{"HAN", "LUKE"}, d.Characters())
	assert.Equal(t, "HAN", d.Focus())

	rows := d.LineCounts()
	require.Len(t, rows, 5)
	assert.Equal(t, "HAN", rows[0].Character)
	assert.Equal(t, "The Empire Strikes Back", rows[0].Film)
	assert.Equal(t, 2, rows[0].Lines)
	assert.Len(t, d.TrimmedLineCounts(), 4)

	metrics := d.Metrics()
	require.Len(t, metrics, 2)
	assert.Equal(t, "HAN", metrics[0].Character)
	assert.Equal(t, 3, metrics[0].Lines)
	assert.InDelta(t, 3.0, metrics[0].AvgLineLength, 1e-9)

	corpora := d.Corpora()
	assert.Equal(t, "I know Punch it Never tell me the odds", corpora.Focus)
	assert.NotContains(t, corpora.All, "Help me")

	path, ok := d.Artifact("report")
	assert.True(t, ok)
	assert.Equal(t, "report.json", path)
	sink.AssertExpectations(t)
}

func TestFactory_PipelineUnknownFilm(t *testing.T) {
	f := newFactory(t)
	p, err := f.Pipeline("dashboard")
	require.NoError(t, err)

	err = p.Run(context.Background(), pipeline.NewDashboard(pipeline.Request{Films: []string{"The Phantom Menace"}}))
	assert.ErrorIs(t, err, catalog.ErrUnknownFilm)
}

func TestFactory_FocusFallsBack(t *testing.T) {
	f := newFactory(t)
	p, err := f.Pipeline("dashboard", "transcripts", "line_counts")
	require.NoError(t, err)

	d := pipeline.NewDashboard(pipeline.Request{Films: []string{"A New Hope"}, MinLines: 1, Focus: "LEIA"})
	require.NoError(t, p.Run(context.Background(), d))
	assert.Equal(t, []string{"LUKE"}, d.Characters())
	assert.Equal(t, "LUKE", d.Focus())
	assert.Len(t, d.Warnings(), 1)
}

func TestFactory_SkippedRecordsBecomeWarnings(t *testing.T) {
	dir := t.TempDir()
	writeEpisode(t, dir, 6,
		`"1" "LUKE" "Father"`,
		`"2" "VADER"`,
		`"3" "LUKE" "No`,
		`"4" "VADER" "Search your feelings"`,
	)
	reg, err := catalog.Load("", catalog.Options{Dir: dir, Offset: catalog.DefaultOffset})
	require.NoError(t, err)
	f := &Factory{
		Resolver: reg,
		Loader:   transcript.NewCache(transcript.NewParser(transcript.Options{OnMalformed: transcript.PolicySkip})),
		Scorer:   sentiment.Neutral,
	}
	p, err := f.Pipeline("census", "transcripts", "line_counts", "metrics")
	require.NoError(t, err)

	for run := 0; run < 2; run++ {
		d := pipeline.NewDashboard(pipeline.Request{Films: []string{"Return of the Jedi"}})
		require.NoError(t, p.Run(context.Background(), d))

		assert.Equal(t, 2, d.Transcripts().Total(), "run %d", run)
		warnings := d.Warnings()
		require.Len(t, warnings, 2, "run %d", run)
		assert.Contains(t, warnings[0], "line 2 skipped")
		assert.Contains(t, warnings[1], "line 3 skipped")
	}
}
