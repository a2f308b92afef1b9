package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"whosaid/internal/config"
	"whosaid/internal/pipeline"
	"whosaid/internal/render"
	"whosaid/internal/report"
	"whosaid/internal/sentiment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	data := filepath.Join(root, "data")
	writeFile(t, filepath.Join(data, "Episode4.txt"), strings.Join([]string{
		`"character" "dialogue"`,
		`"1" "LUKE" "I want to learn the ways of the Force"`,
		`"2" "LUKE" "Ben"`,
		`"3" "HAN" "Never tell me the odds"`,
		`"4" "LEIA" "Help me"`,
	}, "\n"))
	writeFile(t, filepath.Join(data, "Episode5.txt"), strings.Join([]string{
		`"character" "dialogue"`,
		`"1" "HAN" "I know"`,
		`"2" "LUKE" "I am a Jedi"`,
	}, "\n"))

	cfg := config.Default()
	cfg.App.LogLevel = "error"
	cfg.Transcripts.Dir = data
	cfg.Selection.Films = []string{"A New Hope", "The Empire Strikes Back"}
	cfg.Selection.MinLines = 1
	cfg.Selection.Focus = "han"
	cfg.Output.Dir = filepath.Join(root, "out")
	return cfg
}

func wordScorer() sentiment.Scorer {
	return sentiment.ScorerFunc(func(text string) float64 {
		if strings.Contains(text, "know") {
			return 0.5
		}
		return 0
	})
}

func TestAppBuilder_Build(t *testing.T) {
	cfg := testConfig(t)
	a, err := NewAppBuilder(cfg, WithScorer(wordScorer())).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"A New Hope", "The Empire Strikes Back", "Return of the Jedi"}, a.Films())
	require.NotNil(t, a.Summary)
	assert.Equal(t, "0:transcripts 1:line_counts 2:metrics,corpora 3:render_page,render_report", a.Summary.Stages)
	assert.Equal(t, []string{"page", "report"}, a.Summary.Sinks)
	assert.Equal(t, "config", a.Summary.SelectionAt)
}

func TestAppBuilder_RejectsUnknownEngine(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sentiment.Engine = "textblob"
	_, err := NewAppBuilder(cfg).Build(context.Background())
	assert.Error(t, err)

	_, err = NewAppBuilder(nil).Build(context.Background())
	assert.Error(t, err)
}

func TestApp_RunWritesArtifacts(t *testing.T) {
	cfg := testConfig(t)
	a, err := NewAppBuilder(cfg, WithScorer(wordScorer())).Build(context.Background())
	require.NoError(t, err)

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"HAN", "LUKE"}, res.Characters)
	assert.Equal(t, "HAN", res.Focus)
	assert.Empty(t, res.Warnings)

	pagePath := res.Artifacts[render.PageArtifact]
	assert.Equal(t, filepath.Join(cfg.Output.Dir, render.PageFile), pagePath)
	assert.FileExists(t, pagePath)

	raw, err := os.ReadFile(res.Artifacts[report.Artifact])
	require.NoError(t, err)
	doc := string(raw)
	assert.Equal(t, res.RunID, gjson.Get(doc, "run_id").String())
	assert.Equal(t, "HAN", gjson.Get(doc, "metrics.0.character").String())
	assert.Equal(t, 0.25, gjson.Get(doc, "metrics.0.sentiment").Float())
	assert.Equal(t, int64(2), gjson.Get(doc, "metrics.0.lines").Int())
	assert.Equal(t, "LUKE", gjson.Get(doc, "metrics.1.character").String())
}

func TestApp_RunOnceEmptySelection(t *testing.T) {
	a, err := NewAppBuilder(testConfig(t), WithScorer(wordScorer())).Build(context.Background())
	require.NoError(t, err)

	_, err = a.RunOnce(context.Background(), pipeline.Request{})
	assert.ErrorIs(t, err, pipeline.ErrEmptySelection)
}

func TestApp_SnapshotSink(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.PNG = true
	captured := make(chan int, 1)
	a, err := NewAppBuilder(cfg,
		WithScorer(wordScorer()),
		WithSnapshotCapture(func(_ context.Context, _ []byte, width, _ int, _ time.Duration) ([]byte, error) {
			captured <- width
			return []byte("png"), nil
		}),
	).Build(context.Background())
	require.NoError(t, err)

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.Output.Width, <-captured)
	assert.FileExists(t, res.Artifacts[render.SnapshotArtifact])
}

func TestApp_Characters(t *testing.T) {
	a, err := NewAppBuilder(testConfig(t), WithScorer(wordScorer())).Build(context.Background())
	require.NoError(t, err)

	got, err := a.Characters(context.Background(), []string{"A New Hope"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []CharacterTotal{
		{Character: "LUKE", Lines: 2},
		{Character: "HAN", Lines: 1},
		{Character: "LEIA", Lines: 1},
	}, got)

	_, err = a.Characters(context.Background(), []string{"A New Hope"}, -1)
	assert.Error(t, err)
}

func TestApp_WatchRerunsOnSelectionChange(t *testing.T) {
	cfg := testConfig(t)
	selPath := filepath.Join(t.TempDir(), "selection.yaml")
	writeFile(t, selPath, "films: [A New Hope]\nmin_lines: 1\n")
	cfg.Selection.Path = selPath

	a, err := NewAppBuilder(cfg, WithScorer(wordScorer())).Build(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx) }()

	reportPath := filepath.Join(cfg.Output.Dir, report.File)
	characters := func() string {
		raw, err := os.ReadFile(reportPath)
		if err != nil {
			return ""
		}
		names := make([]string, 0)
		for _, v := range gjson.GetBytes(raw, "characters").Array() {
			names = append(names, v.String())
		}
		return strings.Join(names, ",")
	}
	assert.Eventually(t, func() bool { return characters() == "LUKE" }, 5*time.Second, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	writeFile(t, selPath, "films: [A New Hope, The Empire Strikes Back]\nmin_lines: 1\n")
	assert.Eventually(t, func() bool { return characters() == "HAN,LUKE" }, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}
