package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "app:\n  env: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "data", cfg.Transcripts.Dir)
	assert.Equal(t, "Episode%d.txt", cfg.Transcripts.FilePattern)
	assert.True(t, cfg.Transcripts.SkipHeader)
	assert.Equal(t, "fail", cfg.Transcripts.OnMalformed)
	assert.Equal(t, 4, cfg.Catalog.Offset)
	assert.Equal(t, 10, cfg.Selection.MinLines)
	assert.Equal(t, []string{"A New Hope"}, cfg.Selection.Films)
	assert.Equal(t, "vader", cfg.Sentiment.Engine)
	assert.True(t, cfg.Output.Report)
	assert.False(t, cfg.Output.PNG)
	assert.Equal(t, 200, cfg.Output.WordCloudLimit)
}

func TestLoad_ExplicitZeroAndFalseSurvive(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
transcripts:
  skip_header: false
  on_malformed: SKIP
selection:
  min_lines: 0
  films: ["The Empire Strikes Back", " the empire strikes back ", "Return of the Jedi"]
output:
  report: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Transcripts.SkipHeader)
	assert.Equal(t, "skip", cfg.Transcripts.OnMalformed)
	assert.Equal(t, 0, cfg.Selection.MinLines)
	assert.Equal(t, []string{"The Empire Strikes Back", "Return of the Jedi"}, cfg.Selection.Films)
	assert.False(t, cfg.Output.Report)
}

func TestLoad_Includes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "selection:\n  min_lines: 25\noutput:\n  dir: base-out\n")
	path := writeFile(t, dir, "config.yaml", "include:\n  - base.yaml\noutput:\n  dir: final-out\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Selection.MinLines)
	assert.Equal(t, "final-out", cfg.Output.Dir)
}

func TestLoad_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include: [b.yaml]\n")
	writeFile(t, dir, "b.yaml", "include: [a.yaml]\n")

	_, err := Load(filepath.Join(dir, "a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]string{
		"bad policy":    "transcripts:\n  on_malformed: ignore\n",
		"bad engine":    "sentiment:\n  engine: afinn\n",
		"bad threshold": "selection:\n  min_lines: -3\n",
		"bad pattern":   "transcripts:\n  file_pattern: episode.txt\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, validate(cfg))
	assert.Equal(t, 10, cfg.Selection.MinLines)
}
