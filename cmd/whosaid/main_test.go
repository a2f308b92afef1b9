package main

import (
	"os"
	"path/filepath"
	"testing"

	"whosaid/internal/config"
	"whosaid/internal/config/loader"
	"whosaid/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	configPath = ""
	t.Setenv("WHOSAID_CONFIG", "")
	assert.Equal(t, defaultConfigPath, resolveConfigPath())

	t.Setenv("WHOSAID_CONFIG", "/etc/whosaid.yaml")
	assert.Equal(t, "/etc/whosaid.yaml", resolveConfigPath())

	configPath = "local.yaml"
	t.Cleanup(func() { configPath = "" })
	assert.Equal(t, "local.yaml", resolveConfigPath())
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Selection.Path = "configs/selection.yaml"

	require.NoError(t, applyOverrides(runCmd, cfg))
	assert.Equal(t, "configs/selection.yaml", cfg.Selection.Path)

	require.NoError(t, runCmd.Flags().Set("films", "Return of the Jedi,A New Hope"))
	require.NoError(t, runCmd.Flags().Set("min-lines", "3"))
	t.Cleanup(func() {
		runCmd.Flags().Lookup("films").Changed = false
		runCmd.Flags().Lookup("min-lines").Changed = false
		runFilms, runMinLines = nil, -1
	})

	require.NoError(t, applyOverrides(runCmd, cfg))
	assert.Empty(t, cfg.Selection.Path)
	assert.Equal(t, []string{"Return of the Jedi", "A New Hope"}, cfg.Selection.Films)
	assert.Equal(t, 3, cfg.Selection.MinLines)
}

func TestApplyOverrides_RejectsBadThreshold(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, runCmd.Flags().Set("min-lines", "-5"))
	t.Cleanup(func() {
		runCmd.Flags().Lookup("min-lines").Changed = false
		runMinLines = -1
	})
	assert.Error(t, applyOverrides(runCmd, cfg))
}

func TestCharacterQuery_FallsBackToSelection(t *testing.T) {
	sel := loader.Selection{Films: []string{"A New Hope"}, MinLines: 40}

	films, minLines := characterQuery(charactersCmd, sel)
	assert.Equal(t, []string{"A New Hope"}, films)
	assert.Equal(t, 40, minLines)

	require.NoError(t, charactersCmd.Flags().Set("min-lines", "0"))
	require.NoError(t, charactersCmd.Flags().Set("films", "Return of the Jedi"))
	t.Cleanup(func() {
		charactersCmd.Flags().Lookup("min-lines").Changed = false
		charactersCmd.Flags().Lookup("films").Changed = false
		charFilms, charMinLines = nil, 0
	})

	films, minLines = characterQuery(charactersCmd, sel)
	assert.Equal(t, []string{"Return of the Jedi"}, films)
	assert.Equal(t, 0, minLines)
}

func TestCloseLogFile_AfterFailedCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "whosaid.log")
	f, err := setupLogOutput(path)
	require.NoError(t, err)
	require.NotNil(t, f)
	logFile = f
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { configPath = "" })
	rootCmd.SetArgs([]string{"films"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	assert.Error(t, rootCmd.Execute())

	closeLogFile()
	assert.Nil(t, logFile)
	_, err = f.WriteString("late\n")
	assert.ErrorIs(t, err, os.ErrClosed)
}
