package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"whosaid/internal/config"
	"whosaid/internal/logger"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

var (
	configPath string
	logLevel   string
	logFile    *os.File
)

// rootCmd is the base command; every subcommand loads the config first.
var rootCmd = &cobra.Command{
	Use:   "whosaid",
	Short: "Who said what across the film scripts",
	Long: `whosaid reads film transcripts and builds a dashboard of who speaks,
how much, how positively and about what.

Available subcommands:
  run        - compute the dashboard once
  watch      - recompute whenever the selection file changes
  characters - list the characters above the line threshold
  films      - list the films in the catalog`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $WHOSAID_CONFIG or "+defaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override app.log_level")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(charactersCmd)
	rootCmd.AddCommand(filmsCmd)
}

func main() {
	err := rootCmd.Execute()
	closeLogFile()
	if err != nil {
		os.Exit(1)
	}
}

// closeLogFile runs after Execute returns, whether or not the command failed.
func closeLogFile() {
	if logFile == nil {
		return
	}
	logger.SetOutput(os.Stdout)
	log.SetOutput(os.Stderr)
	logFile.Close()
	logFile = nil
}

func resolveConfigPath() string {
	if p := strings.TrimSpace(configPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("WHOSAID_CONFIG")); p != "" {
		return p
	}
	return defaultConfigPath
}

// loadConfig reads the config file and points the logger at it.
func loadConfig() (*config.Config, error) {
	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if lvl := strings.TrimSpace(logLevel); lvl != "" {
		cfg.App.LogLevel = lvl
	}
	f, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logFile = f
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("Config loaded from %s (env=%s)", path, cfg.App.Env)
	return cfg, nil
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
