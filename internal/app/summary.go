package app

import (
	"fmt"
	"strings"

	"whosaid/internal/catalog"
	"whosaid/internal/config"
	"whosaid/internal/config/loader"
	"whosaid/internal/pipeline"
)

// StartupSummary is printed once before the first run.
type StartupSummary struct {
	Films       []FilmDetail
	Selection   loader.Selection
	SelectionAt string
	Stages      string
	Engine      string
	OutputDir   string
	Sinks       []string
}

type FilmDetail struct {
	ID    int
	Label string
	Path  string
}

func buildSummary(cfg *config.Config, reg *catalog.Registry, snap loader.Snapshot, p *pipeline.Pipeline) *StartupSummary {
	films := reg.Films()
	details := make([]FilmDetail, len(films))
	for i, f := range films {
		details[i] = FilmDetail{ID: f.ID, Label: f.Label, Path: f.Path}
	}
	sinks := []string{"page"}
	if cfg.Output.Report {
		sinks = append(sinks, "report")
	}
	if cfg.Output.PNG {
		sinks = append(sinks, "snapshot")
	}
	source := "config"
	if cfg.Selection.Path != "" {
		source = cfg.Selection.Path
	}
	return &StartupSummary{
		Films:       details,
		Selection:   snap.Selection,
		SelectionAt: source,
		Stages:      p.Describe(),
		Engine:      cfg.Sentiment.Engine,
		OutputDir:   cfg.Output.Dir,
		Sinks:       sinks,
	}
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%*s\n", 40+len("STARTUP SUMMARY")/2, "STARTUP SUMMARY")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Println("[FILMS]")
	if len(s.Films) == 0 {
		fmt.Println("  (none)")
	}
	for _, f := range s.Films {
		fmt.Printf("  %d  %-28s %s\n", f.ID, f.Label, f.Path)
	}
	fmt.Println()

	fmt.Printf("[SELECTION] (%s)\n", s.SelectionAt)
	fmt.Printf("  Films:     %s\n", formatList(s.Selection.Films))
	fmt.Printf("  Min lines: %d\n", s.Selection.MinLines)
	fmt.Printf("  Focus:     %s\n", orDash(s.Selection.Focus))
	fmt.Println()

	fmt.Println("[PIPELINE]")
	fmt.Printf("  Stages:    %s\n", s.Stages)
	fmt.Printf("  Sentiment: %s\n", s.Engine)
	fmt.Printf("  Output:    %s (%s)\n", s.OutputDir, formatList(s.Sinks))
	fmt.Println(strings.Repeat("=", 80))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
