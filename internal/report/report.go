// Package report writes the dashboard tables as a JSON document.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"whosaid/internal/aggregate"
	"whosaid/internal/logger"
	"whosaid/internal/pipeline"

	"github.com/shopspring/decimal"
)

const (
	// File is the report name inside the output directory.
	File = "report.json"
	// Artifact is the key the report sink records.
	Artifact = "report"

	places = 4
)

// Report is the serialised form of one dashboard run.
type Report struct {
	RunID       string                   `json:"run_id"`
	GeneratedAt time.Time                `json:"generated_at"`
	Films       []string                 `json:"films"`
	MinLines    int                      `json:"min_lines"`
	Focus       string                   `json:"focus"`
	LineCounts  []aggregate.LineCountRow `json:"line_counts"`
	Characters  []string                 `json:"characters"`
	Metrics     []Metric                 `json:"metrics"`
	Warnings    []string                 `json:"warnings,omitempty"`
}

// Metric is a CharacterMetrics row with rounded values.
type Metric struct {
	Character     string  `json:"character"`
	Sentiment     float64 `json:"sentiment"`
	AvgLineLength float64 `json:"avg_line_length"`
	Lines         int     `json:"lines"`
}

// Build snapshots d. Line counts are the threshold-trimmed rows.
func Build(d *pipeline.Dashboard, now time.Time) Report {
	metrics := d.Metrics()
	out := make([]Metric, len(metrics))
	for i, m := range metrics {
		out[i] = Metric{
			Character:     m.Character,
			Sentiment:     roundTo(m.Sentiment),
			AvgLineLength: roundTo(m.AvgLineLength),
			Lines:         m.Lines,
		}
	}
	rows := d.TrimmedLineCounts()
	films := d.Transcripts().Films()
	if len(films) == 0 {
		films = append([]string{}, d.Request.Films...)
	}
	return Report{
		RunID:       d.RunID,
		GeneratedAt: now.UTC(),
		Films:       films,
		MinLines:    d.Request.MinLines,
		Focus:       d.Focus(),
		LineCounts:  rows,
		Characters:  nonNil(d.Characters()),
		Metrics:     out,
		Warnings:    d.Warnings(),
	}
}

func roundTo(v float64) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Writer is the report sink.
type Writer struct {
	dir string
	now func() time.Time
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

func (w *Writer) Name() string { return Artifact }

func (w *Writer) Render(ctx context.Context, d *pipeline.Dashboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := Write(w.dir, Build(d, w.now()))
	if err != nil {
		return err
	}
	d.AddArtifact(Artifact, path)
	logger.Infof("Report written to %s", path)
	return nil
}

// Write stores r as <dir>/report.json and returns the path.
func Write(dir string, r Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	path := filepath.Join(dir, File)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
