package pipeline

import (
	"slices"
	"sync"
	"time"

	"whosaid/internal/aggregate"
	"whosaid/internal/transcript"

	"github.com/google/uuid"
)

// Request is one selection to compute.
type Request struct {
	Films    []string `json:"films"`
	MinLines int      `json:"min_lines"`
	Focus    string   `json:"focus,omitempty"`
}

// Dashboard is the state of one pipeline run. Middlewares in the same stage
// may write concurrently, so every field behind mu goes through accessors.
type Dashboard struct {
	RunID     string
	Request   Request
	StartedAt time.Time

	mu         sync.RWMutex
	set        transcript.Set
	rows       []aggregate.LineCountRow
	characters []string
	focus      string
	metrics    []aggregate.CharacterMetrics
	corpora    aggregate.Corpora
	artifacts  map[string]string
	warnings   []string
}

func NewDashboard(req Request) *Dashboard {
	req.Films = slices.Clone(req.Films)
	return &Dashboard{
		RunID:     uuid.NewString(),
		Request:   req,
		StartedAt: time.Now(),
		artifacts: make(map[string]string),
	}
}

func (d *Dashboard) SetTranscripts(set transcript.Set) {
	d.mu.Lock()
	d.set = set
	d.mu.Unlock()
}

func (d *Dashboard) Transcripts() transcript.Set {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.set
}

// SetLineCounts stores the per-film rows and the threshold-filtered
// characters derived from them.
func (d *Dashboard) SetLineCounts(rows []aggregate.LineCountRow, characters []string, focus string) {
	d.mu.Lock()
	d.rows = rows
	d.characters = characters
	d.focus = focus
	d.mu.Unlock()
}

// LineCounts returns every row, before threshold trimming.
func (d *Dashboard) LineCounts() []aggregate.LineCountRow {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.rows)
}

// TrimmedLineCounts returns the rows of filtered characters only.
func (d *Dashboard) TrimmedLineCounts() []aggregate.LineCountRow {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return aggregate.TrimRows(d.rows, d.characters)
}

// Characters is the threshold-filtered set, sorted by name.
func (d *Dashboard) Characters() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.characters)
}

// Focus is the resolved focus character; empty when no character passed the
// threshold.
func (d *Dashboard) Focus() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.focus
}

func (d *Dashboard) SetMetrics(m []aggregate.CharacterMetrics) {
	d.mu.Lock()
	d.metrics = m
	d.mu.Unlock()
}

func (d *Dashboard) Metrics() []aggregate.CharacterMetrics {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.metrics)
}

func (d *Dashboard) SetCorpora(c aggregate.Corpora) {
	d.mu.Lock()
	d.corpora = c
	d.mu.Unlock()
}

func (d *Dashboard) Corpora() aggregate.Corpora {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.corpora
}

// AddArtifact records a file written by a sink.
func (d *Dashboard) AddArtifact(name, path string) {
	d.mu.Lock()
	d.artifacts[name] = path
	d.mu.Unlock()
}

func (d *Dashboard) Artifact(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.artifacts[name]
	return p, ok
}

func (d *Dashboard) Artifacts() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]string, len(d.artifacts))
	for k, v := range d.artifacts {
		out[k] = v
	}
	return out
}

func (d *Dashboard) AddWarning(msg string) {
	if msg == "" {
		return
	}
	d.mu.Lock()
	d.warnings = append(d.warnings, msg)
	d.mu.Unlock()
}

func (d *Dashboard) Warnings() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.warnings)
}
