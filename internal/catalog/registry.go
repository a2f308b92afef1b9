package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"whosaid/internal/logger"
	"whosaid/internal/transcript"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFilm is returned when a selection names a film the catalog lacks.
var ErrUnknownFilm = errors.New("unknown film")

const (
	DefaultOffset      = 4
	DefaultFilePattern = "Episode%d.txt"
)

// Entry is one film in the catalog file. ID and File are optional: the id
// defaults to offset + position and the file to the configured pattern.
type Entry struct {
	ID    int    `yaml:"id" json:"id,omitempty"`
	Label string `yaml:"label" json:"label"`
	File  string `yaml:"file" json:"file,omitempty"`
}

// FileConfig maps the catalog YAML.
type FileConfig struct {
	Offset *int    `yaml:"offset" json:"offset,omitempty"`
	Films  []Entry `yaml:"films" json:"films"`
}

// Options locate transcript files on disk.
type Options struct {
	Dir         string
	FilePattern string
	Offset      int
}

// Registry resolves film labels to transcript files, in catalog order.
type Registry struct {
	films   []transcript.Film
	byLabel map[string]int
	byID    map[int]int
}

// DefaultFilms is the original trilogy.
var DefaultFilms = []Entry{
	{Label: "A New Hope"},
	{Label: "The Empire Strikes Back"},
	{Label: "Return of the Jedi"},
}

// Load reads and validates a catalog file. An empty path yields DefaultFilms.
func Load(path string, opts Options) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return New(FileConfig{Films: DefaultFilms}, opts)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read film catalog failed: %w", err)
	}
	cfg, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("parse film catalog %s failed: %w", filepath.Base(path), err)
	}
	reg, err := New(cfg, opts)
	if err != nil {
		return nil, err
	}
	logger.Infof("Film catalog loaded %d films from %s", len(reg.films), filepath.Base(path))
	return reg, nil
}

func decode(raw []byte) (FileConfig, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return FileConfig{}, err
	}
	if err := validateDocument(doc); err != nil {
		return FileConfig{}, err
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// New builds a registry from an already decoded catalog.
func New(cfg FileConfig, opts Options) (*Registry, error) {
	if len(cfg.Films) == 0 {
		return nil, fmt.Errorf("film catalog is empty")
	}
	offset := opts.Offset
	if cfg.Offset != nil {
		offset = *cfg.Offset
	}
	pattern := strings.TrimSpace(opts.FilePattern)
	if pattern == "" {
		pattern = DefaultFilePattern
	}
	r := &Registry{
		films:   make([]transcript.Film, 0, len(cfg.Films)),
		byLabel: make(map[string]int, len(cfg.Films)),
		byID:    make(map[int]int, len(cfg.Films)),
	}
	for i, entry := range cfg.Films {
		label := strings.TrimSpace(entry.Label)
		if label == "" {
			return nil, fmt.Errorf("film catalog entry %d has no label", i)
		}
		id := entry.ID
		if id <= 0 {
			id = offset + i
		}
		file := strings.TrimSpace(entry.File)
		if file == "" {
			file = fmt.Sprintf(pattern, id)
		}
		if !filepath.IsAbs(file) && opts.Dir != "" {
			file = filepath.Join(opts.Dir, file)
		}
		key := normalizeLabel(label)
		if _, dup := r.byLabel[key]; dup {
			return nil, fmt.Errorf("film catalog lists %q twice", label)
		}
		if _, dup := r.byID[id]; dup {
			return nil, fmt.Errorf("film catalog reuses id %d", id)
		}
		r.byLabel[key] = len(r.films)
		r.byID[id] = len(r.films)
		r.films = append(r.films, transcript.Film{ID: id, Label: label, Path: file})
	}
	return r, nil
}

// Films returns the catalog in declaration order.
func (r *Registry) Films() []transcript.Film {
	return append([]transcript.Film(nil), r.films...)
}

func (r *Registry) Labels() []string {
	out := make([]string, len(r.films))
	for i, f := range r.films {
		out[i] = f.Label
	}
	return out
}

// Lookup accepts a label (case-insensitive) or a numeric film id.
func (r *Registry) Lookup(name string) (transcript.Film, bool) {
	if idx, ok := r.byLabel[normalizeLabel(name)]; ok {
		return r.films[idx], true
	}
	if id, err := strconv.Atoi(strings.TrimSpace(name)); err == nil {
		if idx, ok := r.byID[id]; ok {
			return r.films[idx], true
		}
	}
	return transcript.Film{}, false
}

// Resolve maps a selection to films, keeping selection order.
func (r *Registry) Resolve(names []string) ([]transcript.Film, error) {
	out := make([]transcript.Film, 0, len(names))
	for _, name := range names {
		film, ok := r.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownFilm, name, strings.Join(r.Labels(), ", "))
		}
		out = append(out, film)
	}
	return out, nil
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

func validateDocument(doc any) error {
	// Round trip through JSON so the validator sees JSON-typed values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return err
	}
	return catalogSchema().Validate(value)
}
