package config

import "strings"

const (
	defaultAppEnv            = "dev"
	defaultAppLogLevel       = "info"
	defaultTranscriptsDir    = "data"
	defaultFilePattern       = "Episode%d.txt"
	defaultOnMalformed       = "fail"
	defaultCatalogOffset     = 4
	defaultMinLines          = 10
	defaultSentimentEngine   = "vader"
	defaultOutputDir         = "out"
	defaultOutputWidth       = 800
	defaultOutputHeight      = 750
	defaultWordCloudLimit    = 200
	defaultSnapshotTimeout   = 20
	defaultSkipHeader        = true
	defaultOutputReport      = true
	defaultSelectionFilmName = "A New Hope"
)

// Default returns a config with every default applied, as if loaded from an
// empty file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults(make(keySet))
	return &cfg
}

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Transcripts.applyDefaults(keys)
	c.Catalog.applyDefaults(keys)
	c.Selection.applyDefaults(keys)
	c.Sentiment.applyDefaults(keys)
	c.Output.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
	)
}

func (t *TranscriptsConfig) applyDefaults(keys keySet) {
	if t == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("transcripts.dir", &t.Dir, defaultTranscriptsDir),
		stringFieldDefault("transcripts.file_pattern", &t.FilePattern, defaultFilePattern),
		stringFieldDefault("transcripts.on_malformed", &t.OnMalformed, defaultOnMalformed),
		boolFieldDefault("transcripts.skip_header", &t.SkipHeader, defaultSkipHeader),
	)
	t.OnMalformed = strings.ToLower(strings.TrimSpace(t.OnMalformed))
}

func (c *CatalogConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "catalog.offset",
			need:  func() bool { return c.Offset <= 0 },
			apply: func() { c.Offset = defaultCatalogOffset },
		},
	)
}

func (s *SelectionConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "selection.min_lines",
			need:  func() bool { return s.MinLines <= 0 },
			apply: func() { s.MinLines = defaultMinLines },
		},
		fieldDefault{
			key:   "selection.films",
			need:  func() bool { return len(s.Films) == 0 && strings.TrimSpace(s.Path) == "" },
			apply: func() { s.Films = []string{defaultSelectionFilmName} },
		},
	)
	s.Films = normalizeFilmList(s.Films)
	s.Focus = strings.TrimSpace(s.Focus)
}

func (s *SentimentConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("sentiment.engine", &s.Engine, defaultSentimentEngine),
	)
	s.Engine = strings.ToLower(strings.TrimSpace(s.Engine))
}

func (o *OutputConfig) applyDefaults(keys keySet) {
	if o == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("output.dir", &o.Dir, defaultOutputDir),
		boolFieldDefault("output.report", &o.Report, defaultOutputReport),
		fieldDefault{
			key:   "output.width",
			need:  func() bool { return o.Width <= 0 },
			apply: func() { o.Width = defaultOutputWidth },
		},
		fieldDefault{
			key:   "output.height",
			need:  func() bool { return o.Height <= 0 },
			apply: func() { o.Height = defaultOutputHeight },
		},
		fieldDefault{
			key:   "output.wordcloud_limit",
			need:  func() bool { return o.WordCloudLimit <= 0 },
			apply: func() { o.WordCloudLimit = defaultWordCloudLimit },
		},
		fieldDefault{
			key:   "output.snapshot_timeout_seconds",
			need:  func() bool { return o.SnapshotSecs <= 0 },
			apply: func() { o.SnapshotSecs = defaultSnapshotTimeout },
		},
	)
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

// normalizeFilmList trims labels and drops blanks and case-insensitive
// duplicates, keeping first occurrence order.
func normalizeFilmList(films []string) []string {
	if len(films) == 0 {
		return nil
	}
	out := make([]string, 0, len(films))
	seen := make(map[string]bool, len(films))
	for _, f := range films {
		f = strings.TrimSpace(f)
		key := strings.ToLower(f)
		if f == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
