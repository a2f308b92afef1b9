package config

import "strings"

// Config is the root configuration.
type Config struct {
	App         AppConfig         `toml:"app"`
	Transcripts TranscriptsConfig `toml:"transcripts"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Selection   SelectionConfig   `toml:"selection"`
	Sentiment   SentimentConfig   `toml:"sentiment"`
	Output      OutputConfig      `toml:"output"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
}

// TranscriptsConfig locates and parses transcript files.
type TranscriptsConfig struct {
	Dir         string `toml:"dir"`
	FilePattern string `toml:"file_pattern"` // fmt pattern taking the numeric film id
	SkipHeader  bool   `toml:"skip_header"`
	OnMalformed string `toml:"on_malformed"` // "fail" | "skip"
}

type CatalogConfig struct {
	Path   string `toml:"path"`
	Offset int    `toml:"offset"`
}

// SelectionConfig is the default selection. When Path is set the selection
// file takes over and is watched for changes.
type SelectionConfig struct {
	Path     string   `toml:"path"`
	Films    []string `toml:"films"`
	MinLines int      `toml:"min_lines"`
	Focus    string   `toml:"focus"`
}

type SentimentConfig struct {
	Engine string `toml:"engine"` // "vader" | "neutral"
}

type OutputConfig struct {
	Dir            string `toml:"dir"`
	Report         bool   `toml:"report"`
	PNG            bool   `toml:"png"`
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	WordCloudLimit int    `toml:"wordcloud_limit"`
	SnapshotSecs   int    `toml:"snapshot_timeout_seconds"`
}

// keySet tracks the config paths explicitly set in a file.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}
