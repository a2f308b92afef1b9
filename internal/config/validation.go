package config

import (
	"fmt"
	"strings"
)

const maxMinLines = 10000

// validate runs basic sanity checks on a loaded config.
func validate(c *Config) error {
	if err := c.Transcripts.validate(); err != nil {
		return err
	}
	if err := c.Catalog.validate(); err != nil {
		return err
	}
	if err := c.Selection.validate(); err != nil {
		return err
	}
	if err := c.Sentiment.validate(); err != nil {
		return err
	}
	if err := c.Output.validate(); err != nil {
		return err
	}
	return nil
}

func (t *TranscriptsConfig) validate() error {
	if strings.TrimSpace(t.Dir) == "" {
		return fmt.Errorf("transcripts.dir cannot be empty")
	}
	if !strings.Contains(t.FilePattern, "%") {
		return fmt.Errorf("transcripts.file_pattern must contain a %%d verb for the film id")
	}
	switch t.OnMalformed {
	case "fail", "skip":
	default:
		return fmt.Errorf("transcripts.on_malformed must be fail or skip, got %q", t.OnMalformed)
	}
	return nil
}

func (c *CatalogConfig) validate() error {
	if c.Offset < 0 {
		return fmt.Errorf("catalog.offset must be >= 0")
	}
	return nil
}

// ValidateSelection checks a threshold from any source, including the
// watched selection file.
func ValidateSelection(films []string, minLines int) error {
	if minLines < 0 || minLines > maxMinLines {
		return fmt.Errorf("selection.min_lines must be within [0, %d], got %d", maxMinLines, minLines)
	}
	for _, f := range films {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("selection.films contains an empty entry")
		}
	}
	return nil
}

func (s *SelectionConfig) validate() error {
	return ValidateSelection(s.Films, s.MinLines)
}

func (s *SentimentConfig) validate() error {
	switch s.Engine {
	case "vader", "neutral":
		return nil
	default:
		return fmt.Errorf("sentiment.engine must be vader or neutral, got %q", s.Engine)
	}
}

func (o *OutputConfig) validate() error {
	if strings.TrimSpace(o.Dir) == "" {
		return fmt.Errorf("output.dir cannot be empty")
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("output.width and output.height must be > 0")
	}
	if o.WordCloudLimit < 0 {
		return fmt.Errorf("output.wordcloud_limit must be >= 0")
	}
	return nil
}
