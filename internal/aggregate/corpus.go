package aggregate

import (
	"strings"

	"whosaid/internal/transcript"
)

// Corpora are the two word-cloud inputs: everything said by the selected
// characters, and everything said by the focused one.
type Corpora struct {
	All            string `json:"all"`
	Focus          string `json:"focus"`
	FocusCharacter string `json:"focus_character"`
}

// BuildCorpora joins lines with a single space, films in set order then lines
// in source order. A nil characters slice admits every speaker.
func BuildCorpora(set transcript.Set, characters []string, focus string) Corpora {
	var keep map[string]struct{}
	if characters != nil {
		keep = make(map[string]struct{}, len(characters))
		for _, c := range characters {
			keep[c] = struct{}{}
		}
	}
	all := make([]string, 0, set.Total())
	var mine []string
	for _, fl := range set {
		for _, line := range fl.Lines {
			if keep != nil {
				if _, ok := keep[line.Speaker]; !ok {
					continue
				}
			}
			all = append(all, line.Text)
			if focus != "" && line.Speaker == focus {
				mine = append(mine, line.Text)
			}
		}
	}
	return Corpora{
		All:            strings.Join(all, " "),
		Focus:          strings.Join(mine, " "),
		FocusCharacter: focus,
	}
}

// ResolveFocus returns want when it is one of characters, otherwise the first
// character. ok is false only when characters is empty.
func ResolveFocus(characters []string, want string) (string, bool) {
	if len(characters) == 0 {
		return "", false
	}
	want = strings.TrimSpace(want)
	for _, c := range characters {
		if strings.EqualFold(c, want) {
			return c, true
		}
	}
	return characters[0], true
}
