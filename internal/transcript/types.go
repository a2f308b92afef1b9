package transcript

// DialogueLine is one spoken line of a film transcript. Values are treated as
// immutable once parsed; the cache hands out copies of the slice, not of the
// strings.
type DialogueLine struct {
	Film    string `json:"film"`
	Index   string `json:"index"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Film identifies a transcript on disk.
type Film struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// FilmLines pairs a film label with its lines in source order. Skipped lists
// the records dropped while parsing the film.
type FilmLines struct {
	Film    string
	Lines   []DialogueLine
	Skipped []string
}

// Set is the ordered list of selected films. Order is the caller's selection
// order and is never derived from load completion.
type Set []FilmLines

func (s Set) Films() []string {
	out := make([]string, len(s))
	for i, fl := range s {
		out[i] = fl.Film
	}
	return out
}

// Total counts lines across every film in the set.
func (s Set) Total() int {
	n := 0
	for _, fl := range s {
		n += len(fl.Lines)
	}
	return n
}

// Skipped collects the skipped-record notes of every film, in set order.
func (s Set) Skipped() []string {
	var out []string
	for _, fl := range s {
		out = append(out, fl.Skipped...)
	}
	return out
}
