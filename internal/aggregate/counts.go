package aggregate

import (
	"sort"

	"whosaid/internal/transcript"
)

// LineCountRow is the number of lines one character speaks in one film.
type LineCountRow struct {
	Character string `json:"character"`
	Film      string `json:"film"`
	Lines     int    `json:"line_count"`
}

// CountLines groups every film's lines by speaker in a single pass. Rows are
// never merged across films. Order: films in set order; inside a film, most
// lines first, ties broken by character name.
func CountLines(set transcript.Set) []LineCountRow {
	type key struct {
		character string
		film      int
	}
	index := make(map[key]int)
	rows := make([]LineCountRow, 0)
	for filmIdx, fl := range set {
		start := len(rows)
		for _, line := range fl.Lines {
			k := key{character: line.Speaker, film: filmIdx}
			i, ok := index[k]
			if !ok {
				i = len(rows)
				index[k] = i
				rows = append(rows, LineCountRow{Character: line.Speaker, Film: fl.Film})
			}
			rows[i].Lines++
		}
		sortRows(rows[start:])
	}
	return rows
}

func sortRows(rows []LineCountRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Lines != rows[j].Lines {
			return rows[i].Lines > rows[j].Lines
		}
		return rows[i].Character < rows[j].Character
	})
}

// Totals sums line counts per character across films.
func Totals(rows []LineCountRow) map[string]int {
	totals := make(map[string]int)
	for _, r := range rows {
		totals[r.Character] += r.Lines
	}
	return totals
}

// FilterByThreshold keeps characters whose total across all films is strictly
// greater than minLines, sorted by name. Compute it once per selection and
// reuse it for every per-character view.
func FilterByThreshold(rows []LineCountRow, minLines int) []string {
	out := make([]string, 0)
	for character, total := range Totals(rows) {
		if total > minLines {
			out = append(out, character)
		}
	}
	sort.Strings(out)
	return out
}

// TrimRows keeps the rows of the given characters, preserving row order.
func TrimRows(rows []LineCountRow, characters []string) []LineCountRow {
	keep := make(map[string]struct{}, len(characters))
	for _, c := range characters {
		keep[c] = struct{}{}
	}
	out := make([]LineCountRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := keep[r.Character]; ok {
			out = append(out, r)
		}
	}
	return out
}

// RankByTotal orders characters by total lines descending, then by name.
func RankByTotal(rows []LineCountRow, characters []string) []string {
	totals := Totals(rows)
	out := append([]string(nil), characters...)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := totals[out[i]], totals[out[j]]
		if ti != tj {
			return ti > tj
		}
		return out[i] < out[j]
	})
	return out
}
