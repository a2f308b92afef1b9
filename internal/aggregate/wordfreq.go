package aggregate

import (
	"sort"
	"strings"
	"unicode"
)

// WordFreq is one word-cloud entry.
type WordFreq struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordFrequencies tokenizes text into lower-cased words of at least two
// letters, drops stopwords and numbers, and returns the most frequent first
// (ties by word). limit <= 0 keeps everything.
func WordFrequencies(text string, stopwords map[string]struct{}, limit int) []WordFreq {
	if stopwords == nil {
		stopwords = DefaultStopwords
	}
	counts := make(map[string]int)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’'
	})
	for _, tok := range tokens {
		tok = strings.Trim(tok, "'’")
		tok = strings.TrimSuffix(tok, "'s")
		tok = strings.TrimSuffix(tok, "’s")
		if len([]rune(tok)) < 2 || isNumber(tok) {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		counts[tok]++
	}
	out := make([]WordFreq, 0, len(counts))
	for w, n := range counts {
		out = append(out, WordFreq{Word: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// DefaultStopwords is the usual English word-cloud stop list.
var DefaultStopwords = makeSet(
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any",
	"are", "aren't", "as", "at", "be", "because", "been", "before", "being", "below", "between",
	"both", "but", "by", "can", "can't", "cannot", "com", "could", "couldn't", "did", "didn't",
	"do", "does", "doesn't", "doing", "don't", "down", "during", "each", "else", "ever", "few",
	"for", "from", "further", "get", "had", "hadn't", "has", "hasn't", "have", "haven't",
	"having", "he", "he'd", "he'll", "he's", "hence", "her", "here", "here's", "hers", "herself",
	"him", "himself", "his", "how", "how's", "however", "http", "i", "i'd", "i'll", "i'm", "i've",
	"if", "in", "into", "is", "isn't", "it", "it's", "its", "itself", "just", "k", "let's", "like",
	"me", "more", "most", "mustn't", "my", "myself", "no", "nor", "not", "of", "off", "on", "once",
	"only", "or", "other", "otherwise", "ought", "our", "ours", "ourselves", "out", "over", "own",
	"r", "same", "shall", "shan't", "she", "she'd", "she'll", "she's", "should", "shouldn't",
	"since", "so", "some", "such", "than", "that", "that's", "the", "their", "theirs", "them",
	"themselves", "then", "there", "there's", "therefore", "these", "they", "they'd", "they'll",
	"they're", "they've", "this", "those", "through", "to", "too", "under", "until", "up", "very",
	"was", "wasn't", "we", "we'd", "we'll", "we're", "we've", "were", "weren't", "what", "what's",
	"when", "when's", "where", "where's", "which", "while", "who", "who's", "whom", "why",
	"why's", "with", "won't", "would", "wouldn't", "www", "you", "you'd", "you'll", "you're",
	"you've", "your", "yours", "yourself", "yourselves",
)

func makeSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
