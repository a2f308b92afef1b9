package transcript

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"whosaid/internal/logger"
)

// MalformedPolicy decides what happens to a record that has fewer than three
// fields or broken quoting.
type MalformedPolicy string

const (
	PolicyFail MalformedPolicy = "fail"
	PolicySkip MalformedPolicy = "skip"
)

const maxLineBytes = 1 << 20

// Options controls record parsing. The zero value fails on malformed records
// and treats the first record as data. SkipHeader drops the first non-blank
// line without looking at it.
type Options struct {
	SkipHeader  bool
	OnMalformed MalformedPolicy
}

// Parser turns `<index> <speaker> <dialogue...>` records into DialogueLines.
type Parser struct {
	opts Options
}

func NewParser(opts Options) *Parser {
	if opts.OnMalformed == "" {
		opts.OnMalformed = PolicyFail
	}
	return &Parser{opts: opts}
}

// Result is one parsed transcript. Skipped holds a note for every record the
// skip policy dropped, in file order.
type Result struct {
	Lines   []DialogueLine
	Skipped []string
}

// Load parses path with the default options.
func Load(path string) ([]DialogueLine, error) {
	res, err := NewParser(Options{}).ParseFile(path, "")
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// ParseFile reads one transcript. label is stamped on every line; an empty
// label leaves Film blank.
func (p *Parser) ParseFile(path, label string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	return p.parse(f, path, label)
}

// Parse reads records from r. name only appears in errors and logs.
func (p *Parser) Parse(r io.Reader, name, label string) (Result, error) {
	return p.parse(r, name, label)
}

// parse handles one physical line per record. Quotes never carry a field
// over a newline.
func (p *Parser) parse(r io.Reader, name, label string) (Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	res := Result{Lines: make([]DialogueLine, 0, 256)}
	first := true
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if first {
			first = false
			if p.opts.SkipHeader {
				continue
			}
		}

		rec, err := splitRecord(raw)
		var line DialogueLine
		if err == nil {
			var ok bool
			if line, ok = buildLine(rec, label); !ok {
				err = fmt.Errorf("%w (got %d fields)", ErrMalformedRecord, len(rec))
			}
		}
		if err != nil {
			if p.opts.OnMalformed != PolicySkip {
				return Result{}, &LoadError{Path: name, Line: lineNo, Err: err}
			}
			note := fmt.Sprintf("transcript %s line %d skipped: %v", name, lineNo, err)
			logger.Warnf("%s", note)
			res.Skipped = append(res.Skipped, note)
			continue
		}
		res.Lines = append(res.Lines, line)
	}
	if err := sc.Err(); err != nil {
		return Result{}, &LoadError{Path: name, Line: lineNo + 1, Err: err}
	}
	if n := len(res.Skipped); n > 0 {
		logger.Warnf("transcript %s: %d malformed records skipped, %d kept", name, n, len(res.Lines))
	}
	return res, nil
}

// splitRecord tokenizes a single line on spaces. A quoted field must close
// on the same line and be followed by a space or the end of the line.
func splitRecord(line string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = ' '
	cr.FieldsPerRecord = -1
	rec, err := cr.Read()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w at column %d: %v", ErrBadQuote, perr.Column, perr.Err)
		}
		return nil, err
	}
	return rec, nil
}

func buildLine(rec []string, label string) (DialogueLine, bool) {
	if len(rec) < 3 {
		return DialogueLine{}, false
	}
	speaker := strings.TrimSpace(rec[1])
	text := strings.Join(rec[2:], " ")
	if speaker == "" || strings.TrimSpace(text) == "" {
		return DialogueLine{}, false
	}
	return DialogueLine{
		Film:    label,
		Index:   strings.TrimSpace(rec[0]),
		Speaker: speaker,
		Text:    text,
	}, true
}
