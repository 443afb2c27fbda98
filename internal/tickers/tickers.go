// Package tickers resolves the list of symbols to look up from either an
// inline list or a line-delimited file.
package tickers

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUsage is returned when the caller supplies no ticker source, both
// sources, or a source that resolves to nothing.
var ErrUsage = errors.New("usage error")

// Resolve returns unique, uppercased tickers in first-seen order. Exactly one
// of inline and path must be non-empty.
func Resolve(inline, path string) ([]string, error) {
	inline = strings.TrimSpace(inline)
	path = strings.TrimSpace(path)

	switch {
	case inline != "" && path != "":
		return nil, fmt.Errorf("%w: supply either a ticker list or a ticker file, not both", ErrUsage)
	case inline == "" && path == "":
		return nil, fmt.Errorf("%w: a ticker list or a ticker file is required", ErrUsage)
	}

	var raw []string
	if inline != "" {
		raw = SplitList(inline)
	} else {
		lines, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw = lines
	}

	symbols := Normalize(raw)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no tickers found", ErrUsage)
	}
	return symbols, nil
}

// SplitList splits an inline list on commas and whitespace.
func SplitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// ReadFile returns the non-blank lines of path. Lines starting with '#' are
// comments.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ticker file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ticker file: %w", err)
	}
	return lines, nil
}

// Normalize trims, uppercases and deduplicates symbols, keeping first-seen
// order and dropping blanks.
func Normalize(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
