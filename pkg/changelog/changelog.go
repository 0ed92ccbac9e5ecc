// Package changelog extracts per-release metadata from changelog documents.
package changelog

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ajxudir/updatecheck/pkg/version"
)

// DefaultMaxSize is the largest document MarkdownParser accepts when no
// explicit limit is set.
const DefaultMaxSize = 4 * 1024 * 1024

// Entry is the metadata of one release found in a changelog.
//
// Fields:
//   - Version: The version as written in the heading
//   - Critical: Whether the heading carries a [CRITICAL] marker
//   - Date: The release date, or nil when absent or unparsable
//   - Notes: Trimmed Markdown body of the section
type Entry struct {
	Version  string
	Critical bool
	Date     *time.Time
	Notes    string
}

// Parser turns a raw changelog into entries keyed by normalized version.
// Only releases newer than lowerBound are returned.
type Parser interface {
	Parse(raw string, lowerBound version.Version) (map[string]Entry, error)
}

var (
	headingPattern  = regexp.MustCompile(`^##\s+(.+?)\s*$`)
	criticalPattern = regexp.MustCompile(`(?i)\s*\[critical\]\s*`)
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
}

// MarkdownParser parses "Keep a Changelog" style documents.
//
// A release section starts with a level-two heading such as:
//
//	## 3.1.34 - 2019-06-25
//	## [3.1.34] - 2019-06-25 [CRITICAL]
//	## Craft CMS 3.1.34
//
// Everything up to the next level-two heading is the section's notes.
// Sections whose version is unparsable (e.g. "Unreleased") or not newer
// than the lower bound are skipped, so the document need not be sorted.
type MarkdownParser struct {
	// MaxSize limits the document size in bytes; zero means DefaultMaxSize.
	MaxSize int
}

// NewMarkdownParser returns a parser with the default size limit.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

// Parse implements Parser.
//
// Parameters:
//   - raw: The changelog document
//   - lowerBound: Releases at or below this version are skipped
//
// Returns:
//   - map[string]Entry: Entries keyed by version.Normalized(), never nil
//   - error: When the document exceeds the size limit
func (p *MarkdownParser) Parse(raw string, lowerBound version.Version) (map[string]Entry, error) {
	limit := p.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	if len(raw) > limit {
		return nil, fmt.Errorf("changelog too large: %d bytes (max %d)", len(raw), limit)
	}

	entries := make(map[string]Entry)

	var (
		current *Entry
		key     string
		notes   []string
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Notes = strings.TrimSpace(strings.Join(notes, "\n"))
		if _, dup := entries[key]; !dup {
			entries[key] = *current
		}
		current = nil
		notes = nil
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	for _, line := range lines {
		if match := headingPattern.FindStringSubmatch(line); match != nil {
			flush()
			entry, ok := parseHeading(match[1])
			if !ok {
				continue
			}
			v, err := version.Parse(entry.Version)
			if err != nil || v.LessOrEqual(lowerBound) {
				continue
			}
			current = &entry
			key = v.Normalized()
			continue
		}
		if current != nil {
			notes = append(notes, line)
		}
	}
	flush()

	return entries, nil
}

// parseHeading splits heading text into its version, date and critical
// marker. It reports false when no version token is present.
func parseHeading(text string) (Entry, bool) {
	var entry Entry

	if criticalPattern.MatchString(text) {
		entry.Critical = true
		text = strings.TrimSpace(criticalPattern.ReplaceAllString(text, " "))
	}

	head, date, hasDate := strings.Cut(text, " - ")
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return Entry{}, false
	}

	token := fields[len(fields)-1]
	token = strings.TrimSuffix(strings.TrimPrefix(token, "["), "]")
	if token == "" {
		return Entry{}, false
	}
	entry.Version = token

	if hasDate {
		entry.Date = parseDate(strings.TrimSpace(date))
	}

	return entry, true
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
