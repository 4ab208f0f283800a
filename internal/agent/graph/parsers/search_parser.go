package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/noteapp-chat/server/internal/agent/model"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

// limits against pathological tool output
const (
	maxOutputLen = 256 * 1024
	maxResults   = 200
	maxSnippet   = 120
)

// Matches one line of search tool output:
//
//	- Note (ID: 42): Q3 Plan [Relevance: 0.73] [TITLE MATCH]
var searchLinePattern = regexp.MustCompile(
	`^-\s*(Note|Transcript)\s*\(ID:\s*(\d+)\):\s*(.*?)\s*\[Relevance:\s*(-?\d+\.\d+)\]`,
)

const titleMatchMarker = "[TITLE MATCH]"

// SearchParseStats reports what was skipped while parsing.
type SearchParseStats struct {
	Lines     int
	Parsed    int
	Skipped   int
	Truncated bool
	Capped    bool
}

// ParseSearchResults turns search tool output into results, one per
// matching line, in output order. Lines that don't match are skipped.
// It never panics and never fails.
func ParseSearchResults(output string) (results []model.SearchResult, stats SearchParseStats) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "search_parser").Msgf("panic recovered: %v", r)
			results = []model.SearchResult{}
		}
	}()

	results = []model.SearchResult{}
	if len(output) > maxOutputLen {
		logx.Warn().
			Str("component", "search_parser").
			Int("max_len", maxOutputLen).
			Int("orig_len", len(output)).
			Msg("search output truncated due to size limit")
		output = output[:maxOutputLen]
		stats.Truncated = true
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		stats.Lines++
		if len(results) >= maxResults {
			stats.Capped = true
			break
		}

		res, err := parseSearchLine(line)
		if err != nil {
			stats.Skipped++
			logx.Debug().Str("component", "search_parser").Str("line", snippet(line)).Err(err).Msg("skipping search line")
			continue
		}
		results = append(results, res)
		stats.Parsed++
	}
	return results, stats
}

func parseSearchLine(line string) (model.SearchResult, error) {
	m := searchLinePattern.FindStringSubmatch(line)
	if m == nil {
		return model.SearchResult{}, fmt.Errorf("line does not match result grammar")
	}
	id, err := strconv.Atoi(m[2])
	if err != nil {
		return model.SearchResult{}, fmt.Errorf("id parse: %w", err)
	}
	rel, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return model.SearchResult{}, fmt.Errorf("relevance parse: %w", err)
	}
	typ, _ := model.ParseItemType(m[1])
	return model.SearchResult{
		ID:         id,
		Type:       typ,
		Title:      strings.TrimSpace(m[3]),
		Relevance:  rel,
		TitleMatch: strings.Contains(line, titleMatchMarker),
	}, nil
}

// FormatSearchResult renders r in the tool output line grammar.
func FormatSearchResult(r model.SearchResult) string {
	line := fmt.Sprintf("- %s (ID: %d): %s [Relevance: %.2f]", r.Type.Label(), r.ID, r.Title, r.Relevance)
	if r.TitleMatch {
		line += " " + titleMatchMarker
	}
	return line
}

func snippet(s string) string {
	if len(s) <= maxSnippet {
		return s
	}
	return s[:maxSnippet] + "..."
}
