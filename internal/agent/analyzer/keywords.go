package analyzer

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`\b\w+\b`)

var stopWords = toSet(
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
	"has", "he", "in", "is", "it", "its", "of", "on", "that", "the",
	"to", "was", "were", "will", "with", "this", "but", "they",
	"have", "had", "what", "when", "where", "who", "which", "why", "how",
)

// domainTerms survive stop-word filtering.
var domainTerms = toSet(
	"note", "notes", "transcript", "transcripts", "search", "find",
	"create", "update", "delete", "show", "help", "system", "tag",
	"category", "folder", "organize",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// ExtractKeywords tokenizes and lowercases text, drops stop words unless
// they are domain terms, and de-duplicates keeping the first occurrence.
func ExtractKeywords(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		_, stop := stopWords[w]
		_, domain := domainTerms[w]
		if stop && !domain {
			continue
		}
		keywords = append(keywords, w)
	}
	return uniqueOrdered(keywords)
}

func uniqueOrdered(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
