package parsers

import (
	"regexp"
	"strings"
)

var requestedTitlePattern = regexp.MustCompile(
	`(?i)(?:content of|text of|details of|full text of|provide the content for) (?:the )?"?(.*?)"? note`,
)

var contentRequestMarkers = []string{"content of", "full text of", "details of", "provide the content for"}

// IsContentRequest reports whether the utterance asks for an item's full content.
func IsContentRequest(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, m := range contentRequestMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ExtractRequestedTitle returns the lowercased title in requests such as
// `give me the full text of the "Groceries" note`.
func ExtractRequestedTitle(utterance string) (string, bool) {
	m := requestedTitlePattern.FindStringSubmatch(utterance)
	if m == nil {
		return "", false
	}
	title := strings.ToLower(strings.TrimSpace(m[1]))
	if title == "" {
		return "", false
	}
	return title, true
}

// subject templates, tried in order
var subjectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:notes?|transcripts?)\s+(?:on|about|regarding|for|from)\s+(.+)`),
	regexp.MustCompile(`(?i)\b(?:about|regarding|concerning)\s+(.+)`),
	regexp.MustCompile(`(?i)\b(?:recipe|information|info|details)\s+(?:for|on)\s+(.+)`),
}

// ExtractSubject returns the topic of a query using the regex templates.
// ok is false when no template matched.
func ExtractSubject(utterance string) (string, bool) {
	if title, ok := ExtractRequestedTitle(utterance); ok {
		return title, true
	}
	for _, p := range subjectPatterns {
		if m := p.FindStringSubmatch(utterance); m != nil {
			if s := cleanSubject(m[1]); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func cleanSubject(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "?!. ")
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// NoteDraft is a note the user asked to create.
type NoteDraft struct {
	Title   string
	Content string
}

var (
	draftTitledWithContent = regexp.MustCompile(
		`(?i)(?:create|add|make|save|write)\s+(?:a\s+)?(?:new\s+)?note\s+(?:called|titled|named)\s+"?([^":]+?)"?\s*(?:with the content|with|saying|that says|containing|:)\s*(.+)`,
	)
	draftTitledOnly = regexp.MustCompile(
		`(?i)(?:create|add|make|save|write)\s+(?:a\s+)?(?:new\s+)?note\s+(?:called|titled|named)\s+"?([^"]+?)"?\s*[.!]?$`,
	)
	draftTopic = regexp.MustCompile(
		`(?i)(?:create|add|make|write)\s+(?:a\s+)?(?:new\s+)?note\s+(?:about|on|for)\s+(.+)`,
	)
	draftColon = regexp.MustCompile(
		`(?i)(?:note|save this as a note|write down|note down)\s*:\s*(.+)`,
	)
	draftRemember = regexp.MustCompile(
		`(?i)(?:remember|write down|note down|jot down)\s+(?:that\s+)?(.+)`,
	)
)

const draftTitleWords = 6

// ExtractNoteDraft pulls a title and content out of a create-note request.
// Missing titles are derived from the first words of the content.
func ExtractNoteDraft(utterance string) NoteDraft {
	text := strings.TrimSpace(utterance)

	var d NoteDraft
	switch {
	case draftTitledWithContent.MatchString(text):
		m := draftTitledWithContent.FindStringSubmatch(text)
		d = NoteDraft{Title: m[1], Content: m[2]}
	case draftTitledOnly.MatchString(text):
		m := draftTitledOnly.FindStringSubmatch(text)
		d = NoteDraft{Title: m[1]}
	case draftColon.MatchString(text):
		d = NoteDraft{Content: draftColon.FindStringSubmatch(text)[1]}
	case draftTopic.MatchString(text):
		d = NoteDraft{Content: draftTopic.FindStringSubmatch(text)[1]}
	case draftRemember.MatchString(text):
		d = NoteDraft{Content: draftRemember.FindStringSubmatch(text)[1]}
	}

	d.Title = cleanSubject(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	if d.Title == "" && d.Content != "" {
		d.Title = titleFromContent(d.Content)
	}
	return d
}

func titleFromContent(content string) string {
	words := strings.Fields(content)
	if len(words) > draftTitleWords {
		words = words[:draftTitleWords]
	}
	return cleanSubject(strings.Join(words, " "))
}
