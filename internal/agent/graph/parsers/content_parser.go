package parsers

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	contentTitlePattern = regexp.MustCompile(`(?i)^(?:Note|Transcript):\s*(.*?)\n`)
	contentBodyPattern  = regexp.MustCompile(`(?is)Content:\n(.*)`)
)

// FetchedItem is the title and body of a content-fetch tool reply of the form
// "<Type>: <title>\n\nContent:\n<body>".
type FetchedItem struct {
	Title string
	Body  string
}

// ParseContent extracts title and body. ok is false when either part is missing.
func ParseContent(raw string) (item FetchedItem, ok bool) {
	tm := contentTitlePattern.FindStringSubmatch(raw)
	if tm == nil {
		return FetchedItem{}, false
	}
	bm := contentBodyPattern.FindStringSubmatch(raw)
	if bm == nil {
		return FetchedItem{Title: strings.TrimSpace(tm[1])}, false
	}
	return FetchedItem{
		Title: strings.TrimSpace(tm[1]),
		Body:  strings.TrimSpace(bm[1]),
	}, true
}

var createdIDPattern = regexp.MustCompile(`\(ID:\s*(\d+)\)`)

// ParseCreatedID reads the assigned id from a create-note confirmation.
func ParseCreatedID(raw string) (int, bool) {
	m := createdIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}
