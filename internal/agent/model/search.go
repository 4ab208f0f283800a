package model

import (
	"fmt"
	"strings"
)

// ItemType is the kind of item stored in the notes backend.
type ItemType string

const (
	ItemNote       ItemType = "note"
	ItemTranscript ItemType = "transcript"
)

// ParseItemType lowercases and checks the raw type token.
func ParseItemType(s string) (ItemType, bool) {
	switch ItemType(strings.ToLower(strings.TrimSpace(s))) {
	case ItemNote:
		return ItemNote, true
	case ItemTranscript:
		return ItemTranscript, true
	}
	return "", false
}

// Label is the capitalized form used in tool output ("Note", "Transcript").
func (t ItemType) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// CompositeKey is the dedup key "<type>_<id>" of fetched content.
func CompositeKey(t ItemType, id int) string {
	return fmt.Sprintf("%s_%d", t, id)
}

// SearchResult is one parsed line of search tool output.
// Relevance is signed and not clamped; negative means weak or unrelated.
type SearchResult struct {
	ID         int      `json:"id"`
	Type       ItemType `json:"type"`
	Title      string   `json:"title"`
	Relevance  float64  `json:"relevance"`
	TitleMatch bool     `json:"title_match,omitempty"`
}

func (r SearchResult) Key() string {
	return CompositeKey(r.Type, r.ID)
}

// FetchTarget names the next item to fetch. A nil *FetchTarget means unset,
// so id and type are always set or unset together.
type FetchTarget struct {
	ID   int      `json:"id"`
	Type ItemType `json:"type"`
}

func (t FetchTarget) Key() string {
	return CompositeKey(t.Type, t.ID)
}
