package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteapp-chat/server/internal/agent/model"
)

func TestParseSearchResultsLineGrammar(t *testing.T) {
	results, stats := ParseSearchResults("- Note (ID: 42): Q3 Plan [Relevance: 0.73] [TITLE MATCH]")
	require.Len(t, results, 1)
	assert.Equal(t, model.SearchResult{ID: 42, Type: model.ItemNote, Title: "Q3 Plan", Relevance: 0.73, TitleMatch: true}, results[0])
	assert.Equal(t, 1, stats.Parsed)
}

func TestParseSearchResultsSkipsMalformed(t *testing.T) {
	out := strings.Join([]string{
		"Here are the relevant items I found:",
		"- Note (ID: x): bad",
		"- Transcript (ID: 7): Standup 3/4 [Relevance: -0.25]",
		"- note (ID: 8): lowercase type [Relevance: 0.50]",
		"- Note (ID: 9): no decimals [Relevance: 1]",
	}, "\n")

	results, stats := ParseSearchResults(out)
	require.Len(t, results, 1)
	assert.Equal(t, 7, results[0].ID)
	assert.Equal(t, model.ItemTranscript, results[0].Type)
	assert.Equal(t, "Standup 3/4", results[0].Title)
	assert.Equal(t, -0.25, results[0].Relevance)
	assert.False(t, results[0].TitleMatch)
	assert.Equal(t, 4, stats.Skipped)
}

func TestParseSearchResultsRequiresLeadingDash(t *testing.T) {
	out := strings.Join([]string{
		"foo - Note (ID: 1): x [Relevance: 0.5]",
		"Result: - Transcript (ID: 2): y [Relevance: 0.40]",
		"   - Note (ID: 3): indented [Relevance: 0.30]",
	}, "\n")

	results, stats := ParseSearchResults(out)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].ID)
	assert.Equal(t, 2, stats.Skipped)
}

func TestParseSearchResultsEmptyAndNoMatches(t *testing.T) {
	results, _ := ParseSearchResults("")
	assert.Empty(t, results)
	assert.NotNil(t, results)

	results, _ = ParseSearchResults("No matching notes or transcripts found.")
	assert.Empty(t, results)
}

func TestFormatSearchResultRoundTrip(t *testing.T) {
	r := model.SearchResult{ID: 3, Type: model.ItemTranscript, Title: "Kickoff", Relevance: 0.5, TitleMatch: true}
	line := FormatSearchResult(r)
	assert.Equal(t, "- Transcript (ID: 3): Kickoff [Relevance: 0.50] [TITLE MATCH]", line)

	parsed, _ := ParseSearchResults(line)
	require.Len(t, parsed, 1)
	assert.Equal(t, r, parsed[0])
}

func TestParseContent(t *testing.T) {
	item, ok := ParseContent("Note: Groceries\n\nContent:\nmilk\neggs")
	require.True(t, ok)
	assert.Equal(t, "Groceries", item.Title)
	assert.Equal(t, "milk\neggs", item.Body)

	_, ok = ParseContent("Groceries: milk, eggs")
	assert.False(t, ok)

	item, ok = ParseContent("Transcript: Standup\n\nno body marker")
	assert.False(t, ok)
	assert.Equal(t, "Standup", item.Title)
}

func TestParseCreatedID(t *testing.T) {
	id, ok := ParseCreatedID("Note created (ID: 12): Ideas")
	require.True(t, ok)
	assert.Equal(t, 12, id)

	_, ok = ParseCreatedID("Note created")
	assert.False(t, ok)
}

func TestExtractRequestedTitle(t *testing.T) {
	title, ok := ExtractRequestedTitle("give me the full text of the Groceries note")
	require.True(t, ok)
	assert.Equal(t, "groceries", title)

	title, ok = ExtractRequestedTitle(`Provide the content for "Q3 Plan" note please`)
	require.True(t, ok)
	assert.Equal(t, "q3 plan", title)

	_, ok = ExtractRequestedTitle("find my notes about dogs")
	assert.False(t, ok)
}

func TestIsContentRequest(t *testing.T) {
	assert.True(t, IsContentRequest("Show me the DETAILS OF the budget note"))
	assert.False(t, IsContentRequest("do I have notes on budget?"))
}

func TestExtractSubject(t *testing.T) {
	cases := map[string]string{
		"do i have notes on project alpha?":            "project alpha",
		"tell me about the new marketing strategy":     "the new marketing strategy",
		"can you give me a recipe for pepperoni pizza": "pepperoni pizza",
		"give me the full text of the Groceries note":  "groceries",
	}
	for in, want := range cases {
		got, ok := ExtractSubject(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ExtractSubject("hello")
	assert.False(t, ok)
}

func TestExtractNoteDraft(t *testing.T) {
	d := ExtractNoteDraft(`Create a note called "Groceries" with milk and eggs`)
	assert.Equal(t, NoteDraft{Title: "Groceries", Content: "milk and eggs"}, d)

	d = ExtractNoteDraft("add a note titled Trip ideas: Lisbon, Porto")
	assert.Equal(t, NoteDraft{Title: "Trip ideas", Content: "Lisbon, Porto"}, d)

	d = ExtractNoteDraft("make a new note named Reading list")
	assert.Equal(t, NoteDraft{Title: "Reading list"}, d)

	d = ExtractNoteDraft("save this as a note: call the dentist on Friday morning before work")
	assert.Equal(t, "call the dentist on Friday morning", d.Title)
	assert.Equal(t, "call the dentist on Friday morning before work", d.Content)

	d = ExtractNoteDraft("create a note about the offsite agenda")
	assert.Equal(t, NoteDraft{Title: "the offsite agenda", Content: "the offsite agenda"}, d)

	assert.Equal(t, NoteDraft{}, ExtractNoteDraft("create a note"))
}
