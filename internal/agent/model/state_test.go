package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestApplyMergeRules(t *testing.T) {
	s := NewTurnState("turn-1", "thread-1")
	s.Apply(Update{
		Messages:       []*schema.Message{schema.UserMessage("hi")},
		FetchedContent: map[string]string{"note_1": "first"},
		SearchQuery:    Set("groceries"),
		FetchTarget:    Set(&FetchTarget{ID: 2, Type: ItemNote}),
		ErrorMessage:   Set("boom"),
	})
	s.Apply(Update{
		Messages:       []*schema.Message{schema.AssistantMessage("hello", nil)},
		FetchedContent: map[string]string{"note_1": "overwritten?", "transcript_3": "second"},
		FetchTarget:    Set[*FetchTarget](nil),
		ErrorMessage:   Set(""),
	})

	assert.Len(t, s.Messages, 2)
	assert.Equal(t, "hi", s.Messages[0].Content)
	assert.Equal(t, "first", s.FetchedContent["note_1"])
	assert.Equal(t, "second", s.FetchedContent["transcript_3"])
	assert.Equal(t, "groceries", s.SearchQuery)
	assert.Nil(t, s.FetchTarget)
	assert.Empty(t, s.ErrorMessage)
}

func TestApplyZeroUpdateIsNoop(t *testing.T) {
	s := NewTurnState("turn-1", "thread-1")
	s.SearchQuery = "q"
	s.IterationCount = 3
	s.SearchResults = []SearchResult{{ID: 1, Type: ItemNote, Relevance: 0.5}}

	s.Apply(Update{})

	assert.Equal(t, "q", s.SearchQuery)
	assert.Equal(t, 3, s.IterationCount)
	assert.Len(t, s.SearchResults, 1)
}

func TestCompositeKeyAndItemType(t *testing.T) {
	assert.Equal(t, "note_42", CompositeKey(ItemNote, 42))
	typ, ok := ParseItemType("Transcript")
	assert.True(t, ok)
	assert.Equal(t, ItemTranscript, typ)
	assert.Equal(t, "Transcript", typ.Label())
	_, ok = ParseItemType("folder")
	assert.False(t, ok)
}

func TestUsageMeter(t *testing.T) {
	m := &UsageMeter{}
	m.Record("gemini-2.5-flash", &schema.Message{ResponseMeta: &schema.ResponseMeta{
		Usage: &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000, TotalTokens: 2_000_000},
	}})
	m.Record("gemini-2.5-flash", schema.AssistantMessage("no usage", nil))

	calls, prompt, completion, usd := m.Snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1_000_000, prompt)
	assert.Equal(t, 1_000_000, completion)
	assert.InDelta(t, 2.80, usd, 1e-9)
}
