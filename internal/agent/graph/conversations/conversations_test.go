package conversations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/noteapp-chat/server/internal/agent/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubSummarizer struct {
	text  string
	err   error
	calls int
	last  []*schema.Message
}

func (s *stubSummarizer) Complete(_ context.Context, _ *model.UsageMeter, msgs []*schema.Message) (string, error) {
	s.calls++
	s.last = msgs
	return s.text, s.err
}

func dialogue(n int) []*schema.Message {
	msgs := make([]*schema.Message, 0, n)
	for i := range n {
		if i%2 == 0 {
			msgs = append(msgs, schema.UserMessage(fmt.Sprintf("Question number %d. More detail here.", i)))
		} else {
			msgs = append(msgs, schema.AssistantMessage(fmt.Sprintf("Answer number %d.", i), nil))
		}
	}
	return msgs
}

func TestConvertDropsUnknownRoles(t *testing.T) {
	got := Convert([]model.HistoryMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "system", Content: "be brief"},
		{Role: "tool", Content: "raw"},
		{Role: "user", Content: "   "},
	})
	require.Len(t, got, 3)
	assert.Equal(t, schema.User, got[0].Role)
	assert.Equal(t, schema.Assistant, got[1].Role)
	assert.Equal(t, schema.System, got[2].Role)
}

func TestPrepareShortHistoryUntouched(t *testing.T) {
	sum := &stubSummarizer{text: "unused"}
	m := NewManager(model.DefaultHistoryConfig(), WordCounter{}, sum)
	msgs := dialogue(6)

	got := m.Prepare(context.Background(), nil, msgs)
	assert.Equal(t, msgs, got)
	assert.Zero(t, sum.calls)
}

func TestPrepareSummarizesOlderMessages(t *testing.T) {
	sum := &stubSummarizer{text: "The user asked many numbered questions."}
	cfg := model.HistoryConfig{MaxRecent: 4, SummaryTrigger: 6, MaxTokens: 10_000, ResponseReserve: 0}
	m := NewManager(cfg, WordCounter{}, sum)

	got := m.Prepare(context.Background(), nil, dialogue(9))
	require.Len(t, got, 5)
	assert.Equal(t, schema.System, got[0].Role)
	assert.Equal(t, summaryHeader+"The user asked many numbered questions.", got[0].Content)
	assert.Equal(t, 1, sum.calls)
	require.Len(t, sum.last, 1)
	assert.Contains(t, sum.last[0].Content, "user: Question number 0.")
}

func TestPrepareFallsBackToExtractiveSummary(t *testing.T) {
	sum := &stubSummarizer{err: errors.New("quota")}
	cfg := model.HistoryConfig{MaxRecent: 2, SummaryTrigger: 3, MaxTokens: 10_000, ResponseReserve: 0}
	m := NewManager(cfg, WordCounter{}, sum)

	got := m.Prepare(context.Background(), nil, dialogue(6))
	require.Len(t, got, 3)
	summary := got[0].Content
	assert.Contains(t, summary, "- Question number 0.")
	assert.Contains(t, summary, "- Question number 2.")
	assert.NotContains(t, summary, "More detail here")
	assert.NotContains(t, summary, "Answer number")
}

func TestPrepareWithoutSummarizer(t *testing.T) {
	cfg := model.HistoryConfig{MaxRecent: 2, SummaryTrigger: 3, MaxTokens: 10_000, ResponseReserve: 0}
	got := NewManager(cfg, WordCounter{}, nil).Prepare(context.Background(), nil, dialogue(5))
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0].Content, summaryHeader))
}

func TestTrimKeepsNewestUserMessage(t *testing.T) {
	long := strings.Repeat("word ", 300)
	msgs := []*schema.Message{
		schema.UserMessage(long),
		schema.AssistantMessage(long, nil),
		schema.UserMessage(long),
	}
	cfg := model.HistoryConfig{MaxRecent: 10, SummaryTrigger: 20, MaxTokens: 100, ResponseReserve: 50}
	got := NewManager(cfg, WordCounter{}, nil).Prepare(context.Background(), nil, msgs)
	require.Len(t, got, 1)
	assert.Same(t, msgs[2], got[0])
}

func TestTrimDropsLowWeightFirst(t *testing.T) {
	msgs := []*schema.Message{
		schema.UserMessage("please create a note about the launch plan"),
		schema.AssistantMessage("sure thing, here is a rather long chatty reply with many words in it", nil),
		schema.AssistantMessage("ok", nil),
		schema.UserMessage("thanks"),
	}
	counter := WordCounter{}
	full := countMessages(counter, msgs)
	cfg := model.HistoryConfig{MaxRecent: 10, SummaryTrigger: 20, MaxTokens: full - 1, ResponseReserve: 0}

	got := NewManager(cfg, counter, nil).Prepare(context.Background(), nil, msgs)
	assert.NotContains(t, got, msgs[1])
	assert.Contains(t, got, msgs[0])
	assert.Contains(t, got, msgs[3])
}

func TestDropLeadingAssistant(t *testing.T) {
	sys := schema.SystemMessage("summary")
	a := schema.AssistantMessage("stray", nil)
	u := schema.UserMessage("hi")
	assert.Equal(t, []*schema.Message{sys, u}, dropLeadingAssistant([]*schema.Message{sys, a, u}))
	assert.Equal(t, []*schema.Message{a}, dropLeadingAssistant([]*schema.Message{a}))
}

func TestExtractThemes(t *testing.T) {
	assert.Equal(t, []string{ThemeNotes, ThemeTask}, ExtractThemes("Create a note for the meeting"))
	assert.Equal(t, []string{ThemeQuestion, ThemeSchedule}, ExtractThemes("Is it due tomorrow?"))
	assert.Empty(t, ExtractThemes("hello there"))
}

func TestIsTaskRelated(t *testing.T) {
	assert.True(t, IsTaskRelated("Please add milk to the list"))
	assert.True(t, IsTaskRelated("could you help me out"))
	assert.False(t, IsTaskRelated("what a nice day"))
}

func TestRetentionWeight(t *testing.T) {
	assert.Equal(t, weightSystem, retentionWeight(schema.SystemMessage("x")))
	assert.Equal(t, weightTask, retentionWeight(schema.UserMessage("delete that note")))
	assert.Equal(t, weightCode, retentionWeight(schema.AssistantMessage("```go\nx := 1\n```", nil)))
	assert.Equal(t, weightUser, retentionWeight(schema.UserMessage("hello")))
	assert.Equal(t, weightAssistant, retentionWeight(schema.AssistantMessage("hello", nil)))
}

func TestWordCounter(t *testing.T) {
	assert.Equal(t, 0, WordCounter{}.Count(""))
	assert.Equal(t, 4, WordCounter{}.Count("one two three"))
}

func TestTiktokenCounter(t *testing.T) {
	c := NewTokenCounter()
	assert.Zero(t, c.Count(""))
	assert.Positive(t, c.Count("hello world"))
}

func TestLeadSentence(t *testing.T) {
	assert.Equal(t, "First one.", leadSentence("First one.  Second one."))
	assert.Equal(t, "no punctuation", leadSentence("no   punctuation"))
	assert.Len(t, []rune(leadSentence(strings.Repeat("a", 400))), maxSentenceRune+3)
}
