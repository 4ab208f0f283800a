package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noteapp-chat/server/internal/agent/model"
)

func TestAnalyzeEmptyInput(t *testing.T) {
	a := New()
	for _, in := range []string{"", "   ", "\n\t"} {
		got := a.Analyze(in)
		assert.Equal(t, model.IntentCasual, got.Intent)
		assert.Zero(t, got.Confidence)
		assert.False(t, got.RequiresTool)
		assert.Empty(t, got.Keywords)
	}
}

func TestAnalyzeSearchUtterance(t *testing.T) {
	got := New().Analyze("Can you find my notes about the Q3 plan?")

	assert.Equal(t, model.IntentQueryNotes, got.Intent)
	assert.Equal(t, 1.0, got.Confidence)
	assert.Equal(t, model.SentimentQuestion, got.Sentiment)
	assert.True(t, got.Syntax.IsQuestion)
	assert.True(t, got.Syntax.AboutNotes)
	assert.True(t, got.RequiresTool)
	assert.Equal(t, []string{model.ToolSearchNotes, model.ToolGetContent}, got.RequiredTools)
	assert.True(t, got.RequiresContext)
	assert.Contains(t, got.Keywords, "notes")
	assert.Contains(t, got.Keywords, "q3")
}

func TestAnalyzeCasualDefaults(t *testing.T) {
	got := New().Analyze("good morning")
	assert.Equal(t, model.IntentCasual, got.Intent)
	assert.Equal(t, 0.5, got.Confidence)
	assert.Equal(t, model.SentimentPositive, got.Sentiment)
	assert.False(t, got.RequiresTool)
}

type fixedClassifier struct{}

func (fixedClassifier) Classify(string) (model.Intent, float64) { return model.IntentMeta, 0.42 }

func TestAnalyzeWithCustomClassifier(t *testing.T) {
	got := New(WithClassifier(fixedClassifier{})).Analyze("anything")
	assert.Equal(t, model.IntentMeta, got.Intent)
	assert.Equal(t, 0.42, got.Confidence)
}

func TestRequiresContext(t *testing.T) {
	notes := model.SyntaxFeatures{AboutNotes: true}
	assert.True(t, requiresContext(model.IntentSearchRequest, notes))
	assert.False(t, requiresContext(model.IntentAction, notes))
	assert.True(t, requiresContext(model.IntentAction, model.SyntaxFeatures{}))
	assert.True(t, requiresContext(model.IntentAction, model.SyntaxFeatures{AboutNotes: true, IsQuestion: true}))
}
