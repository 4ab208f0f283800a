package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noteapp-chat/server/internal/agent/model"
)

func TestClassifyScores(t *testing.T) {
	c := NewRuleClassifier()

	scores := c.Score("search my notes")
	// QUERY_NOTES: notes, search (words) + search (pattern)
	assert.InDelta(t, 1.1, scores[model.IntentQueryNotes], 1e-9)
	// SEARCH_REQUEST: search (word)
	assert.InDelta(t, 0.3, scores[model.IntentSearchRequest], 1e-9)

	intent, conf := c.Classify("search my notes")
	assert.Equal(t, model.IntentQueryNotes, intent)
	assert.Equal(t, 1.0, conf)
}

func TestClassifyNoSignalIsCasual(t *testing.T) {
	intent, conf := NewRuleClassifier().Classify("the weather is nice")
	assert.Equal(t, model.IntentCasual, intent)
	assert.Equal(t, 0.5, conf)
}

func TestClassifyTieBreaksByPriority(t *testing.T) {
	c := NewRuleClassifier()
	// "update" only scores ACTION.
	intent, _ := c.Classify("update")
	assert.Equal(t, model.IntentAction, intent)

	// "add" hits CREATE_NOTE and ACTION with 0.3 each; CREATE_NOTE is earlier.
	scores := c.Score("add")
	assert.Equal(t, scores[model.IntentCreateNote], scores[model.IntentAction])
	intent, conf := c.Classify("add")
	assert.Equal(t, model.IntentCreateNote, intent)
	assert.InDelta(t, 0.3, conf, 1e-9)
}

func TestClassifyCreateNote(t *testing.T) {
	intent, _ := NewRuleClassifier().Classify("Can you create a note called Groceries: milk and eggs")
	assert.Equal(t, model.IntentCreateNote, intent)
}

func TestClassifyEmotional(t *testing.T) {
	intent, _ := NewRuleClassifier().Classify("I feel so overwhelmed today")
	assert.Equal(t, model.IntentEmotional, intent)
}
