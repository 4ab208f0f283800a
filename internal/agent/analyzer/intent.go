package analyzer

import (
	"strings"

	"github.com/noteapp-chat/server/internal/agent/model"
)

const (
	wordWeight    = 0.3
	patternWeight = 0.5
)

// IntentClassifier scores an utterance against the intent categories.
// The rule-based implementation can be swapped for a model-backed one
// without touching the turn graph.
type IntentClassifier interface {
	Classify(text string) (model.Intent, float64)
}

type triggers struct {
	words    []string
	patterns []string
}

// RuleClassifier matches trigger words and phrases as substrings of the
// lowercased utterance.
type RuleClassifier struct {
	triggers map[model.Intent]triggers
	priority []model.Intent
}

// NewRuleClassifier builds the default trigger table. Ties resolve by
// model.IntentPriority.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{
		priority: model.IntentPriority,
		triggers: map[model.Intent]triggers{
			model.IntentQueryNotes: {
				words:    []string{"notes", "transcripts", "written", "saved", "recorded", "find", "search", "look"},
				patterns: []string{"do i have", "where is", "find", "search", "look for", "can you find"},
			},
			model.IntentSearchRequest: {
				words:    []string{"search", "find", "lookup", "locate", "get", "show", "display"},
				patterns: []string{"where is", "how do i", "how to", "can you find", "do you know"},
			},
			model.IntentCreateNote: {
				words: []string{"create", "add", "make", "new note", "save", "write down", "document"},
				patterns: []string{
					"create a note", "add a note", "make a new note", "save this as a note",
					"can you create a note", "i want to add a note", "let's make a note",
				},
			},
			model.IntentOpinionNotes: {
				words:    []string{"like", "hate", "prefer", "think", "feel", "opinion"},
				patterns: []string{"what do you think", "how do you feel", "do you like"},
			},
			model.IntentEmotional: {
				words:    []string{"stressed", "anxious", "lonely", "overwhelmed", "exhausted", "depressed", "upset"},
				patterns: []string{"i feel", "i'm feeling", "i am feeling", "having a hard time", "bad day"},
			},
			model.IntentAction: {
				words:    []string{"create", "make", "add", "update", "delete", "remove", "change"},
				patterns: []string{"can you", "please", "would you", "i want you to", "i need you to"},
			},
			model.IntentMeta: {
				words:    []string{"help", "tutorial", "guide", "documentation", "manual", "instructions"},
				patterns: []string{"how do i", "what is", "explain", "tell me about"},
			},
		},
	}
}

// Score returns the raw score of every intent, for diagnostics and tests.
func (c *RuleClassifier) Score(text string) map[model.Intent]float64 {
	lower := strings.ToLower(text)
	scores := make(map[model.Intent]float64, len(c.priority))
	for _, intent := range c.priority {
		t := c.triggers[intent]
		score := 0.0
		for _, w := range t.words {
			if strings.Contains(lower, w) {
				score += wordWeight
			}
		}
		for _, p := range t.patterns {
			if strings.Contains(lower, p) {
				score += patternWeight
			}
		}
		scores[intent] = score
	}
	return scores
}

// Classify picks the highest scoring intent, first in priority order on ties.
// With no signal at all it returns CASUAL at 0.5.
func (c *RuleClassifier) Classify(text string) (model.Intent, float64) {
	scores := c.Score(text)
	best, bestScore := model.IntentCasual, 0.0
	for _, intent := range c.priority {
		if scores[intent] > bestScore {
			best, bestScore = intent, scores[intent]
		}
	}
	if bestScore == 0 {
		return model.IntentCasual, 0.5
	}
	return best, min(bestScore, 1.0)
}
