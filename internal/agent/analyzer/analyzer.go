package analyzer

import (
	"strings"

	"github.com/noteapp-chat/server/internal/agent/model"
)

// Analyzer composes the extractors and the intent classifier into one
// MessageAnalysis per utterance. It holds no mutable state.
type Analyzer struct {
	classifier IntentClassifier
}

type Option func(*Analyzer)

// WithClassifier replaces the rule-based intent classifier.
func WithClassifier(c IntentClassifier) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.classifier = c
		}
	}
}

func New(opts ...Option) *Analyzer {
	a := &Analyzer{classifier: NewRuleClassifier()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Analyze never fails. Blank input yields CASUAL with zero confidence.
func (a *Analyzer) Analyze(utterance string) model.MessageAnalysis {
	if strings.TrimSpace(utterance) == "" {
		return model.EmptyAnalysis()
	}

	syntax := ExtractSyntax(utterance)
	intent, confidence := a.classifier.Classify(utterance)
	keywords := ExtractKeywords(utterance)
	requiresTool, tools := RequiredTools(intent, keywords)

	return model.MessageAnalysis{
		Intent:          intent,
		Sentiment:       DetectSentiment(utterance),
		Confidence:      confidence,
		Syntax:          syntax,
		Keywords:        keywords,
		RequiresTool:    requiresTool,
		RequiredTools:   tools,
		RequiresContext: requiresContext(intent, syntax),
	}
}

func requiresContext(intent model.Intent, syntax model.SyntaxFeatures) bool {
	return intent.IsNotesLookup() || syntax.IsQuestion || !syntax.AboutNotes
}
