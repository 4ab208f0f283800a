package analyzer

import (
	"regexp"
	"strings"

	"github.com/noteapp-chat/server/internal/agent/model"
)

var (
	positivePatterns = compileAll(
		`\b(?:good|great|awesome|excellent|amazing|love|wonderful|happy|pleased|glad|thank|thanks)\b`,
		`(?::\)|😊|👍|❤️|🙂|😀|😃)`,
	)
	negativePatterns = compileAll(
		`\b(?:bad|awful|terrible|horrible|hate|dislike|angry|upset|sad|sorry|problem|issue)\b`,
		`(?::\(|😢|👎|😠|😡|😞|😟)`,
	)
)

// DetectSentiment returns QUESTION whenever a question form is present,
// otherwise compares positive and negative pattern hits. Ties are NEUTRAL.
func DetectSentiment(text string) model.Sentiment {
	lower := strings.ToLower(strings.TrimSpace(text))
	if matchAny(questionPatterns, lower) {
		return model.SentimentQuestion
	}

	positive := countMatches(positivePatterns, lower)
	negative := countMatches(negativePatterns, lower)
	switch {
	case positive > negative:
		return model.SentimentPositive
	case negative > positive:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			n++
		}
	}
	return n
}
