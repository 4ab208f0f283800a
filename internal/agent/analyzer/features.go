package analyzer

import (
	"regexp"
	"strings"

	"github.com/noteapp-chat/server/internal/agent/model"
)

var (
	questionPatterns = compileAll(
		`\b(?:who|what|where|when|why|how)\b`,
		`\?$`,
		`\b(?:can|could|would|should|do|does|is|are|was|were)\s+(?:i|you|we|they|he|she|it)\b`,
	)
	commandPatterns = compileAll(
		`^(?:please\s+)?(?:show|find|tell|help|get|create|update|delete)`,
		`^(?:i\s+(?:want|need)\s+you\s+to)`,
		`^(?:could|would|can)\s+you\s+(?:please\s+)?(?:show|find|tell|help)`,
	)
	negationPatterns = compileAll(
		`\b(?:not|no|never|none|nobody|nothing|nowhere|isn't|aren't|wasn't|weren't|haven't|hasn't|hadn't|don't|doesn't|didn't|won't|wouldn't|can't|cannot|couldn't|shouldn't)\b`,
	)
	notesSubjectPatterns = compileAll(
		`\b(?:note|notes|transcript|transcripts)\b`,
	)
	selfSubjectPatterns = compileAll(
		`\b(?:i|me|my|mine|we|us|our|ours)\b`,
	)
	emotionPatterns = compileAll(
		`\b(?:happy|sad|angry|excited|worried|concerned|love|hate|like|dislike)\b`,
		`(?::\)|:\(|😊|😢|😠|😡|❤️|👍|👎)`,
	)
)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractSyntax detects question, command, negation, subject and emotion
// markers. Each flag is independent of the others.
func ExtractSyntax(text string) model.SyntaxFeatures {
	lower := strings.ToLower(strings.TrimSpace(text))
	return model.SyntaxFeatures{
		IsQuestion:       matchAny(questionPatterns, lower),
		IsCommand:        matchAny(commandPatterns, lower),
		HasNegation:      matchAny(negationPatterns, lower),
		AboutNotes:       matchAny(notesSubjectPatterns, lower),
		AboutSelf:        matchAny(selfSubjectPatterns, lower),
		ExpressesEmotion: matchAny(emotionPatterns, lower),
	}
}
