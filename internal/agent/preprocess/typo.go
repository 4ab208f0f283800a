package preprocess

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/elliotchance/pie/v2"

	"github.com/noteapp-chat/server/internal/agent/graph/prompts"
	"github.com/noteapp-chat/server/internal/agent/model"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

// minLengthChecked is the input length above which a much shorter
// correction is treated as truncated.
const minLengthChecked = 10

var refusals = []string{"cannot fulfill", "unable to process"}

// Completer is the language model the corrector asks.
type Completer interface {
	Complete(ctx context.Context, usage *model.UsageMeter, msgs []*schema.Message) (string, error)
}

// TypoCorrector fixes spelling and grammar of a user utterance. It never
// fails: any problem yields the whitespace-normalized input.
type TypoCorrector struct {
	llm Completer
}

func NewTypoCorrector(llm Completer) *TypoCorrector {
	return &TypoCorrector{llm: llm}
}

// Correct returns the corrected text, or the normalized input when the
// model call fails or its output looks wrong.
func (c *TypoCorrector) Correct(ctx context.Context, usage *model.UsageMeter, text string) string {
	normalized := Normalize(text)
	if normalized == "" || c == nil || c.llm == nil {
		return normalized
	}
	log := logx.Ctx(ctx)

	req, err := prompts.RenderTypo(ctx, normalized)
	if err != nil {
		log.Warn().Err(err).Msg("typo prompt failed, keeping input")
		return normalized
	}
	out, err := c.llm.Complete(ctx, usage, req)
	if err != nil {
		log.Warn().Err(err).Msg("typo correction failed, keeping input")
		return normalized
	}

	corrected := Normalize(stripQuotes(strings.TrimSpace(out)))
	if reason := reject(normalized, corrected); reason != "" {
		log.Debug().Str("reason", reason).Str("output", corrected).Msg("typo correction discarded")
		return normalized
	}
	if corrected != normalized {
		log.Debug().Str("from", normalized).Str("to", corrected).Msg("typo corrected")
	}
	return corrected
}

// Normalize trims and collapses runs of whitespace to one space.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func reject(input, corrected string) string {
	switch {
	case corrected == "":
		return "empty"
	case len(input) > minLengthChecked && len(corrected)*2 < len(input):
		return "too short"
	}
	lower := strings.ToLower(corrected)
	if pie.Any(refusals, func(p string) bool { return strings.Contains(lower, p) }) {
		return "refusal"
	}
	return ""
}

// stripQuotes removes one pair of matching surrounding quotes.
func stripQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	for _, q := range []string{`"`, `'`, "`", "“"} {
		closing := q
		if q == "“" {
			closing = "”"
		}
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, closing) && len(s) >= len(q)+len(closing) {
			return strings.TrimSpace(s[len(q) : len(s)-len(closing)])
		}
	}
	return s
}
