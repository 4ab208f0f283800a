package prompts

import (
	"context"
	_ "embed"
	"strings"

	"github.com/cloudwego/eino/schema"
)

var (
	//go:embed template/subject.txt
	subjectPrompt string
	//go:embed template/casual.txt
	casualPrompt string
	//go:embed template/typo.txt
	typoPrompt string
	//go:embed template/summary.txt
	summaryPrompt string
)

// RenderSubject builds the one-message request for subject extraction.
func RenderSubject(ctx context.Context, query string) ([]*schema.Message, error) {
	msg, err := render(ctx, "subject", schema.UserMessage(subjectPrompt), map[string]any{"Query": query})
	if err != nil {
		return nil, err
	}
	return []*schema.Message{msg}, nil
}

// RenderCasualSystem renders the small-talk persona.
func RenderCasualSystem(ctx context.Context, casualStreak int) (string, error) {
	msg, err := render(ctx, "casual", schema.SystemMessage(casualPrompt), map[string]any{"CasualStreak": casualStreak})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// RenderTypo builds the correction request for text.
func RenderTypo(ctx context.Context, text string) ([]*schema.Message, error) {
	msg, err := render(ctx, "typo", schema.UserMessage(typoPrompt), map[string]any{"Text": text})
	if err != nil {
		return nil, err
	}
	return []*schema.Message{msg}, nil
}

// RenderSummary builds the history summarization request.
func RenderSummary(ctx context.Context, themes []string, transcript string) ([]*schema.Message, error) {
	msg, err := render(ctx, "summary", schema.UserMessage(summaryPrompt), map[string]any{
		"Themes":     strings.Join(themes, ", "),
		"Transcript": transcript,
	})
	if err != nil {
		return nil, err
	}
	return []*schema.Message{msg}, nil
}
