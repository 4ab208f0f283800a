package conversations

import (
	"slices"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/elliotchance/pie/v2"

	"github.com/noteapp-chat/server/internal/agent/analyzer"
)

const (
	ThemeNotes    = "notes"
	ThemeTask     = "task"
	ThemeQuestion = "question"
	ThemeError    = "error"
	ThemeSchedule = "schedule"
	ThemeCode     = "code"
)

// themeOrder fixes the order themes are reported in.
var themeOrder = []string{ThemeNotes, ThemeTask, ThemeQuestion, ThemeError, ThemeSchedule, ThemeCode}

var themeKeywords = map[string][]string{
	ThemeNotes:    {"note", "notes", "transcript", "transcripts", "meeting", "recording", "summary"},
	ThemeTask:     {"create", "update", "delete", "modify", "add", "remove", "change", "fix", "write"},
	ThemeQuestion: {"can", "could", "would", "should"},
	ThemeError:    {"error", "exception", "failed", "bug", "issue", "problem", "wrong"},
	ThemeSchedule: {"today", "tomorrow", "yesterday", "week", "deadline", "monday", "friday"},
	ThemeCode:     {"function", "class", "method", "variable", "import", "api", "json"},
}

var taskIndicators = []string{
	"create", "update", "delete", "modify", "implement",
	"add", "remove", "change", "fix", "improve",
}

// Retention weights; higher survives trimming longer.
const (
	weightSystem    = 1.0
	weightTask      = 0.9
	weightCode      = 0.85
	weightUser      = 0.8
	weightAssistant = 0.7
)

// ExtractThemes reports which themes text touches, in a stable order.
func ExtractThemes(text string) []string {
	words := analyzer.ExtractKeywords(text)
	lower := strings.ToLower(text)
	return pie.Filter(themeOrder, func(theme string) bool {
		if theme == ThemeQuestion && strings.Contains(lower, "?") {
			return true
		}
		if theme == ThemeCode && strings.Contains(text, "```") {
			return true
		}
		return pie.Any(themeKeywords[theme], func(kw string) bool {
			return slices.Contains(words, kw)
		})
	})
}

// themesOf unions the themes of every message.
func themesOf(msgs []*schema.Message) []string {
	seen := map[string]bool{}
	for _, m := range msgs {
		for _, t := range ExtractThemes(m.Content) {
			seen[t] = true
		}
	}
	return pie.Filter(themeOrder, func(t string) bool { return seen[t] })
}

// IsTaskRelated reports whether text asks for something to be done.
func IsTaskRelated(text string) bool {
	lower := strings.ToLower(text)
	if pie.Any(taskIndicators, func(ind string) bool { return strings.Contains(lower, ind) }) {
		return true
	}
	polite := strings.Contains(lower, "can you") || strings.Contains(lower, "could you")
	return polite && (strings.Contains(lower, "help") || strings.Contains(lower, "please") || strings.Contains(lower, "need"))
}

func retentionWeight(m *schema.Message) float64 {
	switch {
	case m.Role == schema.System:
		return weightSystem
	case IsTaskRelated(m.Content):
		return weightTask
	case strings.Contains(m.Content, "```"):
		return weightCode
	case m.Role == schema.User:
		return weightUser
	default:
		return weightAssistant
	}
}
