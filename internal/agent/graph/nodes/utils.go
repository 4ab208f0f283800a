package nodes

import (
	"errors"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/elliotchance/pie/v2"

	"github.com/noteapp-chat/server/internal/agent/model"
	errx "github.com/noteapp-chat/server/internal/core/error"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThink removes <think>...</think> reasoning blocks.
func StripThink(s string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(s, ""))
}

// rankByRelevance keeps results at or above floor, sorted by descending
// relevance. Ties keep their original order.
func rankByRelevance(results []model.SearchResult, floor float64) []model.SearchResult {
	kept := pie.Filter(results, func(r model.SearchResult) bool {
		return r.Relevance >= floor
	})
	return pie.SortStableUsing(kept, func(a, b model.SearchResult) bool {
		return a.Relevance > b.Relevance
	})
}

// NextFetchTarget returns the most relevant result at or above floor whose
// key was not fetched yet, or nil.
func NextFetchTarget(results []model.SearchResult, fetched map[string]string, floor float64) *model.FetchTarget {
	ranked := rankByRelevance(results, floor)
	i := pie.FindFirstUsing(ranked, func(r model.SearchResult) bool {
		_, done := fetched[r.Key()]
		return r.Type != "" && !done
	})
	if i < 0 {
		return nil
	}
	return &model.FetchTarget{ID: ranked[i].ID, Type: ranked[i].Type}
}

// conversational keeps user messages and assistant messages with text,
// dropping tool traffic.
func conversational(msgs []*schema.Message) []*schema.Message {
	return pie.Filter(msgs, func(m *schema.Message) bool {
		if m == nil {
			return false
		}
		switch m.Role {
		case schema.User:
			return true
		case schema.Assistant:
			return len(m.ToolCalls) == 0 && strings.TrimSpace(m.Content) != ""
		}
		return false
	})
}

// lastN returns at most n trailing messages.
func lastN(msgs []*schema.Message, n int) []*schema.Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

func isEmptyCompletion(err error) bool {
	return errors.Is(err, errx.ErrEmptyCompletion)
}
