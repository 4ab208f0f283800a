package conversations

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/elliotchance/pie/v2"

	"github.com/noteapp-chat/server/internal/agent/graph/prompts"
	"github.com/noteapp-chat/server/internal/agent/model"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

const (
	summaryHeader   = "Summary of the earlier conversation:\n"
	maxSentenceRune = 160
)

var firstSentence = regexp.MustCompile(`^(.+?[.!?])(\s|$)`)

// Summarizer produces the text of a history summary.
type Summarizer interface {
	Complete(ctx context.Context, usage *model.UsageMeter, msgs []*schema.Message) (string, error)
}

// Manager shapes caller history into what fits one turn.
type Manager struct {
	cfg        model.HistoryConfig
	counter    TokenCounter
	summarizer Summarizer
}

// NewManager builds a manager. A nil summarizer always uses the extractive
// summary; a nil counter uses the shared tiktoken counter.
func NewManager(cfg model.HistoryConfig, counter TokenCounter, summarizer Summarizer) *Manager {
	if counter == nil {
		counter = NewTokenCounter()
	}
	return &Manager{cfg: cfg, counter: counter, summarizer: summarizer}
}

// Convert maps role-tagged history to messages. Unknown roles and blank
// entries are dropped.
func Convert(history []model.HistoryMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, h := range history {
		if strings.TrimSpace(h.Content) == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(h.Role)) {
		case "user", "human":
			out = append(out, schema.UserMessage(h.Content))
		case "assistant", "ai":
			out = append(out, schema.AssistantMessage(h.Content, nil))
		case "system":
			out = append(out, schema.SystemMessage(h.Content))
		}
	}
	return out
}

// Prepare summarizes and trims msgs. The input slice is not modified.
func (m *Manager) Prepare(ctx context.Context, usage *model.UsageMeter, msgs []*schema.Message) []*schema.Message {
	out := pie.Filter(msgs, func(msg *schema.Message) bool { return msg != nil })

	if len(out) > m.cfg.SummaryTrigger && len(out) > m.cfg.MaxRecent {
		cut := len(out) - m.cfg.MaxRecent
		summary := m.summarize(ctx, usage, out[:cut])
		out = append([]*schema.Message{schema.SystemMessage(summaryHeader + summary)}, out[cut:]...)
		logx.Ctx(ctx).Debug().Int("summarized", cut).Int("kept", len(out)-1).Msg("history summarized")
	}

	return m.trim(ctx, out)
}

// Budget is the token room left for history.
func (m *Manager) Budget() int {
	return max(m.cfg.MaxTokens-m.cfg.ResponseReserve, 1)
}

func (m *Manager) summarize(ctx context.Context, usage *model.UsageMeter, older []*schema.Message) string {
	themes := themesOf(older)
	if m.summarizer != nil {
		req, err := prompts.RenderSummary(ctx, themes, transcript(older))
		if err == nil {
			var text string
			text, err = m.summarizer.Complete(ctx, usage, req)
			if err == nil && strings.TrimSpace(text) != "" {
				return strings.TrimSpace(text)
			}
		}
		logx.Ctx(ctx).Warn().Err(err).Msg("history summary failed, using extractive summary")
	}
	return extractiveSummary(older, themes)
}

func transcript(msgs []*schema.Message) string {
	var b strings.Builder
	for _, msg := range msgs {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, strings.TrimSpace(msg.Content))
	}
	return b.String()
}

// extractiveSummary keeps the first sentence of every user turn.
func extractiveSummary(msgs []*schema.Message, themes []string) string {
	var b strings.Builder
	if len(themes) > 0 {
		b.WriteString("Themes: " + strings.Join(themes, ", ") + "\n")
	}
	b.WriteString("Earlier the user said:")
	for _, msg := range msgs {
		if msg.Role != schema.User {
			continue
		}
		if s := leadSentence(msg.Content); s != "" {
			b.WriteString("\n- " + s)
		}
	}
	return b.String()
}

func leadSentence(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if m := firstSentence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	if r := []rune(text); len(r) > maxSentenceRune {
		text = string(r[:maxSentenceRune]) + "..."
	}
	return text
}

// trim drops messages until the history fits the budget. Lower retention
// weight goes first, oldest first within a weight. The newest user message
// is never dropped.
func (m *Manager) trim(ctx context.Context, msgs []*schema.Message) []*schema.Message {
	budget := m.Budget()
	total := countMessages(m.counter, msgs)
	if total <= budget {
		return msgs
	}

	keep := lastUserIndex(msgs)
	order := make([]int, 0, len(msgs))
	for i := range msgs {
		if i != keep {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		wa, wb := retentionWeight(msgs[a]), retentionWeight(msgs[b])
		switch {
		case wa < wb:
			return -1
		case wa > wb:
			return 1
		}
		return a - b
	})

	dropped := make(map[int]bool, len(order))
	for _, i := range order {
		if total <= budget {
			break
		}
		total -= countMessage(m.counter, msgs[i])
		dropped[i] = true
	}

	out := make([]*schema.Message, 0, len(msgs)-len(dropped))
	for i, msg := range msgs {
		if !dropped[i] {
			out = append(out, msg)
		}
	}
	out = dropLeadingAssistant(out)

	logx.Ctx(ctx).Debug().Int("dropped", len(msgs)-len(out)).Int("tokens", total).Int("budget", budget).Msg("history trimmed")
	return out
}

// dropLeadingAssistant makes the conversational part start on a user turn.
func dropLeadingAssistant(msgs []*schema.Message) []*schema.Message {
	i := 0
	for i < len(msgs) && msgs[i].Role == schema.System {
		i++
	}
	j := i
	for j < len(msgs)-1 && msgs[j].Role == schema.Assistant {
		j++
	}
	if j == i {
		return msgs
	}
	return append(slices.Clone(msgs[:i]), msgs[j:]...)
}

func lastUserIndex(msgs []*schema.Message) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == schema.User {
			return i
		}
	}
	return -1
}
