package nodes

import (
	"math/rand/v2"

	"github.com/noteapp-chat/server/internal/agent/analyzer"
	"github.com/noteapp-chat/server/internal/agent/model"
)

// Graph node names.
const (
	NodeAnalyzeInput     = "analyze_input"
	NodeSearchNotes      = "search_notes"
	NodeGetContent       = "get_content"
	NodeCreateNote       = "create_note"
	NodeCasualChat       = "casual_chat"
	NodeSynthesizeAnswer = "synthesize_answer"
	NodeHandleError      = "handle_error"
)

// Nodes holds the collaborators shared by every node of the turn graph.
// Each node reads a *model.TurnState and returns a model.Update; nodes do
// not return errors, failures land in Update.ErrorMessage.
type Nodes struct {
	analyzer *analyzer.Analyzer
	llm      Completer
	tools    *ToolRunner
	turn     model.TurnConfig
	casual   model.CasualConfig

	draw func() float64
	pick func(n int) int
}

type Option func(*Nodes)

// WithRandom replaces the template draw and template pick used by casual_chat.
func WithRandom(draw func() float64, pick func(n int) int) Option {
	return func(n *Nodes) {
		n.draw = draw
		n.pick = pick
	}
}

func WithCasualConfig(c model.CasualConfig) Option {
	return func(n *Nodes) {
		n.casual = c
	}
}

func New(a *analyzer.Analyzer, llm Completer, tr *ToolRunner, turn model.TurnConfig, opts ...Option) *Nodes {
	n := &Nodes{
		analyzer: a,
		llm:      llm,
		tools:    tr,
		turn:     turn,
		casual:   model.CasualConfig{TemplateRatio: 0.7},
		draw:     rand.Float64,
		pick:     rand.IntN,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}
