package nodes

import (
	"context"

	"github.com/noteapp-chat/server/internal/agent/model"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

// Router decides the next node from the merged state.
type Router struct {
	turn model.TurnConfig
}

func NewRouter(turn model.TurnConfig) *Router {
	return &Router{turn: turn}
}

// AfterAnalyze routes analyze_input. A formed search query always wins over
// casual routing.
func (r *Router) AfterAnalyze(ctx context.Context, s *model.TurnState) string {
	next := r.afterAnalyze(s)
	logx.Ctx(ctx).Debug().Str("from", NodeAnalyzeInput).Str("to", next).Msg("Routing")
	return next
}

func (r *Router) afterAnalyze(s *model.TurnState) string {
	if s.ErrorMessage != "" || s.Analysis == nil {
		return NodeHandleError
	}
	a := s.Analysis
	switch {
	case s.SearchQuery != "":
		return NodeSearchNotes
	case a.Intent == model.IntentCreateNote:
		return NodeCreateNote
	case a.Intent == model.IntentCasual, a.Intent == model.IntentEmotional && !a.RequiresTool:
		return NodeCasualChat
	}
	return NodeSynthesizeAnswer
}

// AfterSearch routes search_notes.
func (r *Router) AfterSearch(ctx context.Context, s *model.TurnState) string {
	next := NodeSynthesizeAnswer
	switch {
	case s.ErrorMessage != "":
		next = NodeHandleError
	case s.FetchTarget != nil:
		next = NodeGetContent
	}
	logx.Ctx(ctx).Debug().Str("from", NodeSearchNotes).Str("to", next).Msg("Routing")
	return next
}

// AfterGetContent routes get_content: partial results still reach synthesis,
// and the loop stops at MaxFetches or when nothing at the continue floor is
// left unfetched.
func (r *Router) AfterGetContent(ctx context.Context, s *model.TurnState) string {
	next := r.afterGetContent(s)
	logx.Ctx(ctx).Debug().
		Str("from", NodeGetContent).
		Str("to", next).
		Int("fetched", len(s.FetchedContent)).
		Msg("Routing")
	return next
}

func (r *Router) afterGetContent(s *model.TurnState) string {
	if s.ErrorMessage != "" {
		if len(s.FetchedContent) == 0 {
			return NodeHandleError
		}
		return NodeSynthesizeAnswer
	}
	if len(s.FetchedContent) >= r.turn.MaxFetches {
		return NodeSynthesizeAnswer
	}
	if NextFetchTarget(s.SearchResults, s.FetchedContent, r.turn.ContinueFloor) != nil {
		return NodeGetContent
	}
	return NodeSynthesizeAnswer
}
