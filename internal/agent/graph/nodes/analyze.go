package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/elliotchance/pie/v2"

	"github.com/noteapp-chat/server/internal/agent/graph/parsers"
	"github.com/noteapp-chat/server/internal/agent/model"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

const loopGuardMessage = "I seem to be stuck in a loop. Could you please rephrase your request?"

// AnalyzeInput classifies the utterance and decides the search query.
// Past the iteration ceiling it only records the loop-guard error.
func (n *Nodes) AnalyzeInput(ctx context.Context, s *model.TurnState) (u model.Update) {
	iter := s.IterationCount + 1
	u.IterationCount = model.Set(iter)
	log := logx.Ctx(ctx).With().Str("node", NodeAnalyzeInput).Int("iteration", iter).Logger()

	if iter > n.turn.MaxIterations {
		log.Warn().Int("max_iterations", n.turn.MaxIterations).Msg("Iteration ceiling reached")
		u.ErrorMessage = model.Set(loopGuardMessage)
		return u
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Input analysis failed")
			u = model.Update{
				IterationCount: model.Set(iter),
				ErrorMessage:   model.Set(fmt.Sprintf("Error during input analysis: %v", r)),
			}
		}
	}()

	analysis := n.analyzer.Analyze(s.UserInput)
	query := ""
	switch title, isTitleRequest := parsers.ExtractRequestedTitle(s.UserInput); {
	case isTitleRequest:
		analysis.Intent = model.IntentAction
		query = title
	case analysis.Intent.IsNotesLookup() && len(analysis.Keywords) > 0:
		query = s.UserInput
	case analysis.RequiresTool && len(analysis.Keywords) > 0 && !createOnly(analysis):
		query = strings.Join(analysis.Keywords, " ")
	}

	log.Debug().
		Str("intent", string(analysis.Intent)).
		Str("sentiment", string(analysis.Sentiment)).
		Float64("confidence", analysis.Confidence).
		Strs("keywords", analysis.Keywords).
		Strs("required_tools", analysis.RequiredTools).
		Str("search_query", query).
		Msg("Message analyzed")

	u.Analysis = model.Set(&analysis)
	u.SearchQuery = model.Set(query)
	return u
}

// createOnly reports a create-note request that asks for no lookup, which
// must reach create_note instead of a keyword search.
func createOnly(a model.MessageAnalysis) bool {
	return a.Intent == model.IntentCreateNote &&
		!pie.Contains(a.RequiredTools, model.ToolSearchNotes) &&
		!pie.Contains(a.RequiredTools, model.ToolGetContent)
}
