package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/noteapp-chat/server/internal/agent/graph/parsers"
	"github.com/noteapp-chat/server/internal/agent/model"
	errx "github.com/noteapp-chat/server/internal/core/error"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

const searchCallID = model.ToolSearchNotes + "_0"

// SearchNotes runs the search tool and picks the first fetch candidate
// at the initial relevance floor.
func (n *Nodes) SearchNotes(ctx context.Context, s *model.TurnState) model.Update {
	log := logx.Ctx(ctx).With().Str("node", NodeSearchNotes).Logger()
	u := model.Update{CasualExchangeCount: model.Set(0)}

	if strings.TrimSpace(s.SearchQuery) == "" {
		log.Warn().Err(errx.ErrMissingQuery).Msg("Search skipped")
		u.ErrorMessage = model.Set(missingQueryText)
		return u
	}

	msg, err := n.tools.Call(ctx, s, searchCallID, model.ToolSearchNotes, model.SearchInput{Query: s.SearchQuery})
	u.Messages = []*schema.Message{msg}
	if err != nil {
		log.Error().Err(err).Str("query", s.SearchQuery).Msg("Search tool failed")
		u.ErrorMessage = model.Set(fmt.Sprintf("%s: %v", searchFailedPrefix, err))
		u.SearchResults = model.Set([]model.SearchResult{})
		u.FetchTarget = model.Set[*model.FetchTarget](nil)
		return u
	}

	results, stats := parsers.ParseSearchResults(msg.Content)
	target := NextFetchTarget(results, s.FetchedContent, n.turn.InitialFloor)

	ev := log.Debug().
		Str("query", s.SearchQuery).
		Int("results", len(results)).
		Int("skipped_lines", stats.Skipped)
	if target != nil {
		ev = ev.Str("fetch_target", model.CompositeKey(target.Type, target.ID))
	}
	ev.Msg("Search completed")

	u.SearchResults = model.Set(results)
	u.FetchTarget = model.Set(target)
	u.ErrorMessage = model.Set("")
	return u
}

// GetContent fetches one item. Without an explicit target it re-picks at the
// refetch floor. The target is cleared after every attempt so a failing item
// is never retried, and a key already in FetchedContent is never fetched again.
func (n *Nodes) GetContent(ctx context.Context, s *model.TurnState) model.Update {
	log := logx.Ctx(ctx).With().Str("node", NodeGetContent).Logger()
	clearTarget := model.Set[*model.FetchTarget](nil)

	target := s.FetchTarget
	if target == nil {
		target = NextFetchTarget(s.SearchResults, s.FetchedContent, n.turn.RefetchFloor)
	}
	if target == nil {
		log.Debug().Err(errx.ErrNoFetchTarget).Msg("Nothing left to fetch")
		return model.Update{
			ErrorMessage: model.Set(nothingToFetchText),
			FetchTarget:  clearTarget,
		}
	}

	key := model.CompositeKey(target.Type, target.ID)
	if s.HasFetched(key) {
		log.Debug().Str("key", key).Msg("Already fetched, skipping")
		return model.Update{FetchTarget: clearTarget}
	}

	msg, err := n.tools.Call(ctx, s, "get_content_"+key, model.ToolGetContent, model.GetContentInput{
		ItemID:   target.ID,
		ItemType: target.Type,
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Content fetch failed")
		return model.Update{
			Messages:     []*schema.Message{msg},
			ErrorMessage: model.Set(fmt.Sprintf("%s: %v", fetchFailedPrefix, err)),
			FetchTarget:  clearTarget,
		}
	}

	log.Debug().Str("key", key).Int("chars", len(msg.Content)).Msg("Content fetched")
	return model.Update{
		Messages:       []*schema.Message{msg},
		FetchedContent: map[string]string{key: msg.Content},
		FetchTarget:    clearTarget,
		ErrorMessage:   model.Set(""),
	}
}
