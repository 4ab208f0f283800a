package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/noteapp-chat/server/internal/agent/graph/parsers"
	"github.com/noteapp-chat/server/internal/agent/model"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

const (
	createCallID       = model.ToolCreateNote + "_0"
	createAskContent   = "What would you like the note to say? Tell me the text and I'll save it for you."
	createFailedAnswer = "I'm sorry, I couldn't create that note right now. Please try again in a moment."
)

// CreateNote stores a note drafted from the utterance. Terminal.
func (n *Nodes) CreateNote(ctx context.Context, s *model.TurnState) model.Update {
	log := logx.Ctx(ctx).With().Str("node", NodeCreateNote).Logger()
	u := model.Update{CasualExchangeCount: model.Set(0)}

	draft := parsers.ExtractNoteDraft(s.UserInput)
	if draft.Content == "" {
		log.Debug().Str("title", draft.Title).Msg("Note draft has no content")
		u.Messages = []*schema.Message{schema.AssistantMessage(createAskContent, nil)}
		u.FinalAnswer = model.Set(createAskContent)
		return u
	}

	msg, err := n.tools.Call(ctx, s, createCallID, model.ToolCreateNote, model.CreateNoteInput{
		Title:   draft.Title,
		Content: draft.Content,
	})
	u.Messages = []*schema.Message{msg}
	if err != nil {
		log.Error().Err(err).Str("title", draft.Title).Msg("Create note failed")
		u.Messages = append(u.Messages, schema.AssistantMessage(createFailedAnswer, nil))
		u.FinalAnswer = model.Set(createFailedAnswer)
		u.ErrorMessage = model.Set(fmt.Sprintf("Error creating note: %v", err))
		return u
	}

	answer := fmt.Sprintf("I've created the note %q.", draft.Title)
	if id, ok := parsers.ParseCreatedID(msg.Content); ok {
		answer = fmt.Sprintf("I've created the note %q (ID: %d).", draft.Title, id)
	}
	log.Info().Str("title", draft.Title).Msg("Note created")

	u.Messages = append(u.Messages, schema.AssistantMessage(answer, nil))
	u.FinalAnswer = model.Set(answer)
	u.ErrorMessage = model.Set("")
	return u
}
