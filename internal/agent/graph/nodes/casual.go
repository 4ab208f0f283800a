package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/noteapp-chat/server/internal/agent/analyzer"
	"github.com/noteapp-chat/server/internal/agent/graph/prompts"
	"github.com/noteapp-chat/server/internal/agent/model"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

const (
	casualDefaultReply  = "I'm here to help! How can I assist you?"
	casualFallbackReply = "I'm not sure how to respond to that right now, but I'm here to help with your notes!"
	casualHistoryWindow = 2
)

// CasualChat answers small talk without tools. Terminal.
func (n *Nodes) CasualChat(ctx context.Context, s *model.TurnState) (u model.Update) {
	log := logx.Ctx(ctx).With().Str("node", NodeCasualChat).Logger()
	streak := s.CasualExchangeCount + 1

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Casual reply failed")
			u = model.Update{
				Messages:     []*schema.Message{schema.AssistantMessage(casualFallbackReply, nil)},
				FinalAnswer:  model.Set(casualFallbackReply),
				ErrorMessage: model.Set(fmt.Sprintf("Error during casual chat generation: %v", r)),
			}
		}
	}()

	reply := n.casualReply(ctx, s, streak)
	log.Debug().Int("casual_streak", streak).Msg("Casual reply ready")

	return model.Update{
		Messages:            []*schema.Message{schema.AssistantMessage(reply, nil)},
		FinalAnswer:         model.Set(reply),
		CasualExchangeCount: model.Set(streak),
	}
}

func (n *Nodes) casualReply(ctx context.Context, s *model.TurnState, streak int) string {
	pattern := analyzer.DetectCasualPattern(s.UserInput)
	template := ""
	if options := analyzer.CasualTemplates[pattern]; len(options) > 0 {
		template = options[n.pick(len(options))]
	}
	if template != "" && n.draw() < n.casual.TemplateRatio {
		return template
	}

	system, err := prompts.RenderCasualSystem(ctx, streak)
	if err == nil {
		history := conversational(s.Messages)
		if len(history) > 0 {
			history = history[:len(history)-1]
		}
		msgs := make([]*schema.Message, 0, casualHistoryWindow+2)
		msgs = append(msgs, schema.SystemMessage(system))
		msgs = append(msgs, lastN(history, casualHistoryWindow)...)
		msgs = append(msgs, schema.UserMessage(s.UserInput))

		var text string
		if text, err = n.llm.Complete(ctx, s.Usage, msgs); err == nil {
			return text
		}
	}
	logx.Ctx(ctx).Warn().Err(err).Str("pattern", string(pattern)).Msg("Casual completion unavailable, using template")

	if template != "" {
		return template
	}
	return casualDefaultReply
}
