package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/elliotchance/pie/v2"

	"github.com/noteapp-chat/server/internal/agent/graph/parsers"
	"github.com/noteapp-chat/server/internal/agent/graph/prompts"
	"github.com/noteapp-chat/server/internal/agent/model"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

const (
	searchContextSize = 3
	minSubjectLen     = 3
	genericErrorText  = "An unexpected error occurred. Please try again."

	searchFailedPrefix  = "Error while searching notes"
	fetchFailedPrefix   = "Error fetching content"
	missingQueryText    = "No search query was provided for searching notes."
	nothingToFetchText  = "No more relevant items to fetch content for."
	notesDownAnswer     = "I couldn't reach your notes right now. Please try again in a moment."
	contentDownAnswer   = "I couldn't open that item from your notes right now. Please try again in a moment."
	missingQueryAnswer  = "I couldn't work out what to look for in your notes. Could you tell me a bit more about what you need?"
	nothingToOpenAnswer = "I couldn't find anything relevant enough in your notes to open. Could you be more specific?"
)

// errorAnswers maps recorded error messages onto what the user is shown.
// Diagnostic detail stays in ErrorMessage.
var errorAnswers = []struct {
	prefix string
	answer string
}{
	{loopGuardMessage, loopGuardMessage},
	{searchFailedPrefix, notesDownAnswer},
	{fetchFailedPrefix, contentDownAnswer},
	{missingQueryText, missingQueryAnswer},
	{nothingToFetchText, nothingToOpenAnswer},
}

type synthesisPlan struct {
	branch   prompts.SynthesisBranch
	verbatim string
	vars     prompts.SynthesisVars
	// fetched content or search results above the refetch floor
	grounded bool
}

// SynthesizeAnswer builds the grounding context for the turn and asks the
// model for the final answer. A requested item found by exact title is
// returned verbatim without a model call. Terminal.
func (n *Nodes) SynthesizeAnswer(ctx context.Context, s *model.TurnState) model.Update {
	log := logx.Ctx(ctx).With().Str("node", NodeSynthesizeAnswer).Logger()
	plan := n.planSynthesis(ctx, s)
	log.Debug().Str("branch", plan.branch.String()).Int("fetched", len(s.FetchedContent)).Msg("Synthesis branch selected")

	if plan.branch == prompts.BranchVerbatim {
		return answerUpdate(plan.verbatim, "")
	}

	system, err := prompts.RenderSynthesisSystem(ctx, plan.branch, plan.vars)
	if err != nil {
		log.Error().Err(err).Msg("Synthesis prompt failed")
		return answerUpdate(n.troubleAnswer(ctx, s), fmt.Sprintf("Error during answer synthesis: %v", err))
	}

	msgs := append([]*schema.Message{schema.SystemMessage(system)}, conversational(s.Messages)...)
	answer, err := n.llm.Complete(ctx, s.Usage, msgs)
	if err != nil && !isEmptyCompletion(err) {
		log.Error().Err(err).Msg("Synthesis completion failed")
		return answerUpdate(n.troubleAnswer(ctx, s), fmt.Sprintf("Error during answer synthesis: %v", err))
	}
	if err != nil {
		subject := n.extractSubject(ctx, s)
		if plan.grounded {
			answer = fmt.Sprintf("I found some information regarding '%s', but I'm having trouble formulating a specific answer. Could you rephrase or ask something more specific about it?", subject)
		} else {
			answer = fmt.Sprintf("I'm sorry, I could not find any relevant notes or transcripts about '%s'. "+
				"Additionally, I'm unable to provide a general answer to your query at this time. "+
				"You might want to try rephrasing or asking something else.", subject)
		}
		log.Warn().Msg("Empty synthesis, using fallback answer")
	}
	return answerUpdate(answer, "")
}

// HandleError answers with a plain-language apology for the recorded
// error. Terminal.
func (n *Nodes) HandleError(ctx context.Context, s *model.TurnState) model.Update {
	msg := strings.TrimSpace(s.ErrorMessage)
	answer := userFacingError(msg)
	logx.Ctx(ctx).Warn().Str("node", NodeHandleError).Str("error", msg).Msg("Turn ended with error")
	u := model.Update{
		Messages:    []*schema.Message{schema.AssistantMessage(answer, nil)},
		FinalAnswer: model.Set(answer),
	}
	if msg == "" {
		u.ErrorMessage = model.Set(genericErrorText)
	}
	return u
}

func userFacingError(msg string) string {
	for _, e := range errorAnswers {
		if strings.HasPrefix(msg, e.prefix) {
			return e.answer
		}
	}
	return genericErrorText
}

func answerUpdate(answer, errMsg string) model.Update {
	return model.Update{
		Messages:     []*schema.Message{schema.AssistantMessage(answer, nil)},
		FinalAnswer:  model.Set(answer),
		ErrorMessage: model.Set(errMsg),
	}
}

func (n *Nodes) planSynthesis(ctx context.Context, s *model.TurnState) synthesisPlan {
	keys := pie.Sort(pie.Keys(s.FetchedContent))
	hasFetched := len(keys) > 0
	relevant := pie.Any(s.SearchResults, func(r model.SearchResult) bool {
		return r.Relevance >= n.turn.RefetchFloor
	})
	plan := synthesisPlan{grounded: hasFetched || relevant}
	plan.vars.ToolOutputs = toolOutputs(s.Messages)

	if parsers.IsContentRequest(s.UserInput) {
		if body, ok := requestedBody(s.UserInput, keys, s.FetchedContent); ok {
			plan.branch = prompts.BranchVerbatim
			plan.verbatim = body
			return plan
		}
		if hasFetched {
			plan.branch = prompts.BranchTitleMiss
			plan.vars.FetchedContext = fetchedContext(keys, s.FetchedContent)
			return plan
		}
		plan.branch = prompts.BranchUnavailable
		plan.vars.Subject = n.extractSubject(ctx, s)
		return plan
	}

	if !relevant && !hasFetched {
		plan.branch = prompts.BranchNoResults
		plan.vars.Subject = n.extractSubject(ctx, s)
		plan.vars.UserInput = s.UserInput
		return plan
	}

	plan.branch = prompts.BranchDefault
	plan.vars.Subject = quickSubject(s.UserInput)
	plan.vars.UserInput = s.UserInput
	if hasFetched {
		plan.vars.FetchedContext = fetchedContext(keys, s.FetchedContent)
	} else {
		plan.vars.SearchContext = searchContext(s.SearchResults)
	}
	return plan
}

// requestedBody finds the fetched item whose title equals the requested
// title, case-insensitively.
func requestedBody(utterance string, keys []string, fetched map[string]string) (string, bool) {
	title, ok := parsers.ExtractRequestedTitle(utterance)
	if !ok {
		return "", false
	}
	for _, k := range keys {
		item, ok := parsers.ParseContent(fetched[k])
		if ok && strings.ToLower(item.Title) == title {
			return item.Body, true
		}
	}
	return "", false
}

func fetchedContext(keys []string, fetched map[string]string) string {
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "\n--- Content from %s ---\n%s\n", strings.ReplaceAll(k, "_", " "), strings.TrimSpace(fetched[k]))
	}
	return strings.TrimSpace(b.String())
}

func searchContext(results []model.SearchResult) string {
	top := pie.Top(results, searchContextSize)
	return strings.Join(pie.Map(top, parsers.FormatSearchResult), "\n")
}

func toolOutputs(msgs []*schema.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		if m != nil && m.Role == schema.Tool {
			fmt.Fprintf(&b, "\nTool Output:\n%s\n", m.Content)
		}
	}
	return b.String()
}

// quickSubject is the regex-only subject, falling back to the utterance.
func quickSubject(utterance string) string {
	if subject, ok := parsers.ExtractSubject(utterance); ok {
		return subject
	}
	return strings.TrimSpace(utterance)
}

// extractSubject tries the regex templates, then a one-line model answer,
// then the raw utterance.
func (n *Nodes) extractSubject(ctx context.Context, s *model.TurnState) string {
	if subject, ok := parsers.ExtractSubject(s.UserInput); ok {
		return subject
	}
	raw := strings.TrimSpace(s.UserInput)
	msgs, err := prompts.RenderSubject(ctx, raw)
	if err != nil {
		return raw
	}
	subject, err := n.llm.Complete(ctx, s.Usage, msgs)
	if err != nil {
		logx.Ctx(ctx).Debug().Err(err).Msg("Subject extraction fell back to utterance")
		return raw
	}
	subject = strings.Trim(strings.TrimSpace(strings.SplitN(subject, "\n", 2)[0]), `"'`)
	if len(subject) < minSubjectLen || strings.EqualFold(subject, raw) {
		return raw
	}
	return subject
}

func (n *Nodes) troubleAnswer(ctx context.Context, s *model.TurnState) string {
	return fmt.Sprintf("I'm sorry, I had trouble processing your request about '%s'. Please try again.", n.extractSubject(ctx, s))
}
