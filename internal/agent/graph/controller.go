package graph

import (
	"context"
	"fmt"
	"maps"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/elliotchance/pie/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/noteapp-chat/server/internal/agent/graph/conversations"
	"github.com/noteapp-chat/server/internal/agent/graph/nodes"
	"github.com/noteapp-chat/server/internal/agent/graph/observers"
	"github.com/noteapp-chat/server/internal/agent/model"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

const (
	incompleteAnswer = "I'm sorry, I encountered an issue and couldn't complete your request."
	criticalAnswer   = "I encountered a critical error while processing your request."
	anonymousThread  = "anonymous"
)

// Corrector rewrites the utterance before analysis.
type Corrector interface {
	Correct(ctx context.Context, usage *model.UsageMeter, text string) string
}

// Runner executes one user turn. Invoke never fails: problems come back
// as a fallback answer with Error set.
type Runner interface {
	Invoke(ctx context.Context, in model.TurnInput) model.TurnResult
}

// Config holds the collaborators of the turn controller.
type Config struct {
	Nodes       *nodes.Nodes
	History     *conversations.Manager
	Checkpoints model.Checkpointer
	Corrector   Corrector
	Turn        model.TurnConfig
	Checkpoint  model.CheckpointConfig
	ModelName   string
}

// Controller seeds a TurnState per call and drives the compiled graph.
type Controller struct {
	runnable    compose.Runnable[*model.TurnState, *model.TurnState]
	history     *conversations.Manager
	checkpoints model.Checkpointer
	corrector   Corrector
	turn        model.TurnConfig
	checkpoint  model.CheckpointConfig
	modelName   string
	sem         *semaphore.Weighted
}

// NewController compiles the graph and returns a ready controller.
func NewController(ctx context.Context, cfg Config) (*Controller, error) {
	if cfg.Nodes == nil {
		return nil, fmt.Errorf("controller nodes are nil")
	}
	runnable, err := BuildGraph(ctx, cfg.Nodes, cfg.Turn)
	if err != nil {
		return nil, err
	}
	history := cfg.History
	if history == nil {
		history = conversations.NewManager(model.DefaultHistoryConfig(), nil, nil)
	}
	return &Controller{
		runnable:    runnable,
		history:     history,
		checkpoints: cfg.Checkpoints,
		corrector:   cfg.Corrector,
		turn:        cfg.Turn,
		checkpoint:  cfg.Checkpoint,
		modelName:   cfg.ModelName,
		sem:         semaphore.NewWeighted(max(cfg.Turn.MaxConcurrent, 1)),
	}, nil
}

// Invoke runs one turn to completion.
func (c *Controller) Invoke(ctx context.Context, in model.TurnInput) (res model.TurnResult) {
	turnID := uuid.NewString()
	threadID := threadOf(in)
	ctx = logx.WithTurn(ctx, turnID, threadID)
	log := logx.Ctx(ctx)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Turn panicked")
			res = critical(fmt.Errorf("panic: %v", r))
		}
	}()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		log.Error().Err(err).Msg("Turn not admitted")
		return critical(err)
	}
	defer c.sem.Release(1)

	state := model.NewTurnState(turnID, threadID)
	state.UserID = in.UserID
	state.AuthToken = in.AuthToken
	state.OriginalUserInput = strings.TrimSpace(in.UserInput)
	state.UserInput = state.OriginalUserInput
	if c.corrector != nil && c.turn.TypoCorrection && state.UserInput != "" {
		state.UserInput = c.corrector.Correct(ctx, state.Usage, state.UserInput)
	}

	history := conversations.Convert(in.History)
	history = c.restore(ctx, state, history)
	msgs := append(slices.Clone(history), schema.UserMessage(state.UserInput))
	state.Messages = c.history.Prepare(ctx, state.Usage, msgs)

	log.Info().Str("input", state.UserInput).Int("history", len(state.Messages)-1).Msg("Turn started")

	out, err := c.runnable.Invoke(ctx, state, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		log.Error().Err(err).Msg("Turn graph failed")
		return critical(err)
	}

	res = extractResult(out)
	c.persist(ctx, out)
	c.logCost(ctx, out, start)
	return res
}

// restore loads the thread checkpoint. Its messages seed the turn only when
// the caller sent no history.
func (c *Controller) restore(ctx context.Context, s *model.TurnState, history []*schema.Message) []*schema.Message {
	if c.checkpoints == nil {
		return history
	}
	cp, err := c.checkpoints.Load(ctx, s.ThreadID)
	if err != nil {
		logx.Ctx(ctx).Warn().Err(err).Msg("Checkpoint load failed, starting fresh")
		return history
	}
	if cp == nil {
		return history
	}
	s.CasualExchangeCount = cp.CasualExchangeCount
	if c.checkpoint.CarryFetched {
		maps.Copy(s.FetchedContent, cp.FetchedContent)
	}
	if len(history) == 0 {
		history = cp.Messages
	}
	return history
}

// persist saves the conversational part of the log; tool messages belong to
// the turn that produced them.
func (c *Controller) persist(ctx context.Context, s *model.TurnState) {
	if c.checkpoints == nil || s == nil {
		return
	}
	cp := &model.Checkpoint{
		ThreadID: s.ThreadID,
		Messages: pie.Filter(s.Messages, func(m *schema.Message) bool {
			return m != nil && m.Role != schema.Tool && (m.Role != schema.Assistant || len(m.ToolCalls) == 0)
		}),
		FetchedContent:      maps.Clone(s.FetchedContent),
		CasualExchangeCount: s.CasualExchangeCount,
		UpdatedAt:           time.Now().UTC(),
	}
	if err := c.checkpoints.Save(ctx, cp); err != nil {
		logx.Ctx(ctx).Warn().Err(err).Msg("Checkpoint save failed")
	}
}

func (c *Controller) logCost(ctx context.Context, s *model.TurnState, start time.Time) {
	if s == nil {
		return
	}
	calls, prompt, completion, usd := s.Usage.Snapshot()
	logx.Ctx(ctx).Info().
		Str("model", c.modelName).
		Int("llm_calls", calls).
		Int("prompt_tokens", prompt).
		Int("completion_tokens", completion).
		Float64("cost_usd", usd).
		Int("fetched", len(s.FetchedContent)).
		Dur("elapsed", time.Since(start)).
		Msg("Turn finished")
}

// extractResult prefers the final answer, then the last assistant text,
// then a generic apology.
func extractResult(s *model.TurnState) model.TurnResult {
	if s == nil {
		return model.TurnResult{FinalAnswer: incompleteAnswer}
	}
	answer := strings.TrimSpace(s.FinalAnswer)
	if answer == "" {
		answer = lastAssistantText(s.Messages)
	}
	if answer == "" {
		answer = incompleteAnswer
	}
	return model.TurnResult{FinalAnswer: answer, Error: s.ErrorMessage}
}

func lastAssistantText(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil || m.Role != schema.Assistant {
			continue
		}
		if text := strings.TrimSpace(m.Content); text != "" {
			return text
		}
	}
	return ""
}

func critical(err error) model.TurnResult {
	return model.TurnResult{FinalAnswer: criticalAnswer, Error: err.Error()}
}

func threadOf(in model.TurnInput) string {
	switch {
	case in.ThreadID != "":
		return in.ThreadID
	case in.UserID != "":
		return in.UserID
	}
	return anonymousThread
}
