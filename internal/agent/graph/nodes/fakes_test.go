package nodes

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"github.com/noteapp-chat/server/internal/agent/analyzer"
	"github.com/noteapp-chat/server/internal/agent/model"
)

// scriptedLLM answers completions from a function and counts calls.
type scriptedLLM struct {
	mu    sync.Mutex
	calls [][]*schema.Message
	reply func(msgs []*schema.Message) (string, error)
}

func (l *scriptedLLM) Complete(_ context.Context, _ *model.UsageMeter, msgs []*schema.Message) (string, error) {
	l.mu.Lock()
	l.calls = append(l.calls, msgs)
	l.mu.Unlock()
	if l.reply == nil {
		return "", errors.New("no reply scripted")
	}
	return l.reply(msgs)
}

func (l *scriptedLLM) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func replyWith(text string) *scriptedLLM {
	return &scriptedLLM{reply: func([]*schema.Message) (string, error) { return text, nil }}
}

// fakeTool is an InvokableTool with a scripted body.
type fakeTool struct {
	name string
	mu   sync.Mutex
	args []string
	run  func(ctx context.Context, args string) (string, error)
}

func (f *fakeTool) Info(context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{Name: f.name, Desc: f.name}, nil
}

func (f *fakeTool) InvokableRun(ctx context.Context, args string, _ ...tool.Option) (string, error) {
	f.mu.Lock()
	f.args = append(f.args, args)
	f.mu.Unlock()
	return f.run(ctx, args)
}

func (f *fakeTool) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.args...)
}

func newRunner(t *testing.T, ts ...*fakeTool) *ToolRunner {
	t.Helper()
	base := make([]tool.BaseTool, 0, len(ts))
	for _, ft := range ts {
		base = append(base, ft)
	}
	r, err := NewToolRunner(context.Background(), base)
	require.NoError(t, err)
	return r
}

func newNodes(t *testing.T, llm Completer, ts ...*fakeTool) *Nodes {
	t.Helper()
	return New(analyzer.New(), llm, newRunner(t, ts...), model.DefaultTurnConfig(),
		WithRandom(func() float64 { return 0.99 }, func(int) int { return 0 }),
	)
}

func stateFor(input string) *model.TurnState {
	s := model.NewTurnState("turn-1", "thread-1")
	s.UserInput = input
	s.OriginalUserInput = input
	s.UserID = "u1"
	s.AuthToken = "jwt"
	s.Messages = append(s.Messages, schema.UserMessage(input))
	return s
}
