package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteapp-chat/server/internal/agent/model"
	"github.com/noteapp-chat/server/internal/agent/repo"
)

type echoRunner struct {
	turns []model.TurnInput
}

func (r *echoRunner) Invoke(_ context.Context, in model.TurnInput) model.TurnResult {
	r.turns = append(r.turns, in)
	return model.TurnResult{FinalAnswer: "echo: " + in.UserInput}
}

func TestChatSessionKeepsHistory(t *testing.T) {
	r := &echoRunner{}
	s := &chatSession{runner: r, base: model.TurnInput{UserID: "u1", AuthToken: "jwt"}}
	var out bytes.Buffer

	err := s.Run(context.Background(), strings.NewReader("hello\n\nfind my notes\nquit\nignored\n"), &out)
	require.NoError(t, err)

	require.Len(t, r.turns, 2)
	assert.Empty(t, r.turns[0].History)
	assert.Equal(t, []model.HistoryMessage{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "echo: hello"},
	}, r.turns[1].History)
	assert.Equal(t, "jwt", r.turns[1].AuthToken)
	assert.Contains(t, out.String(), "echo: find my notes")
	assert.Contains(t, out.String(), "Bye.")
}

func TestChatSessionReset(t *testing.T) {
	ctx := context.Background()
	cps := repo.NewMemoryCheckpointer(0)
	require.NoError(t, cps.Save(ctx, &model.Checkpoint{ThreadID: "u1"}))

	r := &echoRunner{}
	s := &chatSession{runner: r, checkpoints: cps, base: model.TurnInput{UserID: "u1"}}
	var out bytes.Buffer
	require.NoError(t, s.Run(ctx, strings.NewReader("hi\n/reset\nagain\n"), &out))

	require.Len(t, r.turns, 2)
	assert.Empty(t, r.turns[1].History)
	cp, err := cps.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, cp)
	assert.Contains(t, out.String(), "Conversation cleared.")
}
