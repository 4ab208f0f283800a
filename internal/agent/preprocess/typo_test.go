package preprocess

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/noteapp-chat/server/internal/agent/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubLLM struct {
	out   string
	err   error
	calls int
	last  []*schema.Message
}

func (s *stubLLM) Complete(_ context.Context, _ *model.UsageMeter, msgs []*schema.Message) (string, error) {
	s.calls++
	s.last = msgs
	return s.out, s.err
}

func TestCorrectEmptyInput(t *testing.T) {
	llm := &stubLLM{out: "anything"}
	assert.Equal(t, "", NewTypoCorrector(llm).Correct(context.Background(), nil, "   \n\t"))
	assert.Zero(t, llm.calls)
}

func TestCorrectAcceptsFix(t *testing.T) {
	llm := &stubLLM{out: "notes about pepperoni pizza"}
	got := NewTypoCorrector(llm).Correct(context.Background(), nil, "note sabout   pepperoni pizza")
	assert.Equal(t, "notes about pepperoni pizza", got)
	require.Len(t, llm.last, 1)
	assert.Contains(t, llm.last[0].Content, "note sabout pepperoni pizza")
}

func TestCorrectStripsQuotes(t *testing.T) {
	llm := &stubLLM{out: `"hello world"`}
	assert.Equal(t, "hello world", NewTypoCorrector(llm).Correct(context.Background(), nil, "helo wrld"))
}

func TestCorrectRejections(t *testing.T) {
	cases := map[string]string{
		"empty":     "   ",
		"too short": "short",
		"refusal":   "I'm unable to process this request, sorry about that",
	}
	input := "remembr to buy milk and eggs tomorrow"
	for name, out := range cases {
		t.Run(name, func(t *testing.T) {
			got := NewTypoCorrector(&stubLLM{out: out}).Correct(context.Background(), nil, input)
			assert.Equal(t, input, got)
		})
	}
}

func TestCorrectShortInputSkipsLengthCheck(t *testing.T) {
	got := NewTypoCorrector(&stubLLM{out: "hi"}).Correct(context.Background(), nil, "hiii")
	assert.Equal(t, "hi", got)
}

func TestCorrectModelError(t *testing.T) {
	got := NewTypoCorrector(&stubLLM{err: errors.New("timeout")}).Correct(context.Background(), nil, " a  b ")
	assert.Equal(t, "a b", got)
}

func TestCorrectNilModel(t *testing.T) {
	assert.Equal(t, "a b", NewTypoCorrector(nil).Correct(context.Background(), nil, "a   b"))
}

func TestStripQuotes(t *testing.T) {
	assert.Equal(t, "x y", stripQuotes("'x y'"))
	assert.Equal(t, "code", stripQuotes("`code`"))
	assert.Equal(t, "fancy", stripQuotes("“fancy”"))
	assert.Equal(t, `"unbalanced`, stripQuotes(`"unbalanced`))
	assert.Equal(t, `"`, stripQuotes(`"`))
}
