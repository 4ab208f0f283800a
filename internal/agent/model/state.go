package model

import (
	"github.com/cloudwego/eino/schema"
)

// TurnState is the record threaded through the turn graph for one user turn.
// Nodes never mutate it directly; they return an Update that the graph
// merges with Apply.
type TurnState struct {
	TurnID   string
	ThreadID string

	Messages          []*schema.Message
	UserInput         string
	OriginalUserInput string

	// carried for tool calls only
	UserID    string
	AuthToken string

	Analysis       *MessageAnalysis
	SearchQuery    string
	SearchResults  []SearchResult
	FetchTarget    *FetchTarget
	FetchedContent map[string]string

	FinalAnswer  string
	ErrorMessage string

	IterationCount      int
	CasualExchangeCount int

	Usage *UsageMeter
}

// NewTurnState seeds a fresh state for one turn.
func NewTurnState(turnID, threadID string) *TurnState {
	return &TurnState{
		TurnID:         turnID,
		ThreadID:       threadID,
		Messages:       []*schema.Message{},
		FetchedContent: map[string]string{},
		Usage:          &UsageMeter{},
	}
}

// HasFetched reports whether the composite key was already fetched this turn.
func (s *TurnState) HasFetched(key string) bool {
	_, ok := s.FetchedContent[key]
	return ok
}

// Value is an optional assignment inside an Update. The zero Value leaves
// the target field untouched.
type Value[T any] struct {
	set bool
	v   T
}

// Set wraps v as an assignment.
func Set[T any](v T) Value[T] {
	return Value[T]{set: true, v: v}
}

func (v Value[T]) Get() (T, bool) {
	return v.v, v.set
}

// Update is the partial result of one node.
//   - Messages are appended.
//   - FetchedContent is unioned; existing keys are never overwritten or removed.
//   - Every other field replaces the current value when set. Set("") clears
//     ErrorMessage and Set[*FetchTarget](nil) clears the fetch target.
type Update struct {
	Messages       []*schema.Message
	FetchedContent map[string]string

	Analysis            Value[*MessageAnalysis]
	UserInput           Value[string]
	SearchQuery         Value[string]
	SearchResults       Value[[]SearchResult]
	FetchTarget         Value[*FetchTarget]
	FinalAnswer         Value[string]
	ErrorMessage        Value[string]
	IterationCount      Value[int]
	CasualExchangeCount Value[int]
}

// Apply merges u into s.
func (s *TurnState) Apply(u Update) {
	s.Messages = append(s.Messages, u.Messages...)

	if s.FetchedContent == nil {
		s.FetchedContent = make(map[string]string, len(u.FetchedContent))
	}
	for k, v := range u.FetchedContent {
		if _, exists := s.FetchedContent[k]; !exists {
			s.FetchedContent[k] = v
		}
	}

	if v, ok := u.Analysis.Get(); ok {
		s.Analysis = v
	}
	if v, ok := u.UserInput.Get(); ok {
		s.UserInput = v
	}
	if v, ok := u.SearchQuery.Get(); ok {
		s.SearchQuery = v
	}
	if v, ok := u.SearchResults.Get(); ok {
		s.SearchResults = v
	}
	if v, ok := u.FetchTarget.Get(); ok {
		s.FetchTarget = v
	}
	if v, ok := u.FinalAnswer.Get(); ok {
		s.FinalAnswer = v
	}
	if v, ok := u.ErrorMessage.Get(); ok {
		s.ErrorMessage = v
	}
	if v, ok := u.IterationCount.Get(); ok {
		s.IterationCount = v
	}
	if v, ok := u.CasualExchangeCount.Get(); ok {
		s.CasualExchangeCount = v
	}
}

// HistoryMessage is one role-tagged entry of caller supplied chat history.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnInput is what the caller hands to the controller for one turn.
type TurnInput struct {
	UserInput string           `json:"user_input"`
	History   []HistoryMessage `json:"chat_history"`
	UserID    string           `json:"user_id"`
	AuthToken string           `json:"-"`
	// ThreadID keys the checkpoint; defaults to UserID.
	ThreadID string `json:"thread_id,omitempty"`
}

// TurnResult is the only thing a turn returns. FinalAnswer is never empty.
type TurnResult struct {
	FinalAnswer string `json:"final_answer"`
	Error       string `json:"error,omitempty"`
}
