package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/noteapp-chat/server/internal/agent/graph/parsers"
	"github.com/noteapp-chat/server/internal/agent/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newBackend(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClientWith(srv.URL, srv.Client())
}

func authed() context.Context {
	return WithAuth(context.Background(), Auth{UserID: "u1", Token: "jwt"})
}

func TestSearchToolFormatsHits(t *testing.T) {
	var gotAuth, gotQuery string
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/search", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotQuery = body["query"]
		_, _ = w.Write([]byte(`[
			{"type":"note","id":42,"title":"Q3 Plan","relevance":0.73,"title_match":true},
			{"type":"transcript","id":7,"title":"Standup","relevance":-0.2},
			{"type":"video","id":9,"title":"ignored","relevance":0.9}
		]`))
	})

	out, err := NewSearchTool(c).InvokableRun(authed(), `{"query":"q3 plan"}`)
	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt", gotAuth)
	assert.Equal(t, "q3 plan", gotQuery)

	results, stats := parsers.ParseSearchResults(out)
	assert.Equal(t, 1, stats.Skipped, "header line")
	require.Len(t, results, 2)
	assert.Equal(t, model.SearchResult{ID: 42, Type: model.ItemNote, Title: "Q3 Plan", Relevance: 0.73, TitleMatch: true}, results[0])
	assert.Equal(t, -0.2, results[1].Relevance)
	assert.Contains(t, out, searchHeader)
}

func TestSearchToolEmpty(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	out, err := NewSearchTool(c).InvokableRun(authed(), `{"query":"nothing"}`)
	require.NoError(t, err)
	assert.Equal(t, searchNoResult, out)
}

func TestSearchToolRequiresAuthAndQuery(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called")
	})
	st := NewSearchTool(c)

	_, err := st.InvokableRun(context.Background(), `{"query":"x"}`)
	assert.ErrorIs(t, err, errNotAuthenticated)

	_, err = st.InvokableRun(authed(), `{"query":""}`)
	assert.ErrorContains(t, err, "invalid tool arguments")

	_, err = st.InvokableRun(authed(), `{not json`)
	assert.ErrorContains(t, err, "invalid tool arguments")
}

func TestSearchToolBackendError(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := NewSearchTool(c).InvokableRun(authed(), `{"query":"x"}`)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "boom", se.Body)
}

func TestContentToolNoteAndTranscript(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/api/notes/3":
			_, _ = w.Write([]byte(`{"id":3,"title":"Groceries","content":"milk\neggs"}`))
		case "/api/transcripts/8":
			_, _ = w.Write([]byte(`{"id":8,"text":"hello team"}`))
		default:
			http.NotFound(w, r)
		}
	})
	ct := NewContentTool(c)

	out, err := ct.InvokableRun(authed(), `{"item_id":3,"item_type":"note"}`)
	require.NoError(t, err)
	assert.Equal(t, "Note: Groceries\n\nContent:\nmilk\neggs", out)
	item, ok := parsers.ParseContent(out)
	require.True(t, ok)
	assert.Equal(t, "Groceries", item.Title)
	assert.Equal(t, "milk\neggs", item.Body)

	out, err = ct.InvokableRun(authed(), `{"item_id":8,"item_type":"transcript"}`)
	require.NoError(t, err)
	assert.Equal(t, "Transcript: Untitled\n\nContent:\nhello team", out)

	_, err = ct.InvokableRun(authed(), `{"item_id":99,"item_type":"note"}`)
	assert.Error(t, err)
}

func TestContentToolRejectsInvalidType(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called")
	})
	_, err := NewContentTool(c).InvokableRun(authed(), `{"item_id":3,"item_type":"video"}`)
	assert.ErrorContains(t, err, "invalid tool arguments")
}

func TestCreateNoteTool(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notes", r.URL.Path)
		var in model.CreateNoteInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Ideas", in.Title)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":12,"title":"Ideas"}`))
	})
	out, err := NewCreateNoteTool(c).InvokableRun(authed(), `{"title":"Ideas","content":"ship it"}`)
	require.NoError(t, err)
	assert.Equal(t, "Note created (ID: 12): Ideas", out)
}

func TestToolInfos(t *testing.T) {
	infos, err := GetToolInfos(context.Background(), NewNoteAppTools(NewClient("http://localhost", 0)))
	require.NoError(t, err)
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{model.ToolSearchNotes, model.ToolGetContent, model.ToolCreateNote}, names)
}

type recordingSink struct {
	mu       sync.Mutex
	records  map[uint64]*model.ToolCallRecord
	nextID   uint64
	failNext bool
}

func (s *recordingSink) InsertToolCall(_ context.Context, rec *model.ToolCallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		return errors.New("disk full")
	}
	if s.records == nil {
		s.records = map[uint64]*model.ToolCallRecord{}
	}
	s.nextID++
	rec.ID = s.nextID
	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}

func (s *recordingSink) FinishToolCall(_ context.Context, id uint64, fin model.ToolCallFinish) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[id]
	rec.Status = fin.Status
	rec.Result = fin.Result
	rec.ErrorMessage = fin.ErrorMessage
	rec.FinishedAt = fin.FinishedAt
	return nil
}

type stubTool struct {
	out string
	err error
}

func (s stubTool) Info(context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{Name: "stub"}, nil
}

func (s stubTool) InvokableRun(context.Context, string, ...tool.Option) (string, error) {
	return s.out, s.err
}

func TestAuditedToolRecordsOutcome(t *testing.T) {
	sink := &recordingSink{}
	ctx := WithTrace(context.Background(), Trace{TurnID: "t1", ThreadID: "u1"})

	wrapped := WithAudit([]tool.BaseTool{stubTool{out: "ok"}, stubTool{err: errors.New("down")}}, sink)
	require.Len(t, wrapped, 2)

	out, err := wrapped[0].(tool.InvokableTool).InvokableRun(ctx, `{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = wrapped[1].(tool.InvokableTool).InvokableRun(ctx, `{}`)
	assert.EqualError(t, err, "down")

	require.Len(t, sink.records, 2)
	assert.Equal(t, model.ToolCallSuccess, sink.records[1].Status)
	assert.Equal(t, "ok", sink.records[1].Result)
	assert.Equal(t, "t1", sink.records[1].TurnID)
	assert.Equal(t, "stub", sink.records[1].Tool)
	assert.Equal(t, model.ToolCallFailed, sink.records[2].Status)
	assert.Equal(t, "down", sink.records[2].ErrorMessage)
}

func TestAuditedToolSinkFailureDoesNotBlock(t *testing.T) {
	sink := &recordingSink{failNext: true}
	wrapped := WithAudit([]tool.BaseTool{stubTool{out: "ok"}}, sink)
	out, err := wrapped[0].(tool.InvokableTool).InvokableRun(context.Background(), `{}`)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Empty(t, sink.records)
}

func TestWithAuditNilSink(t *testing.T) {
	ts := []tool.BaseTool{stubTool{}}
	assert.Equal(t, ts, WithAudit(ts, nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...(truncated)", truncate("abcdef", 2))

	// "é" is two bytes; cutting at 2 would split it.
	got := truncate("aé日本", 2)
	assert.Equal(t, "a...(truncated)", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "aé...(truncated)", truncate("aé日本", 4))
}
