package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/noteapp-chat/server/internal/agent/graph/parsers"
	"github.com/noteapp-chat/server/internal/agent/model"
)

const (
	searchHeader   = "Here are the relevant items I found:"
	searchNoResult = "No matching notes or transcripts found."
)

var errNotAuthenticated = errors.New("tool not properly authenticated")

type searchHit struct {
	Type       string  `json:"type"`
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Relevance  float64 `json:"relevance"`
	TitleMatch bool    `json:"title_match"`
}

// SearchTool searches notes and transcripts. Output is one line per hit in
// the grammar understood by parsers.ParseSearchResults.
type SearchTool struct {
	client *Client
}

func NewSearchTool(c *Client) *SearchTool {
	return &SearchTool{client: c}
}

func (t *SearchTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: model.ToolSearchNotes,
		Desc: "Search the user's notes and transcripts. Returns one line per match with its type, ID, title and relevance score.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "Free text search query, for example a title or topic.",
				Required: true,
			},
		}),
	}, nil
}

func (t *SearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var in model.SearchInput
	if err := decodeArgs(argumentsInJSON, &in); err != nil {
		return "", err
	}
	if _, ok := AuthFrom(ctx); !ok {
		return "", errNotAuthenticated
	}

	var hits []searchHit
	if err := t.client.do(ctx, http.MethodPost, "/api/search", map[string]string{"query": in.Query}, &hits); err != nil {
		return "", fmt.Errorf("search notes and transcripts: %w", err)
	}
	return formatHits(hits), nil
}

func formatHits(hits []searchHit) string {
	if len(hits) == 0 {
		return searchNoResult
	}
	lines := make([]string, 0, len(hits)+1)
	lines = append(lines, searchHeader)
	for _, h := range hits {
		itemType, ok := model.ParseItemType(h.Type)
		if !ok {
			continue
		}
		lines = append(lines, parsers.FormatSearchResult(model.SearchResult{
			ID:         h.ID,
			Type:       itemType,
			Title:      strings.TrimSpace(h.Title),
			Relevance:  h.Relevance,
			TitleMatch: h.TitleMatch,
		}))
	}
	if len(lines) == 1 {
		return searchNoResult
	}
	return strings.Join(lines, "\n")
}
