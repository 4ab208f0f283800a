package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/noteapp-chat/server/internal/agent/model"
)

const untitled = "Untitled"

type itemReply struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Text    string `json:"text"`
}

// ContentTool fetches the full body of one note or transcript. The output
// shape "<Type>: <title>\n\nContent:\n<body>" is what parsers.ParseContent reads.
type ContentTool struct {
	client *Client
}

func NewContentTool(c *Client) *ContentTool {
	return &ContentTool{client: c}
}

func (t *ContentTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: model.ToolGetContent,
		Desc: "Get the full content of a note or transcript by ID.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"item_id": {
				Type:     schema.Integer,
				Desc:     "ID of the note or transcript.",
				Required: true,
			},
			"item_type": {
				Type:     schema.String,
				Desc:     "Kind of item to fetch.",
				Enum:     []string{string(model.ItemNote), string(model.ItemTranscript)},
				Required: true,
			},
		}),
	}, nil
}

func (t *ContentTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var in model.GetContentInput
	if err := decodeArgs(argumentsInJSON, &in); err != nil {
		return "", err
	}
	if _, ok := AuthFrom(ctx); !ok {
		return "", errNotAuthenticated
	}

	path := fmt.Sprintf("/api/notes/%d", in.ItemID)
	if in.ItemType == model.ItemTranscript {
		path = fmt.Sprintf("/api/transcripts/%d", in.ItemID)
	}

	var item itemReply
	if err := t.client.do(ctx, http.MethodGet, path, nil, &item); err != nil {
		return "", fmt.Errorf("retrieve %s content: %w", in.ItemType, err)
	}
	return formatItem(in.ItemType, item), nil
}

func formatItem(itemType model.ItemType, item itemReply) string {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = untitled
	}
	body := item.Content
	if itemType == model.ItemTranscript {
		body = item.Text
	}
	return fmt.Sprintf("%s: %s\n\nContent:\n%s", itemType.Label(), title, body)
}
