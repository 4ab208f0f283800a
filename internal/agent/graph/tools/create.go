package tools

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/noteapp-chat/server/internal/agent/model"
)

// CreateNoteTool stores a new note. Output is "Note created (ID: <id>): <title>".
type CreateNoteTool struct {
	client *Client
}

func NewCreateNoteTool(c *Client) *CreateNoteTool {
	return &CreateNoteTool{client: c}
}

func (t *CreateNoteTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: model.ToolCreateNote,
		Desc: "Create a new note for the user.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"title": {
				Type:     schema.String,
				Desc:     "Short title of the note.",
				Required: true,
			},
			"content": {
				Type:     schema.String,
				Desc:     "Body of the note.",
				Required: true,
			},
		}),
	}, nil
}

func (t *CreateNoteTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var in model.CreateNoteInput
	if err := decodeArgs(argumentsInJSON, &in); err != nil {
		return "", err
	}
	if _, ok := AuthFrom(ctx); !ok {
		return "", errNotAuthenticated
	}

	var created itemReply
	if err := t.client.do(ctx, http.MethodPost, "/api/notes", in, &created); err != nil {
		return "", fmt.Errorf("create note: %w", err)
	}
	if created.ID <= 0 {
		return "", fmt.Errorf("create note: backend returned no id")
	}
	title := created.Title
	if title == "" {
		title = in.Title
	}
	return fmt.Sprintf("Note created (ID: %d): %s", created.ID, title), nil
}
