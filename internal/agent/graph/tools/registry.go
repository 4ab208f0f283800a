package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewNoteAppTools returns the notes backend tools in registration order.
func NewNoteAppTools(c *Client) []tool.BaseTool {
	return []tool.BaseTool{
		NewSearchTool(c),
		NewContentTool(c),
		NewCreateNoteTool(c),
	}
}

// GetToolInfos collects the schema of every tool.
func GetToolInfos(ctx context.Context, ts []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func decodeArgs(argumentsInJSON string, dst any) error {
	if err := json.Unmarshal([]byte(argumentsInJSON), dst); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}
