package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/noteapp-chat/server/internal/agent/graph/tools"
	"github.com/noteapp-chat/server/internal/agent/model"
	errx "github.com/noteapp-chat/server/internal/core/error"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

// ToolRunner executes one notes backend call at a time through an eino
// ToolsNode so tool callbacks fire for every call.
type ToolRunner struct {
	node *compose.ToolsNode
}

// NewToolRunner builds the tools node over ts. Tool names must be unique.
func NewToolRunner(ctx context.Context, ts []tool.BaseTool) (*ToolRunner, error) {
	infos, err := tools.GetToolInfos(ctx, ts)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if slices.Contains(names, info.Name) {
			return nil, fmt.Errorf("duplicate tool name %q", info.Name)
		}
		names = append(names, info.Name)
	}
	logx.Ctx(ctx).Debug().Strs("tools", names).Msg("Registered notes tools")

	node, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               ts,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			logx.Ctx(ctx).Warn().Str("tool_name", name).Str("arguments", input).Msg("Unknown tool call")
			return "", fmt.Errorf("unknown tool %q", name)
		},
		ToolArgumentsHandler: normalizeArguments,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tools node: %w", err)
	}
	return &ToolRunner{node: node}, nil
}

// Call runs the named tool with args for the caller of s. The returned tool
// message is always usable: on failure it carries the error text so the
// synthesis step can acknowledge it.
func (r *ToolRunner) Call(ctx context.Context, s *model.TurnState, callID, name string, args any) (*schema.Message, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return schema.ToolMessage(fmt.Sprintf("Error calling %s: %v", name, err), callID), err
	}

	if s.AuthToken != "" {
		ctx = tools.WithAuth(ctx, tools.Auth{UserID: s.UserID, Token: s.AuthToken})
	}
	ctx = tools.WithTrace(ctx, tools.Trace{TurnID: s.TurnID, ThreadID: s.ThreadID})

	call := schema.AssistantMessage("", []schema.ToolCall{{
		ID:   callID,
		Type: "function",
		Function: schema.FunctionCall{
			Name:      name,
			Arguments: string(raw),
		},
	}})

	out, err := r.node.Invoke(ctx, call)
	if err != nil {
		err = errx.WrapTool(name, err)
		return schema.ToolMessage(fmt.Sprintf("Error calling %s: %v", name, err), callID), err
	}
	for _, m := range out {
		if m != nil && m.ToolCallID == callID {
			return m, nil
		}
	}
	err = errx.WrapTool(name, fmt.Errorf("no result for call %s", callID))
	return schema.ToolMessage(err.Error(), callID), err
}

// normalizeArguments trims strings and lowercases item_type. It never fails.
func normalizeArguments(_ context.Context, name, arguments string) (string, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil {
		return arguments, nil
	}
	for k, v := range m {
		if sv, ok := v.(string); ok {
			m[k] = strings.TrimSpace(sv)
		}
	}
	if name == model.ToolGetContent {
		if sv, ok := m["item_type"].(string); ok {
			m["item_type"] = strings.ToLower(sv)
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return arguments, nil
	}
	return string(b), nil
}
