package tools

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/noteapp-chat/server/internal/agent/model"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

const auditTruncateLimit = 2048

// AuditedTool records every call of the wrapped tool in an AuditSink.
// Sink failures are logged and never fail the call.
type AuditedTool struct {
	impl tool.InvokableTool
	sink model.AuditSink
}

// WithAudit wraps every invokable tool in ts. A nil sink returns ts unchanged.
func WithAudit(ts []tool.BaseTool, sink model.AuditSink) []tool.BaseTool {
	if sink == nil {
		return ts
	}
	out := make([]tool.BaseTool, 0, len(ts))
	for _, t := range ts {
		if it, ok := t.(tool.InvokableTool); ok {
			out = append(out, &AuditedTool{impl: it, sink: sink})
			continue
		}
		out = append(out, t)
	}
	return out
}

func (t *AuditedTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return t.impl.Info(ctx)
}

func (t *AuditedTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	name := "unknown"
	if info, err := t.impl.Info(ctx); err == nil && info != nil {
		name = info.Name
	}

	trace := TraceFrom(ctx)
	rec := &model.ToolCallRecord{
		TurnID:    trace.TurnID,
		ThreadID:  trace.ThreadID,
		Tool:      name,
		ArgsJSON:  truncate(argumentsInJSON, auditTruncateLimit),
		Status:    model.ToolCallRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := t.sink.InsertToolCall(ctx, rec); err != nil {
		logx.Ctx(ctx).Warn().Err(err).Str("tool", name).Msg("Failed to insert tool call audit record")
	}

	result, runErr := t.impl.InvokableRun(ctx, argumentsInJSON, opts...)

	if rec.ID == 0 {
		return result, runErr
	}
	fin := model.ToolCallFinish{
		Status:     model.ToolCallSuccess,
		FinishedAt: time.Now().UTC(),
	}
	if runErr != nil {
		fin.Status = model.ToolCallFailed
		fin.ErrorMessage = truncate(runErr.Error(), auditTruncateLimit)
	} else {
		fin.Result = truncate(result, auditTruncateLimit)
	}
	if err := t.sink.FinishToolCall(ctx, rec.ID, fin); err != nil {
		logx.Ctx(ctx).Warn().Err(err).Str("tool", name).Uint64("audit_id", rec.ID).Msg("Failed to update tool call audit record")
	}
	return result, runErr
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...(truncated)"
}
