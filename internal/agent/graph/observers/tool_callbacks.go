package observers

import (
	"context"
	"errors"
	"io"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/noteapp-chat/server/pkg/logger"
)

func newToolHandler() *callbackHelper.ToolCallbackHandler {
	return &callbackHelper.ToolCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *tool.CallbackInput) context.Context {
			ev := logx.Ctx(ctx).Info().Str("tool", info.Name)
			if input != nil {
				ev = ev.Str("args", preview(input.ArgumentsInJSON))
			}
			ev.Msg("tool start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *tool.CallbackOutput) context.Context {
			ev := logx.Ctx(ctx).Debug().Str("tool", info.Name)
			if output != nil {
				ev = ev.Str("response", preview(output.Response))
			}
			ev.Msg("tool end")
			return ctx
		},
		// the turn graph never streams, drain anyway so the reader is released
		OnEndWithStreamOutput: func(ctx context.Context, info *einocb.RunInfo, output *schema.StreamReader[*tool.CallbackOutput]) context.Context {
			defer output.Close()
			for {
				chunk, err := output.Recv()
				if errors.Is(err, io.EOF) {
					return ctx
				}
				if err != nil {
					logx.Ctx(ctx).Warn().Err(err).Str("tool", info.Name).Msg("tool stream error")
					return ctx
				}
				logx.Ctx(ctx).Debug().Str("tool", info.Name).Str("chunk", preview(chunk.Response)).Msg("tool stream")
			}
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Ctx(ctx).Warn().Err(err).Str("tool", info.Name).Msg("tool error")
			return ctx
		},
	}
}
