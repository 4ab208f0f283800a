package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/noteapp-chat/server/internal/agent/model"
	errx "github.com/noteapp-chat/server/internal/core/error"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

// Completer turns a message list into one text completion.
type Completer interface {
	Complete(ctx context.Context, usage *model.UsageMeter, msgs []*schema.Message) (string, error)
}

// ChatModels wraps the chat model shared by every completion of a turn.
type ChatModels struct {
	Chat      einomodel.BaseChatModel
	ModelName string
	Timeout   time.Duration
}

// NewChatModels creates the Gemini chat model from configuration.
func NewChatModels(ctx context.Context, cfg model.LLMConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature
	chat, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(1024)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating chat model")
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}

	return NewChatModelsFrom(chat, cfg.Model, cfg.Timeout), nil
}

// NewChatModelsFrom wraps an existing chat model.
func NewChatModelsFrom(chat einomodel.BaseChatModel, modelName string, timeout time.Duration) *ChatModels {
	return &ChatModels{Chat: chat, ModelName: modelName, Timeout: timeout}
}

// Complete runs one bounded completion, records its usage and strips
// reasoning blocks. Empty replies are reported as errx.ErrEmptyCompletion.
func (cm *ChatModels) Complete(ctx context.Context, usage *model.UsageMeter, msgs []*schema.Message) (string, error) {
	if cm == nil || cm.Chat == nil {
		return "", errx.WrapCompletion(fmt.Errorf("chat model is not initialized"))
	}
	if cm.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cm.Timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := cm.Chat.Generate(ctx, msgs)
	if err != nil {
		return "", errx.WrapCompletion(err)
	}
	if out == nil {
		return "", errx.WrapCompletion(errx.ErrEmptyCompletion)
	}
	usage.Record(cm.ModelName, out)

	text := strings.TrimSpace(StripThink(out.Content))
	logx.Ctx(ctx).Debug().
		Str("model", cm.ModelName).
		Dur("took", time.Since(start)).
		Int("chars", len(text)).
		Msg("LLM completion")
	if text == "" {
		return "", errx.WrapCompletion(errx.ErrEmptyCompletion)
	}
	return text, nil
}
