package cli

import (
	"context"
	"fmt"

	"github.com/noteapp-chat/server/internal/agent/analyzer"
	"github.com/noteapp-chat/server/internal/agent/graph"
	"github.com/noteapp-chat/server/internal/agent/graph/conversations"
	"github.com/noteapp-chat/server/internal/agent/graph/nodes"
	"github.com/noteapp-chat/server/internal/agent/graph/tools"
	"github.com/noteapp-chat/server/internal/agent/model"
	"github.com/noteapp-chat/server/internal/agent/preprocess"
	"github.com/noteapp-chat/server/internal/agent/repo"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

// app is the wired turn pipeline plus whatever must be closed after it.
type app struct {
	runner      graph.Runner
	checkpoints model.Checkpointer
	closers     []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logx.Warn().Err(err).Msg("close failed")
		}
	}
}

func buildApp(ctx context.Context, cfg *model.AppConfig) (*app, error) {
	a := &app{}

	chat, err := nodes.NewChatModels(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	noteTools := tools.NewNoteAppTools(tools.NewClient(cfg.NoteApp.BaseURL, cfg.NoteApp.Timeout))
	if cfg.Audit.Enabled {
		store, err := repo.OpenAuditStore(ctx, repo.AuditConfig{Path: cfg.Audit.Path})
		if err != nil {
			return nil, fmt.Errorf("open audit store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		noteTools = tools.WithAudit(noteTools, store)
	}

	runner, err := nodes.NewToolRunner(ctx, noteTools)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create tool runner: %w", err)
	}

	checkpoints, err := a.openCheckpoints(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.checkpoints = checkpoints

	n := nodes.New(analyzer.New(), chat, runner, cfg.Turn, nodes.WithCasualConfig(cfg.Casual))
	controller, err := graph.NewController(ctx, graph.Config{
		Nodes:       n,
		History:     conversations.NewManager(cfg.History, nil, chat),
		Checkpoints: checkpoints,
		Corrector:   preprocess.NewTypoCorrector(chat),
		Turn:        cfg.Turn,
		Checkpoint:  cfg.Checkpoint,
		ModelName:   cfg.LLM.Model,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build turn controller: %w", err)
	}
	a.runner = controller

	logx.Debug().
		Str("checkpoint", cfg.Checkpoint.Backend).
		Bool("audit", cfg.Audit.Enabled).
		Int("tools", len(noteTools)).
		Msg("Notes assistant ready")
	return a, nil
}

func (a *app) openCheckpoints(ctx context.Context, cfg *model.AppConfig) (model.Checkpointer, error) {
	switch cfg.Checkpoint.Backend {
	case "redis":
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		return repo.NewRedisCheckpointer(rdb, cfg.Checkpoint.TTL), nil
	case "memory":
		return repo.NewMemoryCheckpointer(cfg.Checkpoint.TTL), nil
	}
	return nil, nil
}
