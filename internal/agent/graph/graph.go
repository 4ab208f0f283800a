package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/noteapp-chat/server/internal/agent/graph/nodes"
	"github.com/noteapp-chat/server/internal/agent/model"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

const graphName = "noteapp_turn"

type nodeFunc func(ctx context.Context, s *model.TurnState) model.Update

type routeFunc func(ctx context.Context, s *model.TurnState) string

// GraphBuilder wires the turn nodes and their routing into one eino graph.
type GraphBuilder struct {
	nodes  *nodes.Nodes
	router *nodes.Router
	turn   model.TurnConfig
	graph  *compose.Graph[*model.TurnState, *model.TurnState]
}

// BuildGraph compiles the turn state machine.
func BuildGraph(ctx context.Context, n *nodes.Nodes, turn model.TurnConfig) (compose.Runnable[*model.TurnState, *model.TurnState], error) {
	if n == nil {
		return nil, fmt.Errorf("graph nodes are nil")
	}
	b := &GraphBuilder{
		nodes:  n,
		router: nodes.NewRouter(turn),
		turn:   turn,
		graph:  compose.NewGraph[*model.TurnState, *model.TurnState](),
	}
	if err := b.addNodes(); err != nil {
		return nil, err
	}
	if err := b.addEdges(); err != nil {
		return nil, err
	}
	if err := b.addBranches(); err != nil {
		return nil, err
	}
	return b.compile(ctx)
}

// step adapts a node to a lambda that merges its update into the state.
func step(fn nodeFunc) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, s *model.TurnState) (*model.TurnState, error) {
		s.Apply(fn(ctx, s))
		return s, nil
	})
}

func branch(route routeFunc, targets ...string) *compose.GraphBranch {
	ends := make(map[string]bool, len(targets))
	for _, t := range targets {
		ends[t] = true
	}
	return compose.NewGraphBranch(func(ctx context.Context, s *model.TurnState) (string, error) {
		return route(ctx, s), nil
	}, ends)
}

func (b *GraphBuilder) addNodes() error {
	steps := []struct {
		name string
		fn   nodeFunc
	}{
		{nodes.NodeAnalyzeInput, b.nodes.AnalyzeInput},
		{nodes.NodeSearchNotes, b.nodes.SearchNotes},
		{nodes.NodeGetContent, b.nodes.GetContent},
		{nodes.NodeCreateNote, b.nodes.CreateNote},
		{nodes.NodeCasualChat, b.nodes.CasualChat},
		{nodes.NodeSynthesizeAnswer, b.nodes.SynthesizeAnswer},
		{nodes.NodeHandleError, b.nodes.HandleError},
	}
	for _, st := range steps {
		if err := b.graph.AddLambdaNode(st.name, step(st.fn), compose.WithNodeName(st.name)); err != nil {
			return fmt.Errorf("add node %s: %w", st.name, err)
		}
	}
	return nil
}

func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeAnalyzeInput},
		{nodes.NodeCreateNote, compose.END},
		{nodes.NodeCasualChat, compose.END},
		{nodes.NodeSynthesizeAnswer, compose.END},
		{nodes.NodeHandleError, compose.END},
	}
	for _, e := range edges {
		if err := b.graph.AddEdge(e[0], e[1]); err != nil {
			return fmt.Errorf("add edge %s -> %s: %w", e[0], e[1], err)
		}
	}
	return nil
}

func (b *GraphBuilder) addBranches() error {
	branches := []struct {
		from   string
		branch *compose.GraphBranch
	}{
		{nodes.NodeAnalyzeInput, branch(b.router.AfterAnalyze,
			nodes.NodeSearchNotes, nodes.NodeCreateNote, nodes.NodeCasualChat,
			nodes.NodeSynthesizeAnswer, nodes.NodeHandleError)},
		{nodes.NodeSearchNotes, branch(b.router.AfterSearch,
			nodes.NodeGetContent, nodes.NodeSynthesizeAnswer, nodes.NodeHandleError)},
		{nodes.NodeGetContent, branch(b.router.AfterGetContent,
			nodes.NodeGetContent, nodes.NodeSynthesizeAnswer, nodes.NodeHandleError)},
	}
	for _, br := range branches {
		if err := b.graph.AddBranch(br.from, br.branch); err != nil {
			logx.Error().Err(err).Str("node", br.from).Msg("Error adding branch")
			return fmt.Errorf("add branch after %s: %w", br.from, err)
		}
	}
	return nil
}

// compile bounds the run so a routing bug cannot spin forever. Each fetch
// costs one step; analyze, search and the terminal node cost the rest.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.TurnState, *model.TurnState], error) {
	maxSteps := max(20, 10+b.turn.MaxFetches*2)
	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName(graphName),
		compose.WithMaxRunSteps(maxSteps),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	logx.Debug().Int("max_steps", maxSteps).Msg("Turn graph compiled")
	return runnable, nil
}
