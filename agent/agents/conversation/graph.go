package conversation

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/product-return-agent/agent/nodes"
)

func (e *Engine) compileApplyEventGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("prepare_event",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.PrepareEvent(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node prepare_event: %w", err)
	}

	handlers := map[nodex.EventKind]func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error){
		nodex.EventRequestTestMode: func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.RequestTestMode(in)
		},
		nodex.EventSubmitImage: func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.SubmitImage(ctx, in, e.validator)
		},
		nodex.EventSelectTestLabel: func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.SelectTestLabel(in)
		},
		nodex.EventSubmitProductInfo: func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.SubmitProductInfo(ctx, in, e.recommender)
		},
		nodex.EventSearchMarketplace: func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.SearchMarketplace(ctx, in, e.searcher)
		},
		nodex.EventReset: func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.Reset(in)
		},
		nodex.EventEndConversation: func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.EndConversation(in)
		},
	}

	endNodes := make(map[string]bool, len(handlers))
	for _, kind := range nodex.EventKinds() {
		handler, ok := handlers[kind]
		if !ok {
			return nil, fmt.Errorf("no handler for event %s", kind)
		}
		if err := graph.AddLambdaNode(string(kind), compose.InvokableLambda(handler)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", kind, err)
		}
		if err := graph.AddEdge(string(kind), compose.END); err != nil {
			return nil, fmt.Errorf("add edge %s->end: %w", kind, err)
		}
		endNodes[string(kind)] = true
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("graph state is nil")
			}
			return string(in.Event.Kind), nil
		},
		endNodes,
	)

	if err := graph.AddEdge(compose.START, "prepare_event"); err != nil {
		return nil, fmt.Errorf("add edge start->prepare_event: %w", err)
	}
	if err := graph.AddBranch("prepare_event", branch); err != nil {
		return nil, fmt.Errorf("add event branch: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("conversation.apply_event"))
	if err != nil {
		return nil, fmt.Errorf("compile conversation graph: %w", err)
	}
	return runner, nil
}
