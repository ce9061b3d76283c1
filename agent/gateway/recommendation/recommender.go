package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
)

const defaultTimeout = 60 * time.Second

// Recommender asks a chat model whether a return should be accepted.
type Recommender struct {
	runner  compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

var _ contractx.Recommender = (*Recommender)(nil)

func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string, timeout time.Duration) (*Recommender, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	systemPrompt = strings.TrimSpace(systemPrompt)
	if systemPrompt == "" {
		return nil, fmt.Errorf("%w: recommendation prompt", contractx.ErrPromptMissing)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	runner, err := compileRecommendGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrGateway, err)
	}
	return &Recommender{runner: runner, timeout: timeout}, nil
}

func (r *Recommender) Recommend(ctx context.Context, req contractx.RecommendationRequest) (string, error) {
	if !req.ValidationOverride.Known() {
		return "", fmt.Errorf("%w: validation override %q is not a label", contractx.ErrValidation, req.ValidationOverride)
	}

	payload := map[string]any{
		"product_title":      strings.TrimSpace(req.Query.Title),
		"return_reason":      strings.TrimSpace(req.Query.ReturnReason),
		"image_reference":    req.ImageReference,
		"validation_outcome": req.ValidationOverride,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal recommendation payload: %v", contractx.ErrValidation, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msg, err := r.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return "", fmt.Errorf("%w: recommendation invoke: %v", contractx.ErrGateway, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: empty recommendation response", contractx.ErrGateway)
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return "", fmt.Errorf("%w: recommendation is empty", contractx.ErrGateway)
	}
	return text, nil
}
