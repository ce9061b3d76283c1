package contract

import (
	"context"

	statex "github.com/tanpawarit/product-return-agent/agent/state"
)

// Validator classifies a product image into one of the validation labels.
type Validator interface {
	Validate(ctx context.Context, imageRef string) (statex.ValidationLabel, error)
}

// Recommender produces free-text return advice.
type Recommender interface {
	Recommend(ctx context.Context, req RecommendationRequest) (string, error)
}

// Searcher looks a product up on the marketplace. Failures surface as an
// empty result, never as an error.
type Searcher interface {
	Search(ctx context.Context, query string) []string
	SearchURL(query string) string
}
