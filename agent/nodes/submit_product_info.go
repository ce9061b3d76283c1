package nodes

import (
	"context"

	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
)

func SubmitProductInfo(ctx context.Context, in *GraphState, recommender contractx.Recommender) (GraphOutput, error) {
	s := in.Session
	s.ProductTitle = in.Event.Title
	s.ReturnReason = in.Event.Reason
	s.AppendUser(ProductInfo(s.ProductTitle, s.ReturnReason))

	text, err := recommender.Recommend(ctx, contractx.RecommendationRequest{
		ImageReference: s.ImageReference,
		Query: contractx.ProductQuery{
			Title:        s.ProductTitle,
			ReturnReason: s.ReturnReason,
		},
		ValidationOverride: s.ActiveLabel(),
	})
	if err != nil {
		failed := ""
		s.LastRecommendation = &failed
		s.AppendAssistant(RecommendationFailed(err))
		in.GatewayErr = err
		return in.output(), nil
	}

	s.LastRecommendation = &text
	s.AppendAssistant(Recommendation(text))
	return in.output(), nil
}
