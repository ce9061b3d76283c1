package nodes

import (
	"context"

	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
)

// SearchMarketplace posts product links, or a manual search link when the
// search comes back empty. Errors and empty results look the same here.
func SearchMarketplace(ctx context.Context, in *GraphState, searcher contractx.Searcher) (GraphOutput, error) {
	s := in.Session

	urls := searcher.Search(ctx, s.ProductTitle)
	if len(urls) == 0 {
		s.AppendAssistant(SearchFallback(searcher.SearchURL(s.ProductTitle)))
		in.GatewayErr = contractx.ErrSearchSoftFailure
		return in.output(), nil
	}

	s.AppendAssistant(SearchResults(urls))
	return in.output(), nil
}
