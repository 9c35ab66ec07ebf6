package ops

import (
	"context"
	"fmt"

	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/websearch"
)

const webSearchSuggestion = "Try a different search query or check network connectivity"

// WebSearchInput contains parameters for the WebSearch operation.
type WebSearchInput struct {
	Query string `json:"query"`
}

// Validate checks the query.
func (in *WebSearchInput) Validate() error {
	var err error
	in.Query, err = required("query", in.Query)
	return err
}

// WebSearchOutput contains the result of the WebSearch operation.
type WebSearchOutput struct {
	Results []websearch.Result `json:"results"`
	Count   int                `json:"count"`
	Message string             `json:"message,omitempty"`
}

// WebSearch performs an external instant-answer lookup.
func WebSearch(ctx context.Context, d *Deps, input WebSearchInput) (*WebSearchOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if d.Web == nil {
		return nil, errors.NewUpstream("Web search is not available", "")
	}

	results, err := d.Web.Search(ctx, input.Query)
	if err != nil {
		d.Logger.WarnContext(ctx, "web search failed", "query", input.Query, "err", err)
		return nil, errors.NewUpstream("Web search failed: "+err.Error(), webSearchSuggestion)
	}

	if len(results) == 0 {
		return &WebSearchOutput{
			Results: []websearch.Result{},
			Message: fmt.Sprintf("No instant results found for %q. Consider refining your search query or using more specific terms.", input.Query),
		}, nil
	}
	return &WebSearchOutput{Results: results, Count: len(results)}, nil
}
