package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/agrix/agrix-server/internal/errors"
	"github.com/agrix/agrix-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Full-text search",
		Description: "Searches farms, crops and fertilizers by name, brand and composition. Typos are tolerated.",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains search query parameters.
type SearchInput struct {
	Query  string `query:"q" validate:"required,max=200" doc:"Search query"`
	Types  string `query:"type" validate:"omitempty,doctypes" doc:"Comma-separated types: farm, crop, fertilizer"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100" doc:"Max results (default 20)"`
	Offset int    `query:"offset" validate:"gte=0" doc:"Result offset"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if s.services.Search == nil {
		return nil, huma.Error503ServiceUnavailable("search is disabled")
	}

	input.Query = strings.TrimSpace(input.Query)
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Offset = input.Offset
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Types != "" {
		for part := range strings.SplitSeq(input.Types, ",") {
			t, err := search.ParseDocType(strings.TrimSpace(part))
			if err != nil {
				return nil, domainerrors.Validation(err.Error())
			}
			params.Types = append(params.Types, t)
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, s.unexpected(ctx, "search failed", err)
	}
	return &SearchOutput{Body: result}, nil
}
