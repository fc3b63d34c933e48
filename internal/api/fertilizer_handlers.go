package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/service"
)

func (s *Server) registerFertilizerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createFertilizer",
		Method:        http.MethodPost,
		Path:          "/api/v1/fertilizers",
		Summary:       "Create fertilizer",
		Tags:          []string{"Fertilizers"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateFertilizer)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFertilizers",
		Method:      http.MethodGet,
		Path:        "/api/v1/fertilizers",
		Summary:     "List fertilizers",
		Tags:        []string{"Fertilizers"},
	}, s.handleListFertilizers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFertilizer",
		Method:      http.MethodGet,
		Path:        "/api/v1/fertilizers/{id}",
		Summary:     "Get fertilizer",
		Tags:        []string{"Fertilizers"},
	}, s.handleGetFertilizer)
}

// === DTOs ===

// FertilizerResponse contains fertilizer data in API responses.
type FertilizerResponse struct {
	ID          int64  `json:"id" doc:"Fertilizer ID"`
	Name        string `json:"name" doc:"Fertilizer name"`
	Brand       string `json:"brand" doc:"Brand"`
	Composition string `json:"composition" doc:"Composition"`
}

// CreateFertilizerRequest is the request body for creating a fertilizer.
type CreateFertilizerRequest struct {
	ID          int64  `json:"id,omitempty" required:"false" doc:"Ignored; the server assigns ids"`
	Name        string `json:"name" required:"false" doc:"Fertilizer name"`
	Brand       string `json:"brand" required:"false" doc:"Brand"`
	Composition string `json:"composition" required:"false" doc:"Composition"`
}

// CreateFertilizerInput wraps the create fertilizer request for Huma.
type CreateFertilizerInput struct {
	Body CreateFertilizerRequest
}

// FertilizerOutput wraps a fertilizer response for Huma.
type FertilizerOutput struct {
	Body FertilizerResponse
}

// ListFertilizersOutput wraps a list of fertilizers for Huma.
type ListFertilizersOutput struct {
	Body []FertilizerResponse
}

// FertilizerIDInput contains the fertilizer path parameter.
type FertilizerIDInput struct {
	ID int64 `path:"id" doc:"Fertilizer ID"`
}

func toFertilizerResponse(f *domain.Fertilizer) FertilizerResponse {
	return FertilizerResponse{
		ID:          f.ID,
		Name:        f.Name,
		Brand:       f.Brand,
		Composition: f.Composition,
	}
}

func toFertilizerResponses(fertilizers []*domain.Fertilizer) []FertilizerResponse {
	resp := make([]FertilizerResponse, 0, len(fertilizers))
	for _, f := range fertilizers {
		resp = append(resp, toFertilizerResponse(f))
	}
	return resp
}

// === Handlers ===

func (s *Server) handleCreateFertilizer(ctx context.Context, input *CreateFertilizerInput) (*FertilizerOutput, error) {
	fertilizer, err := s.services.Fertilizer.CreateFertilizer(ctx, service.CreateFertilizerRequest{
		Name:        input.Body.Name,
		Brand:       input.Body.Brand,
		Composition: input.Body.Composition,
	})
	if err != nil {
		return nil, s.unexpected(ctx, "create fertilizer failed", err)
	}
	return &FertilizerOutput{Body: toFertilizerResponse(fertilizer)}, nil
}

func (s *Server) handleListFertilizers(ctx context.Context, _ *struct{}) (*ListFertilizersOutput, error) {
	fertilizers, err := s.services.Fertilizer.ListFertilizers(ctx)
	if err != nil {
		return nil, s.unexpected(ctx, "list fertilizers failed", err)
	}
	return &ListFertilizersOutput{Body: toFertilizerResponses(fertilizers)}, nil
}

func (s *Server) handleGetFertilizer(ctx context.Context, input *FertilizerIDInput) (*FertilizerOutput, error) {
	fertilizer, err := s.services.Fertilizer.GetFertilizer(ctx, input.ID)
	if err != nil {
		return nil, s.unexpected(ctx, "get fertilizer failed", err)
	}
	return &FertilizerOutput{Body: toFertilizerResponse(fertilizer)}, nil
}
