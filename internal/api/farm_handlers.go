package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/service"
)

func (s *Server) registerFarmRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createFarm",
		Method:        http.MethodPost,
		Path:          "/api/v1/farms",
		Summary:       "Create farm",
		Description:   "Creates a farm. Any id in the body is ignored.",
		Tags:          []string{"Farms"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateFarm)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFarms",
		Method:      http.MethodGet,
		Path:        "/api/v1/farms",
		Summary:     "List farms",
		Tags:        []string{"Farms"},
	}, s.handleListFarms)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFarm",
		Method:      http.MethodGet,
		Path:        "/api/v1/farms/{id}",
		Summary:     "Get farm",
		Tags:        []string{"Farms"},
	}, s.handleGetFarm)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createFarmCrop",
		Method:        http.MethodPost,
		Path:          "/api/v1/farms/{id}/crops",
		Summary:       "Plant crop",
		Description:   "Creates a crop owned by the farm in the path.",
		Tags:          []string{"Farms", "Crops"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateFarmCrop)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFarmCrops",
		Method:      http.MethodGet,
		Path:        "/api/v1/farms/{id}/crops",
		Summary:     "List farm crops",
		Tags:        []string{"Farms", "Crops"},
	}, s.handleListFarmCrops)
}

// === DTOs ===

// FarmResponse contains farm data in API responses.
type FarmResponse struct {
	ID   int64   `json:"id" doc:"Farm ID"`
	Name string  `json:"name" doc:"Farm name"`
	Size float64 `json:"size" doc:"Farm size"`
}

// CreateFarmRequest is the request body for creating a farm.
type CreateFarmRequest struct {
	ID   int64   `json:"id,omitempty" required:"false" doc:"Ignored; the server assigns ids"`
	Name string  `json:"name" required:"false" doc:"Farm name"`
	Size float64 `json:"size" required:"false" doc:"Farm size"`
}

// CreateFarmInput wraps the create farm request for Huma.
type CreateFarmInput struct {
	Body CreateFarmRequest
}

// FarmOutput wraps a farm response for Huma.
type FarmOutput struct {
	Body FarmResponse
}

// ListFarmsOutput wraps a list of farms for Huma.
type ListFarmsOutput struct {
	Body []FarmResponse
}

// FarmIDInput contains the farm path parameter.
type FarmIDInput struct {
	ID int64 `path:"id" doc:"Farm ID"`
}

// CreateFarmCropInput wraps the create crop request for Huma.
type CreateFarmCropInput struct {
	ID   int64 `path:"id" doc:"Farm ID"`
	Body CreateCropRequest
}

func toFarmResponse(f *domain.Farm) FarmResponse {
	return FarmResponse{ID: f.ID, Name: f.Name, Size: f.Size}
}

// === Handlers ===

func (s *Server) handleCreateFarm(ctx context.Context, input *CreateFarmInput) (*FarmOutput, error) {
	farm, err := s.services.Farm.CreateFarm(ctx, service.CreateFarmRequest{
		Name: input.Body.Name,
		Size: input.Body.Size,
	})
	if err != nil {
		return nil, s.unexpected(ctx, "create farm failed", err)
	}
	return &FarmOutput{Body: toFarmResponse(farm)}, nil
}

func (s *Server) handleListFarms(ctx context.Context, _ *struct{}) (*ListFarmsOutput, error) {
	farms, err := s.services.Farm.ListFarms(ctx)
	if err != nil {
		return nil, s.unexpected(ctx, "list farms failed", err)
	}

	resp := make([]FarmResponse, 0, len(farms))
	for _, f := range farms {
		resp = append(resp, toFarmResponse(f))
	}
	return &ListFarmsOutput{Body: resp}, nil
}

func (s *Server) handleGetFarm(ctx context.Context, input *FarmIDInput) (*FarmOutput, error) {
	farm, err := s.services.Farm.GetFarm(ctx, input.ID)
	if err != nil {
		return nil, s.unexpected(ctx, "get farm failed", err)
	}
	return &FarmOutput{Body: toFarmResponse(farm)}, nil
}

func (s *Server) handleCreateFarmCrop(ctx context.Context, input *CreateFarmCropInput) (*CropOutput, error) {
	req, err := input.Body.toServiceRequest()
	if err != nil {
		return nil, err
	}

	crop, err := s.services.Farm.CreateFarmCrop(ctx, input.ID, req)
	if err != nil {
		return nil, s.unexpected(ctx, "create crop failed", err)
	}
	return &CropOutput{Body: toCropResponse(crop)}, nil
}

func (s *Server) handleListFarmCrops(ctx context.Context, input *FarmIDInput) (*ListCropsOutput, error) {
	crops, err := s.services.Farm.ListFarmCrops(ctx, input.ID)
	if err != nil {
		return nil, s.unexpected(ctx, "list farm crops failed", err)
	}
	return &ListCropsOutput{Body: toCropResponses(crops)}, nil
}
