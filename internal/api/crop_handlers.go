package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agrix/agrix-server/internal/domain"
	domainerrors "github.com/agrix/agrix-server/internal/errors"
	"github.com/agrix/agrix-server/internal/service"
)

func (s *Server) registerCropRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCrops",
		Method:      http.MethodGet,
		Path:        "/api/v1/crops",
		Summary:     "List crops",
		Tags:        []string{"Crops"},
	}, s.handleListCrops)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCropsByHarvestDate",
		Method:      http.MethodGet,
		Path:        "/api/v1/crops/search",
		Summary:     "Find crops by harvest date",
		Description: "Returns crops whose harvest date lies in [start, end], both inclusive. A start after end matches nothing.",
		Tags:        []string{"Crops"},
	}, s.handleSearchCrops)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCrop",
		Method:      http.MethodGet,
		Path:        "/api/v1/crops/{id}",
		Summary:     "Get crop",
		Tags:        []string{"Crops"},
	}, s.handleGetCrop)

	huma.Register(s.api, huma.Operation{
		OperationID:   "associateFertilizer",
		Method:        http.MethodPost,
		Path:          "/api/v1/crops/{id}/fertilizers/{fertilizerId}",
		Summary:       "Associate fertilizer with crop",
		Description:   "Links a fertilizer to a crop. Repeating an existing link succeeds without duplicating it.",
		Tags:          []string{"Crops", "Fertilizers"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAssociateFertilizer)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCropFertilizers",
		Method:      http.MethodGet,
		Path:        "/api/v1/crops/{id}/fertilizers",
		Summary:     "List crop fertilizers",
		Tags:        []string{"Crops", "Fertilizers"},
	}, s.handleListCropFertilizers)
}

// === DTOs ===

// CropResponse contains crop data in API responses.
type CropResponse struct {
	ID          int64   `json:"id" doc:"Crop ID"`
	Name        string  `json:"name" doc:"Crop name"`
	PlantedArea float64 `json:"planted_area" doc:"Planted area"`
	PlantedDate *string `json:"planted_date" doc:"Planting date (YYYY-MM-DD), null when unset"`
	HarvestDate *string `json:"harvest_date" doc:"Harvest date (YYYY-MM-DD), null when unset"`
	FarmID      int64   `json:"farm_id" doc:"ID of the owning farm"`
}

// CreateCropRequest is the request body for planting a crop.
type CreateCropRequest struct {
	ID          int64   `json:"id,omitempty" required:"false" doc:"Ignored; the server assigns ids"`
	Name        string  `json:"name" required:"false" doc:"Crop name"`
	PlantedArea float64 `json:"planted_area" required:"false" doc:"Planted area"`
	PlantedDate string  `json:"planted_date,omitempty" doc:"Planting date (YYYY-MM-DD)"`
	HarvestDate string  `json:"harvest_date,omitempty" doc:"Harvest date (YYYY-MM-DD)"`
}

// CropOutput wraps a crop response for Huma.
type CropOutput struct {
	Body CropResponse
}

// ListCropsOutput wraps a list of crops for Huma.
type ListCropsOutput struct {
	Body []CropResponse
}

// CropIDInput contains the crop path parameter.
type CropIDInput struct {
	ID int64 `path:"id" doc:"Crop ID"`
}

// SearchCropsInput contains the harvest date range.
type SearchCropsInput struct {
	Start string `query:"start" validate:"required,date" doc:"First harvest date (YYYY-MM-DD), inclusive"`
	End   string `query:"end" validate:"required,date" doc:"Last harvest date (YYYY-MM-DD), inclusive"`
}

// AssociateFertilizerInput names the crop and the fertilizer to link.
type AssociateFertilizerInput struct {
	ID           int64 `path:"id" doc:"Crop ID"`
	FertilizerID int64 `path:"fertilizerId" doc:"Fertilizer ID"`
}

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

func (r CreateCropRequest) toServiceRequest() (service.CreateCropRequest, error) {
	req := service.CreateCropRequest{Name: r.Name, PlantedArea: r.PlantedArea}
	invalid := map[string]string{}

	var err error
	if req.PlantedDate, err = parseOptionalDate(r.PlantedDate); err != nil {
		invalid["planted_date"] = "must be a date in " + domain.DateLayout + " format"
	}
	if req.HarvestDate, err = parseOptionalDate(r.HarvestDate); err != nil {
		invalid["harvest_date"] = "must be a date in " + domain.DateLayout + " format"
	}

	if len(invalid) > 0 {
		return req, domainerrors.ValidationWithDetails("validation failed", invalid)
	}
	return req, nil
}

func parseOptionalDate(s string) (domain.Date, error) {
	if s == "" {
		return domain.Date{}, nil
	}
	return domain.ParseDate(s)
}

func dateString(d domain.Date) *string {
	if d.IsZero() {
		return nil
	}
	s := d.String()
	return &s
}

func toCropResponse(c *domain.Crop) CropResponse {
	return CropResponse{
		ID:          c.ID,
		Name:        c.Name,
		PlantedArea: c.PlantedArea,
		PlantedDate: dateString(c.PlantedDate),
		HarvestDate: dateString(c.HarvestDate),
		FarmID:      c.FarmID,
	}
}

func toCropResponses(crops []*domain.Crop) []CropResponse {
	resp := make([]CropResponse, 0, len(crops))
	for _, c := range crops {
		resp = append(resp, toCropResponse(c))
	}
	return resp
}

// === Handlers ===

func (s *Server) handleListCrops(ctx context.Context, _ *struct{}) (*ListCropsOutput, error) {
	crops, err := s.services.Crop.ListCrops(ctx)
	if err != nil {
		return nil, s.unexpected(ctx, "list crops failed", err)
	}
	return &ListCropsOutput{Body: toCropResponses(crops)}, nil
}

func (s *Server) handleGetCrop(ctx context.Context, input *CropIDInput) (*CropOutput, error) {
	crop, err := s.services.Crop.GetCrop(ctx, input.ID)
	if err != nil {
		return nil, s.unexpected(ctx, "get crop failed", err)
	}
	return &CropOutput{Body: toCropResponse(crop)}, nil
}

func (s *Server) handleSearchCrops(ctx context.Context, input *SearchCropsInput) (*ListCropsOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	// Both parse: the validator checked the format.
	start, _ := domain.ParseDate(input.Start)
	end, _ := domain.ParseDate(input.End)

	crops, err := s.services.Crop.FindByHarvestDate(ctx, start, end)
	if err != nil {
		return nil, s.unexpected(ctx, "search crops failed", err)
	}
	return &ListCropsOutput{Body: toCropResponses(crops)}, nil
}

func (s *Server) handleAssociateFertilizer(ctx context.Context, input *AssociateFertilizerInput) (*MessageOutput, error) {
	msg, err := s.services.Crop.AssociateFertilizer(ctx, input.ID, input.FertilizerID)
	if err != nil {
		return nil, s.unexpected(ctx, "associate fertilizer failed", err)
	}
	return &MessageOutput{Body: MessageResponse{Message: msg}}, nil
}

func (s *Server) handleListCropFertilizers(ctx context.Context, input *CropIDInput) (*ListFertilizersOutput, error) {
	fertilizers, err := s.services.Crop.ListFertilizers(ctx, input.ID)
	if err != nil {
		return nil, s.unexpected(ctx, "list crop fertilizers failed", err)
	}
	return &ListFertilizersOutput{Body: toFertilizerResponses(fertilizers)}, nil
}
