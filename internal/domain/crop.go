package domain

import "slices"

// Crop is a planting on exactly one farm.
// FarmID is set once, when the crop is created under its farm.
// FertilizerIDs is the crop's side of the crop/fertilizer association.
type Crop struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	PlantedArea   float64 `json:"planted_area"`
	PlantedDate   Date    `json:"planted_date"`
	HarvestDate   Date    `json:"harvest_date"`
	FarmID        int64   `json:"farm_id"`
	FertilizerIDs []int64 `json:"fertilizer_ids,omitempty"`
}

// HasFertilizer reports whether the fertilizer is associated with the crop.
func (c *Crop) HasFertilizer(fertilizerID int64) bool {
	return slices.Contains(c.FertilizerIDs, fertilizerID)
}

// AddFertilizer associates a fertilizer with the crop.
// Membership is a set: it returns false and changes nothing when the
// fertilizer is already associated.
func (c *Crop) AddFertilizer(fertilizerID int64) bool {
	if c.HasFertilizer(fertilizerID) {
		return false
	}
	c.FertilizerIDs = append(c.FertilizerIDs, fertilizerID)
	return true
}
