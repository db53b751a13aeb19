package service

import "smartpark/internal/repository"

// SpotService covers the admin-side spot operations the core depends on,
// currently just the active-flag toggle that opens or closes a spot for
// allocation and recommendation.
type SpotService struct {
	repo *repository.CatalogRepository
}

func NewSpotService(repo *repository.CatalogRepository) *SpotService {
	return &SpotService{repo: repo}
}

func (s *SpotService) SetActive(spotID int, active bool) error {
	return s.repo.SetSpotActive(spotID, active)
}
