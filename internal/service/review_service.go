package service

import (
	"errors"
	"net/http"
	"time"

	"smartpark/internal/db"
	"smartpark/internal/entities"
	apperrors "smartpark/internal/errors"
	"smartpark/internal/repository"
)

var errNotReservationOwner = errors.New("review must reference the user's own reservation")

// ReviewService records the rating signal the recommender consumes. A user
// may only review their own reservations.
type ReviewService struct {
	repo *repository.ReviewRepository
}

func NewReviewService(repo *repository.ReviewRepository) *ReviewService {
	return &ReviewService{repo: repo}
}

func (s *ReviewService) Create(req *entities.ReviewRequest) (*entities.ReviewResponse, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	ownerID, found, err := s.repo.ReservationOwner(req.ReservationID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFound("reservation", req.ReservationID)
	}
	if ownerID != req.UserID {
		return nil, apperrors.NewHTTPError(http.StatusForbidden, errNotReservationOwner.Error())
	}

	review := &db.Review{
		UserID:        req.UserID,
		ReservationID: req.ReservationID,
		Rating:        req.Rating,
		Comment:       req.Comment,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(review); err != nil {
		return nil, err
	}
	return reviewToResponse(review), nil
}

func (s *ReviewService) ListByUser(userID int) ([]entities.ReviewResponse, error) {
	reviews, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	responses := make([]entities.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, *reviewToResponse(&reviews[i]))
	}
	return responses, nil
}

func reviewToResponse(r *db.Review) *entities.ReviewResponse {
	return &entities.ReviewResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		ReservationID: r.ReservationID,
		Rating:        r.Rating,
		Comment:       r.Comment,
		CreatedAt:     r.CreatedAt,
	}
}
