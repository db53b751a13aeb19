package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"smartpark/internal/db"
)

type ReviewRepository struct {
	DB *sql.DB
}

func NewReviewRepository(database *sql.DB) *ReviewRepository {
	return &ReviewRepository{DB: database}
}

func (r *ReviewRepository) Create(review *db.Review) error {
	query := `
		INSERT INTO reviews (user_id, reservation_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.DB.QueryRow(query,
		review.UserID, review.ReservationID, review.Rating, review.Comment, review.CreatedAt,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating review: %w", err)
	}
	return nil
}

// ReservationOwner returns the user owning the reservation (through the car),
// with found=false when the reservation does not exist.
func (r *ReviewRepository) ReservationOwner(reservationID int) (int, bool, error) {
	var userID int
	query := `
		SELECT c.user_id FROM reservations r
		JOIN cars c ON r.car_id = c.id
		WHERE r.id = $1`
	err := r.DB.QueryRow(query, reservationID).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("error querying reservation owner: %w", err)
	}
	return userID, true, nil
}

func (r *ReviewRepository) ListByUser(userID int) ([]db.Review, error) {
	query := `
		SELECT id, user_id, reservation_id, rating, comment, created_at
		FROM reviews WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing reviews for user %d: %w", userID, err)
	}
	defer rows.Close()

	var reviews []db.Review
	for rows.Next() {
		var rev db.Review
		if err := rows.Scan(&rev.ID, &rev.UserID, &rev.ReservationID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning review: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reviews: %w", err)
	}
	return reviews, nil
}
