package entities

import "time"

type ReviewRequest struct {
	UserID        int    `json:"user_id"`
	ReservationID int    `json:"reservation_id"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
}

type ReviewResponse struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	ReservationID int       `json:"reservation_id"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
