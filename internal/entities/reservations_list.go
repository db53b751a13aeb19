package entities

import "time"

// ReservationSearch narrows the admin listing. Zero values mean "no filter".
type ReservationSearch struct {
	CarID             int
	ParkingSpotID     int
	ReservationTypeID int
	UserID            int
	StartFrom         *time.Time
	StartTo           *time.Time
	Status            string
	Limit             int
	Offset            int
	IncludeTotalCount bool
}

type ReservationsList struct {
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
	Reservations []ReservationResponse `json:"reservations"`
}
