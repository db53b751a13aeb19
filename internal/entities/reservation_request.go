package entities

import "time"

// ReservationRequest is the allocation input. Start/end are pointers so a
// missing timestamp is distinguishable from a zero one and can be rejected
// as an invalid interval rather than silently booked.
type ReservationRequest struct {
	CarID             int        `json:"car_id"`
	ParkingSpotID     int        `json:"parking_spot_id"`
	ReservationTypeID int        `json:"reservation_type_id"`
	StartTime         *time.Time `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
}
