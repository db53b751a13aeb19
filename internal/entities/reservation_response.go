package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationResponse struct {
	ID                  int             `json:"id"`
	CarID               int             `json:"car_id"`
	CarModel            string          `json:"car_model,omitempty"`
	CarLicensePlate     string          `json:"car_license_plate,omitempty"`
	UserFullName        string          `json:"user_full_name,omitempty"`
	ParkingSpotID       int             `json:"parking_spot_id"`
	ParkingSpotNumber   string          `json:"parking_spot_number,omitempty"`
	ParkingZoneName     string          `json:"parking_zone_name,omitempty"`
	ReservationTypeID   int             `json:"reservation_type_id"`
	ReservationTypeName string          `json:"reservation_type_name,omitempty"`
	StartTime           time.Time       `json:"start_time"`
	EndTime             time.Time       `json:"end_time"`
	FinalPrice          decimal.Decimal `json:"final_price"`
	BookingReference    string          `json:"booking_reference"`
	Status              string          `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
}
