package entities

import "time"

// RecommendationQuery asks for the best available spot for a user in a zone.
// The reservation type and window are optional narrowing inputs.
type RecommendationQuery struct {
	UserID            int
	ParkingZoneID     int
	ReservationTypeID int
	StartTime         *time.Time
	EndTime           *time.Time
}

type RecommendationResponse struct {
	ParkingSpotID     int     `json:"parking_spot_id"`
	ParkingNumber     string  `json:"parking_number"`
	ParkingSpotTypeID int     `json:"parking_spot_type_id"`
	SpotTypeName      string  `json:"spot_type_name,omitempty"`
	ParkingZoneID     int     `json:"parking_zone_id"`
	ZoneName          string  `json:"zone_name,omitempty"`
	Score             float64 `json:"score"`
}
