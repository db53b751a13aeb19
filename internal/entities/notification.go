package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationNotification is the flattened confirmation payload handed to the
// dispatcher once a reservation commits. Display fields are resolved at
// commit time so the dispatcher needs no further lookups.
type ReservationNotification struct {
	ReservationID     int
	BookingReference  string
	UserFullName      string
	UserEmail         string
	UserPhone         string
	CarModel          string
	CarLicensePlate   string
	ParkingSpotNumber string
	ParkingZoneName   string
	ReservationType   string
	StartTime         time.Time
	EndTime           time.Time
	FinalPrice        decimal.Decimal
}
