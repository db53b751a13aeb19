package db

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type Car struct {
	ID           int
	UserID       int
	Model        string
	LicensePlate string
	IsActive     bool
}

type ParkingZone struct {
	ID   int
	Name string
}

type ParkingSpotType struct {
	ID              int
	Name            string
	PriceMultiplier decimal.Decimal
	IsActive        bool
}

type ParkingSpot struct {
	ID                int
	ParkingNumber     string
	ParkingSpotTypeID int
	ParkingZoneID     int
	IsActive          bool

	// Display fields resolved by joins.
	SpotTypeName string
	ZoneName     string
}

type ReservationType struct {
	ID    int
	Name  string
	Price decimal.Decimal
}

type Reservation struct {
	ID                int
	CarID             int
	ParkingSpotID     int
	ReservationTypeID int
	StartTime         time.Time
	EndTime           time.Time
	FinalPrice        decimal.Decimal
	BookingReference  string
	Status            string
	CreatedAt         time.Time
}

type Review struct {
	ID            int
	UserID        int
	ReservationID int
	Rating        int
	Comment       string
	CreatedAt     time.Time
}

type Admin struct {
	ID           int
	Email        string
	PasswordHash string
}
