package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "smartpark/internal/errors"
)

// Reservation type names the pricing engine knows. Matching is
// case-insensitive; anything else is a data-integrity error.
const (
	ReservationTypeHourly  = "hourly"
	ReservationTypeDaily   = "daily"
	ReservationTypeMonthly = "monthly"
)

// ComputePrice is the pricing engine: a pure function of its inputs, with no
// clock reads or I/O, so the same arguments always produce the same price.
//
// hourly bills the real-valued (fractional) hour count times base times
// multiplier, ceiled to cents. daily and monthly bill base times multiplier
// regardless of the actual duration; the window is validated elsewhere.
func ComputePrice(typeName string, basePrice, multiplier decimal.Decimal, start, end time.Time) (decimal.Decimal, error) {
	switch strings.ToLower(typeName) {
	case ReservationTypeHourly:
		hours := decimal.NewFromFloat(end.Sub(start).Hours())
		return hours.Mul(basePrice).Mul(multiplier).RoundCeil(2), nil
	case ReservationTypeDaily:
		return basePrice.Mul(multiplier), nil
	case ReservationTypeMonthly:
		return basePrice.Mul(multiplier), nil
	default:
		return decimal.Zero, &apperrors.UnknownReservationTypeError{Name: typeName}
	}
}
