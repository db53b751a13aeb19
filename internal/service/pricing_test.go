package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	apperrors "smartpark/internal/errors"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestComputePrice(t *testing.T) {
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		typeName   string
		basePrice  string
		multiplier string
		duration   time.Duration
		want       string
	}{
		{
			name:       "hourly five hours",
			typeName:   "hourly",
			basePrice:  "1.00",
			multiplier: "1.5",
			duration:   5 * time.Hour,
			want:       "7.50",
		},
		{
			name:       "hourly fractional hours are not rounded before multiplying",
			typeName:   "hourly",
			basePrice:  "2.00",
			multiplier: "1",
			duration:   90 * time.Minute,
			want:       "3.00",
		},
		{
			name:       "hourly result ceils to cents",
			typeName:   "hourly",
			basePrice:  "1.00",
			multiplier: "1",
			duration:   100 * time.Minute, // 1.666... hours -> 1.67
			want:       "1.67",
		},
		{
			name:       "daily ignores duration",
			typeName:   "daily",
			basePrice:  "10.00",
			multiplier: "0.8",
			duration:   37 * time.Hour,
			want:       "8.00",
		},
		{
			name:       "monthly ignores duration",
			typeName:   "monthly",
			basePrice:  "100.00",
			multiplier: "1.3",
			duration:   24 * time.Hour,
			want:       "130.00",
		},
		{
			name:       "type name is case-insensitive",
			typeName:   "HoUrLy",
			basePrice:  "1.00",
			multiplier: "1.5",
			duration:   5 * time.Hour,
			want:       "7.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputePrice(tt.typeName, d(tt.basePrice), d(tt.multiplier), base, base.Add(tt.duration))
			require.NoError(t, err)
			require.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestComputePriceUnknownType(t *testing.T) {
	_, err := ComputePrice("weekly", d("1.00"), d("1"), time.Now(), time.Now().Add(time.Hour))
	var ut *apperrors.UnknownReservationTypeError
	require.True(t, errors.As(err, &ut))
	require.Equal(t, "weekly", ut.Name)
}

func TestComputePriceIsDeterministic(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(135 * time.Minute)
	first, err := ComputePrice("hourly", d("3.33"), d("1.25"), start, end)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := ComputePrice("hourly", d("3.33"), d("1.25"), start, end)
		require.NoError(t, err)
		require.True(t, first.Equal(again))
	}
}
