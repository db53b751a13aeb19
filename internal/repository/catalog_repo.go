package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"smartpark/internal/db"
	"smartpark/internal/recommend"
)

// CatalogRepository is the read-side lookup provider for cars, users, spots,
// spot types, reservation types and the recommendation signals derived from
// reservation and review history. Row absence is reported as (nil, nil); the
// service layer decides which NotFound condition that becomes.
type CatalogRepository struct {
	DB *sql.DB
}

func NewCatalogRepository(database *sql.DB) *CatalogRepository {
	return &CatalogRepository{DB: database}
}

func (r *CatalogRepository) GetCar(id int) (*db.Car, error) {
	var car db.Car
	err := r.DB.QueryRow(
		`SELECT id, user_id, model, license_plate, is_active FROM cars WHERE id = $1`, id,
	).Scan(&car.ID, &car.UserID, &car.Model, &car.LicensePlate, &car.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying car %d: %w", id, err)
	}
	return &car, nil
}

func (r *CatalogRepository) GetUser(id int) (*db.User, error) {
	var user db.User
	err := r.DB.QueryRow(
		`SELECT id, first_name, last_name, email, phone FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user %d: %w", id, err)
	}
	return &user, nil
}

func (r *CatalogRepository) GetParkingSpot(id int) (*db.ParkingSpot, error) {
	var spot db.ParkingSpot
	query := `
		SELECT ps.id, ps.parking_number, ps.parking_spot_type_id, ps.parking_zone_id, ps.is_active,
		       pst.name, pz.name
		FROM parking_spots ps
		JOIN parking_spot_types pst ON ps.parking_spot_type_id = pst.id
		JOIN parking_zones pz ON ps.parking_zone_id = pz.id
		WHERE ps.id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&spot.ID, &spot.ParkingNumber, &spot.ParkingSpotTypeID, &spot.ParkingZoneID,
		&spot.IsActive, &spot.SpotTypeName, &spot.ZoneName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying parking spot %d: %w", id, err)
	}
	return &spot, nil
}

func (r *CatalogRepository) GetParkingSpotType(id int) (*db.ParkingSpotType, error) {
	var st db.ParkingSpotType
	err := r.DB.QueryRow(
		`SELECT id, name, price_multiplier, is_active FROM parking_spot_types WHERE id = $1`, id,
	).Scan(&st.ID, &st.Name, &st.PriceMultiplier, &st.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying parking spot type %d: %w", id, err)
	}
	return &st, nil
}

func (r *CatalogRepository) GetReservationType(id int) (*db.ReservationType, error) {
	var rt db.ReservationType
	err := r.DB.QueryRow(
		`SELECT id, name, price FROM reservation_types WHERE id = $1`, id,
	).Scan(&rt.ID, &rt.Name, &rt.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying reservation type %d: %w", id, err)
	}
	return &rt, nil
}

// ActiveSpotsInZone returns the zone's active spots in ascending id order.
// The recommendation engine relies on that order for its deterministic
// tie-break.
func (r *CatalogRepository) ActiveSpotsInZone(zoneID int) ([]db.ParkingSpot, error) {
	query := `
		SELECT ps.id, ps.parking_number, ps.parking_spot_type_id, ps.parking_zone_id, ps.is_active,
		       pst.name, pz.name
		FROM parking_spots ps
		JOIN parking_spot_types pst ON ps.parking_spot_type_id = pst.id
		JOIN parking_zones pz ON ps.parking_zone_id = pz.id
		WHERE ps.parking_zone_id = $1 AND ps.is_active
		ORDER BY ps.id`
	rows, err := r.DB.Query(query, zoneID)
	if err != nil {
		return nil, fmt.Errorf("error querying active spots in zone %d: %w", zoneID, err)
	}
	defer rows.Close()

	var spots []db.ParkingSpot
	for rows.Next() {
		var spot db.ParkingSpot
		err := rows.Scan(
			&spot.ID, &spot.ParkingNumber, &spot.ParkingSpotTypeID, &spot.ParkingZoneID,
			&spot.IsActive, &spot.SpotTypeName, &spot.ZoneName,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning parking spot: %w", err)
		}
		spots = append(spots, spot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating spots: %w", err)
	}
	return spots, nil
}

// UsedSpotIDs returns the distinct spots the user has reserved in the zone,
// joined through the cars they own.
func (r *CatalogRepository) UsedSpotIDs(userID, zoneID int) ([]int, error) {
	query := `
		SELECT DISTINCT r.parking_spot_id
		FROM reservations r
		JOIN cars c ON r.car_id = c.id
		JOIN parking_spots ps ON r.parking_spot_id = ps.id
		WHERE c.user_id = $1 AND ps.parking_zone_id = $2`
	return r.queryIDs(query, userID, zoneID)
}

// PositivelyRatedSpotIDs returns spots in the zone the user rated at or above
// minRating through reviews on their own reservations.
func (r *CatalogRepository) PositivelyRatedSpotIDs(userID, zoneID, minRating int) ([]int, error) {
	query := `
		SELECT DISTINCT res.parking_spot_id
		FROM reviews rev
		JOIN reservations res ON rev.reservation_id = res.id
		JOIN parking_spots ps ON res.parking_spot_id = ps.id
		WHERE rev.user_id = $1 AND rev.rating >= $3 AND ps.parking_zone_id = $2`
	return r.queryIDs(query, userID, zoneID, minRating)
}

// PreferredSpotTypeIDs is the union of spot types from the user's past
// reservations in the zone and from reservations they rated positively.
func (r *CatalogRepository) PreferredSpotTypeIDs(userID, zoneID, minRating int) ([]int, error) {
	query := `
		SELECT DISTINCT ps.parking_spot_type_id
		FROM reservations r
		JOIN cars c ON r.car_id = c.id
		JOIN parking_spots ps ON r.parking_spot_id = ps.id
		WHERE c.user_id = $1 AND ps.parking_zone_id = $2
		UNION
		SELECT DISTINCT ps.parking_spot_type_id
		FROM reviews rev
		JOIN reservations res ON rev.reservation_id = res.id
		JOIN parking_spots ps ON res.parking_spot_id = ps.id
		WHERE rev.user_id = $1 AND rev.rating >= $3 AND ps.parking_zone_id = $2`
	return r.queryIDs(query, userID, zoneID, minRating)
}

// FeedbackEntries builds the implicit training set: every reservation is a
// weight-1.0 observation for its user/spot pair, and every reservation the
// user rated at or above minRating adds a weight-1.5 observation.
func (r *CatalogRepository) FeedbackEntries(minRating int) ([]recommend.Interaction, error) {
	query := `
		SELECT c.user_id, r.parking_spot_id, 1.0
		FROM reservations r
		JOIN cars c ON r.car_id = c.id
		UNION ALL
		SELECT rev.user_id, res.parking_spot_id, 1.5
		FROM reviews rev
		JOIN reservations res ON rev.reservation_id = res.id
		WHERE rev.rating >= $1`
	rows, err := r.DB.Query(query, minRating)
	if err != nil {
		return nil, fmt.Errorf("error querying feedback entries: %w", err)
	}
	defer rows.Close()

	var entries []recommend.Interaction
	for rows.Next() {
		var in recommend.Interaction
		if err := rows.Scan(&in.UserID, &in.SpotID, &in.Weight); err != nil {
			return nil, fmt.Errorf("error scanning feedback entry: %w", err)
		}
		entries = append(entries, in)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating feedback entries: %w", err)
	}
	return entries, nil
}

// SetSpotActive flips a spot's active flag (admin operation).
func (r *CatalogRepository) SetSpotActive(id int, active bool) error {
	result, err := r.DB.Exec(`UPDATE parking_spots SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("error updating parking spot %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("parking spot %d not found", id)
	}
	return nil
}

func (r *CatalogRepository) queryIDs(query string, args ...interface{}) ([]int, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating ids: %w", err)
	}
	return ids, nil
}
