package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"smartpark/internal/db"
	"smartpark/internal/entities"
	apperrors "smartpark/internal/errors"
)

const pqExclusionViolation = "23P01"

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

// HasConflict reports whether any reservation on the spot overlaps the
// half-open window [start, end). Touching endpoints do not conflict. The
// reservation identified by excludeID (0 for none) is ignored so an in-place
// edit does not collide with itself. Rows missing either timestamp never
// count as conflicts; they are an invalid state rejected upstream.
func (r *ReservationRepository) HasConflict(spotID int, start, end time.Time, excludeID int) (int, bool, error) {
	if !end.After(start) {
		return 0, false, apperrors.ErrInvalidInterval
	}

	query := `
		SELECT id FROM reservations
		WHERE parking_spot_id = $1
		  AND id <> $2
		  AND start_time IS NOT NULL AND end_time IS NOT NULL
		  AND start_time < $4 AND $3 < end_time
		ORDER BY start_time
		LIMIT 1`

	var conflictingID int
	err := r.DB.QueryRow(query, spotID, excludeID, start, end).Scan(&conflictingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("error checking reservation conflicts: %w", err)
	}
	return conflictingID, true, nil
}

// FilterConflicting returns the subset of spotIDs with at least one
// reservation overlapping [start, end). One range query, not per-spot
// probes.
func (r *ReservationRepository) FilterConflicting(spotIDs []int, start, end time.Time) (map[int]bool, error) {
	if !end.After(start) {
		return nil, apperrors.ErrInvalidInterval
	}
	if len(spotIDs) == 0 {
		return map[int]bool{}, nil
	}

	query := `
		SELECT DISTINCT parking_spot_id FROM reservations
		WHERE parking_spot_id = ANY($1)
		  AND start_time IS NOT NULL AND end_time IS NOT NULL
		  AND start_time < $3 AND $2 < end_time`

	rows, err := r.DB.Query(query, pq.Array(spotIDs), start, end)
	if err != nil {
		return nil, fmt.Errorf("error querying conflicting spots: %w", err)
	}
	defer rows.Close()

	conflicted := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning conflicting spot id: %w", err)
		}
		conflicted[id] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating conflicting spots: %w", err)
	}
	return conflicted, nil
}

// Create persists the reservation and, in the same transaction, writes its
// booking reference once the generated id is known. refFor derives the
// reference from that id. The exclusion constraint backs up the service's
// per-spot lock; a violation surfaces as the same SlotConflictError the
// pre-check raises.
func (r *ReservationRepository) Create(res *db.Reservation, refFor func(id int) string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting reservation transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO reservations
		(car_id, parking_spot_id, reservation_type_id, start_time, end_time, final_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	err = tx.QueryRow(insert,
		res.CarID,
		res.ParkingSpotID,
		res.ReservationTypeID,
		res.StartTime,
		res.EndTime,
		res.FinalPrice,
		res.Status,
		res.CreatedAt,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return translateConflict(err)
	}

	res.BookingReference = refFor(res.ID)
	if _, err := tx.Exec(`UPDATE reservations SET booking_reference = $1 WHERE id = $2`, res.BookingReference, res.ID); err != nil {
		return fmt.Errorf("error writing booking reference: %w", err)
	}

	return tx.Commit()
}

// Update rewrites the mutable fields of an existing reservation, including
// its recomputed price and re-derived booking reference.
func (r *ReservationRepository) Update(res *db.Reservation) error {
	query := `
		UPDATE reservations
		SET car_id = $1, parking_spot_id = $2, reservation_type_id = $3,
		    start_time = $4, end_time = $5, final_price = $6, booking_reference = $7
		WHERE id = $8`
	result, err := r.DB.Exec(query,
		res.CarID, res.ParkingSpotID, res.ReservationTypeID,
		res.StartTime, res.EndTime, res.FinalPrice, res.BookingReference, res.ID)
	if err != nil {
		return translateConflict(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewNotFound("reservation", res.ID)
	}
	return nil
}

func (r *ReservationRepository) GetByID(id int) (*db.Reservation, error) {
	var res db.Reservation
	query := `
		SELECT id, car_id, parking_spot_id, reservation_type_id, start_time, end_time,
		       final_price, booking_reference, status, created_at
		FROM reservations WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&res.ID, &res.CarID, &res.ParkingSpotID, &res.ReservationTypeID,
		&res.StartTime, &res.EndTime, &res.FinalPrice, &res.BookingReference,
		&res.Status, &res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying reservation %d: %w", id, err)
	}
	return &res, nil
}

// Delete removes the reservation, re-opening its interval for other bookings.
func (r *ReservationRepository) Delete(id int) error {
	result, err := r.DB.Exec(`DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting reservation %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewNotFound("reservation", id)
	}
	return nil
}

// List returns reservations with resolved display fields, filtered and
// paginated per the search object.
func (r *ReservationRepository) List(search entities.ReservationSearch) (*entities.ReservationsList, error) {
	where := " WHERE 1=1"
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if search.CarID != 0 {
		where += " AND r.car_id = " + arg(search.CarID)
	}
	if search.ParkingSpotID != 0 {
		where += " AND r.parking_spot_id = " + arg(search.ParkingSpotID)
	}
	if search.ReservationTypeID != 0 {
		where += " AND r.reservation_type_id = " + arg(search.ReservationTypeID)
	}
	if search.UserID != 0 {
		where += " AND c.user_id = " + arg(search.UserID)
	}
	if search.StartFrom != nil {
		where += " AND r.start_time >= " + arg(*search.StartFrom)
	}
	if search.StartTo != nil {
		where += " AND r.start_time <= " + arg(*search.StartTo)
	}
	if search.Status != "" {
		where += " AND r.status = " + arg(search.Status)
	}

	fromClause := `
		FROM reservations r
		JOIN cars c ON r.car_id = c.id
		JOIN users u ON c.user_id = u.id
		JOIN parking_spots ps ON r.parking_spot_id = ps.id
		JOIN parking_zones pz ON ps.parking_zone_id = pz.id
		JOIN reservation_types rt ON r.reservation_type_id = rt.id`

	list := &entities.ReservationsList{Limit: search.Limit, Offset: search.Offset}

	if search.IncludeTotalCount {
		countQuery := "SELECT COUNT(*)" + fromClause + where
		if err := r.DB.QueryRow(countQuery, args...).Scan(&list.Total); err != nil {
			return nil, fmt.Errorf("error counting reservations: %w", err)
		}
	}

	query := `
		SELECT r.id, r.car_id, c.model, c.license_plate,
		       TRIM(u.first_name || ' ' || u.last_name),
		       r.parking_spot_id, ps.parking_number, pz.name,
		       r.reservation_type_id, rt.name,
		       r.start_time, r.end_time, r.final_price, r.booking_reference,
		       r.status, r.created_at` +
		fromClause + where + " ORDER BY r.start_time DESC, r.id DESC"
	if search.Limit > 0 {
		query += " LIMIT " + arg(search.Limit)
	}
	if search.Offset > 0 {
		query += " OFFSET " + arg(search.Offset)
	}

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing reservations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var res entities.ReservationResponse
		err := rows.Scan(
			&res.ID, &res.CarID, &res.CarModel, &res.CarLicensePlate,
			&res.UserFullName,
			&res.ParkingSpotID, &res.ParkingSpotNumber, &res.ParkingZoneName,
			&res.ReservationTypeID, &res.ReservationTypeName,
			&res.StartTime, &res.EndTime, &res.FinalPrice, &res.BookingReference,
			&res.Status, &res.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning reservation row: %w", err)
		}
		list.Reservations = append(list.Reservations, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reservations: %w", err)
	}
	return list, nil
}

// GetActiveReservationIDsPastEndTime finds active reservations whose end time
// has already passed.
func (r *ReservationRepository) GetActiveReservationIDsPastEndTime() ([]int, error) {
	query := `SELECT id FROM reservations WHERE status = 'active' AND end_time < NOW()`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying active reservations past end time: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning reservation ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

func (r *ReservationRepository) UpdateReservationStatuses(ids []int, newStatus string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.DB.Exec(`UPDATE reservations SET status = $1 WHERE id = ANY($2)`, newStatus, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("error updating reservation statuses: %w", err)
	}
	return result.RowsAffected()
}

// translateConflict maps a Postgres exclusion violation on the reservations
// overlap constraint to the domain's SlotConflictError, so a race detected at
// commit time looks identical to one caught by the pre-check.
func translateConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation {
		return &apperrors.SlotConflictError{}
	}
	return fmt.Errorf("error persisting reservation: %w", err)
}
