package service

import (
	"fmt"
	"strings"
	"time"

	"smartpark/internal/db"
	"smartpark/internal/entities"
	apperrors "smartpark/internal/errors"
	"smartpark/internal/logger"
)

const (
	statusActive   = "active"
	statusFinished = "finished"

	// Compact timestamp segment used inside booking references (yyyyMMddHHmm).
	bookingRefTimeLayout = "200601021504"
)

// ReservationStore is the persistence surface the allocation service needs:
// the availability index plus reservation CRUD.
type ReservationStore interface {
	HasConflict(spotID int, start, end time.Time, excludeID int) (int, bool, error)
	FilterConflicting(spotIDs []int, start, end time.Time) (map[int]bool, error)
	Create(res *db.Reservation, refFor func(id int) string) error
	Update(res *db.Reservation) error
	GetByID(id int) (*db.Reservation, error)
	Delete(id int) error
	List(search entities.ReservationSearch) (*entities.ReservationsList, error)
}

// CatalogStore is the read-only lookup provider for referenced entities.
type CatalogStore interface {
	GetCar(id int) (*db.Car, error)
	GetUser(id int) (*db.User, error)
	GetParkingSpot(id int) (*db.ParkingSpot, error)
	GetParkingSpotType(id int) (*db.ParkingSpotType, error)
	GetReservationType(id int) (*db.ReservationType, error)
}

// Notifier dispatches a reservation confirmation. Implementations must not
// block the caller; delivery failures are theirs to log and swallow.
type Notifier interface {
	SendReservationNotification(n entities.ReservationNotification)
}

// ReservationService turns a reservation request into a persisted,
// conflict-free, correctly priced reservation. Per request the pipeline is
// validate, price, commit; nothing is persisted unless every step succeeds.
type ReservationService struct {
	reservations ReservationStore
	catalog      CatalogStore
	notifier     Notifier
	locks        *spotLocker
	log          *logger.Entry
}

func NewReservationService(reservations ReservationStore, catalog CatalogStore, notifier Notifier) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		catalog:      catalog,
		notifier:     notifier,
		locks:        newSpotLocker(),
		log:          logger.GetLogger().WithComponent("reservation_service"),
	}
}

// resolved carries the validated references a request needs for pricing and
// notification.
type resolved struct {
	car      *db.Car
	spot     *db.ParkingSpot
	spotType *db.ParkingSpotType
	resType  *db.ReservationType
	start    time.Time
	end      time.Time
}

func (s *ReservationService) resolve(req *entities.ReservationRequest) (*resolved, error) {
	if req.StartTime == nil || req.EndTime == nil || !req.EndTime.After(*req.StartTime) {
		return nil, apperrors.ErrInvalidInterval
	}

	car, err := s.catalog.GetCar(req.CarID)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, apperrors.NewNotFound("car", req.CarID)
	}

	spot, err := s.catalog.GetParkingSpot(req.ParkingSpotID)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, apperrors.NewNotFound("parking spot", req.ParkingSpotID)
	}
	if !spot.IsActive {
		return nil, apperrors.ErrSpotInactive
	}

	spotType, err := s.catalog.GetParkingSpotType(spot.ParkingSpotTypeID)
	if err != nil {
		return nil, err
	}
	if spotType == nil {
		return nil, apperrors.NewNotFound("parking spot type", spot.ParkingSpotTypeID)
	}

	resType, err := s.catalog.GetReservationType(req.ReservationTypeID)
	if err != nil {
		return nil, err
	}
	if resType == nil {
		return nil, apperrors.NewNotFound("reservation type", req.ReservationTypeID)
	}

	return &resolved{
		car:      car,
		spot:     spot,
		spotType: spotType,
		resType:  resType,
		start:    *req.StartTime,
		end:      *req.EndTime,
	}, nil
}

// Create allocates a reservation. The per-spot lock is held across the
// conflict check and the insert so two concurrent requests for overlapping
// windows on the same spot cannot both commit.
func (s *ReservationService) Create(req *entities.ReservationRequest) (*entities.ReservationResponse, error) {
	rs, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(rs.spot.ID)
	defer s.locks.Unlock(rs.spot.ID)

	conflictingID, found, err := s.reservations.HasConflict(rs.spot.ID, rs.start, rs.end, 0)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, &apperrors.SlotConflictError{ConflictingID: conflictingID}
	}

	price, err := ComputePrice(rs.resType.Name, rs.resType.Price, rs.spotType.PriceMultiplier, rs.start, rs.end)
	if err != nil {
		return nil, err
	}

	res := &db.Reservation{
		CarID:             rs.car.ID,
		ParkingSpotID:     rs.spot.ID,
		ReservationTypeID: rs.resType.ID,
		StartTime:         rs.start,
		EndTime:           rs.end,
		FinalPrice:        price,
		Status:            statusActive,
		CreatedAt:         time.Now().UTC(),
	}
	err = s.reservations.Create(res, func(id int) string {
		return BookingReference(id, res.CarID, res.ParkingSpotID, res.StartTime, res.EndTime)
	})
	if err != nil {
		return nil, err
	}

	s.dispatchNotification(res, rs)

	return s.toResponse(res, rs), nil
}

// Update re-runs the full validate-and-price pipeline with the reservation's
// own id excluded from conflict checking. The price is always recomputed,
// never copied from the previous record, so rate changes take effect.
func (s *ReservationService) Update(id int, req *entities.ReservationRequest) (*entities.ReservationResponse, error) {
	existing, err := s.reservations.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.NewNotFound("reservation", id)
	}

	rs, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(rs.spot.ID)
	defer s.locks.Unlock(rs.spot.ID)

	conflictingID, found, err := s.reservations.HasConflict(rs.spot.ID, rs.start, rs.end, id)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, &apperrors.SlotConflictError{ConflictingID: conflictingID}
	}

	price, err := ComputePrice(rs.resType.Name, rs.resType.Price, rs.spotType.PriceMultiplier, rs.start, rs.end)
	if err != nil {
		return nil, err
	}

	existing.CarID = rs.car.ID
	existing.ParkingSpotID = rs.spot.ID
	existing.ReservationTypeID = rs.resType.ID
	existing.StartTime = rs.start
	existing.EndTime = rs.end
	existing.FinalPrice = price
	existing.BookingReference = BookingReference(existing.ID, existing.CarID, existing.ParkingSpotID, existing.StartTime, existing.EndTime)

	if err := s.reservations.Update(existing); err != nil {
		return nil, err
	}
	return s.toResponse(existing, rs), nil
}

func (s *ReservationService) GetByID(id int) (*entities.ReservationResponse, error) {
	res, err := s.reservations.GetByID(id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperrors.NewNotFound("reservation", id)
	}

	resp := &entities.ReservationResponse{
		ID:                res.ID,
		CarID:             res.CarID,
		ParkingSpotID:     res.ParkingSpotID,
		ReservationTypeID: res.ReservationTypeID,
		StartTime:         res.StartTime,
		EndTime:           res.EndTime,
		FinalPrice:        res.FinalPrice,
		BookingReference:  res.BookingReference,
		Status:            res.Status,
		CreatedAt:         res.CreatedAt,
	}

	// Display fields are best effort; the reservation itself is the answer.
	if car, err := s.catalog.GetCar(res.CarID); err == nil && car != nil {
		resp.CarModel = car.Model
		resp.CarLicensePlate = car.LicensePlate
		if user, err := s.catalog.GetUser(car.UserID); err == nil && user != nil {
			resp.UserFullName = fullName(user)
		}
	}
	if spot, err := s.catalog.GetParkingSpot(res.ParkingSpotID); err == nil && spot != nil {
		resp.ParkingSpotNumber = spot.ParkingNumber
		resp.ParkingZoneName = spot.ZoneName
	}
	if rt, err := s.catalog.GetReservationType(res.ReservationTypeID); err == nil && rt != nil {
		resp.ReservationTypeName = rt.Name
	}
	return resp, nil
}

// Cancel deletes the reservation, re-opening its interval.
func (s *ReservationService) Cancel(id int) error {
	existing, err := s.reservations.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NewNotFound("reservation", id)
	}
	return s.reservations.Delete(id)
}

func (s *ReservationService) List(search entities.ReservationSearch) (*entities.ReservationsList, error) {
	return s.reservations.List(search)
}

// dispatchNotification hands the flattened confirmation payload to the
// notifier. Failures anywhere in here never fail the reservation.
func (s *ReservationService) dispatchNotification(res *db.Reservation, rs *resolved) {
	if s.notifier == nil {
		return
	}
	user, err := s.catalog.GetUser(rs.car.UserID)
	if err != nil || user == nil {
		s.log.WithFields(logger.Fields{"reservation_id": res.ID, "user_id": rs.car.UserID}).
			Warn("skipping confirmation dispatch, user lookup failed")
		return
	}
	s.notifier.SendReservationNotification(entities.ReservationNotification{
		ReservationID:     res.ID,
		BookingReference:  res.BookingReference,
		UserFullName:      fullName(user),
		UserEmail:         user.Email,
		UserPhone:         user.Phone,
		CarModel:          rs.car.Model,
		CarLicensePlate:   rs.car.LicensePlate,
		ParkingSpotNumber: rs.spot.ParkingNumber,
		ParkingZoneName:   rs.spot.ZoneName,
		ReservationType:   rs.resType.Name,
		StartTime:         res.StartTime,
		EndTime:           res.EndTime,
		FinalPrice:        res.FinalPrice,
	})
}

func (s *ReservationService) toResponse(res *db.Reservation, rs *resolved) *entities.ReservationResponse {
	return &entities.ReservationResponse{
		ID:                  res.ID,
		CarID:               res.CarID,
		CarModel:            rs.car.Model,
		CarLicensePlate:     rs.car.LicensePlate,
		ParkingSpotID:       res.ParkingSpotID,
		ParkingSpotNumber:   rs.spot.ParkingNumber,
		ParkingZoneName:     rs.spot.ZoneName,
		ReservationTypeID:   res.ReservationTypeID,
		ReservationTypeName: rs.resType.Name,
		StartTime:           res.StartTime,
		EndTime:             res.EndTime,
		FinalPrice:          res.FinalPrice,
		BookingReference:    res.BookingReference,
		Status:              res.Status,
		CreatedAt:           res.CreatedAt,
	}
}

// BookingReference derives the human-auditable reference from the committed
// reservation's identity and window. An absent timestamp leaves its segment
// empty; consumers parse the fixed five-colon shape.
func BookingReference(id, carID, spotID int, start, end time.Time) string {
	return fmt.Sprintf("RESERVATION:%d:%d:%d:%s:%s", id, carID, spotID, compactTime(start), compactTime(end))
}

func compactTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(bookingRefTimeLayout)
}

func fullName(u *db.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
