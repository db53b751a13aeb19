package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"smartpark/internal/db"
	"smartpark/internal/entities"
	apperrors "smartpark/internal/errors"
)

// fakeReservationStore is an in-memory ReservationStore applying the same
// half-open overlap rule as the SQL index.
type fakeReservationStore struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]*db.Reservation
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{nextID: 1, byID: make(map[int]*db.Reservation)}
}

func (f *fakeReservationStore) HasConflict(spotID int, start, end time.Time, excludeID int) (int, bool, error) {
	if !end.After(start) {
		return 0, false, apperrors.ErrInvalidInterval
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byID {
		if r.ParkingSpotID != spotID || r.ID == excludeID {
			continue
		}
		if r.StartTime.Before(end) && start.Before(r.EndTime) {
			return r.ID, true, nil
		}
	}
	return 0, false, nil
}

func (f *fakeReservationStore) FilterConflicting(spotIDs []int, start, end time.Time) (map[int]bool, error) {
	if !end.After(start) {
		return nil, apperrors.ErrInvalidInterval
	}
	conflicted := make(map[int]bool)
	for _, id := range spotIDs {
		if _, found, _ := f.HasConflict(id, start, end, 0); found {
			conflicted[id] = true
		}
	}
	return conflicted, nil
}

func (f *fakeReservationStore) Create(res *db.Reservation, refFor func(id int) string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	res.ID = f.nextID
	f.nextID++
	res.BookingReference = refFor(res.ID)
	stored := *res
	f.byID[res.ID] = &stored
	return nil
}

func (f *fakeReservationStore) Update(res *db.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[res.ID]; !ok {
		return apperrors.NewNotFound("reservation", res.ID)
	}
	stored := *res
	f.byID[res.ID] = &stored
	return nil
}

func (f *fakeReservationStore) GetByID(id int) (*db.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReservationStore) Delete(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return apperrors.NewNotFound("reservation", id)
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeReservationStore) List(search entities.ReservationSearch) (*entities.ReservationsList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := &entities.ReservationsList{Limit: search.Limit, Offset: search.Offset}
	for _, r := range f.byID {
		list.Reservations = append(list.Reservations, entities.ReservationResponse{ID: r.ID})
	}
	list.Total = int64(len(list.Reservations))
	return list, nil
}

type fakeCatalog struct {
	cars      map[int]*db.Car
	users     map[int]*db.User
	spots     map[int]*db.ParkingSpot
	spotTypes map[int]*db.ParkingSpotType
	resTypes  map[int]*db.ReservationType
}

func (f *fakeCatalog) GetCar(id int) (*db.Car, error)                 { return f.cars[id], nil }
func (f *fakeCatalog) GetUser(id int) (*db.User, error)               { return f.users[id], nil }
func (f *fakeCatalog) GetParkingSpot(id int) (*db.ParkingSpot, error) { return f.spots[id], nil }

func (f *fakeCatalog) GetParkingSpotType(id int) (*db.ParkingSpotType, error) {
	return f.spotTypes[id], nil
}

func (f *fakeCatalog) GetReservationType(id int) (*db.ReservationType, error) {
	return f.resTypes[id], nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []entities.ReservationNotification
}

func (n *recordingNotifier) SendReservationNotification(p entities.ReservationNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, p)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		cars: map[int]*db.Car{
			5: {ID: 5, UserID: 50, Model: "Corsa", LicensePlate: "AA123BB", IsActive: true},
		},
		users: map[int]*db.User{
			50: {ID: 50, FirstName: "Ada", LastName: "Moreno", Email: "ada@example.com", Phone: "+355001122"},
		},
		spots: map[int]*db.ParkingSpot{
			7: {ID: 7, ParkingNumber: "A-07", ParkingSpotTypeID: 2, ParkingZoneID: 3, IsActive: true, SpotTypeName: "compact", ZoneName: "Center"},
			8: {ID: 8, ParkingNumber: "A-08", ParkingSpotTypeID: 2, ParkingZoneID: 3, IsActive: false, SpotTypeName: "compact", ZoneName: "Center"},
		},
		spotTypes: map[int]*db.ParkingSpotType{
			2: {ID: 2, Name: "compact", PriceMultiplier: d("1.5"), IsActive: true},
		},
		resTypes: map[int]*db.ReservationType{
			1: {ID: 1, Name: "hourly", Price: d("1.00")},
			2: {ID: 2, Name: "daily", Price: d("10.00")},
		},
	}
}

func ts(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func reqFor(carID, spotID, typeID int, start, end time.Time) *entities.ReservationRequest {
	return &entities.ReservationRequest{
		CarID:             carID,
		ParkingSpotID:     spotID,
		ReservationTypeID: typeID,
		StartTime:         &start,
		EndTime:           &end,
	}
}

func TestCreateReservation(t *testing.T) {
	store := newFakeReservationStore()
	notifier := &recordingNotifier{}
	svc := NewReservationService(store, testCatalog(), notifier)

	resp, err := svc.Create(reqFor(5, 7, 1, ts(8, 0), ts(13, 0)))
	require.NoError(t, err)

	require.Equal(t, 1, resp.ID)
	require.Equal(t, "active", resp.Status)
	require.True(t, resp.FinalPrice.Equal(d("7.50")), "got %s", resp.FinalPrice)
	require.Equal(t, "RESERVATION:1:5:7:202603100800:202603101300", resp.BookingReference)
	require.Equal(t, "Corsa", resp.CarModel)
	require.Equal(t, "Center", resp.ParkingZoneName)

	require.Eventually(t, func() bool { return notifier.count() == 1 }, time.Second, 5*time.Millisecond)
	notifier.mu.Lock()
	sent := notifier.sent[0]
	notifier.mu.Unlock()
	require.Equal(t, "ada@example.com", sent.UserEmail)
	require.Equal(t, "Ada Moreno", sent.UserFullName)
	require.True(t, sent.FinalPrice.Equal(d("7.50")))
}

func TestCreateRejectsInvalidIntervals(t *testing.T) {
	svc := NewReservationService(newFakeReservationStore(), testCatalog(), nil)
	start := ts(10, 0)

	tests := []struct {
		name string
		req  *entities.ReservationRequest
	}{
		{"missing start", &entities.ReservationRequest{CarID: 5, ParkingSpotID: 7, ReservationTypeID: 1, EndTime: &start}},
		{"missing end", &entities.ReservationRequest{CarID: 5, ParkingSpotID: 7, ReservationTypeID: 1, StartTime: &start}},
		{"end equals start", reqFor(5, 7, 1, start, start)},
		{"end before start", reqFor(5, 7, 1, start, ts(9, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.req)
			require.ErrorIs(t, err, apperrors.ErrInvalidInterval)
		})
	}
}

func TestCreateDistinguishesMissingReferences(t *testing.T) {
	svc := NewReservationService(newFakeReservationStore(), testCatalog(), nil)

	tests := []struct {
		name     string
		req      *entities.ReservationRequest
		resource string
	}{
		{"unknown car", reqFor(99, 7, 1, ts(8, 0), ts(9, 0)), "car"},
		{"unknown spot", reqFor(5, 99, 1, ts(8, 0), ts(9, 0)), "parking spot"},
		{"unknown reservation type", reqFor(5, 7, 99, ts(8, 0), ts(9, 0)), "reservation type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.req)
			var nf *apperrors.NotFoundError
			require.True(t, errors.As(err, &nf))
			require.Equal(t, tt.resource, nf.Resource)
		})
	}
}

func TestCreateRejectsInactiveSpot(t *testing.T) {
	svc := NewReservationService(newFakeReservationStore(), testCatalog(), nil)
	_, err := svc.Create(reqFor(5, 8, 1, ts(8, 0), ts(9, 0)))
	require.ErrorIs(t, err, apperrors.ErrSpotInactive)
}

func TestCreateRejectsOverlapAndAllowsTouching(t *testing.T) {
	svc := NewReservationService(newFakeReservationStore(), testCatalog(), nil)

	first, err := svc.Create(reqFor(5, 7, 1, ts(10, 0), ts(14, 0)))
	require.NoError(t, err)

	_, err = svc.Create(reqFor(5, 7, 1, ts(12, 0), ts(16, 0)))
	var conflict *apperrors.SlotConflictError
	require.True(t, errors.As(err, &conflict))
	require.Equal(t, first.ID, conflict.ConflictingID)

	// An end touching a start is legal under the half-open rule.
	_, err = svc.Create(reqFor(5, 7, 1, ts(14, 0), ts(16, 0)))
	require.NoError(t, err)
	_, err = svc.Create(reqFor(5, 7, 1, ts(8, 0), ts(10, 0)))
	require.NoError(t, err)
}

func TestConcurrentCreatesCommitExactlyOne(t *testing.T) {
	svc := NewReservationService(newFakeReservationStore(), testCatalog(), nil)

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(reqFor(5, 7, 1, ts(10, 0), ts(12, 0)))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var conflict *apperrors.SlotConflictError
		require.True(t, errors.As(err, &conflict))
		conflicts++
	}
	require.Equal(t, 1, successes)
	require.Equal(t, attempts-1, conflicts)
}

func TestUpdateExcludesOwnReservationAndRecomputesPrice(t *testing.T) {
	store := newFakeReservationStore()
	catalog := testCatalog()
	svc := NewReservationService(store, catalog, nil)

	created, err := svc.Create(reqFor(5, 7, 1, ts(10, 0), ts(12, 0)))
	require.NoError(t, err)

	// Shifting the window so it overlaps its own previous interval must not
	// conflict with itself.
	updated, err := svc.Update(created.ID, reqFor(5, 7, 1, ts(11, 0), ts(13, 0)))
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "RESERVATION:1:5:7:202603101100:202603101300", updated.BookingReference)

	// A rate change must flow into the updated price; it is never copied
	// from the stored record.
	catalog.resTypes[1].Price = d("2.00")
	repriced, err := svc.Update(created.ID, reqFor(5, 7, 1, ts(11, 0), ts(13, 0)))
	require.NoError(t, err)
	require.True(t, repriced.FinalPrice.Equal(d("6.00")), "got %s", repriced.FinalPrice)
}

func TestUpdateUnknownReservation(t *testing.T) {
	svc := NewReservationService(newFakeReservationStore(), testCatalog(), nil)
	_, err := svc.Update(42, reqFor(5, 7, 1, ts(10, 0), ts(12, 0)))
	var nf *apperrors.NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "reservation", nf.Resource)
}

func TestCancelReopensInterval(t *testing.T) {
	svc := NewReservationService(newFakeReservationStore(), testCatalog(), nil)

	created, err := svc.Create(reqFor(5, 7, 1, ts(10, 0), ts(12, 0)))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(created.ID))

	_, err = svc.Create(reqFor(5, 7, 1, ts(10, 0), ts(12, 0)))
	require.NoError(t, err)
}

func TestCreateSucceedsWhenNotifierUserMissing(t *testing.T) {
	catalog := testCatalog()
	delete(catalog.users, 50)
	notifier := &recordingNotifier{}
	svc := NewReservationService(newFakeReservationStore(), catalog, notifier)

	_, err := svc.Create(reqFor(5, 7, 1, ts(8, 0), ts(9, 0)))
	require.NoError(t, err)
	require.Equal(t, 0, notifier.count())
}

func TestBookingReferenceFormat(t *testing.T) {
	require.Equal(t,
		"RESERVATION:12:5:7:202603100800:202603101300",
		BookingReference(12, 5, 7, ts(8, 0), ts(13, 0)))

	// Absent timestamps leave their segments empty.
	require.Equal(t,
		"RESERVATION:12:5:7::",
		BookingReference(12, 5, 7, time.Time{}, time.Time{}))
}
