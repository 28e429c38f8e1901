package booking_controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/models/booking_models"
	"github.com/joy095/roombooking/models/room_models"
	"github.com/joy095/roombooking/models/shared_models"
	"github.com/joy095/roombooking/models/slot_models"
	"github.com/joy095/roombooking/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitLoggers()
	logger.InfoLogger.SetOutput(io.Discard)
	logger.WarnLogger.SetOutput(io.Discard)
	logger.ErrorLogger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// fakeLedger mirrors the store's admission rules in memory. The mutex makes
// the check-and-insert atomic, like the transaction in the real store.
type fakeLedger struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*booking_models.Booking
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{bookings: make(map[uuid.UUID]*booking_models.Booking)}
}

func (f *fakeLedger) CreatePending(ctx context.Context, b *booking_models.Booking) (*booking_models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.bookings {
		if !existing.Status.Active() || !existing.BookingDate.Equal(b.BookingDate) {
			continue
		}
		if existing.UserID == b.UserID {
			return nil, booking_models.ErrDailyCapExceeded
		}
		if existing.RoomID == b.RoomID && existing.SlotID == b.SlotID {
			return nil, booking_models.ErrSlotConflict
		}
	}

	stored := *b
	stored.ID = uuid.New()
	stored.Status = shared_models.BookingStatusPending
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.bookings[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (f *fakeLedger) BookedSlotIDs(ctx context.Context, roomID int32, date time.Time) ([]int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := []int32{}
	for _, b := range f.bookings {
		if b.RoomID == roomID && b.BookingDate.Equal(date) && b.Status.Active() {
			ids = append(ids, b.SlotID)
		}
	}
	return ids, nil
}

func (f *fakeLedger) ListUserActiveOnDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := []uuid.UUID{}
	for _, b := range f.bookings {
		if b.UserID == userID && b.BookingDate.Equal(date) && b.Status.Active() {
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

func (f *fakeLedger) HasActiveOnDate(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	ids, _ := f.ListUserActiveOnDate(ctx, userID, date)
	return len(ids) > 0, nil
}

func (f *fakeLedger) ListUserPending(ctx context.Context, userID uuid.UUID) ([]booking_models.UserBookingView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	views := []booking_models.UserBookingView{}
	for _, b := range f.bookings {
		if b.UserID == userID && b.Status == shared_models.BookingStatusPending {
			views = append(views, booking_models.UserBookingView{
				BookingID:   b.ID,
				RoomID:      b.RoomID,
				SlotID:      b.SlotID,
				Status:      b.Status,
				BookingDate: b.BookingDate,
			})
		}
	}
	return views, nil
}

func (f *fakeLedger) ListUserHistory(ctx context.Context, userID uuid.UUID) ([]booking_models.UserBookingView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	views := []booking_models.UserBookingView{}
	for _, b := range f.bookings {
		if b.UserID == userID && b.Status.Terminal() {
			views = append(views, booking_models.UserBookingView{
				BookingID:   b.ID,
				RoomID:      b.RoomID,
				SlotID:      b.SlotID,
				Status:      b.Status,
				BookingDate: b.BookingDate,
			})
		}
	}
	return views, nil
}

func (f *fakeLedger) ListPendingRequests(ctx context.Context) ([]booking_models.PendingRequestView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	views := []booking_models.PendingRequestView{}
	for _, b := range f.bookings {
		if b.Status == shared_models.BookingStatusPending {
			views = append(views, booking_models.PendingRequestView{
				BookingID:   b.ID,
				Status:      b.Status,
				BookingDate: b.BookingDate,
			})
		}
	}
	return views, nil
}

func (f *fakeLedger) GlobalHistory(ctx context.Context) ([]booking_models.HistoryEntry, error) {
	return []booking_models.HistoryEntry{}, nil
}

func (f *fakeLedger) GetBookingByID(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if b, ok := f.bookings[id]; ok {
		out := *b
		return &out, nil
	}
	return nil, booking_models.ErrBookingNotFound
}

func (f *fakeLedger) ListBookingEvents(ctx context.Context, bookingID uuid.UUID) ([]booking_models.BookingEvent, error) {
	return []booking_models.BookingEvent{}, nil
}

type fakeRooms struct {
	rooms map[int32]*room_models.Room
}

func (f *fakeRooms) GetRoomByID(ctx context.Context, id int32) (*room_models.Room, error) {
	if r, ok := f.rooms[id]; ok {
		return r, nil
	}
	return nil, room_models.ErrRoomNotFound
}

type fakeSlots struct {
	slots map[int32]*slot_models.TimeSlot
}

func (f *fakeSlots) GetTimeSlotByID(ctx context.Context, id int32) (*slot_models.TimeSlot, error) {
	if s, ok := f.slots[id]; ok {
		return s, nil
	}
	return nil, slot_models.ErrSlotNotFound
}

func newTestService() (*BookingService, *fakeLedger) {
	ledger := newFakeLedger()
	rooms := &fakeRooms{rooms: map[int32]*room_models.Room{
		1: {ID: 1, Name: "Lab A", Capacity: 20, Status: room_models.RoomStatusFree},
		2: {ID: 2, Name: "Lab B", Capacity: 30, Status: room_models.RoomStatusFree},
		3: {ID: 3, Name: "Storage", Capacity: 5, Status: room_models.RoomStatusDisabled},
	}}
	slots := &fakeSlots{slots: map[int32]*slot_models.TimeSlot{
		1: {ID: 1, Name: "Morning", StartTime: "08:00", EndTime: "10:00"},
		2: {ID: 2, Name: "Afternoon", StartTime: "13:00", EndTime: "15:00"},
	}}
	return NewBookingService(ledger, rooms, slots), ledger
}

func day(offset int) time.Time {
	return utils.CivilDate(time.Now().AddDate(0, 0, offset))
}

func TestRequestBookingCreatesPending(t *testing.T) {
	svc, _ := newTestService()

	b, err := svc.RequestBooking(context.Background(), uuid.New(), 1, 1, day(1), "group study")
	require.NoError(t, err)
	assert.Equal(t, shared_models.BookingStatusPending, b.Status)
	assert.NotEqual(t, uuid.Nil, b.ID)
	require.NotNil(t, b.Reason)
	assert.Equal(t, "group study", *b.Reason)
}

func TestRequestBookingValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.RequestBooking(ctx, uuid.Nil, 1, 1, day(1), "")
	assert.ErrorIs(t, err, booking_models.ErrInvalidRequest)

	_, err = svc.RequestBooking(ctx, uuid.New(), 99, 1, day(1), "")
	assert.ErrorIs(t, err, booking_models.ErrInvalidRequest)

	_, err = svc.RequestBooking(ctx, uuid.New(), 1, 99, day(1), "")
	assert.ErrorIs(t, err, booking_models.ErrInvalidRequest)

	_, err = svc.RequestBooking(ctx, uuid.New(), 1, 1, time.Time{}, "")
	assert.ErrorIs(t, err, booking_models.ErrInvalidRequest)
}

func TestRequestBookingDisabledRoom(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.RequestBooking(context.Background(), uuid.New(), 3, 1, day(1), "")
	assert.ErrorIs(t, err, booking_models.ErrRoomUnavailable)
}

func TestSlotExclusivity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.RequestBooking(ctx, uuid.New(), 1, 1, day(1), "")
	require.NoError(t, err)

	// Same room, slot and date is refused regardless of requester.
	_, err = svc.RequestBooking(ctx, uuid.New(), 1, 1, day(1), "")
	assert.ErrorIs(t, err, booking_models.ErrSlotConflict)

	// Another slot on the same room and date is fine.
	_, err = svc.RequestBooking(ctx, uuid.New(), 1, 2, day(1), "")
	assert.NoError(t, err)

	// Same slot on a different date is fine.
	_, err = svc.RequestBooking(ctx, uuid.New(), 1, 1, day(2), "")
	assert.NoError(t, err)
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	svc, ledger := newTestService()
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, uuid.New(), 1, 1, day(1), "")
	require.NoError(t, err)

	_, err = svc.RequestBooking(ctx, uuid.New(), 1, 1, day(1), "")
	require.ErrorIs(t, err, booking_models.ErrSlotConflict)

	// Once the holder's booking is terminal the slot opens up again.
	ledger.mu.Lock()
	ledger.bookings[b.ID].Status = shared_models.BookingStatusCancelled
	ledger.mu.Unlock()

	_, err = svc.RequestBooking(ctx, uuid.New(), 1, 1, day(1), "")
	assert.NoError(t, err)
}

func TestDailyCap(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	user := uuid.New()

	_, err := svc.RequestBooking(ctx, user, 1, 1, day(1), "")
	require.NoError(t, err)

	// A second booking on the same date is refused even for another room.
	_, err = svc.RequestBooking(ctx, user, 2, 2, day(1), "")
	assert.ErrorIs(t, err, booking_models.ErrDailyCapExceeded)

	// The next day is fine.
	_, err = svc.RequestBooking(ctx, user, 2, 2, day(2), "")
	assert.NoError(t, err)
}

func TestConcurrentSlotRequestsExactlyOneWins(t *testing.T) {
	svc, _ := newTestService()

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RequestBooking(context.Background(), uuid.New(), 1, 1, day(1), "")
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, booking_models.ErrSlotConflict)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestConcurrentDailyCapExactlyOneWins(t *testing.T) {
	svc, _ := newTestService()
	user := uuid.New()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)

	// Same user races for distinct rooms and slots on one date.
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			roomID := int32(1 + i%2)
			slotID := int32(1 + i%2)
			_, errs[i] = svc.RequestBooking(context.Background(), user, roomID, slotID, day(1), "")
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		// The loser sees the daily cap, or the slot conflict when it raced
		// for the exact room and slot the winner took.
		if !errors.Is(err, booking_models.ErrDailyCapExceeded) && !errors.Is(err, booking_models.ErrSlotConflict) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestAvailability(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	booked, err := svc.Availability(ctx, 1, day(1))
	require.NoError(t, err)
	assert.Empty(t, booked)

	_, err = svc.RequestBooking(ctx, uuid.New(), 1, 2, day(1), "")
	require.NoError(t, err)

	booked, err = svc.Availability(ctx, 1, day(1))
	require.NoError(t, err)
	assert.Equal(t, []int32{2}, booked)

	_, err = svc.Availability(ctx, 99, day(1))
	assert.ErrorIs(t, err, booking_models.ErrInvalidRequest)
}

// identityMiddleware stands in for the JWT middleware in handler tests.
func identityMiddleware(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Set("role", role)
		c.Next()
	}
}

func newTestRouter(ctrl *BookingController, userID uuid.UUID, role string) *gin.Engine {
	r := gin.New()
	r.Use(identityMiddleware(userID, role))
	r.POST("/bookings", ctrl.CreateBooking)
	r.GET("/bookings/user/:userId/today", ctrl.HasBookingToday)
	r.GET("/bookings/requests", ctrl.PendingRequests)
	return r
}

func postBooking(t *testing.T, r *gin.Engine, roomID, slotID int32, date string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(CreateBookingRequest{
		RoomID:      roomID,
		SlotID:      slotID,
		BookingDate: date,
		Reason:      "meeting",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBookingHandler(t *testing.T) {
	svc, ledger := newTestService()
	userA := uuid.New()
	userB := uuid.New()
	date := day(1).Format("2006-01-02")

	w := postBooking(t, newTestRouter(NewBookingController(svc, ledger, ledger), userA, shared_models.RoleStudent), 1, 1, date)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Second requester hits the slot conflict.
	w = postBooking(t, newTestRouter(NewBookingController(svc, ledger, ledger), userB, shared_models.RoleStudent), 1, 1, date)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "SLOT_CONFLICT")

	// Same requester, another room, same date: daily cap.
	w = postBooking(t, newTestRouter(NewBookingController(svc, ledger, ledger), userA, shared_models.RoleStudent), 2, 2, date)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "DAILY_CAP_EXCEEDED")

	// Malformed date.
	w = postBooking(t, newTestRouter(NewBookingController(svc, ledger, ledger), userA, shared_models.RoleStudent), 1, 1, "28-08-2026")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHasBookingTodayHandler(t *testing.T) {
	svc, ledger := newTestService()
	user := uuid.New()
	ctrl := NewBookingController(svc, ledger, ledger)

	_, err := svc.RequestBooking(context.Background(), user, 1, 1, time.Now(), "")
	require.NoError(t, err)

	r := newTestRouter(ctrl, user, shared_models.RoleStudent)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/bookings/user/%s/today", user), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hasBooking":true`)

	// Another student may not read someone else's bookings.
	other := uuid.New()
	r = newTestRouter(ctrl, other, shared_models.RoleStudent)
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/bookings/user/%s/today", user), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// An approver may.
	r = newTestRouter(ctrl, other, shared_models.RoleLecturer)
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/bookings/user/%s/today", user), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetBookingHandler(t *testing.T) {
	svc, ledger := newTestService()
	ctrl := NewBookingController(svc, ledger, ledger)
	owner := uuid.New()

	b, err := svc.RequestBooking(context.Background(), owner, 1, 1, day(1), "")
	require.NoError(t, err)

	get := func(callerID uuid.UUID, role, id string) *httptest.ResponseRecorder {
		r := gin.New()
		r.Use(identityMiddleware(callerID, role))
		r.GET("/bookings/:id", ctrl.GetBooking)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings/"+id, nil))
		return w
	}

	// The owner sees their booking together with its audit records.
	w := get(owner, shared_models.RoleStudent, b.ID.String())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), b.ID.String())
	assert.Contains(t, w.Body.String(), `"events"`)

	// A stranger does not.
	w = get(uuid.New(), shared_models.RoleStudent, b.ID.String())
	assert.Equal(t, http.StatusForbidden, w.Code)

	// An approver does.
	w = get(uuid.New(), shared_models.RoleLecturer, b.ID.String())
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(owner, shared_models.RoleStudent, uuid.New().String())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(owner, shared_models.RoleStudent, "not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPendingRequestsRequiresApprover(t *testing.T) {
	svc, ledger := newTestService()
	ctrl := NewBookingController(svc, ledger, ledger)

	r := newTestRouter(ctrl, uuid.New(), shared_models.RoleStudent)
	req := httptest.NewRequest(http.MethodGet, "/bookings/requests", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = newTestRouter(ctrl, uuid.New(), shared_models.RoleStaff)
	req = httptest.NewRequest(http.MethodGet, "/bookings/requests", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
