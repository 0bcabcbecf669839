package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reservio/backend/internal/domain"
	"reservio/backend/internal/service/scheduling"
	"reservio/backend/internal/store"
)

var (
	testProviderID = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	testServiceID  = uuid.MustParse("00000000-0000-0000-0000-0000000000b2")
	testBookingID  = uuid.MustParse("00000000-0000-0000-0000-0000000000c3")
)

type fakeSchedulingService struct {
	createFn     func(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error)
	getFn        func(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	changeFn     func(ctx context.Context, in scheduling.ChangeStatusInput) (domain.Booking, error)
	rescheduleFn func(ctx context.Context, in scheduling.RescheduleInput) (domain.Booking, error)
	statsFn      func(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd *time.Time) (scheduling.BookingStats, error)
}

func (f *fakeSchedulingService) CreateBooking(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error) {
	if f.createFn == nil {
		panic("CreateBooking not configured")
	}
	return f.createFn(ctx, in)
}

func (f *fakeSchedulingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	if f.getFn == nil {
		panic("GetBooking not configured")
	}
	return f.getFn(ctx, bookingID)
}

func (f *fakeSchedulingService) ChangeStatus(ctx context.Context, in scheduling.ChangeStatusInput) (domain.Booking, error) {
	if f.changeFn == nil {
		panic("ChangeStatus not configured")
	}
	return f.changeFn(ctx, in)
}

func (f *fakeSchedulingService) Reschedule(ctx context.Context, in scheduling.RescheduleInput) (domain.Booking, error) {
	if f.rescheduleFn == nil {
		panic("Reschedule not configured")
	}
	return f.rescheduleFn(ctx, in)
}

func (f *fakeSchedulingService) GetStats(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd *time.Time) (scheduling.BookingStats, error) {
	if f.statsFn == nil {
		panic("GetStats not configured")
	}
	return f.statsFn(ctx, providerID, windowStart, windowEnd)
}

type fakeAvailability struct {
	queryFn func(ctx context.Context, providerID uuid.UUID, date time.Time, serviceID uuid.UUID) (scheduling.AvailabilityResult, error)
}

func (f *fakeAvailability) QueryAvailability(ctx context.Context, providerID uuid.UUID, date time.Time, serviceID uuid.UUID) (scheduling.AvailabilityResult, error) {
	if f.queryFn == nil {
		panic("QueryAvailability not configured")
	}
	return f.queryFn(ctx, providerID, date, serviceID)
}

type recordingInvalidator struct {
	providerIDs []uuid.UUID
	dates       []time.Time
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, providerID uuid.UUID, dates ...time.Time) {
	r.providerIDs = append(r.providerIDs, providerID)
	r.dates = append(r.dates, dates...)
}

func newTestRouter(svc *fakeSchedulingService, avail *fakeAvailability, inv availabilityInvalidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	server := NewBookingServer(svc, avail, inv, log)
	return NewRouter(server, log)
}

func sampleBooking() domain.Booking {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return domain.Booking{
		ID:             testBookingID,
		ProviderID:     testProviderID,
		ServiceID:      testServiceID,
		CustomerUserID: "u1",
		StartTime:      start,
		EndTime:        start.Add(30 * time.Minute),
		Status:         domain.BookingStatusPending,
		Price:          25,
		Currency:       "USD",
		CreatedAt:      start,
		UpdatedAt:      start,
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBooking_ReturnsCreatedAndInvalidates(t *testing.T) {
	var gotInput scheduling.CreateBookingInput
	svc := &fakeSchedulingService{
		createFn: func(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error) {
			gotInput = in
			return sampleBooking(), nil
		},
	}
	inv := &recordingInvalidator{}
	r := newTestRouter(svc, &fakeAvailability{}, inv)

	w := doJSON(t, r, http.MethodPost, "/api/bookings", gin.H{
		"provider_id":      testProviderID.String(),
		"service_id":       testServiceID.String(),
		"customer_user_id": "u1",
		"start_time":       "2026-03-02T09:00:00Z",
		"end_time":         "2026-03-02T09:30:00Z",
		"price":            25,
		"currency":         "usd",
	}, map[string]string{"Idempotency-Key": "req-1"})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body)
	}
	if gotInput.ProviderID != testProviderID {
		t.Fatalf("provider ID = %s, want %s", gotInput.ProviderID, testProviderID)
	}
	if gotInput.IdempotencyKey != "req-1" {
		t.Fatalf("idempotency key = %q, want %q", gotInput.IdempotencyKey, "req-1")
	}
	if len(inv.providerIDs) != 1 || inv.providerIDs[0] != testProviderID {
		t.Fatalf("invalidations = %v, want one for %s", inv.providerIDs, testProviderID)
	}

	var resp bookingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(domain.BookingStatusPending) {
		t.Fatalf("status = %q, want %q", resp.Status, domain.BookingStatusPending)
	}
}

func TestCreateBooking_MapsConflictTo409(t *testing.T) {
	svc := &fakeSchedulingService{
		createFn: func(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error) {
			return domain.Booking{}, store.ErrConflict
		},
	}
	inv := &recordingInvalidator{}
	r := newTestRouter(svc, &fakeAvailability{}, inv)

	w := doJSON(t, r, http.MethodPost, "/api/bookings", gin.H{
		"provider_id":      testProviderID.String(),
		"service_id":       testServiceID.String(),
		"customer_user_id": "u1",
		"start_time":       "2026-03-02T09:00:00Z",
		"end_time":         "2026-03-02T09:30:00Z",
	}, nil)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if len(inv.providerIDs) != 0 {
		t.Fatalf("no invalidation expected on conflict, got %v", inv.providerIDs)
	}
}

func TestCreateBooking_MapsValidationTo400(t *testing.T) {
	svc := &fakeSchedulingService{
		createFn: func(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error) {
			return domain.Booking{}, &scheduling.ValidationError{}
		},
	}
	r := newTestRouter(svc, &fakeAvailability{}, nil)

	w := doJSON(t, r, http.MethodPost, "/api/bookings", gin.H{
		"provider_id":      testProviderID.String(),
		"service_id":       testServiceID.String(),
		"customer_user_id": "u1",
		"start_time":       "2026-03-02T09:00:00Z",
		"end_time":         "2026-03-02T09:30:00Z",
		"price":            -1,
	}, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetBooking_NotFoundMapsTo404(t *testing.T) {
	svc := &fakeSchedulingService{
		getFn: func(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
			return domain.Booking{}, store.ErrNotFound
		},
	}
	r := newTestRouter(svc, &fakeAvailability{}, nil)

	w := doJSON(t, r, http.MethodGet, "/api/bookings/"+testBookingID.String(), nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetBooking_RejectsBadUUID(t *testing.T) {
	r := newTestRouter(&fakeSchedulingService{}, &fakeAvailability{}, nil)

	w := doJSON(t, r, http.MethodGet, "/api/bookings/not-a-uuid", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestChangeStatus_MapsInvalidTransitionTo400(t *testing.T) {
	svc := &fakeSchedulingService{
		changeFn: func(ctx context.Context, in scheduling.ChangeStatusInput) (domain.Booking, error) {
			return domain.Booking{}, &domain.InvalidTransitionError{
				From:   domain.BookingStatusCompleted,
				To:     domain.BookingStatusConfirmed,
				Reason: "booking is already completed",
			}
		},
	}
	r := newTestRouter(svc, &fakeAvailability{}, nil)

	w := doJSON(t, r, http.MethodPatch, "/api/bookings/"+testBookingID.String()+"/status", gin.H{
		"status": "confirmed",
	}, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "already completed") {
		t.Fatalf("body %q should carry the transition reason", w.Body)
	}
}

func TestChangeStatus_PassesStatusNotesReason(t *testing.T) {
	var gotInput scheduling.ChangeStatusInput
	svc := &fakeSchedulingService{
		changeFn: func(ctx context.Context, in scheduling.ChangeStatusInput) (domain.Booking, error) {
			gotInput = in
			b := sampleBooking()
			b.Status = domain.BookingStatusCancelled
			return b, nil
		},
	}
	inv := &recordingInvalidator{}
	r := newTestRouter(svc, &fakeAvailability{}, inv)

	w := doJSON(t, r, http.MethodPatch, "/api/bookings/"+testBookingID.String()+"/status", gin.H{
		"status": "cancelled",
		"reason": "customer request",
	}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}
	if gotInput.NewStatus != domain.BookingStatusCancelled {
		t.Fatalf("new status = %q, want %q", gotInput.NewStatus, domain.BookingStatusCancelled)
	}
	if gotInput.Reason != "customer request" {
		t.Fatalf("reason = %q, want %q", gotInput.Reason, "customer request")
	}
	if len(inv.providerIDs) != 1 {
		t.Fatalf("expected one invalidation after cancel, got %d", len(inv.providerIDs))
	}
}

func TestChangeStatus_SameUTCDayInOtherZoneInvalidatesOnce(t *testing.T) {
	svc := &fakeSchedulingService{
		changeFn: func(ctx context.Context, in scheduling.ChangeStatusInput) (domain.Booking, error) {
			b := sampleBooking()
			b.Status = domain.BookingStatusConfirmed
			// Same instant and same UTC day as the start, but carried
			// in a non-UTC location.
			b.EndTime = b.EndTime.In(time.FixedZone("UTC+2", 2*3600))
			return b, nil
		},
	}
	inv := &recordingInvalidator{}
	r := newTestRouter(svc, &fakeAvailability{}, inv)

	w := doJSON(t, r, http.MethodPatch, "/api/bookings/"+testBookingID.String()+"/status", gin.H{
		"status": "confirmed",
	}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}
	if len(inv.dates) != 1 {
		t.Fatalf("invalidated dates = %v, want exactly 1", inv.dates)
	}
}

func TestReschedule_InvalidatesOldAndNewDates(t *testing.T) {
	moved := sampleBooking()
	moved.StartTime = time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC)
	moved.EndTime = moved.StartTime.Add(30 * time.Minute)
	moved.Status = domain.BookingStatusRescheduled

	svc := &fakeSchedulingService{
		getFn: func(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
			return sampleBooking(), nil
		},
		rescheduleFn: func(ctx context.Context, in scheduling.RescheduleInput) (domain.Booking, error) {
			return moved, nil
		},
	}
	inv := &recordingInvalidator{}
	r := newTestRouter(svc, &fakeAvailability{}, inv)

	w := doJSON(t, r, http.MethodPost, "/api/bookings/"+testBookingID.String()+"/reschedule", gin.H{
		"start_time": "2026-03-03T14:00:00Z",
		"end_time":   "2026-03-03T14:30:00Z",
		"reason":     "provider request",
	}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}
	// One invalidation for the vacated date, one for the new date.
	if len(inv.dates) != 2 {
		t.Fatalf("invalidated dates = %v, want 2 entries", inv.dates)
	}
}

func TestGetAvailability_FiltersToFreeSlots(t *testing.T) {
	slotStart := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	avail := &fakeAvailability{
		queryFn: func(ctx context.Context, providerID uuid.UUID, date time.Time, serviceID uuid.UUID) (scheduling.AvailabilityResult, error) {
			mk := func(offset time.Duration, free bool) domain.Slot {
				r, _ := domain.NewTimeRange(slotStart.Add(offset), slotStart.Add(offset+30*time.Minute))
				return domain.Slot{Range: r, Available: free}
			}
			return scheduling.AvailabilityResult{
				Available: true,
				Slots: []domain.Slot{
					mk(0, false),
					mk(30*time.Minute, true),
					mk(60*time.Minute, true),
				},
			}, nil
		},
	}
	r := newTestRouter(&fakeSchedulingService{}, avail, nil)

	w := doJSON(t, r, http.MethodGet, "/api/providers/"+testProviderID.String()+"/availability?date=2026-03-02", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}

	var resp availabilityResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Available {
		t.Fatalf("expected available=true")
	}
	if len(resp.Slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2 free slots only", len(resp.Slots))
	}
	if !resp.Slots[0].StartTime.Equal(slotStart.Add(30 * time.Minute)) {
		t.Fatalf("first free slot = %v, want %v", resp.Slots[0].StartTime, slotStart.Add(30*time.Minute))
	}
}

func TestGetAvailability_RequiresDate(t *testing.T) {
	r := newTestRouter(&fakeSchedulingService{}, &fakeAvailability{}, nil)

	w := doJSON(t, r, http.MethodGet, "/api/providers/"+testProviderID.String()+"/availability", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetStats_ParsesWindowAndMapsCounts(t *testing.T) {
	var gotStart, gotEnd *time.Time
	svc := &fakeSchedulingService{
		statsFn: func(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd *time.Time) (scheduling.BookingStats, error) {
			gotStart, gotEnd = windowStart, windowEnd
			return scheduling.BookingStats{
				Total: 3,
				Counts: map[domain.BookingStatus]int{
					domain.BookingStatusConfirmed: 2,
					domain.BookingStatusCancelled: 1,
				},
			}, nil
		},
	}
	r := newTestRouter(svc, &fakeAvailability{}, nil)

	w := doJSON(t, r, http.MethodGet, "/api/providers/"+testProviderID.String()+"/stats?from=2026-03-01&to=2026-03-31", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}
	if gotStart == nil || !gotStart.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("window start = %v, want 2026-03-01", gotStart)
	}
	if gotEnd == nil || !gotEnd.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("window end = %v, want 2026-04-01 (inclusive to)", gotEnd)
	}

	var resp statsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 3 || resp.Counts["confirmed"] != 2 {
		t.Fatalf("resp = %+v, want total 3 and 2 confirmed", resp)
	}
}
