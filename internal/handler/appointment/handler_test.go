package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idib19/glamstore-sub001/internal/config"
	availabilityHandler "github.com/idib19/glamstore-sub001/internal/handler/availability"
	"github.com/idib19/glamstore-sub001/internal/middleware"
	"github.com/idib19/glamstore-sub001/internal/model"
	"github.com/idib19/glamstore-sub001/internal/repository"
	"github.com/idib19/glamstore-sub001/internal/scheduling"
	bookingService "github.com/idib19/glamstore-sub001/internal/service/booking"
	catalogService "github.com/idib19/glamstore-sub001/internal/service/catalog"
	customerService "github.com/idib19/glamstore-sub001/internal/service/customer"
	notificationService "github.com/idib19/glamstore-sub001/internal/service/notification"
	"github.com/idib19/glamstore-sub001/pkg/auth"
	"github.com/idib19/glamstore-sub001/pkg/logger"
)

// In-memory repositories backing the full HTTP stack.

type memAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
}

func (r *memAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.appointments {
		if existing.Status.IsActive() && existing.StartTime.Equal(apt.StartTime) {
			return repository.ErrDuplicateSlot
		}
	}
	clone := *apt
	r.appointments[apt.ID] = &clone
	return nil
}

func (r *memAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *apt
	return &clone, nil
}

func (r *memAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[apt.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *apt
	r.appointments[apt.ID] = &clone
	return nil
}

func (r *memAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	apt.Status = status
	clone := *apt
	return &clone, nil
}

func (r *memAppointmentRepo) ListByDate(_ context.Context, date time.Time) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range r.appointments {
		if apt.AppointmentDate.Equal(date) {
			clone := *apt
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range r.appointments {
		clone := *apt
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memAppointmentRepo) ListOverdue(_ context.Context, _ []model.AppointmentStatus, _ time.Time) ([]*model.Appointment, error) {
	return nil, nil
}

type memServiceRepo struct {
	services map[uuid.UUID]*model.Service
}

func (r *memServiceRepo) Create(_ context.Context, svc *model.Service) error {
	clone := *svc
	r.services[svc.ID] = &clone
	return nil
}

func (r *memServiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	svc, ok := r.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *svc
	return &clone, nil
}

func (r *memServiceRepo) Update(_ context.Context, svc *model.Service) error {
	clone := *svc
	r.services[svc.ID] = &clone
	return nil
}

func (r *memServiceRepo) List(_ context.Context, activeOnly bool) ([]*model.Service, error) {
	var out []*model.Service
	for _, svc := range r.services {
		if activeOnly && !svc.Active {
			continue
		}
		out = append(out, svc)
	}
	return out, nil
}

type memCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func (r *memCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	clone := *c
	r.customers[c.ID] = &clone
	return nil
}

func (r *memCustomerRepo) Get(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (r *memCustomerRepo) GetByEmail(_ context.Context, email string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memCustomerRepo) List(_ context.Context) ([]*model.Customer, error) {
	var out []*model.Customer
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, nil
}

type memOutboxRepo struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func (r *memOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = uuid.New()
	r.events = append(r.events, event)
	return nil
}

func (r *memOutboxRepo) GetPendingEventsWithLock(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *memOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string) error {
	return nil
}

type fixture struct {
	router    *gin.Engine
	serviceID uuid.UUID
	date      string
	token     string
	outbox    *memOutboxRepo
}

// nextOpenDate returns a Wednesday at least a week out so slot starts are
// always in the future relative to the wall clock.
func nextOpenDate() string {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != time.Wednesday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format(scheduling.DateFormat)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	calendar, err := scheduling.NewCalendar(config.BusinessHoursConfig{
		Timezone:    "UTC",
		OpenDays:    []string{"Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		Opens:       "09:00",
		Closes:      "19:00",
		SlotMinutes: 30,
	})
	require.NoError(t, err)

	serviceID := uuid.New()
	serviceRepo := &memServiceRepo{services: map[uuid.UUID]*model.Service{
		serviceID: {
			ID:              serviceID,
			Name:            "Signature Facial",
			DurationMinutes: 45,
			PriceCents:      9500,
			Active:          true,
		},
	}}
	appointmentRepo := &memAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
	customerRepo := &memCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
	outboxRepo := &memOutboxRepo{}

	appLogger := logger.NewLogger(nil)
	catalogSvc := catalogService.NewService(serviceRepo)
	customerSvc := customerService.NewService(customerRepo)
	notificationSvc := notificationService.NewService(outboxRepo, appLogger)
	engine := scheduling.NewEngine(calendar, appointmentRepo, catalogSvc,
		time.Second, nil, appLogger)
	bookingSvc := bookingService.NewService(engine, appointmentRepo,
		catalogSvc, customerSvc, notificationSvc)

	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	token, err := jwtSvc.GenerateToken("owner@example.com", "owner@example.com")
	require.NoError(t, err)

	h := NewHandler(bookingSvc, calendar)
	availabilityH := availabilityHandler.NewHandler(bookingSvc)

	router := gin.New()
	api := router.Group("/api/v1")
	h.RegisterRoutes(api)
	availabilityH.RegisterRoutes(api)

	admin := api.Group("/admin")
	admin.Use(middleware.NewAuthMiddleware(jwtSvc).Authenticate())
	h.RegisterAdminRoutes(admin)

	return &fixture{
		router:    router,
		serviceID: serviceID,
		date:      nextOpenDate(),
		token:     token,
		outbox:    outboxRepo,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) book(t *testing.T, start string) uuid.UUID {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/bookings", gin.H{
		"service_id": f.serviceID,
		"date":       f.date,
		"start":      start,
		"customer": gin.H{
			"name":  "Amina Diallo",
			"email": "amina@example.com",
		},
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data model.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestAvailabilityEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/availability?service_id=%s&date=%s", f.serviceID, f.date), nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Slots []string `json:"slots"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Contains(t, resp.Data.Slots, "09:00")
	assert.Contains(t, resp.Data.Slots, "18:00")
	assert.NotContains(t, resp.Data.Slots, "18:30")
}

func TestAvailabilityUnknownService(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/availability?service_id=%s&date=%s", uuid.New(), f.date), nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAvailabilityBadDate(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/availability?service_id=%s&date=13-03-2030", f.serviceID), nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingRoundTrip(t *testing.T) {
	f := newFixture(t)

	f.book(t, "10:00")

	// The committed slot and its overlap disappear from availability.
	w := f.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/availability?service_id=%s&date=%s", f.serviceID, f.date), nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Slots []string `json:"slots"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotContains(t, resp.Data.Slots, "10:00")
	assert.NotContains(t, resp.Data.Slots, "09:30")
	assert.Contains(t, resp.Data.Slots, "10:30")

	// A confirmation event reached the outbox.
	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, model.EventBookingConfirmed, f.outbox.events[0].EventType)
}

func TestBookingDoubleBookConflicts(t *testing.T) {
	f := newFixture(t)
	f.book(t, "10:00")

	w := f.do(t, http.MethodPost, "/api/v1/bookings", gin.H{
		"service_id": f.serviceID,
		"date":       f.date,
		"start":      "10:00",
		"customer": gin.H{
			"name":  "Second Customer",
			"email": "second@example.com",
		},
	}, false)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingValidationFailure(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/bookings", gin.H{
		"service_id": f.serviceID,
		"date":       f.date,
		// missing start and customer
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRequiresToken(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, "10:00")

	w := f.do(t, http.MethodGet, "/api/v1/admin/appointments/"+id.String(), nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/admin/appointments/"+id.String(), nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPatchStatusTransition(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, "10:00")

	w := f.do(t, http.MethodPatch, "/api/v1/admin/appointments/"+id.String(), gin.H{
		"status": "confirmed",
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Jumping straight to completed skips in_progress.
	w = f.do(t, http.MethodPatch, "/api/v1/admin/appointments/"+id.String(), gin.H{
		"status": "completed",
	}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPatchMixedStatusAndRescheduleRejected(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, "10:00")

	w := f.do(t, http.MethodPatch, "/api/v1/admin/appointments/"+id.String(), gin.H{
		"status": "confirmed",
		"start":  "11:00",
		"date":   f.date,
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatchReschedule(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, "10:00")

	w := f.do(t, http.MethodPatch, "/api/v1/admin/appointments/"+id.String(), gin.H{
		"date":  f.date,
		"start": "15:00",
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data model.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "15:00", resp.Data.StartTime.UTC().Format(scheduling.TimeFormat))

	// Old slot reopens.
	aw := f.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/availability?service_id=%s&date=%s", f.serviceID, f.date), nil, false)
	require.Equal(t, http.StatusOK, aw.Code)
	var avail struct {
		Data struct {
			Slots []string `json:"slots"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(aw.Body.Bytes(), &avail))
	assert.Contains(t, avail.Data.Slots, "10:00")
}

func TestPatchUnknownAppointment(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPatch, "/api/v1/admin/appointments/"+uuid.New().String(), gin.H{
		"status": "confirmed",
	}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelEnqueuesCancellationEvent(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, "10:00")

	w := f.do(t, http.MethodPatch, "/api/v1/admin/appointments/"+id.String(), gin.H{
		"status": "cancelled",
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, f.outbox.events, 2)
	assert.Equal(t, model.EventBookingCancelled, f.outbox.events[1].EventType)
}
