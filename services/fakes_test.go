package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-portal/config"
	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
	"github.com/yeremiapane/restaurant-portal/utils"
)

func TestMain(m *testing.M) {
	utils.Silence()
	m.Run()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

var (
	customer = models.Session{UserID: 7, Role: "customer", Token: "cust-token", Name: "Ana Cruz", Email: "ana@example.com", Phone: "09171234567"}
	admin    = models.Session{UserID: 1, Role: "admin", Token: "admin-token", Name: "Admin"}
)

// fakeStore is an in-memory stand-in for the remote API.
type fakeStore struct {
	mu sync.Mutex

	orders       map[uint]*models.Order
	events       map[uint]*models.Event
	reservations map[uint]*models.Reservation
	dailyCounts  map[string]int

	countErr  error
	createErr error
	uploadErr error
	patchErr  error
	cancelErr error

	createdOrders       []models.OrderRequest
	createdReservations []models.ReservationRequest
	uploads             []uint
	patches             int
	countCalls          int
	nextID              uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:       map[uint]*models.Order{},
		events:       map[uint]*models.Event{},
		reservations: map[uint]*models.Reservation{},
		dailyCounts:  map[string]int{},
		nextID:       100,
	}
}

func (f *fakeStore) CreateOrder(ctx context.Context, token string, req models.OrderRequest) (*models.CreatedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	f.createdOrders = append(f.createdOrders, req)
	number := fmt.Sprintf("ORD-%04d", f.nextID)
	f.orders[f.nextID] = &models.Order{ID: f.nextID, OrderNumber: number, Status: policy.StatusPending}
	return &models.CreatedOrder{ID: f.nextID, OrderNumber: number}, nil
}

func (f *fakeStore) GetOrder(ctx context.Context, token string, id uint, admin bool) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d not found", id)
	}
	copied := *order
	return &copied, nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, token string, id uint, status policy.Status) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches++
	if f.patchErr != nil {
		return nil, f.patchErr
	}
	f.orders[id].Status = status
	copied := *f.orders[id]
	return &copied, nil
}

func (f *fakeStore) CancelOrder(ctx context.Context, token string, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.orders[id].Status = policy.StatusCancelled
	return nil
}

func (f *fakeStore) GetEvent(ctx context.Context, token string, id uint, admin bool) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, fmt.Errorf("event %d not found", id)
	}
	copied := *event
	return &copied, nil
}

func (f *fakeStore) UpdateEventStatus(ctx context.Context, token string, id uint, status policy.Status) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches++
	if f.patchErr != nil {
		return nil, f.patchErr
	}
	f.events[id].Status = status
	copied := *f.events[id]
	return &copied, nil
}

func (f *fakeStore) CountReservationsOn(ctx context.Context, token string, date time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.dailyCounts[date.Format(policy.DateLayout)], nil
}

func (f *fakeStore) CreateReservation(ctx context.Context, token string, req models.ReservationRequest) (*models.CreatedReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	f.createdReservations = append(f.createdReservations, req)
	f.reservations[f.nextID] = &models.Reservation{
		ID:             f.nextID,
		Date:           req.Date,
		Guests:         req.Guests,
		OccasionType:   req.OccasionType,
		ReservationFee: req.ReservationFee,
		Status:         policy.StatusPending,
	}
	f.dailyCounts[req.Date]++
	return &models.CreatedReservation{ReservationID: f.nextID}, nil
}

func (f *fakeStore) UploadReservationReceipt(ctx context.Context, token string, id uint, file *models.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, id)
	return nil
}

func (f *fakeStore) GetReservation(ctx context.Context, token string, id uint, admin bool) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reservation, ok := f.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %d not found", id)
	}
	copied := *reservation
	return &copied, nil
}

func (f *fakeStore) UpdateReservationStatus(ctx context.Context, token string, id uint, status policy.Status) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches++
	if f.patchErr != nil {
		return nil, f.patchErr
	}
	f.reservations[id].Status = status
	copied := *f.reservations[id]
	return &copied, nil
}

func (f *fakeStore) CancelReservation(ctx context.Context, token string, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.reservations[id].Status = policy.StatusCancelled
	return nil
}
