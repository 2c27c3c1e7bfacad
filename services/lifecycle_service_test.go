package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-portal/apiclient"
	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
)

func newTestLifecycle() (*LifecycleService, *fakeStore) {
	store := newFakeStore()
	store.orders[1] = &models.Order{ID: 1, Status: policy.StatusPreparing}
	store.orders[2] = &models.Order{ID: 2, Status: policy.StatusPending}
	store.events[3] = &models.Event{ID: 3, Status: policy.StatusPending}
	store.reservations[4] = &models.Reservation{ID: 4, Status: policy.StatusConfirmed, ReservationFee: 1400}
	return NewLifecycleService(store, nil, NewInFlight()), store
}

func TestLifecycle_PreparingOrderScenario(t *testing.T) {
	svc, store := newTestLifecycle()
	ctx := context.Background()

	_, err := svc.CancelOrder(ctx, customer, 1)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = svc.Transition(ctx, admin, policy.KindOrder, 1, "delivered")
	assert.ErrorIs(t, err, policy.ErrInvalidTransition)
	assert.Equal(t, 0, store.patches)

	state, err := svc.Transition(ctx, admin, policy.KindOrder, 1, "ready")
	require.NoError(t, err)
	assert.Equal(t, policy.StatusReady, state.Status)
	assert.Equal(t, []policy.Status{policy.StatusDelivered}, state.Allowed)
	assert.Equal(t, 1, store.patches)
}

func TestLifecycle_CustomerCancelsPendingOrder(t *testing.T) {
	svc, store := newTestLifecycle()

	state, err := svc.CancelOrder(context.Background(), customer, 2)
	require.NoError(t, err)
	assert.Equal(t, policy.StatusCancelled, state.Status)
	assert.Empty(t, state.Allowed)
	assert.Equal(t, policy.StatusCancelled, store.orders[2].Status)
	assert.Equal(t, 0, store.patches)
}

func TestLifecycle_CustomerCannotMoveForward(t *testing.T) {
	svc, _ := newTestLifecycle()

	_, err := svc.Transition(context.Background(), customer, policy.KindOrder, 2, "confirmed")
	assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestLifecycle_CustomerCannotCancelEvents(t *testing.T) {
	svc, store := newTestLifecycle()

	_, err := svc.Transition(context.Background(), customer, policy.KindEvent, 3, "cancelled")
	assert.ErrorIs(t, err, policy.ErrForbidden)
	assert.Equal(t, policy.StatusPending, store.events[3].Status)
}

func TestLifecycle_CustomerCancelsReservation(t *testing.T) {
	svc, store := newTestLifecycle()

	state, err := svc.CancelReservation(context.Background(), customer, 4)
	require.NoError(t, err)
	assert.Equal(t, policy.StatusCancelled, state.Status)
	assert.Equal(t, policy.StatusCancelled, store.reservations[4].Status)
}

func TestLifecycle_AllowedTransitions(t *testing.T) {
	svc, _ := newTestLifecycle()
	ctx := context.Background()

	allowed, err := svc.AllowedTransitions(ctx, admin, policy.KindEvent, 3)
	require.NoError(t, err)
	assert.Contains(t, allowed, policy.StatusConfirmed)

	allowed, err = svc.AllowedTransitions(ctx, customer, policy.KindOrder, 2)
	require.NoError(t, err)
	assert.Equal(t, []policy.Status{policy.StatusCancelled}, allowed)

	allowed, err = svc.AllowedTransitions(ctx, customer, policy.KindOrder, 1)
	require.NoError(t, err)
	assert.Empty(t, allowed)
}

func TestLifecycle_StoreRejectionReturnsFreshState(t *testing.T) {
	svc, store := newTestLifecycle()
	store.patchErr = &apiclient.APIError{StatusCode: 409, Message: "Order already delivered"}

	state, err := svc.Transition(context.Background(), admin, policy.KindOrder, 1, "ready")
	require.Error(t, err)
	assert.Equal(t, "Order already delivered", err.Error())
	assert.ErrorIs(t, err, policy.ErrInvalidTransition)
	assert.Equal(t, policy.CategoryTransition, policy.Classify(err))

	var rejection *StoreRejection
	require.True(t, errors.As(err, &rejection))
	require.NotNil(t, state)
	assert.Equal(t, policy.StatusPreparing, state.Status)
	assert.Equal(t, 1, store.patches)
}

func TestLifecycle_ServerFaultIsNotARejection(t *testing.T) {
	svc, store := newTestLifecycle()
	store.patchErr = &apiclient.APIError{StatusCode: 503, Message: "maintenance"}

	state, err := svc.Transition(context.Background(), admin, policy.KindEvent, 3, "confirmed")
	assert.Nil(t, state)
	assert.Equal(t, policy.CategoryTransport, policy.Classify(err))
}

func TestLifecycle_MissingEntityIsNotARejection(t *testing.T) {
	svc, store := newTestLifecycle()
	store.cancelErr = &apiclient.APIError{StatusCode: 404, Message: "Order not found"}

	state, err := svc.CancelOrder(context.Background(), customer, 2)
	assert.Nil(t, state)
	assert.NotErrorIs(t, err, policy.ErrInvalidTransition)
	assert.Equal(t, policy.CategoryTransport, policy.Classify(err))

	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)

	store.patchErr = &apiclient.APIError{StatusCode: 403, Message: "not your branch"}
	state, err = svc.Transition(context.Background(), admin, policy.KindOrder, 1, "ready")
	assert.Nil(t, state)
	assert.NotErrorIs(t, err, policy.ErrInvalidTransition)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 403, apiErr.StatusCode)
}

// gatedStore holds every cancellation until release is closed and reports
// the token each one carried.
type gatedStore struct {
	*fakeStore
	entered chan string
	release chan struct{}
}

func (g *gatedStore) CancelOrder(ctx context.Context, token string, id uint) error {
	g.entered <- token
	<-g.release
	return g.fakeStore.CancelOrder(ctx, token, id)
}

func TestLifecycle_ConcurrentCancelsByDifferentUsersBothReachTheStore(t *testing.T) {
	base := newFakeStore()
	base.orders[2] = &models.Order{ID: 2, Status: policy.StatusPending}
	store := &gatedStore{fakeStore: base, entered: make(chan string, 2), release: make(chan struct{})}
	svc := NewLifecycleService(store, nil, NewInFlight())

	other := customer
	other.UserID = 8
	other.Token = "other-token"

	var wg sync.WaitGroup
	states := make([]*EntityState, 2)
	errs := make([]error, 2)
	for i, sess := range []models.Session{customer, other} {
		wg.Add(1)
		go func(i int, sess models.Session) {
			defer wg.Done()
			states[i], errs[i] = svc.CancelOrder(context.Background(), sess, 2)
		}(i, sess)
	}

	var tokens []string
	for len(tokens) < 2 {
		select {
		case token := <-store.entered:
			tokens = append(tokens, token)
		case <-time.After(2 * time.Second):
			close(store.release)
			wg.Wait()
			t.Fatalf("only %v reached the store", tokens)
		}
	}
	close(store.release)
	wg.Wait()

	assert.ElementsMatch(t, []string{"cust-token", "other-token"}, tokens)
	for i := range states {
		require.NoError(t, errs[i])
		require.NotNil(t, states[i])
		assert.Equal(t, policy.StatusCancelled, states[i].Status)
	}
	assert.NotSame(t, states[0], states[1])
}

func TestLifecycle_UnknownStatus(t *testing.T) {
	svc, _ := newTestLifecycle()

	_, err := svc.Transition(context.Background(), admin, policy.KindOrder, 1, "teleported")
	assert.ErrorIs(t, err, policy.ErrUnknownStatus)
}
