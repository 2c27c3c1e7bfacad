package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
	"github.com/yeremiapane/restaurant-portal/utils"
)

// EntityState is an entity as the store currently holds it, with the moves
// the caller may make from here.
type EntityState struct {
	Kind    policy.EntityKind `json:"kind"`
	ID      uint              `json:"id"`
	Status  policy.Status     `json:"status"`
	Allowed []policy.Status   `json:"allowed_transitions"`
	Entity  interface{}       `json:"entity"`
}

// StoreRejection is the store refusing a status change the local rules
// allowed, usually because someone else moved the entity first. The store's
// state wins; the caller receives it next to this error.
type StoreRejection struct {
	Message string
	Err     error
}

func (e *StoreRejection) Error() string { return e.Message }

func (e *StoreRejection) Unwrap() []error { return []error{policy.ErrInvalidTransition, e.Err} }

// LifecycleService moves orders, events and reservations between statuses.
// Every move checks the transition table against the store's current status
// first and never retries.
type LifecycleService struct {
	store    Store
	machine  *policy.StateMachine
	inflight *InFlight
	log      *logrus.Entry
}

func NewLifecycleService(store Store, machine *policy.StateMachine, inflight *InFlight) *LifecycleService {
	if machine == nil {
		machine = policy.Lifecycle
	}
	return &LifecycleService{
		store:    store,
		machine:  machine,
		inflight: inflight,
		log:      utils.Component("lifecycle"),
	}
}

// Get fetches an entity and the transitions open to the caller.
func (s *LifecycleService) Get(ctx context.Context, sess models.Session, kind policy.EntityKind, id uint) (*EntityState, error) {
	entity, status, err := s.fetch(ctx, sess, kind, id)
	if err != nil {
		return nil, err
	}
	return s.state(sess, kind, id, status, entity), nil
}

// AllowedTransitions lists the statuses the caller may move the entity to.
func (s *LifecycleService) AllowedTransitions(ctx context.Context, sess models.Session, kind policy.EntityKind, id uint) ([]policy.Status, error) {
	state, err := s.Get(ctx, sess, kind, id)
	if err != nil {
		return nil, err
	}
	return state.Allowed, nil
}

// Transition moves an entity to the raw target status on behalf of the caller.
func (s *LifecycleService) Transition(ctx context.Context, sess models.Session, kind policy.EntityKind, id uint, rawTarget string) (*EntityState, error) {
	target, err := s.machine.ParseStatus(kind, rawTarget)
	if err != nil {
		return nil, err
	}
	if role := sess.LifecycleRole(); role != policy.RoleAdmin {
		if target == policy.StatusCancelled {
			return s.cancel(ctx, sess, kind, id)
		}
		return nil, &policy.TransitionError{Kind: kind, To: target, Role: role, Err: policy.ErrForbidden}
	}

	key := ActionKey(string(kind), id, fmt.Sprintf("status-%s:%d", target, sess.UserID))
	res, err := s.inflight.Do(ctx, key, func() (interface{}, error) {
		return s.transition(ctx, sess, kind, id, target)
	})
	state, _ := res.(*EntityState)
	return state, err
}

// CancelOrder is the customer's own cancellation of an early-stage order.
func (s *LifecycleService) CancelOrder(ctx context.Context, sess models.Session, id uint) (*EntityState, error) {
	return s.cancel(ctx, sess, policy.KindOrder, id)
}

// CancelReservation is the customer's own cancellation of a reservation.
func (s *LifecycleService) CancelReservation(ctx context.Context, sess models.Session, id uint) (*EntityState, error) {
	return s.cancel(ctx, sess, policy.KindReservation, id)
}

func (s *LifecycleService) cancel(ctx context.Context, sess models.Session, kind policy.EntityKind, id uint) (*EntityState, error) {
	key := ActionKey(string(kind), id, fmt.Sprintf("cancel:%d", sess.UserID))
	res, err := s.inflight.Do(ctx, key, func() (interface{}, error) {
		customer := sess
		customer.Role = string(policy.RoleCustomer)

		_, current, err := s.fetch(ctx, customer, kind, id)
		if err != nil {
			return nil, err
		}
		if err := s.machine.Check(kind, current, policy.StatusCancelled, policy.RoleCustomer); err != nil {
			return nil, err
		}

		switch kind {
		case policy.KindOrder:
			err = s.store.CancelOrder(ctx, sess.Token, id)
		case policy.KindReservation:
			err = s.store.CancelReservation(ctx, sess.Token, id)
		default:
			err = &policy.TransitionError{Kind: kind, From: current, To: policy.StatusCancelled, Role: policy.RoleCustomer, Err: policy.ErrForbidden}
		}
		if err != nil {
			return s.rejected(ctx, customer, kind, id, err)
		}

		s.log.WithFields(logrus.Fields{"kind": kind, "id": id, "user": sess.UserID}).Info("cancelled by customer")
		return s.Get(ctx, customer, kind, id)
	})
	state, _ := res.(*EntityState)
	return state, err
}

func (s *LifecycleService) transition(ctx context.Context, sess models.Session, kind policy.EntityKind, id uint, target policy.Status) (*EntityState, error) {
	_, current, err := s.fetch(ctx, sess, kind, id)
	if err != nil {
		return nil, err
	}
	if err := s.machine.Check(kind, current, target, sess.LifecycleRole()); err != nil {
		return nil, err
	}

	var entity interface{}
	var status policy.Status
	switch kind {
	case policy.KindOrder:
		var order *models.Order
		if order, err = s.store.UpdateOrderStatus(ctx, sess.Token, id, target); err == nil {
			entity, status = order, order.Status
		}
	case policy.KindEvent:
		var event *models.Event
		if event, err = s.store.UpdateEventStatus(ctx, sess.Token, id, target); err == nil {
			entity, status = event, event.Status
		}
	case policy.KindReservation:
		var reservation *models.Reservation
		if reservation, err = s.store.UpdateReservationStatus(ctx, sess.Token, id, target); err == nil {
			entity, status = reservation, reservation.Status
		}
	default:
		return nil, fmt.Errorf("%w: %q", policy.ErrUnknownEntityKind, kind)
	}
	if err != nil {
		return s.rejected(ctx, sess, kind, id, err)
	}
	if status == "" {
		status = target
	}

	s.log.WithFields(logrus.Fields{
		"kind": kind,
		"id":   id,
		"from": current,
		"to":   status,
		"by":   sess.UserID,
	}).Info("status changed")
	return s.state(sess, kind, id, status, entity), nil
}

// rejected turns a write the store refused over the entity's state into a
// StoreRejection carrying the store's fresh state. Other failures, a 404 or
// 403 included, are returned untouched.
func (s *LifecycleService) rejected(ctx context.Context, sess models.Session, kind policy.EntityKind, id uint, err error) (*EntityState, error) {
	var rejection interface{ Conflict() bool }
	if !errors.As(err, &rejection) || !rejection.Conflict() {
		return nil, err
	}

	s.log.WithError(err).WithFields(logrus.Fields{"kind": kind, "id": id}).Warn("store rejected status change, refreshing")
	state, fetchErr := s.Get(ctx, sess, kind, id)
	if fetchErr != nil {
		s.log.WithError(fetchErr).Warn("refresh after rejection failed")
	}
	return state, &StoreRejection{Message: err.Error(), Err: err}
}

func (s *LifecycleService) fetch(ctx context.Context, sess models.Session, kind policy.EntityKind, id uint) (interface{}, policy.Status, error) {
	admin := sess.IsAdmin()
	switch kind {
	case policy.KindOrder:
		order, err := s.store.GetOrder(ctx, sess.Token, id, admin)
		if err != nil {
			return nil, "", err
		}
		return order, order.Status, nil
	case policy.KindEvent:
		event, err := s.store.GetEvent(ctx, sess.Token, id, admin)
		if err != nil {
			return nil, "", err
		}
		return event, event.Status, nil
	case policy.KindReservation:
		reservation, err := s.store.GetReservation(ctx, sess.Token, id, admin)
		if err != nil {
			return nil, "", err
		}
		return reservation, reservation.Status, nil
	}
	return nil, "", fmt.Errorf("%w: %q", policy.ErrUnknownEntityKind, kind)
}

func (s *LifecycleService) state(sess models.Session, kind policy.EntityKind, id uint, status policy.Status, entity interface{}) *EntityState {
	allowed := []policy.Status{}
	if sess.IsAdmin() {
		if next, err := s.machine.Next(kind, status); err == nil {
			allowed = next
		}
	} else if s.machine.CanCustomerCancel(kind, status) {
		allowed = []policy.Status{policy.StatusCancelled}
	}
	return &EntityState{Kind: kind, ID: id, Status: status, Allowed: allowed, Entity: entity}
}
